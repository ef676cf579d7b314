// Package permission define la matriz de permisos: acciones conocidas, perfiles por rol
// y la regla de evaluación que comparten el middleware HTTP y los casos de uso.
package permission

import (
	"sort"

	"github.com/jhoicas/custodia-api/internal/domain/entity"
)

// Action nombre de una capacidad protegida.
type Action string

const (
	VerProductos      Action = "ver_productos"
	CrearProductos    Action = "crear_productos"
	EditarProductos   Action = "editar_productos"
	EliminarProductos Action = "eliminar_productos"
	ImportarProductos Action = "importar_productos"

	VerCategorias      Action = "ver_categorias"
	CrearCategorias    Action = "crear_categorias"
	EditarCategorias   Action = "editar_categorias"
	EliminarCategorias Action = "eliminar_categorias"

	VerMovimientos Action = "ver_movimientos"
	CrearEntrada   Action = "crear_entrada"
	CrearSalida    Action = "crear_salida"

	VerReportes     Action = "ver_reportes"
	GenerarReportes Action = "generar_reportes"

	VerUsuarios      Action = "ver_usuarios"
	CrearUsuarios    Action = "crear_usuarios"
	EditarUsuarios   Action = "editar_usuarios"
	EliminarUsuarios Action = "eliminar_usuarios"

	VerProveedores    Action = "ver_proveedores"
	CrearProveedores  Action = "crear_proveedores"
	EditarProveedores Action = "editar_proveedores"

	VerAsignaciones    Action = "ver_asignaciones"
	CrearAsignaciones  Action = "crear_asignaciones"
	EditarAsignaciones Action = "editar_asignaciones"
)

// all es el catálogo cerrado de acciones. Agregar una acción aquí basta para que
// exista en perfiles, reemplazo de permisos y evaluación.
var all = map[Action]struct{}{
	VerProductos: {}, CrearProductos: {}, EditarProductos: {}, EliminarProductos: {}, ImportarProductos: {},
	VerCategorias: {}, CrearCategorias: {}, EditarCategorias: {}, EliminarCategorias: {},
	VerMovimientos: {}, CrearEntrada: {}, CrearSalida: {},
	VerReportes: {}, GenerarReportes: {},
	VerUsuarios: {}, CrearUsuarios: {}, EditarUsuarios: {}, EliminarUsuarios: {},
	VerProveedores: {}, CrearProveedores: {}, EditarProveedores: {},
	VerAsignaciones: {}, CrearAsignaciones: {}, EditarAsignaciones: {},
}

// Known reporta si la acción pertenece al catálogo.
func (a Action) Known() bool {
	_, ok := all[a]
	return ok
}

// All devuelve todas las acciones ordenadas alfabéticamente.
func All() []Action {
	out := make([]Action, 0, len(all))
	for a := range all {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Set permisos efectivos de un usuario. Una acción ausente equivale a false.
type Set map[Action]bool

// Allows devuelve el valor almacenado para la acción (false si no existe).
func (s Set) Allows(a Action) bool {
	return s[a]
}

// Complete devuelve una copia con todas las acciones del catálogo presentes;
// las que faltan quedan en false y las desconocidas se descartan.
func (s Set) Complete() Set {
	out := make(Set, len(all))
	for a := range all {
		out[a] = s[a]
	}
	return out
}

// ToMap expone el set con claves string (respuestas HTTP).
func (s Set) ToMap() map[string]bool {
	out := make(map[string]bool, len(s))
	for a, v := range s {
		out[string(a)] = v
	}
	return out
}

// Decision resultado de una evaluación.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// String devuelve "allow" o "deny".
func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Evaluate decide si un usuario con el rol y permisos dados puede ejecutar la acción.
// Orden: admin siempre permite; si no, se consulta el set; acción desconocida o ausente niega.
func Evaluate(role string, set Set, action Action) Decision {
	if role == entity.RoleAdmin {
		return Allow
	}
	if !action.Known() {
		return Deny
	}
	if set.Allows(action) {
		return Allow
	}
	return Deny
}
