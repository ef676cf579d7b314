package permission

import "github.com/jhoicas/custodia-api/internal/domain/entity"

// Perfiles iniciales por rol. Solo se aplican al crear el usuario o al restablecer
// explícitamente sus permisos; cambiar el rol no los vuelve a derivar.
var (
	usuarioDefaults = []Action{
		VerProductos, VerCategorias,
		VerMovimientos, CrearEntrada, CrearSalida,
		VerReportes, GenerarReportes,
		VerProveedores, VerAsignaciones,
	}
	visitanteDefaults = []Action{
		VerProductos, VerCategorias, VerMovimientos,
		VerReportes, VerProveedores, VerAsignaciones,
	}
)

// DefaultsFor devuelve el set completo (todas las acciones presentes) para un rol.
// Un rol desconocido recibe el perfil de visitante.
func DefaultsFor(role string) Set {
	set := Set{}.Complete()
	switch role {
	case entity.RoleAdmin:
		for a := range set {
			set[a] = true
		}
	case entity.RoleUsuario:
		for _, a := range usuarioDefaults {
			set[a] = true
		}
	default:
		for _, a := range visitanteDefaults {
			set[a] = true
		}
	}
	return set
}

// ValidRole reporta si el rol es uno de los perfiles incorporados.
func ValidRole(role string) bool {
	switch role {
	case entity.RoleAdmin, entity.RoleUsuario, entity.RoleVisitante:
		return true
	}
	return false
}

// Replacement construye el set que sustituye por completo al anterior:
// cada acción conocida toma el valor enviado o false si no vino.
// Devuelve ok=false si la entrada trae nombres fuera del catálogo.
func Replacement(input map[string]bool) (Set, bool) {
	set := Set{}.Complete()
	for name, v := range input {
		a := Action(name)
		if !a.Known() {
			return nil, false
		}
		set[a] = v
	}
	return set, true
}
