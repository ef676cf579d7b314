package entity

import "time"

// MovementKind tipo de movimiento del libro.
type MovementKind string

const (
	MovementIN  MovementKind = "IN"  // entrada
	MovementOUT MovementKind = "OUT" // salida
)

// Valid reporta si el tipo es uno de los conocidos.
func (k MovementKind) Valid() bool {
	return k == MovementIN || k == MovementOUT
}

// Motivos usados por movimientos generados por el propio sistema.
const (
	ReasonAssignment   = "asignacion"
	ReasonReturn       = "devolucion"
	ReasonInitialStock = "stock inicial"
)

// Movement es una entrada inmutable del libro de movimientos.
// Quantity siempre es positiva; el signo lo da Kind.
type Movement struct {
	ID        string
	ProductID string
	Kind      MovementKind
	Quantity  int64
	Reason    string
	ActorID   string // vacío para movimientos del sistema
	Notes     string
	CreatedAt time.Time

	// Datos de solo lectura resueltos por los listados.
	ProductName string
	ProductSKU  string
	ActorName   string
}

// Signed devuelve la cantidad con signo (+IN, -OUT).
func (m *Movement) Signed() int64 {
	if m.Kind == MovementOUT {
		return -m.Quantity
	}
	return m.Quantity
}
