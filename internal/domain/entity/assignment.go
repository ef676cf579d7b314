package entity

import "time"

// TargetKind a quién se entrega la custodia.
type TargetKind string

const (
	TargetPersonnel   TargetKind = "personal"
	TargetDestination TargetKind = "destino"
)

// Valid reporta si el tipo de destino es conocido.
func (k TargetKind) Valid() bool {
	return k == TargetPersonnel || k == TargetDestination
}

// AssignmentState estados de una asignación. Única transición: asignado -> devuelto.
type AssignmentState string

const (
	AssignmentAssigned AssignmentState = "asignado"
	AssignmentReturned AssignmentState = "devuelto"
)

// Target identifica a un custodio (personal o destino).
type Target struct {
	Kind TargetKind
	ID   string
}

// Assignment representa mercancía fuera del almacén bajo custodia de un tercero.
type Assignment struct {
	ID               string
	ProductID        string
	Target           Target
	Quantity         int64
	State            AssignmentState
	IssuedBy         string
	Notes            string
	ReturnNotes      string
	OutMovementID    string
	ReturnMovementID string // vacío mientras esté asignado
	CreatedAt        time.Time
	ReturnedAt       *time.Time

	// Datos de solo lectura resueltos por los listados.
	ProductName string
	ProductSKU  string
}

// IsReturned indica si la asignación ya fue devuelta.
func (a *Assignment) IsReturned() bool {
	return a.State == AssignmentReturned
}
