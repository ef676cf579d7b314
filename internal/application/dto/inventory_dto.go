package dto

import "time"

// MovementRequest body para POST /api/movements/in y /api/movements/out.
type MovementRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
}

// MovementResponse salida de un movimiento del libro.
type MovementResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	ProductSKU  string    `json:"product_sku,omitempty"`
	Kind        string    `json:"kind"`
	Quantity    int64     `json:"quantity"`
	Reason      string    `json:"reason"`
	ActorID     string    `json:"actor_id,omitempty"`
	ActorName   string    `json:"actor_name,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateAssignmentRequest body para POST /api/assignments.
type CreateAssignmentRequest struct {
	ProductID  string `json:"product_id"`
	TargetKind string `json:"target_kind"` // personal | destino
	TargetID   string `json:"target_id"`
	Quantity   int64  `json:"quantity"`
	Notes      string `json:"notes"`
}

// ReturnAssignmentRequest body para PUT /api/assignments/:id/return.
type ReturnAssignmentRequest struct {
	Notes string `json:"notes"`
}

// AssignmentResponse salida de una asignación.
type AssignmentResponse struct {
	ID               string     `json:"id"`
	ProductID        string     `json:"product_id"`
	ProductName      string     `json:"product_name,omitempty"`
	ProductSKU       string     `json:"product_sku,omitempty"`
	TargetKind       string     `json:"target_kind"`
	TargetID         string     `json:"target_id"`
	Quantity         int64      `json:"quantity"`
	State            string     `json:"state"`
	IssuedBy         string     `json:"issued_by"`
	Notes            string     `json:"notes,omitempty"`
	ReturnNotes      string     `json:"return_notes,omitempty"`
	OutMovementID    string     `json:"out_movement_id"`
	ReturnMovementID string     `json:"return_movement_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	ReturnedAt       *time.Time `json:"returned_at,omitempty"`
}

// CreatePersonnelRequest body para crear personal.
type CreatePersonnelRequest struct {
	Name     string `json:"name" validate:"required"`
	Position string `json:"position"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// PersonnelResponse salida de personal con sus asignaciones abiertas.
type PersonnelResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Position        string    `json:"position,omitempty"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Active          bool      `json:"active"`
	OpenAssignments int       `json:"open_assignments"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateDestinationRequest body para crear un destino.
type CreateDestinationRequest struct {
	Name    string `json:"name" validate:"required"`
	Kind    string `json:"kind"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// DestinationResponse salida de un destino con sus asignaciones abiertas.
type DestinationResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Kind            string    `json:"kind,omitempty"`
	Contact         string    `json:"contact,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Address         string    `json:"address,omitempty"`
	Active          bool      `json:"active"`
	OpenAssignments int       `json:"open_assignments"`
	CreatedAt       time.Time `json:"created_at"`
}
