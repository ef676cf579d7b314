package entity

import "time"

// Personnel persona que puede recibir productos en custodia.
type Personnel struct {
	ID              string
	Name            string
	Position        string
	Email           string
	Phone           string
	Active          bool
	OpenAssignments int // asignaciones en estado asignado (solo listados)
	CreatedAt       time.Time
}

// Destination lugar (oficina, obra, sucursal) que puede recibir productos en custodia.
type Destination struct {
	ID              string
	Name            string
	Kind            string
	Contact         string
	Phone           string
	Address         string
	Active          bool
	OpenAssignments int
	CreatedAt       time.Time
}
