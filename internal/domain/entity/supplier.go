package entity

import "time"

// Supplier proveedor de productos. Nunca se borra, solo se desactiva.
type Supplier struct {
	ID        string
	Name      string
	Contact   string
	Phone     string
	Email     string
	Address   string
	Website   string
	Notes     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
