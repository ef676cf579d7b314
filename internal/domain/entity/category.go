package entity

import "time"

// Category agrupa productos; se usa como filtro en reportes de movimientos.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}
