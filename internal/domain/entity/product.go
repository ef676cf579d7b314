package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del almacén.
// Stock es el valor materializado de la suma de movimientos; solo lo modifica el libro de movimientos.
type Product struct {
	ID           string
	SKU          string // código externo único
	Name         string
	Description  string
	CategoryID   string // vacío si no tiene categoría
	SupplierID   string // vacío si no tiene proveedor
	Price        decimal.Decimal
	Stock        int64
	StockMinimum int64
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLowStock indica si el producto está en o por debajo de su mínimo.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.StockMinimum
}
