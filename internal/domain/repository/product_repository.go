package repository

import (
	"context"
	"time"

	"github.com/jhoicas/custodia-api/internal/domain/entity"
)

// ProductFilter criterios para listar productos.
type ProductFilter struct {
	Search          string // coincide con nombre o SKU
	CategoryID      string
	SupplierID      string
	IncludeInactive bool
	Limit           int
	Offset          int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los métodos de lectura devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// Update modifica atributos; nunca el stock.
	Update(ctx context.Context, product *entity.Product) error
	// SetStock escribe el stock materializado. Solo lo usa el libro de movimientos.
	SetStock(ctx context.Context, id string, stock int64, at time.Time) error
	SetActive(ctx context.Context, id string, active bool, at time.Time) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	ListLowStock(ctx context.Context) ([]*entity.Product, error)
}
