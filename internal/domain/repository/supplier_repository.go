package repository

import (
	"context"

	"github.com/jhoicas/custodia-api/internal/domain/entity"
)

// SupplierRepository puerto de persistencia para proveedores.
// GetByID devuelve (nil, nil) cuando el proveedor no existe.
type SupplierRepository interface {
	Create(ctx context.Context, s *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	Update(ctx context.Context, s *entity.Supplier) error
	// List ordena por nombre.
	List(ctx context.Context, includeInactive bool) ([]*entity.Supplier, error)
}
