package repository

import (
	"context"
	"time"

	"github.com/jhoicas/custodia-api/internal/domain/entity"
)

// MovementFilter criterios de ListRecent. Los campos vacíos no filtran.
type MovementFilter struct {
	From       *time.Time
	To         *time.Time
	Kind       entity.MovementKind
	CategoryID string
	ActorID    string
	ProductID  string
	Limit      int
}

// MovementRepository puerto del libro de movimientos. Solo inserta y lee.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	// ListRecent devuelve los movimientos más recientes primero.
	ListRecent(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
	// SumByProduct suma con signo los movimientos de un producto.
	SumByProduct(ctx context.Context, productID string) (int64, error)
}
