package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Movements    repository.MovementRepository
	Products     repository.ProductRepository
	Assignments  repository.AssignmentRepository
	Personnel    repository.PersonnelRepository
	Destinations repository.DestinationRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Garantiza atomicidad para el libro y las asignaciones.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

// StockChanged evento emitido después del commit de cada movimiento.
type StockChanged struct {
	MovementID   string              `json:"movement_id"`
	ProductID    string              `json:"product_id"`
	SKU          string              `json:"sku"`
	Kind         entity.MovementKind `json:"kind"`
	Quantity     int64               `json:"quantity"`
	Reason       string              `json:"reason"`
	Stock        int64               `json:"stock"`
	StockMinimum int64               `json:"stock_minimum"`
	LowStock     bool                `json:"low_stock"`
	ActorID      string              `json:"actor_id,omitempty"`
	OccurredAt   time.Time           `json:"occurred_at"`
}

// EventPublisher publica eventos de stock. Es best-effort: un fallo no revierte nada.
type EventPublisher interface {
	PublishStockChanged(ctx context.Context, ev StockChanged) error
}
