package repository

import (
	"context"

	"github.com/jhoicas/custodia-api/internal/domain/entity"
)

// AssignmentRepository define el puerto de persistencia para asignaciones.
type AssignmentRepository interface {
	Create(ctx context.Context, a *entity.Assignment) error
	GetByID(ctx context.Context, id string) (*entity.Assignment, error)
	// GetForUpdate bloquea la fila de la asignación (serializa devoluciones concurrentes).
	GetForUpdate(ctx context.Context, id string) (*entity.Assignment, error)
	// MarkReturned persiste State, ReturnNotes, ReturnedAt y ReturnMovementID.
	MarkReturned(ctx context.Context, a *entity.Assignment) error
	// ListOpenByTarget asignaciones en estado asignado de un custodio.
	ListOpenByTarget(ctx context.Context, target entity.Target) ([]*entity.Assignment, error)
	List(ctx context.Context, limit int) ([]*entity.Assignment, error)
}
