package repository

import (
	"context"

	"github.com/jhoicas/custodia-api/internal/domain/entity"
)

// PersonnelRepository puerto de persistencia para personal.
type PersonnelRepository interface {
	Create(ctx context.Context, p *entity.Personnel) error
	GetByID(ctx context.Context, id string) (*entity.Personnel, error)
	// List incluye el conteo de asignaciones abiertas.
	List(ctx context.Context, includeInactive bool) ([]*entity.Personnel, error)
}

// DestinationRepository puerto de persistencia para destinos.
type DestinationRepository interface {
	Create(ctx context.Context, d *entity.Destination) error
	GetByID(ctx context.Context, id string) (*entity.Destination, error)
	List(ctx context.Context, includeInactive bool) ([]*entity.Destination, error)
}
