package repository

import (
	"context"
	"time"

	"github.com/jhoicas/custodia-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmail recibe el email ya normalizado.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// Update persiste nombre, rol y estado activo.
	Update(ctx context.Context, user *entity.User) error
	UpdatePassword(ctx context.Context, id, hash string, at time.Time) error
	TouchLastAccess(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context) ([]*entity.User, error)
	Count(ctx context.Context) (int, error)
}
