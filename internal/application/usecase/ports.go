package usecase

import (
	"context"

	"github.com/jhoicas/custodia-api/internal/domain/repository"
)

// UserTxRunner ejecuta fn en una transacción con los repositorios de usuarios y permisos.
// Crear un usuario y sembrar sus permisos por defecto debe ser atómico.
type UserTxRunner interface {
	RunUsers(ctx context.Context, fn func(
		userRepo repository.UserRepository,
		permRepo repository.PermissionRepository,
	) error) error
}

// SessionInvalidator cierra todas las sesiones de un usuario.
type SessionInvalidator interface {
	ForceInvalidateAll(ctx context.Context, userID string) (int64, error)
}
