package repository

import (
	"context"

	"github.com/jhoicas/custodia-api/internal/domain/permission"
)

// PermissionRepository puerto de la matriz de permisos por usuario.
type PermissionRepository interface {
	// Get devuelve el conjunto guardado; vacío si el usuario no tiene filas.
	Get(ctx context.Context, userID string) (permission.Set, error)
	// Replace sustituye el conjunto completo de forma atómica.
	Replace(ctx context.Context, userID string, set permission.Set) error
}
