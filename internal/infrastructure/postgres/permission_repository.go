package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/custodia-api/internal/domain/permission"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
)

var _ repository.PermissionRepository = (*PermissionRepo)(nil)

// PermissionRepo matriz de permisos como filas (user_id, action, allowed).
type PermissionRepo struct {
	q Querier
}

// NewPermissionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPermissionRepository(q Querier) *PermissionRepo {
	return &PermissionRepo{q: q}
}

// Get devuelve las filas guardadas del usuario. Acciones que ya no existen en el catálogo se ignoran.
func (r *PermissionRepo) Get(ctx context.Context, userID string) (permission.Set, error) {
	if !validID(userID) {
		return permission.Set{}, nil
	}
	rows, err := r.q.Query(ctx, `SELECT action, allowed FROM user_permissions WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("get permissions: %w", err)
	}
	defer rows.Close()
	set := permission.Set{}
	for rows.Next() {
		var (
			action  string
			allowed bool
		)
		if err := rows.Scan(&action, &allowed); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		if a := permission.Action(action); a.Known() {
			set[a] = allowed
		}
	}
	return set, rows.Err()
}

// Replace borra y vuelve a insertar el set completo en una sola transacción
// (savepoint si el Querier ya es una tx).
func (r *PermissionRepo) Replace(ctx context.Context, userID string, set permission.Set) error {
	return pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("delete permissions: %w", err)
		}
		batch := &pgx.Batch{}
		for a, allowed := range set {
			batch.Queue(`INSERT INTO user_permissions (user_id, action, allowed) VALUES ($1, $2, $3)`,
				userID, string(a), allowed)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert permissions: %w", err)
		}
		return nil
	})
}
