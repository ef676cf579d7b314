// Package authz transporta la identidad autenticada en el contexto y aplica la matriz de
// permisos antes de cada caso de uso.
package authz

import (
	"context"

	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
)

// Principal usuario autenticado más sus permisos vigentes y la sesión que lo respalda.
type Principal struct {
	User        *entity.User
	Permissions permission.Set
	SessionID   string
}

// Can evalúa la acción con la misma regla que usa el middleware HTTP.
func (p *Principal) Can(action permission.Action) bool {
	if p == nil || p.User == nil {
		return false
	}
	return permission.Evaluate(p.User.Role, p.Permissions, action) == permission.Allow
}

// UserID atajo para el id del usuario autenticado.
func (p *Principal) UserID() string {
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.ID
}

type principalKey struct{}

// WithPrincipal adjunta el principal al contexto.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext devuelve el principal adjunto, si lo hay.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil && p.User != nil
}

// Require es la compuerta que cada caso de uso invoca antes de tocar datos.
// Sin principal devuelve ErrUnauthenticated; con la acción denegada, ErrForbidden.
func Require(ctx context.Context, action permission.Action) (*Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if !p.Can(action) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// Authenticated exige solo una sesión válida (operaciones sobre la propia cuenta).
func Authenticated(ctx context.Context) (*Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return p, nil
}
