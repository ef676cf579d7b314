package authz

import (
	"context"
	"fmt"

	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
)

// PermissionUseCase administración de la matriz de permisos por usuario.
type PermissionUseCase struct {
	userRepo repository.UserRepository
	permRepo repository.PermissionRepository
}

// NewPermissionUseCase construye el caso de uso.
func NewPermissionUseCase(userRepo repository.UserRepository, permRepo repository.PermissionRepository) *PermissionUseCase {
	return &PermissionUseCase{userRepo: userRepo, permRepo: permRepo}
}

// Get devuelve el conjunto completo de un usuario (acciones ausentes en false).
func (uc *PermissionUseCase) Get(ctx context.Context, userID string) (permission.Set, error) {
	p, err := Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	if p.UserID() != userID && !p.Can(permission.VerUsuarios) {
		return nil, domain.ErrForbidden
	}
	if err := uc.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	set, err := uc.permRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get permissions: %w", err)
	}
	return set.Complete(), nil
}

// Replace sustituye el conjunto completo del usuario. No mezcla con el anterior:
// toda acción ausente en input queda en false. Un nombre desconocido invalida la petición.
func (uc *PermissionUseCase) Replace(ctx context.Context, userID string, input map[string]bool) (permission.Set, error) {
	if _, err := Require(ctx, permission.EditarUsuarios); err != nil {
		return nil, err
	}
	set, ok := permission.Replacement(input)
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := uc.permRepo.Replace(ctx, userID, set); err != nil {
		return nil, fmt.Errorf("replace permissions: %w", err)
	}
	return set, nil
}

// Reset vuelve a aplicar los permisos por defecto del rol actual del usuario.
func (uc *PermissionUseCase) Reset(ctx context.Context, userID string) (permission.Set, error) {
	if _, err := Require(ctx, permission.EditarUsuarios); err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	set := permission.DefaultsFor(user.Role)
	if err := uc.permRepo.Replace(ctx, userID, set); err != nil {
		return nil, fmt.Errorf("reset permissions: %w", err)
	}
	return set, nil
}

func (uc *PermissionUseCase) ensureUser(ctx context.Context, userID string) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrNotFound
	}
	return nil
}
