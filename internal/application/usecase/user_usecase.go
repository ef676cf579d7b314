package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/custodia-api/internal/application/auth"
	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/application/dto"
	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
)

// UserUseCase administración de usuarios. El rol solo decide los permisos iniciales;
// cambiarlo después no toca la matriz (para eso está el restablecimiento explícito).
type UserUseCase struct {
	txRunner UserTxRunner
	repo     repository.UserRepository
	permRepo repository.PermissionRepository
	sessions SessionInvalidator
	now      func() time.Time
}

// NewUserUseCase construye el caso de uso con los puertos de persistencia.
func NewUserUseCase(
	txRunner UserTxRunner,
	repo repository.UserRepository,
	permRepo repository.PermissionRepository,
	sessions SessionInvalidator,
) *UserUseCase {
	return &UserUseCase{txRunner: txRunner, repo: repo, permRepo: permRepo, sessions: sessions, now: time.Now}
}

// Create crea un usuario con los permisos por defecto de su rol, en una sola transacción
// (requiere crear_usuarios).
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if _, err := authz.Require(ctx, permission.CrearUsuarios); err != nil {
		return nil, err
	}
	user, perms, err := uc.create(ctx, in)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user, perms), nil
}

func (uc *UserUseCase) create(ctx context.Context, in dto.CreateUserRequest) (*entity.User, permission.Set, error) {
	email := auth.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if !strings.Contains(email, "@") || name == "" || !permission.ValidRole(in.Role) {
		return nil, nil, domain.ErrInvalidInput
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, nil, err
	}
	now := uc.now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         in.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	perms := permission.DefaultsFor(in.Role)
	err = uc.txRunner.RunUsers(ctx, func(userRepo repository.UserRepository, permRepo repository.PermissionRepository) error {
		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}
		return permRepo.Replace(ctx, user.ID, perms)
	})
	if err != nil {
		return nil, nil, err
	}
	return user, perms, nil
}

// Bootstrap crea el primer administrador solo si no existe ningún usuario.
// No exige principal: lo invocan el seeder y el arranque del servicio.
func (uc *UserUseCase) Bootstrap(ctx context.Context, email, password, name string) (bool, error) {
	n, err := uc.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if name == "" {
		name = "Administrador"
	}
	if _, _, err := uc.create(ctx, dto.CreateUserRequest{
		Email:    email,
		Password: password,
		Name:     name,
		Role:     entity.RoleAdmin,
	}); err != nil {
		return false, err
	}
	return true, nil
}

// List lista usuarios (requiere ver_usuarios).
func (uc *UserUseCase) List(ctx context.Context) ([]dto.UserResponse, error) {
	if _, err := authz.Require(ctx, permission.VerUsuarios); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, *toUserResponse(u, nil))
	}
	return out, nil
}

// GetByID obtiene un usuario con sus permisos. Cada usuario puede verse a sí mismo;
// ver a otros requiere ver_usuarios.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	p, err := authz.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	if p.UserID() != id && !p.Can(permission.VerUsuarios) {
		return nil, domain.ErrForbidden
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	perms, err := uc.permRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user, perms.Complete()), nil
}

// Update cambia nombre, rol o estado (requiere editar_usuarios). Desactivar por esta vía
// sigue las reglas de Deactivate.
func (uc *UserUseCase) Update(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	p, err := authz.Require(ctx, permission.EditarUsuarios)
	if err != nil {
		return nil, err
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		user.Name = name
	}
	if in.Role != nil {
		if !permission.ValidRole(*in.Role) {
			return nil, domain.ErrInvalidInput
		}
		user.Role = *in.Role
	}
	deactivating := false
	if in.Active != nil {
		if !*in.Active && user.Active {
			if id == p.UserID() {
				return nil, domain.ErrInvalidInput
			}
			deactivating = true
		}
		user.Active = *in.Active
	}
	user.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	if deactivating {
		if _, err := uc.sessions.ForceInvalidateAll(ctx, id); err != nil {
			return nil, err
		}
	}
	return toUserResponse(user, nil), nil
}

// Deactivate desactiva un usuario y cierra sus sesiones (requiere eliminar_usuarios).
// Un usuario no puede desactivarse a sí mismo.
func (uc *UserUseCase) Deactivate(ctx context.Context, id string) error {
	p, err := authz.Require(ctx, permission.EliminarUsuarios)
	if err != nil {
		return err
	}
	if id == p.UserID() {
		return domain.ErrInvalidInput
	}
	return uc.setActive(ctx, id, false)
}

// Activate reactiva un usuario (requiere editar_usuarios).
func (uc *UserUseCase) Activate(ctx context.Context, id string) error {
	if _, err := authz.Require(ctx, permission.EditarUsuarios); err != nil {
		return err
	}
	return uc.setActive(ctx, id, true)
}

func (uc *UserUseCase) setActive(ctx context.Context, id string, active bool) error {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrNotFound
	}
	user.Active = active
	user.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return err
	}
	if !active {
		if _, err := uc.sessions.ForceInvalidateAll(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// SetPassword fija la contraseña de otro usuario y cierra todas sus sesiones
// (requiere editar_usuarios).
func (uc *UserUseCase) SetPassword(ctx context.Context, id string, in dto.SetPasswordRequest) error {
	if _, err := authz.Require(ctx, permission.EditarUsuarios); err != nil {
		return err
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrNotFound
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return err
	}
	if err := uc.repo.UpdatePassword(ctx, id, hash, uc.now()); err != nil {
		return err
	}
	_, err = uc.sessions.ForceInvalidateAll(ctx, id)
	return err
}

// Roles lista los roles con sus permisos por defecto (requiere ver_usuarios).
func (uc *UserUseCase) Roles(ctx context.Context) ([]dto.RoleResponse, error) {
	if _, err := authz.Require(ctx, permission.VerUsuarios); err != nil {
		return nil, err
	}
	roles := []string{entity.RoleAdmin, entity.RoleUsuario, entity.RoleVisitante}
	out := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, dto.RoleResponse{Name: r, Permissions: permission.DefaultsFor(r).ToMap()})
	}
	return out, nil
}

// ToUserResponse convierte a DTO; perms nil omite los permisos.
func ToUserResponse(u *entity.User, perms permission.Set) *dto.UserResponse {
	return toUserResponse(u, perms)
}

func toUserResponse(u *entity.User, perms permission.Set) *dto.UserResponse {
	if u == nil {
		return nil
	}
	out := &dto.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		Active:       u.Active,
		LastAccessAt: u.LastAccessAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if perms != nil {
		out.Permissions = perms.ToMap()
	}
	return out
}
