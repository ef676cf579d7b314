package dto

import "time"

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Role     string `json:"role" validate:"required,oneof=admin usuario visitante"`
}

// UpdateUserRequest cambios de nombre, rol o estado. El rol no modifica los permisos.
type UpdateUserRequest struct {
	Name   *string `json:"name"`
	Role   *string `json:"role" validate:"omitempty,oneof=admin usuario visitante"`
	Active *bool   `json:"active"`
}

// SetPasswordRequest contraseña nueva fijada por un administrador.
type SetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// ChangePasswordRequest cambio de la propia contraseña.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Name         string          `json:"name"`
	Role         string          `json:"role"`
	Active       bool            `json:"active"`
	LastAccessAt *time.Time      `json:"last_access_at,omitempty"`
	Permissions  map[string]bool `json:"permissions,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// RoleResponse rol disponible con sus permisos por defecto.
type RoleResponse struct {
	Name        string          `json:"name"`
	Permissions map[string]bool `json:"permissions"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT, expiración de la sesión y usuario con permisos.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// PermissionsRequest reemplazo completo del conjunto de permisos.
type PermissionsRequest struct {
	Permissions map[string]bool `json:"permissions" validate:"required"`
}

// PermissionsResponse conjunto completo de permisos de un usuario.
type PermissionsResponse struct {
	UserID      string          `json:"user_id"`
	Permissions map[string]bool `json:"permissions"`
}
