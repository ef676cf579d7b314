package entity

import "time"

// Roles válidos para User. El rol solo define los permisos iniciales, salvo admin que los tiene todos.
const (
	RoleAdmin     = "admin"
	RoleUsuario   = "usuario"
	RoleVisitante = "visitante"
)

// User representa una identidad del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string
	Active       bool
	LastAccessAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin indica si el usuario tiene el rol administrador.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
