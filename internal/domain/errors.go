package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// La capa HTTP traduce cada uno a un código estable; ver interfaces/http/errors.go.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvalidState       = errors.New("estado inválido para la operación")
	ErrForbidden          = errors.New("acceso denegado")
	ErrUnauthenticated    = errors.New("sesión inválida o expirada")
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	// ErrRetry conflicto transitorio (espera de bloqueo cancelada, serialización); el cliente puede reintentar.
	ErrRetry = errors.New("operación en conflicto, reintente")
)
