package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/custodia-api/internal/application/dto"
	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/pkg/logger"
)

// apiError par estado HTTP + código estable para un error de dominio.
type apiError struct {
	status  int
	code    string
	message string
}

// errorTable traduce los errores de dominio; el orden importa porque ErrRetry puede venir
// unido (errors.Join) con el error original del driver.
var errorTable = []struct {
	target error
	out    apiError
}{
	{domain.ErrRetry, apiError{fiber.StatusServiceUnavailable, "RETRY", "operación en conflicto, reintente"}},
	{domain.ErrInvalidInput, apiError{fiber.StatusBadRequest, "VALIDATION", "entrada inválida"}},
	{domain.ErrUnauthenticated, apiError{fiber.StatusUnauthorized, "UNAUTHENTICATED", "sesión inválida o expirada"}},
	{domain.ErrInvalidCredentials, apiError{fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "email o contraseña incorrectos"}},
	{domain.ErrForbidden, apiError{fiber.StatusForbidden, "FORBIDDEN", "no tiene permiso para esta operación"}},
	{domain.ErrNotFound, apiError{fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"}},
	{domain.ErrInsufficientStock, apiError{fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente"}},
	{domain.ErrInvalidState, apiError{fiber.StatusConflict, "INVALID_STATE", "estado inválido para la operación"}},
	{domain.ErrEmailAlreadyExists, apiError{fiber.StatusConflict, "DUPLICATE", "el email ya está registrado"}},
	{domain.ErrDuplicate, apiError{fiber.StatusConflict, "DUPLICATE", "recurso duplicado"}},
}

func classify(err error) (apiError, bool) {
	for _, e := range errorTable {
		if errors.Is(err, e.target) {
			return e.out, true
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apiError{fiber.StatusServiceUnavailable, "RETRY", "tiempo de espera agotado, reintente"}, true
	}
	return apiError{}, false
}

// ErrorHandler handler de errores de Fiber: traduce errores de dominio a dto.ErrorResponse.
// Los errores no clasificados se registran y salen como 500 sin detalle interno.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx, err error) error {
		if out, ok := classify(err); ok {
			return c.Status(out.status).JSON(dto.ErrorResponse{Code: out.code, Message: out.message})
		}
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: fiberCode(fe.Code), Message: fe.Message})
		}
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("user_id", GetUserID(c)).
			Msg("error no controlado")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	case fiber.StatusBadRequest:
		return "INVALID_BODY"
	default:
		return "HTTP_ERROR"
	}
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func validation(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
}
