package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/application/dto"
	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
)

// Locals keys para el usuario autenticado y su token en Fiber.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
	LocalToken  = "token"
)

// TokenValidator resuelve un token Bearer al principal vigente (sesión viva, usuario activo).
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*authz.Principal, error)
}

// AuthMiddleware valida el Bearer Token contra la sesión y deja el Principal en el
// UserContext de la petición; los casos de uso lo leen con authz.FromContext.
func AuthMiddleware(v TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHENTICATED", Message: "Authorization: Bearer <token> requerido"})
		}
		p, err := v.Validate(c.UserContext(), tokenString)
		if errors.Is(err, domain.ErrUnauthenticated) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHENTICATED", Message: "token inválido o sesión expirada"})
		}
		if err != nil {
			return err
		}
		c.SetUserContext(authz.WithPrincipal(c.UserContext(), p))
		c.Locals(LocalUserID, p.UserID())
		c.Locals(LocalRole, p.User.Role)
		c.Locals(LocalToken, tokenString)
		return c.Next()
	}
}

// RequirePermission corta con 403 si el principal no puede ejecutar la acción.
// Usa la misma regla (permission.Evaluate) que los casos de uso.
func RequirePermission(action permission.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := GetPrincipal(c)
		if p == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHENTICATED", Message: "autenticación requerida"})
		}
		if !p.Can(action) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "permiso requerido: " + string(action)})
		}
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}

// GetPrincipal devuelve el principal autenticado o nil.
func GetPrincipal(c *fiber.Ctx) *authz.Principal {
	p, _ := authz.FromContext(c.UserContext())
	return p
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	v := c.Locals(LocalUserID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetToken devuelve el token de la petición (después del middleware de auth).
func GetToken(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalToken).(string)
	return s
}
