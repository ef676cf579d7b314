package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/application/dto"
	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
	apphttp "github.com/jhoicas/custodia-api/internal/interfaces/http"
	"github.com/jhoicas/custodia-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// fakeValidator resuelve tokens fijos a principals.
type fakeValidator struct {
	principals map[string]*authz.Principal
	err        error
}

func (f fakeValidator) Validate(_ context.Context, token string) (*authz.Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.principals[token]
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return p, nil
}

func principal(role string, actions ...permission.Action) *authz.Principal {
	set := permission.Set{}
	for _, a := range actions {
		set[a] = true
	}
	return &authz.Principal{User: &entity.User{ID: "u-" + role, Role: role, Active: true}, Permissions: set}
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware con un validador falso
//   - RequirePermission(crear_salida)
//   - Un handler dummy que devuelve el usuario del contexto de la petición
func buildTestApp(v apphttp.TokenValidator) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop())})
	app.Get("/protected",
		apphttp.AuthMiddleware(v),
		apphttp.RequirePermission(permission.CrearSalida),
		func(c *fiber.Ctx) error {
			p, ok := authz.FromContext(c.UserContext())
			if !ok {
				return c.SendStatus(fiber.StatusInternalServerError)
			}
			return c.JSON(fiber.Map{"user_id": p.UserID(), "local": apphttp.GetUserID(c), "token": apphttp.GetToken(c)})
		},
	)
	return app
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func defaultValidator() fakeValidator {
	return fakeValidator{principals: map[string]*authz.Principal{
		"tok-admin":     principal(entity.RoleAdmin),
		"tok-usuario":   principal(entity.RoleUsuario, permission.CrearSalida),
		"tok-visitante": principal(entity.RoleVisitante, permission.VerProductos),
	}}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinHeader(t *testing.T) {
	resp := doRequest(t, buildTestApp(defaultValidator()), "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHENTICATED", decodeError(t, resp).Code)
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	app := buildTestApp(defaultValidator())
	for _, h := range []string{"tok-admin", "Basic tok-admin", "Bearer ", "Bearer"} {
		resp := doRequest(t, app, h)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, h)
	}
}

func TestAuthMiddleware_TokenDesconocido(t *testing.T) {
	resp := doRequest(t, buildTestApp(defaultValidator()), "Bearer otro")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHENTICATED", decodeError(t, resp).Code)
}

func TestAuthMiddleware_PrincipalEnContexto(t *testing.T) {
	resp := doRequest(t, buildTestApp(defaultValidator()), "bearer tok-usuario")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "u-usuario", body["user_id"])
	assert.Equal(t, "u-usuario", body["local"])
	assert.Equal(t, "tok-usuario", body["token"])
}

// Un fallo de infraestructura del validador no se disfraza de 401.
func TestAuthMiddleware_FalloDelValidador(t *testing.T) {
	resp := doRequest(t, buildTestApp(fakeValidator{err: assert.AnError}), "Bearer tok-admin")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "INTERNAL", decodeError(t, resp).Code)

	resp = doRequest(t, buildTestApp(fakeValidator{err: domain.ErrRetry}), "Bearer tok-admin")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequirePermission
// ──────────────────────────────────────────────────────────────────────────────

func TestRequirePermission_AdminSiemprePasa(t *testing.T) {
	resp := doRequest(t, buildTestApp(defaultValidator()), "Bearer tok-admin")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequirePermission_SinLaAccion(t *testing.T) {
	resp := doRequest(t, buildTestApp(defaultValidator()), "Bearer tok-visitante")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Code)
}

func TestRequirePermission_SinAutenticacion(t *testing.T) {
	app := fiber.New()
	app.Get("/x", apphttp.RequirePermission(permission.VerProductos), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
