package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/custodia-api/internal/application/auth"
	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/application/dto"
	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
	"github.com/jhoicas/custodia-api/internal/infrastructure/memory"
)

const testSecret = "test-secret"

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

type fixture struct {
	store *memory.Store
	uc    *auth.AuthUseCase
	clock *clock
	user  *entity.User
}

func newFixture(t *testing.T, active bool) *fixture {
	t.Helper()
	store := memory.New()
	hash, err := auth.HashPassword("secreto123")
	require.NoError(t, err)
	user := &entity.User{
		ID:           "u-1",
		Email:        "ana@example.com",
		PasswordHash: hash,
		Name:         "Ana",
		Role:         entity.RoleUsuario,
		Active:       active,
	}
	require.NoError(t, store.Users().Create(context.Background(), user))
	require.NoError(t, store.Permissions().Replace(context.Background(), user.ID, permission.DefaultsFor(user.Role)))

	c := &clock{t: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
	uc := auth.NewAuthUseCase(store.Users(), store.Permissions(), store.Sessions(),
		auth.JWTConfig{Secret: testSecret, Issuer: "custodia-test"}, nil).WithClock(c.now)
	return &fixture{store: store, uc: uc, clock: c, user: user}
}

func (f *fixture) login(t *testing.T) *auth.LoginResult {
	t.Helper()
	res, err := f.uc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "secreto123"}, "10.0.0.1", "test")
	require.NoError(t, err)
	return res
}

func TestLogin_Exitoso(t *testing.T) {
	f := newFixture(t, true)

	res, err := f.uc.Login(context.Background(), dto.LoginRequest{Email: "  ANA@example.com ", Password: "secreto123"}, "10.0.0.1", "curl")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, f.user.ID, res.Session.UserID)
	assert.Equal(t, f.clock.t.Add(auth.DefaultSessionTTL), res.Session.ExpiresAt)
	assert.Equal(t, "10.0.0.1", res.Session.IP)
	assert.True(t, res.Permissions[permission.CrearEntrada])
	assert.Equal(t, 1, f.store.SessionCount())

	stored, err := f.store.Users().GetByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastAccessAt)
	assert.Equal(t, f.clock.t, *stored.LastAccessAt)
}

func TestLogin_FalloAlLeerPermisosNoDejaSesion(t *testing.T) {
	f := newFixture(t, true)
	f.store.FailPermissionRead = errors.New("conexión perdida")

	_, err := f.uc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "secreto123"}, "10.0.0.1", "test")
	require.Error(t, err)
	assert.Zero(t, f.store.SessionCount())
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.uc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "otra-clave"}, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.uc.Login(context.Background(), dto.LoginRequest{Email: "nadie@example.com", Password: "secreto123"}, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	assert.Zero(t, f.store.SessionCount())
}

func TestLogin_UsuarioDesactivado(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.uc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "secreto123"}, "", "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Zero(t, f.store.SessionCount(), "no se crea sesión")
}

func TestValidate_TokenValido(t *testing.T) {
	f := newFixture(t, true)
	res := f.login(t)

	p, err := f.uc.Validate(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, p.UserID())
	assert.Equal(t, res.Session.ID, p.SessionID)
	assert.True(t, p.Can(permission.VerProductos))
	assert.False(t, p.Can(permission.EliminarProductos))
}

func TestValidate_TokenInvalido(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.uc.Validate(context.Background(), "no-es-un-jwt")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	other := auth.NewAuthUseCase(f.store.Users(), f.store.Permissions(), f.store.Sessions(),
		auth.JWTConfig{Secret: "otro-secreto"}, nil).WithClock(f.clock.now)
	res := f.login(t)
	_, err = other.Validate(context.Background(), res.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestValidate_DespuesDeLogout(t *testing.T) {
	f := newFixture(t, true)
	res := f.login(t)

	require.NoError(t, f.uc.Logout(context.Background(), res.Token))
	assert.Zero(t, f.store.SessionCount())

	_, err := f.uc.Validate(context.Background(), res.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	assert.NoError(t, f.uc.Logout(context.Background(), res.Token), "logout repetido no falla")
	assert.ErrorIs(t, f.uc.Logout(context.Background(), "basura"), domain.ErrUnauthenticated)
}

func TestValidate_SesionExpirada(t *testing.T) {
	f := newFixture(t, true)
	res := f.login(t)

	f.clock.t = f.clock.t.Add(auth.DefaultSessionTTL + time.Second)
	_, err := f.uc.Validate(context.Background(), res.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestValidate_SesionBorradaAunqueElTokenSigaVigente(t *testing.T) {
	f := newFixture(t, true)
	res := f.login(t)

	require.NoError(t, f.store.Sessions().Delete(context.Background(), res.Session.ID))
	_, err := f.uc.Validate(context.Background(), res.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestValidate_UsuarioDesactivadoTrasLogin(t *testing.T) {
	f := newFixture(t, true)
	res := f.login(t)

	f.user.Active = false
	require.NoError(t, f.store.Users().Update(context.Background(), f.user))

	_, err := f.uc.Validate(context.Background(), res.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestValidate_PermisosSeLeenEnCadaPeticion(t *testing.T) {
	f := newFixture(t, true)
	res := f.login(t)

	p, err := f.uc.Validate(context.Background(), res.Token)
	require.NoError(t, err)
	assert.False(t, p.Can(permission.EliminarProductos))

	set := permission.DefaultsFor(entity.RoleUsuario)
	set[permission.EliminarProductos] = true
	require.NoError(t, f.store.Permissions().Replace(context.Background(), f.user.ID, set))

	p, err = f.uc.Validate(context.Background(), res.Token)
	require.NoError(t, err)
	assert.True(t, p.Can(permission.EliminarProductos))
}

func TestForceInvalidateAll(t *testing.T) {
	f := newFixture(t, true)
	first := f.login(t)
	second := f.login(t)

	n, err := f.uc.ForceInvalidateAll(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	for _, tok := range []string{first.Token, second.Token} {
		_, err := f.uc.Validate(context.Background(), tok)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	}
}

func TestChangeOwnPassword(t *testing.T) {
	f := newFixture(t, true)
	ctx := authz.WithPrincipal(context.Background(), &authz.Principal{User: f.user})

	err := f.uc.ChangeOwnPassword(ctx, dto.ChangePasswordRequest{CurrentPassword: "mala", NewPassword: "nueva-clave"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	err = f.uc.ChangeOwnPassword(ctx, dto.ChangePasswordRequest{CurrentPassword: "secreto123", NewPassword: "123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, f.uc.ChangeOwnPassword(ctx, dto.ChangePasswordRequest{CurrentPassword: "secreto123", NewPassword: "nueva-clave"}))

	_, err = f.uc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "secreto123"}, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = f.uc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "nueva-clave"}, "", "")
	assert.NoError(t, err)

	assert.ErrorIs(t, f.uc.ChangeOwnPassword(context.Background(), dto.ChangePasswordRequest{}), domain.ErrUnauthenticated)
}

func TestPurgeExpired(t *testing.T) {
	f := newFixture(t, true)
	f.login(t)
	f.clock.t = f.clock.t.Add(time.Hour)
	f.login(t)

	f.clock.t = f.clock.t.Add(auth.DefaultSessionTTL - 30*time.Minute)
	n, err := f.uc.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 1, f.store.SessionCount())
}
