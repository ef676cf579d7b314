package authz_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
	"github.com/jhoicas/custodia-api/internal/infrastructure/memory"
)

func ctxWith(user *entity.User, set permission.Set) context.Context {
	return authz.WithPrincipal(context.Background(), &authz.Principal{User: user, Permissions: set})
}

func TestRequire_SinPrincipal(t *testing.T) {
	_, err := authz.Require(context.Background(), permission.VerProductos)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = authz.Authenticated(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestRequire_AdminSiemprePermite(t *testing.T) {
	ctx := ctxWith(&entity.User{ID: "a", Role: entity.RoleAdmin}, nil)
	p, err := authz.Require(ctx, permission.EliminarUsuarios)
	require.NoError(t, err)
	assert.Equal(t, "a", p.UserID())
}

func TestRequire_UsuarioSegunSet(t *testing.T) {
	ctx := ctxWith(&entity.User{ID: "u", Role: entity.RoleUsuario}, permission.Set{permission.CrearEntrada: true, permission.CrearSalida: false})

	_, err := authz.Require(ctx, permission.CrearEntrada)
	assert.NoError(t, err)
	_, err = authz.Require(ctx, permission.CrearSalida)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = authz.Require(ctx, permission.Action("accion_desconocida"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func newPermissionFixture(t *testing.T) (*memory.Store, *authz.PermissionUseCase, *entity.User) {
	t.Helper()
	store := memory.New()
	u := &entity.User{ID: "user-std", Email: "std@example.com", Name: "Std", Role: entity.RoleUsuario, Active: true, CreatedAt: time.Now()}
	require.NoError(t, store.Users().Create(context.Background(), u))
	require.NoError(t, store.Permissions().Replace(context.Background(), u.ID, permission.DefaultsFor(u.Role)))
	return store, authz.NewPermissionUseCase(store.Users(), store.Permissions()), u
}

func TestReplace_NoMezclaConElAnterior(t *testing.T) {
	store, uc, u := newPermissionFixture(t)
	admin := ctxWith(&entity.User{ID: "admin", Role: entity.RoleAdmin}, nil)

	set, err := uc.Replace(admin, u.ID, map[string]bool{"eliminar_productos": true})
	require.NoError(t, err)
	assert.True(t, set[permission.EliminarProductos])

	stored, err := store.Permissions().Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, stored[permission.EliminarProductos])
	// ver_productos venía de los valores por defecto y no se envió: queda revocado.
	assert.False(t, stored[permission.VerProductos])
	assert.Len(t, stored, len(permission.All()))
}

func TestReplace_NombreDesconocido(t *testing.T) {
	store, uc, u := newPermissionFixture(t)
	admin := ctxWith(&entity.User{ID: "admin", Role: entity.RoleAdmin}, nil)

	_, err := uc.Replace(admin, u.ID, map[string]bool{"ver_productos": true, "volar": true})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	stored, err := store.Permissions().Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, stored[permission.VerProductos], "el set anterior queda intacto")
}

func TestReplace_RequiereEditarUsuarios(t *testing.T) {
	_, uc, u := newPermissionFixture(t)
	self := ctxWith(u, permission.DefaultsFor(u.Role))

	_, err := uc.Replace(self, u.ID, map[string]bool{"editar_usuarios": true})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestReplace_UsuarioInexistente(t *testing.T) {
	_, uc, _ := newPermissionFixture(t)
	admin := ctxWith(&entity.User{ID: "admin", Role: entity.RoleAdmin}, nil)

	_, err := uc.Replace(admin, "no-existe", map[string]bool{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReset_ReaplicaPerfilDelRol(t *testing.T) {
	store, uc, u := newPermissionFixture(t)
	admin := ctxWith(&entity.User{ID: "admin", Role: entity.RoleAdmin}, nil)
	_, err := uc.Replace(admin, u.ID, map[string]bool{})
	require.NoError(t, err)

	set, err := uc.Reset(admin, u.ID)
	require.NoError(t, err)
	assert.Equal(t, permission.DefaultsFor(entity.RoleUsuario), set)

	stored, err := store.Permissions().Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, stored[permission.CrearEntrada])
}

func TestGet_PropioOConVerUsuarios(t *testing.T) {
	_, uc, u := newPermissionFixture(t)

	own, err := uc.Get(ctxWith(u, nil), u.ID)
	require.NoError(t, err)
	assert.True(t, own[permission.VerProductos])

	other := ctxWith(&entity.User{ID: "x", Role: entity.RoleVisitante}, nil)
	_, err = uc.Get(other, u.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
