package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/application/dto"
	"github.com/jhoicas/custodia-api/internal/application/usecase"
	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
	"github.com/jhoicas/custodia-api/internal/infrastructure/memory"
)

func newProductUseCase(store *memory.Store) *usecase.ProductUseCase {
	return usecase.NewProductUseCase(store, store.Products(), store.Categories(), store.Suppliers())
}

func TestProductCreate_StockInicialComoEntrada(t *testing.T) {
	store := memory.New()
	uc := newProductUseCase(store)

	out, err := uc.Create(adminCtx(), dto.CreateProductRequest{
		SKU: " LAP-001 ", Name: "Portátil", Price: decimal.RequireFromString("2500000"),
		InitialStock: 10, StockMinimum: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "LAP-001", out.SKU)
	assert.EqualValues(t, 10, out.Stock)
	assert.False(t, out.LowStock)

	sum, err := store.Movements().SumByProduct(context.Background(), out.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, sum, "el stock coincide con el libro")

	movs, err := store.Movements().ListRecent(context.Background(), repository.MovementFilter{ProductID: out.ID})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementIN, movs[0].Kind)
	assert.Equal(t, entity.ReasonInitialStock, movs[0].Reason)
	assert.Equal(t, "admin-1", movs[0].ActorID)
}

func TestProductCreate_SinStockInicialNoGeneraMovimiento(t *testing.T) {
	store := memory.New()
	out, err := newProductUseCase(store).Create(adminCtx(), dto.CreateProductRequest{SKU: "A", Name: "A"})
	require.NoError(t, err)
	assert.True(t, out.LowStock, "0 <= 0")
	assert.Zero(t, store.MovementCount())
}

func TestProductCreate_Validaciones(t *testing.T) {
	store := memory.New()
	uc := newProductUseCase(store)
	ctx := adminCtx()

	_, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "X", Name: "x", InitialStock: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "X", Name: "x", CategoryID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "X", Name: "x"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "X", Name: "y"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProductCreate_FalloDelMovimientoDeshaceElProducto(t *testing.T) {
	store := memory.New()
	store.FailMovementCreate = assert.AnError
	_, err := newProductUseCase(store).Create(adminCtx(), dto.CreateProductRequest{SKU: "X", Name: "x", InitialStock: 3})
	require.Error(t, err)

	p, err := store.Products().GetBySKU(context.Background(), "X")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProductUpdate_NoTocaStock(t *testing.T) {
	store := memory.New()
	uc := newProductUseCase(store)
	created, err := uc.Create(adminCtx(), dto.CreateProductRequest{SKU: "X", Name: "x", InitialStock: 4})
	require.NoError(t, err)

	name := "Nuevo"
	minimum := int64(6)
	out, err := uc.Update(adminCtx(), created.ID, dto.UpdateProductRequest{Name: &name, StockMinimum: &minimum})
	require.NoError(t, err)
	assert.Equal(t, "Nuevo", out.Name)
	assert.EqualValues(t, 4, out.Stock)
	assert.True(t, out.LowStock)

	_, err = uc.Update(adminCtx(), "no-existe", dto.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductDeactivate_PermisoReemplazado(t *testing.T) {
	store := memory.New()
	uc := newProductUseCase(store)
	created, err := uc.Create(adminCtx(), dto.CreateProductRequest{SKU: "X", Name: "x", InitialStock: 1})
	require.NoError(t, err)

	std := &entity.User{ID: "std-1", Email: "std@example.com", Name: "Std", Role: entity.RoleUsuario, Active: true}
	require.NoError(t, store.Users().Create(context.Background(), std))
	require.NoError(t, store.Permissions().Replace(context.Background(), std.ID, permission.DefaultsFor(std.Role)))

	current := func() context.Context {
		set, err := store.Permissions().Get(context.Background(), std.ID)
		require.NoError(t, err)
		return userCtx(std, set)
	}

	err = uc.Deactivate(current(), created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	perms := authz.NewPermissionUseCase(store.Users(), store.Permissions())
	_, err = perms.Replace(adminCtx(), std.ID, map[string]bool{"eliminar_productos": true})
	require.NoError(t, err)

	require.NoError(t, uc.Deactivate(current(), created.ID))
	p, err := store.Products().GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, p.Active)
}

func TestProductList_SoloActivosYFiltro(t *testing.T) {
	store := memory.New()
	uc := newProductUseCase(store)
	ctx := adminCtx()
	a, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A-1", Name: "Alicate"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "B-1", Name: "Broca"})
	require.NoError(t, err)
	require.NoError(t, uc.Deactivate(ctx, a.ID))

	out, err := uc.List(ctx, "", "", "", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "B-1", out.Items[0].SKU)
	assert.Equal(t, 20, out.Page.Limit)

	visitor := userCtx(&entity.User{ID: "v", Role: entity.RoleVisitante}, nil)
	_, err = uc.List(visitor, "", "", "", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCategoryCreate(t *testing.T) {
	store := memory.New()
	uc := usecase.NewCategoryUseCase(store.Categories())

	c, err := uc.Create(adminCtx(), dto.CreateCategoryRequest{Name: "Herramientas"})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)

	_, err = uc.Create(adminCtx(), dto.CreateCategoryRequest{Name: "herramientas"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	list, err := uc.List(adminCtx())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
