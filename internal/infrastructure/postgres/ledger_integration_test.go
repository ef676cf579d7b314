package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/application/dto"
	"github.com/jhoicas/custodia-api/internal/application/inventory"
	"github.com/jhoicas/custodia-api/internal/application/usecase"
	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
	"github.com/jhoicas/custodia-api/internal/infrastructure/postgres"
	"github.com/jhoicas/custodia-api/pkg/config"
)

// Estas pruebas corren contra una base real: DATABASE_URL=postgres://... go test ./internal/infrastructure/postgres/...
// Cada prueba crea sus propias filas (ids y SKU únicos), no limpia la base.

type pgEnv struct {
	ledger     *inventory.LedgerUseCase
	assignment *inventory.AssignmentUseCase
	products   *usecase.ProductUseCase
	custodians *usecase.CustodianUseCase
	suppliers  *usecase.SupplierUseCase
	ctx        context.Context
}

func newPgEnv(t *testing.T) *pgEnv {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, LockTimeout: 10 * time.Second, MaxConns: 30})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))

	now := time.Now().UTC()
	admin := &entity.User{
		ID:           uuid.New().String(),
		Email:        "admin-" + uuid.New().String() + "@example.com",
		PasswordHash: "x",
		Name:         "Admin integración",
		Role:         entity.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, postgres.NewUserRepository(pool).Create(ctx, admin))

	txRunner := postgres.NewTxRunner(pool)
	return &pgEnv{
		ledger:     inventory.NewLedgerUseCase(txRunner, postgres.NewMovementRepository(pool), postgres.NewProductRepository(pool), nil, nil),
		assignment: inventory.NewAssignmentUseCase(txRunner, postgres.NewAssignmentRepository(pool), nil, nil),
		products:   usecase.NewProductUseCase(txRunner, postgres.NewProductRepository(pool), postgres.NewCategoryRepository(pool), postgres.NewSupplierRepository(pool)),
		custodians: usecase.NewCustodianUseCase(postgres.NewPersonnelRepository(pool), postgres.NewDestinationRepository(pool)),
		suppliers:  usecase.NewSupplierUseCase(postgres.NewSupplierRepository(pool), postgres.NewProductRepository(pool)),
		ctx:        authz.WithPrincipal(ctx, &authz.Principal{User: admin}),
	}
}

func (e *pgEnv) product(t *testing.T, stock int64) *dto.ProductResponse {
	t.Helper()
	p, err := e.products.Create(e.ctx, dto.CreateProductRequest{
		SKU:          "IT-" + uuid.New().String()[:8],
		Name:         "Producto integración",
		Price:        decimal.NewFromInt(1000),
		InitialStock: stock,
	})
	require.NoError(t, err)
	return p
}

// El FOR UPDATE sobre la fila del producto serializa el chequeo y el descuento.
func TestPostgres_RecordOutboundConcurrente(t *testing.T) {
	const (
		stock    = 23
		quantity = 4
		workers  = 20
	)
	e := newPgEnv(t)
	p := e.product(t, stock)

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		successes    int
		insufficient int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := e.ledger.RecordOutbound(e.ctx, inventory.MovementInput{ProductID: p.ID, Quantity: quantity, Reason: "venta"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrInsufficientStock):
				insufficient++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, stock/quantity, successes)
	assert.Equal(t, workers-stock/quantity, insufficient)

	check, err := e.ledger.VerifyProduct(e.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(stock-quantity*(stock/quantity)), check.Stock)
	assert.True(t, check.Consistent)
}

// Dos devoluciones simultáneas: la fila de la asignación queda bloqueada y solo una acredita stock.
func TestPostgres_ReturnConcurrente(t *testing.T) {
	const workers = 8
	e := newPgEnv(t)
	p := e.product(t, 5)
	person, err := e.custodians.CreatePersonnel(e.ctx, dto.CreatePersonnelRequest{Name: "Laura"})
	require.NoError(t, err)

	a, err := e.assignment.Create(e.ctx, inventory.CreateAssignmentInput{
		ProductID: p.ID,
		Target:    entity.Target{Kind: entity.TargetPersonnel, ID: person.ID},
		Quantity:  3,
	})
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		returned int
		invalid  int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := e.assignment.Return(e.ctx, a.ID, "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				returned++
			case errors.Is(err, domain.ErrInvalidState):
				invalid++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, returned)
	assert.Equal(t, workers-1, invalid)

	check, err := e.ledger.VerifyProduct(e.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), check.Stock)
	assert.True(t, check.Consistent)
}

// Un id que no es UUID no llega a Postgres como error 22P02: es NotFound.
func TestPostgres_IDMalFormado(t *testing.T) {
	e := newPgEnv(t)

	_, err := e.ledger.RecordOutbound(e.ctx, inventory.MovementInput{ProductID: "x", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.assignment.Return(e.ctx, "abc", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := e.assignment.ListByTarget(e.ctx, entity.Target{Kind: entity.TargetPersonnel, ID: "abc"})
	require.NoError(t, err)
	assert.Empty(t, list)

	movs, err := e.ledger.ListRecent(e.ctx, repository.MovementFilter{ProductID: "abc"})
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestPostgres_ProveedorYSusProductos(t *testing.T) {
	e := newPgEnv(t)

	s, err := e.suppliers.Create(e.ctx, dto.CreateSupplierRequest{Name: "Proveedor " + uuid.New().String()[:8]})
	require.NoError(t, err)
	p, err := e.products.Create(e.ctx, dto.CreateProductRequest{
		SKU: "SUP-" + uuid.New().String()[:8], Name: "Con proveedor", SupplierID: s.ID,
	})
	require.NoError(t, err)
	e.product(t, 0)

	list, err := e.suppliers.Products(e.ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
	assert.Equal(t, s.ID, list[0].SupplierID)

	require.NoError(t, e.suppliers.Deactivate(e.ctx, s.ID))
	got, err := e.suppliers.GetByID(e.ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = e.suppliers.GetByID(e.ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
