package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/application/inventory"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
	"github.com/jhoicas/custodia-api/internal/infrastructure/memory"
)

var testNow = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// principalCtx contexto autenticado con un rol y exactamente las acciones dadas.
func principalCtx(role string, actions ...permission.Action) context.Context {
	set := permission.Set{}
	for _, a := range actions {
		set[a] = true
	}
	return authz.WithPrincipal(context.Background(), &authz.Principal{
		User:        &entity.User{ID: uuid.New().String(), Name: "Tester", Role: role, Active: true},
		Permissions: set,
	})
}

func adminCtx() context.Context {
	return principalCtx(entity.RoleAdmin)
}

// seedProduct crea un producto con stock inicial respaldado por su movimiento de entrada.
func seedProduct(t *testing.T, store *memory.Store, stock, minimum int64) *entity.Product {
	t.Helper()
	ctx := context.Background()
	p := &entity.Product{
		ID:           uuid.New().String(),
		SKU:          "SKU-" + uuid.New().String()[:8],
		Name:         "Producto de prueba",
		Price:        decimal.NewFromInt(1000),
		Stock:        stock,
		StockMinimum: minimum,
		Active:       true,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
	require.NoError(t, store.Products().Create(ctx, p))
	if stock > 0 {
		require.NoError(t, store.Movements().Create(ctx, &entity.Movement{
			ID:        uuid.New().String(),
			ProductID: p.ID,
			Kind:      entity.MovementIN,
			Quantity:  stock,
			Reason:    entity.ReasonInitialStock,
			CreatedAt: testNow,
		}))
	}
	return p
}

func seedPersonnel(t *testing.T, store *memory.Store, active bool) entity.Target {
	t.Helper()
	p := &entity.Personnel{ID: uuid.New().String(), Name: "Persona 7", Active: active, CreatedAt: testNow}
	require.NoError(t, store.Personnel().Create(context.Background(), p))
	return entity.Target{Kind: entity.TargetPersonnel, ID: p.ID}
}

func seedDestination(t *testing.T, store *memory.Store) entity.Target {
	t.Helper()
	d := &entity.Destination{ID: uuid.New().String(), Name: "Obra Norte", Active: true, CreatedAt: testNow}
	require.NoError(t, store.Destinations().Create(context.Background(), d))
	return entity.Target{Kind: entity.TargetDestination, ID: d.ID}
}

func stockOf(t *testing.T, store *memory.Store, productID string) int64 {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

// requireLedgerInvariant stock materializado == suma del libro y nunca negativo.
func requireLedgerInvariant(t *testing.T, store *memory.Store, productID string) {
	t.Helper()
	sum, err := store.Movements().SumByProduct(context.Background(), productID)
	require.NoError(t, err)
	stock := stockOf(t, store, productID)
	require.Equal(t, sum, stock, "stock materializado distinto de la suma del libro")
	require.GreaterOrEqual(t, stock, int64(0))
}

// recordingPublisher guarda los eventos publicados.
type recordingPublisher struct {
	mu     sync.Mutex
	events []inventory.StockChanged
	err    error
}

func (p *recordingPublisher) PublishStockChanged(_ context.Context, ev inventory.StockChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Events() []inventory.StockChanged {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]inventory.StockChanged(nil), p.events...)
}

func newLedger(store *memory.Store, pub inventory.EventPublisher) *inventory.LedgerUseCase {
	return inventory.NewLedgerUseCase(store, store.Movements(), store.Products(), pub, nil).WithClock(fixedClock)
}

func newAssignments(store *memory.Store, pub inventory.EventPublisher) *inventory.AssignmentUseCase {
	return inventory.NewAssignmentUseCase(store, store.Assignments(), pub, nil).WithClock(fixedClock)
}

func repositoryFilterForProduct(productID string) repository.MovementFilter {
	return repository.MovementFilter{ProductID: productID}
}
