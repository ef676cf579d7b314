package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/application/inventory"
	"github.com/jhoicas/custodia-api/internal/application/report"
	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
	"github.com/jhoicas/custodia-api/internal/infrastructure/memory"
)

type fakeRenderer struct {
	got *report.CustodyReport
}

func (f *fakeRenderer) RenderCustody(_ context.Context, r *report.CustodyReport) ([]byte, error) {
	f.got = r
	return []byte("%PDF-fake"), nil
}

func adminCtx() context.Context {
	return authz.WithPrincipal(context.Background(), &authz.Principal{
		User: &entity.User{ID: "admin-1", Name: "Admin", Role: entity.RoleAdmin, Active: true},
	})
}

func seed(t *testing.T) (*memory.Store, entity.Target) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	for _, p := range []*entity.Product{
		{ID: "p1", SKU: "TAL-1", Name: "Taladro", Price: decimal.RequireFromString("150000.50"), Stock: 10, Active: true, CreatedAt: now},
		{ID: "p2", SKU: "CAS-1", Name: "Casco", Price: decimal.NewFromInt(20000), Stock: 10, Active: true, CreatedAt: now},
	} {
		require.NoError(t, store.Products().Create(ctx, p))
		require.NoError(t, store.Movements().Create(ctx, &entity.Movement{ID: "in-" + p.ID, ProductID: p.ID, Kind: entity.MovementIN, Quantity: 10, Reason: entity.ReasonInitialStock, CreatedAt: now}))
	}
	person := &entity.Personnel{ID: "per-1", Name: "Laura Gómez", Active: true, CreatedAt: now}
	require.NoError(t, store.Personnel().Create(ctx, person))
	target := entity.Target{Kind: entity.TargetPersonnel, ID: person.ID}

	assignments := inventory.NewAssignmentUseCase(store, store.Assignments(), nil, nil)
	_, err := assignments.Create(adminCtx(), inventory.CreateAssignmentInput{ProductID: "p1", Target: target, Quantity: 2})
	require.NoError(t, err)
	_, err = assignments.Create(adminCtx(), inventory.CreateAssignmentInput{ProductID: "p2", Target: target, Quantity: 3})
	require.NoError(t, err)
	returned, err := assignments.Create(adminCtx(), inventory.CreateAssignmentInput{ProductID: "p2", Target: target, Quantity: 1})
	require.NoError(t, err)
	_, err = assignments.Return(adminCtx(), returned.ID, "")
	require.NoError(t, err)
	return store, target
}

func newUseCase(store *memory.Store, r report.PDFRenderer) *report.CustodyUseCase {
	return report.NewCustodyUseCase(store.Assignments(), store.Products(), store.Personnel(), store.Destinations(), r)
}

func TestCustody_SoloAsignacionesAbiertas(t *testing.T) {
	store, target := seed(t)

	rep, err := newUseCase(store, nil).Custody(adminCtx(), target)
	require.NoError(t, err)
	assert.Equal(t, "Laura Gómez", rep.TargetName)
	assert.Equal(t, "Admin", rep.GeneratedBy)
	require.Len(t, rep.Rows, 2)
	assert.Equal(t, 2, rep.Summary.Items)
	assert.EqualValues(t, 5, rep.Summary.Units)
	assert.True(t, rep.Summary.Value.Equal(decimal.RequireFromString("360001")), rep.Summary.Value.String())
}

func TestCustody_Errores(t *testing.T) {
	store, _ := seed(t)
	uc := newUseCase(store, nil)

	_, err := uc.Custody(adminCtx(), entity.Target{Kind: entity.TargetPersonnel, ID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.Custody(adminCtx(), entity.Target{Kind: "bodega", ID: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	visitor := authz.WithPrincipal(context.Background(), &authz.Principal{
		User:        &entity.User{ID: "v", Role: entity.RoleVisitante},
		Permissions: permission.DefaultsFor(entity.RoleVisitante),
	})
	_, err = uc.Custody(visitor, entity.Target{Kind: entity.TargetPersonnel, ID: "per-1"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCustodyPDF(t *testing.T) {
	store, target := seed(t)
	r := &fakeRenderer{}

	pdf, filename, err := newUseCase(store, r).CustodyPDF(adminCtx(), target)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), pdf)
	assert.Contains(t, filename, "custodia_personal_")
	require.NotNil(t, r.got)
	assert.Len(t, r.got.Rows, 2)

	_, _, err = newUseCase(store, nil).CustodyPDF(adminCtx(), target)
	assert.Error(t, err)
}
