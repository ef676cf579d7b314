package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/inventory"
)

func TestApplyMovement(t *testing.T) {
	cases := []struct {
		name    string
		current int64
		kind    entity.MovementKind
		qty     int64
		want    int64
		err     error
	}{
		{"entrada", 10, entity.MovementIN, 5, 15, nil},
		{"salida exacta", 10, entity.MovementOUT, 10, 0, nil},
		{"salida excede", 6, entity.MovementOUT, 10, 6, domain.ErrInsufficientStock},
		{"cantidad cero", 6, entity.MovementIN, 0, 6, domain.ErrInvalidInput},
		{"cantidad negativa", 6, entity.MovementOUT, -1, 6, domain.ErrInvalidInput},
		{"tipo desconocido", 6, entity.MovementKind("AJUSTE"), 1, 6, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := inventory.ApplyMovement(tc.current, tc.kind, tc.qty)
			assert.Equal(t, tc.want, got)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestLedgerBalance(t *testing.T) {
	movs := []*entity.Movement{
		{Kind: entity.MovementIN, Quantity: 10},
		{Kind: entity.MovementOUT, Quantity: 4},
		{Kind: entity.MovementOUT, Quantity: 5},
		{Kind: entity.MovementIN, Quantity: 5},
	}
	assert.Equal(t, int64(6), inventory.LedgerBalance(movs))
	assert.Equal(t, int64(0), inventory.LedgerBalance(nil))
}

func TestSuggestedReorder(t *testing.T) {
	assert.Equal(t, int64(5), inventory.SuggestedReorder(1, 3))
	assert.Equal(t, int64(0), inventory.SuggestedReorder(6, 3))
	assert.Equal(t, int64(0), inventory.SuggestedReorder(0, 0))
}
