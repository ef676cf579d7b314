package inventory

import (
	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
)

// ApplyMovement calcula el stock resultante de aplicar un movimiento (servicio de dominio).
// Una salida mayor al stock actual devuelve ErrInsufficientStock y el stock sin cambios.
func ApplyMovement(current int64, kind entity.MovementKind, quantity int64) (int64, error) {
	if quantity <= 0 || !kind.Valid() {
		return current, domain.ErrInvalidInput
	}
	if kind == entity.MovementOUT {
		if current < quantity {
			return current, domain.ErrInsufficientStock
		}
		return current - quantity, nil
	}
	return current + quantity, nil
}

// LedgerBalance suma con signo una secuencia de movimientos. Debe coincidir con Product.Stock.
func LedgerBalance(movements []*entity.Movement) int64 {
	var total int64
	for _, m := range movements {
		total += m.Signed()
	}
	return total
}

// SuggestedReorder cantidad sugerida para volver a un stock ideal de 2x el mínimo.
func SuggestedReorder(stock, minimum int64) int64 {
	ideal := minimum * 2
	if ideal <= stock {
		return 0
	}
	return ideal - stock
}
