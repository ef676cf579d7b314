package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/domain/inventory"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
)

// LowStockItem producto en o bajo su mínimo con la cantidad sugerida de reposición.
type LowStockItem struct {
	ProductID    string `json:"product_id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Stock        int64  `json:"stock"`
	StockMinimum int64  `json:"stock_minimum"`
	Deficit      int64  `json:"deficit"`
	SuggestedQty int64  `json:"suggested_qty"`
}

// LowStock lista los productos activos con stock <= mínimo, mayor déficit primero
// (requiere ver_reportes).
func (uc *LedgerUseCase) LowStock(ctx context.Context) ([]LowStockItem, error) {
	if _, err := authz.Require(ctx, permission.VerReportes); err != nil {
		return nil, err
	}
	products, err := uc.productRepo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]LowStockItem, 0, len(products))
	for _, p := range products {
		if !p.Active || !p.IsLowStock() {
			continue
		}
		items = append(items, LowStockItem{
			ProductID:    p.ID,
			SKU:          p.SKU,
			Name:         p.Name,
			Stock:        p.Stock,
			StockMinimum: p.StockMinimum,
			Deficit:      p.StockMinimum - p.Stock,
			SuggestedQty: inventory.SuggestedReorder(p.Stock, p.StockMinimum),
		})
	}
	// Mayor déficit primero; a igual déficit, por SKU para un orden estable.
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Deficit != items[j].Deficit {
			return items[i].Deficit > items[j].Deficit
		}
		return items[i].SKU < items[j].SKU
	})
	return items, nil
}
