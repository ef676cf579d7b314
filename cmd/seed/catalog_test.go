package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/application/usecase"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/infrastructure/memory"
)

func TestParseCatalog_PuntoYComaConEncabezado(t *testing.T) {
	in := "sku;nombre;categoria;precio;stock;stock_minimo\n" +
		"TAL-1;Taladro;Herramientas;150000.50;10;2\n" +
		"CAS-1;Casco;EPP;;;\n"
	rows, err := parseCatalog(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "TAL-1", rows[0].SKU)
	assert.Equal(t, "150000.5", rows[0].Price.String())
	assert.Equal(t, int64(10), rows[0].Stock)
	assert.Equal(t, int64(2), rows[0].StockMinimum)
	assert.True(t, rows[1].Price.IsZero())
	assert.Zero(t, rows[1].Stock)
}

func TestParseCatalog_Latin1(t *testing.T) {
	utf := "GUA-1,Guantes de cuero,Protección,8000,5,1\n"
	latin, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(utf))
	require.NoError(t, err)

	rows, err := parseCatalog(bytes.NewReader(latin))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Protección", rows[0].Category)
}

func TestParseCatalog_Errores(t *testing.T) {
	for _, in := range []string{
		"TAL-1;Taladro\n",
		";Taladro;Herramientas\n",
		"TAL-1;Taladro;Herramientas;caro\n",
		"TAL-1;Taladro;Herramientas;100;-\n",
	} {
		_, err := parseCatalog(strings.NewReader(in))
		assert.Error(t, err, in)
	}
}

func TestImportCatalog_CreaCategoriasYOmiteDuplicados(t *testing.T) {
	store := memory.New()
	ctx := authz.WithPrincipal(context.Background(), &authz.Principal{
		User: &entity.User{ID: "admin-1", Role: entity.RoleAdmin, Active: true},
	})
	categories := usecase.NewCategoryUseCase(store.Categories())
	products := usecase.NewProductUseCase(store, store.Products(), store.Categories(), store.Suppliers())

	rows, err := parseCatalog(strings.NewReader(
		"TAL-1,Taladro,Herramientas,100,3,1\n" +
			"SIE-1,Sierra,herramientas,200,0,0\n" +
			"TAL-1,Taladro repetido,Herramientas,100,3,1\n"))
	require.NoError(t, err)

	imported, skipped, err := importCatalog(ctx, categories, products, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
	assert.Equal(t, 1, skipped)

	list, err := categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	// solo el producto con stock > 0 genera movimiento
	assert.Equal(t, 1, store.MovementCount())
}
