package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// catalogRow una fila del CSV de productos:
// sku;nombre;categoria;precio;stock;stock_minimo
type catalogRow struct {
	SKU          string
	Name         string
	Category     string
	Price        decimal.Decimal
	Stock        int64
	StockMinimum int64
}

// parseCatalog lee el CSV (separador ; o ,). Si el archivo no es UTF-8 válido se decodifica
// como ISO-8859-1, que es lo que exporta Excel en español.
func parseCatalog(r io.Reader) ([]catalogRow, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("leer csv: %w", err)
	}
	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(src)
	cr.Comma = detectSeparator(raw)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsear csv: %w", err)
	}
	var rows []catalogRow
	for i, rec := range records {
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "sku") {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("línea %d: se esperan al menos sku, nombre y categoría", i+1)
		}
		row := catalogRow{
			SKU:      strings.TrimSpace(rec[0]),
			Name:     strings.TrimSpace(rec[1]),
			Category: strings.TrimSpace(rec[2]),
		}
		if row.SKU == "" || row.Name == "" {
			return nil, fmt.Errorf("línea %d: sku y nombre son requeridos", i+1)
		}
		if row.Price, err = field(rec, 3, decimal.NewFromString, decimal.Zero); err != nil {
			return nil, fmt.Errorf("línea %d: precio: %w", i+1, err)
		}
		if row.Stock, err = field(rec, 4, parseInt, 0); err != nil {
			return nil, fmt.Errorf("línea %d: stock: %w", i+1, err)
		}
		if row.StockMinimum, err = field(rec, 5, parseInt, 0); err != nil {
			return nil, fmt.Errorf("línea %d: stock_minimo: %w", i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func detectSeparator(raw []byte) rune {
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// field parsea la columna i; vacía o ausente devuelve def.
func field[T any](rec []string, i int, parse func(string) (T, error), def T) (T, error) {
	if i >= len(rec) {
		return def, nil
	}
	s := strings.TrimSpace(rec[i])
	if s == "" {
		return def, nil
	}
	return parse(s)
}
