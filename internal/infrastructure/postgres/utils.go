package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/custodia-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isInvalidText 22P02: el valor no es válido para el tipo de la columna (un id que no es UUID).
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

// isNoRows ninguna fila o un id mal formado, que tampoco puede existir.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || isInvalidText(err)
}

// validID indica si el id puede estar en una columna UUID.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}

// isCheckViolation 23514: por ejemplo stock >= 0.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// isRetryable serialización fallida, deadlock o lock no disponible.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}

// mapTxError traduce errores transitorios a domain.ErrRetry; el resto pasa intacto.
func mapTxError(err error) error {
	if err == nil {
		return nil
	}
	if isRetryable(err) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(domain.ErrRetry, err)
	}
	return err
}

// nullable convierte "" en NULL para columnas UUID opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// deref inverso de nullable.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
