package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del libro de movimientos sobre PostgreSQL (usable con pool o tx).
// Solo inserta y lee: no existe UPDATE ni DELETE sobre movements.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create inserta un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (id, product_id, kind, quantity, reason, actor_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, string(m.Kind), m.Quantity, m.Reason, nullable(m.ActorID), m.Notes, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// ListRecent movimientos más recientes primero; seq desempata timestamps iguales.
func (r *MovementRepo) ListRecent(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	// Un id de filtro mal formado no coincide con ningún movimiento.
	for _, id := range []string{f.CategoryID, f.ActorID, f.ProductID} {
		if id != "" && !validID(id) {
			return nil, nil
		}
	}
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.From != nil {
		add("m.created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("m.created_at <= $%d", *f.To)
	}
	if f.Kind != "" {
		add("m.kind = $%d", string(f.Kind))
	}
	if f.CategoryID != "" {
		add("p.category_id = $%d", f.CategoryID)
	}
	if f.ActorID != "" {
		add("m.actor_id = $%d", f.ActorID)
	}
	if f.ProductID != "" {
		add("m.product_id = $%d", f.ProductID)
	}
	query := `
		SELECT m.id, m.product_id, m.kind, m.quantity, m.reason, m.actor_id, m.notes, m.created_at,
			p.name, p.sku, COALESCE(u.name, '')
		FROM movements m
		JOIN products p ON p.id = m.product_id
		LEFT JOIN users u ON u.id = m.actor_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY m.created_at DESC, m.seq DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var (
			m       entity.Movement
			kind    string
			actorID *string
		)
		if err := rows.Scan(&m.ID, &m.ProductID, &kind, &m.Quantity, &m.Reason, &actorID, &m.Notes, &m.CreatedAt,
			&m.ProductName, &m.ProductSKU, &m.ActorName); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Kind = entity.MovementKind(kind)
		m.ActorID = deref(actorID)
		list = append(list, &m)
	}
	return list, rows.Err()
}

// SumByProduct suma con signo (+IN, -OUT) los movimientos de un producto.
func (r *MovementRepo) SumByProduct(ctx context.Context, productID string) (int64, error) {
	if !validID(productID) {
		return 0, nil
	}
	var sum int64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN kind = 'IN' THEN quantity ELSE -quantity END), 0)::BIGINT
		FROM movements WHERE product_id = $1`, productID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}
