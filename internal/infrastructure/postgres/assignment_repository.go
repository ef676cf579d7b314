package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
)

var _ repository.AssignmentRepository = (*AssignmentRepo)(nil)

const assignmentSelect = `
	SELECT a.id, a.product_id, a.target_kind, a.personnel_id, a.destination_id, a.quantity, a.state,
		a.issued_by, a.notes, a.return_notes, a.out_movement_id, a.return_movement_id, a.created_at,
		a.returned_at, p.name, p.sku
	FROM assignments a
	JOIN products p ON p.id = a.product_id`

// AssignmentRepo implementación de AssignmentRepository sobre PostgreSQL (usable con pool o tx).
type AssignmentRepo struct {
	q Querier
}

// NewAssignmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAssignmentRepository(q Querier) *AssignmentRepo {
	return &AssignmentRepo{q: q}
}

// Create inserta la asignación. El custodio va en personnel_id o destination_id según su tipo.
func (r *AssignmentRepo) Create(ctx context.Context, a *entity.Assignment) error {
	personnelID, destinationID := targetColumns(a.Target)
	query := `
		INSERT INTO assignments (id, product_id, target_kind, personnel_id, destination_id, quantity, state,
			issued_by, notes, out_movement_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.ProductID, string(a.Target.Kind), personnelID, destinationID, a.Quantity, string(a.State),
		nullable(a.IssuedBy), a.Notes, a.OutMovementID, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

// GetByID obtiene una asignación por ID.
func (r *AssignmentRepo) GetByID(ctx context.Context, id string) (*entity.Assignment, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, assignmentSelect+` WHERE a.id = $1`, id)
}

// GetForUpdate obtiene la asignación y bloquea su fila (SELECT FOR UPDATE OF a).
func (r *AssignmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Assignment, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, assignmentSelect+` WHERE a.id = $1 FOR UPDATE OF a`, id)
}

func (r *AssignmentRepo) getOne(ctx context.Context, query, id string) (*entity.Assignment, error) {
	a, err := scanAssignment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

// MarkReturned cierra la asignación. Solo transiciona desde asignado.
func (r *AssignmentRepo) MarkReturned(ctx context.Context, a *entity.Assignment) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE assignments SET state = $2, return_notes = $3, returned_at = $4, return_movement_id = $5
		WHERE id = $1 AND state = 'asignado'`,
		a.ID, string(a.State), a.ReturnNotes, a.ReturnedAt, a.ReturnMovementID,
	)
	if err != nil {
		return fmt.Errorf("mark assignment returned: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// ListOpenByTarget asignaciones abiertas de un custodio, más antiguas primero.
func (r *AssignmentRepo) ListOpenByTarget(ctx context.Context, target entity.Target) ([]*entity.Assignment, error) {
	if !validID(target.ID) {
		return nil, nil
	}
	column := "a.personnel_id"
	if target.Kind == entity.TargetDestination {
		column = "a.destination_id"
	}
	return r.list(ctx, assignmentSelect+` WHERE a.state = 'asignado' AND `+column+` = $1 ORDER BY a.created_at, a.id`, target.ID)
}

// List asignaciones más recientes primero.
func (r *AssignmentRepo) List(ctx context.Context, limit int) ([]*entity.Assignment, error) {
	return r.list(ctx, assignmentSelect+` ORDER BY a.created_at DESC, a.id LIMIT $1`, limit)
}

func (r *AssignmentRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Assignment, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func targetColumns(t entity.Target) (personnelID, destinationID *string) {
	if t.Kind == entity.TargetDestination {
		return nil, nullable(t.ID)
	}
	return nullable(t.ID), nil
}

func scanAssignment(row pgx.Row) (*entity.Assignment, error) {
	var (
		a                          entity.Assignment
		kind, state                string
		personnelID, destinationID *string
		issuedBy, returnMovementID *string
	)
	if err := row.Scan(&a.ID, &a.ProductID, &kind, &personnelID, &destinationID, &a.Quantity, &state,
		&issuedBy, &a.Notes, &a.ReturnNotes, &a.OutMovementID, &returnMovementID, &a.CreatedAt,
		&a.ReturnedAt, &a.ProductName, &a.ProductSKU); err != nil {
		return nil, err
	}
	a.Target.Kind = entity.TargetKind(kind)
	a.Target.ID = deref(personnelID)
	if a.Target.Kind == entity.TargetDestination {
		a.Target.ID = deref(destinationID)
	}
	a.State = entity.AssignmentState(state)
	a.IssuedBy = deref(issuedBy)
	a.ReturnMovementID = deref(returnMovementID)
	return &a, nil
}
