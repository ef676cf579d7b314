package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
)

var (
	_ repository.PersonnelRepository   = (*PersonnelRepo)(nil)
	_ repository.DestinationRepository = (*DestinationRepo)(nil)
)

// PersonnelRepo implementación de PersonnelRepository sobre PostgreSQL.
type PersonnelRepo struct {
	q Querier
}

// NewPersonnelRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPersonnelRepository(q Querier) *PersonnelRepo {
	return &PersonnelRepo{q: q}
}

// Create persiste una persona.
func (r *PersonnelRepo) Create(ctx context.Context, p *entity.Personnel) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO personnel (id, name, position, email, phone, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Name, p.Position, p.Email, p.Phone, p.Active, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert personnel: %w", err)
	}
	return nil
}

// GetByID obtiene una persona por ID.
func (r *PersonnelRepo) GetByID(ctx context.Context, id string) (*entity.Personnel, error) {
	if !validID(id) {
		return nil, nil
	}
	var p entity.Personnel
	err := r.q.QueryRow(ctx, `
		SELECT id, name, position, email, phone, active, created_at FROM personnel WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Position, &p.Email, &p.Phone, &p.Active, &p.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get personnel: %w", err)
	}
	return &p, nil
}

// List lista personal por nombre con el conteo de asignaciones abiertas.
func (r *PersonnelRepo) List(ctx context.Context, includeInactive bool) ([]*entity.Personnel, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.name, p.position, p.email, p.phone, p.active, p.created_at,
			(SELECT COUNT(*) FROM assignments a WHERE a.personnel_id = p.id AND a.state = 'asignado')
		FROM personnel p
		WHERE $1 OR p.active
		ORDER BY p.name`, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list personnel: %w", err)
	}
	defer rows.Close()
	var list []*entity.Personnel
	for rows.Next() {
		var p entity.Personnel
		if err := rows.Scan(&p.ID, &p.Name, &p.Position, &p.Email, &p.Phone, &p.Active, &p.CreatedAt,
			&p.OpenAssignments); err != nil {
			return nil, fmt.Errorf("scan personnel: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// DestinationRepo implementación de DestinationRepository sobre PostgreSQL.
type DestinationRepo struct {
	q Querier
}

// NewDestinationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDestinationRepository(q Querier) *DestinationRepo {
	return &DestinationRepo{q: q}
}

// Create persiste un destino.
func (r *DestinationRepo) Create(ctx context.Context, d *entity.Destination) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO destinations (id, name, kind, contact, phone, address, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.Name, d.Kind, d.Contact, d.Phone, d.Address, d.Active, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert destination: %w", err)
	}
	return nil
}

// GetByID obtiene un destino por ID.
func (r *DestinationRepo) GetByID(ctx context.Context, id string) (*entity.Destination, error) {
	if !validID(id) {
		return nil, nil
	}
	var d entity.Destination
	err := r.q.QueryRow(ctx, `
		SELECT id, name, kind, contact, phone, address, active, created_at FROM destinations WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Kind, &d.Contact, &d.Phone, &d.Address, &d.Active, &d.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get destination: %w", err)
	}
	return &d, nil
}

// List lista destinos por nombre con el conteo de asignaciones abiertas.
func (r *DestinationRepo) List(ctx context.Context, includeInactive bool) ([]*entity.Destination, error) {
	rows, err := r.q.Query(ctx, `
		SELECT d.id, d.name, d.kind, d.contact, d.phone, d.address, d.active, d.created_at,
			(SELECT COUNT(*) FROM assignments a WHERE a.destination_id = d.id AND a.state = 'asignado')
		FROM destinations d
		WHERE $1 OR d.active
		ORDER BY d.name`, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Destination
	for rows.Next() {
		var d entity.Destination
		if err := rows.Scan(&d.ID, &d.Name, &d.Kind, &d.Contact, &d.Phone, &d.Address, &d.Active, &d.CreatedAt,
			&d.OpenAssignments); err != nil {
			return nil, fmt.Errorf("scan destination: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}
