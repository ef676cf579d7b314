package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
)

// Assignments repositorio de asignaciones.
func (s *Store) Assignments() repository.AssignmentRepository { return assignmentRepo{s} }

// Personnel repositorio de personal.
func (s *Store) Personnel() repository.PersonnelRepository { return personnelRepo{s} }

// Destinations repositorio de destinos.
func (s *Store) Destinations() repository.DestinationRepository { return destinationRepo{s} }

type assignmentRepo struct{ s *Store }

func (r assignmentRepo) Create(_ context.Context, a *entity.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailAssignmentCreate != nil {
		return r.s.FailAssignmentCreate
	}
	if _, ok := r.s.assignments[a.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.assignments[a.ID] = *a
	r.s.assignmentOrder = append(r.s.assignmentOrder, a.ID)
	return nil
}

func (r assignmentRepo) GetByID(_ context.Context, id string) (*entity.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return nil, nil
	}
	r.s.resolveAssignment(&a)
	return &a, nil
}

func (r assignmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Assignment, error) {
	return r.GetByID(ctx, id)
}

func (r assignmentRepo) MarkReturned(_ context.Context, a *entity.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.assignments[a.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.State != entity.AssignmentAssigned {
		return domain.ErrInvalidState
	}
	cur.State = a.State
	cur.ReturnNotes = a.ReturnNotes
	cur.ReturnedAt = a.ReturnedAt
	cur.ReturnMovementID = a.ReturnMovementID
	r.s.assignments[a.ID] = cur
	return nil
}

func (r assignmentRepo) ListOpenByTarget(_ context.Context, target entity.Target) ([]*entity.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Assignment
	for _, id := range r.s.newestAssignments() {
		a := r.s.assignments[id]
		if a.State != entity.AssignmentAssigned || a.Target != target {
			continue
		}
		r.s.resolveAssignment(&a)
		out = append(out, &a)
	}
	return out, nil
}

func (r assignmentRepo) List(_ context.Context, limit int) ([]*entity.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Assignment
	for _, id := range r.s.newestAssignments() {
		a := r.s.assignments[id]
		r.s.resolveAssignment(&a)
		out = append(out, &a)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) newestAssignments() []string {
	ids := append([]string(nil), s.assignmentOrder...)
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := s.assignments[ids[i]], s.assignments[ids[j]]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return pos[ids[i]] > pos[ids[j]]
	})
	return ids
}

func (s *Store) resolveAssignment(a *entity.Assignment) {
	if p, ok := s.products[a.ProductID]; ok {
		a.ProductName = p.Name
		a.ProductSKU = p.SKU
	}
}

func (s *Store) openAssignments(target entity.Target) int {
	n := 0
	for _, a := range s.assignments {
		if a.State == entity.AssignmentAssigned && a.Target == target {
			n++
		}
	}
	return n
}

type personnelRepo struct{ s *Store }

func (r personnelRepo) Create(_ context.Context, p *entity.Personnel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.personnel[p.ID] = *p
	return nil
}

func (r personnelRepo) GetByID(_ context.Context, id string) (*entity.Personnel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.personnel[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r personnelRepo) List(_ context.Context, includeInactive bool) ([]*entity.Personnel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Personnel
	for _, p := range r.s.personnel {
		if !includeInactive && !p.Active {
			continue
		}
		cp := p
		cp.OpenAssignments = r.s.openAssignments(entity.Target{Kind: entity.TargetPersonnel, ID: p.ID})
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type destinationRepo struct{ s *Store }

func (r destinationRepo) Create(_ context.Context, d *entity.Destination) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.destinations[d.ID] = *d
	return nil
}

func (r destinationRepo) GetByID(_ context.Context, id string) (*entity.Destination, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.destinations[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r destinationRepo) List(_ context.Context, includeInactive bool) ([]*entity.Destination, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Destination
	for _, d := range r.s.destinations {
		if !includeInactive && !d.Active {
			continue
		}
		cp := d
		cp.OpenAssignments = r.s.openAssignments(entity.Target{Kind: entity.TargetDestination, ID: d.ID})
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
