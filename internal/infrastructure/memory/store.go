// Package memory implementa los puertos de persistencia en memoria para las pruebas de los
// casos de uso. Las transacciones se serializan y un error deshace todos sus cambios.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/custodia-api/internal/application/inventory"
	"github.com/jhoicas/custodia-api/internal/application/usecase"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner   = (*Store)(nil)
	_ usecase.UserTxRunner = (*Store)(nil)
)

// Store estado completo en memoria.
type Store struct {
	txMu sync.Mutex // una transacción a la vez (equivale a bloquear todas las filas)
	mu   sync.Mutex

	data

	// Inyección de fallos para probar atomicidad.
	FailAssignmentCreate error
	FailMovementCreate   error
	FailPermissionWrite  error
	FailPermissionRead   error
}

type data struct {
	products        map[string]entity.Product
	movements       []entity.Movement
	assignments     map[string]entity.Assignment
	assignmentOrder []string
	personnel       map[string]entity.Personnel
	destinations    map[string]entity.Destination
	categories      map[string]entity.Category
	suppliers       map[string]entity.Supplier
	users           map[string]entity.User
	userOrder       []string
	permissions     map[string]permission.Set
	sessions        map[string]entity.Session
}

// New crea un store vacío.
func New() *Store {
	return &Store{data: data{
		products:     map[string]entity.Product{},
		assignments:  map[string]entity.Assignment{},
		personnel:    map[string]entity.Personnel{},
		destinations: map[string]entity.Destination{},
		categories:   map[string]entity.Category{},
		suppliers:    map[string]entity.Supplier{},
		users:        map[string]entity.User{},
		permissions:  map[string]permission.Set{},
		sessions:     map[string]entity.Session{},
	}}
}

func (d *data) clone() data {
	out := data{
		products:        make(map[string]entity.Product, len(d.products)),
		movements:       append([]entity.Movement(nil), d.movements...),
		assignments:     make(map[string]entity.Assignment, len(d.assignments)),
		assignmentOrder: append([]string(nil), d.assignmentOrder...),
		personnel:       make(map[string]entity.Personnel, len(d.personnel)),
		destinations:    make(map[string]entity.Destination, len(d.destinations)),
		categories:      make(map[string]entity.Category, len(d.categories)),
		suppliers:       make(map[string]entity.Supplier, len(d.suppliers)),
		users:           make(map[string]entity.User, len(d.users)),
		userOrder:       append([]string(nil), d.userOrder...),
		permissions:     make(map[string]permission.Set, len(d.permissions)),
		sessions:        make(map[string]entity.Session, len(d.sessions)),
	}
	for k, v := range d.products {
		out.products[k] = v
	}
	for k, v := range d.assignments {
		out.assignments[k] = v
	}
	for k, v := range d.personnel {
		out.personnel[k] = v
	}
	for k, v := range d.destinations {
		out.destinations[k] = v
	}
	for k, v := range d.categories {
		out.categories[k] = v
	}
	for k, v := range d.suppliers {
		out.suppliers[k] = v
	}
	for k, v := range d.users {
		out.users[k] = v
	}
	for k, v := range d.permissions {
		out.permissions[k] = copySet(v)
	}
	for k, v := range d.sessions {
		out.sessions[k] = v
	}
	return out
}

func copySet(s permission.Set) permission.Set {
	out := make(permission.Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Run ejecuta fn como una transacción: serializada y con rollback si fn falla.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	return s.inTx(ctx, func() error {
		return fn(inventory.TxRepos{
			Movements:    s.Movements(),
			Products:     s.Products(),
			Assignments:  s.Assignments(),
			Personnel:    s.Personnel(),
			Destinations: s.Destinations(),
		})
	})
}

// RunUsers ejecuta fn con los repositorios de usuarios y permisos en una transacción.
func (s *Store) RunUsers(ctx context.Context, fn func(userRepo repository.UserRepository, permRepo repository.PermissionRepository) error) error {
	return s.inTx(ctx, func() error {
		return fn(s.Users(), s.Permissions())
	})
}

func (s *Store) inTx(ctx context.Context, fn func() error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// MovementCount número de movimientos del libro (tests).
func (s *Store) MovementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

// AssignmentCount número de asignaciones guardadas (tests).
func (s *Store) AssignmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assignments)
}

// SessionCount número de sesiones guardadas (tests).
func (s *Store) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
