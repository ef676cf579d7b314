package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
	"github.com/jhoicas/custodia-api/pkg/logger"
)

const defaultAssignmentLimit = 200

// AssignmentUseCase ciclo de vida de las asignaciones: asignado -> devuelto, una sola vez.
// Crear descuenta stock con una salida; devolver lo repone con una entrada. Ambas operaciones
// ocurren en una transacción junto con la fila de la asignación.
type AssignmentUseCase struct {
	txRunner       TxRunner
	assignmentRepo repository.AssignmentRepository
	publisher      EventPublisher
	log            *logger.Logger
	now            func() time.Time
}

// NewAssignmentUseCase construye el caso de uso. publisher puede ser nil.
func NewAssignmentUseCase(
	txRunner TxRunner,
	assignmentRepo repository.AssignmentRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *AssignmentUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AssignmentUseCase{
		txRunner:       txRunner,
		assignmentRepo: assignmentRepo,
		publisher:      publisher,
		log:            log,
		now:            time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *AssignmentUseCase) WithClock(now func() time.Time) *AssignmentUseCase {
	uc.now = now
	return uc
}

// CreateAssignmentInput entrada de Create.
type CreateAssignmentInput struct {
	ProductID string
	Target    entity.Target
	Quantity  int64
	Notes     string
}

// Create entrega producto en custodia (requiere crear_asignaciones).
// Verifica el custodio, registra la salida con motivo "asignacion" e inserta la asignación
// enlazada a esa salida. Cualquier fallo revierte todo.
func (uc *AssignmentUseCase) Create(ctx context.Context, in CreateAssignmentInput) (*entity.Assignment, error) {
	p, err := authz.Require(ctx, permission.CrearAsignaciones)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ProductID) == "" || in.Quantity <= 0 ||
		!in.Target.Kind.Valid() || strings.TrimSpace(in.Target.ID) == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	var (
		a       *entity.Assignment
		mov     *entity.Movement
		product *entity.Product
	)
	err = uc.txRunner.Run(ctx, func(repos TxRepos) error {
		if err := ensureTarget(ctx, repos, in.Target); err != nil {
			return err
		}
		var err error
		mov, product, err = applyInTx(ctx, repos, movementOp{
			productID: in.ProductID,
			kind:      entity.MovementOUT,
			quantity:  in.Quantity,
			reason:    entity.ReasonAssignment,
			notes:     in.Notes,
			actorID:   p.UserID(),
			at:        now,
		})
		if err != nil {
			return err
		}
		a = &entity.Assignment{
			ID:            uuid.New().String(),
			ProductID:     product.ID,
			Target:        in.Target,
			Quantity:      in.Quantity,
			State:         entity.AssignmentAssigned,
			IssuedBy:      p.UserID(),
			Notes:         in.Notes,
			OutMovementID: mov.ID,
			CreatedAt:     now,
			ProductName:   product.Name,
			ProductSKU:    product.SKU,
		}
		if err := repos.Assignments.Create(ctx, a); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishStockChanged(ctx, uc.publisher, uc.log, mov, product)
	return a, nil
}

// ensureTarget verifica que el custodio exista y esté activo.
func ensureTarget(ctx context.Context, repos TxRepos, target entity.Target) error {
	switch target.Kind {
	case entity.TargetPersonnel:
		person, err := repos.Personnel.GetByID(ctx, target.ID)
		if err != nil {
			return err
		}
		if person == nil || !person.Active {
			return domain.ErrNotFound
		}
	case entity.TargetDestination:
		dest, err := repos.Destinations.GetByID(ctx, target.ID)
		if err != nil {
			return err
		}
		if dest == nil || !dest.Active {
			return domain.ErrNotFound
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

// Return devuelve una asignación (requiere editar_asignaciones).
// La fila se bloquea (SELECT FOR UPDATE) para que dos devoluciones concurrentes no
// acrediten el stock dos veces: la segunda ve el estado devuelto y falla con ErrInvalidState.
func (uc *AssignmentUseCase) Return(ctx context.Context, id, notes string) (*entity.Assignment, error) {
	p, err := authz.Require(ctx, permission.EditarAsignaciones)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	var (
		a       *entity.Assignment
		mov     *entity.Movement
		product *entity.Product
	)
	err = uc.txRunner.Run(ctx, func(repos TxRepos) error {
		var err error
		a, err = repos.Assignments.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		if a.IsReturned() {
			return domain.ErrInvalidState
		}
		mov, product, err = applyReturnInTx(ctx, repos, a, p.UserID(), notes, now)
		if err != nil {
			return err
		}
		a.State = entity.AssignmentReturned
		a.ReturnNotes = notes
		a.ReturnedAt = &now
		a.ReturnMovementID = mov.ID
		if err := repos.Assignments.MarkReturned(ctx, a); err != nil {
			return fmt.Errorf("mark assignment returned: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishStockChanged(ctx, uc.publisher, uc.log, mov, product)
	return a, nil
}

// applyReturnInTx registra la entrada de la devolución. Un producto desactivado
// después de la asignación sigue aceptando su devolución.
func applyReturnInTx(ctx context.Context, repos TxRepos, a *entity.Assignment, actorID, notes string, at time.Time) (*entity.Movement, *entity.Product, error) {
	product, err := repos.Products.GetForUpdate(ctx, a.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, domain.ErrNotFound
	}
	return applyLocked(ctx, repos, product, movementOp{
		productID: a.ProductID,
		kind:      entity.MovementIN,
		quantity:  a.Quantity,
		reason:    entity.ReasonReturn,
		notes:     notes,
		actorID:   actorID,
		at:        at,
	})
}

// ListByTarget asignaciones abiertas (estado asignado) de un custodio (requiere ver_asignaciones).
func (uc *AssignmentUseCase) ListByTarget(ctx context.Context, target entity.Target) ([]*entity.Assignment, error) {
	if _, err := authz.Require(ctx, permission.VerAsignaciones); err != nil {
		return nil, err
	}
	if !target.Kind.Valid() || strings.TrimSpace(target.ID) == "" {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.assignmentRepo.ListOpenByTarget(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("list assignments by target: %w", err)
	}
	if list == nil {
		list = []*entity.Assignment{}
	}
	return list, nil
}

// List todas las asignaciones, más recientes primero (requiere ver_asignaciones).
func (uc *AssignmentUseCase) List(ctx context.Context, limit int) ([]*entity.Assignment, error) {
	if _, err := authz.Require(ctx, permission.VerAsignaciones); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultAssignmentLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	list, err := uc.assignmentRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	if list == nil {
		list = []*entity.Assignment{}
	}
	return list, nil
}

// Get obtiene una asignación por ID (requiere ver_asignaciones).
func (uc *AssignmentUseCase) Get(ctx context.Context, id string) (*entity.Assignment, error) {
	if _, err := authz.Require(ctx, permission.VerAsignaciones); err != nil {
		return nil, err
	}
	a, err := uc.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return a, nil
}
