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
	"github.com/jhoicas/custodia-api/internal/domain/inventory"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
	"github.com/jhoicas/custodia-api/pkg/logger"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// LedgerUseCase libro de movimientos: entradas, salidas y consultas.
// Cada movimiento bloquea la fila del producto (SELECT FOR UPDATE), valida, actualiza el stock
// materializado y agrega el movimiento en la misma transacción.
type LedgerUseCase struct {
	txRunner    TxRunner
	movRepo     repository.MovementRepository
	productRepo repository.ProductRepository
	publisher   EventPublisher
	log         *logger.Logger
	now         func() time.Time
}

// NewLedgerUseCase construye el caso de uso. publisher puede ser nil.
func NewLedgerUseCase(
	txRunner TxRunner,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *LedgerUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{
		txRunner:    txRunner,
		movRepo:     movRepo,
		productRepo: productRepo,
		publisher:   publisher,
		log:         log,
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *LedgerUseCase) WithClock(now func() time.Time) *LedgerUseCase {
	uc.now = now
	return uc
}

// MovementInput entrada para RecordInbound/RecordOutbound.
type MovementInput struct {
	ProductID string
	Quantity  int64
	Reason    string
	Notes     string
}

func (in MovementInput) validate() error {
	if strings.TrimSpace(in.ProductID) == "" || in.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

// RecordInbound registra una entrada (requiere crear_entrada).
func (uc *LedgerUseCase) RecordInbound(ctx context.Context, in MovementInput) (*entity.Movement, error) {
	p, err := authz.Require(ctx, permission.CrearEntrada)
	if err != nil {
		return nil, err
	}
	return uc.record(ctx, p.UserID(), entity.MovementIN, in)
}

// RecordOutbound registra una salida (requiere crear_salida). Si el stock no alcanza
// devuelve ErrInsufficientStock y no modifica nada.
func (uc *LedgerUseCase) RecordOutbound(ctx context.Context, in MovementInput) (*entity.Movement, error) {
	p, err := authz.Require(ctx, permission.CrearSalida)
	if err != nil {
		return nil, err
	}
	return uc.record(ctx, p.UserID(), entity.MovementOUT, in)
}

func (uc *LedgerUseCase) record(ctx context.Context, actorID string, kind entity.MovementKind, in MovementInput) (*entity.Movement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := uc.now()
	var (
		mov     *entity.Movement
		product *entity.Product
	)
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		var err error
		mov, product, err = applyInTx(ctx, repos, movementOp{
			productID: in.ProductID,
			kind:      kind,
			quantity:  in.Quantity,
			reason:    in.Reason,
			notes:     in.Notes,
			actorID:   actorID,
			at:        now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, mov, product)
	return mov, nil
}

// movementOp datos de un movimiento a aplicar dentro de una transacción abierta.
type movementOp struct {
	productID string
	kind      entity.MovementKind
	quantity  int64
	reason    string
	notes     string
	actorID   string
	at        time.Time
}

// applyInTx bloquea el producto, calcula el nuevo stock, lo persiste y agrega el movimiento.
// Usado por el libro y por el ciclo de asignaciones para que todo ocurra en la transacción del caller.
func applyInTx(ctx context.Context, repos TxRepos, op movementOp) (*entity.Movement, *entity.Product, error) {
	product, err := repos.Products.GetForUpdate(ctx, op.productID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil || !product.Active {
		return nil, nil, domain.ErrNotFound
	}
	return applyLocked(ctx, repos, product, op)
}

// applyLocked aplica el movimiento sobre un producto ya bloqueado por la transacción.
func applyLocked(ctx context.Context, repos TxRepos, product *entity.Product, op movementOp) (*entity.Movement, *entity.Product, error) {
	newStock, err := inventory.ApplyMovement(product.Stock, op.kind, op.quantity)
	if err != nil {
		return nil, nil, err
	}
	if err := repos.Products.SetStock(ctx, product.ID, newStock, op.at); err != nil {
		return nil, nil, err
	}
	product.Stock = newStock
	product.UpdatedAt = op.at

	mov := &entity.Movement{
		ID:          uuid.New().String(),
		ProductID:   product.ID,
		Kind:        op.kind,
		Quantity:    op.quantity,
		Reason:      strings.TrimSpace(op.reason),
		ActorID:     op.actorID,
		Notes:       op.notes,
		CreatedAt:   op.at,
		ProductName: product.Name,
		ProductSKU:  product.SKU,
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, nil, fmt.Errorf("insert movement: %w", err)
	}
	return mov, product, nil
}

// publish emite StockChanged después del commit. Los errores solo se registran.
func (uc *LedgerUseCase) publish(ctx context.Context, mov *entity.Movement, product *entity.Product) {
	publishStockChanged(ctx, uc.publisher, uc.log, mov, product)
}

func publishStockChanged(ctx context.Context, pub EventPublisher, log *logger.Logger, mov *entity.Movement, product *entity.Product) {
	if pub == nil || mov == nil || product == nil {
		return
	}
	ev := StockChanged{
		MovementID:   mov.ID,
		ProductID:    product.ID,
		SKU:          product.SKU,
		Kind:         mov.Kind,
		Quantity:     mov.Quantity,
		Reason:       mov.Reason,
		Stock:        product.Stock,
		StockMinimum: product.StockMinimum,
		LowStock:     product.IsLowStock(),
		ActorID:      mov.ActorID,
		OccurredAt:   mov.CreatedAt,
	}
	if err := pub.PublishStockChanged(ctx, ev); err != nil {
		log.Warn().Err(err).
			Str("movement_id", mov.ID).
			Str("product_id", product.ID).
			Msg("no se pudo publicar StockChanged")
	}
}

// ListRecent devuelve los movimientos más recientes primero (requiere ver_movimientos).
func (uc *LedgerUseCase) ListRecent(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	if _, err := authz.Require(ctx, permission.VerMovimientos); err != nil {
		return nil, err
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.ErrInvalidInput
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultListLimit
	case filter.Limit > maxListLimit:
		filter.Limit = maxListLimit
	}
	list, err := uc.movRepo.ListRecent(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	if list == nil {
		list = []*entity.Movement{}
	}
	return list, nil
}

// LedgerCheck resultado de comparar el stock materializado con la suma del libro.
type LedgerCheck struct {
	ProductID     string `json:"product_id"`
	Stock         int64  `json:"stock"`
	LedgerBalance int64  `json:"ledger_balance"`
	Consistent    bool   `json:"consistent"`
}

// VerifyProduct reconstruye el stock sumando movimientos y lo compara con el valor
// materializado (requiere ver_reportes).
func (uc *LedgerUseCase) VerifyProduct(ctx context.Context, productID string) (*LedgerCheck, error) {
	if _, err := authz.Require(ctx, permission.VerReportes); err != nil {
		return nil, err
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	sum, err := uc.movRepo.SumByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("sum movements: %w", err)
	}
	return &LedgerCheck{
		ProductID:     productID,
		Stock:         product.Stock,
		LedgerBalance: sum,
		Consistent:    sum == product.Stock,
	}, nil
}
