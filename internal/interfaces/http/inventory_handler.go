package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/custodia-api/internal/application/dto"
	"github.com/jhoicas/custodia-api/internal/application/inventory"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP del libro de movimientos (protegido).
type InventoryHandler struct {
	uc *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// RecordInbound godoc
// @Summary      Registrar entrada de mercancía
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "product_id, quantity, reason, notes"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/movements/in [post]
func (h *InventoryHandler) RecordInbound(c *fiber.Ctx) error {
	return h.record(c, h.uc.RecordInbound)
}

// RecordOutbound godoc
// @Summary      Registrar salida de mercancía
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "product_id, quantity, reason, notes"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/movements/out [post]
func (h *InventoryHandler) RecordOutbound(c *fiber.Ctx) error {
	return h.record(c, h.uc.RecordOutbound)
}

type recordFunc func(ctx context.Context, in inventory.MovementInput) (*entity.Movement, error)

func (h *InventoryHandler) record(c *fiber.Ctx, fn recordFunc) error {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return validation(c, "product_id es requerido")
	}
	if in.Quantity <= 0 {
		return validation(c, "quantity debe ser mayor que cero")
	}
	mov, err := fn(c.UserContext(), inventory.MovementInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		Notes:     in.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// List godoc
// @Summary      Movimientos más recientes primero
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        from         query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to           query  string  false  "Hasta (RFC3339 o YYYY-MM-DD, inclusive)"
// @Param        kind         query  string  false  "IN | OUT"
// @Param        category_id  query  string  false  "Categoría del producto"
// @Param        actor_id     query  string  false  "Usuario que registró"
// @Param        product_id   query  string  false  "Producto"
// @Param        limit        query  int     false  "Límite"  default(100)
// @Success      200          {array}   dto.MovementResponse
// @Failure      400          {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	filter := repository.MovementFilter{
		Kind:       entity.MovementKind(strings.ToUpper(c.Query("kind"))),
		CategoryID: c.Query("category_id"),
		ActorID:    c.Query("actor_id"),
		ProductID:  c.Query("product_id"),
		Limit:      c.QueryInt("limit", 0),
	}
	var ok bool
	if filter.From, ok = parseTimeQuery(c.Query("from"), false); !ok {
		return validation(c, "from inválido")
	}
	if filter.To, ok = parseTimeQuery(c.Query("to"), true); !ok {
		return validation(c, "to inválido")
	}
	list, err := h.uc.ListRecent(c.UserContext(), filter)
	if err != nil {
		return err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(out)
}

// parseTimeQuery acepta RFC3339 o una fecha; una fecha como límite superior cubre el día completo.
func parseTimeQuery(s string, endOfDay bool) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, true
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, true
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		ProductSKU:  m.ProductSKU,
		Kind:        string(m.Kind),
		Quantity:    m.Quantity,
		Reason:      m.Reason,
		ActorID:     m.ActorID,
		ActorName:   m.ActorName,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
	}
}
