package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/custodia-api/internal/application/dto"
	"github.com/jhoicas/custodia-api/internal/application/inventory"
	"github.com/jhoicas/custodia-api/internal/application/usecase"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
)

// AssignmentHandler custodia de mercancía: asignaciones, devoluciones y custodios.
type AssignmentHandler struct {
	uc         *inventory.AssignmentUseCase
	custodians *usecase.CustodianUseCase
}

// NewAssignmentHandler construye el handler.
func NewAssignmentHandler(uc *inventory.AssignmentUseCase, custodians *usecase.CustodianUseCase) *AssignmentHandler {
	return &AssignmentHandler{uc: uc, custodians: custodians}
}

// Create godoc
// @Summary      Asignar producto a personal o destino
// @Description  Registra la salida con motivo "asignacion" y la asignación en la misma transacción.
// @Tags         assignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAssignmentRequest  true  "product_id, target_kind, target_id, quantity"
// @Success      201   {object}  dto.AssignmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/assignments [post]
func (h *AssignmentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAssignmentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	kind := entity.TargetKind(strings.ToLower(in.TargetKind))
	if !kind.Valid() {
		return validation(c, "target_kind debe ser personal o destino")
	}
	if strings.TrimSpace(in.ProductID) == "" || strings.TrimSpace(in.TargetID) == "" {
		return validation(c, "product_id y target_id son requeridos")
	}
	if in.Quantity <= 0 {
		return validation(c, "quantity debe ser mayor que cero")
	}
	a, err := h.uc.Create(c.UserContext(), inventory.CreateAssignmentInput{
		ProductID: in.ProductID,
		Target:    entity.Target{Kind: kind, ID: in.TargetID},
		Quantity:  in.Quantity,
		Notes:     in.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toAssignmentResponse(a))
}

// Return godoc
// @Summary      Devolver una asignación
// @Description  Registra la entrada con motivo "devolucion". Una asignación ya devuelta responde 409.
// @Tags         assignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la asignación"
// @Param        body  body  dto.ReturnAssignmentRequest  false  "Observaciones"
// @Success      200   {object}  dto.AssignmentResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/assignments/{id}/return [put]
func (h *AssignmentHandler) Return(c *fiber.Ctx) error {
	var in dto.ReturnAssignmentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	a, err := h.uc.Return(c.UserContext(), c.Params("id"), in.Notes)
	if err != nil {
		return err
	}
	return c.JSON(toAssignmentResponse(a))
}

// List godoc
// @Summary      Listar asignaciones, más recientes primero
// @Tags         assignments
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Límite"  default(200)
// @Success      200    {array}  dto.AssignmentResponse
// @Router       /api/assignments [get]
func (h *AssignmentHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(toAssignmentResponses(list))
}

// GetByID godoc
// @Summary      Obtener asignación
// @Tags         assignments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la asignación"
// @Success      200  {object}  dto.AssignmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/assignments/{id} [get]
func (h *AssignmentHandler) GetByID(c *fiber.Ctx) error {
	a, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(toAssignmentResponse(a))
}

// ListByPersonnel godoc
// @Summary      Asignaciones abiertas de una persona
// @Tags         assignments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del personal"
// @Success      200  {array}  dto.AssignmentResponse
// @Router       /api/assignments/personnel/{id} [get]
func (h *AssignmentHandler) ListByPersonnel(c *fiber.Ctx) error {
	return h.listByTarget(c, entity.TargetPersonnel)
}

// ListByDestination godoc
// @Summary      Asignaciones abiertas de un destino
// @Tags         assignments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del destino"
// @Success      200  {array}  dto.AssignmentResponse
// @Router       /api/assignments/destinations/{id} [get]
func (h *AssignmentHandler) ListByDestination(c *fiber.Ctx) error {
	return h.listByTarget(c, entity.TargetDestination)
}

func (h *AssignmentHandler) listByTarget(c *fiber.Ctx, kind entity.TargetKind) error {
	list, err := h.uc.ListByTarget(c.UserContext(), entity.Target{Kind: kind, ID: c.Params("id")})
	if err != nil {
		return err
	}
	return c.JSON(toAssignmentResponses(list))
}

// CreatePersonnel godoc
// @Summary      Registrar personal
// @Tags         custodians
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePersonnelRequest  true  "Datos de la persona"
// @Success      201   {object}  dto.PersonnelResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/personnel [post]
func (h *AssignmentHandler) CreatePersonnel(c *fiber.Ctx) error {
	var in dto.CreatePersonnelRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if strings.TrimSpace(in.Name) == "" {
		return validation(c, "name es requerido")
	}
	out, err := h.custodians.CreatePersonnel(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListPersonnel godoc
// @Summary      Listar personal activo con asignaciones abiertas
// @Tags         custodians
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PersonnelResponse
// @Router       /api/personnel [get]
func (h *AssignmentHandler) ListPersonnel(c *fiber.Ctx) error {
	out, err := h.custodians.ListPersonnel(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// CreateDestination godoc
// @Summary      Registrar destino
// @Tags         custodians
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDestinationRequest  true  "Datos del destino"
// @Success      201   {object}  dto.DestinationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/destinations [post]
func (h *AssignmentHandler) CreateDestination(c *fiber.Ctx) error {
	var in dto.CreateDestinationRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if strings.TrimSpace(in.Name) == "" {
		return validation(c, "name es requerido")
	}
	out, err := h.custodians.CreateDestination(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListDestinations godoc
// @Summary      Listar destinos activos con asignaciones abiertas
// @Tags         custodians
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.DestinationResponse
// @Router       /api/destinations [get]
func (h *AssignmentHandler) ListDestinations(c *fiber.Ctx) error {
	out, err := h.custodians.ListDestinations(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func toAssignmentResponses(list []*entity.Assignment) []dto.AssignmentResponse {
	out := make([]dto.AssignmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAssignmentResponse(a))
	}
	return out
}

func toAssignmentResponse(a *entity.Assignment) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		ID:               a.ID,
		ProductID:        a.ProductID,
		ProductName:      a.ProductName,
		ProductSKU:       a.ProductSKU,
		TargetKind:       string(a.Target.Kind),
		TargetID:         a.Target.ID,
		Quantity:         a.Quantity,
		State:            string(a.State),
		IssuedBy:         a.IssuedBy,
		Notes:            a.Notes,
		ReturnNotes:      a.ReturnNotes,
		OutMovementID:    a.OutMovementID,
		ReturnMovementID: a.ReturnMovementID,
		CreatedAt:        a.CreatedAt,
		ReturnedAt:       a.ReturnedAt,
	}
}
