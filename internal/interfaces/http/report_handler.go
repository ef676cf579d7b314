package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/custodia-api/internal/application/report"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
)

// ReportHandler reportes de custodia.
type ReportHandler struct {
	uc *report.CustodyUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.CustodyUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Custody godoc
// @Summary      Reporte de custodia de personal o destino
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        kind  path  string  true  "personal | destino"
// @Param        id    path  string  true  "ID del custodio"
// @Success      200   {object}  report.CustodyReport
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/reports/custody/{kind}/{id} [get]
func (h *ReportHandler) Custody(c *fiber.Ctx) error {
	out, err := h.uc.Custody(c.UserContext(), custodyTarget(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// CustodyPDF godoc
// @Summary      Reporte de custodia en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        kind  path  string  true  "personal | destino"
// @Param        id    path  string  true  "ID del custodio"
// @Success      200   {file}    file
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/reports/custody/{kind}/{id}/pdf [get]
func (h *ReportHandler) CustodyPDF(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.CustodyPDF(c.UserContext(), custodyTarget(c))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(pdf)
}

func custodyTarget(c *fiber.Ctx) entity.Target {
	return entity.Target{Kind: entity.TargetKind(c.Params("kind")), ID: c.Params("id")}
}
