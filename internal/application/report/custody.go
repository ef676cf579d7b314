// Package report arma reportes de solo lectura a partir del libro y las asignaciones.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
)

// CustodyRow una asignación abierta valorizada al precio actual del producto.
type CustodyRow struct {
	AssignmentID string          `json:"assignment_id"`
	ProductID    string          `json:"product_id"`
	SKU          string          `json:"sku"`
	ProductName  string          `json:"product_name"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Value        decimal.Decimal `json:"value"`
	AssignedAt   time.Time       `json:"assigned_at"`
	Notes        string          `json:"notes,omitempty"`
}

// CustodySummary totales del reporte.
type CustodySummary struct {
	Items int             `json:"items"`
	Units int64           `json:"units"`
	Value decimal.Decimal `json:"value"`
}

// CustodyReport lo que un custodio tiene en su poder.
type CustodyReport struct {
	TargetKind  entity.TargetKind `json:"target_kind"`
	TargetID    string            `json:"target_id"`
	TargetName  string            `json:"target_name"`
	Rows        []CustodyRow      `json:"rows"`
	Summary     CustodySummary    `json:"summary"`
	GeneratedAt time.Time         `json:"generated_at"`
	GeneratedBy string            `json:"generated_by"`
}

// PDFRenderer puerto de salida para la representación en PDF.
type PDFRenderer interface {
	RenderCustody(ctx context.Context, r *CustodyReport) ([]byte, error)
}

// CustodyUseCase genera el reporte de custodia de personal o destinos.
type CustodyUseCase struct {
	assignmentRepo  repository.AssignmentRepository
	productRepo     repository.ProductRepository
	personnelRepo   repository.PersonnelRepository
	destinationRepo repository.DestinationRepository
	renderer        PDFRenderer
	now             func() time.Time
}

// NewCustodyUseCase construye el caso de uso inyectando todas sus dependencias.
func NewCustodyUseCase(
	assignmentRepo repository.AssignmentRepository,
	productRepo repository.ProductRepository,
	personnelRepo repository.PersonnelRepository,
	destinationRepo repository.DestinationRepository,
	renderer PDFRenderer,
) *CustodyUseCase {
	return &CustodyUseCase{
		assignmentRepo:  assignmentRepo,
		productRepo:     productRepo,
		personnelRepo:   personnelRepo,
		destinationRepo: destinationRepo,
		renderer:        renderer,
		now:             time.Now,
	}
}

// Custody arma el reporte (requiere generar_reportes).
//
// Retorna:
//   - domain.ErrInvalidInput si el tipo de custodio no es personal ni destino.
//   - domain.ErrNotFound     si el custodio no existe.
func (uc *CustodyUseCase) Custody(ctx context.Context, target entity.Target) (*CustodyReport, error) {
	p, err := authz.Require(ctx, permission.GenerarReportes)
	if err != nil {
		return nil, err
	}
	name, err := uc.targetName(ctx, target)
	if err != nil {
		return nil, err
	}
	open, err := uc.assignmentRepo.ListOpenByTarget(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("report: listar asignaciones: %w", err)
	}

	prices := make(map[string]*entity.Product)
	rep := &CustodyReport{
		TargetKind:  target.Kind,
		TargetID:    target.ID,
		TargetName:  name,
		Rows:        make([]CustodyRow, 0, len(open)),
		Summary:     CustodySummary{Value: decimal.Zero},
		GeneratedAt: uc.now(),
		GeneratedBy: p.User.Name,
	}
	for _, a := range open {
		product, ok := prices[a.ProductID]
		if !ok {
			product, err = uc.productRepo.GetByID(ctx, a.ProductID)
			if err != nil {
				return nil, fmt.Errorf("report: obtener producto: %w", err)
			}
			prices[a.ProductID] = product
		}
		row := CustodyRow{
			AssignmentID: a.ID,
			ProductID:    a.ProductID,
			SKU:          a.ProductSKU,
			ProductName:  a.ProductName,
			Quantity:     a.Quantity,
			UnitPrice:    decimal.Zero,
			Value:        decimal.Zero,
			AssignedAt:   a.CreatedAt,
			Notes:        a.Notes,
		}
		if product != nil {
			row.SKU = product.SKU
			row.ProductName = product.Name
			row.UnitPrice = product.Price
			row.Value = product.Price.Mul(decimal.NewFromInt(a.Quantity))
		}
		rep.Rows = append(rep.Rows, row)
		rep.Summary.Items++
		rep.Summary.Units += row.Quantity
		rep.Summary.Value = rep.Summary.Value.Add(row.Value)
	}
	return rep, nil
}

// CustodyPDF arma el reporte y lo renderiza. Devuelve los bytes y un nombre de archivo sugerido.
func (uc *CustodyUseCase) CustodyPDF(ctx context.Context, target entity.Target) ([]byte, string, error) {
	rep, err := uc.Custody(ctx, target)
	if err != nil {
		return nil, "", err
	}
	if uc.renderer == nil {
		return nil, "", fmt.Errorf("report: renderer PDF no configurado")
	}
	pdf, err := uc.renderer.RenderCustody(ctx, rep)
	if err != nil {
		return nil, "", fmt.Errorf("report: generar pdf: %w", err)
	}
	filename := fmt.Sprintf("custodia_%s_%s.pdf", target.Kind, rep.GeneratedAt.Format("20060102"))
	return pdf, filename, nil
}

func (uc *CustodyUseCase) targetName(ctx context.Context, target entity.Target) (string, error) {
	switch target.Kind {
	case entity.TargetPersonnel:
		person, err := uc.personnelRepo.GetByID(ctx, target.ID)
		if err != nil {
			return "", err
		}
		if person == nil {
			return "", domain.ErrNotFound
		}
		return person.Name, nil
	case entity.TargetDestination:
		dest, err := uc.destinationRepo.GetByID(ctx, target.ID)
		if err != nil {
			return "", err
		}
		if dest == nil {
			return "", domain.ErrNotFound
		}
		return dest.Name, nil
	}
	return "", domain.ErrInvalidInput
}
