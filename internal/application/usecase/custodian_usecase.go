package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/custodia-api/internal/application/authz"
	"github.com/jhoicas/custodia-api/internal/application/dto"
	"github.com/jhoicas/custodia-api/internal/domain"
	"github.com/jhoicas/custodia-api/internal/domain/entity"
	"github.com/jhoicas/custodia-api/internal/domain/permission"
	"github.com/jhoicas/custodia-api/internal/domain/repository"
)

// CustodianUseCase administra los custodios posibles de una asignación: personal y destinos.
type CustodianUseCase struct {
	personnelRepo   repository.PersonnelRepository
	destinationRepo repository.DestinationRepository
}

// NewCustodianUseCase construye el caso de uso.
func NewCustodianUseCase(personnelRepo repository.PersonnelRepository, destinationRepo repository.DestinationRepository) *CustodianUseCase {
	return &CustodianUseCase{personnelRepo: personnelRepo, destinationRepo: destinationRepo}
}

// CreatePersonnel registra una persona (requiere crear_asignaciones).
func (uc *CustodianUseCase) CreatePersonnel(ctx context.Context, in dto.CreatePersonnelRequest) (*dto.PersonnelResponse, error) {
	if _, err := authz.Require(ctx, permission.CrearAsignaciones); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	p := &entity.Personnel{
		ID:        uuid.New().String(),
		Name:      name,
		Position:  in.Position,
		Email:     strings.TrimSpace(in.Email),
		Phone:     in.Phone,
		Active:    true,
		CreatedAt: time.Now(),
	}
	if err := uc.personnelRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return toPersonnelResponse(p), nil
}

// ListPersonnel lista personal activo con sus asignaciones abiertas (requiere ver_asignaciones).
func (uc *CustodianUseCase) ListPersonnel(ctx context.Context) ([]dto.PersonnelResponse, error) {
	if _, err := authz.Require(ctx, permission.VerAsignaciones); err != nil {
		return nil, err
	}
	list, err := uc.personnelRepo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PersonnelResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toPersonnelResponse(p))
	}
	return out, nil
}

// CreateDestination registra un destino (requiere crear_asignaciones).
func (uc *CustodianUseCase) CreateDestination(ctx context.Context, in dto.CreateDestinationRequest) (*dto.DestinationResponse, error) {
	if _, err := authz.Require(ctx, permission.CrearAsignaciones); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	d := &entity.Destination{
		ID:        uuid.New().String(),
		Name:      name,
		Kind:      in.Kind,
		Contact:   in.Contact,
		Phone:     in.Phone,
		Address:   in.Address,
		Active:    true,
		CreatedAt: time.Now(),
	}
	if err := uc.destinationRepo.Create(ctx, d); err != nil {
		return nil, err
	}
	return toDestinationResponse(d), nil
}

// ListDestinations lista destinos activos con sus asignaciones abiertas (requiere ver_asignaciones).
func (uc *CustodianUseCase) ListDestinations(ctx context.Context) ([]dto.DestinationResponse, error) {
	if _, err := authz.Require(ctx, permission.VerAsignaciones); err != nil {
		return nil, err
	}
	list, err := uc.destinationRepo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DestinationResponse, 0, len(list))
	for _, d := range list {
		out = append(out, *toDestinationResponse(d))
	}
	return out, nil
}

func toPersonnelResponse(p *entity.Personnel) *dto.PersonnelResponse {
	return &dto.PersonnelResponse{
		ID:              p.ID,
		Name:            p.Name,
		Position:        p.Position,
		Email:           p.Email,
		Phone:           p.Phone,
		Active:          p.Active,
		OpenAssignments: p.OpenAssignments,
		CreatedAt:       p.CreatedAt,
	}
}

func toDestinationResponse(d *entity.Destination) *dto.DestinationResponse {
	return &dto.DestinationResponse{
		ID:              d.ID,
		Name:            d.Name,
		Kind:            d.Kind,
		Contact:         d.Contact,
		Phone:           d.Phone,
		Address:         d.Address,
		Active:          d.Active,
		OpenAssignments: d.OpenAssignments,
		CreatedAt:       d.CreatedAt,
	}
}
