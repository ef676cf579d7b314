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

// SupplierUseCase catálogo de proveedores. Desactivar no toca los productos que lo referencian.
type SupplierUseCase struct {
	repo        repository.SupplierRepository
	productRepo repository.ProductRepository
	now         func() time.Time
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository, productRepo repository.ProductRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo, productRepo: productRepo, now: time.Now}
}

// Create registra un proveedor (requiere crear_proveedores).
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	if _, err := authz.Require(ctx, permission.CrearProveedores); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	s := &entity.Supplier{
		ID:        uuid.New().String(),
		Name:      name,
		Contact:   strings.TrimSpace(in.Contact),
		Phone:     strings.TrimSpace(in.Phone),
		Email:     strings.TrimSpace(in.Email),
		Address:   in.Address,
		Website:   strings.TrimSpace(in.Website),
		Notes:     in.Notes,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// GetByID obtiene un proveedor, activo o no (requiere ver_proveedores).
func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	if _, err := authz.Require(ctx, permission.VerProveedores); err != nil {
		return nil, err
	}
	s, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// List proveedores activos por nombre (requiere ver_proveedores).
func (uc *SupplierUseCase) List(ctx context.Context) ([]dto.SupplierResponse, error) {
	if _, err := authz.Require(ctx, permission.VerProveedores); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toSupplierResponse(s))
	}
	return out, nil
}

// Update actualiza los campos presentes (requiere editar_proveedores).
func (uc *SupplierUseCase) Update(ctx context.Context, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	if _, err := authz.Require(ctx, permission.EditarProveedores); err != nil {
		return nil, err
	}
	s, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		s.Name = name
	}
	if in.Contact != nil {
		s.Contact = strings.TrimSpace(*in.Contact)
	}
	if in.Phone != nil {
		s.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		s.Email = strings.TrimSpace(*in.Email)
	}
	if in.Address != nil {
		s.Address = *in.Address
	}
	if in.Website != nil {
		s.Website = strings.TrimSpace(*in.Website)
	}
	if in.Notes != nil {
		s.Notes = *in.Notes
	}
	if in.Active != nil {
		s.Active = *in.Active
	}
	s.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// Deactivate desactiva el proveedor (requiere editar_proveedores).
func (uc *SupplierUseCase) Deactivate(ctx context.Context, id string) error {
	if _, err := authz.Require(ctx, permission.EditarProveedores); err != nil {
		return err
	}
	s, err := uc.get(ctx, id)
	if err != nil {
		return err
	}
	s.Active = false
	s.UpdatedAt = uc.now()
	return uc.repo.Update(ctx, s)
}

// Products lista los productos activos del proveedor (requiere ver_productos).
func (uc *SupplierUseCase) Products(ctx context.Context, id string) ([]dto.ProductResponse, error) {
	if _, err := authz.Require(ctx, permission.VerProductos); err != nil {
		return nil, err
	}
	if _, err := uc.get(ctx, id); err != nil {
		return nil, err
	}
	list, err := uc.productRepo.List(ctx, repository.ProductFilter{SupplierID: id})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toProductResponse(p))
	}
	return out, nil
}

func (uc *SupplierUseCase) get(ctx context.Context, id string) (*entity.Supplier, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:        s.ID,
		Name:      s.Name,
		Contact:   s.Contact,
		Phone:     s.Phone,
		Email:     s.Email,
		Address:   s.Address,
		Website:   s.Website,
		Notes:     s.Notes,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
