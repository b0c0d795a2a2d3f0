package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pawdesk/petshop-service/internal/apperrors"
	"github.com/pawdesk/petshop-service/internal/catalog"
	"github.com/pawdesk/petshop-service/internal/catalog/dto"
	"github.com/pawdesk/petshop-service/internal/model"
	"github.com/pawdesk/petshop-service/pkg/logger"
)

type catalogUseCase struct {
	repo     catalog.Repository
	products catalog.ProductReader
	logger   logger.ZapLogger
}

func NewCatalogUseCase(repo catalog.Repository, products catalog.ProductReader, log logger.ZapLogger) catalog.UseCase {
	return &catalogUseCase{
		repo:     repo,
		products: products,
		logger:   log,
	}
}

func (uc *catalogUseCase) CreateService(ctx context.Context, input *dto.CreateServiceInput) (*model.Service, error) {
	if input.Name == "" {
		return nil, apperrors.NewValidation("service name is required")
	}
	if input.Price < 0 {
		return nil, apperrors.NewValidation("price cannot be negative")
	}
	if input.DurationMinutes <= 0 {
		return nil, apperrors.NewValidation("duration must be positive")
	}

	consumables, err := uc.buildConsumables(ctx, input.Consumables)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s := &model.Service{
		BaseModel:       model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		StoreID:         input.StoreID,
		Name:            input.Name,
		Description:     &input.Description,
		DurationMinutes: input.DurationMinutes,
		Price:           input.Price,
		VATRate:         input.VATRate,
		IsActive:        true,
		Consumables:     consumables,
	}
	for i := range s.Consumables {
		s.Consumables[i].ServiceID = s.ID
	}

	if err := uc.repo.CreateService(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// buildConsumables validates each recipe line against the product catalog.
// Non-tracked products may still appear in a recipe; reservation logic skips
// them later.
func (uc *catalogUseCase) buildConsumables(ctx context.Context, inputs []dto.ConsumableInput) ([]model.ServiceConsumable, error) {
	seen := map[string]bool{}
	out := make([]model.ServiceConsumable, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantity <= 0 {
			return nil, apperrors.NewValidation("consumable quantity must be positive")
		}
		if seen[in.ProductID] {
			return nil, apperrors.NewValidation("duplicate consumable product %s", in.ProductID)
		}
		seen[in.ProductID] = true

		p, err := uc.products.GetProduct(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, apperrors.NewNotFound("product", in.ProductID)
		}

		out = append(out, model.ServiceConsumable{
			ID:        uuid.New().String(),
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
		})
	}
	return out, nil
}

func (uc *catalogUseCase) GetService(ctx context.Context, id string) (*model.Service, error) {
	s, err := uc.repo.FindServiceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, apperrors.NewNotFound("service", id)
	}
	return s, nil
}

func (uc *catalogUseCase) ListServices(ctx context.Context, filters *dto.ServiceFilters) ([]model.Service, int, error) {
	return uc.repo.FindAllServices(ctx, filters)
}

func (uc *catalogUseCase) UpdateService(ctx context.Context, input *dto.UpdateServiceInput) (*model.Service, error) {
	s, err := uc.repo.FindServiceByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, apperrors.NewNotFound("service", input.ID)
	}

	if input.Name == "" {
		return nil, apperrors.NewValidation("service name is required")
	}
	if input.DurationMinutes <= 0 {
		return nil, apperrors.NewValidation("duration must be positive")
	}

	consumables, err := uc.buildConsumables(ctx, input.Consumables)
	if err != nil {
		return nil, err
	}
	for i := range consumables {
		consumables[i].ServiceID = s.ID
	}

	s.Name = input.Name
	s.Description = &input.Description
	s.DurationMinutes = input.DurationMinutes
	s.Price = input.Price
	s.VATRate = input.VATRate
	s.IsActive = input.IsActive
	s.UpdatedAt = time.Now()

	if err := uc.repo.UpdateService(ctx, s); err != nil {
		return nil, err
	}
	if err := uc.repo.ReplaceConsumables(ctx, s.ID, consumables); err != nil {
		return nil, err
	}
	s.Consumables = consumables

	return s, nil
}

func (uc *catalogUseCase) DeleteService(ctx context.Context, id string) error {
	s, err := uc.repo.FindServiceByID(ctx, id)
	if err != nil {
		return err
	}
	if s == nil {
		return nil
	}
	return uc.repo.DeleteService(ctx, id)
}

func (uc *catalogUseCase) CreateSupplier(ctx context.Context, input *dto.SupplierInput) (*model.Supplier, error) {
	if input.Name == "" {
		return nil, apperrors.NewValidation("supplier name is required")
	}

	now := time.Now()
	s := &model.Supplier{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		IsActive:  true,
	}

	if err := uc.repo.CreateSupplier(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *catalogUseCase) GetSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	s, err := uc.repo.FindSupplierByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, apperrors.NewNotFound("supplier", id)
	}
	return s, nil
}

func (uc *catalogUseCase) ListSuppliers(ctx context.Context, page, pageSize int) ([]model.Supplier, int, error) {
	return uc.repo.FindAllSuppliers(ctx, page, pageSize)
}

func (uc *catalogUseCase) UpdateSupplier(ctx context.Context, id string, input *dto.SupplierInput) (*model.Supplier, error) {
	s, err := uc.repo.FindSupplierByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, apperrors.NewNotFound("supplier", id)
	}
	if input.Name == "" {
		return nil, apperrors.NewValidation("supplier name is required")
	}

	s.Name = input.Name
	s.Email = input.Email
	s.Phone = input.Phone
	s.Address = input.Address
	s.UpdatedAt = time.Now()

	if err := uc.repo.UpdateSupplier(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *catalogUseCase) DeleteSupplier(ctx context.Context, id string) error {
	return uc.repo.DeleteSupplier(ctx, id)
}
