package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pawdesk/petshop-service/internal/apperrors"
	"github.com/pawdesk/petshop-service/internal/customer"
	"github.com/pawdesk/petshop-service/internal/customer/dto"
	"github.com/pawdesk/petshop-service/internal/model"
	"github.com/pawdesk/petshop-service/pkg/logger"
)

type customerUseCase struct {
	repo   customer.Repository
	logger logger.ZapLogger
}

func NewCustomerUseCase(repo customer.Repository, log logger.ZapLogger) customer.UseCase {
	return &customerUseCase{repo: repo, logger: log}
}

func (uc *customerUseCase) CreateCustomer(ctx context.Context, input *dto.CustomerInput) (*model.Customer, error) {
	if input.Name == "" {
		return nil, apperrors.NewValidation("customer name is required")
	}

	now := time.Now()
	c := &model.Customer{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		StoreID:   input.StoreID,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		Notes:     input.Notes,
		Pets:      []model.Pet{},
	}

	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *customerUseCase) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperrors.NewNotFound("customer", id)
	}
	return c, nil
}

func (uc *customerUseCase) ListCustomers(ctx context.Context, filters *dto.CustomerFilters) ([]model.Customer, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *customerUseCase) UpdateCustomer(ctx context.Context, id string, input *dto.CustomerInput) (*model.Customer, error) {
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperrors.NewNotFound("customer", id)
	}
	if input.Name == "" {
		return nil, apperrors.NewValidation("customer name is required")
	}

	c.Name = input.Name
	c.Email = input.Email
	c.Phone = input.Phone
	c.Address = input.Address
	c.Notes = input.Notes
	c.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *customerUseCase) DeleteCustomer(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func (uc *customerUseCase) CreatePet(ctx context.Context, input *dto.PetInput) (*model.Pet, error) {
	if input.Name == "" || input.Species == "" {
		return nil, apperrors.NewValidation("pet name and species are required")
	}

	owner, err := uc.repo.FindByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, apperrors.NewNotFound("customer", input.CustomerID)
	}

	now := time.Now()
	p := &model.Pet{
		BaseModel:  model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		CustomerID: input.CustomerID,
		Name:       input.Name,
		Species:    input.Species,
		Breed:      input.Breed,
		BirthDate:  input.BirthDate,
		Weight:     input.Weight,
		Notes:      input.Notes,
	}

	if err := uc.repo.CreatePet(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *customerUseCase) GetPet(ctx context.Context, id string) (*model.Pet, error) {
	p, err := uc.repo.FindPetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NewNotFound("pet", id)
	}
	return p, nil
}

func (uc *customerUseCase) UpdatePet(ctx context.Context, id string, input *dto.PetInput) (*model.Pet, error) {
	p, err := uc.repo.FindPetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NewNotFound("pet", id)
	}
	if input.Name == "" || input.Species == "" {
		return nil, apperrors.NewValidation("pet name and species are required")
	}

	p.Name = input.Name
	p.Species = input.Species
	p.Breed = input.Breed
	p.BirthDate = input.BirthDate
	p.Weight = input.Weight
	p.Notes = input.Notes
	p.UpdatedAt = time.Now()

	if err := uc.repo.UpdatePet(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *customerUseCase) DeletePet(ctx context.Context, id string) error {
	return uc.repo.DeletePet(ctx, id)
}
