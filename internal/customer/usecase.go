package customer

import (
	"context"

	"github.com/pawdesk/petshop-service/internal/customer/dto"
	"github.com/pawdesk/petshop-service/internal/model"
)

type UseCase interface {
	CreateCustomer(ctx context.Context, input *dto.CustomerInput) (*model.Customer, error)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	ListCustomers(ctx context.Context, filters *dto.CustomerFilters) ([]model.Customer, int, error)
	UpdateCustomer(ctx context.Context, id string, input *dto.CustomerInput) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error

	CreatePet(ctx context.Context, input *dto.PetInput) (*model.Pet, error)
	GetPet(ctx context.Context, id string) (*model.Pet, error)
	UpdatePet(ctx context.Context, id string, input *dto.PetInput) (*model.Pet, error)
	DeletePet(ctx context.Context, id string) error
}
