package customer

import (
	"context"

	"github.com/pawdesk/petshop-service/internal/customer/dto"
	"github.com/pawdesk/petshop-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	FindAll(ctx context.Context, f *dto.CustomerFilters) ([]model.Customer, int, error)
	Update(ctx context.Context, c *model.Customer) error
	Delete(ctx context.Context, id string) error

	CreatePet(ctx context.Context, p *model.Pet) error
	FindPetByID(ctx context.Context, id string) (*model.Pet, error)
	FindPetsByCustomer(ctx context.Context, customerID string) ([]model.Pet, error)
	UpdatePet(ctx context.Context, p *model.Pet) error
	DeletePet(ctx context.Context, id string) error
}
