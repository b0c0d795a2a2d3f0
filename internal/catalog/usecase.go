package catalog

import (
	"context"

	"github.com/pawdesk/petshop-service/internal/catalog/dto"
	"github.com/pawdesk/petshop-service/internal/model"
)

type UseCase interface {
	CreateService(ctx context.Context, input *dto.CreateServiceInput) (*model.Service, error)
	GetService(ctx context.Context, id string) (*model.Service, error)
	ListServices(ctx context.Context, filters *dto.ServiceFilters) ([]model.Service, int, error)
	UpdateService(ctx context.Context, input *dto.UpdateServiceInput) (*model.Service, error)
	DeleteService(ctx context.Context, id string) error

	CreateSupplier(ctx context.Context, input *dto.SupplierInput) (*model.Supplier, error)
	GetSupplier(ctx context.Context, id string) (*model.Supplier, error)
	ListSuppliers(ctx context.Context, page, pageSize int) ([]model.Supplier, int, error)
	UpdateSupplier(ctx context.Context, id string, input *dto.SupplierInput) (*model.Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error
}

// ProductReader resolves consumable recipe lines against the product catalog.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
}
