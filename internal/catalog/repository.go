package catalog

import (
	"context"

	"github.com/pawdesk/petshop-service/internal/catalog/dto"
	"github.com/pawdesk/petshop-service/internal/model"
)

type Repository interface {
	CreateService(ctx context.Context, s *model.Service) error
	FindServiceByID(ctx context.Context, id string) (*model.Service, error)
	FindAllServices(ctx context.Context, f *dto.ServiceFilters) ([]model.Service, int, error)
	UpdateService(ctx context.Context, s *model.Service) error
	DeleteService(ctx context.Context, id string) error
	ReplaceConsumables(ctx context.Context, serviceID string, items []model.ServiceConsumable) error

	CreateSupplier(ctx context.Context, s *model.Supplier) error
	FindSupplierByID(ctx context.Context, id string) (*model.Supplier, error)
	FindAllSuppliers(ctx context.Context, page, pageSize int) ([]model.Supplier, int, error)
	UpdateSupplier(ctx context.Context, s *model.Supplier) error
	DeleteSupplier(ctx context.Context, id string) error
}
