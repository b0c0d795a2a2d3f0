package product

import (
	"context"

	"github.com/pawdesk/petshop-service/internal/model"
	"github.com/pawdesk/petshop-service/internal/product/dto"
)

type Repository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
	IsSKUUnique(ctx context.Context, storeID, sku, excludeID string) (bool, error)
	IsBarcodeUnique(ctx context.Context, storeID, barcode, excludeID string) (bool, error)
}
