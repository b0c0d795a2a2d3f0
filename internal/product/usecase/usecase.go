package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pawdesk/petshop-service/internal/apperrors"
	"github.com/pawdesk/petshop-service/internal/inventory"
	invdto "github.com/pawdesk/petshop-service/internal/inventory/dto"
	"github.com/pawdesk/petshop-service/internal/model"
	"github.com/pawdesk/petshop-service/internal/product"
	"github.com/pawdesk/petshop-service/internal/product/dto"
	"github.com/pawdesk/petshop-service/pkg/cache"
	"github.com/pawdesk/petshop-service/pkg/logger"
	"go.uber.org/zap"
)

type productUseCase struct {
	repo      product.Repository
	inventory inventory.UseCase
	cache     *cache.RedisClient
	logger    logger.ZapLogger
}

func NewProductUseCase(repo product.Repository, inv inventory.UseCase, cache *cache.RedisClient, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:      repo,
		inventory: inv,
		cache:     cache,
		logger:    log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if input.SKU == "" || input.Name == "" {
		return nil, apperrors.NewValidation("sku and name are required")
	}
	if input.UnitPrice < 0 {
		return nil, apperrors.NewValidation("unit price cannot be negative")
	}

	unique, err := uc.repo.IsSKUUnique(ctx, input.StoreID, input.SKU, "")
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, apperrors.NewConflict("SKU %s already exists", input.SKU)
	}

	if input.Barcode != "" {
		unique, err := uc.repo.IsBarcodeUnique(ctx, input.StoreID, input.Barcode, "")
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, apperrors.NewConflict("barcode %s already exists", input.Barcode)
		}
	}

	id := uuid.New().String()
	now := time.Now()

	barcode := &input.Barcode
	if input.Barcode == "" {
		barcode = nil
	}

	p := &model.Product{
		BaseModel:        model.BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		StoreID:          input.StoreID,
		SupplierID:       input.SupplierID,
		SKU:              input.SKU,
		Barcode:          barcode,
		Name:             input.Name,
		Description:      &input.Description,
		UnitPrice:        input.UnitPrice,
		CostPrice:        input.CostPrice,
		VATRate:          input.VATRate,
		StockTracked:     input.StockTracked,
		ReorderThreshold: input.ReorderThreshold,
		CurrentStock:     0,
		IsActive:         true,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	// Opening stock goes through the inventory engine so the ledger records it.
	if input.StockTracked && input.OpeningStock > 0 {
		updated, err := uc.inventory.AdjustStock(ctx, &invdto.AdjustStockInput{
			ProductID:      p.ID,
			StoreID:        &input.StoreID,
			QuantityChange: input.OpeningStock,
			Reason:         model.MovementReceipt,
			Notes:          "opening stock",
			PerformedBy:    input.PerformedBy,
		})
		if err != nil {
			uc.logger.Error("failed to apply opening stock", zap.String("product_id", p.ID), zap.Error(err))
		} else {
			p.CurrentStock = updated.CurrentStock
		}
	}

	go uc.invalidateProductCache(context.Background(), input.StoreID)

	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NewNotFound("product", id)
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	cacheKey, err := uc.generateCacheKey(filters)
	if err == nil && uc.cache != nil {
		val, err := uc.cache.Client.Get(ctx, cacheKey).Result()
		if err == nil {
			var result struct {
				Products []model.Product
				Count    int
			}
			if err := json.Unmarshal([]byte(val), &result); err == nil {
				return result.Products, result.Count, nil
			}
		}
	}

	products, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if cacheKey != "" && uc.cache != nil {
		cacheData := struct {
			Products []model.Product
			Count    int
		}{
			Products: products,
			Count:    count,
		}
		if data, err := json.Marshal(cacheData); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, 5*time.Minute)
		}
	}

	return products, count, nil
}

func (uc *productUseCase) generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("products:list:%s:%x", filters.StoreID, md5.Sum(data)), nil
}

func (uc *productUseCase) invalidateProductCache(ctx context.Context, storeID string) {
	if uc.cache == nil {
		return
	}
	pattern := fmt.Sprintf("products:list:%s:*", storeID)
	keys, err := uc.cache.Client.Keys(ctx, pattern).Result()
	if err == nil && len(keys) > 0 {
		uc.cache.Client.Del(ctx, keys...)
	}
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NewNotFound("product", input.ID)
	}

	if p.SKU != input.SKU {
		unique, err := uc.repo.IsSKUUnique(ctx, p.StoreID, input.SKU, p.ID)
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, apperrors.NewConflict("SKU %s already exists", input.SKU)
		}
	}

	p.SupplierID = input.SupplierID
	p.SKU = input.SKU
	p.Name = input.Name
	p.Description = &input.Description
	p.UnitPrice = input.UnitPrice
	p.CostPrice = input.CostPrice
	p.VATRate = input.VATRate
	p.StockTracked = input.StockTracked
	p.ReorderThreshold = input.ReorderThreshold
	p.IsActive = input.IsActive
	if input.Barcode != "" {
		bc := input.Barcode
		p.Barcode = &bc
	} else {
		p.Barcode = nil
	}

	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	go uc.invalidateProductCache(context.Background(), p.StoreID)

	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return nil // Already deleted
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	go uc.invalidateProductCache(context.Background(), p.StoreID)

	return nil
}
