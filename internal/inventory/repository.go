package inventory

import (
	"context"
	"time"

	"github.com/pawdesk/petshop-service/internal/inventory/dto"
	"github.com/pawdesk/petshop-service/internal/model"
)

type Repository interface {
	// Product stock reads
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
	Availability(ctx context.Context, productID string) (*dto.Availability, error)
	ListLowStock(ctx context.Context, storeID *string, page, pageSize int) ([]dto.LowStockItem, int, error)

	// Reservations
	GetReservation(ctx context.Context, id string) (*model.InventoryReservation, error)
	ListActiveForOwner(ctx context.Context, owner model.OwnerRef) ([]model.InventoryReservation, error)
	ListExpiredActive(ctx context.Context, cutoff time.Time, limit int) ([]model.InventoryReservation, error)

	// CreateReservation checks availability and inserts the reservation inside
	// a single transaction with the product row locked, so two concurrent
	// requests cannot both pass the availability check.
	CreateReservation(ctx context.Context, res *model.InventoryReservation) error

	// MarkReleased flips an active reservation to released. Returns false when
	// the reservation was not active (already terminal or absent).
	MarkReleased(ctx context.Context, id string) (bool, error)

	// ConsumeReservation atomically decrements stock, appends the consumption
	// movement and marks the reservation consumed.
	ConsumeReservation(ctx context.Context, res *model.InventoryReservation, performedBy string) error

	// AdjustStock applies a signed delta (receipt, manual adjustment,
	// reconciliation) with its ledger entry in one transaction.
	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.Product, error)

	// DecrementForSale decrements every stock-tracked line in one transaction;
	// any shortage aborts the whole batch.
	DecrementForSale(ctx context.Context, lines []dto.SaleLine, transactionID, performedBy string) error

	// Movements / audit
	ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error)
}
