package inventory

import (
	"context"
	"time"

	"github.com/pawdesk/petshop-service/internal/inventory/dto"
	"github.com/pawdesk/petshop-service/internal/model"
)

type UseCase interface {
	CreateReservation(ctx context.Context, input *dto.CreateReservationInput) (*model.InventoryReservation, error)
	ReleaseReservation(ctx context.Context, reservationID, performedBy string) error
	ConsumeReservation(ctx context.Context, reservationID, performedBy string) (*model.InventoryReservation, error)
	ListActiveForOwner(ctx context.Context, owner model.OwnerRef) ([]model.InventoryReservation, error)

	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.Product, error)
	DecrementForSale(ctx context.Context, lines []dto.SaleLine, transactionID, performedBy string) error

	Availability(ctx context.Context, productID string) (*dto.Availability, error)
	ListLowStock(ctx context.Context, storeID *string, page, pageSize int) ([]dto.LowStockItem, int, error)
	ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error)

	// SweepExpired releases active reservations whose expiry has passed and
	// returns how many were released.
	SweepExpired(ctx context.Context) (int, error)
}

// Locker is the distributed lock used to serialize stock mutations per
// product. Satisfied by cache.RedisClient.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

// EventPublisher emits stock movement events for downstream consumers
// (low-stock alerting, reporting). Satisfied by broker.KafkaProducer.
type EventPublisher interface {
	Publish(ctx context.Context, key, value []byte) error
}
