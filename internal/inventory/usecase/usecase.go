package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pawdesk/petshop-service/internal/apperrors"
	"github.com/pawdesk/petshop-service/internal/inventory"
	"github.com/pawdesk/petshop-service/internal/inventory/dto"
	"github.com/pawdesk/petshop-service/internal/model"
	"github.com/pawdesk/petshop-service/pkg/logger"
	"go.uber.org/zap"
)

const sweepBatchSize = 100

type inventoryUseCase struct {
	repo      inventory.Repository
	locker    inventory.Locker
	publisher inventory.EventPublisher
	logger    logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, locker inventory.Locker, publisher inventory.EventPublisher, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:      repo,
		locker:    locker,
		publisher: publisher,
		logger:    log,
	}
}

// lockProduct serializes in-process and cross-instance writers on a product.
// Correctness still rests on the repository transaction; the lock keeps
// contention off the database.
func (uc *inventoryUseCase) lockProduct(ctx context.Context, productID string) (func(), error) {
	if uc.locker == nil {
		return func() {}, nil
	}

	lockKey := fmt.Sprintf("lock:stock:%s", productID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.locker.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return nil, apperrors.NewConflict("product %s is busy, please retry", productID)
	}

	return func() { uc.locker.ReleaseLock(ctx, lockKey, lockValue) }, nil
}

func (uc *inventoryUseCase) CreateReservation(ctx context.Context, input *dto.CreateReservationInput) (*model.InventoryReservation, error) {
	if input.Quantity <= 0 {
		return nil, apperrors.NewValidation("reservation quantity must be positive, got %.2f", input.Quantity)
	}
	if input.Owner.ID == "" {
		return nil, apperrors.NewValidation("reservation owner id is required")
	}
	switch input.Owner.Type {
	case model.OwnerAppointment, model.OwnerTransaction:
	default:
		return nil, apperrors.NewValidation("unknown reservation owner type %q", input.Owner.Type)
	}

	p, err := uc.repo.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NewNotFound("product", input.ProductID)
	}
	if !p.StockTracked {
		return nil, apperrors.NewBusinessRule("product %s is not stock-tracked", input.ProductID)
	}

	unlock, err := uc.lockProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := time.Now()
	res := &model.InventoryReservation{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		OwnerRef:  input.Owner,
		Status:    model.ReservationActive,
		ExpiresAt: input.ExpiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The availability check happens inside the repository transaction; no
	// stock movement is written, the hold only narrows availability.
	if err := uc.repo.CreateReservation(ctx, res); err != nil {
		return nil, err
	}

	uc.logger.Info("reservation created",
		zap.String("reservation_id", res.ID),
		zap.String("product_id", res.ProductID),
		zap.Float64("quantity", res.Quantity),
		zap.String("owner_type", string(res.Type)),
		zap.String("owner_id", res.OwnerRef.ID),
	)
	return res, nil
}

func (uc *inventoryUseCase) ReleaseReservation(ctx context.Context, reservationID, performedBy string) error {
	res, err := uc.repo.GetReservation(ctx, reservationID)
	if err != nil {
		return err
	}
	// Releasing an absent or already-terminal reservation is benign; it must
	// never double-credit availability.
	if res == nil || res.Terminal() {
		return apperrors.NewNotFound("active reservation", reservationID)
	}

	ok, err := uc.repo.MarkReleased(ctx, reservationID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewNotFound("active reservation", reservationID)
	}

	uc.logger.Info("reservation released",
		zap.String("reservation_id", reservationID),
		zap.String("performed_by", performedBy),
	)
	return nil
}

func (uc *inventoryUseCase) ConsumeReservation(ctx context.Context, reservationID, performedBy string) (*model.InventoryReservation, error) {
	res, err := uc.repo.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, apperrors.NewNotFound("reservation", reservationID)
	}
	if res.Terminal() {
		return nil, apperrors.NewBusinessRule("reservation %s is already %s", reservationID, res.Status)
	}

	unlock, err := uc.lockProduct(ctx, res.ProductID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := uc.repo.ConsumeReservation(ctx, res, performedBy); err != nil {
		return nil, err
	}
	res.Status = model.ReservationConsumed
	res.UpdatedAt = time.Now()

	uc.logger.Info("reservation consumed",
		zap.String("reservation_id", res.ID),
		zap.String("product_id", res.ProductID),
		zap.Float64("quantity", res.Quantity),
	)

	go uc.publishMovementEvent(context.Background(), res.ProductID, model.MovementConsumption, -res.Quantity, res.OwnerRef.ID)
	return res, nil
}

func (uc *inventoryUseCase) ListActiveForOwner(ctx context.Context, owner model.OwnerRef) ([]model.InventoryReservation, error) {
	return uc.repo.ListActiveForOwner(ctx, owner)
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.Product, error) {
	switch input.Reason {
	case model.MovementReceipt, model.MovementAdjustment, model.MovementReconciliation:
	default:
		return nil, apperrors.NewValidation("reason %q is not valid for a stock adjustment", input.Reason)
	}
	if input.QuantityChange == 0 {
		return nil, apperrors.NewValidation("quantity change must be non-zero")
	}

	unlock, err := uc.lockProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, err := uc.repo.AdjustStock(ctx, input)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("stock adjusted",
		zap.String("product_id", input.ProductID),
		zap.Float64("quantity_change", input.QuantityChange),
		zap.String("reason", string(input.Reason)),
	)

	go uc.publishMovementEvent(context.Background(), input.ProductID, input.Reason, input.QuantityChange, input.ReferenceID)
	return p, nil
}

func (uc *inventoryUseCase) DecrementForSale(ctx context.Context, lines []dto.SaleLine, transactionID, performedBy string) error {
	if len(lines) == 0 {
		return nil
	}

	// Stable lock order across concurrent sales touching the same products.
	sorted := make([]dto.SaleLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	for _, line := range sorted {
		if line.Quantity <= 0 {
			return apperrors.NewValidation("sale quantity must be positive for product %s", line.ProductID)
		}
	}

	if err := uc.repo.DecrementForSale(ctx, sorted, transactionID, performedBy); err != nil {
		return err
	}

	for _, line := range sorted {
		go uc.publishMovementEvent(context.Background(), line.ProductID, model.MovementSale, -line.Quantity, transactionID)
	}
	return nil
}

func (uc *inventoryUseCase) Availability(ctx context.Context, productID string) (*dto.Availability, error) {
	return uc.repo.Availability(ctx, productID)
}

func (uc *inventoryUseCase) ListLowStock(ctx context.Context, storeID *string, page, pageSize int) ([]dto.LowStockItem, int, error) {
	return uc.repo.ListLowStock(ctx, storeID, page, pageSize)
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return uc.repo.ListMovements(ctx, f)
}

func (uc *inventoryUseCase) SweepExpired(ctx context.Context) (int, error) {
	expired, err := uc.repo.ListExpiredActive(ctx, time.Now(), sweepBatchSize)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, res := range expired {
		ok, err := uc.repo.MarkReleased(ctx, res.ID)
		if err != nil {
			uc.logger.Error("failed to release expired reservation",
				zap.String("reservation_id", res.ID), zap.Error(err))
			continue
		}
		if ok {
			released++
			uc.logger.Info("expired reservation released",
				zap.String("reservation_id", res.ID),
				zap.String("product_id", res.ProductID),
			)
		}
	}
	return released, nil
}

type movementEvent struct {
	EventType      string    `json:"event_type"`
	ProductID      string    `json:"product_id"`
	Reason         string    `json:"reason"`
	QuantityChange float64   `json:"quantity_change"`
	ReferenceID    string    `json:"reference_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

func (uc *inventoryUseCase) publishMovementEvent(ctx context.Context, productID string, reason model.MovementReason, change float64, referenceID string) {
	if uc.publisher == nil {
		return
	}
	event := movementEvent{
		EventType:      "StockMovement",
		ProductID:      productID,
		Reason:         string(reason),
		QuantityChange: change,
		ReferenceID:    referenceID,
		Timestamp:      time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := uc.publisher.Publish(ctx, []byte(productID), data); err != nil {
		uc.logger.Error("failed to publish movement event",
			zap.String("product_id", productID), zap.Error(err))
	}
}
