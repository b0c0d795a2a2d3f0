package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pawdesk/petshop-service/internal/apperrors"
	"github.com/pawdesk/petshop-service/internal/inventory/dto"
	"github.com/pawdesk/petshop-service/internal/model"
	"github.com/pawdesk/petshop-service/pkg/logger"
	"github.com/stretchr/testify/require"
)

// fakeRepo keeps products, reservations and movements in memory with the same
// semantics as the Postgres repository: availability is computed from active
// reservations and every stock change appends a ledger entry.
type fakeRepo struct {
	products     map[string]*model.Product
	reservations map[string]*model.InventoryReservation
	movements    []model.StockMovement
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products:     map[string]*model.Product{},
		reservations: map[string]*model.InventoryReservation{},
	}
}

func (f *fakeRepo) addProduct(id string, stock float64, tracked bool) {
	f.products[id] = &model.Product{
		BaseModel:    model.BaseModel{ID: id},
		SKU:          "SKU-" + id,
		Name:         "product " + id,
		StockTracked: tracked,
		CurrentStock: stock,
		IsActive:     true,
	}
}

func (f *fakeRepo) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) reservedFor(productID string) float64 {
	var reserved float64
	for _, r := range f.reservations {
		if r.ProductID == productID && r.Status == model.ReservationActive {
			reserved += r.Quantity
		}
	}
	return reserved
}

func (f *fakeRepo) Availability(ctx context.Context, productID string) (*dto.Availability, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, apperrors.NewNotFound("product", productID)
	}
	reserved := f.reservedFor(productID)
	return &dto.Availability{
		ProductID:    productID,
		CurrentStock: p.CurrentStock,
		Reserved:     reserved,
		Available:    p.CurrentStock - reserved,
	}, nil
}

func (f *fakeRepo) ListLowStock(ctx context.Context, storeID *string, page, pageSize int) ([]dto.LowStockItem, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) GetReservation(ctx context.Context, id string) (*model.InventoryReservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepo) ListActiveForOwner(ctx context.Context, owner model.OwnerRef) ([]model.InventoryReservation, error) {
	var out []model.InventoryReservation
	for _, r := range f.reservations {
		if r.OwnerRef == owner && r.Status == model.ReservationActive {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListExpiredActive(ctx context.Context, cutoff time.Time, limit int) ([]model.InventoryReservation, error) {
	var out []model.InventoryReservation
	for _, r := range f.reservations {
		if r.Status == model.ReservationActive && r.ExpiresAt != nil && r.ExpiresAt.Before(cutoff) {
			out = append(out, *r)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateReservation(ctx context.Context, res *model.InventoryReservation) error {
	p, ok := f.products[res.ProductID]
	if !ok {
		return apperrors.NewNotFound("product", res.ProductID)
	}
	if !p.StockTracked {
		return apperrors.NewBusinessRule("product %s is not stock-tracked", res.ProductID)
	}
	available := p.CurrentStock - f.reservedFor(res.ProductID)
	if res.Quantity > available {
		return apperrors.NewInsufficientStock(res.ProductID, res.Quantity, available)
	}
	cp := *res
	f.reservations[res.ID] = &cp
	return nil
}

func (f *fakeRepo) MarkReleased(ctx context.Context, id string) (bool, error) {
	r, ok := f.reservations[id]
	if !ok || r.Status != model.ReservationActive {
		return false, nil
	}
	r.Status = model.ReservationReleased
	return true, nil
}

func (f *fakeRepo) appendMovement(p *model.Product, reason model.MovementReason, change float64) {
	f.movements = append(f.movements, model.StockMovement{
		ID:             uuid.New().String(),
		ProductID:      p.ID,
		Reason:         reason,
		QuantityChange: change,
		QuantityBefore: p.CurrentStock,
		QuantityAfter:  p.CurrentStock + change,
		CreatedAt:      time.Now(),
	})
}

func (f *fakeRepo) ConsumeReservation(ctx context.Context, res *model.InventoryReservation, performedBy string) error {
	r, ok := f.reservations[res.ID]
	if !ok || r.Status != model.ReservationActive {
		return apperrors.NewNotFound("active reservation", res.ID)
	}
	p := f.products[r.ProductID]
	f.appendMovement(p, model.MovementConsumption, -r.Quantity)
	p.CurrentStock -= r.Quantity
	r.Status = model.ReservationConsumed
	return nil
}

func (f *fakeRepo) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.Product, error) {
	p, ok := f.products[input.ProductID]
	if !ok {
		return nil, apperrors.NewNotFound("product", input.ProductID)
	}
	if p.CurrentStock+input.QuantityChange < 0 {
		return nil, apperrors.NewBusinessRule("adjustment would drive stock below zero")
	}
	f.appendMovement(p, input.Reason, input.QuantityChange)
	p.CurrentStock += input.QuantityChange
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) DecrementForSale(ctx context.Context, lines []dto.SaleLine, transactionID, performedBy string) error {
	// All-or-nothing: validate every line before touching stock.
	for _, line := range lines {
		p, ok := f.products[line.ProductID]
		if !ok {
			return apperrors.NewNotFound("product", line.ProductID)
		}
		if !p.StockTracked {
			continue
		}
		available := p.CurrentStock - f.reservedFor(line.ProductID)
		if line.Quantity > available {
			return apperrors.NewInsufficientStock(line.ProductID, line.Quantity, available)
		}
	}
	for _, line := range lines {
		p := f.products[line.ProductID]
		if !p.StockTracked {
			continue
		}
		f.appendMovement(p, model.MovementSale, -line.Quantity)
		p.CurrentStock -= line.Quantity
	}
	return nil
}

func (f *fakeRepo) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return f.movements, len(f.movements), nil
}

func testLogger() logger.ZapLogger {
	return logger.NewZapLogger(&logger.ZapLoggerConfig{Level: "error", Encoding: "console"})
}

func newUC(repo *fakeRepo) *inventoryUseCase {
	return NewInventoryUseCase(repo, nil, nil, testLogger()).(*inventoryUseCase)
}

func owner(id string) model.OwnerRef {
	return model.OwnerRef{Type: model.OwnerAppointment, ID: id}
}

func TestCreateReservationNarrowsAvailability(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("p1", 10, true)
	uc := newUC(repo)
	ctx := context.Background()

	res, err := uc.CreateReservation(ctx, &dto.CreateReservationInput{
		ProductID: "p1", Quantity: 4, Owner: owner("appt-1"),
	})
	require.NoError(t, err)
	require.Equal(t, model.ReservationActive, res.Status)

	av, err := uc.Availability(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 10.0, av.CurrentStock)
	require.Equal(t, 4.0, av.Reserved)
	require.Equal(t, 6.0, av.Available)

	// A hold writes no ledger entry.
	require.Empty(t, repo.movements)
}

func TestCreateReservationOverbooking(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("p1", 5, true)
	uc := newUC(repo)
	ctx := context.Background()

	_, err := uc.CreateReservation(ctx, &dto.CreateReservationInput{
		ProductID: "p1", Quantity: 3, Owner: owner("a"),
	})
	require.NoError(t, err)

	// 5 on hand, 3 held: a second hold for 3 must fail.
	_, err = uc.CreateReservation(ctx, &dto.CreateReservationInput{
		ProductID: "p1", Quantity: 3, Owner: owner("b"),
	})
	require.True(t, apperrors.IsKind(err, apperrors.KindInsufficientStock))

	av, _ := uc.Availability(ctx, "p1")
	require.Equal(t, 2.0, av.Available)
}

func TestCreateReservationValidation(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("p1", 10, true)
	repo.addProduct("svc-fee", 0, false)
	uc := newUC(repo)
	ctx := context.Background()

	cases := []struct {
		name  string
		input dto.CreateReservationInput
		kind  apperrors.Kind
	}{
		{"zero quantity", dto.CreateReservationInput{ProductID: "p1", Quantity: 0, Owner: owner("a")}, apperrors.KindValidation},
		{"negative quantity", dto.CreateReservationInput{ProductID: "p1", Quantity: -1, Owner: owner("a")}, apperrors.KindValidation},
		{"missing owner", dto.CreateReservationInput{ProductID: "p1", Quantity: 1}, apperrors.KindValidation},
		{"bad owner type", dto.CreateReservationInput{ProductID: "p1", Quantity: 1, Owner: model.OwnerRef{Type: "order", ID: "x"}}, apperrors.KindValidation},
		{"unknown product", dto.CreateReservationInput{ProductID: "nope", Quantity: 1, Owner: owner("a")}, apperrors.KindNotFound},
		{"untracked product", dto.CreateReservationInput{ProductID: "svc-fee", Quantity: 1, Owner: owner("a")}, apperrors.KindBusinessRule},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.CreateReservation(ctx, &tc.input)
			require.True(t, apperrors.IsKind(err, tc.kind), "got %v", err)
		})
	}
}

func TestReleaseRestoresAvailabilityWithoutMovement(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("p1", 10, true)
	uc := newUC(repo)
	ctx := context.Background()

	res, err := uc.CreateReservation(ctx, &dto.CreateReservationInput{
		ProductID: "p1", Quantity: 4, Owner: owner("a"),
	})
	require.NoError(t, err)

	require.NoError(t, uc.ReleaseReservation(ctx, res.ID, "tester"))

	av, _ := uc.Availability(ctx, "p1")
	require.Equal(t, 10.0, av.Available)
	require.Equal(t, 10.0, av.CurrentStock)
	require.Empty(t, repo.movements)

	// A second release must not double-credit availability.
	err = uc.ReleaseReservation(ctx, res.ID, "tester")
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	av, _ = uc.Availability(ctx, "p1")
	require.Equal(t, 10.0, av.Available)
}

func TestConsumeDecrementsStockAndWritesLedger(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("p1", 10, true)
	uc := newUC(repo)
	ctx := context.Background()

	res, err := uc.CreateReservation(ctx, &dto.CreateReservationInput{
		ProductID: "p1", Quantity: 4, Owner: owner("a"),
	})
	require.NoError(t, err)

	consumed, err := uc.ConsumeReservation(ctx, res.ID, "tester")
	require.NoError(t, err)
	require.Equal(t, model.ReservationConsumed, consumed.Status)

	av, _ := uc.Availability(ctx, "p1")
	require.Equal(t, 6.0, av.CurrentStock)
	require.Equal(t, 0.0, av.Reserved)
	require.Equal(t, 6.0, av.Available)

	require.Len(t, repo.movements, 1)
	m := repo.movements[0]
	require.Equal(t, model.MovementConsumption, m.Reason)
	require.Equal(t, -4.0, m.QuantityChange)
	require.Equal(t, 10.0, m.QuantityBefore)
	require.Equal(t, 6.0, m.QuantityAfter)

	// Consuming a terminal reservation is a business rule violation.
	_, err = uc.ConsumeReservation(ctx, res.ID, "tester")
	require.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))
}

func TestAdjustStockRejectsBadReasons(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("p1", 10, true)
	uc := newUC(repo)
	ctx := context.Background()

	_, err := uc.AdjustStock(ctx, &dto.AdjustStockInput{
		ProductID: "p1", QuantityChange: 1, Reason: model.MovementSale,
	})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = uc.AdjustStock(ctx, &dto.AdjustStockInput{
		ProductID: "p1", QuantityChange: 0, Reason: model.MovementReceipt,
	})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	p, err := uc.AdjustStock(ctx, &dto.AdjustStockInput{
		ProductID: "p1", QuantityChange: 5, Reason: model.MovementReceipt,
	})
	require.NoError(t, err)
	require.Equal(t, 15.0, p.CurrentStock)

	// Stock can never go below zero.
	_, err = uc.AdjustStock(ctx, &dto.AdjustStockInput{
		ProductID: "p1", QuantityChange: -999, Reason: model.MovementAdjustment,
	})
	require.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))
}

func TestDecrementForSaleAllOrNothing(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("p1", 10, true)
	repo.addProduct("p2", 1, true)
	uc := newUC(repo)
	ctx := context.Background()

	err := uc.DecrementForSale(ctx, []dto.SaleLine{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 5},
	}, "tx-1", "tester")
	require.True(t, apperrors.IsKind(err, apperrors.KindInsufficientStock))

	// The passing line must not have been decremented.
	av, _ := uc.Availability(ctx, "p1")
	require.Equal(t, 10.0, av.CurrentStock)

	err = uc.DecrementForSale(ctx, []dto.SaleLine{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	}, "tx-2", "tester")
	require.NoError(t, err)

	av, _ = uc.Availability(ctx, "p1")
	require.Equal(t, 8.0, av.CurrentStock)
	av, _ = uc.Availability(ctx, "p2")
	require.Equal(t, 0.0, av.CurrentStock)
}

func TestSweepExpiredReleasesOnlyPastDue(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("p1", 10, true)
	uc := newUC(repo)
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	expired, err := uc.CreateReservation(ctx, &dto.CreateReservationInput{
		ProductID: "p1", Quantity: 2, Owner: owner("a"), ExpiresAt: &past,
	})
	require.NoError(t, err)
	_, err = uc.CreateReservation(ctx, &dto.CreateReservationInput{
		ProductID: "p1", Quantity: 3, Owner: owner("b"), ExpiresAt: &future,
	})
	require.NoError(t, err)
	_, err = uc.CreateReservation(ctx, &dto.CreateReservationInput{
		ProductID: "p1", Quantity: 1, Owner: owner("c"),
	})
	require.NoError(t, err)

	released, err := uc.SweepExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, released)

	got, _ := uc.repo.GetReservation(ctx, expired.ID)
	require.Equal(t, model.ReservationReleased, got.Status)

	av, _ := uc.Availability(ctx, "p1")
	require.Equal(t, 4.0, av.Reserved)
	require.Equal(t, 6.0, av.Available)
}
