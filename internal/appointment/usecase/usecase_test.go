package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pawdesk/petshop-service/internal/apperrors"
	"github.com/pawdesk/petshop-service/internal/appointment/dto"
	invdto "github.com/pawdesk/petshop-service/internal/inventory/dto"
	"github.com/pawdesk/petshop-service/internal/model"
	"github.com/pawdesk/petshop-service/pkg/logger"
	"github.com/stretchr/testify/require"
)

type fakeApptRepo struct {
	appointments map[string]*model.Appointment
}

func newFakeApptRepo() *fakeApptRepo {
	return &fakeApptRepo{appointments: map[string]*model.Appointment{}}
}

func (f *fakeApptRepo) Create(ctx context.Context, appt *model.Appointment) error {
	cp := *appt
	f.appointments[appt.ID] = &cp
	return nil
}

func (f *fakeApptRepo) Delete(ctx context.Context, id string) error {
	delete(f.appointments, id)
	return nil
}

func (f *fakeApptRepo) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeApptRepo) FindAll(ctx context.Context, filters *dto.AppointmentFilters) ([]model.Appointment, int, error) {
	var out []model.Appointment
	for _, a := range f.appointments {
		out = append(out, *a)
	}
	return out, len(out), nil
}

// Half-open intervals: an appointment ending exactly when another starts does
// not overlap.
func (f *fakeApptRepo) HasOverlap(ctx context.Context, staffID string, startAt, endAt time.Time, excludeID string) (bool, error) {
	for _, a := range f.appointments {
		if a.StaffID != staffID || a.ID == excludeID || a.Status == model.AppointmentCancelled {
			continue
		}
		if a.StartAt.Before(endAt) && a.EndAt.After(startAt) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApptRepo) MarkConfirmed(ctx context.Context, id string) (bool, error) {
	a, ok := f.appointments[id]
	if !ok || a.Status != model.AppointmentBooked {
		return false, nil
	}
	a.Status = model.AppointmentConfirmed
	return true, nil
}

func (f *fakeApptRepo) MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error) {
	a, ok := f.appointments[id]
	if !ok || a.Status != model.AppointmentConfirmed {
		return false, nil
	}
	a.Status = model.AppointmentCompleted
	a.CompletedAt = &at
	return true, nil
}

func (f *fakeApptRepo) MarkCancelled(ctx context.Context, id string, reason *string, noShow bool, cancelledBy string, at time.Time) (bool, error) {
	a, ok := f.appointments[id]
	if !ok || a.Terminal() {
		return false, nil
	}
	a.Status = model.AppointmentCancelled
	a.CancelReason = reason
	a.NoShow = noShow
	a.CancelledAt = &at
	a.CancelledBy = &cancelledBy
	return true, nil
}

// fakeInventory tracks reservations and supports injected consume failures so
// the partial-completion path can be exercised.
type fakeInventory struct {
	reservations map[string]*model.InventoryReservation
	stock        map[string]float64
	failConsume  map[string]bool // product IDs whose consumption fails
	adjustments  []invdto.AdjustStockInput
	createFails  int // fail after this many successful creates; 0 disables
	created      int
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{
		reservations: map[string]*model.InventoryReservation{},
		stock:        map[string]float64{},
		failConsume:  map[string]bool{},
	}
}

func (f *fakeInventory) CreateReservation(ctx context.Context, input *invdto.CreateReservationInput) (*model.InventoryReservation, error) {
	if f.createFails > 0 && f.created >= f.createFails {
		return nil, apperrors.NewInsufficientStock(input.ProductID, input.Quantity, 0)
	}
	res := &model.InventoryReservation{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		OwnerRef:  input.Owner,
		Status:    model.ReservationActive,
		ExpiresAt: input.ExpiresAt,
	}
	f.reservations[res.ID] = res
	f.created++
	return res, nil
}

func (f *fakeInventory) ReleaseReservation(ctx context.Context, id, performedBy string) error {
	r, ok := f.reservations[id]
	if !ok || r.Terminal() {
		return apperrors.NewNotFound("active reservation", id)
	}
	r.Status = model.ReservationReleased
	return nil
}

func (f *fakeInventory) ConsumeReservation(ctx context.Context, id, performedBy string) (*model.InventoryReservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return nil, apperrors.NewNotFound("reservation", id)
	}
	if f.failConsume[r.ProductID] {
		return nil, apperrors.NewConflict("product %s is busy, please retry", r.ProductID)
	}
	if r.Terminal() {
		return nil, apperrors.NewBusinessRule("reservation %s is already %s", id, r.Status)
	}
	r.Status = model.ReservationConsumed
	f.stock[r.ProductID] -= r.Quantity
	cp := *r
	return &cp, nil
}

func (f *fakeInventory) ListActiveForOwner(ctx context.Context, owner model.OwnerRef) ([]model.InventoryReservation, error) {
	var out []model.InventoryReservation
	for _, r := range f.reservations {
		if r.OwnerRef == owner && r.Status == model.ReservationActive {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeInventory) AdjustStock(ctx context.Context, input *invdto.AdjustStockInput) (*model.Product, error) {
	f.adjustments = append(f.adjustments, *input)
	f.stock[input.ProductID] += input.QuantityChange
	return &model.Product{BaseModel: model.BaseModel{ID: input.ProductID}, CurrentStock: f.stock[input.ProductID]}, nil
}

func (f *fakeInventory) DecrementForSale(ctx context.Context, lines []invdto.SaleLine, transactionID, performedBy string) error {
	for _, line := range lines {
		f.stock[line.ProductID] -= line.Quantity
	}
	return nil
}

func (f *fakeInventory) Availability(ctx context.Context, productID string) (*invdto.Availability, error) {
	return &invdto.Availability{ProductID: productID, CurrentStock: f.stock[productID]}, nil
}

func (f *fakeInventory) ListLowStock(ctx context.Context, storeID *string, page, pageSize int) ([]invdto.LowStockItem, int, error) {
	return nil, 0, nil
}

func (f *fakeInventory) ListMovements(ctx context.Context, filters *invdto.MovementFilters) ([]model.StockMovement, int, error) {
	return nil, 0, nil
}

func (f *fakeInventory) SweepExpired(ctx context.Context) (int, error) { return 0, nil }

type fakeReaders struct {
	services  map[string]*model.Service
	customers map[string]*model.Customer
	pets      map[string]*model.Pet
	users     map[string]*model.User
}

func (f *fakeReaders) GetService(ctx context.Context, id string) (*model.Service, error) {
	return f.services[id], nil
}

func (f *fakeReaders) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	return f.customers[id], nil
}

func (f *fakeReaders) GetPet(ctx context.Context, id string) (*model.Pet, error) {
	return f.pets[id], nil
}

func (f *fakeReaders) GetUser(ctx context.Context, id string) (*model.User, error) {
	return f.users[id], nil
}

func testLogger() logger.ZapLogger {
	return logger.NewZapLogger(&logger.ZapLoggerConfig{Level: "error", Encoding: "console"})
}

type fixture struct {
	repo    *fakeApptRepo
	inv     *fakeInventory
	readers *fakeReaders
	uc      *appointmentUseCase
}

func newFixture() *fixture {
	repo := newFakeApptRepo()
	inv := newFakeInventory()
	readers := &fakeReaders{
		services: map[string]*model.Service{
			"svc-groom": {
				BaseModel: model.BaseModel{ID: "svc-groom"},
				Name:      "Full groom",
				Price:     40,
				Consumables: []model.ServiceConsumable{
					{ProductID: "shampoo", Quantity: 2},
					{ProductID: "towel", Quantity: 1},
				},
			},
			"svc-consult": {
				BaseModel: model.BaseModel{ID: "svc-consult"},
				Name:      "Consultation",
				Price:     25,
			},
		},
		customers: map[string]*model.Customer{
			"cust-1": {BaseModel: model.BaseModel{ID: "cust-1"}, Name: "Dana"},
		},
		pets: map[string]*model.Pet{
			"pet-1": {BaseModel: model.BaseModel{ID: "pet-1"}, CustomerID: "cust-1", Name: "Rex", Species: "dog"},
			"pet-2": {BaseModel: model.BaseModel{ID: "pet-2"}, CustomerID: "cust-other", Name: "Milo", Species: "cat"},
		},
		users: map[string]*model.User{
			"staff-1": {BaseModel: model.BaseModel{ID: "staff-1"}, Name: "Sam", Role: model.RoleStaff},
		},
	}
	uc := NewAppointmentUseCase(repo, inv, readers, readers, readers, testLogger()).(*appointmentUseCase)
	return &fixture{repo: repo, inv: inv, readers: readers, uc: uc}
}

func at(hour, min int) time.Time {
	return time.Date(2026, 9, 1, hour, min, 0, 0, time.UTC)
}

func createInput(start, end time.Time) *dto.CreateAppointmentInput {
	return &dto.CreateAppointmentInput{
		StoreID:    "store-1",
		CustomerID: "cust-1",
		PetID:      "pet-1",
		StaffID:    "staff-1",
		StartAt:    start,
		EndAt:      end,
		Lines:      []dto.ServiceLineInput{{ServiceID: "svc-groom", Quantity: 1}},
	}
}

func TestCreateBooksAndReserves(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	appt, err := f.uc.Create(ctx, createInput(at(10, 0), at(11, 0)))
	require.NoError(t, err)
	require.Equal(t, model.AppointmentBooked, appt.Status)
	require.Len(t, appt.ServiceLines, 1)

	active, _ := f.inv.ListActiveForOwner(ctx, model.OwnerRef{Type: model.OwnerAppointment, ID: appt.ID})
	require.Len(t, active, 2) // shampoo and towel
}

func TestCreateAggregatesRecipeAcrossLines(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	input := createInput(at(10, 0), at(11, 0))
	input.Lines = []dto.ServiceLineInput{
		{ServiceID: "svc-groom", Quantity: 2},
		{ServiceID: "svc-consult", Quantity: 1},
	}

	appt, err := f.uc.Create(ctx, input)
	require.NoError(t, err)

	active, _ := f.inv.ListActiveForOwner(ctx, model.OwnerRef{Type: model.OwnerAppointment, ID: appt.ID})
	byProduct := map[string]float64{}
	for _, r := range active {
		byProduct[r.ProductID] += r.Quantity
	}
	// One reservation per product with summed quantities.
	require.Len(t, active, 2)
	require.Equal(t, 4.0, byProduct["shampoo"])
	require.Equal(t, 2.0, byProduct["towel"])
}

func TestCreateOverlapBoundary(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.Create(ctx, createInput(at(10, 0), at(11, 0)))
	require.NoError(t, err)

	// 10:30-11:30 intersects 10:00-11:00.
	_, err = f.uc.Create(ctx, createInput(at(10, 30), at(11, 30)))
	require.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	// Back-to-back is allowed: [10:00,11:00) then [11:00,12:00).
	_, err = f.uc.Create(ctx, createInput(at(11, 0), at(12, 0)))
	require.NoError(t, err)
}

func TestCreateRollsBackOnReservationFailure(t *testing.T) {
	f := newFixture()
	f.inv.createFails = 1 // first product reserves, second fails
	ctx := context.Background()

	_, err := f.uc.Create(ctx, createInput(at(10, 0), at(11, 0)))
	require.True(t, apperrors.IsKind(err, apperrors.KindInsufficientStock))

	// No booking and no lingering hold survive the failure.
	require.Empty(t, f.repo.appointments)
	for _, r := range f.inv.reservations {
		require.Equal(t, model.ReservationReleased, r.Status)
	}
}

func TestCreateRejectsForeignPet(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	input := createInput(at(10, 0), at(11, 0))
	input.PetID = "pet-2"
	_, err := f.uc.Create(ctx, input)
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestConfirmOnlyFromBooked(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	appt, err := f.uc.Create(ctx, createInput(at(10, 0), at(11, 0)))
	require.NoError(t, err)

	confirmed, err := f.uc.Confirm(ctx, appt.ID, "tester")
	require.NoError(t, err)
	require.Equal(t, model.AppointmentConfirmed, confirmed.Status)

	_, err = f.uc.Confirm(ctx, appt.ID, "tester")
	require.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))
}

func TestCompleteConsumesAllReservations(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	appt, _ := f.uc.Create(ctx, createInput(at(10, 0), at(11, 0)))
	_, err := f.uc.Confirm(ctx, appt.ID, "tester")
	require.NoError(t, err)

	result, err := f.uc.Complete(ctx, &dto.CompleteAppointmentInput{AppointmentID: appt.ID, PerformedBy: "tester"})
	require.NoError(t, err)
	require.True(t, result.Done)
	require.Equal(t, model.AppointmentCompleted, result.Appointment.Status)
	require.Len(t, result.Outcomes, 2)
	for _, o := range result.Outcomes {
		require.Equal(t, dto.OutcomeConsumed, o.Status)
	}

	stored, _ := f.repo.GetByID(ctx, appt.ID)
	require.Equal(t, model.AppointmentCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)
}

func TestCompletePartialFailureKeepsStatusAndIsRetryable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	appt, _ := f.uc.Create(ctx, createInput(at(10, 0), at(11, 0)))
	_, err := f.uc.Confirm(ctx, appt.ID, "tester")
	require.NoError(t, err)

	f.inv.failConsume["towel"] = true

	result, err := f.uc.Complete(ctx, &dto.CompleteAppointmentInput{AppointmentID: appt.ID, PerformedBy: "tester"})
	require.NoError(t, err)
	require.False(t, result.Done)

	statuses := map[string]int{}
	for _, o := range result.Outcomes {
		statuses[o.Status]++
	}
	require.Equal(t, 1, statuses[dto.OutcomeFailed])

	// The appointment did not move; the retry picks up only what is left.
	stored, _ := f.repo.GetByID(ctx, appt.ID)
	require.Equal(t, model.AppointmentConfirmed, stored.Status)

	f.inv.failConsume = map[string]bool{}
	result, err = f.uc.Complete(ctx, &dto.CompleteAppointmentInput{AppointmentID: appt.ID, PerformedBy: "tester"})
	require.NoError(t, err)
	require.True(t, result.Done)

	stored, _ = f.repo.GetByID(ctx, appt.ID)
	require.Equal(t, model.AppointmentCompleted, stored.Status)
}

func TestCompleteWithActualConsumption(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	appt, _ := f.uc.Create(ctx, createInput(at(10, 0), at(11, 0)))
	_, err := f.uc.Confirm(ctx, appt.ID, "tester")
	require.NoError(t, err)

	result, err := f.uc.Complete(ctx, &dto.CompleteAppointmentInput{
		AppointmentID: appt.ID,
		PerformedBy:   "tester",
		ConsumedItems: []dto.ConsumedItemInput{{ProductID: "shampoo", Quantity: 3}},
	})
	require.NoError(t, err)
	require.True(t, result.Done)

	// Every hold released, then the actual usage applied as reconciliation.
	for _, r := range f.inv.reservations {
		require.Equal(t, model.ReservationReleased, r.Status)
	}
	require.Len(t, f.inv.adjustments, 1)
	adj := f.inv.adjustments[0]
	require.Equal(t, "shampoo", adj.ProductID)
	require.Equal(t, -3.0, adj.QuantityChange)
	require.Equal(t, model.MovementReconciliation, adj.Reason)
}

func TestCancelReleasesEverything(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	appt, _ := f.uc.Create(ctx, createInput(at(10, 0), at(11, 0)))

	result, err := f.uc.Cancel(ctx, &dto.CancelAppointmentInput{
		AppointmentID: appt.ID, PerformedBy: "tester", Reason: "customer called off",
	})
	require.NoError(t, err)
	require.True(t, result.Done)
	require.Equal(t, model.AppointmentCancelled, result.Appointment.Status)

	for _, r := range f.inv.reservations {
		require.Equal(t, model.ReservationReleased, r.Status)
	}

	// Cancelling again is rejected.
	_, err = f.uc.Cancel(ctx, &dto.CancelAppointmentInput{
		AppointmentID: appt.ID, PerformedBy: "tester", Reason: "again",
	})
	require.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))
}

func TestCancelRequiresReasonUnlessNoShow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	appt, _ := f.uc.Create(ctx, createInput(at(10, 0), at(11, 0)))

	_, err := f.uc.Cancel(ctx, &dto.CancelAppointmentInput{AppointmentID: appt.ID, PerformedBy: "tester"})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	result, err := f.uc.Cancel(ctx, &dto.CancelAppointmentInput{
		AppointmentID: appt.ID, PerformedBy: "tester", NoShow: true,
	})
	require.NoError(t, err)
	require.True(t, result.Appointment.NoShow)
}

func TestCancelledSlotIsReusable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	appt, _ := f.uc.Create(ctx, createInput(at(10, 0), at(11, 0)))
	_, err := f.uc.Cancel(ctx, &dto.CancelAppointmentInput{
		AppointmentID: appt.ID, PerformedBy: "tester", Reason: "rebooking",
	})
	require.NoError(t, err)

	_, err = f.uc.Create(ctx, createInput(at(10, 0), at(11, 0)))
	require.NoError(t, err)
}
