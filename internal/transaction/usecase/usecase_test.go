package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pawdesk/petshop-service/internal/apperrors"
	invdto "github.com/pawdesk/petshop-service/internal/inventory/dto"
	"github.com/pawdesk/petshop-service/internal/model"
	"github.com/pawdesk/petshop-service/internal/transaction/dto"
	"github.com/pawdesk/petshop-service/pkg/logger"
	"github.com/stretchr/testify/require"
)

type fakeTxRepo struct {
	transactions map[string]*model.Transaction
	invoices     map[string]*model.Invoice
	counters     map[string]int64
	completeFail bool
}

func newFakeTxRepo() *fakeTxRepo {
	return &fakeTxRepo{
		transactions: map[string]*model.Transaction{},
		invoices:     map[string]*model.Invoice{},
		counters:     map[string]int64{},
	}
}

func (f *fakeTxRepo) Create(ctx context.Context, txn *model.Transaction) error {
	cp := *txn
	f.transactions[txn.ID] = &cp
	return nil
}

func (f *fakeTxRepo) GetByID(ctx context.Context, id string) (*model.Transaction, error) {
	t, ok := f.transactions[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTxRepo) FindAll(ctx context.Context, filters *dto.TransactionFilters) ([]model.Transaction, int, error) {
	var out []model.Transaction
	for _, t := range f.transactions {
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (f *fakeTxRepo) MarkCompleted(ctx context.Context, id, paymentMethod string, externalRef *string, at time.Time) (bool, error) {
	if f.completeFail {
		return false, nil
	}
	t, ok := f.transactions[id]
	if !ok || t.PaymentStatus != model.PaymentPending {
		return false, nil
	}
	t.PaymentStatus = model.PaymentCompleted
	t.PaymentMethod = &paymentMethod
	t.ExternalReference = externalRef
	t.PaidAt = &at
	return true, nil
}

func (f *fakeTxRepo) MarkPending(ctx context.Context, id string) (bool, error) {
	t, ok := f.transactions[id]
	if !ok {
		return false, nil
	}
	t.PaymentStatus = model.PaymentPending
	return true, nil
}

func (f *fakeTxRepo) MarkVoided(ctx context.Context, id, reason string, at time.Time) (bool, error) {
	t, ok := f.transactions[id]
	if !ok || t.PaymentStatus == model.PaymentVoided {
		return false, nil
	}
	t.PaymentStatus = model.PaymentVoided
	t.VoidReason = &reason
	t.VoidedAt = &at
	return true, nil
}

func (f *fakeTxRepo) CreateInvoice(ctx context.Context, inv *model.Invoice) error {
	cp := *inv
	f.invoices[inv.ID] = &cp
	return nil
}

func (f *fakeTxRepo) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	i, ok := f.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *i
	return &cp, nil
}

func (f *fakeTxRepo) NextInvoiceNumber(ctx context.Context, storeID string) (int64, error) {
	f.counters[storeID]++
	return f.counters[storeID], nil
}

func (f *fakeTxRepo) IssueInvoice(ctx context.Context, id, number string, at time.Time) (bool, error) {
	i, ok := f.invoices[id]
	if !ok || i.Status != model.InvoiceDraft {
		return false, nil
	}
	i.Status = model.InvoiceIssued
	i.Number = &number
	i.IssuedAt = &at
	return true, nil
}

func (f *fakeTxRepo) MarkInvoicePaid(ctx context.Context, id string, at time.Time) (bool, error) {
	i, ok := f.invoices[id]
	if !ok || i.Status != model.InvoiceIssued {
		return false, nil
	}
	i.Status = model.InvoicePaid
	i.PaidAt = &at
	return true, nil
}

func (f *fakeTxRepo) VoidInvoice(ctx context.Context, id, reason string, at time.Time) (bool, error) {
	i, ok := f.invoices[id]
	if !ok {
		return false, nil
	}
	i.Status = model.InvoiceVoid
	i.VoidReason = &reason
	i.VoidedAt = &at
	return true, nil
}

// fakeStock implements the slice of inventory behavior settlement needs:
// all-or-nothing batch decrements plus compensating adjustments.
type fakeStock struct {
	stock       map[string]float64
	adjustments []invdto.AdjustStockInput
}

func newFakeStock() *fakeStock {
	return &fakeStock{stock: map[string]float64{}}
}

func (f *fakeStock) CreateReservation(ctx context.Context, input *invdto.CreateReservationInput) (*model.InventoryReservation, error) {
	return nil, nil
}

func (f *fakeStock) ReleaseReservation(ctx context.Context, id, performedBy string) error { return nil }

func (f *fakeStock) ConsumeReservation(ctx context.Context, id, performedBy string) (*model.InventoryReservation, error) {
	return nil, nil
}

func (f *fakeStock) ListActiveForOwner(ctx context.Context, owner model.OwnerRef) ([]model.InventoryReservation, error) {
	return nil, nil
}

func (f *fakeStock) AdjustStock(ctx context.Context, input *invdto.AdjustStockInput) (*model.Product, error) {
	f.adjustments = append(f.adjustments, *input)
	f.stock[input.ProductID] += input.QuantityChange
	return &model.Product{BaseModel: model.BaseModel{ID: input.ProductID}, CurrentStock: f.stock[input.ProductID]}, nil
}

func (f *fakeStock) DecrementForSale(ctx context.Context, lines []invdto.SaleLine, transactionID, performedBy string) error {
	for _, line := range lines {
		if line.Quantity > f.stock[line.ProductID] {
			return apperrors.NewInsufficientStock(line.ProductID, line.Quantity, f.stock[line.ProductID])
		}
	}
	for _, line := range lines {
		f.stock[line.ProductID] -= line.Quantity
	}
	return nil
}

func (f *fakeStock) Availability(ctx context.Context, productID string) (*invdto.Availability, error) {
	return &invdto.Availability{ProductID: productID, CurrentStock: f.stock[productID]}, nil
}

func (f *fakeStock) ListLowStock(ctx context.Context, storeID *string, page, pageSize int) ([]invdto.LowStockItem, int, error) {
	return nil, 0, nil
}

func (f *fakeStock) ListMovements(ctx context.Context, filters *invdto.MovementFilters) ([]model.StockMovement, int, error) {
	return nil, 0, nil
}

func (f *fakeStock) SweepExpired(ctx context.Context) (int, error) { return 0, nil }

type fakeCatalog struct {
	products  map[string]*model.Product
	services  map[string]*model.Service
	customers map[string]*model.Customer
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return f.products[id], nil
}

func (f *fakeCatalog) GetService(ctx context.Context, id string) (*model.Service, error) {
	return f.services[id], nil
}

func (f *fakeCatalog) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	return f.customers[id], nil
}

func testLogger() logger.ZapLogger {
	return logger.NewZapLogger(&logger.ZapLoggerConfig{Level: "error", Encoding: "console"})
}

type fixture struct {
	repo    *fakeTxRepo
	stock   *fakeStock
	catalog *fakeCatalog
	uc      *transactionUseCase
}

func newFixture() *fixture {
	repo := newFakeTxRepo()
	stock := newFakeStock()
	stock.stock["food"] = 10
	stock.stock["toy"] = 2
	catalog := &fakeCatalog{
		products: map[string]*model.Product{
			"food": {BaseModel: model.BaseModel{ID: "food"}, Name: "Dog food 5kg", UnitPrice: 20, VATRate: 10, StockTracked: true},
			"toy":  {BaseModel: model.BaseModel{ID: "toy"}, Name: "Rope toy", UnitPrice: 5, VATRate: 10, StockTracked: true},
			"fee":  {BaseModel: model.BaseModel{ID: "fee"}, Name: "Delivery fee", UnitPrice: 3, VATRate: 0, StockTracked: false},
		},
		services: map[string]*model.Service{
			"groom": {BaseModel: model.BaseModel{ID: "groom"}, Name: "Full groom", Price: 40, VATRate: 20},
		},
		customers: map[string]*model.Customer{
			"cust-1": {BaseModel: model.BaseModel{ID: "cust-1"}, Name: "Dana"},
		},
	}
	uc := NewTransactionUseCase(repo, stock, catalog, catalog, catalog, testLogger()).(*transactionUseCase)
	return &fixture{repo: repo, stock: stock, catalog: catalog, uc: uc}
}

func strptr(s string) *string { return &s }

func TestCreateComputesTotals(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	txn, err := f.uc.Create(ctx, &dto.CreateTransactionInput{
		StoreID: "store-1",
		Lines: []dto.LineInput{
			{ProductID: strptr("food"), Quantity: 2}, // 40 net, 4 VAT
			{ServiceID: strptr("groom"), Quantity: 1}, // 40 net, 8 VAT
		},
	})
	require.NoError(t, err)
	require.Equal(t, model.PaymentPending, txn.PaymentStatus)
	require.InDelta(t, 12.0, txn.VATAmount, 0.001)
	require.InDelta(t, 92.0, txn.TotalAmount, 0.001)
	require.Len(t, txn.Lines, 2)
	require.Equal(t, "Dog food 5kg", txn.Lines[0].Description)
}

func TestCreateLineValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Both product and service on one line.
	_, err := f.uc.Create(ctx, &dto.CreateTransactionInput{
		StoreID: "store-1",
		Lines:   []dto.LineInput{{ProductID: strptr("food"), ServiceID: strptr("groom"), Quantity: 1}},
	})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	// Neither.
	_, err = f.uc.Create(ctx, &dto.CreateTransactionInput{
		StoreID: "store-1",
		Lines:   []dto.LineInput{{Quantity: 1}},
	})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	// Unknown customer.
	_, err = f.uc.Create(ctx, &dto.CreateTransactionInput{
		StoreID:    "store-1",
		CustomerID: strptr("nope"),
		Lines:      []dto.LineInput{{ProductID: strptr("food"), Quantity: 1}},
	})
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCreateHonorsPriceOverride(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	override := 15.0
	txn, err := f.uc.Create(ctx, &dto.CreateTransactionInput{
		StoreID: "store-1",
		Lines:   []dto.LineInput{{ProductID: strptr("food"), Quantity: 1, PriceOverride: &override}},
	})
	require.NoError(t, err)
	require.Equal(t, 15.0, txn.Lines[0].UnitPrice)
	require.InDelta(t, 16.5, txn.TotalAmount, 0.001)
}

func TestCompleteDecrementsOnlyTrackedLines(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	txn, err := f.uc.Create(ctx, &dto.CreateTransactionInput{
		StoreID: "store-1",
		Lines: []dto.LineInput{
			{ProductID: strptr("food"), Quantity: 2},
			{ProductID: strptr("fee"), Quantity: 1},
			{ServiceID: strptr("groom"), Quantity: 1},
		},
	})
	require.NoError(t, err)

	completed, err := f.uc.Complete(ctx, &dto.CompleteTransactionInput{
		TransactionID: txn.ID, PaymentMethod: "card", PerformedBy: "tester",
	})
	require.NoError(t, err)
	require.Equal(t, model.PaymentCompleted, completed.PaymentStatus)
	require.NotNil(t, completed.PaidAt)

	require.Equal(t, 8.0, f.stock.stock["food"])
	require.Equal(t, 0.0, f.stock.stock["fee"]) // untouched, not tracked
}

func TestCompleteInsufficientStockIsAtomic(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// food passes, toy (stock 2) does not.
	txn, err := f.uc.Create(ctx, &dto.CreateTransactionInput{
		StoreID: "store-1",
		Lines: []dto.LineInput{
			{ProductID: strptr("food"), Quantity: 1},
			{ProductID: strptr("toy"), Quantity: 9},
		},
	})
	require.NoError(t, err)

	_, err = f.uc.Complete(ctx, &dto.CompleteTransactionInput{
		TransactionID: txn.ID, PaymentMethod: "cash", PerformedBy: "tester",
	})
	require.True(t, apperrors.IsKind(err, apperrors.KindInsufficientStock))

	// Nothing moved, the transaction is still pending and retryable.
	require.Equal(t, 10.0, f.stock.stock["food"])
	require.Equal(t, 2.0, f.stock.stock["toy"])
	stored, _ := f.repo.GetByID(ctx, txn.ID)
	require.Equal(t, model.PaymentPending, stored.PaymentStatus)
}

func TestCompleteCompensatesWhenFlipFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	txn, err := f.uc.Create(ctx, &dto.CreateTransactionInput{
		StoreID: "store-1",
		Lines:   []dto.LineInput{{ProductID: strptr("food"), Quantity: 3}},
	})
	require.NoError(t, err)

	f.repo.completeFail = true
	_, err = f.uc.Complete(ctx, &dto.CompleteTransactionInput{
		TransactionID: txn.ID, PaymentMethod: "card", PerformedBy: "tester",
	})
	require.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	// The decrement was handed back via a reconciliation adjustment.
	require.Equal(t, 10.0, f.stock.stock["food"])
	require.Len(t, f.stock.adjustments, 1)
	require.Equal(t, model.MovementReconciliation, f.stock.adjustments[0].Reason)
}

func TestCompleteSettlesInvoice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	txn, err := f.uc.Create(ctx, &dto.CreateTransactionInput{
		StoreID:       "store-1",
		CompanyID:     "co-1",
		CustomerID:    strptr("cust-1"),
		CreateInvoice: true,
		Lines:         []dto.LineInput{{ProductID: strptr("food"), Quantity: 1}},
	})
	require.NoError(t, err)
	require.NotNil(t, txn.InvoiceID)

	inv, err := f.uc.GetInvoice(ctx, *txn.InvoiceID)
	require.NoError(t, err)
	require.Equal(t, model.InvoiceDraft, inv.Status)
	require.Nil(t, inv.Number)
	require.InDelta(t, 20.0, inv.Subtotal, 0.001)
	require.InDelta(t, 22.0, inv.Total, 0.001)

	_, err = f.uc.Complete(ctx, &dto.CompleteTransactionInput{
		TransactionID: txn.ID, PaymentMethod: "card", PerformedBy: "tester",
	})
	require.NoError(t, err)

	inv, _ = f.uc.GetInvoice(ctx, *txn.InvoiceID)
	require.Equal(t, model.InvoicePaid, inv.Status)
	require.NotNil(t, inv.Number)
	require.Equal(t, fmt.Sprintf("INV-%s-%06d", "store-1", 1), *inv.Number)
	require.NotNil(t, inv.IssuedAt)
	require.NotNil(t, inv.PaidAt)
}

func TestInvoiceNumbersAreSequentialPerStore(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var numbers []string
	for i := 0; i < 3; i++ {
		txn, err := f.uc.Create(ctx, &dto.CreateTransactionInput{
			StoreID:       "store-1",
			CreateInvoice: true,
			Lines:         []dto.LineInput{{ProductID: strptr("food"), Quantity: 1}},
		})
		require.NoError(t, err)
		_, err = f.uc.Complete(ctx, &dto.CompleteTransactionInput{
			TransactionID: txn.ID, PaymentMethod: "cash", PerformedBy: "tester",
		})
		require.NoError(t, err)
		inv, _ := f.uc.GetInvoice(ctx, *txn.InvoiceID)
		numbers = append(numbers, *inv.Number)
	}
	require.Equal(t, []string{"INV-store-1-000001", "INV-store-1-000002", "INV-store-1-000003"}, numbers)
}

func TestVoidPendingDoesNotTouchStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	txn, err := f.uc.Create(ctx, &dto.CreateTransactionInput{
		StoreID: "store-1",
		Lines:   []dto.LineInput{{ProductID: strptr("food"), Quantity: 2}},
	})
	require.NoError(t, err)

	voided, err := f.uc.Void(ctx, &dto.VoidTransactionInput{
		TransactionID: txn.ID, Reason: "entered by mistake", PerformedBy: "tester",
	})
	require.NoError(t, err)
	require.Equal(t, model.PaymentVoided, voided.PaymentStatus)
	require.Equal(t, 10.0, f.stock.stock["food"])
	require.Empty(t, f.stock.adjustments)
}

func TestVoidCompletedRestoresStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	txn, err := f.uc.Create(ctx, &dto.CreateTransactionInput{
		StoreID: "store-1",
		Lines:   []dto.LineInput{{ProductID: strptr("food"), Quantity: 4}},
	})
	require.NoError(t, err)

	_, err = f.uc.Complete(ctx, &dto.CompleteTransactionInput{
		TransactionID: txn.ID, PaymentMethod: "card", PerformedBy: "tester",
	})
	require.NoError(t, err)
	require.Equal(t, 6.0, f.stock.stock["food"])

	voided, err := f.uc.Void(ctx, &dto.VoidTransactionInput{
		TransactionID: txn.ID, Reason: "customer refund", PerformedBy: "tester",
	})
	require.NoError(t, err)
	require.Equal(t, model.PaymentVoided, voided.PaymentStatus)
	require.NotNil(t, voided.VoidedAt)

	// Restocked through a compensating reconciliation movement.
	require.Equal(t, 10.0, f.stock.stock["food"])
	require.Len(t, f.stock.adjustments, 1)
	require.Equal(t, 4.0, f.stock.adjustments[0].QuantityChange)
	require.Equal(t, model.MovementReconciliation, f.stock.adjustments[0].Reason)

	// Voiding twice is rejected.
	_, err = f.uc.Void(ctx, &dto.VoidTransactionInput{
		TransactionID: txn.ID, Reason: "again", PerformedBy: "tester",
	})
	require.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))
}

func TestVoidRequiresReason(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	txn, _ := f.uc.Create(ctx, &dto.CreateTransactionInput{
		StoreID: "store-1",
		Lines:   []dto.LineInput{{ProductID: strptr("food"), Quantity: 1}},
	})

	_, err := f.uc.Void(ctx, &dto.VoidTransactionInput{TransactionID: txn.ID, PerformedBy: "tester"})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}
