package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pawdesk/petshop-service/internal/apperrors"
	invdto "github.com/pawdesk/petshop-service/internal/inventory/dto"
	"github.com/pawdesk/petshop-service/internal/model"
	"github.com/pawdesk/petshop-service/internal/transaction"
	"github.com/pawdesk/petshop-service/internal/transaction/dto"
	"github.com/pawdesk/petshop-service/pkg/logger"
	"go.uber.org/zap"

	"github.com/pawdesk/petshop-service/internal/inventory"
)

type transactionUseCase struct {
	repo      transaction.Repository
	inventory inventory.UseCase
	products  transaction.ProductReader
	services  transaction.ServiceReader
	customers transaction.CustomerReader
	logger    logger.ZapLogger
}

func NewTransactionUseCase(
	repo transaction.Repository,
	inv inventory.UseCase,
	products transaction.ProductReader,
	services transaction.ServiceReader,
	customers transaction.CustomerReader,
	log logger.ZapLogger,
) transaction.UseCase {
	return &transactionUseCase{
		repo:      repo,
		inventory: inv,
		products:  products,
		services:  services,
		customers: customers,
		logger:    log,
	}
}

func (uc *transactionUseCase) Create(ctx context.Context, input *dto.CreateTransactionInput) (*model.Transaction, error) {
	if input.StoreID == "" {
		return nil, apperrors.NewValidation("store is required")
	}
	if len(input.Lines) == 0 {
		return nil, apperrors.NewValidation("at least one line is required")
	}

	if input.CustomerID != nil {
		customer, err := uc.customers.GetCustomer(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperrors.NewNotFound("customer", *input.CustomerID)
		}
	}

	now := time.Now()
	txn := &model.Transaction{
		BaseModel:     model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		StoreID:       input.StoreID,
		CustomerID:    input.CustomerID,
		PaymentStatus: model.PaymentPending,
	}

	for _, line := range input.Lines {
		resolved, err := uc.resolveLine(ctx, txn.ID, line)
		if err != nil {
			return nil, err
		}
		txn.Lines = append(txn.Lines, *resolved)
		txn.TotalAmount += resolved.LineTotal
		txn.VATAmount += resolved.LineTotal * resolved.VATRate / 100
	}
	// Totals are net of VAT per line; grand total includes it.
	txn.TotalAmount += txn.VATAmount

	// A companion invoice starts as a draft; number and totals become
	// immutable at issue time.
	if input.CreateInvoice {
		inv := &model.Invoice{
			BaseModel:  model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			CompanyID:  input.CompanyID,
			StoreID:    input.StoreID,
			CustomerID: input.CustomerID,
			Status:     model.InvoiceDraft,
		}
		for _, line := range txn.Lines {
			inv.Lines = append(inv.Lines, model.InvoiceLine{
				ID:          uuid.New().String(),
				InvoiceID:   inv.ID,
				Description: line.Description,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				VATRate:     line.VATRate,
				LineTotal:   line.LineTotal,
			})
			inv.Subtotal += line.LineTotal
			inv.VATTotal += line.LineTotal * line.VATRate / 100
		}
		inv.Total = inv.Subtotal + inv.VATTotal

		if err := uc.repo.CreateInvoice(ctx, inv); err != nil {
			return nil, err
		}
		txn.InvoiceID = &inv.ID
	}

	if err := uc.repo.Create(ctx, txn); err != nil {
		return nil, err
	}

	uc.logger.Info("transaction created",
		zap.String("transaction_id", txn.ID),
		zap.Float64("total_amount", txn.TotalAmount),
		zap.Bool("with_invoice", txn.InvoiceID != nil),
	)
	return txn, nil
}

func (uc *transactionUseCase) resolveLine(ctx context.Context, txnID string, line dto.LineInput) (*model.TransactionLine, error) {
	if line.Quantity <= 0 {
		return nil, apperrors.NewValidation("line quantity must be positive")
	}
	if (line.ProductID == nil) == (line.ServiceID == nil) {
		return nil, apperrors.NewValidation("each line must reference exactly one product or service")
	}

	resolved := &model.TransactionLine{
		ID:            uuid.New().String(),
		TransactionID: txnID,
		ProductID:     line.ProductID,
		ServiceID:     line.ServiceID,
		Quantity:      line.Quantity,
	}

	if line.ProductID != nil {
		p, err := uc.products.GetProduct(ctx, *line.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, apperrors.NewNotFound("product", *line.ProductID)
		}
		resolved.Description = p.Name
		resolved.UnitPrice = p.UnitPrice
		resolved.VATRate = p.VATRate
	} else {
		s, err := uc.services.GetService(ctx, *line.ServiceID)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, apperrors.NewNotFound("service", *line.ServiceID)
		}
		resolved.Description = s.Name
		resolved.UnitPrice = s.Price
		resolved.VATRate = s.VATRate
	}

	if line.PriceOverride != nil {
		resolved.UnitPrice = *line.PriceOverride
	}
	resolved.LineTotal = resolved.UnitPrice * resolved.Quantity
	return resolved, nil
}

func (uc *transactionUseCase) GetByID(ctx context.Context, id string) (*model.Transaction, error) {
	txn, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, apperrors.NewNotFound("transaction", id)
	}
	return txn, nil
}

func (uc *transactionUseCase) List(ctx context.Context, f *dto.TransactionFilters) ([]model.Transaction, int, error) {
	return uc.repo.FindAll(ctx, f)
}

// Complete decrements stock for every stock-tracked line in one atomic batch,
// then settles payment. Sales have no reservation phase.
func (uc *transactionUseCase) Complete(ctx context.Context, input *dto.CompleteTransactionInput) (*model.Transaction, error) {
	if input.PaymentMethod == "" {
		return nil, apperrors.NewValidation("payment method is required")
	}

	txn, err := uc.GetByID(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if txn.PaymentStatus != model.PaymentPending {
		return nil, apperrors.NewBusinessRule("transaction %s cannot be completed from status %s", txn.ID, txn.PaymentStatus)
	}

	saleLines, err := uc.stockTrackedLines(ctx, txn)
	if err != nil {
		return nil, err
	}

	// All lines decrement in a single transaction; any shortage aborts the
	// whole completion with no partial decrement.
	if err := uc.inventory.DecrementForSale(ctx, saleLines, txn.ID, input.PerformedBy); err != nil {
		return nil, err
	}

	now := time.Now()
	ok, err := uc.repo.MarkCompleted(ctx, txn.ID, input.PaymentMethod, input.ExternalReference, now)
	if err != nil || !ok {
		// The stock is already gone; hand it back before reporting failure.
		uc.compensateStock(ctx, saleLines, txn.ID, input.PerformedBy)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.NewConflict("transaction %s changed state concurrently", txn.ID)
	}

	txn.PaymentStatus = model.PaymentCompleted
	txn.PaymentMethod = &input.PaymentMethod
	txn.ExternalReference = input.ExternalReference
	txn.PaidAt = &now

	if txn.InvoiceID != nil {
		uc.settleInvoice(ctx, txn, now)
	}

	uc.logger.Info("transaction completed",
		zap.String("transaction_id", txn.ID),
		zap.String("payment_method", input.PaymentMethod),
	)
	return txn, nil
}

func (uc *transactionUseCase) stockTrackedLines(ctx context.Context, txn *model.Transaction) ([]invdto.SaleLine, error) {
	lines := []invdto.SaleLine{}
	for _, line := range txn.Lines {
		if line.ProductID == nil {
			continue
		}
		p, err := uc.products.GetProduct(ctx, *line.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, apperrors.NewNotFound("product", *line.ProductID)
		}
		if !p.StockTracked {
			continue
		}
		lines = append(lines, invdto.SaleLine{ProductID: *line.ProductID, Quantity: line.Quantity})
	}
	return lines, nil
}

func (uc *transactionUseCase) compensateStock(ctx context.Context, lines []invdto.SaleLine, txnID, performedBy string) {
	for _, line := range lines {
		_, err := uc.inventory.AdjustStock(ctx, &invdto.AdjustStockInput{
			ProductID:      line.ProductID,
			QuantityChange: line.Quantity,
			Reason:         model.MovementReconciliation,
			Notes:          "compensating a failed settlement",
			ReferenceType:  string(model.OwnerTransaction),
			ReferenceID:    txnID,
			PerformedBy:    performedBy,
		})
		if err != nil {
			uc.logger.Error("failed to compensate stock after settlement failure",
				zap.String("transaction_id", txnID),
				zap.String("product_id", line.ProductID),
				zap.Error(err))
		}
	}
}

// settleInvoice issues the draft invoice (assigning its number) and marks it
// paid. Failures are logged, not surfaced: the sale itself already settled.
func (uc *transactionUseCase) settleInvoice(ctx context.Context, txn *model.Transaction, at time.Time) {
	seq, err := uc.repo.NextInvoiceNumber(ctx, txn.StoreID)
	if err != nil {
		uc.logger.Error("failed to allocate invoice number",
			zap.String("invoice_id", *txn.InvoiceID), zap.Error(err))
		return
	}
	number := fmt.Sprintf("INV-%s-%06d", txn.StoreID, seq)

	if _, err := uc.repo.IssueInvoice(ctx, *txn.InvoiceID, number, at); err != nil {
		uc.logger.Error("failed to issue invoice",
			zap.String("invoice_id", *txn.InvoiceID), zap.Error(err))
		return
	}
	if _, err := uc.repo.MarkInvoicePaid(ctx, *txn.InvoiceID, at); err != nil {
		uc.logger.Error("failed to mark invoice paid",
			zap.String("invoice_id", *txn.InvoiceID), zap.Error(err))
	}
}

// Void flips the transaction to voided. Voiding a completed sale also writes
// compensating movements restoring the stock that the sale decremented.
func (uc *transactionUseCase) Void(ctx context.Context, input *dto.VoidTransactionInput) (*model.Transaction, error) {
	if input.Reason == "" {
		return nil, apperrors.NewValidation("a void reason is required")
	}

	txn, err := uc.GetByID(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if txn.PaymentStatus == model.PaymentVoided {
		return nil, apperrors.NewBusinessRule("transaction %s is already voided", txn.ID)
	}

	wasCompleted := txn.PaymentStatus == model.PaymentCompleted

	now := time.Now()
	ok, err := uc.repo.MarkVoided(ctx, txn.ID, input.Reason, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewConflict("transaction %s changed state concurrently", txn.ID)
	}

	if wasCompleted {
		saleLines, err := uc.stockTrackedLines(ctx, txn)
		if err != nil {
			uc.logger.Error("failed to resolve lines for void restock",
				zap.String("transaction_id", txn.ID), zap.Error(err))
		} else {
			uc.compensateStock(ctx, saleLines, txn.ID, input.PerformedBy)
		}
	}

	if txn.InvoiceID != nil {
		if _, err := uc.repo.VoidInvoice(ctx, *txn.InvoiceID, input.Reason, now); err != nil {
			uc.logger.Error("failed to void invoice",
				zap.String("invoice_id", *txn.InvoiceID), zap.Error(err))
		}
	}

	txn.PaymentStatus = model.PaymentVoided
	txn.VoidReason = &input.Reason
	txn.VoidedAt = &now

	uc.logger.Info("transaction voided",
		zap.String("transaction_id", txn.ID),
		zap.Bool("stock_restored", wasCompleted),
	)
	return txn, nil
}

func (uc *transactionUseCase) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	inv, err := uc.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperrors.NewNotFound("invoice", id)
	}
	return inv, nil
}
