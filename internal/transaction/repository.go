package transaction

import (
	"context"
	"time"

	"github.com/pawdesk/petshop-service/internal/model"
	"github.com/pawdesk/petshop-service/internal/transaction/dto"
)

type Repository interface {
	Create(ctx context.Context, txn *model.Transaction) error
	GetByID(ctx context.Context, id string) (*model.Transaction, error)
	FindAll(ctx context.Context, f *dto.TransactionFilters) ([]model.Transaction, int, error)

	// MarkCompleted flips pending -> completed; false when not pending.
	MarkCompleted(ctx context.Context, id, paymentMethod string, externalRef *string, at time.Time) (bool, error)
	// MarkPending reverts a completion whose follow-up work failed.
	MarkPending(ctx context.Context, id string) (bool, error)
	// MarkVoided flips pending|completed -> voided; false when already terminal.
	MarkVoided(ctx context.Context, id, reason string, at time.Time) (bool, error)

	// Invoices
	CreateInvoice(ctx context.Context, inv *model.Invoice) error
	GetInvoice(ctx context.Context, id string) (*model.Invoice, error)
	// NextInvoiceNumber returns the next value of the per-store counter.
	NextInvoiceNumber(ctx context.Context, storeID string) (int64, error)
	IssueInvoice(ctx context.Context, id, number string, at time.Time) (bool, error)
	MarkInvoicePaid(ctx context.Context, id string, at time.Time) (bool, error)
	VoidInvoice(ctx context.Context, id, reason string, at time.Time) (bool, error)
}
