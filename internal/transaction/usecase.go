package transaction

import (
	"context"

	"github.com/pawdesk/petshop-service/internal/model"
	"github.com/pawdesk/petshop-service/internal/transaction/dto"
)

type UseCase interface {
	Create(ctx context.Context, input *dto.CreateTransactionInput) (*model.Transaction, error)
	GetByID(ctx context.Context, id string) (*model.Transaction, error)
	List(ctx context.Context, f *dto.TransactionFilters) ([]model.Transaction, int, error)
	Complete(ctx context.Context, input *dto.CompleteTransactionInput) (*model.Transaction, error)
	Void(ctx context.Context, input *dto.VoidTransactionInput) (*model.Transaction, error)
	GetInvoice(ctx context.Context, id string) (*model.Invoice, error)
}

// ProductReader resolves sellable products for pricing and stock flags.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
}

// ServiceReader resolves sellable services for pricing.
type ServiceReader interface {
	GetService(ctx context.Context, id string) (*model.Service, error)
}

// CustomerReader validates the customer a sale is recorded against.
type CustomerReader interface {
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
}
