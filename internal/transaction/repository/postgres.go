package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pawdesk/petshop-service/internal/model"
	"github.com/pawdesk/petshop-service/internal/transaction/dto"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, txn *model.Transaction) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO transactions (
            id, store_id, customer_id, invoice_id, total_amount, vat_amount,
            payment_status, payment_method, paid_at, external_reference,
            created_at, updated_at
        )
        VALUES (
            :id, :store_id, :customer_id, :invoice_id, :total_amount, :vat_amount,
            :payment_status, :payment_method, :paid_at, :external_reference,
            :created_at, :updated_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, query, txn); err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	lineQuery := `
        INSERT INTO transaction_lines (
            id, transaction_id, product_id, service_id, description,
            quantity, unit_price, vat_rate, line_total
        )
        VALUES (
            :id, :transaction_id, :product_id, :service_id, :description,
            :quantity, :unit_price, :vat_rate, :line_total
        )
    `
	for i := range txn.Lines {
		if _, err := tx.NamedExecContext(ctx, lineQuery, &txn.Lines[i]); err != nil {
			return fmt.Errorf("failed to insert transaction line: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.Transaction, error) {
	var txn model.Transaction
	err := r.DB.GetContext(ctx, &txn, `SELECT * FROM transactions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	lines := []model.TransactionLine{}
	if err := r.DB.SelectContext(ctx, &lines, `
        SELECT * FROM transaction_lines WHERE transaction_id = $1
    `, id); err != nil {
		return nil, err
	}
	txn.Lines = lines
	return &txn, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.TransactionFilters) ([]model.Transaction, int, error) {
	items := []model.Transaction{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.StoreID != "" {
		conditions = append(conditions, "store_id = :store_id")
		args["store_id"] = f.StoreID
	}
	if f.CustomerID != "" {
		conditions = append(conditions, "customer_id = :customer_id")
		args["customer_id"] = f.CustomerID
	}
	if f.PaymentStatus != "" {
		conditions = append(conditions, "payment_status = :payment_status")
		args["payment_status"] = f.PaymentStatus
	}
	if f.From != nil {
		conditions = append(conditions, "created_at >= :from_at")
		args["from_at"] = *f.From
	}
	if f.To != nil {
		conditions = append(conditions, "created_at < :to_at")
		args["to_at"] = *f.To
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM transactions" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM transactions" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) MarkCompleted(ctx context.Context, id, paymentMethod string, externalRef *string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE transactions
        SET payment_status = 'completed', payment_method = $2,
            external_reference = $3, paid_at = $4, updated_at = $4
        WHERE id = $1 AND payment_status = 'pending'
    `, id, paymentMethod, externalRef, at)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (r *PGRepository) MarkPending(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE transactions
        SET payment_status = 'pending', payment_method = NULL,
            external_reference = NULL, paid_at = NULL, updated_at = $2
        WHERE id = $1 AND payment_status = 'completed'
    `, id, time.Now())
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (r *PGRepository) MarkVoided(ctx context.Context, id, reason string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE transactions
        SET payment_status = 'voided', void_reason = $2, voided_at = $3, updated_at = $3
        WHERE id = $1 AND payment_status IN ('pending', 'completed')
    `, id, reason, at)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (r *PGRepository) CreateInvoice(ctx context.Context, inv *model.Invoice) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO invoices (
            id, company_id, store_id, customer_id, number, status,
            subtotal, vat_total, total, issued_at, paid_at, voided_at,
            void_reason, created_at, updated_at
        )
        VALUES (
            :id, :company_id, :store_id, :customer_id, :number, :status,
            :subtotal, :vat_total, :total, :issued_at, :paid_at, :voided_at,
            :void_reason, :created_at, :updated_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, query, inv); err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	lineQuery := `
        INSERT INTO invoice_lines (id, invoice_id, description, quantity, unit_price, vat_rate, line_total)
        VALUES (:id, :invoice_id, :description, :quantity, :unit_price, :vat_rate, :line_total)
    `
	for i := range inv.Lines {
		if _, err := tx.NamedExecContext(ctx, lineQuery, &inv.Lines[i]); err != nil {
			return fmt.Errorf("failed to insert invoice line: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.DB.GetContext(ctx, &inv, `SELECT * FROM invoices WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	lines := []model.InvoiceLine{}
	if err := r.DB.SelectContext(ctx, &lines, `
        SELECT * FROM invoice_lines WHERE invoice_id = $1
    `, id); err != nil {
		return nil, err
	}
	inv.Lines = lines
	return &inv, nil
}

func (r *PGRepository) NextInvoiceNumber(ctx context.Context, storeID string) (int64, error) {
	var seq int64
	err := r.DB.GetContext(ctx, &seq, `
        INSERT INTO invoice_counters (store_id, counter)
        VALUES ($1, 1)
        ON CONFLICT (store_id) DO UPDATE SET counter = invoice_counters.counter + 1
        RETURNING counter
    `, storeID)
	return seq, err
}

func (r *PGRepository) IssueInvoice(ctx context.Context, id, number string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE invoices SET status = 'issued', number = $2, issued_at = $3, updated_at = $3
        WHERE id = $1 AND status = 'draft'
    `, id, number, at)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (r *PGRepository) MarkInvoicePaid(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE invoices SET status = 'paid', paid_at = $2, updated_at = $2
        WHERE id = $1 AND status = 'issued'
    `, id, at)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (r *PGRepository) VoidInvoice(ctx context.Context, id, reason string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE invoices SET status = 'void', void_reason = $2, voided_at = $3, updated_at = $3
        WHERE id = $1 AND status IN ('draft', 'issued', 'paid')
    `, id, reason, at)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}
