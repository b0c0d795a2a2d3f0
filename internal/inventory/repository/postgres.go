package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pawdesk/petshop-service/internal/apperrors"
	"github.com/pawdesk/petshop-service/internal/inventory/dto"
	"github.com/pawdesk/petshop-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	var p model.Product
	err := r.DB.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1`, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) Availability(ctx context.Context, productID string) (*dto.Availability, error) {
	var av dto.Availability
	query := `
        SELECT p.id AS product_id,
               p.current_stock,
               COALESCE(res.reserved, 0) AS reserved,
               p.current_stock - COALESCE(res.reserved, 0) AS available
        FROM products p
        LEFT JOIN (
            SELECT product_id, SUM(quantity) AS reserved
            FROM inventory_reservations
            WHERE status = 'active'
            GROUP BY product_id
        ) res ON res.product_id = p.id
        WHERE p.id = $1
    `
	err := r.DB.GetContext(ctx, &av, query, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", productID)
		}
		return nil, err
	}
	return &av, nil
}

// lockProduct reads the product row FOR UPDATE so concurrent stock writers
// serialize on it for the remainder of the transaction.
func lockProduct(ctx context.Context, tx *sqlx.Tx, productID string) (*model.Product, error) {
	var p model.Product
	err := tx.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1 FOR UPDATE`, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", productID)
		}
		return nil, err
	}
	return &p, nil
}

func activeReservedQuantity(ctx context.Context, tx *sqlx.Tx, productID string) (float64, error) {
	var reserved float64
	err := tx.GetContext(ctx, &reserved, `
        SELECT COALESCE(SUM(quantity), 0)
        FROM inventory_reservations
        WHERE product_id = $1 AND status = 'active'
    `, productID)
	return reserved, err
}

func insertMovement(ctx context.Context, tx *sqlx.Tx, m *model.StockMovement) error {
	query := `
        INSERT INTO stock_movements (
            id, product_id, store_id, reason, quantity_change,
            quantity_before, quantity_after, reference_type, reference_id,
            notes, performed_by, created_at
        )
        VALUES (
            :id, :product_id, :store_id, :reason, :quantity_change,
            :quantity_before, :quantity_after, :reference_type, :reference_id,
            :notes, :performed_by, :created_at
        )
    `
	_, err := tx.NamedExecContext(ctx, query, m)
	return err
}

func (r *PGRepository) CreateReservation(ctx context.Context, res *model.InventoryReservation) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	p, err := lockProduct(ctx, tx, res.ProductID)
	if err != nil {
		return err
	}
	if !p.StockTracked {
		return apperrors.NewBusinessRule("product %s is not stock-tracked", res.ProductID)
	}

	reserved, err := activeReservedQuantity(ctx, tx, res.ProductID)
	if err != nil {
		return err
	}

	available := p.CurrentStock - reserved
	if available < res.Quantity {
		return apperrors.NewInsufficientStock(res.ProductID, res.Quantity, available)
	}

	query := `
        INSERT INTO inventory_reservations (
            id, product_id, quantity, reserved_for_type, reserved_for_id,
            status, expires_at, created_at, updated_at
        )
        VALUES (
            :id, :product_id, :quantity, :reserved_for_type, :reserved_for_id,
            :status, :expires_at, :created_at, :updated_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, query, res); err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) GetReservation(ctx context.Context, id string) (*model.InventoryReservation, error) {
	var res model.InventoryReservation
	err := r.DB.GetContext(ctx, &res, `SELECT * FROM inventory_reservations WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *PGRepository) ListActiveForOwner(ctx context.Context, owner model.OwnerRef) ([]model.InventoryReservation, error) {
	items := []model.InventoryReservation{}
	err := r.DB.SelectContext(ctx, &items, `
        SELECT * FROM inventory_reservations
        WHERE reserved_for_type = $1 AND reserved_for_id = $2 AND status = 'active'
        ORDER BY created_at
    `, owner.Type, owner.ID)
	return items, err
}

func (r *PGRepository) ListExpiredActive(ctx context.Context, cutoff time.Time, limit int) ([]model.InventoryReservation, error) {
	items := []model.InventoryReservation{}
	err := r.DB.SelectContext(ctx, &items, `
        SELECT * FROM inventory_reservations
        WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at <= $1
        ORDER BY expires_at
        LIMIT $2
    `, cutoff, limit)
	return items, err
}

func (r *PGRepository) MarkReleased(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE inventory_reservations
        SET status = 'released', updated_at = $2
        WHERE id = $1 AND status = 'active'
    `, id, time.Now())
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *PGRepository) ConsumeReservation(ctx context.Context, res *model.InventoryReservation, performedBy string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	p, err := lockProduct(ctx, tx, res.ProductID)
	if err != nil {
		return err
	}

	// current_stock must never go negative, even if reservation
	// accounting has drifted.
	if p.CurrentStock-res.Quantity < 0 {
		return apperrors.NewBusinessRule(
			"consuming reservation %s would drive product %s stock below zero", res.ID, res.ProductID)
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx, `
        UPDATE inventory_reservations
        SET status = 'consumed', updated_at = $2
        WHERE id = $1 AND status = 'active'
    `, res.ID, now)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.NewNotFound("reservation", res.ID)
	}

	if _, err := tx.ExecContext(ctx, `
        UPDATE products SET current_stock = current_stock - $2, updated_at = $3 WHERE id = $1
    `, res.ProductID, res.Quantity, now); err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	refType := string(res.Type)
	refID := res.OwnerRef.ID
	movement := &model.StockMovement{
		ID:             uuid.New().String(),
		ProductID:      res.ProductID,
		Reason:         model.MovementConsumption,
		QuantityChange: -res.Quantity,
		QuantityBefore: p.CurrentStock,
		QuantityAfter:  p.CurrentStock - res.Quantity,
		ReferenceType:  &refType,
		ReferenceID:    &refID,
		PerformedBy:    &performedBy,
		CreatedAt:      now,
	}
	if err := insertMovement(ctx, tx, movement); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.Product, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := lockProduct(ctx, tx, input.ProductID)
	if err != nil {
		return nil, err
	}

	newStock := p.CurrentStock + input.QuantityChange
	if newStock < 0 {
		return nil, apperrors.NewBusinessRule(
			"adjustment of %.2f would drive product %s stock below zero", input.QuantityChange, input.ProductID)
	}

	now := time.Now()
	if _, err := tx.ExecContext(ctx, `
        UPDATE products SET current_stock = $2, updated_at = $3 WHERE id = $1
    `, input.ProductID, newStock, now); err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	var refType, refID *string
	if input.ReferenceType != "" {
		refType = &input.ReferenceType
	}
	if input.ReferenceID != "" {
		refID = &input.ReferenceID
	}
	var performedBy *string
	if input.PerformedBy != "" {
		performedBy = &input.PerformedBy
	}

	movement := &model.StockMovement{
		ID:             uuid.New().String(),
		ProductID:      input.ProductID,
		StoreID:        input.StoreID,
		Reason:         input.Reason,
		QuantityChange: input.QuantityChange,
		QuantityBefore: p.CurrentStock,
		QuantityAfter:  newStock,
		ReferenceType:  refType,
		ReferenceID:    refID,
		Notes:          input.Notes,
		PerformedBy:    performedBy,
		CreatedAt:      now,
	}
	if err := insertMovement(ctx, tx, movement); err != nil {
		return nil, fmt.Errorf("failed to log movement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	p.CurrentStock = newStock
	p.UpdatedAt = now
	return p, nil
}

func (r *PGRepository) DecrementForSale(ctx context.Context, lines []dto.SaleLine, transactionID, performedBy string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	refType := string(model.OwnerTransaction)

	for _, line := range lines {
		p, err := lockProduct(ctx, tx, line.ProductID)
		if err != nil {
			return err
		}
		if !p.StockTracked {
			continue
		}
		if p.CurrentStock < line.Quantity {
			return apperrors.NewInsufficientStock(line.ProductID, line.Quantity, p.CurrentStock)
		}

		if _, err := tx.ExecContext(ctx, `
            UPDATE products SET current_stock = current_stock - $2, updated_at = $3 WHERE id = $1
        `, line.ProductID, line.Quantity, now); err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		refID := transactionID
		movement := &model.StockMovement{
			ID:             uuid.New().String(),
			ProductID:      line.ProductID,
			Reason:         model.MovementSale,
			QuantityChange: -line.Quantity,
			QuantityBefore: p.CurrentStock,
			QuantityAfter:  p.CurrentStock - line.Quantity,
			ReferenceType:  &refType,
			ReferenceID:    &refID,
			PerformedBy:    &performedBy,
			CreatedAt:      now,
		}
		if err := insertMovement(ctx, tx, movement); err != nil {
			return fmt.Errorf("failed to log movement: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) ListLowStock(ctx context.Context, storeID *string, page, pageSize int) ([]dto.LowStockItem, int, error) {
	base := `
        FROM products p
        LEFT JOIN (
            SELECT product_id, SUM(quantity) AS reserved
            FROM inventory_reservations
            WHERE status = 'active'
            GROUP BY product_id
        ) res ON res.product_id = p.id
        WHERE p.stock_tracked AND p.reorder_threshold > 0
          AND p.current_stock - COALESCE(res.reserved, 0) <= p.reorder_threshold
    `
	args := []interface{}{}
	if storeID != nil && *storeID != "" {
		base += ` AND p.store_id = $1`
		args = append(args, *storeID)
	}

	var count int
	if err := r.DB.GetContext(ctx, &count, "SELECT count(*) "+base, args...); err != nil {
		return nil, 0, err
	}

	query := `
        SELECT p.id AS product_id, p.sku, p.name, p.current_stock,
               COALESCE(res.reserved, 0) AS reserved,
               p.current_stock - COALESCE(res.reserved, 0) AS available,
               p.reorder_threshold
    ` + base + ` ORDER BY available`
	if pageSize > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize)
	}

	items := []dto.LowStockItem{}
	err := r.DB.SelectContext(ctx, &items, query, args...)
	return items, count, err
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	items := []model.StockMovement{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.StoreID != nil && *f.StoreID != "" {
		conditions = append(conditions, "store_id = :store_id")
		args["store_id"] = *f.StoreID
	}
	if f.Reason != "" {
		conditions = append(conditions, "reason = :reason")
		args["reason"] = f.Reason
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM stock_movements" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC"
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
