package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pawdesk/petshop-service/internal/catalog/dto"
	"github.com/pawdesk/petshop-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) CreateService(ctx context.Context, s *model.Service) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO services (
            id, store_id, name, description, duration_minutes, price, vat_rate,
            is_active, created_at, updated_at
        )
        VALUES (
            :id, :store_id, :name, :description, :duration_minutes, :price, :vat_rate,
            :is_active, :created_at, :updated_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, query, s); err != nil {
		return err
	}

	if err := insertConsumables(ctx, tx, s.ID, s.Consumables); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PGRepository) FindServiceByID(ctx context.Context, id string) (*model.Service, error) {
	var service model.Service
	err := r.DB.GetContext(ctx, &service, `SELECT * FROM services WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	err = r.DB.SelectContext(ctx, &service.Consumables,
		`SELECT * FROM service_consumables WHERE service_id = $1 ORDER BY product_id`, id)
	if err != nil {
		return nil, err
	}

	return &service, nil
}

func (r *PGRepository) FindAllServices(ctx context.Context, f *dto.ServiceFilters) ([]model.Service, int, error) {
	var services []model.Service
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.StoreID != "" {
		conditions = append(conditions, "store_id = :store_id")
		args["store_id"] = f.StoreID
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "name ILIKE :search")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM services" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM services" + whereClause + " ORDER BY name"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &services, args); err != nil {
		return nil, 0, err
	}

	return services, count, nil
}

func (r *PGRepository) UpdateService(ctx context.Context, s *model.Service) error {
	query := `
        UPDATE services
        SET name = :name,
            description = :description,
            duration_minutes = :duration_minutes,
            price = :price,
            vat_rate = :vat_rate,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, s)
	return err
}

func (r *PGRepository) DeleteService(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM service_consumables WHERE service_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PGRepository) ReplaceConsumables(ctx context.Context, serviceID string, items []model.ServiceConsumable) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM service_consumables WHERE service_id = $1`, serviceID); err != nil {
		return err
	}
	if err := insertConsumables(ctx, tx, serviceID, items); err != nil {
		return err
	}

	return tx.Commit()
}

func insertConsumables(ctx context.Context, tx *sqlx.Tx, serviceID string, items []model.ServiceConsumable) error {
	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO service_consumables (id, service_id, product_id, quantity)
            VALUES ($1, $2, $3, $4)
        `, item.ID, serviceID, item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PGRepository) CreateSupplier(ctx context.Context, s *model.Supplier) error {
	query := `
        INSERT INTO suppliers (id, name, email, phone, address, is_active, created_at, updated_at)
        VALUES (:id, :name, :email, :phone, :address, :is_active, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, s)
	return err
}

func (r *PGRepository) FindSupplierByID(ctx context.Context, id string) (*model.Supplier, error) {
	var supplier model.Supplier
	err := r.DB.GetContext(ctx, &supplier, `SELECT * FROM suppliers WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &supplier, nil
}

func (r *PGRepository) FindAllSuppliers(ctx context.Context, page, pageSize int) ([]model.Supplier, int, error) {
	var suppliers []model.Supplier
	var count int

	if err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM suppliers`); err != nil {
		return nil, 0, err
	}

	query := `SELECT * FROM suppliers ORDER BY name`
	if pageSize > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize)
	}

	if err := r.DB.SelectContext(ctx, &suppliers, query); err != nil {
		return nil, 0, err
	}

	return suppliers, count, nil
}

func (r *PGRepository) UpdateSupplier(ctx context.Context, s *model.Supplier) error {
	query := `
        UPDATE suppliers
        SET name = :name,
            email = :email,
            phone = :phone,
            address = :address,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, s)
	return err
}

func (r *PGRepository) DeleteSupplier(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	return err
}
