package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pawdesk/petshop-service/internal/customer/dto"
	"github.com/pawdesk/petshop-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, c *model.Customer) error {
	query := `
        INSERT INTO customers (id, store_id, name, email, phone, address, notes, created_at, updated_at)
        VALUES (:id, :store_id, :name, :email, :phone, :address, :notes, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	var customer model.Customer
	err := r.DB.GetContext(ctx, &customer, `SELECT * FROM customers WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	pets, err := r.FindPetsByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	customer.Pets = pets

	return &customer, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CustomerFilters) ([]model.Customer, int, error) {
	var customers []model.Customer
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.StoreID != "" {
		conditions = append(conditions, "store_id = :store_id")
		args["store_id"] = f.StoreID
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR email ILIKE :search OR phone ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM customers" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM customers" + whereClause + " ORDER BY name"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &customers, args); err != nil {
		return nil, 0, err
	}

	return customers, count, nil
}

func (r *PGRepository) Update(ctx context.Context, c *model.Customer) error {
	query := `
        UPDATE customers
        SET name = :name,
            email = :email,
            phone = :phone,
            address = :address,
            notes = :notes,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pets WHERE customer_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PGRepository) CreatePet(ctx context.Context, p *model.Pet) error {
	query := `
        INSERT INTO pets (id, customer_id, name, species, breed, birth_date, weight, notes, created_at, updated_at)
        VALUES (:id, :customer_id, :name, :species, :breed, :birth_date, :weight, :notes, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) FindPetByID(ctx context.Context, id string) (*model.Pet, error) {
	var pet model.Pet
	err := r.DB.GetContext(ctx, &pet, `SELECT * FROM pets WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &pet, nil
}

func (r *PGRepository) FindPetsByCustomer(ctx context.Context, customerID string) ([]model.Pet, error) {
	pets := []model.Pet{}
	err := r.DB.SelectContext(ctx, &pets,
		`SELECT * FROM pets WHERE customer_id = $1 ORDER BY name`, customerID)
	if err != nil {
		return nil, err
	}
	return pets, nil
}

func (r *PGRepository) UpdatePet(ctx context.Context, p *model.Pet) error {
	query := `
        UPDATE pets
        SET name = :name,
            species = :species,
            breed = :breed,
            birth_date = :birth_date,
            weight = :weight,
            notes = :notes,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) DeletePet(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	return err
}
