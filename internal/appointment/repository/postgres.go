package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pawdesk/petshop-service/internal/appointment/dto"
	"github.com/pawdesk/petshop-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, appt *model.Appointment) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO appointments (
            id, store_id, customer_id, pet_id, staff_id, start_at, end_at,
            status, notes, no_show, created_at, updated_at
        )
        VALUES (
            :id, :store_id, :customer_id, :pet_id, :staff_id, :start_at, :end_at,
            :status, :notes, :no_show, :created_at, :updated_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, query, appt); err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}

	lineQuery := `
        INSERT INTO appointment_lines (id, appointment_id, service_id, quantity, price_override)
        VALUES (:id, :appointment_id, :service_id, :quantity, :price_override)
    `
	for i := range appt.ServiceLines {
		if _, err := tx.NamedExecContext(ctx, lineQuery, &appt.ServiceLines[i]); err != nil {
			return fmt.Errorf("failed to insert appointment line: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM appointment_lines WHERE appointment_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	var appt model.Appointment
	err := r.DB.GetContext(ctx, &appt, `SELECT * FROM appointments WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	lines := []model.AppointmentLine{}
	if err := r.DB.SelectContext(ctx, &lines, `
        SELECT * FROM appointment_lines WHERE appointment_id = $1
    `, id); err != nil {
		return nil, err
	}
	appt.ServiceLines = lines
	return &appt, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.AppointmentFilters) ([]model.Appointment, int, error) {
	items := []model.Appointment{}
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
	if f.StaffID != "" {
		conditions = append(conditions, "staff_id = :staff_id")
		args["staff_id"] = f.StaffID
	}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.From != nil {
		conditions = append(conditions, "start_at >= :from_at")
		args["from_at"] = *f.From
	}
	if f.To != nil {
		conditions = append(conditions, "start_at < :to_at")
		args["to_at"] = *f.To
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM appointments" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM appointments" + whereClause + " ORDER BY start_at DESC"
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

func (r *PGRepository) HasOverlap(ctx context.Context, staffID string, startAt, endAt time.Time, excludeID string) (bool, error) {
	// Half-open intervals: [10:00,11:00) and [11:00,12:00) do not overlap.
	var count int
	err := r.DB.GetContext(ctx, &count, `
        SELECT count(*) FROM appointments
        WHERE staff_id = $1
          AND status != 'cancelled'
          AND start_at < $3
          AND end_at > $2
          AND id != $4
    `, staffID, startAt, endAt, excludeID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PGRepository) MarkConfirmed(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE appointments SET status = 'confirmed', updated_at = $2
        WHERE id = $1 AND status = 'booked'
    `, id, time.Now())
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (r *PGRepository) MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE appointments SET status = 'completed', completed_at = $2, updated_at = $2
        WHERE id = $1 AND status = 'confirmed'
    `, id, at)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (r *PGRepository) MarkCancelled(ctx context.Context, id string, reason *string, noShow bool, cancelledBy string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE appointments
        SET status = 'cancelled', cancel_reason = $2, no_show = $3,
            cancelled_by = $4, cancelled_at = $5, updated_at = $5
        WHERE id = $1 AND status IN ('booked', 'confirmed')
    `, id, reason, noShow, cancelledBy, at)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}
