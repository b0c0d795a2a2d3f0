// Package migrations applies the database schema on startup. Statements are
// idempotent so the runner can execute on every boot.
package migrations

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS suppliers (
        id UUID PRIMARY KEY,
        name TEXT NOT NULL,
        email TEXT,
        phone TEXT,
        address TEXT,
        is_active BOOLEAN NOT NULL DEFAULT TRUE,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS products (
        id UUID PRIMARY KEY,
        store_id TEXT NOT NULL,
        supplier_id UUID REFERENCES suppliers(id),
        sku TEXT NOT NULL,
        barcode TEXT,
        name TEXT NOT NULL,
        description TEXT,
        unit_price NUMERIC(12,2) NOT NULL DEFAULT 0,
        cost_price NUMERIC(12,2),
        vat_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
        stock_tracked BOOLEAN NOT NULL DEFAULT TRUE,
        reorder_threshold NUMERIC(12,3) NOT NULL DEFAULT 0,
        current_stock NUMERIC(12,3) NOT NULL DEFAULT 0,
        is_active BOOLEAN NOT NULL DEFAULT TRUE,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL,
        UNIQUE (store_id, sku)
    )`,
	`CREATE INDEX IF NOT EXISTS idx_products_store ON products (store_id)`,
	`CREATE TABLE IF NOT EXISTS inventory_reservations (
        id UUID PRIMARY KEY,
        product_id UUID NOT NULL REFERENCES products(id),
        quantity NUMERIC(12,3) NOT NULL,
        status TEXT NOT NULL,
        reserved_for_type TEXT NOT NULL,
        reserved_for_id TEXT NOT NULL,
        expires_at TIMESTAMPTZ,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_product_status
        ON inventory_reservations (product_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_owner
        ON inventory_reservations (reserved_for_type, reserved_for_id)`,
	`CREATE TABLE IF NOT EXISTS stock_movements (
        id UUID PRIMARY KEY,
        product_id UUID NOT NULL REFERENCES products(id),
        store_id TEXT,
        quantity_change NUMERIC(12,3) NOT NULL,
        quantity_before NUMERIC(12,3) NOT NULL,
        quantity_after NUMERIC(12,3) NOT NULL,
        reason TEXT NOT NULL,
        reference_type TEXT,
        reference_id TEXT,
        notes TEXT,
        performed_by TEXT,
        created_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_movements_product ON stock_movements (product_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS customers (
        id UUID PRIMARY KEY,
        store_id TEXT NOT NULL,
        name TEXT NOT NULL,
        email TEXT,
        phone TEXT,
        address TEXT,
        notes TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS pets (
        id UUID PRIMARY KEY,
        customer_id UUID NOT NULL REFERENCES customers(id),
        name TEXT NOT NULL,
        species TEXT NOT NULL,
        breed TEXT,
        birth_date TIMESTAMPTZ,
        weight NUMERIC(8,3),
        notes TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS services (
        id UUID PRIMARY KEY,
        store_id TEXT NOT NULL,
        name TEXT NOT NULL,
        description TEXT,
        duration_minutes INT NOT NULL,
        price NUMERIC(12,2) NOT NULL DEFAULT 0,
        vat_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
        is_active BOOLEAN NOT NULL DEFAULT TRUE,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS service_consumables (
        id UUID PRIMARY KEY,
        service_id UUID NOT NULL REFERENCES services(id) ON DELETE CASCADE,
        product_id UUID NOT NULL REFERENCES products(id),
        quantity NUMERIC(12,3) NOT NULL,
        UNIQUE (service_id, product_id)
    )`,
	`CREATE TABLE IF NOT EXISTS users (
        id UUID PRIMARY KEY,
        store_id TEXT NOT NULL,
        email TEXT NOT NULL UNIQUE,
        name TEXT NOT NULL,
        password_hash TEXT NOT NULL,
        role TEXT NOT NULL,
        is_active BOOLEAN NOT NULL DEFAULT TRUE,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS appointments (
        id UUID PRIMARY KEY,
        store_id TEXT NOT NULL,
        customer_id UUID NOT NULL REFERENCES customers(id),
        pet_id UUID NOT NULL REFERENCES pets(id),
        staff_id UUID NOT NULL REFERENCES users(id),
        start_at TIMESTAMPTZ NOT NULL,
        end_at TIMESTAMPTZ NOT NULL,
        status TEXT NOT NULL,
        notes TEXT NOT NULL DEFAULT '',
        no_show BOOLEAN NOT NULL DEFAULT FALSE,
        cancel_reason TEXT,
        cancelled_at TIMESTAMPTZ,
        cancelled_by TEXT,
        completed_at TIMESTAMPTZ,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_staff_window
        ON appointments (staff_id, start_at, end_at)`,
	`CREATE TABLE IF NOT EXISTS appointment_lines (
        id UUID PRIMARY KEY,
        appointment_id UUID NOT NULL REFERENCES appointments(id) ON DELETE CASCADE,
        service_id UUID NOT NULL REFERENCES services(id),
        quantity NUMERIC(12,3) NOT NULL DEFAULT 1,
        price_override NUMERIC(12,2)
    )`,
	`CREATE TABLE IF NOT EXISTS transactions (
        id UUID PRIMARY KEY,
        store_id TEXT NOT NULL,
        customer_id UUID REFERENCES customers(id),
        invoice_id UUID,
        total_amount NUMERIC(12,2) NOT NULL,
        vat_amount NUMERIC(12,2) NOT NULL,
        payment_status TEXT NOT NULL,
        payment_method TEXT,
        paid_at TIMESTAMPTZ,
        external_reference TEXT,
        void_reason TEXT,
        voided_at TIMESTAMPTZ,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS transaction_lines (
        id UUID PRIMARY KEY,
        transaction_id UUID NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
        product_id UUID REFERENCES products(id),
        service_id UUID REFERENCES services(id),
        description TEXT NOT NULL,
        quantity NUMERIC(12,3) NOT NULL,
        unit_price NUMERIC(12,2) NOT NULL,
        vat_rate NUMERIC(5,2) NOT NULL,
        line_total NUMERIC(12,2) NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS invoices (
        id UUID PRIMARY KEY,
        company_id TEXT NOT NULL,
        store_id TEXT NOT NULL,
        customer_id UUID,
        number TEXT UNIQUE,
        status TEXT NOT NULL,
        subtotal NUMERIC(12,2) NOT NULL,
        vat_total NUMERIC(12,2) NOT NULL,
        total NUMERIC(12,2) NOT NULL,
        issued_at TIMESTAMPTZ,
        paid_at TIMESTAMPTZ,
        voided_at TIMESTAMPTZ,
        void_reason TEXT,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS invoice_lines (
        id UUID PRIMARY KEY,
        invoice_id UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
        description TEXT NOT NULL,
        quantity NUMERIC(12,3) NOT NULL,
        unit_price NUMERIC(12,2) NOT NULL,
        vat_rate NUMERIC(5,2) NOT NULL,
        line_total NUMERIC(12,2) NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS invoice_counters (
        store_id TEXT PRIMARY KEY,
        counter BIGINT NOT NULL DEFAULT 0
    )`,
}

func Apply(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
