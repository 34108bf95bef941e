package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026070401)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS source_file_registry (
	file_id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	storage_key TEXT NOT NULL UNIQUE,
	entity_type TEXT NOT NULL,
	status TEXT NOT NULL,
	size_bytes BIGINT NOT NULL DEFAULT 0,
	row_count INTEGER NOT NULL DEFAULT 0,
	col_count INTEGER NOT NULL DEFAULT 0,
	delimiter_guess TEXT NOT NULL DEFAULT '',
	encoding_guess TEXT NOT NULL DEFAULT '',
	batch_id TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	registered_at TIMESTAMPTZ NOT NULL,
	profiled_at TIMESTAMPTZ,
	processed_at TIMESTAMPTZ,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_registry_status ON source_file_registry(status);
CREATE INDEX IF NOT EXISTS idx_registry_registered_at ON source_file_registry(registered_at DESC);
CREATE INDEX IF NOT EXISTS idx_registry_entity_type ON source_file_registry(entity_type);

CREATE TABLE IF NOT EXISTS customers (
	customer_id TEXT PRIMARY KEY,
	full_name TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	address_street TEXT NOT NULL DEFAULT '',
	address_city TEXT NOT NULL DEFAULT '',
	address_state TEXT NOT NULL DEFAULT '',
	postal_code TEXT NOT NULL DEFAULT '',
	registration_date TIMESTAMPTZ,
	birth_date TIMESTAMPTZ,
	age INTEGER NOT NULL DEFAULT 0,
	gender TEXT NOT NULL DEFAULT '',
	segment TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT '',
	total_orders INTEGER NOT NULL DEFAULT 0,
	total_spent DOUBLE PRECISION NOT NULL DEFAULT 0,
	loyalty_points INTEGER NOT NULL DEFAULT 0,
	preferred_payment TEXT NOT NULL DEFAULT '',
	source_ref TEXT NOT NULL DEFAULT '',
	source_file TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_customers_email ON customers(email);
CREATE INDEX IF NOT EXISTS idx_customers_source_file ON customers(source_file);

CREATE TABLE IF NOT EXISTS customer_aliases (
	alias_key TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_customer_aliases_customer ON customer_aliases(customer_id);

CREATE TABLE IF NOT EXISTS products (
	product_id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	brand TEXT NOT NULL DEFAULT '',
	manufacturer TEXT NOT NULL DEFAULT '',
	price DOUBLE PRECISION NOT NULL DEFAULT 0,
	cost DOUBLE PRECISION NOT NULL DEFAULT 0,
	weight_kg DOUBLE PRECISION,
	length_cm DOUBLE PRECISION,
	width_cm DOUBLE PRECISION,
	height_cm DOUBLE PRECISION,
	color TEXT NOT NULL DEFAULT '',
	size TEXT NOT NULL DEFAULT '',
	stock_quantity INTEGER NOT NULL DEFAULT 0,
	reorder_level INTEGER NOT NULL DEFAULT 0,
	supplier_id TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN,
	rating DOUBLE PRECISION,
	created_date TIMESTAMPTZ,
	source_ref TEXT NOT NULL DEFAULT '',
	source_file TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_products_source_file ON products(source_file);

CREATE TABLE IF NOT EXISTS product_aliases (
	alias_key TEXT PRIMARY KEY,
	product_id TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_product_aliases_product ON product_aliases(product_id);

CREATE TABLE IF NOT EXISTS order_items (
	order_item_id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	customer_id TEXT NOT NULL DEFAULT '',
	product_id TEXT NOT NULL DEFAULT '',
	quantity INTEGER NOT NULL DEFAULT 0,
	unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	line_total DOUBLE PRECISION NOT NULL DEFAULT 0,
	line_discount DOUBLE PRECISION NOT NULL DEFAULT 0,
	line_tax DOUBLE PRECISION NOT NULL DEFAULT 0,
	line_shipping DOUBLE PRECISION NOT NULL DEFAULT 0,
	amount_paid DOUBLE PRECISION NOT NULL DEFAULT 0,
	payment_status TEXT NOT NULL DEFAULT '',
	delivery_status TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	order_date TIMESTAMPTZ,
	customer_orphan BOOLEAN NOT NULL DEFAULT FALSE,
	product_orphan BOOLEAN NOT NULL DEFAULT FALSE,
	source_file TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
CREATE INDEX IF NOT EXISTS idx_order_items_customer ON order_items(customer_id);
CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id);
CREATE INDEX IF NOT EXISTS idx_order_items_source_file ON order_items(source_file);

CREATE TABLE IF NOT EXISTS orders (
	order_id TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL DEFAULT '',
	order_date TIMESTAMPTZ,
	status TEXT NOT NULL DEFAULT '',
	payment_status TEXT NOT NULL DEFAULT '',
	shipping_total DOUBLE PRECISION NOT NULL DEFAULT 0,
	tax_total DOUBLE PRECISION NOT NULL DEFAULT 0,
	discount_total DOUBLE PRECISION NOT NULL DEFAULT 0,
	gross_total DOUBLE PRECISION NOT NULL DEFAULT 0,
	net_total DOUBLE PRECISION NOT NULL DEFAULT 0,
	item_count INTEGER NOT NULL DEFAULT 0,
	customer_orphan BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id);

CREATE TABLE IF NOT EXISTS batch_reports (
	file_id TEXT PRIMARY KEY,
	batch_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	quality JSONB NOT NULL DEFAULT '{}'::jsonb,
	rejected JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
