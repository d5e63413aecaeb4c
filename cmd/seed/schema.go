package main

import (
	"fmt"
	"log"

	"github.com/urfave/cli/v2"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS cost_layers (
    id BIGSERIAL PRIMARY KEY,
    sku TEXT NOT NULL,
    origin_id TEXT NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity >= 0),
    unit_cost NUMERIC(14, 4) NOT NULL,
    acquired_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_cost_layers_sku_acquired
    ON cost_layers (sku, acquired_at, id);
CREATE INDEX IF NOT EXISTS idx_cost_layers_origin
    ON cost_layers (sku, origin_id);

CREATE TABLE IF NOT EXISTS purchase_orders (
    id BIGSERIAL PRIMARY KEY,
    reference TEXT NOT NULL UNIQUE,
    supplier TEXT NOT NULL DEFAULT '',
    status INTEGER NOT NULL DEFAULT 0,
    delivery_cost NUMERIC(14, 4) NOT NULL DEFAULT 0,
    ordered_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS purchase_order_lines (
    id BIGSERIAL PRIMARY KEY,
    purchase_order_id BIGINT NOT NULL REFERENCES purchase_orders (id) ON DELETE CASCADE,
    sku TEXT NOT NULL,
    product_name TEXT NOT NULL DEFAULT '',
    quantity INTEGER NOT NULL CHECK (quantity > 0),
    unit_cost NUMERIC(14, 4) NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_po_lines_po_id
    ON purchase_order_lines (purchase_order_id);

CREATE TABLE IF NOT EXISTS orders (
    id BIGSERIAL PRIMARY KEY,
    reference TEXT NOT NULL UNIQUE,
    customer TEXT NOT NULL DEFAULT '',
    total_amount NUMERIC(14, 4),
    tax_amount NUMERIC(14, 4),
    shipping_cost NUMERIC(14, 4),
    fulfilled BOOLEAN NOT NULL DEFAULT FALSE,
    placed_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS order_lines (
    id BIGSERIAL PRIMARY KEY,
    order_id BIGINT NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
    sku TEXT NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity > 0),
    unit_price NUMERIC(14, 4) NOT NULL DEFAULT 0,
    total_price NUMERIC(14, 4) NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_order_lines_order_id
    ON order_lines (order_id);

CREATE TABLE IF NOT EXISTS returns (
    id BIGSERIAL PRIMARY KEY,
    reference TEXT NOT NULL UNIQUE,
    order_id BIGINT REFERENCES orders (id),
    status INTEGER NOT NULL DEFAULT 0,
    received_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS return_lines (
    id BIGSERIAL PRIMARY KEY,
    return_id BIGINT NOT NULL REFERENCES returns (id) ON DELETE CASCADE,
    sku TEXT NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity > 0)
);

CREATE INDEX IF NOT EXISTS idx_return_lines_return_id
    ON return_lines (return_id);
`

const dropSQL = `
DROP TABLE IF EXISTS return_lines;
DROP TABLE IF EXISTS returns;
DROP TABLE IF EXISTS order_lines;
DROP TABLE IF EXISTS orders;
DROP TABLE IF EXISTS purchase_order_lines;
DROP TABLE IF EXISTS purchase_orders;
DROP TABLE IF EXISTS cost_layers;
`

func runSchema(c *cli.Context) error {
	db := dbFrom(c)
	if _, err := db.ExecContext(c.Context, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	log.Println("schema created")
	return nil
}

func runReset(c *cli.Context) error {
	db := dbFrom(c)
	if _, err := db.ExecContext(c.Context, dropSQL); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	log.Println("all tables dropped")
	return nil
}
