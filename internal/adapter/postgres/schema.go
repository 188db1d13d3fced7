package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS order_dispatches (
		id             SERIAL PRIMARY KEY,
		reference      TEXT UNIQUE NOT NULL,
		customer_name  TEXT NOT NULL,
		customer_email TEXT NOT NULL,
		customer_phone TEXT NOT NULL,
		pickup_time    TIMESTAMPTZ NOT NULL,
		subtotal       NUMERIC(12,4) NOT NULL,
		service_fee    NUMERIC(12,4) NOT NULL,
		total          NUMERIC(12,4) NOT NULL,
		outcome        TEXT NOT NULL CHECK (outcome IN ('dispatched', 'failed')),
		http_status    INTEGER,
		error          TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS dispatch_lines (
		id          SERIAL PRIMARY KEY,
		dispatch_id INTEGER NOT NULL REFERENCES order_dispatches(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		name        TEXT NOT NULL,
		quantity    INTEGER NOT NULL CHECK (quantity > 0),
		price_value NUMERIC(12,4) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_dispatches_created_at ON order_dispatches (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_dispatch_lines_dispatch_id ON dispatch_lines (dispatch_id)`,
}

// EnsureSchema creates the journal tables when missing, all or nothing.
func EnsureSchema(ctx context.Context, db DB) error {
	return db.InTx(ctx, func(q Querier) error {
		for _, stmt := range schema {
			if err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}
