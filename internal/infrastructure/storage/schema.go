package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates the module-owned tables. The catalog tables are
// owned by the platform and are never touched here. No unique constraint
// on fb_products.sku: uniqueness of published rows is guaranteed by the
// selector's exclusion query, and a hard constraint has historically
// rejected legitimate duplicate attempts (failed + retried SKUs).
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS fb_products (
		id UUID PRIMARY KEY,
		sku TEXT NOT NULL,
		product_name TEXT NOT NULL,
		product_type TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		scheduled_at TIMESTAMPTZ NOT NULL,
		published_at TIMESTAMPTZ,
		post_id TEXT,
		message TEXT,
		error_message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_fb_products_sku ON fb_products (sku);
	CREATE INDEX IF NOT EXISTS idx_fb_products_status ON fb_products (status);

	CREATE TABLE IF NOT EXISTS fb_settings (
		path TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
