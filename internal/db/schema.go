package db

import (
	"context"
	"fmt"
	"log"
)

// InitSchema creates the tables and indexes this service owns.
// Idempotent; safe to run at every startup.
func (db *Database) InitSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS organizations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			org_type TEXT NOT NULL CHECK (org_type IN ('supplier','consumer')),
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			org_id UUID NOT NULL REFERENCES organizations(id),
			role TEXT NOT NULL CHECK (role IN ('OWNER','MANAGER','SALES','CONSUMER')),
			email TEXT NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			supplier_org_id UUID NOT NULL REFERENCES organizations(id),
			name TEXT NOT NULL,
			unit TEXT NOT NULL DEFAULT '',
			price NUMERIC(12,2) NOT NULL,
			stock_quantity INTEGER NOT NULL DEFAULT 0,
			min_order_quantity INTEGER NOT NULL DEFAULT 1,
			is_active BOOLEAN NOT NULL DEFAULT true
		);`,
		`CREATE TABLE IF NOT EXISTS links (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			supplier_org_id UUID NOT NULL REFERENCES organizations(id),
			consumer_org_id UUID NOT NULL REFERENCES organizations(id),
			status TEXT NOT NULL CHECK (status IN ('PENDING','APPROVED','DECLINED','REMOVED')),
			version INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		// at most one non-terminal link per org pair
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_links_active_pair
			ON links(supplier_org_id, consumer_org_id)
			WHERE status IN ('PENDING','APPROVED');`,
		`CREATE INDEX IF NOT EXISTS idx_links_supplier ON links(supplier_org_id, status);`,
		`CREATE INDEX IF NOT EXISTS idx_links_consumer ON links(consumer_org_id, status);`,
		`CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			supplier_org_id UUID NOT NULL REFERENCES organizations(id),
			consumer_org_id UUID NOT NULL REFERENCES organizations(id),
			created_by_account_id UUID NOT NULL REFERENCES accounts(id),
			status TEXT NOT NULL CHECK (status IN ('PENDING','ACCEPTED','REJECTED','COMPLETED')),
			total_amount NUMERIC(14,2) NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_supplier ON orders(supplier_org_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_consumer ON orders(consumer_org_id, created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id UUID NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price NUMERIC(12,2) NOT NULL,
			subtotal NUMERIC(14,2) NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);`,
		`CREATE TABLE IF NOT EXISTS complaints (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			order_id UUID NOT NULL REFERENCES orders(id),
			raised_by_account_id UUID NOT NULL REFERENCES accounts(id),
			assigned_to_account_id UUID REFERENCES accounts(id),
			status TEXT NOT NULL CHECK (status IN ('OPEN','RESOLVED')),
			description TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			resolved_at TIMESTAMPTZ
		);`,
		// at most one OPEN complaint per order
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_complaints_open_order
			ON complaints(order_id)
			WHERE status = 'OPEN';`,
		`CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			link_id UUID NOT NULL REFERENCES links(id),
			sender_account_id UUID NOT NULL REFERENCES accounts(id),
			content TEXT NOT NULL,
			attachment_url TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(link_id, created_at, id);`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			actor_account_id UUID NOT NULL,
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_logs(entity_type, entity_id);`,
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, s := range stmts {
		if _, err := tx.Exec(ctx, s); err != nil {
			return fmt.Errorf("exec schema: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}

	log.Println("[CORE-DB] Schema verified")
	return nil
}
