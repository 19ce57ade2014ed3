package db

import (
	"context"
	"fmt"

	"github.com/supplylink/core-service/internal/audit"
)

// RecordAudit appends one audit log row
func (db *Database) RecordAudit(ctx context.Context, entry audit.Entry) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO audit_logs (actor_account_id, action, entity_type, entity_id)
		VALUES ($1, $2, $3, $4)
	`, entry.ActorAccountID, entry.Action, entry.EntityType, entry.EntityID)
	if err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}
