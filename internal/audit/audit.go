// Package audit records who did what to which entity. Entries are
// append-only and written best-effort: a failed audit write is logged
// and never fails the command that produced it.
package audit

import (
	"context"

	"github.com/supplylink/core-service/internal/logging"
)

// Entity types
const (
	EntityLink      = "LINK"
	EntityOrder     = "ORDER"
	EntityComplaint = "COMPLAINT"
	EntityMessage   = "MESSAGE"
)

// Entry is one audit log record
type Entry struct {
	ActorAccountID string `json:"actor_account_id"`
	Action         string `json:"action"`
	EntityType     string `json:"entity_type"`
	EntityID       string `json:"entity_id"`
}

// Recorder persists audit entries
type Recorder interface {
	RecordAudit(ctx context.Context, entry Entry) error
}

// Record writes the entry, swallowing and logging failures
func Record(ctx context.Context, r Recorder, entry Entry) {
	if r == nil {
		return
	}
	if err := r.RecordAudit(ctx, entry); err != nil {
		logging.LogKV("error", "audit write failed", map[string]interface{}{
			"action":      entry.Action,
			"entity_type": entry.EntityType,
			"entity_id":   entry.EntityID,
			"error":       err.Error(),
		})
	}
}
