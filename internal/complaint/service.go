// Package complaint owns dispute creation and resolution. A complaint
// always references one order; at most one OPEN complaint exists per
// order, and RESOLVED is terminal.
package complaint

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/supplylink/core-service/internal/apperr"
	"github.com/supplylink/core-service/internal/audit"
	"github.com/supplylink/core-service/internal/authz"
	"github.com/supplylink/core-service/internal/logging"
	"github.com/supplylink/core-service/internal/models"
)

// Filter narrows complaint listings. SupplierOrgID selects complaints
// on that org's orders; RaisedByAccountID selects a raiser's own.
type Filter struct {
	SupplierOrgID     string
	RaisedByAccountID string
	Status            models.ComplaintStatus
}

// Patch is the store-level update applied with compare-and-set
type Patch struct {
	Status              *models.ComplaintStatus
	AssignedToAccountID *string
	ResolvedAt          *time.Time
}

// Store persists complaints. CreateComplaint must atomically reject a
// second OPEN complaint for the same order with Conflict;
// UpdateComplaint must compare-and-set on version.
type Store interface {
	CreateComplaint(ctx context.Context, c models.Complaint) (models.Complaint, error)
	GetComplaint(ctx context.Context, id string) (models.Complaint, error)
	UpdateComplaint(ctx context.Context, id string, version int, patch Patch) (models.Complaint, error)
	ListComplaints(ctx context.Context, f Filter) ([]models.Complaint, error)
}

// OrderGetter exposes the Order Engine's order lookup
type OrderGetter interface {
	GetOrder(ctx context.Context, id string) (models.Order, error)
}

// AccountDirectory resolves accounts for assignment validation
type AccountDirectory interface {
	GetAccount(ctx context.Context, id string) (models.Account, error)
}

// Archiver stores resolved complaint records for retention. A nil or
// disabled archiver skips archival.
type Archiver interface {
	Enabled() bool
	ArchiveJSON(ctx context.Context, key string, v interface{}) (string, error)
}

// Service is the Complaint Tracker
type Service struct {
	store    Store
	orders   OrderGetter
	accounts AccountDirectory
	archive  Archiver
	audit    audit.Recorder
}

// NewService creates a complaint service
func NewService(store Store, orders OrderGetter, accounts AccountDirectory, archive Archiver, rec audit.Recorder) *Service {
	return &Service{store: store, orders: orders, accounts: accounts, archive: archive, audit: rec}
}

// Create raises an OPEN complaint against an order. Only the consumer
// org that owns the order may raise one; a second complaint while one
// is OPEN fails with Conflict.
func (s *Service) Create(ctx context.Context, actor models.Principal, orderID, description string) (models.Complaint, error) {
	if err := authz.Require(actor, authz.ActionComplaintCreate); err != nil {
		return models.Complaint{}, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return models.Complaint{}, apperr.Validationf("description must not be empty")
	}

	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return models.Complaint{}, err
	}
	if o.ConsumerOrgID != actor.OrgID {
		return models.Complaint{}, apperr.NotFoundf("order %s not found", orderID)
	}

	created, err := s.store.CreateComplaint(ctx, models.Complaint{
		OrderID:           orderID,
		RaisedByAccountID: actor.AccountID,
		Status:            models.ComplaintStatusOpen,
		Description:       description,
	})
	if err != nil {
		return models.Complaint{}, err
	}

	audit.Record(ctx, s.audit, audit.Entry{
		ActorAccountID: actor.AccountID,
		Action:         "COMPLAINT_CREATED",
		EntityType:     audit.EntityComplaint,
		EntityID:       created.ID,
	})
	return created, nil
}

// Update patches status and/or assignee. Supplier staff of the order's
// supplier org may set either field; the raising consumer may only
// self-resolve. Resolving stamps resolved_at and archives the record.
func (s *Service) Update(ctx context.Context, actor models.Principal, complaintID string, patch models.ComplaintPatch) (models.Complaint, error) {
	if err := authz.Require(actor, authz.ActionComplaintUpdate); err != nil {
		return models.Complaint{}, err
	}
	if patch.Status == nil && patch.AssignedToAccountID == nil {
		return models.Complaint{}, apperr.Validationf("nothing to update")
	}

	c, err := s.store.GetComplaint(ctx, complaintID)
	if err != nil {
		return models.Complaint{}, err
	}
	o, err := s.orders.GetOrder(ctx, c.OrderID)
	if err != nil {
		return models.Complaint{}, err
	}

	if actor.Role == models.RoleConsumer {
		if c.RaisedByAccountID != actor.AccountID {
			return models.Complaint{}, apperr.NotFoundf("complaint %s not found", complaintID)
		}
		if patch.AssignedToAccountID != nil {
			return models.Complaint{}, apperr.Forbiddenf("consumers cannot assign complaints")
		}
		if patch.Status != nil && *patch.Status != models.ComplaintStatusResolved {
			return models.Complaint{}, apperr.Forbiddenf("consumers may only mark their complaint resolved")
		}
	} else {
		if o.SupplierOrgID != actor.OrgID {
			return models.Complaint{}, apperr.NotFoundf("complaint %s not found", complaintID)
		}
	}

	// RESOLVED is terminal: no further patch of any kind, assignment
	// included.
	if c.Status == models.ComplaintStatusResolved {
		return models.Complaint{}, apperr.Transitionf("complaint is already resolved")
	}

	storePatch := Patch{AssignedToAccountID: patch.AssignedToAccountID}
	resolving := false
	if patch.Status != nil {
		switch *patch.Status {
		case models.ComplaintStatusResolved:
			resolving = true
			now := time.Now().UTC()
			storePatch.Status = patch.Status
			storePatch.ResolvedAt = &now
		case models.ComplaintStatusOpen:
			return models.Complaint{}, apperr.Transitionf("complaint is already open")
		default:
			return models.Complaint{}, apperr.Validationf("invalid status %q", *patch.Status)
		}
	}

	if patch.AssignedToAccountID != nil {
		assignee, err := s.accounts.GetAccount(ctx, *patch.AssignedToAccountID)
		if err != nil {
			return models.Complaint{}, apperr.Validationf("assigned account not found")
		}
		if assignee.OrgID != o.SupplierOrgID || !assignee.Role.IsSupplierStaff() {
			return models.Complaint{}, apperr.Validationf("complaints can only be assigned to the supplier's staff")
		}
	}

	updated, err := s.store.UpdateComplaint(ctx, complaintID, c.Version, storePatch)
	if err != nil {
		return models.Complaint{}, err
	}

	action := "COMPLAINT_UPDATED"
	if resolving {
		action = "COMPLAINT_RESOLVED"
		s.archiveResolved(ctx, updated)
	}
	audit.Record(ctx, s.audit, audit.Entry{
		ActorAccountID: actor.AccountID,
		Action:         action,
		EntityType:     audit.EntityComplaint,
		EntityID:       updated.ID,
	})
	return updated, nil
}

// List returns complaints visible to the actor: supplier staff see
// complaints on their org's orders, consumers only those they raised.
func (s *Service) List(ctx context.Context, actor models.Principal, status models.ComplaintStatus) ([]models.Complaint, error) {
	if err := authz.Require(actor, authz.ActionComplaintList); err != nil {
		return nil, err
	}
	if status != "" && status != models.ComplaintStatusOpen && status != models.ComplaintStatusResolved {
		return nil, apperr.Validationf("invalid status filter %q", status)
	}

	f := Filter{Status: status}
	if actor.Role.IsSupplierStaff() {
		f.SupplierOrgID = actor.OrgID
	} else {
		f.RaisedByAccountID = actor.AccountID
	}
	return s.store.ListComplaints(ctx, f)
}

// archiveResolved writes the resolved complaint to the retention
// bucket, best-effort.
func (s *Service) archiveResolved(ctx context.Context, c models.Complaint) {
	if s.archive == nil || !s.archive.Enabled() {
		return
	}
	key := fmt.Sprintf("complaints/%s-%s.json", c.ID, time.Now().UTC().Format("20060102T150405Z"))
	if _, err := s.archive.ArchiveJSON(ctx, key, c); err != nil {
		logging.LogKV("error", "complaint archive failed", map[string]interface{}{
			"complaint_id": c.ID,
			"error":        err.Error(),
		})
	}
}
