// Package link owns the relationship lifecycle between a consumer org
// and a supplier org. An approved link is the gating root for ordering
// and messaging.
package link

import (
	"context"

	"github.com/supplylink/core-service/internal/apperr"
	"github.com/supplylink/core-service/internal/audit"
	"github.com/supplylink/core-service/internal/authz"
	"github.com/supplylink/core-service/internal/models"
)

// Decision is the supplier-side verdict on a pending link
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionDecline Decision = "DECLINE"
)

// Store persists links. CreateLink must atomically enforce the
// at-most-one-active-link-per-pair invariant; UpdateLinkStatus must
// compare-and-set on version and return Conflict when stale.
type Store interface {
	CreateLink(ctx context.Context, supplierOrgID, consumerOrgID string) (models.Link, error)
	GetLink(ctx context.Context, id string) (models.Link, error)
	UpdateLinkStatus(ctx context.Context, id string, version int, to models.LinkStatus) (models.Link, error)
	ListLinksForOrg(ctx context.Context, orgID string) ([]models.Link, error)
	ListPendingLinks(ctx context.Context, supplierOrgID string) ([]models.Link, error)
}

// OrgDirectory resolves organizations for link targeting and the
// supplier directory.
type OrgDirectory interface {
	GetOrg(ctx context.Context, id string) (models.Org, error)
	ListSupplierOrgs(ctx context.Context) ([]models.Org, error)
}

// Service is the Link Manager
type Service struct {
	store Store
	orgs  OrgDirectory
	audit audit.Recorder
}

// NewService creates a link service
func NewService(store Store, orgs OrgDirectory, rec audit.Recorder) *Service {
	return &Service{store: store, orgs: orgs, audit: rec}
}

// ListSuppliers returns active supplier orgs for consumers to browse
// before requesting a link.
func (s *Service) ListSuppliers(ctx context.Context, actor models.Principal) ([]models.Org, error) {
	if err := authz.Require(actor, authz.ActionSupplierList); err != nil {
		return nil, err
	}
	return s.orgs.ListSupplierOrgs(ctx)
}

// Request creates a PENDING link from the actor's consumer org to the
// supplier. Fails Conflict if a PENDING or APPROVED link already
// exists for the pair; a prior DECLINED or REMOVED record does not
// block a fresh request.
func (s *Service) Request(ctx context.Context, actor models.Principal, supplierOrgID string) (models.Link, error) {
	if err := authz.Require(actor, authz.ActionLinkRequest); err != nil {
		return models.Link{}, err
	}

	org, err := s.orgs.GetOrg(ctx, supplierOrgID)
	if err != nil {
		return models.Link{}, err
	}
	if org.Type != models.OrgTypeSupplier {
		return models.Link{}, apperr.NotFoundf("supplier %s not found", supplierOrgID)
	}
	if !org.IsActive {
		return models.Link{}, apperr.Validationf("supplier %s is not active", supplierOrgID)
	}

	created, err := s.store.CreateLink(ctx, supplierOrgID, actor.OrgID)
	if err != nil {
		return models.Link{}, err
	}

	audit.Record(ctx, s.audit, audit.Entry{
		ActorAccountID: actor.AccountID,
		Action:         "LINK_REQUESTED",
		EntityType:     audit.EntityLink,
		EntityID:       created.ID,
	})
	return created, nil
}

// Decide approves or declines a PENDING link. Only OWNER/MANAGER of
// the link's supplier org may decide. Concurrent decisions on the same
// link resolve deterministically: the second writer gets Conflict.
func (s *Service) Decide(ctx context.Context, actor models.Principal, linkID string, decision Decision) (models.Link, error) {
	if err := authz.Require(actor, authz.ActionLinkDecide); err != nil {
		return models.Link{}, err
	}

	var to models.LinkStatus
	switch decision {
	case DecisionApprove:
		to = models.LinkStatusApproved
	case DecisionDecline:
		to = models.LinkStatusDeclined
	default:
		return models.Link{}, apperr.Validationf("unknown decision %q", decision)
	}

	l, err := s.store.GetLink(ctx, linkID)
	if err != nil {
		return models.Link{}, err
	}
	// Cross-org probes must not learn the link exists.
	if l.SupplierOrgID != actor.OrgID {
		return models.Link{}, apperr.NotFoundf("link %s not found", linkID)
	}
	if l.Status != models.LinkStatusPending {
		return models.Link{}, apperr.Transitionf("link is not pending (current status: %s)", l.Status)
	}

	updated, err := s.store.UpdateLinkStatus(ctx, linkID, l.Version, to)
	if err != nil {
		return models.Link{}, err
	}

	action := "LINK_APPROVED"
	if to == models.LinkStatusDeclined {
		action = "LINK_DECLINED"
	}
	audit.Record(ctx, s.audit, audit.Entry{
		ActorAccountID: actor.AccountID,
		Action:         action,
		EntityType:     audit.EntityLink,
		EntityID:       updated.ID,
	})
	return updated, nil
}

// Unlink soft-terminates an APPROVED link. Either org on the link may
// remove it; re-linking afterwards requires a fresh Request.
func (s *Service) Unlink(ctx context.Context, actor models.Principal, linkID string) (models.Link, error) {
	if err := authz.Require(actor, authz.ActionLinkRemove); err != nil {
		return models.Link{}, err
	}

	l, err := s.store.GetLink(ctx, linkID)
	if err != nil {
		return models.Link{}, err
	}
	if l.SupplierOrgID != actor.OrgID && l.ConsumerOrgID != actor.OrgID {
		return models.Link{}, apperr.NotFoundf("link %s not found", linkID)
	}
	if l.Status != models.LinkStatusApproved {
		return models.Link{}, apperr.Transitionf("link is not approved (current status: %s)", l.Status)
	}

	updated, err := s.store.UpdateLinkStatus(ctx, linkID, l.Version, models.LinkStatusRemoved)
	if err != nil {
		return models.Link{}, err
	}

	audit.Record(ctx, s.audit, audit.Entry{
		ActorAccountID: actor.AccountID,
		Action:         "LINK_REMOVED",
		EntityType:     audit.EntityLink,
		EntityID:       updated.ID,
	})
	return updated, nil
}

// ListForOrg returns all links touching the actor's org, newest first.
func (s *Service) ListForOrg(ctx context.Context, actor models.Principal) ([]models.Link, error) {
	if err := authz.Require(actor, authz.ActionLinkList); err != nil {
		return nil, err
	}
	return s.store.ListLinksForOrg(ctx, actor.OrgID)
}

// ListPending returns PENDING links awaiting review for the actor's
// supplier org.
func (s *Service) ListPending(ctx context.Context, actor models.Principal) ([]models.Link, error) {
	if err := authz.Require(actor, authz.ActionLinkListPending); err != nil {
		return nil, err
	}
	return s.store.ListPendingLinks(ctx, actor.OrgID)
}

// ApprovedLink returns the APPROVED link for an org pair, if any.
// Used by the Order Engine as its read-time precondition check.
func (s *Service) ApprovedLink(ctx context.Context, supplierOrgID, consumerOrgID string) (models.Link, error) {
	links, err := s.store.ListLinksForOrg(ctx, consumerOrgID)
	if err != nil {
		return models.Link{}, err
	}
	for _, l := range links {
		if l.SupplierOrgID == supplierOrgID && l.Status == models.LinkStatusApproved {
			return l, nil
		}
	}
	return models.Link{}, apperr.NotFoundf("no approved link between %s and %s", consumerOrgID, supplierOrgID)
}
