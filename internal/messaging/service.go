// Package messaging owns the per-link conversation threads. Posting
// requires the link to be APPROVED at call time; the log itself is
// append-only, so historical reads survive a later unlink.
package messaging

import (
	"context"
	"strings"

	"github.com/supplylink/core-service/internal/apperr"
	"github.com/supplylink/core-service/internal/audit"
	"github.com/supplylink/core-service/internal/authz"
	"github.com/supplylink/core-service/internal/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Store persists messages. ListMessages returns them ordered by
// (created_at, id) ascending.
type Store interface {
	AppendMessage(ctx context.Context, m models.Message) (models.Message, error)
	ListMessages(ctx context.Context, linkID string, limit, offset int) ([]models.Message, error)
}

// LinkGetter exposes the Link Manager's link lookup
type LinkGetter interface {
	GetLink(ctx context.Context, id string) (models.Link, error)
}

// Service is the Messaging Channel
type Service struct {
	store Store
	links LinkGetter
	audit audit.Recorder
}

// NewService creates a messaging service
func NewService(store Store, links LinkGetter, rec audit.Recorder) *Service {
	return &Service{store: store, links: links, audit: rec}
}

// memberLink loads the link and hides it from non-members
func (s *Service) memberLink(ctx context.Context, actor models.Principal, linkID string) (models.Link, error) {
	l, err := s.links.GetLink(ctx, linkID)
	if err != nil {
		return models.Link{}, err
	}
	if l.SupplierOrgID != actor.OrgID && l.ConsumerOrgID != actor.OrgID {
		return models.Link{}, apperr.NotFoundf("link %s not found", linkID)
	}
	return l, nil
}

// Post appends a message to the link's thread. The link must be
// APPROVED at call time; content must be non-empty after trimming.
func (s *Service) Post(ctx context.Context, actor models.Principal, linkID, content string, attachmentURL *string) (models.Message, error) {
	if err := authz.Require(actor, authz.ActionMessagePost); err != nil {
		return models.Message{}, err
	}

	l, err := s.memberLink(ctx, actor, linkID)
	if err != nil {
		return models.Message{}, err
	}
	if l.Status != models.LinkStatusApproved {
		return models.Message{}, apperr.Preconditionf("link is not approved (current status: %s)", l.Status)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, apperr.Validationf("message content must not be empty")
	}

	created, err := s.store.AppendMessage(ctx, models.Message{
		LinkID:          linkID,
		SenderAccountID: actor.AccountID,
		Content:         content,
		AttachmentURL:   attachmentURL,
	})
	if err != nil {
		return models.Message{}, err
	}

	audit.Record(ctx, s.audit, audit.Entry{
		ActorAccountID: actor.AccountID,
		Action:         "MESSAGE_POSTED",
		EntityType:     audit.EntityMessage,
		EntityID:       created.ID,
	})
	return created, nil
}

// List returns a page of the thread in (created_at, id) ascending
// order. Membership is required but approval is not, so historical
// threads stay readable after an unlink.
func (s *Service) List(ctx context.Context, actor models.Principal, linkID string, page models.Pagination) ([]models.Message, error) {
	if err := authz.Require(actor, authz.ActionMessageList); err != nil {
		return nil, err
	}
	if _, err := s.memberLink(ctx, actor, linkID); err != nil {
		return nil, err
	}

	limit := page.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	return s.store.ListMessages(ctx, linkID, limit, offset)
}
