package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/supplylink/core-service/internal/apperr"
	"github.com/supplylink/core-service/internal/models"
)

// CreateLink inserts a PENDING link, enforcing at most one
// PENDING/APPROVED link per org pair.
func (s *Store) CreateLink(ctx context.Context, supplierOrgID, consumerOrgID string) (models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.links {
		if l.SupplierOrgID == supplierOrgID && l.ConsumerOrgID == consumerOrgID && l.Status.IsActive() {
			return models.Link{}, apperr.Conflictf("link already exists with status %s", l.Status)
		}
	}

	now := s.now()
	l := models.Link{
		ID:            uuid.NewString(),
		SupplierOrgID: supplierOrgID,
		ConsumerOrgID: consumerOrgID,
		Status:        models.LinkStatusPending,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.links[l.ID] = l
	s.linkOrder = append(s.linkOrder, l.ID)
	return l, nil
}

// GetLink returns one link by id
func (s *Store) GetLink(ctx context.Context, id string) (models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[id]
	if !ok {
		return models.Link{}, apperr.NotFoundf("link %s not found", id)
	}
	return l, nil
}

// UpdateLinkStatus applies a compare-and-set transition on version
func (s *Store) UpdateLinkStatus(ctx context.Context, id string, version int, to models.LinkStatus) (models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[id]
	if !ok {
		return models.Link{}, apperr.NotFoundf("link %s not found", id)
	}
	if l.Version != version {
		return models.Link{}, apperr.Conflictf("link %s was modified concurrently", id)
	}

	l.Status = to
	l.Version++
	l.UpdatedAt = s.now()
	s.links[id] = l
	return l, nil
}

// ListLinksForOrg returns all links touching the org, newest first
func (s *Store) ListLinksForOrg(ctx context.Context, orgID string) ([]models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Link
	for i := len(s.linkOrder) - 1; i >= 0; i-- {
		l := s.links[s.linkOrder[i]]
		if l.SupplierOrgID == orgID || l.ConsumerOrgID == orgID {
			out = append(out, l)
		}
	}
	return out, nil
}

// ListPendingLinks returns PENDING links for a supplier org, newest first
func (s *Store) ListPendingLinks(ctx context.Context, supplierOrgID string) ([]models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Link
	for i := len(s.linkOrder) - 1; i >= 0; i-- {
		l := s.links[s.linkOrder[i]]
		if l.SupplierOrgID == supplierOrgID && l.Status == models.LinkStatusPending {
			out = append(out, l)
		}
	}
	return out, nil
}
