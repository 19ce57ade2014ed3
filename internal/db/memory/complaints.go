package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/supplylink/core-service/internal/apperr"
	"github.com/supplylink/core-service/internal/complaint"
	"github.com/supplylink/core-service/internal/models"
)

// CreateComplaint inserts an OPEN complaint, enforcing at most one
// OPEN complaint per order.
func (s *Store) CreateComplaint(ctx context.Context, c models.Complaint) (models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.complaints {
		if existing.OrderID == c.OrderID && existing.Status == models.ComplaintStatusOpen {
			return models.Complaint{}, apperr.Conflictf("an open complaint already exists for order %s", c.OrderID)
		}
	}

	now := s.now()
	c.ID = uuid.NewString()
	c.Version = 1
	c.CreatedAt = now
	c.UpdatedAt = now
	s.complaints[c.ID] = c
	s.complaintSeq = append(s.complaintSeq, c.ID)
	return c, nil
}

// GetComplaint returns one complaint by id
func (s *Store) GetComplaint(ctx context.Context, id string) (models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return models.Complaint{}, apperr.NotFoundf("complaint %s not found", id)
	}
	return c, nil
}

// UpdateComplaint applies the patch with compare-and-set on version
func (s *Store) UpdateComplaint(ctx context.Context, id string, version int, patch complaint.Patch) (models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.complaints[id]
	if !ok {
		return models.Complaint{}, apperr.NotFoundf("complaint %s not found", id)
	}
	if c.Version != version {
		return models.Complaint{}, apperr.Conflictf("complaint %s was modified concurrently", id)
	}

	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.AssignedToAccountID != nil {
		c.AssignedToAccountID = patch.AssignedToAccountID
	}
	if patch.ResolvedAt != nil {
		c.ResolvedAt = patch.ResolvedAt
	}
	c.Version++
	c.UpdatedAt = s.now()
	s.complaints[id] = c
	return c, nil
}

// ListComplaints returns matching complaints, newest first
func (s *Store) ListComplaints(ctx context.Context, f complaint.Filter) ([]models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Complaint
	for i := len(s.complaintSeq) - 1; i >= 0; i-- {
		c := s.complaints[s.complaintSeq[i]]
		if f.RaisedByAccountID != "" && c.RaisedByAccountID != f.RaisedByAccountID {
			continue
		}
		if f.SupplierOrgID != "" {
			o, ok := s.orders[c.OrderID]
			if !ok || o.SupplierOrgID != f.SupplierOrgID {
				continue
			}
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
