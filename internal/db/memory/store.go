// Package memory is an in-process store implementing every component
// store interface behind a single mutex. It backs local development
// (DB_DRIVER=memory) and the service test suites; the Postgres driver
// in internal/db is the production path.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/supplylink/core-service/internal/apperr"
	"github.com/supplylink/core-service/internal/audit"
	"github.com/supplylink/core-service/internal/models"
)

// Store holds all record sets. The single mutex makes every operation
// atomic, which is what gives the compare-and-set and uniqueness
// guarantees their teeth here.
type Store struct {
	mu sync.Mutex

	orgs     map[string]models.Org
	accounts map[string]models.Account
	products map[string]models.Product

	links     map[string]models.Link
	linkOrder []string

	orders   map[string]models.Order
	orderSeq []string

	complaints   map[string]models.Complaint
	complaintSeq []string

	messages []models.Message

	audits []audit.Entry

	lastStamp time.Time
}

// New creates an empty store
func New() *Store {
	return &Store{
		orgs:       make(map[string]models.Org),
		accounts:   make(map[string]models.Account),
		products:   make(map[string]models.Product),
		links:      make(map[string]models.Link),
		orders:     make(map[string]models.Order),
		complaints: make(map[string]models.Complaint),
	}
}

// now returns a strictly increasing timestamp so records created in
// the same tick still sort deterministically.
func (s *Store) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Microsecond)
	}
	s.lastStamp = t
	return t
}

// Health reports the store as always available
func (s *Store) Health(ctx context.Context) error {
	return nil
}

// AddOrg seeds an organization
func (s *Store) AddOrg(o models.Org) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	s.orgs[o.ID] = o
}

// AddAccount seeds an account
func (s *Store) AddAccount(a models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
}

// AddProduct seeds a catalog product
func (s *Store) AddProduct(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// GetOrg resolves one organization
func (s *Store) GetOrg(ctx context.Context, id string) (models.Org, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orgs[id]
	if !ok {
		return models.Org{}, apperr.NotFoundf("organization %s not found", id)
	}
	return o, nil
}

// ListSupplierOrgs returns all active supplier organizations
func (s *Store) ListSupplierOrgs(ctx context.Context) ([]models.Org, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Org
	for _, o := range s.orgs {
		if o.Type == models.OrgTypeSupplier && o.IsActive {
			out = append(out, o)
		}
	}
	return out, nil
}

// GetAccount resolves one account
func (s *Store) GetAccount(ctx context.Context, id string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return models.Account{}, apperr.NotFoundf("account %s not found", id)
	}
	return a, nil
}

// GetProductsForSupplier returns the requested products that belong to
// the supplier, keyed by product id. Missing or foreign products are
// simply absent from the result.
func (s *Store) GetProductsForSupplier(ctx context.Context, supplierOrgID string, productIDs []string) (map[string]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.Product, len(productIDs))
	for _, id := range productIDs {
		p, ok := s.products[id]
		if ok && p.SupplierOrgID == supplierOrgID {
			out[id] = p
		}
	}
	return out, nil
}

// RecordAudit appends an audit entry
func (s *Store) RecordAudit(ctx context.Context, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, entry)
	return nil
}

// AuditEntries returns a copy of the audit log, oldest first
func (s *Store) AuditEntries() []audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Entry, len(s.audits))
	copy(out, s.audits)
	return out
}
