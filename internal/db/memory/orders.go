package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/supplylink/core-service/internal/apperr"
	"github.com/supplylink/core-service/internal/models"
	"github.com/supplylink/core-service/internal/order"
)

// CreateOrder inserts the order and its items. The approved-link
// precondition and the product snapshot are re-checked under the same
// lock as the insert, the memory equivalent of the Postgres driver's
// transactional re-check.
func (s *Store) CreateOrder(ctx context.Context, o models.Order) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	approved := false
	for _, l := range s.links {
		if l.SupplierOrgID == o.SupplierOrgID && l.ConsumerOrgID == o.ConsumerOrgID && l.Status == models.LinkStatusApproved {
			approved = true
			break
		}
	}
	if !approved {
		return models.Order{}, apperr.Preconditionf("no approved link between %s and %s", o.ConsumerOrgID, o.SupplierOrgID)
	}

	// Quantities are aggregated per product so repeated lines cannot
	// sidestep the stock ceiling.
	need := make(map[string]int, len(o.Items))
	for _, item := range o.Items {
		need[item.ProductID] += item.Quantity
	}
	for productID, qty := range need {
		p, ok := s.products[productID]
		if !ok || p.SupplierOrgID != o.SupplierOrgID {
			return models.Order{}, apperr.Validationf("product %s not found for supplier %s", productID, o.SupplierOrgID)
		}
		if !p.IsActive {
			return models.Order{}, apperr.Validationf("product %s is no longer available", productID)
		}
		if qty < p.MinOrderQuantity {
			return models.Order{}, apperr.Validationf("product %s requires minimum order quantity of %d", productID, p.MinOrderQuantity)
		}
		if qty > p.StockQuantity {
			return models.Order{}, apperr.Conflictf("product %s stock changed (available: %d)", productID, p.StockQuantity)
		}
	}

	now := s.now()
	o.ID = uuid.NewString()
	o.Version = 1
	o.CreatedAt = now
	o.UpdatedAt = now

	items := make([]models.OrderItem, len(o.Items))
	copy(items, o.Items)
	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].OrderID = o.ID
	}
	o.Items = items

	s.orders[o.ID] = o
	s.orderSeq = append(s.orderSeq, o.ID)
	return cloneOrder(o), nil
}

// GetOrder returns one order with its items
func (s *Store) GetOrder(ctx context.Context, id string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, apperr.NotFoundf("order %s not found", id)
	}
	return cloneOrder(o), nil
}

// UpdateOrderStatus applies a compare-and-set transition on version
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, version int, to models.OrderStatus) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, apperr.NotFoundf("order %s not found", id)
	}
	if o.Version != version {
		return models.Order{}, apperr.Conflictf("order %s was modified concurrently", id)
	}

	o.Status = to
	o.Version++
	o.UpdatedAt = s.now()
	s.orders[id] = o
	return cloneOrder(o), nil
}

// ListOrders returns matching orders, newest first
func (s *Store) ListOrders(ctx context.Context, f order.Filter) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Order
	for i := len(s.orderSeq) - 1; i >= 0; i-- {
		o := s.orders[s.orderSeq[i]]
		if f.SupplierOrgID != "" && o.SupplierOrgID != f.SupplierOrgID {
			continue
		}
		if f.ConsumerOrgID != "" && o.ConsumerOrgID != f.ConsumerOrgID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	return out, nil
}

func cloneOrder(o models.Order) models.Order {
	items := make([]models.OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}
