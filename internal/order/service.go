// Package order owns order creation and status transitions. Creation
// requires an APPROVED link, re-checked inside the insert transaction;
// transitions are compare-and-set on the order version.
package order

import (
	"context"
	"errors"
	"time"

	"github.com/supplylink/core-service/internal/apperr"
	"github.com/supplylink/core-service/internal/audit"
	"github.com/supplylink/core-service/internal/authz"
	"github.com/supplylink/core-service/internal/events"
	"github.com/supplylink/core-service/internal/models"
)

// Filter narrows order listings. Exactly one of SupplierOrgID /
// ConsumerOrgID is set by the service based on the actor's side.
type Filter struct {
	SupplierOrgID string
	ConsumerOrgID string
	Status        models.OrderStatus
}

// Store persists orders. CreateOrder must re-verify, inside the same
// atomic unit as the insert, both the APPROVED link for the order's
// org pair (Precondition when gone) and the product snapshot the items
// were priced against (Validation when a product vanished or went
// inactive, Conflict when stock no longer covers the quantities);
// UpdateOrderStatus must compare-and-set on version.
type Store interface {
	CreateOrder(ctx context.Context, o models.Order) (models.Order, error)
	GetOrder(ctx context.Context, id string) (models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, version int, to models.OrderStatus) (models.Order, error)
	ListOrders(ctx context.Context, f Filter) ([]models.Order, error)
}

// ProductReader is the read-only Catalog collaborator. Returned
// products are keyed by id and restricted to the supplier org.
type ProductReader interface {
	GetProductsForSupplier(ctx context.Context, supplierOrgID string, productIDs []string) (map[string]models.Product, error)
}

// LinkChecker exposes the Link Manager's approved-link lookup
type LinkChecker interface {
	ApprovedLink(ctx context.Context, supplierOrgID, consumerOrgID string) (models.Link, error)
}

// Service is the Order Engine
type Service struct {
	store    Store
	products ProductReader
	links    LinkChecker
	bus      *events.Bus
	audit    audit.Recorder
}

// NewService creates an order service
func NewService(store Store, products ProductReader, links LinkChecker, bus *events.Bus, rec audit.Recorder) *Service {
	return &Service{store: store, products: products, links: links, bus: bus, audit: rec}
}

// Create places a new PENDING order for the actor's consumer org
// against the supplier's catalog. Unit prices are snapshotted into the
// items; the total is derived from the snapshots and fixed at creation.
func (s *Service) Create(ctx context.Context, actor models.Principal, supplierOrgID string, items []models.OrderItemInput) (models.Order, error) {
	if err := authz.Require(actor, authz.ActionOrderCreate); err != nil {
		return models.Order{}, err
	}
	if len(items) == 0 {
		return models.Order{}, apperr.Validationf("order must contain at least one item")
	}

	// Read-time link check; the store repeats it at write time inside
	// the insert transaction to close the check/use gap.
	if _, err := s.links.ApprovedLink(ctx, supplierOrgID, actor.OrgID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.Order{}, apperr.Preconditionf("no approved link with supplier %s", supplierOrgID)
		}
		return models.Order{}, err
	}

	productIDs := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return models.Order{}, apperr.Validationf("quantity must be positive for product %s", item.ProductID)
		}
		if seen[item.ProductID] {
			return models.Order{}, apperr.Validationf("product %s appears more than once", item.ProductID)
		}
		seen[item.ProductID] = true
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := s.products.GetProductsForSupplier(ctx, supplierOrgID, productIDs)
	if err != nil {
		return models.Order{}, err
	}

	var total float64
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		p, ok := products[item.ProductID]
		if !ok {
			return models.Order{}, apperr.Validationf("product %s not found or does not belong to this supplier", item.ProductID)
		}
		if !p.IsActive {
			return models.Order{}, apperr.Validationf("product %s is not available", p.Name)
		}
		if item.Quantity < p.MinOrderQuantity {
			return models.Order{}, apperr.Validationf("product %s requires minimum order quantity of %d", p.Name, p.MinOrderQuantity)
		}
		if item.Quantity > p.StockQuantity {
			return models.Order{}, apperr.Validationf("product %s has insufficient stock (available: %d)", p.Name, p.StockQuantity)
		}

		subtotal := float64(item.Quantity) * p.Price
		total += subtotal
		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
			Subtotal:  subtotal,
		})
	}

	created, err := s.store.CreateOrder(ctx, models.Order{
		SupplierOrgID:      supplierOrgID,
		ConsumerOrgID:      actor.OrgID,
		CreatedByAccountID: actor.AccountID,
		Status:             models.OrderStatusPending,
		TotalAmount:        total,
		Items:              orderItems,
	})
	if err != nil {
		return models.Order{}, err
	}

	audit.Record(ctx, s.audit, audit.Entry{
		ActorAccountID: actor.AccountID,
		Action:         "ORDER_CREATED",
		EntityType:     audit.EntityOrder,
		EntityID:       created.ID,
	})
	return created, nil
}

// UpdateStatus applies one of the legal transitions:
// PENDING→ACCEPTED and PENDING→REJECTED (supplier OWNER/MANAGER),
// ACCEPTED→COMPLETED (either org's authorized staff). Successful
// transitions are published on the event bus.
func (s *Service) UpdateStatus(ctx context.Context, actor models.Principal, orderID string, to models.OrderStatus) (models.Order, error) {
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if o.SupplierOrgID != actor.OrgID && o.ConsumerOrgID != actor.OrgID {
		return models.Order{}, apperr.NotFoundf("order %s not found", orderID)
	}

	switch to {
	case models.OrderStatusAccepted, models.OrderStatusRejected:
		if err := authz.Require(actor, authz.ActionOrderDecide); err != nil {
			return models.Order{}, err
		}
		if actor.OrgID != o.SupplierOrgID {
			return models.Order{}, apperr.Forbiddenf("only the supplier may accept or reject an order")
		}
		if o.Status != models.OrderStatusPending {
			return models.Order{}, apperr.Transitionf("cannot move order from %s to %s", o.Status, to)
		}
	case models.OrderStatusCompleted:
		if err := authz.Require(actor, authz.ActionOrderComplete); err != nil {
			return models.Order{}, err
		}
		if o.Status != models.OrderStatusAccepted {
			return models.Order{}, apperr.Transitionf("cannot move order from %s to %s", o.Status, to)
		}
	default:
		return models.Order{}, apperr.Validationf("invalid target status %q", to)
	}

	updated, err := s.store.UpdateOrderStatus(ctx, orderID, o.Version, to)
	if err != nil {
		return models.Order{}, err
	}

	audit.Record(ctx, s.audit, audit.Entry{
		ActorAccountID: actor.AccountID,
		Action:         "ORDER_" + string(o.Status) + "_TO_" + string(to),
		EntityType:     audit.EntityOrder,
		EntityID:       updated.ID,
	})
	if s.bus != nil {
		s.bus.Publish(events.OrderEvent{
			OrderID:            updated.ID,
			SupplierOrgID:      updated.SupplierOrgID,
			ConsumerOrgID:      updated.ConsumerOrgID,
			CreatedByAccountID: updated.CreatedByAccountID,
			ActorAccountID:     actor.AccountID,
			From:               o.Status,
			To:                 to,
			TotalAmount:        updated.TotalAmount,
			OccurredAt:         time.Now().UTC(),
		})
	}
	return updated, nil
}

// Get returns one order, restricted to the two orgs on it. Probes from
// any other org see NotFound, never Forbidden.
func (s *Service) Get(ctx context.Context, actor models.Principal, orderID string) (models.Order, error) {
	if err := authz.Require(actor, authz.ActionOrderView); err != nil {
		return models.Order{}, err
	}
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if o.SupplierOrgID != actor.OrgID && o.ConsumerOrgID != actor.OrgID {
		return models.Order{}, apperr.NotFoundf("order %s not found", orderID)
	}
	return o, nil
}

// List returns the actor's side of the order book, optionally filtered
// by status. Supplier staff see all their org's orders; consumers see
// only their own org's.
func (s *Service) List(ctx context.Context, actor models.Principal, status models.OrderStatus) ([]models.Order, error) {
	if err := authz.Require(actor, authz.ActionOrderView); err != nil {
		return nil, err
	}
	if status != "" && !status.IsValid() {
		return nil, apperr.Validationf("invalid status filter %q", status)
	}

	f := Filter{Status: status}
	if actor.Role.IsSupplierStaff() {
		f.SupplierOrgID = actor.OrgID
	} else {
		f.ConsumerOrgID = actor.OrgID
	}
	return s.store.ListOrders(ctx, f)
}
