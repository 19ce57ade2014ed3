// Package events carries order lifecycle transitions to interested
// collaborators (notifications, future fan-out layers) as domain
// events rather than synchronous callbacks.
package events

import (
	"sync"
	"time"

	"github.com/supplylink/core-service/internal/models"
)

// OrderEvent describes one successful order status transition
type OrderEvent struct {
	OrderID            string             `json:"order_id"`
	SupplierOrgID      string             `json:"supplier_org_id"`
	ConsumerOrgID      string             `json:"consumer_org_id"`
	CreatedByAccountID string             `json:"created_by_account_id"`
	ActorAccountID     string             `json:"actor_account_id"`
	From               models.OrderStatus `json:"from"`
	To                 models.OrderStatus `json:"to"`
	TotalAmount        float64            `json:"total_amount"`
	OccurredAt         time.Time          `json:"occurred_at"`
}

// Bus is a minimal in-process fan-out. Subscribers run on their own
// goroutine so a slow observer never blocks the command path.
type Bus struct {
	mu   sync.RWMutex
	subs []func(OrderEvent)
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all future order events
func (b *Bus) Subscribe(fn func(OrderEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

// Publish delivers the event to every subscriber
func (b *Bus) Publish(ev OrderEvent) {
	b.mu.RLock()
	subs := make([]func(OrderEvent), len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, fn := range subs {
		go fn(ev)
	}
}
