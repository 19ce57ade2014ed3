// Package notify delivers order status notifications over email (SES)
// and SMS (SNS). It subscribes to the in-process event bus and is
// entirely best-effort: a failed delivery is logged and never affects
// the order transition that produced it.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/supplylink/core-service/internal/events"
	"github.com/supplylink/core-service/internal/logging"
	"github.com/supplylink/core-service/internal/models"
)

// AccountDirectory resolves the account behind an order so the
// notifier knows where to send.
type AccountDirectory interface {
	GetAccount(ctx context.Context, id string) (models.Account, error)
}

// Notifier fans order events out to the configured channels. Either
// channel may be nil when its configuration is absent.
type Notifier struct {
	accounts AccountDirectory
	email    *EmailSender
	sms      *SmsSender
}

// NewNotifier creates a notifier and registers it on the bus
func NewNotifier(bus *events.Bus, accounts AccountDirectory, email *EmailSender, sms *SmsSender) *Notifier {
	n := &Notifier{accounts: accounts, email: email, sms: sms}
	bus.Subscribe(n.handle)
	return n
}

func (n *Notifier) handle(ev events.OrderEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// The order creator hears about supplier decisions; the creator's
	// own completion needs no notification.
	if ev.ActorAccountID == ev.CreatedByAccountID {
		return
	}

	acct, err := n.accounts.GetAccount(ctx, ev.CreatedByAccountID)
	if err != nil {
		logging.LogKV("warn", "notification recipient lookup failed", map[string]interface{}{
			"order_id":   ev.OrderID,
			"account_id": ev.CreatedByAccountID,
			"error":      err.Error(),
		})
		return
	}

	subject, line := describe(ev)

	if n.email != nil && acct.Email != "" {
		if err := n.email.SendOrderUpdate(ctx, acct.Email, subject, line, ev); err != nil {
			logging.LogKV("error", "order email failed", map[string]interface{}{
				"order_id": ev.OrderID,
				"error":    err.Error(),
			})
		}
	}
	if n.sms != nil {
		if err := n.sms.SendOrderUpdate(ctx, acct, line); err != nil {
			logging.LogKV("error", "order sms failed", map[string]interface{}{
				"order_id": ev.OrderID,
				"error":    err.Error(),
			})
		}
	}
}

func describe(ev events.OrderEvent) (subject, line string) {
	switch ev.To {
	case models.OrderStatusAccepted:
		subject = "Your order was accepted"
	case models.OrderStatusRejected:
		subject = "Your order was rejected"
	case models.OrderStatusCompleted:
		subject = "Your order was completed"
	default:
		subject = "Your order was updated"
	}
	line = fmt.Sprintf("Order %s is now %s (total %.2f).", ev.OrderID, ev.To, ev.TotalAmount)
	return subject, line
}
