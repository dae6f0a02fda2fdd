/*
notify.go - Best-effort notification sink

Notifications are a fire-and-forget record of user-facing events. They are
written AFTER the financial transaction commits, outside any transaction
boundary; a failed notification is logged and swallowed, never rolled into
the financial operation's result.
*/
package canteen

import (
	"context"
	"log/slog"
	"time"
)

// NotificationLimit is the default cap on notifications returned per user.
const NotificationLimit = 50

// Notification type tags.
const (
	NotifyOrderReady     = "order_ready"
	NotifyOrderCompleted = "order_completed"
	NotifyOrderCancelled = "order_cancelled"
	NotifyRefund         = "refund_processed"
)

// StatusMessages maps an order status to the user-facing message sent when
// an order enters that status. Statuses without an entry are silent.
var StatusMessages = map[Status]string{
	StatusReady:     "Your order is ready for pickup! 🍽️",
	StatusCompleted: "Your order has been completed. Thank you for ordering from us! 🤗",
	StatusCancelled: "Your order has been cancelled and refunded. 💰",
}

// Notifier records a user-facing event. Implementations must be safe to
// call concurrently.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// StoreNotifier persists notifications through a Store, logging failures.
type StoreNotifier struct {
	Store Store
	Log   *slog.Logger
}

func NewStoreNotifier(store Store, log *slog.Logger) *StoreNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &StoreNotifier{Store: store, Log: log}
}

func (sn *StoreNotifier) Notify(ctx context.Context, n Notification) error {
	if n.ID == "" {
		n.ID = NewID()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}
	if err := sn.Store.SaveNotification(ctx, n); err != nil {
		sn.Log.Error("notification write failed",
			"user", n.UserEmail, "type", n.Type, "error", err)
		return err
	}
	return nil
}
