/*
store.go - Persistence contracts for the canteen document store

PURPOSE:
  Defines the interface between the wallet engine and the database. The
  store holds typed collections (users, products, orders, coupons,
  notifications, adjustments, refund requests) addressed by key, and an
  atomic transaction primitive.

TRANSACTIONAL CONTRACT:
  Every read-check-write sequence that touches shared mutable state
  (balance, coupon used flag, order status) runs inside WithTx. The
  closure re-reads documents through the Store it is handed - never
  through a pre-transaction snapshot - so two concurrent requests cannot
  both pass a stale check. If the closure returns an error, nothing is
  applied.

  Notification writes and ledger-history reads are explicitly OUTSIDE any
  transaction boundary: eventually consistent, best-effort, never able to
  fail a financial operation.

IMPLEMENTATIONS:
  - canteen/store: in-memory (tests, dev mode)
  - store/sqlite:  durable single-node store
  - store/mongo:   hosted document database

SEE ALSO:
  - ../wallet: the engine driving this contract
*/
package canteen

import (
	"context"
	"time"
)

// =============================================================================
// STORE - Typed document collections
// =============================================================================

// Store is the document-store contract. Getters return (nil, nil) when the
// document does not exist; list methods return newest-first unless noted.
type Store interface {
	// Users (keyed by email)
	GetUser(ctx context.Context, email string) (*User, error)
	SaveUser(ctx context.Context, u User) error
	DeleteUser(ctx context.Context, email string) error
	ListUsers(ctx context.Context) ([]User, error)
	ListUsersByRole(ctx context.Context, role Role) ([]User, error)

	// Products (keyed by id/name)
	GetProduct(ctx context.Context, id string) (*Product, error)
	SaveProduct(ctx context.Context, p Product) error
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context) ([]Product, error)

	// Orders (keyed by generated id; never deleted)
	GetOrder(ctx context.Context, id string) (*Order, error)
	SaveOrder(ctx context.Context, o Order) error
	ListOrdersByUser(ctx context.Context, email string) ([]Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)

	// Coupons (keyed by voucher code)
	GetCoupon(ctx context.Context, code string) (*Coupon, error)
	SaveCoupon(ctx context.Context, c Coupon) error
	ListCoupons(ctx context.Context) ([]Coupon, error)
	ListRedeemedCoupons(ctx context.Context, email string) ([]Coupon, error)

	// Notifications (append-only; only Read is flipped)
	SaveNotification(ctx context.Context, n Notification) error
	ListNotifications(ctx context.Context, email string, limit int) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	// Admin adjustments (append-only ledger records)
	SaveAdjustment(ctx context.Context, a Adjustment) error
	ListAdjustments(ctx context.Context, email string) ([]Adjustment, error)

	// Refund requests
	GetRefundRequest(ctx context.Context, id string) (*RefundRequest, error)
	SaveRefundRequest(ctx context.Context, r RefundRequest) error
	ListRefundRequests(ctx context.Context) ([]RefundRequest, error)
}

// OrderFilter narrows ListOrders. Zero values mean "no constraint".
// Day filters cover [Day, Day+24h) in UTC.
type OrderFilter struct {
	Status Status
	Day    time.Time
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// TxStore wraps Store with an atomic transaction primitive.
//
// WithTx executes fn against a transactional view of the store. All reads
// inside fn observe committed state plus fn's own writes; if fn returns an
// error nothing is applied; conflicting transactions abort rather than
// interleave. An abort means "not applied", never partial success.
type TxStore interface {
	Store

	WithTx(ctx context.Context, fn func(Store) error) error
}
