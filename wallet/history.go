/*
history.go - Transaction-ledger projection

The user-facing wallet history is a derived view, reconstructed on every
read from orders + coupons + admin adjustments + the signup welcome bonus.
There is no authoritative "transactions" store to drift out of sync; the
compensating records ARE the ledger.

This is a read-only projection and runs outside any transaction boundary.
*/
package wallet

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/warp/canteen-engine/canteen"
)

// LedgerEntry is one row of a user's wallet history. Amount is signed:
// payments are negative, credits positive.
type LedgerEntry struct {
	ID          string
	Type        string
	Amount      canteen.Money
	Description string
	Timestamp   time.Time
	Status      string
}

// Ledger entry types.
const (
	EntryWelcomeBonus = "WELCOME_BONUS"
	EntryOrder        = "ORDER"
	EntryRefund       = "REFUND"
	EntryCoupon       = "COUPON"
)

// TransactionHistory reconstructs a user's wallet history, newest first.
func (e *Engine) TransactionHistory(ctx context.Context, email string) ([]LedgerEntry, error) {
	user, err := e.Store.GetUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, canteen.ErrUserNotFound
	}

	var entries []LedgerEntry

	if !user.CreatedAt.IsZero() {
		entries = append(entries, LedgerEntry{
			ID:          "welcome_" + email,
			Type:        EntryWelcomeBonus,
			Amount:      canteen.WelcomeBalance,
			Description: "Welcome bonus credit",
			Timestamp:   user.CreatedAt,
			Status:      "completed",
		})
	}

	orders, err := e.Store.ListOrdersByUser(ctx, email)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		entries = append(entries, LedgerEntry{
			ID:          o.ID + "_payment",
			Type:        EntryOrder,
			Amount:      o.Total.Neg(),
			Description: fmt.Sprintf("Payment for Order #%s - %d items", shortID(o.ID), len(o.Items)),
			Timestamp:   o.CreatedAt,
			Status:      string(o.Status),
		})
		if o.Status == canteen.StatusCancelled && o.RefundAmount.IsPositive() {
			entries = append(entries, LedgerEntry{
				ID:          o.ID + "_refund",
				Type:        EntryRefund,
				Amount:      o.RefundAmount,
				Description: fmt.Sprintf("Refund for Order #%s", shortID(o.ID)),
				Timestamp:   o.CancelledAt,
				Status:      "completed",
			})
		}
	}

	coupons, err := e.Store.ListRedeemedCoupons(ctx, email)
	if err != nil {
		return nil, err
	}
	for _, c := range coupons {
		entries = append(entries, LedgerEntry{
			ID:          c.Code,
			Type:        EntryCoupon,
			Amount:      c.Amount,
			Description: "Coupon redeemed: " + c.Code,
			Timestamp:   c.UsedAt,
			Status:      "completed",
		})
	}

	adjustments, err := e.Store.ListAdjustments(ctx, email)
	if err != nil {
		return nil, err
	}
	for _, a := range adjustments {
		entries = append(entries, LedgerEntry{
			ID:          a.ID,
			Type:        a.Type,
			Amount:      a.Amount,
			Description: a.Description,
			Timestamp:   a.Timestamp,
			Status:      "completed",
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
