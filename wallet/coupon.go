/*
coupon.go - Coupon issuance and one-shot redemption

PURPOSE:
  A coupon is a single-use voucher for a fixed wallet credit. The
  check-then-act between "not yet used" and "mark used" happens inside the
  same store transaction as the balance credit - this is the primary race
  the engine exists to prevent. Two concurrent redemptions of one code
  cannot both succeed.

EXPIRY:
  Expiry is stored as MM/DD/YYYY and compared against the current UTC date.
  An expired coupon is reported as expired regardless of its used flag; a
  malformed expiry is a hard validation failure.
*/
package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/canteen-engine/canteen"
)

// DefaultCouponExpiryDays applies when issuance omits an expiry.
const DefaultCouponExpiryDays = 7

// =============================================================================
// ISSUANCE
// =============================================================================

// IssueCoupon creates a voucher. Duplicate codes are rejected inside the
// transaction so two concurrent issuances of one code cannot both land.
func (e *Engine) IssueCoupon(ctx context.Context, code string, amount canteen.Money, expiryDays int) (*canteen.Coupon, error) {
	if code == "" {
		return nil, &canteen.ValidationError{Field: "code", Message: "required"}
	}
	if !amount.IsPositive() {
		return nil, &canteen.ValidationError{Field: "amount", Message: "must be positive"}
	}
	if expiryDays <= 0 {
		expiryDays = DefaultCouponExpiryDays
	}

	now := e.now()
	coupon := canteen.Coupon{
		Code:      code,
		Amount:    amount,
		Expiry:    now.AddDate(0, 0, expiryDays).Format(canteen.CouponExpiryFormat),
		CreatedAt: now,
	}

	err := e.Store.WithTx(ctx, func(tx canteen.Store) error {
		existing, err := tx.GetCoupon(ctx, code)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %q", canteen.ErrCouponExists, code)
		}
		return tx.SaveCoupon(ctx, coupon)
	})
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// =============================================================================
// REDEMPTION
// =============================================================================

// RedeemResult reports a successful redemption.
type RedeemResult struct {
	Amount     canteen.Money
	NewBalance canteen.Money
}

// Redeem applies a voucher to a user's wallet. Marking the coupon used and
// crediting the balance commit atomically; the used flag is re-checked
// inside the transaction.
func (e *Engine) Redeem(ctx context.Context, code, email string) (*RedeemResult, error) {
	if code == "" || email == "" {
		return nil, &canteen.ValidationError{Field: "voucher_code", Message: "code and user email required"}
	}

	// Existence and expiry can be validated before entering the
	// transaction; neither is mutable state.
	coupon, err := e.Store.GetCoupon(ctx, code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, canteen.ErrCouponNotFound
	}
	expiresOn, err := coupon.ExpiresOn()
	if err != nil {
		return nil, fmt.Errorf("%w: %q", canteen.ErrCouponExpiryInvalid, coupon.Expiry)
	}
	// Expired wins over already-used: the voucher is dead either way, and
	// expiry does not depend on who got there first.
	today := e.now().Truncate(24 * time.Hour)
	if today.After(expiresOn) {
		return nil, canteen.ErrCouponExpired
	}

	var result RedeemResult
	err = e.Store.WithTx(ctx, func(tx canteen.Store) error {
		c, err := tx.GetCoupon(ctx, code)
		if err != nil {
			return err
		}
		if c == nil {
			return canteen.ErrCouponNotFound
		}
		if c.Used {
			return canteen.ErrCouponAlreadyUsed
		}

		user, err := tx.GetUser(ctx, email)
		if err != nil {
			return err
		}
		if user == nil {
			return canteen.ErrUserNotFound
		}

		now := e.now()
		c.Used = true
		c.UsedBy = email
		c.UsedAt = now
		user.Balance = user.Balance.Add(c.Amount)

		if err := tx.SaveCoupon(ctx, *c); err != nil {
			return err
		}
		if err := tx.SaveUser(ctx, *user); err != nil {
			return err
		}
		result = RedeemResult{Amount: c.Amount, NewBalance: user.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// HISTORY VIEWS - read-only, outside any transaction
// =============================================================================

// CouponHistory returns full issuance history, newest first.
func (e *Engine) CouponHistory(ctx context.Context) ([]canteen.Coupon, error) {
	return e.Store.ListCoupons(ctx)
}

// UserCouponHistory returns a user's redemptions, most recent first.
func (e *Engine) UserCouponHistory(ctx context.Context, email string) ([]canteen.Coupon, error) {
	return e.Store.ListRedeemedCoupons(ctx, email)
}
