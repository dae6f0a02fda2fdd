package wallet_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/canteen-engine/canteen"
)

// =============================================================================
// ISSUANCE
// =============================================================================

func TestIssueCoupon_DefaultExpiry(t *testing.T) {
	// GIVEN: Issuance without an explicit expiry
	// WHEN: Creating the voucher
	// THEN: It expires 7 days out, stored as MM/DD/YYYY

	engine, _ := newTestEngine(t)
	engine.Now = func() time.Time {
		return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	}

	coupon, err := engine.IssueCoupon(context.Background(), "WELCOME10", canteen.MoneyFromInt(10), 0)
	require.NoError(t, err)
	assert.Equal(t, "03/08/2026", coupon.Expiry)
	assert.False(t, coupon.Used)
}

func TestIssueCoupon_DuplicateCode_Rejected(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.IssueCoupon(ctx, "ONCE", canteen.MoneyFromInt(10), 7)
	require.NoError(t, err)
	_, err = engine.IssueCoupon(ctx, "ONCE", canteen.MoneyFromInt(25), 7)
	assert.ErrorIs(t, err, canteen.ErrCouponExists)
}

func TestIssueCoupon_InvalidInput(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.IssueCoupon(ctx, "", canteen.MoneyFromInt(10), 7)
	assert.ErrorIs(t, err, canteen.ErrValidation)
	_, err = engine.IssueCoupon(ctx, "FREE", canteen.ZeroMoney(), 7)
	assert.ErrorIs(t, err, canteen.ErrValidation)
}

// =============================================================================
// REDEMPTION
// =============================================================================

func TestRedeem_CreditsWalletOnce(t *testing.T) {
	// GIVEN: A user with balance 50 and a 25 voucher
	// WHEN: Redeeming it, then redeeming it again
	// THEN: First succeeds with balance 75; second reports already used

	engine, mem := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, mem, "alice@campus.edu", 50)
	_, err := engine.IssueCoupon(ctx, "TREAT25", canteen.MoneyFromInt(25), 7)
	require.NoError(t, err)

	result, err := engine.Redeem(ctx, "TREAT25", "alice@campus.edu")
	require.NoError(t, err)
	assert.True(t, result.Amount.Equal(canteen.MoneyFromInt(25)))
	assert.True(t, result.NewBalance.Equal(canteen.MoneyFromInt(75)))

	coupon, err := mem.GetCoupon(ctx, "TREAT25")
	require.NoError(t, err)
	assert.True(t, coupon.Used)
	assert.Equal(t, "alice@campus.edu", coupon.UsedBy)

	_, err = engine.Redeem(ctx, "TREAT25", "alice@campus.edu")
	assert.ErrorIs(t, err, canteen.ErrCouponAlreadyUsed)
	assert.True(t, balanceOf(t, mem, "alice@campus.edu").Equal(canteen.MoneyFromInt(75)))
}

func TestRedeem_UnknownCode(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedUser(t, mem, "alice@campus.edu", 50)

	_, err := engine.Redeem(context.Background(), "NOPE", "alice@campus.edu")
	assert.ErrorIs(t, err, canteen.ErrCouponNotFound)
}

func TestRedeem_ExpiredWinsOverUsed(t *testing.T) {
	// GIVEN: A coupon that is both expired and already used
	// WHEN: Redeeming it
	// THEN: It reports expired - the death by calendar does not depend on
	//       who got there first

	engine, mem := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, mem, "alice@campus.edu", 50)
	require.NoError(t, mem.SaveCoupon(ctx, canteen.Coupon{
		Code:      "STALE",
		Amount:    canteen.MoneyFromInt(25),
		Expiry:    "01/01/2020",
		Used:      true,
		UsedBy:    "bob@campus.edu",
		CreatedAt: time.Now().UTC(),
	}))

	_, err := engine.Redeem(ctx, "STALE", "alice@campus.edu")
	assert.ErrorIs(t, err, canteen.ErrCouponExpired)
}

func TestRedeem_ExpiryDayItselfStillValid(t *testing.T) {
	// GIVEN: A coupon expiring today
	// WHEN: Redeeming it on the expiry date
	// THEN: It still works; only the day after is too late

	engine, mem := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, mem, "alice@campus.edu", 50)
	engine.Now = func() time.Time {
		return time.Date(2026, time.March, 8, 23, 0, 0, 0, time.UTC)
	}
	require.NoError(t, mem.SaveCoupon(ctx, canteen.Coupon{
		Code:      "LASTDAY",
		Amount:    canteen.MoneyFromInt(5),
		Expiry:    "03/08/2026",
		CreatedAt: time.Now().UTC(),
	}))

	_, err := engine.Redeem(ctx, "LASTDAY", "alice@campus.edu")
	assert.NoError(t, err)
}

func TestRedeem_MalformedExpiry(t *testing.T) {
	engine, mem := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, mem, "alice@campus.edu", 50)
	require.NoError(t, mem.SaveCoupon(ctx, canteen.Coupon{
		Code:      "BROKEN",
		Amount:    canteen.MoneyFromInt(5),
		Expiry:    "next tuesday",
		CreatedAt: time.Now().UTC(),
	}))

	_, err := engine.Redeem(ctx, "BROKEN", "alice@campus.edu")
	assert.ErrorIs(t, err, canteen.ErrCouponExpiryInvalid)
}

func TestRedeem_ConcurrentRedemptions_ExactlyOneSucceeds(t *testing.T) {
	// GIVEN: One voucher and ten users racing to redeem it
	// WHEN: All redemptions run concurrently
	// THEN: Exactly one succeeds and exactly one wallet is credited

	engine, mem := newTestEngine(t)
	ctx := context.Background()
	_, err := engine.IssueCoupon(ctx, "GOLDRUSH", canteen.MoneyFromInt(25), 7)
	require.NoError(t, err)

	emails := make([]string, 10)
	for i := range emails {
		emails[i] = string(rune('a'+i)) + "@campus.edu"
		seedUser(t, mem, emails[i], 100)
	}

	var wg sync.WaitGroup
	results := make([]error, len(emails))
	for i, email := range emails {
		wg.Add(1)
		go func(i int, email string) {
			defer wg.Done()
			_, results[i] = engine.Redeem(ctx, "GOLDRUSH", email)
		}(i, email)
	}
	wg.Wait()

	succeeded := 0
	credited := 0
	for i, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, canteen.ErrCouponAlreadyUsed)
		}
		if balanceOf(t, mem, emails[i]).Equal(canteen.MoneyFromInt(125)) {
			credited++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one redemption may succeed")
	assert.Equal(t, 1, credited, "exactly one wallet may be credited")
}
