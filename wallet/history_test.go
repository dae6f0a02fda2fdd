package wallet_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/canteen-engine/canteen"
	"github.com/warp/canteen-engine/wallet"
)

func TestTransactionHistory_ReconstructsAllEntryKinds(t *testing.T) {
	// GIVEN: A user who signed up, ordered, cancelled, redeemed a coupon,
	//        and received an admin credit
	// WHEN: Reconstructing the ledger
	// THEN: Every event appears with the right sign, newest first

	engine, mem := newTestEngine(t)
	ctx := context.Background()

	base := time.Date(2026, time.May, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	engine.Now = func() time.Time { return clock }

	require.NoError(t, mem.SaveUser(ctx, canteen.User{
		Email:     "alice@campus.edu",
		Name:      "Alice",
		Role:      canteen.RoleUser,
		Balance:   canteen.WelcomeBalance,
		Active:    true,
		CreatedAt: base,
	}))
	seedProduct(t, mem, "samosa", 20)

	clock = base.Add(1 * time.Hour)
	order, err := engine.PlaceOrder(ctx, wallet.PlaceOrderInput{
		UserEmail:      "alice@campus.edu",
		Items:          []wallet.ItemInput{{ProductID: "samosa", Quantity: 1}},
		DeliveryOption: canteen.DeliveryPickup,
	})
	require.NoError(t, err)

	clock = base.Add(2 * time.Hour)
	_, err = engine.CancelOrder(ctx, order.ID)
	require.NoError(t, err)

	clock = base.Add(3 * time.Hour)
	_, err = engine.IssueCoupon(ctx, "TREAT", canteen.MoneyFromInt(25), 7)
	require.NoError(t, err)
	_, err = engine.Redeem(ctx, "TREAT", "alice@campus.edu")
	require.NoError(t, err)

	clock = base.Add(4 * time.Hour)
	_, err = engine.AdjustBalance(ctx, "alice@campus.edu", canteen.MoneyFromInt(30), "")
	require.NoError(t, err)

	entries, err := engine.TransactionHistory(ctx, "alice@campus.edu")
	require.NoError(t, err)
	require.Len(t, entries, 5)

	// Newest first.
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i-1].Timestamp.Before(entries[i].Timestamp),
			"entries must be sorted newest first")
	}

	types := make(map[string]wallet.LedgerEntry)
	for _, e := range entries {
		types[e.Type] = e
	}

	welcome := types[wallet.EntryWelcomeBonus]
	assert.True(t, welcome.Amount.Equal(canteen.WelcomeBalance))

	payment := types[wallet.EntryOrder]
	assert.True(t, payment.Amount.Equal(canteen.MoneyFromInt(-20)), "payments are negative")

	refund := types[wallet.EntryRefund]
	assert.True(t, refund.Amount.Equal(canteen.MoneyFromInt(20)))

	coupon := types[wallet.EntryCoupon]
	assert.True(t, coupon.Amount.Equal(canteen.MoneyFromInt(25)))

	credit := types[canteen.AdjustmentCredit]
	assert.True(t, credit.Amount.Equal(canteen.MoneyFromInt(30)))
}

func TestTransactionHistory_UnknownUser(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.TransactionHistory(context.Background(), "ghost@campus.edu")
	assert.ErrorIs(t, err, canteen.ErrUserNotFound)
}

func TestTransactionHistory_NoRefundEntryWithoutCancellation(t *testing.T) {
	// GIVEN: A completed (never cancelled) order
	// WHEN: Reconstructing the ledger
	// THEN: There is a payment entry but no refund entry

	engine, mem := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, mem, "alice@campus.edu", 100)
	seedProduct(t, mem, "samosa", 20)

	order, err := engine.PlaceOrder(ctx, wallet.PlaceOrderInput{
		UserEmail:      "alice@campus.edu",
		Items:          []wallet.ItemInput{{ProductID: "samosa", Quantity: 1}},
		DeliveryOption: canteen.DeliveryPickup,
	})
	require.NoError(t, err)
	for _, next := range []canteen.Status{canteen.StatusAccepted, canteen.StatusReady, canteen.StatusCompleted} {
		_, err = engine.UpdateStatus(ctx, order.ID, next, "")
		require.NoError(t, err)
	}

	entries, err := engine.TransactionHistory(ctx, "alice@campus.edu")
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, wallet.EntryRefund, e.Type)
	}
}
