package wallet_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/canteen-engine/canteen"
	store "github.com/warp/canteen-engine/canteen/store"
	"github.com/warp/canteen-engine/wallet"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestEngine(t *testing.T) (*wallet.Engine, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	engine := wallet.NewEngine(mem, canteen.NewStoreNotifier(mem, nil), nil)
	return engine, mem
}

func seedUser(t *testing.T, s canteen.Store, email string, balance int64) {
	t.Helper()
	err := s.SaveUser(context.Background(), canteen.User{
		Email:     email,
		Name:      "Test User",
		Role:      canteen.RoleUser,
		Balance:   canteen.MoneyFromInt(balance),
		Active:    true,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func seedProduct(t *testing.T, s canteen.Store, id string, price int64) {
	t.Helper()
	err := s.SaveProduct(context.Background(), canteen.Product{
		ID:           id,
		Name:         "Item " + id,
		Price:        canteen.MoneyFromInt(price),
		Availability: canteen.Available,
	})
	require.NoError(t, err)
}

func balanceOf(t *testing.T, s canteen.Store, email string) canteen.Money {
	t.Helper()
	user, err := s.GetUser(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user.Balance
}

// =============================================================================
// ORDER PLACEMENT
// =============================================================================

func TestPlaceOrder_DebitsExactTotal(t *testing.T) {
	// GIVEN: A user with balance 100 and products priced 20 and 15
	// WHEN: Ordering 2x20 + 1x15 with free pickup
	// THEN: Total is 55 and the balance drops to exactly 45

	engine, mem := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, mem, "alice@campus.edu", 100)
	seedProduct(t, mem, "samosa", 20)
	seedProduct(t, mem, "juice", 15)

	order, err := engine.PlaceOrder(ctx, wallet.PlaceOrderInput{
		UserEmail: "alice@campus.edu",
		Items: []wallet.ItemInput{
			{ProductID: "samosa", Quantity: 2},
			{ProductID: "juice", Quantity: 1},
		},
		DeliveryOption: canteen.DeliveryPickup,
	})
	require.NoError(t, err)

	assert.True(t, order.Subtotal.Equal(canteen.MoneyFromInt(55)), "subtotal should be 55, got %s", order.Subtotal)
	assert.True(t, order.DeliveryCharge.IsZero(), "pickup carries no charge")
	assert.True(t, order.Total.Equal(canteen.MoneyFromInt(55)))
	assert.Equal(t, canteen.StatusPending, order.Status)
	assert.True(t, balanceOf(t, mem, "alice@campus.edu").Equal(canteen.MoneyFromInt(45)))
}

func TestPlaceOrder_ClassroomDeliveryAddsSurcharge(t *testing.T) {
	// GIVEN: Classroom delivery carries a flat 20 surcharge
	// WHEN: Ordering a 30 item to a classroom
	// THEN: The total is 50 and the classroom is recorded

	engine, mem := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, mem, "alice@campus.edu", 100)
	seedProduct(t, mem, "thali", 30)

	order, err := engine.PlaceOrder(ctx, wallet.PlaceOrderInput{
		UserEmail:      "alice@campus.edu",
		Items:          []wallet.ItemInput{{ProductID: "thali", Quantity: 1}},
		DeliveryOption: canteen.DeliveryClass,
		Classroom:      "B-204",
	})
	require.NoError(t, err)

	assert.True(t, order.Total.Equal(canteen.MoneyFromInt(50)))
	assert.Equal(t, "B-204", order.Classroom)
}

func TestPlaceOrder_PickupDropsClassroom(t *testing.T) {
	// GIVEN: A pickup order that still carries a classroom field
	// WHEN: Placing it
	// THEN: The classroom is not recorded

	engine, mem := newTestEngine(t)
	seedUser(t, mem, "alice@campus.edu", 100)
	seedProduct(t, mem, "thali", 30)

	order, err := engine.PlaceOrder(context.Background(), wallet.PlaceOrderInput{
		UserEmail:      "alice@campus.edu",
		Items:          []wallet.ItemInput{{ProductID: "thali", Quantity: 1}},
		DeliveryOption: canteen.DeliveryPickup,
		Classroom:      "B-204",
	})
	require.NoError(t, err)
	assert.Empty(t, order.Classroom)
}

func TestPlaceOrder_InsufficientBalance_NothingWritten(t *testing.T) {
	// GIVEN: A user with balance 10
	// WHEN: Ordering a 55 total
	// THEN: The call fails with InsufficientBalance and neither the balance
	//       nor the order log changes

	engine, mem := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, mem, "poor@campus.edu", 10)
	seedProduct(t, mem, "samosa", 55)

	_, err := engine.PlaceOrder(ctx, wallet.PlaceOrderInput{
		UserEmail:      "poor@campus.edu",
		Items:          []wallet.ItemInput{{ProductID: "samosa", Quantity: 1}},
		DeliveryOption: canteen.DeliveryPickup,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, canteen.ErrInsufficientBalance)

	var balErr *canteen.InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.True(t, balErr.Required.Equal(canteen.MoneyFromInt(55)))

	assert.True(t, balanceOf(t, mem, "poor@campus.edu").Equal(canteen.MoneyFromInt(10)),
		"failed order must not move money")
	orders, err := mem.ListOrdersByUser(ctx, "poor@campus.edu")
	require.NoError(t, err)
	assert.Empty(t, orders, "failed order must not be recorded")
}

func TestPlaceOrder_UnknownProduct_Rejected(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedUser(t, mem, "alice@campus.edu", 100)

	_, err := engine.PlaceOrder(context.Background(), wallet.PlaceOrderInput{
		UserEmail:      "alice@campus.edu",
		Items:          []wallet.ItemInput{{ProductID: "ghost", Quantity: 1}},
		DeliveryOption: canteen.DeliveryPickup,
	})
	assert.ErrorIs(t, err, canteen.ErrProductNotFound)
	assert.True(t, balanceOf(t, mem, "alice@campus.edu").Equal(canteen.MoneyFromInt(100)))
}

func TestPlaceOrder_InvalidInput_Rejected(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedUser(t, mem, "alice@campus.edu", 100)
	seedProduct(t, mem, "samosa", 20)
	ctx := context.Background()

	_, err := engine.PlaceOrder(ctx, wallet.PlaceOrderInput{
		UserEmail:      "alice@campus.edu",
		Items:          []wallet.ItemInput{},
		DeliveryOption: canteen.DeliveryPickup,
	})
	assert.ErrorIs(t, err, canteen.ErrValidation, "empty items")

	_, err = engine.PlaceOrder(ctx, wallet.PlaceOrderInput{
		UserEmail:      "alice@campus.edu",
		Items:          []wallet.ItemInput{{ProductID: "samosa", Quantity: 0}},
		DeliveryOption: canteen.DeliveryPickup,
	})
	assert.ErrorIs(t, err, canteen.ErrValidation, "zero quantity")

	_, err = engine.PlaceOrder(ctx, wallet.PlaceOrderInput{
		UserEmail:      "alice@campus.edu",
		Items:          []wallet.ItemInput{{ProductID: "samosa", Quantity: 1}},
		DeliveryOption: "DRONE",
	})
	assert.ErrorIs(t, err, canteen.ErrInvalidDeliveryOption)

	_, err = engine.PlaceOrder(ctx, wallet.PlaceOrderInput{
		UserEmail:      "alice@campus.edu",
		Items:          []wallet.ItemInput{{ProductID: "samosa", Quantity: 1}},
		DeliveryOption: canteen.DeliveryPickup,
		MealTiming:     "MIDNIGHT_SNACK",
	})
	assert.ErrorIs(t, err, canteen.ErrInvalidMealTiming)
}

func TestPlaceOrder_ItemsSnapshotSurvivesPriceChange(t *testing.T) {
	// GIVEN: A placed order for a 20 product
	// WHEN: The product price is later changed to 99
	// THEN: The stored order still shows the price paid

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

	seedProduct(t, mem, "samosa", 99)

	stored, err := mem.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Items[0].Price.Equal(canteen.MoneyFromInt(20)))
	assert.True(t, stored.Total.Equal(canteen.MoneyFromInt(20)))
}

// =============================================================================
// CANCELLATION & REFUND
// =============================================================================

func TestCancelOrder_RefundsFullTotal(t *testing.T) {
	// GIVEN: A pending order that cost 55 out of a 100 balance
	// WHEN: Cancelling it
	// THEN: The full total comes back and the order carries the refund stamp

	engine, mem := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, mem, "alice@campus.edu", 100)
	seedProduct(t, mem, "samosa", 55)

	order, err := engine.PlaceOrder(ctx, wallet.PlaceOrderInput{
		UserEmail:      "alice@campus.edu",
		Items:          []wallet.ItemInput{{ProductID: "samosa", Quantity: 1}},
		DeliveryOption: canteen.DeliveryPickup,
	})
	require.NoError(t, err)
	require.True(t, balanceOf(t, mem, "alice@campus.edu").Equal(canteen.MoneyFromInt(45)))

	cancelled, err := engine.CancelOrder(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, canteen.StatusCancelled, cancelled.Status)
	assert.True(t, cancelled.RefundAmount.Equal(canteen.MoneyFromInt(55)))
	assert.False(t, cancelled.CancelledAt.IsZero())
	assert.True(t, balanceOf(t, mem, "alice@campus.edu").Equal(canteen.MoneyFromInt(100)))
}

func TestCancelOrder_SecondCancel_NoDoubleRefund(t *testing.T) {
	// GIVEN: An already-cancelled order
	// WHEN: Cancelling it again
	// THEN: The call fails and the balance does not move a second time

	engine, mem := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, mem, "alice@campus.edu", 100)
	seedProduct(t, mem, "samosa", 55)

	order, err := engine.PlaceOrder(ctx, wallet.PlaceOrderInput{
		UserEmail:      "alice@campus.edu",
		Items:          []wallet.ItemInput{{ProductID: "samosa", Quantity: 1}},
		DeliveryOption: canteen.DeliveryPickup,
	})
	require.NoError(t, err)
	_, err = engine.CancelOrder(ctx, order.ID)
	require.NoError(t, err)

	_, err = engine.CancelOrder(ctx, order.ID)
	assert.ErrorIs(t, err, canteen.ErrOrderNotCancellable)
	assert.True(t, balanceOf(t, mem, "alice@campus.edu").Equal(canteen.MoneyFromInt(100)),
		"refund must fire exactly once")
}

func TestCancelOrder_AcceptedStillCancellable_ReadyIsNot(t *testing.T) {
	// GIVEN: The unified cancellation policy
	// WHEN: Cancelling from accepted and from ready
	// THEN: Accepted refunds; ready is rejected untouched

	engine, mem := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, mem, "alice@campus.edu", 200)
	seedProduct(t, mem, "samosa", 50)

	place := func() string {
		order, err := engine.PlaceOrder(ctx, wallet.PlaceOrderInput{
			UserEmail:      "alice@campus.edu",
			Items:          []wallet.ItemInput{{ProductID: "samosa", Quantity: 1}},
			DeliveryOption: canteen.DeliveryPickup,
		})
		require.NoError(t, err)
		return order.ID
	}

	first := place()
	_, err := engine.UpdateStatus(ctx, first, canteen.StatusAccepted, "")
	require.NoError(t, err)
	_, err = engine.CancelOrder(ctx, first)
	assert.NoError(t, err, "accepted orders are cancellable")

	second := place()
	_, err = engine.UpdateStatus(ctx, second, canteen.StatusAccepted, "")
	require.NoError(t, err)
	_, err = engine.UpdateStatus(ctx, second, canteen.StatusReady, "")
	require.NoError(t, err)
	_, err = engine.CancelOrder(ctx, second)
	assert.ErrorIs(t, err, canteen.ErrOrderNotCancellable, "ready orders are not cancellable")
}

func TestUpdateStatus_FullLifecycle(t *testing.T) {
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
		order, err = engine.UpdateStatus(ctx, order.ID, next, "")
		require.NoError(t, err)
		assert.Equal(t, next, order.Status)
	}

	// Completed is terminal.
	_, err = engine.UpdateStatus(ctx, order.ID, canteen.StatusCancelled, "")
	assert.Error(t, err)
}

func TestUpdateStatus_SkippingStates_Rejected(t *testing.T) {
	// GIVEN: A pending order
	// WHEN: Jumping straight to completed
	// THEN: The transition table rejects it

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

	_, err = engine.UpdateStatus(ctx, order.ID, canteen.StatusCompleted, "")
	require.Error(t, err)
	var transErr *canteen.InvalidTransitionError
	assert.ErrorAs(t, err, &transErr)
	assert.Equal(t, canteen.StatusPending, transErr.From)

	_, err = engine.UpdateStatus(ctx, order.ID, "teleported", "")
	assert.ErrorIs(t, err, canteen.ErrValidation)
}

func TestCancelOrder_WritesNotification(t *testing.T) {
	// GIVEN: A cancellable order
	// WHEN: It is cancelled
	// THEN: A cancellation notification lands after the commit

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
	_, err = engine.CancelOrder(ctx, order.ID)
	require.NoError(t, err)

	notifications, err := mem.ListNotifications(ctx, "alice@campus.edu", 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "order_cancelled", notifications[0].Type)
	assert.Equal(t, order.ID, notifications[0].OrderID)
	assert.Equal(t, canteen.StatusMessages[canteen.StatusCancelled], notifications[0].Message)
}

// =============================================================================
// ADMIN BALANCE ADJUSTMENT
// =============================================================================

func TestAdjustBalance_CreditWritesLedgerRecord(t *testing.T) {
	// GIVEN: A user with balance 100
	// WHEN: An admin credits 30
	// THEN: The balance is 130 and an ADMIN_CREDIT record exists

	engine, mem := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, mem, "alice@campus.edu", 100)

	newBalance, err := engine.AdjustBalance(ctx, "alice@campus.edu", canteen.MoneyFromInt(30), "compensation")
	require.NoError(t, err)
	assert.True(t, newBalance.Equal(canteen.MoneyFromInt(130)))

	adjustments, err := mem.ListAdjustments(ctx, "alice@campus.edu")
	require.NoError(t, err)
	require.Len(t, adjustments, 1)
	assert.Equal(t, canteen.AdjustmentCredit, adjustments[0].Type)
	assert.True(t, adjustments[0].Amount.Equal(canteen.MoneyFromInt(30)))
	assert.Equal(t, "compensation", adjustments[0].Description)
}

func TestAdjustBalance_DebitCannotOverdraw(t *testing.T) {
	engine, mem := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, mem, "alice@campus.edu", 20)

	_, err := engine.AdjustBalance(ctx, "alice@campus.edu", canteen.MoneyFromInt(-50), "")
	assert.ErrorIs(t, err, canteen.ErrInsufficientBalance)
	assert.True(t, balanceOf(t, mem, "alice@campus.edu").Equal(canteen.MoneyFromInt(20)))

	adjustments, err := mem.ListAdjustments(ctx, "alice@campus.edu")
	require.NoError(t, err)
	assert.Empty(t, adjustments, "rejected adjustment must not be recorded")
}

func TestAdjustBalance_ZeroAndUnknownUser(t *testing.T) {
	engine, mem := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, mem, "alice@campus.edu", 20)

	_, err := engine.AdjustBalance(ctx, "alice@campus.edu", canteen.ZeroMoney(), "")
	assert.ErrorIs(t, err, canteen.ErrValidation)

	_, err = engine.AdjustBalance(ctx, "nobody@campus.edu", canteen.MoneyFromInt(10), "")
	assert.ErrorIs(t, err, canteen.ErrUserNotFound)
}
