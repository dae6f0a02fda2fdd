/*
Package wallet implements the transactional wallet and order-lifecycle
engine.

PURPOSE:
  Every operation that touches a user's prepaid balance - order placement,
  cancellation, status-driven refunds, coupon redemption, admin adjustment -
  runs here, bundled with the domain record that causes the balance change
  inside one atomic store transaction. A crash mid-operation can never leave
  "money moved but order not recorded" or the reverse.

CRITICAL INVARIANTS:
  1. Debit/credit are never exposed directly; only domain operations move money
  2. Every read-check-write re-reads documents INSIDE the transaction
  3. A transaction abort means "not applied", never partial success
  4. Refund-on-cancel fires exactly once, gated by the status transition table
  5. Notifications happen after commit, best-effort, and never fail the
     financial operation

SEE ALSO:
  - coupon.go: coupon issuance and redemption
  - history.go: transaction-ledger projection
  - ../canteen/store.go: the transactional store contract
*/
package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/warp/canteen-engine/canteen"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine executes all balance-touching operations against a TxStore.
type Engine struct {
	Store    canteen.TxStore
	Notifier canteen.Notifier
	Log      *slog.Logger

	// Now is injectable for tests; defaults to time.Now. All engine
	// timestamps are UTC.
	Now func() time.Time
}

func NewEngine(store canteen.TxStore, notifier canteen.Notifier, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{Store: store, Notifier: notifier, Log: log, Now: time.Now}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

// notify records a user-facing event after a commit. Failures are logged
// and swallowed; they must never surface to the financial operation.
func (e *Engine) notify(ctx context.Context, n canteen.Notification) {
	if e.Notifier == nil {
		return
	}
	if err := e.Notifier.Notify(ctx, n); err != nil {
		e.Log.Error("notification failed", "user", n.UserEmail, "type", n.Type, "error", err)
	}
}

// =============================================================================
// ORDER PLACEMENT
// =============================================================================

// ItemInput references a product by id with a quantity; price and name are
// looked up server-side at order time, never trusted from the client.
type ItemInput struct {
	ProductID string
	Quantity  int
}

// PlaceOrderInput carries everything needed to place an order.
type PlaceOrderInput struct {
	UserEmail      string
	Items          []ItemInput
	DeliveryOption string
	Classroom      string
	ScheduledTime  string
	MealTiming     string
}

// PlaceOrder debits the wallet and creates the order in one atomic
// transaction. Product prices are re-fetched inside the transaction, item
// data is snapshotted into the order, and an insufficient balance leaves
// the store untouched.
func (e *Engine) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*canteen.Order, error) {
	if in.UserEmail == "" {
		return nil, &canteen.ValidationError{Field: "user_email", Message: "required"}
	}
	if len(in.Items) == 0 {
		return nil, &canteen.ValidationError{Field: "items", Message: "at least one item required"}
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, &canteen.ValidationError{Field: "items", Message: "quantity must be positive"}
		}
	}

	deliveryCharge, err := canteen.DeliveryCharge(in.DeliveryOption)
	if err != nil {
		return nil, err
	}
	slot, err := canteen.MealSlotFor(in.MealTiming)
	if err != nil {
		return nil, err
	}

	// Classroom only applies to classroom delivery.
	classroom := ""
	if in.DeliveryOption == canteen.DeliveryClass {
		classroom = in.Classroom
	}

	var order *canteen.Order
	err = e.Store.WithTx(ctx, func(tx canteen.Store) error {
		user, err := tx.GetUser(ctx, in.UserEmail)
		if err != nil {
			return err
		}
		if user == nil {
			return canteen.ErrUserNotFound
		}

		subtotal := canteen.ZeroMoney()
		items := make([]canteen.OrderItem, 0, len(in.Items))
		for _, item := range in.Items {
			product, err := tx.GetProduct(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: %q", canteen.ErrProductNotFound, item.ProductID)
			}
			snapshot := canteen.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  item.Quantity,
				Category:  product.Category,
				ImageURL:  product.ImageURL,
			}
			items = append(items, snapshot)
			subtotal = subtotal.Add(snapshot.Subtotal())
		}

		total := subtotal.Add(deliveryCharge)
		if user.Balance.LessThan(total) {
			return &canteen.InsufficientBalanceError{
				UserEmail: user.Email,
				Balance:   user.Balance,
				Required:  total,
			}
		}

		now := e.now()
		o := canteen.Order{
			ID:             canteen.NewID(),
			UserEmail:      user.Email,
			Items:          items,
			Subtotal:       subtotal,
			DeliveryCharge: deliveryCharge,
			Total:          total,
			Status:         canteen.StatusPending,
			DeliveryOption: in.DeliveryOption,
			Classroom:      classroom,
			ScheduledTime:  in.ScheduledTime,
			MealTiming:     in.MealTiming,
			TimingSlot:     slot,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		user.Balance = user.Balance.Sub(total)
		if err := tx.SaveUser(ctx, *user); err != nil {
			return err
		}
		if err := tx.SaveOrder(ctx, o); err != nil {
			return err
		}
		order = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// =============================================================================
// CANCELLATION & STATUS LIFECYCLE
// =============================================================================

// CancelOrder cancels an order and refunds its full total. Allowed only
// while the order is still cancellable (pending or accepted); a second
// cancel fails without touching the balance.
func (e *Engine) CancelOrder(ctx context.Context, orderID string) (*canteen.Order, error) {
	order, err := e.transition(ctx, orderID, canteen.StatusCancelled, "")
	if err != nil {
		return nil, err
	}
	e.notifyStatus(ctx, order)
	return order, nil
}

// UpdateStatus moves an order along the lifecycle state machine. A
// transition into cancelled performs the refund inside the same
// transaction; transitions into ready, completed or cancelled enqueue a
// best-effort notification after commit.
func (e *Engine) UpdateStatus(ctx context.Context, orderID string, next canteen.Status, reason string) (*canteen.Order, error) {
	if _, ok := canteen.ParseStatus(string(next)); !ok {
		return nil, &canteen.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", next)}
	}
	order, err := e.transition(ctx, orderID, next, reason)
	if err != nil {
		return nil, err
	}
	e.notifyStatus(ctx, order)
	return order, nil
}

// transition applies one status change atomically, refunding on the edge
// into cancelled. The order and user are re-read inside the transaction to
// avoid racing a concurrent mutation.
func (e *Engine) transition(ctx context.Context, orderID string, next canteen.Status, reason string) (*canteen.Order, error) {
	var updated *canteen.Order
	err := e.Store.WithTx(ctx, func(tx canteen.Store) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return canteen.ErrOrderNotFound
		}
		if !canteen.CanTransition(order.Status, next) {
			if next == canteen.StatusCancelled {
				return fmt.Errorf("%w: status is %s", canteen.ErrOrderNotCancellable, order.Status)
			}
			return &canteen.InvalidTransitionError{OrderID: orderID, From: order.Status, To: next}
		}

		now := e.now()
		order.Status = next
		order.StatusReason = reason
		order.UpdatedAt = now

		if next == canteen.StatusCancelled {
			user, err := tx.GetUser(ctx, order.UserEmail)
			if err != nil {
				return err
			}
			if user == nil {
				return canteen.ErrUserNotFound
			}
			order.RefundAmount = order.Total
			order.CancelledAt = now
			user.Balance = user.Balance.Add(order.Total)
			if err := tx.SaveUser(ctx, *user); err != nil {
				return err
			}
		}

		if err := tx.SaveOrder(ctx, *order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (e *Engine) notifyStatus(ctx context.Context, order *canteen.Order) {
	message, ok := canteen.StatusMessages[order.Status]
	if !ok {
		return
	}
	e.notify(ctx, canteen.Notification{
		UserEmail: order.UserEmail,
		Type:      "order_" + string(order.Status),
		Message:   message,
		OrderID:   order.ID,
		Timestamp: e.now(),
	})
}

// =============================================================================
// ADMIN BALANCE ADJUSTMENT
// =============================================================================

// AdjustBalance adds a signed amount to a user's balance and appends an
// explicit Adjustment ledger record in the same transaction. A debit that
// would overdraw the wallet is rejected.
func (e *Engine) AdjustBalance(ctx context.Context, email string, amount canteen.Money, description string) (canteen.Money, error) {
	if amount.IsZero() {
		return canteen.ZeroMoney(), &canteen.ValidationError{Field: "amount", Message: "must be non-zero"}
	}

	var newBalance canteen.Money
	err := e.Store.WithTx(ctx, func(tx canteen.Store) error {
		user, err := tx.GetUser(ctx, email)
		if err != nil {
			return err
		}
		if user == nil {
			return canteen.ErrUserNotFound
		}

		balance := user.Balance.Add(amount)
		if balance.IsNegative() {
			return &canteen.InsufficientBalanceError{
				UserEmail: email,
				Balance:   user.Balance,
				Required:  amount.Neg(),
			}
		}

		kind := canteen.AdjustmentCredit
		if amount.IsNegative() {
			kind = canteen.AdjustmentDebit
		}
		if description == "" {
			description = fmt.Sprintf("Admin adjusted balance by %s", amount)
		}

		user.Balance = balance
		if err := tx.SaveUser(ctx, *user); err != nil {
			return err
		}
		if err := tx.SaveAdjustment(ctx, canteen.Adjustment{
			ID:          canteen.NewID(),
			UserEmail:   email,
			Amount:      amount,
			Type:        kind,
			Description: description,
			Timestamp:   e.now(),
		}); err != nil {
			return err
		}
		newBalance = balance
		return nil
	})
	if err != nil {
		return canteen.ZeroMoney(), err
	}
	return newBalance, nil
}
