/*
errors.go - Centralized error types for the canteen domain

PURPOSE:
  All domain error types in one place for consistency and discoverability.
  Handlers map these onto HTTP status codes; the engine never leaks raw
  store errors as business failures.

ERROR CATEGORIES:
  1. Not-found errors - missing users/products/orders/coupons
  2. State-conflict errors - insufficient balance, coupon used/expired,
     invalid status transition
  3. Validation errors - malformed input caught before any store access
  4. Authorization errors - missing/invalid token, wrong role

USAGE:
  if errors.Is(err, canteen.ErrInsufficientBalance) { ... }

SEE ALSO:
  - status.go: transitions producing InvalidTransitionError
  - ../wallet: the engine returning these
*/
package canteen

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")

	// ErrInsufficientBalance is returned when a debit exceeds the wallet
	// balance. Wallet balances never go negative.
	ErrInsufficientBalance = errors.New("insufficient balance")

	ErrInvalidDeliveryOption = errors.New("invalid delivery option")
	ErrInvalidMealTiming     = errors.New("invalid meal timing")

	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponAlreadyUsed   = errors.New("coupon already used")
	ErrCouponExpired       = errors.New("coupon has expired")
	ErrCouponExists        = errors.New("coupon code already exists")
	ErrCouponExpiryInvalid = errors.New("invalid coupon expiry date")

	// ErrOrderNotCancellable is returned when cancelling an order that is
	// not in a cancellable status (only pending and accepted are).
	ErrOrderNotCancellable = errors.New("order cannot be cancelled")

	ErrInvalidTransition = errors.New("invalid status transition")

	ErrUnauthorized = errors.New("unauthorized")

	ErrValidation = errors.New("validation failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError reports a balance shortage without committing
// any write.
type InsufficientBalanceError struct {
	UserEmail string
	Balance   Money
	Required  Money
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %s, need %s", e.Balance, e.Required)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// InvalidTransitionError reports a status change not in the transition table.
type InvalidTransitionError struct {
	OrderID string
	From    Status
	To      Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s for order %s", e.From, e.To, e.OrderID)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// ValidationError reports malformed input, rejected before any store access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing document.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrCouponNotFound)
}

// IsClientError returns true if the error is the caller's fault rather than
// a store failure. Store/transaction failures are retryable; these are not.
func IsClientError(err error) bool {
	return IsNotFound(err) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInvalidDeliveryOption) ||
		errors.Is(err, ErrInvalidMealTiming) ||
		errors.Is(err, ErrCouponAlreadyUsed) ||
		errors.Is(err, ErrCouponExpired) ||
		errors.Is(err, ErrCouponExists) ||
		errors.Is(err, ErrCouponExpiryInvalid) ||
		errors.Is(err, ErrOrderNotCancellable) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrUserExists)
}
