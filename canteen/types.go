/*
Package canteen contains the core domain model for the canteen ordering
backend.

PURPOSE:
  This package defines the typed records stored in the document store
  (users, products, orders, coupons, notifications, adjustments, refund
  requests), the money type, the order status machine, and the store
  contracts the wallet engine runs against.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: fixed-point currency amount backed by decimal.Decimal
  - User/Product/Order/Coupon/...: explicit record types with named fields
  - Role: closed enumeration of account roles
  - NewID: random document identifiers

DESIGN PRINCIPLES:
  1. Precision: all currency amounts use decimal.Decimal, never float64
  2. Snapshots: order items copy product data at order time, so later
     product edits cannot change historical totals
  3. Type safety: roles and statuses are closed enumerations, not strings
  4. Every balance mutation commits together with its compensating record
     (order, coupon, adjustment) inside one store transaction

SEE ALSO:
  - status.go: order status transition table
  - store.go: persistence contracts
  - errors.go: sentinel and structured errors
*/
package canteen

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Fixed-point currency amount
// =============================================================================

// Money is a currency amount with minor-unit precision.
// It is an alias for decimal.Decimal so arithmetic stays exact across
// repeated credits and debits.
type Money = decimal.Decimal

func NewMoney(value float64) Money        { return decimal.NewFromFloat(value) }
func MoneyFromInt(value int64) Money      { return decimal.NewFromInt(value) }
func ZeroMoney() Money                    { return decimal.Zero }

// MustParseMoney parses a decimal string, returning zero on failure.
func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// WelcomeBalance is credited to every new user account at signup.
var WelcomeBalance = MoneyFromInt(50)

// =============================================================================
// ROLES
// =============================================================================

type Role string

const (
	RoleUser    Role = "user"
	RoleCanteen Role = "canteen"
	RoleAdmin   Role = "admin"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleCanteen, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// =============================================================================
// RECORDS
// =============================================================================

// User is keyed by email. Balance is mutated only inside a store
// transaction that also writes the compensating record.
type User struct {
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	Balance      Money
	Active       bool
	ResetToken   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Product is keyed by its name; re-adding the same name overwrites.
type Product struct {
	ID           string
	Name         string
	Price        Money
	Category     string
	Availability string // "available" | "unavailable"
	ImageURL     string
}

const (
	Available   = "available"
	Unavailable = "unavailable"
)

// OrderItem is a snapshot of a product at order time, not a live reference.
type OrderItem struct {
	ProductID string
	Name      string
	Price     Money
	Quantity  int
	Category  string
	ImageURL  string
}

// Subtotal returns price * quantity.
func (it OrderItem) Subtotal() Money {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Order is keyed by a generated id and never physically deleted.
// Total is immutable after creation. RefundAmount and CancelledAt are set
// exactly once, on the transition into StatusCancelled.
type Order struct {
	ID             string
	UserEmail      string
	Items          []OrderItem
	Subtotal       Money
	DeliveryCharge Money
	Total          Money
	Status         Status
	StatusReason   string
	DeliveryOption string
	Classroom      string
	ScheduledTime  string
	MealTiming     string
	TimingSlot     MealSlot
	RefundAmount   Money
	CancelledAt    time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Coupon is keyed by its voucher code. Once Used is true the coupon is
// terminal; no code may be redeemed twice.
type Coupon struct {
	Code      string
	Amount    Money
	Expiry    string // MM/DD/YYYY
	Used      bool
	UsedBy    string
	UsedAt    time.Time
	CreatedAt time.Time
}

// CouponExpiryFormat is the stored expiry layout (MM/DD/YYYY).
const CouponExpiryFormat = "01/02/2006"

// ExpiresOn parses the stored expiry date.
func (c Coupon) ExpiresOn() (time.Time, error) {
	return time.ParseInLocation(CouponExpiryFormat, c.Expiry, time.UTC)
}

// Notification is append-only; only the Read flag is ever flipped.
type Notification struct {
	ID        string
	UserEmail string
	Type      string
	Message   string
	OrderID   string
	Read      bool
	Timestamp time.Time
}

// Adjustment is an explicit admin credit/debit ledger record.
type Adjustment struct {
	ID          string
	UserEmail   string
	Amount      Money // signed
	Type        string
	Description string
	Timestamp   time.Time
}

const (
	AdjustmentCredit = "ADMIN_CREDIT"
	AdjustmentDebit  = "ADMIN_DEBIT"
)

// RefundRequest is a user-filed refund petition reviewed by an admin.
type RefundRequest struct {
	ID        string
	UserEmail string
	OrderID   string
	Reason    string
	Status    string // pending | approved | rejected
	CreatedAt time.Time
}

const (
	RefundPending  = "pending"
	RefundApproved = "approved"
	RefundRejected = "rejected"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// NewID returns a random 20-character hex document id.
func NewID() string {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b)
}
