/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Domain amounts are decimals; DTOs expose them as JSON numbers. The
  conversion happens only at the edge - no float ever flows back into
  the engine.

SEE ALSO:
  - handlers.go: uses these types
  - canteen/types.go: the domain records behind them
*/
package api

import (
	"time"

	"github.com/warp/canteen-engine/analytics"
	"github.com/warp/canteen-engine/canteen"
	"github.com/warp/canteen-engine/wallet"
)

// =============================================================================
// ACCOUNT
// =============================================================================

// SignupRequest creates a student account.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest authenticates any account.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries a session token plus the account it belongs to.
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// UserDTO represents an account in API responses. The password hash never
// leaves the server.
type UserDTO struct {
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	Balance   float64 `json:"balance"`
	Active    bool    `json:"active"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// UpdateUserRequest changes mutable profile fields.
type UpdateUserRequest struct {
	Name string `json:"name"`
}

// ChangePasswordRequest rotates a password with the old one as proof.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ForgotPasswordRequest starts a reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest completes a reset flow with the issued token.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// =============================================================================
// PRODUCTS
// =============================================================================

// ProductDTO represents a menu item.
type ProductDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Category     string  `json:"category,omitempty"`
	Availability string  `json:"availability"`
	ImageURL     string  `json:"image_url,omitempty"`
}

// SaveProductRequest creates or updates a menu item.
type SaveProductRequest struct {
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Category     string  `json:"category"`
	Availability string  `json:"availability"`
	ImageURL     string  `json:"image_url"`
}

// UploadResponse returns the hosted URL of an uploaded image.
type UploadResponse struct {
	URL string `json:"url"`
}

// =============================================================================
// ORDERS
// =============================================================================

// OrderItemRequest references a product by id; price is looked up
// server-side, never trusted from the client.
type OrderItemRequest struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest places an order.
type CreateOrderRequest struct {
	Items          []OrderItemRequest `json:"items"`
	DeliveryOption string             `json:"delivery_option"`
	Classroom      string             `json:"classroom,omitempty"`
	ScheduledTime  string             `json:"scheduled_time,omitempty"`
	MealTiming     string             `json:"meal_timing,omitempty"`
}

// UpdateStatusRequest moves an order along the lifecycle.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// OrderItemDTO is a snapshot line of an order.
type OrderItemDTO struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Category  string  `json:"category,omitempty"`
	ImageURL  string  `json:"image_url,omitempty"`
}

// OrderDTO represents an order in API responses.
type OrderDTO struct {
	ID             string         `json:"id"`
	UserEmail      string         `json:"user_email"`
	Items          []OrderItemDTO `json:"items"`
	Subtotal       float64        `json:"subtotal"`
	DeliveryCharge float64        `json:"delivery_charge"`
	Total          float64        `json:"total"`
	Status         string         `json:"status"`
	StatusReason   string         `json:"status_reason,omitempty"`
	DeliveryOption string         `json:"delivery_option"`
	Classroom      string         `json:"classroom,omitempty"`
	ScheduledTime  string         `json:"scheduled_time,omitempty"`
	MealTiming     string         `json:"meal_timing,omitempty"`
	RefundAmount   float64        `json:"refund_amount,omitempty"`
	CancelledAt    string         `json:"cancelled_at,omitempty"`
	CreatedAt      string         `json:"created_at"`
	UpdatedAt      string         `json:"updated_at,omitempty"`
}

// =============================================================================
// WALLET & COUPONS
// =============================================================================

// RedeemRequest applies a voucher to the caller's wallet.
type RedeemRequest struct {
	VoucherCode string `json:"voucher_code"`
}

// RedeemResponse reports a successful redemption.
type RedeemResponse struct {
	Amount     float64 `json:"amount"`
	NewBalance float64 `json:"new_balance"`
}

// LedgerEntryDTO is one row of a user's wallet history.
type LedgerEntryDTO struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Timestamp   string  `json:"timestamp"`
	Status      string  `json:"status"`
}

// GenerateCouponRequest issues a voucher.
type GenerateCouponRequest struct {
	Code       string  `json:"code"`
	Amount     float64 `json:"amount"`
	ExpiryDays int     `json:"expiry_days,omitempty"`
}

// CouponDTO represents a voucher.
type CouponDTO struct {
	Code      string  `json:"code"`
	Amount    float64 `json:"amount"`
	Expiry    string  `json:"expiry"`
	Used      bool    `json:"used"`
	UsedBy    string  `json:"used_by,omitempty"`
	UsedAt    string  `json:"used_at,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// =============================================================================
// NOTIFICATIONS & REFUNDS
// =============================================================================

// NotificationDTO is one user-facing event.
type NotificationDTO struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	OrderID   string `json:"order_id,omitempty"`
	Read      bool   `json:"read"`
	Timestamp string `json:"timestamp"`
}

// NotificationsResponse bundles the list with its unread count.
type NotificationsResponse struct {
	Notifications []NotificationDTO `json:"notifications"`
	UnreadCount   int               `json:"unread_count"`
}

// RefundRequestRequest files a refund petition for an order.
type RefundRequestRequest struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason,omitempty"`
}

// RefundRequestDTO represents a filed petition.
type RefundRequestDTO struct {
	ID        string `json:"id"`
	UserEmail string `json:"user_email"`
	OrderID   string `json:"order_id"`
	Reason    string `json:"reason,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// ProcessRefundRequest resolves a petition.
type ProcessRefundRequest struct {
	Action string `json:"action"` // "approve" | "reject"
}

// =============================================================================
// ADMIN
// =============================================================================

// AdjustBalanceRequest credits or debits a wallet by a signed amount.
type AdjustBalanceRequest struct {
	Email       string  `json:"email"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// AdjustBalanceResponse reports the post-adjustment balance.
type AdjustBalanceResponse struct {
	Email      string  `json:"email"`
	NewBalance float64 `json:"new_balance"`
}

// DeleteUserRequest removes an account; the calling admin re-enters their
// own password as confirmation.
type DeleteUserRequest struct {
	Email         string `json:"email"`
	AdminPassword string `json:"admin_password"`
}

// CreateCanteenRequest provisions a canteen staff account.
type CreateCanteenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// DashboardDTO aggregates the admin overview.
type DashboardDTO struct {
	TotalUsers      int               `json:"total_users"`
	TotalCanteens   int               `json:"total_canteens"`
	TotalOrders     int               `json:"total_orders"`
	TotalRevenue    float64           `json:"total_revenue"`
	CancelledOrders int               `json:"cancelled_orders"`
	TotalRefunded   float64           `json:"total_refunded"`
	Granularity     string            `json:"granularity"`
	Series          []analytics.Point `json:"series"`
}

// =============================================================================
// UTILITY
// =============================================================================

// DeliveryOptionDTO is one row of the delivery option table.
type DeliveryOptionDTO struct {
	Code   string  `json:"code"`
	Label  string  `json:"label"`
	Charge float64 `json:"charge"`
}

// MealTimingDTO is one row of the meal timing table.
type MealTimingDTO struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func fmtTimeDTO(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toUserDTO(u canteen.User) UserDTO {
	return UserDTO{
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Balance:   u.Balance.InexactFloat64(),
		Active:    u.Active,
		CreatedAt: fmtTimeDTO(u.CreatedAt),
	}
}

func toUserDTOs(users []canteen.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	return dtos
}

func toProductDTO(p canteen.Product) ProductDTO {
	return ProductDTO{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price.InexactFloat64(),
		Category:     p.Category,
		Availability: p.Availability,
		ImageURL:     p.ImageURL,
	}
}

func toProductDTOs(products []canteen.Product) []ProductDTO {
	dtos := make([]ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = toProductDTO(p)
	}
	return dtos
}

func toOrderDTO(o canteen.Order) OrderDTO {
	items := make([]OrderItemDTO, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemDTO{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.InexactFloat64(),
			Quantity:  it.Quantity,
			Category:  it.Category,
			ImageURL:  it.ImageURL,
		}
	}
	return OrderDTO{
		ID:             o.ID,
		UserEmail:      o.UserEmail,
		Items:          items,
		Subtotal:       o.Subtotal.InexactFloat64(),
		DeliveryCharge: o.DeliveryCharge.InexactFloat64(),
		Total:          o.Total.InexactFloat64(),
		Status:         string(o.Status),
		StatusReason:   o.StatusReason,
		DeliveryOption: o.DeliveryOption,
		Classroom:      o.Classroom,
		ScheduledTime:  o.ScheduledTime,
		MealTiming:     o.MealTiming,
		RefundAmount:   o.RefundAmount.InexactFloat64(),
		CancelledAt:    fmtTimeDTO(o.CancelledAt),
		CreatedAt:      fmtTimeDTO(o.CreatedAt),
		UpdatedAt:      fmtTimeDTO(o.UpdatedAt),
	}
}

func toOrderDTOs(orders []canteen.Order) []OrderDTO {
	dtos := make([]OrderDTO, len(orders))
	for i, o := range orders {
		dtos[i] = toOrderDTO(o)
	}
	return dtos
}

func toCouponDTO(c canteen.Coupon) CouponDTO {
	return CouponDTO{
		Code:      c.Code,
		Amount:    c.Amount.InexactFloat64(),
		Expiry:    c.Expiry,
		Used:      c.Used,
		UsedBy:    c.UsedBy,
		UsedAt:    fmtTimeDTO(c.UsedAt),
		CreatedAt: fmtTimeDTO(c.CreatedAt),
	}
}

func toCouponDTOs(coupons []canteen.Coupon) []CouponDTO {
	dtos := make([]CouponDTO, len(coupons))
	for i, c := range coupons {
		dtos[i] = toCouponDTO(c)
	}
	return dtos
}

func toNotificationDTO(n canteen.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		OrderID:   n.OrderID,
		Read:      n.Read,
		Timestamp: fmtTimeDTO(n.Timestamp),
	}
}

func toLedgerEntryDTO(e wallet.LedgerEntry) LedgerEntryDTO {
	return LedgerEntryDTO{
		ID:          e.ID,
		Type:        e.Type,
		Amount:      e.Amount.InexactFloat64(),
		Description: e.Description,
		Timestamp:   fmtTimeDTO(e.Timestamp),
		Status:      e.Status,
	}
}

func toRefundRequestDTO(r canteen.RefundRequest) RefundRequestDTO {
	return RefundRequestDTO{
		ID:        r.ID,
		UserEmail: r.UserEmail,
		OrderID:   r.OrderID,
		Reason:    r.Reason,
		Status:    r.Status,
		CreatedAt: fmtTimeDTO(r.CreatedAt),
	}
}
