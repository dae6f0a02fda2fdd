/*
handlers.go - HTTP API handlers for the canteen ordering backend

PURPOSE:
  Exposes the wallet engine, catalog, and projections via REST. Handles
  HTTP request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Account:
    POST   /api/signup                    Create student account
    POST   /api/login                     Authenticate, issue JWT
    GET    /api/user                      Profile
    PUT    /api/user                      Update profile
    POST   /api/change-password           Rotate password
    POST   /api/forgot-password           Issue reset token
    POST   /api/reset-password            Complete reset

  Products:
    GET    /api/products                  Available menu (public)
    GET    /api/products/all              Full menu (canteen)
    GET    /api/products/{id}             Single product
    POST   /api/products                  Add product (canteen)
    PUT    /api/products/{id}             Update product (canteen)
    DELETE /api/products/{id}             Remove product (canteen)
    GET    /api/products/{id}/sales       7-day sales (canteen)
    POST   /api/uploads/image             Host an image (canteen)

  Orders:
    POST   /api/orders                    Place order
    GET    /api/orders                    Own order history
    POST   /api/orders/{id}/cancel        Cancel + refund
    GET    /api/canteen/orders            Queue with filters (canteen)
    POST   /api/orders/{id}/status        Lifecycle transition (canteen)

  Wallet:
    POST   /api/wallet/redeem             Redeem voucher
    GET    /api/wallet/transactions       Ledger history
    GET    /api/coupons/mine              Own redemptions

  Notifications:
    GET    /api/notifications             List + unread count
    POST   /api/notifications/{id}/read   Mark read

  Refunds:
    POST   /api/refund-requests           File petition

  Utility:
    GET    /api/delivery-locations
    GET    /api/meal-timings
    GET    /api/time-slots

  Admin endpoints live in admin.go.

ERROR HANDLING:
  Domain errors map onto HTTP status through writeDomainError:
  - 400: validation, insufficient balance, bad transition, dead coupon
  - 401: missing/invalid token
  - 404: missing user/product/order/coupon
  - 409: duplicate user or coupon code
  - 500: store failures

SEE ALSO:
  - dto.go: request/response data structures
  - middleware.go: authentication and role gates
  - server.go: router setup
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/canteen-engine/analytics"
	"github.com/warp/canteen-engine/auth"
	"github.com/warp/canteen-engine/canteen"
	"github.com/warp/canteen-engine/imagehost"
	"github.com/warp/canteen-engine/wallet"
)

// maxUploadBytes caps product image uploads.
const maxUploadBytes = 10 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  canteen.TxStore
	Engine *wallet.Engine
	Tokens *auth.Tokens
	Images *imagehost.Client
	Log    *slog.Logger

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewHandler wires the handler. Images may be nil when uploads are
// disabled.
func NewHandler(store canteen.TxStore, engine *wallet.Engine, tokens *auth.Tokens, images *imagehost.Client, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		Store:  store,
		Engine: engine,
		Tokens: tokens,
		Images: images,
		Log:    log,
		Now:    time.Now,
	}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// Signup creates a student account and credits the welcome balance.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Email and name are required", nil)
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		writeDomainError(w, err)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password", err)
		return
	}

	now := h.now()
	user := canteen.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         canteen.RoleUser,
		Balance:      canteen.WelcomeBalance,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// Duplicate check and insert commit atomically.
	err = h.Store.WithTx(r.Context(), func(tx canteen.Store) error {
		existing, err := tx.GetUser(r.Context(), req.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return canteen.ErrUserExists
		}
		return tx.SaveUser(r.Context(), user)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	token, err := h.Tokens.Generate(user.Email, user.Role, user.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: toUserDTO(user)})
}

// Login authenticates any account role and issues a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.Store.GetUser(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}
	// Identical failure for unknown email and wrong password.
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}
	if !user.Active {
		writeError(w, http.StatusForbidden, "Account is deactivated", nil)
		return
	}

	token, err := h.Tokens.Generate(user.Email, user.Role, user.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: toUserDTO(*user)})
}

// GetProfile returns the calling account.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	user, err := h.Store.GetUser(r.Context(), claims.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}
	if user == nil {
		writeDomainError(w, canteen.ErrUserNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(*user))
}

// UpdateProfile changes the display name.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	var updated canteen.User
	err := h.Store.WithTx(r.Context(), func(tx canteen.Store) error {
		user, err := tx.GetUser(r.Context(), claims.Email)
		if err != nil {
			return err
		}
		if user == nil {
			return canteen.ErrUserNotFound
		}
		user.Name = req.Name
		user.UpdatedAt = h.now()
		if err := tx.SaveUser(r.Context(), *user); err != nil {
			return err
		}
		updated = *user
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(updated))
}

// ChangePassword rotates the password with the current one as proof.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		writeDomainError(w, err)
		return
	}

	user, err := h.Store.GetUser(r.Context(), claims.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}
	if user == nil {
		writeDomainError(w, canteen.ErrUserNotFound)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		writeError(w, http.StatusUnauthorized, "Current password is incorrect", nil)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password", err)
		return
	}
	user.PasswordHash = hash
	user.UpdatedAt = h.now()
	if err := h.Store.SaveUser(r.Context(), *user); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

// ForgotPassword issues a reset token. The response is identical whether
// the account exists or not; token delivery is a log line standing in for
// an email integration.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.Store.GetUser(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}
	if user != nil {
		user.ResetToken = auth.NewResetToken()
		user.UpdatedAt = h.now()
		if err := h.Store.SaveUser(r.Context(), *user); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save user", err)
			return
		}
		h.Log.Info("password reset token issued", "email", user.Email, "token", user.ResetToken)
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If the account exists, a reset token has been sent",
	})
}

// ResetPassword completes the reset flow.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		writeDomainError(w, err)
		return
	}

	user, err := h.Store.GetUser(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}
	if user == nil || user.ResetToken == "" || user.ResetToken != req.Token {
		writeError(w, http.StatusUnauthorized, "Invalid reset token", nil)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password", err)
		return
	}
	user.PasswordHash = hash
	user.ResetToken = ""
	user.UpdatedAt = h.now()
	if err := h.Store.SaveUser(r.Context(), *user); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset"})
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// ListAvailableProducts returns the public menu.
func (h *Handler) ListAvailableProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list products", err)
		return
	}
	available := make([]canteen.Product, 0, len(products))
	for _, p := range products {
		if p.Availability == canteen.Available {
			available = append(available, p)
		}
	}
	writeJSON(w, http.StatusOK, toProductDTOs(available))
}

// ListAllProducts returns the full menu including unavailable items.
func (h *Handler) ListAllProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list products", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTOs(products))
}

// GetProduct returns a single product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.Store.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load product", err)
		return
	}
	if product == nil {
		writeDomainError(w, canteen.ErrProductNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(*product))
}

// CreateProduct adds a menu item. Products are keyed by name, so
// re-adding an existing name overwrites it.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req SaveProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := productFromRequest(req.Name, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Store.SaveProduct(r.Context(), product); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save product", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(product))
}

// UpdateProduct replaces a menu item's mutable fields.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req SaveProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	existing, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load product", err)
		return
	}
	if existing == nil {
		writeDomainError(w, canteen.ErrProductNotFound)
		return
	}
	product, err := productFromRequest(id, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if product.ImageURL == "" {
		product.ImageURL = existing.ImageURL
	}
	if err := h.Store.SaveProduct(r.Context(), product); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save product", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(product))
}

// DeleteProduct removes a menu item. Existing orders keep their snapshots.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load product", err)
		return
	}
	if existing == nil {
		writeDomainError(w, canteen.ErrProductNotFound)
		return
	}
	if err := h.Store.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete product", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

// ProductSales returns the product's 7-day weekday sales series.
func (h *Handler) ProductSales(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load product", err)
		return
	}
	if product == nil {
		writeDomainError(w, canteen.ErrProductNotFound)
		return
	}
	orders, err := h.Store.ListOrders(r.Context(), canteen.OrderFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.SalesForProduct(orders, id, h.now()))
}

// UploadImage hosts an image and returns its public URL.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if !h.Images.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "Image uploads are not configured", nil)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing image file", err)
		return
	}
	defer file.Close()

	url, err := h.Images.Upload(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Image upload failed", err)
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{URL: url})
}

func productFromRequest(id string, req SaveProductRequest) (canteen.Product, error) {
	if req.Name == "" {
		return canteen.Product{}, &canteen.ValidationError{Field: "name", Message: "required"}
	}
	if req.Price <= 0 {
		return canteen.Product{}, &canteen.ValidationError{Field: "price", Message: "must be positive"}
	}
	availability := req.Availability
	switch availability {
	case "":
		availability = canteen.Available
	case canteen.Available, canteen.Unavailable:
	default:
		return canteen.Product{}, &canteen.ValidationError{Field: "availability", Message: "must be available or unavailable"}
	}
	return canteen.Product{
		ID:           id,
		Name:         req.Name,
		Price:        canteen.NewMoney(req.Price),
		Category:     req.Category,
		Availability: availability,
		ImageURL:     req.ImageURL,
	}, nil
}

// =============================================================================
// ORDER HANDLERS
// =============================================================================

// CreateOrder places an order for the calling user.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	var req CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items := make([]wallet.ItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = wallet.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	order, err := h.Engine.PlaceOrder(r.Context(), wallet.PlaceOrderInput{
		UserEmail:      claims.Email,
		Items:          items,
		DeliveryOption: req.DeliveryOption,
		Classroom:      req.Classroom,
		ScheduledTime:  req.ScheduledTime,
		MealTiming:     req.MealTiming,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(*order))
}

// ListMyOrders returns the caller's order history, newest first.
func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	orders, err := h.Store.ListOrdersByUser(r.Context(), claims.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTOs(orders))
}

// CancelOrder cancels an order and refunds it. Users may only cancel their
// own orders; canteen and admin accounts may cancel any.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	id := chi.URLParam(r, "id")

	order, err := h.Store.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load order", err)
		return
	}
	if order == nil {
		writeDomainError(w, canteen.ErrOrderNotFound)
		return
	}
	if canteen.Role(claims.Role) == canteen.RoleUser && order.UserEmail != claims.Email {
		writeError(w, http.StatusForbidden, "Not your order", nil)
		return
	}

	cancelled, err := h.Engine.CancelOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(*cancelled))
}

// CanteenOrders returns the order queue with optional status and date
// filters (date format 2006-01-02, UTC day).
func (h *Handler) CanteenOrders(w http.ResponseWriter, r *http.Request) {
	var filter canteen.OrderFilter
	if s := r.URL.Query().Get("status"); s != "" {
		status, ok := canteen.ParseStatus(s)
		if !ok {
			writeError(w, http.StatusBadRequest, "Unknown status filter", nil)
			return
		}
		filter.Status = status
	}
	if d := r.URL.Query().Get("date"); d != "" {
		day, err := time.ParseInLocation("2006-01-02", d, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err)
			return
		}
		filter.Day = day
	}

	orders, err := h.Store.ListOrders(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTOs(orders))
}

// UpdateOrderStatus moves an order along the lifecycle.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.Engine.UpdateStatus(r.Context(), id, canteen.Status(req.Status), req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(*order))
}

// =============================================================================
// WALLET & COUPON HANDLERS
// =============================================================================

// RedeemCoupon applies a voucher to the caller's wallet.
func (h *Handler) RedeemCoupon(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	var req RedeemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.Engine.Redeem(r.Context(), req.VoucherCode, claims.Email)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RedeemResponse{
		Amount:     result.Amount.InexactFloat64(),
		NewBalance: result.NewBalance.InexactFloat64(),
	})
}

// WalletTransactions returns the caller's reconstructed ledger history.
func (h *Handler) WalletTransactions(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	entries, err := h.Engine.TransactionHistory(r.Context(), claims.Email)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]LedgerEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toLedgerEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// MyCoupons returns the caller's redemptions, most recent first.
func (h *Handler) MyCoupons(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	coupons, err := h.Engine.UserCouponHistory(r.Context(), claims.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list coupons", err)
		return
	}
	writeJSON(w, http.StatusOK, toCouponDTOs(coupons))
}

// =============================================================================
// NOTIFICATION HANDLERS
// =============================================================================

// ListNotifications returns recent notifications plus the unread count.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	notifications, err := h.Store.ListNotifications(r.Context(), claims.Email, canteen.NotificationLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list notifications", err)
		return
	}
	dtos := make([]NotificationDTO, len(notifications))
	unread := 0
	for i, n := range notifications {
		dtos[i] = toNotificationDTO(n)
		if !n.Read {
			unread++
		}
	}
	writeJSON(w, http.StatusOK, NotificationsResponse{Notifications: dtos, UnreadCount: unread})
}

// MarkNotificationRead flips one notification to read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.MarkNotificationRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to mark notification", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification marked read"})
}

// =============================================================================
// REFUND REQUEST HANDLERS
// =============================================================================

// CreateRefundRequest files a petition against one of the caller's orders.
func (h *Handler) CreateRefundRequest(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	var req RefundRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.Store.GetOrder(r.Context(), req.OrderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load order", err)
		return
	}
	if order == nil {
		writeDomainError(w, canteen.ErrOrderNotFound)
		return
	}
	if order.UserEmail != claims.Email {
		writeError(w, http.StatusForbidden, "Not your order", nil)
		return
	}

	request := canteen.RefundRequest{
		ID:        canteen.NewID(),
		UserEmail: claims.Email,
		OrderID:   order.ID,
		Reason:    req.Reason,
		Status:    canteen.RefundPending,
		CreatedAt: h.now(),
	}
	if err := h.Store.SaveRefundRequest(r.Context(), request); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save refund request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRefundRequestDTO(request))
}

// =============================================================================
// UTILITY HANDLERS
// =============================================================================

// DeliveryLocations returns the fixed delivery option table.
func (h *Handler) DeliveryLocations(w http.ResponseWriter, r *http.Request) {
	codes := []string{canteen.DeliveryPickup, canteen.DeliveryClass}
	dtos := make([]DeliveryOptionDTO, 0, len(codes))
	for _, code := range codes {
		opt := canteen.DeliveryOptions[code]
		dtos = append(dtos, DeliveryOptionDTO{
			Code:   opt.Code,
			Label:  opt.Label,
			Charge: opt.Charge.InexactFloat64(),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// MealTimings returns the fixed meal timing table.
func (h *Handler) MealTimings(w http.ResponseWriter, r *http.Request) {
	codes := []string{canteen.MealMorningBreak, canteen.MealLunch, canteen.MealAfternoonBreak}
	dtos := make([]MealTimingDTO, 0, len(codes))
	for _, code := range codes {
		slot := canteen.MealTimings[code]
		dtos = append(dtos, MealTimingDTO{
			Code:  code,
			Label: slot.Label,
			Start: slot.Start,
			End:   slot.End,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// TimeSlots returns schedulable hours for today and tomorrow.
func (h *Handler) TimeSlots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, canteen.TimeSlots(h.now()))
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine/store errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, canteen.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized", err)
	case canteen.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, canteen.ErrUserExists), errors.Is(err, canteen.ErrCouponExists):
		writeError(w, http.StatusConflict, "Already exists", err)
	case canteen.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Request rejected", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
