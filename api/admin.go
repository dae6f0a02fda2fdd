/*
admin.go - Admin-only HTTP handlers

PURPOSE:
  Reporting, account administration, coupon issuance, and refund petition
  processing. Every route here sits behind RequireRole(admin).

ENDPOINTS:
  GET    /api/admin/dashboard               Totals + revenue series
  GET    /api/admin/users                   All accounts
  POST   /api/admin/balance                 Wallet adjustment
  POST   /api/admin/users/delete            Delete account (password confirmed)
  GET    /api/admin/canteens                Canteen accounts
  POST   /api/admin/canteens                Create canteen account
  DELETE /api/admin/canteens/{email}        Deactivate canteen account
  POST   /api/admin/coupons                 Issue voucher
  GET    /api/admin/coupons                 Issuance history
  GET    /api/admin/refund-requests         Pending petitions
  POST   /api/admin/refund-requests/{id}/process

SEE ALSO:
  - handlers.go: shared helpers and the Handler struct
  - ../analytics: dashboard projections
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/canteen-engine/analytics"
	"github.com/warp/canteen-engine/auth"
	"github.com/warp/canteen-engine/canteen"
)

// =============================================================================
// DASHBOARD
// =============================================================================

// Dashboard returns overview totals plus a revenue/volume series at the
// requested granularity (daily by default).
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	granularity := analytics.Granularity(r.URL.Query().Get("granularity"))
	switch granularity {
	case "":
		granularity = analytics.Daily
	case analytics.Daily, analytics.Weekly, analytics.Monthly:
	default:
		writeError(w, http.StatusBadRequest, "Unknown granularity", nil)
		return
	}

	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}
	orders, err := h.Store.ListOrders(r.Context(), canteen.OrderFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list orders", err)
		return
	}

	totals := analytics.Summarize(users, orders)
	writeJSON(w, http.StatusOK, DashboardDTO{
		TotalUsers:      totals.TotalUsers,
		TotalCanteens:   totals.TotalCanteens,
		TotalOrders:     totals.TotalOrders,
		TotalRevenue:    totals.TotalRevenue.InexactFloat64(),
		CancelledOrders: totals.CancelledOrders,
		TotalRefunded:   totals.TotalRefunded.InexactFloat64(),
		Granularity:     string(granularity),
		Series:          analytics.Series(orders, granularity, h.now()),
	})
}

// =============================================================================
// ACCOUNT ADMINISTRATION
// =============================================================================

// ListUsers returns every account.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTOs(users))
}

// AdjustBalance credits or debits a wallet by a signed amount, writing an
// adjustment ledger record in the same transaction.
func (h *Handler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	var req AdjustBalanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required", nil)
		return
	}
	newBalance, err := h.Engine.AdjustBalance(r.Context(), req.Email, canteen.NewMoney(req.Amount), req.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AdjustBalanceResponse{
		Email:      req.Email,
		NewBalance: newBalance.InexactFloat64(),
	})
}

// DeleteUser removes an account after the calling admin confirms their own
// password. Admin accounts cannot be deleted.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	var req DeleteUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	admin, err := h.Store.GetUser(r.Context(), claims.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load admin", err)
		return
	}
	if admin == nil || !auth.CheckPassword(admin.PasswordHash, req.AdminPassword) {
		writeError(w, http.StatusUnauthorized, "Admin password is incorrect", nil)
		return
	}

	target, err := h.Store.GetUser(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}
	if target == nil {
		writeDomainError(w, canteen.ErrUserNotFound)
		return
	}
	if target.Role == canteen.RoleAdmin {
		writeError(w, http.StatusForbidden, "Admin accounts cannot be deleted", nil)
		return
	}

	if err := h.Store.DeleteUser(r.Context(), req.Email); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

// =============================================================================
// CANTEEN ACCOUNTS
// =============================================================================

// ListCanteens returns all canteen staff accounts.
func (h *Handler) ListCanteens(w http.ResponseWriter, r *http.Request) {
	canteens, err := h.Store.ListUsersByRole(r.Context(), canteen.RoleCanteen)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list canteens", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTOs(canteens))
}

// CreateCanteen provisions a canteen staff account. Staff accounts carry
// no wallet balance.
func (h *Handler) CreateCanteen(w http.ResponseWriter, r *http.Request) {
	var req CreateCanteenRequest
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
	account := canteen.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         canteen.RoleCanteen,
		Balance:      canteen.ZeroMoney(),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = h.Store.WithTx(r.Context(), func(tx canteen.Store) error {
		existing, err := tx.GetUser(r.Context(), req.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return canteen.ErrUserExists
		}
		return tx.SaveUser(r.Context(), account)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(account))
}

// DeleteCanteen deactivates a canteen account rather than deleting it, so
// its historical orders stay attributable.
func (h *Handler) DeleteCanteen(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	user, err := h.Store.GetUser(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}
	if user == nil || user.Role != canteen.RoleCanteen {
		writeDomainError(w, canteen.ErrUserNotFound)
		return
	}
	user.Active = false
	user.UpdatedAt = h.now()
	if err := h.Store.SaveUser(r.Context(), *user); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Canteen account deactivated"})
}

// =============================================================================
// COUPON ADMINISTRATION
// =============================================================================

// GenerateCoupon issues a voucher.
func (h *Handler) GenerateCoupon(w http.ResponseWriter, r *http.Request) {
	var req GenerateCouponRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	coupon, err := h.Engine.IssueCoupon(r.Context(), req.Code, canteen.NewMoney(req.Amount), req.ExpiryDays)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCouponDTO(*coupon))
}

// CouponHistory returns full issuance history, newest first.
func (h *Handler) CouponHistory(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.Engine.CouponHistory(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list coupons", err)
		return
	}
	writeJSON(w, http.StatusOK, toCouponDTOs(coupons))
}

// =============================================================================
// REFUND PETITIONS
// =============================================================================

// ListRefundRequests returns all filed petitions, newest first.
func (h *Handler) ListRefundRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Store.ListRefundRequests(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list refund requests", err)
		return
	}
	dtos := make([]RefundRequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toRefundRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ProcessRefundRequest approves or rejects a petition. Approval cancels
// the order through the engine, which performs the refund; the petition
// status is only flipped after the refund commits.
func (h *Handler) ProcessRefundRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req ProcessRefundRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Action != "approve" && req.Action != "reject" {
		writeError(w, http.StatusBadRequest, "Action must be approve or reject", nil)
		return
	}

	request, err := h.Store.GetRefundRequest(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load refund request", err)
		return
	}
	if request == nil {
		writeError(w, http.StatusNotFound, "Refund request not found", nil)
		return
	}
	if request.Status != canteen.RefundPending {
		writeError(w, http.StatusConflict, "Refund request already processed", nil)
		return
	}

	if req.Action == "approve" {
		order, err := h.Store.GetOrder(r.Context(), request.OrderID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load order", err)
			return
		}
		if order == nil {
			writeDomainError(w, canteen.ErrOrderNotFound)
			return
		}
		// An already-cancelled order means a previous approval refunded it
		// but crashed before the petition was saved; flipping the status is
		// all that is left to do.
		if order.Status != canteen.StatusCancelled {
			if _, err := h.Engine.CancelOrder(r.Context(), request.OrderID); err != nil {
				writeDomainError(w, err)
				return
			}
		}
		request.Status = canteen.RefundApproved
	} else {
		request.Status = canteen.RefundRejected
	}
	if err := h.Store.SaveRefundRequest(r.Context(), *request); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save refund request", err)
		return
	}
	writeJSON(w, http.StatusOK, toRefundRequestDTO(*request))
}
