/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:       Request logging
  2. Recoverer:    Panic recovery (500 instead of crash)
  3. RequestID:    Unique ID per request for tracing
  4. CORS:         Cross-origin requests for frontend
  5. Authenticate: Bearer token verification (protected groups only)
  6. RequireRole:  Role gates on canteen/admin groups

ROUTE GROUPS:
  /api/*                  Public: signup, login, reset flow, menu, tables
  /api/* (authenticated)  Profile, orders, wallet, notifications, refunds
  /api/canteen/*          Order queue, product management
  /api/admin/*            Reporting, accounts, coupons, refund processing

SEE ALSO:
  - handlers.go, admin.go: handler implementations
  - middleware.go: authentication middleware
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/warp/canteen-engine/canteen"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	staff := RequireRole(canteen.RoleCanteen, canteen.RoleAdmin)
	admin := RequireRole(canteen.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)
		r.Get("/products", h.ListAvailableProducts)
		r.Get("/delivery-locations", h.DeliveryLocations)
		r.Get("/meal-timings", h.MealTimings)
		r.Get("/time-slots", h.TimeSlots)

		// Authenticated routes (any role)
		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Get("/user", h.GetProfile)
			r.Put("/user", h.UpdateProfile)
			r.Post("/change-password", h.ChangePassword)

			r.Post("/orders", h.CreateOrder)
			r.Get("/orders", h.ListMyOrders)
			r.Post("/orders/{id}/cancel", h.CancelOrder)

			r.Post("/wallet/redeem", h.RedeemCoupon)
			r.Get("/wallet/transactions", h.WalletTransactions)
			r.Get("/coupons/mine", h.MyCoupons)

			r.Get("/notifications", h.ListNotifications)
			r.Post("/notifications/{id}/read", h.MarkNotificationRead)

			r.Post("/refund-requests", h.CreateRefundRequest)

			// Canteen staff routes
			r.Group(func(r chi.Router) {
				r.Use(staff)

				r.Get("/canteen/orders", h.CanteenOrders)
				r.Post("/orders/{id}/status", h.UpdateOrderStatus)

				r.Get("/products/all", h.ListAllProducts)
				r.Get("/products/{id}", h.GetProduct)
				r.Post("/products", h.CreateProduct)
				r.Put("/products/{id}", h.UpdateProduct)
				r.Delete("/products/{id}", h.DeleteProduct)
				r.Get("/products/{id}/sales", h.ProductSales)
				r.Post("/uploads/image", h.UploadImage)
			})

			// Admin routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(admin)

				r.Get("/dashboard", h.Dashboard)
				r.Get("/users", h.ListUsers)
				r.Post("/balance", h.AdjustBalance)
				r.Post("/users/delete", h.DeleteUser)

				r.Get("/canteens", h.ListCanteens)
				r.Post("/canteens", h.CreateCanteen)
				r.Delete("/canteens/{email}", h.DeleteCanteen)

				r.Post("/coupons", h.GenerateCoupon)
				r.Get("/coupons", h.CouponHistory)

				r.Get("/refund-requests", h.ListRefundRequests)
				r.Post("/refund-requests/{id}/process", h.ProcessRefundRequest)
			})
		})
	})

	return r
}
