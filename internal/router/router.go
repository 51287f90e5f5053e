package router

import (
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Health  *handler.HealthHandler
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Vendor  *handler.VendorHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(
	h Handlers,
	auth config.AuthConfig,
	requestTimeout time.Duration,
	m *metrics.Metrics,
	logger zerolog.Logger,
) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(m))

	// Public routes
	r.HandleFunc("/health", h.Health.Check).Methods(http.MethodGet)
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/api/products", h.Product.GetAll).Methods(http.MethodGet)
	r.HandleFunc("/api/products/{id}", h.Product.GetByID).Methods(http.MethodGet)
	r.HandleFunc("/api/vendors/password/otp", h.Vendor.RequestPasswordOTP).Methods(http.MethodPost)
	r.HandleFunc("/api/vendors/password/verify-otp", h.Vendor.VerifyPasswordOTP).Methods(http.MethodPost)
	r.HandleFunc("/api/vendors/password/reset", h.Vendor.ResetPassword).Methods(http.MethodPost)

	protected := r.NewRoute().Subrouter()
	protected.Use(middleware.Authenticate(auth, logger))

	// Admin routes are registered before /api/orders/{id} so "admin" is
	// never parsed as an order ID.
	admin := protected.PathPrefix("/api/orders/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/all", h.Order.ListAll).Methods(http.MethodGet)
	admin.HandleFunc("/bamboo-orders", h.Order.ListBamboo).Methods(http.MethodGet)
	admin.HandleFunc("/scopes/{scope}", h.Order.ListByScope).Methods(http.MethodGet)
	admin.HandleFunc("/vendors/{vendorId}", h.Order.ListByVendor).Methods(http.MethodGet)
	admin.HandleFunc("/status/{id}", h.Order.UpdateStatus).Methods(http.MethodPut)
	admin.HandleFunc("/{id}/delivery-otp", h.Order.IssueDeliveryOTP).Methods(http.MethodPost)

	protected.HandleFunc("/api/cart", h.Cart.Get).Methods(http.MethodGet)
	protected.HandleFunc("/api/cart", h.Cart.Clear).Methods(http.MethodDelete)
	protected.HandleFunc("/api/cart/items", h.Cart.AddItem).Methods(http.MethodPost)
	protected.HandleFunc("/api/cart/items/{productId}", h.Cart.UpdateItem).Methods(http.MethodPatch, http.MethodPut)
	protected.HandleFunc("/api/cart/items/{productId}", h.Cart.RemoveItem).Methods(http.MethodDelete)

	protected.HandleFunc("/api/orders", h.Order.Create).Methods(http.MethodPost)
	protected.HandleFunc("/api/orders", h.Order.List).Methods(http.MethodGet)
	protected.HandleFunc("/api/orders/verify-otp", h.Order.VerifyDeliveryOTP).Methods(http.MethodPost)
	protected.HandleFunc("/api/orders/{id}", h.Order.GetByID).Methods(http.MethodGet)
	protected.HandleFunc("/api/orders/{id}/cancel", h.Order.Cancel).Methods(http.MethodPost)
	protected.HandleFunc("/api/orders/{id}/status", h.Order.UpdateStatus).Methods(http.MethodPatch)

	// Apply middleware in order: Recovery -> Logging -> RequestID -> CORS -> Timeout
	var handler http.Handler = r
	handler = middleware.Timeout(requestTimeout)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
