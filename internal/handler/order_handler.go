package handler

import (
	"net/http"
	"strings"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// BambooScope is the named scope served by GET /api/orders/admin/bamboo-orders.
const BambooScope = "bamboo"

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders. The order is built from the caller's cart.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.CreateOrder(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /api/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orders, err := h.service.ListOrdersForCustomer(r.Context(), principal(r), limit, offset)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id}.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.GetOrder(r.Context(), principal(r), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Cancel handles POST /api/orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.CancelOrder(r.Context(), principal(r), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /api/orders/{id}/status and
// PUT /api/orders/admin/status/{id}.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.UpdateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.UpdateOrderStatus(r.Context(), principal(r), id, req.Status)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// VerifyDeliveryOTP handles POST /api/orders/verify-otp.
func (h *OrderHandler) VerifyDeliveryOTP(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyDeliveryOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(req.OrderID))
	if err != nil {
		writeError(w, r, model.Validationf("invalid orderId"), h.logger)
		return
	}

	order, err := h.service.VerifyDeliveryOTP(r.Context(), principal(r), id, req.Code)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// IssueDeliveryOTP handles POST /api/orders/admin/{id}/delivery-otp.
func (h *OrderHandler) IssueDeliveryOTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	resp, err := h.service.IssueDeliveryOTP(r.Context(), principal(r), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusAccepted, resp)
}

// ListAll handles GET /api/orders/admin/all?status=&category=&owner=.
// category may repeat or be comma separated.
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	q := r.URL.Query()
	filter := model.OrderFilter{
		OwnerID:    strings.TrimSpace(q.Get("owner")),
		Categories: splitList(q["category"]),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := q.Get("status"); raw != "" {
		status, err := model.ParseOrderStatus(raw)
		if err != nil {
			writeError(w, r, err, h.logger)
			return
		}
		filter.Status = status
	}

	orders, err := h.service.ListAllOrders(r.Context(), principal(r), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// ListBamboo handles GET /api/orders/admin/bamboo-orders.
func (h *OrderHandler) ListBamboo(w http.ResponseWriter, r *http.Request) {
	h.listScope(w, r, BambooScope)
}

// ListByScope handles GET /api/orders/admin/scopes/{scope}.
func (h *OrderHandler) ListByScope(w http.ResponseWriter, r *http.Request) {
	h.listScope(w, r, mux.Vars(r)["scope"])
}

func (h *OrderHandler) listScope(w http.ResponseWriter, r *http.Request, scope string) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orders, err := h.service.ListOrdersByScope(r.Context(), principal(r), scope, limit, offset)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// ListByVendor handles GET /api/orders/admin/vendors/{vendorId}.
func (h *OrderHandler) ListByVendor(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orders, err := h.service.ListOrdersByVendor(r.Context(), principal(r), mux.Vars(r)["vendorId"], limit, offset)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
