package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testOrder(status model.OrderStatus) *model.Order {
	return &model.Order{
		ID:      uuid.New(),
		OwnerID: customer.ID,
		Status:  status,
		Total:   decimal.RequireFromString("20.00"),
		Lines: []model.OrderLine{
			{ProductID: "P001", Name: "Product 1", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00"), Category: "bamboo"},
		},
		DeliveryOTP: &model.DeliveryOTP{Code: "482193", ExpiresAt: time.Now().Add(time.Minute)},
	}
}

func TestOrderHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
		expectedCode   string
	}{
		{name: "Created", expectedStatus: http.StatusCreated},
		{name: "Empty cart", serviceErr: model.ErrEmptyCart, expectedStatus: http.StatusBadRequest, expectedCode: model.ErrCodeEmptyCart},
		{name: "Out of stock", serviceErr: model.NewDomainError(model.ErrCodeOutOfStock, "Insufficient stock for product P001"), expectedStatus: http.StatusConflict, expectedCode: model.ErrCodeOutOfStock},
		{name: "Unavailable", serviceErr: model.ErrUnavailable, expectedStatus: http.StatusConflict, expectedCode: model.ErrCodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, zerolog.Nop())

			var order *model.Order
			if tt.serviceErr == nil {
				order = testOrder(model.StatusPending)
			}
			mockService.On("CreateOrder", mock.Anything, customer).Return(order, tt.serviceErr)

			w := httptest.NewRecorder()
			handler.Create(w, newRequest(http.MethodPost, "/api/orders", "", &customer, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
			} else {
				assert.Contains(t, w.Body.String(), `"status":"pending"`)
				assert.NotContains(t, w.Body.String(), "482193", "delivery code must never be serialised")
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_GetByID(t *testing.T) {
	order := testOrder(model.StatusPending)

	tests := []struct {
		name           string
		id             string
		setup          func(m *MockOrderService)
		expectedStatus int
	}{
		{
			name: "Owner",
			id:   order.ID.String(),
			setup: func(m *MockOrderService) {
				m.On("GetOrder", mock.Anything, customer, order.ID).Return(order, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Forbidden",
			id:   order.ID.String(),
			setup: func(m *MockOrderService) {
				m.On("GetOrder", mock.Anything, customer, order.ID).Return(nil, model.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Malformed ID",
			id:             "not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, zerolog.Nop())
			if tt.setup != nil {
				tt.setup(mockService)
			}

			w := httptest.NewRecorder()
			handler.GetByID(w, newRequest(http.MethodGet, "/api/orders/"+tt.id, "", &customer, map[string]string{"id": tt.id}))

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_List(t *testing.T) {
	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService, zerolog.Nop())
	mockService.On("ListOrdersForCustomer", mock.Anything, customer, 5, 0).Return([]model.Order{*testOrder(model.StatusPending)}, nil)

	w := httptest.NewRecorder()
	handler.List(w, newRequest(http.MethodGet, "/api/orders?limit=5", "", &customer, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got []model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 1)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		body           string
		status         string
		serviceErr     error
		expectedStatus int
	}{
		{name: "Advance", body: `{"status":"confirmed"}`, status: "confirmed", expectedStatus: http.StatusOK},
		{name: "Skip rejected", body: `{"status":"shipped"}`, status: "shipped", serviceErr: model.ErrInvalidTransition, expectedStatus: http.StatusConflict},
		{name: "Unknown status", body: `{"status":"lost"}`, status: "lost", serviceErr: model.ErrInvalidStatus, expectedStatus: http.StatusBadRequest},
		{name: "Invalid JSON", body: `status=confirmed`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, zerolog.Nop())
			if tt.status != "" {
				var order *model.Order
				if tt.serviceErr == nil {
					order = testOrder(model.StatusConfirmed)
				}
				mockService.On("UpdateOrderStatus", mock.Anything, admin, id, tt.status).Return(order, tt.serviceErr)
			}

			w := httptest.NewRecorder()
			handler.UpdateStatus(w, newRequest(http.MethodPut, "/api/orders/admin/status/"+id.String(), tt.body, &admin, map[string]string{"id": id.String()}))

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_Cancel(t *testing.T) {
	id := uuid.New()
	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService, zerolog.Nop())
	mockService.On("CancelOrder", mock.Anything, customer, id).Return(nil, model.ErrTooLateToCancel)

	w := httptest.NewRecorder()
	handler.Cancel(w, newRequest(http.MethodPost, "/api/orders/"+id.String()+"/cancel", "", &customer, map[string]string{"id": id.String()}))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, model.ErrCodeTooLateToCancel, decodeError(t, w).Error)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_VerifyDeliveryOTP(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		body           string
		setup          func(m *MockOrderService)
		expectedStatus int
	}{
		{
			name: "Delivered",
			body: `{"orderId":"` + id.String() + `","code":"482193"}`,
			setup: func(m *MockOrderService) {
				m.On("VerifyDeliveryOTP", mock.Anything, customer, id, "482193").Return(testOrder(model.StatusDelivered), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Rejected code",
			body: `{"orderId":"` + id.String() + `","code":"000000"}`,
			setup: func(m *MockOrderService) {
				m.On("VerifyDeliveryOTP", mock.Anything, customer, id, "000000").Return(nil, model.ErrInvalidOrExpiredOTP)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Malformed order ID",
			body:           `{"orderId":"abc","code":"482193"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, zerolog.Nop())
			if tt.setup != nil {
				tt.setup(mockService)
			}

			w := httptest.NewRecorder()
			handler.VerifyDeliveryOTP(w, newRequest(http.MethodPost, "/api/orders/verify-otp", tt.body, &customer, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_IssueDeliveryOTP(t *testing.T) {
	id := uuid.New()
	expiresAt := time.Date(2026, 3, 14, 9, 40, 0, 0, time.UTC)
	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService, zerolog.Nop())
	mockService.On("IssueDeliveryOTP", mock.Anything, admin, id).Return(&model.DeliveryOTPResponse{OrderID: id, ExpiresAt: expiresAt}, nil)

	w := httptest.NewRecorder()
	handler.IssueDeliveryOTP(w, newRequest(http.MethodPost, "/api/orders/admin/"+id.String()+"/delivery-otp", "", &admin, map[string]string{"id": id.String()}))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"expiresAt":"2026-03-14T09:40:00Z"`)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_AdminListings(t *testing.T) {
	orders := []model.Order{*testOrder(model.StatusShipped)}

	t.Run("All with filters", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, zerolog.Nop())
		mockService.On("ListAllOrders", mock.Anything, admin, model.OrderFilter{
			OwnerID:    "user-1",
			Status:     model.StatusOutForDelivery,
			Categories: []string{"bamboo", "kitchen", "garden"},
			Limit:      10,
		}).Return(orders, nil)

		w := httptest.NewRecorder()
		handler.ListAll(w, newRequest(http.MethodGet,
			"/api/orders/admin/all?status=OutForDelivery&category=bamboo,kitchen&category=garden&owner=user-1&limit=10", "", &admin, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("All with unknown status", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, zerolog.Nop())

		w := httptest.NewRecorder()
		handler.ListAll(w, newRequest(http.MethodGet, "/api/orders/admin/all?status=lost", "", &admin, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Bamboo orders", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, zerolog.Nop())
		mockService.On("ListOrdersByScope", mock.Anything, admin, BambooScope, 0, 0).Return(orders, nil)

		w := httptest.NewRecorder()
		handler.ListBamboo(w, newRequest(http.MethodGet, "/api/orders/admin/bamboo-orders", "", &admin, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Named scope", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, zerolog.Nop())
		mockService.On("ListOrdersByScope", mock.Anything, admin, "garden", 0, 0).
			Return(nil, model.NewDomainError(model.ErrCodeNotFound, `Unknown order scope "garden"`))

		w := httptest.NewRecorder()
		handler.ListByScope(w, newRequest(http.MethodGet, "/api/orders/admin/scopes/garden", "", &admin, map[string]string{"scope": "garden"}))

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Vendor", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, zerolog.Nop())
		mockService.On("ListOrdersByVendor", mock.Anything, admin, "V1", 0, 20).Return(orders, nil)

		w := httptest.NewRecorder()
		handler.ListByVendor(w, newRequest(http.MethodGet, "/api/orders/admin/vendors/V1?offset=20", "", &admin, map[string]string{"vendorId": "V1"}))

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", "", " c "}))
	assert.Nil(t, splitList(nil))
}
