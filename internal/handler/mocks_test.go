package handler

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCatalogService is a mock implementation of CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockCatalogService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) cart(args mock.Arguments) (*model.CartResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) GetCart(ctx context.Context, p model.Principal) (*model.CartResponse, error) {
	return m.cart(m.Called(ctx, p))
}

func (m *MockCartService) AddItem(ctx context.Context, p model.Principal, req *model.AddCartItemRequest) (*model.CartResponse, error) {
	return m.cart(m.Called(ctx, p, req))
}

func (m *MockCartService) UpdateItemQuantity(ctx context.Context, p model.Principal, productID string, quantity int) (*model.CartResponse, error) {
	return m.cart(m.Called(ctx, p, productID, quantity))
}

func (m *MockCartService) RemoveItem(ctx context.Context, p model.Principal, productID string) (*model.CartResponse, error) {
	return m.cart(m.Called(ctx, p, productID))
}

func (m *MockCartService) ClearCart(ctx context.Context, p model.Principal) (*model.CartResponse, error) {
	return m.cart(m.Called(ctx, p))
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) order(args mock.Arguments) (*model.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) orders(args mock.Arguments) ([]model.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) CreateOrder(ctx context.Context, p model.Principal) (*model.Order, error) {
	return m.order(m.Called(ctx, p))
}

func (m *MockOrderService) GetOrder(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Order, error) {
	return m.order(m.Called(ctx, p, id))
}

func (m *MockOrderService) ListOrdersForCustomer(ctx context.Context, p model.Principal, limit, offset int) ([]model.Order, error) {
	return m.orders(m.Called(ctx, p, limit, offset))
}

func (m *MockOrderService) ListAllOrders(ctx context.Context, p model.Principal, filter model.OrderFilter) ([]model.Order, error) {
	return m.orders(m.Called(ctx, p, filter))
}

func (m *MockOrderService) ListOrdersByCategory(ctx context.Context, p model.Principal, categories []string, limit, offset int) ([]model.Order, error) {
	return m.orders(m.Called(ctx, p, categories, limit, offset))
}

func (m *MockOrderService) ListOrdersByScope(ctx context.Context, p model.Principal, scope string, limit, offset int) ([]model.Order, error) {
	return m.orders(m.Called(ctx, p, scope, limit, offset))
}

func (m *MockOrderService) ListOrdersByVendor(ctx context.Context, p model.Principal, vendorID string, limit, offset int) ([]model.Order, error) {
	return m.orders(m.Called(ctx, p, vendorID, limit, offset))
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, p model.Principal, id uuid.UUID, status string) (*model.Order, error) {
	return m.order(m.Called(ctx, p, id, status))
}

func (m *MockOrderService) CancelOrder(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Order, error) {
	return m.order(m.Called(ctx, p, id))
}

func (m *MockOrderService) IssueDeliveryOTP(ctx context.Context, p model.Principal, id uuid.UUID) (*model.DeliveryOTPResponse, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeliveryOTPResponse), args.Error(1)
}

func (m *MockOrderService) VerifyDeliveryOTP(ctx context.Context, p model.Principal, id uuid.UUID, code string) (*model.Order, error) {
	return m.order(m.Called(ctx, p, id, code))
}

// MockVendorService is a mock implementation of VendorService.
type MockVendorService struct {
	mock.Mock
}

func (m *MockVendorService) RequestPasswordOTP(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockVendorService) VerifyPasswordOTP(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

func (m *MockVendorService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return m.Called(ctx, email, code, newPassword).Error(0)
}

// MockPinger is a mock implementation of Pinger.
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
