package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// CatalogService defines read access to the product catalogue.
type CatalogService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)
}

// CartService defines operations on the caller's own cart. Every call
// returns the cart as it stands afterwards, with product details resolved.
type CartService interface {
	// GetCart returns the caller's cart, creating an empty one if needed.
	GetCart(ctx context.Context, p model.Principal) (*model.CartResponse, error)

	// AddItem adds quantity of a product, merging into an existing line.
	AddItem(ctx context.Context, p model.Principal, req *model.AddCartItemRequest) (*model.CartResponse, error)

	// UpdateItemQuantity replaces the quantity of an existing line.
	UpdateItemQuantity(ctx context.Context, p model.Principal, productID string, quantity int) (*model.CartResponse, error)

	// RemoveItem removes a line if present.
	RemoveItem(ctx context.Context, p model.Principal, productID string) (*model.CartResponse, error)

	// ClearCart removes every line.
	ClearCart(ctx context.Context, p model.Principal) (*model.CartResponse, error)
}

// OrderService defines the order lifecycle.
type OrderService interface {
	// CreateOrder converts the caller's cart into a pending order.
	CreateOrder(ctx context.Context, p model.Principal) (*model.Order, error)

	// GetOrder returns an order visible to the caller.
	GetOrder(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Order, error)

	// ListOrdersForCustomer returns the caller's own orders.
	ListOrdersForCustomer(ctx context.Context, p model.Principal, limit, offset int) ([]model.Order, error)

	// ListAllOrders returns orders matching filter. Administrators only.
	ListAllOrders(ctx context.Context, p model.Principal, filter model.OrderFilter) ([]model.Order, error)

	// ListOrdersByCategory returns orders with a line in any of categories. Administrators only.
	ListOrdersByCategory(ctx context.Context, p model.Principal, categories []string, limit, offset int) ([]model.Order, error)

	// ListOrdersByScope resolves a configured scope to categories. Administrators only.
	ListOrdersByScope(ctx context.Context, p model.Principal, scope string, limit, offset int) ([]model.Order, error)

	// ListOrdersByVendor scopes orders to a vendor's categories. Administrators only.
	ListOrdersByVendor(ctx context.Context, p model.Principal, vendorID string, limit, offset int) ([]model.Order, error)

	// UpdateOrderStatus advances or cancels an order. Administrators only.
	UpdateOrderStatus(ctx context.Context, p model.Principal, id uuid.UUID, status string) (*model.Order, error)

	// CancelOrder cancels an order and restores its stock.
	CancelOrder(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Order, error)

	// IssueDeliveryOTP replaces the delivery code of an order out for delivery. Administrators only.
	IssueDeliveryOTP(ctx context.Context, p model.Principal, id uuid.UUID) (*model.DeliveryOTPResponse, error)

	// VerifyDeliveryOTP consumes a delivery code and marks the order delivered.
	VerifyDeliveryOTP(ctx context.Context, p model.Principal, id uuid.UUID, code string) (*model.Order, error)
}

// VendorService defines vendor account recovery.
type VendorService interface {
	// RequestPasswordOTP issues and sends a password reset code.
	RequestPasswordOTP(ctx context.Context, email string) error

	// VerifyPasswordOTP checks a reset code without consuming it.
	VerifyPasswordOTP(ctx context.Context, email, code string) error

	// ResetPassword consumes a reset code and stores a new password.
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// dependency marks a storage failure as retryable for the caller.
func dependency(op string, err error) error {
	return model.NewDependencyError(op, err)
}

func requireCustomer(p model.Principal) error {
	if p.ID == "" {
		return model.ErrUnauthorised
	}
	return nil
}

func requireAdmin(p model.Principal) error {
	if !p.Admin {
		return model.ErrForbidden
	}
	return nil
}
