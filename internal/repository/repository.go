package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProductRepository defines the interface for catalogue data access operations.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// AdjustStock atomically applies delta to the stock of a product and
	// returns the updated record. Decrements require the product to be
	// available and never take stock below zero. Returns nil when the
	// product does not exist or the condition does not hold.
	AdjustStock(ctx context.Context, tx pgx.Tx, id string, delta int) (*model.Product, error)

	// Upsert inserts or replaces a catalogue record.
	Upsert(ctx context.Context, product *model.Product) error
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// GetOrCreate returns the cart of an owner, creating an empty one if needed.
	GetOrCreate(ctx context.Context, ownerID string) (*model.Cart, error)

	// GetByOwner returns the cart of an owner with its lines, or nil.
	GetByOwner(ctx context.Context, ownerID string) (*model.Cart, error)

	// GetForUpdate returns the cart of an owner with its lines, holding a row
	// lock for the lifetime of tx. Returns nil when the owner has no cart.
	GetForUpdate(ctx context.Context, tx pgx.Tx, ownerID string) (*model.Cart, error)

	// UpsertItem adds a line, or increases the quantity of an existing one
	// while keeping its original price snapshot. Reports false, leaving the
	// line untouched, when the merged quantity would exceed maxQuantity.
	UpsertItem(ctx context.Context, cartID uuid.UUID, item model.CartItem, maxQuantity int) (bool, error)

	// SetItemQuantity replaces the quantity of a line. Reports false when
	// the line does not exist.
	SetItemQuantity(ctx context.Context, cartID uuid.UUID, productID string, quantity int) (bool, error)

	// RemoveItem deletes a line. Removing a missing line is not an error.
	RemoveItem(ctx context.Context, cartID uuid.UUID, productID string) error

	// Clear deletes every line of a cart. tx may be nil.
	Clear(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderLines inserts multiple order lines within the provided transaction.
	CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error

	// GetByID retrieves an order by its ID along with its lines.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetForUpdate retrieves an order and its lines, holding a row lock for
	// the lifetime of tx.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// ListByOwner retrieves the orders of one owner, newest first.
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]model.Order, error)

	// List retrieves orders matching filter, newest first.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// UpdateStatus moves an order from one status to another only if it is
	// still in from. Leaving OutForDelivery clears any delivery code.
	// tx may be nil. Reports false when the order was not in from.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to model.OrderStatus, now time.Time) (bool, error)

	// SetDeliveryOTP stores a delivery code on an order that is out for
	// delivery, replacing any previous code. tx may be nil. Reports false
	// when the order is not out for delivery.
	SetDeliveryOTP(ctx context.Context, tx pgx.Tx, id uuid.UUID, otp model.DeliveryOTP, now time.Time) (bool, error)

	// ConsumeDeliveryOTP marks an order delivered if code matches a live
	// delivery code, and clears the code. Reports false otherwise.
	ConsumeDeliveryOTP(ctx context.Context, id uuid.UUID, code string, now time.Time) (bool, error)
}

// VendorRepository defines the interface for vendor data access operations.
type VendorRepository interface {
	// GetByID retrieves a vendor by ID.
	GetByID(ctx context.Context, id string) (*model.Vendor, error)

	// GetByEmail retrieves a vendor by email, case-insensitively.
	GetByEmail(ctx context.Context, email string) (*model.Vendor, error)

	// Create inserts a vendor.
	Create(ctx context.Context, vendor *model.Vendor) error

	// SetResetOTP stores a password reset code, replacing any previous one
	// and resetting its failed attempt count.
	SetResetOTP(ctx context.Context, vendorID string, code string, expiresAt time.Time) error

	// CheckResetOTP reports whether code is the live reset code for email.
	// Wrong codes are counted, and the code is discarded after
	// model.MaxResetOTPAttempts of them.
	CheckResetOTP(ctx context.Context, email, code string, now time.Time) (bool, error)

	// ConsumeResetOTP replaces the password hash if code is the live reset
	// code for email, and clears the code. Reports false otherwise, counting
	// the attempt like CheckResetOTP.
	ConsumeResetOTP(ctx context.Context, email, code string, now time.Time, passwordHash string) (bool, error)
}
