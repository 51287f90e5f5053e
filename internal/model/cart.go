package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity is the largest quantity a single cart line may hold,
// bounded by the INTEGER quantity column.
const MaxLineQuantity = math.MaxInt32

// Cart is the mutable pre-purchase basket of a single customer.
type Cart struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	OwnerID   string     `json:"ownerId" db:"owner_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// CartItem is a cart line. UnitPrice and Category are captured when the
// line is first added and are not re-synced with the catalogue.
type CartItem struct {
	ProductID string          `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Category  string          `json:"category" db:"category"`
	AddedAt   time.Time       `json:"addedAt" db:"added_at"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// AddCartItemRequest is the payload for adding a product to the cart.
type AddCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity,omitempty"`
}

// UpdateCartItemRequest is the payload for setting a line quantity.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse is a cart with product details resolved per line.
type CartResponse struct {
	ID       uuid.UUID          `json:"id"`
	OwnerID  string             `json:"ownerId"`
	Items    []CartItemResponse `json:"items"`
	Subtotal decimal.Decimal    `json:"subtotal"`
}

// CartItemResponse is a cart line plus the current catalogue record, when it still exists.
type CartItemResponse struct {
	CartItem
	Product *Product `json:"product,omitempty"`
}
