package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is an immutable line snapshot plus a mutable status envelope.
type Order struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	OwnerID      string          `json:"ownerId" db:"owner_id"`
	ContactEmail string          `json:"contactEmail,omitempty" db:"contact_email"`
	Lines        []OrderLine     `json:"lines"`
	Total        decimal.Decimal `json:"total" db:"total"`
	Status       OrderStatus     `json:"status" db:"status"`
	DeliveryOTP  *DeliveryOTP    `json:"-"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderLine is a line item copied from the catalogue at purchase time.
type OrderLine struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	ProductID string          `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"product_name"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Category  string          `json:"category" db:"category"`
}

// Subtotal returns UnitPrice * Quantity.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// DeliveryOTP is the single-use code that gates the Delivered transition.
type DeliveryOTP struct {
	Code      string    `db:"delivery_otp_code"`
	ExpiresAt time.Time `db:"delivery_otp_expires_at"`
}

// OrderFilter narrows administrative order listings.
type OrderFilter struct {
	OwnerID    string
	Status     OrderStatus
	Categories []string
	Limit      int
	Offset     int
}

// UpdateOrderStatusRequest is the payload for an administrative transition.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// VerifyDeliveryOTPRequest is the payload for delivery confirmation.
type VerifyDeliveryOTPRequest struct {
	OrderID string `json:"orderId"`
	Code    string `json:"code"`
}

// DeliveryOTPResponse acknowledges an OTP issuance without revealing the code.
type DeliveryOTPResponse struct {
	OrderID   uuid.UUID `json:"orderId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// OrderEvent describes a lifecycle change published to downstream consumers.
type OrderEvent struct {
	EventID    uuid.UUID   `json:"eventId"`
	Type       string      `json:"type"`
	OrderID    uuid.UUID   `json:"orderId"`
	OwnerID    string      `json:"ownerId"`
	Status     OrderStatus `json:"status"`
	PrevStatus OrderStatus `json:"prevStatus,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// Order event types
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderCancelled     = "order.cancelled"
	EventOrderDelivered     = "order.delivered"
)
