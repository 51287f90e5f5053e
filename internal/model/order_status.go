package model

import "strings"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusShipped        OrderStatus = "shipped"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// forward maps each state to the only state an administrator may advance it to.
// OutForDelivery -> Delivered is absent: it requires the delivery OTP.
var forward = map[OrderStatus]OrderStatus{
	StatusPending:   StatusConfirmed,
	StatusConfirmed: StatusShipped,
	StatusShipped:   StatusOutForDelivery,
}

var allStatuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusShipped,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
}

// ParseOrderStatus accepts canonical names as well as forms such as
// "OutForDelivery", "out-for-delivery" or "SHIPPED".
func ParseOrderStatus(s string) (OrderStatus, error) {
	key := normaliseStatus(s)
	if key == "" {
		return "", ErrInvalidStatus
	}
	for _, st := range allStatuses {
		if normaliseStatus(string(st)) == key {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

func normaliseStatus(s string) string {
	r := strings.NewReplacer("_", "", "-", "", " ", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, st := range allStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// String returns the wire representation.
func (s OrderStatus) String() string {
	return string(s)
}

// CheckAdvance validates an administrator-driven forward move from s to next.
func (s OrderStatus) CheckAdvance(next OrderStatus) error {
	if s.IsTerminal() {
		return NewDomainError(ErrCodeInvalidTransition, "Order is in a terminal state: "+string(s))
	}
	if next == StatusDelivered {
		return NewDomainError(ErrCodeInvalidTransition, "Delivery must be confirmed with the delivery OTP")
	}
	if forward[s] != next {
		return NewDomainError(ErrCodeInvalidTransition, "Cannot move order from "+string(s)+" to "+string(next))
	}
	return nil
}

// CheckCancel validates a cancellation request. Customers may cancel before
// shipment; administrators may cancel any non-terminal order.
func (s OrderStatus) CheckCancel(admin bool) error {
	if s.IsTerminal() {
		return NewDomainError(ErrCodeInvalidTransition, "Order is in a terminal state: "+string(s))
	}
	if admin {
		return nil
	}
	if s == StatusPending || s == StatusConfirmed {
		return nil
	}
	return ErrTooLateToCancel
}
