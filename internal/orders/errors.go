package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart is returned when an order is placed from a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrDuplicateOrderNumber is returned by a Tx when the order number is already taken.
	ErrDuplicateOrderNumber = errors.New("order number already exists")

	ErrOrderNotFound          = errors.New("order not found")
	ErrInvalidStatus          = errors.New("unknown order or payment status")
	ErrNoStatusChange         = errors.New("no status change requested")
	ErrInvalidShippingAddress = errors.New("shipping address must be a non-empty object")
	ErrInvalidPaymentMethod   = errors.New("unsupported payment method")

	// ErrPaymentNotStarted is returned when a payment is confirmed with a
	// method the order's payment was not started with.
	ErrPaymentNotStarted = errors.New("payment was not started with this method")
)

// ProductUnavailableError means a cart line points at a product that was
// deleted or deactivated after it was added to the cart.
type ProductUnavailableError struct {
	ProductID int64
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %d is no longer available", e.ProductID)
}

// InsufficientStockError names the product whose stock cannot cover the cart line.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	if e.ProductName == "" {
		return fmt.Sprintf("insufficient stock for product %d", e.ProductID)
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

// InvalidTransitionError is returned when a user asks for a status change
// that the order's current status does not allow.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}
