package orders

import (
	"context"

	"github.com/01moynul/yourqueen-golang/internal/models"
)

// StatusUpdate is an administrative status change. Empty fields are left alone.
type StatusUpdate struct {
	OrderStatus   string
	PaymentStatus string
}

// RequestStatusChange is the customer-facing transition. The only move a
// customer may make is pending -> cancelled.
func (s *Service) RequestStatusChange(ctx context.Context, userID, orderID int64, to string) (*models.Order, error) {
	if to != models.OrderStatusCancelled {
		order, err := s.GetOrder(ctx, userID, orderID)
		if err != nil {
			return nil, err
		}
		return nil, &InvalidTransitionError{From: order.OrderStatus, To: to}
	}
	return s.Cancel(ctx, userID, orderID)
}

// Cancel cancels a pending order owned by userID.
func (s *Service) Cancel(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	changed, err := s.store.CancelPendingOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, &InvalidTransitionError{From: order.OrderStatus, To: models.OrderStatusCancelled}
	}
	return order, nil
}

// AdminUpdateStatus sets order and/or payment status to any known value,
// with no check on the current state.
func (s *Service) AdminUpdateStatus(ctx context.Context, orderID int64, upd StatusUpdate) (*models.Order, error) {
	if upd.OrderStatus == "" && upd.PaymentStatus == "" {
		return nil, ErrNoStatusChange
	}
	if upd.OrderStatus != "" && !models.ValidOrderStatus(upd.OrderStatus) {
		return nil, ErrInvalidStatus
	}
	if upd.PaymentStatus != "" && !models.ValidPaymentStatus(upd.PaymentStatus) {
		return nil, ErrInvalidStatus
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, upd.OrderStatus, upd.PaymentStatus); err != nil {
		return nil, err
	}
	return s.store.GetOrder(ctx, orderID)
}

// StartPayment records the payment method picked for one of the user's orders.
// Only pending, unpaid orders can start a payment.
func (s *Service) StartPayment(ctx context.Context, userID, orderID int64, method string) (*models.Order, error) {
	if !models.ValidPaymentMethod(method) {
		return nil, ErrInvalidPaymentMethod
	}
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.OrderStatus != models.OrderStatusPending {
		return nil, &InvalidTransitionError{From: order.OrderStatus, To: models.OrderStatusProcessing}
	}
	if order.PaymentStatus == models.PaymentStatusCompleted {
		return nil, &InvalidTransitionError{From: order.PaymentStatus, To: models.PaymentStatusPending}
	}
	if err := s.store.SetPaymentMethod(ctx, orderID, method); err != nil {
		return nil, err
	}
	order.PaymentMethod = method
	order.PaymentStatus = models.PaymentStatusPending
	return order, nil
}

// ConfirmPayment records a successful payment for one of the user's orders:
// payment completed, order processing. The order must still be pending, not
// already paid, and its payment must have been started with method.
func (s *Service) ConfirmPayment(ctx context.Context, userID, orderID int64, method string) (*models.Order, error) {
	if !models.ValidPaymentMethod(method) {
		return nil, ErrInvalidPaymentMethod
	}
	changed, err := s.store.CompletePendingPayment(ctx, userID, orderID, method)
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if changed {
		return order, nil
	}

	if order.OrderStatus != models.OrderStatusPending {
		return nil, &InvalidTransitionError{From: order.OrderStatus, To: models.OrderStatusProcessing}
	}
	if order.PaymentStatus == models.PaymentStatusCompleted {
		return nil, &InvalidTransitionError{From: order.PaymentStatus, To: models.PaymentStatusCompleted}
	}
	return nil, ErrPaymentNotStarted
}
