package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/01moynul/yourqueen-golang/internal/models"
)

const maxOrderNumberAttempts = 3

// Service implements order placement and the order status transitions.
type Service struct {
	store Store
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder turns the user's cart into an order.
//
// The snapshot read, the order insert and the three side effects (stock and
// sales counters, cart clear, loyalty points) share one transaction, so the
// caller either gets a fully applied order or an error and no order at all.
func (s *Service) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var placed *models.Order
	err := s.store.InTx(ctx, func(tx Tx) error {
		lines, err := readSnapshot(ctx, tx, userID)
		if err != nil {
			return err
		}

		order, err := Compile(userID, lines, in, s.now())
		if err != nil {
			return err
		}

		if err := s.insertOrder(ctx, tx, order); err != nil {
			return err
		}

		if err := applyEffects(ctx, tx, order); err != nil {
			return err
		}

		placed = order
		return nil
	})
	if err != nil {
		if !isBusinessError(err) {
			log.Printf("order placement failed for user %d: %v", userID, err)
		}
		return nil, err
	}

	log.Printf("order %s placed by user %d (total %s)", placed.OrderNumber, userID, placed.TotalAmount.StringFixed(2))
	return placed, nil
}

// insertOrder persists the order, drawing a fresh order number whenever the
// previous one collides with an existing order.
func (s *Service) insertOrder(ctx context.Context, tx Tx, order *models.Order) error {
	var err error
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		if attempt > 1 {
			order.OrderNumber = NewOrderNumber(s.now())
		}
		err = tx.InsertOrder(ctx, order)
		if !errors.Is(err, ErrDuplicateOrderNumber) {
			return err
		}
		log.Printf("order number %s already taken, retrying (%d/%d)", order.OrderNumber, attempt, maxOrderNumberAttempts)
	}
	return fmt.Errorf("insert order after %d attempts: %w", maxOrderNumberAttempts, err)
}

// readSnapshot loads the cart and refuses it if it is empty or points at a
// product that is gone or inactive.
func readSnapshot(ctx context.Context, tx Tx, userID int64) ([]SnapshotLine, error) {
	lines, err := tx.CartSnapshot(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range lines {
		if line.Product == nil || !line.Product.IsActive {
			return nil, &ProductUnavailableError{ProductID: line.ProductID}
		}
	}
	return lines, nil
}

// GetOrder returns one of the user's orders.
func (s *Service) GetOrder(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders returns the user's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.store.ListOrdersByUser(ctx, userID)
}

// AdminListOrders returns a page of all orders and the total match count.
func (s *Service) AdminListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int, error) {
	if filter.Status != "" && !models.ValidOrderStatus(filter.Status) {
		return nil, 0, ErrInvalidStatus
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.store.ListOrders(ctx, filter)
}

func isBusinessError(err error) bool {
	var unavailable *ProductUnavailableError
	var stock *InsufficientStockError
	return errors.Is(err, ErrEmptyCart) ||
		errors.As(err, &unavailable) ||
		errors.As(err, &stock)
}
