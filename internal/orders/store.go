package orders

import (
	"context"

	"github.com/01moynul/yourqueen-golang/internal/models"
)

// SnapshotLine is one cart line resolved against the live product row.
// Product is nil when the referenced product no longer exists.
type SnapshotLine struct {
	CartItemID int64
	ProductID  int64
	Quantity   int
	Product    *models.Product
}

// OrderFilter narrows the admin order listing.
type OrderFilter struct {
	Status string
	Page   int
	Limit  int
}

// Tx is the set of writes performed while placing an order.
// Every method runs inside the transaction opened by Store.InTx.
type Tx interface {
	// CartSnapshot returns the user's cart lines ordered by line id and
	// locks the referenced product rows until the transaction ends.
	CartSnapshot(ctx context.Context, userID int64) ([]SnapshotLine, error)

	// InsertOrder stores the order and its items and fills in their ids.
	// A taken order number yields ErrDuplicateOrderNumber.
	InsertOrder(ctx context.Context, order *models.Order) error

	// DecrementStock subtracts qty from stock and adds it to the sales
	// counter in one statement. It reports false when stock < qty.
	DecrementStock(ctx context.Context, productID int64, qty int) (bool, error)

	ClearCart(ctx context.Context, userID int64) (int64, error)
	AddLoyaltyPoints(ctx context.Context, userID int64, points int64) error
}

// Store is the persistence the order service depends on.
type Store interface {
	// InTx runs fn in a transaction, committing only if fn returns nil.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int, error)

	// CancelPendingOrder cancels the order only if it belongs to userID and
	// is still pending. It reports whether a row changed.
	CancelPendingOrder(ctx context.Context, userID, orderID int64) (bool, error)

	// UpdateOrderStatus sets whichever of the two statuses is non-empty.
	UpdateOrderStatus(ctx context.Context, orderID int64, orderStatus, paymentStatus string) error

	// SetPaymentMethod records the method chosen when a payment is started
	// and resets the payment status to pending.
	SetPaymentMethod(ctx context.Context, orderID int64, method string) error

	// CompletePendingPayment marks the payment completed and moves the order
	// to processing, only if the order belongs to userID, is still pending,
	// is not paid yet and was started with method. It reports whether a row
	// changed.
	CompletePendingPayment(ctx context.Context, userID, orderID int64, method string) (bool, error)
}
