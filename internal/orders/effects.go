package orders

import (
	"context"
	"fmt"

	"github.com/01moynul/yourqueen-golang/internal/models"
)

// applyEffects runs the writes that follow a successful order insert.
// Stock and points are moved with field-level increments in the store,
// never read-modify-write here.
func applyEffects(ctx context.Context, tx Tx, order *models.Order) error {
	for _, item := range order.Items {
		ok, err := tx.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("decrement stock for product %d: %w", item.ProductID, err)
		}
		if !ok {
			// Another checkout took the stock between our read and this write.
			return &InsufficientStockError{ProductID: item.ProductID, ProductName: item.ProductName, Requested: item.Quantity}
		}
	}

	if _, err := tx.ClearCart(ctx, order.UserID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	if points := LoyaltyPoints(order.TotalAmount); points > 0 {
		if err := tx.AddLoyaltyPoints(ctx, order.UserID, points); err != nil {
			return fmt.Errorf("credit loyalty points: %w", err)
		}
	}
	return nil
}
