package orders

import (
	"encoding/json"
	"time"

	"github.com/01moynul/yourqueen-golang/internal/models"
	"github.com/shopspring/decimal"
)

var (
	// ShippingFee is charged once per order, whatever the weight or destination.
	ShippingFee = decimal.NewFromInt(200)

	// TaxRate is the flat rate applied to the order subtotal.
	TaxRate = decimal.RequireFromString("0.13")

	pointsDivisor = decimal.NewFromInt(100)
)

// PlaceOrderInput is what the caller supplies on top of the cart.
type PlaceOrderInput struct {
	ShippingAddress json.RawMessage
	PaymentMethod   string
	Notes           string
}

func (in PlaceOrderInput) validate() error {
	var addr map[string]any
	if err := json.Unmarshal(in.ShippingAddress, &addr); err != nil || len(addr) == 0 {
		return ErrInvalidShippingAddress
	}
	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return ErrInvalidPaymentMethod
	}
	return nil
}

// Compile prices a cart snapshot and returns the order to persist.
// It fails with *ProductUnavailableError for a line whose product is gone or
// inactive, and with *InsufficientStockError if any line asks for more than
// the product currently holds. No partial order is ever produced.
func Compile(userID int64, lines []SnapshotLine, in PlaceOrderInput, now time.Time) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(lines))
	subtotal := decimal.Zero

	for _, line := range lines {
		p := line.Product
		if p == nil || !p.IsActive {
			return nil, &ProductUnavailableError{ProductID: line.ProductID}
		}
		if p.StockQuantity < line.Quantity {
			return nil, &InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   line.Quantity,
				Available:   p.StockQuantity,
			}
		}

		price := p.EffectivePrice()
		lineTotal := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)

		items = append(items, models.OrderItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductPrice: price,
			Quantity:     line.Quantity,
			Subtotal:     lineTotal,
		})
	}

	tax := subtotal.Mul(TaxRate).Round(2)
	discount := decimal.Zero

	order := &models.Order{
		UserID:          userID,
		OrderNumber:     NewOrderNumber(now),
		Subtotal:        subtotal,
		ShippingFee:     ShippingFee,
		Tax:             tax,
		Discount:        discount,
		TotalAmount:     subtotal.Add(ShippingFee).Add(tax).Sub(discount),
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   models.PaymentStatusPending,
		OrderStatus:     models.OrderStatusPending,
		ShippingAddress: in.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
		Items:           items,
	}
	if in.Notes != "" {
		notes := in.Notes
		order.Notes = &notes
	}
	return order, nil
}

// LoyaltyPoints returns the points earned for an order total: one per 100 units.
func LoyaltyPoints(total decimal.Decimal) int64 {
	if total.IsNegative() {
		return 0
	}
	return total.Div(pointsDivisor).Floor().IntPart()
}
