package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product categories accepted by the catalog.
const (
	CategoryEarrings  = "earrings"
	CategoryNecklaces = "necklaces"
	CategorySets      = "sets"
)

// Product is the model for the 'products' table.
type Product struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Slug        string `json:"slug" db:"slug"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"`

	// --- Pricing & Stock ---
	Price         decimal.Decimal     `json:"price" db:"price"`
	DiscountPrice decimal.NullDecimal `json:"discountPrice" db:"discount_price"`
	StockQuantity int                 `json:"stockQuantity" db:"stock_quantity"`
	SalesCount    int                 `json:"salesCount" db:"sales_count"`
	IsActive      bool                `json:"isActive" db:"is_active"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// EffectivePrice is the discount price when one is set, otherwise the list price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice.Valid {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}
