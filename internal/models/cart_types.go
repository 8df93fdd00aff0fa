package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem defines the struct for the 'cart_items' table.
// There is at most one row per (user_id, product_id).
type CartItem struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	ProductID int64     `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CartLineView is a cart line joined with the live product it points to.
type CartLineView struct {
	ID            int64               `json:"id"`
	ProductID     int64               `json:"productId"`
	Name          string              `json:"name"`
	Price         decimal.Decimal     `json:"price"`
	DiscountPrice decimal.NullDecimal `json:"discountPrice"`
	CurrentPrice  decimal.Decimal     `json:"currentPrice"`
	StockQuantity int                 `json:"stockQuantity"`
	IsActive      bool                `json:"isActive"`
	Quantity      int                 `json:"quantity"`
	ItemTotal     decimal.Decimal     `json:"itemTotal"`
}
