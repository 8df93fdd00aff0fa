package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WishlistItem is the model for the 'wishlist_items' table.
// A product appears at most once per user.
type WishlistItem struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	ProductID int64     `json:"productId" db:"product_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// WishlistItemView is a wishlist entry joined with the product it saves.
type WishlistItemView struct {
	ID            int64               `json:"id"`
	ProductID     int64               `json:"productId"`
	Name          string              `json:"name"`
	Slug          string              `json:"slug"`
	Price         decimal.Decimal     `json:"price"`
	DiscountPrice decimal.NullDecimal `json:"discountPrice"`
	StockQuantity int                 `json:"stockQuantity"`
	IsActive      bool                `json:"isActive"`
	AddedAt       time.Time           `json:"addedAt"`
}
