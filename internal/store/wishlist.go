package store

import (
	"context"
	"fmt"
	"time"

	"github.com/01moynul/yourqueen-golang/internal/models"
)

//
// --- Wishlist repository ---
//

// Wishlist returns the user's saved products, most recently added first.
// Inactive products stay listed so the shopper can see they went away.
func (s *MySQL) Wishlist(ctx context.Context, userID int64) ([]models.WishlistItemView, error) {
	query := `
		SELECT w.id, w.product_id, p.name, p.slug, p.price, p.discount_price, p.stock_quantity, p.is_active, w.created_at
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = ?
		ORDER BY w.created_at DESC, w.id DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query wishlist: %w", err)
	}
	defer rows.Close()

	items := []models.WishlistItemView{}
	for rows.Next() {
		var it models.WishlistItemView
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Name, &it.Slug, &it.Price, &it.DiscountPrice,
			&it.StockQuantity, &it.IsActive, &it.AddedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddToWishlist saves an active product for the user. A product can only be
// saved once.
func (s *MySQL) AddToWishlist(ctx context.Context, userID, productID int64) (*models.WishlistItem, error) {
	if _, err := s.GetProduct(ctx, productID, false); err != nil {
		return nil, err
	}

	item := &models.WishlistItem{UserID: userID, ProductID: productID, CreatedAt: time.Now()}
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO wishlist_items (user_id, product_id, created_at) VALUES (?, ?, ?)",
		item.UserID, item.ProductID, item.CreatedAt)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil, ErrAlreadyWishlisted
		}
		return nil, fmt.Errorf("insert wishlist item: %w", err)
	}
	if item.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("read wishlist item id: %w", err)
	}
	return item, nil
}

// RemoveWishlistItem deletes one of the user's wishlist entries by its id.
func (s *MySQL) RemoveWishlistItem(ctx context.Context, userID, itemID int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM wishlist_items WHERE id = ? AND user_id = ?", itemID, userID)
	if err != nil {
		return fmt.Errorf("delete wishlist item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQL) InWishlist(ctx context.Context, userID, productID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM wishlist_items WHERE user_id = ? AND product_id = ?",
		userID, productID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check wishlist: %w", err)
	}
	return n > 0, nil
}
