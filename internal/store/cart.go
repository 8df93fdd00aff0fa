package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/01moynul/yourqueen-golang/internal/models"
	"github.com/shopspring/decimal"
)

//
// --- Cart repository ---
//

// CartLines returns the user's cart joined with live product data, newest
// line first.
func (s *MySQL) CartLines(ctx context.Context, userID int64) ([]models.CartLineView, error) {
	query := `
		SELECT ci.id, ci.product_id, p.name, p.price, p.discount_price, p.stock_quantity, p.is_active, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = ?
		ORDER BY ci.created_at DESC, ci.id DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}
	defer rows.Close()

	lines := []models.CartLineView{}
	for rows.Next() {
		var l models.CartLineView
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Name, &l.Price, &l.DiscountPrice, &l.StockQuantity, &l.IsActive, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		product := models.Product{Price: l.Price, DiscountPrice: l.DiscountPrice}
		l.CurrentPrice = product.EffectivePrice()
		l.ItemTotal = l.CurrentPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// AddToCart adds qty of a product, merging with an existing line. It reports
// whether a new line was created. The merged quantity may not exceed stock.
func (s *MySQL) AddToCart(ctx context.Context, userID, productID int64, qty int) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stock, err := lockActiveProductStock(ctx, tx, productID)
	if err != nil {
		return false, err
	}

	var existing int
	err = tx.QueryRowContext(ctx,
		"SELECT quantity FROM cart_items WHERE user_id = ? AND product_id = ? FOR UPDATE",
		userID, productID).Scan(&existing)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("read cart line: %w", err)
	}
	created := errors.Is(err, sql.ErrNoRows)

	if existing+qty > stock {
		return false, ErrInsufficientStock
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			quantity = quantity + VALUES(quantity),
			updated_at = VALUES(updated_at)`,
		userID, productID, qty, now, now)
	if err != nil {
		return false, fmt.Errorf("upsert cart line: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return created, nil
}

// SetCartQuantity replaces the quantity of an existing cart line.
func (s *MySQL) SetCartQuantity(ctx context.Context, userID, productID int64, qty int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stock, err := lockActiveProductStock(ctx, tx, productID)
	if err != nil {
		return err
	}
	if qty > stock {
		return ErrInsufficientStock
	}

	result, err := tx.ExecContext(ctx,
		"UPDATE cart_items SET quantity = ?, updated_at = NOW() WHERE user_id = ? AND product_id = ?",
		qty, userID, productID)
	if err != nil {
		return fmt.Errorf("update cart line: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// 0 also means "same quantity"; only a missing line is an error.
		var one int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM cart_items WHERE user_id = ? AND product_id = ?", userID, productID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *MySQL) RemoveCartLine(ctx context.Context, userID, productID int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = ? AND product_id = ?", userID, productID)
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
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

func (s *MySQL) ClearCart(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// lockActiveProductStock returns the stock of an active product and locks
// its row. Missing or inactive products yield ErrProductInactive.
func lockActiveProductStock(ctx context.Context, q queryer, productID int64) (int, error) {
	var stock int
	err := q.QueryRowContext(ctx,
		"SELECT stock_quantity FROM products WHERE id = ? AND is_active = 1 FOR UPDATE",
		productID).Scan(&stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrProductInactive
		}
		return 0, fmt.Errorf("read product stock: %w", err)
	}
	return stock, nil
}
