package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/01moynul/yourqueen-golang/internal/models"
	"github.com/01moynul/yourqueen-golang/internal/orders"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, order_number, subtotal, shipping_fee, tax, discount, total_amount,
	payment_method, payment_status, order_status, shipping_address, notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		o       models.Order
		address []byte
		notes   sql.NullString
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.OrderNumber, &o.Subtotal, &o.ShippingFee, &o.Tax, &o.Discount, &o.TotalAmount,
		&o.PaymentMethod, &o.PaymentStatus, &o.OrderStatus, &address, &notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.ShippingAddress = address
	if notes.Valid {
		o.Notes = &notes.String
	}
	o.Items = []models.OrderItem{}
	return &o, nil
}

// mysqlTx is the orders.Tx used during checkout.
type mysqlTx struct {
	tx *sql.Tx
}

func (t *mysqlTx) CartSnapshot(ctx context.Context, userID int64) ([]orders.SnapshotLine, error) {
	// LEFT JOIN keeps lines whose product row is gone so the caller can
	// report them instead of silently dropping them.
	query := `
		SELECT ci.id, ci.product_id, ci.quantity,
			p.id, p.name, p.slug, p.description, p.category, p.price, p.discount_price,
			p.stock_quantity, p.sales_count, p.is_active, p.created_at, p.updated_at
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = ?
		ORDER BY ci.id
		FOR UPDATE`

	rows, err := t.tx.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("read cart snapshot: %w", err)
	}
	defer rows.Close()

	var lines []orders.SnapshotLine
	for rows.Next() {
		var (
			line                  orders.SnapshotLine
			pID, stock, sales     sql.NullInt64
			name, slug, desc, cat sql.NullString
			price, discount       decimal.NullDecimal
			active                sql.NullBool
			createdAt, updatedAt  sql.NullTime
		)
		if err := rows.Scan(&line.CartItemID, &line.ProductID, &line.Quantity,
			&pID, &name, &slug, &desc, &cat, &price, &discount,
			&stock, &sales, &active, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan cart snapshot: %w", err)
		}
		if pID.Valid {
			line.Product = &models.Product{
				ID:            pID.Int64,
				Name:          name.String,
				Slug:          slug.String,
				Description:   desc.String,
				Category:      cat.String,
				Price:         price.Decimal,
				DiscountPrice: discount,
				StockQuantity: int(stock.Int64),
				SalesCount:    int(sales.Int64),
				IsActive:      active.Bool,
				CreatedAt:     createdAt.Time,
				UpdatedAt:     updatedAt.Time,
			}
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (t *mysqlTx) InsertOrder(ctx context.Context, order *models.Order) error {
	orderQuery := `
		INSERT INTO orders (user_id, order_number, subtotal, shipping_fee, tax, discount, total_amount,
			payment_method, payment_status, order_status, shipping_address, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var notes any
	if order.Notes != nil {
		notes = *order.Notes
	}

	result, err := t.tx.ExecContext(ctx, orderQuery,
		order.UserID, order.OrderNumber, order.Subtotal, order.ShippingFee, order.Tax, order.Discount, order.TotalAmount,
		order.PaymentMethod, order.PaymentStatus, order.OrderStatus, string(order.ShippingAddress), notes,
		order.CreatedAt, order.UpdatedAt)
	if err != nil {
		if isDuplicateEntry(err) {
			return orders.ErrDuplicateOrderNumber
		}
		return fmt.Errorf("insert order: %w", err)
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("read order id: %w", err)
	}
	order.ID = orderID

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, product_name, product_price, quantity, subtotal)
		VALUES (?, ?, ?, ?, ?, ?)`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = orderID
		res, err := t.tx.ExecContext(ctx, itemQuery,
			orderID, item.ProductID, item.ProductName, item.ProductPrice, item.Quantity, item.Subtotal)
		if err != nil {
			return fmt.Errorf("insert order item for product %d: %w", item.ProductID, err)
		}
		if item.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("read order item id: %w", err)
		}
	}
	return nil
}

func (t *mysqlTx) DecrementStock(ctx context.Context, productID int64, qty int) (bool, error) {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - ?, sales_count = sales_count + ?, updated_at = NOW()
		WHERE id = ? AND stock_quantity >= ?`

	result, err := t.tx.ExecContext(ctx, query, qty, qty, productID, qty)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (t *mysqlTx) ClearCart(ctx context.Context, userID int64) (int64, error) {
	result, err := t.tx.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = ?", userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (t *mysqlTx) AddLoyaltyPoints(ctx context.Context, userID int64, points int64) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE users SET loyalty_points = loyalty_points + ?, updated_at = NOW() WHERE id = ?",
		points, userID)
	return err
}

//
// --- Order reads and status updates ---
//

func (s *MySQL) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ?", orderID)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, orders.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}

	if err := s.attachItems(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *MySQL) ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC"
	return s.queryOrders(ctx, query, userID)
}

func (s *MySQL) ListOrders(ctx context.Context, filter orders.OrderFilter) ([]models.Order, int, error) {
	where := ""
	var args []any
	if filter.Status != "" {
		where = " WHERE order_status = ?"
		args = append(args, filter.Status)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := "SELECT " + orderColumns + " FROM orders" + where + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	list, err := s.queryOrders(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *MySQL) queryOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var list []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachItems(ctx, list); err != nil {
		return nil, err
	}

	out := make([]models.Order, 0, len(list))
	for _, o := range list {
		out = append(out, *o)
	}
	return out, nil
}

// attachItems loads the items of every order in one query.
func (s *MySQL) attachItems(ctx context.Context, list []*models.Order) error {
	if len(list) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Order, len(list))
	placeholders := make([]string, 0, len(list))
	args := make([]any, 0, len(list))
	for _, o := range list {
		byID[o.ID] = o
		placeholders = append(placeholders, "?")
		args = append(args, o.ID)
	}

	query := `
		SELECT id, order_id, product_id, product_name, product_price, quantity, subtotal
		FROM order_items
		WHERE order_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductPrice, &it.Quantity, &it.Subtotal); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (s *MySQL) CancelPendingOrder(ctx context.Context, userID, orderID int64) (bool, error) {
	query := `
		UPDATE orders SET order_status = 'cancelled', updated_at = NOW()
		WHERE id = ? AND user_id = ? AND order_status = 'pending'`

	result, err := s.db.ExecContext(ctx, query, orderID, userID)
	if err != nil {
		return false, fmt.Errorf("cancel order %d: %w", orderID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *MySQL) CompletePendingPayment(ctx context.Context, userID, orderID int64, method string) (bool, error) {
	query := `
		UPDATE orders
		SET payment_status = 'completed', order_status = 'processing', updated_at = NOW()
		WHERE id = ? AND user_id = ? AND order_status = 'pending'
			AND payment_status <> 'completed' AND payment_method = ?`

	result, err := s.db.ExecContext(ctx, query, orderID, userID, method)
	if err != nil {
		return false, fmt.Errorf("complete payment for order %d: %w", orderID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *MySQL) UpdateOrderStatus(ctx context.Context, orderID int64, orderStatus, paymentStatus string) error {
	sets := []string{"updated_at = NOW()"}
	var args []any
	if orderStatus != "" {
		sets = append(sets, "order_status = ?")
		args = append(args, orderStatus)
	}
	if paymentStatus != "" {
		sets = append(sets, "payment_status = ?")
		args = append(args, paymentStatus)
	}
	args = append(args, orderID)

	result, err := s.db.ExecContext(ctx, "UPDATE orders SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update order %d status: %w", orderID, err)
	}
	return s.requireOrderRow(ctx, result, orderID)
}

func (s *MySQL) SetPaymentMethod(ctx context.Context, orderID int64, method string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE orders SET payment_method = ?, payment_status = 'pending', updated_at = NOW() WHERE id = ?",
		method, orderID)
	if err != nil {
		return fmt.Errorf("set payment method on order %d: %w", orderID, err)
	}
	return s.requireOrderRow(ctx, result, orderID)
}

// requireOrderRow turns "0 rows affected" into ErrOrderNotFound when the
// order does not exist. MySQL also reports 0 when the values did not change.
func (s *MySQL) requireOrderRow(ctx context.Context, result sql.Result, orderID int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	err = s.db.QueryRowContext(ctx, "SELECT 1 FROM orders WHERE id = ?", orderID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return orders.ErrOrderNotFound
	}
	return err
}
