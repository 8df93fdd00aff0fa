package store_test

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/yourqueen-golang/internal/models"
	"github.com/01moynul/yourqueen-golang/internal/orders"
	"github.com/01moynul/yourqueen-golang/internal/store"
)

var snapshotColumns = []string{
	"id", "product_id", "quantity",
	"id", "name", "slug", "description", "category", "price", "discount_price",
	"stock_quantity", "sales_count", "is_active", "created_at", "updated_at",
}

func newMock(t *testing.T) (*store.MySQL, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.New(db), mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestPlaceOrderThroughMySQL(t *testing.T) {
	s, mock := newMock(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := orders.NewService(s, orders.WithClock(func() time.Time { return now }))

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM cart_items ci")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(snapshotColumns).
			AddRow(11, 1, 2, 1, "Gold Hoop", "gold-hoop", "", "earrings", "1000.00", "800.00", 5, 0, true, now, now))
	mock.ExpectExec(q("INSERT INTO orders")).WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(q("INSERT INTO order_items")).
		WithArgs(int64(42), int64(1), "Gold Hoop", sqlmock.AnyArg(), 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectExec(q("UPDATE products")).
		WithArgs(2, 2, int64(1), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM cart_items WHERE user_id = ?")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE users SET loyalty_points = loyalty_points + ?")).
		WithArgs(int64(20), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	order, err := svc.PlaceOrder(context.Background(), 7, orders.PlaceOrderInput{
		ShippingAddress: json.RawMessage(`{"city":"Lalitpur"}`),
		PaymentMethod:   models.PaymentMethodEsewa,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), order.ID)
	assert.Equal(t, int64(100), order.Items[0].ID)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(2008)), "total %s", order.TotalAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderRollsBackWhenStockRunsOut(t *testing.T) {
	s, mock := newMock(t)
	now := time.Now()
	svc := orders.NewService(s)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM cart_items ci")).
		WillReturnRows(sqlmock.NewRows(snapshotColumns).
			AddRow(11, 3, 1, 3, "Pearl Stud", "pearl-stud", "", "earrings", "150.00", nil, 1, 4, true, now, now))
	mock.ExpectExec(q("INSERT INTO orders")).WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec(q("INSERT INTO order_items")).WillReturnResult(sqlmock.NewResult(1, 1))
	// A concurrent checkout took the last unit: the guarded update matches nothing.
	mock.ExpectExec(q("UPDATE products")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.PlaceOrder(context.Background(), 7, orders.PlaceOrderInput{
		ShippingAddress: json.RawMessage(`{"city":"Lalitpur"}`),
		PaymentMethod:   models.PaymentMethodCOD,
	})

	var stockErr *orders.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(3), stockErr.ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartSnapshotKeepsLinesWithoutProduct(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("LEFT JOIN products p")).
		WillReturnRows(sqlmock.NewRows(snapshotColumns).
			AddRow(5, 99, 1, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil))
	mock.ExpectRollback()

	err := s.InTx(context.Background(), func(tx orders.Tx) error {
		lines, err := tx.CartSnapshot(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, int64(99), lines[0].ProductID)
		assert.Nil(t, lines[0].Product)
		return errors.New("stop")
	})
	assert.EqualError(t, err, "stop")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertOrderMapsDuplicateNumber(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO orders")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'uq_orders_number'"})
	mock.ExpectRollback()

	err := s.InTx(context.Background(), func(tx orders.Tx) error {
		return tx.InsertOrder(context.Background(), &models.Order{OrderNumber: "YQ-1-ABCDEF123", ShippingAddress: json.RawMessage(`{}`)})
	})
	assert.ErrorIs(t, err, orders.ErrDuplicateOrderNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelPendingOrder(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"pending order is cancelled", 1, true},
		{"non-pending order is left alone", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, mock := newMock(t)
			mock.ExpectExec(q("UPDATE orders SET order_status = 'cancelled'")).
				WithArgs(int64(3), int64(7)).
				WillReturnResult(sqlmock.NewResult(0, tc.affected))

			changed, err := s.CancelPendingOrder(context.Background(), 7, 3)
			require.NoError(t, err)
			assert.Equal(t, tc.want, changed)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCompletePendingPaymentIsConditional(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(`(?s)UPDATE orders\s+SET payment_status = 'completed', order_status = 'processing'.*WHERE id = \? AND user_id = \? AND order_status = 'pending'\s+AND payment_status <> 'completed' AND payment_method = \?`).
		WithArgs(int64(3), int64(7), "khalti").
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := s.CompletePendingPayment(context.Background(), 7, 3, "khalti")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatus(t *testing.T) {
	t.Run("sets only the given fields", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectExec(q("UPDATE orders SET updated_at = NOW(), payment_status = ? WHERE id = ?")).
			WithArgs("completed", int64(4)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.UpdateOrderStatus(context.Background(), 4, "", "completed"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing order", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectExec(q("UPDATE orders SET")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(q("SELECT 1 FROM orders WHERE id = ?")).
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"1"}))

		err := s.UpdateOrderStatus(context.Background(), 4, "shipped", "")
		assert.ErrorIs(t, err, orders.ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetOrderAttachesItems(t *testing.T) {
	s, mock := newMock(t)
	now := time.Now()

	orderCols := []string{"id", "user_id", "order_number", "subtotal", "shipping_fee", "tax", "discount", "total_amount",
		"payment_method", "payment_status", "order_status", "shipping_address", "notes", "created_at", "updated_at"}
	mock.ExpectQuery(q("FROM orders WHERE id = ?")).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(orderCols).AddRow(
			8, 7, "YQ-1-AAAAAAAAA", "100.00", "200.00", "13.00", "0.00", "313.00",
			"cod", "pending", "pending", `{"city":"Bhaktapur"}`, nil, now, now))
	mock.ExpectQuery(q("FROM order_items")).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "product_name", "product_price", "quantity", "subtotal"}).
			AddRow(1, 8, 2, "Silver Chain", "50.00", 2, "100.00"))

	order, err := s.GetOrder(context.Background(), 8)
	require.NoError(t, err)
	assert.Nil(t, order.Notes)
	assert.JSONEq(t, `{"city":"Bhaktapur"}`, string(order.ShippingAddress))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Silver Chain", order.Items[0].ProductName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderNotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(q("FROM orders WHERE id = ?")).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetOrder(context.Background(), 1)
	assert.ErrorIs(t, err, orders.ErrOrderNotFound)
}

// anyTime matches the time.Time arguments written by the store.
type anyTime struct{}

func (anyTime) Match(v driver.Value) bool {
	_, ok := v.(time.Time)
	return ok
}
