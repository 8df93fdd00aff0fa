package store

import (
	"context"
	"fmt"

	"github.com/01moynul/yourqueen-golang/internal/models"
	"github.com/shopspring/decimal"
)

// LowStockThreshold is the stock level below which an active product
// counts as low on the dashboard.
const LowStockThreshold = 10

// DashboardStats aggregates the admin dashboard counters. Revenue only
// counts orders whose payment completed.
func (s *MySQL) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'customer'),
			(SELECT COUNT(*) FROM products WHERE is_active = 1),
			(SELECT COUNT(*) FROM orders),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE payment_status = 'completed'),
			(SELECT COUNT(*) FROM orders WHERE order_status = 'pending'),
			(SELECT COUNT(*) FROM products WHERE is_active = 1 AND stock_quantity < ?)`

	var (
		stats   models.DashboardStats
		revenue decimal.Decimal
	)
	err := s.db.QueryRowContext(ctx, query, LowStockThreshold).Scan(
		&stats.TotalUsers, &stats.TotalProducts, &stats.TotalOrders, &revenue, &stats.PendingOrders, &stats.LowStock)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	stats.TotalRevenue = revenue
	return &stats, nil
}
