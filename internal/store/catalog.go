package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/01moynul/yourqueen-golang/internal/models"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

const productColumns = `id, name, slug, description, category, price, discount_price,
	stock_quantity, sales_count, is_active, created_at, updated_at`

// Catalog sort orders.
const (
	SortNewest    = "newest"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortPopular   = "popular"
)

// effectivePriceSQL is the price a shopper pays, matching Product.EffectivePrice.
const effectivePriceSQL = "COALESCE(discount_price, price)"

var productOrderBy = map[string]string{
	SortNewest:    "created_at DESC, id DESC",
	SortPriceLow:  effectivePriceSQL + " ASC, id DESC",
	SortPriceHigh: effectivePriceSQL + " DESC, id DESC",
	SortPopular:   "sales_count DESC, created_at DESC, id DESC",
}

// ValidProductSort reports whether sort is a known catalog order.
func ValidProductSort(sort string) bool {
	_, ok := productOrderBy[sort]
	return ok
}

// ProductFilter narrows a catalog listing. MinPrice and MaxPrice bound the
// effective price. An empty Sort means newest first.
type ProductFilter struct {
	Category        string
	Search          string
	MinPrice        decimal.NullDecimal
	MaxPrice        decimal.NullDecimal
	Sort            string
	Page            int
	Limit           int
	IncludeInactive bool
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Category, &p.Price, &p.DiscountPrice,
		&p.StockQuantity, &p.SalesCount, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts returns one page of products in the filter's order and the
// total number of products matching the filter.
func (s *MySQL) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, int, error) {
	var (
		conds []string
		args  []any
	)
	if !f.IncludeInactive {
		conds = append(conds, "is_active = 1")
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.Search != "" {
		conds = append(conds, "(name LIKE ? OR description LIKE ?)")
		like := "%" + f.Search + "%"
		args = append(args, like, like)
	}
	if f.MinPrice.Valid {
		conds = append(conds, effectivePriceSQL+" >= ?")
		args = append(args, f.MinPrice.Decimal)
	}
	if f.MaxPrice.Valid {
		conds = append(conds, effectivePriceSQL+" <= ?")
		args = append(args, f.MaxPrice.Decimal)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	orderBy, ok := productOrderBy[f.Sort]
	if !ok {
		orderBy = productOrderBy[SortNewest]
	}
	query := "SELECT " + productColumns + " FROM products" + where + " ORDER BY " + orderBy + " LIMIT ? OFFSET ?"
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, total, rows.Err()
}

// ListCategories returns the categories that have at least one active product.
func (s *MySQL) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT category FROM products WHERE is_active = 1 ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetProduct loads one product. Inactive products are reported as
// ErrNotFound unless includeInactive is set.
func (s *MySQL) GetProduct(ctx context.Context, id int64, includeInactive bool) (*models.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE id = ?"
	if !includeInactive {
		query += " AND is_active = 1"
	}
	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// CreateProduct inserts p, deriving a unique slug from its name.
func (s *MySQL) CreateProduct(ctx context.Context, p *models.Product) error {
	now := time.Now()
	productSlug, err := s.uniqueSlug(ctx, p.Name, 0)
	if err != nil {
		return err
	}
	p.Slug = productSlug
	p.CreatedAt, p.UpdatedAt = now, now

	query := `
		INSERT INTO products (name, slug, description, category, price, discount_price,
			stock_quantity, sales_count, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query, p.Name, p.Slug, p.Description, p.Category, p.Price, p.DiscountPrice,
		p.StockQuantity, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	if p.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("read product id: %w", err)
	}
	return nil
}

// UpdateProduct overwrites the editable fields of p. The slug follows the
// name. The sales counter is never written here.
func (s *MySQL) UpdateProduct(ctx context.Context, p *models.Product) error {
	productSlug, err := s.uniqueSlug(ctx, p.Name, p.ID)
	if err != nil {
		return err
	}
	p.Slug = productSlug
	p.UpdatedAt = time.Now()

	query := `
		UPDATE products
		SET name = ?, slug = ?, description = ?, category = ?, price = ?, discount_price = ?,
			stock_quantity = ?, is_active = ?, updated_at = ?
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, p.Name, p.Slug, p.Description, p.Category, p.Price, p.DiscountPrice,
		p.StockQuantity, p.IsActive, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
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

// DeactivateProduct is the soft delete used by the admin catalog.
// Order history keeps pointing at the row.
func (s *MySQL) DeactivateProduct(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "UPDATE products SET is_active = 0, updated_at = NOW() WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deactivate product %d: %w", id, err)
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

// uniqueSlug slugifies name and appends -2, -3, ... until no other
// product uses it.
func (s *MySQL) uniqueSlug(ctx context.Context, name string, excludeID int64) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "product"
	}
	candidate := base
	for i := 2; ; i++ {
		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products WHERE slug = ? AND id <> ?", candidate, excludeID).Scan(&count)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
