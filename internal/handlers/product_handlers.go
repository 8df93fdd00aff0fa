package handlers

import (
	"net/http"

	"github.com/01moynul/yourqueen-golang/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//
// --- Public Catalog Handlers ---
//

// ListProducts is the handler for GET /api/products.
// Query: ?category=earrings&search=hoop&min_price=500&max_price=2000&sort=price_low&page=1&limit=20
func (h *Handlers) ListProducts(c *gin.Context) {
	filter, ok := productFilter(c)
	if !ok {
		return
	}

	products, total, err := h.Store.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondStoreError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   products,
		"pagination": pagination(filter.Page, filter.Limit, total),
	})
}

// productFilter reads the catalog query parameters shared by the public and
// admin listings. It writes a 400 and returns false on a bad value.
func productFilter(c *gin.Context) (store.ProductFilter, bool) {
	page, limit := pageParams(c)
	filter := store.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.DefaultQuery("sort", store.SortNewest),
		Page:     page,
		Limit:    limit,
	}
	if !store.ValidProductSort(filter.Sort) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sort must be one of newest, price_low, price_high, popular"})
		return filter, false
	}

	for _, bound := range []struct {
		param string
		dst   *decimal.NullDecimal
	}{
		{"min_price", &filter.MinPrice},
		{"max_price", &filter.MaxPrice},
	} {
		raw := c.Query(bound.param)
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil || v.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + bound.param})
			return filter, false
		}
		*bound.dst = decimal.NewNullDecimal(v)
	}
	if filter.MinPrice.Valid && filter.MaxPrice.Valid && filter.MinPrice.Decimal.GreaterThan(filter.MaxPrice.Decimal) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_price cannot exceed max_price"})
		return filter, false
	}
	return filter, true
}

// ListCategories is the handler for GET /api/products/categories/list.
func (h *Handlers) ListCategories(c *gin.Context) {
	categories, err := h.Store.ListCategories(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetProduct is the handler for GET /api/products/:id. Inactive products
// are hidden from the public catalog.
func (h *Handlers) GetProduct(c *gin.Context) {
	productID, ok := idParam(c, "id")
	if !ok {
		return
	}

	product, err := h.Store.GetProduct(c.Request.Context(), productID, false)
	if err != nil {
		respondStoreError(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func pagination(page, limit, total int) gin.H {
	return gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"pages": (total + limit - 1) / limit,
	}
}
