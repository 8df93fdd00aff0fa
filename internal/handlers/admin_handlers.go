package handlers

import (
	"net/http"

	"github.com/01moynul/yourqueen-golang/internal/models"
	"github.com/01moynul/yourqueen-golang/internal/orders"
	"github.com/01moynul/yourqueen-golang/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//
// --- Admin: Order Management ---
//

// AdminListOrders is the handler for GET /api/admin/orders.
// Query: ?status=pending&page=1&limit=20
func (h *Handlers) AdminListOrders(c *gin.Context) {
	page, limit := pageParams(c)
	list, total, err := h.Orders.AdminListOrders(c.Request.Context(), orders.OrderFilter{
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":     list,
		"pagination": pagination(page, limit, total),
	})
}

// AdminUpdateStatusInput sets either status or both. Values are not
// checked against the order's current state.
type AdminUpdateStatusInput struct {
	OrderStatus   string `json:"orderStatus"`
	PaymentStatus string `json:"paymentStatus"`
}

// AdminUpdateOrderStatus is the handler for PUT /api/admin/orders/:id/status.
func (h *Handlers) AdminUpdateOrderStatus(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var input AdminUpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	order, err := h.Orders.AdminUpdateStatus(c.Request.Context(), orderID, orders.StatusUpdate{
		OrderStatus:   input.OrderStatus,
		PaymentStatus: input.PaymentStatus,
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}

	h.Stats.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"order": order})
}

//
// --- Admin: Catalog Management ---
//

// ProductInput is the body of product create and update requests.
type ProductInput struct {
	Name          string           `json:"name" binding:"required"`
	Description   string           `json:"description"`
	Category      string           `json:"category" binding:"required,oneof=earrings necklaces sets"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	StockQuantity int              `json:"stockQuantity" binding:"gte=0"`
	IsActive      *bool            `json:"isActive"`
}

// toModel validates the money fields and builds the product row.
func (in ProductInput) toModel() (*models.Product, string) {
	if !in.Price.IsPositive() {
		return nil, "price must be greater than zero"
	}
	p := &models.Product{
		Name:          in.Name,
		Description:   in.Description,
		Category:      in.Category,
		Price:         in.Price.Round(2),
		StockQuantity: in.StockQuantity,
		IsActive:      true,
	}
	if in.DiscountPrice != nil {
		if in.DiscountPrice.IsNegative() || in.DiscountPrice.GreaterThanOrEqual(in.Price) {
			return nil, "discountPrice must be between zero and price"
		}
		p.DiscountPrice = decimal.NewNullDecimal(in.DiscountPrice.Round(2))
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return p, ""
}

// AdminListProducts is the handler for GET /api/admin/products.
// Unlike the public listing it includes inactive products.
func (h *Handlers) AdminListProducts(c *gin.Context) {
	filter, ok := productFilter(c)
	if !ok {
		return
	}
	filter.IncludeInactive = true

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

// CreateProduct is the handler for POST /api/admin/products.
func (h *Handlers) CreateProduct(c *gin.Context) {
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, msg := input.toModel()
	if product == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	if err := h.Store.CreateProduct(c.Request.Context(), product); err != nil {
		respondStoreError(c, err, "")
		return
	}

	h.Stats.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct is the handler for PUT /api/admin/products/:id.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	productID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, msg := input.toModel()
	if product == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	product.ID = productID

	if err := h.Store.UpdateProduct(c.Request.Context(), product); err != nil {
		respondStoreError(c, err, "Product not found")
		return
	}

	h.Stats.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct is the handler for DELETE /api/admin/products/:id.
// Products are deactivated, never removed, so order history stays intact.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	productID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.Store.DeactivateProduct(c.Request.Context(), productID); err != nil {
		respondStoreError(c, err, "Product not found")
		return
	}

	h.Stats.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

//
// --- Admin: Users ---
//

// AdminListUsers is the handler for GET /api/admin/users.
// Query: ?role=customer&page=1&limit=20
func (h *Handlers) AdminListUsers(c *gin.Context) {
	role := c.Query("role")
	switch role {
	case "", models.RoleCustomer, models.RoleManager, models.RoleAdmin:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	page, limit := pageParams(c)
	users, total, err := h.Store.ListUsers(c.Request.Context(), store.UserFilter{Role: role, Page: page, Limit: limit})
	if err != nil {
		respondStoreError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":      users,
		"pagination": pagination(page, limit, total),
	})
}
