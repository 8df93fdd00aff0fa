package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//
// --- Cart Handlers ---
//

// AddToCartInput defines the JSON for adding an item to the cart.
type AddToCartInput struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"omitempty,gt=0"`
}

// AddToCart is the handler for POST /api/cart. Adding a product already in
// the cart increases that line's quantity.
func (h *Handlers) AddToCart(c *gin.Context) {
	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	created, err := h.Store.AddToCart(c.Request.Context(), currentUserID(c), input.ProductID, input.Quantity)
	if err != nil {
		respondStoreError(c, err, "Product not found")
		return
	}

	if created {
		c.JSON(http.StatusCreated, gin.H{"message": "Item added to cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart updated"})
}

// GetCart is the handler for GET /api/cart.
func (h *Handlers) GetCart(c *gin.Context) {
	lines, err := h.Store.CartLines(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondStoreError(c, err, "")
		return
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.ItemTotal)
	}

	c.JSON(http.StatusOK, gin.H{
		"items":     lines,
		"subtotal":  subtotal.StringFixed(2),
		"itemCount": len(lines),
	})
}

// UpdateCartItemInput defines the JSON for changing a line's quantity.
type UpdateCartItemInput struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// UpdateCartItem is the handler for PUT /api/cart/:product_id.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	productID, ok := idParam(c, "product_id")
	if !ok {
		return
	}

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity"})
		return
	}

	if err := h.Store.SetCartQuantity(c.Request.Context(), currentUserID(c), productID, input.Quantity); err != nil {
		respondStoreError(c, err, "Cart item not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart updated"})
}

// DeleteCartItem is the handler for DELETE /api/cart/:product_id.
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	productID, ok := idParam(c, "product_id")
	if !ok {
		return
	}

	if err := h.Store.RemoveCartLine(c.Request.Context(), currentUserID(c), productID); err != nil {
		respondStoreError(c, err, "Cart item not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

// ClearCart is the handler for DELETE /api/cart.
func (h *Handlers) ClearCart(c *gin.Context) {
	if err := h.Store.ClearCart(c.Request.Context(), currentUserID(c)); err != nil {
		respondStoreError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
