package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Wishlist Handlers ---
//

type AddToWishlistInput struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
}

// GetWishlist is the handler for GET /api/wishlist.
func (h *Handlers) GetWishlist(c *gin.Context) {
	items, err := h.Store.Wishlist(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondStoreError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// AddToWishlist is the handler for POST /api/wishlist.
func (h *Handlers) AddToWishlist(c *gin.Context) {
	var input AddToWishlistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	item, err := h.Store.AddToWishlist(c.Request.Context(), currentUserID(c), input.ProductID)
	if err != nil {
		respondStoreError(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Item added to wishlist", "item": item})
}

// RemoveFromWishlist is the handler for DELETE /api/wishlist/:id.
func (h *Handlers) RemoveFromWishlist(c *gin.Context) {
	itemID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.Store.RemoveWishlistItem(c.Request.Context(), currentUserID(c), itemID); err != nil {
		respondStoreError(c, err, "Wishlist item not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from wishlist"})
}

// CheckWishlist is the handler for GET /api/wishlist/check/:product_id.
func (h *Handlers) CheckWishlist(c *gin.Context) {
	productID, ok := idParam(c, "product_id")
	if !ok {
		return
	}

	saved, err := h.Store.InWishlist(c.Request.Context(), currentUserID(c), productID)
	if err != nil {
		respondStoreError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"inWishlist": saved})
}
