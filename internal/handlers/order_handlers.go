package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/01moynul/yourqueen-golang/internal/orders"
	"github.com/gin-gonic/gin"
)

//
// --- Order Handlers ---
//

// PlaceOrderInput defines the JSON for checkout.
type PlaceOrderInput struct {
	ShippingAddress json.RawMessage `json:"shippingAddress" binding:"required"`
	PaymentMethod   string          `json:"paymentMethod" binding:"required"`
	Notes           string          `json:"notes"`
}

// PlaceOrder is the handler for POST /api/orders.
// It turns the caller's cart into an order in a single transaction.
func (h *Handlers) PlaceOrder(c *gin.Context) {
	var input PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	order, err := h.Orders.PlaceOrder(c.Request.Context(), currentUserID(c), orders.PlaceOrderInput{
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		Notes:           input.Notes,
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}

	h.Stats.Invalidate(c.Request.Context())

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// GetMyOrders is the handler for GET /api/orders.
func (h *Handlers) GetMyOrders(c *gin.Context) {
	list, err := h.Orders.ListOrders(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// GetOrderDetails is the handler for GET /api/orders/:id.
// Orders of other users are reported as not found.
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := h.Orders.GetOrder(c.Request.Context(), currentUserID(c), orderID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdateOrderStatusInput is the customer's status request.
type UpdateOrderStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateMyOrderStatus is the handler for PUT /api/orders/:id/status.
// Customers may only cancel a pending order.
func (h *Handlers) UpdateMyOrderStatus(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var input UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	order, err := h.Orders.RequestStatusChange(c.Request.Context(), currentUserID(c), orderID, input.Status)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	h.Stats.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "order": order})
}
