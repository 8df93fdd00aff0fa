package handlers

import (
	"net/http"
	"time"

	"github.com/01moynul/yourqueen-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

//
// --- Payment Handlers (mocked gateways) ---
//
// No gateway is called. Initiation records the method on the order and
// returns a mock session. Confirmation goes through ConfirmPayment, which
// only accepts a pending, unpaid order started with the same method.
//

const (
	khaltiPaymentURL = "https://khalti.com/payment/mock"
	esewaPaymentURL  = "https://esewa.com.np/payment/mock"
	khaltiSessionTTL = 15 * time.Minute
)

type PaymentInput struct {
	OrderID int64 `json:"orderId" binding:"required,gt=0"`
}

type VerifyKhaltiInput struct {
	OrderID int64  `json:"orderId" binding:"required,gt=0"`
	Pidx    string `json:"pidx" binding:"required"`
}

// InitiateKhalti is the handler for POST /api/payments/khalti.
func (h *Handlers) InitiateKhalti(c *gin.Context) {
	var input PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	order, err := h.Orders.StartPayment(c.Request.Context(), currentUserID(c), input.OrderID, models.PaymentMethodKhalti)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pidx":        "mock_khalti_" + uuid.NewString(),
		"paymentUrl":  khaltiPaymentURL,
		"expiresAt":   time.Now().Add(khaltiSessionTTL).UTC().Format(time.RFC3339),
		"amount":      order.TotalAmount,
		"orderNumber": order.OrderNumber,
	})
}

// VerifyKhalti is the handler for POST /api/payments/khalti/verify.
// The gateway is mocked, so any pidx verifies, but only for a pending,
// unpaid order whose Khalti payment was initiated first.
func (h *Handlers) VerifyKhalti(c *gin.Context) {
	var input VerifyKhaltiInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	order, err := h.Orders.ConfirmPayment(ctx, currentUserID(c), input.OrderID, models.PaymentMethodKhalti)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	h.Stats.Invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment verified", "order": order})
}

// InitiateEsewa is the handler for POST /api/payments/esewa.
func (h *Handlers) InitiateEsewa(c *gin.Context) {
	var input PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	order, err := h.Orders.StartPayment(c.Request.Context(), currentUserID(c), input.OrderID, models.PaymentMethodEsewa)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"paymentUrl":    esewaPaymentURL,
		"transactionId": "mock_esewa_" + uuid.NewString(),
		"amount":        order.TotalAmount,
		"orderNumber":   order.OrderNumber,
	})
}

// PayByCard is the handler for POST /api/payments/card.
// The mock charge always succeeds and the order moves to processing.
func (h *Handlers) PayByCard(c *gin.Context) {
	var input PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Orders.StartPayment(ctx, currentUserID(c), input.OrderID, models.PaymentMethodCard); err != nil {
		respondOrderError(c, err)
		return
	}

	order, err := h.Orders.ConfirmPayment(ctx, currentUserID(c), input.OrderID, models.PaymentMethodCard)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	h.Stats.Invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Payment successful",
		"transactionId": "mock_card_" + uuid.NewString(),
		"order":         order,
	})
}
