package handlers

import (
	"net/http"

	"github.com/01moynul/yourqueen-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Address Book Handlers ---
//

type AddressInput struct {
	FullName     string  `json:"fullName" binding:"required"`
	Phone        string  `json:"phone" binding:"required"`
	AddressLine1 string  `json:"addressLine1" binding:"required"`
	AddressLine2 *string `json:"addressLine2"`
	City         string  `json:"city" binding:"required"`
	State        string  `json:"state" binding:"required"`
	PostalCode   string  `json:"postalCode" binding:"required"`
	Country      string  `json:"country"`
	IsDefault    bool    `json:"isDefault"`
}

func (in AddressInput) toModel(userID int64) *models.Address {
	country := in.Country
	if country == "" {
		country = "Nepal"
	}
	return &models.Address{
		UserID:       userID,
		FullName:     in.FullName,
		Phone:        in.Phone,
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		City:         in.City,
		State:        in.State,
		PostalCode:   in.PostalCode,
		Country:      country,
		IsDefault:    in.IsDefault,
	}
}

// GetAddresses is the handler for GET /api/users/addresses.
func (h *Handlers) GetAddresses(c *gin.Context) {
	list, err := h.Store.ListAddresses(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondStoreError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": list})
}

// CreateAddress is the handler for POST /api/users/addresses.
func (h *Handlers) CreateAddress(c *gin.Context) {
	var input AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	address := input.toModel(currentUserID(c))
	if err := h.Store.CreateAddress(c.Request.Context(), address); err != nil {
		respondStoreError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"address": address})
}

// UpdateAddress is the handler for PUT /api/users/addresses/:id.
// The body replaces the stored address.
func (h *Handlers) UpdateAddress(c *gin.Context) {
	addressID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var input AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	address := input.toModel(currentUserID(c))
	address.ID = addressID
	if err := h.Store.UpdateAddress(c.Request.Context(), address); err != nil {
		respondStoreError(c, err, "Address not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address})
}

// DeleteAddress is the handler for DELETE /api/users/addresses/:id.
func (h *Handlers) DeleteAddress(c *gin.Context) {
	addressID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.Store.DeleteAddress(c.Request.Context(), currentUserID(c), addressID); err != nil {
		respondStoreError(c, err, "Address not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}
