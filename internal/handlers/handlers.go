package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/01moynul/yourqueen-golang/internal/auth"
	"github.com/01moynul/yourqueen-golang/internal/cache"
	"github.com/01moynul/yourqueen-golang/internal/middleware"
	"github.com/01moynul/yourqueen-golang/internal/orders"
	"github.com/01moynul/yourqueen-golang/internal/store"
	"github.com/gin-gonic/gin"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Store  *store.MySQL      // Catalog, cart, wishlist, users, addresses, stats
	Orders *orders.Service   // Order placement and status transitions
	Stats  *cache.StatsCache // Redis-backed dashboard cache (nil-safe)
	Tokens *auth.Manager
}

// currentUserID returns the id AuthMiddleware stored in the context.
func currentUserID(c *gin.Context) int64 {
	userID_raw, _ := c.Get(middleware.ContextUserID)
	userID, _ := userID_raw.(int64)
	return userID
}

// idParam parses a positive integer path parameter. It writes a 400 and
// returns false when the value is not one.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// pageParams reads ?page and ?limit with the listing defaults.
func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// respondOrderError maps order-workflow errors onto HTTP statuses.
func respondOrderError(c *gin.Context, err error) {
	var (
		unavailable *orders.ProductUnavailableError
		stock       *orders.InsufficientStockError
		transition  *orders.InvalidTransitionError
	)

	switch {
	case errors.Is(err, orders.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
	case errors.As(err, &unavailable), errors.As(err, &stock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &transition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, orders.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, orders.ErrInvalidShippingAddress),
		errors.Is(err, orders.ErrInvalidPaymentMethod),
		errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, orders.ErrNoStatusChange),
		errors.Is(err, orders.ErrPaymentNotStarted):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// respondStoreError maps repository errors onto HTTP statuses.
func respondStoreError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, store.ErrProductInactive):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found or not active"})
	case errors.Is(err, store.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock"})
	case errors.Is(err, store.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
	case errors.Is(err, store.ErrAlreadyWishlisted):
		c.JSON(http.StatusConflict, gin.H{"error": "Product already in wishlist"})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
