package routes

import (
	"net/http"
	"time"

	"github.com/01moynul/yourqueen-golang/internal/handlers"
	"github.com/01moynul/yourqueen-golang/internal/middleware"
	"github.com/01moynul/yourqueen-golang/internal/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Options carries the router settings that come from configuration.
type Options struct {
	FrontendURL     string
	Redis           *redis.Client // nil disables rate limiting
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// CORSMiddleware lets the storefront front-end call the API with credentials.
func CORSMiddleware(frontendURL string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	router := gin.Default()

	// CORS must run before anything can abort the request.
	router.Use(CORSMiddleware(opts.FrontendURL))

	api := router.Group("/api")
	api.Use(middleware.RateLimit(opts.Redis, opts.RateLimitMax, opts.RateLimitWindow))
	{
		// --- Health Check (Public) ---
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Server is running"})
		})

		// --- Auth Routes ---
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		// --- Public Catalog ---
		api.GET("/products", h.ListProducts)
		api.GET("/products/categories/list", h.ListCategories)
		api.GET("/products/:id", h.GetProduct)

		// --- Protected Routes (Login Required) ---
		auth := api.Group("/")
		auth.Use(middleware.AuthMiddleware(h.Tokens))
		{
			auth.GET("/auth/me", h.Me)

			auth.GET("/cart", h.GetCart)
			auth.POST("/cart", h.AddToCart)
			auth.PUT("/cart/:product_id", h.UpdateCartItem)
			auth.DELETE("/cart/:product_id", h.DeleteCartItem)
			auth.DELETE("/cart", h.ClearCart)

			auth.POST("/orders", h.PlaceOrder)
			auth.GET("/orders", h.GetMyOrders)
			auth.GET("/orders/:id", h.GetOrderDetails)
			auth.PUT("/orders/:id/status", h.UpdateMyOrderStatus)

			auth.POST("/payments/khalti", h.InitiateKhalti)
			auth.POST("/payments/khalti/verify", h.VerifyKhalti)
			auth.POST("/payments/esewa", h.InitiateEsewa)
			auth.POST("/payments/card", h.PayByCard)

			auth.GET("/wishlist", h.GetWishlist)
			auth.POST("/wishlist", h.AddToWishlist)
			auth.DELETE("/wishlist/:id", h.RemoveFromWishlist)
			auth.GET("/wishlist/check/:product_id", h.CheckWishlist)

			auth.GET("/users/profile", h.GetProfile)
			auth.PUT("/users/profile", h.UpdateProfile)
			auth.PUT("/users/password", h.ChangePassword)

			auth.GET("/users/addresses", h.GetAddresses)
			auth.POST("/users/addresses", h.CreateAddress)
			auth.PUT("/users/addresses/:id", h.UpdateAddress)
			auth.DELETE("/users/addresses/:id", h.DeleteAddress)
		}

		// --- Manager & Admin Routes ---
		staff := api.Group("/admin")
		staff.Use(middleware.AuthMiddleware(h.Tokens))
		staff.Use(middleware.RequireRoles(h.Store, models.RoleManager, models.RoleAdmin))
		{
			staff.GET("/orders", h.AdminListOrders)
			staff.PUT("/orders/:id/status", h.AdminUpdateOrderStatus)

			staff.GET("/products", h.AdminListProducts)
			staff.POST("/products", h.CreateProduct)
			staff.PUT("/products/:id", h.UpdateProduct)
		}

		// --- Admin-Only Routes ---
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(h.Tokens))
		admin.Use(middleware.RequireRoles(h.Store, models.RoleAdmin))
		{
			admin.DELETE("/products/:id", h.DeleteProduct)
			admin.GET("/stats", h.GetDashboardStats)
			admin.GET("/users", h.AdminListUsers)
		}
	}

	return router
}
