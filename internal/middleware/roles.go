package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"slices"

	"github.com/01moynul/yourqueen-golang/internal/store"
	"github.com/gin-gonic/gin"
)

//
// --- Role-Based Middleware ---
//
// RequireRoles runs after AuthMiddleware. It reads the user's role from
// the database rather than trusting the token, so a demotion takes effect
// before the token expires.
//

// RoleLookup returns the current role of a user.
type RoleLookup interface {
	UserRole(ctx context.Context, userID int64) (string, error)
}

func RequireRoles(lookup RoleLookup, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := c.Get(ContextUserID)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context (AuthMiddleware must run first)"})
			c.Abort()
			return
		}

		role, err := lookup.UserRole(c.Request.Context(), userID.(int64))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
				c.Abort()
				return
			}
			log.Printf("role lookup failed for user %v: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking role"})
			c.Abort()
			return
		}

		if !slices.Contains(roles, role) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied: insufficient role"})
			c.Abort()
			return
		}

		c.Set(ContextUserRole, role)
		c.Next()
	}
}
