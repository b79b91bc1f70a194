package middleware

import (
	"strings"

	"pc-inventory/internal/models"
	"pc-inventory/internal/services"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the bearer token into the current user. Both
// "Bearer <key>" and "Token <key>" are accepted.
func AuthMiddleware(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			AbortWithError(c, services.ErrUnauthenticated)
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || (!strings.EqualFold(parts[0], "Bearer") && !strings.EqualFold(parts[0], "Token")) {
			AbortWithError(c, services.ErrInvalidToken)
			return
		}

		user, err := tokens.Validate(parts[1])
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)

		c.Next()
	}
}

// RequireCapability rejects users that do not hold capability. It must run
// after AuthMiddleware.
func RequireCapability(capability services.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := services.Authorize(CurrentUser(c), capability); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user or nil.
func CurrentUser(c *gin.Context) *models.User {
	user, exists := c.Get("user")
	if !exists {
		return nil
	}
	u, _ := user.(*models.User)
	return u
}
