package middleware

import (
	"net/http"
	"strings"

	"winqroo/models"
	"winqroo/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware.
const (
	CtxUserID       = "userID"
	CtxUserRole     = "userRole"
	CtxCustomerType = "customerType"
)

// JWTAuthMiddleware extracts the caller's identity from the bearer token and
// stores it on the context. Issuing tokens is handled by the upstream auth
// service; this backend only verifies and reads them.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}

		userID, role, customerType, err := utils.ExtractIdentityFromToken(tokenString)
		if err != nil || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}

		if customerType == "" {
			customerType = string(models.CustomerStandard)
		}

		c.Set(CtxUserID, userID)
		c.Set(CtxUserRole, role)
		c.Set(CtxCustomerType, customerType)
		c.Next()
	}
}

// RequireShopOwner rejects callers without the shop_owner role. It must run
// after JWTAuthMiddleware.
func RequireShopOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(CtxUserRole)
		if role != models.RoleShopOwner {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Access denied. Shop owner role required.",
			})
			return
		}
		c.Next()
	}
}
