package middleware

import (
	"net/http"
	"strings"

	"tiendita-backend/utils"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		token := parts[1]
		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)
		if claims.BusinessID != nil {
			c.Set("business_id", *claims.BusinessID)
		}
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// MerchantMiddleware requires the user to be a merchant_owner or
// merchant_staff with a business_id in their token.
func MerchantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Merchant access required"})
			c.Abort()
			return
		}

		roleStr := role.(string)
		if roleStr != "merchant_owner" && roleStr != "merchant_staff" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Merchant access required"})
			c.Abort()
			return
		}

		if _, exists := c.Get("business_id"); !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "No business associated with this account"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// MerchantOwnerMiddleware requires the user to be specifically a merchant_owner.
func MerchantOwnerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || role != "merchant_owner" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Business owner access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
