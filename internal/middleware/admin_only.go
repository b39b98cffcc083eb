package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminOnly guards admin routes. Order status updates have no ownership
// check in the service layer; this guard is the authorization boundary.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("userRole") != "ADMIN" {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin privileges required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
