package middleware

import (
	"library-lending-backend/internal/shared/response"
	"library-lending-backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware checks if staff has admin role (set by AuthMiddleware)
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ContextRole)
		if !ok || role != jwt.RoleAdmin {
			response.Forbidden(c, "Access denied: admin role required")
			c.Abort()
			return
		}

		c.Next()
	}
}
