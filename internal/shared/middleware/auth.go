package middleware

import (
	"strings"

	"library-lending-backend/internal/shared/response"
	"library-lending-backend/pkg/jwt"
	"library-lending-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ContextStaffID = "staffID"
	ContextRole    = "role"
)

// AuthMiddleware - xác thực bearer JWT và đặt staffID (principal) vào context
func AuthMiddleware(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Lấy token từ Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		// 2. Extract token từ "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		// 3. Verify và parse JWT
		claims, err := manager.ValidateAccessToken(parts[1])
		if err != nil {
			logger.Debug("rejected access token", map[string]interface{}{"error": err.Error()})
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		staffID, err := uuid.Parse(claims.StaffID)
		if err != nil {
			response.Unauthorized(c, "invalid staff ID in token")
			c.Abort()
			return
		}

		c.Set(ContextStaffID, staffID)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// GetStaffID lấy principal đã được AuthMiddleware set
func GetStaffID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextStaffID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
