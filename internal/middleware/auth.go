package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"familygraph_go/internal/service"
)

// ClaimsContextKey 上下文中存放JWT声明的键
const ClaimsContextKey = "auth_claims"

// AuthMiddleware 认证中间件：校验Bearer令牌并把声明放入上下文
func AuthMiddleware(auth *service.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set(ClaimsContextKey, claims)
		c.Next()
	}
}

// ClaimsFromContext 从gin上下文中取出JWT声明
func ClaimsFromContext(c *gin.Context) (*service.Claims, bool) {
	value, exists := c.Get(ClaimsContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*service.Claims)
	return claims, ok
}
