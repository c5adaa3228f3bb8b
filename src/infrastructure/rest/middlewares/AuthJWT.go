package middlewares

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// AuthJWTMiddleware verifies the bearer access token and stores the operator
// identity in the context. Unauthenticated callers get a synchronous 401,
// never a silent drop.
func AuthJWTMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token not provided"})
			c.Abort()
			return
		}

		accessSecret := os.Getenv("JWT_ACCESS_SECRET_KEY")
		if accessSecret == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "JWT_ACCESS_SECRET_KEY not configured"})
			c.Abort()
			return
		}

		tokenString = strings.TrimPrefix(tokenString, "Bearer ")
		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			return []byte(accessSecret), nil
		})
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		if exp, ok := claims["exp"].(float64); ok {
			if int64(exp) < jwt.TimeFunc().Unix() {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
				c.Abort()
				return
			}
		} else {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		if t, ok := claims["type"].(string); !ok || t != "access" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Token type mismatch"})
			c.Abort()
			return
		}

		operatorID, ok := claims["id"].(float64)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid operator ID in token"})
			c.Abort()
			return
		}

		role, _ := claims["role"].(string)

		c.Set("operatorID", int(operatorID))
		c.Set("operatorRole", role)
		c.Next()
	}
}

// RequiresRoleMiddleware gates an endpoint on the role claim set by
// AuthJWTMiddleware. Admin implies operator, not the other way around.
func RequiresRoleMiddleware(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get("operatorRole")
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Missing role"})
			c.Abort()
			return
		}

		operatorRole, _ := role.(string)
		if operatorRole != requiredRole && !(requiredRole == "operator" && operatorRole == "admin") {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}
