// Package middleware holds gin middleware for the HTTP surface.
package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// AdminAuthMiddleware validates the admin session JWT issued by the
// login handler.
type AdminAuthMiddleware struct {
	jwtSecret []byte
	logger    *logrus.Logger
}

// NewAdminAuthMiddleware creates the middleware.
func NewAdminAuthMiddleware(jwtSecret []byte, logger *logrus.Logger) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{jwtSecret: jwtSecret, logger: logger}
}

// RequireAuth aborts any request without a valid Bearer token.
func (a *AdminAuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header must be in format: Bearer <token>",
			})
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			a.logger.WithFields(logrus.Fields{
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Warn("rejected admin request with invalid token")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			c.Set("admin_user", claims["username"])
		}
		c.Next()
	}
}
