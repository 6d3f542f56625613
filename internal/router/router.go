// Package router assembles the gin engine.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/handlers"
	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Vault     *handlers.VaultHandler
	Admin     *handlers.AdminHandler
	AdminAuth *handlers.AdminAuthHandler
	WebSocket *handlers.WebSocketHandler
}

// New builds the engine with all routes mounted.
func New(h Handlers, logger *logrus.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	engine.Use(corsMiddleware())

	engine.GET("/api/health", handlers.HealthHandler)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	vault := engine.Group("/api/vault")
	{
		vault.POST("/deposit", h.Vault.Deposit)
		vault.POST("/withdraw", h.Vault.Withdraw)
		vault.GET("/withdrawn/:recipient", h.Vault.GetTotalWithdrawn)
		vault.GET("/status", h.Vault.GetStatus)
	}

	engine.GET("/api/ws/events", h.WebSocket.StreamEvents)

	engine.POST("/api/admin/login", h.AdminAuth.Login)
	adminAuth := middleware.NewAdminAuthMiddleware(h.AdminAuth.JWTSecret(), logger)
	admin := engine.Group("/api/admin", adminAuth.RequireAuth())
	{
		admin.GET("/authorizations", h.Admin.ListAuthorizations)
	}

	return engine
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		entry := logger.WithFields(logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": c.Writer.Status(),
			"client": c.ClientIP(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Debug("request handled")
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
