package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"scavnger-backend/internal/clients"
	"scavnger-backend/internal/db"
)

// PingHandler responds to liveness probes.
// GET /ping
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// HealthCheckHandler reports overall service health.
// GET /health
func HealthCheckHandler(chain *clients.ChainClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{
			"status":  "ok",
			"service": "scavnger-backend",
		}

		if db.DB != nil {
			if sqlDB, err := db.DB.DB(); err != nil || sqlDB.Ping() != nil {
				status["database"] = "unhealthy"
				status["status"] = "degraded"
			} else {
				status["database"] = "healthy"
			}
		}

		if chain != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := chain.TestConnection(ctx); err != nil {
				status["chain"] = "unreachable"
				status["status"] = "degraded"
			} else {
				status["chain"] = "healthy"
			}
		}

		c.JSON(http.StatusOK, status)
	}
}

// NotFoundHandler is the catch-all for unknown routes.
func NotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error":   "Route not found",
		"path":    c.Request.URL.Path,
	})
}
