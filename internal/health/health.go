// Package health exposes liveness and readiness endpoints.
package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler serves health check endpoints.
type Handler struct {
	db             *gorm.DB
	service        string
	aiProxyEnabled bool
}

// NewHandler creates a health Handler for the given service name.
func NewHandler(db *gorm.DB, service string, aiProxyEnabled bool) *Handler {
	return &Handler{db: db, service: service, aiProxyEnabled: aiProxyEnabled}
}

// RegisterRoutes registers the health endpoints on the router.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/health/ready", h.Ready)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"service":          h.service,
		"ai_proxy_enabled": h.aiProxyEnabled,
	})
}

// Ready handles GET /health/ready, checking the database connection.
func (h *Handler) Ready(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"service": h.service,
			"error":   "database unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": h.service,
	})
}
