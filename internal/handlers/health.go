// internal/handlers/health.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shoploop/shoploop-backend/internal/utils"
)

const apiVersion = "1.0.0"

type HealthHandler struct {
	db      *gorm.DB
	started time.Time
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{
		db:      db,
		started: time.Now(),
	}
}

// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": apiVersion,
	})
}

// GET /health/detailed
func (h *HealthHandler) Detailed(c *gin.Context) {
	dbStatus := "up"
	var dbLatency string

	start := time.Now()
	if err := h.pingDB(); err != nil {
		dbStatus = "down"
	}
	dbLatency = time.Since(start).String()

	status := "healthy"
	code := http.StatusOK
	if dbStatus == "down" {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":  status,
		"version": apiVersion,
		"uptime":  time.Since(h.started).String(),
		"checks": gin.H{
			"database": gin.H{
				"status":  dbStatus,
				"latency": dbLatency,
			},
		},
	})
}

// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.pingDB(); err != nil {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "database unreachable", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (h *HealthHandler) pingDB() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
