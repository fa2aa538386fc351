package handler

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles liveness checks
type HealthHandler struct {
	BaseHandler
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	h.Success(c, HealthResponse{
		Status:    "ok",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
