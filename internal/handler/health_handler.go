package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthChecker is implemented by dependencies that can report readiness
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	service  string
	checkers map[string]HealthChecker
}

// NewHealthHandler creates a HealthHandler. checkers maps a dependency name
// to its checker.
func NewHealthHandler(service string, checkers map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{service: service, checkers: checkers}
}

// Health returns basic liveness
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.service,
	})
}

// Ready pings every dependency
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	status := http.StatusOK
	deps := make(gin.H, len(h.checkers))
	for name, checker := range h.checkers {
		if err := checker.HealthCheck(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			deps[name] = "disconnected"
			continue
		}
		deps[name] = "connected"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	c.JSON(status, gin.H{
		"status":       state,
		"service":      h.service,
		"dependencies": deps,
	})
}
