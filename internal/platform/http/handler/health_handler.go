// Package handler provides HTTP handlers for platform-level endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health handles the /healthz liveness endpoint and prevents caching.
func Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Check pings one dependency.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Ready returns the /readyz handler. It answers 503 when any check fails.
func Ready(timeout time.Duration, checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		status := http.StatusOK
		results := gin.H{}
		for _, chk := range checks {
			if err := chk.Ping(ctx); err != nil {
				slog.WarnContext(ctx, "readiness check failed", "check", chk.Name, "error", err)
				results[chk.Name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[chk.Name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "unavailable"
		}
		c.JSON(status, gin.H{"status": state, "checks": results})
	}
}
