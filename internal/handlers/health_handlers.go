package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Pinger is a dependency that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check endpoints
type HealthHandlers struct {
	checks  map[string]Pinger
	timeout time.Duration
	log     zerolog.Logger
}

// NewHealthHandlers creates a new health handlers instance. Nil dependencies are skipped.
func NewHealthHandlers(db, cache, storage Pinger, log zerolog.Logger) *HealthHandlers {
	checks := make(map[string]Pinger)
	for name, p := range map[string]Pinger{"database": db, "redis": cache, "storage": storage} {
		if p != nil {
			checks[name] = p
		}
	}
	return &HealthHandlers{checks: checks, timeout: 3 * time.Second, log: log}
}

// HealthCheck reports liveness.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck pings every dependency and answers 503 when any of them fails.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	services := make(map[string]string, len(h.checks))
	ready := true
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			services[name] = "unhealthy"
			ready = false
			h.log.Warn().Err(err).Str("dependency", name).Msg("readiness check failed")
			continue
		}
		services[name] = "healthy"
	}

	if !ready {
		return c.JSON(http.StatusServiceUnavailable, Map{
			"status":    "not_ready",
			"message":   "Critical services unavailable",
			"services":  services,
			"timestamp": time.Now().UTC(),
		})
	}
	return c.JSON(http.StatusOK, Map{
		"status":    "ready",
		"message":   "All systems operational",
		"services":  services,
		"timestamp": time.Now().UTC(),
	})
}
