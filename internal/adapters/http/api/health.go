package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turnoverhq/turnover/pkg/metrics"
)

// HealthDependencies defines the interface for liveness checks.
type HealthDependencies interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness probes. No authentication.
type HealthHandler struct {
	deps    HealthDependencies
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps HealthDependencies) *HealthHandler {
	return &HealthHandler{deps: deps, started: time.Now()}
}

// HandleHealth handles GET /healthz.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	status := "ok"
	code := http.StatusOK
	if err := h.deps.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{
		"status": status,
		"uptime": time.Since(h.started).Truncate(time.Second).String(),
	})
}

// metricsHandler exposes the Prometheus registry in text exposition format.
func metricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
