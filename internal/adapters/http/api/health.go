package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/drunkyet/pkg/metrics"
)

// HealthHandler handles health, metrics and liveness helper requests.
type HealthHandler struct {
	serviceName string
	metrics     http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(serviceName string) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		// Use our custom metrics registry to serve metrics
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// HandleHealth handles GET /health requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Service: h.serviceName})
}

// HandleMetrics handles GET /metrics with the Prometheus exposition format.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

// HandleTest handles GET /test, a cheap endpoint for generating traffic.
func (h *HealthHandler) HandleTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	now := float64(time.Now().UnixNano()) / float64(time.Second)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Test endpoint", "timestamp": now})
}

// HandleFavicon answers browsers with no content.
func (h *HealthHandler) HandleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
