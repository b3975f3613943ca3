// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/okian/drunkyet/internal/app"
	"github.com/okian/drunkyet/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Calculate(ctx context.Context, c app.Calculation) (app.Result, error)
}

// Defaults for Server options.
const (
	DefaultMaxBodyBytes = 1 << 20
	DefaultServiceName  = "are-you-drunk-yet"
)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	calculateHandler *CalculateHandler
	dashboardHandler *dashboardHandler

	tracer trace.Tracer
	cors   CORSConfig
	logger logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxBodyBytes int64
	serviceName  string
	tracer       trace.Tracer
	cors         CORSConfig
}

// WithMaxBodyBytes caps request bodies; larger bodies get 413.
func WithMaxBodyBytes(n int64) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithServiceName sets the service name reported by /health.
func WithServiceName(name string) Option {
	return func(o *serverOptions) {
		if name != "" {
			o.serviceName = name
		}
	}
}

// WithTracer sets the tracer used for per-request spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *serverOptions) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithCORS sets the CORS policy.
func WithCORS(c CORSConfig) Option {
	return func(o *serverOptions) {
		o.cors = c
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{
		maxBodyBytes: DefaultMaxBodyBytes,
		serviceName:  DefaultServiceName,
		tracer:       noop.NewTracerProvider().Tracer(""),
		cors:         CORSConfig{AllowedOrigins: []string{"*"}},
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Server{
		healthHandler:    NewHealthHandler(o.serviceName),
		statsHandler:     NewStatsHandler(statsProvider),
		calculateHandler: NewCalculateHandler(deps, o.maxBodyBytes),
		dashboardHandler: newDashboardHandler(),
		tracer:           o.tracer,
		cors:             o.cors,
		logger:           logger.Named("api"),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/api/calculate", s.instrument(s.calculateHandler.HandleCalculate, "calculate"))
	mux.HandleFunc("/health", s.instrument(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("/metrics", s.instrument(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("/stats", s.instrument(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/test", s.instrument(s.healthHandler.HandleTest, "test"))
	mux.HandleFunc("/favicon.ico", s.healthHandler.HandleFavicon)
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
}

// Handler wraps next with the request-scoped middleware shared by every route.
func (s *Server) Handler(next http.Handler) http.Handler {
	return RequestIDMiddleware(CORSMiddleware(s.cors, s.logger, next))
}

// instrument applies tracing and metrics to a single route.
func (s *Server) instrument(h http.HandlerFunc, endpoint string) http.HandlerFunc {
	return TracingMiddleware(s.tracer, MetricsMiddleware(h, endpoint), endpoint)
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// writeJSON encodes v before writing the status so an unencodable value
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.Marshal(errorResponse{Code: "internal_error", Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = message(err)
	}
	writeJSON(w, status, errorResponse{Code: code, Error: msg})
}
