// Package loadtest drives concurrent calculations against a running server
// and checks every answer against the local estimator.
package loadtest

import (
	"errors"
	"time"

	"github.com/okian/drunkyet/internal/app"
)

// Sentinel errors.
var (
	ErrInvalidConfig = errors.New("invalid load test config")
	ErrUnhealthy     = errors.New("service health check failed")
	ErrVerification  = errors.New("load test verification failed")
)

// Config holds configuration for a load test run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Requests   int           // Number of calculations to submit
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Optional JSON report of every sample
}

func (c *Config) validate() error {
	switch {
	case c.BaseURL == "":
		return errors.Join(ErrInvalidConfig, errors.New("url must not be empty"))
	case c.Requests <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("requests must be positive"))
	case c.Workers <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("workers must be positive"))
	case c.Timeout <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("timeout must be positive"))
	}
	return nil
}

// Request is one generated calculation, in the wire shape of POST /api/calculate.
type Request struct {
	ID            string  `json:"-"`
	Weight        float64 `json:"weight"`
	WeightUnit    string  `json:"weight_unit,omitempty"`
	Sex           string  `json:"sex"`
	CurrentDrinks float64 `json:"current_drinks"`
}

func (r Request) calculation() app.Calculation {
	return app.Calculation{
		Weight:        r.Weight,
		WeightUnit:    r.WeightUnit,
		Sex:           r.Sex,
		CurrentDrinks: r.CurrentDrinks,
	}
}

// Sample records one submitted request and its outcome.
type Sample struct {
	ID        string     `json:"id"`
	Request   Request    `json:"request"`
	Status    int        `json:"status"`
	Result    app.Result `json:"result"`
	Expected  app.Result `json:"expected"`
	Match     bool       `json:"match"`
	LatencyMs float64    `json:"latency_ms"`
	Error     string     `json:"error,omitempty"`
}

// Stats holds test statistics.
type Stats struct {
	Generated  int           `json:"generated"`
	Submitted  int           `json:"submitted"`
	Successful int           `json:"successful"`
	Mismatched int           `json:"mismatched"`
	Failed     int           `json:"failed"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Duration   time.Duration `json:"duration"`
	// Latency percentiles over successful requests, in milliseconds.
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// Report is the outcome of Run.
type Report struct {
	Stats   Stats    `json:"stats"`
	Samples []Sample `json:"samples"`
}

// RequestsPerSecond returns throughput over the whole run.
func (s Stats) RequestsPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Submitted) / s.Duration.Seconds()
}
