package loadtest

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/okian/drunkyet/internal/app"
	"github.com/okian/drunkyet/internal/domain/bac"
	"github.com/okian/drunkyet/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Run executes the complete load test.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := logger.Named("loadtest")
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	client := newHTTPClient(cfg.Timeout)

	log.Info(ctx, "starting load test",
		logger.String("baseURL", baseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()))

	if err := checkServiceHealth(ctx, client, baseURL); err != nil {
		return nil, err
	}

	report := &Report{Stats: Stats{StartTime: time.Now()}}
	reqs := generateRequests(cfg.Requests)
	report.Stats.Generated = len(reqs)

	samples, err := submit(ctx, client, baseURL, cfg.Workers, reqs)
	if err != nil {
		return nil, err
	}
	report.Samples = samples

	report.Stats.EndTime = time.Now()
	report.Stats.Duration = report.Stats.EndTime.Sub(report.Stats.StartTime)
	summarize(&report.Stats, samples)

	if cfg.OutputFile != "" {
		if err := saveReport(cfg.OutputFile, report); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		} else {
			log.Info(ctx, "report saved", logger.String("filename", cfg.OutputFile))
		}
	}

	displayFinalStats(ctx, log, report.Stats)
	return report, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, baseURL string) error {
	resp, err := client.Get(ctx, baseURL+"/health")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// submit posts every request with at most workers in flight. Per-request
// failures are recorded in the sample; only cancellation aborts the run.
func submit(ctx context.Context, client *HTTPClient, baseURL string, workers int, reqs []Request) ([]Sample, error) {
	samples := make([]Sample, len(reqs))
	est := bac.NewEstimator()
	url := baseURL + "/api/calculate"

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			samples[i] = submitOne(gctx, client, url, est, reqs[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load test interrupted: %w", err)
	}
	return samples, nil
}

func submitOne(ctx context.Context, client *HTTPClient, url string, est *bac.Estimator, req Request) Sample {
	s := Sample{ID: req.ID, Request: req, Expected: expected(est, req)}

	start := time.Now()
	status, body, err := client.PostJSON(ctx, url, req.ID, req)
	s.LatencyMs = float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond)
	s.Status = status

	switch {
	case err != nil:
		s.Error = err.Error()
	case status != http.StatusOK:
		s.Error = fmt.Sprintf("unexpected status %d: %s", status, strings.TrimSpace(string(body)))
	default:
		if err := json.Unmarshal(body, &s.Result); err != nil {
			s.Error = "invalid response body: " + err.Error()
			break
		}
		s.Match = s.Result == s.Expected
	}
	return s
}

// expected computes the answer the server should give for req.
func expected(est *bac.Estimator, req Request) app.Result {
	c := req.calculation()
	e := est.Estimate(c.Profile(), c.CurrentDrinks)
	return app.Result{DrinksToTarget: e.DrinksToTarget, HoursToSober: e.HoursToSober, CurrentBAC: e.CurrentBAC}
}

func summarize(stats *Stats, samples []Sample) {
	latencies := make([]float64, 0, len(samples))
	for _, s := range samples {
		stats.Submitted++
		switch {
		case s.Error != "":
			stats.Failed++
		case !s.Match:
			stats.Mismatched++
		default:
			stats.Successful++
			latencies = append(latencies, s.LatencyMs)
		}
	}
	sort.Float64s(latencies)
	stats.P50Ms = percentile(latencies, 50)
	stats.P95Ms = percentile(latencies, 95)
	stats.P99Ms = percentile(latencies, 99)
}

// percentile uses the nearest-rank method on sorted values.
func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

// saveReport writes the report as indented JSON.
func saveReport(filename string, report *Report) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return os.WriteFile(filename, data, filePermission)
}

// displayFinalStats logs the final test statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats Stats) {
	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("mismatched", stats.Mismatched),
		logger.Int("failed", stats.Failed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("requestsPerSecond", stats.RequestsPerSecond()),
		logger.Float64("p50Ms", stats.P50Ms),
		logger.Float64("p95Ms", stats.P95Ms),
		logger.Float64("p99Ms", stats.P99Ms))
}

// Err returns an error when any request failed or disagreed with the local estimate.
func (r *Report) Err() error {
	if r.Stats.Failed == 0 && r.Stats.Mismatched == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d failed, %d mismatched of %d requests",
		ErrVerification, r.Stats.Failed, r.Stats.Mismatched, r.Stats.Submitted)
}
