// Package app provides the core business service behind every adapter.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/okian/drunkyet/internal/domain/bac"
	"github.com/okian/drunkyet/pkg/logger"
	"github.com/okian/drunkyet/pkg/metrics"
	"github.com/okian/drunkyet/pkg/tracing"
)

// Result types recorded in calculations_total.
const (
	ResultSuccess         = "success"
	ResultValidationError = "validation_error"
)

// Span names.
const (
	SpanCalculate      = "bac.calculate"
	SpanDrinksToTarget = "bac.drinks_to_target"
	SpanTimeToSober    = "bac.time_to_sober"
)

// Service implements the API dependencies for the estimator.
type Service struct {
	estimator *bac.Estimator
	tracer    trace.Tracer
	logger    logger.Logger

	startedAt  time.Time
	successful atomic.Int64
	rejected   atomic.Int64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer sets the tracer used for calculation spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithEstimator replaces the standard estimator.
func WithEstimator(e *bac.Estimator) Option {
	return func(s *Service) {
		if e != nil {
			s.estimator = e
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		estimator: bac.NewEstimator(),
		tracer:    noop.NewTracerProvider().Tracer(""),
		startedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	return s
}

// Calculate validates c and returns the estimate.
func (s *Service) Calculate(ctx context.Context, c Calculation) (Result, error) {
	start := time.Now()
	defer func() { metrics.RecordCalculationDuration("total_request", millisSince(start)) }()

	sexLabel := bac.NormalizeSex(c.Sex)

	ctx, span := s.tracer.Start(ctx, SpanCalculate, trace.WithAttributes(
		attribute.Float64("bac.weight", c.Weight),
		attribute.String("bac.weight_unit", c.WeightUnit),
		attribute.String("bac.sex", sexLabel),
		attribute.Float64("bac.current_drinks", c.CurrentDrinks),
	))
	defer span.End()

	s.logger.Info(ctx, "calculation requested",
		logger.Float64("weight", c.Weight),
		logger.String("weight_unit", c.WeightUnit),
		logger.String("sex", sexLabel),
		logger.Float64("current_drinks", c.CurrentDrinks),
	)

	if err := c.Validate(); err != nil {
		return Result{}, s.reject(ctx, span, sexLabel, err)
	}

	p := c.Profile()
	drinks := s.drinksToTarget(ctx, p, c.CurrentDrinks)
	hours := s.timeToSober(ctx, p, c.CurrentDrinks)
	current := bac.Round(s.estimator.CurrentBAC(c.CurrentDrinks, p.WeightKg, p.Sex), bac.CurrentBACDecimals)

	// Extreme but finite inputs can still overflow the model.
	if !finite(drinks) || !finite(hours) || !finite(current) {
		return Result{}, s.reject(ctx, span, sexLabel,
			fmt.Errorf("%w: weight or current_drinks is out of range", ErrInvalidInput))
	}

	res := Result{DrinksToTarget: drinks, HoursToSober: hours, CurrentBAC: current}

	s.successful.Add(1)
	metrics.RecordSubjectWeight(p.WeightKg)
	metrics.RecordCalculation(sexLabel, ResultSuccess)
	metrics.RecordDrinksRecommended(drinks)
	metrics.RecordHoursToSober(hours)

	span.SetAttributes(
		attribute.Float64("bac.drinks_to_target", drinks),
		attribute.Float64("bac.hours_to_sober", hours),
		attribute.Float64("bac.current_bac", current),
	)
	s.logger.Debug(ctx, "calculation done",
		logger.Float64("weight_kg", p.WeightKg),
		logger.Float64("drinks_to_target", drinks),
		logger.Float64("hours_to_sober", hours),
		logger.Float64("current_bac", current),
	)
	return res, nil
}

// reject counts and reports a calculation refused for invalid input.
func (s *Service) reject(ctx context.Context, span trace.Span, sexLabel string, err error) error {
	s.rejected.Add(1)
	metrics.RecordCalculation(sexLabel, ResultValidationError)
	tracing.RecordError(span, err)
	s.logger.Warn(ctx, "calculation rejected", logger.Error(err))
	return err
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func (s *Service) drinksToTarget(ctx context.Context, p bac.Profile, drinks float64) float64 {
	_, span := s.tracer.Start(ctx, SpanDrinksToTarget)
	defer span.End()

	start := time.Now()
	v := s.estimator.DrinksToTarget(p.WeightKg, p.Sex, drinks)
	metrics.RecordCalculationDuration("drinks_to_target", millisSince(start))
	return v
}

func (s *Service) timeToSober(ctx context.Context, p bac.Profile, drinks float64) float64 {
	_, span := s.tracer.Start(ctx, SpanTimeToSober)
	defer span.End()

	start := time.Now()
	v := s.estimator.TimeToSober(drinks, p.WeightKg, p.Sex)
	metrics.RecordCalculationDuration("time_to_sober", millisSince(start))
	return v
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	m := s.estimator.Model()
	return map[string]interface{}{
		"startedAt":              s.startedAt.UTC().Format(time.RFC3339),
		"uptimeSeconds":          int64(time.Since(s.startedAt).Seconds()),
		"successfulCalculations": s.successful.Load(),
		"rejectedCalculations":   s.rejected.Load(),
		"targetBAC":              m.TargetBAC,
		"metabolismRate":         m.MetabolismRate,
	}
}

// IsInvalidInput reports whether err is a validation failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func millisSince(t time.Time) float64 {
	return float64(time.Since(t).Nanoseconds()) / float64(time.Millisecond)
}
