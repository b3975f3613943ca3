package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/okian/drunkyet/internal/adapters/http/api"
	"github.com/okian/drunkyet/internal/adapters/http/site"
	"github.com/okian/drunkyet/internal/adapters/http/swagger"
	"github.com/okian/drunkyet/internal/app"
	"github.com/okian/drunkyet/internal/config"
	"github.com/okian/drunkyet/pkg/logger"
	"github.com/okian/drunkyet/pkg/metrics"
	"github.com/okian/drunkyet/pkg/tracing"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), *configPath)
		},
	}
}

// serve loads configuration (defaults -> optional file -> env) and runs the
// server until ctx is cancelled.
func serve(ctx context.Context, configPath string) error {
	cfg, err := config.LoadFile(ctx, configPath)
	if err != nil {
		return err
	}

	if err := logger.InitWithWriter(os.Stdout, cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return run(ctx, cfg, configPath)
}

// run starts the tracer, service and HTTP server along with the background
// workers, and shuts everything down once ctx is cancelled or any of them fails.
func run(ctx context.Context, cfg *config.Config, configPath string) error {
	log := logger.Get()

	tp, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		Endpoint:       cfg.TracingEndpoint,
		SampleRate:     cfg.TracingSampleRate,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn(ctx, "tracer shutdown failed", logger.Error(err))
		}
	}()

	svc := app.New(
		app.WithLogger(logger.Named("service")),
		app.WithTracer(tp.Tracer()),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc, tp.Tracer()),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return api.WrapKind("http.listen", api.ErrServe, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return api.Wrap("http.shutdown", err)
		}
		log.Info(ctx, "server stopped")
		return nil
	})

	g.Go(func() error {
		return metrics.RunSystemCollector(gctx, cfg.SystemMetricsInterval)
	})

	if cfg.WatchConfig && configPath != "" {
		g.Go(func() error {
			return config.Watch(gctx, configPath, applyReload)
		})
	}

	return g.Wait()
}

// newHandler builds the route table: docs, API, then the static site on "/".
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service, tracer trace.Tracer) http.Handler {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc,
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
		api.WithServiceName(cfg.ServiceName),
		api.WithTracer(tracer),
		api.WithCORS(api.CORSConfig{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowCredentials: cfg.CORSAllowCredentials,
			MaxAge:           cfg.CORSMaxAge,
		}),
	)
	apiServer.Register(ctx, mux)

	site.Register(ctx, mux)

	return apiServer.Handler(mux)
}

// applyReload applies the settings that can change without a restart.
func applyReload(cfg *config.Config) {
	ctx := context.Background()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level in reloaded config", logger.String("log_level", cfg.LogLevel))
		return
	}
	logger.Get().Info(ctx, "log level updated; other settings apply on restart",
		logger.String("log_level", cfg.LogLevel))
}
