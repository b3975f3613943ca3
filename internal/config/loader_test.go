package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/drunkyet/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":5000")
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, int64(1<<20))
				convey.So(cfg.TracingExporter, convey.ShouldEqual, "otlp")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("DRUNKYET_ADDR", ":8080")
			_ = os.Setenv("DRUNKYET_LOG_LEVEL", "debug")
			_ = os.Setenv("DRUNKYET_MAX_BODY_BYTES", "4096")
			_ = os.Setenv("DRUNKYET_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
			_ = os.Setenv("DRUNKYET_CORS_ALLOW_CREDENTIALS", "true")
			_ = os.Setenv("DRUNKYET_TRACING_ENABLED", "true")
			_ = os.Setenv("DRUNKYET_TRACING_SAMPLE_RATE", "0.25")
			_ = os.Setenv("DRUNKYET_SHUTDOWN_TIMEOUT", "3s")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, int64(4096))
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble,
					[]string{"https://a.example", "https://b.example"})
				convey.So(cfg.CORSAllowCredentials, convey.ShouldBeTrue)
				convey.So(cfg.TracingEnabled, convey.ShouldBeTrue)
				convey.So(cfg.TracingSampleRate, convey.ShouldEqual, 0.25)
				convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 3*time.Second)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
log_format: console
cors_allowed_origins:
  - https://app.example
cors_max_age: 60
tracing_exporter: zipkin
service_name: drunk-test
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("DRUNKYET_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "console")
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"https://app.example"})
				convey.So(cfg.CORSMaxAge, convey.ShouldEqual, 60)
				convey.So(cfg.TracingExporter, convey.ShouldEqual, "zipkin")
				convey.So(cfg.ServiceName, convey.ShouldEqual, "drunk-test")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info") // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
service_name: from-file
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("DRUNKYET_CONFIG", tmpFile)
			_ = os.Setenv("DRUNKYET_ADDR", ":8080") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")            // Overridden by env
				convey.So(cfg.ServiceName, convey.ShouldEqual, "from-file") // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("DRUNKYET_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("DRUNKYET_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("DRUNKYET_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When wildcard origin is combined with credentials", func() {
			_ = os.Setenv("DRUNKYET_CORS_ALLOW_CREDENTIALS", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("DRUNKYET_MAX_BODY_BYTES", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// createTempConfigFile creates a temporary YAML config file with the given content.
func createTempConfigFile(content string) string {
	dir, err := os.MkdirTemp("", "drunkyet-config")
	if err != nil {
		panic(err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		panic(err)
	}
	return path
}

// clearConfigEnvVars clears all configuration environment variables.
func clearConfigEnvVars() {
	for _, name := range []string{
		"DRUNKYET_CONFIG",
		"DRUNKYET_ADDR",
		"DRUNKYET_LOG_LEVEL",
		"DRUNKYET_LOG_FORMAT",
		"DRUNKYET_MAX_BODY_BYTES",
		"DRUNKYET_CORS_ALLOWED_ORIGINS",
		"DRUNKYET_CORS_ALLOW_CREDENTIALS",
		"DRUNKYET_CORS_MAX_AGE",
		"DRUNKYET_TRACING_ENABLED",
		"DRUNKYET_TRACING_EXPORTER",
		"DRUNKYET_TRACING_ENDPOINT",
		"DRUNKYET_TRACING_SAMPLE_RATE",
		"DRUNKYET_SERVICE_NAME",
		"DRUNKYET_WATCH_CONFIG",
		"DRUNKYET_SHUTDOWN_TIMEOUT",
		"DRUNKYET_SYSTEM_METRICS_INTERVAL",
	} {
		_ = os.Unsetenv(name)
	}
}
