package config_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/drunkyet/internal/config"
	"github.com/okian/drunkyet/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// waitForLevel drains changes until a config with level arrives or the deadline passes.
func waitForLevel(changes <-chan *config.Config, level string) string {
	// A truncate may be observed before the write lands.
	var got string
	deadline := time.After(2 * time.Second)
	for got != level {
		select {
		case c := <-changes:
			got = c.LogLevel
		case <-deadline:
			return got
		}
	}
	return got
}

func TestWatch(t *testing.T) {
	convey.Convey("Given a watched config file", t, func() {
		convey.So(logger.InitWithWriter(io.Discard, logger.FormatJSON), convey.ShouldBeNil)
		clearConfigEnvVars()

		path := createTempConfigFile("log_level: info\n")
		defer func() { _ = os.RemoveAll(filepath.Dir(path)) }()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes := make(chan *config.Config, 8)
		done := make(chan error, 1)
		go func() {
			done <- config.Watch(ctx, path, func(c *config.Config) { changes <- c })
		}()
		// Give the watcher time to register the directory.
		time.Sleep(100 * time.Millisecond)

		convey.Convey("When the file is rewritten with a new level", func() {
			convey.So(os.WriteFile(path, []byte("log_level: debug\n"), 0o600), convey.ShouldBeNil)

			convey.Convey("Then onChange receives the reloaded config", func() {
				convey.So(waitForLevel(changes, "debug"), convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When an editor saves by renaming a temp file over it", func() {
			tmp := filepath.Join(filepath.Dir(path), ".config.yaml.swp")
			convey.So(os.WriteFile(tmp, []byte("log_level: warn\n"), 0o600), convey.ShouldBeNil)
			convey.So(os.Rename(tmp, path), convey.ShouldBeNil)

			convey.Convey("Then the replacement is reloaded", func() {
				convey.So(waitForLevel(changes, "warn"), convey.ShouldEqual, "warn")
			})

			convey.Convey("Then later writes are still picked up", func() {
				convey.So(waitForLevel(changes, "warn"), convey.ShouldEqual, "warn")
				convey.So(os.WriteFile(path, []byte("log_level: error\n"), 0o600), convey.ShouldBeNil)
				convey.So(waitForLevel(changes, "error"), convey.ShouldEqual, "error")
			})
		})

		convey.Convey("When a sibling file changes", func() {
			other := filepath.Join(filepath.Dir(path), "other.yaml")
			convey.So(os.WriteFile(other, []byte("log_level: debug\n"), 0o600), convey.ShouldBeNil)

			convey.Convey("Then onChange is not called", func() {
				select {
				case c := <-changes:
					convey.So(c, convey.ShouldBeNil)
				case <-time.After(200 * time.Millisecond):
				}
			})
		})

		convey.Convey("When the context is cancelled", func() {
			cancel()

			convey.Convey("Then Watch returns without error", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(2 * time.Second):
					convey.So("watch did not stop", convey.ShouldBeEmpty)
				}
			})
		})
	})

	convey.Convey("Given a missing file", t, func() {
		err := config.Watch(context.Background(), "/non/existent/config.yaml", func(*config.Config) {})

		convey.Convey("Then Watch fails immediately", func() {
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
