package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/solidx/indexer/internal/config"
)

func TestConfigureLevelMapping(t *testing.T) {
	cases := []struct {
		configured string
		enabled    slog.Level
		disabled   slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"", slog.LevelInfo, slog.LevelDebug},
	}
	for _, c := range cases {
		config.GetConfig().Logging.Level = c.configured
		Configure()
		logger := GetLogger()
		if !logger.Handler().Enabled(context.Background(), c.enabled) {
			t.Errorf("level %q: expected %v to be enabled", c.configured, c.enabled)
		}
		if logger.Handler().Enabled(context.Background(), c.disabled) {
			t.Errorf("level %q: expected %v to be disabled", c.configured, c.disabled)
		}
	}
}

func TestGetLoggerConfiguresIfUnset(t *testing.T) {
	globalLogger = nil
	logger := GetLogger()
	if logger == nil {
		t.Fatal("expected GetLogger to lazily configure a logger")
	}
}
