package environment

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"staysee-store/internal/config"
)

const serviceName = "staysee-store"

func initLogger(cfg config.Config) (*slog.Logger, error) {
	return newLogger(os.Stdout, cfg)
}

// newLogger writes text for ENV=local and JSON elsewhere. Every record
// carries the service name and environment.
func newLogger(w io.Writer, cfg config.Config) (*slog.Logger, error) {
	level, err := parseLogLevel(cfg.Logger.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if cfg.Env == "local" {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With("service", serviceName, "env", cfg.Env), nil
}

// parseLogLevel accepts slog level names ("info", "warn+2") and "warning".
// Empty means info.
func parseLogLevel(level string) (slog.Level, error) {
	level = strings.TrimSpace(level)
	switch strings.ToLower(level) {
	case "":
		return slog.LevelInfo, nil
	case "warning":
		return slog.LevelWarn, nil
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("logger level %q: %w", level, err)
	}
	return l, nil
}
