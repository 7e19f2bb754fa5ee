// Package applog sets up the process-wide structured logger and hands out
// per-component loggers.
package applog

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// EnvLevel overrides the configured log level when set.
const EnvLevel = "CANVASEDIT_LOG_LEVEL"

var (
	mu   sync.RWMutex
	base = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// ParseLevel maps a level name to a slog level. Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromEnv returns the level named by CANVASEDIT_LOG_LEVEL, or fallback.
func LevelFromEnv(fallback string) string {
	if v := os.Getenv(EnvLevel); v != "" {
		return v
	}
	return fallback
}

// Init replaces the base logger with a text handler writing to w at the given
// level and installs it as the slog default.
func Init(w io.Writer, level string) {
	if w == nil {
		w = os.Stderr
	}
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
	mu.Lock()
	base = l
	mu.Unlock()
	slog.SetDefault(l)
}

// WithComponent returns a logger tagged with component=name.
func WithComponent(name string) *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With(slog.String("component", name))
}
