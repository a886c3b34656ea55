// Package observability wires structured logging, Prometheus metrics and
// OpenTelemetry tracing.
package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns a JSON logger on stdout that adds trace ids from the context.
// The dev environment logs at debug level.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewTraceHandler(handler))
}
