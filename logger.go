package v3pool

import (
	"log/slog"
	"os"
)

// Logger is a standard interface for structured, leveled logging, used by
// the hydration driver and live log stream. Components accept this
// interface rather than a concrete logging library so callers can plug in
// their own.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger returns the default Logger implementation: a JSON handler
// writing to stdout.
func NewSlogLogger() Logger {
	return &slogLogger{logger: slog.New(slog.NewJSONHandler(os.Stdout, nil))}
}

func (l *slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// noopLogger discards everything; used as the default when no Logger is
// configured.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
