package logger

import (
	"log/slog"

	"time_dividends/internal/app/port"
)

// slogAdapter реализует интерфейс port.Logger поверх глобального логгера.
// With-атрибуты накапливаются и добавляются к каждой записи.
type slogAdapter struct {
	attrs []any
}

// NewSlogAdapter создает новый экземпляр slogAdapter.
func NewSlogAdapter() port.Logger {
	return &slogAdapter{}
}

func (a *slogAdapter) logger() *slog.Logger {
	ensureInitialized()
	if len(a.attrs) == 0 {
		return globalLogger
	}
	return globalLogger.With(a.attrs...)
}

func (a *slogAdapter) Info(msg string, args ...any) {
	logAt(a.logger(), slog.LevelInfo, msg, args...)
}

func (a *slogAdapter) Debug(msg string, args ...any) {
	logAt(a.logger(), slog.LevelDebug, msg, args...)
}

func (a *slogAdapter) Warn(msg string, args ...any) {
	logAt(a.logger(), slog.LevelWarn, msg, args...)
}

func (a *slogAdapter) Error(msg string, args ...any) {
	logAt(a.logger(), slog.LevelError, msg, args...)
}

// With returns an adapter that adds args to every record.
func (a *slogAdapter) With(args ...any) port.Logger {
	attrs := make([]any, 0, len(a.attrs)+len(args))
	attrs = append(attrs, a.attrs...)
	attrs = append(attrs, args...)
	return &slogAdapter{attrs: attrs}
}

type nopLogger struct{}

// NewNop returns a port.Logger that discards everything. Useful in tests.
func NewNop() port.Logger { return nopLogger{} }

func (nopLogger) Info(string, ...any) {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
func (n nopLogger) With(...any) port.Logger { return n }
