// Package log provides the logging abstraction used across the engine.
// The default backend is kataras/golog; a no-op logger is available for
// tests and for embedding the engine in hosts with their own logging.
package log

// Logger is the minimal logging surface the engine depends on.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// NoopLogger discards everything.
type NoopLogger struct{}

var _ Logger = (*NoopLogger)(nil)

// Debug does nothing.
func (NoopLogger) Debug(string, ...any) {}

// Info does nothing.
func (NoopLogger) Info(string, ...any) {}

// Warn does nothing.
func (NoopLogger) Warn(string, ...any) {}

// Error does nothing.
func (NoopLogger) Error(string, ...any) {}

// Package-level default, used when no logger is injected.
var defaultLogger Logger = NewGologLogger()

// SetDefault replaces the package-level logger.
func SetDefault(logger Logger) {
	defaultLogger = logger
}

// Default returns the package-level logger.
func Default() Logger {
	return defaultLogger
}
