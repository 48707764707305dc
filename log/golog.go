package log

import "github.com/kataras/golog"

// GologLogger implements Logger using kataras/golog.
type GologLogger struct {
	logger *golog.Logger
}

var _ Logger = (*GologLogger)(nil)

// NewGologLogger creates a logger writing through a fresh golog instance
// at the info level.
func NewGologLogger() *GologLogger {
	logger := golog.New()
	logger.SetLevel("info")
	return &GologLogger{logger: logger}
}

// WrapGolog wraps an existing golog.Logger, so hosts can share one
// configured instance.
func WrapGolog(logger *golog.Logger) *GologLogger {
	return &GologLogger{logger: logger}
}

// SetLevel sets the golog level by name ("debug", "info", "warn", "error",
// "disable").
func (l *GologLogger) SetLevel(level string) {
	l.logger.SetLevel(level)
}

// Debug logs a debug message.
func (l *GologLogger) Debug(format string, v ...any) {
	l.logger.Debugf(format, v...)
}

// Info logs an informational message.
func (l *GologLogger) Info(format string, v ...any) {
	l.logger.Infof(format, v...)
}

// Warn logs a warning.
func (l *GologLogger) Warn(format string, v ...any) {
	l.logger.Warnf(format, v...)
}

// Error logs an error.
func (l *GologLogger) Error(format string, v ...any) {
	l.logger.Errorf(format, v...)
}
