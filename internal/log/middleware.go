package log

import (
	"context"
	"log/slog"
	"net/http"

	"finboard/internal/core"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// NewContext returns ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the request context, falling back to
// the slog default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger logs the recurring domain events with consistent fields.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogHTTPEnd logs a finished request; 4xx at warn, 5xx at error.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 500 {
		level = slog.LevelError
	} else if statusCode >= 400 {
		level = slog.LevelWarn
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
		WithHTTPResponse(statusCode, durationMs).
		WithClientIP(clientIP)

	sl.logger.WithComponent(ComponentHTTP).Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogPeriodSelected logs a board selection change.
func (sl *StructuredLogger) LogPeriodSelected(ctx context.Context, p core.Period, seed uint64, revision string, records int) {
	fields := NewFields().
		WithSelection(p, seed, revision).
		WithOperation(OpSelect)
	fields[FieldRecords] = records

	sl.logger.WithComponent(ComponentBoard).InfoContext(ctx, "Period selected", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation, errorType string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	fields.WithError(err, errorType).WithOperation(operation)

	sl.logger.WithComponent(component).ErrorContext(ctx, msg, fields.ToSlice()...)
}
