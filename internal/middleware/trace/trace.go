// Package trace assigns every request an id, puts a request-scoped logger in
// its context and logs its completion.
package trace

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"finboard/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"

	// RequestIDHeader is read from trusted callers and echoed on responses.
	RequestIDHeader = "X-Request-ID"
)

// Middleware handles request tracing and logging
type Middleware struct {
	logger    *log.Logger
	events    *log.StructuredLogger
	extractIP func(*http.Request) string

	totalRequests atomic.Int64
	totalMicros   atomic.Int64
}

// Metrics tracks request metrics
type Metrics struct {
	TotalRequests       int64 `json:"totalRequests"`
	AverageResponseTime int64 `json:"averageResponseMicros"`
}

func NewMiddleware(logger *log.Logger, extractIP func(*http.Request) string) *Middleware {
	return &Middleware{
		logger:    logger.WithComponent(log.ComponentHTTP),
		events:    log.NewStructuredLogger(logger),
		extractIP: extractIP,
	}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := requestIDFrom(r)
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = log.NewContext(ctx, m.logger.With(log.FieldRequestID, requestID))
		r = r.WithContext(ctx)
		w.Header().Set(RequestIDHeader, requestID)

		m.totalRequests.Add(1)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		m.totalMicros.Add(duration.Microseconds())
		m.events.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// requestIDFrom keeps a well-formed incoming id and generates one otherwise.
func requestIDFrom(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(RequestIDHeader)); id != "" && len(id) <= 64 && isToken(id) {
		return id
	}
	return GenerateRequestID()
}

func isToken(s string) bool {
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

func GenerateRequestID() string {
	return "req_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func (m *Middleware) GetMetrics() Metrics {
	total := m.totalRequests.Load()
	var avg int64
	if total > 0 {
		avg = m.totalMicros.Load() / total
	}
	return Metrics{TotalRequests: total, AverageResponseTime: avg}
}
