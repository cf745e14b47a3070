package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"finboard/internal/log"
)

// handleHealth is the liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]any{
		"status":    "ok",
		"timestamp": s.clock().Format(time.RFC3339),
		"uptime":    s.clock().Sub(s.started).String(),
	}).Write(w)
}

// handleReady reports 503 until templates are loaded, a period is selected
// and the state store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ready := true
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		ready = false
	} else {
		checks["templates"] = "ok"
	}

	if d, ok := s.board.Lookup(); ok {
		checks["selection"] = d.Period.String()
	} else {
		checks["selection"] = "failed: no period selected"
		ready = false
	}

	switch {
	case s.pinger == nil:
		checks["store"] = "not_configured"
	default:
		if err := s.pinger.Ping(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness store ping failed",
				log.NewFields().WithError(err, log.ErrorTypeDatabase).ToSlice()...)
			checks["store"] = fmt.Sprintf("failed: %v", err)
			ready = false
		} else {
			checks["store"] = "ok"
		}
	}

	checks["rate_limiter"] = s.limiter.GetMetrics()
	if s.cacheStats != nil {
		checks["cache"] = s.cacheStats()
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	NewJSONResponse().Status(code).Data(map[string]any{
		"status":    status,
		"timestamp": s.clock().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}
