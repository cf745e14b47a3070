// Package http serves the dashboard page and its JSON API.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"finboard/internal/board"
	"finboard/internal/cache"
	"finboard/internal/log"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/middleware/security"
	"finboard/internal/middleware/trace"
	"finboard/internal/state"
	appweb "finboard/web"
)

const requestTimeout = 7 * time.Second

// Options wires the server to the board and its optional infrastructure.
type Options struct {
	Board              *board.Board
	Logger             *log.Logger
	Pinger             state.Pinger
	Historian          state.Historian
	CacheStats         func() cache.Stats
	RateLimitPerMinute int
	Clock              func() time.Time
}

type Server struct {
	http.Server
	board      *board.Board
	templates  *template.Template
	logger     *log.Logger
	pinger     state.Pinger
	historian  state.Historian
	cacheStats func() cache.Stats
	clock      func() time.Time
	started    time.Time

	ipExtractor *security.IPExtractor
	limiter     *ratelimit.Limiter
	tracer      *trace.Middleware
	detector    *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// server. A template parse failure is logged and the page then answers 500;
// the API keeps working.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	ipExtractor := security.NewIPExtractor()
	s := &Server{
		board:       opts.Board,
		logger:      logger.WithComponent(log.ComponentHTTP),
		pinger:      opts.Pinger,
		historian:   opts.Historian,
		cacheStats:  opts.CacheStats,
		clock:       clock,
		started:     clock(),
		ipExtractor: ipExtractor,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		tracer:   trace.NewMiddleware(logger, ipExtractor.ClientIP),
		detector: security.NewDetector(logger, ipExtractor.ClientIP),
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.WithComponent(log.ComponentTemplate).Warn("Failed parsing templates",
			log.NewFields().WithError(err, log.ErrorTypeConfiguration).ToSlice()...)
	} else {
		s.templates = t
	}

	s.Addr = addr
	s.Handler = s.routes()
	s.ReadHeaderTimeout = 5 * time.Second
	s.ReadTimeout = 10 * time.Second
	s.WriteTimeout = 10 * time.Second
	s.IdleTimeout = 60 * time.Second
	s.MaxHeaderBytes = 1 << 16
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS",
			log.NewFields().WithError(err, log.ErrorTypeConfiguration).ToSlice()...)
	}

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metricsHandler())

	limit := s.limiter.Middleware(s.ipExtractor.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
			log.NewFields().WithClientIP(s.ipExtractor.ClientIP(r)).WithHTTPRequest(r.Method, r.URL.Path, "", "").ToSlice()...)
		TooManyRequestsError().Write(w)
	}, http.MethodPost)

	api := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, security.NoStore(limit(h)))
	}
	api("GET /api/period", s.handleGetPeriod)
	api("POST /api/period", s.handleSelectPeriod)
	api("POST /api/period/shift", s.handleShiftPeriod)
	api("GET /api/period/history", s.handleHistory)
	api("GET /api/transactions", s.handleTransactions)
	api("GET /api/metrics", s.handleMetricCards)
	api("GET /api/target", s.handleTarget)
	api("GET /api/statistics", s.handleStatistics)
	api("GET /api/charts/bar", s.handleBarChart)
	api("GET /api/charts/pie", s.handlePieChart)
	api("GET /api/calendar", s.handleCalendar)
	api("GET /api/notifications", s.handleNotifications)

	var h http.Handler = mux
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	h = s.tracer.Middleware(h)
	return h
}

// Shutdown stops the rate limiter and drains the server. Safe to call more
// than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
