package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newMetricsRegistry exposes the middleware, cache and board counters. The
// values are read on scrape, so nothing has to be incremented twice.
func (s *Server) newMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, func() float64 { return float64(s.tracer.GetMetrics().TotalRequests) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "http_request_duration_avg_microseconds",
			Help: "Average request duration",
		}, func() float64 { return float64(s.tracer.GetMetrics().AverageResponseTime) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		}, func() float64 { return float64(s.limiter.GetMetrics().TotalHits) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "rate_limit_clients",
			Help: "Clients tracked by the rate limiter",
		}, func() float64 { return float64(s.limiter.ActiveClients()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "suspicious_requests_total",
			Help: "Requests flagged as suspicious",
		}, func() float64 { return float64(s.detector.SuspiciousRequests()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "board_selected",
			Help: "Whether a period is selected",
		}, func() float64 {
			if _, ok := s.board.Lookup(); ok {
				return 1
			}
			return 0
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "uptime_seconds",
			Help: "Seconds since start",
		}, func() float64 { return s.clock().Sub(s.started).Seconds() }),
	)

	if s.cacheStats != nil {
		reg.MustRegister(
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "dashboard_cache_hits_total",
				Help: "Dashboard cache hits",
			}, func() float64 { return float64(s.cacheStats().Hits) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "dashboard_cache_misses_total",
				Help: "Dashboard cache misses",
			}, func() float64 { return float64(s.cacheStats().Misses) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "dashboard_cache_evictions_total",
				Help: "Dashboard cache evictions",
			}, func() float64 { return float64(s.cacheStats().Evictions) }),
		)
	}
	return reg
}

func (s *Server) metricsHandler() http.Handler {
	return promhttp.HandlerFor(s.newMetricsRegistry(), promhttp.HandlerOpts{})
}
