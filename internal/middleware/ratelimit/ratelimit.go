// Package ratelimit limits requests per client with a token bucket per
// client address.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Limiter provides per-client rate limiting
type Limiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
	now          func() time.Time
	hits         atomic.Int64

	requestsPerMinute int
	cleanupInterval   time.Duration
	staleAfter        time.Duration
}

type clientInfo struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
	StaleAfter        time.Duration
}

// DefaultConfig allows 60 requests per minute per client.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
		StaleAfter:        10 * time.Minute,
	}
}

// NewLimiter creates a limiter and starts its cleanup goroutine; call Stop
// to end it.
func NewLimiter(config Config) *Limiter {
	rl := newLimiter(config, time.Now)
	go rl.startCleanup()
	return rl
}

func newLimiter(config Config, now func() time.Time) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}
	if config.StaleAfter <= 0 {
		config.StaleAfter = def.StaleAfter
	}
	return &Limiter{
		clients:           make(map[string]*clientInfo),
		stopCleanup:       make(chan struct{}),
		now:               now,
		requestsPerMinute: config.RequestsPerMinute,
		cleanupInterval:   config.CleanupInterval,
		staleAfter:        config.StaleAfter,
	}
}

// Allow reports whether a request from clientIP may proceed. Each client
// gets a bucket of RequestsPerMinute tokens refilled evenly over a minute.
func (rl *Limiter) Allow(clientIP string) bool {
	rl.mu.Lock()
	now := rl.now()
	client, ok := rl.clients[clientIP]
	if !ok {
		client = &clientInfo{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rl.requestsPerMinute)), rl.requestsPerMinute),
		}
		rl.clients[clientIP] = client
	}
	client.lastSeen = now
	rl.mu.Unlock()

	if client.limiter.AllowN(now, 1) {
		return true
	}
	rl.hits.Add(1)
	return false
}

func (rl *Limiter) startCleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries forgets clients not seen for StaleAfter.
func (rl *Limiter) cleanupStaleEntries() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.staleAfter)
	removed := 0
	for ip, client := range rl.clients {
		if client.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
			removed++
		}
	}
	return removed
}

// ActiveClients returns the number of currently tracked clients
func (rl *Limiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (rl *Limiter) Stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// Metrics for monitoring rate limit performance
type Metrics struct {
	TotalHits   int64 `json:"totalHits"`
	ClientCount int64 `json:"clientCount"`
}

func (rl *Limiter) GetMetrics() Metrics {
	return Metrics{
		TotalHits:   rl.hits.Load(),
		ClientCount: int64(rl.ActiveClients()),
	}
}

// Middleware limits requests whose method is in methods (all methods when
// empty). onLimit writes the rejection; nil sends a plain 429.
func (rl *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request), methods ...string) func(http.Handler) http.Handler {
	limited := make(map[string]bool, len(methods))
	for _, m := range methods {
		limited[m] = true
	}
	retryAfter := strconv.Itoa(int((time.Minute / time.Duration(rl.requestsPerMinute)).Seconds()) + 1)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(limited) > 0 && !limited[r.Method] {
				next.ServeHTTP(w, r)
				return
			}
			if !rl.Allow(extractIP(r)) {
				w.Header().Set("Retry-After", retryAfter)
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
