package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(perMinute int) (*Limiter, *clock) {
	c := &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	return newLimiter(Config{RequestsPerMinute: perMinute}, c.Now), c
}

func TestAllowBurstThenRefill(t *testing.T) {
	rl, c := newTestLimiter(3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("fourth request within the minute should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("other clients have their own bucket")
	}

	c.Advance(20 * time.Second)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("one token should refill after 20s at 3/min")
	}

	if got := rl.GetMetrics(); got.TotalHits != 1 || got.ClientCount != 2 {
		t.Fatalf("unexpected metrics %+v", got)
	}
}

func TestCleanupForgetsStaleClients(t *testing.T) {
	rl, c := newTestLimiter(10)
	rl.Allow("a")
	c.Advance(11 * time.Minute)
	rl.Allow("b")

	if removed := rl.cleanupStaleEntries(); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if rl.ActiveClients() != 1 {
		t.Fatalf("active clients = %d", rl.ActiveClients())
	}
}

func TestMiddlewareLimitsOnlyListedMethods(t *testing.T) {
	rl, _ := newTestLimiter(1)
	h := rl.Middleware(func(*http.Request) string { return "ip" }, nil, http.MethodPost)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	do := func(method string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(method, "/api/period", nil))
		return rr
	}

	if rr := do(http.MethodPost); rr.Code != http.StatusNoContent {
		t.Fatalf("first POST status %d", rr.Code)
	}
	rr := do(http.MethodPost)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST status %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
	for i := 0; i < 5; i++ {
		if rr := do(http.MethodGet); rr.Code != http.StatusNoContent {
			t.Fatalf("GET should not be limited, got %d", rr.Code)
		}
	}
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}
