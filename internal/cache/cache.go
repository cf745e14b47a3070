// Package cache provides the in-process dashboard cache and its cleanup loop.
package cache

import (
	"context"
	"sync"
	"time"

	"finboard/internal/log"
)

// Cache is the read-through cache the board builds dashboards through.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	GetOrLoad(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error)
	Size() int
}

// Stats counts cache activity since creation.
type Stats struct {
	Hits      int `json:"hits"`
	Misses    int `json:"misses"`
	Evictions int `json:"evictions"`
	Expired   int `json:"expired"`
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically cleans the registered caches.
type Manager struct {
	mu      sync.Mutex
	caches  []Cleaner
	logger  *log.Logger
	stop    chan struct{}
	done    chan struct{}
	started bool
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Manager{
		logger: logger.WithComponent(log.ComponentCache),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (m *Manager) Register(c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, c)
}

// StartCleanup runs CleanAll every interval until Stop.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	go m.loop(interval)
}

func (m *Manager) loop(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.CleanAll(); n > 0 {
				m.logger.Debug("Expired cache entries removed", "removed", n)
			}
		case <-m.stop:
			return
		}
	}
}

// CleanAll cleans every registered cache once and returns the total removed.
func (m *Manager) CleanAll() int {
	m.mu.Lock()
	caches := append([]Cleaner(nil), m.caches...)
	m.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	return total
}

// Stop ends the cleanup loop and waits for it. Safe to call when the loop
// was never started.
func (m *Manager) Stop() {
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()

	select {
	case <-m.stop:
		return
	default:
		close(m.stop)
	}
	if started {
		<-m.done
	}
}
