package backend

import (
	"context"

	"finboard/internal/state"
)

// Store is what every selection backend provides.
type Store interface {
	state.Store
	state.Historian
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult is the selection store plus the optional event publisher
// and subscriber.
type BackendResult struct {
	Store      Store
	Publisher  Publisher
	Subscriber Subscriber
	Cleanup    CleanupFunc
}

// Close runs Cleanup when set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// AMQP, optional for every backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
