// Package state defines where the board keeps its selection between runs.
package state

import (
	"context"
	"errors"
	"time"

	"finboard/internal/core"
)

// ErrInvalidSelection is returned when saving a selection with an invalid
// period.
var ErrInvalidSelection = errors.New("invalid selection")

// DefaultHistoryLimit is used when History is called without a limit.
const DefaultHistoryLimit = 20

// Selection is the period and seed the board currently shows.
type Selection struct {
	Period    core.Period `json:"period"`
	Seed      uint64      `json:"seed"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func (s Selection) Validate() error {
	if err := s.Period.Validate(); err != nil {
		return errors.Join(ErrInvalidSelection, err)
	}
	return nil
}

// Ports for outbound adapters.
type (
	// Store persists the board selection. Load reports found=false when
	// nothing was saved yet.
	Store interface {
		Load(ctx context.Context) (sel Selection, found bool, err error)
		Save(ctx context.Context, sel Selection) error
	}

	// Historian lists past selections, newest first.
	Historian interface {
		History(ctx context.Context, limit int) ([]Selection, error)
	}

	// Pinger is implemented by stores backed by a connection that can be
	// checked for readiness.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
