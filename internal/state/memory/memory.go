package memory

import (
	"context"
	"sync"

	"finboard/internal/state"
)

// Store keeps the selection in process memory. It is lost on restart.
type Store struct {
	mu    sync.Mutex
	sel   state.Selection
	found bool
	saves int
	hist  []state.Selection
}

const maxHistory = 100

func New() *Store {
	return &Store{}
}

// NewWithSelection returns a store that already holds sel.
func NewWithSelection(sel state.Selection) *Store {
	return &Store{sel: sel, found: true}
}

func (s *Store) Load(_ context.Context) (state.Selection, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel, s.found, nil
}

// Save validates and stores the selection.
func (s *Store) Save(_ context.Context, sel state.Selection) error {
	if err := sel.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel = sel
	s.found = true
	s.saves++
	s.hist = append(s.hist, sel)
	if len(s.hist) > maxHistory {
		s.hist = s.hist[len(s.hist)-maxHistory:]
	}
	return nil
}

// History returns up to limit past selections, newest first.
func (s *Store) History(_ context.Context, limit int) ([]state.Selection, error) {
	if limit <= 0 {
		limit = state.DefaultHistoryLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]state.Selection, 0, min(limit, len(s.hist)))
	for i := len(s.hist) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.hist[i])
	}
	return out, nil
}

// Saves returns how many times Save succeeded.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
