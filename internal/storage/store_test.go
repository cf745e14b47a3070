package storage

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"finboard/internal/core"
	"finboard/internal/state"
)

func newTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "finboard.db")
	s, err := NewSQLiteStore(path, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	if _, found, err := s.Load(ctx); err != nil || found {
		t.Fatalf("fresh store: found=%v err=%v", found, err)
	}

	at := time.Date(2024, 3, 5, 10, 0, 0, 123, time.UTC)
	sel := state.Selection{Period: core.Period{Year: 2024, Month: time.March}, Seed: math.MaxUint64, UpdatedAt: at}
	if err := s.Save(ctx, sel); err != nil {
		t.Fatalf("save: %v", err)
	}
	next := state.Selection{Period: core.Period{Year: 2024, Month: time.April}, Seed: 1, UpdatedAt: at.Add(time.Minute)}
	if err := s.Save(ctx, next); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, found, err := s.Load(ctx)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if got.Period != next.Period || got.Seed != 1 || !got.UpdatedAt.Equal(next.UpdatedAt) {
		t.Fatalf("unexpected selection %+v", got)
	}

	hist, err := s.History(ctx, 10)
	if err != nil || len(hist) != 2 {
		t.Fatalf("history: %v (%d)", err, len(hist))
	}
	if hist[0].Period != next.Period || hist[1].Seed != math.MaxUint64 {
		t.Fatalf("unexpected history order %+v", hist)
	}

	// reopening runs migrations again without error and keeps the row
	s.Close()
	reopened, err := NewSQLiteStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if got, found, _ := reopened.Load(ctx); !found || got.Period != next.Period {
		t.Fatalf("selection lost after reopen: %+v", got)
	}
}

func TestSQLiteStoreRejectsInvalidSelection(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.Save(context.Background(), state.Selection{Period: core.Period{Year: 2024, Month: 0}})
	if !errors.Is(err, state.ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
