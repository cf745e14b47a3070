// Package storage is the SQLite-backed selection store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/state"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

// SQLiteStore keeps the board selection in a single-row table and appends
// every change to selection_history.
type SQLiteStore struct {
	db     *sql.DB
	logger *log.Logger
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and
// migrates it.
func NewSQLiteStore(dbPath string, logger *log.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer; sqlite serializes writes anyway
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, logger: logger.WithComponent(log.ComponentStorage)}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Load(ctx context.Context) (state.Selection, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT year, month, seed, updated_at FROM board_selection WHERE id = 1`)

	sel, err := scanSelection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return state.Selection{}, false, nil
	}
	if err != nil {
		return state.Selection{}, false, fmt.Errorf("load selection: %w", err)
	}
	return sel, true, nil
}

// Save upserts the selection and records it in the history in one
// transaction.
func (s *SQLiteStore) Save(ctx context.Context, sel state.Selection) error {
	if err := sel.Validate(); err != nil {
		return err
	}
	if sel.UpdatedAt.IsZero() {
		sel.UpdatedAt = time.Now()
	}
	seed := strconv.FormatUint(sel.Seed, 10)
	at := sel.UpdatedAt.UTC().Format(timeLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO board_selection (id, year, month, seed, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			year = excluded.year,
			month = excluded.month,
			seed = excluded.seed,
			updated_at = excluded.updated_at`,
		sel.Period.Year, int(sel.Period.Month), seed, at); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO selection_history (year, month, seed, selected_at) VALUES (?, ?, ?, ?)`,
		sel.Period.Year, int(sel.Period.Month), seed, at); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.DebugContext(ctx, "Selection saved",
		log.NewFields().WithSelection(sel.Period, sel.Seed, "").WithOperation(log.OpSave).ToSlice()...)
	return nil
}

// History returns up to limit past selections, newest first.
func (s *SQLiteStore) History(ctx context.Context, limit int) ([]state.Selection, error) {
	if limit <= 0 {
		limit = state.DefaultHistoryLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT year, month, seed, selected_at FROM selection_history
		ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := make([]state.Selection, 0, limit)
	for rows.Next() {
		sel, err := scanSelection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, sel)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSelection(sc scanner) (state.Selection, error) {
	var (
		year, month int
		seed, at    string
	)
	if err := sc.Scan(&year, &month, &seed, &at); err != nil {
		return state.Selection{}, err
	}
	n, err := strconv.ParseUint(seed, 10, 64)
	if err != nil {
		return state.Selection{}, fmt.Errorf("parse seed %q: %w", seed, err)
	}
	ts, err := time.Parse(timeLayout, at)
	if err != nil {
		return state.Selection{}, fmt.Errorf("parse timestamp %q: %w", at, err)
	}
	return state.Selection{
		Period:    core.Period{Year: year, Month: time.Month(month)},
		Seed:      n,
		UpdatedAt: ts,
	}, nil
}
