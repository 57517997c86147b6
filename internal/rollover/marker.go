package rollover

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fleet-monitor/internal/civil"

	_ "modernc.org/sqlite"
)

// MarkerStore persists the last civil day a session checked. Each session
// owns its own marker; markers are never shared.
type MarkerStore interface {
	Load(ctx context.Context) (civil.Day, bool, error)
	Save(ctx context.Context, day civil.Day) error
}

type MemoryMarker struct {
	mu  sync.Mutex
	day civil.Day
	set bool
}

func NewMemoryMarker() *MemoryMarker {
	return &MemoryMarker{}
}

func (m *MemoryMarker) Load(context.Context) (civil.Day, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.day, m.set, nil
}

func (m *MemoryMarker) Save(_ context.Context, day civil.Day) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.day = day
	m.set = true
	return nil
}

// SQLiteMarker keeps the marker in a one-row sqlite table so it survives
// restarts of the session.
type SQLiteMarker struct {
	db *sql.DB
}

func OpenSQLiteMarker(path string) (*SQLiteMarker, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create marker directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open marker db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS rollover_marker (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		day TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create marker schema: %w", err)
	}
	return &SQLiteMarker{db: db}, nil
}

func (m *SQLiteMarker) Load(ctx context.Context) (civil.Day, bool, error) {
	var raw string
	err := m.db.QueryRowContext(ctx, `SELECT day FROM rollover_marker WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	day, err := civil.ParseDay(raw)
	if err != nil {
		// A corrupt marker is treated like a missing one.
		return "", false, nil
	}
	return day, true, nil
}

func (m *SQLiteMarker) Save(ctx context.Context, day civil.Day) error {
	_, err := m.db.ExecContext(ctx, `INSERT INTO rollover_marker (id, day, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET day = excluded.day, updated_at = excluded.updated_at`,
		day.String(), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (m *SQLiteMarker) Close() error {
	return m.db.Close()
}
