package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/focusfeed/internal/state"
)

const (
	// FileName is the database file created inside the store directory.
	FileName = "focusfeed.db"

	// DefaultWatchInterval is how often Watch reads the table.
	DefaultWatchInterval = time.Second

	keyGoal    = "focusGoal"
	keyEnabled = "isEnabled"
)

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("settings store is closed")

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool

	// EnableWAL switches the database to write-ahead logging so that a
	// watching process can read while another one writes.
	EnableWAL bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Store is a SQLite-backed settings store.
type Store struct {
	state.Broadcaster

	db   *sql.DB
	path string

	mu     sync.Mutex
	last   state.State
	closed bool
}

// Open opens or creates the store in dir.
func Open(dir string, opts Options) (*Store, error) {
	path := filepath.Join(dir, FileName)

	dsn := path + "?mode=rw"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create settings directory: %w", err)
		}
		dsn = path + "?mode=rwc"
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("settings store not found at %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ctx := context.Background()
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	last, err := s.read(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.last = last
	return s, nil
}

func (s *Store) createTables(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// FetchState answers GET_STATE. Keys never written read as state.Default.
func (s *Store) FetchState(ctx context.Context) (state.State, error) {
	if s.isClosed() {
		return state.State{}, fmt.Errorf("%w: %w", state.ErrUnavailable, ErrClosed)
	}
	st, err := s.read(ctx)
	if err != nil {
		return state.State{}, fmt.Errorf("%w: %w", state.ErrUnavailable, err)
	}
	return st, nil
}

func (s *Store) read(ctx context.Context) (state.State, error) {
	st := state.Default()

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings WHERE key IN (?, ?)", keyGoal, keyEnabled)
	if err != nil {
		return st, fmt.Errorf("failed to read settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return st, fmt.Errorf("failed to scan setting: %w", err)
		}
		switch key {
		case keyGoal:
			st.Goal = value
		case keyEnabled:
			enabled, err := strconv.ParseBool(value)
			if err != nil {
				return st, fmt.Errorf("invalid %s value %q: %w", keyEnabled, value, err)
			}
			st.Enabled = enabled
		}
	}
	if err := rows.Err(); err != nil {
		return st, fmt.Errorf("failed to read settings: %w", err)
	}
	return st, nil
}

func (s *Store) write(ctx context.Context, key, value string) error {
	if s.isClosed() {
		return ErrClosed
	}
	const upsert = `
INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, upsert, key, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// SetGoal stores goal and broadcasts GOAL_UPDATED.
func (s *Store) SetGoal(ctx context.Context, goal string) error {
	if err := s.write(ctx, keyGoal, goal); err != nil {
		return err
	}
	s.mu.Lock()
	s.last.Goal = goal
	s.mu.Unlock()

	s.Broadcast(state.GoalUpdated(goal))
	return nil
}

// SetEnabled stores the toggle and broadcasts TOGGLE_CHANGED.
func (s *Store) SetEnabled(ctx context.Context, enabled bool) error {
	if err := s.write(ctx, keyEnabled, strconv.FormatBool(enabled)); err != nil {
		return err
	}
	s.mu.Lock()
	s.last.Enabled = enabled
	s.mu.Unlock()

	s.Broadcast(state.ToggleChanged(enabled))
	return nil
}

// Clear removes both settings so they read as defaults again, and
// broadcasts the resulting values.
func (s *Store) Clear(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE key IN (?, ?)", keyGoal, keyEnabled); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}
	def := state.Default()
	s.mu.Lock()
	s.last = def
	s.mu.Unlock()

	s.Broadcast(state.GoalUpdated(def.Goal))
	s.Broadcast(state.ToggleChanged(def.Enabled))
	return nil
}

// Watch polls the table every interval until ctx is done and broadcasts
// values that differ from the last ones seen. It returns nil on
// cancellation and ErrClosed if the store is closed underneath it.
func (s *Store) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if s.isClosed() {
				return ErrClosed
			}
			if err := s.poll(ctx); err != nil && ctx.Err() == nil {
				return err
			}
		}
	}
}

// poll reads the table once and broadcasts changes.
func (s *Store) poll(ctx context.Context) error {
	current, err := s.read(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	prev := s.last
	s.last = current
	s.mu.Unlock()

	if current.Goal != prev.Goal {
		s.Broadcast(state.GoalUpdated(current.Goal))
	}
	if current.Enabled != prev.Enabled {
		s.Broadcast(state.ToggleChanged(current.Enabled))
	}
	return nil
}
