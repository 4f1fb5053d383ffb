package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"fastfox/internal/config"
)

// Command types recorded in the history.
const (
	CommandTypeCommand  = "command"
	CommandTypeCode     = "code"
	CommandTypeOrganize = "organize"
)

// ScopeAll clears every command type.
const ScopeAll = "all"

// DefaultContextLimit is how many entries Context returns when limit <= 0.
const DefaultContextLimit = 5

// CommandTypes lists the valid command types in display order.
var CommandTypes = []string{CommandTypeCommand, CommandTypeCode, CommandTypeOrganize}

// ErrInvalidScope is returned for unknown command types or forget scopes.
var ErrInvalidScope = errors.New("invalid history scope")

// Entry is one recorded exchange.
type Entry struct {
	ID          int64
	CommandType string
	Query       string
	Response    string
	CreatedAt   time.Time
}

// Store persists history entries in SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open connects to the history database configured in cfg.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.HistoryPath())
}

// OpenPath initializes or connects to the history database at path.
func OpenPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add records an entry and returns it with ID and CreatedAt populated.
func (s *Store) Add(ctx context.Context, entry Entry) (Entry, error) {
	commandType, err := normalizeCommandType(entry.CommandType)
	if err != nil {
		return Entry{}, err
	}
	entry.CommandType = commandType
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	var res sql.Result
	err = retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			"INSERT INTO history (command_type, query, response, created_at) VALUES (?, ?, ?, ?)",
			entry.CommandType, entry.Query, entry.Response, entry.CreatedAt.Format(time.RFC3339Nano),
		)
		return execErr
	})
	if err != nil {
		return Entry{}, fmt.Errorf("insert history entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("read history id: %w", err)
	}
	entry.ID = id
	return entry, nil
}

// Context returns the last limit entries of commandType, oldest first.
func (s *Store) Context(ctx context.Context, commandType string, limit int) ([]Entry, error) {
	commandType, err := normalizeCommandType(commandType)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultContextLimit
	}
	entries, err := s.query(ctx,
		`SELECT id, command_type, query, response, created_at FROM (
			SELECT id, command_type, query, response, created_at FROM history
			WHERE command_type = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`,
		commandType, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load history context: %w", err)
	}
	return entries, nil
}

// List returns every entry of commandType, or of all types when commandType
// is empty or "all", oldest first.
func (s *Store) List(ctx context.Context, commandType string) ([]Entry, error) {
	scope := strings.ToLower(strings.TrimSpace(commandType))
	if scope == "" || scope == ScopeAll {
		entries, err := s.query(ctx, "SELECT id, command_type, query, response, created_at FROM history ORDER BY id ASC")
		if err != nil {
			return nil, fmt.Errorf("list history: %w", err)
		}
		return entries, nil
	}
	scope, err := normalizeCommandType(scope)
	if err != nil {
		return nil, err
	}
	entries, err := s.query(ctx,
		"SELECT id, command_type, query, response, created_at FROM history WHERE command_type = ? ORDER BY id ASC",
		scope,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// Forget removes entries for scope, which is "all" or a command type, and
// reports how many were removed.
func (s *Store) Forget(ctx context.Context, scope string) (int64, error) {
	scope = strings.ToLower(strings.TrimSpace(scope))
	var (
		query string
		args  []any
	)
	if scope == ScopeAll {
		query = "DELETE FROM history"
	} else {
		commandType, err := normalizeCommandType(scope)
		if err != nil {
			return 0, err
		}
		query = "DELETE FROM history WHERE command_type = ?"
		args = []any{commandType}
	}

	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("forget history: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count removed history: %w", err)
	}
	return removed, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created string
		)
		if err := rows.Scan(&e.ID, &e.CommandType, &e.Query, &e.Response, &created); err != nil {
			return nil, err
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func normalizeCommandType(commandType string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(commandType))
	for _, valid := range CommandTypes {
		if normalized == valid {
			return normalized, nil
		}
	}
	return "", fmt.Errorf("%w: %q (use 'all' or one of: %s)", ErrInvalidScope, commandType, strings.Join(CommandTypes, ", "))
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
