package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultSQLitePath is used when SQLiteStore is given no path.
const DefaultSQLitePath = "data/widget.db"

const (
	createSettingsSQL = `CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`
	selectSettingSQL = `SELECT value FROM settings WHERE key = ?`
	deleteSettingSQL = `DELETE FROM settings WHERE key = ?`
	upsertSettingSQL = `INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`
)

// SQLiteStore keeps the last city as one row of a key/value settings table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and ensures the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn, err := buildDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: sqlite open: %w", err)
	}
	// One writer; the widget stores a single row.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: sqlite ping: %w", err)
	}
	if _, err := db.Exec(createSettingsSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func buildDSN(path string) (string, error) {
	if path == "" {
		path = DefaultSQLitePath
	}
	if path == ":memory:" {
		return "file::memory:?cache=shared", nil
	}
	if strings.HasPrefix(path, "file:") {
		return path, nil
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("history: mkdir %s: %w", dir, err)
		}
	}
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path), nil
}

func (s *SQLiteStore) LastCity(ctx context.Context) (string, bool, error) {
	var city string
	err := s.db.QueryRowContext(ctx, selectSettingSQL, Key).Scan(&city)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("history: sqlite select: %w", err)
	}
	return city, true, nil
}

func (s *SQLiteStore) SaveLastCity(ctx context.Context, city string) error {
	city, err := cleanCity(city)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, upsertSettingSQL, Key, city); err != nil {
		return fmt.Errorf("history: sqlite upsert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ClearLastCity(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, deleteSettingSQL, Key); err != nil {
		return fmt.Errorf("history: sqlite delete: %w", err)
	}
	return nil
}

// Ping checks the database connection. Used for health checks.
func (s *SQLiteStore) Ping() error {
	return s.db.Ping()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
