package store

import (
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Collection keys used by the lifecycle engine
const (
	KeyUsers         = "users"
	KeyProjects      = "projects"
	KeyTasks         = "tasks"
	KeyNotifications = "notifications"
)

// Store provides collection-granular persistence. Each key maps to a
// whole JSON-encoded collection; Save replaces the collection entirely.
type Store interface {
	List(key string) ([]byte, error)
	Save(key string, data []byte) error
	Close() error
}

// DefaultDataDir returns the default data directory path
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".trackline"
	}
	return filepath.Join(home, ".local", "share", "trackline")
}

// DefaultDBPath returns the default database file path
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "trackline.db")
}

// SQLite is a Store backed by a single SQLite table of collection blobs
type SQLite struct {
	db *sql.DB
}

// Open opens a database connection and runs migrations
func Open(dbPath string) (*SQLite, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// WAL mode is safer for file-sync tools watching the data dir
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", dbPath)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLite{db: sqlDB}

	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// migrate runs database migrations using embedded SQL files
func (s *SQLite) migrate() error {
	// Silence goose logging (it corrupts TUI output)
	goose.SetLogger(log.New(io.Discard, "", 0))
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// List returns the stored collection for a key, or an empty JSON array
// when the key has never been saved.
func (s *SQLite) List(key string) ([]byte, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM collections WHERE key = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return []byte("[]"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %q: %w", key, err)
	}
	return []byte(data), nil
}

// Save replaces the whole collection stored under a key
func (s *SQLite) Save(key string, data []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO collections (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, key, string(data), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save collection %q: %w", key, err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}
