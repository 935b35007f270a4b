package report

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrRunNotFound indicates the requested run doesn't exist in the database.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	class_name TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS functions (
	run_id TEXT NOT NULL REFERENCES runs(id),
	name TEXT NOT NULL,
	data JSON NOT NULL,
	PRIMARY KEY (run_id, name)
);`

// Run is one stored compilation.
type Run struct {
	ID        string
	Source    string
	ClassName string
	CreatedAt string // RFC3339 timestamp
}

// Config holds store configuration options.
type Config struct {
	DBPath string // Path to reports.db (defaults to ~/.bst2groovy/reports.db)
}

// Store keeps reports of past compilations in SQLite.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// Open opens or creates a store. If cfg is nil, defaults are used.
func Open(cfg *Config) (*Store, error) {
	s := &Store{}

	// Determine database path
	if cfg != nil && cfg.DBPath != "" {
		s.dbPath = cfg.DBPath
	} else if dbPath := os.Getenv("BST2GROOVY_DB"); dbPath != "" {
		s.dbPath = dbPath
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home dir: %w", err)
		}
		dir := filepath.Join(home, ".bst2groovy")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
		s.dbPath = filepath.Join(dir, "reports.db")
	}

	db, err := sql.Open("sqlite3", s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s.db = db

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save stores a report as a new run and returns the run id.
func (s *Store) Save(r *Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO runs (id, source, class_name, created_at) VALUES (?, ?, ?, ?)",
		id, r.Source, r.ClassName, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("saving run: %w", err)
	}
	for _, f := range r.Functions {
		data, err := json.Marshal(f)
		if err != nil {
			return "", fmt.Errorf("marshaling function %s: %w", f.Name, err)
		}
		_, err = tx.Exec(
			"INSERT INTO functions (run_id, name, data) VALUES (?, ?, json(?))",
			id, f.Name, string(data),
		)
		if err != nil {
			return "", fmt.Errorf("saving function %s: %w", f.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

// Runs returns the stored runs of a source file, newest first.
func (s *Store) Runs(source string) ([]Run, error) {
	rows, err := s.db.Query(
		"SELECT id, source, class_name, created_at FROM runs WHERE source = ? ORDER BY created_at DESC, rowid DESC",
		source,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Source, &r.ClassName, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Load returns a stored run as a report.
func (s *Store) Load(id string) (*Report, error) {
	r := &Report{}
	err := s.db.QueryRow("SELECT source, class_name FROM runs WHERE id = ?", id).Scan(&r.Source, &r.ClassName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("querying run: %w", err)
	}

	rows, err := s.db.Query("SELECT data FROM functions WHERE run_id = ? ORDER BY json_extract(data, '$.line'), name", id)
	if err != nil {
		return nil, fmt.Errorf("querying functions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning function: %w", err)
		}
		var f FunctionReport
		if err := json.Unmarshal([]byte(data), &f); err != nil {
			return nil, fmt.Errorf("unmarshaling function: %w", err)
		}
		r.Functions = append(r.Functions, f)
	}
	return r, rows.Err()
}

// Unused returns the names of the functions of run id without call sites.
func (s *Store) Unused(id string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT name FROM functions WHERE run_id = ? AND json_extract(data, '$.uses') = 0 ORDER BY name",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("querying unused functions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning function name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
