// Package duckdb persists transferred annotations in DuckDB so they can be
// queried after a run, and remembers which alignment files were processed.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for transfer results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS transfer_entries (
		domain VARCHAR,
		target_id VARCHAR,
		hit_interval VARCHAR,
		target_position INTEGER,
		identity VARCHAR,
		type VARCHAR,
		description VARCHAR,
		hit BOOLEAN,
		count INTEGER,
		evidence VARCHAR,
		paired_positions VARCHAR,
		detail VARCHAR,
		PRIMARY KEY (domain, target_id, hit_interval, target_position, identity)
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS processed_runs (
		alignment_path VARCHAR PRIMARY KEY,
		domain VARCHAR,
		size BIGINT,
		mod_time VARCHAR,
		entries INTEGER
	)`)
	return err
}
