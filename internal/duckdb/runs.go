package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

func (fp FileFingerprint) modTime() string {
	return fp.ModTime.UTC().Format(time.RFC3339Nano)
}

// RecordRun remembers that an alignment file was transferred.
func (s *Store) RecordRun(domain string, fp FileFingerprint, entries int) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO processed_runs
		(alignment_path, domain, size, mod_time, entries) VALUES (?, ?, ?, ?, ?)`,
		fp.Path, domain, fp.Size, fp.modTime(), entries)
	if err != nil {
		return fmt.Errorf("record run %s: %w", fp.Path, err)
	}
	return nil
}

// RunCurrent reports whether the alignment file was already transferred
// and has not changed since.
func (s *Store) RunCurrent(fp FileFingerprint) (bool, error) {
	var size int64
	var modTime string
	err := s.db.QueryRow(`SELECT size, mod_time FROM processed_runs WHERE alignment_path=?`, fp.Path).
		Scan(&size, &modTime)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query run %s: %w", fp.Path, err)
	}
	return size == fp.Size && modTime == fp.modTime(), nil
}

// ClearDomainRuns forgets the processed runs of one domain.
func (s *Store) ClearDomainRuns(domain string) error {
	if _, err := s.db.Exec("DELETE FROM processed_runs WHERE domain=?", domain); err != nil {
		return fmt.Errorf("clear runs of %s: %w", domain, err)
	}
	return nil
}

// ClearRuns forgets every processed run.
func (s *Store) ClearRuns() error {
	if _, err := s.db.Exec("DELETE FROM processed_runs"); err != nil {
		return fmt.Errorf("clear runs: %w", err)
	}
	return nil
}
