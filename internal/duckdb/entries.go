package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-transfer/internal/transfer"
)

// listSep joins evidence and paired positions in a single column.
const listSep = "; "

// WriteEntries replaces the stored entries of a domain with rows,
// batch-inserting them with the Appender API. An empty rows clears the domain.
func (s *Store) WriteEntries(domain string, rows []transfer.Row) error {
	for _, r := range rows {
		if r.Domain != domain {
			return fmt.Errorf("entry %s/%d belongs to domain %s, not %s", r.Target, r.Position, r.Domain, domain)
		}
	}
	if err := s.ClearDomain(domain); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "transfer_entries")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range rows {
		detail, err := json.Marshal(r.Detail)
		if err != nil {
			return fmt.Errorf("encode entry %s/%d: %w", r.Target, r.Position, err)
		}
		if err := appender.AppendRow(
			r.Domain, r.Target, r.Interval, int32(r.Position), r.Identity,
			r.Type, r.Description, r.Hit, int32(r.Count),
			strings.Join(r.Evidence, listSep), strings.Join(r.PairedPositions, listSep),
			string(detail),
		); err != nil {
			return fmt.Errorf("append transfer entry: %w", err)
		}
	}

	return appender.Flush()
}

// ClearDomain removes all stored entries of a domain.
func (s *Store) ClearDomain(domain string) error {
	if _, err := s.db.Exec("DELETE FROM transfer_entries WHERE domain=?", domain); err != nil {
		return fmt.Errorf("clear domain %s: %w", domain, err)
	}
	return nil
}

// ClearEntries removes all stored entries.
func (s *Store) ClearEntries() error {
	if _, err := s.db.Exec("DELETE FROM transfer_entries"); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}

const entryColumns = `domain, target_id, hit_interval, target_position, identity,
	type, description, hit, count, evidence, paired_positions, detail`

// LookupPosition returns the entries transferred onto one target position.
func (s *Store) LookupPosition(target string, position int) ([]transfer.Row, error) {
	rows, err := s.db.Query(`SELECT `+entryColumns+`
		FROM transfer_entries
		WHERE target_id=? AND target_position=?
		ORDER BY domain, hit_interval, identity`, target, position)
	if err != nil {
		return nil, fmt.Errorf("query position: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// SearchByTarget returns every entry stored for a target.
func (s *Store) SearchByTarget(target string) ([]transfer.Row, error) {
	rows, err := s.db.Query(`SELECT `+entryColumns+`
		FROM transfer_entries
		WHERE target_id=?
		ORDER BY domain, hit_interval, target_position, identity`, target)
	if err != nil {
		return nil, fmt.Errorf("query by target: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// SearchByType returns entries of one annotation type (e.g. "DISULFID"),
// optionally restricted to hits.
func (s *Store) SearchByType(typ string, hitsOnly bool) ([]transfer.Row, error) {
	query := `SELECT ` + entryColumns + `
		FROM transfer_entries
		WHERE type=?`
	if hitsOnly {
		query += ` AND hit`
	}
	query += ` ORDER BY target_id, hit_interval, target_position, identity`

	rows, err := s.db.Query(query, typ)
	if err != nil {
		return nil, fmt.Errorf("query by type: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// CountEntries returns the number of stored entries of a domain.
func (s *Store) CountEntries(domain string) (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT count(*) FROM transfer_entries WHERE domain=?", domain).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// scanEntries scans rows into transfer.Row slices.
func scanEntries(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]transfer.Row, error) {
	var results []transfer.Row
	for rows.Next() {
		var r transfer.Row
		var position, count int32
		var evidence, paired, detail string
		if err := rows.Scan(
			&r.Domain, &r.Target, &r.Interval, &position, &r.Identity,
			&r.Type, &r.Description, &r.Hit, &count,
			&evidence, &paired, &detail,
		); err != nil {
			return nil, fmt.Errorf("scan transfer entry: %w", err)
		}
		r.Position = int(position)
		r.Count = int(count)
		r.Evidence = splitList(evidence)
		r.PairedPositions = splitList(paired)
		if err := json.Unmarshal([]byte(detail), &r.Detail); err != nil {
			return nil, fmt.Errorf("decode entry detail: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfer entries: %w", err)
	}
	return results, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSep)
}
