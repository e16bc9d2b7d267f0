package align

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// targetMarker separates a target id from its hit interval in hmmalign output.
const targetMarker = "target/"

// Row is an annotated (reference) sequence row.
type Row struct {
	ID       string // e.g. MCRB_ECOLI
	Start    int
	End      int
	Sequence string
}

// Label returns the row header, e.g. "MCRB_ECOLI/196-350".
func (r Row) Label() string {
	return r.ID + "/" + formatInterval(r.Start, r.End)
}

// TargetRow is a query sequence row for one hit interval.
type TargetRow struct {
	ID       string // e.g. sp|Q9NU22|MDN1_HUMAN
	Start    int
	End      int
	Sequence string
}

// Interval returns the hit interval key, e.g. "325-451".
func (t TargetRow) Interval() string {
	return formatInterval(t.Start, t.End)
}

// Alignment holds the parsed rows of one Stockholm alignment.
type Alignment struct {
	References []Row
	Targets    []TargetRow
	Warnings   []*ParseError
}

// ReferenceRows returns all reference rows with the given id, in file order.
func (a *Alignment) ReferenceRows(id string) []Row {
	var rows []Row
	for _, r := range a.References {
		if r.ID == id {
			rows = append(rows, r)
		}
	}
	return rows
}

// Row finds a reference row by its full "id/start-end" label.
func (a *Alignment) Row(label string) (Row, bool) {
	for _, r := range a.References {
		if r.Label() == label {
			return r, true
		}
	}
	return Row{}, false
}

// Open reads an alignment file. Gzipped files are detected by magic bytes.
func Open(path string) (*Alignment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open alignment: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		return Parse(gz)
	}
	return Parse(br)
}

// Parse reads alignment rows from r. Malformed rows are recorded as
// warnings and skipped.
func Parse(r io.Reader) (*Alignment, error) {
	a := &Alignment{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || trimmed == "//" {
			continue
		}

		if strings.Contains(line, targetMarker) {
			t, err := parseTargetRow(line)
			if err != nil {
				a.Warnings = append(a.Warnings, &ParseError{Line: lineNumber, Message: err.Error()})
				continue
			}
			a.Targets = append(a.Targets, t)
			continue
		}

		row, err := parseRow(line)
		if err != nil {
			a.Warnings = append(a.Warnings, &ParseError{Line: lineNumber, Message: err.Error()})
			continue
		}
		a.References = append(a.References, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read alignment: %w", err)
	}
	return a, nil
}

func parseRow(line string) (Row, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Row{}, fmt.Errorf("expected header and sequence, got %d fields", len(fields))
	}
	slash := strings.LastIndexByte(fields[0], '/')
	if slash <= 0 {
		return Row{}, fmt.Errorf("header %q has no id/start-end", fields[0])
	}
	start, end, err := parseInterval(fields[0][slash+1:])
	if err != nil {
		return Row{}, err
	}
	return Row{ID: fields[0][:slash], Start: start, End: end, Sequence: fields[1]}, nil
}

func parseTargetRow(line string) (TargetRow, error) {
	i := strings.Index(line, targetMarker)
	id := strings.TrimSpace(line[:i])
	if id == "" {
		return TargetRow{}, fmt.Errorf("target row has empty id")
	}
	fields := strings.Fields(line[i+len(targetMarker):])
	if len(fields) < 2 {
		return TargetRow{}, fmt.Errorf("target %s: expected interval and sequence", id)
	}
	start, end, err := parseInterval(strings.TrimLeft(fields[0], "/"))
	if err != nil {
		return TargetRow{}, fmt.Errorf("target %s: %w", id, err)
	}
	return TargetRow{ID: id, Start: start, End: end, Sequence: fields[1]}, nil
}

func parseInterval(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid interval %q", s)
	}
	start, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid interval start %q", a)
	}
	end, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid interval end %q", b)
	}
	return start, end, nil
}

func formatInterval(start, end int) string {
	return strconv.Itoa(start) + "-" + strconv.Itoa(end)
}

// DomainID extracts the domain id from an alignment file name:
// the second-to-last "_"-separated token of the base name without extension
// (PF07728_hmmalign.sth -> PF07728).
func DomainID(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".gz")
	base = strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.Split(base, "_")
	if len(parts) < 2 {
		return base
	}
	return parts[len(parts)-2]
}

// ParseError represents a malformed alignment line.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("alignment parse error at line %d: %s", e.Line, e.Message)
}
