// Package output writes transfer results: JSON reports per domain and per
// target, and tab-delimited listings of stored entries.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-transfer/internal/transfer"
)

// TabWriter writes transferred annotations in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Domain",
			"Target",
			"Hit_interval",
			"Position",
			"Type",
			"Description",
			"Hit",
			"Count",
			"Evidence",
			"Paired_position",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single entry.
func (tw *TabWriter) Write(r transfer.Row) error {
	hit := "NO"
	if r.Hit {
		hit = "YES"
	}

	values := []string{
		r.Domain,
		r.Target,
		r.Interval,
		strconv.Itoa(r.Position),
		r.Type,
		orDash(r.Description),
		hit,
		strconv.Itoa(r.Count),
		orDash(strings.Join(r.Evidence, ";")),
		orDash(strings.Join(r.PairedPositions, ",")),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "\t", " ")
}
