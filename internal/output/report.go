package output

import (
	"fmt"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/inodb/vibe-transfer/internal/resource"
	"github.com/inodb/vibe-transfer/internal/transfer"
)

// noAnnotations marks a target report without transferred data.
const noAnnotations = "None"

// ReportWriter writes JSON reports for transfer results:
//
//	<domain>/<domain>_report.json   every target of the domain
//	<target>/<domain>_report.json   one target, "|" replaced by "-"
type ReportWriter struct {
	fs     billy.Filesystem
	indent bool
	logger *zap.Logger
}

// NewReportWriter creates a ReportWriter rooted at fs.
func NewReportWriter(fs billy.Filesystem) *ReportWriter {
	return &ReportWriter{fs: fs, indent: true, logger: zap.NewNop()}
}

// SetIndent configures whether reports are pretty-printed.
func (w *ReportWriter) SetIndent(indent bool) {
	w.indent = indent
}

// SetLogger sets the logger for info messages.
func (w *ReportWriter) SetLogger(l *zap.Logger) {
	w.logger = l
}

// DomainReportPath returns the path of a domain report.
func DomainReportPath(domain string) string {
	return path.Join(domain, domain+"_report.json")
}

// TargetReportPath returns the path of a per-target report.
func TargetReportPath(target, domain string) string {
	return path.Join(resource.SafeName(target), domain+"_report.json")
}

// Write writes the domain report and one report per target, returning
// the written paths.
func (w *ReportWriter) Write(r *transfer.Result) ([]string, error) {
	tree := r.Tree()
	sequences := tree[r.Domain].(map[string]any)["sequence_id"]

	p := DomainReportPath(r.Domain)
	if err := w.writeJSON(p, map[string]any{
		"domain_id": r.Domain,
		"sequences": sequences,
	}); err != nil {
		return nil, err
	}
	written := []string{p}

	for _, id := range r.Order {
		var data any = map[string]any{"annotations": noAnnotations}
		if r.Target(id).HasAnnotations() {
			data = r.TargetTree(id)
		}
		p := TargetReportPath(id, r.Domain)
		if err := w.writeJSON(p, map[string]any{
			"sequence_id": id,
			"domain":      map[string]any{r.Domain: data},
		}); err != nil {
			return written, err
		}
		written = append(written, p)
	}

	w.logger.Info("reports written",
		zap.String("domain", r.Domain),
		zap.Int("files", len(written)))
	return written, nil
}

func (w *ReportWriter) writeJSON(p string, v any) error {
	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", p, err)
	}
	if err := w.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", p, err)
	}
	if err := util.WriteFile(w.fs, p, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}
