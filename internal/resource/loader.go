package resource

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a resource file does not exist.
var ErrNotFound = errors.New("resource not found")

const (
	annotationsFile   = "annotations.json"
	conservationsFile = "conservations.json"
	interProScanFile  = "iprscan.tsv"
)

// SafeName makes a sequence id usable as a directory name.
func SafeName(id string) string {
	return strings.ReplaceAll(id, "|", "-")
}

// Loader reads domain resources from <domain>/annotations.json and
// <domain>/conservations.json, and target GO terms from
// <target>/iprscan.tsv on a second filesystem.
type Loader struct {
	resources billy.Filesystem
	outputs   billy.Filesystem
	logger    *zap.Logger
}

// NewLoader creates a Loader. outputs may be nil when target GO terms are
// not available.
func NewLoader(resources, outputs billy.Filesystem) *Loader {
	return &Loader{resources: resources, outputs: outputs, logger: zap.NewNop()}
}

// SetLogger sets the logger for missing-file warnings.
func (l *Loader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Annotations loads the annotations of a domain. A missing file yields an
// error wrapping ErrNotFound.
func (l *Loader) Annotations(domain string) (*Annotations, error) {
	data, err := readFile(l.resources, path.Join(domain, annotationsFile))
	if err != nil {
		return nil, err
	}
	a, err := ParseAnnotations(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s annotations: %w", domain, err)
	}
	if len(a.Skipped) > 0 {
		l.logger.Warn("skipped non-numeric annotation positions",
			zap.String("domain", domain),
			zap.Strings("keys", a.Skipped))
	}
	return a, nil
}

// Conservations loads the conservation scores of a domain.
func (l *Loader) Conservations(domain string) (*Conservations, error) {
	data, err := readFile(l.resources, path.Join(domain, conservationsFile))
	if err != nil {
		return nil, err
	}
	c, err := ParseConservations(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s conservations: %w", domain, err)
	}
	return c, nil
}

// TargetGO loads the GO ids InterProScan assigned to a target.
func (l *Loader) TargetGO(target string) (map[string]struct{}, error) {
	if l.outputs == nil {
		return nil, fmt.Errorf("target GO for %s: %w", target, ErrNotFound)
	}
	p := path.Join(SafeName(target), interProScanFile)
	f, err := l.outputs.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()
	return ParseInterProScanGO(f)
}

// Domain bundles every resource for one domain. Missing files leave the
// corresponding field empty.
type Domain struct {
	Annotations   *Annotations
	Conservations *Conservations
}

// LoadDomain loads annotations and conservations, degrading to empty
// resources when a file is missing.
func (l *Loader) LoadDomain(domain string) (*Domain, error) {
	d := &Domain{}

	a, err := l.Annotations(domain)
	switch {
	case errors.Is(err, ErrNotFound):
		l.logger.Warn("annotations not found", zap.String("domain", domain))
		a = &Annotations{Entries: make(map[string]*Entry)}
	case err != nil:
		return nil, err
	}
	d.Annotations = a

	c, err := l.Conservations(domain)
	switch {
	case errors.Is(err, ErrNotFound):
		l.logger.Warn("conservations not found", zap.String("domain", domain))
		c = &Conservations{Scores: make(map[int]Score)}
	case err != nil:
		return nil, err
	}
	d.Conservations = c

	return d, nil
}

func readFile(fs billy.Filesystem, p string) ([]byte, error) {
	data, err := util.ReadFile(fs, p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}
