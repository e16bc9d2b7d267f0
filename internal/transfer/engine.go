// Package transfer maps curated positional annotations from reference
// sequences onto target sequences through a shared alignment, and enriches
// the result with conservation scores and GO similarity.
package transfer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-transfer/internal/align"
	"github.com/inodb/vibe-transfer/internal/resource"
)

// GOSource provides the GO ids assigned to a target sequence.
type GOSource interface {
	TargetGO(target string) (map[string]struct{}, error)
}

// Job is the input of one domain transfer.
type Job struct {
	Domain        string
	Alignment     *align.Alignment
	Annotations   *resource.Annotations
	Conservations *resource.Conservations
	GO            GOSource // optional
}

// Transferer runs domain transfers with a fixed evidence allow-list.
type Transferer struct {
	goodECO []string
	logger  *zap.Logger
}

// NewTransferer creates a Transferer. An empty goodECO uses DefaultGoodECO.
func NewTransferer(goodECO []string) *Transferer {
	return &Transferer{goodECO: goodECO, logger: zap.NewNop()}
}

// SetLogger sets the logger for warning and info messages.
func (t *Transferer) SetLogger(l *zap.Logger) {
	t.logger = l
}

// Transfer processes every reference entry against every target hit
// interval of the alignment, then runs the conservation and GO passes.
func (t *Transferer) Transfer(job Job) (*Result, error) {
	if job.Alignment == nil {
		return nil, fmt.Errorf("domain %s: no alignment", job.Domain)
	}
	logger := t.logger.With(zap.String("domain", job.Domain))
	for _, w := range job.Alignment.Warnings {
		logger.Warn("skipped alignment line", zap.Int("line", w.Line), zap.String("reason", w.Message))
	}

	s := NewSession(job.Domain, t.goodECO)
	s.SetLogger(logger)

	for _, row := range job.Alignment.Targets {
		s.result.ensureInterval(row)
	}

	if job.Annotations != nil {
		for _, name := range job.Annotations.Order {
			entry := job.Annotations.Entry(name)
			refs := job.Alignment.ReferenceRows(name)
			if len(refs) == 0 {
				logger.Debug("annotated entry not in alignment", zap.String("entry", name))
				continue
			}
			for _, ref := range refs {
				for _, target := range job.Alignment.Targets {
					if err := s.Validate(target, ref, entry); err != nil {
						return nil, fmt.Errorf("domain %s: %w", job.Domain, err)
					}
				}
			}
		}
	}

	if !job.Conservations.Empty() {
		ref, ok := job.Alignment.Row(job.Conservations.Label)
		if !ok {
			logger.Warn("conservation reference not in alignment",
				zap.String("reference", job.Conservations.Label))
		} else {
			for _, target := range job.Alignment.Targets {
				s.PopulateConservation(target, ref, job.Conservations)
			}
		}
	}

	if job.GO != nil && job.Annotations != nil {
		for _, id := range s.result.Order {
			terms, err := job.GO.TargetGO(id)
			if errors.Is(err, resource.ErrNotFound) {
				logger.Warn("no GO terms for target", zap.String("target", id))
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("domain %s: GO terms for %s: %w", job.Domain, id, err)
			}
			s.PopulateGO(id, terms, job.Annotations)
		}
	}

	logger.Info("domain transferred",
		zap.Int("targets", len(s.result.Order)),
		zap.Int("processed", s.ledger.Len()))
	return s.result, nil
}
