package transfer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-transfer/internal/align"
	"github.com/inodb/vibe-transfer/internal/resource"
)

// ErrMissingType is returned when an annotation record has no type.
var ErrMissingType = errors.New("annotation record missing type")

// Session owns the mutable state of one domain transfer: the result being
// built and the ledger of processed occurrences.
type Session struct {
	domain string
	result *Result
	ledger *Ledger
	good   map[string]bool
	logger *zap.Logger
}

// NewSession creates a Session for domain. An empty goodECO uses
// DefaultGoodECO.
func NewSession(domain string, goodECO []string) *Session {
	return &Session{
		domain: domain,
		result: NewResult(domain),
		ledger: NewLedger(),
		good:   goodSet(goodECO),
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and debug messages.
func (s *Session) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Result returns the result built so far.
func (s *Session) Result() *Result {
	return s.result
}

// Ledger returns the processed-occurrence ledger.
func (s *Session) Ledger() *Ledger {
	return s.ledger
}

// pairing carries the aligned rows a pair resolution re-walks.
type pairing struct {
	target   align.TargetRow
	ref      align.Row
	entry    *resource.Entry
	interval *Interval
}

func (p *pairing) key(refPos int, targetPos align.Pos, typ string, o Outcome) ProcessedKey {
	return ProcessedKey{
		Entry:     p.entry.Name,
		Target:    p.target.ID,
		Interval:  p.interval.Key,
		RefPos:    refPos,
		TargetPos: targetPos,
		Type:      typ,
		Outcome:   o,
	}
}

func (s *Session) missingType(p *pairing, refPos int) error {
	err := fmt.Errorf("%s position %d: %w", p.entry.Name, refPos, ErrMissingType)
	s.logger.Error("malformed annotation record",
		zap.String("domain", s.domain),
		zap.String("entry", p.entry.Name),
		zap.String("target", p.target.ID),
		zap.String("interval", p.interval.Key),
		zap.Int("ref_pos", refPos),
		zap.Error(err))
	return err
}
