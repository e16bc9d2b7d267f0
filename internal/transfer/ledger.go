package transfer

import "github.com/inodb/vibe-transfer/internal/align"

// Outcome tags how an annotated reference position was resolved.
type Outcome uint8

const (
	OutcomeMatch Outcome = iota
	OutcomeGapped
	OutcomeInsert
	OutcomeUnreachable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatch:
		return "match_column"
	case OutcomeGapped:
		return "gapped_target_position"
	case OutcomeInsert:
		return "insert_column"
	default:
		return "paired_target_pos_unreachable"
	}
}

// PairTag returns the tag a primary annotation carries when its partner
// resolved to o.
func (o Outcome) PairTag() string {
	switch o {
	case OutcomeGapped:
		return "gapped_paired"
	case OutcomeInsert:
		return "insert_column_paired"
	case OutcomeUnreachable:
		return "paired_target_pos_unreachable"
	default:
		return ""
	}
}

// PairStatus returns the status stored on a failed paired_position.
func (o Outcome) PairStatus() string {
	switch o {
	case OutcomeGapped:
		return "gapped_target"
	case OutcomeInsert:
		return "insert_column"
	case OutcomeUnreachable:
		return "unreachable_target"
	default:
		return ""
	}
}

// ProcessedKey identifies one handled occurrence. TargetPos is invalid for
// outcomes without a target residue.
type ProcessedKey struct {
	Entry     string
	Target    string
	Interval  string
	RefPos    int
	TargetPos align.Pos
	Type      string
	Outcome   Outcome
}

type failureKey struct {
	Entry    string
	Target   string
	Interval string
	RefPos   int
	Type     string
}

// Ledger records processed occurrences so repeated traversals are no-ops.
type Ledger struct {
	seen     map[ProcessedKey]struct{}
	failures map[failureKey]Outcome
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{
		seen:     make(map[ProcessedKey]struct{}),
		failures: make(map[failureKey]Outcome),
	}
}

// Seen reports whether k was marked.
func (l *Ledger) Seen(k ProcessedKey) bool {
	_, ok := l.seen[k]
	return ok
}

// Mark inserts k. Non-match outcomes are also indexed by reference position
// so a later pair resolution can short-circuit; the first failure wins.
func (l *Ledger) Mark(k ProcessedKey) {
	l.seen[k] = struct{}{}
	if k.Outcome == OutcomeMatch {
		return
	}
	fk := failureKey{Entry: k.Entry, Target: k.Target, Interval: k.Interval, RefPos: k.RefPos, Type: k.Type}
	if _, ok := l.failures[fk]; !ok {
		l.failures[fk] = k.Outcome
	}
}

// Failure returns the failure outcome recorded at a reference position.
func (l *Ledger) Failure(entry, target, interval string, refPos int, typ string) (Outcome, bool) {
	o, ok := l.failures[failureKey{Entry: entry, Target: target, Interval: interval, RefPos: refPos, Type: typ}]
	return o, ok
}

// Len returns the number of marked keys.
func (l *Ledger) Len() int {
	return len(l.seen)
}
