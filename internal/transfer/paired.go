package transfer

import (
	"github.com/inodb/vibe-transfer/internal/align"
)

// pairResult is the resolution of a partner position.
type pairResult struct {
	Outcome   Outcome
	Hit       bool
	TargetPos align.Pos
	Column    align.Column
}

// resolvePair locates the partner reference position on the target. A
// failure already recorded at the partner short-circuits the walk.
func (s *Session) resolvePair(p *pairing, partnerRef int, partnerType string) pairResult {
	if o, ok := s.ledger.Failure(p.entry.Name, p.target.ID, p.interval.Key, partnerRef, partnerType); ok {
		return pairResult{Outcome: o}
	}

	w := align.Walk(p.ref.Sequence, p.target.Sequence, p.ref.Start, p.target.Start, p.ref.End, p.target.End)
	for {
		col, ok := w.Next()
		if !ok {
			break
		}
		if !col.Source.Valid || col.Source.N != partnerRef {
			continue
		}
		switch {
		case col.Kind == align.KindInsert:
			return pairResult{Outcome: OutcomeInsert, TargetPos: col.Target, Column: col}
		case !col.Target.Valid:
			return pairResult{Outcome: OutcomeGapped, Column: col}
		default:
			return pairResult{
				Outcome:   OutcomeMatch,
				Hit:       align.Upper(col.TargetChar) == align.Upper(col.SourceChar),
				TargetPos: col.Target,
				Column:    col,
			}
		}
	}
	return pairResult{Outcome: OutcomeUnreachable}
}
