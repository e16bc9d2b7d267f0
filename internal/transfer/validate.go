package transfer

import (
	"go.uber.org/zap"

	"github.com/inodb/vibe-transfer/internal/align"
	"github.com/inodb/vibe-transfer/internal/resource"
)

// Validate transfers the annotations of entry, aligned as ref, onto one
// target hit interval.
func (s *Session) Validate(target align.TargetRow, ref align.Row, entry *resource.Entry) error {
	if entry == nil || !annotatedWithin(entry, ref.Start, ref.End) {
		return nil
	}

	p := &pairing{
		target:   target,
		ref:      ref,
		entry:    entry,
		interval: s.result.ensureInterval(target),
	}

	lastRef := ref.Start - 1
	targetEndReached := false
	w := align.Walk(ref.Sequence, target.Sequence, ref.Start, target.Start, ref.End, target.End)
	for {
		col, ok := w.Next()
		if !ok {
			break
		}
		if col.Target.Valid && col.Target.N == target.End {
			targetEndReached = true
		}
		if !col.Source.Valid {
			continue
		}
		lastRef = col.Source.N

		records := entry.Positions[col.Source.N]
		if len(records) == 0 {
			continue
		}
		for _, rec := range records {
			if rec.Type == "" {
				return s.missingType(p, col.Source.N)
			}
		}

		switch {
		case col.Kind == align.KindInsert:
			s.markPaireable(p, records, col, OutcomeInsert)
		case !col.Target.Valid:
			s.markPaireable(p, records, col, OutcomeGapped)
		default:
			hit := align.Upper(col.TargetChar) == align.Upper(col.SourceChar)
			for _, rec := range records {
				k := p.key(col.Source.N, col.Target, rec.Type, OutcomeMatch)
				if s.ledger.Seen(k) {
					continue
				}
				if err := s.process(p, rec, col, hit); err != nil {
					return err
				}
				s.ledger.Mark(k)
			}
		}
	}

	if targetEndReached {
		s.markUnreachable(p, lastRef)
	}
	return nil
}

// markPaireable records a non-match outcome for every paireable record.
func (s *Session) markPaireable(p *pairing, records []resource.Record, col align.Column, o Outcome) {
	for _, rec := range records {
		if !paireable(rec) {
			continue
		}
		s.ledger.Mark(p.key(col.Source.N, col.Target, rec.Type, o))
		s.logger.Debug("annotated position not transferable",
			zap.String("entry", p.entry.Name),
			zap.String("target", p.target.ID),
			zap.Int("ref_pos", col.Source.N),
			zap.Stringer("outcome", o))
	}
}

// markUnreachable marks paireable positions of the current reference row
// beyond the last reference coordinate visited once the target ran out.
// Positions outside the row belong to other copies of the domain.
func (s *Session) markUnreachable(p *pairing, lastRef int) {
	for _, pos := range p.entry.SortedPositions() {
		if pos <= lastRef || pos > p.ref.End {
			continue
		}
		for _, rec := range p.entry.Positions[pos] {
			if paireable(rec) {
				s.ledger.Mark(p.key(pos, align.Pos{}, rec.Type, OutcomeUnreachable))
			}
		}
	}
}

func annotatedWithin(entry *resource.Entry, start, end int) bool {
	for pos := range entry.Positions {
		if pos >= start && pos <= end {
			return true
		}
	}
	return false
}
