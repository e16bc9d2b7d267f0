package transfer

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/inodb/vibe-transfer/internal/align"
	"github.com/inodb/vibe-transfer/internal/resource"
)

// process handles one annotation occurrence at a match column: it builds
// the record, resolves its partner when it has one, and persists the
// result.
func (s *Session) process(p *pairing, rec resource.Record, col align.Column, hit bool) error {
	primaryKey := p.key(col.Source.N, col.Target, rec.Type, OutcomeMatch)

	built := buildRecord(rec, p.entry.Name, col, s.good)
	if built == nil {
		s.ledger.Mark(primaryKey)
		return nil
	}

	if !paireable(rec) {
		p.interval.add(built, hit)
		s.ledger.Mark(primaryKey)
		return nil
	}

	partnerRef, err := strconv.Atoi(rec.PairedPosition)
	if err != nil {
		s.logger.Warn("unparsable paired position",
			zap.String("entry", p.entry.Name),
			zap.Int("ref_pos", col.Source.N),
			zap.String("paired_position", rec.PairedPosition))
		p.interval.add(built, hit)
		s.ledger.Mark(primaryKey)
		return nil
	}

	partner, ok := partnerRecord(p.entry, partnerRef, rec.Type)
	if !ok || partnerRef == col.Source.N {
		built.PartnerMissing = !ok
		p.interval.add(built, hit)
		s.ledger.Mark(primaryKey)
		return nil
	}
	if partner.Type == "" {
		return s.missingType(p, partnerRef)
	}

	res := s.resolvePair(p, partnerRef, partner.Type)
	if res.Outcome != OutcomeMatch {
		built.PairStatus = res.Outcome.PairStatus()
		if res.TargetPos.Valid {
			built.PairedTargetPos = strconv.Itoa(res.TargetPos.N)
		} else {
			built.PairedTargetPos = strconv.Itoa(partnerRef)
		}
		s.logger.Debug("paired annotation partner not placed",
			zap.String("entry", p.entry.Name),
			zap.String("target", p.target.ID),
			zap.Int("ref_pos", col.Source.N),
			zap.Int("partner_ref_pos", partnerRef),
			zap.String("tag", res.Outcome.PairTag()))
		p.interval.add(built, hit)
		s.ledger.Mark(primaryKey)
		s.ledger.Mark(p.key(partnerRef, res.TargetPos, partner.Type, res.Outcome))
		return nil
	}

	partnerKey := p.key(partnerRef, res.TargetPos, partner.Type, OutcomeMatch)
	if s.ledger.Seen(partnerKey) {
		// Partner already persisted through another pair.
		built.PairedTargetPos = strconv.Itoa(res.TargetPos.N)
		p.interval.add(built, hit)
		s.ledger.Mark(primaryKey)
		return nil
	}

	partnerBuilt := buildRecord(partner, p.entry.Name, res.Column, s.good)
	if partnerBuilt == nil {
		p.interval.add(built, hit)
		s.ledger.Mark(primaryKey)
		s.ledger.Mark(partnerKey)
		return nil
	}

	built.PairedTargetPos = strconv.Itoa(res.TargetPos.N)
	partnerBuilt.PairedTargetPos = strconv.Itoa(col.Target.N)
	p.interval.add(built, hit)
	p.interval.add(partnerBuilt, res.Hit)
	s.ledger.Mark(primaryKey)
	s.ledger.Mark(partnerKey)
	return nil
}

// partnerRecord picks the record at the partner position, preferring one
// of the same type.
func partnerRecord(entry *resource.Entry, pos int, typ string) (resource.Record, bool) {
	records := entry.Positions[pos]
	if len(records) == 0 {
		return resource.Record{}, false
	}
	for _, r := range records {
		if r.Type == typ {
			return r, true
		}
	}
	return records[0], true
}
