package transfer

import (
	"go.uber.org/zap"

	"github.com/inodb/vibe-transfer/internal/align"
	"github.com/inodb/vibe-transfer/internal/resource"
)

// PopulateConservation maps conservation scores of ref onto one target hit
// interval. Only columns where both residues are upper case transfer.
func (s *Session) PopulateConservation(target align.TargetRow, ref align.Row, cons *resource.Conservations) {
	if cons.Empty() {
		return
	}
	iv := s.result.ensureInterval(target)

	reached := make(map[int]bool)
	w := align.Walk(ref.Sequence, target.Sequence, ref.Start, target.Start, ref.End, target.End)
	for {
		col, ok := w.Next()
		if !ok {
			break
		}
		if col.Kind != align.KindMatch {
			continue
		}
		score, ok := cons.Scores[col.Source.N]
		if !ok {
			continue
		}
		reached[col.Source.N] = true

		residue := score.Residue
		if residue == "" {
			residue = string(col.SourceChar)
		}
		hit := align.Upper(col.TargetChar) == align.Upper(residue[0])
		iv.Conservations[col.Target.N] = &ConservationScore{
			Conservation: score.Conservation,
			Residue:      residue,
			Hit:          hit,
		}
		if hit {
			iv.ConservationMatches[col.Target.N] = struct{}{}
			iv.Conserved.Add(col.Target.N)
		} else {
			iv.ConservationMisses[col.Target.N] = struct{}{}
			iv.NonConserved.Add(col.Target.N)
		}
	}

	var missing []int
	for _, pos := range cons.SortedPositions() {
		if pos >= ref.Start && pos <= ref.End && !reached[pos] {
			missing = append(missing, pos)
		}
	}
	if len(missing) > 0 {
		s.logger.Warn("conservation positions not transferred",
			zap.String("domain", s.domain),
			zap.String("target", target.ID),
			zap.String("interval", iv.Key),
			zap.Ints("positions", missing))
	}
}

// PopulateGO attaches, to every annotation transferred onto target, the GO
// overlap between targetGO and each contributing reference entry.
func (s *Session) PopulateGO(target string, targetGO map[string]struct{}, annotations *resource.Annotations) {
	t := s.result.Target(target)
	if t == nil {
		return
	}

	cache := make(map[string]*GOMatch)
	lookup := func(name string) *GOMatch {
		if m, ok := cache[name]; ok {
			return m
		}
		var refTerms map[string]string
		if e := annotations.Entry(name); e != nil {
			refTerms = e.GOTerms()
		}
		m := goOverlap(targetGO, refTerms)
		cache[name] = m
		return m
	}

	for _, key := range t.Order {
		for _, byIdentity := range t.Intervals[key].Annotations {
			for _, e := range byIdentity {
				for _, name := range e.contributors {
					if e.GO == nil {
						e.GO = make(map[string]*GOMatch)
					}
					e.GO[name] = lookup(name)
				}
			}
		}
	}
}

// goOverlap returns the shared terms and the Jaccard index of two GO sets.
func goOverlap(targetGO map[string]struct{}, refTerms map[string]string) *GOMatch {
	m := &GOMatch{Terms: make(map[string]string)}
	union := len(targetGO)
	for id, meaning := range refTerms {
		if _, ok := targetGO[id]; ok {
			m.Terms[id] = meaning
		} else {
			union++
		}
	}
	if union > 0 {
		m.Jaccard = float64(len(m.Terms)) / float64(union)
	}
	return m
}
