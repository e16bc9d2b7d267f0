package transfer

import "sort"

// Range is a closed interval of positions.
type Range struct {
	Start int
	End   int
}

// RangeSet tracks a set of positions together with its minimal cover of
// disjoint, non-adjacent closed ranges, kept sorted by start.
type RangeSet struct {
	Positions map[int]struct{}
	Ranges    []Range
}

// NewRangeSet creates an empty RangeSet.
func NewRangeSet() *RangeSet {
	return &RangeSet{Positions: make(map[int]struct{})}
}

// Contains reports whether pos is a member.
func (r *RangeSet) Contains(pos int) bool {
	_, ok := r.Positions[pos]
	return ok
}

// Add inserts pos, extending a neighbouring range or starting a singleton.
func (r *RangeSet) Add(pos int) {
	if r.Contains(pos) {
		return
	}
	r.Positions[pos] = struct{}{}

	for i := range r.Ranges {
		rg := &r.Ranges[i]
		switch pos {
		case rg.Start - 1:
			rg.Start = pos
			r.merge()
			return
		case rg.End + 1:
			rg.End = pos
			r.merge()
			return
		}
	}

	i := sort.Search(len(r.Ranges), func(i int) bool { return r.Ranges[i].Start > pos })
	r.Ranges = append(r.Ranges, Range{})
	copy(r.Ranges[i+1:], r.Ranges[i:])
	r.Ranges[i] = Range{Start: pos, End: pos}
}

// merge coalesces ranges whose gap is at most one until nothing changes.
func (r *RangeSet) merge() {
	for {
		sort.Slice(r.Ranges, func(i, j int) bool { return r.Ranges[i].Start < r.Ranges[j].Start })
		merged := false
		out := r.Ranges[:0]
		for _, rg := range r.Ranges {
			if n := len(out); n > 0 && rg.Start-out[n-1].End <= 1 {
				if rg.End > out[n-1].End {
					out[n-1].End = rg.End
				}
				merged = true
				continue
			}
			out = append(out, rg)
		}
		r.Ranges = out
		if !merged {
			return
		}
	}
}

// SortedPositions returns the members in ascending order.
func (r *RangeSet) SortedPositions() []int {
	return sortedKeys(r.Positions)
}

func sortedKeys(m map[int]struct{}) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
