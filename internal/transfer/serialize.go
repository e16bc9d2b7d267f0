package transfer

import (
	"sort"
	"strconv"
)

// Tree converts the result into the generic JSON tree
// {domain: {"sequence_id": {target: {"hit_intervals": {...}}}}}.
// Sets become sorted lists and ranges become [start, end] pairs.
func (r *Result) Tree() map[string]any {
	sequences := make(map[string]any, len(r.Targets))
	for _, id := range r.Order {
		sequences[id] = r.TargetTree(id)
	}
	return map[string]any{
		r.Domain: map[string]any{"sequence_id": sequences},
	}
}

// TargetTree returns {"hit_intervals": {...}} for one target, or nil.
func (r *Result) TargetTree(id string) map[string]any {
	t := r.Targets[id]
	if t == nil {
		return nil
	}
	intervals := make(map[string]any, len(t.Intervals))
	for _, key := range t.Order {
		intervals[key] = t.Intervals[key].tree()
	}
	return map[string]any{"hit_intervals": intervals}
}

// HasAnnotations reports whether any interval of the target received data.
func (t *Target) HasAnnotations() bool {
	for _, iv := range t.Intervals {
		if len(iv.Annotations) > 0 || len(iv.Conservations) > 0 {
			return true
		}
	}
	return false
}

func (iv *Interval) tree() map[string]any {
	positions := make(map[string]any, len(iv.Annotations))
	for pos, byIdentity := range iv.Annotations {
		entries := make(map[string]any, len(byIdentity))
		for identity, e := range byIdentity {
			entries[identity] = e.Tree()
		}
		positions[strconv.Itoa(pos)] = entries
	}

	ranges := make(map[string]any, len(iv.AnnotationRanges))
	for identity, rs := range iv.AnnotationRanges {
		ranges[identity] = rs.tree()
	}

	conservations := make(map[string]any, len(iv.Conservations))
	for pos, c := range iv.Conservations {
		conservations[strconv.Itoa(pos)] = map[string]any{
			"conservation": c.Conservation,
			"residue":      c.Residue,
			"hit":          c.Hit,
		}
	}

	return map[string]any{
		"sequence":  iv.Sequence,
		"length":    iv.Length(),
		"hit_start": iv.Start,
		"hit_end":   iv.End,
		"annotations": map[string]any{
			"positions": positions,
			"indices":   indices(iv.Matches, iv.Misses),
		},
		"annotation_ranges": ranges,
		"conservations": map[string]any{
			"positions": conservations,
			"indices":   indices(iv.ConservationMatches, iv.ConservationMisses),
		},
		"conservation_ranges": map[string]any{
			"conserved_positions":     iv.Conserved.tree(),
			"non_conserved_positions": iv.NonConserved.tree(),
		},
		"position_conversion": map[string]any{
			"target_to_aln": intMap(iv.TargetToAln),
			"aln_to_target": intMap(iv.AlnToTarget),
		},
	}
}

// Tree returns the JSON form of the entry.
func (e *Entry) Tree() map[string]any {
	out := map[string]any{
		"essentials": map[string]any{
			"type":              e.Essentials.Type,
			"description":       e.Essentials.Description,
			"count":             e.Essentials.Count,
			"annot_amino_acid":  e.Essentials.RefResidue,
			"target_amino_acid": e.Essentials.TargetResidue,
		},
		"hit":      e.Hit,
		"evidence": refsTree(e.Evidence),
	}
	if len(e.PairedPosition) > 0 {
		out["paired_position"] = refsTree(e.PairedPosition)
	}
	if e.PartnerMissing {
		out["paired_hit"] = false
	}
	if len(e.AdditionalKeys) > 0 {
		keys := make(map[string]any, len(e.AdditionalKeys))
		for k, values := range e.AdditionalKeys {
			keys[k] = refsTree(values)
		}
		out["additional_keys"] = keys
	}
	if len(e.GO) > 0 {
		goTree := make(map[string]any, len(e.GO))
		for name, m := range e.GO {
			terms := make(map[string]any, len(m.Terms))
			for id, meaning := range m.Terms {
				terms[id] = meaning
			}
			goTree[name] = map[string]any{
				"terms":         terms,
				"jaccard_index": m.Jaccard,
			}
		}
		out["GO"] = goTree
	}
	return out
}

func refsTree(m map[string]*RepRef) map[string]any {
	out := make(map[string]any, len(m))
	for value, ref := range m {
		node := map[string]any{
			"rep_primary_accession": ref.Accession,
			"rep_mnemo_name":        ref.Name,
			"count":                 ref.Count,
		}
		if ref.Status != "" {
			node["status"] = ref.Status
		}
		out[value] = node
	}
	return out
}

func (r *RangeSet) tree() map[string]any {
	ranges := make([]any, len(r.Ranges))
	for i, rg := range r.Ranges {
		ranges[i] = []any{rg.Start, rg.End}
	}
	positions := make([]any, 0, len(r.Positions))
	for _, p := range r.SortedPositions() {
		positions = append(positions, p)
	}
	return map[string]any{
		"positions": positions,
		"ranges":    ranges,
	}
}

func indices(matches, misses map[int]struct{}) map[string]any {
	return map[string]any{
		"matches": intList(matches),
		"misses":  intList(misses),
	}
}

func intList(set map[int]struct{}) []any {
	out := make([]any, 0, len(set))
	for _, p := range sortedKeys(set) {
		out = append(out, strconv.Itoa(p))
	}
	return out
}

func intMap(m map[int]int) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[strconv.Itoa(k)] = strconv.Itoa(v)
	}
	return out
}

// RestoreRangeSets walks a decoded report tree and replaces every object
// shaped {"positions": [...], "ranges": [[s, e], ...]} with a *RangeSet.
// Other values are returned unchanged.
func RestoreRangeSets(node any) any {
	switch v := node.(type) {
	case map[string]any:
		if rs, ok := rangeSetFromTree(v); ok {
			return rs
		}
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[k] = RestoreRangeSets(child)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = RestoreRangeSets(child)
		}
		return out
	default:
		return node
	}
}

func rangeSetFromTree(m map[string]any) (*RangeSet, bool) {
	if len(m) != 2 {
		return nil, false
	}
	rawPositions, ok := m["positions"].([]any)
	if !ok {
		return nil, false
	}
	rawRanges, ok := m["ranges"].([]any)
	if !ok {
		return nil, false
	}

	rs := NewRangeSet()
	for _, p := range rawPositions {
		n, ok := toInt(p)
		if !ok {
			return nil, false
		}
		rs.Positions[n] = struct{}{}
	}
	for _, raw := range rawRanges {
		pair, ok := raw.([]any)
		if !ok || len(pair) != 2 {
			return nil, false
		}
		start, ok1 := toInt(pair[0])
		end, ok2 := toInt(pair[1])
		if !ok1 || !ok2 {
			return nil, false
		}
		rs.Ranges = append(rs.Ranges, Range{Start: start, End: end})
	}
	sort.Slice(rs.Ranges, func(i, j int) bool { return rs.Ranges[i].Start < rs.Ranges[j].Start })
	return rs, true
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}
