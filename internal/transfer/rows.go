package transfer

import "sort"

// Row is one transferred annotation flattened for storage and listing.
type Row struct {
	Domain          string
	Target          string
	Interval        string
	Position        int
	Identity        string
	Type            string
	Description     string
	Hit             bool
	Count           int
	Evidence        []string
	PairedPositions []string
	Detail          map[string]any
}

// Rows flattens the result in target, interval, position and identity order.
func (r *Result) Rows() []Row {
	var rows []Row
	for _, id := range r.Order {
		t := r.Targets[id]
		for _, key := range t.Order {
			iv := t.Intervals[key]
			for _, pos := range sortedPositions(iv.Annotations) {
				byIdentity := iv.Annotations[pos]
				identities := make([]string, 0, len(byIdentity))
				for identity := range byIdentity {
					identities = append(identities, identity)
				}
				sort.Strings(identities)

				for _, identity := range identities {
					e := byIdentity[identity]
					rows = append(rows, Row{
						Domain:          r.Domain,
						Target:          id,
						Interval:        key,
						Position:        pos,
						Identity:        identity,
						Type:            e.Essentials.Type,
						Description:     e.Essentials.Description,
						Hit:             e.Hit,
						Count:           e.Essentials.Count,
						Evidence:        sortedRefKeys(e.Evidence),
						PairedPositions: sortedRefKeys(e.PairedPosition),
						Detail:          e.Tree(),
					})
				}
			}
		}
	}
	return rows
}

func sortedPositions(m map[int]map[string]*Entry) []int {
	positions := make([]int, 0, len(m))
	for p := range m {
		positions = append(positions, p)
	}
	sort.Ints(positions)
	return positions
}

func sortedRefKeys(m map[string]*RepRef) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
