package resource

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

// Score is the conservation of one reference position.
type Score struct {
	Conservation float64 `json:"conservation"`
	Residue      string  `json:"residue"`
}

// Conservations holds per-position scores for a single conservation
// reference row, identified by its "id/start-end" label.
type Conservations struct {
	Label  string
	Scores map[int]Score
}

// Empty reports whether there is nothing to transfer.
func (c *Conservations) Empty() bool {
	return c == nil || c.Label == "" || len(c.Scores) == 0
}

// SortedPositions returns scored positions in ascending order.
func (c *Conservations) SortedPositions() []int {
	positions := make([]int, 0, len(c.Scores))
	for p := range c.Scores {
		positions = append(positions, p)
	}
	sort.Ints(positions)
	return positions
}

// ParseConservations decodes a conservations.json document. The document
// maps exactly one reference label to position scores; a score may be a
// bare number (residue unknown) or a {conservation, residue} object.
func ParseConservations(data []byte) (*Conservations, error) {
	c := &Conservations{Scores: make(map[int]Score)}
	if len(bytes.TrimSpace(data)) == 0 {
		return c, nil
	}

	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode conservations: %w", err)
	}
	if len(raw) == 0 {
		return c, nil
	}
	if len(raw) > 1 {
		return nil, fmt.Errorf("conservations: expected one reference, got %d", len(raw))
	}

	for label, positions := range raw {
		c.Label = label
		for key, value := range positions {
			pos, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("conservations %s: invalid position %q", label, key)
			}
			score, err := parseScore(value)
			if err != nil {
				return nil, fmt.Errorf("conservations %s position %d: %w", label, pos, err)
			}
			c.Scores[pos] = score
		}
	}
	return c, nil
}

func parseScore(value json.RawMessage) (Score, error) {
	var f float64
	if err := json.Unmarshal(value, &f); err == nil {
		return Score{Conservation: f}, nil
	}
	var s Score
	if err := json.Unmarshal(value, &s); err != nil {
		return Score{}, err
	}
	return s, nil
}
