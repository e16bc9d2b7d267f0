// Package resource loads the per-domain annotation, conservation and GO
// inputs consumed by annotation transfer.
package resource

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

// goPositionKey is the reserved position key holding an entry's GO terms.
const goPositionKey = "0"

// Record is one curated annotation at a reference position.
type Record struct {
	Type           string
	Description    string
	Evidence       string
	Entry          string // primary accession of the reference entry
	AminoAcid      string
	PairedPosition string
	Extra          map[string]string // type-specific keys, e.g. ligand_id
}

// Identity returns the "type | description" key distinguishing annotations
// at the same position.
func (r Record) Identity() string {
	return r.Type + " | " + r.Description
}

// knownRecordKeys are decoded into Record fields rather than Extra.
var knownRecordKeys = map[string]bool{
	"type":            true,
	"description":     true,
	"evidence":        true,
	"entry":           true,
	"aminoacid":       true,
	"paired_position": true,
	"target_position": true,
}

// UnmarshalJSON decodes a record, collecting unknown keys into Extra.
// A list-typed evidence field contributes only its first element.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key, value := range raw {
		switch key {
		case "type":
			if err := json.Unmarshal(value, &r.Type); err != nil {
				return fmt.Errorf("decode type: %w", err)
			}
		case "description":
			r.Description = scalarString(value)
		case "evidence":
			r.Evidence = evidenceString(value)
		case "entry":
			r.Entry = scalarString(value)
		case "aminoacid":
			r.AminoAcid = scalarString(value)
		case "paired_position":
			r.PairedPosition = scalarString(value)
		default:
			if knownRecordKeys[key] {
				continue
			}
			if r.Extra == nil {
				r.Extra = make(map[string]string)
			}
			r.Extra[key] = scalarString(value)
		}
	}
	return nil
}

// scalarString renders a JSON value as a plain string. Strings are
// unquoted, null is empty, anything else keeps its JSON text.
func scalarString(value json.RawMessage) string {
	value = bytes.TrimSpace(value)
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s
	}
	return string(value)
}

func evidenceString(value json.RawMessage) string {
	var list []json.RawMessage
	if err := json.Unmarshal(value, &list); err == nil {
		if len(list) == 0 {
			return ""
		}
		return scalarString(list[0])
	}
	return scalarString(value)
}

// Entry holds the annotations of one reference entry.
type Entry struct {
	Name      string
	Positions map[int][]Record
	// GO maps a GO category (e.g. "Biological Process") to GO id -> meaning.
	GO map[string]map[string]string
}

// SortedPositions returns annotated positions in ascending order.
func (e *Entry) SortedPositions() []int {
	positions := make([]int, 0, len(e.Positions))
	for p := range e.Positions {
		positions = append(positions, p)
	}
	sort.Ints(positions)
	return positions
}

// GOTerms flattens all GO categories into GO id -> meaning.
func (e *Entry) GOTerms() map[string]string {
	terms := make(map[string]string)
	for _, category := range e.GO {
		for id, meaning := range category {
			terms[id] = meaning
		}
	}
	return terms
}

// Annotations holds every reference entry of a domain in file order.
type Annotations struct {
	Order   []string
	Entries map[string]*Entry
	// Skipped lists position keys that were not integers.
	Skipped []string
}

// Entry returns the named entry, or nil.
func (a *Annotations) Entry(name string) *Entry {
	if a == nil {
		return nil
	}
	return a.Entries[name]
}

// Len returns the number of reference entries.
func (a *Annotations) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Order)
}

// ParseAnnotations decodes an annotations.json document, keeping the
// entry order of the file.
func ParseAnnotations(data []byte) (*Annotations, error) {
	a := &Annotations{Entries: make(map[string]*Entry)}
	if len(bytes.TrimSpace(data)) == 0 {
		return a, nil
	}

	err := decodeOrderedObject(data, func(name string, value json.RawMessage) error {
		entry, skipped, err := parseEntry(name, value)
		if err != nil {
			return fmt.Errorf("entry %s: %w", name, err)
		}
		if _, dup := a.Entries[name]; !dup {
			a.Order = append(a.Order, name)
		}
		a.Entries[name] = entry
		a.Skipped = append(a.Skipped, skipped...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func parseEntry(name string, data json.RawMessage) (*Entry, []string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}

	entry := &Entry{Name: name, Positions: make(map[int][]Record)}
	var skipped []string
	for key, value := range raw {
		if key == goPositionKey {
			if err := json.Unmarshal(value, &entry.GO); err != nil {
				return nil, nil, fmt.Errorf("decode GO terms: %w", err)
			}
			continue
		}
		pos, err := strconv.Atoi(key)
		if err != nil {
			skipped = append(skipped, name+"/"+key)
			continue
		}
		var records []Record
		if err := json.Unmarshal(value, &records); err != nil {
			return nil, nil, fmt.Errorf("position %s: %w", key, err)
		}
		entry.Positions[pos] = records
	}
	return entry, skipped, nil
}

// decodeOrderedObject walks the top-level members of a JSON object in
// document order.
func decodeOrderedObject(data []byte, fn func(key string, value json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read object: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("read value for %s: %w", key, err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return nil
}
