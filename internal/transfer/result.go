package transfer

import (
	"regexp"
	"strings"

	"github.com/inodb/vibe-transfer/internal/align"
)

// annotPositionPattern finds a residue cross-reference such as "C-246".
var annotPositionPattern = regexp.MustCompile(`[A-Z]-\d+`)

// annotPositionTypes may reference a partner residue in their description.
var annotPositionTypes = map[string]bool{
	"CROSSLNK": true,
	"DISULFID": true,
	"MUTAGEN":  true,
}

// additionalKeyTypes keep extra metadata under additional_keys.
var additionalKeyTypes = map[string]bool{
	"BINDING":  true,
	"ACT_SITE": true,
	"CROSSLNK": true,
	"DISULFID": true,
	"MUTAGEN":  true,
}

// RepRef names the first reference entry that contributed a value and how
// often the value was seen.
type RepRef struct {
	Accession string
	Name      string
	Count     int
	Status    string // set on paired positions whose partner failed
}

// Essentials are fixed by the first observation of an annotation.
type Essentials struct {
	Type          string
	Description   string
	Count         int
	RefResidue    string
	TargetResidue string
}

// GOMatch is the GO overlap between a target and one reference entry.
type GOMatch struct {
	Terms   map[string]string
	Jaccard float64
}

// Entry is one transferred annotation at a target position.
type Entry struct {
	Essentials     Essentials
	Hit            bool
	Evidence       map[string]*RepRef
	PairedPosition map[string]*RepRef
	AdditionalKeys map[string]map[string]*RepRef
	GO             map[string]*GOMatch
	// PartnerMissing is set when a declared partner position carried no
	// records, serialized as paired_hit=false.
	PartnerMissing bool

	contributors []string
}

// Contributors returns the reference entries that contributed, in order.
func (e *Entry) Contributors() []string {
	return e.contributors
}

func (e *Entry) addContributor(name string) {
	for _, c := range e.contributors {
		if c == name {
			return
		}
	}
	e.contributors = append(e.contributors, name)
}

// ConservationScore is a conservation value transferred to a target position.
type ConservationScore struct {
	Conservation float64
	Residue      string
	Hit          bool
}

// Interval holds everything transferred onto one target hit interval.
type Interval struct {
	Key      string
	Start    int
	End      int
	Sequence string

	Annotations      map[int]map[string]*Entry
	Matches          map[int]struct{}
	Misses           map[int]struct{}
	AnnotationRanges map[string]*RangeSet

	Conservations       map[int]*ConservationScore
	ConservationMatches map[int]struct{}
	ConservationMisses  map[int]struct{}
	Conserved           *RangeSet
	NonConserved        *RangeSet

	TargetToAln map[int]int
	AlnToTarget map[int]int
}

// Length returns the number of residues in the interval sequence.
func (iv *Interval) Length() int {
	return len(iv.Sequence)
}

// Entry returns the transferred annotation at pos with the given identity.
func (iv *Interval) Entry(pos int, identity string) *Entry {
	return iv.Annotations[pos][identity]
}

// Target groups the hit intervals of one target sequence.
type Target struct {
	ID        string
	Intervals map[string]*Interval
	Order     []string
}

// Result is the transfer output of one domain.
type Result struct {
	Domain  string
	Targets map[string]*Target
	Order   []string
}

// NewResult creates an empty result for a domain.
func NewResult(domain string) *Result {
	return &Result{Domain: domain, Targets: make(map[string]*Target)}
}

// Target returns the named target, or nil.
func (r *Result) Target(id string) *Target {
	return r.Targets[id]
}

// Interval returns a target interval, or nil.
func (r *Result) Interval(target, key string) *Interval {
	t := r.Targets[target]
	if t == nil {
		return nil
	}
	return t.Intervals[key]
}

// ensureInterval returns the interval for a target row, creating it with
// its sequence and column conversion tables on first use.
func (r *Result) ensureInterval(row align.TargetRow) *Interval {
	t := r.Targets[row.ID]
	if t == nil {
		t = &Target{ID: row.ID, Intervals: make(map[string]*Interval)}
		r.Targets[row.ID] = t
		r.Order = append(r.Order, row.ID)
	}
	key := row.Interval()
	if iv := t.Intervals[key]; iv != nil {
		return iv
	}

	iv := &Interval{
		Key:                 key,
		Start:               row.Start,
		End:                 row.End,
		Annotations:         make(map[int]map[string]*Entry),
		Matches:             make(map[int]struct{}),
		Misses:              make(map[int]struct{}),
		AnnotationRanges:    make(map[string]*RangeSet),
		Conservations:       make(map[int]*ConservationScore),
		ConservationMatches: make(map[int]struct{}),
		ConservationMisses:  make(map[int]struct{}),
		Conserved:           NewRangeSet(),
		NonConserved:        NewRangeSet(),
		TargetToAln:         make(map[int]int),
		AlnToTarget:         make(map[int]int),
	}

	var seq strings.Builder
	pos := row.Start
	for i := 0; i < len(row.Sequence); i++ {
		c := row.Sequence[i]
		if !align.IsLetter(c) {
			continue
		}
		seq.WriteByte(align.Upper(c))
		iv.TargetToAln[pos] = i
		iv.AlnToTarget[i] = pos
		pos++
	}
	iv.Sequence = seq.String()

	t.Intervals[key] = iv
	t.Order = append(t.Order, key)
	return iv
}

// add merges a built record into the entry at its target position.
func (iv *Interval) add(b *Built, hit bool) *Entry {
	identity := b.Identity()
	byIdentity := iv.Annotations[b.TargetPos]
	if byIdentity == nil {
		byIdentity = make(map[string]*Entry)
		iv.Annotations[b.TargetPos] = byIdentity
	}

	e := byIdentity[identity]
	if e == nil {
		e = &Entry{
			Essentials: Essentials{
				Type:          b.Type,
				Description:   b.Description,
				Count:         1,
				RefResidue:    b.RefResidue,
				TargetResidue: b.TargetResidue,
			},
			Hit:            hit,
			Evidence:       make(map[string]*RepRef),
			PairedPosition: make(map[string]*RepRef),
			AdditionalKeys: make(map[string]map[string]*RepRef),
		}
		byIdentity[identity] = e
	} else {
		e.Essentials.Count++
	}
	e.addContributor(b.EntryName)

	bump(e.Evidence, b.Evidence, b)
	if b.PartnerMissing {
		e.PartnerMissing = true
	}
	if b.PairedTargetPos != "" {
		ref := bump(e.PairedPosition, b.PairedTargetPos, b)
		if b.PairStatus != "" {
			ref.Status = b.PairStatus
		}
	}

	if annotPositionTypes[b.Type] {
		if m := annotPositionPattern.FindString(b.Description); m != "" {
			bumpKey(e.AdditionalKeys, "annot_position", m[2:], b)
		}
	}
	if additionalKeyTypes[b.Type] {
		for k, v := range b.Extra {
			bumpKey(e.AdditionalKeys, k, v, b)
		}
	}

	if e.Hit {
		iv.Matches[b.TargetPos] = struct{}{}
	} else {
		iv.Misses[b.TargetPos] = struct{}{}
	}

	rs := iv.AnnotationRanges[identity]
	if rs == nil {
		rs = NewRangeSet()
		iv.AnnotationRanges[identity] = rs
	}
	rs.Add(b.TargetPos)
	return e
}

func bump(m map[string]*RepRef, value string, b *Built) *RepRef {
	if ref, ok := m[value]; ok {
		ref.Count++
		return ref
	}
	ref := &RepRef{Accession: b.Accession, Name: b.EntryName, Count: 1}
	m[value] = ref
	return ref
}

func bumpKey(m map[string]map[string]*RepRef, key, value string, b *Built) {
	values := m[key]
	if values == nil {
		values = make(map[string]*RepRef)
		m[key] = values
	}
	bump(values, value, b)
}
