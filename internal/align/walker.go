// Package align provides Stockholm alignment parsing and coordinate mapping
// between aligned sequences.
package align

// Kind classifies an alignment column.
type Kind uint8

const (
	// KindMatch marks a column where both sequences carry an upper-case residue.
	KindMatch Kind = iota
	// KindInsert marks a column where either sequence carries a lower-case
	// (insert-state) residue.
	KindInsert
	// KindGap marks a column where either sequence carries a gap character.
	KindGap
)

func (k Kind) String() string {
	switch k {
	case KindMatch:
		return "match"
	case KindInsert:
		return "insert"
	default:
		return "gap"
	}
}

// Pos is a sequence position that is absent when the sequence has a gap
// character at the column.
type Pos struct {
	N     int
	Valid bool
}

// At returns a valid position.
func At(n int) Pos { return Pos{N: n, Valid: true} }

// Column is one aligned character pair with positions in each sequence's own numbering.
type Column struct {
	Index      int
	Source     Pos
	Target     Pos
	SourceChar byte
	TargetChar byte
	Kind       Kind
}

// Walker walks two aligned strings in lockstep. It is single use.
type Walker struct {
	src, tgt         string
	srcNext, tgtNext int
	srcEnd, tgtEnd   int
	index            int
	done             bool
}

// Walk returns a Walker over src and tgt. Positions are seeded from srcStart
// and tgtStart; the walk stops after the column where either running
// position reaches its end coordinate.
func Walk(src, tgt string, srcStart, tgtStart, srcEnd, tgtEnd int) *Walker {
	return &Walker{
		src:     src,
		tgt:     tgt,
		srcNext: srcStart,
		tgtNext: tgtStart,
		srcEnd:  srcEnd,
		tgtEnd:  tgtEnd,
	}
}

// Next returns the next column, or false once the walk is exhausted.
func (w *Walker) Next() (Column, bool) {
	if w.done || w.index >= len(w.src) || w.index >= len(w.tgt) {
		w.done = true
		return Column{}, false
	}

	sc, tc := w.src[w.index], w.tgt[w.index]
	col := Column{
		Index:      w.index,
		SourceChar: sc,
		TargetChar: tc,
		Kind:       classify(sc, tc),
	}
	if IsLetter(sc) {
		col.Source = At(w.srcNext)
		w.srcNext++
	}
	if IsLetter(tc) {
		col.Target = At(w.tgtNext)
		w.tgtNext++
	}
	w.index++

	if (col.Source.Valid && col.Source.N == w.srcEnd) || (col.Target.Valid && col.Target.N == w.tgtEnd) {
		w.done = true
	}
	return col, true
}

// Columns drains the walker into a slice.
func (w *Walker) Columns() []Column {
	var cols []Column
	for {
		c, ok := w.Next()
		if !ok {
			return cols
		}
		cols = append(cols, c)
	}
}

func classify(a, b byte) Kind {
	if IsLower(a) || IsLower(b) {
		return KindInsert
	}
	if !IsLetter(a) || !IsLetter(b) {
		return KindGap
	}
	return KindMatch
}

// IsLetter reports whether c is an ASCII letter.
func IsLetter(c byte) bool {
	return IsLower(c) || (c >= 'A' && c <= 'Z')
}

// IsLower reports whether c is a lower-case ASCII letter.
func IsLower(c byte) bool {
	return c >= 'a' && c <= 'z'
}

// Upper returns the upper-case form of an ASCII letter.
func Upper(c byte) byte {
	if IsLower(c) {
		return c - 'a' + 'A'
	}
	return c
}
