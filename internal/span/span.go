// Package span defines the two coordinate systems used throughout docspell:
// chunk-relative character ranges and absolute line/column spans in the
// original source file.
//
// The two are deliberately separate types. A [Range] is only meaningful
// together with the chunk it indexes, and only a chunk can convert it into
// a [Span].
package span

import "fmt"

// Range is a half-open interval [Start, End) of character offsets into a
// chunk's text. Offsets count characters (runes), not bytes.
type Range struct {
	Start int `json:"start" msgpack:"start"`
	End   int `json:"end" msgpack:"end"`
}

// NewRange returns the range [start, end). It panics when end < start,
// which is always a programming error.
func NewRange(start, end int) Range {
	if end < start {
		panic(fmt.Sprintf("span: invalid range [%d, %d)", start, end))
	}
	return Range{Start: start, End: end}
}

// Len returns the number of characters covered.
func (r Range) Len() int { return r.End - r.Start }

// IsEmpty reports whether the range covers no characters.
func (r Range) IsEmpty() bool { return r.End <= r.Start }

// Contains reports whether offset lies inside the range.
func (r Range) Contains(offset int) bool {
	return r.Start <= offset && offset < r.End
}

// Overlaps reports whether both ranges share at least one character.
func (r Range) Overlaps(o Range) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return r.Start < o.End && o.Start < r.End
}

// Encloses reports whether o lies entirely inside r.
func (r Range) Encloses(o Range) bool {
	return r.Start <= o.Start && o.End <= r.End
}

// Intersect returns the overlap of both ranges and whether it is non-empty.
func (r Range) Intersect(o Range) (Range, bool) {
	start := max(r.Start, o.Start)
	end := min(r.End, o.End)
	if end <= start {
		return Range{}, false
	}
	return Range{Start: start, End: end}, true
}

// Shift moves both ends by delta.
func (r Range) Shift(delta int) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// LineColumn is a 1-based position in the original source file. Column
// counts characters on the line.
type LineColumn struct {
	Line   int `json:"line" msgpack:"line"`
	Column int `json:"column" msgpack:"column"`
}

// Before reports whether p sorts strictly before o.
func (p LineColumn) Before(o LineColumn) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// Compare returns -1, 0 or 1.
func (p LineColumn) Compare(o LineColumn) int {
	switch {
	case p.Before(o):
		return -1
	case o.Before(p):
		return 1
	}
	return 0
}

func (p LineColumn) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is an inclusive region [Start, End] of the original source file.
type Span struct {
	Start LineColumn `json:"start" msgpack:"start"`
	End   LineColumn `json:"end" msgpack:"end"`
}

// Lines returns how many source lines the span touches.
func (s Span) Lines() int {
	return s.End.Line - s.Start.Line + 1
}

// Covers reports whether pos lies inside the span.
func (s Span) Covers(pos LineColumn) bool {
	return !pos.Before(s.Start) && !s.End.Before(pos)
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}
