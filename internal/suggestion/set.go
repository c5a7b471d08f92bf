package suggestion

import (
	"iter"
	"sort"

	"github.com/jward/docspell/internal/doc"
)

// Set collects suggestions per origin. Merging keeps duplicates; Sort puts
// every origin's list into canonical order.
type Set struct {
	byOrigin map[doc.Origin][]Suggestion
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{byOrigin: make(map[doc.Origin][]Suggestion)}
}

// Add appends one suggestion under its own origin.
func (s *Set) Add(sug Suggestion) {
	s.byOrigin[sug.Origin] = append(s.byOrigin[sug.Origin], sug)
}

// Extend appends suggestions under origin.
func (s *Set) Extend(origin doc.Origin, sugs []Suggestion) {
	if len(sugs) == 0 {
		return
	}
	s.byOrigin[origin] = append(s.byOrigin[origin], sugs...)
}

// Join merges other into s. A nil other is a no-op.
func (s *Set) Join(other *Set) {
	if other == nil {
		return
	}
	for origin, sugs := range other.byOrigin {
		s.Extend(origin, sugs)
	}
}

// Len returns the number of origins with suggestions.
func (s *Set) Len() int { return len(s.byOrigin) }

// Total returns the number of suggestions over all origins.
func (s *Set) Total() int {
	n := 0
	for _, sugs := range s.byOrigin {
		n += len(sugs)
	}
	return n
}

// Origins returns the origins in sorted order.
func (s *Set) Origins() []doc.Origin {
	origins := make([]doc.Origin, 0, len(s.byOrigin))
	for o := range s.byOrigin {
		origins = append(origins, o)
	}
	sort.Slice(origins, func(i, j int) bool { return origins[i] < origins[j] })
	return origins
}

// Get returns the suggestions of origin.
func (s *Set) Get(origin doc.Origin) []Suggestion {
	return s.byOrigin[origin]
}

// Sort orders every origin's suggestions by Span start, then Span end,
// detector and Range start. The sort is stable, so suggestions equal in
// all keys keep their merge order.
func (s *Set) Sort() {
	for _, sugs := range s.byOrigin {
		sort.SliceStable(sugs, func(i, j int) bool {
			a, b := sugs[i], sugs[j]
			if c := a.Span.Start.Compare(b.Span.Start); c != 0 {
				return c < 0
			}
			if c := a.Span.End.Compare(b.Span.End); c != 0 {
				return c < 0
			}
			if a.Detector != b.Detector {
				return a.Detector < b.Detector
			}
			return a.Range.Start < b.Range.Start
		})
	}
}

// All yields every suggestion, origins in sorted order.
func (s *Set) All() iter.Seq2[doc.Origin, Suggestion] {
	return func(yield func(doc.Origin, Suggestion) bool) {
		for _, origin := range s.Origins() {
			for _, sug := range s.byOrigin[origin] {
				if !yield(origin, sug) {
					return
				}
			}
		}
	}
}

// Flatten returns All as a slice.
func (s *Set) Flatten() []Suggestion {
	out := make([]Suggestion, 0, s.Total())
	for _, sug := range s.All() {
		out = append(out, sug)
	}
	return out
}
