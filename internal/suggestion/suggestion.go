// Package suggestion defines the records checkers produce and the ordered,
// origin-keyed collection they are merged into.
package suggestion

import (
	"fmt"
	"strings"

	"github.com/jward/docspell/internal/doc"
	"github.com/jward/docspell/internal/span"
)

// Suggestion is one proposed change to a chunk.
type Suggestion struct {
	Detector Detector   `json:"detector" msgpack:"detector"`
	Origin   doc.Origin `json:"origin" msgpack:"origin"`
	// Chunk is the chunk Range indexes into. It is never modified.
	Chunk        *doc.Chunk `json:"-" msgpack:"-"`
	Range        span.Range `json:"range" msgpack:"range"`
	Span         span.Span  `json:"span" msgpack:"span"`
	Replacements []string   `json:"replacements" msgpack:"replacements"`
	Description  string     `json:"description,omitempty" msgpack:"description,omitempty"`
}

// New builds a suggestion whose Span is already resolved.
func New(det Detector, origin doc.Origin, chunk *doc.Chunk, r span.Range, s span.Span, description string, replacements ...string) Suggestion {
	return Suggestion{
		Detector:     det,
		Origin:       origin,
		Chunk:        chunk,
		Range:        r,
		Span:         s,
		Replacements: replacements,
		Description:  description,
	}
}

// Assemble resolves the Span of r in chunk and builds the suggestion. It
// fails with doc.ErrNoCoveringSpan or doc.ErrRangeOutOfBounds when r has
// no valid source location; callers skip the finding in that case.
func Assemble(det Detector, origin doc.Origin, chunk *doc.Chunk, r span.Range, description string, replacements ...string) (Suggestion, error) {
	spans, err := chunk.FindCoveredSpans(r)
	if err != nil {
		return Suggestion{}, fmt.Errorf("suggestion: %s %s: %w", det, r, err)
	}
	s := span.Span{Start: spans[0].Start, End: spans[len(spans)-1].End}
	return New(det, origin, chunk, r, s, description, replacements...), nil
}

// Text returns the chunk text the suggestion replaces.
func (s Suggestion) Text() string {
	if s.Chunk == nil {
		return ""
	}
	return s.Chunk.Slice(s.Range)
}

func (s Suggestion) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%s [%s]", s.Origin, s.Span.Start, s.Detector)
	if s.Description != "" {
		fmt.Fprintf(&b, " %s", s.Description)
	}
	if len(s.Replacements) > 0 {
		fmt.Fprintf(&b, " -> %q", s.Replacements)
	}
	return b.String()
}
