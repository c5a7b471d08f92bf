package reflow

import (
	"unicode"

	"github.com/jward/docspell/internal/markup"
	"github.com/jward/docspell/internal/span"
)

// paragraph is a reflowable range of chunk text together with the ranges
// inside it that must not be split across lines.
type paragraph struct {
	rng          span.Range
	unbreakables []span.Range
}

type state uint8

const (
	outsideParagraph state = iota
	insideParagraph
)

// scanner turns a markup event stream into paragraphs.
type scanner struct {
	chars []rune
	state state
	start int

	// depth counts open inline constructs; open is the full extent of
	// the outermost one.
	depth int
	open  span.Range
	// containers counts open non-paragraph blocks. Paragraphs inside
	// them are left alone.
	containers int

	unbreakables []span.Range
	out          []paragraph
}

func scan(chars []rune, events []markup.Event) []paragraph {
	s := &scanner{chars: chars}
	for _, ev := range events {
		s.event(ev)
	}
	s.flush(len(chars))
	return s.out
}

func (s *scanner) event(ev markup.Event) {
	switch ev.Kind {
	case markup.Start:
		switch {
		case ev.Tag == markup.Paragraph:
			if s.containers == 0 {
				s.depth = 0
				s.begin(ev.Range.Start)
			}
		case ev.Tag.Inline():
			if s.state == insideParagraph {
				if s.depth == 0 {
					s.open = ev.Range
					s.unbreakables = append(s.unbreakables, ev.Range)
				}
				s.depth++
			}
		case ev.Tag.Block():
			s.flush(ev.Range.Start)
			s.containers++
		}

	case markup.End:
		switch {
		case ev.Tag == markup.Paragraph:
			s.flush(ev.Range.End)
		case ev.Tag.Inline():
			if s.state == insideParagraph && s.depth > 0 {
				s.depth--
			}
		case ev.Tag.Block():
			s.containers = max(s.containers-1, 0)
		}

	case markup.Code, markup.HTML:
		if s.state == insideParagraph && s.depth == 0 {
			s.unbreakables = append(s.unbreakables, ev.Range)
		}

	case markup.HardBreak:
		if s.state == insideParagraph {
			s.flush(ev.Range.Start)
			s.begin(ev.Range.End)
		}
	}
}

func (s *scanner) begin(start int) {
	s.state = insideParagraph
	s.start = start
	s.unbreakables = s.unbreakables[:0]
	// A hard break inside a construct leaves it open in the next paragraph.
	if s.depth > 0 {
		s.unbreakables = append(s.unbreakables, s.open)
	}
}

// flush closes the current paragraph at end, trimmed of whitespace.
func (s *scanner) flush(end int) {
	if s.state != insideParagraph {
		return
	}
	s.state = outsideParagraph

	r := s.trim(span.Range{Start: s.start, End: min(end, len(s.chars))})
	if r.IsEmpty() {
		return
	}
	p := paragraph{rng: r}
	for _, u := range s.unbreakables {
		if u.Overlaps(r) {
			p.unbreakables = append(p.unbreakables, u)
		}
	}
	s.out = append(s.out, p)
}

func (s *scanner) trim(r span.Range) span.Range {
	for r.Start < r.End && unicode.IsSpace(s.chars[r.Start]) {
		r.Start++
	}
	for r.End > r.Start && unicode.IsSpace(s.chars[r.End-1]) {
		r.End--
	}
	return r
}
