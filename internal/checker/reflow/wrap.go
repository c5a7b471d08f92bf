package reflow

import (
	"strings"
	"unicode/utf8"

	"github.com/jward/docspell/internal/tokenize"
)

// glued is a word, or several words held together by an unbreakable
// construct, that is placed on a line as a whole.
type glued struct {
	text  string
	width int
}

// words splits the paragraph on whitespace and joins words with single
// spaces while they fall inside an unbreakable range overlapped by the
// unit built so far, so constructs sharing a word stay in one unit.
func words(chars []rune, p paragraph) []glued {
	text := string(chars[p.rng.Start:p.rng.End])
	ranges := tokenize.Words(text)
	out := make([]glued, 0, len(ranges))

	if len(p.unbreakables) == 0 {
		for _, r := range ranges {
			out = append(out, glued{text: string(chars[r.Start+p.rng.Start : r.End+p.rng.Start]), width: r.Len()})
		}
		return out
	}

	// reach is the end of the furthest unbreakable the last unit overlaps.
	reach := -1
	for _, r := range ranges {
		r = r.Shift(p.rng.Start)
		w := string(chars[r.Start:r.End])
		if len(out) > 0 && r.Start < reach {
			prev := &out[len(out)-1]
			prev.text += " " + w
			prev.width += 1 + r.Len()
		} else {
			out = append(out, glued{text: w, width: r.Len()})
			reach = -1
		}
		for _, u := range p.unbreakables {
			if u.Overlaps(r) {
				reach = max(reach, u.End)
			}
		}
	}
	return out
}

// layout describes where each produced line starts and how it is
// decorated.
type layout struct {
	// first is the column offset of line 0.
	first int
	// indents holds one indentation per original source line; the last
	// value is reused for further lines.
	indents []int
	prefix  string
	suffix  string
	max     int
}

func (l layout) indent(k int) int {
	if len(l.indents) == 0 {
		return 0
	}
	return max(l.indents[min(k, len(l.indents)-1)]-utf8.RuneCountInString(l.prefix), 0)
}

// offset is the width already taken on line k before its first word.
func (l layout) offset(k int) int {
	if k == 0 {
		return l.first
	}
	return l.indent(k) + utf8.RuneCountInString(l.prefix)
}

// fill places words greedily. A word is appended while the line stays
// within max; the first word on a line is always placed.
func (l layout) fill(ws []glued) []string {
	var lines []string
	var cur strings.Builder
	width := l.offset(0)
	empty := true
	for _, w := range ws {
		if !empty && width+1+w.width > l.max {
			lines = append(lines, cur.String())
			cur.Reset()
			width = l.offset(len(lines))
			empty = true
		}
		if !empty {
			cur.WriteByte(' ')
			width++
		}
		cur.WriteString(w.text)
		width += w.width
		empty = false
	}
	if !empty {
		lines = append(lines, cur.String())
	}
	return lines
}

// assemble decorates the lines into replacement text. Line 0 keeps the
// decoration already present in the source, so only its suffix is added.
func (l layout) assemble(lines []string) string {
	var b strings.Builder
	for k, line := range lines {
		if k > 0 {
			b.WriteString(strings.Repeat(" ", l.indent(k)))
			b.WriteString(l.prefix)
		}
		b.WriteString(line)
		b.WriteString(l.suffix)
		b.WriteByte('\n')
	}
	out := strings.TrimSuffix(b.String(), "\n")
	return strings.TrimSuffix(out, l.suffix)
}
