package markup

import (
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

// extent returns the byte interval n covers in the source, delimiters
// included.
func (w *walker) extent(n ast.Node) extent {
	if e, ok := w.extents[n]; ok {
		return e
	}
	e := w.computeExtent(n)
	if e.ok {
		e.lo = max(e.lo, 0)
		e.hi = min(e.hi, len(w.src))
		if e.hi < e.lo {
			e.hi = e.lo
		}
	}
	w.extents[n] = e
	return e
}

func (w *walker) computeExtent(n ast.Node) extent {
	switch node := n.(type) {
	case *ast.Text:
		return extent{lo: node.Segment.Start, hi: node.Segment.Stop, ok: true}
	case *ast.RawHTML:
		segs := node.Segments
		if segs == nil || segs.Len() == 0 {
			return extent{}
		}
		return extent{lo: segs.At(0).Start, hi: segs.At(segs.Len() - 1).Stop, ok: true}
	case *ast.CodeSpan:
		e := w.children(n)
		if !e.ok {
			return e
		}
		e.lo = w.fenceBefore(e.lo, '`')
		e.hi = w.fenceAfter(e.hi, '`')
		return e
	case *ast.Emphasis:
		e := w.children(n)
		if !e.ok {
			return e
		}
		e.lo -= node.Level
		e.hi += node.Level
		return e
	case *east.Strikethrough:
		e := w.children(n)
		if !e.ok {
			return e
		}
		e.lo = w.fenceBefore(e.lo, '~')
		e.hi = w.fenceAfter(e.hi, '~')
		return e
	case *ast.Link:
		e := w.children(n)
		if !e.ok {
			return e
		}
		e.lo--
		e.hi = w.linkTail(e.hi)
		return e
	case *ast.Image:
		e := w.children(n)
		if !e.ok {
			return e
		}
		e.lo -= 2
		e.hi = w.linkTail(e.hi)
		return e
	}

	if n.Type() == ast.TypeBlock {
		if lines := n.Lines(); lines != nil && lines.Len() > 0 {
			return extent{lo: lines.At(0).Start, hi: lines.At(lines.Len() - 1).Stop, ok: true}
		}
	}
	return w.children(n)
}

// children unions the extents of all positioned children.
func (w *walker) children(n ast.Node) extent {
	var out extent
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		e := w.extent(c)
		if !e.ok {
			continue
		}
		if !out.ok {
			out = e
			continue
		}
		out.lo = min(out.lo, e.lo)
		out.hi = max(out.hi, e.hi)
	}
	return out
}

// fenceBefore moves pos left over at most one padding space and then over
// a run of fence characters.
func (w *walker) fenceBefore(pos int, fence byte) int {
	i := pos
	if i > 0 && w.src[i-1] == ' ' && i > 1 && w.src[i-2] != ' ' {
		i--
	}
	j := i
	for j > 0 && w.src[j-1] == fence {
		j--
	}
	if j == i {
		return pos
	}
	return j
}

// fenceAfter mirrors fenceBefore to the right.
func (w *walker) fenceAfter(pos int, fence byte) int {
	i := pos
	if i < len(w.src) && w.src[i] == ' ' && i+1 < len(w.src) && w.src[i+1] != ' ' {
		i++
	}
	j := i
	for j < len(w.src) && w.src[j] == fence {
		j++
	}
	if j == i {
		return pos
	}
	return j
}

// linkTail returns the offset just past a link or image whose label text
// ends at pos: the closing bracket plus an inline destination `(...)` or a
// reference label `[...]`.
func (w *walker) linkTail(pos int) int {
	src := w.src
	i := pos
	for i < len(src) && src[i] != ']' {
		if src[i] == '\\' {
			i++
		}
		i++
	}
	if i >= len(src) {
		return len(src)
	}
	i++
	if i >= len(src) {
		return i
	}
	switch src[i] {
	case '(':
		depth := 0
		for ; i < len(src); i++ {
			switch src[i] {
			case '\\':
				i++
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return i + 1
				}
			}
		}
		return len(src)
	case '[':
		for j := i + 1; j < len(src); j++ {
			if src[j] == ']' {
				return j + 1
			}
		}
	}
	return i
}
