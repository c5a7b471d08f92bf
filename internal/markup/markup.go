// Package markup turns CommonMark text into a flat stream of start/end
// events, each carrying the character Range it covers in the input.
//
// The parser is goldmark with the GFM strikethrough and table extensions.
// goldmark reports byte segments for leaf text only, so container ranges
// are derived from their descendants plus the delimiters around them.
package markup

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/jward/docspell/internal/span"
)

// Kind is the event type.
type Kind uint8

const (
	Start Kind = iota + 1
	End
	Text
	Code
	HTML
	SoftBreak
	HardBreak
)

var kindNames = [...]string{
	Start:     "start",
	End:       "end",
	Text:      "text",
	Code:      "code",
	HTML:      "html",
	SoftBreak: "soft-break",
	HardBreak: "hard-break",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Tag names the construct a Start or End event belongs to.
type Tag uint8

const (
	NoTag Tag = iota
	Paragraph
	Heading
	BlockQuote
	CodeBlock
	List
	Item
	Rule
	HTMLBlock
	Table
	OtherBlock
	Emphasis
	Strong
	Strikethrough
	Link
	Image
)

var tagNames = [...]string{
	NoTag:         "none",
	Paragraph:     "paragraph",
	Heading:       "heading",
	BlockQuote:    "block-quote",
	CodeBlock:     "code-block",
	List:          "list",
	Item:          "item",
	Rule:          "rule",
	HTMLBlock:     "html-block",
	Table:         "table",
	OtherBlock:    "block",
	Emphasis:      "emphasis",
	Strong:        "strong",
	Strikethrough: "strikethrough",
	Link:          "link",
	Image:         "image",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "unknown"
}

// Inline reports whether the tag is an inline construct whose source text
// must stay on one line when reflowed.
func (t Tag) Inline() bool { return t >= Emphasis && t <= Image }

// Block reports whether the tag is a block construct.
func (t Tag) Block() bool { return t >= Paragraph && t <= OtherBlock }

// Event is one element of the stream.
type Event struct {
	Kind  Kind
	Tag   Tag
	Range span.Range
}

var md = goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Table))

// Parse returns the event stream of src in document order.
func Parse(src string) []Event {
	source := []byte(src)
	root := md.Parser().Parse(text.NewReader(source))
	w := &walker{
		src:     source,
		idx:     span.NewCharIndex(src),
		extents: make(map[ast.Node]extent),
	}
	_ = ast.Walk(root, w.visit)
	return w.events
}

// ProseRanges returns the ranges of plain text in src, leaving out markup
// syntax, code, HTML and link destinations.
func ProseRanges(src string) []span.Range {
	var out []span.Range
	for _, ev := range Parse(src) {
		if ev.Kind == Text {
			out = append(out, ev.Range)
		}
	}
	return out
}

// extent is a byte interval; ok is false when no position is known.
type extent struct {
	lo, hi int
	ok     bool
}

type walker struct {
	src     []byte
	idx     *span.CharIndex
	events  []Event
	extents map[ast.Node]extent
	// cursor is the byte offset of the last emitted event end, used for
	// blocks without any positioned content.
	cursor int
}

func (w *walker) emit(kind Kind, tag Tag, lo, hi int) {
	w.events = append(w.events, Event{Kind: kind, Tag: tag, Range: w.idx.Range(lo, hi)})
	w.cursor = max(w.cursor, hi)
}

func (w *walker) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Document:
		return ast.WalkContinue, nil
	case *ast.Text:
		if entering {
			w.text(node)
		}
		return ast.WalkContinue, nil
	case *ast.CodeSpan:
		if entering {
			if e := w.extent(n); e.ok {
				w.emit(Code, NoTag, e.lo, e.hi)
			}
		}
		return ast.WalkSkipChildren, nil
	case *ast.RawHTML:
		if entering {
			if e := w.extent(n); e.ok {
				w.emit(HTML, NoTag, e.lo, e.hi)
			}
		}
		return ast.WalkSkipChildren, nil
	}

	tag := tagOf(n)
	if tag == NoTag {
		return ast.WalkContinue, nil
	}
	e := w.extent(n)
	if !e.ok {
		if tag.Inline() {
			// Without a position the construct cannot be protected; its
			// text is still visited.
			return ast.WalkContinue, nil
		}
		e = extent{lo: w.cursor, hi: w.cursor, ok: true}
	}
	kind := Start
	if !entering {
		kind = End
	}
	w.emit(kind, tag, e.lo, e.hi)
	return ast.WalkContinue, nil
}

func (w *walker) text(t *ast.Text) {
	seg := t.Segment
	if seg.Stop > seg.Start {
		w.emit(Text, NoTag, seg.Start, seg.Stop)
	}
	switch {
	case t.HardLineBreak():
		w.emit(HardBreak, NoTag, seg.Stop, w.lineEnd(seg.Stop))
	case t.SoftLineBreak():
		w.emit(SoftBreak, NoTag, seg.Stop, w.lineEnd(seg.Stop))
	}
}

// lineEnd returns the offset just past the next line break at or after pos.
func (w *walker) lineEnd(pos int) int {
	if pos >= len(w.src) {
		return len(w.src)
	}
	if i := bytes.IndexByte(w.src[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(w.src)
}

func tagOf(n ast.Node) Tag {
	switch n.Kind() {
	case ast.KindParagraph:
		return Paragraph
	case ast.KindHeading:
		return Heading
	case ast.KindBlockquote:
		return BlockQuote
	case ast.KindCodeBlock, ast.KindFencedCodeBlock:
		return CodeBlock
	case ast.KindList:
		return List
	case ast.KindListItem:
		return Item
	case ast.KindThematicBreak:
		return Rule
	case ast.KindHTMLBlock:
		return HTMLBlock
	case east.KindTable:
		return Table
	case ast.KindEmphasis:
		if n.(*ast.Emphasis).Level >= 2 {
			return Strong
		}
		return Emphasis
	case east.KindStrikethrough:
		return Strikethrough
	case ast.KindLink:
		return Link
	case ast.KindImage:
		return Image
	}
	if n.Type() == ast.TypeBlock {
		return OtherBlock
	}
	return NoTag
}
