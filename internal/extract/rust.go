package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/docspell/internal/doc"
)

func rustPieces(root *sitter.Node, x *lineIndex) ([]piece, error) {
	var out []piece
	err := walk(root, func(n *sitter.Node) error {
		var read func(*sitter.Node, *lineIndex) (piece, bool, error)
		switch n.Type() {
		case "line_comment":
			read = rustLineComment
		case "block_comment":
			read = rustBlockComment
		case "attribute_item":
			read = rustDocAttribute
		default:
			return nil
		}
		p, ok, err := read(n, x)
		if err != nil {
			return err
		}
		if ok {
			out = append(out, p)
		}
		return nil
	})
	return out, err
}

// rustLineComment reads `/// text` and `//! text`. Four or more slashes
// are an ordinary comment.
func rustLineComment(n *sitter.Node, x *lineIndex) (piece, bool, error) {
	start, end, err := nodeBytes(n)
	if err != nil {
		return piece{}, false, err
	}
	end = trimNewline(x.src, start, end)
	text := string(x.src[start:end])

	var kind doc.VariantKind
	switch {
	case strings.HasPrefix(text, "////"):
		return piece{}, false, nil
	case strings.HasPrefix(text, "///"):
		kind = doc.TripleSlash
	case strings.HasPrefix(text, "//!"):
		kind = doc.DoubleSlashEM
	default:
		return piece{}, false, nil
	}
	return linePiece(doc.Variant(kind), x, start, start+3, end), true, nil
}

// rustBlockComment reads `/** text */` and `/*! text */` verbatim.
func rustBlockComment(n *sitter.Node, x *lineIndex) (piece, bool, error) {
	start, end, err := nodeBytes(n)
	if err != nil {
		return piece{}, false, err
	}
	text := string(x.src[start:end])
	if !strings.HasSuffix(text, "*/") || len(text) < 5 {
		return piece{}, false, nil
	}

	var kind doc.VariantKind
	switch {
	case strings.HasPrefix(text, "/***"):
		return piece{}, false, nil
	case strings.HasPrefix(text, "/**"):
		kind = doc.SlashAsteriskAsterisk
	case strings.HasPrefix(text, "/*!"):
		kind = doc.SlashAsteriskEM
	default:
		return piece{}, false, nil
	}

	bodyStart, bodyEnd := start+3, end-2
	if bodyEnd <= bodyStart {
		return piece{}, false, nil
	}
	return piece{
		variant: doc.Variant(kind),
		text:    string(x.src[bodyStart:bodyEnd]),
		span:    x.span(bodyStart, bodyEnd),
		line:    x.pos(start).Line,
		endLine: x.pos(end - 1).Line,
		alone:   true,
	}, true, nil
}

// rustDocAttribute reads `#[doc = "text"]` and its raw string forms.
func rustDocAttribute(n *sitter.Node, x *lineIndex) (piece, bool, error) {
	start, end, err := nodeBytes(n)
	if err != nil {
		return piece{}, false, err
	}
	attr, ok := parseDocAttr(string(x.src[start:end]))
	if !ok {
		return piece{}, false, nil
	}

	p := piece{
		variant: doc.DocAttribute(attr.delimiter, attr.raw, attr.hashes),
		text:    string(x.src[start+attr.bodyStart : start+attr.bodyEnd]),
		line:    x.pos(start).Line,
		endLine: x.pos(end - 1).Line,
	}
	if p.text != "" {
		p.span = x.span(start+attr.bodyStart, start+attr.bodyEnd)
	}
	return p, true, nil
}

type docAttr struct {
	delimiter          string
	raw                bool
	hashes             int
	bodyStart, bodyEnd int
}

// parseDocAttr splits `#[doc<delimiter>r##"body"##]` into its parts. The
// body offsets are byte offsets into s.
func parseDocAttr(s string) (docAttr, bool) {
	const head = "#[doc"
	if !strings.HasPrefix(s, head) {
		return docAttr{}, false
	}
	var a docAttr
	i := len(head)
	j := i
	for j < len(s) && strings.IndexByte(" \t=", s[j]) >= 0 {
		j++
	}
	if strings.Count(s[i:j], "=") != 1 {
		return docAttr{}, false
	}
	a.delimiter = s[i:j]

	if j < len(s) && s[j] == 'r' {
		a.raw = true
		j++
		for j < len(s) && s[j] == '#' {
			a.hashes++
			j++
		}
	}
	if j >= len(s) || s[j] != '"' {
		return docAttr{}, false
	}
	a.bodyStart = j + 1

	closing := `"` + strings.Repeat("#", a.hashes) + "]"
	if !strings.HasSuffix(s, closing) {
		return docAttr{}, false
	}
	a.bodyEnd = len(s) - len(closing)
	if a.bodyEnd < a.bodyStart {
		return docAttr{}, false
	}
	return a, true
}

// linePiece maps a single-line comment whose text starts at bodyStart,
// dropping one separator space.
func linePiece(variant doc.CommentVariant, x *lineIndex, start, bodyStart, end int) piece {
	if bodyStart < end && x.src[bodyStart] == ' ' {
		bodyStart++
	}
	line := x.pos(start).Line
	p := piece{
		variant: variant,
		text:    string(x.src[bodyStart:end]),
		line:    line,
		endLine: line,
	}
	if bodyStart < end {
		p.span = x.span(bodyStart, end)
	}
	return p
}

func trimNewline(src []byte, start, end int) int {
	for end > start && (src[end-1] == '\n' || src[end-1] == '\r') {
		end--
	}
	return end
}
