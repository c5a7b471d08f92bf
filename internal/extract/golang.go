package extract

import (
	"bytes"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/docspell/internal/doc"
)

// goDocumented lists the top-level nodes a doc comment can precede.
var goDocumented = map[string]bool{
	"package_clause":       true,
	"function_declaration": true,
	"method_declaration":   true,
	"type_declaration":     true,
	"var_declaration":      true,
	"const_declaration":    true,
}

// goDirective matches tool directives such as //go:generate or //nolint:all.
var goDirective = regexp.MustCompile(`^//([a-z0-9]+:[a-z0-9]|line |export |extern )`)

// goPieces returns the runs of // comments directly above a top-level
// declaration. Directive lines are left out of a run without ending it.
func goPieces(root *sitter.Node, x *lineIndex) ([]piece, error) {
	var out, run []piece
	lastLine := -1

	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		start, end, err := nodeBytes(n)
		if err != nil {
			return nil, err
		}
		line := x.pos(start).Line

		if n.Type() != "comment" {
			if goDocumented[n.Type()] && len(run) > 0 && line == lastLine+1 {
				out = append(out, run...)
			}
			run, lastLine = nil, -1
			continue
		}

		end = trimNewline(x.src, start, end)
		text := string(x.src[start:end])
		if !strings.HasPrefix(text, "//") || !x.startsLine(start) {
			run, lastLine = nil, -1
			continue
		}
		if lastLine >= 0 && line != lastLine+1 {
			run = nil
		}
		lastLine = line

		if goDirective.MatchString(text) {
			if len(run) > 0 {
				run[len(run)-1].endLine = line
			}
			continue
		}
		run = append(run, linePiece(doc.Variant(doc.DoubleSlash), x, start, start+2, end))
	}
	return out, nil
}

// startsLine reports whether only whitespace precedes b on its line.
func (x *lineIndex) startsLine(b int) bool {
	line := x.pos(b).Line
	return len(bytes.TrimSpace(x.src[x.starts[line-1]:b])) == 0
}
