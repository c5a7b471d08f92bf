// Package extract finds documentation comments in source files and turns
// them into chunks mapped back onto the file.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/jward/docspell/internal/doc"
	"github.com/jward/docspell/internal/span"
)

// ErrUnsupported is returned for files whose language has no extractor.
var ErrUnsupported = errors.New("extract: unsupported language")

// Canonical language names.
const (
	Rust     = "rust"
	Go       = "go"
	Markdown = "markdown"
)

var extToLanguage = map[string]string{
	".rs":       Rust,
	".go":       Go,
	".md":       Markdown,
	".markdown": Markdown,
}

// langToGrammar is initialized on first use.
var (
	langToGrammar map[string]*sitter.Language
	grammarsOnce  sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		langToGrammar = map[string]*sitter.Language{
			Rust: rust.GetLanguage(),
			Go:   golang.GetLanguage(),
		}
	})
}

// LanguageForFile returns the canonical language name for a file path based
// on its extension. Returns ("", false) if the extension is not recognized.
func LanguageForFile(path string) (string, bool) {
	lang, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// Languages returns every supported language name.
func Languages() []string {
	return []string{Go, Markdown, Rust}
}

// FromFile reads path and extracts its chunks.
func FromFile(ctx context.Context, path string) ([]*doc.Chunk, error) {
	lang, ok := LanguageForFile(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("extract: reading %s: %w", path, err)
	}
	chunks, err := FromSource(ctx, lang, src)
	if err != nil {
		return nil, fmt.Errorf("extract: %s: %w", path, err)
	}
	return chunks, nil
}

// FromSource extracts the chunks of src written in lang, in document order.
func FromSource(ctx context.Context, lang string, src []byte) ([]*doc.Chunk, error) {
	if !utf8.Valid(src) {
		return nil, errors.New("extract: source is not valid UTF-8")
	}
	switch lang {
	case Markdown:
		return markdownChunks(src)
	case Rust, Go:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, lang)
	}

	initGrammars()
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(langToGrammar[lang])

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("extract: tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	x := newLineIndex(src)
	var pieces []piece
	if lang == Rust {
		pieces, err = rustPieces(tree.RootNode(), x)
	} else {
		pieces, err = goPieces(tree.RootNode(), x)
	}
	if err != nil {
		return nil, err
	}
	return assemble(pieces)
}

// piece is the mapped text of one comment line, block or attribute.
type piece struct {
	variant doc.CommentVariant
	text    string
	// span locates text in the file; unused when text is empty.
	span span.Span
	// line and endLine are the source lines the comment occupies.
	line, endLine int
	// alone keeps a piece out of groups.
	alone bool
}

// assemble groups consecutive pieces of the same variant on adjacent lines
// into chunks joined with newlines.
func assemble(pieces []piece) ([]*doc.Chunk, error) {
	var chunks []*doc.Chunk
	var group []piece
	flush := func() error {
		if len(group) == 0 {
			return nil
		}
		c, err := buildChunk(group)
		group = group[:0]
		if err != nil {
			return err
		}
		if c != nil {
			chunks = append(chunks, c)
		}
		return nil
	}

	for _, p := range pieces {
		if len(group) > 0 {
			last := group[len(group)-1]
			if p.alone || last.alone || p.variant != last.variant || p.line != last.endLine+1 {
				if err := flush(); err != nil {
					return nil, err
				}
			}
		}
		group = append(group, p)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return chunks, nil
}

func buildChunk(group []piece) (*doc.Chunk, error) {
	var b strings.Builder
	var segs []doc.Segment
	off := 0
	for i, p := range group {
		if i > 0 {
			b.WriteByte('\n')
			off++
		}
		n := utf8.RuneCountInString(p.text)
		if n > 0 {
			segs = append(segs, doc.Segment{Range: span.Range{Start: off, End: off + n}, Span: p.span})
		}
		b.WriteString(p.text)
		off += n
	}
	if len(segs) == 0 {
		return nil, nil
	}
	return doc.NewChunk(b.String(), group[0].variant, segs)
}
