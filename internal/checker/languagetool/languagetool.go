// Package languagetool implements the grammar checker against a
// LanguageTool server.
package languagetool

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf16"

	"golang.org/x/sync/errgroup"

	"github.com/jward/docspell/internal/checker"
	"github.com/jward/docspell/internal/config"
	"github.com/jward/docspell/internal/doc"
	"github.com/jward/docspell/internal/logging"
	"github.com/jward/docspell/internal/markup"
	"github.com/jward/docspell/internal/span"
	"github.com/jward/docspell/internal/suggestion"
)

// maxReplacements caps the replacements kept per match.
const maxReplacements = 5

const probeTimeout = 2 * time.Second

// Checker sends every chunk to a LanguageTool server.
type Checker struct {
	url string
	log logging.Logger
}

// New returns a checker for the server at url, or the default local
// server when empty.
func New(url string, log logging.Logger) *Checker {
	if url == "" {
		url = config.DefaultToolURL
	}
	return &Checker{url: url, log: logging.OrNop(log)}
}

func (c *Checker) Detector() suggestion.Detector { return suggestion.LanguageTool }

// Available reports whether the server answers.
func (c *Checker) Available() error {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if err := NewClient(c.url, nil).Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", checker.ErrUnavailable, err)
	}
	return nil
}

// Check sends the chunks concurrently, at most cfg.Concurrency at a time.
// Any failed request fails the pass.
func (c *Checker) Check(ctx context.Context, docu *doc.Documentation, cfg *config.LanguageToolConfig) (*suggestion.Set, error) {
	if cfg == nil {
		cfg = &config.LanguageToolConfig{
			URL:         c.url,
			Language:    config.DefaultToolLanguage,
			Timeout:     config.Duration{Duration: config.DefaultToolTimeout},
			Concurrency: config.DefaultConcurrency,
		}
	}
	client := NewClient(cfg.URL, &http.Client{Timeout: cfg.Timeout.Duration})

	type job struct {
		origin doc.Origin
		chunk  *doc.Chunk
	}
	var jobs []job
	for _, origin := range docu.Origins() {
		for _, chunk := range docu.Get(origin) {
			jobs = append(jobs, job{origin, chunk})
		}
	}

	results := make([][]suggestion.Suggestion, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Concurrency, 1))
	for i, j := range jobs {
		g.Go(func() error {
			sugs, err := c.chunk(ctx, client, cfg, j.origin, j.chunk)
			if err != nil {
				return fmt.Errorf("%s: %w", j.origin, err)
			}
			results[i] = sugs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := suggestion.NewSet()
	for i, j := range jobs {
		out.Extend(j.origin, results[i])
	}
	return out, nil
}

func (c *Checker) chunk(ctx context.Context, client *Client, cfg *config.LanguageToolConfig, origin doc.Origin, chunk *doc.Chunk) ([]suggestion.Suggestion, error) {
	parts := annotate(chunk.Text())
	if len(parts) == 0 {
		return nil, nil
	}
	resp, err := client.Check(ctx, Request{
		Language:      cfg.Language,
		Annotation:    parts,
		DisabledRules: cfg.DisabledRules,
	})
	if err != nil {
		return nil, err
	}

	offsets := newUTF16Index(chunk.Text())
	var out []suggestion.Suggestion
	for _, m := range resp.Matches {
		r, ok := offsets.Range(m.Offset, m.Offset+m.Length)
		if !ok {
			c.log.Debugf("languagetool: %s: match %s at %d+%d is outside the chunk", origin, m.Rule.ID, m.Offset, m.Length)
			continue
		}
		var repl []string
		for _, rep := range m.Replacements {
			if len(repl) == maxReplacements {
				break
			}
			repl = append(repl, rep.Value)
		}
		desc := m.Message
		if m.Rule.ID != "" {
			desc = fmt.Sprintf("%s [%s]", m.Message, m.Rule.ID)
		}
		sug, err := suggestion.Assemble(suggestion.LanguageTool, origin, chunk, r, desc, repl...)
		if errors.Is(err, doc.ErrNoCoveringSpan) {
			c.log.Debugf("languagetool: %s: %v", origin, err)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, sug)
	}
	return out, nil
}

// annotate splits text into prose and markup parts so that the server
// checks prose only while reporting offsets into the whole text.
func annotate(text string) []Part {
	chars := []rune(text)
	var parts []Part
	pos := 0
	addMarkup := func(end int) {
		if end <= pos {
			return
		}
		m := string(chars[pos:end])
		p := Part{Markup: m}
		switch {
		case strings.Contains(m, "\n\n"):
			p.InterpretAs = "\n\n"
		case strings.ContainsAny(m, " \t\n"):
			p.InterpretAs = " "
		}
		parts = append(parts, p)
	}
	for _, r := range markup.ProseRanges(text) {
		if r.Start < pos {
			continue
		}
		addMarkup(r.Start)
		parts = append(parts, Part{Text: string(chars[r.Start:r.End])})
		pos = r.End
	}
	addMarkup(len(chars))
	return parts
}

// utf16Index maps UTF-16 code unit offsets onto character offsets.
type utf16Index struct {
	toChar []int // indexed by UTF-16 offset; -1 inside a surrogate pair
}

func newUTF16Index(text string) *utf16Index {
	x := &utf16Index{}
	char := 0
	for _, r := range text {
		x.toChar = append(x.toChar, char)
		if utf16.RuneLen(r) == 2 {
			x.toChar = append(x.toChar, -1)
		}
		char++
	}
	x.toChar = append(x.toChar, char)
	return x
}

// Range converts the UTF-16 range [start, end) to characters.
func (x *utf16Index) Range(start, end int) (span.Range, bool) {
	if start < 0 || end < start || end >= len(x.toChar) {
		return span.Range{}, false
	}
	s, e := x.toChar[start], x.toChar[end]
	if s < 0 || e < 0 {
		return span.Range{}, false
	}
	return span.Range{Start: s, End: e}, true
}
