// Package reflow implements the checker that rewraps doc comment
// paragraphs to a maximum line length without breaking markup.
package reflow

import (
	"context"
	"errors"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/jward/docspell/internal/config"
	"github.com/jward/docspell/internal/doc"
	"github.com/jward/docspell/internal/logging"
	"github.com/jward/docspell/internal/markup"
	"github.com/jward/docspell/internal/suggestion"
)

const description = "paragraph can be rewrapped"

// Checker proposes rewrapped paragraphs.
type Checker struct {
	log logging.Logger
}

// New returns a reflow checker logging skipped paragraphs to log.
func New(log logging.Logger) *Checker {
	return &Checker{log: logging.OrNop(log)}
}

func (c *Checker) Detector() suggestion.Detector { return suggestion.Reflow }

// Check reflows every chunk of docu. Chunks are processed concurrently;
// the result does not depend on scheduling.
func (c *Checker) Check(ctx context.Context, docu *doc.Documentation, cfg *config.ReflowConfig) (*suggestion.Set, error) {
	maxLen := config.DefaultMaxLineLength
	if cfg != nil {
		maxLen = cfg.MaxLineLength
	}
	if maxLen <= 0 {
		return nil, errors.New("reflow: max_line_length must be positive")
	}

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
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = c.Chunk(j.origin, j.chunk, maxLen)
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

// Chunk returns one suggestion for each paragraph of chunk whose wrapping
// at maxLen differs from the source.
func (c *Checker) Chunk(origin doc.Origin, chunk *doc.Chunk, maxLen int) []suggestion.Suggestion {
	chars := []rune(chunk.Text())
	var out []suggestion.Suggestion
	for _, p := range scan(chars, markup.Parse(chunk.Text())) {
		sug, ok := c.paragraph(origin, chunk, chars, p, maxLen)
		if ok {
			out = append(out, sug)
		}
	}
	return out
}

func (c *Checker) paragraph(origin doc.Origin, chunk *doc.Chunk, chars []rune, p paragraph, maxLen int) (suggestion.Suggestion, bool) {
	spans, err := chunk.FindCoveredSpans(p.rng)
	if err != nil {
		c.log.Debugf("reflow: %s: skipping paragraph %s: %v", origin, p.rng, err)
		return suggestion.Suggestion{}, false
	}
	indents, err := chunk.Indentations(p.rng)
	if err != nil {
		c.log.Debugf("reflow: %s: skipping paragraph %s: %v", origin, p.rng, err)
		return suggestion.Suggestion{}, false
	}

	variant := chunk.Variant()
	l := layout{
		first:   max(spans[0].Start.Column-1, 0),
		indents: indents,
		prefix:  variant.Prefix(),
		suffix:  variant.Suffix(),
		max:     maxLen,
	}
	lines := l.fill(words(chars, p))
	if len(lines) == 0 || slices.Equal(lines, chunk.Lines(p.rng)) {
		return suggestion.Suggestion{}, false
	}

	s := spans[0]
	s.End = spans[len(spans)-1].End
	return suggestion.New(suggestion.Reflow, origin, chunk, p.rng, s, description, l.assemble(lines)), true
}
