// Package hunspell implements the spelling checker on top of a hunspell
// subprocess.
package hunspell

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/jward/docspell/internal/checker"
	"github.com/jward/docspell/internal/config"
	"github.com/jward/docspell/internal/doc"
	"github.com/jward/docspell/internal/logging"
	"github.com/jward/docspell/internal/markup"
	"github.com/jward/docspell/internal/span"
	"github.com/jward/docspell/internal/suggestion"
	"github.com/jward/docspell/internal/tokenize"
)

// Dictionary holds project words accepted in addition to the speller's.
type Dictionary interface {
	Contains(word string) (bool, error)
}

// Checker reports words the speller does not know.
type Checker struct {
	binary string
	dict   Dictionary
	log    logging.Logger
	open   func(ctx context.Context, cfg *config.HunspellConfig) (Speller, error)
}

// New returns a checker running binary, or "hunspell" when empty. dict may
// be nil.
func New(binary string, dict Dictionary, log logging.Logger) *Checker {
	if binary == "" {
		binary = config.DefaultBinary
	}
	c := &Checker{binary: binary, dict: dict, log: logging.OrNop(log)}
	c.open = c.start
	return c
}

func (c *Checker) Detector() suggestion.Detector { return suggestion.Hunspell }

// Available reports whether the hunspell binary can be found.
func (c *Checker) Available() error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return fmt.Errorf("%w: %v", checker.ErrUnavailable, err)
	}
	return nil
}

type verdict struct {
	correct     bool
	suggestions []string
}

// Check spells every prose word of docu with one speller process.
func (c *Checker) Check(ctx context.Context, docu *doc.Documentation, cfg *config.HunspellConfig) (*suggestion.Set, error) {
	if cfg == nil {
		cfg = &config.HunspellConfig{Lang: config.DefaultLang, Binary: c.binary}
	}
	speller, err := c.open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := speller.Close(); err != nil {
			c.log.Debugf("hunspell: close: %v", err)
		}
	}()

	allow := make(map[string]bool, len(cfg.ExtraWords))
	for _, w := range cfg.ExtraWords {
		allow[norm.NFC.String(w)] = true
	}
	seen := make(map[string]verdict)

	out := suggestion.NewSet()
	for _, origin := range docu.Origins() {
		for _, chunk := range docu.Get(origin) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for _, r := range words(chunk) {
				word := norm.NFC.String(chunk.Slice(r))
				if !spellable(word) || allowed(allow, word) {
					continue
				}
				ok, err := c.inDictionary(word)
				if err != nil {
					return nil, err
				}
				if ok {
					continue
				}

				v, cached := seen[word]
				if !cached {
					correct, sugs, err := speller.Check(word)
					if err != nil {
						return nil, err
					}
					v = verdict{correct: correct, suggestions: rank(word, sugs)}
					seen[word] = v
				}
				if v.correct {
					continue
				}

				sug, err := suggestion.Assemble(suggestion.Hunspell, origin, chunk, r,
					fmt.Sprintf("unknown word %q", word), v.suggestions...)
				if errors.Is(err, doc.ErrNoCoveringSpan) {
					c.log.Debugf("hunspell: %s: %v", origin, err)
					continue
				}
				if err != nil {
					return nil, err
				}
				out.Add(sug)
			}
		}
	}
	return out, nil
}

func (c *Checker) inDictionary(word string) (bool, error) {
	if c.dict == nil {
		return false, nil
	}
	ok, err := c.dict.Contains(word)
	if err != nil {
		return false, fmt.Errorf("hunspell: dictionary: %w", err)
	}
	return ok, nil
}

// words returns the word ranges in the prose of chunk, leaving out code,
// link destinations and other markup.
func words(chunk *doc.Chunk) []span.Range {
	var out []span.Range
	for _, prose := range markup.ProseRanges(chunk.Text()) {
		for _, r := range tokenize.Tokenize(chunk.Slice(prose)) {
			out = append(out, r.Shift(prose.Start))
		}
	}
	return out
}

// spellable skips tokens that are not words: numbers, identifiers with
// digits or underscores, and words without letters.
func spellable(word string) bool {
	letters := false
	for _, r := range word {
		switch {
		case unicode.IsLetter(r):
			letters = true
		case unicode.IsMark(r), r == '\'', r == '’':
		default:
			return false
		}
	}
	return letters
}

// allowed accepts exact matches and, for lowercase entries, capitalized
// forms of the word.
func allowed(allow map[string]bool, word string) bool {
	return allow[word] || allow[strings.ToLower(word)]
}

// rank orders suggestions by edit distance to word. Ties keep the
// speller's order.
func rank(word string, sugs []string) []string {
	out := slices.Clone(sugs)
	slices.SortStableFunc(out, func(a, b string) int {
		return levenshtein(word, a) - levenshtein(word, b)
	})
	return out
}
