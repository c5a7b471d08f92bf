package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/risor-io/risor/object"

	"github.com/jward/docspell/internal/doc"
	"github.com/jward/docspell/internal/logging"
	"github.com/jward/docspell/internal/markup"
	"github.com/jward/docspell/internal/span"
	"github.com/jward/docspell/internal/suggestion"
	"github.com/jward/docspell/internal/tokenize"
)

// word is one prose token of a chunk.
type word struct {
	text  string
	lower string
	r     span.Range
	// adjacent is set when only whitespace separates the word from the
	// previous one.
	adjacent bool
	alpha    bool
}

// proseWords tokenizes the prose of text, leaving out code and markup.
func proseWords(text string) []word {
	chars := []rune(text)
	var out []word
	for _, prose := range markup.ProseRanges(text) {
		for _, r := range tokenize.Tokenize(string(chars[prose.Start:prose.End])) {
			r = r.Shift(prose.Start)
			w := word{text: string(chars[r.Start:r.End]), r: r}
			w.lower = strings.ToLower(w.text)
			w.alpha = strings.IndexFunc(w.text, unicode.IsLetter) >= 0
			if len(out) > 0 {
				gap := string(chars[out[len(out)-1].r.End:r.Start])
				w.adjacent = strings.TrimSpace(gap) == ""
			}
			out = append(out, w)
		}
	}
	return out
}

// wordList converts words to the Risor list scripts iterate.
//
// words[i] = {"text", "lower", "start", "end", "index", "adjacent", "alpha"}
func wordList(words []word) *object.List {
	items := make([]object.Object, len(words))
	for i, w := range words {
		items[i] = object.NewMap(map[string]object.Object{
			"text":     object.NewString(w.text),
			"lower":    object.NewString(w.lower),
			"start":    object.NewInt(int64(w.r.Start)),
			"end":      object.NewInt(int64(w.r.End)),
			"index":    object.NewInt(int64(i)),
			"adjacent": object.NewBool(w.adjacent),
			"alpha":    object.NewBool(w.alpha),
		})
	}
	return object.NewList(items)
}

// reporter turns report() calls into suggestions for one chunk.
type reporter struct {
	origin doc.Origin
	chunk  *doc.Chunk
	log    logging.Logger
	found  []suggestion.Suggestion
}

func (r *reporter) add(rng span.Range, description string, replacements []string) error {
	if rng.Start < 0 || rng.End > r.chunk.Len() || rng.IsEmpty() {
		return fmt.Errorf("range %s outside chunk of %d characters", rng, r.chunk.Len())
	}
	sug, err := suggestion.Assemble(suggestion.Rules, r.origin, r.chunk, rng, description, replacements...)
	if errors.Is(err, doc.ErrNoCoveringSpan) {
		r.log.Debugf("rules: %s: %v", r.origin, err)
		return nil
	}
	if err != nil {
		return err
	}
	r.found = append(r.found, sug)
	return nil
}

// makeReportFn creates the "report" host function.
//
// report({"start": int, "end": int, "replacement": string | [string], "description": string})
func makeReportFn(rep *reporter) *object.Builtin {
	return object.NewBuiltin("report", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("report", 1, len(args))
		}
		m, err := extractMap(args[0])
		if err != nil {
			return object.Errorf("report: %v", err)
		}
		start, ok := getInt(m, "start")
		if !ok {
			return object.Errorf("report: start must be an int")
		}
		end, ok := getInt(m, "end")
		if !ok {
			return object.Errorf("report: end must be an int")
		}
		repl, err := getStrings(m, "replacement")
		if err != nil {
			return object.Errorf("report: %v", err)
		}
		if err := rep.add(span.Range{Start: start, End: end}, getString(m, "description"), repl); err != nil {
			return object.Errorf("report: %v", err)
		}
		return object.Nil
	})
}

// logObject provides log.Debug/Info/Warn/Error methods for Risor scripts.
type logObject struct {
	log    logging.Logger
	script string
}

func (l *logObject) Debug(msg string) { l.log.Debugf("rules: %s: %s", l.script, msg) }
func (l *logObject) Info(msg string)  { l.log.Infof("rules: %s: %s", l.script, msg) }
func (l *logObject) Warn(msg string)  { l.log.Warnf("rules: %s: %s", l.script, msg) }
func (l *logObject) Error(msg string) { l.log.Errorf("rules: %s: %s", l.script, msg) }

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("rules: proxy error: %v", err))
	}
	return p
}

// --- Map extraction helpers ---

func extractMap(obj object.Object) (map[string]object.Object, error) {
	m, ok := obj.(*object.Map)
	if !ok {
		return nil, fmt.Errorf("expected map, got %s", obj.Type())
	}
	return m.Value(), nil
}

func getString(m map[string]object.Object, key string) string {
	if s, ok := m[key].(*object.String); ok {
		return s.Value()
	}
	return ""
}

func getInt(m map[string]object.Object, key string) (int, bool) {
	switch v := m[key].(type) {
	case *object.Int:
		return int(v.Value()), true
	case *object.Float:
		return int(v.Value()), true
	}
	return 0, false
}

// getStrings accepts a missing key, a string or a list of strings.
func getStrings(m map[string]object.Object, key string) ([]string, error) {
	switch v := m[key].(type) {
	case nil, *object.NilType:
		return nil, nil
	case *object.String:
		return []string{v.Value()}, nil
	case *object.List:
		out := make([]string, 0, len(v.Value()))
		for _, item := range v.Value() {
			s, ok := item.(*object.String)
			if !ok {
				return nil, fmt.Errorf("%s must hold strings, got %s", key, item.Type())
			}
			out = append(out, s.Value())
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s must be a string or a list, got %s", key, m[key].Type())
}
