package rules

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/docspell/internal/config"
	"github.com/jward/docspell/internal/doc"
	"github.com/jward/docspell/internal/logging"
	"github.com/jward/docspell/internal/span"
	"github.com/jward/docspell/internal/suggestion"
)

func chunkOf(text string) *doc.Chunk {
	n := len([]rune(text))
	return doc.MustChunk(text, doc.Variant(doc.TripleSlash), []doc.Segment{{
		Range: span.Range{Start: 0, End: n},
		Span:  span.Span{Start: span.LineColumn{Line: 1, Column: 5}, End: span.LineColumn{Line: 1, Column: 4 + n}},
	}})
}

func docOf(origin doc.Origin, text string) *doc.Documentation {
	docu := doc.NewDocumentation()
	docu.Add(origin, chunkOf(text))
	return docu
}

func writeScript(t *testing.T, dir, name, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
}

func TestCheck_BuiltinRepeatedWord(t *testing.T) {
	t.Parallel()
	docu := docOf("lib.rs", "This is is fine. The the end.")

	set, err := New("", nil).Check(context.Background(), docu, &config.RulesConfig{Builtin: true})
	require.NoError(t, err)
	set.Sort()

	got := set.Get("lib.rs")
	require.Len(t, got, 2)

	assert.Equal(t, suggestion.Rules, got[0].Detector)
	assert.Equal(t, span.Range{Start: 5, End: 10}, got[0].Range)
	assert.Equal(t, "is is", got[0].Text())
	assert.Equal(t, []string{"is"}, got[0].Replacements)
	assert.Equal(t, "repeated word is", got[0].Description)

	assert.Equal(t, span.Range{Start: 17, End: 24}, got[1].Range)
	assert.Equal(t, []string{"The"}, got[1].Replacements)
}

func TestCheck_RepeatedWordAcrossSentenceIsFine(t *testing.T) {
	t.Parallel()
	docu := docOf("lib.rs", "Call it. It works. Use `x` `x` here, 2 2 times.")

	set, err := New("", nil).Check(context.Background(), docu, &config.RulesConfig{Builtin: true})
	require.NoError(t, err)
	assert.Zero(t, set.Total())
}

func TestCheck_BuiltinDisabled(t *testing.T) {
	t.Parallel()
	docu := docOf("lib.rs", "the the")

	set, err := New("", nil).Check(context.Background(), docu, &config.RulesConfig{})
	require.NoError(t, err)
	assert.Zero(t, set.Total())
}

func TestCheck_UserScript(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "rules"), 0o755))
	writeScript(t, filepath.Join(root, "rules"), "spelling.risor", `
for i := 0; i < len(words); i++ {
    w := words[i]
    if w["lower"] == "colour" {
        report({
            "start": w["start"],
            "end": w["end"],
            "replacement": ["color"],
            "description": "use American spelling",
        })
    }
}
`)
	docu := docOf("a.md", "The colour is red.")
	cfg := &config.RulesConfig{Scripts: []string{"rules/*.risor"}}

	set, err := New(root, nil).Check(context.Background(), docu, cfg)
	require.NoError(t, err)
	require.Equal(t, 1, set.Total())

	sug := set.Get("a.md")[0]
	assert.Equal(t, "colour", sug.Text())
	assert.Equal(t, []string{"color"}, sug.Replacements)
	assert.Equal(t, span.Span{Start: span.LineColumn{Line: 1, Column: 9}, End: span.LineColumn{Line: 1, Column: 14}}, sug.Span)
}

func TestCheck_ScriptSeesTextAndImports(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeScript(t, root, "helpers.risor", `
func whole(n) {
    return {"start": 0, "end": n, "description": "whole chunk"}
}
`)
	writeScript(t, root, "main.risor", `
import helpers

assert(origin == "a.md", "unexpected origin " + origin)
if len(text) > 3 {
    report(helpers.whole(len(words[0]["text"])))
}
`)
	docu := docOf("a.md", "Hello world")
	cfg := &config.RulesConfig{Scripts: []string{"main.risor"}}

	set, err := New(root, nil).Check(context.Background(), docu, cfg)
	require.NoError(t, err)
	require.Equal(t, 1, set.Total())
	assert.Equal(t, "Hello", set.Get("a.md")[0].Text())
}

func TestCheck_ScriptLogs(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeScript(t, root, "noisy.risor", `log.Info("checked " + origin)`)

	var buf bytes.Buffer
	log := logging.New(&buf, "docspell", logging.LevelDebug)
	_, err := New(root, log).Check(context.Background(), docOf("a.md", "text"), &config.RulesConfig{Scripts: []string{"noisy.risor"}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "rules: noisy.risor: checked a.md")
}

func TestCheck_ScriptErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `for {{`, "bad.risor"},
		{"out of range", `report({"start": 0, "end": 999})`, "outside chunk"},
		{"missing start", `report({"end": 1})`, "start must be an int"},
		{"bad replacement", `report({"start": 0, "end": 1, "replacement": 3})`, "replacement must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			writeScript(t, root, "bad.risor", tt.src)
			_, err := New(root, nil).Check(context.Background(), docOf("a.md", "text"), &config.RulesConfig{Scripts: []string{"bad.risor"}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCheck_ExprRules(t *testing.T) {
	t.Parallel()
	cfg := &config.RulesConfig{Expr: []config.ExprRule{
		{Name: "utilize", When: `lower == "utilize"`, Replacement: "use", Description: "prefer plain words"},
		{Name: "article", When: `lower == "a" && next matches "^[aeiouAEIOU]"`},
	}}
	docu := docOf("lib.rs", "Utilize a apple.")

	set, err := New("", nil).Check(context.Background(), docu, cfg)
	require.NoError(t, err)
	set.Sort()

	got := set.Get("lib.rs")
	require.Len(t, got, 2)
	assert.Equal(t, "Utilize", got[0].Text())
	assert.Equal(t, []string{"use"}, got[0].Replacements)
	assert.Equal(t, "prefer plain words", got[0].Description)

	assert.Equal(t, "a", got[1].Text())
	assert.Empty(t, got[1].Replacements)
	assert.Equal(t, "article", got[1].Description)
}

func TestCheck_BadExpr(t *testing.T) {
	t.Parallel()
	cfg := &config.RulesConfig{Expr: []config.ExprRule{{Name: "typo", When: `wrd == "x"`}}}
	_, err := New("", nil).Check(context.Background(), docOf("a.md", "x"), cfg)
	assert.ErrorContains(t, err, "typo")
}

func TestCheck_MissingPatternWarns(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := logging.New(&buf, "docspell", logging.LevelDebug)
	set, err := New(t.TempDir(), log).Check(context.Background(), docOf("a.md", "x"), &config.RulesConfig{Scripts: []string{"none/*.risor"}})
	require.NoError(t, err)
	assert.Zero(t, set.Total())
	assert.Contains(t, buf.String(), "matches no files")
}

func TestCheck_CanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New("", nil).Check(ctx, docOf("a.md", "the the"), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProseWords(t *testing.T) {
	t.Parallel()
	words := proseWords("Use `code` now, now")
	var texts []string
	for _, w := range words {
		texts = append(texts, w.text)
	}
	assert.Equal(t, []string{"Use", "now", "now"}, texts)
	assert.False(t, words[1].adjacent, "code separates the words")
	assert.False(t, words[2].adjacent, "comma separates the words")
}
