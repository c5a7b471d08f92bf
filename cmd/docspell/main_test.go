package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/jward/docspell/internal/config"
	"github.com/jward/docspell/internal/doc"
	"github.com/jward/docspell/internal/logging"
	"github.com/jward/docspell/internal/span"
	"github.com/jward/docspell/internal/suggestion"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestFindRepoRoot_DirectGitDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := findRepoRoot(root)
	assert.Equal(t, root, got)
}

func TestFindRepoRoot_NestedSubdirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	deep := filepath.Join(root, "sub", "deep")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	got := findRepoRoot(deep)
	assert.Equal(t, root, got)
}

func TestFindRepoRoot_NoGitAncestor(t *testing.T) {
	t.Parallel()
	// TempDir has no .git directory anywhere in its ancestry
	// (unless /tmp itself is a repo, which would be unusual).
	dir := t.TempDir()

	got := findRepoRoot(dir)
	assert.Equal(t, dir, got)
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()
	for _, f := range []string{"json", "text", "msgpack"} {
		assert.NoError(t, validateFormat(f))
	}
	assert.ErrorContains(t, validateFormat("yaml"), "invalid format")
}

func TestLoadConfig_RepoRootFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, config.FileName), []byte("[reflow]\nmax_line_length = 72\n"), 0o644))

	cfg, err := loadConfig(root)
	require.NoError(t, err)
	require.NotNil(t, cfg.Reflow)
	assert.Equal(t, 72, cfg.Reflow.MaxLineLength)
	assert.Nil(t, cfg.Hunspell)

	cfg, err = loadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestReflowConfig(t *testing.T) {
	t.Parallel()
	base := config.Default()
	base.Reflow.MaxLineLength = 100

	cfg := reflowConfig(base, 0)
	assert.Equal(t, 100, cfg.Reflow.MaxLineLength)
	assert.Nil(t, cfg.Hunspell)

	cfg = reflowConfig(base, 60)
	assert.Equal(t, 60, cfg.Reflow.MaxLineLength)
	assert.Equal(t, 100, base.Reflow.MaxLineLength, "the loaded config is left alone")

	cfg = reflowConfig(&config.Config{}, 0)
	assert.Equal(t, config.DefaultMaxLineLength, cfg.Reflow.MaxLineLength)
}

// sampleSet builds one hunspell finding of n characters at column col of
// a "/// " comment on line 2 of path.
func sampleSet(path, line string, col, n int) *suggestion.Set {
	chars := []rune(line)
	text := string(chars[4:])
	chunk := doc.MustChunk(text, doc.Variant(doc.TripleSlash), []doc.Segment{{
		Range: span.Range{Start: 0, End: len([]rune(text))},
		Span:  span.Span{Start: span.LineColumn{Line: 2, Column: 5}, End: span.LineColumn{Line: 2, Column: len(chars)}},
	}})
	set := suggestion.NewSet()
	sug, err := suggestion.Assemble(suggestion.Hunspell, doc.Origin(path), chunk,
		span.Range{Start: col - 5, End: col - 5 + n}, "unknown word", "word", "ward")
	if err != nil {
		panic(err)
	}
	set.Add(sug)
	return set
}

func TestFormatSuggestionsText(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.rs")
	line := "/// The wrod here."
	require.NoError(t, os.WriteFile(path, []byte("//! Crate.\n"+line+"\nfn f() {}\n"), 0o644))

	sugs := toCLI(sampleSet(path, line, 9, 4), dir)
	require.Len(t, sugs, 1)
	assert.Equal(t, "lib.rs", sugs[0].File)
	assert.Equal(t, "wrod", sugs[0].Text)

	var buf bytes.Buffer
	formatSuggestionsText(&buf, sugs, newSourceCache())
	want := "lib.rs:2:9: [hunspell] unknown word\n" +
		"  /// The wrod here.\n" +
		"          ^^^^\n" +
		"  suggestions: word, ward\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatSuggestionsText_WideCharacters(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.rs")
	line := "/// 日本 wrod"
	require.NoError(t, os.WriteFile(path, []byte("//! Crate.\n"+line+"\n"), 0o644))

	var buf bytes.Buffer
	formatSuggestionsText(&buf, toCLI(sampleSet(path, line, 8, 4), dir), newSourceCache())
	// Each CJK character is two cells wide.
	assert.Contains(t, buf.String(), "\n  "+"         "+"^^^^\n")
}

func TestFormatSuggestionsText_MultilineReplacement(t *testing.T) {
	t.Parallel()
	sugs := []CLISuggestion{{
		File: "lib.rs", Line: 1, Column: 5, EndLine: 2, EndColumn: 10,
		Detector: "reflow", Description: "paragraph can be rewrapped",
		Replacements: []string{"one two\n/// three"},
	}}
	var buf bytes.Buffer
	formatSuggestionsText(&buf, sugs, newSourceCache())
	assert.Equal(t, "lib.rs:1:5: [reflow] paragraph can be rewrapped\n"+
		"  replacement:\n"+
		"    | one two\n"+
		"    | /// three\n", buf.String())
}

func TestOutputResult_Formats(t *testing.T) {
	sugs := []CLISuggestion{{File: "a.md", Line: 1, Column: 1, EndLine: 1, EndColumn: 3, Detector: "rules", Text: "the", Replacements: []string{}}}
	result := CLIResult{Command: "check", Results: sugs, Count: 1}

	prev := flagFormat
	t.Cleanup(func() { flagFormat = prev })

	flagFormat = "json"
	var buf bytes.Buffer
	require.NoError(t, outputResult(&buf, result))
	var decoded struct {
		Command string          `json:"command"`
		Results []CLISuggestion `json:"results"`
		Count   int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "check", decoded.Command)
	assert.Equal(t, 1, decoded.Count)
	assert.Equal(t, "the", decoded.Results[0].Text)

	flagFormat = "msgpack"
	buf.Reset()
	require.NoError(t, outputResult(&buf, result))
	var packed map[string]any
	require.NoError(t, msgpack.Unmarshal(buf.Bytes(), &packed))
	assert.Equal(t, "check", packed["command"])

	flagFormat = "text"
	buf.Reset()
	require.NoError(t, outputResult(&buf, CLIResult{Command: "dict list", Results: []string{"alpha", "beta"}}))
	assert.Equal(t, "alpha\nbeta\n", buf.String())
}

func TestOpenDictionary(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	dict, err := openDictionary(root, false)
	require.NoError(t, err)
	assert.Nil(t, dict, "missing dictionary is not created")

	dict, err = openDictionary(root, true)
	require.NoError(t, err)
	_, err = dict.AddWords("docspell")
	require.NoError(t, err)
	require.NoError(t, dict.Close())

	dict, err = openDictionary(root, false)
	require.NoError(t, err)
	require.NotNil(t, dict)
	defer dict.Close()
	ok, err := dict.Contains("docspell")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDictionaryLanguage(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, config.FileName), []byte("[hunspell]\nlang = \"de_DE\"\n"), 0o644))

	dict, err := openDictionary(root, true)
	require.NoError(t, err)
	defer dict.Close()

	require.NoError(t, recordLanguage(dict, root))
	lang, err := dict.GetMetadata(langKey)
	require.NoError(t, err)
	assert.Equal(t, "de_DE", lang)

	var buf bytes.Buffer
	log := logging.New(&buf, "docspell", logging.LevelDebug)
	warnLanguageMismatch(log, dict, "de_DE")
	assert.Empty(t, buf.String())
	warnLanguageMismatch(log, dict, "en_US")
	assert.Contains(t, buf.String(), "written for de_DE, checking en_US")
}
