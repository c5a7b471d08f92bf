package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/docspell/internal/suggestion"
)

func TestDefault(t *testing.T) {
	t.Parallel()
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.IsEnabled(suggestion.Reflow))
	assert.True(t, cfg.IsEnabled(suggestion.Hunspell))
	assert.False(t, cfg.IsEnabled(suggestion.LanguageTool))
	assert.False(t, cfg.IsEnabled(suggestion.Rules))
	assert.Equal(t, 80, cfg.Reflow.MaxLineLength)
}

func TestParse_FullFile(t *testing.T) {
	t.Parallel()
	cfg, err := Parse(`
[reflow]
max_line_length = 100

[hunspell]
lang = "en_GB"
search_dirs = ["/usr/share/hunspell"]
extra_words = ["docspell"]

[languagetool]
url = "http://lt.internal:8010"
timeout = "3s"
disabled_rules = ["WHITESPACE_RULE"]

[rules]
scripts = ["lint/*.risor"]

[[rules.expr]]
name = "teh"
when = 'lower == "teh"'
replacement = "the"
`)
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Reflow.MaxLineLength)
	assert.Equal(t, "en_GB", cfg.Hunspell.Lang)
	assert.Equal(t, DefaultBinary, cfg.Hunspell.Binary)
	assert.Equal(t, []string{"docspell"}, cfg.Hunspell.ExtraWords)
	assert.Equal(t, "http://lt.internal:8010", cfg.LanguageTool.URL)
	assert.Equal(t, DefaultToolLanguage, cfg.LanguageTool.Language)
	assert.Equal(t, 3*time.Second, cfg.LanguageTool.Timeout.Duration)
	assert.Equal(t, DefaultConcurrency, cfg.LanguageTool.Concurrency)
	assert.True(t, cfg.Rules.Builtin)
	require.Len(t, cfg.Rules.Expr, 1)
	assert.Equal(t, "the", cfg.Rules.Expr[0].Replacement)

	for _, d := range suggestion.AllDetectors() {
		assert.True(t, cfg.IsEnabled(d), d.String())
	}
}

func TestParse_SectionPresenceEnables(t *testing.T) {
	t.Parallel()
	cfg, err := Parse("[reflow]\n")
	require.NoError(t, err)
	assert.True(t, cfg.IsEnabled(suggestion.Reflow))
	assert.Equal(t, DefaultMaxLineLength, cfg.Reflow.MaxLineLength)
	assert.False(t, cfg.IsEnabled(suggestion.Hunspell))
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		text string
	}{
		{"zero width", "[reflow]\nmax_line_length = 0\n"},
		{"negative width", "[reflow]\nmax_line_length = -3\n"},
		{"empty lang", "[hunspell]\nlang = \"\"\n"},
		{"relative url", "[languagetool]\nurl = \"localhost\"\n"},
		{"zero concurrency", "[languagetool]\nconcurrency = 0\n"},
		{"empty expr", "[rules]\n[[rules.expr]]\nname = \"x\"\n"},
		{"broken expr", "[rules]\n[[rules.expr]]\nwhen = \"lower ==\"\n"},
		{"unknown key", "[reflow]\nwidth = 80\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := Parse("[languagetool]\ntimeout = \"soon\"\n")
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("[reflow]\nmax_line_length = 60\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Reflow.MaxLineLength)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestOnly(t *testing.T) {
	t.Parallel()
	cfg := Default().Only(suggestion.Reflow)
	assert.True(t, cfg.IsEnabled(suggestion.Reflow))
	assert.False(t, cfg.IsEnabled(suggestion.Hunspell))
}
