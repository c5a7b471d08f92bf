package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())

	for _, table := range []string{"words", "metadata"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

func TestNewStore_InvalidPath(t *testing.T) {
	t.Parallel()
	_, err := NewStore(filepath.Join(t.TempDir(), "missing", "dir", "db.sqlite"))
	assert.Error(t, err)
}

func TestAddWords(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	n, err := s.AddWords("docspell", "Rust", " ", "docspell")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.AddWords("docspell", "tokenizer")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	words, err := s.Words()
	require.NoError(t, err)
	assert.Equal(t, []string{"Rust", "docspell", "tokenizer"}, words)
}

func TestRemoveWords(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	_, err := s.AddWords("alpha", "beta", "gamma")
	require.NoError(t, err)

	n, err := s.RemoveWords("beta", "delta")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.RemoveWords()
	require.NoError(t, err)
	assert.Zero(t, n)

	words, err := s.Words()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "gamma"}, words)
}

func TestContains_CaseRules(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	_, err := s.AddWords("docspell", "GitHub")
	require.NoError(t, err)

	tests := []struct {
		word string
		want bool
	}{
		{"docspell", true},
		{"Docspell", true},
		{"DOCSPELL", true},
		{"GitHub", true},
		{"github", false},
		{"Github", false},
		{"missing", false},
	}
	for _, tt := range tests {
		got, err := s.Contains(tt.word)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.word)
	}
}

func TestWords_Empty(t *testing.T) {
	t.Parallel()
	words, err := newTestStore(t).Words()
	require.NoError(t, err)
	assert.Empty(t, words)
}

func TestMetadata(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	v, err := s.GetMetadata("lang")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetMetadata("lang", "en_US"))
	require.NoError(t, s.SetMetadata("lang", "en_GB"))
	v, err = s.GetMetadata("lang")
	require.NoError(t, err)
	assert.Equal(t, "en_GB", v)
}
