package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// AddWords inserts words in one transaction and returns how many were new.
// Blank entries are ignored.
func (s *Store) AddWords(words ...string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO words (word, folded) VALUES (?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare insert word: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		res, err := stmt.Exec(w, fold(w))
		if err != nil {
			return 0, fmt.Errorf("insert word %q: %w", w, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert word %q: %w", w, err)
		}
		added += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return added, nil
}

// RemoveWords deletes words and returns how many existed.
func (s *Store) RemoveWords(words ...string) (int, error) {
	if len(words) == 0 {
		return 0, nil
	}
	res, err := s.db.Exec(
		"DELETE FROM words WHERE word IN ("+placeholderList(len(words))+")",
		stringsToArgs(words)...,
	)
	if err != nil {
		return 0, fmt.Errorf("remove words: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("remove words: %w", err)
	}
	return int(n), nil
}

// Words returns every word in sorted order.
func (s *Store) Words() ([]string, error) {
	rows, err := s.db.Query("SELECT word FROM words ORDER BY word")
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Contains reports whether word is in the dictionary. An all-lowercase
// entry also accepts capitalized forms of the word, as at sentence start.
func (s *Store) Contains(word string) (bool, error) {
	var stored string
	err := s.db.QueryRow(
		"SELECT word FROM words WHERE word = ? OR (folded = ? AND word = folded) LIMIT 1",
		word, fold(word),
	).Scan(&stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup word %q: %w", word, err)
	}
	return true, nil
}

func fold(w string) string {
	return strings.ToLower(w)
}
