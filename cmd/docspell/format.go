package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/jward/docspell/internal/suggestion"
)

var (
	locationColor = color.New(color.Bold)
	detectorColor = color.New(color.FgYellow)
	caretColor    = color.New(color.FgRed, color.Bold)
	replaceColor  = color.New(color.FgGreen)
)

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text", "msgpack"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, ", "))
}

// outputResult writes result in the selected format.
func outputResult(w io.Writer, result CLIResult) error {
	switch flagFormat {
	case "msgpack":
		return msgpack.NewEncoder(w).Encode(result)
	case "text":
		return outputResultText(w, result)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In text mode it goes to stderr.
func outputError(w io.Writer, command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	_ = outputResult(w, CLIResult{Command: command, Error: err.Error()})
	return err
}

func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLISuggestion:
		formatSuggestionsText(w, v, newSourceCache())
		if len(v) > 0 {
			fmt.Fprintf(w, "%d suggestion(s)\n", len(v))
		}
	case []string:
		for _, s := range v {
			fmt.Fprintln(w, s)
		}
	case string:
		fmt.Fprintln(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// toCLI flattens set, showing files relative to base when possible.
func toCLI(set *suggestion.Set, base string) []CLISuggestion {
	out := make([]CLISuggestion, 0, set.Total())
	for origin, sug := range set.All() {
		path := origin.String()
		display := path
		if base != "" {
			if rel, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(rel, "..") {
				display = rel
			}
		}
		repl := sug.Replacements
		if repl == nil {
			repl = []string{}
		}
		out = append(out, CLISuggestion{
			File:         display,
			Line:         sug.Span.Start.Line,
			Column:       sug.Span.Start.Column,
			EndLine:      sug.Span.End.Line,
			EndColumn:    sug.Span.End.Column,
			Detector:     sug.Detector.String(),
			Description:  sug.Description,
			Text:         sug.Text(),
			Replacements: repl,
			path:         path,
		})
	}
	return out
}

// formatSuggestionsText prints each suggestion as a location line, the
// source line with the affected columns underlined, and the replacements.
func formatSuggestionsText(w io.Writer, sugs []CLISuggestion, src *sourceCache) {
	for _, s := range sugs {
		loc := locationColor.Sprintf("%s:%d:%d:", s.File, s.Line, s.Column)
		fmt.Fprintf(w, "%s %s %s\n", loc, detectorColor.Sprintf("[%s]", s.Detector), s.Description)

		if line, ok := src.line(s.path, s.Line); ok {
			fmt.Fprintf(w, "  %s\n", line)
			fmt.Fprintf(w, "  %s%s\n", underlinePad(line, s.Column), caretColor.Sprint(carets(line, s)))
		}

		multiline := false
		for _, r := range s.Replacements {
			multiline = multiline || strings.Contains(r, "\n")
		}
		switch {
		case len(s.Replacements) == 0:
		case multiline:
			for _, r := range s.Replacements {
				fmt.Fprintln(w, "  replacement:")
				for _, l := range strings.Split(r, "\n") {
					fmt.Fprintf(w, "    | %s\n", replaceColor.Sprint(l))
				}
			}
		default:
			fmt.Fprintf(w, "  suggestions: %s\n", replaceColor.Sprint(strings.Join(s.Replacements, ", ")))
		}
	}
}

// underlinePad returns blanks as wide as the characters of line before the
// 1-based column col. Tabs are kept so the caret lines up in a terminal.
func underlinePad(line string, col int) string {
	var b strings.Builder
	for i, r := range []rune(line) {
		if i >= col-1 {
			break
		}
		if r == '\t' {
			b.WriteRune('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}

// carets covers the suggestion's columns on its first line.
func carets(line string, s CLISuggestion) string {
	chars := []rune(line)
	start := min(max(s.Column-1, 0), len(chars))
	end := len(chars)
	if s.EndLine == s.Line {
		end = min(max(s.EndColumn, start), len(chars))
	}
	width := runewidth.StringWidth(string(chars[start:end]))
	return strings.Repeat("^", max(width, 1))
}

// sourceCache reads each file once.
type sourceCache struct {
	files map[string][]string
}

func newSourceCache() *sourceCache {
	return &sourceCache{files: make(map[string][]string)}
}

// line returns the 1-based line n of path.
func (c *sourceCache) line(path string, n int) (string, bool) {
	if path == "" {
		return "", false
	}
	lines, ok := c.files[path]
	if !ok {
		lines = readLines(path)
		c.files[path] = lines
	}
	if n < 1 || n > len(lines) {
		return "", false
	}
	return lines[n-1], true
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		out = append(out, strings.TrimSuffix(sc.Text(), "\r"))
	}
	return out
}
