// Package docspell checks the doc comments of Rust and Go sources and
// Markdown files for spelling, grammar, style rules and line wrapping.
//
// # Pipeline
//
//  1. Extract: each source file is parsed with tree-sitter and its doc
//     comments are collected into chunks. A chunk is the comment text with
//     the comment markers removed plus a mapping from every character back
//     to its line and column in the file.
//
//  2. Check: the chunks are dispatched to every enabled checker. Each
//     checker returns suggestions that point back into the source through
//     the chunk mapping; the merged set is sorted by origin and position.
//
// # Usage
//
//	cfg, err := config.Load(".docspell.toml")
//	if err != nil { ... }
//	e, err := docspell.New(cfg)
//	if err != nil { ... }
//
//	set, err := e.CheckDirectory(ctx, ".")
//	for origin, sug := range set.All() {
//		fmt.Println(origin, sug)
//	}
//
// # Checkers
//
//   - hunspell: spelling through a hunspell subprocess, with an optional
//     project dictionary ([WithDictionary]).
//   - languagetool: grammar through a LanguageTool HTTP server.
//   - rules: Risor scripts and expr conditions evaluated per word.
//   - reflow: rewraps paragraphs to a maximum line length without
//     breaking inline markup.
//
// A checker whose section is missing from the configuration is disabled;
// one whose external tool cannot be reached is skipped with a warning.
package docspell
