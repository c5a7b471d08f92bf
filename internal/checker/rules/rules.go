// Package rules implements the rule checker: Risor scripts and expr
// conditions evaluated over the prose words of every chunk.
package rules

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"

	"github.com/jward/docspell/internal/config"
	"github.com/jward/docspell/internal/doc"
	"github.com/jward/docspell/internal/logging"
	"github.com/jward/docspell/internal/suggestion"
)

//go:embed scripts/*.risor
var builtinFS embed.FS

// script is one rule program and the place its imports resolve from.
type script struct {
	name   string
	source string
	fsys   fs.FS  // builtin scripts
	dir    string // user scripts
}

// Checker runs rule scripts and expressions.
type Checker struct {
	root string
	log  logging.Logger
}

// New returns a checker resolving script globs against root.
func New(root string, log logging.Logger) *Checker {
	return &Checker{root: root, log: logging.OrNop(log)}
}

func (c *Checker) Detector() suggestion.Detector { return suggestion.Rules }

// Check evaluates every script and expression against every chunk.
func (c *Checker) Check(ctx context.Context, docu *doc.Documentation, cfg *config.RulesConfig) (*suggestion.Set, error) {
	if cfg == nil {
		cfg = &config.RulesConfig{Builtin: true}
	}
	scripts, err := c.loadScripts(cfg)
	if err != nil {
		return nil, err
	}
	exprs, err := compileExprs(cfg.Expr)
	if err != nil {
		return nil, err
	}

	out := suggestion.NewSet()
	if len(scripts) == 0 && len(exprs) == 0 {
		return out, nil
	}
	for _, origin := range docu.Origins() {
		for _, chunk := range docu.Get(origin) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			words := proseWords(chunk.Text())
			for _, s := range scripts {
				sugs, err := c.run(ctx, s, origin, chunk, words)
				if err != nil {
					return nil, err
				}
				out.Extend(origin, sugs)
			}
			sugs, err := c.evalExprs(exprs, origin, chunk, words)
			if err != nil {
				return nil, err
			}
			out.Extend(origin, sugs)
		}
	}
	return out, nil
}

// run evaluates s with the chunk globals and collects what it reports.
func (c *Checker) run(ctx context.Context, s script, origin doc.Origin, chunk *doc.Chunk, words []word) ([]suggestion.Suggestion, error) {
	rep := &reporter{origin: origin, chunk: chunk, log: c.log}
	globals := map[string]any{
		"text":   chunk.Text(),
		"origin": origin.String(),
		"words":  wordList(words),
		"report": makeReportFn(rep),
		"log":    mustProxy(&logObject{log: c.log, script: s.name}),
	}

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	if imp := buildImporter(s, globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}
	if _, err := risor.Eval(ctx, s.source, opts...); err != nil {
		return nil, fmt.Errorf("rules: script %s on %s: %w", s.name, origin, err)
	}
	return rep.found, nil
}

// buildImporter lets a script import sibling .risor files.
func buildImporter(s script, globals map[string]any) importer.Importer {
	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	if s.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: names,
			SourceFS:    s.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if s.dir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: names,
			SourceDir:   s.dir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// loadScripts reads the builtin scripts when enabled, then every file
// matched by the configured globs, each once, in name order.
func (c *Checker) loadScripts(cfg *config.RulesConfig) ([]script, error) {
	var out []script
	if cfg.Builtin {
		sub, err := fs.Sub(builtinFS, "scripts")
		if err != nil {
			return nil, fmt.Errorf("rules: builtin scripts: %w", err)
		}
		names, err := fs.Glob(sub, "*.risor")
		if err != nil {
			return nil, fmt.Errorf("rules: builtin scripts: %w", err)
		}
		for _, name := range names {
			data, err := fs.ReadFile(sub, name)
			if err != nil {
				return nil, fmt.Errorf("rules: loading builtin %s: %w", name, err)
			}
			out = append(out, script{name: path.Join("builtin", name), source: string(data), fsys: sub})
		}
	}

	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range cfg.Scripts {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(c.root, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("rules: script pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			c.log.Warnf("rules: script pattern %q matches no files", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("rules: loading script %s: %w", p, err)
		}
		out = append(out, script{name: c.displayName(p), source: string(data), dir: filepath.Dir(p)})
	}
	return out, nil
}

func (c *Checker) displayName(p string) string {
	if c.root == "" {
		return p
	}
	if rel, err := filepath.Rel(c.root, p); err == nil {
		return filepath.ToSlash(rel)
	}
	return p
}
