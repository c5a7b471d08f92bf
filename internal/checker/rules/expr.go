package rules

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/jward/docspell/internal/config"
	"github.com/jward/docspell/internal/doc"
	"github.com/jward/docspell/internal/suggestion"
)

// wordEnv is what an expression sees for each word.
type wordEnv struct {
	Word  string `expr:"word"`
	Lower string `expr:"lower"`
	Prev  string `expr:"prev"`
	Next  string `expr:"next"`
	Index int    `expr:"index"`
}

type compiledRule struct {
	rule    config.ExprRule
	program *vm.Program
}

func compileExprs(rules []config.ExprRule) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		p, err := expr.Compile(r.When, expr.Env(wordEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("rules: expr %q: %w", r.Name, err)
		}
		out = append(out, compiledRule{rule: r, program: p})
	}
	return out, nil
}

// evalExprs flags every word that satisfies a rule's condition.
func (c *Checker) evalExprs(rules []compiledRule, origin doc.Origin, chunk *doc.Chunk, words []word) ([]suggestion.Suggestion, error) {
	if len(rules) == 0 {
		return nil, nil
	}
	rep := &reporter{origin: origin, chunk: chunk, log: c.log}
	for i, w := range words {
		env := wordEnv{Word: w.text, Lower: w.lower, Index: i}
		if i > 0 {
			env.Prev = words[i-1].text
		}
		if i+1 < len(words) {
			env.Next = words[i+1].text
		}
		for _, cr := range rules {
			res, err := expr.Run(cr.program, env)
			if err != nil {
				return nil, fmt.Errorf("rules: expr %q on %s: %w", cr.rule.Name, origin, err)
			}
			if hit, _ := res.(bool); !hit {
				continue
			}
			desc := cr.rule.Description
			if desc == "" {
				desc = cr.rule.Name
			}
			var repl []string
			if cr.rule.Replacement != "" {
				repl = []string{cr.rule.Replacement}
			}
			if err := rep.add(w.r, desc, repl); err != nil {
				return nil, err
			}
		}
	}
	return rep.found, nil
}
