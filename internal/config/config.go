// Package config loads the TOML configuration that decides which checkers
// run and how each of them is set up.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/expr-lang/expr"

	"github.com/jward/docspell/internal/suggestion"
)

// FileName is the configuration file looked up at the repository root.
const FileName = ".docspell.toml"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the top-level configuration. A nil section disables its
// detector.
type Config struct {
	Reflow       *ReflowConfig       `toml:"reflow"`
	Hunspell     *HunspellConfig     `toml:"hunspell"`
	LanguageTool *LanguageToolConfig `toml:"languagetool"`
	Rules        *RulesConfig        `toml:"rules"`
}

// ReflowConfig configures the reflow checker.
type ReflowConfig struct {
	MaxLineLength int `toml:"max_line_length"`
}

// HunspellConfig configures the spelling checker.
type HunspellConfig struct {
	Lang       string   `toml:"lang"`
	SearchDirs []string `toml:"search_dirs"`
	ExtraWords []string `toml:"extra_words"`
	Binary     string   `toml:"binary"`
}

// LanguageToolConfig configures the grammar checker.
type LanguageToolConfig struct {
	URL           string   `toml:"url"`
	Language      string   `toml:"language"`
	Timeout       Duration `toml:"timeout"`
	Concurrency   int      `toml:"concurrency"`
	DisabledRules []string `toml:"disabled_rules"`
}

// RulesConfig configures the rule checker.
type RulesConfig struct {
	Builtin bool       `toml:"builtin"`
	Scripts []string   `toml:"scripts"`
	Expr    []ExprRule `toml:"expr"`
}

// ExprRule flags every word for which When evaluates to true.
type ExprRule struct {
	Name        string `toml:"name"`
	When        string `toml:"when"`
	Replacement string `toml:"replacement"`
	Description string `toml:"description"`
}

// Duration decodes TOML strings such as "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("config: duration %q: %w", b, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

const (
	DefaultMaxLineLength = 80
	DefaultLang          = "en_US"
	DefaultBinary        = "hunspell"
	DefaultToolURL       = "http://localhost:8081"
	DefaultToolLanguage  = "en-US"
	DefaultToolTimeout   = 10 * time.Second
	DefaultConcurrency   = 4
)

// Default enables reflow and hunspell with their defaults.
func Default() *Config {
	return &Config{
		Reflow:   &ReflowConfig{MaxLineLength: DefaultMaxLineLength},
		Hunspell: &HunspellConfig{Lang: DefaultLang, Binary: DefaultBinary},
	}
}

// Load decodes and validates the file at path.
func Load(path string) (*Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return finish(&cfg, meta)
}

// Parse decodes and validates TOML text.
func Parse(text string) (*Config, error) {
	var cfg Config
	meta, err := toml.Decode(text, &cfg)
	if err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return finish(&cfg, meta)
}

func finish(cfg *Config, meta toml.MetaData) (*Config, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys: %s", ErrInvalid, strings.Join(keys, ", "))
	}
	cfg.applyDefaults(meta)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills keys the file left out. Keys that are present keep
// their value even when it is zero, so validation can reject it.
func (c *Config) applyDefaults(meta toml.MetaData) {
	if c.Reflow != nil && !meta.IsDefined("reflow", "max_line_length") {
		c.Reflow.MaxLineLength = DefaultMaxLineLength
	}
	if h := c.Hunspell; h != nil {
		if !meta.IsDefined("hunspell", "lang") {
			h.Lang = DefaultLang
		}
		if !meta.IsDefined("hunspell", "binary") {
			h.Binary = DefaultBinary
		}
	}
	if lt := c.LanguageTool; lt != nil {
		if !meta.IsDefined("languagetool", "url") {
			lt.URL = DefaultToolURL
		}
		if !meta.IsDefined("languagetool", "language") {
			lt.Language = DefaultToolLanguage
		}
		if !meta.IsDefined("languagetool", "timeout") {
			lt.Timeout = Duration{DefaultToolTimeout}
		}
		if !meta.IsDefined("languagetool", "concurrency") {
			lt.Concurrency = DefaultConcurrency
		}
	}
	if c.Rules != nil && !meta.IsDefined("rules", "builtin") {
		c.Rules.Builtin = true
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Reflow != nil && c.Reflow.MaxLineLength <= 0 {
		return fmt.Errorf("%w: reflow.max_line_length must be > 0, got %d", ErrInvalid, c.Reflow.MaxLineLength)
	}
	if h := c.Hunspell; h != nil {
		if h.Lang == "" {
			return fmt.Errorf("%w: hunspell.lang is empty", ErrInvalid)
		}
		if h.Binary == "" {
			return fmt.Errorf("%w: hunspell.binary is empty", ErrInvalid)
		}
	}
	if lt := c.LanguageTool; lt != nil {
		u, err := url.Parse(lt.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: languagetool.url %q is not an absolute URL", ErrInvalid, lt.URL)
		}
		if lt.Timeout.Duration <= 0 {
			return fmt.Errorf("%w: languagetool.timeout must be positive", ErrInvalid)
		}
		if lt.Concurrency <= 0 {
			return fmt.Errorf("%w: languagetool.concurrency must be > 0", ErrInvalid)
		}
	}
	if r := c.Rules; r != nil {
		for i, rule := range r.Expr {
			if strings.TrimSpace(rule.When) == "" {
				return fmt.Errorf("%w: rules.expr[%d] has an empty condition", ErrInvalid, i)
			}
			if _, err := expr.Compile(rule.When, expr.AsBool()); err != nil {
				return fmt.Errorf("%w: rules.expr[%d] %q: %v", ErrInvalid, i, rule.Name, err)
			}
		}
	}
	return nil
}

// IsEnabled reports whether the detector's section is present.
func (c *Config) IsEnabled(d suggestion.Detector) bool {
	switch d {
	case suggestion.Reflow:
		return c.Reflow != nil
	case suggestion.Hunspell:
		return c.Hunspell != nil
	case suggestion.LanguageTool:
		return c.LanguageTool != nil
	case suggestion.Rules:
		return c.Rules != nil
	}
	return false
}

// Only returns a copy of c with every detector but d disabled.
func (c *Config) Only(d suggestion.Detector) *Config {
	out := &Config{}
	switch d {
	case suggestion.Reflow:
		out.Reflow = c.Reflow
	case suggestion.Hunspell:
		out.Hunspell = c.Hunspell
	case suggestion.LanguageTool:
		out.LanguageTool = c.LanguageTool
	case suggestion.Rules:
		out.Rules = c.Rules
	}
	return out
}
