package docspell

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jward/docspell/internal/checker"
	"github.com/jward/docspell/internal/checker/hunspell"
	"github.com/jward/docspell/internal/checker/languagetool"
	"github.com/jward/docspell/internal/checker/reflow"
	"github.com/jward/docspell/internal/checker/rules"
	"github.com/jward/docspell/internal/config"
	"github.com/jward/docspell/internal/doc"
	"github.com/jward/docspell/internal/extract"
	"github.com/jward/docspell/internal/logging"
	"github.com/jward/docspell/internal/suggestion"
)

// Engine runs the docspell pipeline: file discovery, doc comment
// extraction, and dispatch to the enabled checkers.
type Engine struct {
	cfg       *config.Config
	log       logging.Logger
	registry  *checker.Registry
	dict      Dictionary
	root      string
	languages map[string]bool // nil means all languages

	// useParallel enables the worker pool in Load.
	useParallel bool
}

// Dictionary is a project word list the spelling checker accepts.
type Dictionary interface {
	Contains(word string) (bool, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine and the default checkers.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		e.log = logging.OrNop(l)
	}
}

// WithSlog routes engine and checker logs to l.
func WithSlog(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = logging.FromSlog(l)
	}
}

// WithRegistry replaces the default checkers.
func WithRegistry(r *checker.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithParallel controls parallel extraction. When true (default), Load
// extracts files with a worker pool and merges the results serially.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithLanguages restricts which source languages the Engine extracts.
func WithLanguages(languages ...string) Option {
	return func(e *Engine) {
		e.languages = make(map[string]bool, len(languages))
		for _, lang := range languages {
			e.languages[lang] = true
		}
	}
}

// WithDictionary sets the project dictionary used by the spelling checker.
func WithDictionary(d Dictionary) Option {
	return func(e *Engine) {
		e.dict = d
	}
}

// WithRoot sets the directory rule script patterns are relative to.
func WithRoot(root string) Option {
	return func(e *Engine) {
		e.root = root
	}
}

// New creates an Engine for cfg. A nil cfg means config.Default().
func New(cfg *Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("docspell: %w", err)
	}
	e := &Engine{
		cfg:         cfg,
		log:         logging.Nop(),
		useParallel: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = DefaultRegistry(cfg, e.root, e.dict, e.log)
	}
	return e, nil
}

// Config returns the configuration the engine checks with.
func (e *Engine) Config() *Config { return e.cfg }

// DefaultRegistry registers every built-in checker. Script patterns resolve
// against root; dict may be nil.
func DefaultRegistry(cfg *Config, root string, dict Dictionary, log Logger) *checker.Registry {
	log = logging.OrNop(log)

	binary := ""
	if cfg != nil && cfg.Hunspell != nil {
		binary = cfg.Hunspell.Binary
	}
	url := ""
	if cfg != nil && cfg.LanguageTool != nil {
		url = cfg.LanguageTool.URL
	}
	var hd hunspell.Dictionary
	if dict != nil {
		hd = dict
	}

	return checker.NewRegistry(
		checker.Register(hunspell.New(binary, hd, log), func(c *config.Config) *config.HunspellConfig { return c.Hunspell }),
		checker.Register(languagetool.New(url, log), func(c *config.Config) *config.LanguageToolConfig { return c.LanguageTool }),
		checker.Register(rules.New(root, log), func(c *config.Config) *config.RulesConfig { return c.Rules }),
		checker.Register(reflow.New(log), func(c *config.Config) *config.ReflowConfig { return c.Reflow }),
	)
}

// Check runs every enabled checker over docu.
func (e *Engine) Check(ctx context.Context, docu *Documentation) (*SuggestionSet, error) {
	return e.registry.Dispatch(ctx, docu, e.cfg, checker.LogObserver{Log: e.log})
}

// CheckFiles extracts paths and checks the result.
func (e *Engine) CheckFiles(ctx context.Context, paths []string) (*SuggestionSet, error) {
	docu, err := e.Load(ctx, paths)
	if err != nil {
		return nil, err
	}
	return e.Check(ctx, docu)
}

// CheckDirectory extracts every supported file under root and checks the
// result.
func (e *Engine) CheckDirectory(ctx context.Context, root string) (*SuggestionSet, error) {
	docu, err := e.LoadDirectory(ctx, root)
	if err != nil {
		return nil, err
	}
	return e.Check(ctx, docu)
}

// Load extracts the doc comments of paths. Files with unsupported
// extensions or filtered-out languages are skipped.
func (e *Engine) Load(ctx context.Context, paths []string) (*Documentation, error) {
	var work []string
	for _, path := range paths {
		lang, ok := extract.LanguageForFile(path)
		if !ok {
			e.log.Debugf("skipping %s: unsupported file type", path)
			continue
		}
		if e.languages != nil && !e.languages[lang] {
			continue
		}
		work = append(work, path)
	}
	if e.useParallel && len(work) > 1 {
		return e.loadParallel(ctx, work)
	}
	return e.loadSerial(ctx, work)
}

func (e *Engine) loadSerial(ctx context.Context, paths []string) (*Documentation, error) {
	docu := doc.NewDocumentation()
	var errs []error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunks, err := extract.FromFile(ctx, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("extract %s: %w", path, err))
			continue
		}
		if len(chunks) > 0 {
			docu.Add(doc.Origin(path), chunks...)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("extraction had %d error(s): %w", len(errs), errs[0])
	}
	e.log.Debugf("extracted %d chunk(s) from %d file(s)", docu.ChunkCount(), docu.Len())
	return docu, nil
}

// skipDirs are directory names LoadDirectory never descends into.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"target":       true,
}

// LoadDirectory walks root and extracts every file with a supported
// extension. Hidden directories and skipDirs are not visited.
func (e *Engine) LoadDirectory(ctx context.Context, root string) (*Documentation, error) {
	paths, err := listFiles(root)
	if err != nil {
		return nil, err
	}
	return e.Load(ctx, paths)
}

func listFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := extract.LanguageForFile(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Detectors reports for every detector whether it is both registered and
// enabled. Availability is only probed during Check.
func (e *Engine) Detectors() map[suggestion.Detector]bool {
	out := make(map[suggestion.Detector]bool)
	for _, d := range suggestion.AllDetectors() {
		out[d] = e.registry.Has(d) && e.cfg.IsEnabled(d)
	}
	return out
}
