package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/docspell"
	"github.com/jward/docspell/internal/config"
	"github.com/jward/docspell/internal/doc"
	"github.com/jward/docspell/internal/logging"
	"github.com/jward/docspell/internal/store"
	"github.com/jward/docspell/internal/suggestion"
)

var flagNoFail bool

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Check doc comments with every enabled checker",
	Long:  "Extracts doc comments from the given files and directories (default: the working directory) and prints every suggestion. Exits 1 when anything was found.",
	RunE:  runCheck,
}

var flagMaxLineLength int

var reflowCmd = &cobra.Command{
	Use:   "reflow [paths...]",
	Short: "Only rewrap doc comment paragraphs",
	RunE:  runReflow,
}

func init() {
	checkCmd.Flags().BoolVar(&flagNoFail, "no-fail", false, "exit 0 even when suggestions were found")
	reflowCmd.Flags().BoolVar(&flagNoFail, "no-fail", false, "exit 0 even when suggestions were found")
	reflowCmd.Flags().IntVar(&flagMaxLineLength, "max-line-length", 0, "maximum line length (default: from config, or 80)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	targets, err := resolveTargets(args)
	if err != nil {
		return outputError(cmd.OutOrStdout(), "check", err)
	}
	root := findRepoRoot(dirOf(targets[0]))
	cfg, err := loadConfig(root)
	if err != nil {
		return outputError(cmd.OutOrStdout(), "check", err)
	}
	return runPass(cmd, "check", root, cfg, targets)
}

func runReflow(cmd *cobra.Command, args []string) error {
	targets, err := resolveTargets(args)
	if err != nil {
		return outputError(cmd.OutOrStdout(), "reflow", err)
	}
	root := findRepoRoot(dirOf(targets[0]))
	cfg, err := loadConfig(root)
	if err != nil {
		return outputError(cmd.OutOrStdout(), "reflow", err)
	}
	cfg = reflowConfig(cfg, flagMaxLineLength)
	return runPass(cmd, "reflow", root, cfg, targets)
}

// reflowConfig keeps only the reflow section, overriding its width when
// maxLen is positive.
func reflowConfig(cfg *config.Config, maxLen int) *config.Config {
	out := cfg.Only(suggestion.Reflow)
	if out.Reflow == nil {
		out.Reflow = &config.ReflowConfig{MaxLineLength: config.DefaultMaxLineLength}
	} else {
		r := *out.Reflow
		out.Reflow = &r
	}
	if maxLen > 0 {
		out.Reflow.MaxLineLength = maxLen
	}
	return out
}

func runPass(cmd *cobra.Command, command, root string, cfg *config.Config, targets []string) error {
	start := time.Now()
	log := newLogger()
	w := cmd.OutOrStdout()

	opts := []docspell.Option{docspell.WithLogger(log), docspell.WithRoot(root)}
	if cfg.Hunspell != nil {
		dict, err := openDictionary(root, false)
		if err != nil {
			return outputError(w, command, err)
		}
		if dict != nil {
			defer dict.Close()
			warnLanguageMismatch(log, dict, cfg.Hunspell.Lang)
			opts = append(opts, docspell.WithDictionary(dict))
		}
	}

	engine, err := docspell.New(cfg, opts...)
	if err != nil {
		return outputError(w, command, fmt.Errorf("creating engine: %w", err))
	}

	ctx := context.Background()
	docu, err := loadTargets(ctx, engine, targets)
	if err != nil {
		return outputError(w, command, err)
	}
	set, err := engine.Check(ctx, docu)
	if err != nil {
		return outputError(w, command, err)
	}

	cwd, _ := os.Getwd()
	sugs := toCLI(set, cwd)
	if err := outputResult(w, CLIResult{Command: command, Results: sugs, Count: len(sugs)}); err != nil {
		return err
	}
	log.Infof("checked %d chunk(s) in %d file(s) in %s", docu.ChunkCount(), docu.Len(), time.Since(start).Round(time.Millisecond))

	if len(sugs) > 0 && !flagNoFail {
		return errFound
	}
	return nil
}

// loadTargets extracts every target, walking directories.
func loadTargets(ctx context.Context, engine *docspell.Engine, targets []string) (*doc.Documentation, error) {
	docu := doc.NewDocumentation()
	var files []string
	for _, t := range targets {
		info, err := os.Stat(t)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, t)
			continue
		}
		d, err := engine.LoadDirectory(ctx, t)
		if err != nil {
			return nil, err
		}
		docu.Join(d)
	}
	if len(files) > 0 {
		d, err := engine.Load(ctx, files)
		if err != nil {
			return nil, err
		}
		docu.Join(d)
	}
	return docu, nil
}

// openDictionary opens the project dictionary. Unless create is set, a
// missing database yields nil and no error.
func openDictionary(root string, create bool) (*store.Store, error) {
	path := dictionaryPath(root)
	if _, err := os.Stat(path); err != nil {
		if !create {
			return nil, nil
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
	}
	s, err := store.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("opening dictionary: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrating dictionary: %w", err)
	}
	return s, nil
}

// langKey is the metadata key holding the language the project dictionary
// was written for.
const langKey = "lang"

func warnLanguageMismatch(log logging.Logger, dict *store.Store, lang string) {
	stored, err := dict.GetMetadata(langKey)
	if err != nil {
		log.Warnf("reading dictionary metadata: %v", err)
		return
	}
	if stored != "" && stored != lang {
		log.Warnf("project dictionary was written for %s, checking %s", stored, lang)
	}
}

func dirOf(path string) string {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return filepath.Dir(path)
	}
	return path
}
