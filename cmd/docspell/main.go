package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/docspell/internal/config"
	"github.com/jward/docspell/internal/logging"
)

var (
	flagConfig  string
	flagFormat  string
	flagVerbose bool
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

// errFound makes the process exit 1 after suggestions were printed.
var errFound = errors.New("suggestions found")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled && !errors.Is(err, errFound) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "docspell",
	Short:         "Spelling, grammar and wrapping checks for doc comments",
	Long:          "Docspell extracts doc comments from Rust, Go and Markdown sources and checks them with hunspell, LanguageTool, rule scripts and a markup-aware reflow.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: "+config.FileName+" at the repo root)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: json|text|msgpack")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log checker progress to stderr")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(reflowCmd)
	rootCmd.AddCommand(dictCmd)
}

// newLogger logs warnings, or everything with --verbose.
func newLogger() logging.Logger {
	level := logging.LevelWarn
	if flagVerbose {
		level = logging.LevelDebug
	}
	return logging.New(os.Stderr, "docspell", level)
}

// loadConfig reads --config, then the repo root's config file, then falls
// back to the defaults.
func loadConfig(repoRoot string) (*config.Config, error) {
	if flagConfig != "" {
		return config.Load(flagConfig)
	}
	path := filepath.Join(repoRoot, config.FileName)
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.Default(), nil
}

// resolveTargets returns absolute paths for args, or the working directory.
func resolveTargets(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	out := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolving path %q: %w", arg, err)
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, fmt.Errorf("path not found: %s", abs)
		}
		out = append(out, abs)
	}
	return out, nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding .git.
			return startDir
		}
		dir = parent
	}
}

// dictionaryPath returns where the project dictionary lives.
func dictionaryPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".docspell", "dictionary.db")
}
