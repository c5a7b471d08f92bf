package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/docspell/internal/store"
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Manage the project dictionary",
	Long:  "Words in the project dictionary are accepted by the spelling checker. The dictionary lives in .docspell/dictionary.db at the repo root.",
}

var dictAddCmd = &cobra.Command{
	Use:   "add <word>...",
	Short: "Add words to the project dictionary",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDictEdit(cmd, "dict add", args, true)
	},
}

var dictRemoveCmd = &cobra.Command{
	Use:   "remove <word>...",
	Short: "Remove words from the project dictionary",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDictEdit(cmd, "dict remove", args, false)
	},
}

var dictListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the project dictionary",
	Args:  cobra.NoArgs,
	RunE:  runDictList,
}

func init() {
	dictCmd.AddCommand(dictAddCmd)
	dictCmd.AddCommand(dictRemoveCmd)
	dictCmd.AddCommand(dictListCmd)
}

func workingRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return findRepoRoot(cwd), nil
}

func runDictEdit(cmd *cobra.Command, command string, words []string, add bool) error {
	w := cmd.OutOrStdout()
	root, err := workingRoot()
	if err != nil {
		return outputError(w, command, err)
	}
	dict, err := openDictionary(root, true)
	if err != nil {
		return outputError(w, command, err)
	}
	defer dict.Close()

	var n int
	verb := "added"
	if add {
		n, err = dict.AddWords(words...)
		if err == nil {
			err = recordLanguage(dict, root)
		}
	} else {
		verb = "removed"
		n, err = dict.RemoveWords(words...)
	}
	if err != nil {
		return outputError(w, command, err)
	}
	return outputResult(w, CLIResult{Command: command, Results: fmt.Sprintf("%s %d word(s)", verb, n), Count: n})
}

// recordLanguage remembers the configured hunspell language the first time
// words are added.
func recordLanguage(dict *store.Store, root string) error {
	stored, err := dict.GetMetadata(langKey)
	if err != nil || stored != "" {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil || cfg.Hunspell == nil {
		return err
	}
	return dict.SetMetadata(langKey, cfg.Hunspell.Lang)
}

func runDictList(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	root, err := workingRoot()
	if err != nil {
		return outputError(w, "dict list", err)
	}
	dict, err := openDictionary(root, false)
	if err != nil {
		return outputError(w, "dict list", err)
	}
	words := []string{}
	if dict != nil {
		defer dict.Close()
		if words, err = dict.Words(); err != nil {
			return outputError(w, "dict list", err)
		}
	}
	return outputResult(w, CLIResult{Command: "dict list", Results: words, Count: len(words)})
}
