package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tally-ledger/tally/internal/activity"
	"github.com/tally-ledger/tally/internal/config"
	"github.com/tally-ledger/tally/internal/gitops"
	"github.com/tally-ledger/tally/internal/ledger"
	"github.com/tally-ledger/tally/internal/report"
	"github.com/tally-ledger/tally/internal/store"
)

// ledgerFileNames maps a format to the ledger file created by init.
var ledgerFileNames = map[store.Format]string{
	store.FormatJSON:   "transactions.json",
	store.FormatCSV:    "transactions.csv",
	store.FormatSQLite: "transactions.db",
}

func newInitCommand(opts *options) *cobra.Command {
	var withGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new tally workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			format := store.FormatJSON
			if opts.format != "" {
				if format, err = store.ParseFormat(opts.format); err != nil {
					return err
				}
			}

			if err := runInit(absDir, format, withGit); err != nil {
				return err
			}
			report.New(cmd.OutOrStdout(), "").Success("Initialized tally workspace at " + absDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withGit, "git", false, "initialize a git repository and commit every change")

	return cmd
}

func runInit(dir string, format store.Format, withGit bool) error {
	if withGit && !gitops.Available() {
		return errors.New("--git requires git on PATH")
	}

	configPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}

	for _, d := range []string{"logs", filepath.Join("import", "processed")} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	cfg.Ledger.Path = ledgerFileNames[format]
	cfg.Git.AutoCommit = withGit
	if err := config.Save(configPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	empty, err := ledger.New()
	if err != nil {
		return err
	}
	if err := store.Save(empty, cfg.LedgerPath(dir), format); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}

	gitignore := ".env\nimport/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	var hash string
	if withGit {
		if err := gitops.Init(dir); err != nil {
			return fmt.Errorf("git init: %w", err)
		}
		author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
		if hash, err = gitops.CommitAll(dir, "init: tally workspace", author); err != nil {
			return fmt.Errorf("initial commit: %w", err)
		}
	}

	return activity.Append(dir, activity.Entry{
		Timestamp:  timeNow(),
		Action:     "init",
		Details:    fmt.Sprintf("%s ledger %s", format, cfg.Ledger.Path),
		CommitHash: hash,
	})
}
