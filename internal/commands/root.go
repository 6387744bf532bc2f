package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tally-ledger/tally/internal/buildinfo"
	"github.com/tally-ledger/tally/internal/config"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath string
	ledgerPath string
	format     string
	verbose    bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Track personal income and expenses",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.FileName, "path to the workspace config file")
	flags.StringVar(&opts.ledgerPath, "ledger", "", "ledger file (overrides config and "+config.EnvLedger+")")
	flags.StringVar(&opts.format, "format", "", "ledger format: json, csv or sqlite (default: from extension)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newAddCommand(opts),
		newBalanceCommand(opts),
		newSummaryCommand(opts),
		newListCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newWatchCommand(opts),
		newHistoryCommand(opts),
	)

	return rootCmd
}
