package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tally-ledger/tally/internal/store"
)

func newExportCommand(opts *options) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "export <path|->",
		Short: "Write the ledger to another file or format",
		Example: `  tally export backup.csv
  tally export ledger.db
  tally export - --to csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, opts)
			if err != nil {
				return err
			}
			l, err := ws.load()
			if err != nil {
				return err
			}

			if args[0] == "-" {
				format := store.FormatJSON
				if to != "" {
					if format, err = store.ParseFormat(to); err != nil {
						return err
					}
				}
				return store.Encode(cmd.OutOrStdout(), format, l.Transactions())
			}

			dst, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			if dst == ws.path {
				return fmt.Errorf("export target is the ledger itself: %s", dst)
			}
			format, err := store.Resolve(dst, to)
			if err != nil {
				return err
			}
			if err := store.Save(l, dst, format); err != nil {
				return err
			}

			ws.track("export", fmt.Sprintf("%d transactions to %s (%s)", l.Len(), filepath.Base(dst), format), "")
			ws.out.Success(fmt.Sprintf("Exported %d transactions to %s", l.Len(), dst))
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "output format: json, csv or sqlite (default: from extension, json for -)")

	return cmd
}
