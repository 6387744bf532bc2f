package commands

import (
	"github.com/spf13/cobra"

	"github.com/tally-ledger/tally/internal/activity"
	"github.com/tally-ledger/tally/internal/model"
)

func newBalanceCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show total income, expenses and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, opts)
			if err != nil {
				return err
			}
			l, err := ws.load()
			if err != nil {
				return err
			}
			ws.out.Balance(l)
			return nil
		},
	}
}

func newSummaryCommand(opts *options) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show spending per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, opts)
			if err != nil {
				return err
			}
			l, err := ws.load()
			if err != nil {
				return err
			}
			if all {
				ws.out.Breakdown(l.Breakdown())
			} else {
				ws.out.Summary(l.SummaryByCategory())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include income, grouped by category and kind")

	return cmd
}

func newListCommand(opts *options) *cobra.Command {
	var kindFlag, category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions in the order they were recorded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind model.Kind
			if kindFlag != "" {
				k, err := model.ParseKind(kindFlag)
				if err != nil {
					return err
				}
				kind = k
			}

			ws, err := openWorkspace(cmd, opts)
			if err != nil {
				return err
			}
			l, err := ws.load()
			if err != nil {
				return err
			}
			ws.out.Transactions(l.Filter(func(t model.Transaction) bool {
				if kind != "" && t.Kind != kind {
					return false
				}
				return category == "" || t.Category == category
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "", "only show income or expense")
	cmd.Flags().StringVar(&category, "category", "", "only show this category")

	return cmd
}

func newHistoryCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the workspace activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, opts)
			if err != nil {
				return err
			}
			entries, err := activity.Read(ws.root)
			if err != nil {
				return err
			}
			ws.out.Activity(entries)
			return nil
		},
	}
}
