package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tally-ledger/tally/internal/config"
	"github.com/tally-ledger/tally/internal/model"
)

// addInput is the raw user input for one transaction.
type addInput struct {
	kind        string
	category    string
	amount      string
	description string
}

func newAddCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [kind category amount [description...]]",
		Short: "Record an income or expense",
		Example: `  tally add income salary 1000
  tally add expense food 12.50 lunch with Sam
  tally add -- expense food 12.50 --split-bill   # words after -- are never flags
  tally add            # prompt interactively`,
		Args: func(cmd *cobra.Command, args []string) error {
			if n := len(args); n > 0 && n < 3 {
				return fmt.Errorf("expected kind, category and amount, got %d argument(s)", n)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, opts)
			if err != nil {
				return err
			}

			var in addInput
			if len(args) == 0 {
				if !term.IsTerminal(int(os.Stdin.Fd())) {
					return errors.New("kind, category and amount are required when stdin is not a terminal")
				}
				if in, err = promptTransaction(ws.cfg); err != nil {
					return err
				}
			} else {
				in = addInput{
					kind:        args[0],
					category:    args[1],
					amount:      args[2],
					description: strings.Join(args[3:], " "),
				}
			}

			return runAdd(ws, in)
		},
	}

	return cmd
}

func runAdd(ws *workspace, in addInput) error {
	kind, err := model.ParseKind(in.kind)
	if err != nil {
		return err
	}
	amount, err := parseAmount(in.amount)
	if err != nil {
		return err
	}

	l, err := ws.load()
	if err != nil {
		return err
	}
	t, err := l.Record(amount, kind, strings.TrimSpace(in.category), strings.TrimSpace(in.description))
	if err != nil {
		return err
	}
	if err := ws.save(l); err != nil {
		return err
	}

	details := fmt.Sprintf("%s %s %s", t.Kind, t.Amount, t.Category)
	ws.track("add", details, t.ID)
	ws.out.Success(fmt.Sprintf("Recorded %s %s (%s)", t.Kind, ws.out.Money(t.Amount), t.Category))
	return nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, model.ValidationError{Field: "amount", Reason: fmt.Sprintf("%q is not a number", s)}
	}
	return d, nil
}

// promptTransaction asks for a transaction with an interactive form.
func promptTransaction(cfg *config.Config) (addInput, error) {
	in := addInput{kind: string(model.KindExpense)}

	kinds := make([]huh.Option[string], 0, len(model.Kinds))
	for _, k := range model.Kinds {
		kinds = append(kinds, huh.NewOption(string(k), string(k)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Kind").
				Options(kinds...).
				Value(&in.kind),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Category").
				OptionsFunc(func() []huh.Option[string] {
					return huh.NewOptions(cfg.CategoriesFor(model.Kind(in.kind))...)
				}, &in.kind).
				Value(&in.category),
			huh.NewInput().
				Title("Amount").
				Validate(func(s string) error {
					d, err := parseAmount(s)
					if err != nil {
						return err
					}
					if !d.IsPositive() {
						return errors.New("amount must be greater than zero")
					}
					return nil
				}).
				Value(&in.amount),
			huh.NewInput().
				Title("Description").
				Value(&in.description),
		),
	)

	if err := form.Run(); err != nil {
		return addInput{}, fmt.Errorf("failed to read transaction: %w", err)
	}
	return in, nil
}
