// Package report renders ledger data for the terminal.
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/tally-ledger/tally/internal/activity"
	"github.com/tally-ledger/tally/internal/ledger"
	"github.com/tally-ledger/tally/internal/model"
)

const (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"

	// DescriptionWidth is the widest description shown in list output.
	DescriptionWidth = 32

	dateLayout = "2006-01-02 15:04"
)

var (
	successColor = lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	infoColor    = lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"}
)

// Printer writes styled output to w. Colors are dropped when w is not
// a terminal.
type Printer struct {
	w        io.Writer
	currency string

	success lipgloss.Style
	err     lipgloss.Style
	info    lipgloss.Style
	muted   lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
}

// New returns a Printer that formats amounts with the currency symbol.
func New(w io.Writer, currency string) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:        w,
		currency: currency,
		success:  r.NewStyle().Foreground(successColor),
		err:      r.NewStyle().Foreground(errorColor),
		info:     r.NewStyle().Foreground(infoColor),
		muted:    r.NewStyle().Foreground(mutedColor),
		header:   r.NewStyle().Bold(true).Padding(0, 1),
		cell:     r.NewStyle().Padding(0, 1),
	}
}

// Money formats d with two decimals and the currency symbol, e.g. -$70.00.
func Money(currency string, d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + currency + d.Neg().StringFixed(2)
	}
	return currency + d.StringFixed(2)
}

// Truncate shortens s to at most width display cells.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

// Money formats d with the printer's currency.
func (p *Printer) Money(d decimal.Decimal) string {
	return Money(p.currency, d)
}

// Success prints a message prefixed with a check mark.
func (p *Printer) Success(message string) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", p.success.Render(successSymbol), message)
}

// Error prints a message prefixed with a cross.
func (p *Printer) Error(message string) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", p.err.Render(errorSymbol), p.err.Render(message))
}

// Infof prints a formatted message prefixed with an arrow.
func (p *Printer) Infof(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", p.info.Render(infoSymbol), fmt.Sprintf(format, args...))
}

// Balance prints income and expense totals and the resulting balance.
func (p *Printer) Balance(l *ledger.Ledger) {
	income, expense := l.Totals()
	balance := l.Balance()

	balanceStyle := p.success
	if balance.IsNegative() {
		balanceStyle = p.err
	}
	_, _ = fmt.Fprintf(p.w, "%-9s %s\n", "Income:", p.Money(income))
	_, _ = fmt.Fprintf(p.w, "%-9s %s\n", "Expenses:", p.Money(expense))
	_, _ = fmt.Fprintf(p.w, "%-9s %s\n", "Balance:", balanceStyle.Render(p.Money(balance)))
}

// Summary prints expense totals per category, sorted by category.
func (p *Printer) Summary(summary map[string]decimal.Decimal) {
	if len(summary) == 0 {
		p.Infof("No expenses recorded")
		return
	}
	categories := make([]string, 0, len(summary))
	for c := range summary {
		categories = append(categories, c)
	}
	slices.Sort(categories)

	rows := make([][]string, 0, len(categories))
	total := decimal.Zero
	for _, c := range categories {
		rows = append(rows, []string{c, p.Money(summary[c])})
		total = total.Add(summary[c])
	}
	rows = append(rows, []string{"total", p.Money(total)})
	p.table([]string{"Category", "Spent"}, rows)
}

// Breakdown prints per {category, kind} totals.
func (p *Printer) Breakdown(totals []ledger.CategoryTotal) {
	if len(totals) == 0 {
		p.Infof("No transactions recorded")
		return
	}
	rows := make([][]string, 0, len(totals))
	for _, ct := range totals {
		rows = append(rows, []string{ct.Category, string(ct.Kind), fmt.Sprint(ct.Count), p.Money(ct.Total)})
	}
	p.table([]string{"Category", "Kind", "Count", "Total"}, rows)
}

// Transactions prints one row per transaction in the given order.
// Expenses are shown as negative amounts.
func (p *Printer) Transactions(txns []model.Transaction) {
	if len(txns) == 0 {
		p.Infof("No transactions")
		return
	}
	rows := make([][]string, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, []string{
			t.Timestamp.Local().Format(dateLayout),
			string(t.Kind),
			t.Category,
			p.Money(t.Signed()),
			Truncate(t.Description, DescriptionWidth),
		})
	}
	p.table([]string{"Date", "Kind", "Category", "Amount", "Description"}, rows)
}

// Activity prints activity log entries oldest first.
func (p *Printer) Activity(entries []activity.Entry) {
	if len(entries) == 0 {
		p.Infof("No activity recorded")
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Timestamp.Local().Format(dateLayout),
			e.Action,
			e.Details,
			e.CommitHash,
		})
	}
	p.table([]string{"When", "Action", "Details", "Commit"}, rows)
}

func (p *Printer) table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.muted).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.header
			}
			return p.cell
		}).
		Headers(headers...).
		Rows(rows...)
	_, _ = fmt.Fprintln(p.w, t.Render())
}
