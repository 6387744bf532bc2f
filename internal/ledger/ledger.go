// Package ledger holds an ordered, validated collection of transactions
// and derives balances and per-category totals from it.
package ledger

import (
	"fmt"
	"iter"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/tally-ledger/tally/internal/model"
)

// Ledger is an in-memory, insertion-ordered set of transactions.
// A Ledger is owned by one caller and is not safe for concurrent use.
type Ledger struct {
	txns []model.Transaction
}

// CategoryTotal is the aggregate for one {category, kind} pair.
type CategoryTotal struct {
	Category string
	Kind     model.Kind
	Total    decimal.Decimal
	Count    int
}

// New creates a Ledger holding txns in order. Nothing is kept if any
// transaction fails validation.
func New(txns ...model.Transaction) (*Ledger, error) {
	l := &Ledger{txns: make([]model.Transaction, 0, len(txns))}
	for i, t := range txns {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		l.txns = append(l.txns, t)
	}
	return l, nil
}

// Add appends a transaction and returns the new count. The ledger is
// unchanged when t is invalid; the model.ValidationError is returned as is.
func (l *Ledger) Add(t model.Transaction) (int, error) {
	if err := t.Validate(); err != nil {
		return len(l.txns), err
	}
	l.txns = append(l.txns, t)
	return len(l.txns), nil
}

// Record constructs a transaction stamped now and adds it.
func (l *Ledger) Record(amount decimal.Decimal, kind model.Kind, category, description string) (model.Transaction, error) {
	t, err := model.NewTransaction(amount, kind, category, description)
	if err != nil {
		return model.Transaction{}, err
	}
	if _, err := l.Add(t); err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

// Len returns the number of transactions.
func (l *Ledger) Len() int {
	return len(l.txns)
}

// All yields every transaction in insertion order. The sequence can be
// ranged over any number of times.
func (l *Ledger) All() iter.Seq[model.Transaction] {
	return func(yield func(model.Transaction) bool) {
		for _, t := range l.txns {
			if !yield(t) {
				return
			}
		}
	}
}

// Transactions returns a copy of the transactions in insertion order.
func (l *Ledger) Transactions() []model.Transaction {
	return slices.Clone(l.txns)
}

// Filter returns the transactions for which keep reports true.
func (l *Ledger) Filter(keep func(model.Transaction) bool) []model.Transaction {
	var out []model.Transaction
	for _, t := range l.txns {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Balance returns total income minus total expenses.
func (l *Ledger) Balance() decimal.Decimal {
	bal := decimal.Zero
	for _, t := range l.txns {
		bal = bal.Add(t.Signed())
	}
	return bal
}

// Totals returns the income and expense sums separately.
func (l *Ledger) Totals() (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for _, t := range l.txns {
		switch t.Kind {
		case model.KindIncome:
			income = income.Add(t.Amount)
		case model.KindExpense:
			expense = expense.Add(t.Amount)
		}
	}
	return income, expense
}

// SummaryByCategory returns how much was spent per category. Income is
// not included; see Breakdown for both kinds.
func (l *Ledger) SummaryByCategory() map[string]decimal.Decimal {
	summary := make(map[string]decimal.Decimal)
	for _, t := range l.txns {
		if t.Kind != model.KindExpense {
			continue
		}
		summary[t.Category] = summary[t.Category].Add(t.Amount)
	}
	return summary
}

// Breakdown returns one total per {category, kind} pair, income first,
// then by category name.
func (l *Ledger) Breakdown() []CategoryTotal {
	type key struct {
		category string
		kind     model.Kind
	}
	totals := make(map[key]*CategoryTotal)
	for _, t := range l.txns {
		k := key{t.Category, t.Kind}
		ct, ok := totals[k]
		if !ok {
			ct = &CategoryTotal{Category: t.Category, Kind: t.Kind, Total: decimal.Zero}
			totals[k] = ct
		}
		ct.Total = ct.Total.Add(t.Amount)
		ct.Count++
	}

	out := make([]CategoryTotal, 0, len(totals))
	for _, ct := range totals {
		out = append(out, *ct)
	}
	slices.SortFunc(out, func(a, b CategoryTotal) int {
		if a.Kind != b.Kind {
			if a.Kind == model.KindIncome {
				return -1
			}
			return 1
		}
		switch {
		case a.Category < b.Category:
			return -1
		case a.Category > b.Category:
			return 1
		}
		return 0
	})
	return out
}

// Categories returns the sorted category names present in the ledger.
func (l *Ledger) Categories() []string {
	seen := make(map[string]struct{})
	for _, t := range l.txns {
		seen[t.Category] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
