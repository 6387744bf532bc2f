package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind classifies a transaction as money in or money out.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Kinds lists the recognized kinds in display order.
var Kinds = []Kind{KindIncome, KindExpense}

// Valid reports whether k is a recognized kind.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// ParseKind converts user input such as " Expense " to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", ValidationError{Field: "kind", Reason: fmt.Sprintf("%q is not income or expense", s)}
	}
	return k, nil
}

// Transaction is one recorded income or expense.
//
// Transactions are values: a Ledger keeps its own copy of each one, so
// changing a returned Transaction never changes committed state.
type Transaction struct {
	ID          string
	Amount      decimal.Decimal // always positive; Kind carries the sign
	Kind        Kind
	Category    string
	Description string
	Timestamp   time.Time // UTC, no monotonic reading
}

// NewTransaction validates its inputs and returns a Transaction stamped
// with the current time and a fresh ID.
func NewTransaction(amount decimal.Decimal, kind Kind, category, description string) (Transaction, error) {
	t := Transaction{
		ID:          uuid.NewString(),
		Amount:      amount,
		Kind:        kind,
		Category:    category,
		Description: description,
		Timestamp:   time.Now().UTC().Round(0),
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// Restore rebuilds a previously persisted transaction.
func Restore(id string, amount decimal.Decimal, kind Kind, category, description string, ts time.Time) (Transaction, error) {
	t := Transaction{
		ID:          id,
		Amount:      amount,
		Kind:        kind,
		Category:    category,
		Description: description,
		Timestamp:   ts.UTC().Round(0),
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// Validate checks every invariant a committed transaction must hold.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if !t.Amount.IsPositive() {
		return ValidationError{Field: "amount", Reason: fmt.Sprintf("%s must be greater than 0", t.Amount)}
	}
	if !t.Kind.Valid() {
		return ValidationError{Field: "kind", Reason: fmt.Sprintf("%q is not income or expense", string(t.Kind))}
	}
	if strings.TrimSpace(t.Category) == "" {
		return ValidationError{Field: "category", Reason: "must not be empty"}
	}
	if err := checkText("category", t.Category); err != nil {
		return err
	}
	if err := checkText("description", t.Description); err != nil {
		return err
	}
	if t.Timestamp.IsZero() {
		return ValidationError{Field: "timestamp", Reason: "must be set"}
	}
	return nil
}

// checkText rejects text that a ledger file cannot hold byte for byte:
// CSV readers fold \r\n to \n and JSON encoders replace invalid UTF-8.
func checkText(field, s string) error {
	if !utf8.ValidString(s) {
		return ValidationError{Field: field, Reason: "must be valid UTF-8"}
	}
	if strings.ContainsRune(s, '\r') {
		return ValidationError{Field: field, Reason: "must not contain carriage returns"}
	}
	return nil
}

// Signed returns the amount as it affects the balance: positive for
// income, negative for expenses.
func (t Transaction) Signed() decimal.Decimal {
	if t.Kind == KindExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Equal reports whether two transactions hold the same values. Amounts
// and timestamps are compared by value, so 50 equals 50.00.
func (t Transaction) Equal(o Transaction) bool {
	return t.ID == o.ID &&
		t.Amount.Equal(o.Amount) &&
		t.Kind == o.Kind &&
		t.Category == o.Category &&
		t.Description == o.Description &&
		t.Timestamp.Equal(o.Timestamp)
}
