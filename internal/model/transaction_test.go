package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestNewTransaction(t *testing.T) {
	before := time.Now().UTC()
	txn, err := NewTransaction(dec("1000"), KindIncome, "salary", "October pay")
	require.NoError(t, err)

	assert.NotEmpty(t, txn.ID)
	assert.True(t, txn.Amount.Equal(dec("1000")))
	assert.Equal(t, KindIncome, txn.Kind)
	assert.Equal(t, "salary", txn.Category)
	assert.Equal(t, "October pay", txn.Description)
	assert.False(t, txn.Timestamp.Before(before.Truncate(time.Microsecond)), "timestamp should be construction time")
	assert.Equal(t, time.UTC, txn.Timestamp.Location())
}

func TestNewTransaction_FieldsEqualInputs(t *testing.T) {
	tests := []struct {
		amount      string
		kind        Kind
		category    string
		description string
	}{
		{"0.01", KindExpense, "food", ""},
		{"12.345", KindExpense, "transport", "bus, then \"metro\""},
		{"2500.50", KindIncome, "salary", "monthly"},
		{"1", KindIncome, "  gifts  ", "birthday"},
	}
	for _, tt := range tests {
		txn, err := NewTransaction(dec(tt.amount), tt.kind, tt.category, tt.description)
		require.NoError(t, err, "amount %s", tt.amount)
		assert.True(t, txn.Amount.Equal(dec(tt.amount)))
		assert.Equal(t, tt.kind, txn.Kind)
		assert.Equal(t, tt.category, txn.Category)
		assert.Equal(t, tt.description, txn.Description)
	}
}

func TestNewTransaction_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		kind     Kind
		category string
		field    string
	}{
		{"zero amount", "0", KindExpense, "food", "amount"},
		{"negative amount", "-5", KindExpense, "food", "amount"},
		{"tiny negative amount", "-0.0001", KindIncome, "salary", "amount"},
		{"unknown kind", "10", Kind("transfer"), "food", "kind"},
		{"empty kind", "10", Kind(""), "food", "kind"},
		{"empty category", "10", KindExpense, "", "category"},
		{"blank category", "10", KindExpense, " \t\n", "category"},
		{"carriage return in category", "10", KindExpense, "food\r\nrent", "category"},
		{"invalid utf-8 category", "10", KindExpense, "caf\xe9", "category"},
		{"carriage return in description", "10", KindExpense, "food", "description"},
		{"invalid utf-8 description", "10", KindExpense, "food", "description"},
	}
	descriptions := map[string]string{
		"carriage return in description": "line1\r\nline2",
		"invalid utf-8 description":      "caf\xe9",
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransaction(dec(tt.amount), tt.kind, tt.category, descriptions[tt.name])
			require.Error(t, err)

			var ve ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %T", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestNewTransaction_TextThatSurvivesEveryFormat(t *testing.T) {
	for _, desc := range []string{"line1\nline2", "café ☕", "tab\tseparated", ""} {
		_, err := NewTransaction(dec("1"), KindExpense, "food", desc)
		assert.NoError(t, err, "%q", desc)
	}
}

func TestNewTransaction_UniqueIDs(t *testing.T) {
	a, err := NewTransaction(dec("1"), KindIncome, "salary", "")
	require.NoError(t, err)
	b, err := NewTransaction(dec("1"), KindIncome, "salary", "")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRestore(t *testing.T) {
	ts := time.Date(2025, 1, 3, 9, 30, 0, 123456789, time.FixedZone("CET", 3600))

	txn, err := Restore("abc", dec("4.00"), KindExpense, "software", "GitHub", ts)
	require.NoError(t, err)
	assert.Equal(t, "abc", txn.ID)
	assert.True(t, txn.Timestamp.Equal(ts))
	assert.Equal(t, time.UTC, txn.Timestamp.Location())

	_, err = Restore("", dec("4.00"), KindExpense, "software", "", ts)
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "id", ve.Field)

	_, err = Restore("abc", dec("4.00"), KindExpense, "software", "", time.Time{})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "timestamp", ve.Field)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"income", KindIncome},
		{"expense", KindExpense},
		{" Expense ", KindExpense},
		{"INCOME", KindIncome},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "refund", "incomes"} {
		_, err := ParseKind(bad)
		var ve ValidationError
		assert.ErrorAs(t, err, &ve, "input %q", bad)
	}
}

func TestSigned(t *testing.T) {
	in := Transaction{Amount: dec("10.50"), Kind: KindIncome}
	out := Transaction{Amount: dec("10.50"), Kind: KindExpense}
	assert.True(t, in.Signed().Equal(dec("10.50")))
	assert.True(t, out.Signed().Equal(dec("-10.50")))
}

func TestValidate_ZeroValue(t *testing.T) {
	var txn Transaction
	assert.Error(t, txn.Validate())
}

func TestEqual(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := Transaction{ID: "x", Amount: dec("50"), Kind: KindExpense, Category: "food", Timestamp: ts}
	b := a
	b.Amount = dec("50.00")
	assert.True(t, a.Equal(b))

	b.Description = "lunch"
	assert.False(t, a.Equal(b))
}
