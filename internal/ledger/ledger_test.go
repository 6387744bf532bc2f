package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-ledger/tally/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func record(t *testing.T, l *Ledger, kind model.Kind, category, amount string) model.Transaction {
	t.Helper()
	txn, err := l.Record(dec(amount), kind, category, "")
	require.NoError(t, err)
	return txn
}

func TestBalance_Empty(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	assert.True(t, l.Balance().IsZero())
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.SummaryByCategory())
	assert.Empty(t, l.Breakdown())
}

func TestScenario_SalaryFoodTransport(t *testing.T) {
	l, err := New()
	require.NoError(t, err)

	record(t, l, model.KindIncome, "salary", "1000")
	record(t, l, model.KindExpense, "food", "50")
	record(t, l, model.KindExpense, "transport", "20")

	assert.True(t, l.Balance().Equal(dec("930")), "balance: got %s", l.Balance())

	summary := l.SummaryByCategory()
	require.Len(t, summary, 2, "income categories are not part of the summary")
	assert.True(t, summary["food"].Equal(dec("50")))
	assert.True(t, summary["transport"].Equal(dec("20")))

	income, expense := l.Totals()
	assert.True(t, income.Equal(dec("1000")))
	assert.True(t, expense.Equal(dec("70")))
}

func TestBalance_SignedSum(t *testing.T) {
	l, err := New()
	require.NoError(t, err)

	entries := []struct {
		kind   model.Kind
		amount string
	}{
		{model.KindIncome, "2500.50"},
		{model.KindExpense, "300.25"},
		{model.KindExpense, "150"},
		{model.KindIncome, "0.01"},
		{model.KindExpense, "2100.26"},
	}
	want := decimal.Zero
	for _, e := range entries {
		txn := record(t, l, e.kind, "misc", e.amount)
		want = want.Add(txn.Signed())
	}
	assert.True(t, l.Balance().Equal(want))
	assert.True(t, l.Balance().Equal(dec("-50")), "got %s", l.Balance())
}

func TestAdd_InvalidLeavesLedgerUnchanged(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	record(t, l, model.KindIncome, "salary", "10")

	_, err = l.Record(dec("-5"), model.KindExpense, "food", "")
	var ve model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "amount", ve.Field)
	assert.Equal(t, 1, l.Len())

	n, err := l.Add(model.Transaction{})
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, l.Len())
	assert.True(t, l.Balance().Equal(dec("10")))
}

func TestAdd_ReturnsCount(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		txn, err := model.NewTransaction(dec("1"), model.KindExpense, "food", "")
		require.NoError(t, err)
		n, err := l.Add(txn)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
}

func TestNew_RejectsInvalid(t *testing.T) {
	good, err := model.NewTransaction(dec("1"), model.KindIncome, "salary", "")
	require.NoError(t, err)

	_, err = New(good, model.Transaction{ID: "x", Amount: dec("0"), Kind: model.KindIncome, Category: "salary", Timestamp: time.Now()})
	var ve model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), "transaction 2")
}

func TestAll_InsertionOrderAndRestartable(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	a := record(t, l, model.KindIncome, "salary", "1")
	b := record(t, l, model.KindExpense, "food", "2")
	c := record(t, l, model.KindExpense, "rent", "3")

	for pass := 0; pass < 2; pass++ {
		var ids []string
		for txn := range l.All() {
			ids = append(ids, txn.ID)
		}
		assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids, "pass %d", pass)
	}

	// Early break must not disturb later iterations.
	for range l.All() {
		break
	}
	assert.Len(t, l.Transactions(), 3)
}

func TestTransactions_ReturnsCopy(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	record(t, l, model.KindExpense, "food", "5")

	txns := l.Transactions()
	txns[0].Amount = dec("500")
	txns[0].Category = "hacked"

	for txn := range l.All() {
		assert.True(t, txn.Amount.Equal(dec("5")))
		assert.Equal(t, "food", txn.Category)
	}
}

func TestBreakdown(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	record(t, l, model.KindExpense, "gifts", "30")
	record(t, l, model.KindIncome, "salary", "1000")
	record(t, l, model.KindIncome, "gifts", "100")
	record(t, l, model.KindExpense, "food", "20")
	record(t, l, model.KindExpense, "food", "15.50")

	got := l.Breakdown()
	require.Len(t, got, 4)

	assert.Equal(t, CategoryTotal{Category: "gifts", Kind: model.KindIncome, Total: got[0].Total, Count: 1}, got[0])
	assert.True(t, got[0].Total.Equal(dec("100")))
	assert.Equal(t, "salary", got[1].Category)
	assert.Equal(t, model.KindIncome, got[1].Kind)
	assert.Equal(t, "food", got[2].Category)
	assert.Equal(t, model.KindExpense, got[2].Kind)
	assert.Equal(t, 2, got[2].Count)
	assert.True(t, got[2].Total.Equal(dec("35.50")))
	assert.Equal(t, "gifts", got[3].Category)
	assert.Equal(t, model.KindExpense, got[3].Kind)
}

func TestFilterAndCategories(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	record(t, l, model.KindExpense, "transport", "3")
	record(t, l, model.KindIncome, "salary", "10")
	record(t, l, model.KindExpense, "food", "4")

	expenses := l.Filter(func(t model.Transaction) bool { return t.Kind == model.KindExpense })
	require.Len(t, expenses, 2)
	assert.Equal(t, "transport", expenses[0].Category)
	assert.Equal(t, "food", expenses[1].Category)

	assert.Equal(t, []string{"food", "salary", "transport"}, l.Categories())
}
