package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-ledger/tally/internal/model"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Ledger.Path = "money.csv"
	cfg.Ledger.Format = "csv"
	cfg.Currency = "€"
	cfg.Categories.Expense = []string{"food", "rent"}
	cfg.Git.AutoCommit = true

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "transactions.json", cfg.Ledger.Path)
	assert.Empty(t, cfg.Ledger.Format)
	assert.Equal(t, "$", cfg.Currency)
	assert.Contains(t, cfg.Categories.Income, "salary")
	assert.Contains(t, cfg.Categories.Expense, "food")
	assert.Contains(t, cfg.Categories.Expense, "transport")
	assert.False(t, cfg.Git.AutoCommit)
	assert.Equal(t, "Tally", cfg.Git.AuthorName)
	assert.Equal(t, "tally@localhost", cfg.Git.AuthorEmail)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("ledger:\n  path: ledger.db\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ledger.db", cfg.Ledger.Path)
	assert.Equal(t, "$", cfg.Currency)
	assert.NotEmpty(t, cfg.Categories.Expense)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("ledger: [unclosed\n"), 0o644))

	_, err := LoadOrDefault(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "path: transactions.json")
	assert.Contains(t, contents, "currency:")
	assert.Contains(t, contents, "auto_commit: false")
	assert.Contains(t, contents, "author_email: tally@localhost")
}

func TestApplyEnv(t *testing.T) {
	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("TALLY_LEDGER=/data/ledger.csv\nTALLY_FORMAT=csv\nTALLY_CURRENCY=\n"), 0o644))

	vars, err := godotenv.Read(dotenv)
	require.NoError(t, err)

	cfg := Default()
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	})
	assert.Equal(t, "/data/ledger.csv", cfg.Ledger.Path)
	assert.Equal(t, "csv", cfg.Ledger.Format)
	assert.Equal(t, "$", cfg.Currency, "empty values do not override")
}

func TestLoadDotEnv(t *testing.T) {
	const key = "TALLY_TEST_DOTENV_VALUE"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	dir := t.TempDir()
	require.NoError(t, LoadDotEnv(filepath.Join(dir, ".env")), "missing file is fine")

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o644))
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv(key))
}

func TestLedgerPath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("/work", "transactions.json"), cfg.LedgerPath("/work"))

	cfg.Ledger.Path = "/abs/ledger.csv"
	assert.Equal(t, "/abs/ledger.csv", cfg.LedgerPath("/work"))
}

func TestCategoriesFor(t *testing.T) {
	cfg := Default()
	assert.Equal(t, cfg.Categories.Income, cfg.CategoriesFor(model.KindIncome))
	assert.Equal(t, cfg.Categories.Expense, cfg.CategoriesFor(model.KindExpense))
}
