package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tally-ledger/tally/internal/model"
)

// FileName is the default config file name in a workspace root.
const FileName = "tally.yaml"

// Environment variables that override the config file.
const (
	EnvLedger   = "TALLY_LEDGER"
	EnvFormat   = "TALLY_FORMAT"
	EnvCurrency = "TALLY_CURRENCY"
)

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Ledger     LedgerConfig     `yaml:"ledger"`
	Currency   string           `yaml:"currency"`
	Categories CategoriesConfig `yaml:"categories"`
	Git        GitConfig        `yaml:"git"`
}

// LedgerConfig locates the ledger file.
type LedgerConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // json, csv, sqlite; empty = from extension
}

// CategoriesConfig lists the categories offered when adding interactively.
type CategoriesConfig struct {
	Income  []string `yaml:"income"`
	Expense []string `yaml:"expense"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a tally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault reads path, falling back to Default when it does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Path: "transactions.json",
		},
		Currency: "$",
		Categories: CategoriesConfig{
			Income:  []string{"salary", "freelance", "gifts", "other"},
			Expense: []string{"food", "transport", "housing", "utilities", "entertainment", "health", "other"},
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Tally",
			AuthorEmail: "tally@localhost",
		},
	}
}

// LoadDotEnv loads variables from a .env file into the process
// environment without overriding variables that are already set. A
// missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from TALLY_* variables found by lookup
// (usually os.LookupEnv). Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLedger); ok && v != "" {
		c.Ledger.Path = v
	}
	if v, ok := lookup(EnvFormat); ok && v != "" {
		c.Ledger.Format = v
	}
	if v, ok := lookup(EnvCurrency); ok && v != "" {
		c.Currency = v
	}
}

// LedgerPath resolves the ledger path against the workspace root.
func (c *Config) LedgerPath(root string) string {
	if filepath.IsAbs(c.Ledger.Path) {
		return c.Ledger.Path
	}
	return filepath.Join(root, c.Ledger.Path)
}

// CategoriesFor returns the configured categories for a kind.
func (c *Config) CategoriesFor(kind model.Kind) []string {
	if kind == model.KindIncome {
		return c.Categories.Income
	}
	return c.Categories.Expense
}
