package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-ledger/tally/internal/ledger"
	"github.com/tally-ledger/tally/internal/model"
)

// BankRow is one parsed line of a bank statement export.
type BankRow struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = money out, positive = money in
	Reference   string          // stable per statement line; becomes the transaction ID
	Type        string          // bank transaction type (ACH_DEBIT, etc.)
}

// Parser converts a bank CSV file into BankRows.
type Parser interface {
	Parse(r io.Reader) ([]BankRow, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file waiting in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	return r
}

// Transactions turns bank rows into ledger transactions filed under
// category. Rows with a zero amount carry no money and are skipped.
func Transactions(rows []BankRow, category string) ([]model.Transaction, error) {
	var txns []model.Transaction
	for i, row := range rows {
		if row.Amount.IsZero() {
			continue
		}
		kind := model.KindIncome
		if row.Amount.IsNegative() {
			kind = model.KindExpense
		}
		t, err := model.Restore(row.Reference, row.Amount.Abs(), kind, category, row.Description, row.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// AddNew adds the transactions whose ID is not already in l and returns
// how many were added. Re-importing a statement is therefore harmless.
func AddNew(l *ledger.Ledger, txns []model.Transaction) (int, error) {
	seen := make(map[string]bool, l.Len())
	for t := range l.All() {
		seen[t.ID] = true
	}
	added := 0
	for _, t := range txns {
		if seen[t.ID] {
			continue
		}
		if _, err := l.Add(t); err != nil {
			return added, fmt.Errorf("adding %s: %w", t.ID, err)
		}
		seen[t.ID] = true
		added++
	}
	return added, nil
}

// importDir is the subdirectory for statements waiting to be imported.
const importDir = "import"

// processedDir is the subdirectory for imported statements.
const processedDir = "import/processed"

// Scan returns CSV files in <root>/import/.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(root, fileName string) error {
	src := filepath.Join(root, importDir, fileName)
	dstDir := filepath.Join(root, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
