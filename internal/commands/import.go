package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tally-ledger/tally/internal/importer"
	"github.com/tally-ledger/tally/internal/ledger"
)

const defaultImportCategory = "uncategorized"

func newImportCommand(opts *options) *cobra.Command {
	var bank, category string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import transactions from a bank CSV export",
		Long: `Import transactions from a bank CSV export.

With no file, every CSV in the workspace's import/ directory is imported
and then moved to import/processed/. Statement lines already in the
ledger are skipped, so importing the same file twice is harmless.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := importer.DefaultRegistry().Get(bank)
			if parser == nil {
				return fmt.Errorf("unknown bank format %q", bank)
			}

			ws, err := openWorkspace(cmd, opts)
			if err != nil {
				return err
			}
			l, err := ws.load()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				return runImportFile(ws, l, parser, args[0], category)
			}
			return runImportScan(ws, l, parser, category)
		},
	}

	cmd.Flags().StringVar(&bank, "bank", "chase", "bank export format")
	cmd.Flags().StringVar(&category, "category", defaultImportCategory, "category for imported transactions")

	return cmd
}

func runImportFile(ws *workspace, l *ledger.Ledger, parser importer.Parser, path, category string) error {
	added, total, err := importFile(l, parser, path, category)
	if err != nil {
		return err
	}
	if added > 0 {
		if err := ws.save(l); err != nil {
			return err
		}
	}
	ws.track("import", fmt.Sprintf("%d transactions from %s", added, filepath.Base(path)), "")
	ws.out.Success(fmt.Sprintf("Imported %d of %d transactions from %s", added, total, filepath.Base(path)))
	return nil
}

func runImportScan(ws *workspace, l *ledger.Ledger, parser importer.Parser, category string) error {
	files, err := importer.Scan(ws.root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		ws.out.Infof("No files in %s", filepath.Join(ws.root, "import"))
		return nil
	}

	added := 0
	for _, f := range files {
		n, total, err := importFile(l, parser, f.Path, category)
		if err != nil {
			return err
		}
		ws.logger.Info("imported", "file", f.Name, "added", n, "rows", total)
		added += n
	}

	if err := ws.save(l); err != nil {
		return err
	}
	for _, f := range files {
		if err := importer.MarkProcessed(ws.root, f.Name); err != nil {
			return err
		}
	}

	ws.track("import", fmt.Sprintf("%d transactions from %d file(s)", added, len(files)), "")
	ws.out.Success(fmt.Sprintf("Imported %d transactions from %d file(s)", added, len(files)))
	return nil
}

// importFile parses one bank export into l and reports how many
// transactions were new and how many the file held.
func importFile(l *ledger.Ledger, parser importer.Parser, path, category string) (added, total int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := parser.Parse(f)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	txns, err := importer.Transactions(rows, category)
	if err != nil {
		return 0, 0, fmt.Errorf("converting %s: %w", filepath.Base(path), err)
	}
	added, err = importer.AddNew(l, txns)
	if err != nil {
		return added, len(txns), err
	}
	return added, len(txns), nil
}
