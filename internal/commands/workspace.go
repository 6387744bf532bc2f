package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tally-ledger/tally/internal/activity"
	"github.com/tally-ledger/tally/internal/config"
	"github.com/tally-ledger/tally/internal/gitops"
	"github.com/tally-ledger/tally/internal/ledger"
	"github.com/tally-ledger/tally/internal/report"
	"github.com/tally-ledger/tally/internal/store"
)

// workspace is the resolved environment a command runs in: the config,
// where the ledger lives, and where output goes.
type workspace struct {
	root   string // directory holding the config file
	cfg    *config.Config
	path   string
	format store.Format
	logger *log.Logger
	out    *report.Printer
}

// timeNow stamps activity entries.
var timeNow = func() time.Time { return time.Now().UTC() }

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "tally",
		Level:  level,
	})
}

// openWorkspace loads the config and applies overrides in order:
// tally.yaml, then .env and TALLY_* variables, then flags.
func openWorkspace(cmd *cobra.Command, opts *options) (*workspace, error) {
	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)

	configPath, err := filepath.Abs(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	root := filepath.Dir(configPath)

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	if err := config.LoadDotEnv(filepath.Join(root, ".env")); err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)

	path := cfg.LedgerPath(root)
	if opts.ledgerPath != "" {
		if path, err = filepath.Abs(opts.ledgerPath); err != nil {
			return nil, fmt.Errorf("resolving ledger path: %w", err)
		}
	}
	format := cfg.Ledger.Format
	if opts.format != "" {
		format = opts.format
	}
	f, err := store.Resolve(path, format)
	if err != nil {
		return nil, err
	}

	logger.Debug("workspace", "root", root, "ledger", path, "format", f)
	return &workspace{
		root:   root,
		cfg:    cfg,
		path:   path,
		format: f,
		logger: logger,
		out:    report.New(cmd.OutOrStdout(), cfg.Currency),
	}, nil
}

// load reads the ledger. A ledger file that does not exist yet is an
// empty ledger.
func (w *workspace) load() (*ledger.Ledger, error) {
	start := time.Now()
	l, err := store.Load(w.path, w.format)
	if errors.Is(err, fs.ErrNotExist) {
		w.logger.Debug("ledger not found, starting empty", "path", w.path)
		return ledger.New()
	}
	if err != nil {
		return nil, err
	}
	w.logger.Debug("loaded ledger", "path", w.path, "transactions", l.Len(), "took", time.Since(start))
	return l, nil
}

func (w *workspace) save(l *ledger.Ledger) error {
	start := time.Now()
	if err := store.Save(l, w.path, w.format); err != nil {
		return err
	}
	w.logger.Debug("saved ledger", "path", w.path, "transactions", l.Len(), "took", time.Since(start))
	return nil
}

func (w *workspace) author() gitops.Author {
	return gitops.Author{Name: w.cfg.Git.AuthorName, Email: w.cfg.Git.AuthorEmail}
}

// track commits the ledger when auto-commit is on and appends an entry
// to the activity log. Failures are logged, not returned: the ledger has
// already been saved.
func (w *workspace) track(action, details, txnID string) {
	var hash string
	if w.cfg.Git.AutoCommit && gitops.IsRepo(w.root) {
		var err error
		hash, err = gitops.CommitPaths(w.root, action+": "+details, w.author(), w.trackedPaths()...)
		if err != nil {
			w.logger.Warn("failed to commit", "err", err)
		} else if hash != "" {
			w.logger.Debug("committed", "hash", hash)
		}
	}

	entry := activity.Entry{
		Timestamp:     timeNow(),
		Action:        action,
		Details:       details,
		TransactionID: txnID,
		CommitHash:    hash,
	}
	if err := activity.Append(w.root, entry); err != nil {
		w.logger.Warn("failed to write activity log", "err", err)
	}
}

// trackedPaths lists the workspace-relative paths committed after a change.
func (w *workspace) trackedPaths() []string {
	var paths []string
	if rel, err := filepath.Rel(w.root, w.path); err == nil && !strings.HasPrefix(rel, "..") {
		paths = append(paths, rel)
	}
	if _, err := os.Stat(activity.Path(w.root)); err == nil {
		rel, _ := filepath.Rel(w.root, activity.Path(w.root))
		paths = append(paths, rel)
	}
	return paths
}
