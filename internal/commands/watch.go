package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// debounceDelay absorbs the several events an editor or an atomic
// rename produces for one save.
const debounceDelay = 100 * time.Millisecond

func newWatchCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the balance again whenever the ledger changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, opts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, ws)
		},
	}
}

func runWatch(ctx context.Context, ws *workspace) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Saves replace the file by rename, so watch its directory.
	if err := watcher.Add(filepath.Dir(ws.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(ws.path), err)
	}

	if err := ws.printBalance(); err != nil {
		return err
	}
	ws.logger.Info("watching", "ledger", ws.path)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != ws.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			debounce = time.After(debounceDelay)

		case <-debounce:
			debounce = nil
			if err := ws.printBalance(); err != nil {
				ws.logger.Error("failed to reload ledger", "err", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			ws.logger.Warn("file watcher error", "err", err)
		}
	}
}

func (w *workspace) printBalance() error {
	l, err := w.load()
	if err != nil {
		return err
	}
	w.out.Infof("%s", time.Now().Format("15:04:05"))
	w.out.Balance(l)
	return nil
}
