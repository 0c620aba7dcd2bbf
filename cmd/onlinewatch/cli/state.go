package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"onlinewatch/internal/app"
	"onlinewatch/internal/log"
	"onlinewatch/internal/monitor"
	"onlinewatch/internal/prefs"
)

func newStateCommand(root *rootOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Print the persisted connectivity state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := root.load(cmd.Flags())
			if err != nil {
				return err
			}
			defer log.Sync(logger)

			if err := os.MkdirAll(cfg.DataDirectory, 0o755); err != nil {
				return fmt.Errorf("create data directory: %w", err)
			}
			store, err := prefs.Open(cfg.PrefsPath())
			if err != nil {
				return fmt.Errorf("open prefs: %w", err)
			}
			if err := printState(cmd.OutOrStdout(), store); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchState(cmd.Context(), cmd.OutOrStdout(), store, logger)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep running and print the state whenever it changes.")
	return cmd
}

func printState(w io.Writer, store *prefs.Store) error {
	state := monitor.ReadState(store)

	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("PHASE", string(monitor.PersistedPhase(store)))
	table.AddRow(monitor.KeyIsOnline, state.IsOnline)
	table.AddRow(monitor.KeyOnlineSince, valueOrDash(state.OnlineSince))
	table.AddRow(monitor.KeyOfflineSince, valueOrDash(state.OfflineSince))
	table.AddRow(app.KeyInstallationID, valueOrDash(store.Get(app.KeyInstallationID)))
	_, err := fmt.Fprintln(w, table)
	return err
}

// watchState reprints the state whenever the prefs file is rewritten. The
// directory is watched because the store replaces the file by rename.
func watchState(ctx context.Context, w io.Writer, store *prefs.Store, logger log.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(store.Path())
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(store.Path())

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Create|fsnotify.Write|fsnotify.Rename) {
				continue
			}
			if err := store.Reload(); err != nil {
				logger.Warn("reload prefs", "error", err.Error())
				continue
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
			if err := printState(w, store); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error(err, "watch prefs")
		}
	}
}

func valueOrDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
