package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/composeviz/pkg/pipeline"
)

// watchDebounce collapses the burst of events one save produces.
const watchDebounce = 150 * time.Millisecond

// watchCommand creates the watch command, which re-validates a document
// every time it is written.
func (c *CLI) watchCommand() *cobra.Command {
	var flags pipelineFlags

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-validate a compose document whenever it changes",
		Long: `Validate a compose document, then watch it and print a fresh report after
every save. Press Ctrl+C to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := flags.options(cmd, c.Config.Layout)
			if err != nil {
				return err
			}
			if args[0] == stdinArg {
				return fmt.Errorf("watch needs a file, not stdin")
			}

			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			check := func() {
				if err := c.checkOnce(cmd, runner, args[0], opts); err != nil {
					printError(cmd.OutOrStdout(), "%v", err)
				}
			}
			check()
			return watchFile(ctx, args[0], check)
		},
	}

	flags.registerCache(cmd)
	return cmd
}

// checkOnce validates path and prints the report.
func (c *CLI) checkOnce(cmd *cobra.Command, runner *pipeline.Runner, path string, opts pipeline.Options) error {
	text, name, err := c.readDocument(cmd, path)
	if err != nil {
		return err
	}
	report, _, err := runner.ValidateWithCacheInfo(cmd.Context(), text, opts)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, StyleDim.Render(time.Now().Format("15:04:05")))
	printReport(w, name, report)
	fmt.Fprintln(w)
	return nil
}

// watchFile calls onChange after path is written or created, until ctx is
// done. The parent directory is watched so editors that save by renaming a
// temp file over path keep triggering events.
func watchFile(ctx context.Context, path string, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger := loggerFromContext(ctx)
	logger.Info("watching", "file", path)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			logger.Debug("file event", "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}
