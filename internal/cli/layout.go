package cli

import (
	"github.com/spf13/cobra"
)

// layoutCommand creates the layout command: document in, positioned graph
// JSON out.
func (c *CLI) layoutCommand() *cobra.Command {
	var flags pipelineFlags

	cmd := &cobra.Command{
		Use:   "layout <file|->",
		Short: "Compute a layout for a compose document",
		Long: `Parse a compose document and assign every node a size and a top-left
position. The sugiyama engine is built in; the graphviz engine runs dot.

Results are cached by document and options; --no-cache disables the cache
and --refresh recomputes and overwrites entries.`,
		Example: `  composeviz layout compose.yml
  composeviz layout --direction TB --engine graphviz compose.yml -o layout.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := flags.options(cmd, c.Config.Layout)
			if err != nil {
				return err
			}
			text, name, err := c.readDocument(cmd, args[0])
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(opts.Logger)
			stop := func() {}
			if flags.output != "" {
				spin := newSpinner(ctx, cmd.ErrOrStderr(), "Laying out "+name+"...")
				spin.Start()
				stop = spin.Stop
			}
			defer stop()
			parsed, _, err := runner.ParseWithCacheInfo(ctx, text, opts)
			if err != nil {
				return err
			}
			l, cached, err := runner.LayoutWithCacheInfo(ctx, parsed.Graph, opts)
			if err != nil {
				return err
			}
			stop()
			prog.done("Laid out " + name)

			if err := writeJSON(cmd.OutOrStdout(), flags.output, l); err != nil {
				return err
			}
			if flags.output != "" {
				w := cmd.ErrOrStderr()
				printSuccess(w, "Layout written (%s, %s)", l.Engine, l.Direction)
				printFile(w, flags.output)
				printStats(w, len(l.Nodes), len(l.Edges), 0, cached)
			}
			return nil
		},
	}

	flags.registerLayout(cmd)
	return cmd
}
