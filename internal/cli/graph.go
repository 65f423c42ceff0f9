package cli

import (
	"github.com/spf13/cobra"
)

// graphCommand creates the graph command: document in, graph JSON out.
func (c *CLI) graphCommand() *cobra.Command {
	var flags pipelineFlags

	cmd := &cobra.Command{
		Use:   "graph <file|->",
		Short: "Print the graph of a compose document as JSON",
		Long: `Build the node/edge graph of a compose document.

Services, networks and volumes become nodes; depends_on, links, networks and
named volume mounts become edges. References to undeclared entities are
dropped, kept, or given stub nodes depending on --dangling.`,
		Example: `  composeviz graph compose.yml
  composeviz graph --dangling stub compose.yml
  cat compose.yml | composeviz graph -`,
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
			parsed, cached, err := runner.ParseWithCacheInfo(ctx, text, opts)
			if err != nil {
				return err
			}
			prog.done("Parsed " + name)
			opts.Logger.Debug("graph", "outcome", parsed.Outcome, "cached", cached)

			if err := writeJSON(cmd.OutOrStdout(), flags.output, parsed.Graph); err != nil {
				return err
			}
			if flags.output != "" {
				w := cmd.ErrOrStderr()
				printSuccess(w, "Graph written")
				printFile(w, flags.output)
				printStats(w, parsed.Graph.NodeCount(), parsed.Graph.EdgeCount(), 0, cached)
			}
			return nil
		},
	}

	flags.registerGraph(cmd)
	return cmd
}
