package cli

import (
	"github.com/spf13/cobra"
)

// analyzeCommand creates the analyze command, which runs the full pipeline.
func (c *CLI) analyzeCommand() *cobra.Command {
	var flags pipelineFlags

	cmd := &cobra.Command{
		Use:   "analyze <file|->",
		Short: "Print graph, layout and validation report as one JSON document",
		Long: `Run the whole pipeline: parse and lay out the document while validating
it concurrently, then print the merged result.`,
		Example: `  composeviz analyze compose.yml
  composeviz analyze --direction TB compose.yml -o analysis.json`,
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
				spin := newSpinner(ctx, cmd.ErrOrStderr(), "Analyzing "+name+"...")
				spin.Start()
				stop = spin.Stop
			}
			defer stop()
			res, cached, err := runner.AnalyzeWithCacheInfo(ctx, text, opts)
			if err != nil {
				return err
			}
			stop()
			prog.done("Analyzed " + name)

			if err := writeJSON(cmd.OutOrStdout(), flags.output, res); err != nil {
				return err
			}
			if flags.output != "" {
				w := cmd.ErrOrStderr()
				printSuccess(w, "Analysis written")
				printFile(w, flags.output)
				printStats(w, res.Stats.NodeCount, res.Stats.EdgeCount, res.Stats.IssueCount, cached)
			}
			return nil
		},
	}

	flags.registerLayout(cmd)
	return cmd
}
