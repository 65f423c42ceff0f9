package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/composeviz/pkg/validate"
)

// ErrInvalidDocument is returned by "validate" when the report has errors.
// main exits with status 1 without printing it; the report already says why.
var ErrInvalidDocument = errors.New("document is invalid")

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var (
		flags   pipelineFlags
		jsonOut bool
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "validate <file|->",
		Short: "Check a compose document for errors and risky settings",
		Long: `Validate a compose document and print a report of its problems:
missing services, networks and volumes, dependency cycles, host port
conflicts and security warnings.

The command exits with status 1 when the document has errors. With
--strict, warnings fail the check too.`,
		Example: `  composeviz validate compose.yml
  composeviz validate --json compose.yml | jq '.issues'`,
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

			report, _, err := runner.ValidateWithCacheInfo(ctx, text, opts)
			if err != nil {
				return err
			}

			if jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), flags.output, report); err != nil {
					return err
				}
			} else {
				w := cmd.OutOrStdout()
				printReport(w, name, report)
				if !report.IsValid && args[0] != stdinArg {
					printNextStep(w, "Browse the issues", appName+" inspect "+args[0])
				}
			}

			if !report.IsValid || (strict && report.Count(validate.SeverityWarning) > 0) {
				return ErrInvalidDocument
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	flags.registerCache(cmd)
	return cmd
}
