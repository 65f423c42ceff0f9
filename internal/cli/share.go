package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/composeviz/pkg/share"
)

// shareCommand creates the share command group.
func (c *CLI) shareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Encode and decode share links",
		Long: `Share links carry a whole compose document in the URL, so they need no
server. Tokens are compatible with links produced by the web editor.`,
	}

	cmd.AddCommand(c.shareEncodeCommand())
	cmd.AddCommand(c.shareDecodeCommand())

	return cmd
}

func (c *CLI) shareEncodeCommand() *cobra.Command {
	var base string

	cmd := &cobra.Command{
		Use:   "encode <file|->",
		Short: "Print the share token (or link) of a compose document",
		Example: `  composeviz share encode compose.yml
  composeviz share encode --base https://composeviz.example.com/ compose.yml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, _, err := c.readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			if base == "" {
				base = c.Config.Server.ShareBaseURL
			}
			if base == "" {
				fmt.Fprintln(cmd.OutOrStdout(), share.Encode(text))
				return nil
			}
			link, err := share.URL(base, text)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "print a full link with this base URL (default [server] share_base_url)")
	return cmd
}

func (c *CLI) shareDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <token|url>",
		Short: "Print the compose document carried by a share token or link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				text string
				err  error
			)
			if strings.Contains(args[0], "://") {
				text, err = share.FromURL(args[0])
			} else {
				text, err = share.Decode(args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			if !strings.HasSuffix(text, "\n") {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
}
