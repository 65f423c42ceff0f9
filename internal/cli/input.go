package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/composeviz/pkg/errors"
	"github.com/matzehuels/composeviz/pkg/pipeline"
)

// stdinArg is the file argument that reads the document from stdin.
const stdinArg = "-"

// readDocument reads the compose document named by arg, or stdin for "-".
// It returns the text and a display name.
func (c *CLI) readDocument(cmd *cobra.Command, arg string) (string, string, error) {
	if arg == stdinArg {
		data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), int64(c.Config.Server.MaxDocumentBytes)+1))
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return c.checkDocument(string(data), "stdin")
	}

	if err := errors.ValidatePath(arg); err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", errors.Wrap(errors.ErrCodeFileNotFound, err, "file not found: %s", arg)
		}
		return "", "", fmt.Errorf("read %s: %w", arg, err)
	}
	return c.checkDocument(string(data), arg)
}

// checkDocument applies the size and encoding limits. Blank documents pass;
// the validator reports them as invalid.
func (c *CLI) checkDocument(text, name string) (string, string, error) {
	if strings.TrimSpace(text) == "" {
		return text, name, nil
	}
	if err := errors.ValidateDocument(text, c.Config.Server.MaxDocumentBytes); err != nil {
		return "", "", err
	}
	return text, name, nil
}

// writeJSON writes v as indented JSON to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// =============================================================================
// Pipeline Flags
// =============================================================================

// pipelineFlags are the flags shared by the commands that run the pipeline.
// Flags the user did not set fall back to the [layout] config section.
type pipelineFlags struct {
	direction string
	engine    string
	dangling  string
	rankSep   float64
	nodeSep   float64
	noCache   bool
	refresh   bool
	output    string
}

func (f *pipelineFlags) registerCache(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached results")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write JSON to a file instead of stdout")
}

func (f *pipelineFlags) registerGraph(cmd *cobra.Command) {
	f.registerCache(cmd)
	cmd.Flags().StringVar(&f.dangling, "dangling", pipeline.DefaultDangling, "dangling reference policy: drop, keep or stub")
}

func (f *pipelineFlags) registerLayout(cmd *cobra.Command) {
	f.registerGraph(cmd)
	cmd.Flags().StringVarP(&f.direction, "direction", "d", string(pipeline.DefaultDirection), "rank direction: LR or TB")
	cmd.Flags().StringVarP(&f.engine, "engine", "e", pipeline.DefaultEngine, "layout engine: sugiyama or graphviz")
	cmd.Flags().Float64Var(&f.rankSep, "rank-sep", 0, "gap between ranks (0 = engine default)")
	cmd.Flags().Float64Var(&f.nodeSep, "node-sep", 0, "gap between nodes in a rank (0 = engine default)")
}

// options merges the flags over the configured layout defaults.
func (f *pipelineFlags) options(cmd *cobra.Command, cfg LayoutConfig) (pipeline.Options, error) {
	opts := cfg.options()
	changed := cmd.Flags().Changed
	if changed("direction") {
		opts.Direction = f.direction
	}
	if changed("engine") {
		opts.Engine = f.engine
	}
	if changed("dangling") {
		opts.Dangling = f.dangling
	}
	if changed("rank-sep") {
		opts.RankSep = f.rankSep
	}
	if changed("node-sep") {
		opts.NodeSep = f.nodeSep
	}
	opts.Refresh = f.refresh
	opts.Logger = loggerFromContext(cmd.Context())
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}
