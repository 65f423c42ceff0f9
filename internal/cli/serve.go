package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/composeviz/internal/server"
	"github.com/matzehuels/composeviz/pkg/buildinfo"
	"github.com/matzehuels/composeviz/pkg/observability"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the analysis pipeline, snapshots and share links over HTTP.

The cache and snapshot store backends come from the [cache] and [store]
sections of the config file; with the redis cache and the mongo store,
several replicas share results and snapshots.`,
		Example: `  composeviz serve --addr :9000
  composeviz serve --config /etc/composeviz/config.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			if metrics {
				prom := observability.NewPrometheus(prometheus.DefaultRegisterer)
				observability.SetPipelineHooks(prom)
				observability.SetCacheHooks(prom)
				observability.SetHTTPHooks(prom)
				defer observability.Reset()
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}

			c.Logger.Info("starting server",
				"version", buildinfo.Version,
				"cache", c.Config.Cache.Backend,
				"store", c.Config.Store.Backend)

			srv := server.New(server.Config{
				Addr:             cfg.Addr,
				MaxDocumentBytes: cfg.MaxDocumentBytes,
				ShareBaseURL:     cfg.ShareBaseURL,
				SnapshotTTL:      c.Config.Store.TTL.Duration,
				RequestTimeout:   cfg.RequestTimeout.Duration,
				Version:          buildinfo.Version,
			}, runner, st, c.Logger)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (default [server] addr)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "record prometheus metrics")
	return cmd
}
