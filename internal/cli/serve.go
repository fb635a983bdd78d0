package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/foldgraph/internal/api"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts and renders over HTTP",
		Long: `Serve layouts and renders over HTTP.

Endpoints:
  GET  /healthz
  POST /v1/layout      graph, hidden ids and view in; layout JSON out
  POST /v1/render      same, plus render options; artifact out
  POST /v1/components  strongly connected components of the visible graph

Requests carry the whole graph, so the server keeps no per-client state.
With the redis or mongo cache backend, several servers share results.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			cfg := c.config().Server
			srv := api.NewServer(runner, c.Logger, cfg.MaxBodyBytes)
			return srv.ListenAndServe(ctx, cfg)
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
