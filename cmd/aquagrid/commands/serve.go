package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/DrSkyle/aquagrid/pkg/engine"
	"github.com/DrSkyle/aquagrid/pkg/server"
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve the network, simulation, sweep and feed endpoints over HTTP.
Prometheus metrics are exposed on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		eng, err := newEngine(ctx, engine.WithMetricsRegisterer(reg))
		if err != nil {
			return err
		}
		defer eng.Close(context.Background())

		srv, err := server.New(eng, reg)
		if err != nil {
			return err
		}
		return srv.Run(ctx)
	},
}

func init() {
	ServeCmd.Flags().String("addr", ":8080", "Listen address")
	ServeCmd.Flags().String("api-key", "", "Required Authorization header value (empty disables auth)")
	bindFlag("server.addr", ServeCmd.Flags().Lookup("addr"))
	bindFlag("server.api_key", ServeCmd.Flags().Lookup("api-key"))
}
