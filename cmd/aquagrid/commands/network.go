package commands

import (
	"github.com/spf13/cobra"

	"github.com/DrSkyle/aquagrid/pkg/engine/report"
	"github.com/DrSkyle/aquagrid/pkg/network"
)

var NetworkCmd = &cobra.Command{
	Use:   "network",
	Short: "Build a network and summarize it",
	Long: `Generate the synthetic network for a seed, compute initial supply and
print a summary. With --out, the network document and segment inventory
are exported.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, err := newEngine(ctx)
		if err != nil {
			return err
		}
		defer eng.Close(ctx)

		seed := eng.Config().Topology.Seed
		net, err := eng.Build(ctx, seed)
		if err != nil {
			return err
		}
		if err := eng.ExportNetwork(ctx, net); err != nil {
			return err
		}

		sum := network.Summarize(net)
		if jsonOut {
			return report.WriteJSON(cmd.OutOrStdout(), map[string]any{
				"seed":    seed,
				"summary": sum,
				"network": net,
			})
		}
		renderSummary(cmd.OutOrStdout(), seed, sum)
		return nil
	},
}
