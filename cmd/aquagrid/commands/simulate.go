package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/aquagrid/pkg/engine"
	"github.com/DrSkyle/aquagrid/pkg/engine/report"
	"github.com/DrSkyle/aquagrid/pkg/network"
	"github.com/DrSkyle/aquagrid/pkg/scenario"
)

var (
	isolateIDs   []string
	networkFile  string
	scenarioFile string
)

var SimulateCmd = &cobra.Command{
	Use:   "simulate [SEGMENT_ID]",
	Short: "Burst a pipe and report the nodes left dry",
	Long: `Burst one segment, or run every failure of a scenario file in order,
and report the nodes each failure cut off with remediation steps.

The network is generated from --seed unless --network points to a JSON
network document.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (len(args) == 1) == (scenarioFile != "") {
			return errors.New("give either a SEGMENT_ID or --scenario")
		}

		ctx := cmd.Context()
		eng, err := newEngine(ctx)
		if err != nil {
			return err
		}
		defer eng.Close(ctx)

		net, err := loadNetwork(cmd, eng)
		if err != nil {
			return err
		}

		var outcomes []*engine.Outcome
		if scenarioFile != "" {
			sc, err := scenario.Load(scenarioFile, scenario.Vars{
				LoopSize: eng.Config().Topology.LoopSize,
				Seed:     eng.Config().Topology.Seed,
			})
			if err != nil {
				return err
			}
			sc.Isolate = append(sc.Isolate, isolateIDs...)
			outcomes, err = eng.RunScenario(ctx, net, sc)
			if err != nil {
				return err
			}
		} else {
			o, err := eng.Simulate(ctx, net, args[0], isolateIDs...)
			if err != nil {
				return err
			}
			outcomes = append(outcomes, o)
		}

		for _, o := range outcomes {
			if err := eng.ExportOutcome(ctx, o); err != nil {
				return err
			}
		}

		if jsonOut {
			if len(outcomes) == 1 {
				return report.WriteJSON(cmd.OutOrStdout(), outcomes[0])
			}
			return report.WriteJSON(cmd.OutOrStdout(), outcomes)
		}
		for _, o := range outcomes {
			renderOutcome(cmd.OutOrStdout(), o)
		}
		return nil
	},
}

// loadNetwork reads --network, or builds the configured seed.
func loadNetwork(cmd *cobra.Command, eng *engine.Engine) (network.Network, error) {
	if networkFile == "" {
		return eng.Build(cmd.Context(), eng.Config().Topology.Seed)
	}

	data, err := os.ReadFile(networkFile)
	if err != nil {
		return network.Network{}, fmt.Errorf("failed to read network: %w", err)
	}
	var net network.Network
	if err := net.UnmarshalJSON(data); err != nil {
		return network.Network{}, fmt.Errorf("%s: %w", networkFile, err)
	}
	return network.WithReachability(net), nil
}

func init() {
	SimulateCmd.Flags().StringSliceVar(&isolateIDs, "isolate", nil, "Segments to isolate before the burst")
	SimulateCmd.Flags().StringVar(&networkFile, "network", "", "Network JSON document to use instead of --seed")
	SimulateCmd.Flags().StringVar(&scenarioFile, "scenario", "", "HCL scenario file")
}
