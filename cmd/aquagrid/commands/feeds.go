package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/aquagrid/pkg/engine/report"
	"github.com/DrSkyle/aquagrid/pkg/feeds"
)

var feedKinds = map[string]func(*feeds.Feeds) any{
	"alerts":      func(f *feeds.Feeds) any { return f.Alerts },
	"work-orders": func(f *feeds.Feeds) any { return f.WorkOrders },
	"quality":     func(f *feeds.Feeds) any { return f.WaterQuality },
	"tips":        func(f *feeds.Feeds) any { return f.Tips },
}

var FeedsCmd = &cobra.Command{
	Use:       "feeds {alerts|work-orders|quality|tips}",
	Short:     "Print an operations feed as JSON",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"alerts", "work-orders", "quality", "tips"},
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := feeds.Default()
		if err != nil {
			return err
		}
		pick, ok := feedKinds[args[0]]
		if !ok {
			return fmt.Errorf("unknown feed %q", args[0])
		}
		return report.WriteJSON(cmd.OutOrStdout(), pick(f))
	},
}
