package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DrSkyle/aquagrid/pkg/engine"
	"github.com/DrSkyle/aquagrid/pkg/engine/report"
	"github.com/DrSkyle/aquagrid/pkg/network"
)

var (
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Width(22)
	valueStyle    = lipgloss.NewStyle().Bold(true)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#00B4D8")).Padding(0, 1)
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F1C40F"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ECC71"))
)

func row(label string, value any) string {
	return labelStyle.Render(label) + valueStyle.Render(fmt.Sprint(value))
}

func severityStyle(s network.Severity) lipgloss.Style {
	switch s {
	case network.SeverityCritical:
		return criticalStyle
	case network.SeverityWarning:
		return warningStyle
	default:
		return successStyle
	}
}

func renderSummary(w io.Writer, seed uint64, sum network.Summary) {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("NETWORK seed=%d", seed)),
		row("Nodes", sum.Nodes),
		row("  Sources", sum.ByKind[network.KindSource]),
		row("  Junctions", sum.ByKind[network.KindJunction]),
		row("  Distribution", sum.ByKind[network.KindDistribution]),
		row("  Demand", sum.ByKind[network.KindDemand]),
		row("Segments", sum.Segments),
		row("Critical segments", sum.Bridges),
		row("Supplied / dry", fmt.Sprintf("%d / %d", sum.Supplied, sum.Dry)),
		row("Burst / isolated", fmt.Sprintf("%d / %d", sum.BurstSegments, sum.IsolatedValves)),
		row("Supply islands", fmt.Sprintf("%d (%d unfed)", sum.Islands, sum.UnfedIslands)),
		row("Sensors", sum.Sensors),
		row("Replacement zones", sum.Zones),
	}
	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}

func renderOutcome(w io.Writer, o *engine.Outcome) {
	seg := o.Segment
	lines := []string{
		titleStyle.Render("BURST " + seg.ID),
		row("Run", o.RunID),
		row("Pipe", fmt.Sprintf("%s %dmm %s (%d)", seg.Class, seg.Diameter, seg.Material, seg.InstalledYear)),
		row("Nodes without water", o.Impact.AffectedNodes),
		row("Demand nodes dry", o.Impact.DryDemandNodes),
		row("Est. population", o.Impact.EstimatedPopulation),
	}
	if o.Note != "" {
		lines = append(lines, row("Note", o.Note))
	}
	if len(o.DryNodes) > 0 {
		lines = append(lines, row("Dry", strings.Join(o.DryNodes, ", ")))
	}
	if len(o.PreExisting) > 0 {
		lines = append(lines, row("Already dry", strings.Join(o.PreExisting, ", ")))
	}

	lines = append(lines, "", headerStyle.Render("Recommendations"))
	for _, r := range o.Recommendations {
		lines = append(lines, severityStyle(r.Severity).Render(fmt.Sprintf("[%s] %s: %s", r.Severity, r.Title, r.Action)))
	}

	if len(o.Rules) > 0 {
		ids := make([]string, 0, len(o.Rules))
		for _, m := range o.Rules {
			ids = append(ids, fmt.Sprintf("%s (%s)", m.ID, m.Action))
		}
		style := warningStyle
		if o.Escalated() {
			style = criticalStyle
		}
		lines = append(lines, "", headerStyle.Render("Rules"), style.Render(strings.Join(ids, ", ")))
	}

	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}

func renderSweep(w io.Writer, entries []report.SweepEntry) {
	lines := []string{
		titleStyle.Render("FAILURE IMPACT RANKING"),
		headerStyle.Render(fmt.Sprintf("%-4s %-16s %-11s %8s %5s %5s %10s", "#", "Segment", "Class", "Priority", "Dry", "Homes", "Population")),
	}
	for _, e := range entries {
		line := fmt.Sprintf("%-4d %-16s %-11s %8d %5d %5d %10d", e.Rank, e.SegmentID, e.Class, e.Priority, e.Affected, e.DryDemand, e.Population)
		switch {
		case e.Population > 0:
			line = criticalStyle.Render(line)
		case e.Critical:
			line = warningStyle.Render(line)
		}
		lines = append(lines, line)
	}
	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}
