package network

import "fmt"

// DefaultPopulationPerDemand is the estimated residents served per demand node.
const DefaultPopulationPerDemand = 45

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeveritySuccess  Severity = "success"
)

// Recommendation is a single remediation step.
type Recommendation struct {
	Title    string   `json:"title"`
	Action   string   `json:"action"`
	Severity Severity `json:"type"`
}

// Impact quantifies the nodes left dry by a failure.
type Impact struct {
	AffectedNodes       int `json:"affected_nodes"`
	DryDemandNodes      int `json:"dry_demand_nodes"`
	EstimatedPopulation int `json:"estimated_population"`
}

// Analyzer turns a dry set into impact figures and remediation guidance.
type Analyzer struct {
	PopulationPerDemand int
}

// DefaultAnalyzer uses DefaultPopulationPerDemand.
var DefaultAnalyzer = Analyzer{PopulationPerDemand: DefaultPopulationPerDemand}

func (a Analyzer) DeriveImpact(dry []Node) Impact {
	impact := Impact{AffectedNodes: len(dry)}
	for _, n := range dry {
		if n.Kind() == KindDemand {
			impact.DryDemandNodes++
		}
	}
	impact.EstimatedPopulation = impact.DryDemandNodes * a.PopulationPerDemand
	return impact
}

// DeriveRecommendations always leads with valve isolation of the failed
// segment, followed by a bypass warning when anything ran dry or a success
// note when the loop kept every node supplied. dry must be in network order.
func (a Analyzer) DeriveRecommendations(failed Segment, dry []Node) []Recommendation {
	recs := []Recommendation{{
		Title:    "Isolate Burst",
		Action:   fmt.Sprintf("Close valves at %s and %s", failed.Source, failed.Target),
		Severity: SeverityCritical,
	}}

	if len(dry) > 0 {
		return append(recs, Recommendation{
			Title:    "Bypass Required",
			Action:   fmt.Sprintf("Check for auxiliary connections near %s", dry[0].ID()),
			Severity: SeverityWarning,
		})
	}
	return append(recs, Recommendation{
		Title:    "Redundancy Effective",
		Action:   "Loop system maintaining supply to all downstream nodes.",
		Severity: SeveritySuccess,
	})
}
