package engine

import (
	"context"
	"fmt"

	"github.com/DrSkyle/aquagrid/pkg/network"
	"github.com/DrSkyle/aquagrid/pkg/scenario"
)

// RunScenario isolates the scenario's segments, then applies its failures
// cumulatively. Each outcome reports only the nodes its own step cut off.
func (e *Engine) RunScenario(ctx context.Context, net network.Network, sc *scenario.Scenario) ([]*Outcome, error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.RunScenario")
	defer span.End()

	cur, err := e.Isolate(net, sc.Isolate)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}

	outcomes := make([]*Outcome, 0, len(sc.Failures))
	for i, f := range sc.Failures {
		o, err := e.Simulate(ctx, cur, f.Segment)
		if err != nil {
			return outcomes, fmt.Errorf("scenario %q step %d: %w", sc.Name, i+1, err)
		}
		o.Note = f.Note
		outcomes = append(outcomes, o)
		cur = o.Network
	}

	e.Logger.Info("Scenario complete", "scenario", sc.Name, "steps", len(outcomes))
	return outcomes, nil
}
