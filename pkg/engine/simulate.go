package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DrSkyle/aquagrid/pkg/engine/notifier"
	"github.com/DrSkyle/aquagrid/pkg/engine/policy"
	"github.com/DrSkyle/aquagrid/pkg/network"
)

// Outcome is one simulated failure as reported to users.
type Outcome struct {
	RunID           string                   `json:"run_id"`
	At              time.Time                `json:"at"`
	Segment         network.Segment          `json:"segment"`
	DryNodes        []string                 `json:"dry_nodes"`
	PreExisting     []string                 `json:"pre_existing_dry,omitempty"`
	Impact          network.Impact           `json:"impact"`
	Recommendations []network.Recommendation `json:"recommendations"`
	Rules           []policy.Match           `json:"rules"`
	Note            string                   `json:"note,omitempty"`

	// Network is the state after the failure.
	Network network.Network `json:"-"`
}

// Escalated reports whether an escalate rule matched.
func (o *Outcome) Escalated() bool {
	return policy.Escalates(o.Rules)
}

// Isolate closes each listed segment in order.
func (e *Engine) Isolate(net network.Network, ids []string) (network.Network, error) {
	var err error
	for _, id := range ids {
		net, err = network.IsolateSegment(net, id)
		if err != nil {
			return network.Network{}, err
		}
	}
	return net, nil
}

// Simulate isolates the given segments, bursts segmentID, evaluates the
// escalation rules and alerts when one escalates. net is never modified.
func (e *Engine) Simulate(ctx context.Context, net network.Network, segmentID string, isolate ...string) (out *Outcome, err error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.Simulate", trace.WithAttributes(
		attribute.String("segment.id", segmentID),
		attribute.Int("segment.isolated", len(isolate)),
	))
	defer span.End()

	// Crash safety.
	defer e.recoverPanic(ctx, &err)

	start := time.Now()

	net, err = e.Isolate(net, isolate)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	report, err := e.Simulator.SimulateFailure(net, segmentID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var matches []policy.Match
	if e.Rules != nil {
		matches, err = e.Rules.Evaluate(ctx, policy.FactsFor(report))
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	out = &Outcome{
		RunID:           uuid.NewString(),
		At:              time.Now().UTC(),
		Segment:         report.Segment,
		DryNodes:        report.DryNodes,
		PreExisting:     report.PreExisting,
		Impact:          report.Impact,
		Recommendations: report.Recommendations,
		Rules:           matches,
		Network:         report.Network,
	}
	if out.DryNodes == nil {
		out.DryNodes = []string{}
	}
	if out.Rules == nil {
		out.Rules = []policy.Match{}
	}

	span.SetAttributes(
		attribute.String("run.id", out.RunID),
		attribute.Int("impact.affected", out.Impact.AffectedNodes),
		attribute.Int("impact.population", out.Impact.EstimatedPopulation),
		attribute.Bool("impact.escalated", out.Escalated()),
	)
	recordSimulation(ctx, time.Since(start), string(out.Segment.Class), out.Impact.AffectedNodes, out.Escalated())

	e.Logger.Info("Failure simulated",
		"run_id", out.RunID,
		"segment", segmentID,
		"dry", out.Impact.AffectedNodes,
		"population", out.Impact.EstimatedPopulation,
		"rules", len(out.Rules),
	)

	if out.Escalated() {
		e.alert(ctx, out)
	}

	return out, nil
}

// alert posts the outcome to Slack. Delivery failures are logged, not returned.
func (e *Engine) alert(ctx context.Context, o *Outcome) {
	if !e.Notifier.Enabled() {
		return
	}

	ids := make([]string, 0, len(o.Rules))
	for _, m := range o.Rules {
		ids = append(ids, m.ID)
	}

	err := e.Notifier.SendBurstAlert(ctx, notifier.BurstAlert{
		RunID:           o.RunID,
		Segment:         o.Segment,
		DryNodes:        o.DryNodes,
		Impact:          o.Impact,
		Recommendations: o.Recommendations,
		Rules:           ids,
		At:              o.At,
	})
	recordAlert(ctx, err == nil)
	if err != nil {
		e.Logger.Warn("Burst alert failed", "run_id", o.RunID, "error", err)
	}
}
