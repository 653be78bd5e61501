package engine

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/DrSkyle/aquagrid/pkg/engine/report"
	"github.com/DrSkyle/aquagrid/pkg/network"
)

// Sweep bursts every critical segment of net independently and ranks all
// segments by the population left dry, then affected nodes, then priority
// score, then id. Non-critical segments cannot leave a node dry and are
// ranked with zero impact. top <= 0 keeps every segment.
func (e *Engine) Sweep(ctx context.Context, net network.Network, top int) (entries []report.SweepEntry, err error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.Sweep")
	defer span.End()

	// Crash safety.
	defer e.recoverPanic(ctx, &err)

	start := time.Now()

	critical := make(map[string]bool)
	for _, id := range network.Bridges(net) {
		critical[id] = true
	}

	entries = make([]report.SweepEntry, len(net.Segments))
	for i, s := range net.Segments {
		entries[i] = report.SweepEntry{
			SegmentID: s.ID,
			Class:     string(s.Class),
			Priority:  s.PriorityScore,
			Critical:  critical[s.ID],
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Sweep.Concurrency)
	for i := range entries {
		if !entries[i].Critical {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := e.Simulator.SimulateFailure(net, entries[i].SegmentID)
			if err != nil {
				return err
			}
			// Each goroutine owns entries[i].
			entries[i].Affected = r.Impact.AffectedNodes
			entries[i].DryDemand = r.Impact.DryDemandNodes
			entries[i].Population = r.Impact.EstimatedPopulation
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	Rank(entries)
	if top > 0 && top < len(entries) {
		entries = entries[:top]
	}

	span.SetAttributes(
		attribute.Int("sweep.segments", len(net.Segments)),
		attribute.Int("sweep.critical", len(critical)),
	)
	recordSweep(ctx, time.Since(start), len(net.Segments))
	e.Logger.Info("Sweep complete", "segments", len(net.Segments), "critical", len(critical), "duration", time.Since(start))

	return entries, nil
}

// Rank orders entries by impact and numbers them from 1.
func Rank(entries []report.SweepEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Population != b.Population {
			return a.Population > b.Population
		}
		if a.Affected != b.Affected {
			return a.Affected > b.Affected
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.SegmentID < b.SegmentID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}
