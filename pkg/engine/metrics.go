package engine

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("aquagrid/engine")

var (
	simulationDuration metric.Float64Histogram
	simulationsTotal   metric.Int64Counter
	dryNodes           metric.Int64Histogram
	sweepDuration      metric.Float64Histogram
	alertsTotal        metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		simulationDuration, err = meter.Float64Histogram(
			"aquagrid_simulation_duration_seconds",
			metric.WithDescription("Duration of single failure simulations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		simulationsTotal, err = meter.Int64Counter(
			"aquagrid_simulations_total",
			metric.WithDescription("Total number of failure simulations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		dryNodes, err = meter.Int64Histogram(
			"aquagrid_dry_nodes",
			metric.WithDescription("Nodes cut off per simulated failure"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		sweepDuration, err = meter.Float64Histogram(
			"aquagrid_sweep_duration_seconds",
			metric.WithDescription("Duration of full network sweeps"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		alertsTotal, err = meter.Int64Counter(
			"aquagrid_alerts_total",
			metric.WithDescription("Burst alerts sent, by result"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordSimulation(ctx context.Context, duration time.Duration, class string, dry int, escalated bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("class", class),
		attribute.Bool("escalated", escalated),
	)
	simulationDuration.Record(ctx, duration.Seconds(), attrs)
	simulationsTotal.Add(ctx, 1, attrs)
	dryNodes.Record(ctx, int64(dry))
}

func recordSweep(ctx context.Context, duration time.Duration, segments int) {
	if err := initMetrics(); err != nil {
		return
	}
	sweepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.Int("segments", segments)))
}

func recordAlert(ctx context.Context, ok bool) {
	if err := initMetrics(); err != nil {
		return
	}
	alertsTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", ok)))
}
