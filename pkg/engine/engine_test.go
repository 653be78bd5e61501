package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/DrSkyle/aquagrid/pkg/config"
	"github.com/DrSkyle/aquagrid/pkg/engine/notifier"
	"github.com/DrSkyle/aquagrid/pkg/engine/policy"
	"github.com/DrSkyle/aquagrid/pkg/network"
	"github.com/DrSkyle/aquagrid/pkg/scenario"
	"github.com/DrSkyle/aquagrid/pkg/storage"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithoutTelemetry(), WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	eng, err := New(context.Background(), opts...)
	require.NoError(t, err)
	return eng
}

func TestEngineInitialization(t *testing.T) {
	eng := newTestEngine(t)

	assert.NotNil(t, eng.Logger)
	assert.NotNil(t, eng.Rules)
	assert.Nil(t, eng.Store)
	assert.False(t, eng.Notifier.Enabled())
	assert.Equal(t, network.DefaultPopulationPerDemand, eng.Simulator.Analyzer.PopulationPerDemand)
	assert.NoError(t, eng.Close(context.Background()))
}

func TestEngineConfigValidation(t *testing.T) {
	cfg := config.Default()
	cfg.Sweep.Concurrency = 0

	_, err := New(context.Background(), WithoutTelemetry(), WithConfig(cfg))
	assert.ErrorContains(t, err, "Sweep.Concurrency")
}

func TestEngineBuild(t *testing.T) {
	eng := newTestEngine(t)

	net, err := eng.Build(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, net.Nodes, 26)
	assert.Len(t, net.Segments, 26)
	for _, n := range net.Nodes {
		assert.True(t, n.Supplied(), n.ID())
	}

	cfg := config.Default()
	cfg.Topology.LoopSize = 2
	_, err = New(context.Background(), WithoutTelemetry(), WithConfig(cfg))
	assert.Error(t, err, "loop size below 3 is rejected by config validation")
}

func TestEngineSimulateEscalates(t *testing.T) {
	var alerts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		alerts.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	eng := newTestEngine(t, WithNotifier(notifier.NewSlackClient(srv.URL, "", time.Second)))
	net, err := eng.Build(context.Background(), 1)
	require.NoError(t, err)

	out, err := eng.Simulate(context.Background(), net, "PIPE-BRANCH-1")
	require.NoError(t, err)

	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, []string{"DIST-1", "HOUSE-1-0", "HOUSE-1-1", "HOUSE-1-2"}, out.DryNodes)
	assert.Equal(t, 135, out.Impact.EstimatedPopulation)
	assert.True(t, out.Escalated())
	assert.Equal(t, "large-outage", out.Rules[0].ID)
	assert.Equal(t, int32(1), alerts.Load())
	assert.Equal(t, network.StateBurst, out.Segment.State)
}

func TestEngineSimulateFeederDoesNotEscalate(t *testing.T) {
	var alerts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		alerts.Add(1)
	}))
	defer srv.Close()

	eng := newTestEngine(t, WithNotifier(notifier.NewSlackClient(srv.URL, "", time.Second)))
	net, err := eng.Build(context.Background(), 1)
	require.NoError(t, err)

	out, err := eng.Simulate(context.Background(), net, "PIPE-FEEDER-0")
	require.NoError(t, err)

	assert.Empty(t, out.DryNodes)
	assert.NotNil(t, out.DryNodes, "encodes as an empty list")
	assert.False(t, out.Escalated())
	assert.Contains(t, out.Rules, policy.Match{ID: "trunk-main", Action: policy.ActionWarn})
	assert.Zero(t, alerts.Load())
}

func TestEngineSimulateIsolateAndNotFound(t *testing.T) {
	eng := newTestEngine(t)
	net, err := eng.Build(context.Background(), 1)
	require.NoError(t, err)

	// With both loop pipes at J-0 closed, the north feeder is its only supply.
	out, err := eng.Simulate(context.Background(), net, "PIPE-FEEDER-0", "PIPE-LOOP-0", "PIPE-LOOP-7")
	require.NoError(t, err)
	assert.Equal(t, []string{"J-0"}, out.DryNodes)

	_, err = eng.Simulate(context.Background(), net, "PIPE-NOPE")
	assert.ErrorIs(t, err, network.ErrNotFound)

	_, err = eng.Simulate(context.Background(), net, "PIPE-FEEDER-0", "PIPE-NOPE")
	assert.ErrorIs(t, err, network.ErrNotFound)
}

func TestEngineSimulateRuleFailureMarksSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	eng := newTestEngine(t)
	eng.Tracer = tp.Tracer("aquagrid/engine")
	net, err := eng.Build(context.Background(), 1)
	require.NoError(t, err)

	// Rule evaluation is the first step that observes cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = eng.Simulate(ctx, net, "PIPE-BRANCH-1")
	require.ErrorIs(t, err, context.Canceled)

	var simulate sdktrace.ReadOnlySpan
	for _, s := range recorder.Ended() {
		if s.Name() == "Engine.Simulate" {
			simulate = s
		}
	}
	require.NotNil(t, simulate)
	assert.Equal(t, codes.Error, simulate.Status().Code)
	assert.Contains(t, simulate.Status().Description, "context canceled")
}

func TestEngineSweep(t *testing.T) {
	eng := newTestEngine(t)
	net, err := eng.Build(context.Background(), 1)
	require.NoError(t, err)

	all, err := eng.Sweep(context.Background(), net, 0)
	require.NoError(t, err)
	require.Len(t, all, len(net.Segments))

	for i, e := range all {
		assert.Equal(t, i+1, e.Rank)
		if i < 4 {
			assert.True(t, strings.HasPrefix(e.SegmentID, "PIPE-BRANCH-"), e.SegmentID)
			assert.Equal(t, 135, e.Population)
		}
		if i > 0 && all[i-1].Population == e.Population && all[i-1].Affected == e.Affected {
			assert.GreaterOrEqual(t, all[i-1].Priority, e.Priority)
		}
		if strings.HasPrefix(e.SegmentID, "PIPE-LOOP-") {
			assert.False(t, e.Critical)
			assert.Zero(t, e.Affected)
		}
	}

	top, err := eng.Sweep(context.Background(), net, 3)
	require.NoError(t, err)
	assert.Equal(t, all[:3], top)
}

func TestEngineSweepCancelled(t *testing.T) {
	eng := newTestEngine(t)
	net, err := eng.Build(context.Background(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = eng.Sweep(ctx, net, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineRunScenario(t *testing.T) {
	eng := newTestEngine(t)
	net, err := eng.Build(context.Background(), 1)
	require.NoError(t, err)

	sc := &scenario.Scenario{
		Name:    "split loop",
		Isolate: []string{"PIPE-LOOP-0", "PIPE-LOOP-7"},
		Failures: []scenario.Failure{
			{Segment: "PIPE-FEEDER-0", Note: "north main"},
			{Segment: "PIPE-LOOP-3"},
		},
	}

	outcomes, err := eng.RunScenario(context.Background(), net, sc)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, []string{"J-0"}, outcomes[0].DryNodes)
	assert.Equal(t, "north main", outcomes[0].Note)

	assert.Equal(t, []string{
		"J-1", "J-2", "J-3",
		"DIST-1", "HOUSE-1-0", "HOUSE-1-1", "HOUSE-1-2",
		"DIST-3", "HOUSE-3-0", "HOUSE-3-1", "HOUSE-3-2",
	}, outcomes[1].DryNodes)
	assert.Equal(t, []string{"J-0"}, outcomes[1].PreExisting)
	assert.Equal(t, 270, outcomes[1].Impact.EstimatedPopulation)

	sc.Failures = append(sc.Failures, scenario.Failure{Segment: "PIPE-NOPE"})
	outcomes, err = eng.RunScenario(context.Background(), net, sc)
	assert.ErrorIs(t, err, network.ErrNotFound)
	assert.Len(t, outcomes, 2)
}

func TestEngineExport(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Format = "csv"
	store := storage.NewLocalStore(t.TempDir())
	eng := newTestEngine(t, WithConfig(cfg), WithStore(store))
	ctx := context.Background()

	net, err := eng.Build(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, eng.ExportNetwork(ctx, net))

	doc, err := store.Get(ctx, KeyNetwork)
	require.NoError(t, err)
	var decoded network.Network
	require.NoError(t, json.Unmarshal(doc, &decoded))
	assert.Len(t, decoded.Segments, 26)

	inv, err := store.Get(ctx, "inventory.csv")
	require.NoError(t, err)
	assert.Equal(t, 27, strings.Count(string(inv), "\n"))

	out, err := eng.Simulate(ctx, net, "PIPE-BRANCH-3")
	require.NoError(t, err)
	require.NoError(t, eng.ExportOutcome(ctx, out))
	raw, err := store.Get(ctx, "outcomes/"+out.RunID+".json")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"run_id": "`+out.RunID)

	entries, err := eng.Sweep(ctx, net, 5)
	require.NoError(t, err)
	require.NoError(t, eng.ExportSweep(ctx, entries))

	keys, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"inventory.csv", "network.json", "outcomes/" + out.RunID + ".json", "sweep.csv"}, keys)
}

func TestEngineExportWithoutStore(t *testing.T) {
	eng := newTestEngine(t)
	assert.NoError(t, eng.ExportNetwork(context.Background(), network.Network{}))
	assert.NoError(t, eng.ExportSweep(context.Background(), nil))
}

func TestRecoverPanic(t *testing.T) {
	eng := newTestEngine(t)

	err := func() (err error) {
		defer eng.recoverPanic(context.Background(), &err)
		panic("boom")
	}()
	assert.ErrorIs(t, err, ErrPanic)
	assert.ErrorContains(t, err, "boom")
}

func TestRedactSensitiveData(t *testing.T) {
	tests := []struct {
		key      string
		redacted bool
	}{
		{"webhook", true},
		{"api_key", true},
		{"authorization", true},
		{"segment", false},
	}
	for _, tt := range tests {
		got := redactSensitiveData(nil, slog.String(tt.key, "value"))
		assert.Equal(t, tt.redacted, got.Value.String() == "[REDACTED]", tt.key)
	}
}

func TestNewLogger(t *testing.T) {
	var buf strings.Builder
	logger := NewLogger(&buf, true, "warn")

	logger.Info("hidden")
	logger.Warn("shown", "webhook", "https://hooks.slack.com/x")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"webhook":"[REDACTED]"`)
}
