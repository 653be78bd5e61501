package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DrSkyle/aquagrid/pkg/config"
	"github.com/DrSkyle/aquagrid/pkg/engine/notifier"
	"github.com/DrSkyle/aquagrid/pkg/engine/policy"
	"github.com/DrSkyle/aquagrid/pkg/network"
	"github.com/DrSkyle/aquagrid/pkg/storage"
	"github.com/DrSkyle/aquagrid/pkg/telemetry"
	"github.com/DrSkyle/aquagrid/pkg/version"
)

// ErrPanic is returned when an operation recovered from a panic.
var ErrPanic = errors.New("engine panic")

// Engine is the runtime core shared by the CLI and the HTTP server.
type Engine struct {
	// Core components.
	Logger    *slog.Logger
	Tracer    trace.Tracer
	Simulator network.Simulator
	Rules     *policy.CELEngine

	// Immutable config.
	config config.Config

	// External dependencies.
	Notifier *notifier.SlackClient
	Store    storage.BlobStore

	registerer    prometheus.Registerer
	skipTelemetry bool
	shutdown      func(context.Context) error
}

// Option defines a functional configuration override.
type Option func(*Engine)

// New initializes the Engine. Options are applied first; anything they left
// unset is derived from the configuration.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	// Safe defaults.
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		ReplaceAttr: redactSensitiveData,
	})
	e := &Engine{
		Logger: slog.New(handler),
		Tracer: otel.Tracer("aquagrid/engine"),
		config: config.Default(),
	}

	// Apply options.
	for _, opt := range opts {
		opt(e)
	}

	if err := e.config.Validate(); err != nil {
		return nil, err
	}

	slog.SetDefault(e.Logger)

	e.Simulator = network.Simulator{
		Analyzer: network.Analyzer{PopulationPerDemand: e.config.Impact.PopulationPerDemand},
	}

	if e.Rules == nil {
		rules, err := policy.LoadRules(e.config.Policy.RulesFile)
		if err != nil {
			return nil, err
		}
		cel, err := policy.NewCELEngine()
		if err != nil {
			return nil, err
		}
		if err := cel.Compile(rules); err != nil {
			return nil, err
		}
		e.Rules = cel
	}

	if e.Notifier == nil && e.config.Notify.SlackWebhook != "" {
		e.Notifier = notifier.NewSlackClient(e.config.Notify.SlackWebhook, e.config.Notify.SlackChannel, e.config.Notify.Timeout)
	}

	if e.Store == nil && e.config.Output.Dir != "" {
		store, err := storage.Open(ctx, e.config.Output.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open output %s: %w", e.config.Output.Dir, err)
		}
		e.Store = store
	}

	// Initialize telemetry.
	if !e.skipTelemetry {
		shutdown, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:    e.config.Telemetry.ServiceName,
			ServiceVersion: version.Current,
			Endpoint:       e.config.Telemetry.OTLPEndpoint,
			Registerer:     e.registerer,
		})
		if err != nil {
			e.Logger.Warn("Telemetry failed", "error", err)
		}
		e.shutdown = shutdown
	}

	return e, nil
}

// NewLogger returns a redacting JSON or text logger at level
// (debug, info, warn or error; anything else means info).
func NewLogger(w io.Writer, json bool, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl, ReplaceAttr: redactSensitiveData}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.Logger = l
		}
	}
}

// WithConfig sets raw config.
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) {
		e.config = cfg
	}
}

// WithStore sets the artifact store, overriding Output.Dir.
func WithStore(s storage.BlobStore) Option {
	return func(e *Engine) {
		e.Store = s
	}
}

// WithNotifier sets the Slack client, overriding the Notify section.
func WithNotifier(n *notifier.SlackClient) Option {
	return func(e *Engine) {
		e.Notifier = n
	}
}

// WithRules sets compiled escalation rules, overriding Policy.RulesFile.
func WithRules(r *policy.CELEngine) Option {
	return func(e *Engine) {
		e.Rules = r
	}
}

// WithMetricsRegisterer exports engine metrics to reg.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.registerer = reg
	}
}

// WithoutTelemetry leaves the global OpenTelemetry providers alone, for
// embedding in an application that already configured them.
func WithoutTelemetry() Option {
	return func(e *Engine) {
		e.skipTelemetry = true
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() config.Config {
	return e.config
}

// Close flushes telemetry.
func (e *Engine) Close(ctx context.Context) error {
	if e.shutdown == nil {
		return nil
	}
	return e.shutdown(ctx)
}

// BuildOptions translates the topology section into builder options.
func BuildOptions(t config.TopologyConfig, seed uint64) []network.BuildOption {
	return []network.BuildOption{
		network.WithSeed(seed),
		network.WithLoopSize(t.LoopSize),
		network.WithRadius(t.Radius),
		network.WithCenter(network.Coordinate{Lat: t.CenterLat, Lng: t.CenterLng}),
		network.WithBranchLength(t.BranchLength),
		network.WithJitter(t.Jitter),
		network.WithZoneRadius(t.ZoneRadius),
		network.WithSensorProbability(t.SensorProbability),
	}
}

// Build generates the network for seed with initial supply computed.
func (e *Engine) Build(ctx context.Context, seed uint64) (net network.Network, err error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.Build", trace.WithAttributes(
		attribute.Int64("network.seed", int64(seed)),
	))
	defer span.End()

	// Crash safety.
	defer e.recoverPanic(ctx, &err)

	built, err := network.Build(BuildOptions(e.config.Topology, seed)...)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return network.Network{}, err
	}
	net = network.WithReachability(built)

	span.SetAttributes(
		attribute.Int("network.nodes", len(net.Nodes)),
		attribute.Int("network.segments", len(net.Segments)),
	)
	e.Logger.Debug("Network built", "seed", seed, "nodes", len(net.Nodes), "segments", len(net.Segments))
	return net, nil
}

// recoverPanic turns a panic into ErrPanic on errp, recording it on a span.
func (e *Engine) recoverPanic(ctx context.Context, errp *error) {
	if r := recover(); r != nil {
		tr := otel.Tracer("aquagrid/engine")
		_, span := tr.Start(ctx, "CriticalPanic")

		stack := debug.Stack()

		// Record Exception in OTEL
		span.RecordError(fmt.Errorf("%v", r), trace.WithStackTrace(true))
		span.SetStatus(codes.Error, "CRITICAL FAILURE")
		span.SetAttributes(
			attribute.String("crash.stack", string(stack)),
			attribute.String("crash.reason", fmt.Sprintf("%v", r)),
		)
		span.End()

		e.Logger.Error("CRITICAL FAILURE", "error", r, "stack", string(stack))

		if errp != nil {
			*errp = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}
}

// redactSensitiveData scrubs sensitive keys from logs.
func redactSensitiveData(groups []string, a slog.Attr) slog.Attr {
	// List of keys to redact
	sensitiveKeys := map[string]bool{
		"password": true, "access_key": true, "token": true,
		"secret": true, "api_key": true, "auth_token": true,
		"authorization": true, "webhook": true, "slack_webhook": true,
		"credential": true, "connection_string": true,
	}

	if sensitiveKeys[a.Key] {
		return slog.Attr{
			Key:   a.Key,
			Value: slog.StringValue("[REDACTED]"),
		}
	}
	return a
}
