// Package config defines aquagrid configuration and its defaults.
package config

import "time"

// Config is the root configuration. Keys mirror ~/.aquagrid.yaml and the
// AQUAGRID_* environment variables.
type Config struct {
	Topology  TopologyConfig  `mapstructure:"topology"`
	Impact    ImpactConfig    `mapstructure:"impact"`
	Sweep     SweepConfig     `mapstructure:"sweep"`
	Server    ServerConfig    `mapstructure:"server"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Policy    PolicyConfig    `mapstructure:"policy"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Output    OutputConfig    `mapstructure:"output"`
}

// Defaults.
const (
	DefaultSeed        uint64 = 1
	DefaultAddr               = ":8080"
	DefaultLogLevel           = "info"
	DefaultFormat             = "json"
	DefaultServiceName        = "aquagrid"
)

// Default returns a configuration with sensible default values.
func Default() Config {
	return Config{
		Topology:  DefaultTopologyConfig(),
		Impact:    DefaultImpactConfig(),
		Sweep:     DefaultSweepConfig(),
		Server:    DefaultServerConfig(),
		Notify:    DefaultNotifyConfig(),
		Telemetry: DefaultTelemetryConfig(),
		Output:    OutputConfig{Format: DefaultFormat},
	}
}

// DefaultTopologyConfig returns the reference city layout.
func DefaultTopologyConfig() TopologyConfig {
	return TopologyConfig{
		Seed:              DefaultSeed,
		LoopSize:          8,
		Radius:            0.015,
		CenterLat:         22.5726,
		CenterLng:         88.3639,
		BranchLength:      0.008,
		Jitter:            0.004,
		ZoneRadius:        0.005,
		SensorProbability: 0.30,
	}
}

func DefaultImpactConfig() ImpactConfig {
	return ImpactConfig{PopulationPerDemand: 45}
}

func DefaultSweepConfig() SweepConfig {
	return SweepConfig{Concurrency: 8, Top: 10}
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            DefaultAddr,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		CacheSize:       16,
		CORSOrigins:     []string{"*"},
	}
}

func DefaultNotifyConfig() NotifyConfig {
	return NotifyConfig{Timeout: 10 * time.Second}
}

func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		ServiceName: DefaultServiceName,
		LogLevel:    DefaultLogLevel,
	}
}
