package config

import "time"

// TopologyConfig drives the synthetic network builder. Distances are in degrees.
type TopologyConfig struct {
	Seed              uint64  `mapstructure:"seed"`
	LoopSize          int     `mapstructure:"loop_size" validate:"gte=3"`
	Radius            float64 `mapstructure:"radius" validate:"gte=0"`
	CenterLat         float64 `mapstructure:"center_lat" validate:"gte=-90,lte=90"`
	CenterLng         float64 `mapstructure:"center_lng" validate:"gte=-180,lte=180"`
	BranchLength      float64 `mapstructure:"branch_length" validate:"gte=0"`
	Jitter            float64 `mapstructure:"jitter" validate:"gte=0"`
	ZoneRadius        float64 `mapstructure:"zone_radius" validate:"gte=0"`
	SensorProbability float64 `mapstructure:"sensor_probability" validate:"gte=0,lte=1"`
}

type ImpactConfig struct {
	// PopulationPerDemand is the estimated residents behind one demand node.
	PopulationPerDemand int `mapstructure:"population_per_demand" validate:"gte=0"`
}

type SweepConfig struct {
	// Concurrency bounds simultaneous simulations.
	Concurrency int `mapstructure:"concurrency" validate:"gte=1,lte=256"`
	// Top limits ranked output. Zero keeps every segment.
	Top int `mapstructure:"top" validate:"gte=0"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
	// APIKey must match the Authorization header. Empty disables the check.
	APIKey          string        `mapstructure:"api_key"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
	// CacheSize is the number of per-seed baselines kept in memory.
	CacheSize int `mapstructure:"cache_size" validate:"gte=1"`
	// CORSOrigins lists browser origins allowed to call the API. "*" allows
	// any origin; empty disables CORS.
	CORSOrigins []string `mapstructure:"cors_origins" validate:"dive,required"`
}

type NotifyConfig struct {
	SlackWebhook string        `mapstructure:"slack_webhook" validate:"omitempty,url"`
	SlackChannel string        `mapstructure:"slack_channel"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type PolicyConfig struct {
	// RulesFile is a YAML list of escalation rules. Empty uses the built-in set.
	RulesFile string `mapstructure:"rules_file"`
}

type TelemetryConfig struct {
	// OTLPEndpoint enables trace export when set.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name" validate:"required"`
	JSONLogs     bool   `mapstructure:"json_logs"`
	LogLevel     string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
}

type OutputConfig struct {
	// Dir is a local directory or s3://bucket/prefix. Empty skips export.
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format" validate:"oneof=json csv"`
}
