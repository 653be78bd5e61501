package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/DrSkyle/aquagrid/pkg/config"
	"github.com/DrSkyle/aquagrid/pkg/engine"
	"github.com/DrSkyle/aquagrid/pkg/version"
)

var (
	cfgFile string
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "aquagrid",
	Short: "Water network failure analysis",
	Long: `aquagrid - Municipal Water Network Topology Engine

Build. Burst. Rank.`,
	Version:       version.Current,
	SilenceUsage:  true,
	SilenceErrors: true,
	// Run: nil (Forces help output).
	Run: nil,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent Flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default $HOME/.aquagrid.yaml)")
	pf.Uint64("seed", config.DefaultSeed, "Topology seed")
	pf.String("out", "", "Export directory or s3://bucket/prefix")
	pf.String("format", config.DefaultFormat, "Export format (json or csv)")
	pf.String("log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	pf.String("slack-webhook", "", "Slack Webhook URL for escalated bursts")
	pf.String("rules", "", "Escalation rules file (YAML)")
	pf.BoolVar(&jsonOut, "json", false, "Print results as JSON")
	pf.Bool("json-logs", false, "Emit logs as JSON")

	bindFlag("topology.seed", pf.Lookup("seed"))
	bindFlag("output.dir", pf.Lookup("out"))
	bindFlag("output.format", pf.Lookup("format"))
	bindFlag("telemetry.log_level", pf.Lookup("log-level"))
	bindFlag("telemetry.json_logs", pf.Lookup("json-logs"))
	bindFlag("notify.slack_webhook", pf.Lookup("slack-webhook"))
	bindFlag("policy.rules_file", pf.Lookup("rules"))

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderHelp(cmd)
	})

	rootCmd.AddCommand(NetworkCmd)
	rootCmd.AddCommand(SimulateCmd)
	rootCmd.AddCommand(SweepCmd)
	rootCmd.AddCommand(ServeCmd)
	rootCmd.AddCommand(FeedsCmd)
}

func bindFlag(key string, f *pflag.Flag) {
	if err := viper.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("bind %s: %v", key, err))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.SetConfigFile(filepath.Join(home, ".aquagrid.yaml"))
			viper.SetConfigType("yaml")
		}
	}
	setDefaults(config.Default())
	viper.SetEnvPrefix("AQUAGRID")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing file is fine; a broken one is reported by loadConfig.
	_ = viper.ReadInConfig()
}

// setDefaults registers every key so environment variables can override it.
func setDefaults(d config.Config) {
	defaults := map[string]any{
		"topology.seed":               d.Topology.Seed,
		"topology.loop_size":          d.Topology.LoopSize,
		"topology.radius":             d.Topology.Radius,
		"topology.center_lat":         d.Topology.CenterLat,
		"topology.center_lng":         d.Topology.CenterLng,
		"topology.branch_length":      d.Topology.BranchLength,
		"topology.jitter":             d.Topology.Jitter,
		"topology.zone_radius":        d.Topology.ZoneRadius,
		"topology.sensor_probability": d.Topology.SensorProbability,

		"impact.population_per_demand": d.Impact.PopulationPerDemand,

		"sweep.concurrency": d.Sweep.Concurrency,
		"sweep.top":         d.Sweep.Top,

		"server.addr":             d.Server.Addr,
		"server.api_key":          d.Server.APIKey,
		"server.read_timeout":     d.Server.ReadTimeout,
		"server.write_timeout":    d.Server.WriteTimeout,
		"server.shutdown_timeout": d.Server.ShutdownTimeout,
		"server.cache_size":       d.Server.CacheSize,
		"server.cors_origins":     d.Server.CORSOrigins,

		"notify.slack_webhook": d.Notify.SlackWebhook,
		"notify.slack_channel": d.Notify.SlackChannel,
		"notify.timeout":       d.Notify.Timeout,

		"policy.rules_file": d.Policy.RulesFile,

		"telemetry.otlp_endpoint": d.Telemetry.OTLPEndpoint,
		"telemetry.service_name":  d.Telemetry.ServiceName,
		"telemetry.json_logs":     d.Telemetry.JSONLogs,
		"telemetry.log_level":     d.Telemetry.LogLevel,

		"output.dir":    d.Output.Dir,
		"output.format": d.Output.Format,
	}
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

// loadConfig merges defaults, the config file, AQUAGRID_* variables and flags.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// newEngine loads configuration and starts an engine. The caller closes it.
func newEngine(ctx context.Context, opts ...engine.Option) (*engine.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := engine.NewLogger(os.Stderr, cfg.Telemetry.JSONLogs, cfg.Telemetry.LogLevel)
	return engine.New(ctx, append([]engine.Option{engine.WithConfig(cfg), engine.WithLogger(logger)}, opts...)...)
}

func renderHelp(cmd *cobra.Command) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("AQUAGRID %s", version.Current)))
	fmt.Println("Municipal water network topology and failure analysis.")

	fmt.Println(titleStyle.Render("USAGE"))
	fmt.Printf("  %s\n\n", cmd.UseLine())

	if cmd.HasAvailableSubCommands() {
		fmt.Println(titleStyle.Render("COMMANDS"))
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() {
				fmt.Printf("  %-12s %s\n", c.Name(), c.Short)
			}
		}
		fmt.Println("")
	}

	if cmd == rootCmd {
		fmt.Println(titleStyle.Render("EXAMPLES"))
		fmt.Println("  aquagrid network --seed 7                  # Summary of a generated network")
		fmt.Println("  aquagrid simulate PIPE-BRANCH-1 --json     # Burst one pipe")
		fmt.Println("  aquagrid sweep --top 5 --out s3://ops/gis  # Rank critical pipes")
		fmt.Println("")
	}

	fmt.Println(titleStyle.Render("FLAGS"))
	visit := func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		output := fmt.Sprintf("  --%-15s %s", f.Name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" && f.DefValue != "[]" {
			output += fmt.Sprintf(" (default %s)", f.DefValue)
		}
		fmt.Println(flagStyle.Render(output))
	}
	cmd.LocalFlags().VisitAll(visit)
	cmd.InheritedFlags().VisitAll(visit)
	fmt.Println("")
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00B4D8")).MarginBottom(1)
	flagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555"))
)
