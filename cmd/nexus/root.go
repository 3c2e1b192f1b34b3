package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/vnykmshr/nexus/internal/config"
	"github.com/vnykmshr/nexus/internal/logging"
	"github.com/vnykmshr/nexus/pkg/metrics"
)

// version is set at build time via -ldflags.
var version = "dev"

// app carries the state shared by subcommands once flags and config are resolved.
type app struct {
	flags struct {
		configFile string
		envFile    string
		logLevel   string
		logFormat  string
		metrics    bool
	}

	cfg      *config.Config
	registry *prometheus.Registry
	metrics  *metrics.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "nexus",
		Short: "Staged multi-format data processing pipelines",
		Long: "nexus parses JSON records, CSV headers and numeric streams, runs them\n" +
			"through validation, transformation and output stages, and reports\n" +
			"per-pipeline statistics.",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.dumpMetrics(cmd)
		},
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.flags.configFile, "config", "", "YAML configuration file")
	f.StringVar(&a.flags.envFile, "env-file", config.DefaultEnvFile, "dotenv file with NEXUS_ overrides")
	f.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&a.flags.logFormat, "log-format", "", "log format: text, json")
	f.BoolVar(&a.flags.metrics, "metrics", false, "print Prometheus metrics to stderr on exit")

	root.AddCommand(newDemoCmd(a))
	root.AddCommand(newRunCmd(a))
	root.AddCommand(newBatchCmd(a))
	return root
}

// setup loads configuration, applies flag overrides and initializes logging
// and metrics.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.Options{File: a.flags.configFile, EnvFile: a.flags.envFile})
	if err != nil {
		return err
	}
	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}
	if a.flags.logFormat != "" {
		cfg.Log.Format = a.flags.logFormat
	}
	if a.flags.metrics {
		cfg.Metrics.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.Log.Format, cmd.ErrOrStderr())

	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		mc := cfg.MetricsConfig()
		mc.Registry = a.registry
		a.metrics = metrics.NewRegistryWithConfig(mc)
	}

	a.cfg = cfg
	slog.Debug("configuration loaded",
		slog.String("config_file", a.flags.configFile),
		slog.Bool("metrics", cfg.Metrics.Enabled))
	return nil
}

// dumpMetrics writes the gathered metrics in text exposition format.
func (a *app) dumpMetrics(cmd *cobra.Command) error {
	if a.registry == nil {
		return nil
	}
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(cmd.ErrOrStderr(), expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
