// Package config loads nexus process configuration from defaults, an optional
// .env file, an optional YAML file and NEXUS_ environment variables, in that
// order of precedence (later wins).
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	gferrors "github.com/vnykmshr/nexus/pkg/common/errors"
	"github.com/vnykmshr/nexus/pkg/common/validation"
	"github.com/vnykmshr/nexus/pkg/metrics"
	"github.com/vnykmshr/nexus/pkg/processing/manager"
	"github.com/vnykmshr/nexus/pkg/processing/reporter"
)

// EnvPrefix is the prefix of environment overrides. A double underscore
// separates nesting levels: NEXUS_MANAGER__ERROR_LOG_SIZE sets
// manager.error_log_size.
const EnvPrefix = "NEXUS_"

// DefaultEnvFile is read when Options.EnvFile is empty. A missing file is not an error.
const DefaultEnvFile = ".env"

// Config is the nexus process configuration.
type Config struct {
	Log      LogConfig      `koanf:"log"`
	Manager  ManagerConfig  `koanf:"manager"`
	Reporter ReporterConfig `koanf:"reporter"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text, json
}

// ManagerConfig mirrors manager.Config.
type ManagerConfig struct {
	ErrorLogSize int     `koanf:"error_log_size"`
	Capacity     float64 `koanf:"capacity"` // dispatches per second, 0 disables
	Burst        int     `koanf:"burst"`
	Parallelism  int     `koanf:"parallelism"`
}

// ReporterConfig controls the periodic statistics report.
type ReporterConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Schedule string `koanf:"schedule"`
}

// MetricsConfig controls Prometheus instrumentation.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
}

// Options locate the optional configuration sources.
type Options struct {
	// File is a YAML configuration file. Empty means no file.
	File string

	// EnvFile is a dotenv file loaded into the process environment before
	// NEXUS_ variables are read. Empty means DefaultEnvFile.
	EnvFile string
}

var defaults = map[string]interface{}{
	"log.level":              "info",
	"log.format":             "text",
	"manager.error_log_size": manager.DefaultErrorLogSize,
	"manager.capacity":       float64(manager.DefaultCapacity),
	"manager.burst":          0,
	"manager.parallelism":    manager.DefaultParallelism,
	"reporter.enabled":       false,
	"reporter.schedule":      reporter.DefaultSchedule,
	"metrics.enabled":        false,
	"metrics.namespace":      metrics.DefaultNamespace,
}

// Load builds the configuration and validates it.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, err
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, gferrors.NewOperationError("config", "load", err).WithContext(envFile)
	}

	if opts.File != "" {
		if err := k.Load(file.Provider(opts.File), yaml.Parser()); err != nil {
			return nil, gferrors.NewOperationError("config", "load", err).WithContext(opts.File)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, gferrors.NewOperationError("config", "load", err).WithContext("environment")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, gferrors.NewOperationError("config", "unmarshal", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration Load produces with no file and no environment.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Manager: ManagerConfig{
			ErrorLogSize: manager.DefaultErrorLogSize,
			Capacity:     manager.DefaultCapacity,
			Parallelism:  manager.DefaultParallelism,
		},
		Reporter: ReporterConfig{Schedule: reporter.DefaultSchedule},
		Metrics:  MetricsConfig{Namespace: metrics.DefaultNamespace},
	}
}

// Validate checks values that are not validated by the components themselves.
func (c *Config) Validate() error {
	if err := validation.ValidateOneOf("config", "log.level", strings.ToLower(c.Log.Level), "debug", "info", "warn", "error"); err != nil {
		return err
	}
	if err := validation.ValidateOneOf("config", "log.format", c.Log.Format, "text", "json"); err != nil {
		return err
	}
	return c.ManagerConfig(nil, nil).Validate()
}

// ManagerConfig converts the manager section into a manager.Config.
func (c *Config) ManagerConfig(logger *slog.Logger, reg *metrics.Registry) manager.Config {
	return manager.Config{
		ErrorLogSize: c.Manager.ErrorLogSize,
		Capacity:     c.Manager.Capacity,
		Burst:        c.Manager.Burst,
		Parallelism:  c.Manager.Parallelism,
		Logger:       logger,
		Metrics:      reg,
	}
}

// ReporterConfig converts the reporter section into a reporter.Config.
func (c *Config) ReporterConfig(logger *slog.Logger, reg *metrics.Registry) reporter.Config {
	return reporter.Config{
		Schedule: c.Reporter.Schedule,
		Logger:   logger,
		Metrics:  reg,
	}
}

// MetricsConfig converts the metrics section into a metrics.Config.
func (c *Config) MetricsConfig() metrics.Config {
	cfg := metrics.DefaultConfig()
	cfg.Enabled = c.Metrics.Enabled
	if c.Metrics.Namespace != "" {
		cfg.Namespace = c.Metrics.Namespace
	}
	return cfg
}
