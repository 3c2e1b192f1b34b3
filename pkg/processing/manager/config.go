package manager

import (
	"log/slog"

	"github.com/vnykmshr/nexus/pkg/common/validation"
	"github.com/vnykmshr/nexus/pkg/metrics"
)

// Default configuration values.
const (
	DefaultErrorLogSize = 50
	DefaultCapacity     = 1000
	DefaultParallelism  = 4
)

// Config holds manager configuration options.
type Config struct {
	// ErrorLogSize bounds the recovery error log. Oldest entries are evicted.
	ErrorLogSize int

	// Capacity is the number of dispatches allowed per second.
	// Zero disables throttling.
	Capacity float64

	// Burst is the number of dispatches that may start back to back.
	// If zero, Capacity is used.
	Burst int

	// Parallelism bounds how many jobs RunBatch runs at once.
	Parallelism int

	// Logger receives dispatch and recovery records. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Metrics records dispatch, chain and recovery outcomes. If nil, metrics are disabled.
	Metrics *metrics.Registry
}

// DefaultConfig returns the configuration used by New.
func DefaultConfig() Config {
	return Config{
		ErrorLogSize: DefaultErrorLogSize,
		Capacity:     DefaultCapacity,
		Parallelism:  DefaultParallelism,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if err := validation.ValidatePositive("manager", "error_log_size", c.ErrorLogSize); err != nil {
		return err
	}
	if err := validation.ValidateNonNegative("manager", "capacity", c.Capacity); err != nil {
		return err
	}
	if err := validation.ValidateNonNegative("manager", "burst", float64(c.Burst)); err != nil {
		return err
	}
	return validation.ValidatePositive("manager", "parallelism", c.Parallelism)
}
