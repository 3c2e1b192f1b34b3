package reporter

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vnykmshr/nexus/pkg/common/errors"
	"github.com/vnykmshr/nexus/pkg/metrics"
)

// DefaultSchedule emits a report every minute.
const DefaultSchedule = "@every 1m"

// Source produces a report. *manager.Manager satisfies it.
type Source interface {
	Report(w io.Writer) error
}

// Config holds reporter configuration options.
type Config struct {
	// Schedule is a cron expression. Both 5-field and 6-field (leading
	// seconds) forms are accepted, as are descriptors such as "@hourly"
	// and "@every 30s". Defaults to DefaultSchedule.
	Schedule string

	// Output receives the reports. If nil, os.Stdout is used.
	Output io.Writer

	// Location is the time zone schedules are evaluated in. If nil, time.Local is used.
	Location *time.Location

	// Logger receives emission records. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Metrics counts emitted and failed reports. If nil, metrics are disabled.
	Metrics *metrics.Registry
}

// DefaultConfig returns a configuration that reports to stdout every minute.
func DefaultConfig() Config {
	return Config{Schedule: DefaultSchedule}
}

var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Reporter periodically writes a Source's report. Overlapping runs are skipped.
type Reporter struct {
	src      Source
	config   Config
	logger   *slog.Logger
	schedule cron.Schedule
	cron     *cron.Cron
	entry    cron.EntryID

	// mu serializes writes to Output between scheduled runs and RunOnce.
	mu sync.Mutex
}

// New creates a reporter for src. The schedule is validated but nothing runs
// until Start.
func New(src Source, config Config) (*Reporter, error) {
	if src == nil {
		return nil, errors.NewValidationError("reporter", "source", nil, "source cannot be nil")
	}
	if config.Schedule == "" {
		config.Schedule = DefaultSchedule
	}
	schedule, err := parser.Parse(config.Schedule)
	if err != nil {
		return nil, errors.NewValidationError("reporter", "schedule", config.Schedule, err.Error()).
			WithHint("use a cron expression such as '*/30 * * * * *' or a descriptor such as '@every 1m'")
	}
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "reporter"))

	r := &Reporter{
		src:      src,
		config:   config,
		logger:   logger,
		schedule: schedule,
	}

	cronLogger := cronLogAdapter{logger: logger}
	r.cron = cron.New(
		cron.WithParser(parser),
		cron.WithLocation(config.Location),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	r.entry = r.cron.Schedule(schedule, cron.FuncJob(func() {
		_ = r.RunOnce()
	}))

	return r, nil
}

// Start begins emitting reports in the background. Starting a running
// reporter has no effect.
func (r *Reporter) Start() {
	r.logger.Info("reporter started",
		slog.String("schedule", r.config.Schedule),
		slog.Time("next_run", r.NextRun()))
	r.cron.Start()
}

// Stop halts the schedule. The returned context is done once an in-flight
// report has finished.
func (r *Reporter) Stop() context.Context {
	ctx := r.cron.Stop()
	r.logger.Info("reporter stopped")
	return ctx
}

// RunOnce writes one report immediately.
func (r *Reporter) RunOnce() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.src.Report(r.config.Output)
	if err != nil {
		r.logger.Error("report failed", slog.String("error", err.Error()))
		r.count("failure")
		return err
	}
	r.logger.Debug("report emitted")
	r.count("success")
	return nil
}

// NextRun returns when the next scheduled report is due.
func (r *Reporter) NextRun() time.Time {
	if next := r.cron.Entry(r.entry).Next; !next.IsZero() {
		return next
	}
	return r.schedule.Next(time.Now().In(r.config.Location))
}

func (r *Reporter) count(outcome string) {
	if r.config.Metrics != nil {
		r.config.Metrics.ReportsEmitted.WithLabelValues(outcome).Inc()
	}
}

// cronLogAdapter routes cron's internal logging to slog.
type cronLogAdapter struct {
	logger *slog.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, append([]interface{}{slog.String("error", err.Error())}, keysAndValues...)...)
}
