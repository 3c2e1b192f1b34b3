package manager

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/vnykmshr/nexus/pkg/common/errors"
	"github.com/vnykmshr/nexus/pkg/metrics"
	"github.com/vnykmshr/nexus/pkg/processing/pipeline"
	"github.com/vnykmshr/nexus/pkg/processing/throttle"
)

// Dispatch and recovery outcomes used as metric labels.
const (
	outcomeSuccess   = "success"
	outcomeFailure   = "failure"
	outcomeNotFound  = "not_found"
	outcomeRecovered = "recovered"
	outcomeNoBackup  = "no_backup"
)

// Manager owns a registry of pipelines keyed by id and dispatches work to
// them. It is safe for concurrent use.
type Manager struct {
	config   Config
	logger   *slog.Logger
	metrics  *metrics.Registry
	throttle throttle.Throttle

	mu        sync.RWMutex
	pipelines map[string]pipeline.Pipeline
	order     []string
	errLog    *errorLog
}

// New creates a manager with the default configuration.
func New() *Manager {
	m, err := NewWithConfig(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return m
}

// NewWithConfig creates a manager, returning a ValidationError for bad settings.
func NewWithConfig(config Config) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var t throttle.Throttle
	if config.Capacity > 0 {
		burst := config.Burst
		if burst == 0 {
			burst = int(config.Capacity)
			if burst < 1 {
				burst = 1
			}
		}
		var err error
		t, err = throttle.NewSafe(config.Capacity, burst)
		if err != nil {
			return nil, err
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		config:    config,
		logger:    logger.With(slog.String("component", "manager")),
		metrics:   config.Metrics,
		throttle:  t,
		pipelines: make(map[string]pipeline.Pipeline),
		errLog:    newErrorLog(config.ErrorLogSize),
	}, nil
}

// Register stores p under its id, replacing any pipeline registered with the
// same id. A replaced pipeline keeps its original position in reports.
// A nil pipeline, including a nil pointer held in the interface, is ignored.
func (m *Manager) Register(p pipeline.Pipeline) {
	if isNil(p) {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.pipelines[p.ID()]; !exists {
		m.order = append(m.order, p.ID())
	}
	m.pipelines[p.ID()] = p
}

// Get returns the pipeline registered under id.
func (m *Manager) Get(id string) (pipeline.Pipeline, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pipelines[id]
	return p, ok
}

// Pipelines returns the registered pipelines in registration order.
func (m *Manager) Pipelines() []pipeline.Pipeline {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]pipeline.Pipeline, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.pipelines[id])
	}
	return out
}

// RunPipeline dispatches input to the pipeline registered under id.
func (m *Manager) RunPipeline(ctx context.Context, id string, input interface{}) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	p, ok := m.Get(id)
	if !ok {
		m.countDispatch(id, outcomeNotFound)
		return "", errors.NewNotFoundError(id)
	}

	if err := m.wait(ctx); err != nil {
		return "", err
	}

	out, err := p.Process(ctx, input)
	if err != nil {
		m.countDispatch(id, outcomeFailure)
		return "", err
	}
	m.countDispatch(id, outcomeSuccess)
	return out, nil
}

// Chain feeds input through the pipelines in ids order, each output becoming
// the next input. The first failing link aborts the chain.
func (m *Manager) Chain(ctx context.Context, ids []string, input interface{}) (string, error) {
	if len(ids) == 0 {
		return "", errors.NewValidationError("manager", "chain", ids, "chain needs at least one pipeline id")
	}

	data := input
	var out string
	for i, id := range ids {
		var err error
		out, err = m.RunPipeline(ctx, id, data)
		if err != nil {
			m.countChainLink(outcomeFailure)
			return "", errors.NewOperationError("manager", "chain", err).
				WithContext(fmt.Sprintf("link %d (%s)", i+1, id))
		}
		m.countChainLink(outcomeSuccess)
		data = out
	}
	return out, nil
}

// RunWithRecovery runs the primary pipeline and, if it fails, logs the failure
// and retries the same input on backup. Without a backup the primary's error
// is returned. If the backup fails too, its failure is logged and returned.
func (m *Manager) RunWithRecovery(ctx context.Context, id string, input interface{}, backup pipeline.Pipeline) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	out, err := m.RunPipeline(ctx, id, input)
	if err == nil {
		return out, nil
	}

	m.logError(describe(err))

	if backup == nil {
		m.logger.Warn("pipeline failed without backup",
			slog.String("pipeline_id", id),
			slog.String("error", err.Error()))
		m.countRecovery(id, outcomeNoBackup)
		return "", err
	}

	m.logger.Info("recovery initiated: switching to backup processor",
		slog.String("pipeline_id", id),
		slog.String("backup_id", backup.ID()))

	out, backupErr := backup.Process(ctx, input)
	if backupErr != nil {
		m.logError(describe(backupErr))
		m.logger.Error("recovery failed",
			slog.String("pipeline_id", id),
			slog.String("backup_id", backup.ID()),
			slog.String("error", backupErr.Error()))
		m.countRecovery(id, outcomeFailure)
		return "", backupErr
	}

	m.logger.Info("recovery successful: pipeline restored, processing resumed",
		slog.String("pipeline_id", id),
		slog.String("backup_id", backup.ID()))
	m.countRecovery(id, outcomeRecovered)
	return out, nil
}

// Report writes one statistics line per pipeline in registration order.
func (m *Manager) Report(w io.Writer) error {
	for _, s := range m.Snapshot() {
		_, err := fmt.Fprintf(w, "[Stats] %s(%s): runs=%d, errors=%d, time=%.3fs, efficiency=%.1f%%\n",
			s.PipelineID, s.PipelineType, s.ProcessedBatches, s.ErrorCount,
			s.TotalSeconds(), s.Efficiency()*100)
		if err != nil {
			return errors.NewOperationError("manager", "report", err).WithContext(s.PipelineID)
		}
	}
	return nil
}

// Snapshot returns the statistics of every pipeline in registration order.
func (m *Manager) Snapshot() []pipeline.Stats {
	pipelines := m.Pipelines()
	out := make([]pipeline.Stats, len(pipelines))
	for i, p := range pipelines {
		out[i] = p.Stats()
	}
	return out
}

// ErrorLog returns the recovery error log, oldest entry first.
func (m *Manager) ErrorLog() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errLog.snapshot()
}

// describe renders a failure for the error log, naming the stage that failed.
func isNil(p pipeline.Pipeline) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func describe(err error) string {
	var se *pipeline.StageError
	if stderrors.As(err, &se) {
		return fmt.Sprintf("Error detected in %s: %v", se.Location(), err)
	}
	var pe *errors.ProcessingError
	if stderrors.As(err, &pe) && pe.Stage != "" {
		return fmt.Sprintf("Error detected in %s: %v", pe.Stage, err)
	}
	return fmt.Sprintf("Error detected: %v", err)
}

func (m *Manager) logError(msg string) {
	m.mu.Lock()
	m.errLog.add(msg)
	n := m.errLog.len()
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.ErrorLogEntries.Set(float64(n))
	}
}

// wait blocks until the throttle admits a dispatch.
func (m *Manager) wait(ctx context.Context) error {
	if m.throttle == nil {
		return nil
	}
	start := time.Now()
	err := m.throttle.Wait(ctx)
	if m.metrics != nil {
		m.metrics.ThrottleWaitTime.Observe(time.Since(start).Seconds())
	}
	return err
}

func (m *Manager) countDispatch(id, outcome string) {
	if m.metrics != nil {
		m.metrics.Dispatches.WithLabelValues(id, outcome).Inc()
	}
}

func (m *Manager) countChainLink(outcome string) {
	if m.metrics != nil {
		m.metrics.ChainLinks.WithLabelValues(outcome).Inc()
	}
}

func (m *Manager) countRecovery(id, outcome string) {
	if m.metrics != nil {
		m.metrics.Recoveries.WithLabelValues(id, outcome).Inc()
	}
}
