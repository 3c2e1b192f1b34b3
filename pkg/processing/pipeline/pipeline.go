package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vnykmshr/nexus/pkg/common/validation"
	"github.com/vnykmshr/nexus/pkg/metrics"
	"github.com/vnykmshr/nexus/pkg/processing/record"
	"github.com/vnykmshr/nexus/pkg/processing/stage"
)

// Pipeline turns one raw input shape into a rendered summary.
type Pipeline interface {
	// ID returns the identifier the pipeline is registered under.
	ID() string

	// Type returns the format tag ("JSON", "CSV", "STREAM").
	Type() string

	// Process parses input, runs every stage and returns the rendered output.
	// Each call is recorded in Stats exactly once, whether it succeeds or not.
	Process(ctx context.Context, input interface{}) (string, error)

	// Stages returns a copy of the stage sequence.
	Stages() []stage.Stage

	// Stats returns a snapshot of the pipeline's statistics.
	Stats() Stats
}

// StageResult represents the result of a single stage execution.
type StageResult struct {
	PipelineID string
	RecordID   string
	StageName  string
	Position   int
	Error      error
	Duration   time.Duration
}

// Config holds pipeline configuration options.
type Config struct {
	// Stages is the stage sequence. If empty, stage.Default() is used.
	// The sequence is fixed once the pipeline is built.
	Stages []stage.Stage

	// Logger receives per-run debug and failure records. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Metrics records runs, errors and durations. If nil, metrics are disabled.
	Metrics *metrics.Registry

	// OnStageComplete is called after every stage that ran.
	OnStageComplete func(result StageResult)
}

// DefaultConfig returns the configuration used by NewJSON, NewCSV and NewStream.
func DefaultConfig() Config {
	return Config{
		Stages: stage.Default(),
	}
}

// parseFunc turns raw adapter input into a record.
type parseFunc func(input interface{}) (*record.Record, error)

// pipeline implements the Pipeline interface for every format.
type pipeline struct {
	id     string
	format Format
	parse  parseFunc
	stages []stage.Stage
	config Config
	logger *slog.Logger

	// runMu serializes Process calls; statsMu guards stats so Stats()
	// does not wait for a running call.
	runMu   sync.Mutex
	statsMu sync.RWMutex
	stats   Stats
}

// NewWithConfig creates a pipeline for format with the specified configuration.
func NewWithConfig(format Format, id string, config Config) (Pipeline, error) {
	if err := validation.ValidateNotEmpty("pipeline", "id", id); err != nil {
		return nil, err
	}
	parse, err := parserFor(format)
	if err != nil {
		return nil, err
	}

	stages := config.Stages
	if len(stages) == 0 {
		stages = stage.Default()
	}
	stagesCopy := make([]stage.Stage, len(stages))
	copy(stagesCopy, stages)

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &pipeline{
		id:     id,
		format: format,
		parse:  parse,
		stages: stagesCopy,
		config: config,
		logger: logger.With(slog.String("component", "pipeline"), slog.String("pipeline_id", id)),
		stats: Stats{
			PipelineID:   id,
			PipelineType: format.Type(),
		},
	}, nil
}

func (p *pipeline) ID() string { return p.id }

func (p *pipeline) Type() string { return p.format.Type() }

// Process runs input through the adapter's parse step and the stage sequence.
func (p *pipeline) Process(ctx context.Context, input interface{}) (output string, err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	p.runMu.Lock()
	defer p.runMu.Unlock()

	start := time.Now()
	defer func() {
		p.recordRun(time.Since(start), err)
	}()

	rec, err := p.parse(input)
	if err != nil {
		return "", err
	}

	rec, err = p.runStages(ctx, rec)
	if err != nil {
		return "", err
	}

	p.logger.Debug("pipeline run complete",
		slog.String("record_id", rec.ID),
		slog.Duration("duration", time.Since(start)))

	return rec.Output, nil
}

// runStages feeds the record through each stage in order, stopping at the
// first failure. Stages already applied are not rolled back.
func (p *pipeline) runStages(ctx context.Context, rec *record.Record) (*record.Record, error) {
	for i, s := range p.stages {
		select {
		case <-ctx.Done():
			return rec, ctx.Err()
		default:
		}

		startTime := time.Now()
		out, err := runStage(ctx, s, rec)

		if p.config.OnStageComplete != nil {
			p.config.OnStageComplete(StageResult{
				PipelineID: p.id,
				RecordID:   rec.ID,
				StageName:  s.Name(),
				Position:   i + 1,
				Error:      err,
				Duration:   time.Since(startTime),
			})
		}

		if err != nil {
			if p.config.Metrics != nil {
				p.config.Metrics.StageFailures.WithLabelValues(p.id, s.Name()).Inc()
			}
			return rec, &StageError{
				Pipeline: p.id,
				Stage:    s.Name(),
				Position: i + 1,
				Err:      err,
			}
		}
		if out == nil {
			return rec, &StageError{
				Pipeline: p.id,
				Stage:    s.Name(),
				Position: i + 1,
				Err:      errNilRecord(s.Name()),
			}
		}
		rec = out
	}

	if rec.Output == "" {
		return rec, errEmptyOutput()
	}
	return rec, nil
}

// runStage calls s.Process, converting a panic into a failure of that stage.
func runStage(ctx context.Context, s stage.Stage, rec *record.Record) (out *record.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, errStagePanic(s.Name(), r)
		}
	}()
	return s.Process(ctx, rec)
}

// recordRun updates statistics and metrics for one Process call.
func (p *pipeline) recordRun(duration time.Duration, err error) {
	p.statsMu.Lock()
	p.stats.AddRun(duration, err == nil)
	p.statsMu.Unlock()

	if m := p.config.Metrics; m != nil {
		typ := p.Type()
		m.PipelineRuns.WithLabelValues(p.id, typ).Inc()
		m.PipelineDuration.WithLabelValues(p.id, typ).Observe(duration.Seconds())
		if err != nil {
			m.PipelineErrors.WithLabelValues(p.id, typ).Inc()
		}
	}

	if err != nil {
		p.logger.Warn("pipeline run failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", duration))
	}
}

// Stages returns a copy of the stage sequence.
func (p *pipeline) Stages() []stage.Stage {
	stages := make([]stage.Stage, len(p.stages))
	copy(stages, p.stages)
	return stages
}

// Stats returns a snapshot of the pipeline's statistics.
func (p *pipeline) Stats() Stats {
	p.statsMu.RLock()
	defer p.statsMu.RUnlock()
	return p.stats
}
