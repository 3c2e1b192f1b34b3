package main

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/vnykmshr/nexus/internal/logging"
	"github.com/vnykmshr/nexus/pkg/processing/manager"
	"github.com/vnykmshr/nexus/pkg/processing/pipeline"
	"github.com/vnykmshr/nexus/pkg/processing/record"
	"github.com/vnykmshr/nexus/pkg/processing/reporter"
	"github.com/vnykmshr/nexus/pkg/processing/stage"
)

// pipelineID returns the registry id for a format, e.g. PIPE_JSON.
func pipelineID(format pipeline.Format) string {
	return "PIPE_" + format.Type()
}

// backupID returns the id of a format's recovery variant.
func backupID(format pipeline.Format) string {
	return pipelineID(format) + "_BACKUP"
}

// newManager builds a manager with one default pipeline per format.
func (a *app) newManager() (*manager.Manager, error) {
	m, err := manager.NewWithConfig(a.cfg.ManagerConfig(slog.Default(), a.metrics))
	if err != nil {
		return nil, err
	}
	for _, format := range pipeline.Formats() {
		p, err := a.newPipeline(format, pipelineID(format), nil)
		if err != nil {
			return nil, err
		}
		m.Register(p)
	}
	return m, nil
}

// newPipeline builds a pipeline sharing the app's logger and metrics.
func (a *app) newPipeline(format pipeline.Format, id string, stages []stage.Stage) (pipeline.Pipeline, error) {
	return pipeline.NewWithConfig(format, id, pipeline.Config{
		Stages:  stages,
		Logger:  slog.Default(),
		Metrics: a.metrics,
	})
}

// newBackup builds the permissive recovery variant of format.
func (a *app) newBackup(format pipeline.Format) (pipeline.Pipeline, error) {
	return a.newPipeline(format, backupID(format), stage.Recovery())
}

// startReporter runs the scheduled report while a command works, if enabled.
// The returned function stops it and waits for an in-flight report.
func (a *app) startReporter(m *manager.Manager, out io.Writer) (func(), error) {
	if !a.cfg.Reporter.Enabled {
		return func() {}, nil
	}
	rc := a.cfg.ReporterConfig(logging.New("cli"), a.metrics)
	rc.Output = out
	r, err := reporter.New(m, rc)
	if err != nil {
		return nil, err
	}
	r.Start()
	return func() { <-r.Stop().Done() }, nil
}

// parseInput converts command-line text into the raw input a format expects.
func parseInput(format pipeline.Format, text string) interface{} {
	if format == pipeline.FormatStream {
		return parseStreamInput(text)
	}
	return text
}

// parseStreamInput splits a comma list into readings. Numeric tokens become
// float64; anything else is kept as text and ignored by the transform.
func parseStreamInput(text string) record.StreamReadings {
	readings := record.StreamReadings{}
	for _, token := range strings.Split(text, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if n, err := strconv.ParseFloat(token, 64); err == nil {
			readings = append(readings, n)
			continue
		}
		readings = append(readings, token)
	}
	return readings
}

func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
