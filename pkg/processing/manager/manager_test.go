package manager

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vnykmshr/nexus/internal/testutil"
	"github.com/vnykmshr/nexus/pkg/common/errors"
	"github.com/vnykmshr/nexus/pkg/metrics"
	"github.com/vnykmshr/nexus/pkg/processing/pipeline"
	"github.com/vnykmshr/nexus/pkg/processing/stage"
)

const (
	jsonInput    = `{"sensor": "temp", "value": 23.5, "unit": "C"}`
	badJSONInput = `{"sensor": "temp", "value": "NOT_A_NUMBER", "unit": "C"}`
	jsonOutput   = "Processed temperature reading: 23.5°C (Normal range)"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(t *testing.T, mutate ...func(*Config)) *Manager {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Logger = quietLogger()
	for _, fn := range mutate {
		fn(&cfg)
	}
	m, err := NewWithConfig(cfg)
	testutil.AssertNoError(t, err)

	m.Register(pipeline.NewJSON("PIPE_JSON"))
	m.Register(pipeline.NewCSV("PIPE_CSV"))
	m.Register(pipeline.NewStream("PIPE_STREAM"))
	return m
}

func jsonBackup(t *testing.T) pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.NewWithConfig(pipeline.FormatJSON, "PIPE_JSON_BACKUP", pipeline.Config{
		Stages: stage.Recovery(),
		Logger: quietLogger(),
	})
	testutil.AssertNoError(t, err)
	return p
}

func TestNewWithConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero error log", func(c *Config) { c.ErrorLogSize = 0 }},
		{"negative capacity", func(c *Config) { c.Capacity = -1 }},
		{"negative burst", func(c *Config) { c.Burst = -1 }},
		{"zero parallelism", func(c *Config) { c.Parallelism = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			m, err := NewWithConfig(cfg)
			testutil.AssertError(t, err)
			testutil.AssertEqual(t, errors.IsValidationError(err), true)
			if m != nil {
				t.Error("expected nil manager on error")
			}
		})
	}
}

func TestNewWithoutThrottle(t *testing.T) {
	m := newTestManager(t, func(c *Config) { c.Capacity = 0 })
	if m.throttle != nil {
		t.Error("capacity 0 should disable the throttle")
	}

	out, err := m.RunPipeline(context.Background(), "PIPE_JSON", jsonInput)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, out, jsonOutput)
}

// wrappedPipeline is a pointer implementation of pipeline.Pipeline used to
// exercise registration of a nil pointer.
type wrappedPipeline struct {
	pipeline.Pipeline
}

func TestRegister(t *testing.T) {
	m := newTestManager(t)

	m.Register(nil)
	testutil.AssertEqual(t, len(m.Pipelines()), 3)

	var unset *wrappedPipeline
	m.Register(unset)
	testutil.AssertEqual(t, len(m.Pipelines()), 3)

	p, ok := m.Get("PIPE_CSV")
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, p.Type(), "CSV")

	_, ok = m.Get("missing")
	testutil.AssertEqual(t, ok, false)
}

func TestRegisterReplacesAndKeepsOrder(t *testing.T) {
	m := newTestManager(t)

	// A stream pipeline registered under the JSON id now handles that id.
	m.Register(pipeline.NewStream("PIPE_JSON"))

	out, err := m.RunPipeline(context.Background(), "PIPE_JSON", []float64{1, 2, 3})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, out, "Stream summary: 3 readings, avg: 2.0°C")

	_, err = m.RunPipeline(context.Background(), "PIPE_JSON", jsonInput)
	testutil.AssertError(t, err)

	var ids, types []string
	for _, p := range m.Pipelines() {
		ids = append(ids, p.ID())
		types = append(types, p.Type())
	}
	if diff := cmp.Diff([]string{"PIPE_JSON", "PIPE_CSV", "PIPE_STREAM"}, ids); diff != "" {
		t.Errorf("registration order mismatch (-want +got):\n%s", diff)
	}
	testutil.AssertEqual(t, types[0], "STREAM")
}

func TestRunPipelineNotFound(t *testing.T) {
	m := newTestManager(t)

	_, err := m.RunPipeline(context.Background(), "PIPE_XML", "<x/>")
	testutil.AssertError(t, err)
	testutil.AssertEqual(t, errors.IsNotFound(err), true)
	testutil.AssertEqual(t, err.Error(), "Pipeline 'PIPE_XML' not found")
}

func TestRunPipelineFormats(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	tests := []struct {
		id    string
		input interface{}
		want  string
	}{
		{"PIPE_JSON", jsonInput, jsonOutput},
		{"PIPE_CSV", "user,action,timestamp", "User activity logged: 1 actions processed"},
		{"PIPE_STREAM", []float64{21.9, 22.1, 22.5, 22.0, 22.2}, "Stream summary: 5 readings, avg: 22.1°C"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			out, err := m.RunPipeline(ctx, tt.id, tt.input)
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, out, tt.want)
		})
	}
}

func TestChainEquivalence(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	got, err := m.Chain(ctx, []string{"PIPE_JSON", "PIPE_CSV", "PIPE_CSV"}, jsonInput)
	testutil.AssertNoError(t, err)

	a, b, c := pipeline.NewJSON("a"), pipeline.NewCSV("b"), pipeline.NewCSV("c")
	step1, err := a.Process(ctx, jsonInput)
	testutil.AssertNoError(t, err)
	step2, err := b.Process(ctx, step1)
	testutil.AssertNoError(t, err)
	want, err := c.Process(ctx, step2)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, got, want)
	testutil.AssertEqual(t, got, "User activity logged: 1 actions processed")

	csv, _ := m.Get("PIPE_CSV")
	testutil.AssertEqual(t, csv.Stats().ProcessedBatches, int64(2))
}

func TestChainShortCircuits(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Chain(context.Background(), []string{"PIPE_JSON", "PIPE_STREAM", "PIPE_CSV"}, jsonInput)
	testutil.AssertError(t, err)
	testutil.AssertEqual(t, errors.IsShapeError(err), true)
	testutil.AssertContains(t, err.Error(), "link 2 (PIPE_STREAM)")

	var opErr *errors.OperationError
	if !stderrors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got %T", err)
	}

	csv, _ := m.Get("PIPE_CSV")
	testutil.AssertEqual(t, csv.Stats().ProcessedBatches, int64(0))
	stream, _ := m.Get("PIPE_STREAM")
	testutil.AssertEqual(t, stream.Stats().ErrorCount, int64(1))
}

func TestChainUnknownLink(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Chain(context.Background(), []string{"PIPE_JSON", "PIPE_NOPE"}, jsonInput)
	testutil.AssertEqual(t, errors.IsNotFound(err), true)
	testutil.AssertContains(t, err.Error(), "link 2 (PIPE_NOPE)")
}

func TestChainEmpty(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Chain(context.Background(), nil, jsonInput)
	testutil.AssertEqual(t, errors.IsValidationError(err), true)
}

func TestRunWithRecoveryPrimarySucceeds(t *testing.T) {
	m := newTestManager(t)

	out, err := m.RunWithRecovery(context.Background(), "PIPE_JSON", jsonInput, jsonBackup(t))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, out, jsonOutput)
	testutil.AssertEqual(t, len(m.ErrorLog()), 0)
}

func TestRunWithRecoveryBackupSucceeds(t *testing.T) {
	m := newTestManager(t)
	backup := jsonBackup(t)

	out, err := m.RunWithRecovery(context.Background(), "PIPE_JSON", badJSONInput, backup)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, out, "Processed temperature reading: 0.0°C (Recovered)")

	want := []string{"Error detected in Stage 2 (transform): JSON 'value' must be numeric"}
	if diff := cmp.Diff(want, m.ErrorLog()); diff != "" {
		t.Errorf("error log mismatch (-want +got):\n%s", diff)
	}

	primary, _ := m.Get("PIPE_JSON")
	testutil.AssertEqual(t, primary.Stats().ErrorCount, int64(1))
	testutil.AssertEqual(t, backup.Stats().ProcessedBatches, int64(1))
	testutil.AssertEqual(t, backup.Stats().ErrorCount, int64(0))
}

func TestRunWithRecoveryBothFail(t *testing.T) {
	m := newTestManager(t)
	backup := pipeline.NewStream("PIPE_STREAM_BACKUP")

	_, err := m.RunWithRecovery(context.Background(), "PIPE_JSON", badJSONInput, backup)
	testutil.AssertError(t, err)
	testutil.AssertEqual(t, errors.IsShapeError(err), true)
	testutil.AssertContains(t, err.Error(), "StreamAdapter")

	log := m.ErrorLog()
	testutil.AssertEqual(t, len(log), 2)
	testutil.AssertContains(t, log[1], "Error detected in adapter: StreamAdapter")
}

func TestRunWithRecoveryNoBackup(t *testing.T) {
	m := newTestManager(t)

	_, err := m.RunWithRecovery(context.Background(), "PIPE_JSON", badJSONInput, nil)
	testutil.AssertError(t, err)
	testutil.AssertEqual(t, errors.IsDomainError(err), true)
	testutil.AssertEqual(t, err.Error(), "JSON 'value' must be numeric")
	testutil.AssertEqual(t, len(m.ErrorLog()), 1)
}

func TestRunWithRecoveryUnknownPrimary(t *testing.T) {
	m := newTestManager(t)

	out, err := m.RunWithRecovery(context.Background(), "PIPE_NOPE", jsonInput, jsonBackup(t))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, out, "Processed temperature reading: 23.5°C (Recovered)")
	testutil.AssertEqual(t, m.ErrorLog()[0], "Error detected in dispatch: Pipeline 'PIPE_NOPE' not found")
}

func TestErrorLogBounded(t *testing.T) {
	m := newTestManager(t, func(c *Config) { c.ErrorLogSize = 3 })

	for i := 0; i < 5; i++ {
		_, _ = m.RunWithRecovery(context.Background(), fmt.Sprintf("missing-%d", i), jsonInput, nil)
	}

	want := []string{
		"Error detected in dispatch: Pipeline 'missing-2' not found",
		"Error detected in dispatch: Pipeline 'missing-3' not found",
		"Error detected in dispatch: Pipeline 'missing-4' not found",
	}
	if diff := cmp.Diff(want, m.ErrorLog()); diff != "" {
		t.Errorf("error log mismatch (-want +got):\n%s", diff)
	}
}

func TestReport(t *testing.T) {
	m := newTestManager(t)

	var sb strings.Builder
	testutil.AssertNoError(t, m.Report(&sb))

	want := "[Stats] PIPE_JSON(JSON): runs=0, errors=0, time=0.000s, efficiency=100.0%\n" +
		"[Stats] PIPE_CSV(CSV): runs=0, errors=0, time=0.000s, efficiency=100.0%\n" +
		"[Stats] PIPE_STREAM(STREAM): runs=0, errors=0, time=0.000s, efficiency=100.0%\n"
	testutil.AssertEqual(t, sb.String(), want)

	ctx := context.Background()
	_, _ = m.RunPipeline(ctx, "PIPE_STREAM", []float64{1})
	_, _ = m.RunPipeline(ctx, "PIPE_STREAM", "not a batch")

	sb.Reset()
	testutil.AssertNoError(t, m.Report(&sb))
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	testutil.AssertEqual(t, len(lines), 3)
	testutil.AssertContains(t, lines[2], "[Stats] PIPE_STREAM(STREAM): runs=2, errors=1, time=")
	testutil.AssertContains(t, lines[2], "efficiency=50.0%")
}

func TestReportWriteError(t *testing.T) {
	m := newTestManager(t)
	w := testutil.NewMockWriter()
	diskFull := stderrors.New("disk full")
	w.FailOn(2, diskFull)

	err := m.Report(w)
	testutil.AssertErrorIs(t, err, diskFull)
	testutil.AssertContains(t, err.Error(), "manager.report failed")
	testutil.AssertContains(t, err.Error(), "(PIPE_CSV)")

	writes := w.Writes()
	testutil.AssertEqual(t, len(writes), 1)
	testutil.AssertContains(t, writes[0], "[Stats] PIPE_JSON(JSON)")
}

func TestSnapshot(t *testing.T) {
	m := newTestManager(t)
	_, _ = m.RunPipeline(context.Background(), "PIPE_CSV", "a,b")

	snap := m.Snapshot()
	testutil.AssertEqual(t, len(snap), 3)
	testutil.AssertEqual(t, snap[1].PipelineID, "PIPE_CSV")
	testutil.AssertEqual(t, snap[1].ProcessedBatches, int64(1))
}

func TestThrottleHonoursContext(t *testing.T) {
	m := newTestManager(t, func(c *Config) {
		c.Capacity = 0.001
		c.Burst = 1
	})

	_, err := m.RunPipeline(context.Background(), "PIPE_JSON", jsonInput)
	testutil.AssertNoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.RunPipeline(ctx, "PIPE_JSON", jsonInput)
	testutil.AssertErrorIs(t, err, context.Canceled)

	p, _ := m.Get("PIPE_JSON")
	testutil.AssertEqual(t, p.Stats().ProcessedBatches, int64(1))
}

func TestConcurrentDispatch(t *testing.T) {
	m := newTestManager(t, func(c *Config) { c.Capacity = 0 })
	ctx := context.Background()

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				switch (w + i) % 3 {
				case 0:
					_, _ = m.RunPipeline(ctx, "PIPE_JSON", jsonInput)
				case 1:
					_, _ = m.RunWithRecovery(ctx, "PIPE_JSON", badJSONInput, nil)
				default:
					m.Register(pipeline.NewCSV(fmt.Sprintf("PIPE_EXTRA_%d", w)))
					_ = m.Report(io.Discard)
				}
			}
		}(w)
	}
	wg.Wait()

	var runs, failures int64
	for w := 0; w < workers; w++ {
		for i := 0; i < perWorker; i++ {
			switch (w + i) % 3 {
			case 0:
				runs++
			case 1:
				runs++
				failures++
			}
		}
	}

	p, _ := m.Get("PIPE_JSON")
	stats := p.Stats()
	testutil.AssertEqual(t, stats.ProcessedBatches, runs)
	testutil.AssertEqual(t, stats.ErrorCount, failures)
	testutil.AssertEqual(t, len(m.ErrorLog()), min(int(failures), DefaultErrorLogSize))
	testutil.AssertEqual(t, len(m.Pipelines()), 3+workers)
}

func TestManagerMetrics(t *testing.T) {
	reg := metrics.NewRegistry(prometheus.NewRegistry())
	m := newTestManager(t, func(c *Config) { c.Metrics = reg })
	ctx := context.Background()

	_, _ = m.RunPipeline(ctx, "PIPE_JSON", jsonInput)
	_, _ = m.RunPipeline(ctx, "PIPE_NOPE", jsonInput)
	_, _ = m.Chain(ctx, []string{"PIPE_JSON", "PIPE_STREAM"}, jsonInput)
	_, _ = m.RunWithRecovery(ctx, "PIPE_JSON", badJSONInput, jsonBackup(t))

	testutil.AssertEqual(t, promtest.ToFloat64(reg.Dispatches.WithLabelValues("PIPE_JSON", outcomeSuccess)), 2.0)
	testutil.AssertEqual(t, promtest.ToFloat64(reg.Dispatches.WithLabelValues("PIPE_JSON", outcomeFailure)), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(reg.Dispatches.WithLabelValues("PIPE_NOPE", outcomeNotFound)), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(reg.ChainLinks.WithLabelValues(outcomeSuccess)), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(reg.ChainLinks.WithLabelValues(outcomeFailure)), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(reg.Recoveries.WithLabelValues("PIPE_JSON", outcomeRecovered)), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(reg.ErrorLogEntries), 1.0)
}
