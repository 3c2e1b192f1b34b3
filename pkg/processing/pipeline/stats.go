package pipeline

import (
	"time"
)

// Stats holds per-pipeline execution statistics. Counters only grow.
type Stats struct {
	PipelineID       string        `yaml:"pipeline_id"`
	PipelineType     string        `yaml:"type"`
	ProcessedBatches int64         `yaml:"processed_batches"`
	ErrorCount       int64         `yaml:"error_count"`
	TotalTime        time.Duration `yaml:"total_time"`
	LastRunAt        time.Time     `yaml:"last_run_at,omitempty"`
}

// AddRun records one process call of the given duration.
func (s *Stats) AddRun(duration time.Duration, ok bool) {
	s.ProcessedBatches++
	s.TotalTime += duration
	s.LastRunAt = time.Now()
	if !ok {
		s.ErrorCount++
	}
}

// Efficiency returns the success rate, 1.0 when nothing has run yet.
func (s Stats) Efficiency() float64 {
	if s.ProcessedBatches == 0 {
		return 1.0
	}
	return 1.0 - float64(s.ErrorCount)/float64(s.ProcessedBatches)
}

// TotalSeconds returns the cumulative processing time in seconds.
func (s Stats) TotalSeconds() float64 {
	return s.TotalTime.Seconds()
}

// AverageDuration returns the mean duration per run.
func (s Stats) AverageDuration() time.Duration {
	if s.ProcessedBatches == 0 {
		return 0
	}
	return time.Duration(int64(s.TotalTime) / s.ProcessedBatches)
}
