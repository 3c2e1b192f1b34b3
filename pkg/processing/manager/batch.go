package manager

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is one input addressed to a registered pipeline.
type Job struct {
	PipelineID string
	Input      interface{}
}

// JobResult holds the outcome of one Job.
type JobResult struct {
	PipelineID string
	Output     string
	Err        error
}

// RunBatch dispatches jobs concurrently, at most Parallelism at a time.
// Jobs for the same pipeline run one after another on that pipeline's lock.
// A failing job does not cancel the others. Results are in job order.
func (m *Manager) RunBatch(ctx context.Context, jobs []Job) []JobResult {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]JobResult, len(jobs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(m.config.Parallelism)
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = JobResult{PipelineID: job.PipelineID}
			if err := gCtx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Output, results[i].Err = m.RunPipeline(gCtx, job.PipelineID, job.Input)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
