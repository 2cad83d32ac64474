package worker

import (
	"context"
)

// indexedJob remembers the submission position of a job
type indexedJob struct {
	index int
	job   Job
}

func (j *indexedJob) Execute(ctx context.Context) Result {
	return &indexedResult{index: j.index, result: j.job.Execute(ctx)}
}

type indexedResult struct {
	index  int
	result Result
}

func (r *indexedResult) GetError() error {
	if r.result == nil {
		return nil
	}
	return r.result.GetError()
}

// RunOrdered executes jobs on a pool of workers and returns their results in
// submission order, so callers can apply them deterministically. Slots for
// jobs that never ran because ctx ended are nil; the context error is returned.
func RunOrdered(ctx context.Context, workers int, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results, nil
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	pool := NewPool(ctx, workers)
	pool.Start()
	defer pool.Shutdown()

	go func() {
		defer pool.Close()
		for i, job := range jobs {
			if !pool.Submit(&indexedJob{index: i, job: job}) {
				return
			}
		}
	}()

	for r := range pool.Results() {
		ir := r.(*indexedResult)
		results[ir.index] = ir.result
	}

	if ctx != nil && ctx.Err() != nil {
		return results, ctx.Err()
	}
	return results, nil
}
