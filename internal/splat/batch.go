package splat

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is one input file and the path its result is written to.
type Job struct {
	Input  string
	Output string
}

// Result pairs a job with its outcome.
type Result struct {
	Job   Job
	Stats Stats
	Err   error
}

// JobFunc performs the full read-transform-write sequence for one job.
type JobFunc func(Job) (Stats, error)

// RunBatch runs fn for every job on up to workers goroutines and returns
// the results in job order. A failing job never stops the others. Jobs not
// yet started when ctx is cancelled report ctx.Err().
func RunBatch(ctx context.Context, jobs []Job, workers int, fn JobFunc) []Result {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(jobs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			results[i].Job = job
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			st, err := fn(job)
			results[i].Stats = st
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Failed counts results carrying an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
