// Package worker provides the shared concurrency primitives: a bounded
// job pool for CPU-side pipeline stages and a per-host rate limiter for
// outbound EDGAR traffic.
package worker

import (
	"context"
	"sync"
)

// Job is one unit of work
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of a job execution
type Result interface {
	GetError() error
}

// Pool runs jobs across a fixed number of goroutines
type Pool struct {
	workers int
}

// NewPool creates a pool with the given worker count
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Process executes all jobs and returns their results. Results arrive in
// completion order, not submission order; jobs that need positional
// output write into caller-owned slots. If the context is cancelled
// mid-batch, unstarted jobs are dropped and fewer results come back.
func (p *Pool) Process(ctx context.Context, jobs []Job) []Result {
	if len(jobs) == 0 {
		return nil
	}

	queue := make(chan Job)
	// Sized so workers never block handing results back.
	results := make(chan Result, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				results <- job.Execute(ctx)
			}
		}()
	}

	go func() {
		defer close(queue)
		for _, job := range jobs {
			select {
			case <-ctx.Done():
				return
			case queue <- job:
			}
		}
	}()

	wg.Wait()
	close(results)

	out := make([]Result, 0, len(jobs))
	for r := range results {
		out = append(out, r)
	}
	return out
}
