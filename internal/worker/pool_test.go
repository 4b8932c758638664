package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type slotJob struct {
	index int
	out   []int
	err   error
}

type slotResult struct {
	err error
}

func (r slotResult) GetError() error { return r.err }

func (j *slotJob) Execute(ctx context.Context) Result {
	j.out[j.index] = j.index * 2
	return slotResult{err: j.err}
}

func TestPoolProcessAllJobs(t *testing.T) {
	const n = 100
	out := make([]int, n)
	jobs := make([]Job, n)
	for i := 0; i < n; i++ {
		jobs[i] = &slotJob{index: i, out: out}
	}

	results := NewPool(4).Process(context.Background(), jobs)
	if len(results) != n {
		t.Fatalf("results = %d, want %d", len(results), n)
	}
	for _, r := range results {
		if r.GetError() != nil {
			t.Errorf("unexpected error: %v", r.GetError())
		}
	}
	for i, v := range out {
		if v != i*2 {
			t.Errorf("slot %d = %d, want %d", i, v, i*2)
		}
	}
}

// A batch far larger than the worker count must not wedge on channel
// capacity.
func TestPoolLargeBatch(t *testing.T) {
	const n = 5000
	out := make([]int, n)
	jobs := make([]Job, n)
	for i := 0; i < n; i++ {
		jobs[i] = &slotJob{index: i, out: out}
	}

	done := make(chan struct{})
	go func() {
		NewPool(2).Process(context.Background(), jobs)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("pool deadlocked on large batch")
	}
}

func TestPoolPropagatesJobErrors(t *testing.T) {
	out := make([]int, 3)
	wantErr := errors.New("boom")
	jobs := []Job{
		&slotJob{index: 0, out: out},
		&slotJob{index: 1, out: out, err: wantErr},
		&slotJob{index: 2, out: out},
	}

	failures := 0
	for _, r := range NewPool(2).Process(context.Background(), jobs) {
		if r.GetError() != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}
}

type blockJob struct {
	started *sync.WaitGroup
	release chan struct{}
}

func (j *blockJob) Execute(ctx context.Context) Result {
	j.started.Done()
	<-j.release
	return slotResult{}
}

func TestPoolDropsUnstartedJobsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(1)

	out := make([]int, 10)
	jobs := make([]Job, 10)
	jobs[0] = &blockJob{started: &started, release: release}
	for i := 1; i < 10; i++ {
		jobs[i] = &slotJob{index: i, out: out}
	}

	var results []Result
	done := make(chan struct{})
	go func() {
		results = NewPool(1).Process(ctx, jobs)
		close(done)
	}()

	started.Wait()
	cancel()
	close(release)
	<-done

	if len(results) >= len(jobs) {
		t.Errorf("results = %d, want fewer than %d after cancel", len(results), len(jobs))
	}
}

func TestPoolZeroWorkersClampedToOne(t *testing.T) {
	out := make([]int, 1)
	results := NewPool(0).Process(context.Background(), []Job{&slotJob{index: 0, out: out}})
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
}
