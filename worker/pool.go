package worker

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/clemire/liszt-in-terra/log"
)

// Job is one unit of work a worker thread executes, modeled as a
// plain closure.
type Job func() error

// Pool is a fixed set of goroutines draining a work queue, one per CPU
// partition on a compute node (§4.J).
type Pool struct {
	Log *log.Logger

	jobs chan Job
	done chan struct{}
}

// NewPool starts a Pool with n worker goroutines, defaulting to 1 if n
// is not positive.
func NewPool(n int, lg *log.Logger) *Pool {
	if n <= 0 {
		n = 1
	}
	p := &Pool{Log: lg, jobs: make(chan Job), done: make(chan struct{})}
	for i := 0; i < n; i++ {
		go p.drain(i)
	}
	return p
}

func (p *Pool) drain(worker int) {
	for {
		select {
		case j, ok := <-p.jobs:
			if !ok {
				return
			}
			if err := j(); err != nil {
				p.Log.Errorf("worker %d: %v", worker, err)
			}
		case <-p.done:
			return
		}
	}
}

// Submit enqueues job for the next free worker, blocking until one is
// available or the Pool is closed.
func (p *Pool) Submit(j Job) {
	select {
	case p.jobs <- j:
	case <-p.done:
	}
}

// Close stops accepting new work. Jobs already running complete;
// queued-but-undispatched jobs are abandoned, matching §5's "no
// cancellation primitive."
func (p *Pool) Close() { close(p.done) }

// RunAll runs jobs concurrently and returns the first error
// encountered, if any — the shape a control node's launchTask
// broadcast needs when it fans one kernel launch out across every
// compute node's partition and must know whether every one of them
// succeeded, without hand-rolling a fan-out/first-error barrier.
func RunAll(ctx context.Context, jobs []Job) error {
	g, _ := errgroup.WithContext(ctx)
	for _, j := range jobs {
		j := j
		g.Go(func() error { return j() })
	}
	return g.Wait()
}
