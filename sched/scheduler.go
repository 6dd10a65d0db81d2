package sched

import (
	"container/heap"
	"sync"

	"github.com/clemire/liszt-in-terra/config"
	"github.com/clemire/liszt-in-terra/errors"
	"github.com/clemire/liszt-in-terra/log"
)

// ActionFunc is the closure an Action runs once its precondition
// triggers.
type ActionFunc func(args interface{})

// Action is a closure plus the precondition signal gating it, per
// §4.F: "an action is a closure plus a precondition set of signals".
type Action struct {
	Precondition *Signal
	Fn           ActionFunc
	Args         interface{}
	Output       *Signal
	Priority     int

	seq int
}

// actionHeap orders ready actions by descending Priority, breaking
// ties by arrival order (lower seq first), matching the FIFO-within-
// priority behavior of reflow's own task heap.
type actionHeap []*Action

func (h actionHeap) Len() int { return len(h) }
func (h actionHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].seq < h[j].seq
}
func (h actionHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *actionHeap) Push(x interface{}) { *h = append(*h, x.(*Action)) }
func (h *actionHeap) Pop() interface{} {
	old := *h
	n := len(old)
	a := old[n-1]
	*h = old[:n-1]
	return a
}

// Scheduler is the single-threaded cooperative dispatcher of §4.F: a
// priority queue of ready actions, drained by exactly one dispatch
// goroutine into a fixed pool of worker goroutines. The design permits
// N workers; the core specification needs only one.
type Scheduler struct {
	Log *log.Logger
	Cfg *config.Config

	mu    sync.Mutex
	queue actionHeap
	seq   int
	wake  chan struct{}
	jobs  chan *Action

	closed chan struct{}
}

// NewScheduler starts a Scheduler with the given fixed worker count,
// rejecting Distributed mode unless cfg.ExperimentalSignals is set
// (§6's "experimental-signals" toggle gates this package's distributed
// behavior). out receives the scheduler's own diagnostics at
// cfg.VerboseLogging's level via log.FromConfig.
func NewScheduler(cfg *config.Config, workers int, out log.Outputter) (*Scheduler, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if cfg.Mode == config.Distributed && !cfg.ExperimentalSignals {
		return nil, errors.E("new_scheduler", errors.Phase, "distributed mode requires experimental-signals")
	}
	if workers <= 0 {
		workers = 1
	}
	s := &Scheduler{
		Log:    log.FromConfig(cfg, out),
		Cfg:    cfg,
		wake:   make(chan struct{}, 1),
		jobs:   make(chan *Action),
		closed: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		go s.work()
	}
	go s.dispatch()
	return s, nil
}

func (s *Scheduler) work() {
	for {
		select {
		case a := <-s.jobs:
			a.Fn(a.Args)
			a.Output.Trigger()
		case <-s.closed:
			return
		}
	}
}

// dispatch is the scheduler's single cooperative thread: it drains the
// priority queue into the worker job channel whenever an action
// becomes ready (signaled via wake), blocking on each send until a
// worker takes the action, so every drain empties the queue.
func (s *Scheduler) dispatch() {
	for {
		select {
		case <-s.wake:
		case <-s.closed:
			return
		}
		for {
			s.mu.Lock()
			if s.queue.Len() == 0 {
				s.mu.Unlock()
				break
			}
			a := heap.Pop(&s.queue).(*Action)
			s.mu.Unlock()
			select {
			case s.jobs <- a:
			case <-s.closed:
				return
			}
		}
	}
}

func (s *Scheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Exec schedules fn(args) to run once sig triggers, with priority
// determining dispatch order among actions that become ready at
// overlapping times. It returns a signal that triggers on completion.
func (s *Scheduler) Exec(sig *Signal, priority int, fn ActionFunc, args interface{}) *Signal {
	out := NewSignal()
	a := &Action{Precondition: sig, Fn: fn, Args: args, Output: out, Priority: priority}
	go func() {
		sig.Wait()
		s.mu.Lock()
		a.seq = s.seq
		s.seq++
		heap.Push(&s.queue, a)
		s.mu.Unlock()
		s.notify()
	}()
	return out
}

// Close stops the dispatcher and worker goroutines. Actions already
// enqueued but not yet dispatched are abandoned, matching §5's "no
// cancellation primitive" — Close is for orderly process shutdown, not
// for canceling in-flight work.
func (s *Scheduler) Close() { close(s.closed) }
