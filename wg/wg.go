// Package wg implements a channel-enabled WaitGroup, used where a
// component must block on a dynamic number of outstanding events while
// still being selectable alongside other channels in a select
// statement — package ghost's per-field channel-readiness counter
// waits on a wg.WaitGroup's C() so a scatter can proceed as soon as
// every neighbor's buffer for that field has arrived, without a
// dedicated goroutine per field.
package wg

import "sync"

// A WaitGroup waits for a collection of goroutines to finish. The main
// goroutine calls Add to set the number of goroutines to wait for. Then each
// of the goroutines runs and calls Done when finished. At the same time, a
// receive from C() can be used to block until all goroutines have finished.
// A WaitGroup must not be copied after first use.
//
// TODO(marius): this could be made more efficient by using atomics.
type WaitGroup struct {
	mu    sync.Mutex
	n     int
	waitc chan struct{}
}

// Add adds delta, which may be negative, to the WaitGroup counter. If the
// counter becomes zero, all goroutines blocked on C() are released. If the
// counter goes negative, Add panics.
//
// Note that calls with a positive delta that occur when the counter is zero
// must happen before a call to C(). Calls with a negative delta, or calls with a
// positive delta that start when the counter is greater than zero, may happen
// at any time. Typically this means the calls to Add should execute before the
// statement creating the goroutine or other event to be waited for. If a
// WaitGroup is reused to wait for several independent sets of events, new Add
// calls must happen after all previous waits on C() have returned.
func (w *WaitGroup) Add(delta int) {
	w.mu.Lock()
	w.n += delta
	if w.n < 0 {
		panic("negative waitgroup count")
	}
	var c chan struct{}
	if w.n == 0 {
		c = w.waitc
		w.waitc = nil
	}
	w.mu.Unlock()
	if c != nil {
		close(c)
	}
}

// Done decrements the WaitGroup counter.
func (w *WaitGroup) Done() {
	w.Add(-1)
}

// C returns a channel that is closed when the waitgroup count is 0.
func (w *WaitGroup) C() <-chan struct{} {
	w.mu.Lock()
	if w.n == 0 {
		w.mu.Unlock()
		c := make(chan struct{})
		close(c)
		return c
	}
	c := w.waitc
	if c == nil {
		c = make(chan struct{})
		w.waitc = c
	}
	w.mu.Unlock()
	return c
}

// N returns the current counter value.
func (w *WaitGroup) N() int {
	w.mu.Lock()
	n := w.n
	w.mu.Unlock()
	return n
}
