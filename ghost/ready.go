package ghost

import "github.com/clemire/liszt-in-terra/wg"

// ReadyCounter tracks, for one field on one relation, how many of the
// relation's neighbor channels have reported their inbound buffer
// arrived. A scatter is safe to run once every expected neighbor has
// reported (C() closes); built on wg.WaitGroup so a node's dispatch
// loop can select on it alongside its other event sources instead of
// polling.
type ReadyCounter struct {
	wg.WaitGroup
}

// NewReadyCounter starts a counter expecting n neighbors to report in.
func NewReadyCounter(n int) *ReadyCounter {
	rc := &ReadyCounter{}
	rc.Add(n)
	return rc
}

// Arrived marks one neighbor's buffer as received.
func (rc *ReadyCounter) Arrived() { rc.Done() }

// Ready reports whether every expected neighbor has reported in.
func (rc *ReadyCounter) Ready() bool { return rc.N() == 0 }
