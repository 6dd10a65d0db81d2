package control

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/clemire/liszt-in-terra/errors"
	"github.com/clemire/liszt-in-terra/log"
)

// ControlNode is node 0 of the distributed control plane: it
// broadcasts Events to every attached ComputeNode, stamping each
// event with a per-Kind sequence number so broadcast order within a
// type is independently verifiable by each receiver.
type ControlNode struct {
	Log *log.Logger

	mu       sync.Mutex
	computes []*ComputeNode
	seq      map[EventKind]int
}

// NewControlNode starts an empty ControlNode.
func NewControlNode(lg *log.Logger) *ControlNode {
	return &ControlNode{Log: lg, seq: make(map[EventKind]int)}
}

// Attach registers a ComputeNode to receive future broadcasts.
func (c *ControlNode) Attach(n *ComputeNode) {
	c.mu.Lock()
	c.computes = append(c.computes, n)
	c.mu.Unlock()
}

// Broadcast stamps ev with the next sequence number for its Kind and
// delivers it to every attached ComputeNode concurrently, returning
// the first delivery error encountered (if any). There is no ordering
// guarantee between different event Kinds, matching §4.K; within one
// Kind, Broadcast calls are delivered and acknowledged in call order.
func (c *ControlNode) Broadcast(ev Event) error {
	c.mu.Lock()
	ev.Seq = c.seq[ev.Kind]
	c.seq[ev.Kind]++
	computes := append([]*ComputeNode(nil), c.computes...)
	c.mu.Unlock()

	c.Log.Debugf("broadcast %s seq=%d to %d node(s)", ev.Kind, ev.Seq, len(computes))

	var g errgroup.Group
	for _, n := range computes {
		n := n
		g.Go(func() error { return n.deliver(ev) })
	}
	return g.Wait()
}

// ComputeNode is one of nodes 1..N-1: it receives Events from the
// ControlNode, enforces that each Kind's events arrive in the
// sequence the ControlNode stamped, and hands the event to Handle
// (which plays the role of "acknowledges specific events" — launching
// the named task, recording a field, etc. — by returning an error only
// when the node could not carry out the event).
type ComputeNode struct {
	ID     int
	Handle func(Event) error

	mu      sync.Mutex
	lastSeq map[EventKind]int
}

// NewComputeNode starts a ComputeNode identified by id (1..N-1),
// dispatching every delivered Event to handle.
func NewComputeNode(id int, handle func(Event) error) *ComputeNode {
	return &ComputeNode{ID: id, Handle: handle, lastSeq: make(map[EventKind]int)}
}

func (n *ComputeNode) deliver(ev Event) error {
	n.mu.Lock()
	want := n.lastSeq[ev.Kind]
	if ev.Seq != want {
		n.mu.Unlock()
		return errors.E("deliver", errors.Protocol, ev.Kind.String(), "event delivered out of broadcast order")
	}
	n.lastSeq[ev.Kind] = want + 1
	n.mu.Unlock()
	if n.Handle == nil {
		return nil
	}
	return n.Handle(ev)
}
