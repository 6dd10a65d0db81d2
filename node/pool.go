package node

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	liszt "github.com/clemire/liszt-in-terra"
	"github.com/clemire/liszt-in-terra/errors"
)

type entry struct {
	addr     string
	capacity liszt.Resources
	leased   liszt.Resources
}

// Pool tracks the compute nodes registered with the control node and
// the liszt.Resources currently leased out to each, per §4.I. Node 0
// (the control node) is never registered here; Pool tracks nodes
// 1..N-1 only.
type Pool struct {
	mu    sync.Mutex
	nodes map[int]*entry

	registeredNodes prometheus.Gauge
	leasedBlocks    prometheus.Gauge
}

// NewPool starts an empty Pool.
func NewPool() *Pool {
	return &Pool{
		nodes: make(map[int]*entry),
		registeredNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "liszt_node_pool_registered_nodes",
			Help: "Number of compute nodes currently registered with the control node.",
		}),
		leasedBlocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "liszt_node_pool_leased_blocks",
			Help: "Number of partition blocks currently leased to a compute node.",
		}),
	}
}

// Collectors returns the Pool's metrics for registration with a
// prometheus.Registerer.
func (p *Pool) Collectors() []prometheus.Collector {
	return []prometheus.Collector{p.registeredNodes, p.leasedBlocks}
}

// Register publishes node id's available capacity. Registering an
// already-known id replaces its published capacity without disturbing
// any lease currently held against it.
func (p *Pool) Register(id int, addr string, capacity liszt.Resources) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.nodes[id]
	if !ok {
		e = &entry{leased: liszt.Resources{}}
		p.nodes[id] = e
		p.registeredNodes.Inc()
	}
	e.addr = addr
	e.capacity = capacity
}

// Available returns node id's published capacity minus its currently
// leased resources, or ok=false if id is not registered.
func (p *Pool) Available(id int) (avail liszt.Resources, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.nodes[id]
	if !ok {
		return nil, false
	}
	avail.Sub(e.capacity, e.leased)
	return avail, true
}

// Lease is one active assignment of resources (in practice, one
// partition block's worth of cpu/mem) to a registered node, released
// when the block's tasks complete.
type Lease struct {
	pool     *Pool
	Node     int
	Want     liszt.Resources
	released bool
}

// Lease reserves want against node id's published capacity, failing
// with an Overflow error if id has insufficient available resources —
// per the ADDED resource-leasing note, a partition must never be
// double-assigned to an exhausted node.
func (p *Pool) Lease(id int, want liszt.Resources) (*Lease, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.nodes[id]
	if !ok {
		return nil, errors.E("lease", errors.Schema, "node not registered")
	}
	var avail liszt.Resources
	avail.Sub(e.capacity, e.leased)
	if !avail.Available(want) {
		return nil, errors.E("lease", errors.Overflow, "node has insufficient available resources")
	}
	var newLeased liszt.Resources
	newLeased.Add(e.leased, want)
	e.leased = newLeased
	p.leasedBlocks.Inc()
	return &Lease{pool: p, Node: id, Want: want}, nil
}

// Release returns the leased resources to the node's available pool.
// Releasing an already-released Lease is a no-op.
func (l *Lease) Release() {
	if l == nil || l.released {
		return
	}
	l.released = true
	p := l.pool
	p.mu.Lock()
	defer p.mu.Unlock()
	e := p.nodes[l.Node]
	var newLeased liszt.Resources
	newLeased.Sub(e.leased, l.Want)
	e.leased = newLeased
	p.leasedBlocks.Dec()
}
