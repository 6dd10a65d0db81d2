// Package sched implements the distributed mode's signal-graph
// scheduler (§4.F): a single-threaded cooperative dispatcher driving a
// priority queue of actions, each gated by a precondition signal and
// dispatched to a fixed worker-thread pool on completion.
//
// Unlike grailbio-reflow's sched package, which packs Tasks onto
// remote Allocs leased from a Cluster, this scheduler dispatches
// per-field signal actions onto local worker goroutines — there is no
// remote alloc to lease; node/worker own that concern instead.
package sched
