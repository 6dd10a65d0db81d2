// Package node implements §4.I: the compute-node resource pool the
// control node leases partition blocks against before dispatching
// newTask/launchTask events. Grounded on the teacher's alloc-leasing
// model (pool.Pool/pool.Alloc in grailbio-reflow/pool): node.Pool
// tracks registered nodes and their liszt.Resources, and node.Lease
// represents one active block assignment, released when its tasks
// complete.
package node
