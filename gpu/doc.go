// Package gpu implements the §4.D tree-reduction engine: a primary
// pass that accumulates per-block partial reductions into shared
// scratch slots and a secondary pass that folds those partials into
// the true global, preserving any pre-existing value.
//
// There is no CUDA here. Goroutines stand in for GPU threads and a
// sync.WaitGroup stands in for the shared-memory block barrier; the
// tree-reduction shape and ordering are exactly the spec's.
package gpu
