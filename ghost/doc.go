// Package ghost implements the halo-exchange machinery of §4.G:
// per-neighbor inbound/outbound buffers keyed by a ghost_id in
// [0, 3^d), the gather/send/recv/scatter sequence a distributed
// kernel's boundary access drives, and a per-field channel-readiness
// counter built on wg.WaitGroup.
package ghost
