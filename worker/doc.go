// Package worker implements §4.J: on each compute node, a fixed
// worker-thread pool, one goroutine per CPU partition, draining the
// jobs its caller submits. sched.Scheduler does not use it; it runs
// its own worker goroutines. Grounded on the teacher's
// steal-and-execute worker loop (runner/worker.go, runner/stealer.go
// in grailbio-reflow), re-keyed from stealing Flows off an Eval to
// draining a plain job queue — this runtime has no evaluator to steal
// from, only the work its caller hands it directly.
package worker
