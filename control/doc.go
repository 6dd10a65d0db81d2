// Package control implements §4.K, the distributed control plane: a
// tagged Event union covering the canonical event set (newRelation,
// globalGridPartition, recordNewField, prepareField, loadFieldConstant,
// markGhostsReady, newTask, launchTask), a ControlNode (node 0) that
// broadcasts events in per-type order, and a ComputeNode (nodes
// 1..N-1) that acknowledges them. Event is a single tagged struct
// carrying every event kind's payload in mutually-exclusive optional
// fields, the same AST-dispatch idiom the root package's Relation/
// Field types and kernel.Kernel use.
package control
