package control

import (
	liszt "github.com/clemire/liszt-in-terra"
	"github.com/clemire/liszt-in-terra/partition"
)

// EventKind tags which of the canonical distributed event set an
// Event carries.
type EventKind int

const (
	NewRelation EventKind = iota
	GlobalGridPartition
	RecordNewField
	PrepareField
	LoadFieldConstant
	MarkGhostsReady
	NewTask
	LaunchTask
)

func (k EventKind) String() string {
	switch k {
	case NewRelation:
		return "new_relation"
	case GlobalGridPartition:
		return "global_grid_partition"
	case RecordNewField:
		return "record_new_field"
	case PrepareField:
		return "prepare_field"
	case LoadFieldConstant:
		return "load_field_constant"
	case MarkGhostsReady:
		return "mark_ghosts_ready"
	case NewTask:
		return "new_task"
	case LaunchTask:
		return "launch_task"
	default:
		return "bad_event"
	}
}

// Event is the control plane's wire message: a Kind tag plus every
// event kind's payload, only the fields relevant to Kind populated.
// Seq is stamped by ControlNode.Broadcast and is how a ComputeNode
// verifies broadcast order is preserved within one event Kind.
type Event struct {
	Kind EventKind
	Seq  int

	// NewRelation
	RelationName string
	RelationMode liszt.Mode
	Dims         []int
	Periodic     []bool
	Size         int

	// GlobalGridPartition
	Blocking partition.Blocking

	// RecordNewField, LoadFieldConstant
	FieldName string
	FieldType liszt.Type
	Constant  interface{}

	// PrepareField
	GhostDepth int

	// MarkGhostsReady
	GhostID int

	// NewTask, LaunchTask
	TaskID     int
	KernelName string
}
