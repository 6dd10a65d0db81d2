package sched

import (
	liszt "github.com/clemire/liszt-in-terra"
	"github.com/clemire/liszt-in-terra/kernel"
)

// Task records a relation, an ordered list of field accesses, and the
// per-access privilege, per §4.F's task launch protocol. Fn is run
// once every precondition signal derived from Accesses has triggered.
type Task struct {
	Relation *liszt.Relation
	Accesses []kernel.Access
	Priority int
	Fn       func()
}

// fieldSignal returns f's current signal for the given accessor,
// initializing it to an already-triggered Source the first time a
// field is touched so that the first access on any field never blocks
// on a signal that was never produced.
func fieldSignal(get func() interface{}, set func(interface{})) *Signal {
	v := get()
	if v == nil {
		s := Source()
		set(s)
		return s
	}
	return v.(*Signal)
}

// Launch runs t.Fn once every field access's precondition triggers
// (§4.F "Task launch"), then forks the completion signal back into
// each accessed field's last_read/last_write per the discipline below.
func (s *Scheduler) Launch(t *Task) *Signal {
	inputs := make([]*Signal, 0, len(t.Accesses))
	for _, a := range t.Accesses {
		inputs = append(inputs, declareInput(a.Field, a.Privilege))
	}
	precondition := Merge(inputs...)
	output := s.Exec(precondition, t.Priority, func(interface{}) { t.Fn() }, nil)
	for _, a := range t.Accesses {
		declareOutput(a.Field, a.Privilege, output)
	}
	return output
}

// declareInput computes the precondition signal for one field access
// and advances the field's last_read/last_write state as required to
// admit the *next* access concurrently with this one, per §4.F.
func declareInput(f *liszt.Field, priv kernel.Privilege) *Signal {
	lastWrite := fieldSignal(f.LastWrite, f.SetLastWrite)
	switch priv {
	case kernel.ReadOnly:
		// Fork last_write into two: one branch is this action's input,
		// the other replaces last_write so a concurrent reader or the
		// next writer still waits on the same completed write.
		in, keep := ForkTwo(lastWrite)
		f.SetLastWrite(keep)
		return in
	case kernel.ReadWrite:
		lastRead := fieldSignal(f.LastRead, f.SetLastRead)
		return Merge(lastRead, lastWrite)
	case kernel.Reduce:
		return lastWrite
	default:
		return Source()
	}
}

// declareOutput folds an action's completion signal back into the
// field's last_read/last_write per §4.F, after declareInput already
// consumed the pre-action state.
func declareOutput(f *liszt.Field, priv kernel.Privilege, output *Signal) {
	switch priv {
	case kernel.ReadOnly:
		lastRead := fieldSignal(f.LastRead, f.SetLastRead)
		f.SetLastRead(Merge(lastRead, output))
	case kernel.ReadWrite:
		f.SetLastRead(output)
		f.SetLastWrite(output)
	case kernel.Reduce:
		lastWrite := fieldSignal(f.LastWrite, f.SetLastWrite)
		f.SetLastWrite(Merge(lastWrite, output))
	}
}
