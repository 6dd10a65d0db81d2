package kernel

import (
	liszt "github.com/clemire/liszt-in-terra"
	"github.com/clemire/liszt-in-terra/errors"
)

// Privilege is the access discipline a kernel declares for one field
// or global (§4.C step 1).
type Privilege int

const (
	// ReadOnly: the kernel only reads the field/global.
	ReadOnly Privilege = iota
	// ReadWrite: the kernel reads and writes the centered row only.
	ReadWrite
	// Reduce: the kernel combines a value into the field/global using a
	// commutative-associative op with identity.
	Reduce
)

func (p Privilege) String() string {
	switch p {
	case ReadOnly:
		return "READ_ONLY"
	case ReadWrite:
		return "READ_WRITE"
	case Reduce:
		return "REDUCE"
	default:
		return "BAD_PRIVILEGE"
	}
}

// Bound is an inclusive per-axis row range.
type Bound struct {
	Lo, Hi int
}

// FieldSlot is one field registered in a Layout.
type FieldSlot struct {
	Field     *liszt.Field
	Privilege Privilege
	Op        liszt.ReduceOp
}

// GlobalSlot is one global registered in a Layout.
type GlobalSlot struct {
	Global    *liszt.Global
	Privilege Privilege
	Op        liszt.ReduceOp
}

// Layout is the packed per-kernel argument struct described in §4.B.
// It is built incrementally during compile and finalized exactly once;
// any attempt to register a field, global, or scratch array after
// finalization is a Layout error.
type Layout struct {
	Bounds []Bound
	// Index holds the packed row list for an index-subset launch; nil
	// for boolmask or full-relation launches.
	Index []int

	fields      []*FieldSlot
	fieldByName map[string]*FieldSlot

	globals      []*GlobalSlot
	globalByName map[string]*GlobalSlot

	// scratch records, by global name, that a GPU reduction target
	// needs a per-block scratch array; the array itself is owned and
	// allocated by the reduction engine (package gpu), not here.
	scratch map[string]bool

	finalized bool
}

// NewLayout starts a Layout over the given per-axis bounds.
func NewLayout(bounds []Bound) *Layout {
	return &Layout{
		Bounds:       append([]Bound(nil), bounds...),
		fieldByName:  make(map[string]*FieldSlot),
		globalByName: make(map[string]*GlobalSlot),
		scratch:      make(map[string]bool),
	}
}

// SetIndex records the index-subset row list for this launch.
func (l *Layout) SetIndex(idx []int) error {
	if l.finalized {
		return errors.E("set_index", errors.Layout, "layout already finalized")
	}
	l.Index = idx
	return nil
}

// AddField registers field with the given privilege and (for Reduce)
// reduce op.
func (l *Layout) AddField(f *liszt.Field, priv Privilege, op liszt.ReduceOp) error {
	if l.finalized {
		return errors.E("add_field", errors.Layout, f.Name, "layout already finalized")
	}
	if _, ok := l.fieldByName[f.Name]; ok {
		return errors.E("add_field", errors.Layout, f.Name, "field already registered")
	}
	slot := &FieldSlot{Field: f, Privilege: priv, Op: op}
	l.fields = append(l.fields, slot)
	l.fieldByName[f.Name] = slot
	return nil
}

// AddGlobal registers a global with the given privilege and (for
// Reduce) reduce op.
func (l *Layout) AddGlobal(g *liszt.Global, priv Privilege, op liszt.ReduceOp) error {
	if l.finalized {
		return errors.E("add_global", errors.Layout, g.Name, "layout already finalized")
	}
	if _, ok := l.globalByName[g.Name]; ok {
		return errors.E("add_global", errors.Layout, g.Name, "global already registered")
	}
	slot := &GlobalSlot{Global: g, Privilege: priv, Op: op}
	l.globals = append(l.globals, slot)
	l.globalByName[g.Name] = slot
	return nil
}

// AddScratch records that global name needs a per-block GPU scratch
// array (§4.D). The backing array is allocated by the reduction engine
// at launch time, not here.
func (l *Layout) AddScratch(name string) error {
	if l.finalized {
		return errors.E("add_scratch", errors.Layout, name, "layout already finalized")
	}
	l.scratch[name] = true
	return nil
}

// Finalize closes the layout to further registration. Querying Fields
// or Globals implicitly finalizes, matching the spec's "after the
// first query of the struct type, no further fields/globals may be
// added."
func (l *Layout) Finalize() { l.finalized = true }

// Finalized reports whether the layout has been closed.
func (l *Layout) Finalized() bool { return l.finalized }

// Fields returns the registered field slots and finalizes the layout.
func (l *Layout) Fields() []*FieldSlot {
	l.finalized = true
	return l.fields
}

// Globals returns the registered global slots and finalizes the layout.
func (l *Layout) Globals() []*GlobalSlot {
	l.finalized = true
	return l.globals
}

// FieldSlot looks up a registered field slot by name.
func (l *Layout) FieldSlot(name string) (*FieldSlot, bool) {
	s, ok := l.fieldByName[name]
	return s, ok
}

// GlobalSlot looks up a registered global slot by name.
func (l *Layout) GlobalSlot(name string) (*GlobalSlot, bool) {
	s, ok := l.globalByName[name]
	return s, ok
}

// HasScratch reports whether global name was registered for a GPU
// scratch array.
func (l *Layout) HasScratch(name string) bool { return l.scratch[name] }
