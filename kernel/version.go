package kernel

import (
	liszt "github.com/clemire/liszt-in-terra"
	"github.com/clemire/liszt-in-terra/errors"
	"github.com/clemire/liszt-in-terra/log"
)

// Processor selects where a Version's compiled executable runs.
type Processor int

const (
	CPU Processor = iota
	GPU
)

func (p Processor) String() string {
	if p == GPU {
		return "GPU"
	}
	return "CPU"
}

// Intent records whether a kernel mutates an ELASTIC relation's row
// population.
type Intent int

const (
	NoIntent Intent = iota
	InsertIntent
	DeleteIntent
)

// Access declares a kernel's required privilege over one field,
// supplied at kernel declaration time so compile can build the
// argument layout from it.
type Access struct {
	Field     *liszt.Field
	Privilege Privilege
	Op        liszt.ReduceOp
}

// GlobalAccess declares a kernel's required privilege over one global.
type GlobalAccess struct {
	Global    *liszt.Global
	Privilege Privilege
	Op        liszt.ReduceOp
}

// Args is the bound argument struct a Body executes against: the
// Go-native analogue of the packed struct in §4.B.
type Args struct {
	Bounds []Bound
	Index  []int

	Fields  map[string]*liszt.Field
	Globals map[string]*liszt.Global

	// Insert/Delete carry the live reservation for an ELASTIC
	// insert/delete kernel; nil for kernels without that Intent.
	Insert *liszt.InsertReservation
	Delete *liszt.DeleteReservation

	// Row is set by the caller immediately before each per-row
	// invocation of Body; it is the one piece of per-row state that a
	// generated inner loop would otherwise receive as a loop induction
	// variable.
	Row int

	// Reduce is how Body folds a value into a Reduce-privileged global
	// named name, via that global's declared op. On CPU this folds
	// directly into the Global; on GPU (package gpu) it folds into the
	// calling thread's shared tree-reduction slot instead, so Body never
	// needs to know which processor it is running on.
	Reduce func(name string, v interface{})
}

// Body plays the role of the external code generator's emitted inner
// loop: a function of the bound argument struct that the runtime
// invokes once per row (or once per reducing thread, under the GPU
// engine). It returns void, per the generated-function contract.
type Body func(args *Args)

// Kernel is a declared, uncompiled mapping of Body over Relation,
// optionally restricted to Subset.
type Kernel struct {
	Name      string
	Relation  *liszt.Relation
	Subset    *liszt.Subset
	Processor Processor
	Body      Body

	Accesses       []Access
	GlobalAccesses []GlobalAccess

	Intent Intent
	// LaunchSize is the kernel_launch_size header room reserved for an
	// InsertIntent kernel; unused otherwise.
	LaunchSize int
}

// ReduceEngine performs the §4.D tree reduction for a GPU kernel that
// declares one or more Reduce-privileged globals. Implemented by
// package gpu.
type ReduceEngine interface {
	Launch(rows []int, reduces []GlobalAccess, body Body, args *Args) error
}

// State is a Version's position in the compile/bind/launch state
// machine (§4.C).
type State int

const (
	Declared State = iota
	Compiled
	Ready
	Launched
)

func (s State) String() string {
	switch s {
	case Declared:
		return "declared"
	case Compiled:
		return "compiled"
	case Ready:
		return "ready"
	case Launched:
		return "launched"
	default:
		return "bad"
	}
}

// Version is a (kernel, processor, subset-shape) triple carried
// through compile, dynamic_checks, bind, launch and post_launch.
type Version struct {
	Kernel *Kernel
	Engine ReduceEngine // required only for GPU kernels with Reduce globals
	// Log receives the verbose-logging dependency dump on every Compile.
	// Nil is safe and simply drops the dump.
	Log *log.Logger

	state  State
	layout *Layout

	schemaSig liszt.Digest

	insertRes *liszt.InsertReservation
	deleteRes *liszt.DeleteReservation

	reduceGlobals []GlobalAccess
}

// NewVersion declares a version over k, uncompiled.
func NewVersion(k *Kernel) *Version {
	return &Version{Kernel: k, state: Declared}
}

// State returns the version's current state.
func (v *Version) State() State { return v.state }

// Compile builds the argument layout, in the order described in
// §4.C.compile: register field/global accesses, register
// insert/delete intent, extend for GPU reduction, and (implicitly)
// hand off to Body as the generated executable. Re-entrant: compiling
// an already-compiled version rebuilds the layout from scratch, the
// path taken on a schema change.
func (v *Version) Compile() error {
	k := v.Kernel
	bounds := []Bound{{Lo: 0, Hi: k.Relation.LogicalSize() - 1}}
	if k.Relation.Mode == liszt.ELASTIC {
		bounds[0] = Bound{Lo: 0, Hi: k.Relation.ConcreteSize() - 1}
	}
	layout := NewLayout(bounds)

	if k.Subset != nil && !k.Subset.IsMask() {
		if err := layout.SetIndex(k.Subset.Rows()); err != nil {
			return err
		}
	}

	for _, a := range k.Accesses {
		if err := layout.AddField(a.Field, a.Privilege, a.Op); err != nil {
			return err
		}
	}
	var reduces []GlobalAccess
	for _, g := range k.GlobalAccesses {
		if err := layout.AddGlobal(g.Global, g.Privilege, g.Op); err != nil {
			return err
		}
		if g.Privilege == Reduce {
			reduces = append(reduces, g)
		}
	}

	if k.Relation.Mode == liszt.ELASTIC && k.Intent != NoIntent {
		// The write-index / deletion-count globals are internal to the
		// relation's elastic protocol (package-level Begin{Insert,Delete})
		// rather than user-declared globals; compile only records that
		// the kernel carries the intent so dynamic_checks and post_launch
		// know which reservation to expect in Args.
	}

	if k.Processor == GPU && len(reduces) > 0 {
		if v.Engine == nil {
			return errors.E("compile", errors.Phase, k.Name, "GPU kernel reduces globals but has no reduce engine")
		}
		for _, g := range reduces {
			if err := layout.AddScratch(g.Global.Name); err != nil {
				return err
			}
		}
	}

	v.layout = layout
	v.reduceGlobals = reduces
	v.schemaSig = k.Relation.StructuralSignature()
	v.state = Compiled
	v.Log.Dependencies(k.Name, dependencyStrings(k))
	return nil
}

// dependencyStrings renders a kernel's declared field and global
// accesses for the verbose-logging dependency dump.
func dependencyStrings(k *Kernel) []string {
	out := make([]string, 0, len(k.Accesses)+len(k.GlobalAccesses))
	for _, a := range k.Accesses {
		out = append(out, a.Field.Name+"("+a.Privilege.String()+")")
	}
	for _, g := range k.GlobalAccesses {
		out = append(out, g.Global.Name+"("+g.Privilege.String()+")")
	}
	return out
}

// DynamicChecks runs the §4.C per-execute validation. It also detects
// a schema change since the last compile and recompiles transparently,
// matching the "re-compile on schema change" edge in the state diagram.
func (v *Version) DynamicChecks() error {
	if v.state == Declared {
		if err := v.Compile(); err != nil {
			return err
		}
	}
	k := v.Kernel
	if v.schemaSig != k.Relation.StructuralSignature() {
		if err := v.Compile(); err != nil {
			return err
		}
	}
	for _, slot := range v.layout.Fields() {
		if slot.Field.Loc == liszt.Region || (k.Processor == CPU && slot.Field.Loc == liszt.Device) {
			return errors.E("dynamic_checks", errors.Phase, k.Name, slot.Field.Name, "field not resident on target processor")
		}
	}
	if k.Intent == InsertIntent {
		// No record type check is made for an insert: k.Accesses is not
		// compared against k.Relation's fields, and Kernel construction
		// does not enforce a match either.
	}
	if k.Subset != nil {
		wantMask := k.Subset.IsMask()
		haveIndex := v.layout.Index != nil
		if wantMask == haveIndex {
			return errors.E("dynamic_checks", errors.Phase, k.Name, "compiled subset shape does not match supplied subset shape")
		}
	}
	v.state = Ready
	return nil
}

// Bind resolves the layout's pointers against live storage. For a
// single-node Version this means nothing beyond what DynamicChecks
// already guaranteed (fields keep stable backing slices); its role is
// to open the Args the Body will run against, plus set up any
// ELASTIC insert/delete reservation the kernel declared.
func (v *Version) Bind() (*Args, error) {
	if v.state != Ready {
		return nil, errors.E("bind", errors.Phase, v.Kernel.Name, "version is not ready")
	}
	k := v.Kernel
	args := &Args{
		Bounds:  v.layout.Bounds,
		Index:   v.layout.Index,
		Fields:  make(map[string]*liszt.Field, len(k.Accesses)),
		Globals: make(map[string]*liszt.Global, len(k.GlobalAccesses)),
	}
	for _, a := range k.Accesses {
		args.Fields[a.Field.Name] = a.Field
	}
	for _, g := range k.GlobalAccesses {
		args.Globals[g.Global.Name] = g.Global
	}
	switch k.Intent {
	case InsertIntent:
		res, err := k.Relation.BeginInsert(k.LaunchSize)
		if err != nil {
			return nil, err
		}
		v.insertRes = res
		args.Insert = res
	case DeleteIntent:
		res, err := k.Relation.BeginDelete()
		if err != nil {
			return nil, err
		}
		v.deleteRes = res
		args.Delete = res
	}
	return args, nil
}

// Launch invokes Body once per row of the bound Args (or, for a GPU
// kernel with a Reduce global, hands off to Engine for the §4.D
// tree-reduction launch instead of iterating directly).
func (v *Version) Launch(args *Args) error {
	if v.state != Ready {
		return errors.E("launch", errors.Phase, v.Kernel.Name, "version is not ready")
	}
	k := v.Kernel
	var rows []int
	switch {
	case k.Intent == InsertIntent:
		// An insert kernel's "rows" are launch threads, not existing
		// relation rows: each thread calls args.Insert.Reserve itself to
		// obtain its destination.
		rows = make([]int, k.LaunchSize)
		for i := range rows {
			rows[i] = i
		}
	case args.Index != nil:
		rows = args.Index
	default:
		rows = make([]int, 0, args.Bounds[0].Hi-args.Bounds[0].Lo+1)
		for i := args.Bounds[0].Lo; i <= args.Bounds[0].Hi; i++ {
			if (k.Relation.Mode != liszt.ELASTIC || k.Relation.IsLive(i)) && (k.Subset == nil || k.Subset.Contains(i)) {
				rows = append(rows, i)
			}
		}
	}
	v.state = Launched
	if k.Processor == GPU && len(v.reduceGlobals) > 0 {
		return v.Engine.Launch(rows, v.reduceGlobals, k.Body, args)
	}
	opFor := make(map[string]liszt.ReduceOp, len(v.reduceGlobals))
	for _, g := range v.reduceGlobals {
		opFor[g.Global.Name] = g.Op
	}
	args.Reduce = func(name string, val interface{}) {
		args.Globals[name].Reduce(opFor[name], val)
	}
	for _, row := range rows {
		args.Row = row
		k.Body(args)
	}
	return nil
}

// PostLaunch runs the §4.C post-processing step: reconciling an
// elastic insert/delete's side effects on the relation, or (for CPU
// kernels; GPU reduction post-processing is internal to Engine.Launch)
// nothing further.
func (v *Version) PostLaunch() error {
	k := v.Kernel
	switch k.Intent {
	case InsertIntent:
		if err := v.insertRes.CommitInsert(); err != nil {
			return err
		}
	case DeleteIntent:
		if err := v.deleteRes.CommitDelete(); err != nil {
			return err
		}
	}
	v.state = Compiled
	return nil
}

// Run is a convenience that drives a Declared or stale Version through
// dynamic_checks, bind, launch and post_launch in one call, the shape
// most callers want.
func (v *Version) Run() error {
	if err := v.DynamicChecks(); err != nil {
		return err
	}
	args, err := v.Bind()
	if err != nil {
		return err
	}
	if err := v.Launch(args); err != nil {
		return err
	}
	return v.PostLaunch()
}
