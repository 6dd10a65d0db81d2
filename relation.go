package liszt

import (
	"sync/atomic"

	"github.com/clemire/liszt-in-terra/errors"
)

// Mode is a relation's storage discipline.
type Mode int

const (
	// PLAIN relations hold an opaque, ordered set of row ids.
	PLAIN Mode = iota
	// GRID relations index a 1-, 2-, or 3-dimensional space with
	// per-axis periodicity.
	GRID
	// GROUPED relations are sorted by a key field so that rows sharing
	// a key are contiguous.
	GROUPED
	// ELASTIC relations support row insertion and deletion.
	ELASTIC
)

func (m Mode) String() string {
	switch m {
	case PLAIN:
		return "PLAIN"
	case GRID:
		return "GRID"
	case GROUPED:
		return "GROUPED"
	case ELASTIC:
		return "ELASTIC"
	default:
		return "BAD"
	}
}

var relationUID uint64

// Relation is an ordered collection of rows, identified by a stable
// numeric UID. See §3 of the runtime design for the full invariants
// governing each Mode.
type Relation struct {
	UID  uint64
	Name string
	Mode Mode

	// Dims holds the per-axis extent for GRID relations.
	Dims []int
	// Periodic holds the per-axis periodicity for GRID relations; same
	// length as Dims.
	Periodic []bool

	// logicalSize is the number of rows visible to the user.
	// concreteSize is the number of rows actually allocated. They are
	// equal except for ELASTIC relations.
	logicalSize  int
	concreteSize int

	fields  []*Field
	byName  map[string]*Field
	subsets map[string]*Subset

	// liveMask is non-nil only for ELASTIC relations.
	liveMask *Field

	isFragmented bool

	// groupKey is set once GroupBy succeeds; Offset/Length live on the
	// source relation, keyed by the source relation's rows.
	groupKey *Field
	// groupedBy records the relations that have been grouped against
	// this relation as a source, i.e. the back-reference from §4.A.
	groupedBy []*Relation
	// offset/length are populated on the SOURCE relation of a GroupBy
	// (see Relation.GroupBy), one entry per source row (key value).
	offset []int
	length []int

	// copyGen caches the generated per-relation defrag copy routine
	// (§4.E), keyed by the relation's structural signature. Regenerated
	// only when the schema (the set/order/type of fields) changes.
	copyGenSig Digest
	copyGen    func(r *Relation, dst, src int)
}

// NewRelation allocates a new Relation. dims/periodic are required for
// GRID and ignored otherwise; size is the initial logical==concrete
// size for the other non-ELASTIC modes. ELASTIC relations always start
// at size 0, whatever size is passed, and grow via Insert.
func NewRelation(name string, mode Mode, size int, dims []int, periodic []bool) (*Relation, error) {
	if mode == GRID {
		if len(dims) == 0 {
			return nil, errors.E("new_relation", errors.Schema, "GRID relation requires dims")
		}
		if len(periodic) != len(dims) {
			return nil, errors.E("new_relation", errors.Schema, "periodic and dims length mismatch")
		}
		size = 1
		for _, d := range dims {
			size *= d
		}
	}
	r := &Relation{
		UID:      atomic.AddUint64(&relationUID, 1),
		Name:     name,
		Mode:     mode,
		Dims:     append([]int(nil), dims...),
		Periodic: append([]bool(nil), periodic...),
		byName:   make(map[string]*Field),
		subsets:  make(map[string]*Subset),
	}
	if mode == ELASTIC {
		size = 0
	}
	r.logicalSize = size
	r.concreteSize = size
	if mode == ELASTIC {
		f, err := r.newFieldLocked("__live__", Scalar(Bool))
		if err != nil {
			return nil, err
		}
		r.liveMask = f
	}
	return r, nil
}

// LogicalSize returns the number of rows visible to the user.
func (r *Relation) LogicalSize() int { return r.logicalSize }

// ConcreteSize returns the number of rows actually allocated.
func (r *Relation) ConcreteSize() int { return r.concreteSize }

// IsFragmented reports whether r's live rows are sparse within its
// concrete storage (ELASTIC only).
func (r *Relation) IsFragmented() bool { return r.isFragmented }

// IsLive reports whether row i is a live row of an ELASTIC relation.
// Non-elastic relations report every row < logicalSize as live.
func (r *Relation) IsLive(i int) bool {
	if r.liveMask == nil {
		return i >= 0 && i < r.logicalSize
	}
	return r.liveMask.boolData[i]
}

// Field looks up a field by name.
func (r *Relation) Field(name string) (*Field, bool) {
	f, ok := r.byName[name]
	return f, ok
}

// Fields returns the relation's fields in declaration order, excluding
// the internal live mask.
func (r *Relation) Fields() []*Field {
	out := make([]*Field, 0, len(r.fields))
	for _, f := range r.fields {
		if f == r.liveMask {
			continue
		}
		out = append(out, f)
	}
	return out
}

// NewField allocates a new field of the given type on r.
//
// NewField fails if r is fragmented, if name is already taken, or if
// typ is a key-of-ELASTIC-relation field: row ids into elastic storage
// are not stable, so a key field cannot reference one.
func (r *Relation) NewField(name string, typ Type) (*Field, error) {
	if r.isFragmented {
		return nil, errors.E("new_field", errors.Schema, name, "relation is fragmented")
	}
	return r.newFieldLocked(name, typ)
}

func (r *Relation) newFieldLocked(name string, typ Type) (*Field, error) {
	if _, ok := r.byName[name]; ok {
		return nil, errors.E("new_field", errors.Schema, name, "duplicate field name")
	}
	if typ.Kind == KeyOf && typ.Of != nil && typ.Of.Mode == ELASTIC {
		return nil, errors.E("new_field", errors.Schema, name, "key field into elastic relation is forbidden")
	}
	f := &Field{
		Name:  name,
		Type:  typ,
		owner: r,
	}
	f.allocate(r.concreteSize)
	r.fields = append(r.fields, f)
	r.byName[name] = f
	r.bumpSchema()
	return f, nil
}

// bumpSchema invalidates the cached defrag copy routine; called
// whenever the field list changes shape.
func (r *Relation) bumpSchema() {
	r.copyGen = nil
}

// StructuralSignature hashes the relation's field names, in
// declaration order, together with their types. Kernel versions use it
// to detect a schema change and trigger recompilation (§4.C); the
// defrag copy cache (§4.E) uses the unexported form below for the same
// purpose.
func (r *Relation) StructuralSignature() Digest {
	return r.structuralSignature()
}

// structuralSignature hashes the relation's field names, in
// declaration order, together with their types. It is used to key the
// generated defrag copy routine (§4.E) so regeneration happens only on
// schema change.
func (r *Relation) structuralSignature() Digest {
	parts := make([]string, 0, len(r.fields)*2)
	for _, f := range r.fields {
		parts = append(parts, f.Name, f.Type.String())
	}
	return DigestString(parts...)
}

// Resize grows or shrinks an ELASTIC relation's concrete and logical
// sizes. Field contents are preserved for indices < min(old, new)
// concrete size.
func (r *Relation) Resize(newConcrete, newLogical int) error {
	if r.Mode != ELASTIC {
		return errors.E("resize", errors.Schema, r.Name, "not ELASTIC")
	}
	old := r.concreteSize
	for _, f := range r.fields {
		f.resize(old, newConcrete)
	}
	r.concreteSize = newConcrete
	r.logicalSize = newLogical
	return nil
}

// Swap exchanges the storage of f1 and f2. Both must belong to r and
// share the same type.
func (r *Relation) Swap(f1, f2 *Field) error {
	if f1.owner != r || f2.owner != r {
		return errors.E("swap", errors.Schema, "fields have different owners")
	}
	if !f1.Type.Equal(f2.Type) {
		return errors.E("swap", errors.Schema, "mismatched field types")
	}
	f1.swapStorage(f2)
	return nil
}

// Copy copies the contents of field from into field to. Both must
// belong to r and share the same type.
func (r *Relation) Copy(from, to *Field) error {
	if from.owner != r || to.owner != r {
		return errors.E("copy", errors.Schema, "fields have different owners")
	}
	if !from.Type.Equal(to.Type) {
		return errors.E("copy", errors.Schema, "mismatched field types")
	}
	to.copyFrom(from)
	return nil
}

// GroupBy transitions r to GROUPED mode. Legal only on PLAIN relations
// whose key field references a source relation of smaller or equal
// size. GroupBy performs a linear scan of key, which must already be
// sorted ascending, and writes offset[k]/length[k] onto the source
// relation.
func (r *Relation) GroupBy(key *Field) error {
	if r.Mode != PLAIN {
		return errors.E("group_by", errors.Schema, r.Name, "relation is not PLAIN")
	}
	if key.owner != r {
		return errors.E("group_by", errors.Schema, "key field not owned by this relation")
	}
	if key.Type.Kind != KeyOf || key.Type.Of == nil {
		return errors.E("group_by", errors.Schema, "key field is not key-of-relation")
	}
	src := key.Type.Of
	if src.logicalSize > r.logicalSize {
		return errors.E("group_by", errors.Schema, "source relation is larger than this relation")
	}
	offset := make([]int, src.logicalSize)
	length := make([]int, src.logicalSize)
	prev := -1
	for i := 0; i < r.logicalSize; i++ {
		k := key.keyData[i]
		if k < prev {
			return errors.E("group_by", errors.Schema, "key field is not sorted ascending")
		}
		if k != prev {
			offset[k] = i
		}
		length[k]++
		prev = k
	}
	r.Mode = GROUPED
	r.groupKey = key
	src.offset = offset
	src.length = length
	src.groupedBy = append(src.groupedBy, r)
	return nil
}

// Offset returns the starting row index, within the relation grouped
// against this one, of the group keyed by k, where k is a row of this
// (source) relation.
func (r *Relation) Offset(k int) int { return r.offset[k] }

// Length returns the number of rows in the group keyed by k.
func (r *Relation) Length(k int) int { return r.length[k] }

// Predicate decides whether row i belongs to a subset.
type Predicate func(i int) bool

// selectivityThreshold is the §3 "10% rule": subsets selecting more
// than this fraction of a non-grid, non-distributed relation are
// stored as a dense boolean mask; below it, as a packed index list.
// Grid relations always use boolmask storage.
const selectivityThreshold = 0.10

// NewSubset evaluates pred over every row of r and creates a named,
// read-only Subset. Storage shape (boolmask vs. index list) is chosen
// by the selectivity rule in §3/§8.
func (r *Relation) NewSubset(name string, pred Predicate) (*Subset, error) {
	if _, ok := r.subsets[name]; ok {
		return nil, errors.E("new_subset", errors.Schema, name, "duplicate subset name")
	}
	n := r.logicalSize
	selected := make([]int, 0, n/8+1)
	mask := make([]bool, n)
	count := 0
	for i := 0; i < n; i++ {
		if pred(i) {
			mask[i] = true
			selected = append(selected, i)
			count++
		}
	}
	useMask := r.Mode == GRID
	if !useMask && n > 0 {
		useMask = float64(count)/float64(n) > selectivityThreshold
	}
	s := &Subset{Name: name, owner: r}
	if useMask {
		s.mask = mask
		s.count = count
	} else {
		s.index = selected
	}
	r.subsets[name] = s
	return s, nil
}

// Subset looks up a previously created subset by name.
func (r *Relation) Subset(name string) (*Subset, bool) {
	s, ok := r.subsets[name]
	return s, ok
}
