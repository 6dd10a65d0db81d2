package liszt

import (
	"encoding/binary"
	"math"
)

// Location identifies where a field's backing storage currently
// resides.
type Location int

const (
	// Host storage is a plain Go byte slice in process memory.
	Host Location = iota
	// Device storage simulates GPU-resident memory: a second byte
	// buffer the runtime treats as unavailable to CPU-only kernels
	// until migrated.
	Device
	// Region storage is an opaque handle into a partition's region in
	// distributed mode; the actual bytes live behind the region, not
	// in this process.
	Region
)

// Field is a single typed column on one relation. A field's element
// count always equals its owner's concrete size (the invariant
// asserted after every mutating Relation operation).
type Field struct {
	Name string
	Type Type
	Loc  Location

	owner *Relation

	// raw is the byte-packed host backing store, used for every kind
	// except Bool and KeyOf, which keep dedicated typed slices below
	// for fast access by the runtime itself (live masks, group keys).
	raw []byte

	boolData []bool
	keyData  []int

	device []byte // mirrors raw when Loc == Device

	// last{Read,Write} are the two signals the spec requires every
	// field to track at all times (§3 Signal). They are meaningful only
	// under the distributed scheduler (package sched); single-node
	// execution leaves them nil.
	lastRead  interface{}
	lastWrite interface{}

	// region is the distributed opaque region handle, set once a
	// partitioner (package partition) assigns this field's relation to
	// a block.
	region interface{}
}

func (f *Field) elemSize() int { return f.Type.ElemSize() }

func (f *Field) allocate(n int) {
	switch f.Type.Kind {
	case Bool:
		f.boolData = make([]bool, n)
	case KeyOf:
		f.keyData = make([]int, n)
	default:
		f.raw = make([]byte, n*f.elemSize())
	}
}

func (f *Field) resize(oldN, newN int) {
	switch f.Type.Kind {
	case Bool:
		nb := make([]bool, newN)
		copy(nb, f.boolData)
		f.boolData = nb
	case KeyOf:
		nk := make([]int, newN)
		copy(nk, f.keyData)
		f.keyData = nk
	default:
		nr := make([]byte, newN*f.elemSize())
		copy(nr, f.raw)
		f.raw = nr
	}
}

func (f *Field) swapStorage(g *Field) {
	f.raw, g.raw = g.raw, f.raw
	f.boolData, g.boolData = g.boolData, f.boolData
	f.keyData, g.keyData = g.keyData, f.keyData
	f.device, g.device = g.device, f.device
}

func (f *Field) copyFrom(g *Field) {
	switch f.Type.Kind {
	case Bool:
		copy(f.boolData, g.boolData)
	case KeyOf:
		copy(f.keyData, g.keyData)
	default:
		copy(f.raw, g.raw)
	}
}

// copyRow copies row src of g into row dst of f. f and g must share a
// type; used by the defrag copy routine (Relation.defragCopyRoutine).
func (f *Field) copyRow(dst int, g *Field, src int) {
	switch f.Type.Kind {
	case Bool:
		f.boolData[dst] = g.boolData[src]
	case KeyOf:
		f.keyData[dst] = g.keyData[src]
	default:
		sz := f.elemSize()
		copy(f.raw[dst*sz:(dst+1)*sz], g.raw[src*sz:(src+1)*sz])
	}
}

// Bool-kind accessors.

func (f *Field) GetBool(i int) bool    { return f.boolData[i] }
func (f *Field) SetBool(i int, v bool) { f.boolData[i] = v }

// Key-kind accessors. Keys are stored as a plain row index regardless
// of whether the target relation is PLAIN/ELASTIC (scalar) or GRID
// (flattened tuple); callers index the grid field's Dims to unflatten.

func (f *Field) GetKey(i int) int    { return f.keyData[i] }
func (f *Field) SetKey(i int, k int) { f.keyData[i] = k }

// Scalar numeric accessors, little-endian, matching the mesh file wire
// format (package meshio).

func (f *Field) GetInt32(i int) int32 {
	return int32(binary.LittleEndian.Uint32(f.raw[i*4:]))
}
func (f *Field) SetInt32(i int, v int32) {
	binary.LittleEndian.PutUint32(f.raw[i*4:], uint32(v))
}

func (f *Field) GetUint64(i int) uint64 {
	return binary.LittleEndian.Uint64(f.raw[i*8:])
}
func (f *Field) SetUint64(i int, v uint64) {
	binary.LittleEndian.PutUint64(f.raw[i*8:], v)
}

func (f *Field) GetFloat32(i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(f.raw[i*4:]))
}
func (f *Field) SetFloat32(i int, v float32) {
	binary.LittleEndian.PutUint32(f.raw[i*4:], math.Float32bits(v))
}

func (f *Field) GetFloat64(i int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(f.raw[i*8:]))
}
func (f *Field) SetFloat64(i int, v float64) {
	binary.LittleEndian.PutUint64(f.raw[i*8:], math.Float64bits(v))
}

// GetVector returns a copy of row i's vector as float64, widening
// narrower base types.
func (f *Field) GetVector(i int) []float64 {
	n := f.Type.Dims[0]
	out := make([]float64, n)
	base := i * f.elemSize()
	bsz := f.Type.Base.scalarSize()
	for j := 0; j < n; j++ {
		out[j] = f.readScalarAt(base+j*bsz, f.Type.Base)
	}
	return out
}

// SetVector writes row i's vector from v, narrowing to the field's
// base type.
func (f *Field) SetVector(i int, v []float64) {
	base := i * f.elemSize()
	bsz := f.Type.Base.scalarSize()
	for j, x := range v {
		f.writeScalarAt(base+j*bsz, f.Type.Base, x)
	}
}

func (f *Field) readScalarAt(off int, k Kind) float64 {
	switch k {
	case Float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(f.raw[off:])))
	case Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(f.raw[off:]))
	case Int32:
		return float64(int32(binary.LittleEndian.Uint32(f.raw[off:])))
	case Uint64:
		return float64(binary.LittleEndian.Uint64(f.raw[off:]))
	default:
		return 0
	}
}

func (f *Field) writeScalarAt(off int, k Kind, x float64) {
	switch k {
	case Float32:
		binary.LittleEndian.PutUint32(f.raw[off:], math.Float32bits(float32(x)))
	case Float64:
		binary.LittleEndian.PutUint64(f.raw[off:], math.Float64bits(x))
	case Int32:
		binary.LittleEndian.PutUint32(f.raw[off:], uint32(int32(x)))
	case Uint64:
		binary.LittleEndian.PutUint64(f.raw[off:], uint64(x))
	}
}

// LastRead returns the signal most recently set by SetLastRead, or
// nil if none has been set. Meaningful only under the distributed
// scheduler (package sched), which stores a *sched.Signal here; the
// type is interface{} so this package does not depend on sched.
func (f *Field) LastRead() interface{} { return f.lastRead }

// SetLastRead records the field's current last_read signal.
func (f *Field) SetLastRead(s interface{}) { f.lastRead = s }

// LastWrite returns the signal most recently set by SetLastWrite, or
// nil if none has been set.
func (f *Field) LastWrite() interface{} { return f.lastWrite }

// SetLastWrite records the field's current last_write signal.
func (f *Field) SetLastWrite(s interface{}) { f.lastWrite = s }

// RawBytes exposes the field's host-resident byte storage for row
// range [lo, hi). It is the closest Go analogue to the raw pointer the
// spec's argument layout (§4.B) hands to a compiled kernel.
func (f *Field) RawBytes(lo, hi int) []byte {
	sz := f.elemSize()
	return f.raw[lo*sz : hi*sz]
}
