package liszt

import "fmt"

// Kind identifies the shape of a field's element type.
type Kind int

const (
	// BadKind is the zero value and is never a legal field type.
	BadKind Kind = iota
	Bool
	Int32
	Uint64
	Float32
	Float64
	Vector
	Matrix
	// KeyOf is the type of a handle into another relation's row space
	// ("key-of-relation R" in the spec). Scalar for PLAIN/ELASTIC
	// relations, a fixed tuple for GRID relations.
	KeyOf
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int32:
		return "int32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Vector:
		return "vector"
	case Matrix:
		return "matrix"
	case KeyOf:
		return "key"
	default:
		return "bad"
	}
}

// scalarSize reports the in-memory size, in bytes, of one scalar element
// of the given kind. Vector and Matrix don't have a fixed scalar size;
// use Type.ElemSize instead.
func (k Kind) scalarSize() int {
	switch k {
	case Bool:
		return 1
	case Int32, Float32:
		return 4
	case Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// Type fully describes a field's element type: its Kind, the base
// scalar Kind for Vector/Matrix elements, the Vector/Matrix dimensions,
// and, for KeyOf, the target relation.
type Type struct {
	Kind Kind
	// Base is the element type of Vector/Matrix entries. Zero otherwise.
	Base Kind
	// Dims holds the fixed dimensions for Vector ([n]) or Matrix ([r, c]).
	Dims []int
	// Of is the target relation for KeyOf fields.
	Of *Relation
}

// Scalar constructs a scalar Type of the given kind.
func Scalar(k Kind) Type {
	switch k {
	case Vector, Matrix, KeyOf:
		panic(fmt.Sprintf("liszt: Scalar called with composite kind %v", k))
	}
	return Type{Kind: k}
}

// VectorOf constructs a fixed-size vector type, e.g. VectorOf(Float64, 3)
// for a 3-vector of doubles.
func VectorOf(base Kind, n int) Type {
	return Type{Kind: Vector, Base: base, Dims: []int{n}}
}

// MatrixOf constructs a fixed-size r-by-c matrix type.
func MatrixOf(base Kind, r, c int) Type {
	return Type{Kind: Matrix, Base: base, Dims: []int{r, c}}
}

// KeyType constructs the type of a key-of-relation handle into rel. rel
// must not be ELASTIC: row ids into elastic storage aren't stable, so
// key fields into them are rejected by NewField.
func KeyType(rel *Relation) Type {
	return Type{Kind: KeyOf, Of: rel}
}

// ElemSize returns the size, in bytes, of a single element of this type.
func (t Type) ElemSize() int {
	switch t.Kind {
	case Vector:
		return t.Base.scalarSize() * t.Dims[0]
	case Matrix:
		return t.Base.scalarSize() * t.Dims[0] * t.Dims[1]
	case KeyOf:
		if t.Of != nil && t.Of.Mode == GRID {
			return 4 * len(t.Of.Dims)
		}
		return 4
	default:
		return t.Kind.scalarSize()
	}
}

// Equal reports whether t and u describe the same type.
func (t Type) Equal(u Type) bool {
	if t.Kind != u.Kind || t.Base != u.Base || t.Of != u.Of {
		return false
	}
	if len(t.Dims) != len(u.Dims) {
		return false
	}
	for i := range t.Dims {
		if t.Dims[i] != u.Dims[i] {
			return false
		}
	}
	return true
}

func (t Type) String() string {
	switch t.Kind {
	case Vector:
		return fmt.Sprintf("vector[%d]%v", t.Dims[0], t.Base)
	case Matrix:
		return fmt.Sprintf("matrix[%d,%d]%v", t.Dims[0], t.Dims[1], t.Base)
	case KeyOf:
		if t.Of != nil {
			return fmt.Sprintf("key(%s)", t.Of.Name)
		}
		return "key(?)"
	default:
		return t.Kind.String()
	}
}

// ReduceOp is a commutative-associative binary operator with identity,
// used both for global reductions (§4.D/4.E) and for the REDUCE
// privilege on field accesses.
type ReduceOp int

const (
	NoOp ReduceOp = iota
	Add
	Mul
	Min
	Max
	Or
	And
)

func (op ReduceOp) String() string {
	switch op {
	case Add:
		return "+"
	case Mul:
		return "*"
	case Min:
		return "min"
	case Max:
		return "max"
	case Or:
		return "or"
	case And:
		return "and"
	default:
		return "noop"
	}
}

// Identity returns e such that x ⊕ e == x for all x representable by t,
// per the op ⊕. Panics if op is not defined over t's kind; callers
// should validate combinations at kernel-compile time (a phase error,
// not a layout error).
func (op ReduceOp) Identity(k Kind) interface{} {
	switch op {
	case Add:
		switch k {
		case Int32:
			return int32(0)
		case Uint64:
			return uint64(0)
		case Float32:
			return float32(0)
		case Float64:
			return float64(0)
		}
	case Mul:
		switch k {
		case Int32:
			return int32(1)
		case Uint64:
			return uint64(1)
		case Float32:
			return float32(1)
		case Float64:
			return float64(1)
		}
	case Min:
		switch k {
		case Int32:
			return int32(1<<31 - 1)
		case Uint64:
			return ^uint64(0)
		case Float32:
			return float32(3.4028235e38)
		case Float64:
			return float64(1.7976931348623157e308)
		}
	case Max:
		switch k {
		case Int32:
			return int32(-1 << 31)
		case Uint64:
			return uint64(0)
		case Float32:
			return float32(-3.4028235e38)
		case Float64:
			return float64(-1.7976931348623157e308)
		}
	case Or:
		if k == Bool {
			return false
		}
	case And:
		if k == Bool {
			return true
		}
	}
	panic(fmt.Sprintf("liszt: reduce op %v has no identity over %v", op, k))
}
