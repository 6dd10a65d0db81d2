package liszt

// Global is a process-wide typed scalar, independent of any relation.
// During a reducing kernel, the ReduceOp comes from the kernel's
// global access; writes during such a kernel go through Reduce rather than overwriting the
// value outright, so that the final value reflects every row's
// contribution combined with whatever the Global held before launch
// (§4.D: "so that any pre-existing global value is preserved").
type Global struct {
	Name string
	Type Type

	value interface{}
	op    ReduceOp
}

// NewGlobal allocates a new Global of the given type, initialized to
// the type's reduction identity under NoOp (i.e., the zero value).
func NewGlobal(name string, typ Type) *Global {
	return &Global{Name: name, Type: typ, value: zeroOf(typ.Kind)}
}

func zeroOf(k Kind) interface{} {
	switch k {
	case Bool:
		return false
	case Int32:
		return int32(0)
	case Uint64:
		return uint64(0)
	case Float32:
		return float32(0)
	case Float64:
		return float64(0)
	default:
		return nil
	}
}

// Get returns the global's current value.
func (g *Global) Get() interface{} { return g.value }

// Set overwrites the global's value outright, outside of any
// reduction.
func (g *Global) Set(v interface{}) { g.value = v }

// Reduce combines v into g's current value using op, used by a
// REDUCE-privileged kernel access (see kernel.Version and gpu.Engine).
func (g *Global) Reduce(op ReduceOp, v interface{}) {
	g.value = combine(op, g.value, v)
}

func combine(op ReduceOp, a, b interface{}) interface{} {
	switch op {
	case Add:
		return addVals(a, b)
	case Mul:
		return mulVals(a, b)
	case Min:
		return minVals(a, b)
	case Max:
		return maxVals(a, b)
	case Or:
		return a.(bool) || b.(bool)
	case And:
		return a.(bool) && b.(bool)
	default:
		return b
	}
}

func addVals(a, b interface{}) interface{} {
	switch x := a.(type) {
	case int32:
		return x + b.(int32)
	case uint64:
		return x + b.(uint64)
	case float32:
		return x + b.(float32)
	case float64:
		return x + b.(float64)
	case []float64:
		y := b.([]float64)
		out := make([]float64, len(x))
		for i := range x {
			out[i] = x[i] + y[i]
		}
		return out
	default:
		return b
	}
}

func mulVals(a, b interface{}) interface{} {
	switch x := a.(type) {
	case int32:
		return x * b.(int32)
	case uint64:
		return x * b.(uint64)
	case float32:
		return x * b.(float32)
	case float64:
		return x * b.(float64)
	default:
		return b
	}
}

func minVals(a, b interface{}) interface{} {
	switch x := a.(type) {
	case int32:
		if y := b.(int32); y < x {
			return y
		}
		return x
	case uint64:
		if y := b.(uint64); y < x {
			return y
		}
		return x
	case float32:
		if y := b.(float32); y < x {
			return y
		}
		return x
	case float64:
		if y := b.(float64); y < x {
			return y
		}
		return x
	default:
		return b
	}
}

func maxVals(a, b interface{}) interface{} {
	switch x := a.(type) {
	case int32:
		if y := b.(int32); y > x {
			return y
		}
		return x
	case uint64:
		if y := b.(uint64); y > x {
			return y
		}
		return x
	case float32:
		if y := b.(float32); y > x {
			return y
		}
		return x
	case float64:
		if y := b.(float64); y > x {
			return y
		}
		return x
	default:
		return b
	}
}
