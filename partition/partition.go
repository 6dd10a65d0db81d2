package partition

import "github.com/clemire/liszt-in-terra/errors"

// Blocking is the per-axis block count for a GRID relation's
// decomposition; len(Blocking) must equal the relation's
// dimensionality, and the product of its entries is the fleet size B.
type Blocking []int

// Product returns the total block count B = Π blocking[d].
func (b Blocking) Product() int {
	p := 1
	for _, n := range b {
		p *= n
	}
	return p
}

// Block is one axis-aligned block of a GRID decomposition: an
// inclusive-lo/exclusive-hi range per axis, plus the node it is
// assigned to.
type Block struct {
	Lo, Hi []int // per axis, Lo inclusive, Hi exclusive
	Node   int
}

// Contains reports whether grid coordinate p falls within the block.
func (blk Block) Contains(p []int) bool {
	for a := range p {
		if p[a] < blk.Lo[a] || p[a] >= blk.Hi[a] {
			return false
		}
	}
	return true
}

// Partitioner decomposes a GRID relation's per-axis extent Dims into
// Blocking's blocks and assigns each block to a node in row-major
// order.
type Partitioner struct {
	Dims     []int
	Blocking Blocking
}

// NewPartitioner validates that dims and blocking agree in
// dimensionality and every axis has at least as many rows as blocks.
func NewPartitioner(dims []int, blocking Blocking) (*Partitioner, error) {
	if len(dims) != len(blocking) {
		return nil, errors.E("new_partitioner", errors.Schema, "dims/blocking dimensionality mismatch")
	}
	for a, n := range blocking {
		if n <= 0 || dims[a] < n {
			return nil, errors.E("new_partitioner", errors.Schema, "axis has fewer rows than blocks")
		}
	}
	return &Partitioner{Dims: append([]int(nil), dims...), Blocking: append(Blocking(nil), blocking...)}, nil
}

// Blocks computes every block's bounds and row-major node assignment;
// compute nodes are numbered from 1, node 0 being the control node.
// Per axis, dims[a]/blocking[a] rows go to every block but the first,
// which additionally absorbs the remainder dims[a]%blocking[a] — the
// "first-block remainder" rule — so no block is ever larger than the
// first along any axis.
func (p *Partitioner) Blocks() []Block {
	d := len(p.Dims)
	axisBounds := make([][]int, d) // axisBounds[a] has len(blocking[a])+1 boundary offsets
	for a := 0; a < d; a++ {
		n, blocks := p.Dims[a], p.Blocking[a]
		base := n / blocks
		rem := n % blocks
		bounds := make([]int, blocks+1)
		bounds[0] = 0
		for i := 0; i < blocks; i++ {
			sz := base
			if i == 0 {
				sz += rem
			}
			bounds[i+1] = bounds[i] + sz
		}
		axisBounds[a] = bounds
	}

	total := p.Blocking.Product()
	out := make([]Block, total)
	idx := make([]int, d)
	for node := 0; node < total; node++ {
		lo := make([]int, d)
		hi := make([]int, d)
		for a := 0; a < d; a++ {
			lo[a] = axisBounds[a][idx[a]]
			hi[a] = axisBounds[a][idx[a]+1]
		}
		out[node] = Block{Lo: lo, Hi: hi, Node: node + 1}
		// Advance idx in row-major (last axis fastest) order, matching
		// the block→node mapping §4.H specifies.
		for a := d - 1; a >= 0; a-- {
			idx[a]++
			if idx[a] < p.Blocking[a] {
				break
			}
			idx[a] = 0
		}
	}
	return out
}

// NodeOf returns the node a grid coordinate's block is assigned to, or
// -1 if p is out of every block's bounds.
func (p *Partitioner) NodeOf(point []int) int {
	for _, blk := range p.Blocks() {
		if blk.Contains(point) {
			return blk.Node
		}
	}
	return -1
}

// ColorPlain assigns each of a PLAIN relation's n rows to one of parts
// contiguous color groups, coloring row i as i / ceil(n/parts) per
// §4.H's PLAIN-relation coloring rule.
func ColorPlain(n, parts int) []int {
	if parts <= 0 {
		parts = 1
	}
	rowsPerPart := (n + parts - 1) / parts
	if rowsPerPart == 0 {
		rowsPerPart = 1
	}
	colors := make([]int, n)
	for i := 0; i < n; i++ {
		c := i / rowsPerPart
		if c >= parts {
			c = parts - 1
		}
		colors[i] = c
	}
	return colors
}
