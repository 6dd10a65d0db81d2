// Package partition implements §4.H: axis-aligned blocking of a GRID
// relation's dimensions with first-block remainder rows, a row-major
// block-to-node mapping, and a row-range coloring for PLAIN relations.
// Grounded on the blocking/element-group idiom other partitioning code
// in the retrieval pack uses (a fixed per-axis block count plus a
// global index-to-owner mapping), adapted from element partitions to
// grid-cell blocks.
package partition
