package meshio

import (
	"encoding/binary"
	"io"

	liszt "github.com/clemire/liszt-in-terra"
	"github.com/clemire/liszt-in-terra/errors"
)

// Magic is LisztFormat.h's file identifier, read back verbatim so a
// truncated or foreign file is rejected before any counts are trusted.
const Magic uint32 = 0x18111022

// ElemType mirrors LisztFormat.h's IOElemType: which element domain a
// boundary set or field record is defined over.
type ElemType uint8

const (
	VertexT ElemType = 0
	CellT   ElemType = 1
	EdgeT   ElemType = 2
	FaceT   ElemType = 3
)

// AggFlag is LisztFormat.h's AGG_FLAG: the high bit of an on-disk
// IOElemType byte, set when a boundary set aggregates more than one
// element type rather than naming a single one.
const AggFlag ElemType = 1 << 7

// Base strips the aggregation bit, returning the underlying element
// type (VertexT/CellT/EdgeT/FaceT).
func (e ElemType) Base() ElemType { return e &^ AggFlag }

// Aggregated reports whether e carries LisztFormat.h's AGG_FLAG.
func (e ElemType) Aggregated() bool { return e&AggFlag != 0 }

// HalfFacet names one side of a FacetEdge: the cell it bounds and the
// vertex opposite the edge within that cell, matching LisztFormat.h's
// FileHalfFacet.
type HalfFacet struct {
	Cell uint32
	Vert uint32
}

// FacetEdge is one record of the file's facet-edge table
// (FileFacetEdge): the face and edge id it belongs to, and its two
// bounding half-facets (HF[1].Cell is ^uint32(0) on a boundary edge
// with no opposing cell).
type FacetEdge struct {
	Face uint32
	Edge uint32
	HF   [2]HalfFacet
}

// BoundarySet is one named contiguous id range over a single element
// domain, matching LisztFormat.h's BoundarySet. Type's high bit may
// carry AggFlag; call Base to get the underlying VertexT/CellT/EdgeT/
// FaceT value.
type BoundarySet struct {
	Type  ElemType
	Start uint32
	End   uint32
	Name  string
}

// FieldRecord is one field serialized alongside the mesh, matching
// LisztFormat.h's FileField/LisztType pair: the element domain it is
// defined over, the liszt.Type it decodes to, and its raw
// little-endian element bytes in row order.
type FieldRecord struct {
	Domain ElemType
	Type   liszt.Type
	Name   string
	Data   []byte
}

// Mesh is the decoded contents of one binary mesh file: vertex count
// plus facet-edge table, boundary sets, vertex positions, and any
// attached field records.
type Mesh struct {
	NumVerts   uint32
	FacetEdges []FacetEdge
	Boundaries []BoundarySet
	Positions  [][3]float64
	Fields     []FieldRecord
}

// WriteMesh serializes m to w in the sequential layout ReadMesh
// expects: header, facet-edge table, boundary sets, position table,
// field table. The header holds only the magic number and the counts;
// it carries no file offsets, and ReadMesh reads everything in write
// order.
func WriteMesh(w io.Writer, m *Mesh) error {
	bw := &byteWriter{w: w}
	bw.u32(Magic)
	bw.u32(m.NumVerts)
	bw.u32(uint32(len(m.FacetEdges)))
	bw.u32(uint32(len(m.Boundaries)))
	bw.u32(uint32(len(m.Fields)))

	for _, fe := range m.FacetEdges {
		bw.u32(fe.Face)
		bw.u32(fe.Edge)
		bw.u32(fe.HF[0].Cell)
		bw.u32(fe.HF[0].Vert)
		bw.u32(fe.HF[1].Cell)
		bw.u32(fe.HF[1].Vert)
	}

	for _, b := range m.Boundaries {
		bw.u8(uint8(b.Type))
		bw.u32(b.Start)
		bw.u32(b.End)
		bw.str(b.Name)
	}

	for _, p := range m.Positions {
		bw.f64(p[0])
		bw.f64(p[1])
		bw.f64(p[2])
	}

	for _, fr := range m.Fields {
		bw.u8(uint8(fr.Domain))
		bw.u8(uint8(fr.Type.Kind))
		bw.u8(uint8(fr.Type.Base))
		bw.u32(uint32(len(fr.Type.Dims)))
		for _, d := range fr.Type.Dims {
			bw.u32(uint32(d))
		}
		bw.str(fr.Name)
		bw.u32(uint32(len(fr.Data)))
		bw.bytes(fr.Data)
	}

	return bw.err
}

// ReadMesh parses a file written by WriteMesh. It returns an
// errors.IO error naming "mesh" if the magic number doesn't match or
// the stream is truncated mid-record.
func ReadMesh(r io.Reader) (*Mesh, error) {
	br := &byteReader{r: r}
	magic := br.u32()
	if br.err != nil {
		return nil, errors.E("mesh", errors.IO, br.err)
	}
	if magic != Magic {
		return nil, errors.E("mesh", errors.IO, "bad magic number")
	}

	m := &Mesh{}
	m.NumVerts = br.u32()
	nFE := br.u32()
	nB := br.u32()
	nFields := br.u32()

	m.FacetEdges = make([]FacetEdge, nFE)
	for i := range m.FacetEdges {
		fe := &m.FacetEdges[i]
		fe.Face = br.u32()
		fe.Edge = br.u32()
		fe.HF[0].Cell = br.u32()
		fe.HF[0].Vert = br.u32()
		fe.HF[1].Cell = br.u32()
		fe.HF[1].Vert = br.u32()
	}

	m.Boundaries = make([]BoundarySet, nB)
	for i := range m.Boundaries {
		b := &m.Boundaries[i]
		b.Type = ElemType(br.u8())
		if b.Type.Base() > FaceT {
			return nil, errors.E("mesh", errors.IO, "boundary set has unknown element type")
		}
		b.Start = br.u32()
		b.End = br.u32()
		b.Name = br.str()
	}

	m.Positions = make([][3]float64, m.NumVerts)
	for i := range m.Positions {
		m.Positions[i][0] = br.f64()
		m.Positions[i][1] = br.f64()
		m.Positions[i][2] = br.f64()
	}

	m.Fields = make([]FieldRecord, nFields)
	for i := range m.Fields {
		fr := &m.Fields[i]
		fr.Domain = ElemType(br.u8())
		if fr.Domain.Base() > FaceT {
			return nil, errors.E("mesh", errors.IO, "field record has unknown element domain")
		}
		fr.Type.Kind = liszt.Kind(br.u8())
		fr.Type.Base = liszt.Kind(br.u8())
		nDims := br.u32()
		fr.Type.Dims = make([]int, nDims)
		for j := range fr.Type.Dims {
			fr.Type.Dims[j] = int(br.u32())
		}
		fr.Name = br.str()
		n := br.u32()
		fr.Data = br.bytesN(int(n))
	}

	if br.err != nil {
		return nil, errors.E("mesh", errors.IO, br.err)
	}
	return m, nil
}

// byteWriter/byteReader wrap encoding/binary's per-value helpers and
// latch the first error, letting WriteMesh/ReadMesh's call sequences
// read as a flat list instead of an if-err-return per field.

type byteWriter struct {
	w   io.Writer
	err error
}

func (bw *byteWriter) u8(v uint8) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write([]byte{v})
}

func (bw *byteWriter) u32(v uint32) {
	if bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, v)
}

func (bw *byteWriter) f64(v float64) {
	if bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, v)
}

func (bw *byteWriter) bytes(b []byte) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write(b)
}

func (bw *byteWriter) str(s string) {
	bw.u32(uint32(len(s)))
	bw.bytes([]byte(s))
}

type byteReader struct {
	r   io.Reader
	err error
}

func (br *byteReader) u8() uint8 {
	var b [1]byte
	if br.err != nil {
		return 0
	}
	_, br.err = io.ReadFull(br.r, b[:])
	return b[0]
}

func (br *byteReader) u32() uint32 {
	if br.err != nil {
		return 0
	}
	var v uint32
	br.err = binary.Read(br.r, binary.LittleEndian, &v)
	return v
}

func (br *byteReader) f64() float64 {
	if br.err != nil {
		return 0
	}
	var v float64
	br.err = binary.Read(br.r, binary.LittleEndian, &v)
	return v
}

func (br *byteReader) bytesN(n int) []byte {
	if br.err != nil || n == 0 {
		return nil
	}
	b := make([]byte, n)
	_, br.err = io.ReadFull(br.r, b)
	return b
}

func (br *byteReader) str() string {
	n := br.u32()
	return string(br.bytesN(int(n)))
}
