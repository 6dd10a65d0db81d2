// Package meshio implements §6's external interfaces: the binary mesh
// file format (magic 0x18111022, facet-edge/half-facet records,
// boundary sets, trailing double[3] positions, field records), the OFF
// text format, and row-major CSV field I/O. The binary format's shape
// is grounded on original_source/runtime/src/MeshIO/LisztFormat.h
// (LisztHeader/FileFacetEdge/BoundarySet/FileField); this package
// reads and writes in one sequential pass rather than via that
// header's absolute file_ptr offsets, since nothing else in this
// runtime needs random access into a mesh file once it's loaded into
// a Relation.
package meshio
