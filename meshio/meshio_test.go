package meshio

import (
	"bytes"
	"strings"
	"testing"

	liszt "github.com/clemire/liszt-in-terra"
)

func octahedron() *Mesh {
	m := &Mesh{
		NumVerts: 6,
		Positions: [][3]float64{
			{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
		},
		Boundaries: []BoundarySet{
			{Type: FaceT, Start: 0, End: 8, Name: "all_faces"},
		},
	}
	for face := uint32(0); face < 8; face++ {
		m.FacetEdges = append(m.FacetEdges, FacetEdge{
			Face: face,
			Edge: face,
			HF:   [2]HalfFacet{{Cell: 0, Vert: face % 6}, {Cell: ^uint32(0), Vert: (face + 1) % 6}},
		})
	}
	return m
}

func TestMeshRoundTrip(t *testing.T) {
	want := octahedron()
	want.Fields = []FieldRecord{
		{Domain: VertexT, Type: liszt.Scalar(liszt.Float64), Name: "temperature", Data: make([]byte, 6*8)},
	}

	var buf bytes.Buffer
	if err := WriteMesh(&buf, want); err != nil {
		t.Fatalf("WriteMesh: %v", err)
	}

	got, err := ReadMesh(&buf)
	if err != nil {
		t.Fatalf("ReadMesh: %v", err)
	}

	if got.NumVerts != want.NumVerts {
		t.Errorf("NumVerts = %d, want %d", got.NumVerts, want.NumVerts)
	}
	if len(got.FacetEdges) != len(want.FacetEdges) {
		t.Fatalf("FacetEdges len = %d, want %d", len(got.FacetEdges), len(want.FacetEdges))
	}
	for i := range want.FacetEdges {
		if got.FacetEdges[i] != want.FacetEdges[i] {
			t.Errorf("FacetEdges[%d] = %+v, want %+v", i, got.FacetEdges[i], want.FacetEdges[i])
		}
	}
	if len(got.Boundaries) != 1 || got.Boundaries[0].Name != "all_faces" {
		t.Errorf("Boundaries = %+v", got.Boundaries)
	}
	if len(got.Positions) != 6 || got.Positions[4] != [3]float64{0, 0, 1} {
		t.Errorf("Positions[4] = %v", got.Positions[4])
	}
	if len(got.Fields) != 1 || got.Fields[0].Name != "temperature" {
		t.Errorf("Fields = %+v", got.Fields)
	}
}

func TestMeshBoundarySetAggregationFlag(t *testing.T) {
	m := octahedron()
	m.Boundaries = append(m.Boundaries, BoundarySet{Type: CellT | AggFlag, Start: 0, End: 6, Name: "agg_cells_and_verts"})

	var buf bytes.Buffer
	if err := WriteMesh(&buf, m); err != nil {
		t.Fatalf("WriteMesh: %v", err)
	}
	got, err := ReadMesh(&buf)
	if err != nil {
		t.Fatalf("ReadMesh: %v", err)
	}
	agg := got.Boundaries[1]
	if !agg.Type.Aggregated() {
		t.Fatal("aggregation flag lost across round trip")
	}
	if agg.Type.Base() != CellT {
		t.Errorf("Base() = %v, want CellT", agg.Type.Base())
	}
	if got.Boundaries[0].Type.Aggregated() {
		t.Error("non-aggregated boundary set reported as aggregated")
	}
}

func TestReadMeshRejectsUnknownElemType(t *testing.T) {
	m := octahedron()
	m.Boundaries[0].Type = ElemType(0x7F) // valid bits set, but > FaceT

	var buf bytes.Buffer
	if err := WriteMesh(&buf, m); err != nil {
		t.Fatalf("WriteMesh: %v", err)
	}
	if _, err := ReadMesh(&buf); err == nil {
		t.Fatal("expected error reading an unknown element type")
	}
}

func TestReadMeshRejectsBadMagic(t *testing.T) {
	_, err := ReadMesh(bytes.NewReader([]byte{0, 0, 0, 0}))
	if err == nil {
		t.Fatal("expected error on bad magic")
	}
}

func TestOFFRoundTrip(t *testing.T) {
	want := &OFFMesh{
		Vertices: [][3]float64{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}},
		Faces: [][3]int{
			{0, 2, 4}, {2, 1, 4}, {1, 3, 4}, {3, 0, 4},
			{2, 0, 5}, {1, 2, 5}, {3, 1, 5}, {0, 3, 5},
		},
	}

	var buf bytes.Buffer
	if err := WriteOFF(&buf, want); err != nil {
		t.Fatalf("WriteOFF: %v", err)
	}

	got, err := ReadOFF(&buf)
	if err != nil {
		t.Fatalf("ReadOFF: %v", err)
	}
	if len(got.Vertices) != 6 || len(got.Faces) != 8 {
		t.Fatalf("got %d vertices, %d faces", len(got.Vertices), len(got.Faces))
	}
	if got.Faces[3] != [3]int{3, 0, 4} {
		t.Errorf("Faces[3] = %v, want [3 0 4]", got.Faces[3])
	}
}

func TestReadOFFRejectsMissingHeader(t *testing.T) {
	_, err := ReadOFF(strings.NewReader("6 8 0\n"))
	if err == nil {
		t.Fatal("expected error on missing OFF header")
	}
}

func TestReadOFFRejectsNonTriangleFace(t *testing.T) {
	src := "OFF\n3 1 0\n0 0 0\n1 0 0\n0 1 0\n4 0 1 2 0\n"
	_, err := ReadOFF(strings.NewReader(src))
	if err == nil {
		t.Fatal("expected error on non-triangle face")
	}
}

func TestCSVRoundTripScalar(t *testing.T) {
	rel, err := liszt.NewRelation("cells", liszt.PLAIN, 3, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	f, err := rel.NewField("temperature", liszt.Scalar(liszt.Float64))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	f.SetFloat64(0, 1.5)
	f.SetFloat64(1, -2.25)
	f.SetFloat64(2, 0)
	if err := WriteCSV(&buf, f, 3, 0); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	g, err := rel.NewField("temperature2", liszt.Scalar(liszt.Float64))
	if err != nil {
		t.Fatal(err)
	}
	if err := ReadCSV(&buf, g); err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if g.GetFloat64(0) != 1.5 || g.GetFloat64(1) != -2.25 || g.GetFloat64(2) != 0 {
		t.Errorf("round trip mismatch: %v %v %v", g.GetFloat64(0), g.GetFloat64(1), g.GetFloat64(2))
	}
}

func TestCSVRoundTripVectorAndBool(t *testing.T) {
	rel, err := liszt.NewRelation("cells", liszt.PLAIN, 2, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	vf, err := rel.NewField("velocity", liszt.VectorOf(liszt.Float64, 3))
	if err != nil {
		t.Fatal(err)
	}
	vf.SetVector(0, []float64{1, 2, 3})
	vf.SetVector(1, []float64{-1, 0, 0.5})

	var vbuf bytes.Buffer
	if err := WriteCSV(&vbuf, vf, 2, 0); err != nil {
		t.Fatal(err)
	}
	vg, err := rel.NewField("velocity2", liszt.VectorOf(liszt.Float64, 3))
	if err != nil {
		t.Fatal(err)
	}
	if err := ReadCSV(&vbuf, vg); err != nil {
		t.Fatal(err)
	}
	got := vg.GetVector(1)
	if got[0] != -1 || got[1] != 0 || got[2] != 0.5 {
		t.Errorf("velocity[1] = %v", got)
	}

	bf, err := rel.NewField("onBoundary", liszt.Scalar(liszt.Bool))
	if err != nil {
		t.Fatal(err)
	}
	bf.SetBool(0, true)
	bf.SetBool(1, false)

	var bbuf bytes.Buffer
	if err := WriteCSV(&bbuf, bf, 2, 0); err != nil {
		t.Fatal(err)
	}
	if got := bbuf.String(); got != "1\n0\n" {
		t.Errorf("bool csv = %q, want %q", got, "1\n0\n")
	}
}

func TestReadCSVRejectsWidthMismatch(t *testing.T) {
	rel, err := liszt.NewRelation("cells", liszt.PLAIN, 1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	vf, err := rel.NewField("velocity", liszt.VectorOf(liszt.Float64, 3))
	if err != nil {
		t.Fatal(err)
	}
	if err := ReadCSV(strings.NewReader("1,2\n"), vf); err == nil {
		t.Fatal("expected width-mismatch error")
	}
}
