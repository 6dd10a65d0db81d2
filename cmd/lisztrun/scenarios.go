package main

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	liszt "github.com/clemire/liszt-in-terra"
	"github.com/clemire/liszt-in-terra/errors"
	"github.com/clemire/liszt-in-terra/gpu"
	"github.com/clemire/liszt-in-terra/kernel"
	"github.com/clemire/liszt-in-terra/meshio"
)

// octahedronOFF is the 6-vertex, 8-triangle mesh named in the
// triangle-mesh edge build scenario, used when mesh-edges is run
// without an --off file of its own.
const octahedronOFF = `OFF
6 8 0
1 0 0
-1 0 0
0 1 0
0 -1 0
0 0 1
0 0 -1
3 0 2 4
3 2 1 4
3 1 3 4
3 3 0 4
3 2 0 5
3 1 2 5
3 3 1 5
3 0 3 5
`

func runCentroid(cmd *cobra.Command, args []string) error {
	rel, err := liszt.NewRelation("vertices", liszt.PLAIN, 4, nil, nil)
	if err != nil {
		return err
	}
	pos, err := rel.NewField("pos", liszt.VectorOf(liszt.Float64, 3))
	if err != nil {
		return err
	}
	positions := [][]float64{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}, {0, 0, 2}}
	for i, p := range positions {
		pos.SetVector(i, p)
	}

	com := liszt.NewGlobal("com", liszt.VectorOf(liszt.Float64, 3))
	k := &kernel.Kernel{
		Name:      "centroid",
		Relation:  rel,
		Processor: kernel.CPU,
		Accesses:  []kernel.Access{{Field: pos, Privilege: kernel.ReadOnly}},
		GlobalAccesses: []kernel.GlobalAccess{
			{Global: com, Privilege: kernel.Reduce, Op: liszt.Add},
		},
		Body: func(a *kernel.Args) {
			p := pos.GetVector(a.Row)
			a.Reduce("com", p)
		},
	}
	if err := kernel.NewVersion(k).Run(); err != nil {
		return err
	}

	sum := com.Get().([]float64)
	centroid := []float64{sum[0] / 4, sum[1] / 4, sum[2] / 4}
	fmt.Printf("centroid: (%.4f, %.4f, %.4f)\n", centroid[0], centroid[1], centroid[2])
	want := []float64{0.5, 0.5, 0.5}
	for i, w := range want {
		if math.Abs(centroid[i]-w) > 1e-9 {
			return errors.E("centroid", errors.Other, "centroid", "result did not match expected (0.5, 0.5, 0.5)")
		}
	}
	return nil
}

func runDiffusion(cmd *cobra.Command, args []string) error {
	n, _ := cmd.Flags().GetInt("n")
	iters, _ := cmd.Flags().GetInt("iters")
	if n <= 0 {
		n = 5
	}
	if iters <= 0 {
		iters = 1000
	}

	rel, err := liszt.NewRelation("grid", liszt.GRID, 0, []int{n, n}, []bool{false, false})
	if err != nil {
		return err
	}
	t, err := rel.NewField("T", liszt.Scalar(liszt.Float64))
	if err != nil {
		return err
	}
	tNext, err := rel.NewField("Tnext", liszt.Scalar(liszt.Float64))
	if err != nil {
		return err
	}
	// The source sits at the interior block's own corner, (1,1), so that
	// it diffuses through cells the stencil actually updates; skip-on-
	// boundary excludes the outer ring from the Laplacian entirely, so a
	// cell placed on the ring would never move.
	const k = 1.0
	t.SetFloat64(n+1, 25)
	interior := func(x, y int) bool { return x >= 1 && x <= n-2 && y >= 1 && y <= n-2 }

	kern := &kernel.Kernel{
		Name:      "diffuse",
		Relation:  rel,
		Processor: kernel.CPU,
		Accesses: []kernel.Access{
			{Field: t, Privilege: kernel.ReadOnly},
			{Field: tNext, Privilege: kernel.ReadWrite},
		},
		Body: func(a *kernel.Args) {
			x, y := a.Row/n, a.Row%n
			if !interior(x, y) {
				tNext.SetFloat64(a.Row, 0)
				return
			}
			cur := t.GetFloat64(a.Row)
			lap := 0.0
			for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				nx, ny := x+d[0], y+d[1]
				if !interior(nx, ny) {
					continue
				}
				lap += t.GetFloat64(nx*n+ny) - cur
			}
			tNext.SetFloat64(a.Row, cur+(k/4)*lap)
		},
	}
	v := kernel.NewVersion(kern)
	for i := 0; i < iters; i++ {
		if err := v.Run(); err != nil {
			return err
		}
		if err := rel.Swap(t, tNext); err != nil {
			return err
		}
	}

	sum, count := 0.0, 0
	for x := 1; x < n-1; x++ {
		for y := 1; y < n-1; y++ {
			sum += t.GetFloat64(x*n + y)
			count++
		}
	}
	mean := sum / float64(count)
	want := 25.0 / 9.0
	diff := math.Abs(mean - want)
	fmt.Printf("interior mean after %d iterations: %.9f (want %.9f, |diff| = %.2e)\n", iters, mean, want, diff)
	if diff > 1e-6 {
		return errors.E("diffusion", errors.Other, "diffuse", "interior mean did not converge to 25/9")
	}
	return nil
}

func runMeshEdges(cmd *cobra.Command, args []string) error {
	offPath, _ := cmd.Flags().GetString("off")
	m, err := readMesh(offPath)
	if err != nil {
		return err
	}

	var directed [][2]int
	for _, face := range m.Faces {
		for i := 0; i < 3; i++ {
			directed = append(directed, [2]int{face[i], face[(i+1)%3]})
		}
	}

	edges, err := liszt.NewRelation("edges", liszt.PLAIN, len(directed), nil, nil)
	if err != nil {
		return err
	}
	src1, err := edges.NewField("src", liszt.Scalar(liszt.Int32))
	if err != nil {
		return err
	}
	dst, err := edges.NewField("dst", liszt.Scalar(liszt.Int32))
	if err != nil {
		return err
	}
	for i, e := range directed {
		src1.SetInt32(i, int32(e[0]))
		dst.SetInt32(i, int32(e[1]))
	}

	degree := make([]int, len(m.Vertices))
	k := &kernel.Kernel{
		Name:      "accumulate_degree",
		Relation:  edges,
		Processor: kernel.CPU,
		Accesses: []kernel.Access{
			{Field: src1, Privilege: kernel.ReadOnly},
			{Field: dst, Privilege: kernel.ReadOnly},
		},
		Body: func(a *kernel.Args) {
			degree[src1.GetInt32(a.Row)]++
			degree[dst.GetInt32(a.Row)]++
		},
	}
	if err := kernel.NewVersion(k).Run(); err != nil {
		return err
	}

	total := 0
	for _, d := range degree {
		total += d
	}
	fmt.Printf("|edges| = %d, vertices = %d, sum(degree) = %d\n", edges.LogicalSize(), len(m.Vertices), total)
	if offPath == "" && (edges.LogicalSize() != 24 || total != 48) {
		return errors.E("mesh_edges", errors.Other, "mesh-edges", "octahedron edge build did not match the expected 24 edges / degree sum 48")
	}
	return nil
}

// readMesh parses path as OFF, or the built-in octahedron if path is
// empty.
func readMesh(path string) (*meshio.OFFMesh, error) {
	if path == "" {
		return meshio.ReadOFF(strings.NewReader(octahedronOFF))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E("mesh_edges", errors.IO, err)
	}
	defer f.Close()
	return meshio.ReadOFF(f)
}

func runInsertQuery(cmd *cobra.Command, args []string) error {
	rel, tag, err := buildInsertedRelation()
	if err != nil {
		return err
	}
	tags := tagString(rel, tag)
	fmt.Printf("logical = %d, concrete = %d, tags = %s\n", rel.LogicalSize(), rel.ConcreteSize(), tags)
	want := "0,1,0,1,0,1,0,1,0,1"
	if rel.LogicalSize() != 10 || rel.ConcreteSize() != 10 || tags != want {
		return errors.E("insert_query", errors.Other, "insert-query", "inserted relation did not match expected logical/concrete size and tags")
	}
	return nil
}

// buildInsertedRelation runs scenario 4 (insert then query) and
// returns the resulting relation and tag field so delete-defrag can
// continue from it without re-deriving scenario 4's setup.
func buildInsertedRelation() (*liszt.Relation, *liszt.Field, error) {
	rel, err := liszt.NewRelation("particles", liszt.ELASTIC, 0, nil, nil)
	if err != nil {
		return nil, nil, err
	}
	tag, err := rel.NewField("tag", liszt.Scalar(liszt.Int32))
	if err != nil {
		return nil, nil, err
	}

	k := &kernel.Kernel{
		Name:       "spawn",
		Relation:   rel,
		Processor:  kernel.CPU,
		Intent:     kernel.InsertIntent,
		LaunchSize: 10,
		Body: func(a *kernel.Args) {
			dst, err := a.Insert.Reserve(1)
			if err != nil {
				return
			}
			tag.SetInt32(dst, int32(dst%2))
			a.Insert.Write(dst)
		},
	}
	if err := kernel.NewVersion(k).Run(); err != nil {
		return nil, nil, err
	}
	return rel, tag, nil
}

func tagString(rel *liszt.Relation, tag *liszt.Field) string {
	var sb strings.Builder
	for i := 0; i < rel.ConcreteSize(); i++ {
		if !rel.IsLive(i) {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", tag.GetInt32(i))
	}
	return sb.String()
}

func runDeleteDefrag(cmd *cobra.Command, args []string) error {
	rel, tag, err := buildInsertedRelation()
	if err != nil {
		return err
	}

	k := &kernel.Kernel{
		Name:      "cull_odd",
		Relation:  rel,
		Processor: kernel.CPU,
		Intent:    kernel.DeleteIntent,
		Accesses:  []kernel.Access{{Field: tag, Privilege: kernel.ReadOnly}},
		Body: func(a *kernel.Args) {
			if tag.GetInt32(a.Row)%2 != 0 {
				a.Delete.Delete(a.Row)
			}
		},
	}
	if err := kernel.NewVersion(k).Run(); err != nil {
		return err
	}

	tags := tagString(rel, tag)
	fmt.Printf("logical = %d, concrete = %d, is_fragmented = %v, tags = %s\n",
		rel.LogicalSize(), rel.ConcreteSize(), rel.IsFragmented(), tags)
	if rel.LogicalSize() != 5 || rel.ConcreteSize() != 5 || rel.IsFragmented() || tags != "0,0,0,0,0" {
		return errors.E("delete_defrag", errors.Other, "delete-defrag", "post-defrag relation did not match expected logical/concrete size and tags")
	}
	return nil
}

func runGPUSum(cmd *cobra.Command, args []string) error {
	size, _ := cmd.Flags().GetInt("size")
	if size <= 0 {
		size = 1000000
	}
	rel, err := liszt.NewRelation("particles", liszt.PLAIN, size, nil, nil)
	if err != nil {
		return err
	}
	gerr := liszt.NewGlobal("gerr", liszt.Scalar(liszt.Int32))

	engine := gpu.NewEngine(nil)
	k := &kernel.Kernel{
		Name:           "count_all",
		Relation:       rel,
		Processor:      kernel.GPU,
		GlobalAccesses: []kernel.GlobalAccess{{Global: gerr, Privilege: kernel.Reduce, Op: liszt.Add}},
		Body: func(a *kernel.Args) {
			a.Reduce("gerr", int32(1))
		},
	}
	v := kernel.NewVersion(k)
	v.Engine = engine
	if err := v.Run(); err != nil {
		return err
	}

	fmt.Printf("gerr = %v (want %d)\n", gerr.Get(), size)
	if gerr.Get().(int32) != int32(size) {
		return errors.E("gpu_sum", errors.Other, "gpu-sum", "reduction did not reach expected total")
	}
	return nil
}
