package liszt

import "testing"

// TestGroupBySoundness exercises §8's "group soundness" property: every
// row of the grouped relation falls within its key's [offset, offset+length)
// window (stored on the source relation), and the windows partition the
// grouped relation's full row range with no gaps or overlaps.
func TestGroupBySoundness(t *testing.T) {
	cells, err := NewRelation("cells", PLAIN, 3, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	faces, err := NewRelation("faces", PLAIN, 6, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	key, err := faces.NewField("cell", KeyType(cells))
	if err != nil {
		t.Fatal(err)
	}
	// cell 0 owns faces 0,1; cell 1 owns face 2; cell 2 owns faces 3,4,5.
	owners := []int{0, 0, 1, 2, 2, 2}
	for i, c := range owners {
		key.SetKey(i, c)
	}
	if err := faces.GroupBy(key); err != nil {
		t.Fatal(err)
	}
	if faces.Mode != GROUPED {
		t.Fatalf("faces.Mode = %v, want GROUPED", faces.Mode)
	}

	wantOffset := []int{0, 2, 3}
	wantLength := []int{2, 1, 3}
	for k := 0; k < cells.LogicalSize(); k++ {
		if got := cells.Offset(k); got != wantOffset[k] {
			t.Errorf("Offset(%d) = %d, want %d", k, got, wantOffset[k])
		}
		if got := cells.Length(k); got != wantLength[k] {
			t.Errorf("Length(%d) = %d, want %d", k, got, wantLength[k])
		}
	}
	// Every owner's window must actually contain the rows that name it,
	// and windows must partition [0, faces.LogicalSize()) exactly.
	seen := make([]bool, faces.LogicalSize())
	for k := 0; k < cells.LogicalSize(); k++ {
		off, length := cells.Offset(k), cells.Length(k)
		for i := off; i < off+length; i++ {
			if owners[i] != k {
				t.Errorf("row %d in group %d's window but owned by %d", i, k, owners[i])
			}
			if seen[i] {
				t.Errorf("row %d claimed by more than one group window", i)
			}
			seen[i] = true
		}
	}
	for i, s := range seen {
		if !s {
			t.Errorf("row %d not covered by any group window", i)
		}
	}
}

func TestGroupByRejectsUnsortedKey(t *testing.T) {
	cells, err := NewRelation("cells", PLAIN, 2, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	faces, err := NewRelation("faces", PLAIN, 2, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	key, err := faces.NewField("cell", KeyType(cells))
	if err != nil {
		t.Fatal(err)
	}
	key.SetKey(0, 1)
	key.SetKey(1, 0) // descending: violates the "already sorted ascending" precondition
	if err := faces.GroupBy(key); err == nil {
		t.Fatal("expected error grouping by an unsorted key field")
	}
}

// TestSubsetSelectivitySwitch exercises §8's "subset selectivity
// switch": a predicate selecting more than the 10% threshold is stored
// as a boolean mask, one at or below it as a packed index list, and a
// GRID relation always uses a mask regardless of selectivity.
func TestSubsetSelectivitySwitch(t *testing.T) {
	rel, err := NewRelation("cells", PLAIN, 1000, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	sparse, err := rel.NewSubset("sparse", func(i int) bool { return i < 50 }) // 5%
	if err != nil {
		t.Fatal(err)
	}
	if sparse.IsMask() {
		t.Error("5% selectivity subset stored as mask, want packed index list")
	}
	if sparse.Size() != 50 {
		t.Errorf("sparse.Size() = %d, want 50", sparse.Size())
	}

	dense, err := rel.NewSubset("dense", func(i int) bool { return i < 500 }) // 50%
	if err != nil {
		t.Fatal(err)
	}
	if !dense.IsMask() {
		t.Error("50% selectivity subset stored as packed index list, want mask")
	}
	if dense.Size() != 500 {
		t.Errorf("dense.Size() = %d, want 500", dense.Size())
	}

	grid, err := NewRelation("grid", GRID, 0, []int{4, 4}, []bool{false, false})
	if err != nil {
		t.Fatal(err)
	}
	sparseGrid, err := grid.NewSubset("corner", func(i int) bool { return i == 0 }) // <10%
	if err != nil {
		t.Fatal(err)
	}
	if !sparseGrid.IsMask() {
		t.Error("GRID relation subset not stored as mask despite low selectivity")
	}
}

// TestDefragIdempotence exercises §8's "defrag idempotence": running
// Defrag twice in a row leaves the relation unchanged the second time,
// and IsFragmented is false immediately after either call.
func TestDefragIdempotence(t *testing.T) {
	rel, err := NewRelation("pts", ELASTIC, 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	x, err := rel.NewField("x", Scalar(Int32))
	if err != nil {
		t.Fatal(err)
	}

	res, err := rel.BeginInsert(5)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		dst, err := res.Reserve(1)
		if err != nil {
			t.Fatal(err)
		}
		x.SetInt32(dst, int32(i))
		res.Write(dst)
	}
	if err := res.CommitInsert(); err != nil {
		t.Fatal(err)
	}

	del, err := rel.BeginDelete()
	if err != nil {
		t.Fatal(err)
	}
	del.Delete(1)
	del.Delete(3)
	if err := del.CommitDelete(); err != nil {
		t.Fatal(err)
	}
	if !rel.IsFragmented() {
		t.Fatal("relation should be fragmented after delete without triggering auto-defrag")
	}

	if err := rel.Defrag(); err != nil {
		t.Fatal(err)
	}
	if rel.IsFragmented() {
		t.Error("IsFragmented() true immediately after Defrag")
	}
	firstConcrete, firstLogical := rel.ConcreteSize(), rel.LogicalSize()
	firstValues := readLiveInt32(rel, x)

	if err := rel.Defrag(); err != nil {
		t.Fatal(err)
	}
	if rel.IsFragmented() {
		t.Error("IsFragmented() true after second, idempotent Defrag")
	}
	if rel.ConcreteSize() != firstConcrete || rel.LogicalSize() != firstLogical {
		t.Errorf("second Defrag changed sizes: got (%d,%d), want (%d,%d)",
			rel.ConcreteSize(), rel.LogicalSize(), firstConcrete, firstLogical)
	}
	if got := readLiveInt32(rel, x); !intSlicesEqual(got, firstValues) {
		t.Errorf("second Defrag reordered live rows: got %v, want %v", got, firstValues)
	}
}

func readLiveInt32(r *Relation, f *Field) []int32 {
	out := make([]int32, 0, r.LogicalSize())
	for i := 0; i < r.ConcreteSize(); i++ {
		if r.IsLive(i) {
			out = append(out, f.GetInt32(i))
		}
	}
	return out
}

func intSlicesEqual(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestFieldIdentityPreservation exercises §8's "identity preservation":
// writing a value through a typed Field accessor and reading it back
// returns exactly the value written, for Int32, Uint64, Float32 and a
// Float64 vector.
func TestFieldIdentityPreservation(t *testing.T) {
	rel, err := NewRelation("cells", PLAIN, 4, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	i32, _ := rel.NewField("i32", Scalar(Int32))
	i32.SetInt32(2, -12345)
	if got := i32.GetInt32(2); got != -12345 {
		t.Errorf("Int32 round-trip: got %d, want -12345", got)
	}

	u64, _ := rel.NewField("u64", Scalar(Uint64))
	u64.SetUint64(1, 0xFFFFFFFFFFFF)
	if got := u64.GetUint64(1); got != 0xFFFFFFFFFFFF {
		t.Errorf("Uint64 round-trip: got %d, want %d", got, uint64(0xFFFFFFFFFFFF))
	}

	f32, _ := rel.NewField("f32", Scalar(Float32))
	f32.SetFloat32(0, 3.5)
	if got := f32.GetFloat32(0); got != 3.5 {
		t.Errorf("Float32 round-trip: got %v, want 3.5", got)
	}

	vec, _ := rel.NewField("v", VectorOf(Float64, 3))
	vec.SetVector(3, []float64{1, 2, 3})
	if got := vec.GetVector(3); !floatSlicesEqual(got, []float64{1, 2, 3}) {
		t.Errorf("Vector round-trip: got %v, want [1 2 3]", got)
	}
}

func floatSlicesEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestReduceAssociativity exercises §8's "reduction associativity":
// Global.Reduce must produce the same final value regardless of the
// order its contributions arrive in, for Add, Mul, Min and Max over int32.
func TestReduceAssociativity(t *testing.T) {
	contributions := []int32{3, -7, 42, 1, 9, -2}
	orders := [][]int{
		{0, 1, 2, 3, 4, 5},
		{5, 4, 3, 2, 1, 0},
		{2, 0, 4, 1, 5, 3},
	}
	for _, op := range []ReduceOp{Add, Mul, Min, Max} {
		var results []int32
		for _, order := range orders {
			g := NewGlobal("g", Scalar(Int32))
			g.Set(op.Identity(Int32))
			for _, idx := range order {
				g.Reduce(op, contributions[idx])
			}
			results = append(results, g.Get().(int32))
		}
		for i := 1; i < len(results); i++ {
			if results[i] != results[0] {
				t.Errorf("op %v: order-dependent result %d vs %d", op, results[i], results[0])
			}
		}
	}
}

// TestCoerceAndReject exercises §8's "coerce-and-reject" property:
// Swap/Copy between mismatched field types is rejected, not silently
// coerced.
func TestCoerceAndReject(t *testing.T) {
	rel, err := NewRelation("cells", PLAIN, 2, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := rel.NewField("a", Scalar(Int32))
	b, _ := rel.NewField("b", Scalar(Float32))
	if err := rel.Swap(a, b); err == nil {
		t.Error("Swap between Int32 and Float32 fields should be rejected")
	}
	if err := rel.Copy(a, b); err == nil {
		t.Error("Copy between Int32 and Float32 fields should be rejected")
	}
}
