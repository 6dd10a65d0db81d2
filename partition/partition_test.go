package partition

import "testing"

func TestBlocksCoverDimsExactlyOnce(t *testing.T) {
	p, err := NewPartitioner([]int{10, 7}, Blocking{3, 2})
	if err != nil {
		t.Fatal(err)
	}
	blocks := p.Blocks()
	if len(blocks) != 6 {
		t.Fatalf("len(blocks) = %d, want 6", len(blocks))
	}

	owner := make([][]int, 10)
	for i := range owner {
		owner[i] = make([]int, 7)
		for j := range owner[i] {
			owner[i][j] = -1
		}
	}
	for _, blk := range blocks {
		for x := blk.Lo[0]; x < blk.Hi[0]; x++ {
			for y := blk.Lo[1]; y < blk.Hi[1]; y++ {
				if owner[x][y] != -1 {
					t.Fatalf("cell (%d,%d) claimed by more than one block", x, y)
				}
				owner[x][y] = blk.Node
			}
		}
	}
	for x := 0; x < 10; x++ {
		for y := 0; y < 7; y++ {
			if owner[x][y] == -1 {
				t.Errorf("cell (%d,%d) not covered by any block", x, y)
			}
		}
	}
}

func TestFirstBlockAbsorbsRemainder(t *testing.T) {
	p, err := NewPartitioner([]int{10}, Blocking{3})
	if err != nil {
		t.Fatal(err)
	}
	blocks := p.Blocks()
	// 10 / 3 = 3 remainder 1: block 0 gets 4 rows, blocks 1,2 get 3 each.
	want := []int{4, 3, 3}
	for i, blk := range blocks {
		got := blk.Hi[0] - blk.Lo[0]
		if got != want[i] {
			t.Errorf("block %d size = %d, want %d", i, got, want[i])
		}
	}
}

func TestBlockToNodeIsRowMajor(t *testing.T) {
	p, err := NewPartitioner([]int{4, 4}, Blocking{2, 2})
	if err != nil {
		t.Fatal(err)
	}
	blocks := p.Blocks()
	// Row-major, last axis fastest: (0,0)->1 (0,1)->2 (1,0)->3 (1,1)->4
	want := [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	for i, blk := range blocks {
		axis0 := blk.Lo[0] / 2
		axis1 := blk.Lo[1] / 2
		if axis0 != want[i][0] || axis1 != want[i][1] {
			t.Errorf("block %d at axis-block (%d,%d), want %v", i, axis0, axis1, want[i])
		}
		if blk.Node != i+1 {
			t.Errorf("block %d Node = %d, want %d", i, blk.Node, i+1)
		}
	}
}

func TestColorPlainPartitionsContiguousRanges(t *testing.T) {
	colors := ColorPlain(10, 3)
	want := []int{0, 0, 0, 0, 1, 1, 1, 1, 2, 2}
	for i, c := range colors {
		if c != want[i] {
			t.Errorf("colors[%d] = %d, want %d", i, c, want[i])
		}
	}
}

func TestNewPartitionerRejectsMoreBlocksThanRows(t *testing.T) {
	if _, err := NewPartitioner([]int{2}, Blocking{3}); err == nil {
		t.Fatal("expected error for more blocks than rows on an axis")
	}
}
