package ghost

import (
	"testing"
	"time"

	liszt "github.com/clemire/liszt-in-terra"
)

func TestIDPacksOffsetIntoBase3(t *testing.T) {
	cases := []struct {
		offset []int
		want   int
	}{
		{[]int{0, 0}, 4},   // center of a 2D 3x3 neighborhood
		{[]int{-1, -1}, 0}, // first cell
		{[]int{1, 1}, 8},   // last cell
		{[]int{1, -1}, 2},
		{[]int{-1, 1}, 6},
	}
	for _, c := range cases {
		if got := ID(c.offset); got != c.want {
			t.Errorf("ID(%v) = %d, want %d", c.offset, got, c.want)
		}
	}
}

func TestGatherSendRecvScatterRoundTrip(t *testing.T) {
	left, err := liszt.NewRelation("left", liszt.PLAIN, 10, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	right, err := liszt.NewRelation("right", liszt.PLAIN, 10, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	lf, _ := left.NewField("temp", liszt.Scalar(liszt.Float64))
	rf, _ := right.NewField("temp", liszt.Scalar(liszt.Float64))
	for i := 0; i < 10; i++ {
		lf.SetFloat64(i, float64(i)*1.5)
	}

	a, b := NewChannelPair(ID([]int{1, 0}))
	haloRows := []int{7, 8, 9} // left's boundary layer adjacent to right

	done := make(chan struct{})
	go func() {
		buf := Gather(lf, haloRows)
		a.Send(buf)
		close(done)
	}()

	recvd, err := b.Recv("temp", haloRows)
	if err != nil {
		t.Fatal(err)
	}
	Scatter(rf, recvd)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send never completed")
	}

	for _, row := range haloRows {
		if got, want := rf.GetFloat64(row), lf.GetFloat64(row); got != want {
			t.Errorf("row %d: got %v, want %v", row, got, want)
		}
	}
}

func TestReadyCounterTriggersOnlyAfterEveryNeighbor(t *testing.T) {
	rc := NewReadyCounter(3)
	if rc.Ready() {
		t.Fatal("ready before any neighbor reported")
	}
	rc.Arrived()
	rc.Arrived()
	select {
	case <-rc.C():
		t.Fatal("triggered with one neighbor still outstanding")
	case <-time.After(10 * time.Millisecond):
	}
	rc.Arrived()
	select {
	case <-rc.C():
	case <-time.After(time.Second):
		t.Fatal("never triggered after all neighbors reported")
	}
	if !rc.Ready() {
		t.Error("Ready() false after C() triggered")
	}
}
