package control

import (
	"sync"
	"testing"
)

func TestBroadcastDeliversToEveryComputeNode(t *testing.T) {
	ctl := NewControlNode(nil)
	var mu sync.Mutex
	var got []int

	for id := 1; id <= 3; id++ {
		id := id
		ctl.Attach(NewComputeNode(id, func(ev Event) error {
			mu.Lock()
			got = append(got, id)
			mu.Unlock()
			return nil
		}))
	}

	if err := ctl.Broadcast(Event{Kind: NewRelation, RelationName: "cells", Size: 10007}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("delivered to %d nodes, want 3", len(got))
	}
}

func TestBroadcastPreservesOrderWithinOneKind(t *testing.T) {
	ctl := NewControlNode(nil)
	var mu sync.Mutex
	var seqs []int
	cn := NewComputeNode(1, func(ev Event) error {
		mu.Lock()
		seqs = append(seqs, ev.Seq)
		mu.Unlock()
		return nil
	})
	ctl.Attach(cn)

	for i := 0; i < 5; i++ {
		if err := ctl.Broadcast(Event{Kind: NewTask, TaskID: i}); err != nil {
			t.Fatal(err)
		}
	}
	want := []int{0, 1, 2, 3, 4}
	for i, s := range seqs {
		if s != want[i] {
			t.Errorf("seqs[%d] = %d, want %d", i, s, want[i])
		}
	}
}

func TestComputeNodeRejectsOutOfOrderDelivery(t *testing.T) {
	cn := NewComputeNode(1, func(Event) error { return nil })
	if err := cn.deliver(Event{Kind: LaunchTask, Seq: 1}); err == nil {
		t.Fatal("expected error delivering seq 1 before seq 0")
	}
	if err := cn.deliver(Event{Kind: LaunchTask, Seq: 0}); err != nil {
		t.Fatalf("unexpected error on correctly-ordered delivery: %v", err)
	}
}

func TestDifferentKindsHaveIndependentSequences(t *testing.T) {
	cn := NewComputeNode(1, func(Event) error { return nil })
	if err := cn.deliver(Event{Kind: NewTask, Seq: 0}); err != nil {
		t.Fatal(err)
	}
	// LaunchTask's sequence starts independently at 0, unaffected by
	// NewTask's delivery above.
	if err := cn.deliver(Event{Kind: LaunchTask, Seq: 0}); err != nil {
		t.Fatal(err)
	}
}
