package liszt

import (
	"sync/atomic"

	"github.com/clemire/liszt-in-terra/errors"
)

// InsertReservation is the bind-phase state for an elastic insert
// launch (§4.E). A kernel that inserts rows atomically fetches-and-adds
// into its write index to obtain its destination row, writes the row's fields,
// and sets the live mask.
type InsertReservation struct {
	rel   *Relation
	start int64 // old concrete size, before headroom was reserved
	index int64 // atomic write-index, starts at old concrete size
	limit int64 // old concrete size + reserved headroom
}

// BeginInsert reserves concrete+launchSize rows of header room and
// returns a write-index global initialized to the current concrete
// size. Only legal on an ELASTIC relation with no subsets.
func (r *Relation) BeginInsert(launchSize int) (*InsertReservation, error) {
	if r.Mode != ELASTIC {
		return nil, errors.E("insert", errors.Schema, r.Name, "not ELASTIC")
	}
	if len(r.subsets) != 0 {
		return nil, errors.E("insert", errors.Schema, r.Name, "relation has subsets")
	}
	old := r.concreteSize
	if err := r.Resize(old+launchSize, r.logicalSize); err != nil {
		return nil, err
	}
	return &InsertReservation{rel: r, start: int64(old), index: int64(old), limit: int64(old + launchSize)}, nil
}

// Reserve atomically fetches-and-adds n rows, returning the first
// destination row id. It returns an Overflow error — per §7, inserts
// do not retry on overflow — if doing so would exceed the pre-reserved
// capacity.
func (res *InsertReservation) Reserve(n int) (int, error) {
	dst := atomic.AddInt64(&res.index, int64(n)) - int64(n)
	if dst+int64(n) > res.limit {
		return 0, errors.E("insert", errors.Overflow, res.rel.Name, "write index exceeded reserved capacity")
	}
	return int(dst), nil
}

// Write marks row dst live on the reservation's relation. The kernel
// calls this (via the generated code) after writing the row's fields.
func (res *InsertReservation) Write(dst int) {
	res.rel.liveMask.SetBool(dst, true)
}

// CommitInsert is the post_launch step (§4.C) for an insert kernel: the
// final write index becomes the new concrete size, logical size grows
// by the same delta, and the relation is marked fragmented (inserted
// rows are not guaranteed contiguous with prior live rows once
// combined with deletes).
func (res *InsertReservation) CommitInsert() error {
	r := res.rel
	finalConcrete := int(atomic.LoadInt64(&res.index))
	written := finalConcrete - int(res.start)
	if err := r.Resize(finalConcrete, r.logicalSize+written); err != nil {
		return err
	}
	r.isFragmented = true
	return nil
}

// DeleteReservation is the bind-phase state for an elastic delete
// launch: a deletion-count global initialized to 0.
type DeleteReservation struct {
	rel   *Relation
	count int64
}

// BeginDelete initializes a deletion-count global to 0. Only legal on
// an ELASTIC relation with no subsets.
func (r *Relation) BeginDelete() (*DeleteReservation, error) {
	if r.Mode != ELASTIC {
		return nil, errors.E("delete", errors.Schema, r.Name, "not ELASTIC")
	}
	if len(r.subsets) != 0 {
		return nil, errors.E("delete", errors.Schema, r.Name, "relation has subsets")
	}
	return &DeleteReservation{rel: r}, nil
}

// Delete clears row's live bit and atomically increments the deletion
// counter. The kernel calls this for every row it deletes.
func (res *DeleteReservation) Delete(row int) {
	res.rel.liveMask.SetBool(row, false)
	atomic.AddInt64(&res.count, 1)
}

// CommitDelete is the post_launch step for a delete kernel: logical
// size shrinks by the deletion count, and defrag runs automatically if
// occupancy falls to 50% or below.
func (res *DeleteReservation) CommitDelete() error {
	r := res.rel
	r.logicalSize -= int(atomic.LoadInt64(&res.count))
	if r.concreteSize > 0 && float64(r.logicalSize) <= 0.5*float64(r.concreteSize) {
		return r.Defrag()
	}
	return nil
}

// Defrag packs an ELASTIC relation's live rows to the front of its
// concrete storage, per the two-cursor protocol in §4.E. The
// per-relation copy routine is regenerated only when the relation's
// structural signature (field names/types) changes; defrag is
// idempotent — calling it again on an already-packed relation is a
// no-op beyond resetting IsFragmented.
func (r *Relation) Defrag() error {
	if r.Mode != ELASTIC {
		return errors.E("defrag", errors.Schema, r.Name, "not ELASTIC")
	}
	copyRow := r.defragCopyRoutine()
	dst, src := 0, r.concreteSize-1
	for dst < src {
		for src > dst && !r.liveMask.GetBool(src) {
			src--
		}
		for dst < src && r.liveMask.GetBool(dst) {
			dst++
		}
		if dst < src {
			copyRow(r, dst, src)
			r.liveMask.SetBool(dst, true)
			r.liveMask.SetBool(src, false)
			dst++
			src--
		}
	}
	live := 0
	for i := 0; i < r.concreteSize; i++ {
		if r.liveMask.GetBool(i) {
			live++
		}
	}
	if err := r.Resize(live, live); err != nil {
		return err
	}
	r.isFragmented = false
	return nil
}

// defragCopyRoutine returns the cached per-field row-copy routine for
// r's current schema, regenerating it if the schema has changed since
// it was last cached.
func (r *Relation) defragCopyRoutine() func(*Relation, int, int) {
	sig := r.structuralSignature()
	if r.copyGen != nil && r.copyGenSig == sig {
		return r.copyGen
	}
	fields := append([]*Field(nil), r.fields...)
	gen := func(rel *Relation, dst, src int) {
		for _, f := range fields {
			if f == rel.liveMask {
				continue
			}
			if f.Loc == Device {
				f.MigrateToHost()
			}
			f.copyRow(dst, f, src)
		}
	}
	r.copyGen = gen
	r.copyGenSig = sig
	return gen
}

// MigrateToHost is the "slow workaround" the spec calls out in its
// design notes: device-resident fields are copied back to host memory
// before the defrag scan touches them, rather than running a dedicated
// device defrag pass.
func (f *Field) MigrateToHost() {
	if f.Loc != Device {
		return
	}
	copy(f.raw, f.device)
	f.Loc = Host
}

// MigrateToDevice copies a host-resident field's storage into its
// device mirror and marks it Device-resident.
func (f *Field) MigrateToDevice() {
	if f.Loc == Device {
		return
	}
	f.device = append(f.device[:0], f.raw...)
	f.Loc = Device
}
