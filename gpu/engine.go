package gpu

import (
	"fmt"
	"os"
	"sync"

	liszt "github.com/clemire/liszt-in-terra"
	"github.com/clemire/liszt-in-terra/config"
	"github.com/clemire/liszt-in-terra/kernel"
)

// devPTXDumpWriter is where Engine writes its launch dump; a package
// variable rather than a field so tests can't be broken by adding one,
// but swappable if a future caller needs to capture it.
var devPTXDumpWriter = os.Stderr

// Engine is a simulated GPU reduction engine implementing
// kernel.ReduceEngine. BlockSize plays the role of the configured
// shared-memory block size B; it must be a power of 2.
type Engine struct {
	BlockSize int
	// DevPTXDump, when set, writes a one-line summary of each Launch
	// (block count, block size, number of globals) to stderr before
	// running it —
	// the internal-dev-ptx-dump toggle named in the runtime's
	// environment/runtime configuration (package config).
	DevPTXDump bool
}

// NewEngine builds an Engine from cfg: BlockSize comes from
// cfg.BlockSize (defaulting to 256 if not positive, matching
// config.Default), and DevPTXDump mirrors cfg.DevPTXDump.
func NewEngine(cfg *config.Config) *Engine {
	b := 256
	dump := false
	if cfg != nil {
		if cfg.BlockSize > 0 {
			b = cfg.BlockSize
		}
		dump = cfg.DevPTXDump
	}
	return &Engine{BlockSize: b, DevPTXDump: dump}
}

// Launch runs the primary and secondary tree-reduction passes over
// rows for every global in reduces, then folds each final value into
// its true Global location.
func (e *Engine) Launch(rows []int, reduces []kernel.GlobalAccess, body kernel.Body, args *kernel.Args) error {
	n := len(rows)
	if n == 0 {
		return nil
	}
	b := e.BlockSize
	m := (n + b - 1) / b

	scratch := make(map[string][]interface{}, len(reduces))
	for _, g := range reduces {
		slots := make([]interface{}, m)
		for i := range slots {
			slots[i] = g.Op.Identity(g.Global.Type.Kind)
		}
		scratch[g.Global.Name] = slots
	}

	if e.DevPTXDump {
		fmt.Fprintf(devPTXDumpWriter, "gpu: launching %d block(s) of up to %d threads, reducing %d global(s)\n", m, b, len(reduces))
	}

	var blocks sync.WaitGroup
	for blk := 0; blk < m; blk++ {
		blocks.Add(1)
		go func(blk int) {
			defer blocks.Done()
			e.runBlock(blk, b, n, rows, reduces, body, args, scratch)
		}(blk)
	}
	blocks.Wait()

	e.runSecondary(reduces, scratch)
	return nil
}

// runBlock runs one primary-kernel block of up to b threads, each
// contributing at most one row, then tree-reduces the block's shared
// slots into scratch[*][blk].
func (e *Engine) runBlock(blk, b, n int, rows []int, reduces []kernel.GlobalAccess, body kernel.Body, args *kernel.Args, scratch map[string][]interface{}) {
	shared := make(map[string][]interface{}, len(reduces))
	for _, g := range reduces {
		slots := make([]interface{}, b)
		for i := range slots {
			slots[i] = g.Op.Identity(g.Global.Type.Kind)
		}
		shared[g.Global.Name] = slots
	}

	var threads sync.WaitGroup
	for tid := 0; tid < b; tid++ {
		idx := blk*b + tid
		if idx >= n {
			continue
		}
		threads.Add(1)
		go func(tid, idx int) {
			defer threads.Done()
			threadArgs := *args
			threadArgs.Row = rows[idx]
			threadArgs.Reduce = func(name string, v interface{}) {
				for _, g := range reduces {
					if g.Global.Name != name {
						continue
					}
					shared[name][tid] = combine(g.Op, shared[name][tid], v)
					return
				}
			}
			body(&threadArgs)
		}(tid, idx)
	}
	threads.Wait()

	for step := b / 2; step >= 1; step /= 2 {
		var barrier sync.WaitGroup
		for tid := 0; tid < step; tid++ {
			barrier.Add(1)
			go func(tid int) {
				defer barrier.Done()
				for _, g := range reduces {
					s := shared[g.Global.Name]
					s[tid] = combine(g.Op, s[tid], s[tid+step])
				}
			}(tid)
		}
		barrier.Wait()
	}

	for _, g := range reduces {
		scratch[g.Global.Name][blk] = shared[g.Global.Name][0]
	}
}

// runSecondary is the single-block secondary pass: stride over the
// primary pass's per-block scratch values, tree-reduce, then fold the
// result into the true global using its op again so any pre-existing
// value is preserved.
func (e *Engine) runSecondary(reduces []kernel.GlobalAccess, scratch map[string][]interface{}) {
	b := e.BlockSize
	for _, g := range reduces {
		slots := scratch[g.Global.Name]
		shared := make([]interface{}, b)
		for tid := range shared {
			shared[tid] = g.Op.Identity(g.Global.Type.Kind)
			for gt := tid; gt < len(slots); gt += b {
				shared[tid] = combine(g.Op, shared[tid], slots[gt])
			}
		}
		for step := b / 2; step >= 1; step /= 2 {
			for tid := 0; tid < step; tid++ {
				shared[tid] = combine(g.Op, shared[tid], shared[tid+step])
			}
		}
		g.Global.Reduce(g.Op, shared[0])
	}
}

// combine folds b into a under op, reusing liszt.Global's own
// reduction arithmetic rather than duplicating its per-kind switch
// here.
func combine(op liszt.ReduceOp, a, b interface{}) interface{} {
	var g liszt.Global
	g.Set(a)
	g.Reduce(op, b)
	return g.Get()
}
