// Package errors provides the runtime's error taxonomy. Every error is
// assigned a Kind drawn from the runtime's error-handling design
// (schema, phase, layout, device, I/O, protocol, overflow) plus an
// operation name and optional arguments, and may wrap an upstream
// cause. The Kind determines whether a caller may treat the failure as
// recoverable: only Kind IO is ever meant to be surfaced as an
// ordinary API failure return rather than a fatal abort.
//
// The API was modeled on the upspin.io/errors pattern: construct with
// E, passing a mix of string (op/arg), Kind, and error arguments.
package errors

import (
	"bytes"
	"fmt"
)

// Kind denotes the class of error.
type Kind int

const (
	// Other is an unclassified error.
	Other Kind = iota
	// Schema denotes an invalid name, duplicate name, mutation of a
	// fragmented relation, a key-into-elastic field, grouping a
	// non-PLAIN relation, or a type mismatch on swap/copy.
	Schema
	// Phase denotes a kernel that simultaneously uncentered-reads and
	// non-reduce-writes a field, an unsupported distributed reduction
	// op, or an access to a field not resident on the target
	// processor.
	Phase
	// Layout denotes an attempt to extend an argument layout after it
	// has been finalized. Always an implementation bug.
	Layout
	// Device denotes a CUDA/GPU load or launch failure.
	Device
	// IO denotes a missing, truncated, or malformed input file.
	IO
	// Protocol denotes a ghost-channel handshake failure (buffer size
	// mismatch, unmatched neighbor).
	Protocol
	// Overflow denotes an elastic insert/delete that exceeded its
	// pre-reserved capacity.
	Overflow

	maxKind
)

var kindNames = [maxKind]string{
	Other:    "other",
	Schema:   "schema error",
	Phase:    "phase error",
	Layout:   "layout error",
	Device:   "device error",
	IO:       "I/O error",
	Protocol: "protocol error",
	Overflow: "overflow",
}

func (k Kind) String() string {
	if k < 0 || k >= maxKind {
		return "unknown error"
	}
	return kindNames[k]
}

// Fatal reports whether errors of this kind are fail-fast: every kind
// except IO aborts the operation with no partial retry.
func (k Kind) Fatal() bool {
	return k != IO
}

// Error is a runtime error: a Kind, the one-word operation that
// failed, optional arguments, and an optional wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Arg  []string
	Err  error
}

// E constructs an *Error from a mix of arguments. The first string
// argument becomes Op; subsequent strings become Arg. A Kind argument
// sets Kind. An error argument is wrapped as Err, and if no Kind was
// given, Kind is inherited from it when it is itself an *Error.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("errors.E: no arguments")
	}
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case string:
			if e.Op == "" {
				e.Op = a
			} else {
				e.Arg = append(e.Arg, a)
			}
		case Kind:
			e.Kind = a
		case *Error:
			cp := *a
			e.Err = &cp
		case error:
			e.Err = a
		default:
			e.Arg = append(e.Arg, fmt.Sprintf("%v", a))
		}
	}
	if e.Kind == Other && e.Err != nil {
		if prev, ok := e.Err.(*Error); ok {
			e.Kind = prev.Kind
		}
	}
	return e
}

func (e *Error) Error() string {
	var b bytes.Buffer
	if e.Op != "" {
		b.WriteString(e.Op)
	}
	for _, a := range e.Arg {
		b.WriteString(" ")
		b.WriteString(a)
	}
	if e.Kind != Other {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether err is (or wraps) an *Error of kind k.
func Is(err error, k Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind == k {
				return true
			}
			err = e.Err
			continue
		}
		return false
	}
	return false
}
