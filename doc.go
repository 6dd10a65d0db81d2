// Package liszt implements the execution core of an Ebb/Liszt-style
// runtime: relations and fields over which per-row kernels are compiled,
// scheduled, and launched.
//
// A Relation is an ordered collection of rows; a Field is a typed column
// owned by exactly one relation. Kernels (package kernel) are compiled
// against a relation's fields and globals, and the compiled version is
// driven through its state machine by the caller. Distributed execution
// (package sched, ghost, partition, control) layers a cooperative
// signal-graph scheduler and ghost-cell exchange on top of the same
// relation/field model.
package liszt
