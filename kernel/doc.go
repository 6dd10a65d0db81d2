// Package kernel implements the compiled-kernel lifecycle: the
// argument layout that describes a kernel's in-memory view (§4.B) and
// the Version state machine that carries a kernel from declared
// through compiled, ready and launched (§4.C).
//
// The source-level parser and expression code generator are external
// collaborators this package does not implement; a Kernel's Body is
// supplied directly as a Go closure playing the role of the generated
// inner loop ("takes a pointer to the argument struct, returns void").
package kernel
