package asm

import (
	"github.com/wazeroc/corewasm/internal/trap"
	"github.com/wazeroc/corewasm/internal/wasm"
)

// IRCode identifies one backend-IR operation: a Wasm operator after the
// function code generator has resolved every resource reference (locals,
// globals, memories, tables, calls) against the VMContext preamble. This
// is the "backend-IR" the external interfaces section hands to the
// machine-code emitter; it is deliberately lower-level than the raw
// decoded Wasm operator stream C3/C4 deal in, since preamble resolution
// (project/promote, base/bound loads) has already happened by this point.
type IRCode byte

const (
	IRUnreachable IRCode = iota
	IRReturn
	IRDrop

	IRLocalGet
	IRLocalSet
	IRLocalTee

	// IRGlobalGet/IRGlobalSet carry the resolved (imported, sub-index)
	// pair needed to address LocalGlobal/imported globals through
	// VMContext, computed by the preamble builder in C6.
	IRGlobalGet
	IRGlobalSet

	IRI32Const
	IRI64Const

	IRI32Add
	IRI32Sub
	IRI32Mul
	IRI32DivS
	IRI32DivU
	IRI32And
	IRI32Or
	IRI32Xor
	IRI32Eq
	IRI32Ne
	IRI32LtS

	IRI64Add
	IRI64Sub
	IRI64Mul
	IRI64DivS
	IRI64DivU

	// IRI32Load/IRI32Store carry the resolved memory access: which memory
	// (imported/local + sub-index) and the MemoryType-specific bounds
	// check strategy chosen by the preamble builder.
	IRI32Load
	IRI32Store

	IRMemorySize
	IRMemoryGrow

	// IRCallDirect carries the resolved (imported, sub-index) pair for
	// the callee, per the direct-call preamble.
	IRCallDirect
	// IRCallIndirect carries the table reference and the expected
	// SigIndex, per the indirect-call preamble's five-step sequence.
	IRCallIndirect
)

// ResourceRef is a resolved reference into one of VMContext's Local/
// Imported index spaces, as produced by a C6 preamble builder.
type ResourceRef struct {
	Imported bool
	SubIndex wasm.Index
}

// IRInstr is one backend-IR instruction: an IRCode plus whichever operand
// fields that code uses. Unused fields are zero.
type IRInstr struct {
	Code IRCode

	// LocalIndex is used by IRLocalGet/Set/Tee.
	LocalIndex wasm.Index
	// ConstValue is used by IRI32Const/IRI64Const.
	ConstValue int64
	// Resource is used by IRGlobalGet/Set, IRI32Load/Store (as the
	// memory), IRCallDirect (as the callee), and IRMemorySize/Grow.
	Resource ResourceRef
	// ExpectedSig and Table are used by IRCallIndirect: Table is the
	// already-projected table reference (step 1 of the indirect-call
	// preamble), ExpectedSig is the canonical interned signature the
	// loaded element's sig_id must match.
	ExpectedSig wasm.SigIndex
	Table       ResourceRef
	// MemoryOffset is the static offset immediate on a load/store.
	MemoryOffset uint32
}

// IRFunction is one function body in backend-IR form, ready to hand to an
// Emitter. NumParams includes the prepended VMContext-pointer parameter.
type IRFunction struct {
	Signature  *wasm.FunctionType
	NumParams  int
	NumLocals  int
	Body       []IRInstr
	// Reachable is false when the function's exit block is unreachable
	// (e.g. it ends in an unconditional trap): no implicit return is
	// emitted in that case, and the residual operand stack is discarded.
	Reachable bool
}

// RelocationKind identifies what a Relocation site refers to.
type RelocationKind byte

const (
	// RelocationKindFunctionCall is a colocated (PC-relative) call to
	// another function in the same artifact.
	RelocationKindFunctionCall RelocationKind = iota
	// RelocationKindSigSymbol is a reference to a signature's canonical
	// interned id, resolved at link time so indirect-call signature
	// comparisons remain valid across modules (§4.6 step 3).
	RelocationKindSigSymbol
	// RelocationKindRuntimeHelper is a reference to a namespace-tagged
	// runtime helper (e.g. the memory.grow variant chosen by MemoryType).
	RelocationKindRuntimeHelper
)

// Relocation is one site within a function's machine code that the
// module code generator must patch during Finalize.
type Relocation struct {
	TargetSymbol string
	SiteOffset   uint32
	Kind         RelocationKind
}

// TrapRecord maps a byte offset within a function's machine code to the
// Trapcode a fault at that site represents, plus an optional source
// location for diagnostics. This is the relocation metadata the trap
// recovery barrier (C7) uses to classify a faulting instruction pointer.
type TrapRecord struct {
	CodeOffset uint32
	Code       trap.Trapcode
	SourceLoc  uint32
}

// CompiledFunction is the result of emitting one IRFunction.
type CompiledFunction struct {
	Code        []byte
	Relocations []Relocation
	Traps       []TrapRecord

	// Exec is populated by backends (the portable backend, always) that
	// represent "machine code" as a Go closure rather than real bytes.
	// The portable backend is the only backend in this module, and callers
	// invoke Exec.
	Exec ExecFunc
}

// ExecFunc is the calling convention a portable (closure-based) compiled
// function is invoked through: it receives the opaque VMContext pointer
// as the first machine-ABI parameter (here, an untyped pointer the
// runtime package knows how to interpret) and the remaining Wasm
// parameters already widened to uint64, and returns the Wasm results
// widened the same way, or a trap.
type ExecFunc func(vmctx interface{}, args []uint64) ([]uint64, error)

// Emitter is the machine-code emitter: the pluggable backend that turns
// backend-IR function bodies into an executable form. The pipeline is
// responsible for laying functions out contiguously and resolving
// colocated relocations; the Emitter only needs to emit one function at a
// time and describe what it referenced.
type Emitter interface {
	// Name identifies this backend, e.g. "portable".
	Name() string
	// Emit lowers one backend-IR function body to its executable form.
	Emit(fn IRFunction) (CompiledFunction, error)
}
