// Package codegen implements the module and function code generators
// (C5/C6): the components that turn a parsed module's signatures and
// per-function operator streams into a sealed, runnable artifact.
package codegen

import "github.com/wazeroc/corewasm/internal/wasm"

// Op identifies a single Wasm operator understood by the function code
// generator. This is a representative subset of the full Wasm 1.0
// instruction set: enough to exercise every preamble builder (globals,
// memories, tables, direct and indirect calls) and every trap path named
// in the component design, without reproducing the entire opcode table,
// which is orthogonal to those concerns.
type Op byte

const (
	OpUnreachable Op = iota
	OpReturn
	OpDrop

	OpLocalGet
	OpLocalSet
	OpLocalTee

	OpGlobalGet
	OpGlobalSet

	OpI32Const
	OpI64Const

	OpI32Add
	OpI32Sub
	OpI32Mul
	OpI32DivS
	OpI32DivU
	OpI32And
	OpI32Or
	OpI32Xor
	OpI32Eq
	OpI32Ne
	OpI32LtS

	OpI64Add
	OpI64Sub
	OpI64Mul
	OpI64DivS
	OpI64DivU

	OpI32Load
	OpI32Store

	OpMemorySize
	OpMemoryGrow

	OpCall
	OpCallIndirect
)

// Instruction is one decoded, already-lowered-by-middleware operator ready
// for the function code generator's translation step. Immediate carries
// the operator's single immediate operand, when it has one (a local
// index, a constant, a function/table/global index); its meaning is
// Op-specific.
type Instruction struct {
	Op        Op
	Immediate int64
	// TableIndex and TypeIndex are populated only for OpCallIndirect.
	TableIndex wasm.Index
	TypeIndex  wasm.SigIndex
}

// Event is the unit the streaming parser bridge (C3) feeds through the
// middleware chain (C4) to the function code generator (C6). It is a
// closed sum of an internal, pipeline-owned marker and a wrapped Wasm
// operator, mirroring the Event/InternalEvent split in the streaming
// compiler this design is grounded on.
type Event struct {
	Internal InternalEvent
	IsWasm   bool
	Wasm     Instruction
}

// InternalEvent is a pipeline-owned marker event, as opposed to a decoded
// Wasm operator. Middleware stages (notably metering) synthesize these.
type InternalEvent struct {
	Kind InternalEventKind
	// Arg carries SetInternal/GetInternal's target slot index, or
	// Breakpoint's handler id.
	Arg uint32
}

type InternalEventKind byte

const (
	InternalEventFunctionBegin InternalEventKind = iota
	InternalEventFunctionEnd
	InternalEventBreakpoint
	InternalEventSetInternal
	InternalEventGetInternal
)

// WasmEvent wraps a decoded operator as an Event.
func WasmEvent(i Instruction) Event { return Event{IsWasm: true, Wasm: i} }

// InternalEventOf wraps an InternalEvent as an Event.
func InternalEventOf(e InternalEvent) Event { return Event{Internal: e} }
