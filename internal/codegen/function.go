package codegen

import (
	"fmt"

	"github.com/wazeroc/corewasm/internal/asm"
	"github.com/wazeroc/corewasm/internal/wasm"
	"github.com/wazeroc/corewasm/internal/wasmruntime"
)

// FunctionGenerator is the function code generator (C6) for one Wasm
// function: it builds the preamble that makes VMContext-addressed state
// reachable and lowers the function's operator stream into backend-IR.
//
// Its capability set matches the design notes: feed_param (folded into
// construction, since every parameter is known up front from the
// function's signature), feed_local, begin_body, feed_event, finalize.
type FunctionGenerator struct {
	index    wasm.Index
	sigIndex wasm.SigIndex
	sig      *wasm.FunctionType
	module   *wasm.ModuleInfo

	numParams int
	numLocals int // includes numParams; growth tracked by feed_local.
	nextLocal int

	body      []asm.IRInstr
	reachable bool
	began     bool
	finished  bool
}

func newFunctionGenerator(index wasm.Index, sigIndex wasm.SigIndex, sig *wasm.FunctionType, module *wasm.ModuleInfo) *FunctionGenerator {
	return &FunctionGenerator{
		index:     index,
		sigIndex:  sigIndex,
		sig:       sig,
		module:    module,
		numParams: len(sig.Params),
		numLocals: len(sig.Params),
		nextLocal: len(sig.Params),
		reachable: true,
	}
}

// FeedLocal declares one additional local of the given count, advancing
// the next_local counter the FCG tracks per the component design. valType
// is accepted for interface symmetry with a real backend that would need
// it to pick a register class; the portable backend only needs the count.
func (f *FunctionGenerator) FeedLocal(valType byte, count int) error {
	if f.began {
		return fmt.Errorf("%w: FeedLocal called after BeginBody", wasmruntime.ErrUsage)
	}
	f.numLocals += count
	f.nextLocal += count
	return nil
}

// BeginBody marks the end of parameter/local declarations and the start
// of the operator stream.
func (f *FunctionGenerator) BeginBody() error {
	if f.began {
		return fmt.Errorf("%w: BeginBody called twice", wasmruntime.ErrUsage)
	}
	f.began = true
	return nil
}

// FeedEvent accepts the next Event in this function's stream, in the
// order it left the middleware chain's last stage, and lowers it to
// backend-IR.
func (f *FunctionGenerator) FeedEvent(e Event) error {
	if f.finished {
		return fmt.Errorf("%w: FeedEvent called after FunctionEnd", wasmruntime.ErrUsage)
	}
	if !e.IsWasm {
		return f.feedInternal(e.Internal)
	}
	return f.feedWasm(e.Wasm)
}

func (f *FunctionGenerator) feedInternal(ie InternalEvent) error {
	switch ie.Kind {
	case InternalEventFunctionEnd:
		f.finished = true
		return nil
	case InternalEventBreakpoint:
		// A metering/debug middleware stage's periodic checkpoint: lower
		// to nothing executable here. No handler is invoked for it at
		// execution time.
		return nil
	case InternalEventFunctionBegin, InternalEventSetInternal, InternalEventGetInternal:
		return nil
	default:
		return fmt.Errorf("%w: unknown internal event kind %d", wasmruntime.ErrCompile, ie.Kind)
	}
}

func (f *FunctionGenerator) feedWasm(in Instruction) error {
	if !f.reachable {
		// Unreachable/exit-block handling: once an unconditional trap has
		// been emitted, the residual operand stack is discarded and
		// further operators in the same block are dead. We still accept
		// them (a real validator would have rejected genuinely
		// unreachable-but-malformed code upstream; validation is out of
		// scope here) but emit nothing for them.
		return nil
	}

	switch in.Op {
	case OpUnreachable:
		f.emit(asm.IRInstr{Code: asm.IRUnreachable})
		f.reachable = false
	case OpReturn:
		f.emit(asm.IRInstr{Code: asm.IRReturn})
		f.reachable = false
	case OpDrop:
		f.emit(asm.IRInstr{Code: asm.IRDrop})

	case OpLocalGet:
		f.emit(asm.IRInstr{Code: asm.IRLocalGet, LocalIndex: wasm.Index(in.Immediate)})
	case OpLocalSet:
		f.emit(asm.IRInstr{Code: asm.IRLocalSet, LocalIndex: wasm.Index(in.Immediate)})
	case OpLocalTee:
		f.emit(asm.IRInstr{Code: asm.IRLocalTee, LocalIndex: wasm.Index(in.Immediate)})

	case OpGlobalGet:
		f.emitGlobal(asm.IRGlobalGet, wasm.Index(in.Immediate))
	case OpGlobalSet:
		f.emitGlobal(asm.IRGlobalSet, wasm.Index(in.Immediate))

	case OpI32Const:
		f.emit(asm.IRInstr{Code: asm.IRI32Const, ConstValue: in.Immediate})
	case OpI64Const:
		f.emit(asm.IRInstr{Code: asm.IRI64Const, ConstValue: in.Immediate})

	case OpI32Add:
		f.emit(asm.IRInstr{Code: asm.IRI32Add})
	case OpI32Sub:
		f.emit(asm.IRInstr{Code: asm.IRI32Sub})
	case OpI32Mul:
		f.emit(asm.IRInstr{Code: asm.IRI32Mul})
	case OpI32DivS:
		f.emit(asm.IRInstr{Code: asm.IRI32DivS})
	case OpI32DivU:
		f.emit(asm.IRInstr{Code: asm.IRI32DivU})
	case OpI32And:
		f.emit(asm.IRInstr{Code: asm.IRI32And})
	case OpI32Or:
		f.emit(asm.IRInstr{Code: asm.IRI32Or})
	case OpI32Xor:
		f.emit(asm.IRInstr{Code: asm.IRI32Xor})
	case OpI32Eq:
		f.emit(asm.IRInstr{Code: asm.IRI32Eq})
	case OpI32Ne:
		f.emit(asm.IRInstr{Code: asm.IRI32Ne})
	case OpI32LtS:
		f.emit(asm.IRInstr{Code: asm.IRI32LtS})

	case OpI64Add:
		f.emit(asm.IRInstr{Code: asm.IRI64Add})
	case OpI64Sub:
		f.emit(asm.IRInstr{Code: asm.IRI64Sub})
	case OpI64Mul:
		f.emit(asm.IRInstr{Code: asm.IRI64Mul})
	case OpI64DivS:
		f.emit(asm.IRInstr{Code: asm.IRI64DivS})
	case OpI64DivU:
		f.emit(asm.IRInstr{Code: asm.IRI64DivU})

	case OpI32Load:
		f.emitMemory(asm.IRI32Load, uint32(in.Immediate))
	case OpI32Store:
		f.emitMemory(asm.IRI32Store, uint32(in.Immediate))

	case OpMemorySize:
		f.emitMemory(asm.IRMemorySize, 0)
	case OpMemoryGrow:
		f.emitMemory(asm.IRMemoryGrow, 0)

	case OpCall:
		imported, sub := f.module.Sections.Functions.Project(wasm.Index(in.Immediate))
		f.emit(asm.IRInstr{Code: asm.IRCallDirect, Resource: asm.ResourceRef{Imported: imported, SubIndex: sub}})

	case OpCallIndirect:
		imported, sub := f.module.Sections.Tables.Project(in.TableIndex)
		f.emit(asm.IRInstr{
			Code:        asm.IRCallIndirect,
			Table:       asm.ResourceRef{Imported: imported, SubIndex: sub},
			ExpectedSig: in.TypeIndex,
		})

	default:
		return fmt.Errorf("%w: unsupported operator %d", wasmruntime.ErrCompile, in.Op)
	}
	return nil
}

func (f *FunctionGenerator) emit(i asm.IRInstr) { f.body = append(f.body, i) }

// emitGlobal performs the global preamble's project step before emitting
// the resolved access: Local|Import is determined once, here, rather than
// being re-derived by the backend.
func (f *FunctionGenerator) emitGlobal(code asm.IRCode, idx wasm.Index) {
	imported, sub := f.module.Sections.Globals.Project(idx)
	f.emit(asm.IRInstr{Code: code, Resource: asm.ResourceRef{Imported: imported, SubIndex: sub}})
}

// emitMemory performs the memory preamble's project step (memory index 0
// is implicit in Wasm 1.0, which allows at most one memory) before
// emitting the resolved access.
func (f *FunctionGenerator) emitMemory(code asm.IRCode, offset uint32) {
	imported, sub := f.module.Sections.Memories.Project(0)
	f.emit(asm.IRInstr{Code: code, Resource: asm.ResourceRef{Imported: imported, SubIndex: sub}, MemoryOffset: offset})
}

// build finalizes this function's backend-IR body. If, at this point, the
// exit block is unreachable (the function ended in an unconditional
// trap), no implicit return is present in Body and the Reachable flag
// reflects that; the Emitter never appends one on its own.
func (f *FunctionGenerator) build() asm.IRFunction {
	return asm.IRFunction{
		Signature: f.sig,
		NumParams: f.numParams + 1, // + implicit VMContext pointer
		NumLocals: f.numLocals,
		Body:      f.body,
		Reachable: f.reachable,
	}
}
