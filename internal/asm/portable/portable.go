// Package portable implements the default Emitter backend: instead of
// emitting real machine code, it compiles each backend-IR function body
// into a Go closure that interprets the IR directly. This is the
// pluggable-backend contract's minimal real implementation — the machine
// code emitter itself is explicitly out of core scope — and it is also
// what lets the trap recovery barrier be exercised with panic/recover
// instead of process-level signal handlers.
package portable

import (
	"fmt"

	"github.com/wazeroc/corewasm/internal/asm"
	"github.com/wazeroc/corewasm/internal/instance"
	"github.com/wazeroc/corewasm/internal/trap"
)

// Backend is the portable asm.Emitter.
type Backend struct{}

// New returns a portable Backend.
func New() *Backend { return &Backend{} }

func (*Backend) Name() string { return "portable" }

// Emit compiles fn into a CompiledFunction whose Exec closure interprets
// the IR against a *instance.VMContext passed in as the opaque vmctx
// argument. Code/Relocations/Traps are left empty: this backend produces
// no real machine bytes, so there is nothing to relocate or to map a
// faulting IP against. A SIGSEGV/SIGBUS never reaches this path; instead
// every trap site raises trap.Raise explicitly, which is this backend's
// equivalent of a hardware fault.
func (*Backend) Emit(fn asm.IRFunction) (asm.CompiledFunction, error) {
	body := fn.Body
	numLocals := fn.NumLocals
	reachable := fn.Reachable

	exec := func(vmctxArg interface{}, args []uint64) ([]uint64, error) {
		vmctx, _ := vmctxArg.(*instance.VMContext)

		locals := make([]uint64, numLocals)
		copy(locals, args)

		var stack []uint64
		push := func(v uint64) { stack = append(stack, v) }
		pop := func() uint64 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			return v
		}

		for _, ins := range body {
			switch ins.Code {
			case asm.IRUnreachable:
				trap.Raise(trap.TrapcodeUnreachableCodeReached)

			case asm.IRReturn:
				return resultsFrom(stack), nil

			case asm.IRDrop:
				pop()

			case asm.IRLocalGet:
				push(locals[ins.LocalIndex])
			case asm.IRLocalSet:
				locals[ins.LocalIndex] = pop()
			case asm.IRLocalTee:
				v := stack[len(stack)-1]
				locals[ins.LocalIndex] = v

			case asm.IRGlobalGet:
				g := vmctx.Global(ins.Resource.Imported, ins.Resource.SubIndex)
				push(g.Value)
			case asm.IRGlobalSet:
				g := vmctx.Global(ins.Resource.Imported, ins.Resource.SubIndex)
				g.Value = pop()

			case asm.IRI32Const, asm.IRI64Const:
				push(uint64(ins.ConstValue))

			case asm.IRI32Add:
				b, a := pop(), pop()
				push(uint64(uint32(a) + uint32(b)))
			case asm.IRI32Sub:
				b, a := pop(), pop()
				push(uint64(uint32(a) - uint32(b)))
			case asm.IRI32Mul:
				b, a := pop(), pop()
				push(uint64(uint32(a) * uint32(b)))
			case asm.IRI32DivS:
				b, a := int32(pop()), int32(pop())
				if b == 0 {
					trap.Raise(trap.TrapcodeIntegerDivisionByZero)
				}
				if a == -2147483648 && b == -1 {
					trap.Raise(trap.TrapcodeIntegerOverflow)
				}
				push(uint64(uint32(a / b)))
			case asm.IRI32DivU:
				b, a := uint32(pop()), uint32(pop())
				if b == 0 {
					trap.Raise(trap.TrapcodeIntegerDivisionByZero)
				}
				push(uint64(a / b))
			case asm.IRI32And:
				b, a := pop(), pop()
				push(uint64(uint32(a) & uint32(b)))
			case asm.IRI32Or:
				b, a := pop(), pop()
				push(uint64(uint32(a) | uint32(b)))
			case asm.IRI32Xor:
				b, a := pop(), pop()
				push(uint64(uint32(a) ^ uint32(b)))
			case asm.IRI32Eq:
				b, a := pop(), pop()
				push(boolU64(uint32(a) == uint32(b)))
			case asm.IRI32Ne:
				b, a := pop(), pop()
				push(boolU64(uint32(a) != uint32(b)))
			case asm.IRI32LtS:
				b, a := int32(pop()), int32(pop())
				push(boolU64(a < b))

			case asm.IRI64Add:
				b, a := pop(), pop()
				push(a + b)
			case asm.IRI64Sub:
				b, a := pop(), pop()
				push(a - b)
			case asm.IRI64Mul:
				b, a := pop(), pop()
				push(a * b)
			case asm.IRI64DivS:
				b, a := int64(pop()), int64(pop())
				if b == 0 {
					trap.Raise(trap.TrapcodeIntegerDivisionByZero)
				}
				push(uint64(a / b))
			case asm.IRI64DivU:
				b, a := pop(), pop()
				if b == 0 {
					trap.Raise(trap.TrapcodeIntegerDivisionByZero)
				}
				push(a / b)

			case asm.IRI32Load:
				mem := vmctx.Memory(ins.Resource.Imported, ins.Resource.SubIndex)
				addr := uint32(pop()) + ins.MemoryOffset
				v := loadU32(mem, addr)
				push(uint64(v))
			case asm.IRI32Store:
				mem := vmctx.Memory(ins.Resource.Imported, ins.Resource.SubIndex)
				v := uint32(pop())
				addr := uint32(pop()) + ins.MemoryOffset
				storeU32(mem, addr, v)

			case asm.IRMemorySize:
				mem := vmctx.Memory(ins.Resource.Imported, ins.Resource.SubIndex)
				push(uint64(len(mem.Data) / wasmPageSize))
			case asm.IRMemoryGrow:
				mem := vmctx.Memory(ins.Resource.Imported, ins.Resource.SubIndex)
				delta := uint32(pop())
				prev, ok := growMemory(mem, delta)
				if !ok {
					push(^uint64(0)) // -1 as unsigned: growth refused.
				} else {
					push(uint64(prev))
				}

			case asm.IRCallDirect:
				callee, calleeVMCtx := vmctx.CallDirect(ins.Resource.Imported, ins.Resource.SubIndex)
				args := popN(&stack, len(callee.Sig.Params))
				results, err := callee.Exec(calleeVMCtx, args)
				if err != nil {
					return nil, err
				}
				for _, r := range results {
					push(r)
				}

			case asm.IRCallIndirect:
				table := vmctx.Table(ins.Table.Imported, ins.Table.SubIndex)
				elemIdx := uint32(pop())
				if elemIdx >= uint32(len(table.Elements)) {
					trap.Raise(trap.TrapcodeTableOutOfBounds)
				}
				entry := table.Elements[elemIdx]
				if !entry.Present {
					trap.Raise(trap.TrapcodeIndirectCallToNull)
				}
				if entry.SigIndex != ins.ExpectedSig {
					trap.Raise(trap.TrapcodeBadSignature)
				}
				args := popN(&stack, len(entry.Func.Sig.Params))
				results, err := entry.Func.Exec(entry.VMCtx, args)
				if err != nil {
					return nil, err
				}
				for _, r := range results {
					push(r)
				}

			default:
				return nil, fmt.Errorf("BUG: unhandled backend-IR opcode %d", ins.Code)
			}
		}

		if reachable {
			return resultsFrom(stack), nil
		}
		return nil, nil
	}

	return asm.CompiledFunction{Exec: exec}, nil
}

// popN removes and returns the top n values of *stack, oldest-first (the
// order a callee's parameter list expects them in).
func popN(stack *[]uint64, n int) []uint64 {
	s := *stack
	args := make([]uint64, n)
	copy(args, s[len(s)-n:])
	*stack = s[:len(s)-n]
	return args
}

func boolU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func resultsFrom(stack []uint64) []uint64 {
	out := make([]uint64, len(stack))
	copy(out, stack)
	return out
}

const wasmPageSize = 65536

func loadU32(mem *instance.LocalMemory, addr uint32) uint32 {
	if uint64(addr)+4 > uint64(len(mem.Data)) {
		trap.Raise(trap.TrapcodeHeapOutOfBounds)
	}
	b := mem.Data[addr : addr+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func storeU32(mem *instance.LocalMemory, addr uint32, v uint32) {
	if uint64(addr)+4 > uint64(len(mem.Data)) {
		trap.Raise(trap.TrapcodeHeapOutOfBounds)
	}
	b := mem.Data[addr : addr+4]
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// growMemory implements memory.grow for every MemoryType by allocating a
// new buffer and copying the old contents into it, so the base address
// changes on every successful growth. Static/SharedStatic memories refuse
// to grow past Layout.BoundBytes; Dynamic memories (BoundBytes zero) have
// no bound checked here.
func growMemory(mem *instance.LocalMemory, deltaPages uint32) (previousPages uint32, ok bool) {
	prevBytes := len(mem.Data)
	prevPages := uint32(prevBytes / wasmPageSize)
	newBytes := prevBytes + int(deltaPages)*wasmPageSize

	if mem.Layout.BoundBytes != 0 && uint64(newBytes) > mem.Layout.BoundBytes {
		return 0, false
	}

	grown := make([]byte, newBytes)
	copy(grown, mem.Data)
	mem.Data = grown
	return prevPages, true
}
