// Package trap implements the protected-call barrier: the boundary at
// which illegal behavior inside compiled Wasm code (division by zero, an
// out-of-bounds memory access, an indirect call through a bad signature,
// an unreachable instruction) is reified as a typed, recoverable Go error
// instead of corrupting host state.
//
// A true setjmp/longjmp plus POSIX signal handler, as used by the system
// this package's contract is distilled from, requires cgo. This module is
// pure Go, so CallProtected uses Go's own synchronous-fault primitive
// instead: panic/recover scoped per call, with runtime/debug.SetPanicOnFault
// turning a genuine SIGSEGV/SIGBUS into a recoverable runtime.Error rather
// than a process abort. Code generated by the portable Emitter backend
// raises the same typed panic a hardware trap would have produced, so both
// paths converge on the same classification logic below.
package trap

import "fmt"

// Trapcode identifies the specific illegal condition a trap-raising
// instruction, or a host callback invoking RequestEarly, detected.
type Trapcode byte

const (
	TrapcodeStackOverflow Trapcode = iota
	TrapcodeHeapOutOfBounds
	TrapcodeOutOfBounds
	TrapcodeTableOutOfBounds
	TrapcodeIndirectCallToNull
	TrapcodeBadSignature
	TrapcodeIntegerOverflow
	TrapcodeIntegerDivisionByZero
	TrapcodeBadConversionToInteger
	TrapcodeUnreachableCodeReached
)

func (c Trapcode) String() string {
	switch c {
	case TrapcodeStackOverflow:
		return "stack overflow"
	case TrapcodeHeapOutOfBounds:
		return "heap out of bounds"
	case TrapcodeOutOfBounds:
		return "out of bounds"
	case TrapcodeTableOutOfBounds:
		return "table out of bounds"
	case TrapcodeIndirectCallToNull:
		return "indirect call to null"
	case TrapcodeBadSignature:
		return "bad signature"
	case TrapcodeIntegerOverflow:
		return "integer overflow"
	case TrapcodeIntegerDivisionByZero:
		return "integer division by zero"
	case TrapcodeBadConversionToInteger:
		return "bad conversion to integer"
	case TrapcodeUnreachableCodeReached:
		return "unreachable code reached"
	default:
		return "unknown clif trap code"
	}
}

// ExceptionCode is the caller-facing classification of a trap, collapsing
// the finer-grained Trapcode values the backend may report.
type ExceptionCode byte

const (
	ExceptionCodeMemoryOutOfBounds ExceptionCode = iota
	ExceptionCodeCallIndirectOOB
	ExceptionCodeIncorrectCallIndirectSignature
	ExceptionCodeIllegalArithmetic
	ExceptionCodeUnreachable
)

func (c ExceptionCode) String() string {
	switch c {
	case ExceptionCodeMemoryOutOfBounds:
		return "memory out of bounds"
	case ExceptionCodeCallIndirectOOB:
		return "call indirect out of bounds"
	case ExceptionCodeIncorrectCallIndirectSignature:
		return "incorrect call_indirect signature"
	case ExceptionCodeIllegalArithmetic:
		return "illegal arithmetic operation"
	case ExceptionCodeUnreachable:
		return "unreachable executed"
	default:
		return "unknown exception"
	}
}

// classify maps a Trapcode to its ExceptionCode per the table in the
// component design for the trap recovery barrier. Every Trapcode value
// above has exactly one entry here; ok is false only for a value outside
// the enum (which cannot happen from in-module callers, but can from a
// relocation table deserialized out of a stale cache record).
func classify(c Trapcode) (code ExceptionCode, ok bool) {
	switch c {
	case TrapcodeStackOverflow, TrapcodeHeapOutOfBounds, TrapcodeOutOfBounds:
		return ExceptionCodeMemoryOutOfBounds, true
	case TrapcodeTableOutOfBounds, TrapcodeIndirectCallToNull:
		return ExceptionCodeCallIndirectOOB, true
	case TrapcodeBadSignature:
		return ExceptionCodeIncorrectCallIndirectSignature, true
	case TrapcodeIntegerOverflow, TrapcodeIntegerDivisionByZero, TrapcodeBadConversionToInteger:
		return ExceptionCodeIllegalArithmetic, true
	case TrapcodeUnreachableCodeReached:
		return ExceptionCodeUnreachable, true
	default:
		return 0, false
	}
}

// CallProtError is the error returned from CallProtected when the
// protected closure raised a trap. It is the RuntimeError family named in
// the error handling design.
type CallProtError struct {
	Code ExceptionCode
	// Trapcode is the finer-grained code the classification was derived
	// from, when known. Zero value TrapcodeStackOverflow is a valid trap
	// code, so check HasTrapcode before reading this for diagnostics.
	Trapcode    Trapcode
	HasTrapcode bool
	// Address is the faulting address, when the trap was raised by a real
	// hardware signal rather than a Go-level panic. Zero otherwise.
	Address uintptr
}

func (e *CallProtError) Error() string {
	if e.HasTrapcode {
		return fmt.Sprintf("wasm trap: %s (%s)", e.Code, e.Trapcode)
	}
	if e.Address != 0 {
		return fmt.Sprintf("wasm trap: unknown trap at %#x", e.Address)
	}
	return fmt.Sprintf("wasm trap: %s", e.Code)
}

// newCallProtError builds the CallProtError for a known Trapcode, falling
// back to the Unreachable classification when classify has no mapping:
// callers always pass a valid Trapcode constant, so ok is true in every
// reachable call site.
func newCallProtError(c Trapcode) *CallProtError {
	code, ok := classify(c)
	if !ok {
		// Defensive: a Trapcode value with no mapping (e.g. corrupted
		// cache data) is reported as a generic unreachable-class trap
		// rather than panicking the barrier itself.
		code = ExceptionCodeUnreachable
	}
	return &CallProtError{Code: code, Trapcode: c, HasTrapcode: true}
}
