package trap

import (
	"runtime"
	"runtime/debug"
)

// Scope is the per-call protected region: the portable equivalent of the
// saved setjmp buffer plus the thread-local captured-fault and
// trap-early-data slots described in the component design. A Scope is
// created fresh by every call to CallProtected and is valid only for the
// duration of that call; f receives the active Scope as its argument, and
// the Scope is never kept in global or goroutine-local storage, so nested (recursive) protected
// calls compose correctly by construction: each nesting level gets its
// own Scope, and returning from the inner CallProtected naturally
// restores the outer one without any explicit save/restore bookkeeping.
type Scope struct {
	parent *Scope
	early  *CallProtError
}

// Parent returns the enclosing Scope, or nil if this is the outermost
// protected call on this goroutine's logical call stack.
func (s *Scope) Parent() *Scope { return s.parent }

// RequestEarly records a typed trap to be raised the next time this
// Scope's protected region unwinds, without going through a simulated CPU
// fault. This is the trap-early-data channel: host callbacks that detect
// an illegal condition synchronously call RequestEarly then Raise to
// unwind back to the barrier. The slot is one-shot: a second call before the first is
// consumed is a usage error.
func (s *Scope) RequestEarly(c Trapcode) {
	if s.early != nil {
		panic("BUG: trap-early-data slot already set")
	}
	s.early = newCallProtError(c)
}

// trapPanic is the sentinel panic value generated code raises in place of
// a hardware trap instruction. Raise and RequestEarly both eventually
// unwind through one of these so CallProtected's recover can distinguish
// an intentional trap from a genuine Go runtime panic (e.g. a bug in the
// compiler itself, which must not be silently swallowed as a Wasm trap).
type trapPanic struct {
	code Trapcode
}

// Raise unwinds to the nearest enclosing CallProtected, reporting c
// unless an earlier RequestEarly call on this Scope already recorded a
// trap, in which case that one wins.
func Raise(c Trapcode) {
	panic(trapPanic{code: c})
}

// CallProtected runs f in a newly established protected scope. Any trap
// raised by f (via Raise, via a RequestEarly'd unwind, or via a genuine
// SIGSEGV/SIGBUS/SIGILL/SIGFPE turned into a runtime.Error by
// debug.SetPanicOnFault) is caught and returned as a *CallProtError. Any
// other panic propagates: it is a defect in the embedder or the compiler,
// not Wasm-level illegal behavior, and aborting is the correct response
// per the barrier's contract ("any other fault aborts the process").
//
// parent is the enclosing Scope, or nil for the outermost call.
func CallProtected(parent *Scope, f func(s *Scope) error) (err error) {
	s := &Scope{parent: parent}

	prevPanicOnFault := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(prevPanicOnFault)

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if s.early != nil {
			err = s.early
			return
		}
		switch v := r.(type) {
		case trapPanic:
			err = newCallProtError(v.code)
		case runtime.Error:
			err = classifyRuntimeError(v)
		default:
			// Not a trap at all: re-raise so it surfaces as a genuine
			// process-level failure, matching "any other fault aborts
			// the process".
			panic(r)
		}
	}()

	err = f(s)
	return
}

// classifyRuntimeError maps a Go runtime.Error surfaced by
// debug.SetPanicOnFault (a real SIGSEGV/SIGBUS turned into a panic) onto
// the raw-signal fallback classification: "SIGSEGV/SIGBUS -> MemoryOutOfBounds".
// SIGFPE (integer division by zero) reaches Go as a runtime.Error too, and
// is reported the same way a caught SIGFPE would be: IllegalArithmetic.
func classifyRuntimeError(r runtime.Error) *CallProtError {
	msg := r.Error()
	if isDivideByZero(msg) {
		return &CallProtError{Code: ExceptionCodeIllegalArithmetic}
	}
	e := &CallProtError{Code: ExceptionCodeMemoryOutOfBounds}
	if f, ok := r.(interface{ Addr() uintptr }); ok {
		e.Address = f.Addr()
	}
	return e
}

func isDivideByZero(msg string) bool {
	return msg == "runtime error: integer divide by zero"
}
