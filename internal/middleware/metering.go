package middleware

import (
	"github.com/wazeroc/corewasm/internal/codegen"
	"github.com/wazeroc/corewasm/internal/wasm"
)

// Metering injects a Event::Internal(Breakpoint) every N Wasm operators
// within a function body, without the compiler itself knowing anything
// about deadlines. The function code generator lowers Breakpoint events to
// nothing executable, so no handler runs at execution time and the
// injected events do not change the compiled code.
//
// This mirrors builtinFunctionIndexCheckExitCode/ensureTermination's
// periodic exit-code check, generalized from "every call" to "every N
// operators" so it also catches tight, call-free loops.
type Metering struct {
	// Interval is how many Wasm operators pass between injected
	// breakpoints. Zero disables injection (every event passes through
	// unchanged).
	Interval uint32
	// HandlerID is copied into each injected Breakpoint event's Arg.
	HandlerID uint32

	count uint32
}

// FeedEvent passes every event through unchanged, plus a Breakpoint event
// ahead of every Interval'th Wasm operator. Internal events (including
// ones injected by an earlier stage) do not count against the interval:
// only genuine operators from the decoded stream advance it, so one
// metering stage's output is stable regardless of how many other stages
// precede it in the chain.
func (m *Metering) FeedEvent(e codegen.Event, info *wasm.ModuleInfo, sink func(codegen.Event) error) error {
	if m.Interval == 0 || !e.IsWasm {
		return sink(e)
	}
	m.count++
	if m.count >= m.Interval {
		m.count = 0
		if err := sink(codegen.InternalEventOf(codegen.InternalEvent{
			Kind: codegen.InternalEventBreakpoint,
			Arg:  m.HandlerID,
		})); err != nil {
			return err
		}
	}
	return sink(e)
}
