package middleware

import (
	"fmt"
	"io"

	"github.com/wazeroc/corewasm/internal/codegen"
	"github.com/wazeroc/corewasm/internal/logging"
	"github.com/wazeroc/corewasm/internal/wasm"
)

// Trace is a debug stage that logs every operator it sees, gated by
// logging.LogScopeCodegen rather than compiled out entirely: ambient
// logging is always present, its volume controlled by the same LogScopes
// bitmask convention the teacher's host-function call tracing uses. This
// is the resolution of the debug-print-prologue open question: an
// ordinary, optional middleware stage instead of a core-compiler special
// case, so the pipeline itself never branches on whether tracing is on.
type Trace struct {
	W      io.Writer
	Scopes logging.LogScopes
}

// FeedEvent passes every event through unchanged, writing one line per
// Wasm operator to W when logging.LogScopeCodegen is enabled.
func (t *Trace) FeedEvent(e codegen.Event, info *wasm.ModuleInfo, sink func(codegen.Event) error) error {
	if t.W != nil && t.Scopes.IsEnabled(logging.LogScopeCodegen) && e.IsWasm {
		fmt.Fprintf(t.W, "codegen: op=%d imm=%d\n", e.Wasm.Op, e.Wasm.Immediate)
	}
	return sink(e)
}
