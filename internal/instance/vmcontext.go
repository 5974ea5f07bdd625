// Package instance is the runtime-side counterpart of internal/vmctx: it
// allocates and populates the per-instance state that VMContext's offset
// contract describes. The portable Emitter backend addresses this state
// directly as Go values; a backend that emits real machine code would
// instead lay the same fields out at internal/vmctx's fixed byte offsets
// and dereference them through raw pointer arithmetic. Both views are the
// same ABI, read two different ways.
package instance

import "github.com/wazeroc/corewasm/internal/wasm"

// LocalMemory backs VMContext's LocalMemory subrecord: a mutable byte
// buffer, whose length is the current bound and which growth replaces
// with a larger copy, plus the MemoryType-derived layout that decides
// whether a static bound (Layout.BoundBytes) limits growth.
type LocalMemory struct {
	Data   []byte
	Layout wasm.MemoryLayout
}

// LocalTable backs VMContext's LocalTable subrecord.
type LocalTable struct {
	Elements []Anyfunc
}

// Anyfunc is a table element: {code_ptr, vmctx_ptr, sig_id}. A zero-value
// Anyfunc (Present == false) represents a null funcref.
type Anyfunc struct {
	Present  bool
	Func     *FunctionValue
	VMCtx    *VMContext
	SigIndex wasm.SigIndex
}

// LocalGlobal backs VMContext's LocalGlobal subrecord: a single 64-bit
// inline value slot, enough for the scalar types this engine executes
// (i32/i64/f32/f64). A 128-bit (v128) value does not fit in it.
type LocalGlobal struct {
	Value uint64
}

// ImportedFunc backs VMContext's ImportedFunc subrecord: the callee's
// entry point plus the VMContext pointer to pass it as the first
// argument, so a call through an import never needs to consult the
// caller's own instance state.
type ImportedFunc struct {
	Func  *FunctionValue
	VMCtx *VMContext
}

// FunctionValue is a callable function value: either a locally compiled
// one (Exec is the portable backend's closure) or a host function
// supplied at instantiation time.
type FunctionValue struct {
	Sig      *wasm.FunctionType
	SigIndex wasm.SigIndex
	Exec     func(vmctx *VMContext, args []uint64) ([]uint64, error)
}

// VMContext is the runtime realization of the per-instance record
// described in internal/vmctx: one flat value holding every array a
// generated function body may need to dereference, split into
// Local/Imported pairs exactly as the data model specifies.
type VMContext struct {
	LocalMemories    []*LocalMemory
	ImportedMemories []*LocalMemory

	LocalTables    []*LocalTable
	ImportedTables []*LocalTable

	LocalGlobals    []*LocalGlobal
	ImportedGlobals []*LocalGlobal

	LocalFunctions    []*FunctionValue
	ImportedFunctions []*ImportedFunc

	// Parent is implementation-private trailing state. Nothing in this
	// module sets or reads it.
	Parent interface{}
}

// Memory resolves a preamble-projected memory reference to its backing
// LocalMemory.
func (c *VMContext) Memory(imported bool, idx wasm.Index) *LocalMemory {
	if imported {
		return c.ImportedMemories[idx]
	}
	return c.LocalMemories[idx]
}

// Global resolves a preamble-projected global reference.
func (c *VMContext) Global(imported bool, idx wasm.Index) *LocalGlobal {
	if imported {
		return c.ImportedGlobals[idx]
	}
	return c.LocalGlobals[idx]
}

// Table resolves a preamble-projected table reference.
func (c *VMContext) Table(imported bool, idx wasm.Index) *LocalTable {
	if imported {
		return c.ImportedTables[idx]
	}
	return c.LocalTables[idx]
}

// CallDirect resolves a preamble-projected direct-call reference to the
// (callee, vmctx-to-pass) pair the direct-call preamble describes: a
// local callee is colocated and uses this same VMContext, an imported
// callee brings its own.
func (c *VMContext) CallDirect(imported bool, idx wasm.Index) (*FunctionValue, *VMContext) {
	if imported {
		imp := c.ImportedFunctions[idx]
		return imp.Func, imp.VMCtx
	}
	return c.LocalFunctions[idx], c
}
