// Package vmctx describes the byte layout a native machine-code Emitter
// backend would use to dereference per-instance state, as a table of fixed
// offsets computed once per compiled module. internal/instance holds the
// same data as ordinary Go values; this package exists so a future
// machine-code backend and the portable one agree on one data model without
// either depending on the other's representation.
package vmctx

import "github.com/wazeroc/corewasm/internal/wasm"

// Offset is a byte offset from the start of a VMContext record.
type Offset int32

// U32 encodes an Offset for embedding in generated immediate operands.
func (o Offset) U32() uint32 { return uint32(o) }

const (
	// pointerSize is the slot width of every Local/Imported array entry
	// below except functions, which pair a code pointer with the callee's
	// own VMContext pointer (imported) or carry their signature index
	// alongside (local).
	pointerSize = 8

	// globalElemSize mirrors LocalGlobal.Value: a single 64-bit inline
	// slot, wide enough for every scalar value type this engine executes.
	globalElemSize = 8

	// localFunctionElemSize holds {codePtr, sigIndex}.
	localFunctionElemSize = 16

	// importedFunctionElemSize holds {codePtr, vmctxPtr}, matching
	// instance.ImportedFunc.
	importedFunctionElemSize = 16
)

// Offsets is the per-module table of VMContext subrecord base offsets,
// derived once from a module's Local/Imported counts and shared by every
// instance compiled from that module.
type Offsets struct {
	LocalMemoriesBegin    Offset
	ImportedMemoriesBegin Offset

	LocalTablesBegin    Offset
	ImportedTablesBegin Offset

	LocalGlobalsBegin    Offset
	ImportedGlobalsBegin Offset

	LocalFunctionsBegin    Offset
	ImportedFunctionsBegin Offset

	// PrivateStateOffset is the trailing slot for implementation-private
	// state (instance.VMContext.Parent).
	PrivateStateOffset Offset

	// Size is the total byte size of one VMContext record, i.e. the offset
	// one past PrivateStateOffset's slot.
	Size Offset
}

// NewOffsets computes the VMContext layout for a module with the given
// section counts. Each Local/Imported pair is laid out contiguously so a
// single base-plus-stride computation addresses any element of either half.
func NewOffsets(sections wasm.ModuleSections) Offsets {
	var o Offsets
	cur := Offset(0)

	o.LocalMemoriesBegin = cur
	cur += Offset(sections.Memories.Local) * pointerSize
	o.ImportedMemoriesBegin = cur
	cur += Offset(sections.Memories.Imported) * pointerSize

	o.LocalTablesBegin = cur
	cur += Offset(sections.Tables.Local) * pointerSize
	o.ImportedTablesBegin = cur
	cur += Offset(sections.Tables.Imported) * pointerSize

	o.LocalGlobalsBegin = cur
	cur += Offset(sections.Globals.Local) * globalElemSize
	o.ImportedGlobalsBegin = cur
	cur += Offset(sections.Globals.Imported) * globalElemSize

	o.LocalFunctionsBegin = cur
	cur += Offset(sections.Functions.Local) * localFunctionElemSize
	o.ImportedFunctionsBegin = cur
	cur += Offset(sections.Functions.Imported) * importedFunctionElemSize

	o.PrivateStateOffset = cur
	cur += pointerSize

	o.Size = cur
	return o
}

// MemoryOffset returns the byte offset of the idx-th memory's slot, local
// or imported.
func (o Offsets) MemoryOffset(imported bool, idx wasm.Index) Offset {
	if imported {
		return o.ImportedMemoriesBegin + Offset(idx)*pointerSize
	}
	return o.LocalMemoriesBegin + Offset(idx)*pointerSize
}

// TableOffset returns the byte offset of the idx-th table's slot, local or
// imported.
func (o Offsets) TableOffset(imported bool, idx wasm.Index) Offset {
	if imported {
		return o.ImportedTablesBegin + Offset(idx)*pointerSize
	}
	return o.LocalTablesBegin + Offset(idx)*pointerSize
}

// GlobalOffset returns the byte offset of the idx-th global's slot, local
// or imported.
func (o Offsets) GlobalOffset(imported bool, idx wasm.Index) Offset {
	if imported {
		return o.ImportedGlobalsBegin + Offset(idx)*globalElemSize
	}
	return o.LocalGlobalsBegin + Offset(idx)*globalElemSize
}

// FunctionOffset returns the byte offset of the idx-th function's slot,
// local or imported. The two halves use different element sizes, so this
// cannot be folded into a single stride like the others.
func (o Offsets) FunctionOffset(imported bool, idx wasm.Index) Offset {
	if imported {
		return o.ImportedFunctionsBegin + Offset(idx)*importedFunctionElemSize
	}
	return o.LocalFunctionsBegin + Offset(idx)*localFunctionElemSize
}
