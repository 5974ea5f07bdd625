// Package streaming implements the streaming parser bridge (C3): it
// drives an internal/decoder.Module through the module code generator
// and, through the middleware chain, into one function code generator
// per defined function, in the exact event order the component design
// requires.
package streaming

import (
	"fmt"

	"github.com/wazeroc/corewasm/internal/codegen"
	"github.com/wazeroc/corewasm/internal/decoder"
	"github.com/wazeroc/corewasm/internal/middleware"
	"github.com/wazeroc/corewasm/internal/wasm"
	"github.com/wazeroc/corewasm/internal/wasmruntime"
)

// Validator is the second external collaborator: an optional revalidation
// pre-pass over a decoded module. The default, per spec's explicit
// non-goal, assumes upstream validation and does nothing.
type Validator interface {
	Validate(m *decoder.Module) error
}

// NopValidator is the default Validator: it trusts the decoder's caller
// to have already validated the binary.
type NopValidator struct{}

// Validate always succeeds.
func (NopValidator) Validate(*decoder.Module) error { return nil }

// Bridge drives one decoded module through a middleware chain into C5/C6.
type Bridge struct {
	Chain     *middleware.Chain
	Validator Validator
}

// New returns a Bridge with the given middleware chain and the no-op
// Validator. Use RevalidatingBridge to opt into a pre-pass.
func New(chain *middleware.Chain) *Bridge {
	return &Bridge{Chain: chain, Validator: NopValidator{}}
}

// RevalidatingBridge wraps a Bridge so Drive runs its Validator before any
// event reaches the code generator, addressing the "opt in to a
// revalidation pre-pass" variation the component design allows.
type RevalidatingBridge struct {
	*Bridge
}

// Drive takes the decoded module dm, builds the wasm.ModuleInfo the code generators need,
// and feeds mod with every event in the order §4.3 specifies: bulk
// signatures, bulk function/signature association, one import_function
// marker per imported function, then for each defined function a
// begin_function/locals/begin_body/operator-stream/FunctionEnd sequence.
//
// cache must be the same SignatureCache backing mod's compilation, so
// info.Signatures and every SigIndex in info.FunctionSignatures address
// the same shared table mod's indirect-call signature checks resolve
// against (Testable Property 1: SigIndex equality means signature
// equality across every module sharing one cache).
func (b *Bridge) Drive(dm *decoder.Module, mod *codegen.ModuleGenerator, cache *wasm.SignatureCache) (*wasm.ModuleInfo, error) {
	if b.Validator != nil {
		if err := b.Validator.Validate(dm); err != nil {
			return nil, fmt.Errorf("%w: %v", wasmruntime.ErrValidation, err)
		}
	}

	info := buildModuleInfo(dm, cache)

	if err := mod.FeedSignatures(info); err != nil {
		return nil, err
	}
	if err := mod.FeedFunctionSignatures(); err != nil {
		return nil, err
	}
	for _, im := range dm.Imports {
		if im.Kind == decoder.ImportKindFunc {
			if err := mod.FeedImportFunction(); err != nil {
				return nil, err
			}
		}
	}

	for fnIdx, body := range dm.Code {
		fcg, err := mod.NextFunction()
		if err != nil {
			return nil, err
		}
		for _, l := range body.Locals {
			if err := fcg.FeedLocal(l.Type, int(l.Count)); err != nil {
				return nil, err
			}
		}
		if err := fcg.BeginBody(); err != nil {
			return nil, err
		}

		chainSink := func(e codegen.Event) error { return fcg.FeedEvent(e) }
		deliver := chainSink
		if b.Chain != nil {
			deliver = func(e codegen.Event) error {
				return b.Chain.Run(e, info, chainSink)
			}
		}

		for _, e := range body.Events {
			if e.IsWasm && e.Wasm.Op == codegen.OpCallIndirect {
				if int(e.Wasm.TypeIndex) >= len(dm.Types) {
					return nil, fmt.Errorf("%w: function %d: call_indirect type index %d out of range", wasmruntime.ErrValidation, fnIdx, e.Wasm.TypeIndex)
				}
				e.Wasm.TypeIndex = cache.Intern(dm.Types[e.Wasm.TypeIndex])
			}
			if err := deliver(e); err != nil {
				return nil, fmt.Errorf("%w: function %d: %v", wasmruntime.ErrCompile, fnIdx, err)
			}
		}
	}

	return info, nil
}

// buildModuleInfo projects a decoded binary module into the code
// generators' shape-only view: combined index spaces, descriptors, and
// resolver names, matching internal/wasm.ModuleInfo's contract. Every
// type-section-local SigIndex of an import or a function declaration is
// translated through cache into the shared global SigIndex space as part
// of this projection; Drive translates call_indirect type immediates the
// same way as it delivers them.
func buildModuleInfo(dm *decoder.Module, cache *wasm.SignatureCache) *wasm.ModuleInfo {
	localToGlobal := make([]wasm.SigIndex, len(dm.Types))
	for i, t := range dm.Types {
		localToGlobal[i] = cache.Intern(t)
	}

	var importedFuncs, importedTables, importedMems, importedGlobals uint32
	var importNames []wasm.ImportName
	var funcSigs []wasm.SigIndex
	var tables []wasm.TableDescriptor
	var mems []wasm.MemoryDescriptor
	var globals []wasm.GlobalDescriptor

	for _, im := range dm.Imports {
		switch im.Kind {
		case decoder.ImportKindFunc:
			importedFuncs++
			importNames = append(importNames, wasm.ImportName{Module: im.Module, Name: im.Name})
			funcSigs = append(funcSigs, localToGlobal[im.FuncSig])
		case decoder.ImportKindTable:
			importedTables++
			tables = append(tables, im.Table)
		case decoder.ImportKindMemory:
			importedMems++
			mems = append(mems, im.Memory)
		case decoder.ImportKindGlobal:
			importedGlobals++
			globals = append(globals, im.Global)
		}
	}
	for _, localSig := range dm.FunctionSigs {
		funcSigs = append(funcSigs, localToGlobal[localSig])
	}
	tables = append(tables, dm.Tables...)
	mems = append(mems, dm.Memories...)
	for _, g := range dm.Globals {
		globals = append(globals, g.Descriptor)
	}

	exportNames := make(map[wasm.Index][]string)
	for _, ex := range dm.Exports {
		if ex.Kind == decoder.ExportKindFunc {
			exportNames[ex.Index] = append(exportNames[ex.Index], ex.Name)
		}
	}

	sections := wasm.NewModuleSections(
		importedFuncs, uint32(len(dm.FunctionSigs)),
		importedTables, uint32(len(dm.Tables)),
		importedMems, uint32(len(dm.Memories)),
		importedGlobals, uint32(len(dm.Globals)),
	)

	return &wasm.ModuleInfo{
		Signatures:         cache.Signatures(),
		FunctionSignatures: funcSigs,
		Sections:           sections,
		Memories:           wasm.MemoryDescriptors(mems),
		Tables:             wasm.TableDescriptors(tables),
		Globals:            wasm.GlobalDescriptors(globals),
		ImportNames:        importNames,
		ExportNames:        exportNames,
	}
}
