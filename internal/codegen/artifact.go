package codegen

import (
	"github.com/wazeroc/corewasm/internal/asm"
	"github.com/wazeroc/corewasm/internal/wasm"
)

// Artifact is the sealed result of Finalize: backend id, interned
// signature table, function->signature association, per-function
// compiled bodies, and the module's import and export names. It has no
// serialized form: portable-backend bodies are Go closures.
type Artifact struct {
	BackendID          string
	Signatures         []*wasm.FunctionType
	FunctionSignatures []wasm.SigIndex
	ImportedFuncCount  wasm.Index
	Functions          []asm.CompiledFunction

	// ImportNames/ExportNames are copied from the ModuleInfo by Finalize
	// and are opaque to this package. Finalize leaves CustomSections nil:
	// the decoder skips custom sections.
	ImportNames    []wasm.ImportName
	ExportNames    map[wasm.Index][]string
	CustomSections map[string][]byte
}

// LocalFunctionCount returns the number of locally defined functions in
// this artifact.
func (a *Artifact) LocalFunctionCount() int { return len(a.Functions) }
