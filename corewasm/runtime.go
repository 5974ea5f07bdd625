// Package corewasm is the host-facing facade: it wires the streaming
// parser bridge (C3), middleware chain (C4), module/function code
// generators (C5/C6), and trap recovery barrier (C7) into the
// Instantiate/Invoke shape an embedder actually calls, mirroring the
// teacher's top-level Runtime/Module surface but trimmed to exactly what
// C1-C7 need to be exercised end to end.
package corewasm

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wazeroc/corewasm/internal/asm"
	"github.com/wazeroc/corewasm/internal/asm/portable"
	"github.com/wazeroc/corewasm/internal/codegen"
	"github.com/wazeroc/corewasm/internal/decoder"
	"github.com/wazeroc/corewasm/internal/instance"
	"github.com/wazeroc/corewasm/internal/middleware"
	"github.com/wazeroc/corewasm/internal/streaming"
	"github.com/wazeroc/corewasm/internal/trap"
	"github.com/wazeroc/corewasm/internal/wasm"
	"github.com/wazeroc/corewasm/internal/wasmruntime"
)

// RuntimeConfig selects the Emitter backend and optional middleware
// stages a Runtime compiles every module with.
type RuntimeConfig struct {
	// Emitter defaults to the portable (closure-interpreting) backend
	// when nil.
	Emitter asm.Emitter
	// Chain is run between the decoder and the function code generator
	// for every function body. A nil Chain means no middleware at all.
	Chain *middleware.Chain
}

// NewRuntimeConfig returns the default configuration: the portable
// backend, no middleware.
func NewRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{Emitter: portable.New()}
}

// Runtime compiles and instantiates Wasm modules, sharing one
// SignatureCache across every module it compiles so SigIndex equality
// continues to mean signature equality across modules (Testable Property
// 1).
type Runtime struct {
	config   RuntimeConfig
	sigCache *wasm.SignatureCache
}

// NewRuntime returns a Runtime configured with the default RuntimeConfig.
func NewRuntime(context.Context) *Runtime {
	return NewRuntimeWithConfig(NewRuntimeConfig())
}

// NewRuntimeWithConfig returns a Runtime using the given config, falling
// back to the portable backend if none was set.
func NewRuntimeWithConfig(config RuntimeConfig) *Runtime {
	if config.Emitter == nil {
		config.Emitter = portable.New()
	}
	return &Runtime{config: config, sigCache: wasm.NewSignatureCache()}
}

// CompiledModule is a module that has passed through C3-C5 into a sealed
// Artifact, ready to Instantiate.
type CompiledModule struct {
	info     *wasm.ModuleInfo
	artifact *codegen.Artifact
}

// ImportedFunctions returns the (module, name) pair of every function
// import this module declares, in declaration order, so a host such as a
// CLI can decide how to satisfy them before calling Instantiate.
func (cm *CompiledModule) ImportedFunctions() []wasm.ImportName {
	out := make([]wasm.ImportName, 0, cm.info.Sections.Functions.Imported)
	for _, n := range cm.info.ImportNames {
		out = append(out, n)
	}
	return out
}

// ExportedFunctionNames returns every exported function name this module
// declares, in no particular order.
func (cm *CompiledModule) ExportedFunctionNames() []string {
	var out []string
	for _, names := range cm.info.ExportNames {
		out = append(out, names...)
	}
	return out
}

// CompileModule decodes and compiles a Wasm binary, driving it through
// C3 (streaming bridge), C4 (middleware), C5/C6 (code generation) per the
// component design's dataflow.
func (rt *Runtime) CompileModule(_ context.Context, wasmBinary []byte) (*CompiledModule, error) {
	dm, err := decoder.New(bytes.NewReader(wasmBinary)).Decode()
	if err != nil {
		return nil, err
	}

	mcg := codegen.NewModuleGenerator(rt.config.Emitter, rt.sigCache)

	bridgeInst := streaming.New(rt.config.Chain)
	info, err := bridgeInst.Drive(dm, mcg, rt.sigCache)
	if err != nil {
		return nil, err
	}

	artifact, err := mcg.Finalize()
	if err != nil {
		return nil, err
	}
	return &CompiledModule{info: info, artifact: artifact}, nil
}

// Instantiate realizes one CompiledModule's Artifact as a live VMContext:
// every local memory/table/global allocated per its descriptor, every
// local function bound to its compiled Exec closure, and every import
// resolved from imports.
func (rt *Runtime) Instantiate(_ context.Context, compiled *CompiledModule, imports *Imports) (*Instance, error) {
	vmctx, err := instantiate(compiled, imports)
	if err != nil {
		return nil, err
	}
	return &Instance{module: compiled, vmctx: vmctx}, nil
}

// Instance is one instantiated module: a live VMContext plus enough of
// its compiled module's metadata to resolve an export name to a callable
// function.
type Instance struct {
	module *CompiledModule
	vmctx  *instance.VMContext
}

// Invoke calls the exported function name with args, running it inside
// the trap recovery barrier (C7) so any trap this call raises, at any
// call depth, unwinds cleanly into the returned error rather than
// crashing the process.
func (in *Instance) Invoke(_ context.Context, name string, args ...uint64) ([]uint64, error) {
	fn, idx, err := in.lookupExport(name)
	if err != nil {
		return nil, err
	}
	var results []uint64
	err = trap.CallProtected(nil, func(scope *trap.Scope) error {
		r, callErr := fn.Exec(in.vmctx, args)
		results = r
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("invoking function %d (%q): %w", idx, name, err)
	}
	return results, nil
}

func (in *Instance) lookupExport(name string) (*instance.FunctionValue, wasm.Index, error) {
	for idx, names := range in.module.info.ExportNames {
		for _, n := range names {
			if n == name {
				imported, sub := in.module.info.Sections.Functions.Project(idx)
				if imported {
					return in.vmctx.ImportedFunctions[sub].Func, idx, nil
				}
				return in.vmctx.LocalFunctions[sub], idx, nil
			}
		}
	}
	return nil, 0, fmt.Errorf("%w: no exported function named %q", wasmruntime.ErrUsage, name)
}
