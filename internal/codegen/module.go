package codegen

import (
	"fmt"

	"github.com/wazeroc/corewasm/internal/asm"
	"github.com/wazeroc/corewasm/internal/wasm"
	"github.com/wazeroc/corewasm/internal/wasmruntime"
)

// lifecycle is the MCG's state machine: Fresh -> SignaturesFed -> AssocFed
// -> Compiling -> Finalized. Transitions out of order are a usage error,
// never a property of the input module.
type lifecycle byte

const (
	lifecycleFresh lifecycle = iota
	lifecycleSignaturesFed
	lifecycleAssocFed
	lifecycleCompiling
	lifecycleFinalized
)

// MachineSignature is a Wasm FunctionType with the implicit VMContext
// pointer parameter prepended, matching how the backend's default calling
// convention actually receives arguments.
type MachineSignature struct {
	*wasm.FunctionType
}

// ModuleGenerator is the module code generator (C5): it owns per-backend
// compilation state for one module compile, from signature installation
// through to a sealed Artifact.
type ModuleGenerator struct {
	state lifecycle

	emitter asm.Emitter

	sigCache *wasm.SignatureCache
	module   *wasm.ModuleInfo

	// machineSigs is sigCache-index aligned: machineSigs[i] is the
	// machine-ABI form of Signatures[i].
	machineSigs []MachineSignature

	importedFuncCount wasm.Index
	nextFuncIndex     wasm.Index

	functions []*compiledFunction
}

// NewModuleGenerator returns a Fresh MCG bound to the given Emitter
// backend and signature cache. Multiple modules compiled in the same
// process should share one SignatureCache so SigIndex equality continues
// to mean signature equality across modules (Testable Property 1).
func NewModuleGenerator(emitter asm.Emitter, sigCache *wasm.SignatureCache) *ModuleGenerator {
	return &ModuleGenerator{state: lifecycleFresh, emitter: emitter, sigCache: sigCache}
}

// BackendID identifies the emitter backend driving this MCG, e.g.
// "portable".
func (m *ModuleGenerator) BackendID() string { return m.emitter.Name() }

// CheckPrecondition runs the backend's optional compile-time gate (for
// example, a backend that cannot represent a feature the module uses).
func (m *ModuleGenerator) CheckPrecondition(info *wasm.ModuleInfo) error {
	if checker, ok := m.emitter.(interface {
		CheckPrecondition(*wasm.ModuleInfo) error
	}); ok {
		return checker.CheckPrecondition(info)
	}
	return nil
}

// FeedSignatures installs the canonical signature table and precomputes
// the machine-ABI form of each entry.
func (m *ModuleGenerator) FeedSignatures(module *wasm.ModuleInfo) error {
	if m.state != lifecycleFresh {
		return fmt.Errorf("%w: FeedSignatures called out of order", wasmruntime.ErrUsage)
	}
	m.module = module
	m.machineSigs = make([]MachineSignature, len(module.Signatures))
	for i, sig := range module.Signatures {
		params := make([]byte, 0, len(sig.Params)+1)
		params = append(params, vmContextParamMarker)
		params = append(params, sig.Params...)
		m.machineSigs[i] = MachineSignature{&wasm.FunctionType{Params: params, Results: sig.Results}}
	}
	m.state = lifecycleSignaturesFed
	return nil
}

// vmContextParamMarker is a sentinel byte used only within machineSigs to
// mark the prepended VMContext-pointer parameter; it is never a valid
// api.ValueType and is never surfaced outside this package.
const vmContextParamMarker = 0xf0

// FeedFunctionSignatures installs the function -> signature association.
func (m *ModuleGenerator) FeedFunctionSignatures() error {
	if m.state != lifecycleSignaturesFed {
		return fmt.Errorf("%w: FeedFunctionSignatures called out of order", wasmruntime.ErrUsage)
	}
	m.state = lifecycleAssocFed
	return nil
}

// FeedImportFunction records an imported function slot, advancing the
// function index counter.
func (m *ModuleGenerator) FeedImportFunction() error {
	if m.state != lifecycleAssocFed && m.state != lifecycleCompiling {
		return fmt.Errorf("%w: FeedImportFunction called out of order", wasmruntime.ErrUsage)
	}
	m.state = lifecycleCompiling
	m.importedFuncCount++
	m.nextFuncIndex++
	return nil
}

// NextFunction allocates a fresh FunctionGenerator for the next locally
// defined function in declaration order, establishing its entry block and
// declaring its parameters as locals.
func (m *ModuleGenerator) NextFunction() (*FunctionGenerator, error) {
	if m.state != lifecycleAssocFed && m.state != lifecycleCompiling {
		return nil, fmt.Errorf("%w: NextFunction called out of order", wasmruntime.ErrUsage)
	}
	m.state = lifecycleCompiling

	idx := m.nextFuncIndex
	localIdx := idx - m.importedFuncCount
	if int(localIdx) >= len(m.module.FunctionSignatures)-int(m.importedFuncCount) {
		return nil, fmt.Errorf("%w: NextFunction called more times than the module declares functions", wasmruntime.ErrUsage)
	}
	sigIdx := m.module.FunctionSignatures[idx]
	sig := m.sigCache.Lookup(sigIdx)

	m.nextFuncIndex++
	fg := newFunctionGenerator(idx, sigIdx, sig, m.module)
	m.functions = append(m.functions, &compiledFunction{index: idx, sigIndex: sigIdx, gen: fg})
	return fg, nil
}

// Finalize requests machine code, relocations and trap records from the
// backend for every function body and seals the result into a runnable
// Artifact. It builds no trap-recovery relocation table: each function's
// relocations and trap records stay inside its own CompiledFunction.
func (m *ModuleGenerator) Finalize() (*Artifact, error) {
	if m.state != lifecycleCompiling {
		return nil, fmt.Errorf("%w: Finalize called out of order", wasmruntime.ErrUsage)
	}

	compiled := make([]asm.CompiledFunction, len(m.functions))
	for i, fn := range m.functions {
		cf, err := m.emitter.Emit(fn.gen.build())
		if err != nil {
			return nil, fmt.Errorf("%w: function %d: %v", wasmruntime.ErrCompile, fn.index, err)
		}
		compiled[i] = cf
	}

	artifact := &Artifact{
		BackendID:          m.emitter.Name(),
		Signatures:         m.module.Signatures,
		FunctionSignatures: m.module.FunctionSignatures,
		ImportedFuncCount:  m.importedFuncCount,
		Functions:          compiled,
		ImportNames:        m.module.ImportNames,
		ExportNames:        m.module.ExportNames,
	}
	m.state = lifecycleFinalized
	return artifact, nil
}

// compiledFunction tracks one local function as it moves from an
// in-progress FunctionGenerator to an emitted asm.CompiledFunction.
type compiledFunction struct {
	index    wasm.Index
	sigIndex wasm.SigIndex
	gen      *FunctionGenerator
}
