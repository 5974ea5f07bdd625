package corewasm

import (
	"context"
	"fmt"

	"github.com/wazeroc/corewasm/internal/instance"
	"github.com/wazeroc/corewasm/internal/wasm"
	"github.com/wazeroc/corewasm/internal/wasmruntime"
)

// HostFunc is one host-implemented function an embedder offers for
// import resolution: its declared signature (checked against the
// importing module's expectation) and the Go closure invoked in its
// place.
type HostFunc struct {
	Sig  *wasm.FunctionType
	Func func(ctx context.Context, args []uint64) ([]uint64, error)
}

// Imports is the resolver an Instantiate call consults for every import
// the compiled module declares, keyed by the two-part (module, name)
// pair the binary format uses.
type Imports struct {
	funcs map[string]map[string]HostFunc
}

// NewImports returns an empty import resolver.
func NewImports() *Imports {
	return &Imports{funcs: map[string]map[string]HostFunc{}}
}

// WithFunc registers a host function under (module, name), returning the
// same Imports for chaining.
func (im *Imports) WithFunc(module, name string, fn HostFunc) *Imports {
	if im.funcs[module] == nil {
		im.funcs[module] = map[string]HostFunc{}
	}
	im.funcs[module][name] = fn
	return im
}

func (im *Imports) lookupFunc(module, name string) (HostFunc, error) {
	if fns, ok := im.funcs[module]; ok {
		if fn, ok := fns[name]; ok {
			return fn, nil
		}
	}
	return HostFunc{}, fmt.Errorf("%w: unresolved import %s.%s", wasmruntime.ErrLink, module, name)
}

// asFunctionValue adapts a HostFunc to the instance package's callable
// shape: host functions never touch VMContext, so the vmctx parameter is
// ignored and a background context stands in for the one a streaming
// Invoke would normally thread through (trimmed per this facade's scope:
// passing a caller-supplied context into host calls is straightforward
// future work, not required to exercise C1-C7).
func asFunctionValue(fn HostFunc) *instance.FunctionValue {
	return &instance.FunctionValue{
		Sig: fn.Sig,
		Exec: func(_ *instance.VMContext, args []uint64) ([]uint64, error) {
			return fn.Func(context.Background(), args)
		},
	}
}
