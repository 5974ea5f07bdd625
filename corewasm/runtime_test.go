package corewasm

import (
	"context"
	"testing"

	"github.com/wazeroc/corewasm/internal/testing/require"
)

// addModule is a hand-assembled binary encoding of:
//
//	(module
//	  (func (export "add") (param i32 i32) (result i32)
//	    local.get 0
//	    local.get 1
//	    i32.add))
//
// assembled by hand rather than via any encoder, matching how the decoder
// this exercises is itself hand-written.
var addModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic, version

	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f, // type section: (i32,i32)->(i32)

	0x03, 0x02, 0x01, 0x00, // function section: func 0 uses type 0

	0x07, 0x07, 0x01, 0x03, 'a', 'd', 'd', 0x00, 0x00, // export section: "add" -> func 0

	0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b, // code section
}

func TestCompileModuleAndInvoke(t *testing.T) {
	ctx := context.Background()
	rt := NewRuntime(ctx)

	compiled, err := rt.CompileModule(ctx, addModule)
	require.NoError(t, err)
	require.Equal(t, []string{"add"}, compiled.ExportedFunctionNames())
	require.Equal(t, 0, len(compiled.ImportedFunctions()))

	instance, err := rt.Instantiate(ctx, compiled, NewImports())
	require.NoError(t, err)

	results, err := instance.Invoke(ctx, "add", 2, 3)
	require.NoError(t, err)
	require.Equal(t, []uint64{5}, results)
}

func TestInvokeUnknownExportFails(t *testing.T) {
	ctx := context.Background()
	rt := NewRuntime(ctx)

	compiled, err := rt.CompileModule(ctx, addModule)
	require.NoError(t, err)

	instance, err := rt.Instantiate(ctx, compiled, NewImports())
	require.NoError(t, err)

	_, err = instance.Invoke(ctx, "nope")
	require.Error(t, err)
}

func TestCompileModuleRejectsBadMagic(t *testing.T) {
	ctx := context.Background()
	rt := NewRuntime(ctx)

	_, err := rt.CompileModule(ctx, []byte{0x00, 0x00, 0x00, 0x00})
	require.Error(t, err)
}

func TestSignatureCacheSharedAcrossModules(t *testing.T) {
	ctx := context.Background()
	rt := NewRuntime(ctx)

	first, err := rt.CompileModule(ctx, addModule)
	require.NoError(t, err)
	second, err := rt.CompileModule(ctx, addModule)
	require.NoError(t, err)

	// Both modules declare the identical (i32,i32)->(i32) signature: since
	// they share one Runtime's SignatureCache, the interned SigIndex must
	// be identical too (Testable Property 1).
	require.Equal(t, first.info.FunctionSignatures[0], second.info.FunctionSignatures[0])
}
