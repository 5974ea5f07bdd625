package vmctx

import (
	"testing"

	"github.com/wazeroc/corewasm/internal/testing/require"
	"github.com/wazeroc/corewasm/internal/wasm"
)

func TestNewOffsets(t *testing.T) {
	sections := wasm.NewModuleSections(
		1, 2, // functions: 1 imported, 2 local
		0, 1, // tables: 0 imported, 1 local
		1, 0, // memories: 1 imported, 0 local
		2, 1, // globals: 2 imported, 1 local
	)

	o := NewOffsets(sections)

	require.Equal(t, Offset(0), o.LocalMemoriesBegin)
	require.Equal(t, Offset(0), o.ImportedMemoriesBegin) // 0 local memories

	require.Equal(t, Offset(pointerSize), o.LocalTablesBegin)
	require.Equal(t, Offset(pointerSize)+pointerSize, o.ImportedTablesBegin) // 1 local table

	require.Equal(t, o.ImportedTablesBegin, o.LocalGlobalsBegin) // 0 imported tables
	require.Equal(t, o.LocalGlobalsBegin+globalElemSize, o.ImportedGlobalsBegin)

	require.Equal(t, o.ImportedGlobalsBegin+2*globalElemSize, o.LocalFunctionsBegin)
	require.Equal(t, o.LocalFunctionsBegin+2*localFunctionElemSize, o.ImportedFunctionsBegin)

	require.Equal(t, o.ImportedFunctionsBegin+importedFunctionElemSize, o.PrivateStateOffset)
	require.Equal(t, o.PrivateStateOffset+pointerSize, o.Size)
}

func TestOffsets_ElementAccessors(t *testing.T) {
	sections := wasm.NewModuleSections(1, 1, 1, 1, 1, 1, 1, 1)
	o := NewOffsets(sections)

	require.Equal(t, o.LocalMemoriesBegin, o.MemoryOffset(false, 0))
	require.Equal(t, o.ImportedMemoriesBegin, o.MemoryOffset(true, 0))
	require.Equal(t, o.LocalTablesBegin+pointerSize, o.TableOffset(false, 1))
	require.Equal(t, o.LocalGlobalsBegin+globalElemSize, o.GlobalOffset(false, 1))
	require.Equal(t, o.LocalFunctionsBegin+localFunctionElemSize, o.FunctionOffset(false, 1))
	require.Equal(t, o.ImportedFunctionsBegin+importedFunctionElemSize, o.FunctionOffset(true, 1))
}
