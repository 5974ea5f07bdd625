package decoder

import (
	"bytes"
	"testing"

	"github.com/wazeroc/corewasm/internal/codegen"
	"github.com/wazeroc/corewasm/internal/testing/require"
	"github.com/wazeroc/corewasm/internal/wasm"
)

// addBinary is the same hand-assembled "add" module corewasm's end-to-end
// test exercises through the full pipeline; here it pins down the
// decoder's own output shape in isolation.
var addBinary = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x07, 0x01, 0x03, 'a', 'd', 'd', 0x00, 0x00,
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b,
}

func TestDecodeAddModule(t *testing.T) {
	m, err := New(bytes.NewReader(addBinary)).Decode()
	require.NoError(t, err)

	require.Equal(t, 1, len(m.Types))
	require.Equal(t, []wasm.ValueType{0x7f, 0x7f}, m.Types[0].Params)
	require.Equal(t, []wasm.ValueType{0x7f}, m.Types[0].Results)

	require.Equal(t, []wasm.SigIndex{0}, m.FunctionSigs)

	require.Equal(t, 1, len(m.Exports))
	require.Equal(t, "add", m.Exports[0].Name)
	require.Equal(t, ExportKindFunc, m.Exports[0].Kind)
	require.Equal(t, wasm.Index(0), m.Exports[0].Index)

	require.Equal(t, 1, len(m.Code))
	body := m.Code[0]
	require.Equal(t, 0, len(body.Locals))

	// local.get 0, local.get 1, i32.add, FunctionEnd.
	require.Equal(t, 4, len(body.Events))
	require.True(t, body.Events[0].IsWasm)
	require.Equal(t, codegen.OpLocalGet, body.Events[0].Wasm.Op)
	require.Equal(t, int64(0), body.Events[0].Wasm.Immediate)
	require.True(t, body.Events[1].IsWasm)
	require.Equal(t, codegen.OpLocalGet, body.Events[1].Wasm.Op)
	require.Equal(t, int64(1), body.Events[1].Wasm.Immediate)
	require.True(t, body.Events[2].IsWasm)
	require.Equal(t, codegen.OpI32Add, body.Events[2].Wasm.Op)
	require.False(t, body.Events[3].IsWasm)
	require.Equal(t, codegen.InternalEventFunctionEnd, body.Events[3].Internal.Kind)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := New(bytes.NewReader([]byte{0, 0, 0, 0, 1, 0, 0, 0})).Decode()
	require.Error(t, err)
}

func TestDecodeRejectsTruncatedHeader(t *testing.T) {
	_, err := New(bytes.NewReader([]byte{0x00, 0x61, 0x73})).Decode()
	require.Error(t, err)
}

func TestDecodeRejectsUnsupportedOpcode(t *testing.T) {
	bin := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x04, 0x01, 0x60, 0x00, 0x00, // type: ()->()
		0x03, 0x02, 0x01, 0x00,
		0x0a, 0x05, 0x01, 0x03, 0x00, 0xfc, 0x0b, // bogus opcode 0xfc
	}
	_, err := New(bytes.NewReader(bin)).Decode()
	require.Error(t, err)
}
