package wasm

import (
	"testing"

	"github.com/wazeroc/corewasm/internal/testing/require"
	"github.com/wazeroc/corewasm/internal/wasmruntime"
)

func u32(v uint32) *uint32 { return &v }

func TestDeriveMemoryLayout(t *testing.T) {
	tests := []struct {
		name       string
		descriptor MemoryDescriptor
		wantType   MemoryType
		wantBound  uint64
		wantErr    bool
	}{
		{
			name:       "no maximum, not shared -> dynamic",
			descriptor: MemoryDescriptor{MinimumPages: 1},
			wantType:   MemoryTypeDynamic,
		},
		{
			name:       "maximum, not shared -> static",
			descriptor: MemoryDescriptor{MinimumPages: 1, MaximumPages: u32(2)},
			wantType:   MemoryTypeStatic,
			wantBound:  2 * wasmPageSize,
		},
		{
			name:       "maximum, shared -> shared-static",
			descriptor: MemoryDescriptor{MinimumPages: 1, MaximumPages: u32(4), Shared: true},
			wantType:   MemoryTypeSharedStatic,
			wantBound:  4 * wasmPageSize,
		},
		{
			name:       "no maximum, shared -> invalid",
			descriptor: MemoryDescriptor{MinimumPages: 1, Shared: true},
			wantErr:    true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			layout, err := DeriveMemoryLayout(tc.descriptor)
			if tc.wantErr {
				require.ErrorIs(t, err, wasmruntime.ErrValidation)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantType, layout.Type)
			require.Equal(t, tc.wantBound, layout.BoundBytes)
			require.True(t, layout.GuardBytes > 0)
		})
	}
}

func TestMemoryType_String(t *testing.T) {
	require.Equal(t, "dynamic", MemoryTypeDynamic.String())
	require.Equal(t, "static", MemoryTypeStatic.String())
	require.Equal(t, "shared-static", MemoryTypeSharedStatic.String())
	require.Equal(t, "unknown", MemoryType(99).String())
}
