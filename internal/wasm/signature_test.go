package wasm

import (
	"testing"

	"github.com/wazeroc/corewasm/api"
	"github.com/wazeroc/corewasm/internal/testing/require"
)

func TestFunctionType_EqualTo(t *testing.T) {
	tests := []struct {
		name     string
		f, o     *FunctionType
		expected bool
	}{
		{
			name:     "non-empty vs nil",
			f:        &FunctionType{Params: []api.ValueType{api.ValueTypeI32}},
			o:        nil,
			expected: false,
		},
		{
			name:     "equal contents, different pointers",
			f:        &FunctionType{Params: []api.ValueType{api.ValueTypeI32}, Results: []api.ValueType{api.ValueTypeI64}},
			o:        &FunctionType{Params: []api.ValueType{api.ValueTypeI32}, Results: []api.ValueType{api.ValueTypeI64}},
			expected: true,
		},
		{
			name:     "different params",
			f:        &FunctionType{Params: []api.ValueType{api.ValueTypeI32}},
			o:        &FunctionType{Params: []api.ValueType{api.ValueTypeI64}},
			expected: false,
		},
		{
			name:     "different results",
			f:        &FunctionType{Results: []api.ValueType{api.ValueTypeI32}},
			o:        &FunctionType{Results: []api.ValueType{api.ValueTypeI64}},
			expected: false,
		},
		{
			name:     "nil other",
			f:        &FunctionType{},
			o:        nil,
			expected: false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, tc.f.EqualTo(tc.o))
		})
	}

	same := &FunctionType{Params: []api.ValueType{api.ValueTypeI32}}
	require.True(t, same.EqualTo(same))
}

func TestSignatureCache_InternDeduplicates(t *testing.T) {
	c := NewSignatureCache()

	a := c.Intern(&FunctionType{Params: []api.ValueType{api.ValueTypeI32}, Results: []api.ValueType{api.ValueTypeI32}})
	b := c.Intern(&FunctionType{Params: []api.ValueType{api.ValueTypeI32}, Results: []api.ValueType{api.ValueTypeI32}})
	require.Equal(t, a, b)
	require.Equal(t, 1, c.Len())

	different := c.Intern(&FunctionType{Params: []api.ValueType{api.ValueTypeI64}})
	require.NotEqual(t, a, different)
	require.Equal(t, 2, c.Len())
}

func TestSignatureCache_InternCopiesInput(t *testing.T) {
	c := NewSignatureCache()
	sig := &FunctionType{Params: []api.ValueType{api.ValueTypeI32}}
	idx := c.Intern(sig)

	sig.Params[0] = api.ValueTypeI64 // mutate caller's copy after interning.

	got := c.Lookup(idx)
	require.Equal(t, api.ValueType(api.ValueTypeI32), got.Params[0])
}

func TestSignatureCache_LookupRoundTrips(t *testing.T) {
	c := NewSignatureCache()
	sig := &FunctionType{Params: []api.ValueType{api.ValueTypeI32, api.ValueTypeI64}, Results: []api.ValueType{api.ValueTypeF32}}
	idx := c.Intern(sig)

	got := c.Lookup(idx)
	require.True(t, got.EqualTo(sig))
}

func TestSignatureCache_LookupOutOfRangePanics(t *testing.T) {
	c := NewSignatureCache()
	err := require.CapturePanic(func() { c.Lookup(SigIndex(0)) })
	require.Error(t, err)
}

func TestSignatureCache_SignaturesMatchesInternOrder(t *testing.T) {
	c := NewSignatureCache()
	s0 := &FunctionType{Results: []api.ValueType{api.ValueTypeI32}}
	s1 := &FunctionType{Results: []api.ValueType{api.ValueTypeI64}}
	i0 := c.Intern(s0)
	i1 := c.Intern(s1)

	all := c.Signatures()
	require.Equal(t, 2, len(all))
	require.True(t, all[i0].EqualTo(s0))
	require.True(t, all[i1].EqualTo(s1))
}
