package middleware

import (
	"testing"

	"github.com/wazeroc/corewasm/internal/codegen"
	"github.com/wazeroc/corewasm/internal/testing/require"
	"github.com/wazeroc/corewasm/internal/wasm"
)

func wasmEvent(op codegen.Op) codegen.Event {
	return codegen.WasmEvent(codegen.Instruction{Op: op})
}

func TestMeteringInjectsBreakpointEveryInterval(t *testing.T) {
	m := &Metering{Interval: 2, HandlerID: 7}
	var out []codegen.Event
	sink := func(e codegen.Event) error {
		out = append(out, e)
		return nil
	}

	for i := 0; i < 4; i++ {
		require.NoError(t, m.FeedEvent(wasmEvent(codegen.OpDrop), nil, sink))
	}

	// op, breakpoint+op, op, breakpoint+op == 6 events for 4 operators
	// at interval 2: every 2nd operator is preceded by a breakpoint.
	require.Equal(t, 6, len(out))
	require.False(t, out[1].IsWasm)
	require.Equal(t, codegen.InternalEventBreakpoint, out[1].Internal.Kind)
	require.Equal(t, uint32(7), out[1].Internal.Arg)
	require.True(t, out[2].IsWasm)
}

func TestMeteringZeroIntervalDisablesInjection(t *testing.T) {
	m := &Metering{Interval: 0}
	var out []codegen.Event
	sink := func(e codegen.Event) error {
		out = append(out, e)
		return nil
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, m.FeedEvent(wasmEvent(codegen.OpDrop), nil, sink))
	}
	require.Equal(t, 5, len(out))
}

func TestMeteringInternalEventsDoNotAdvanceCount(t *testing.T) {
	m := &Metering{Interval: 2}
	var out []codegen.Event
	sink := func(e codegen.Event) error {
		out = append(out, e)
		return nil
	}
	internal := codegen.InternalEventOf(codegen.InternalEvent{Kind: codegen.InternalEventFunctionEnd})
	for i := 0; i < 10; i++ {
		require.NoError(t, m.FeedEvent(internal, nil, sink))
	}
	for _, e := range out {
		require.False(t, !e.IsWasm && e.Internal.Kind == codegen.InternalEventBreakpoint)
	}
}

func TestChainComposesStagesInOrder(t *testing.T) {
	c := NewChain(&Metering{Interval: 1, HandlerID: 1})
	var out []codegen.Event
	err := c.Run(wasmEvent(codegen.OpDrop), &wasm.ModuleInfo{}, func(e codegen.Event) error {
		out = append(out, e)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, len(out))
	require.False(t, out[0].IsWasm)
	require.True(t, out[1].IsWasm)
}
