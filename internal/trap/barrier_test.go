package trap

import (
	"errors"
	"testing"

	"github.com/wazeroc/corewasm/internal/testing/require"
)

func TestCallProtected_catchesRaisedTrap(t *testing.T) {
	err := CallProtected(nil, func(s *Scope) error {
		Raise(TrapcodeIntegerDivisionByZero)
		return nil
	})
	var cpe *CallProtError
	require.ErrorAs(t, err, &cpe)
	require.Equal(t, ExceptionCodeIllegalArithmetic, cpe.Code)
}

func TestCallProtected_catchesEveryTrapcode(t *testing.T) {
	cases := []struct {
		code Trapcode
		want ExceptionCode
	}{
		{TrapcodeStackOverflow, ExceptionCodeMemoryOutOfBounds},
		{TrapcodeHeapOutOfBounds, ExceptionCodeMemoryOutOfBounds},
		{TrapcodeOutOfBounds, ExceptionCodeMemoryOutOfBounds},
		{TrapcodeTableOutOfBounds, ExceptionCodeCallIndirectOOB},
		{TrapcodeIndirectCallToNull, ExceptionCodeCallIndirectOOB},
		{TrapcodeBadSignature, ExceptionCodeIncorrectCallIndirectSignature},
		{TrapcodeIntegerOverflow, ExceptionCodeIllegalArithmetic},
		{TrapcodeIntegerDivisionByZero, ExceptionCodeIllegalArithmetic},
		{TrapcodeBadConversionToInteger, ExceptionCodeIllegalArithmetic},
		{TrapcodeUnreachableCodeReached, ExceptionCodeUnreachable},
	}
	for _, c := range cases {
		c := c
		err := CallProtected(nil, func(s *Scope) error {
			Raise(c.code)
			return nil
		})
		var cpe *CallProtError
		require.ErrorAs(t, err, &cpe)
		require.Equal(t, c.want, cpe.Code)
	}
}

func TestCallProtected_returnsErrorWithoutTrap(t *testing.T) {
	want := errors.New("boom")
	err := CallProtected(nil, func(s *Scope) error { return want })
	require.Equal(t, want, err)
}

func TestCallProtected_nonTrapPanicPropagates(t *testing.T) {
	captured := require.CapturePanic(func() {
		_ = CallProtected(nil, func(s *Scope) error {
			panic("not a trap")
		})
	})
	require.Error(t, captured)
}

// TestCallProtected_recursiveRestoresOuterScope exercises Testable
// Property 7: a nested protected call must not leak its Scope into the
// outer one once it returns.
func TestCallProtected_recursiveRestoresOuterScope(t *testing.T) {
	var outerDuringInner, outerAfterInner *Scope

	outerErr := CallProtected(nil, func(outer *Scope) error {
		innerErr := CallProtected(outer, func(inner *Scope) error {
			outerDuringInner = inner.Parent()
			return nil
		})
		require.NoError(t, innerErr)
		outerAfterInner = outer
		return nil
	})
	require.NoError(t, outerErr)
	require.Same(t, outerAfterInner, outerDuringInner)
}

func TestCallProtected_requestEarlyShortcutsClassification(t *testing.T) {
	err := CallProtected(nil, func(s *Scope) error {
		s.RequestEarly(TrapcodeBadSignature)
		Raise(TrapcodeUnreachableCodeReached) // would classify differently if not shortcut.
		return nil
	})
	var cpe *CallProtError
	require.ErrorAs(t, err, &cpe)
	require.Equal(t, ExceptionCodeIncorrectCallIndirectSignature, cpe.Code)
}

func TestTrapcode_stringsCoverEveryValue(t *testing.T) {
	for c := TrapcodeStackOverflow; c <= TrapcodeUnreachableCodeReached; c++ {
		require.NotEqual(t, "unknown clif trap code", c.String())
	}
	require.Equal(t, "unknown clif trap code", Trapcode(255).String())
}
