// Package require wraps github.com/stretchr/testify/require with a few
// additions (CapturePanic, EqualErrno) used throughout this module's
// tests, so test files only need one assertion import.
package require

import (
	"fmt"

	"github.com/stretchr/testify/require"
)

// TestingT is the minimal testing.T surface these assertions need.
type TestingT = require.TestingT

func NoError(t TestingT, err error, msgAndArgs ...interface{}) { require.NoError(t, err, msgAndArgs...) }
func NoErrorf(t TestingT, err error, msg string, args ...interface{}) {
	require.NoErrorf(t, err, msg, args...)
}
func Error(t TestingT, err error, msgAndArgs ...interface{}) { require.Error(t, err, msgAndArgs...) }
func Errorf(t TestingT, err error, msg string, args ...interface{}) {
	require.Errorf(t, err, msg, args...)
}
func ErrorIs(t TestingT, err, target error, msgAndArgs ...interface{}) {
	require.ErrorIs(t, err, target, msgAndArgs...)
}
func ErrorIsf(t TestingT, err, target error, msg string, args ...interface{}) {
	require.ErrorIsf(t, err, target, msg, args...)
}
func ErrorAs(t TestingT, err error, target interface{}, msgAndArgs ...interface{}) {
	require.ErrorAs(t, err, target, msgAndArgs...)
}
func ErrorContains(t TestingT, err error, contains string, msgAndArgs ...interface{}) {
	require.ErrorContains(t, err, contains, msgAndArgs...)
}
func EqualError(t TestingT, err error, expected string, msgAndArgs ...interface{}) {
	require.EqualError(t, err, expected, msgAndArgs...)
}

func Equal(t TestingT, expected, actual interface{}, msgAndArgs ...interface{}) {
	require.Equal(t, expected, actual, msgAndArgs...)
}
func Equalf(t TestingT, expected, actual interface{}, msg string, args ...interface{}) {
	require.Equalf(t, expected, actual, msg, args...)
}
func NotEqual(t TestingT, expected, actual interface{}, msgAndArgs ...interface{}) {
	require.NotEqual(t, expected, actual, msgAndArgs...)
}
func EqualValues(t TestingT, expected, actual interface{}, msgAndArgs ...interface{}) {
	require.EqualValues(t, expected, actual, msgAndArgs...)
}

func True(t TestingT, value bool, msgAndArgs ...interface{})  { require.True(t, value, msgAndArgs...) }
func Truef(t TestingT, value bool, msg string, args ...interface{}) {
	require.Truef(t, value, msg, args...)
}
func False(t TestingT, value bool, msgAndArgs ...interface{}) { require.False(t, value, msgAndArgs...) }
func Falsef(t TestingT, value bool, msg string, args ...interface{}) {
	require.Falsef(t, value, msg, args...)
}

func Nil(t TestingT, object interface{}, msgAndArgs ...interface{}) { require.Nil(t, object, msgAndArgs...) }
func NotNil(t TestingT, object interface{}, msgAndArgs ...interface{}) {
	require.NotNil(t, object, msgAndArgs...)
}
func NotNilf(t TestingT, object interface{}, msg string, args ...interface{}) {
	require.NotNilf(t, object, msg, args...)
}

func Len(t TestingT, object interface{}, length int, msgAndArgs ...interface{}) {
	require.Len(t, object, length, msgAndArgs...)
}
func Contains(t TestingT, s, contains interface{}, msgAndArgs ...interface{}) {
	require.Contains(t, s, contains, msgAndArgs...)
}
func NotContains(t TestingT, s, contains interface{}, msgAndArgs ...interface{}) {
	require.NotContains(t, s, contains, msgAndArgs...)
}
func ElementsMatch(t TestingT, listA, listB interface{}, msgAndArgs ...interface{}) {
	require.ElementsMatch(t, listA, listB, msgAndArgs...)
}
func Empty(t TestingT, object interface{}, msgAndArgs ...interface{}) {
	require.Empty(t, object, msgAndArgs...)
}
func Emptyf(t TestingT, object interface{}, msg string, args ...interface{}) {
	require.Emptyf(t, object, msg, args...)
}
func NotEmpty(t TestingT, object interface{}, msgAndArgs ...interface{}) {
	require.NotEmpty(t, object, msgAndArgs...)
}

func Greater(t TestingT, e1, e2 interface{}, msgAndArgs ...interface{}) {
	require.Greater(t, e1, e2, msgAndArgs...)
}
func GreaterOrEqual(t TestingT, e1, e2 interface{}, msgAndArgs ...interface{}) {
	require.GreaterOrEqual(t, e1, e2, msgAndArgs...)
}
func Less(t TestingT, e1, e2 interface{}, msgAndArgs ...interface{}) {
	require.Less(t, e1, e2, msgAndArgs...)
}
func Lessf(t TestingT, e1, e2 interface{}, msg string, args ...interface{}) {
	require.Lessf(t, e1, e2, msg, args...)
}
func Positive(t TestingT, e interface{}, msgAndArgs ...interface{}) { require.Positive(t, e, msgAndArgs...) }
func Zero(t TestingT, i interface{}, msgAndArgs ...interface{})     { require.Zero(t, i, msgAndArgs...) }
func NotZero(t TestingT, i interface{}, msgAndArgs ...interface{})  { require.NotZero(t, i, msgAndArgs...) }
func Same(t TestingT, expected, actual interface{}, msgAndArgs ...interface{}) {
	require.Same(t, expected, actual, msgAndArgs...)
}
func NotSame(t TestingT, expected, actual interface{}, msgAndArgs ...interface{}) {
	require.NotSame(t, expected, actual, msgAndArgs...)
}

func InDelta(t TestingT, expected, actual interface{}, delta float64, msgAndArgs ...interface{}) {
	require.InDelta(t, expected, actual, delta, msgAndArgs...)
}
func InEpsilon(t TestingT, expected, actual interface{}, epsilon float64, msgAndArgs ...interface{}) {
	require.InEpsilon(t, expected, actual, epsilon, msgAndArgs...)
}

func IsType(t TestingT, expectedType, object interface{}, msgAndArgs ...interface{}) {
	require.IsType(t, expectedType, object, msgAndArgs...)
}
func IsTypef(t TestingT, expectedType, object interface{}, msg string, args ...interface{}) {
	require.IsTypef(t, expectedType, object, msg, args...)
}

func JSONEq(t TestingT, expected, actual string, msgAndArgs ...interface{}) {
	require.JSONEq(t, expected, actual, msgAndArgs...)
}

func DirExists(t TestingT, path string, msgAndArgs ...interface{}) { require.DirExists(t, path, msgAndArgs...) }
func NoDirExists(t TestingT, path string, msgAndArgs ...interface{}) {
	require.NoDirExists(t, path, msgAndArgs...)
}

func Panics(t TestingT, f func(), msgAndArgs ...interface{}) { require.Panics(t, f, msgAndArgs...) }
func NotPanics(t TestingT, f func(), msgAndArgs ...interface{}) {
	require.NotPanics(t, f, msgAndArgs...)
}
func NotPanicsf(t TestingT, f func(), msg string, args ...interface{}) {
	require.NotPanicsf(t, f, msg, args...)
}

func Fail(t TestingT, failureMessage string, msgAndArgs ...interface{}) {
	require.Fail(t, failureMessage, msgAndArgs...)
}
func FailNow(t TestingT, failureMessage string, msgAndArgs ...interface{}) {
	require.FailNow(t, failureMessage, msgAndArgs...)
}

// CapturePanic runs f and returns the recovered panic value as an error,
// or nil if f did not panic. A panic value that is already an error is
// returned as-is; any other value is formatted with fmt.Errorf("%v").
func CapturePanic(f func()) (captured error) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				captured = err
			} else {
				captured = fmt.Errorf("%v", r)
			}
		}
	}()
	f()
	return
}

// Errno is the minimal syscall.Errno surface EqualErrno needs, avoiding a
// hard dependency on the syscall package for platforms that don't define
// it identically.
type Errno interface {
	error
	Is(target error) bool
}

// EqualErrno asserts that err wraps the given errno, the way
// errors.Is(err, expected) would, but with a clearer failure message when
// err is nil or of an unexpected type.
func EqualErrno(t TestingT, expected error, err error, msgAndArgs ...interface{}) {
	if err == nil {
		require.FailNow(t, fmt.Sprintf("expected error %v, got nil", expected), msgAndArgs...)
		return
	}
	require.ErrorIs(t, err, expected, msgAndArgs...)
}
