// Package wasmruntime defines the sentinel error kinds shared across the
// compilation pipeline and the trap recovery barrier, so callers can
// classify a failure with errors.Is instead of parsing message text.
package wasmruntime

import "errors"

var (
	// ErrValidation is returned when the Wasm binary decoder rejects the
	// input, or when an opt-in revalidation pre-pass finds the module
	// invalid. Fatal for the current compile.
	ErrValidation = errors.New("validation error")

	// ErrCompile is returned when a middleware stage or the backend fails
	// to lower a function body. Fatal for the current compile.
	ErrCompile = errors.New("compile error")

	// ErrLink is returned when finalize cannot resolve a symbol reference,
	// or exceeds an implementation limit while laying out the artifact.
	// Fatal for the current compile.
	ErrLink = errors.New("link error")

	// ErrCache is returned when rehydrating a persisted artifact fails,
	// due to version skew or a corrupted record. Fatal for the current
	// load.
	ErrCache = errors.New("cache error")

	// ErrUsage is returned for API misuse: calling module code generator
	// operations out of lifecycle order, or invoking before signatures
	// were fed. Fatal, and always a programming error, never a property
	// of the input module.
	ErrUsage = errors.New("usage error")
)
