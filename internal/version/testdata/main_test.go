package main

import (
	"testing"

	"github.com/wazeroc/corewasm/internal/testing/require"
	"github.com/wazeroc/corewasm/internal/version"
)

// TestGetVersion ensures GetVersion resolves this module's own pseudo-version
// out of a downstream consumer's build info.
func TestGetVersion(t *testing.T) {
	// This matches the one in the "require" statement in the go.mod.
	const exp = "v0.0.0-20220818123113-1948909ec0b1"
	require.Equal(t, exp, version.GetVersion())
}
