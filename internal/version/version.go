// Package version reports this module's own version as resolved by a
// downstream consumer's go.mod, for embedding in compiled-artifact cache
// keys and diagnostic output.
package version

import "runtime/debug"

// ModulePath is this module's import path, used to find its own entry in
// a downstream binary's build info.
const ModulePath = "github.com/wazeroc/corewasm"

// defaultVersion is reported when build info is unavailable (e.g. a
// binary built with GOFLAGS=-trimpath against a non-module GOPATH
// checkout, or a test binary invoked directly rather than through `go
// test`).
const defaultVersion = "dev"

// GetVersion returns the version of this module as recorded in the
// running binary's build info: the tagged release version for a normal
// `go build`, a pseudo-version for a replace directive or untagged
// commit, or defaultVersion if build info isn't available at all.
func GetVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return defaultVersion
	}
	if info.Main.Path == ModulePath && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	for _, dep := range info.Deps {
		if dep.Path == ModulePath {
			if dep.Replace != nil && dep.Replace.Version != "" {
				return dep.Replace.Version
			}
			if dep.Version != "" {
				return dep.Version
			}
		}
	}
	return defaultVersion
}
