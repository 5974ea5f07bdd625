package wasm

import (
	"fmt"

	"github.com/wazeroc/corewasm/internal/wasmruntime"
)

// MemoryType classifies a memory by how its bound is represented in
// generated code and how out-of-bounds accesses are caught.
type MemoryType byte

const (
	// MemoryTypeDynamic memories have no declared maximum: every access
	// must be bounds-checked in generated code against a live bound word,
	// since the backing allocation can be resized (and reallocated) by
	// memory.grow at any point.
	MemoryTypeDynamic MemoryType = iota
	// MemoryTypeStatic memories declare a maximum up front, so the guard
	// region following the allocation can be sized once and bounds checks
	// elided: any in-range 32-bit address plus a legal static offset either
	// lands in the mapped heap or in the trapping guard region.
	MemoryTypeStatic
	// MemoryTypeSharedStatic is MemoryTypeStatic plus the shared flag.
	MemoryTypeSharedStatic
)

func (t MemoryType) String() string {
	switch t {
	case MemoryTypeDynamic:
		return "dynamic"
	case MemoryTypeStatic:
		return "static"
	case MemoryTypeSharedStatic:
		return "shared-static"
	default:
		return "unknown"
	}
}

// wasmPageSize is the fixed size, in bytes, of a single Wasm memory page.
const wasmPageSize = 65536

// defaultStaticGuardSize is the guard region appended after a Static or
// SharedStatic memory's mapped bound. 2GiB covers every 32-bit address
// plus the widest legal natural-alignment offset used by any load/store
// operator, so the backend never needs an explicit bounds check against
// it.
const defaultStaticGuardSize = 2 << 30

// defaultDynamicGuardSize is the guard region appended after a Dynamic
// memory's current allocation. Dynamic memories are still explicitly
// bounds-checked, so this only needs to absorb the widest single
// load/store width (16 bytes, for v128) rounded up generously.
const defaultDynamicGuardSize = 64 << 10

// MemoryDescriptor is the declared shape of a memory before an instance
// exists: minimum/maximum page counts and the shared flag.
type MemoryDescriptor struct {
	MinimumPages uint32
	MaximumPages *uint32
	Shared       bool
}

// MemoryLayout is the derived MemoryType plus the two quantities the
// preamble builder in C6 needs: the static bound (meaningful only when the
// type is not Dynamic) and the guard size appended past the mapped region.
type MemoryLayout struct {
	Type MemoryType
	// BoundBytes is the statically-known size, in bytes, of the mapped
	// region for Static/SharedStatic memories. Zero for Dynamic, where the
	// bound is the current length of the instance's LocalMemory.Data.
	BoundBytes uint64
	GuardBytes uint64
}

// DeriveMemoryLayout computes a MemoryLayout from a MemoryDescriptor.
//
//   - both maximum absent, shared = false -> Dynamic
//   - maximum present, shared = false -> Static
//   - maximum present, shared = true -> SharedStatic
//   - maximum absent, shared = true -> invalid
func DeriveMemoryLayout(d MemoryDescriptor) (MemoryLayout, error) {
	switch {
	case d.MaximumPages == nil && !d.Shared:
		return MemoryLayout{Type: MemoryTypeDynamic, GuardBytes: defaultDynamicGuardSize}, nil
	case d.MaximumPages != nil && !d.Shared:
		return MemoryLayout{
			Type:       MemoryTypeStatic,
			BoundBytes: uint64(*d.MaximumPages) * wasmPageSize,
			GuardBytes: defaultStaticGuardSize,
		}, nil
	case d.MaximumPages != nil && d.Shared:
		return MemoryLayout{
			Type:       MemoryTypeSharedStatic,
			BoundBytes: uint64(*d.MaximumPages) * wasmPageSize,
			GuardBytes: defaultStaticGuardSize,
		}, nil
	default: // MaximumPages == nil && d.Shared
		return MemoryLayout{}, fmt.Errorf("%w: shared memory must declare a maximum", wasmruntime.ErrValidation)
	}
}
