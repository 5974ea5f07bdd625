package wasm

import (
	"strings"
	"sync"

	"github.com/wazeroc/corewasm/api"
)

// FunctionType is a function signature, e.g. (i32, i64) -> (i32).
type FunctionType struct {
	Params  []api.ValueType
	Results []api.ValueType
}

// key returns a string uniquely identifying this signature, used to dedupe
// identical signatures in a SignatureCache. The encoding is internal and
// must not be relied on outside this package.
func (f *FunctionType) key() string {
	var sb strings.Builder
	sb.Grow(len(f.Params) + len(f.Results) + 1)
	for _, p := range f.Params {
		sb.WriteByte(p)
	}
	sb.WriteByte(0xff) // separator: not a valid ValueType byte.
	for _, r := range f.Results {
		sb.WriteByte(r)
	}
	return sb.String()
}

// EqualTo reports whether f and o describe the same signature.
func (f *FunctionType) EqualTo(o *FunctionType) bool {
	if f == o {
		return true
	}
	if f == nil || o == nil {
		return false
	}
	return f.key() == o.key()
}

// SigIndex is a dense, process-local identifier for an interned FunctionType.
// A single SigIndex may be shared by functions across every module compiled
// by the same SignatureCache, so indirect calls can compare signatures with
// a single integer equality check instead of a structural comparison.
type SigIndex uint32

// SignatureCache interns FunctionType values into a dense SigIndex space.
//
// Deduplicating across modules loaded by the same process is a
// simplification permitted when the engine does not need to unload
// individual signatures independently of the whole process: entries are
// never evicted.
type SignatureCache struct {
	mu    sync.RWMutex
	byKey map[string]SigIndex
	sigs  []*FunctionType
}

// NewSignatureCache returns an empty SignatureCache.
func NewSignatureCache() *SignatureCache {
	return &SignatureCache{byKey: map[string]SigIndex{}}
}

// Intern returns the SigIndex for sig, assigning a new one the first time an
// equivalent signature is seen.
func (c *SignatureCache) Intern(sig *FunctionType) SigIndex {
	k := sig.key()

	c.mu.RLock()
	if idx, ok := c.byKey[k]; ok {
		c.mu.RUnlock()
		return idx
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if idx, ok := c.byKey[k]; ok {
		return idx
	}
	idx := SigIndex(len(c.sigs))
	// Store our own copy: callers may mutate their slices afterward.
	cp := &FunctionType{
		Params:  append([]api.ValueType(nil), sig.Params...),
		Results: append([]api.ValueType(nil), sig.Results...),
	}
	c.sigs = append(c.sigs, cp)
	c.byKey[k] = idx
	return idx
}

// Lookup returns the FunctionType previously interned at idx. It panics if
// idx was never returned by Intern on this cache, since that indicates a
// programming error in the compiler, not a user-reachable condition.
func (c *SignatureCache) Lookup(idx SigIndex) *FunctionType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if int(idx) >= len(c.sigs) {
		panic("BUG: SigIndex out of range")
	}
	return c.sigs[idx]
}

// Len returns the number of distinct signatures interned so far.
func (c *SignatureCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sigs)
}

// Signatures returns every signature interned so far, indexed by
// SigIndex: entry i is the FunctionType Lookup(SigIndex(i)) returns. A
// caller building a wasm.ModuleInfo against this same cache can use this
// directly as ModuleInfo.Signatures so SigIndex values stay meaningful
// without a separate per-module translation table.
func (c *SignatureCache) Signatures() []*FunctionType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*FunctionType, len(c.sigs))
	copy(out, c.sigs)
	return out
}
