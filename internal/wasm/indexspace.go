package wasm

// Index is a position in one of the four combined index spaces (function,
// table, memory, global). Imports occupy the low end of each combined
// space, followed by locally defined entries, matching the WebAssembly
// core specification's index space ordering.
type Index = uint32

// Space projects a combined index space, where imported entries are
// numbered before local ones, onto the separate Local/Imported arrays the
// VM context stores them in.
//
// This mirrors the split wazevoapi.ModuleContextOffsetData keeps between
// ImportedFunctionsBegin and local-function storage, generalized to all
// four importable categories instead of just functions.
type Space struct {
	// Imported is the count of entries of this category brought in via
	// imports. They occupy combined indices [0, Imported).
	Imported uint32
	// Local is the count of entries of this category defined by the module
	// itself. They occupy combined indices [Imported, Imported+Local).
	Local uint32
}

// Count returns the total size of the combined index space.
func (s Space) Count() uint32 {
	return s.Imported + s.Local
}

// IsImported reports whether the combined index idx names an imported
// entry.
func (s Space) IsImported(idx Index) bool {
	return idx < s.Imported
}

// Project splits a combined index into which array it lives in (imported
// or local) and the index within that array.
func (s Space) Project(idx Index) (imported bool, localIdx Index) {
	if idx < s.Imported {
		return true, idx
	}
	return false, idx - s.Imported
}

// Promote is the inverse of Project: given which array an entry lives in
// and its index within that array, it returns the combined index space
// index.
func (s Space) Promote(imported bool, localIdx Index) Index {
	if imported {
		return localIdx
	}
	return s.Imported + localIdx
}

// ModuleSections carries the section-presence metadata needed to derive
// VM context layout before any individual instance exists: offsets depend
// only on counts and on which index spaces are backed by local data, never
// on runtime values.
//
// This is a deliberately small projection of a full Module type (teacher's
// internal/wasm.Module carries the entire decoded module, including bodies,
// names, custom sections and so on): compilation-time layout derivation is
// the only concern this package needs to serve, so only the shape
// information that offset derivation consumes is kept here.
type ModuleSections struct {
	Functions Space
	Tables    Space
	Memories  Space
	Globals   Space

	// HasLocalMemory is Memories.Local > 0, kept explicit since a module may
	// declare zero local memories while still importing one.
	HasLocalMemory bool
}

// NewModuleSections derives the Space metadata for every importable
// category.
func NewModuleSections(importedFuncs, localFuncs, importedTables, localTables,
	importedMemories, localMemories, importedGlobals, localGlobals uint32,
) ModuleSections {
	return ModuleSections{
		Functions:      Space{Imported: importedFuncs, Local: localFuncs},
		Tables:         Space{Imported: importedTables, Local: localTables},
		Memories:       Space{Imported: importedMemories, Local: localMemories},
		Globals:        Space{Imported: importedGlobals, Local: localGlobals},
		HasLocalMemory: localMemories > 0,
	}
}
