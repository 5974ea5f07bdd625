package wasm

// ModuleInfo is the immutable result of parsing a Wasm binary: everything
// the module code generator and function code generator need to know
// about a module's shape, independent of any particular backend.
type ModuleInfo struct {
	// Signatures is the canonical, deduplicated signature table. Index by
	// SigIndex.
	Signatures []*FunctionType

	// FunctionSignatures associates each function, in combined index
	// space order (imports first), with its SigIndex.
	FunctionSignatures []SigIndex

	Sections ModuleSections

	Memories MemoryDescriptors
	Tables   TableDescriptors
	Globals  GlobalDescriptors

	// ImportNames/ExportNames carry resolver metadata: the (module, name)
	// pair for each imported function in combined index order, and the
	// set of exported names per combined function index.
	ImportNames []ImportName
	ExportNames map[Index][]string
}

// ImportName is the two-part name an import is resolved by.
type ImportName struct {
	Module, Name string
}

// MemoryDescriptors holds one MemoryDescriptor per memory in combined
// index order, imports first.
type MemoryDescriptors []MemoryDescriptor

// TableDescriptor is the declared shape of a table: its minimum/maximum
// element counts. Wasm 1.0 permits only funcref tables, so no element
// type is recorded.
type TableDescriptor struct {
	MinimumElements uint32
	MaximumElements *uint32
}

// TableDescriptors holds one TableDescriptor per table in combined index
// order, imports first.
type TableDescriptors []TableDescriptor

// GlobalDescriptor is the declared shape of a global.
type GlobalDescriptor struct {
	Type    ValueType
	Mutable bool
}

// GlobalDescriptors holds one GlobalDescriptor per global in combined
// index order, imports first.
type GlobalDescriptors []GlobalDescriptor

// ValueType re-exports api.ValueType so callers that only touch the wasm
// package need not also import api for this one alias.
type ValueType = byte
