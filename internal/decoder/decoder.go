// Package decoder is the external Wasm binary decoder collaborator the
// streaming parser bridge (internal/streaming) drives. It is explicitly a
// non-goal to make this production-grade: only the section subset a
// compiling engine actually needs is understood (type, import, function,
// table, memory, global, export, start, code); every other section is skipped by
// length. What is implemented is real, not stubbed: a conforming binary
// decodes to an accurate internal/wasm.ModuleInfo plus the per-function
// operator stream codegen.FunctionGenerator consumes.
package decoder

import (
	"bufio"
	"fmt"
	"io"

	"github.com/wazeroc/corewasm/internal/codegen"
	"github.com/wazeroc/corewasm/internal/leb128"
	"github.com/wazeroc/corewasm/internal/wasm"
	"github.com/wazeroc/corewasm/internal/wasmruntime"
)

const (
	magic   = 0x6d736100 // "\0asm"
	version = uint32(1)
)

type sectionID byte

const (
	sectionCustom sectionID = iota
	sectionType
	sectionImport
	sectionFunction
	sectionTable
	sectionMemory
	sectionGlobal
	sectionExport
	sectionStart
	sectionElement
	sectionCode
	sectionData
)

const (
	valTypeI32 = 0x7f
	valTypeI64 = 0x7e
	valTypeF32 = 0x7d
	valTypeF64 = 0x7c

	externKindFunc   = 0x00
	externKindTable  = 0x01
	externKindMemory = 0x02
	externKindGlobal = 0x03

	funcTypeTag = 0x60
	funcrefTag  = 0x70
)

// ImportKind identifies which of the four importable categories one
// decoded Import names.
type ImportKind byte

const (
	ImportKindFunc ImportKind = iota
	ImportKindTable
	ImportKindMemory
	ImportKindGlobal
)

// Import is one decoded entry of the import section.
type Import struct {
	Module, Name string
	Kind         ImportKind

	FuncSig wasm.SigIndex
	Table   wasm.TableDescriptor
	Memory  wasm.MemoryDescriptor
	Global  wasm.GlobalDescriptor
}

// ExportKind identifies which combined index space an Export names into.
type ExportKind byte

const (
	ExportKindFunc ExportKind = iota
	ExportKindTable
	ExportKindMemory
	ExportKindGlobal
)

// Export is one decoded entry of the export section.
type Export struct {
	Name  string
	Kind  ExportKind
	Index wasm.Index
}

// GlobalDef is one decoded entry of the global section: its declared
// shape plus its constant initializer, narrowed to the i32/i64 constant
// forms this engine executes.
type GlobalDef struct {
	Descriptor wasm.GlobalDescriptor
	Init       int64
}

// FunctionBody is one decoded entry of the code section: its additional
// locals (beyond the parameters already implied by its signature) and its
// operator stream, already translated to codegen.Event values.
type FunctionBody struct {
	Locals []LocalDecl
	Events []codegen.Event
}

// LocalDecl is one run-length-encoded local declaration.
type LocalDecl struct {
	Type  wasm.ValueType
	Count uint32
}

// Module is the fully decoded result of Decode: every section this
// package understands, in the source binary's declaration order.
type Module struct {
	Types []*wasm.FunctionType

	Imports []Import

	// FunctionSigs associates each locally defined function, in
	// declaration order, with its signature.
	FunctionSigs []wasm.SigIndex

	Tables    []wasm.TableDescriptor
	Memories  []wasm.MemoryDescriptor
	Globals   []GlobalDef
	Exports   []Export
	StartFunc *wasm.Index

	// Code holds one FunctionBody per entry of FunctionSigs, in the same
	// order.
	Code []FunctionBody
}

// Decoder reads one Wasm binary module from an underlying byte stream.
type Decoder struct {
	r *bufio.Reader
}

// New wraps r for decoding. r is consumed once, front to back: Decode
// never seeks.
func New(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode reads the module header and every recognized section, returning
// the fully decoded Module. A malformed stream or an unsupported
// construct is reported as a wasmruntime.ErrValidation-class error, per
// the component design's decode-error-aborts-the-pipeline rule.
func (d *Decoder) Decode() (*Module, error) {
	if err := d.readHeader(); err != nil {
		return nil, err
	}

	m := &Module{}
	var lastID sectionID = sectionCustom
	for {
		id, size, ok, err := d.readSectionHeader()
		if err != nil {
			return nil, err
		}
		if !ok {
			break // EOF between sections: a well-formed module ends here.
		}
		if id != sectionCustom {
			if id < lastID {
				return nil, fmt.Errorf("%w: section %d out of order after %d", wasmruntime.ErrValidation, id, lastID)
			}
			lastID = id
		}

		body := io.LimitReader(d.r, int64(size))
		br := bufio.NewReader(body)
		switch id {
		case sectionType:
			if m.Types, err = decodeTypeSection(br); err != nil {
				return nil, err
			}
		case sectionImport:
			if m.Imports, err = decodeImportSection(br, m.Types); err != nil {
				return nil, err
			}
		case sectionFunction:
			if m.FunctionSigs, err = decodeFunctionSection(br); err != nil {
				return nil, err
			}
		case sectionTable:
			if m.Tables, err = decodeTableSection(br); err != nil {
				return nil, err
			}
		case sectionMemory:
			if m.Memories, err = decodeMemorySection(br); err != nil {
				return nil, err
			}
		case sectionGlobal:
			if m.Globals, err = decodeGlobalSection(br); err != nil {
				return nil, err
			}
		case sectionExport:
			if m.Exports, err = decodeExportSection(br); err != nil {
				return nil, err
			}
		case sectionStart:
			idx, _, err := leb128.DecodeUint32(br)
			if err != nil {
				return nil, fmt.Errorf("%w: start section: %v", wasmruntime.ErrValidation, err)
			}
			m.StartFunc = &idx
		case sectionCode:
			if m.Code, err = decodeCodeSection(br, m.Types, m.FunctionSigs); err != nil {
				return nil, err
			}
		default:
			// sectionCustom, sectionElement, sectionData: consumed by the
			// LimitReader discard below, skipped without inspection.
		}
		if _, err := io.Copy(io.Discard, body); err != nil {
			return nil, fmt.Errorf("%w: section %d: %v", wasmruntime.ErrValidation, id, err)
		}
	}
	return m, nil
}

func (d *Decoder) readHeader() error {
	var hdr [8]byte
	if _, err := io.ReadFull(d.r, hdr[:]); err != nil {
		return fmt.Errorf("%w: truncated header: %v", wasmruntime.ErrValidation, err)
	}
	gotMagic := uint32(hdr[0]) | uint32(hdr[1])<<8 | uint32(hdr[2])<<16 | uint32(hdr[3])<<24
	if gotMagic != magic {
		return fmt.Errorf("%w: bad magic %#x", wasmruntime.ErrValidation, gotMagic)
	}
	gotVersion := uint32(hdr[4]) | uint32(hdr[5])<<8 | uint32(hdr[6])<<16 | uint32(hdr[7])<<24
	if gotVersion != version {
		return fmt.Errorf("%w: unsupported version %d", wasmruntime.ErrValidation, gotVersion)
	}
	return nil
}

// readSectionHeader reads one section's id and byte length. ok is false
// at a clean end-of-stream with nothing read.
func (d *Decoder) readSectionHeader() (id sectionID, size uint32, ok bool, err error) {
	b, err := d.r.ReadByte()
	if err == io.EOF {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("%w: %v", wasmruntime.ErrValidation, err)
	}
	size, _, err = leb128.DecodeUint32(d.r)
	if err != nil {
		return 0, 0, false, fmt.Errorf("%w: section %d size: %v", wasmruntime.ErrValidation, b, err)
	}
	return sectionID(b), size, true, nil
}

func decodeName(r io.ByteReader) (string, error) {
	n, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return "", fmt.Errorf("%w: name length: %v", wasmruntime.ErrValidation, err)
	}
	buf := make([]byte, n)
	br, ok := r.(io.Reader)
	if !ok {
		return "", fmt.Errorf("%w: name reader is not an io.Reader", wasmruntime.ErrValidation)
	}
	if _, err := io.ReadFull(br, buf); err != nil {
		return "", fmt.Errorf("%w: name bytes: %v", wasmruntime.ErrValidation, err)
	}
	return string(buf), nil
}

func decodeValType(b byte) (wasm.ValueType, error) {
	switch b {
	case valTypeI32, valTypeI64, valTypeF32, valTypeF64:
		return b, nil
	default:
		return 0, fmt.Errorf("%w: bad value type %#x", wasmruntime.ErrValidation, b)
	}
}

func decodeLimits(r *bufio.Reader) (min uint32, max *uint32, err error) {
	flag, err := r.ReadByte()
	if err != nil {
		return 0, nil, fmt.Errorf("%w: limits flag: %v", wasmruntime.ErrValidation, err)
	}
	min, _, err = leb128.DecodeUint32(r)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: limits min: %v", wasmruntime.ErrValidation, err)
	}
	if flag == 1 {
		m, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: limits max: %v", wasmruntime.ErrValidation, err)
		}
		max = &m
	}
	return min, max, nil
}

func decodeTypeSection(r *bufio.Reader) ([]*wasm.FunctionType, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: type count: %v", wasmruntime.ErrValidation, err)
	}
	types := make([]*wasm.FunctionType, count)
	for i := range types {
		tag, err := r.ReadByte()
		if err != nil || tag != funcTypeTag {
			return nil, fmt.Errorf("%w: type %d: expected func type tag", wasmruntime.ErrValidation, i)
		}
		params, err := decodeValTypeVec(r)
		if err != nil {
			return nil, err
		}
		results, err := decodeValTypeVec(r)
		if err != nil {
			return nil, err
		}
		types[i] = &wasm.FunctionType{Params: params, Results: results}
	}
	return types, nil
}

func decodeValTypeVec(r *bufio.Reader) ([]wasm.ValueType, error) {
	n, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: value type vector length: %v", wasmruntime.ErrValidation, err)
	}
	out := make([]wasm.ValueType, n)
	for i := range out {
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: value type %d: %v", wasmruntime.ErrValidation, i, err)
		}
		if out[i], err = decodeValType(b); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decodeImportSection(r *bufio.Reader, types []*wasm.FunctionType) ([]Import, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: import count: %v", wasmruntime.ErrValidation, err)
	}
	imports := make([]Import, count)
	for i := range imports {
		mod, err := decodeName(r)
		if err != nil {
			return nil, err
		}
		name, err := decodeName(r)
		if err != nil {
			return nil, err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: import %d kind: %v", wasmruntime.ErrValidation, i, err)
		}
		im := Import{Module: mod, Name: name}
		switch kind {
		case externKindFunc:
			sigIdx, _, err := leb128.DecodeUint32(r)
			if err != nil {
				return nil, fmt.Errorf("%w: import %d func sig: %v", wasmruntime.ErrValidation, i, err)
			}
			if int(sigIdx) >= len(types) {
				return nil, fmt.Errorf("%w: import %d: sig index %d out of range", wasmruntime.ErrValidation, i, sigIdx)
			}
			im.Kind = ImportKindFunc
			im.FuncSig = wasm.SigIndex(sigIdx)
		case externKindTable:
			if _, err := r.ReadByte(); err != nil { // element type, always funcref.
				return nil, fmt.Errorf("%w: import %d table elemtype: %v", wasmruntime.ErrValidation, i, err)
			}
			min, max, err := decodeLimits(r)
			if err != nil {
				return nil, err
			}
			im.Kind = ImportKindTable
			im.Table = wasm.TableDescriptor{MinimumElements: min, MaximumElements: max}
		case externKindMemory:
			min, max, err := decodeLimits(r)
			if err != nil {
				return nil, err
			}
			im.Kind = ImportKindMemory
			im.Memory = wasm.MemoryDescriptor{MinimumPages: min, MaximumPages: max}
		case externKindGlobal:
			vt, err := r.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("%w: import %d global type: %v", wasmruntime.ErrValidation, i, err)
			}
			valType, err := decodeValType(vt)
			if err != nil {
				return nil, err
			}
			mutFlag, err := r.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("%w: import %d global mutability: %v", wasmruntime.ErrValidation, i, err)
			}
			im.Kind = ImportKindGlobal
			im.Global = wasm.GlobalDescriptor{Type: valType, Mutable: mutFlag == 1}
		default:
			return nil, fmt.Errorf("%w: import %d: bad extern kind %#x", wasmruntime.ErrValidation, i, kind)
		}
		imports[i] = im
	}
	return imports, nil
}

func decodeFunctionSection(r *bufio.Reader) ([]wasm.SigIndex, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: function count: %v", wasmruntime.ErrValidation, err)
	}
	sigs := make([]wasm.SigIndex, count)
	for i := range sigs {
		idx, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return nil, fmt.Errorf("%w: function %d sig: %v", wasmruntime.ErrValidation, i, err)
		}
		sigs[i] = wasm.SigIndex(idx)
	}
	return sigs, nil
}

func decodeTableSection(r *bufio.Reader) ([]wasm.TableDescriptor, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: table count: %v", wasmruntime.ErrValidation, err)
	}
	tables := make([]wasm.TableDescriptor, count)
	for i := range tables {
		elemType, err := r.ReadByte()
		if err != nil || elemType != funcrefTag {
			return nil, fmt.Errorf("%w: table %d: expected funcref", wasmruntime.ErrValidation, i)
		}
		min, max, err := decodeLimits(r)
		if err != nil {
			return nil, err
		}
		tables[i] = wasm.TableDescriptor{MinimumElements: min, MaximumElements: max}
	}
	return tables, nil
}

func decodeMemorySection(r *bufio.Reader) ([]wasm.MemoryDescriptor, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: memory count: %v", wasmruntime.ErrValidation, err)
	}
	mems := make([]wasm.MemoryDescriptor, count)
	for i := range mems {
		min, max, err := decodeLimits(r)
		if err != nil {
			return nil, err
		}
		mems[i] = wasm.MemoryDescriptor{MinimumPages: min, MaximumPages: max}
	}
	return mems, nil
}

// decodeConstExprI64 decodes a constant-expression initializer narrowed to
// a single i32.const or i64.const followed by end, the only forms this
// engine's global/element/data initializers use.
func decodeConstExprI64(r *bufio.Reader) (int64, error) {
	op, err := r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("%w: const expr opcode: %v", wasmruntime.ErrValidation, err)
	}
	var v int64
	switch op {
	case 0x41: // i32.const
		i32, _, err := leb128.DecodeInt33AsInt64(r)
		if err != nil {
			return 0, fmt.Errorf("%w: i32.const: %v", wasmruntime.ErrValidation, err)
		}
		v = i32
	case 0x42: // i64.const
		i64, _, err := leb128.DecodeInt33AsInt64(r)
		if err != nil {
			return 0, fmt.Errorf("%w: i64.const: %v", wasmruntime.ErrValidation, err)
		}
		v = i64
	default:
		return 0, fmt.Errorf("%w: unsupported const expr opcode %#x", wasmruntime.ErrValidation, op)
	}
	end, err := r.ReadByte()
	if err != nil || end != 0x0b {
		return 0, fmt.Errorf("%w: const expr missing end", wasmruntime.ErrValidation)
	}
	return v, nil
}

func decodeGlobalSection(r *bufio.Reader) ([]GlobalDef, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: global count: %v", wasmruntime.ErrValidation, err)
	}
	globals := make([]GlobalDef, count)
	for i := range globals {
		vt, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: global %d type: %v", wasmruntime.ErrValidation, i, err)
		}
		valType, err := decodeValType(vt)
		if err != nil {
			return nil, err
		}
		mutFlag, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: global %d mutability: %v", wasmruntime.ErrValidation, i, err)
		}
		init, err := decodeConstExprI64(r)
		if err != nil {
			return nil, err
		}
		globals[i] = GlobalDef{
			Descriptor: wasm.GlobalDescriptor{Type: valType, Mutable: mutFlag == 1},
			Init:       init,
		}
	}
	return globals, nil
}

func decodeExportSection(r *bufio.Reader) ([]Export, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: export count: %v", wasmruntime.ErrValidation, err)
	}
	exports := make([]Export, count)
	for i := range exports {
		name, err := decodeName(r)
		if err != nil {
			return nil, err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: export %d kind: %v", wasmruntime.ErrValidation, i, err)
		}
		idx, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return nil, fmt.Errorf("%w: export %d index: %v", wasmruntime.ErrValidation, i, err)
		}
		var ek ExportKind
		switch kind {
		case externKindFunc:
			ek = ExportKindFunc
		case externKindTable:
			ek = ExportKindTable
		case externKindMemory:
			ek = ExportKindMemory
		case externKindGlobal:
			ek = ExportKindGlobal
		default:
			return nil, fmt.Errorf("%w: export %d: bad extern kind %#x", wasmruntime.ErrValidation, i, kind)
		}
		exports[i] = Export{Name: name, Kind: ek, Index: idx}
	}
	return exports, nil
}

func decodeCodeSection(r *bufio.Reader, types []*wasm.FunctionType, sigs []wasm.SigIndex) ([]FunctionBody, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: code count: %v", wasmruntime.ErrValidation, err)
	}
	if int(count) != len(sigs) {
		return nil, fmt.Errorf("%w: code section has %d bodies, function section declared %d", wasmruntime.ErrValidation, count, len(sigs))
	}
	bodies := make([]FunctionBody, count)
	for i := range bodies {
		bodySize, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return nil, fmt.Errorf("%w: code %d size: %v", wasmruntime.ErrValidation, i, err)
		}
		body := bufio.NewReader(io.LimitReader(r, int64(bodySize)))
		locals, err := decodeLocalDecls(body)
		if err != nil {
			return nil, err
		}
		events, err := decodeOperators(body, types[sigs[i]])
		if err != nil {
			return nil, fmt.Errorf("%w: code %d: %v", wasmruntime.ErrValidation, i, err)
		}
		bodies[i] = FunctionBody{Locals: locals, Events: events}
	}
	return bodies, nil
}

func decodeLocalDecls(r *bufio.Reader) ([]LocalDecl, error) {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: local decl count: %v", wasmruntime.ErrValidation, err)
	}
	decls := make([]LocalDecl, count)
	for i := range decls {
		n, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return nil, fmt.Errorf("%w: local decl %d count: %v", wasmruntime.ErrValidation, i, err)
		}
		vt, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: local decl %d type: %v", wasmruntime.ErrValidation, i, err)
		}
		valType, err := decodeValType(vt)
		if err != nil {
			return nil, err
		}
		decls[i] = LocalDecl{Type: valType, Count: n}
	}
	return decls, nil
}

// decodeOperators decodes the body's operator stream into codegen.Event
// values, ending at (and consuming) the function-terminating 0x0b opcode.
// sig is unused today but kept as a parameter since a fuller decoder would
// need it to validate operand types against the function's declared
// result arity.
func decodeOperators(r *bufio.Reader, sig *wasm.FunctionType) ([]codegen.Event, error) {
	_ = sig
	var events []codegen.Event
	for {
		op, err := r.ReadByte()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: function body missing end opcode", wasmruntime.ErrValidation)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: operator: %v", wasmruntime.ErrValidation, err)
		}
		if op == 0x0b { // end: closes the function body.
			events = append(events, codegen.InternalEventOf(codegen.InternalEvent{Kind: codegen.InternalEventFunctionEnd}))
			return events, nil
		}

		in, err := decodeOneOperator(r, op)
		if err != nil {
			return nil, err
		}
		events = append(events, codegen.WasmEvent(in))
	}
}

func decodeOneOperator(r *bufio.Reader, op byte) (codegen.Instruction, error) {
	readIdx := func() (wasm.Index, error) {
		v, _, err := leb128.DecodeUint32(r)
		return v, err
	}
	readMemarg := func() (uint32, error) {
		if _, _, err := leb128.DecodeUint32(r); err != nil { // align, unused.
			return 0, err
		}
		off, _, err := leb128.DecodeUint32(r)
		return off, err
	}

	switch op {
	case 0x00:
		return codegen.Instruction{Op: codegen.OpUnreachable}, nil
	case 0x0f:
		return codegen.Instruction{Op: codegen.OpReturn}, nil
	case 0x1a:
		return codegen.Instruction{Op: codegen.OpDrop}, nil

	case 0x20, 0x21, 0x22:
		idx, err := readIdx()
		if err != nil {
			return codegen.Instruction{}, fmt.Errorf("%w: local index: %v", wasmruntime.ErrValidation, err)
		}
		kind := map[byte]codegen.Op{0x20: codegen.OpLocalGet, 0x21: codegen.OpLocalSet, 0x22: codegen.OpLocalTee}[op]
		return codegen.Instruction{Op: kind, Immediate: int64(idx)}, nil

	case 0x23, 0x24:
		idx, err := readIdx()
		if err != nil {
			return codegen.Instruction{}, fmt.Errorf("%w: global index: %v", wasmruntime.ErrValidation, err)
		}
		kind := codegen.OpGlobalGet
		if op == 0x24 {
			kind = codegen.OpGlobalSet
		}
		return codegen.Instruction{Op: kind, Immediate: int64(idx)}, nil

	case 0x41:
		v, _, err := leb128.DecodeInt33AsInt64(r)
		if err != nil {
			return codegen.Instruction{}, fmt.Errorf("%w: i32.const: %v", wasmruntime.ErrValidation, err)
		}
		return codegen.Instruction{Op: codegen.OpI32Const, Immediate: v}, nil
	case 0x42:
		v, _, err := leb128.DecodeInt33AsInt64(r)
		if err != nil {
			return codegen.Instruction{}, fmt.Errorf("%w: i64.const: %v", wasmruntime.ErrValidation, err)
		}
		return codegen.Instruction{Op: codegen.OpI64Const, Immediate: v}, nil

	case 0x28:
		off, err := readMemarg()
		if err != nil {
			return codegen.Instruction{}, fmt.Errorf("%w: i32.load memarg: %v", wasmruntime.ErrValidation, err)
		}
		return codegen.Instruction{Op: codegen.OpI32Load, Immediate: int64(off)}, nil
	case 0x36:
		off, err := readMemarg()
		if err != nil {
			return codegen.Instruction{}, fmt.Errorf("%w: i32.store memarg: %v", wasmruntime.ErrValidation, err)
		}
		return codegen.Instruction{Op: codegen.OpI32Store, Immediate: int64(off)}, nil

	case 0x3f, 0x40:
		if _, err := r.ReadByte(); err != nil { // reserved byte.
			return codegen.Instruction{}, fmt.Errorf("%w: memory.size/grow reserved byte: %v", wasmruntime.ErrValidation, err)
		}
		kind := codegen.OpMemorySize
		if op == 0x40 {
			kind = codegen.OpMemoryGrow
		}
		return codegen.Instruction{Op: kind}, nil

	case 0x10:
		idx, err := readIdx()
		if err != nil {
			return codegen.Instruction{}, fmt.Errorf("%w: call index: %v", wasmruntime.ErrValidation, err)
		}
		return codegen.Instruction{Op: codegen.OpCall, Immediate: int64(idx)}, nil

	case 0x11:
		typeIdx, err := readIdx()
		if err != nil {
			return codegen.Instruction{}, fmt.Errorf("%w: call_indirect type index: %v", wasmruntime.ErrValidation, err)
		}
		tableIdx, err := readIdx()
		if err != nil {
			return codegen.Instruction{}, fmt.Errorf("%w: call_indirect table index: %v", wasmruntime.ErrValidation, err)
		}
		return codegen.Instruction{Op: codegen.OpCallIndirect, TableIndex: tableIdx, TypeIndex: wasm.SigIndex(typeIdx)}, nil

	case 0x6a, 0x6b, 0x6c, 0x6d, 0x6e, 0x71, 0x72, 0x73, 0x46, 0x47, 0x48:
		kind := map[byte]codegen.Op{
			0x6a: codegen.OpI32Add, 0x6b: codegen.OpI32Sub, 0x6c: codegen.OpI32Mul,
			0x6d: codegen.OpI32DivS, 0x6e: codegen.OpI32DivU,
			0x71: codegen.OpI32And, 0x72: codegen.OpI32Or, 0x73: codegen.OpI32Xor,
			0x46: codegen.OpI32Eq, 0x47: codegen.OpI32Ne, 0x48: codegen.OpI32LtS,
		}[op]
		return codegen.Instruction{Op: kind}, nil

	case 0x7c, 0x7d, 0x7e, 0x7f, 0x80:
		kind := map[byte]codegen.Op{
			0x7c: codegen.OpI64Add, 0x7d: codegen.OpI64Sub, 0x7e: codegen.OpI64Mul,
			0x7f: codegen.OpI64DivS, 0x80: codegen.OpI64DivU,
		}[op]
		return codegen.Instruction{Op: kind}, nil

	default:
		return codegen.Instruction{}, fmt.Errorf("%w: unsupported opcode %#x", wasmruntime.ErrCompile, op)
	}
}
