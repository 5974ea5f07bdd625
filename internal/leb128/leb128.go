// Package leb128 implements LEB128 variable length integer encoding used
// throughout the WebAssembly binary format.
package leb128

import (
	"fmt"
	"io"
)

// EncodeInt32 encodes v as signed LEB128.
func EncodeInt32(v int32) []byte {
	return EncodeInt64(int64(v))
}

// EncodeInt64 encodes v as signed LEB128.
func EncodeInt64(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			out = append(out, b)
			return out
		}
		out = append(out, b|0x80)
	}
}

// EncodeUint32 encodes v as unsigned LEB128.
func EncodeUint32(v uint32) []byte {
	return EncodeUint64(uint64(v))
}

// EncodeUint64 encodes v as unsigned LEB128.
func EncodeUint64(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			out = append(out, b)
			return out
		}
		out = append(out, b|0x80)
	}
}

// LoadUint32 decodes an unsigned LEB128 value from buf, returning the
// decoded value and the number of bytes consumed.
func LoadUint32(buf []byte) (uint32, uint64, error) {
	v, n, err := LoadUint64(buf)
	if err != nil {
		return 0, 0, err
	}
	if n > 5 {
		return 0, 0, fmt.Errorf("leb128 integer too long")
	}
	if v > 0xffffffff {
		return 0, 0, fmt.Errorf("overflows a 32-bit integer")
	}
	return uint32(v), n, nil
}

// LoadUint64 decodes an unsigned LEB128 value from buf, returning the
// decoded value and the number of bytes consumed.
func LoadUint64(buf []byte) (ret uint64, num uint64, err error) {
	const maxBytes = 10
	var shift uint
	for i := 0; i < maxBytes; i++ {
		if i >= len(buf) {
			return 0, 0, io.ErrUnexpectedEOF
		}
		b := buf[i]
		if i == maxBytes-1 && b > 1 {
			return 0, 0, fmt.Errorf("overflows a 64-bit integer")
		}
		ret |= uint64(b&0x7f) << shift
		num++
		if b&0x80 == 0 {
			return ret, num, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("leb128 integer too long")
}

// LoadInt32 decodes a signed LEB128 value from buf, returning the decoded
// value and the number of bytes consumed.
func LoadInt32(buf []byte) (int32, uint64, error) {
	v, n, err := LoadInt64(buf)
	if err != nil {
		return 0, 0, err
	}
	if v < -2147483648 || v > 2147483647 {
		return 0, 0, fmt.Errorf("overflows a 32-bit integer")
	}
	return int32(v), n, nil
}

// LoadInt64 decodes a signed LEB128 value from buf, returning the decoded
// value and the number of bytes consumed.
func LoadInt64(buf []byte) (ret int64, num uint64, err error) {
	const maxBytes = 10
	var shift uint
	var b byte
	for i := 0; i < maxBytes; i++ {
		if i >= len(buf) {
			return 0, 0, io.ErrUnexpectedEOF
		}
		b = buf[i]
		ret |= int64(b&0x7f) << shift
		shift += 7
		num++
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && b&0x40 != 0 {
		ret |= -1 << shift
	}
	return ret, num, nil
}

// DecodeInt33AsInt64 decodes a signed 33-bit LEB128 value (used for Wasm
// block types, which are either a value type or a signed type index) from
// r, returning the decoded value widened to int64.
func DecodeInt33AsInt64(r io.ByteReader) (ret int64, num uint64, err error) {
	const maxBytes = 5
	var shift uint
	var b byte
	for i := 0; i < maxBytes; i++ {
		b, err = r.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		ret |= int64(b&0x7f) << shift
		shift += 7
		num++
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 33 && b&0x40 != 0 {
		ret |= -1 << shift
	}
	return ret, num, nil
}

// DecodeUint32 decodes an unsigned LEB128 value from r.
func DecodeUint32(r io.ByteReader) (ret uint32, num uint64, err error) {
	v, n, err := DecodeUint64(r)
	if err != nil {
		return 0, 0, err
	}
	if v > 0xffffffff {
		return 0, 0, fmt.Errorf("overflows a 32-bit integer")
	}
	return uint32(v), n, nil
}

// DecodeUint64 decodes an unsigned LEB128 value from r.
func DecodeUint64(r io.ByteReader) (ret uint64, num uint64, err error) {
	const maxBytes = 10
	var shift uint
	for i := 0; i < maxBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		ret |= uint64(b&0x7f) << shift
		num++
		if b&0x80 == 0 {
			return ret, num, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("leb128 integer too long")
}
