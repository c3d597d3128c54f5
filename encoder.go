package ptb

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// Word widths in bytes for the fixed-width unsigned types.
const (
	wordU8   = 1
	wordU16  = 2
	wordU32  = 4
	wordU64  = 8
	wordU128 = 16
	wordU256 = 32
)

// EncodePure encodes a literal value into the chain-native wire form for its
// declared type. Unsigned words are fixed-width little-endian, bool is a
// single 0/1 byte, addresses are the 32-byte canonical form, and vectors
// encode a uleb128 length followed by their elements. Any unrecognized type
// falls back to a uleb128-prefixed UTF-8 string; that fallback is a
// deliberate escape hatch for loosely typed legacy literals, not an error.
//
// Reference-marked types are object references and have no pure encoding.
func EncodePure(value string, t TypeTag) ([]byte, error) {
	if t.IsObject() {
		return nil, &EncodingError{Value: value, Type: t.String(),
			Err: errors.New("reference types encode as object inputs, not pure bytes")}
	}

	switch t.Kind {
	case TypeU8, TypeU16, TypeU32, TypeU64:
		return encodeWord(value, t)

	case TypeU128:
		return encodeWideWord(value, t, wordU128)

	case TypeU256:
		return encodeWideWord(value, t, wordU256)

	case TypeBool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return nil, &EncodingError{Value: value, Type: t.String(), Err: err}
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil

	case TypeAddress:
		a, err := ParseAddress(value)
		if err != nil {
			return nil, err
		}
		return a.Bytes(), nil

	case TypeVector:
		return encodeVector(value, t)

	default:
		// Permissive last resort: UTF-8 string encoding.
		return encodeString(value), nil
	}
}

func wordWidth(k TypeKind) int {
	switch k {
	case TypeU8:
		return wordU8
	case TypeU16:
		return wordU16
	case TypeU32:
		return wordU32
	case TypeU64:
		return wordU64
	case TypeU128:
		return wordU128
	case TypeU256:
		return wordU256
	default:
		return 0
	}
}

func encodeWord(value string, t TypeTag) ([]byte, error) {
	width := wordWidth(t.Kind)
	v, err := strconv.ParseUint(strings.TrimSpace(value), 0, width*8)
	if err != nil {
		return nil, &EncodingError{Value: value, Type: t.String(), Err: err}
	}

	buf := make([]byte, wordU64)
	binary.LittleEndian.PutUint64(buf, v)
	return buf[:width], nil
}

func encodeWideWord(value string, t TypeTag, width int) ([]byte, error) {
	v, err := parseWideUint(value)
	if err != nil {
		return nil, &EncodingError{Value: value, Type: t.String(), Err: err}
	}
	if v.BitLen() > width*8 {
		return nil, &EncodingError{Value: value, Type: t.String(),
			Err: fmt.Errorf("value exceeds %d bits", width*8)}
	}

	be := v.Bytes32()
	buf := make([]byte, width)
	for i := 0; i < width; i++ {
		buf[i] = be[len(be)-1-i]
	}
	return buf, nil
}

func parseWideUint(value string) (*uint256.Int, error) {
	trimmed := strings.ReplaceAll(strings.TrimSpace(value), "_", "")
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		return uint256.FromHex("0x" + trimmed[2:])
	}
	return uint256.FromDecimal(trimmed)
}

func encodeVector(value string, t TypeTag) ([]byte, error) {
	elems, err := parseListLiteral(value)
	if err != nil {
		return nil, &EncodingError{Value: value, Type: t.String(), Err: err}
	}

	out := appendULEB128(nil, uint64(len(elems)))
	for _, e := range elems {
		enc, err := EncodePure(e, *t.Elem)
		if err != nil {
			return nil, err
		}
		out = append(out, enc...)
	}
	return out, nil
}

func encodeString(value string) []byte {
	out := appendULEB128(nil, uint64(len(value)))
	return append(out, value...)
}

// parseListLiteral parses a vector literal: a JSON array (which also covers
// nested vectors) or a bare comma-separated list.
func parseListLiteral(s string) ([]string, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return nil, nil
	}

	if strings.HasPrefix(text, "[") {
		var raw []json.RawMessage
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			return nil, err
		}
		out := make([]string, len(raw))
		for i, r := range raw {
			var str string
			if err := json.Unmarshal(r, &str); err == nil {
				out[i] = str
			} else {
				out[i] = strings.TrimSpace(string(r))
			}
		}
		return out, nil
	}

	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}

// DecodeReturn decodes raw return bytes into a Go value using the wire rules
// in reverse: little-endian word reconstruction, single-byte bool, and
// 32-byte address back to canonical hex. Vectors decode recursively into
// []any; anything unrecognized decodes as a uleb128-prefixed UTF-8 string.
//
// Word types decode as uint8/uint16/uint32/uint64; u128 and u256 decode as
// *uint256.Int.
func DecodeReturn(raw []byte, t TypeTag) (any, error) {
	v, rest, err := decodeValue(raw, t)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, &EncodingError{Value: fmt.Sprintf("%d trailing bytes", len(rest)),
			Type: t.String(), Err: errors.New("return value longer than its type")}
	}
	return v, nil
}

func decodeValue(raw []byte, t TypeTag) (any, []byte, error) {
	switch t.Kind {
	case TypeU8, TypeU16, TypeU32, TypeU64:
		width := wordWidth(t.Kind)
		if len(raw) < width {
			return nil, nil, shortReturn(raw, t)
		}
		buf := make([]byte, wordU64)
		copy(buf, raw[:width])
		v := binary.LittleEndian.Uint64(buf)
		switch t.Kind {
		case TypeU8:
			return uint8(v), raw[width:], nil
		case TypeU16:
			return uint16(v), raw[width:], nil
		case TypeU32:
			return uint32(v), raw[width:], nil
		default:
			return v, raw[width:], nil
		}

	case TypeU128, TypeU256:
		width := wordWidth(t.Kind)
		if len(raw) < width {
			return nil, nil, shortReturn(raw, t)
		}
		be := make([]byte, width)
		for i := 0; i < width; i++ {
			be[i] = raw[width-1-i]
		}
		return new(uint256.Int).SetBytes(be), raw[width:], nil

	case TypeBool:
		if len(raw) < 1 {
			return nil, nil, shortReturn(raw, t)
		}
		return raw[0] != 0, raw[1:], nil

	case TypeAddress:
		if len(raw) < AddressLength {
			return nil, nil, shortReturn(raw, t)
		}
		var a Address
		copy(a[:], raw[:AddressLength])
		return a.Hex(), raw[AddressLength:], nil

	case TypeVector:
		n, consumed, err := readULEB128(raw)
		if err != nil {
			return nil, nil, &EncodingError{Value: "vector length", Type: t.String(), Err: err}
		}
		rest := raw[consumed:]
		// The length prefix is untrusted input. Every element consumes at
		// least one byte, so a count beyond the remaining bytes is a
		// malformed response; reject it before allocating.
		if n > uint64(len(rest)) {
			return nil, nil, shortReturn(raw, t)
		}
		out := make([]any, 0, n)
		for i := uint64(0); i < n; i++ {
			var v any
			v, rest, err = decodeValue(rest, *t.Elem)
			if err != nil {
				return nil, nil, err
			}
			out = append(out, v)
		}
		return out, rest, nil

	default:
		n, consumed, err := readULEB128(raw)
		if err != nil {
			return nil, nil, &EncodingError{Value: "string length", Type: t.String(), Err: err}
		}
		rest := raw[consumed:]
		if uint64(len(rest)) < n {
			return nil, nil, shortReturn(raw, t)
		}
		return string(rest[:n]), rest[n:], nil
	}
}

func shortReturn(raw []byte, t TypeTag) error {
	return &EncodingError{Value: fmt.Sprintf("%d bytes", len(raw)), Type: t.String(),
		Err: errors.New("return value shorter than its type")}
}

// appendULEB128 appends v in unsigned LEB128 form.
func appendULEB128(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// readULEB128 reads an unsigned LEB128 value, returning it and the number of
// bytes consumed.
func readULEB128(b []byte) (uint64, int, error) {
	var v uint64
	var shift uint
	for i := 0; i < len(b); i++ {
		if shift >= 64 {
			break
		}
		v |= uint64(b[i]&0x7f) << shift
		if b[i]&0x80 == 0 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, errors.New("truncated uleb128 value")
}
