package ptb

import (
	"bytes"
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

func TestEncodeWords(t *testing.T) {
	t.Run("u8 is one byte", func(t *testing.T) {
		got, err := EncodePure("7", ParseTypeTag("u8"))
		if err != nil {
			t.Fatalf("EncodePure: %v", err)
		}
		if !bytes.Equal(got, []byte{7}) {
			t.Errorf("Expected [7], got %v", got)
		}
	})

	t.Run("u16 is little-endian", func(t *testing.T) {
		got, err := EncodePure("300", ParseTypeTag("u16"))
		if err != nil {
			t.Fatalf("EncodePure: %v", err)
		}
		if !bytes.Equal(got, []byte{0x2c, 0x01}) {
			t.Errorf("Expected [2c 01], got %x", got)
		}
	})

	t.Run("u64 is eight bytes little-endian", func(t *testing.T) {
		got, err := EncodePure("1", ParseTypeTag("u64"))
		if err != nil {
			t.Fatalf("EncodePure: %v", err)
		}
		want := []byte{1, 0, 0, 0, 0, 0, 0, 0}
		if !bytes.Equal(got, want) {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})

	t.Run("underscored literals parse", func(t *testing.T) {
		got, err := EncodePure("1_000_000_000", ParseTypeTag("u64"))
		if err != nil {
			t.Fatalf("EncodePure: %v", err)
		}
		v, err := DecodeReturn(got, ParseTypeTag("u64"))
		if err != nil {
			t.Fatalf("DecodeReturn: %v", err)
		}
		if v.(uint64) != 1_000_000_000 {
			t.Errorf("Expected 1000000000, got %v", v)
		}
	})

	t.Run("non-numeric text fails with EncodingError", func(t *testing.T) {
		_, err := EncodePure("abc", ParseTypeTag("u64"))
		var encErr *EncodingError
		if !errors.As(err, &encErr) {
			t.Fatalf("Expected EncodingError, got %v", err)
		}
	})

	t.Run("out-of-range values fail", func(t *testing.T) {
		if _, err := EncodePure("256", ParseTypeTag("u8")); err == nil {
			t.Error("Expected error for 256 as u8")
		}
	})
}

func TestWordRoundTrip(t *testing.T) {
	// Numeric round-trip law: encode-then-decode reproduces the value.
	cases := []struct {
		typ   string
		value string
	}{
		{"u8", "255"},
		{"u16", "65535"},
		{"u32", "4294967295"},
		{"u64", "18446744073709551615"},
		{"u128", "340282366920938463463374607431768211455"},
		{"u256", "115792089237316195423570985008687907853269984665640564039457584007913129639935"},
	}

	for _, tc := range cases {
		t.Run(tc.typ, func(t *testing.T) {
			tag := ParseTypeTag(tc.typ)
			enc, err := EncodePure(tc.value, tag)
			if err != nil {
				t.Fatalf("EncodePure: %v", err)
			}
			if len(enc) != wordWidth(tag.Kind) {
				t.Fatalf("Expected %d bytes, got %d", wordWidth(tag.Kind), len(enc))
			}

			dec, err := DecodeReturn(enc, tag)
			if err != nil {
				t.Fatalf("DecodeReturn: %v", err)
			}

			var got string
			switch v := dec.(type) {
			case uint8:
				got = uint256.NewInt(uint64(v)).Dec()
			case uint16:
				got = uint256.NewInt(uint64(v)).Dec()
			case uint32:
				got = uint256.NewInt(uint64(v)).Dec()
			case uint64:
				got = uint256.NewInt(v).Dec()
			case *uint256.Int:
				got = v.Dec()
			default:
				t.Fatalf("unexpected decoded type %T", dec)
			}
			if got != tc.value {
				t.Errorf("round trip mismatch: %s != %s", got, tc.value)
			}
		})
	}
}

func TestEncodeBool(t *testing.T) {
	t.Run("true round-trips", func(t *testing.T) {
		enc, err := EncodePure("true", ParseTypeTag("bool"))
		if err != nil {
			t.Fatalf("EncodePure: %v", err)
		}
		if !bytes.Equal(enc, []byte{1}) {
			t.Errorf("Expected [1], got %v", enc)
		}
		dec, err := DecodeReturn(enc, ParseTypeTag("bool"))
		if err != nil {
			t.Fatalf("DecodeReturn: %v", err)
		}
		if dec.(bool) != true {
			t.Error("Expected true")
		}
	})

	t.Run("false round-trips", func(t *testing.T) {
		enc, err := EncodePure("false", ParseTypeTag("bool"))
		if err != nil {
			t.Fatalf("EncodePure: %v", err)
		}
		if !bytes.Equal(enc, []byte{0}) {
			t.Errorf("Expected [0], got %v", enc)
		}
		dec, err := DecodeReturn(enc, ParseTypeTag("bool"))
		if err != nil {
			t.Fatalf("DecodeReturn: %v", err)
		}
		if dec.(bool) != false {
			t.Error("Expected false")
		}
	})
}

func TestEncodeAddress(t *testing.T) {
	t.Run("encodes 32-byte canonical form", func(t *testing.T) {
		enc, err := EncodePure("0xAB", ParseTypeTag("address"))
		if err != nil {
			t.Fatalf("EncodePure: %v", err)
		}
		if len(enc) != AddressLength {
			t.Fatalf("Expected 32 bytes, got %d", len(enc))
		}
		if enc[31] != 0xab {
			t.Errorf("Expected last byte 0xab, got %x", enc[31])
		}
	})

	t.Run("decodes back to canonical hex", func(t *testing.T) {
		enc, _ := EncodePure("0xAB", ParseTypeTag("address"))
		dec, err := DecodeReturn(enc, ParseTypeTag("address"))
		if err != nil {
			t.Fatalf("DecodeReturn: %v", err)
		}
		want := "0x00000000000000000000000000000000000000000000000000000000000000ab"
		if dec.(string) != want {
			t.Errorf("Expected %s, got %s", want, dec)
		}
	})

	t.Run("malformed address fails with InvalidAddressError", func(t *testing.T) {
		_, err := EncodePure("nope", ParseTypeTag("address"))
		var invalid *InvalidAddressError
		if !errors.As(err, &invalid) {
			t.Fatalf("Expected InvalidAddressError, got %v", err)
		}
	})
}

func TestEncodeVector(t *testing.T) {
	t.Run("json array of u8", func(t *testing.T) {
		enc, err := EncodePure("[1,2,3]", ParseTypeTag("vector<u8>"))
		if err != nil {
			t.Fatalf("EncodePure: %v", err)
		}
		if !bytes.Equal(enc, []byte{3, 1, 2, 3}) {
			t.Errorf("Expected [3 1 2 3], got %v", enc)
		}
	})

	t.Run("comma-separated list", func(t *testing.T) {
		enc, err := EncodePure("1, 2, 3", ParseTypeTag("vector<u8>"))
		if err != nil {
			t.Fatalf("EncodePure: %v", err)
		}
		if !bytes.Equal(enc, []byte{3, 1, 2, 3}) {
			t.Errorf("Expected [3 1 2 3], got %v", enc)
		}
	})

	t.Run("nested vectors", func(t *testing.T) {
		enc, err := EncodePure("[[1,2],[3]]", ParseTypeTag("vector<vector<u8>>"))
		if err != nil {
			t.Fatalf("EncodePure: %v", err)
		}
		want := []byte{2, 2, 1, 2, 1, 3}
		if !bytes.Equal(enc, want) {
			t.Errorf("Expected %v, got %v", want, enc)
		}
	})

	t.Run("round-trips through decode", func(t *testing.T) {
		tag := ParseTypeTag("vector<u64>")
		enc, err := EncodePure("[10, 20]", tag)
		if err != nil {
			t.Fatalf("EncodePure: %v", err)
		}
		dec, err := DecodeReturn(enc, tag)
		if err != nil {
			t.Fatalf("DecodeReturn: %v", err)
		}
		vals := dec.([]any)
		if len(vals) != 2 || vals[0].(uint64) != 10 || vals[1].(uint64) != 20 {
			t.Errorf("Expected [10 20], got %v", vals)
		}
	})

	t.Run("bad element fails", func(t *testing.T) {
		if _, err := EncodePure("[1, nope]", ParseTypeTag("vector<u8>")); err == nil {
			t.Error("Expected error for non-numeric element")
		}
	})
}

func TestStringFallback(t *testing.T) {
	// The fallback is a deliberate escape hatch for loosely typed legacy
	// literals. It is a last resort: well-typed arguments should never
	// lean on it.
	t.Run("unknown type encodes as length-prefixed utf-8", func(t *testing.T) {
		enc, err := EncodePure("hello", ParseTypeTag("mystery"))
		if err != nil {
			t.Fatalf("EncodePure: %v", err)
		}
		want := append([]byte{5}, []byte("hello")...)
		if !bytes.Equal(enc, want) {
			t.Errorf("Expected %v, got %v", want, enc)
		}
	})

	t.Run("struct-typed value without reference marker uses the fallback", func(t *testing.T) {
		enc, err := EncodePure("hi", ParseTypeTag("0x1::string::String"))
		if err != nil {
			t.Fatalf("EncodePure: %v", err)
		}
		if !bytes.Equal(enc, append([]byte{2}, []byte("hi")...)) {
			t.Errorf("unexpected encoding %v", enc)
		}
	})

	t.Run("fallback round-trips through decode", func(t *testing.T) {
		tag := ParseTypeTag("mystery")
		enc, _ := EncodePure("last resort", tag)
		dec, err := DecodeReturn(enc, tag)
		if err != nil {
			t.Fatalf("DecodeReturn: %v", err)
		}
		if dec.(string) != "last resort" {
			t.Errorf("Expected %q, got %q", "last resort", dec)
		}
	})
}

func TestEncodeReferenceTypes(t *testing.T) {
	t.Run("reference types have no pure encoding", func(t *testing.T) {
		if _, err := EncodePure("0x1", ParseTypeTag("&0x2::coin::Coin")); err == nil {
			t.Error("Expected error encoding a reference type as pure bytes")
		}
	})
}

func TestDecodeReturnErrors(t *testing.T) {
	t.Run("short buffer fails", func(t *testing.T) {
		if _, err := DecodeReturn([]byte{1, 2}, ParseTypeTag("u64")); err == nil {
			t.Error("Expected error for short buffer")
		}
	})

	t.Run("trailing bytes fail", func(t *testing.T) {
		if _, err := DecodeReturn([]byte{1, 0, 0, 0, 0, 0, 0, 0, 9}, ParseTypeTag("u64")); err == nil {
			t.Error("Expected error for trailing bytes")
		}
	})

	t.Run("vector length beyond the buffer fails", func(t *testing.T) {
		// A corrupt response can declare an absurd element count; it must
		// surface as an error, never an allocation of that size.
		raw := appendULEB128(nil, 1<<62)
		var encErr *EncodingError
		if _, err := DecodeReturn(raw, ParseTypeTag("vector<u8>")); !errors.As(err, &encErr) {
			t.Errorf("Expected EncodingError for oversized vector length, got %v", err)
		}
	})

	t.Run("truncated vector fails", func(t *testing.T) {
		raw := append(appendULEB128(nil, 5), 1, 2)
		if _, err := DecodeReturn(raw, ParseTypeTag("vector<u8>")); err == nil {
			t.Error("Expected error for truncated vector")
		}
	})
}

func TestULEB128(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20}
	for _, v := range cases {
		enc := appendULEB128(nil, v)
		got, n, err := readULEB128(enc)
		if err != nil {
			t.Fatalf("readULEB128(%d): %v", v, err)
		}
		if got != v || n != len(enc) {
			t.Errorf("round trip of %d: got %d (%d bytes of %d)", v, got, n, len(enc))
		}
	}
}
