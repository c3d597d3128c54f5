package ptb

import (
	"errors"
	"testing"
)

func TestParseAddress(t *testing.T) {
	t.Run("canonical form round-trips", func(t *testing.T) {
		in := "0x00000000000000000000000000000000000000000000000000000000000000ab"
		a, err := ParseAddress(in)
		if err != nil {
			t.Fatalf("ParseAddress: %v", err)
		}
		if a.Hex() != in {
			t.Errorf("Expected %s, got %s", in, a.Hex())
		}
	})

	t.Run("short forms are zero-padded", func(t *testing.T) {
		a, err := ParseAddress("0xab")
		if err != nil {
			t.Fatalf("ParseAddress: %v", err)
		}
		want := "0x00000000000000000000000000000000000000000000000000000000000000ab"
		if a.Hex() != want {
			t.Errorf("Expected %s, got %s", want, a.Hex())
		}
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		tooLong := "0x0000000000000000000000000000000000000000000000000000000000000000f"
		for _, in := range []string{"", "0x", "not-an-address", "ab", "0xzz", tooLong} {
			if _, err := ParseAddress(in); err == nil {
				t.Errorf("Expected error for %q", in)
			}
		}
	})

	t.Run("failure is an InvalidAddressError", func(t *testing.T) {
		_, err := ParseAddress("not-an-address")
		var invalid *InvalidAddressError
		if !errors.As(err, &invalid) {
			t.Fatalf("Expected InvalidAddressError, got %v", err)
		}
	})
}

func TestNormalizeAddress(t *testing.T) {
	t.Run("case, padding, and prefix variants normalize identically", func(t *testing.T) {
		variants := []string{
			"0xAB",
			"0xab",
			"0Xab",
			"0x00AB",
			"0x00000000000000000000000000000000000000000000000000000000000000AB",
		}

		first, err := NormalizeAddress(variants[0])
		if err != nil {
			t.Fatalf("NormalizeAddress: %v", err)
		}
		for _, v := range variants[1:] {
			got, err := NormalizeAddress(v)
			if err != nil {
				t.Fatalf("NormalizeAddress(%q): %v", v, err)
			}
			if got != first {
				t.Errorf("NormalizeAddress(%q) = %s, want %s", v, got, first)
			}
		}
	})

	t.Run("output is lowercase and 64 digits", func(t *testing.T) {
		got, err := NormalizeAddress("0xABCDEF")
		if err != nil {
			t.Fatalf("NormalizeAddress: %v", err)
		}
		want := "0x0000000000000000000000000000000000000000000000000000000000abcdef"
		if got != want {
			t.Errorf("Expected %s, got %s", want, got)
		}
	})
}
