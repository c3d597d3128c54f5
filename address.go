package ptb

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AddressLength is the byte length of addresses and object ids.
const AddressLength = 32

// addressHexDigits is the canonical hex digit count after the 0x prefix.
const addressHexDigits = AddressLength * 2

// Address is a 32-byte account or object identifier. Its canonical textual
// form is lowercase hex, 0x-prefixed, zero-padded to 64 digits.
type Address [AddressLength]byte

var addressPattern = regexp.MustCompile(`^0[xX][0-9a-fA-F]{1,64}$`)

// ParseAddress parses an address or object id string. Shortened and
// mixed-case forms are accepted and normalized: the input is lowercased and
// left-zero-padded to 64 hex digits.
func ParseAddress(s string) (Address, error) {
	var a Address

	trimmed := strings.TrimSpace(s)
	if !addressPattern.MatchString(trimmed) {
		return a, &InvalidAddressError{Value: s}
	}

	digits := strings.ToLower(trimmed[2:])
	padded := strings.Repeat("0", addressHexDigits-len(digits)) + digits

	b, err := hexutil.Decode("0x" + padded)
	if err != nil {
		return a, &InvalidAddressError{Value: s}
	}
	copy(a[:], b)
	return a, nil
}

// MustParseAddress is like ParseAddress but panics on error.
// Use only with compile-time constant values.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// NormalizeAddress returns the canonical form of an address or object id
// string: lowercase, 0x-prefixed, zero-padded to 64 hex digits. Inputs that
// differ only by case, padding, or prefix casing normalize identically.
func NormalizeAddress(s string) (string, error) {
	a, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return a.Hex(), nil
}

// Hex returns the canonical textual form of the address.
func (a Address) Hex() string {
	return hexutil.Encode(a[:])
}

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte {
	return a[:]
}

// IsZero returns true for the all-zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) String() string {
	return a.Hex()
}
