package ptb

import (
	"strings"
)

// RefKind marks a declared type as a reference.
type RefKind uint8

const (
	// RefNone is a plain (owned) type.
	RefNone RefKind = iota

	// RefShared is a read reference (&T).
	RefShared

	// RefMutable is a write reference (&mut T).
	RefMutable
)

// TypeKind identifies the base shape of a declared type.
type TypeKind uint8

const (
	// TypeUnknown is any type outside the closed primitive/struct set.
	// Unknown values encode with the permissive string fallback.
	TypeUnknown TypeKind = iota

	TypeU8
	TypeU16
	TypeU32
	TypeU64
	TypeU128
	TypeU256
	TypeBool
	TypeAddress
	TypeVector
	TypeStruct
)

// TypeTag is a parsed declared type: an unsigned word, bool, address,
// vector<T>, or a fully qualified struct, optionally behind a reference
// marker. The zero value is TypeUnknown with empty raw text.
type TypeTag struct {
	Ref    RefKind
	Kind   TypeKind
	Elem   *TypeTag   // vector element, set when Kind == TypeVector
	Struct *StructTag // set when Kind == TypeStruct
	Raw    string     // original text without the reference marker
}

// StructTag is a fully qualified struct reference:
// packageAddress::module::name[<typeParams>].
type StructTag struct {
	Package    Address
	Module     string
	Name       string
	TypeParams []TypeTag
}

// ParseTypeTag parses a declared type string. Parsing is total: text that
// does not match the closed type grammar yields TypeUnknown rather than an
// error, so loosely typed legacy literals keep flowing through the string
// fallback encoding.
func ParseTypeTag(s string) TypeTag {
	text := strings.TrimSpace(s)

	ref := RefNone
	if strings.HasPrefix(text, "&mut") {
		ref = RefMutable
		text = strings.TrimSpace(text[len("&mut"):])
	} else if strings.HasPrefix(text, "&") {
		ref = RefShared
		text = strings.TrimSpace(text[1:])
	}

	tag := parseBaseType(text)
	tag.Ref = ref
	return tag
}

func parseBaseType(text string) TypeTag {
	switch text {
	case "u8":
		return TypeTag{Kind: TypeU8, Raw: text}
	case "u16":
		return TypeTag{Kind: TypeU16, Raw: text}
	case "u32":
		return TypeTag{Kind: TypeU32, Raw: text}
	case "u64":
		return TypeTag{Kind: TypeU64, Raw: text}
	case "u128":
		return TypeTag{Kind: TypeU128, Raw: text}
	case "u256":
		return TypeTag{Kind: TypeU256, Raw: text}
	case "bool":
		return TypeTag{Kind: TypeBool, Raw: text}
	case "address":
		return TypeTag{Kind: TypeAddress, Raw: text}
	}

	if strings.HasPrefix(text, "vector<") && strings.HasSuffix(text, ">") {
		elem := ParseTypeTag(text[len("vector<") : len(text)-1])
		return TypeTag{Kind: TypeVector, Elem: &elem, Raw: text}
	}

	if strings.Contains(text, "::") {
		if st, ok := parseStructTag(text); ok {
			return TypeTag{Kind: TypeStruct, Struct: &st, Raw: text}
		}
	}

	return TypeTag{Kind: TypeUnknown, Raw: text}
}

// parseStructTag parses packageAddress::module::name[<typeParams>].
func parseStructTag(text string) (StructTag, bool) {
	base := text
	var params []TypeTag

	if open := strings.Index(text, "<"); open >= 0 {
		if !strings.HasSuffix(text, ">") {
			return StructTag{}, false
		}
		base = text[:open]
		for _, p := range splitTopLevel(text[open+1:len(text)-1], ',') {
			params = append(params, ParseTypeTag(p))
		}
	}

	parts := strings.Split(base, "::")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return StructTag{}, false
	}

	pkg, err := ParseAddress(parts[0])
	if err != nil {
		return StructTag{}, false
	}

	return StructTag{
		Package:    pkg,
		Module:     strings.TrimSpace(parts[1]),
		Name:       strings.TrimSpace(parts[2]),
		TypeParams: params,
	}, true
}

// splitTopLevel splits s on sep, ignoring separators nested inside <...>.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case sep:
			if depth == 0 {
				if part := strings.TrimSpace(s[start:i]); part != "" {
					parts = append(parts, part)
				}
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" {
		parts = append(parts, tail)
	}
	return parts
}

// IsObject reports whether an argument declared with this type is an object
// reference. The reference marker is the only signal used for this decision.
func (t TypeTag) IsObject() bool {
	return t.Ref != RefNone
}

// SameStruct reports whether both tags name the same module and struct,
// ignoring the package address and type parameters.
func (t TypeTag) SameStruct(other TypeTag) bool {
	if t.Kind != TypeStruct || other.Kind != TypeStruct {
		return false
	}
	return t.Struct.Module == other.Struct.Module && t.Struct.Name == other.Struct.Name
}

// String reconstructs the declared type text in canonical form.
func (t TypeTag) String() string {
	var prefix string
	switch t.Ref {
	case RefShared:
		prefix = "&"
	case RefMutable:
		prefix = "&mut "
	}

	switch t.Kind {
	case TypeU8:
		return prefix + "u8"
	case TypeU16:
		return prefix + "u16"
	case TypeU32:
		return prefix + "u32"
	case TypeU64:
		return prefix + "u64"
	case TypeU128:
		return prefix + "u128"
	case TypeU256:
		return prefix + "u256"
	case TypeBool:
		return prefix + "bool"
	case TypeAddress:
		return prefix + "address"
	case TypeVector:
		return prefix + "vector<" + t.Elem.String() + ">"
	case TypeStruct:
		return prefix + t.Struct.String()
	default:
		return prefix + t.Raw
	}
}

// String reconstructs the canonical struct tag text.
func (st StructTag) String() string {
	s := st.Package.Hex() + "::" + st.Module + "::" + st.Name
	if len(st.TypeParams) > 0 {
		params := make([]string, len(st.TypeParams))
		for i, p := range st.TypeParams {
			params[i] = p.String()
		}
		s += "<" + strings.Join(params, ", ") + ">"
	}
	return s
}
