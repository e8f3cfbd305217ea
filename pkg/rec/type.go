package rec

import (
	"fmt"
	"strings"
)

// Type tags one of the six kinds a Value can take. It doubles as an
// attribute's declared type: a schema attribute may carry any of the six
// tags, or TypeUnset when no type was declared. The constant order is the
// sort rank used by Value.Compare.
type Type uint8

const (
	TypeAbsent Type = iota // the absent marker
	TypeBool
	TypeNum // integer or float
	TypeStr
	TypeList
	TypeRec // nested record

	// TypeUnset marks an attribute declared without a type. It is not one
	// of the six value kinds: untyped attributes skip validation entirely.
	TypeUnset
)

// typeCodes are the spellings accepted by ParseType and the compact
// attribute-spec form. Single-character codes and long names are
// interchangeable.
var typeCodes = map[string]Type{
	"s": TypeStr, "str": TypeStr, "string": TypeStr,
	"n": TypeNum, "num": TypeNum, "number": TypeNum,
	"b": TypeBool, "bool": TypeBool, "boolean": TypeBool,
	"l": TypeList, "list": TypeList, "seq": TypeList,
	"a": TypeAbsent, "absent": TypeAbsent, "nil": TypeAbsent,
	"r": TypeRec, "rec": TypeRec, "record": TypeRec,
}

// ParseType maps a type code to its tag, case-insensitively. Unknown codes
// return (TypeUnset, false) rather than an error: the compact attribute-spec
// parser silently drops unrecognized types, and that leniency starts here.
func ParseType(code string) (Type, bool) {
	t, ok := typeCodes[strings.ToLower(code)]
	if !ok {
		return TypeUnset, false
	}
	return t, true
}

// Valid reports whether t is one of the six known tags. TypeUnset and
// out-of-range values are not valid.
func (t Type) Valid() bool {
	return t < TypeUnset
}

// String returns the canonical short code. TypeUnset renders as "any",
// which reads correctly in dumps (untyped attributes accept any value) and
// is not itself a parseable tag, so it round-trips back to TypeUnset.
func (t Type) String() string {
	switch t {
	case TypeAbsent:
		return "absent"
	case TypeBool:
		return "bool"
	case TypeNum:
		return "num"
	case TypeStr:
		return "str"
	case TypeList:
		return "list"
	case TypeRec:
		return "rec"
	case TypeUnset:
		return "any"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Match reports whether v satisfies t. TypeRec additionally requires the
// value's record to be well-formed; TypeAbsent matches exactly the absent
// marker. A tag outside the closed set is a fatal ErrInvalidType, never a
// silent false.
func (t Type) Match(v Value) (bool, error) {
	switch t {
	case TypeAbsent, TypeBool, TypeNum, TypeStr, TypeList:
		return v.kind == t, nil
	case TypeRec:
		if v.kind != TypeRec {
			return false, nil
		}
		return v.rec.WellFormed(), nil
	default:
		return false, fmt.Errorf("match %s: %w", t, ErrInvalidType)
	}
}
