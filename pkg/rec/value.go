package rec

import (
	"strconv"
	"strings"
)

// Value is an immutable tagged union over the six kinds: string, number,
// boolean, sequence of Value, the absent marker, and a nested Record. The
// zero Value is the absent marker.
type Value struct {
	kind Type
	b    bool
	n    float64
	s    string
	seq  []Value
	rec  *Record
}

// Absent returns the absent marker, the sentinel for "no value". It is
// distinct from every defined value, including empty strings and empty
// sequences.
func Absent() Value { return Value{} }

// Str returns a string value.
func Str(s string) Value { return Value{kind: TypeStr, s: s} }

// Num returns a number value. A single numeric kind covers integers and
// floats; integral values format without a decimal point.
func Num(n float64) Value { return Value{kind: TypeNum, n: n} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: TypeBool, b: b} }

// List returns a sequence value holding the given items. The items are
// copied, so callers cannot alias the sequence afterwards.
func List(items ...Value) Value {
	seq := make([]Value, len(items))
	copy(seq, items)
	return Value{kind: TypeList, seq: seq}
}

// Rec returns a record value. Records are immutable, so the value shares
// the record rather than copying its slots.
func Rec(r Record) Value { return Value{kind: TypeRec, rec: &r} }

// Kind returns the value's tag.
func (v Value) Kind() Type { return v.kind }

// IsAbsent reports whether v is the absent marker.
func (v Value) IsAbsent() bool { return v.kind == TypeAbsent }

// Defined reports whether v is anything other than the absent marker.
func (v Value) Defined() bool { return v.kind != TypeAbsent }

// AsStr returns the string payload and whether v is a string.
func (v Value) AsStr() (string, bool) {
	return v.s, v.kind == TypeStr
}

// AsNum returns the numeric payload and whether v is a number.
func (v Value) AsNum() (float64, bool) {
	return v.n, v.kind == TypeNum
}

// AsBool returns the boolean payload and whether v is a boolean.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == TypeBool
}

// AsList returns a copy of the sequence payload and whether v is a
// sequence.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != TypeList {
		return nil, false
	}
	out := make([]Value, len(v.seq))
	copy(out, v.seq)
	return out, true
}

// AsRec returns the record payload and whether v is a record.
func (v Value) AsRec() (Record, bool) {
	if v.kind != TypeRec {
		return Record{}, false
	}
	return *v.rec, true
}

// Len returns the element count for sequences and 0 for every other kind.
func (v Value) Len() int {
	if v.kind != TypeList {
		return 0
	}
	return len(v.seq)
}

// Index returns the i'th element of a sequence value. It panics when v is
// not a sequence or i is out of range, matching slice indexing.
func (v Value) Index(i int) Value {
	if v.kind != TypeList {
		panic("rec: Index on non-sequence value")
	}
	return v.seq[i]
}

// Equal reports deep structural equality. Kinds must match exactly: the
// number 1 does not equal the string "1", and absent equals only absent.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case TypeAbsent:
		return true
	case TypeBool:
		return v.b == o.b
	case TypeNum:
		return v.n == o.n
	case TypeStr:
		return v.s == o.s
	case TypeList:
		if len(v.seq) != len(o.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(o.seq[i]) {
				return false
			}
		}
		return true
	case TypeRec:
		return v.rec.Equal(*o.rec)
	default:
		return false
	}
}

// Compare imposes a total order for sorting: values order first by kind
// rank (absent < bool < number < string < list < record), then within a
// kind. Booleans order false before true; sequences compare elementwise
// then by length; records compare by schema name, then slotwise. Returns
// -1, 0, or 1.
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		if v.kind < o.kind {
			return -1
		}
		return 1
	}
	switch v.kind {
	case TypeAbsent:
		return 0
	case TypeBool:
		switch {
		case v.b == o.b:
			return 0
		case !v.b:
			return -1
		}
		return 1
	case TypeNum:
		switch {
		case v.n < o.n:
			return -1
		case v.n > o.n:
			return 1
		}
		return 0
	case TypeStr:
		return strings.Compare(v.s, o.s)
	case TypeList:
		return compareSeqs(v.seq, o.seq)
	case TypeRec:
		return v.rec.compare(*o.rec)
	default:
		return 0
	}
}

func compareSeqs(a, b []Value) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// String renders a display form: absent as "absent", numbers without
// trailing zeros, sequences as "[a, b]", records compactly as
// "Name{v1, v2}". Dump produces the full multi-line record form.
func (v Value) String() string {
	switch v.kind {
	case TypeAbsent:
		return "absent"
	case TypeBool:
		return strconv.FormatBool(v.b)
	case TypeNum:
		return formatNum(v.n)
	case TypeStr:
		return v.s
	case TypeList:
		parts := make([]string, len(v.seq))
		for i, item := range v.seq {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case TypeRec:
		return v.rec.shortString()
	default:
		return "<invalid>"
	}
}

func formatNum(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
