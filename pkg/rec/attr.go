package rec

import (
	"strconv"
	"strings"
)

// Attr describes one schema attribute: a name, an optional declared type,
// and an optional default value. Attrs are immutable once part of a schema.
type Attr struct {
	Name    string
	Type    Type
	Default Value
}

// ParseAttr builds an Attr from the compact string form
//
//	name[=type[=default]]
//
// split on "=" at most twice, so a default may itself contain "=". An
// unrecognized type code is silently dropped and stored as TypeUnset; this
// is required compatibility behavior, not an error. A default given in this
// form is re-parsed into the value domain according to the declared type:
// numbers via float parsing, booleans from the literals "true"/"false",
// strings (and untyped attributes) keep the raw text.
func ParseAttr(spec string) Attr {
	parts := strings.SplitN(spec, "=", 3)
	a := Attr{Name: parts[0], Type: TypeUnset}
	if len(parts) > 1 {
		a.Type, _ = ParseType(parts[1])
	}
	def := Absent()
	if len(parts) == 3 {
		def = parseDefault(a.Type, parts[2])
	}
	a.Default = normalizeDefault(a.Type, def)
	return a
}

// NewAttr builds an Attr from the tuple form. The default passes through
// unparsed, which is the only way to declare defaults that have no short
// string form: nested sequences and nested records. It is still subject to
// the same validation as ParseAttr defaults.
func NewAttr(name string, typ Type, def Value) Attr {
	return Attr{Name: name, Type: typ, Default: normalizeDefault(typ, def)}
}

// parseDefault re-parses compact-form default text per the declared type.
// Text that does not parse is kept as a string so that normalizeDefault's
// validation forces it to absent.
func parseDefault(t Type, raw string) Value {
	switch t {
	case TypeNum:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return Num(n)
		}
	case TypeBool:
		switch raw {
		case "true":
			return Bool(true)
		case "false":
			return Bool(false)
		}
	}
	return Str(raw)
}

// normalizeDefault applies the default rules shared by both construction
// forms: sequence- and record-typed attributes with no default get the
// empty sequence; a defined default that fails Match is forced to absent,
// except for sequence-typed attributes, which fall back to the empty
// sequence (sequence-typed attributes never default to absent). Untyped
// attributes carry their default as given.
func normalizeDefault(t Type, def Value) Value {
	if !def.Defined() {
		if t == TypeList || t == TypeRec {
			return List()
		}
		return def
	}
	if !t.Valid() {
		return def
	}
	if ok, err := t.Match(def); err == nil && ok {
		return def
	}
	if t == TypeList {
		return List()
	}
	return Absent()
}
