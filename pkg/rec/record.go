// Package rec implements a schema-described, immutable record abstraction:
// named record types with a fixed set of attributes, each with an optional
// declared type and default value. Records are constructed sparsely, read
// and updated by attribute name under copy-on-write semantics, validated
// against declared types, and queried, sorted, and grouped in collections.
//
// Every operation is a pure function of its inputs. "Mutations" (Set,
// Unset, Clone) return a new Record and never touch the original, so
// records and schemas may be shared freely across goroutines without
// locking.
package rec

import (
	"fmt"
	"strings"
)

// Record is an immutable instance of a schema: one value slot per declared
// attribute, in schema order. Conceptually the schema occupies position 0
// and the values positions 1..N, which is why Len reports one more than the
// attribute count. The zero Record is not well-formed.
type Record struct {
	schema *Schema
	slots  []Value
}

// Field is one (name, value) pair of the sparse constructor input.
type Field struct {
	Name  string
	Value Value
}

// F is shorthand for building a Field.
func F(name string, v Value) Field {
	return Field{Name: name, Value: v}
}

// Pairs converts the flat alternating form
//
//	name, value, name, value, ...
//
// into fields. Names are Go strings or string Values; values are Values or
// anything FromGo accepts. Pairs whose value is the absent marker are
// discarded during conversion; this applies to the flat form only, since
// a []Field built directly is used as-is. Odd-length input or a non-string
// name is an error.
func Pairs(kv ...any) ([]Field, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("flat name/value sequence has odd length %d", len(kv))
	}
	fields := make([]Field, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		var name string
		switch k := kv[i].(type) {
		case string:
			name = k
		case Value:
			s, ok := k.AsStr()
			if !ok {
				return nil, fmt.Errorf("name at position %d is a %s value, want string", i, k.Kind())
			}
			name = s
		default:
			return nil, fmt.Errorf("name at position %d is %T, want string", i, kv[i])
		}
		v, err := FromGo(kv[i+1])
		if err != nil {
			return nil, fmt.Errorf("value for %q: %w", name, err)
		}
		if v.IsAbsent() {
			continue
		}
		fields = append(fields, Field{Name: name, Value: v})
	}
	return fields, nil
}

// New builds a record: an all-absent slot per schema attribute, then each
// field applied in order. A field whose name the schema does not declare is
// silently ignored, which keeps construction forward-compatible with
// inputs written against newer schemas. Later fields for the same name win.
//
// Construction does not type-validate values; only Set does. Fails with
// ErrMissingSpec on a nil schema.
func New(schema *Schema, fields ...Field) (Record, error) {
	if schema == nil {
		return Record{}, fmt.Errorf("construct record: %w", ErrMissingSpec)
	}
	r := Record{schema: schema, slots: make([]Value, schema.Len())}
	r.apply(fields)
	return r, nil
}

// Clone builds a record from a well-formed base: same schema (shared, not
// rebuilt), slots copied from the base, then fields applied as in New.
// Fails with ErrMissingSpec when the base is not well-formed.
func Clone(base Record, fields ...Field) (Record, error) {
	if !base.WellFormed() {
		return Record{}, fmt.Errorf("clone record: %w", ErrMissingSpec)
	}
	r := Record{schema: base.schema, slots: append([]Value(nil), base.slots...)}
	r.apply(fields)
	return r, nil
}

// FromSlots builds a record directly from positional slot values, bypassing
// name lookup; codecs use it to restore records whose schemas may declare
// the same name twice. The slice is copied and its length must match the
// schema. Like New, it does not type-validate the values.
func FromSlots(schema *Schema, slots []Value) (Record, error) {
	if schema == nil {
		return Record{}, fmt.Errorf("construct record: %w", ErrMissingSpec)
	}
	if len(slots) != schema.Len() {
		return Record{}, fmt.Errorf("construct %q: %d values for %d attributes", schema.name, len(slots), schema.Len())
	}
	return Record{schema: schema, slots: append([]Value(nil), slots...)}, nil
}

// apply writes fields into freshly allocated slots. Only construction may
// call it; records are immutable once returned.
func (r Record) apply(fields []Field) {
	for _, f := range fields {
		if i, ok := r.schema.index[f.Name]; ok {
			r.slots[i] = f.Value
		}
	}
}

// WellFormed reports whether r carries a schema and exactly one slot per
// schema attribute. It never errors; the zero Record is simply false.
func (r Record) WellFormed() bool {
	return r.schema != nil && len(r.slots) == r.schema.Len()
}

// Schema returns the record's schema, or nil for the zero Record.
func (r Record) Schema() *Schema { return r.schema }

// Len returns the record's length: the attribute count plus one for the
// schema slot at position 0.
func (r Record) Len() int {
	if r.schema == nil {
		return 0
	}
	return len(r.slots) + 1
}

// At returns the value stored in slot i (zero-based, schema order), the
// absent marker when i is out of range. It reads the slot as stored, with
// no default resolution.
func (r Record) At(i int) Value {
	if i < 0 || i >= len(r.slots) {
		return Absent()
	}
	return r.slots[i]
}

// Equal reports structural equality: same schema (by identity or by
// name/attribute structure) and equal slot values.
func (r Record) Equal(o Record) bool {
	if r.schema == nil || o.schema == nil {
		return r.schema == nil && o.schema == nil
	}
	if r.schema != o.schema {
		if r.schema.name != o.schema.name || len(r.schema.attrs) != len(o.schema.attrs) {
			return false
		}
		for i, a := range r.schema.attrs {
			b := o.schema.attrs[i]
			if a.Name != b.Name || a.Type != b.Type || !a.Default.Equal(b.Default) {
				return false
			}
		}
	}
	if len(r.slots) != len(o.slots) {
		return false
	}
	for i := range r.slots {
		if !r.slots[i].Equal(o.slots[i]) {
			return false
		}
	}
	return true
}

// compare orders records by schema name, then slotwise, then by slot
// count. Only Value.Compare calls it.
func (r Record) compare(o Record) int {
	if r.schema == nil || o.schema == nil {
		switch {
		case r.schema == nil && o.schema == nil:
			return 0
		case r.schema == nil:
			return -1
		}
		return 1
	}
	if c := strings.Compare(r.schema.name, o.schema.name); c != 0 {
		return c
	}
	return compareSeqs(r.slots, o.slots)
}

// shortString is the compact one-line form used when a record appears as a
// value: the schema name and the slot values, positionally.
func (r Record) shortString() string {
	if !r.WellFormed() {
		return "<record>"
	}
	out := r.schema.name + "{"
	for i, v := range r.slots {
		if i > 0 {
			out += ", "
		}
		out += v.String()
	}
	return out + "}"
}
