package rec

import "fmt"

// Value resolution and the copy-on-write accessors.
//
// Reads resolve through a fixed precedence chain, first defined value wins:
//
//	1. the value stored in the attribute's slot
//	2. the call-site default (GetOr)
//	3. the schema's declared default (skipped by Stored)
//	4. the absent marker
//
// with one exception: a sequence-typed attribute that falls all the way
// through resolves to the empty sequence, never to absent.
//
// Writes are Set and Unset only. Set always writes, including writes of the
// absent marker, and validates against the declared type; Unset clears the
// slot unconditionally, bypassing validation. There is no unified
// read-or-write accessor and no "absent argument means read" fallback.

// resolve is the precedence chain over its four inputs. It is the single
// place the order is encoded; every read goes through it.
func resolve(stored, callDefault, schemaDefault Value, listTyped bool) Value {
	switch {
	case stored.Defined():
		return stored
	case callDefault.Defined():
		return callDefault
	case schemaDefault.Defined():
		return schemaDefault
	}
	if listTyped {
		return List()
	}
	return Absent()
}

// Get resolves name through the full chain: stored value, then schema
// default, then absent (or the empty sequence for sequence-typed
// attributes). Fails with ErrUnknownAttr when the schema does not declare
// name.
func (r Record) Get(name string) (Value, error) {
	return r.read(name, Absent(), true)
}

// GetOr resolves like Get with fallback as the call-site default, which
// takes precedence over the schema default but not over a stored value. An
// absent fallback is no fallback.
func (r Record) GetOr(name string, fallback Value) (Value, error) {
	return r.read(name, fallback, true)
}

// Stored resolves name from the stored slot only, excluding schema and
// call-site defaults. Sequence-typed attributes still resolve to the empty
// sequence rather than absent. This is the query engine's view of "only
// explicit values count".
func (r Record) Stored(name string) (Value, error) {
	return r.read(name, Absent(), false)
}

func (r Record) read(name string, callDefault Value, useSchemaDefault bool) (Value, error) {
	i, a, err := r.slot("get", name)
	if err != nil {
		return Value{}, err
	}
	schemaDefault := Absent()
	if useSchemaDefault {
		schemaDefault = a.Default
	}
	return resolve(r.slots[i], callDefault, schemaDefault, a.Type == TypeList), nil
}

// Set returns a new record identical to r except for the one slot, with r
// untouched. When the attribute declares a valid type, the value must
// satisfy it, absent included: setting absent on a typed attribute is
// ErrTypeMismatch (clear slots with Unset instead). Untyped attributes
// accept anything. Fails with ErrSchemaSlot when name addresses the
// reserved schema slot and ErrUnknownAttr when the schema does not declare
// name.
func (r Record) Set(name string, v Value) (Record, error) {
	i, a, err := r.writeSlot("set", name)
	if err != nil {
		return Record{}, err
	}
	if a.Type.Valid() {
		ok, err := a.Type.Match(v)
		if err != nil {
			return Record{}, fmt.Errorf("set %q on %q: %w", name, r.schema.name, err)
		}
		if !ok {
			return Record{}, fmt.Errorf("set %q on %q: %w: %s value for %s attribute",
				name, r.schema.name, ErrTypeMismatch, v.Kind(), a.Type)
		}
	}
	return r.withSlot(i, v), nil
}

// Unset returns a new record with name's slot set to the absent marker,
// unconditionally and without type validation. Sequence-typed attributes
// will still read back as the empty sequence afterwards.
func (r Record) Unset(name string) (Record, error) {
	i, _, err := r.writeSlot("unset", name)
	if err != nil {
		return Record{}, err
	}
	return r.withSlot(i, Absent()), nil
}

// Has reports whether the record's schema declares name. Never errors; the
// zero Record declares nothing.
func (r Record) Has(name string) bool {
	if !r.WellFormed() {
		return false
	}
	_, ok := r.schema.index[name]
	return ok
}

// slot locates name's position and descriptor among the declared
// attributes. Reads of undeclared names, the schema's type name included,
// are ErrUnknownAttr.
func (r Record) slot(op, name string) (int, Attr, error) {
	if !r.WellFormed() {
		return 0, Attr{}, fmt.Errorf("%s %q: %w", op, name, ErrUnknownAttr)
	}
	i, ok := r.schema.index[name]
	if !ok {
		return 0, Attr{}, fmt.Errorf("%s %q on %q: %w", op, name, r.schema.name, ErrUnknownAttr)
	}
	return i, r.schema.attrs[i], nil
}

// writeSlot is slot for the mutating accessors: the schema's own type name
// addresses the reserved schema slot and fails with ErrSchemaSlot, unless
// an attribute shares the name, in which case the attribute wins.
func (r Record) writeSlot(op, name string) (int, Attr, error) {
	if r.WellFormed() {
		if _, ok := r.schema.index[name]; !ok && name == r.schema.name {
			return 0, Attr{}, fmt.Errorf("%s %q: %w", op, name, ErrSchemaSlot)
		}
	}
	return r.slot(op, name)
}

// withSlot is the copy-on-write step: fresh slot slice, one replacement.
func (r Record) withSlot(i int, v Value) Record {
	slots := append([]Value(nil), r.slots...)
	slots[i] = v
	return Record{schema: r.schema, slots: slots}
}
