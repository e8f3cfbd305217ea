package rec

import "fmt"

// Bridging between Value and the plain-Go domain produced and consumed by
// encoding/json and yaml.v3. Primitive kinds map directly; a nested record
// has no plain-Go analog, so it travels as a single-key marker object:
//
//	{"$rec": {"name": ..., "attrs": [[name, type, default], ...], "values": [...]}}
//
// which FromGo recognizes and ToGo emits, giving nested records a lossless
// round-trip through JSON and YAML documents.

const recMarker = "$rec"

// FromGo converts a plain Go value to a Value: nil to absent, booleans,
// strings, and numeric kinds to their tags, []any elementwise to a
// sequence, and marker objects to nested records. A Value passes through
// unchanged. Any other type, unmarked maps included, is an error.
func FromGo(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Absent(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return Str(x), nil
	case float64:
		return Num(x), nil
	case float32:
		return Num(float64(x)), nil
	case int:
		return Num(float64(x)), nil
	case int64:
		return Num(float64(x)), nil
	case uint64:
		return Num(float64(x)), nil
	case []any:
		items := make([]Value, len(x))
		for i, elem := range x {
			ev, err := FromGo(elem)
			if err != nil {
				return Value{}, fmt.Errorf("sequence[%d]: %w", i, err)
			}
			items[i] = ev
		}
		return List(items...), nil
	case []Value:
		return List(x...), nil
	case map[string]any:
		raw, ok := x[recMarker]
		if !ok || len(x) != 1 {
			return Value{}, fmt.Errorf("unsupported mapping value (records use the %q form)", recMarker)
		}
		r, err := recordFromGo(raw)
		if err != nil {
			return Value{}, err
		}
		return Rec(r), nil
	default:
		return Value{}, fmt.Errorf("unsupported value of type %T", v)
	}
}

// ToGo converts a Value to its plain-Go form, the inverse of FromGo:
// absent to nil, primitives to their Go kinds, sequences to []any, and
// records to the marker object.
func ToGo(v Value) any {
	switch v.kind {
	case TypeAbsent:
		return nil
	case TypeBool:
		return v.b
	case TypeNum:
		return v.n
	case TypeStr:
		return v.s
	case TypeList:
		items := make([]any, len(v.seq))
		for i, elem := range v.seq {
			items[i] = ToGo(elem)
		}
		return items
	case TypeRec:
		return map[string]any{recMarker: recordToGo(*v.rec)}
	default:
		return nil
	}
}

func recordToGo(r Record) map[string]any {
	attrs := make([]any, 0, r.schema.Len())
	for _, a := range r.schema.attrs {
		attrs = append(attrs, []any{a.Name, a.Type.String(), ToGo(a.Default)})
	}
	values := make([]any, len(r.slots))
	for i, v := range r.slots {
		values[i] = ToGo(v)
	}
	return map[string]any{
		"name":   r.schema.name,
		"attrs":  attrs,
		"values": values,
	}
}

func recordFromGo(raw any) (Record, error) {
	doc, ok := raw.(map[string]any)
	if !ok {
		return Record{}, fmt.Errorf("%s payload is %T, want mapping", recMarker, raw)
	}
	name, _ := doc["name"].(string)
	rawAttrs, ok := doc["attrs"].([]any)
	if !ok {
		return Record{}, fmt.Errorf("%s %q: attrs missing or not a sequence", recMarker, name)
	}
	attrs := make([]Attr, 0, len(rawAttrs))
	for i, ra := range rawAttrs {
		tuple, ok := ra.([]any)
		if !ok || len(tuple) < 1 || len(tuple) > 3 {
			return Record{}, fmt.Errorf("%s %q: attrs[%d] is not a [name, type, default] tuple", recMarker, name, i)
		}
		attrName, ok := tuple[0].(string)
		if !ok {
			return Record{}, fmt.Errorf("%s %q: attrs[%d] name is %T, want string", recMarker, name, i, tuple[0])
		}
		typ := TypeUnset
		if len(tuple) > 1 {
			code, ok := tuple[1].(string)
			if !ok {
				return Record{}, fmt.Errorf("%s %q: attrs[%d] type is %T, want string", recMarker, name, i, tuple[1])
			}
			typ, _ = ParseType(code)
		}
		def := Absent()
		if len(tuple) > 2 {
			dv, err := FromGo(tuple[2])
			if err != nil {
				return Record{}, fmt.Errorf("%s %q: attrs[%d] default: %w", recMarker, name, i, err)
			}
			def = dv
		}
		attrs = append(attrs, NewAttr(attrName, typ, def))
	}
	schema, err := NewSchema(name, attrs)
	if err != nil {
		return Record{}, err
	}
	rawValues, ok := doc["values"].([]any)
	if !ok {
		return Record{}, fmt.Errorf("%s %q: values missing or not a sequence", recMarker, name)
	}
	slots := make([]Value, len(rawValues))
	for i, rv := range rawValues {
		v, err := FromGo(rv)
		if err != nil {
			return Record{}, fmt.Errorf("%s %q: values[%d]: %w", recMarker, name, i, err)
		}
		slots[i] = v
	}
	r, err := FromSlots(schema, slots)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", recMarker, err)
	}
	return r, nil
}
