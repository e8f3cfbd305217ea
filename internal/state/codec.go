package state

import (
	"encoding/json"
	"fmt"

	"github.com/leapstack-labs/leaprec/internal/loader"
	"github.com/leapstack-labs/leaprec/pkg/rec"
)

// setDoc is the stored JSON shape of a recordset: attribute tuples are
// [name, type, default] and rows are positional slot arrays with null for
// absent slots. Nested record values travel in the bridge's marker form.
type setDoc struct {
	Name   string  `json:"name"`
	Attrs  [][]any `json:"attrs"`
	Values [][]any `json:"values"`
}

func encodeSet(set *loader.Set) ([]byte, error) {
	attrs := set.Schema.Attrs()

	doc := setDoc{
		Name:   set.Name,
		Attrs:  make([][]any, len(attrs)),
		Values: make([][]any, len(set.Records)),
	}
	for i, a := range attrs {
		doc.Attrs[i] = []any{a.Name, a.Type.String(), rec.ToGo(a.Default)}
	}
	for i, r := range set.Records {
		row := make([]any, len(attrs))
		for j := range attrs {
			row[j] = rec.ToGo(r.At(j))
		}
		doc.Values[i] = row
	}

	return json.Marshal(doc)
}

func decodeSet(data []byte) (*loader.Set, error) {
	var doc setDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}

	attrs := make([]rec.Attr, 0, len(doc.Attrs))
	for i, tuple := range doc.Attrs {
		if len(tuple) != 3 {
			return nil, fmt.Errorf("attrs[%d]: want a [name, type, default] tuple, got %d elements", i, len(tuple))
		}
		name, ok := tuple[0].(string)
		if !ok {
			return nil, fmt.Errorf("attrs[%d]: name is %T, want string", i, tuple[0])
		}
		code, ok := tuple[1].(string)
		if !ok {
			return nil, fmt.Errorf("attrs[%d]: type is %T, want string", i, tuple[1])
		}
		typ, _ := rec.ParseType(code)
		def, err := rec.FromGo(tuple[2])
		if err != nil {
			return nil, fmt.Errorf("attrs[%d]: default: %w", i, err)
		}
		attrs = append(attrs, rec.NewAttr(name, typ, def))
	}

	schema, err := rec.NewSchema(doc.Name, attrs)
	if err != nil {
		return nil, err
	}

	records := make([]rec.Record, 0, len(doc.Values))
	for i, row := range doc.Values {
		slots := make([]rec.Value, len(row))
		for j, raw := range row {
			v, err := rec.FromGo(raw)
			if err != nil {
				return nil, fmt.Errorf("values[%d][%d]: %w", i, j, err)
			}
			slots[j] = v
		}
		r, err := rec.FromSlots(schema, slots)
		if err != nil {
			return nil, fmt.Errorf("values[%d]: %w", i, err)
		}
		records = append(records, r)
	}

	return &loader.Set{
		Name:    doc.Name,
		Schema:  schema,
		Records: records,
	}, nil
}
