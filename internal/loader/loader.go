// Package loader reads recordset documents from YAML and JSON files.
//
// A recordset document names a record type, declares its attributes, and
// optionally carries rows:
//
//	name: Axle
//	attrs:
//	  - diameter=num
//	  - length=num=30
//	  - [tags, list]
//	records:
//	  - diameter: 10
//	  - diameter: 12
//	    length: 40
//	options:
//	  strict: true
//
// Attribute specs come in a compact string form (name[=type[=default]])
// and a tuple form ([name, type, default]) whose default keeps its native
// YAML/JSON type. Unknown top-level keys fail the load with a typed
// UnknownFieldError.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/leaprec/pkg/rec"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Set is a named schema plus the records loaded alongside it.
type Set struct {
	Name    string
	Path    string
	Schema  *rec.Schema
	Records []rec.Record
}

// Options adjust how record rows are interpreted.
// Strict rejects unknown row keys and values that do not match the
// attribute's declared type; the default keeps the lenient constructor
// behavior (unknown keys ignored, values stored as given).
type Options struct {
	Strict bool `mapstructure:"strict"`
}

// knownFields are the top-level keys a recordset document may carry.
var knownFields = map[string]bool{
	"name":    true,
	"attrs":   true,
	"records": true,
	"options": true,
}

// Load reads a single recordset document. The format is picked by file
// extension: .yaml and .yml decode as YAML, .json as JSON.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recordset: %w", err)
	}

	var raw map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("invalid YAML: %w", err)}
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("invalid JSON: %w", err)}
		}
	default:
		return nil, &ParseError{Path: path, Err: fmt.Errorf("unsupported extension %q", ext)}
	}

	return parse(path, raw)
}

// LoadAll loads several recordset documents concurrently. Results keep
// the order of paths; the first failure aborts the remaining loads.
func LoadAll(ctx context.Context, paths ...string) ([]*Set, error) {
	sets := make([]*Set, len(paths))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			set, err := Load(path)
			if err != nil {
				return err
			}
			sets[i] = set
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}

func parse(path string, raw map[string]any) (*Set, error) {
	if len(raw) == 0 {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("empty document")}
	}

	for field := range raw {
		if !knownFields[field] {
			return nil, &UnknownFieldError{Path: path, Field: field}
		}
	}

	name, ok := raw["name"].(string)
	if !ok || name == "" {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("missing or invalid \"name\"")}
	}

	attrs, err := parseAttrs(path, raw["attrs"])
	if err != nil {
		return nil, err
	}

	schema, err := rec.NewSchema(name, attrs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	opts, err := parseOptions(path, raw["options"])
	if err != nil {
		return nil, err
	}

	records, err := parseRecords(path, schema, raw["records"], opts)
	if err != nil {
		return nil, err
	}

	return &Set{
		Name:    name,
		Path:    path,
		Schema:  schema,
		Records: records,
	}, nil
}

func parseAttrs(path string, v any) ([]rec.Attr, error) {
	if v == nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("missing \"attrs\"")}
	}
	items, ok := v.([]any)
	if !ok {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("\"attrs\" must be a list")}
	}

	attrs := make([]rec.Attr, 0, len(items))
	for i, item := range items {
		switch spec := item.(type) {
		case string:
			attrs = append(attrs, rec.ParseAttr(spec))
		case []any:
			attr, err := parseAttrTuple(spec)
			if err != nil {
				return nil, &ParseError{Path: path, Err: fmt.Errorf("attrs[%d]: %w", i, err)}
			}
			attrs = append(attrs, attr)
		default:
			return nil, &ParseError{Path: path, Err: fmt.Errorf("attrs[%d]: expected string or tuple, got %T", i, item)}
		}
	}
	return attrs, nil
}

// parseAttrTuple decodes the [name, type, default] form. The default
// keeps its native YAML/JSON type instead of being reparsed from text.
func parseAttrTuple(tuple []any) (rec.Attr, error) {
	if len(tuple) < 1 || len(tuple) > 3 {
		return rec.Attr{}, fmt.Errorf("expected [name], [name, type] or [name, type, default], got %d elements", len(tuple))
	}

	name, ok := tuple[0].(string)
	if !ok {
		return rec.Attr{}, fmt.Errorf("attribute name must be a string, got %T", tuple[0])
	}

	typ := rec.TypeUnset
	if len(tuple) > 1 {
		code, ok := tuple[1].(string)
		if !ok {
			return rec.Attr{}, fmt.Errorf("attribute type must be a string, got %T", tuple[1])
		}
		// Unknown type codes degrade to untyped, matching the compact form.
		typ, _ = rec.ParseType(code)
	}

	def := rec.Absent()
	if len(tuple) > 2 {
		v, err := rec.FromGo(tuple[2])
		if err != nil {
			return rec.Attr{}, fmt.Errorf("attribute %q default: %w", name, err)
		}
		def = v
	}

	return rec.NewAttr(name, typ, def), nil
}

func parseOptions(path string, v any) (Options, error) {
	var opts Options
	if v == nil {
		return opts, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &opts,
		ErrorUnused: true,
	})
	if err != nil {
		return opts, &ParseError{Path: path, Err: err}
	}
	if err := dec.Decode(v); err != nil {
		return opts, &ParseError{Path: path, Err: fmt.Errorf("invalid options: %w", err)}
	}
	return opts, nil
}

func parseRecords(path string, schema *rec.Schema, v any, opts Options) ([]rec.Record, error) {
	if v == nil {
		return nil, nil
	}
	rows, ok := v.([]any)
	if !ok {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("\"records\" must be a list")}
	}

	records := make([]rec.Record, 0, len(rows))
	for i, row := range rows {
		m, ok := row.(map[string]any)
		if !ok {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("records[%d]: expected a mapping, got %T", i, row)}
		}

		fields := make([]rec.Field, 0, len(m))
		for key, rawVal := range m {
			if _, ok := schema.Index(key); !ok {
				if opts.Strict {
					return nil, fmt.Errorf("%s: records[%d]: %q: %w", path, i, key, rec.ErrUnknownAttr)
				}
				continue
			}

			val, err := rec.FromGo(rawVal)
			if err != nil {
				return nil, &ParseError{Path: path, Err: fmt.Errorf("records[%d]: %q: %w", i, key, err)}
			}
			if opts.Strict {
				if err := checkType(schema, key, val); err != nil {
					return nil, fmt.Errorf("%s: records[%d]: %w", path, i, err)
				}
			}
			fields = append(fields, rec.F(key, val))
		}

		record, err := rec.New(schema, fields...)
		if err != nil {
			return nil, fmt.Errorf("%s: records[%d]: %w", path, i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func checkType(schema *rec.Schema, name string, v rec.Value) error {
	a, ok := schema.Attr(name)
	if !ok {
		return fmt.Errorf("%q: %w", name, rec.ErrUnknownAttr)
	}
	if !a.Type.Valid() {
		return nil
	}
	match, err := a.Type.Match(v)
	if err != nil {
		return fmt.Errorf("%q: %w", name, err)
	}
	if !match {
		return fmt.Errorf("%q: %w: %s value for %s attribute", name, rec.ErrTypeMismatch, v.Kind(), a.Type)
	}
	return nil
}
