package rec

import "fmt"

// Schema is the named, ordered attribute list ("table of contents") shared
// by every record built from it. Attribute order is significant and fixed
// for the schema's lifetime. The name-to-slot index is built once here so
// lookups never rescan the attribute list.
//
// Schemas are immutable after construction and safe to share across
// goroutines without locking.
type Schema struct {
	name  string
	attrs []Attr
	index map[string]int
}

// NewSchema builds a schema from normalized attribute descriptors. It fails
// with ErrMissingSpec when no descriptors are supplied. Duplicate attribute
// names are tolerated: the first occurrence wins on lookup and later ones
// are unreachable, matching first-match scan semantics.
func NewSchema(typeName string, attrs []Attr) (*Schema, error) {
	if len(attrs) == 0 {
		return nil, fmt.Errorf("build schema %q: %w", typeName, ErrMissingSpec)
	}
	s := &Schema{
		name:  typeName,
		attrs: append([]Attr(nil), attrs...),
		index: make(map[string]int, len(attrs)),
	}
	for i, a := range s.attrs {
		if _, dup := s.index[a.Name]; !dup {
			s.index[a.Name] = i
		}
	}
	return s, nil
}

// ParseSchema builds a schema from compact attribute-spec strings. It is
// shorthand for ParseAttr over each spec followed by NewSchema.
func ParseSchema(typeName string, specs ...string) (*Schema, error) {
	attrs := make([]Attr, len(specs))
	for i, spec := range specs {
		attrs[i] = ParseAttr(spec)
	}
	return NewSchema(typeName, attrs)
}

// SchemaOf returns the base record's schema. The schema is shared, not
// copied: cloning a record never rebuilds its schema. Fails with
// ErrMissingSpec when the base is not a well-formed record.
func SchemaOf(base Record) (*Schema, error) {
	if !base.WellFormed() {
		return nil, fmt.Errorf("schema from base record: %w", ErrMissingSpec)
	}
	return base.schema, nil
}

// Name returns the schema's type name.
func (s *Schema) Name() string { return s.name }

// Len returns the number of declared attributes.
func (s *Schema) Len() int { return len(s.attrs) }

// Attrs returns a copy of the attribute descriptors in declaration order.
func (s *Schema) Attrs() []Attr {
	return append([]Attr(nil), s.attrs...)
}

// Attr returns the descriptor for name and whether it is declared.
func (s *Schema) Attr(name string) (Attr, bool) {
	i, ok := s.index[name]
	if !ok {
		return Attr{}, false
	}
	return s.attrs[i], true
}

// Index returns name's slot position and whether it is declared.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}
