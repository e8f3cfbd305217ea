package rec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchema(t *testing.T) {
	t.Run("no attributes is a missing specification", func(t *testing.T) {
		_, err := NewSchema("Axle", nil)
		assert.ErrorIs(t, err, ErrMissingSpec)

		_, err = NewSchema("Axle", []Attr{})
		assert.ErrorIs(t, err, ErrMissingSpec)
	})

	t.Run("order and lookup", func(t *testing.T) {
		s, err := NewSchema("Axle", []Attr{
			ParseAttr("diameter=num"),
			ParseAttr("length=num=30"),
			ParseAttr("note"),
		})
		require.NoError(t, err)

		assert.Equal(t, "Axle", s.Name())
		assert.Equal(t, 3, s.Len())

		i, ok := s.Index("length")
		assert.True(t, ok)
		assert.Equal(t, 1, i)

		a, ok := s.Attr("length")
		assert.True(t, ok)
		assert.Equal(t, TypeNum, a.Type)
		assert.True(t, Num(30).Equal(a.Default))

		_, ok = s.Index("missing")
		assert.False(t, ok)
	})

	t.Run("duplicate names keep the first occurrence", func(t *testing.T) {
		s, err := NewSchema("Dup", []Attr{
			ParseAttr("x=num=1"),
			ParseAttr("x=str"),
		})
		require.NoError(t, err)

		i, ok := s.Index("x")
		assert.True(t, ok)
		assert.Equal(t, 0, i)
		a, _ := s.Attr("x")
		assert.Equal(t, TypeNum, a.Type)
	})

	t.Run("attrs are copied both ways", func(t *testing.T) {
		in := []Attr{ParseAttr("x=num")}
		s, err := NewSchema("P", in)
		require.NoError(t, err)

		in[0].Name = "mutated"
		a, ok := s.Attr("x")
		assert.True(t, ok, "schema must not alias the caller's slice")
		assert.Equal(t, "x", a.Name)

		out := s.Attrs()
		out[0].Name = "mutated"
		a, _ = s.Attr("x")
		assert.Equal(t, "x", a.Name, "Attrs must return a copy")
	})
}

func TestParseSchema(t *testing.T) {
	s, err := ParseSchema("Axle", "diameter=num", "length=num=30")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	_, err = ParseSchema("Empty")
	assert.ErrorIs(t, err, ErrMissingSpec)
}

func TestSchemaOf(t *testing.T) {
	s, err := ParseSchema("Axle", "diameter=num")
	require.NoError(t, err)
	r, err := New(s)
	require.NoError(t, err)

	got, err := SchemaOf(r)
	require.NoError(t, err)
	assert.Same(t, s, got, "the schema is shared, never rebuilt")

	_, err = SchemaOf(Record{})
	assert.ErrorIs(t, err, ErrMissingSpec)
}
