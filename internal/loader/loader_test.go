package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leaprec/pkg/rec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDoc writes a recordset document into a temp dir and returns its path.
func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeDoc(t, "axles.yaml", `
name: Axle
attrs:
  - diameter=num
  - length=num=30
  - [tags, list]
  - note
records:
  - diameter: 10
  - diameter: 12
    length: 40
    tags: [front, rear]
`)

	set, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Axle", set.Name)
	assert.Equal(t, path, set.Path)
	require.NotNil(t, set.Schema)
	assert.Equal(t, 4, set.Schema.Len())

	length, ok := set.Schema.Attr("length")
	require.True(t, ok)
	assert.Equal(t, rec.TypeNum, length.Type)
	assert.True(t, length.Default.Equal(rec.Num(30)))

	tags, ok := set.Schema.Attr("tags")
	require.True(t, ok)
	assert.Equal(t, rec.TypeList, tags.Type)
	assert.True(t, tags.Default.Equal(rec.List()))

	require.Len(t, set.Records, 2)

	d, err := set.Records[0].Stored("diameter")
	require.NoError(t, err)
	assert.True(t, d.Equal(rec.Num(10)))

	// Unstored length falls back to the schema default through Get.
	l, err := set.Records[0].Get("length")
	require.NoError(t, err)
	assert.True(t, l.Equal(rec.Num(30)))

	tagsVal, err := set.Records[1].Stored("tags")
	require.NoError(t, err)
	assert.True(t, tagsVal.Equal(rec.List(rec.Str("front"), rec.Str("rear"))))
}

func TestLoadJSON(t *testing.T) {
	path := writeDoc(t, "wheels.json", `{
  "name": "Wheel",
  "attrs": ["radius=num", ["spokes", "num", 32]],
  "records": [{"radius": 5}, {"radius": 7, "spokes": 36}]
}`)

	set, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Wheel", set.Name)
	require.Len(t, set.Records, 2)

	spokes, err := set.Records[1].Stored("spokes")
	require.NoError(t, err)
	assert.True(t, spokes.Equal(rec.Num(36)))

	// Tuple default decoded from native JSON number.
	a, ok := set.Schema.Attr("spokes")
	require.True(t, ok)
	assert.True(t, a.Default.Equal(rec.Num(32)))
}

func TestLoadAttrTuples(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		wantType    rec.Type
		wantDefault rec.Value
	}{
		{
			name:        "name only",
			doc:         "name: T\nattrs:\n  - [note]\n",
			wantType:    rec.TypeUnset,
			wantDefault: rec.Absent(),
		},
		{
			name:        "name and type",
			doc:         "name: T\nattrs:\n  - [note, str]\n",
			wantType:    rec.TypeStr,
			wantDefault: rec.Absent(),
		},
		{
			name:        "unknown type degrades to untyped",
			doc:         "name: T\nattrs:\n  - [note, widget]\n",
			wantType:    rec.TypeUnset,
			wantDefault: rec.Absent(),
		},
		{
			name:        "list default keeps native shape",
			doc:         "name: T\nattrs:\n  - [note, list, [a, b]]\n",
			wantType:    rec.TypeList,
			wantDefault: rec.List(rec.Str("a"), rec.Str("b")),
		},
		{
			name:        "mismatched default normalizes away",
			doc:         "name: T\nattrs:\n  - [note, num, oops]\n",
			wantType:    rec.TypeNum,
			wantDefault: rec.Absent(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Load(writeDoc(t, "t.yaml", tt.doc))
			require.NoError(t, err)

			a, ok := set.Schema.Attr("note")
			require.True(t, ok)
			assert.Equal(t, tt.wantType, a.Type)
			assert.True(t, a.Default.Equal(tt.wantDefault),
				"default = %s, want %s", a.Default, tt.wantDefault)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		doc      string
		wantErr  string
		wantType any
	}{
		{
			name:     "unknown top-level field",
			file:     "t.yaml",
			doc:      "name: T\nattrs: [a]\nextra: 1\n",
			wantErr:  "unknown field",
			wantType: &UnknownFieldError{},
		},
		{
			name:     "missing name",
			file:     "t.yaml",
			doc:      "attrs: [a]\n",
			wantErr:  "missing or invalid \"name\"",
			wantType: &ParseError{},
		},
		{
			name:     "missing attrs",
			file:     "t.yaml",
			doc:      "name: T\n",
			wantErr:  "missing \"attrs\"",
			wantType: &ParseError{},
		},
		{
			name:     "attrs not a list",
			file:     "t.yaml",
			doc:      "name: T\nattrs: 12\n",
			wantErr:  "\"attrs\" must be a list",
			wantType: &ParseError{},
		},
		{
			name:     "empty document",
			file:     "t.yaml",
			doc:      "",
			wantErr:  "empty document",
			wantType: &ParseError{},
		},
		{
			name:     "malformed yaml",
			file:     "t.yaml",
			doc:      "name: [unclosed\n",
			wantErr:  "invalid YAML",
			wantType: &ParseError{},
		},
		{
			name:     "malformed json",
			file:     "t.json",
			doc:      "{\"name\":",
			wantErr:  "invalid JSON",
			wantType: &ParseError{},
		},
		{
			name:     "unsupported extension",
			file:     "t.toml",
			doc:      "name = \"T\"\n",
			wantErr:  "unsupported extension",
			wantType: &ParseError{},
		},
		{
			name:     "unknown option",
			file:     "t.yaml",
			doc:      "name: T\nattrs: [a]\noptions:\n  frobnicate: true\n",
			wantErr:  "invalid options",
			wantType: &ParseError{},
		},
		{
			name:     "row not a mapping",
			file:     "t.yaml",
			doc:      "name: T\nattrs: [a]\nrecords:\n  - 42\n",
			wantErr:  "expected a mapping",
			wantType: &ParseError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeDoc(t, tt.file, tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			switch want := tt.wantType.(type) {
			case *UnknownFieldError:
				assert.True(t, errors.As(err, &want))
			case *ParseError:
				assert.True(t, errors.As(err, &want))
			}
		})
	}
}

func TestLoadStrict(t *testing.T) {
	t.Run("unknown row key fails", func(t *testing.T) {
		path := writeDoc(t, "t.yaml", `
name: T
attrs: [a=num]
records:
  - a: 1
    ghost: 2
options:
  strict: true
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, rec.ErrUnknownAttr)
	})

	t.Run("type mismatch fails", func(t *testing.T) {
		path := writeDoc(t, "t.yaml", `
name: T
attrs: [a=num]
records:
  - a: oops
options:
  strict: true
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, rec.ErrTypeMismatch)
	})

	t.Run("matching rows pass", func(t *testing.T) {
		path := writeDoc(t, "t.yaml", `
name: T
attrs: [a=num, b]
records:
  - a: 1
    b: anything
options:
  strict: true
`)
		set, err := Load(path)
		require.NoError(t, err)
		require.Len(t, set.Records, 1)
	})

	t.Run("lenient drops unknown row keys", func(t *testing.T) {
		path := writeDoc(t, "t.yaml", `
name: T
attrs: [a=num]
records:
  - a: 1
    ghost: 2
`)
		set, err := Load(path)
		require.NoError(t, err)
		require.Len(t, set.Records, 1)

		v, err := set.Records[0].Stored("a")
		require.NoError(t, err)
		assert.True(t, v.Equal(rec.Num(1)))
	})
}

func TestLoadAll(t *testing.T) {
	t.Run("keeps input order", func(t *testing.T) {
		dir := t.TempDir()
		var paths []string
		for _, name := range []string{"one", "two", "three"} {
			path := filepath.Join(dir, name+".yaml")
			doc := "name: " + name + "\nattrs: [a]\n"
			require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
			paths = append(paths, path)
		}

		sets, err := LoadAll(context.Background(), paths...)
		require.NoError(t, err)
		require.Len(t, sets, 3)
		assert.Equal(t, "one", sets[0].Name)
		assert.Equal(t, "two", sets[1].Name)
		assert.Equal(t, "three", sets[2].Name)
	})

	t.Run("first failure aborts", func(t *testing.T) {
		good := writeDoc(t, "good.yaml", "name: T\nattrs: [a]\n")
		_, err := LoadAll(context.Background(), good, filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})

	t.Run("no paths", func(t *testing.T) {
		sets, err := LoadAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, sets)
	})
}
