package rec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAttr(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want string
		typ  Type
		def  Value
	}{
		{"name only", "diameter", "diameter", TypeUnset, Absent()},
		{"name and type", "diameter=num", "diameter", TypeNum, Absent()},
		{"number default parsed from digits", "length=num=30", "length", TypeNum, Num(30)},
		{"negative number default", "offset=num=-2.5", "offset", TypeNum, Num(-2.5)},
		{"bool default true", "flag=bool=true", "flag", TypeBool, Bool(true)},
		{"bool default false", "flag=b=false", "flag", TypeBool, Bool(false)},
		{"string default kept raw", "label=str=hi", "label", TypeStr, Str("hi")},
		{"default may contain equals", "expr=str=a=b", "expr", TypeStr, Str("a=b")},
		{"unknown type silently dropped", "note=zzz", "note", TypeUnset, Absent()},
		{"unknown type keeps default as string", "note=zzz=hi", "note", TypeUnset, Str("hi")},
		{"untyped default kept as string", "note==hi", "note", TypeUnset, Str("hi")},
		{"unparseable number default forced absent", "length=num=tall", "length", TypeNum, Absent()},
		{"unparseable bool default forced absent", "flag=bool=yes", "flag", TypeBool, Absent()},
		{"list defaults to empty sequence", "tags=list", "tags", TypeList, List()},
		{"list bad default falls back to empty sequence", "tags=list=abc", "tags", TypeList, List()},
		{"record defaults to empty sequence", "wheel=rec", "wheel", TypeRec, List()},
		{"record bad default forced absent", "wheel=rec=abc", "wheel", TypeRec, Absent()},
		{"absent type never carries a default", "gone=absent=x", "gone", TypeAbsent, Absent()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ParseAttr(tt.spec)
			assert.Equal(t, tt.want, a.Name)
			assert.Equal(t, tt.typ, a.Type)
			assert.True(t, tt.def.Equal(a.Default), "default %s, want %s", a.Default, tt.def)
		})
	}
}

func TestNewAttr(t *testing.T) {
	t.Run("tuple default passes through unparsed", func(t *testing.T) {
		def := List(Num(1), List(Str("nested")))
		a := NewAttr("tags", TypeList, def)
		assert.True(t, def.Equal(a.Default))
	})

	t.Run("tuple default still validated", func(t *testing.T) {
		a := NewAttr("length", TypeNum, Str("30"))
		assert.True(t, a.Default.IsAbsent(), "a string default on a num attribute is forced absent")
	})

	t.Run("untyped keeps any default", func(t *testing.T) {
		a := NewAttr("blob", TypeUnset, List(Num(1)))
		assert.True(t, List(Num(1)).Equal(a.Default))
	})

	t.Run("record default on rec attribute", func(t *testing.T) {
		schema, err := ParseSchema("Wheel", "radius=num")
		if err != nil {
			t.Fatal(err)
		}
		w, err := New(schema)
		if err != nil {
			t.Fatal(err)
		}
		a := NewAttr("wheel", TypeRec, Rec(w))
		assert.Equal(t, TypeRec, a.Default.Kind())
	})
}
