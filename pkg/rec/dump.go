package rec

import (
	"fmt"
	"strings"
)

// Dump renders a record in the line-oriented debug form. The first line
// names the schema; each following line is
//
//	<position>: <name> (<type>[: <default>]): <value>
//
// where position counts from 1 (the schema holds position 0). The
// parenthetical is omitted for untyped attributes without a default. Values
// resolve through the full Get chain; an attribute whose resolved value is
// itself a well-formed record is rendered recursively, indented two spaces
// per level. Recursion depth is bounded by the nesting of the data itself.
func Dump(r Record) string {
	var b strings.Builder
	dumpRecord(&b, r, 0)
	return b.String()
}

func dumpRecord(b *strings.Builder, r Record, depth int) {
	pad := strings.Repeat("  ", depth)
	if !r.WellFormed() {
		b.WriteString(pad + "<not a record>\n")
		return
	}
	b.WriteString(pad + r.schema.name + "\n")
	attrPad := strings.Repeat("  ", depth+1)
	for i, a := range r.schema.attrs {
		v := resolve(r.slots[i], Absent(), a.Default, a.Type == TypeList)
		label := dumpLabel(a)
		if nested, ok := v.AsRec(); ok && nested.WellFormed() {
			fmt.Fprintf(b, "%s%d: %s%s:\n", attrPad, i+1, a.Name, label)
			dumpRecord(b, nested, depth+2)
			continue
		}
		fmt.Fprintf(b, "%s%d: %s%s: %s\n", attrPad, i+1, a.Name, label, v)
	}
}

// dumpLabel renders the " (<type>[: <default>])" portion of an attribute
// line, or nothing for an untyped attribute without a default.
func dumpLabel(a Attr) string {
	if a.Type == TypeUnset && !a.Default.Defined() {
		return ""
	}
	if a.Default.Defined() {
		return fmt.Sprintf(" (%s: %s)", a.Type, a.Default)
	}
	return fmt.Sprintf(" (%s)", a.Type)
}
