package rec

import "sort"

// Collection operations over []Record. Collections are plain slices whose
// elements need not share a schema. Every function is pure: inputs are
// never mutated, results that differ from the input are fresh slices, and
// input order is preserved except where sorting or grouping defines it.

// SelectIndexes gathers records positionally, in the order of idxs. There
// is no bounds checking: an out-of-range index panics exactly as slice
// indexing does.
func SelectIndexes(records []Record, idxs []int) []Record {
	out := make([]Record, len(idxs))
	for n, i := range idxs {
		out[n] = records[i]
	}
	return out
}

// SelectDefined keeps records that declare attr and whose stored value is
// defined, schema defaults excluded. Records of schemas that do not
// declare attr are skipped, not an error. A sequence-typed attr always
// counts as defined, since it never resolves to absent at any depth.
func SelectDefined(records []Record, attr string) []Record {
	var out []Record
	for _, r := range records {
		if storedDefined(r, attr) {
			out = append(out, r)
		}
	}
	return out
}

// SelectValue keeps records whose stored value for attr is defined and
// exactly equal to want. Equality is Value.Equal: kinds must match, and
// absent never matches (absent records are excluded before comparison).
func SelectValue(records []Record, attr string, want Value) []Record {
	var out []Record
	for _, r := range records {
		if !storedDefined(r, attr) {
			continue
		}
		v, _ := r.Stored(attr)
		if v.Equal(want) {
			out = append(out, r)
		}
	}
	return out
}

// Cond is one attribute/value predicate for SelectWhere.
type Cond struct {
	Attr  string
	Value Value
}

// SelectWhere applies SelectValue once per condition, each pass filtering
// the previous pass's output: a logical AND across all conditions, with the
// candidate set shrinking as it goes. The order of conditions affects
// performance only, never the result. No conditions returns the input
// unchanged.
func SelectWhere(records []Record, conds ...Cond) []Record {
	out := records
	for _, c := range conds {
		out = SelectValue(out, c.Attr, c.Value)
	}
	return out
}

// Values projects attr's resolved value (full chain, schema defaults
// included) across records, in order. Records whose schema does not
// declare attr yield the absent marker rather than an error.
func Values(records []Record, attr string) []Value {
	return ValuesOr(records, attr, Absent())
}

// ValuesOr projects like Values with fallback as the call-site default:
// records not declaring attr yield fallback, and declared-but-undefined
// attributes resolve through fallback before the schema default.
func ValuesOr(records []Record, attr string, fallback Value) []Value {
	out := make([]Value, len(records))
	for i, r := range records {
		if !r.Has(attr) {
			out[i] = fallback
			continue
		}
		v, _ := r.GetOr(attr, fallback)
		out[i] = v
	}
	return out
}

// SortBy stably sorts records by the natural ordering (Value.Compare) of
// their projected attr values. A slice of length one or less, or one in
// which no record has a defined projected value, is returned unchanged
// rather than sorted. Absent keys order before all defined keys. Sorting
// an already-sorted slice returns the same order.
func SortBy(records []Record, attr string) []Record {
	if len(records) < 2 {
		return records
	}
	keys := Values(records, attr)
	defined := false
	for _, k := range keys {
		if k.Defined() {
			defined = true
			break
		}
	}
	if !defined {
		return records
	}
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return keys[order[a]].Compare(keys[order[b]]) < 0
	})
	out := make([]Record, len(records))
	for i, j := range order {
		out[i] = records[j]
	}
	return out
}

// GroupBy partitions records into one group per distinct defined resolved
// value of attr (full chain, as in Values). Records whose value is
// undefined appear in no group. Groups are returned in first-seen order of
// their key, and membership preserves the records' relative input order.
func GroupBy(records []Record, attr string) [][]Record {
	var (
		keys   []Value
		groups [][]Record
	)
	for _, r := range records {
		if !r.Has(attr) {
			continue
		}
		v, _ := r.Get(attr)
		if !v.Defined() {
			continue
		}
		at := -1
		for i, k := range keys {
			if k.Equal(v) {
				at = i
				break
			}
		}
		if at < 0 {
			keys = append(keys, v)
			groups = append(groups, []Record{r})
			continue
		}
		groups[at] = append(groups[at], r)
	}
	return groups
}

func storedDefined(r Record, attr string) bool {
	if !r.Has(attr) {
		return false
	}
	v, _ := r.Stored(attr)
	return v.Defined()
}
