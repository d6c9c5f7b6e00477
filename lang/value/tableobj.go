package value

import "strings"

// TableObj is the heap object backing first-class hash-table literals
// `{ "k": v, ... }`. Keys must be strings (enforced at compile time, per
// spec.md §6.2); storage is the same open-addressing HashMap used for
// globals, instance fields and class method tables.
type TableObj struct {
	ObjHeader
	Entries *HashMap
}

var _ Obj = (*TableObj)(nil)

func NewTableObj() *TableObj {
	return &TableObj{Entries: NewHashMap()}
}

func (t *TableObj) Kind() ObjKind { return ObjTable }

func (t *TableObj) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	t.Entries.Each(func(key *String, val Value) {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteByte('"')
		sb.WriteString(key.Chars)
		sb.WriteString("\": ")
		sb.WriteString(val.String())
	})
	sb.WriteByte('}')
	return sb.String()
}
