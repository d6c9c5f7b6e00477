package value

import "fmt"

// String is the heap object backing tansy string values. All Strings are
// interned (see Intern, below): equal bytes always yield the same
// *String pointer, so string equality reduces to pointer equality.
type String struct {
	ObjHeader
	Chars string
	Hash  uint32
}

var _ Obj = (*String)(nil)

func (s *String) Kind() ObjKind { return ObjString }
func (s *String) String() string { return s.Chars }

// hashString computes the 32-bit FNV-1a hash spec.md §3.2 specifies for
// String objects.
func hashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// Interner owns the weak-reference table of every live interned string.
// Its entries are removed during GC sweep for any string whose mark bit
// is clear, per spec.md §3.3/§4.5.
type Interner struct {
	table *HashMap
}

func NewInterner() *Interner { return &Interner{table: NewHashMap()} }

// Intern returns the canonical *String for s, allocating a new one (via
// alloc) only if no interned string with the same bytes exists yet.
// alloc is supplied by the caller (the GC/heap owns allocation and object
// list linkage) so this package stays free of VM/GC coupling.
func (in *Interner) Intern(s string, alloc func(str *String)) *String {
	h := hashString(s)
	if existing := findString(in.table.entries, s, h); existing != nil {
		return existing
	}
	str := &String{Chars: s, Hash: h}
	alloc(str)
	in.table.Set(str, Bool(true))
	return str
}

// Sweep removes every entry whose key is unmarked, per spec.md §4.5's
// sweep ordering: the intern table is swept before the general object
// list because it only holds weak references into that list.
func (in *Interner) Sweep() {
	for i := range in.table.entries {
		e := &in.table.entries[i]
		if e.Key != nil && !e.Key.Marked {
			*e = Entry{Key: nil, Val: Bool(false)}
			in.table.live--
		}
	}
}

// Each calls fn for every interned string currently live. The GC does
// not call it (the intern table holds weak refs and is only swept).
func (in *Interner) Each(fn func(*String)) {
	for _, e := range in.table.entries {
		if e.Key != nil {
			fn(e.Key)
		}
	}
}

func (s *String) GoString() string { return fmt.Sprintf("%q", s.Chars) }
