package value

const tableMaxLoad = 0.75

// Entry is one bucket of a HashMap. An empty bucket has a nil Key and a Nil
// Val. A tombstone (a deleted entry, kept so probe chains past it remain
// valid) has a nil Key and a Bool(false) Val.
type Entry struct {
	Key *String
	Val Value
}

func (e Entry) empty() bool     { return e.Key == nil && e.Val.IsNil() }
func (e Entry) tombstone() bool { return e.Key == nil && e.Val.IsBool() && !e.Val.AsBool() }

// HashMap is the open-addressing hash table backing globals, instance
// fields, class method tables, the string intern set, and the storage of
// first-class Table objects, exactly as spec.md §4.6 names. Every entry is
// keyed by *String; lookups normally compare key pointers (cheap thanks to
// interning) but findString below compares by content for the one case --
// interning itself -- where the pointer doesn't exist yet.
type HashMap struct {
	entries []Entry
	count   int // live entries + tombstones, for load-factor purposes
	live    int // live entries only
}

// NewHashMap returns an empty table.
func NewHashMap() *HashMap { return &HashMap{} }

// Len returns the number of live entries.
func (t *HashMap) Len() int { return t.live }

// findEntry probes linearly from hash mod capacity, remembering the first
// tombstone seen, and returns the bucket where key is found, or -- failing
// that -- an available bucket (preferring the remembered tombstone).
func findEntry(entries []Entry, key *String) int {
	cap := len(entries)
	idx := int(key.Hash) % cap
	var tombstone = -1
	for {
		e := &entries[idx]
		switch {
		case e.Key == nil:
			if e.Val.IsNil() {
				// truly empty bucket
				if tombstone != -1 {
					return tombstone
				}
				return idx
			}
			if tombstone == -1 {
				tombstone = idx
			}
		case e.Key == key:
			return idx
		}
		idx = (idx + 1) % cap
	}
}

func (t *HashMap) adjustCapacity(newCap int) {
	entries := make([]Entry, newCap)
	for i := range entries {
		entries[i] = Entry{Val: Nil}
	}

	t.live = 0
	for _, e := range t.entries {
		if e.Key == nil {
			continue
		}
		dst := findEntry(entries, e.Key)
		entries[dst].Key = e.Key
		entries[dst].Val = e.Val
		t.live++
	}
	t.entries = entries
	t.count = t.live
}

// Get returns the value stored for key, and whether it was present.
func (t *HashMap) Get(key *String) (Value, bool) {
	if len(t.entries) == 0 {
		return Nil, false
	}
	idx := findEntry(t.entries, key)
	e := &t.entries[idx]
	if e.Key == nil {
		return Nil, false
	}
	return e.Val, true
}

// Set stores value for key, growing the table first if needed. It returns
// true if this created a brand new key.
func (t *HashMap) Set(key *String, val Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		newCap := growCapacity(len(t.entries))
		t.adjustCapacity(newCap)
	}

	idx := findEntry(t.entries, key)
	e := &t.entries[idx]
	isNew := e.Key == nil
	if isNew && e.Val.IsNil() {
		t.count++
	}
	e.Key = key
	e.Val = val
	if isNew {
		t.live++
	}
	return isNew
}

// Delete writes a tombstone in key's bucket, if present. Returns whether
// key was found.
func (t *HashMap) Delete(key *String) bool {
	if len(t.entries) == 0 {
		return false
	}
	idx := findEntry(t.entries, key)
	e := &t.entries[idx]
	if e.Key == nil {
		return false
	}
	*e = Entry{Key: nil, Val: Bool(false)}
	t.live--
	return true
}

// AddAll copies every live entry of src into t. No call site uses it; the
// language has no class inheritance.
func (t *HashMap) AddAll(src *HashMap) {
	for _, e := range src.entries {
		if e.Key != nil {
			t.Set(e.Key, e.Val)
		}
	}
}

// Each calls fn for every live entry. fn must not mutate the table.
func (t *HashMap) Each(fn func(key *String, val Value)) {
	for _, e := range t.entries {
		if e.Key != nil {
			fn(e.Key, e.Val)
		}
	}
}

// findString looks up a string by content (bytes, length, hash) rather
// than by pointer -- the special path spec.md §3.3 requires for interning,
// where the candidate *String doesn't exist as an object yet.
func findString(entries []Entry, s string, hash uint32) *String {
	if len(entries) == 0 {
		return nil
	}
	cap := len(entries)
	idx := int(hash) % cap
	for {
		e := &entries[idx]
		switch {
		case e.Key == nil:
			if e.Val.IsNil() {
				return nil
			}
			// tombstone: keep probing
		case e.Key.Hash == hash && e.Key.Chars == s:
			return e.Key
		}
		idx = (idx + 1) % cap
	}
}

func growCapacity(cap int) int {
	if cap < 8 {
		return 8
	}
	return cap * 2
}
