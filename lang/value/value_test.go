package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tansy-lang/tansy/lang/value"
)

func TestValueFalsey(t *testing.T) {
	assert.True(t, value.Nil.Falsey())
	assert.True(t, value.Bool(false).Falsey())
	assert.False(t, value.Bool(true).Falsey())
	assert.False(t, value.Number(0).Falsey())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, value.Equal(value.Number(1), value.Number(1)))
	assert.False(t, value.Equal(value.Number(1), value.Number(2)))
	assert.True(t, value.Equal(value.Nil, value.Nil))
	assert.False(t, value.Equal(value.Nil, value.Bool(false)))
	assert.True(t, value.Equal(value.Bool(true), value.Bool(true)))
}

func TestValueEqualInternedStrings(t *testing.T) {
	in := value.NewInterner()
	a := in.Intern("foo", func(*value.String) {})
	b := in.Intern("foo", func(*value.String) {})
	assert.Same(t, a, b)
	assert.True(t, value.Equal(value.FromObj(a), value.FromObj(b)))

	c := in.Intern("bar", func(*value.String) {})
	assert.False(t, value.Equal(value.FromObj(a), value.FromObj(c)))
}

func TestValueStringFormat(t *testing.T) {
	assert.Equal(t, "1", value.Number(1).String())
	assert.Equal(t, "1.5", value.Number(1.5).String())
	assert.Equal(t, "nil", value.Nil.String())
	assert.Equal(t, "true", value.Bool(true).String())
}

func TestTableSetGetDelete(t *testing.T) {
	in := value.NewInterner()
	tbl := value.NewHashMap()

	k1 := in.Intern("one", func(*value.String) {})
	k2 := in.Intern("two", func(*value.String) {})

	assert.True(t, tbl.Set(k1, value.Number(1)))
	assert.True(t, tbl.Set(k2, value.Number(2)))
	assert.False(t, tbl.Set(k1, value.Number(11))) // overwrite, not new

	v, ok := tbl.Get(k1)
	assert.True(t, ok)
	assert.Equal(t, value.Number(11), v)

	assert.True(t, tbl.Delete(k1))
	_, ok = tbl.Get(k1)
	assert.False(t, ok)

	v2, ok := tbl.Get(k2)
	assert.True(t, ok)
	assert.Equal(t, value.Number(2), v2)
}

func TestTableGrowsAndKeepsAllEntries(t *testing.T) {
	in := value.NewInterner()
	tbl := value.NewHashMap()

	var keys []*value.String
	for i := 0; i < 200; i++ {
		k := in.Intern(string(rune('a'))+string(rune(i)), func(*value.String) {})
		keys = append(keys, k)
		tbl.Set(k, value.Number(float64(i)))
	}
	for i, k := range keys {
		v, ok := tbl.Get(k)
		assert.True(t, ok)
		assert.Equal(t, value.Number(float64(i)), v)
	}
	assert.Equal(t, 200, tbl.Len())
}

func TestArrayIndexNegative(t *testing.T) {
	arr := value.NewArray([]value.Value{value.Number(10), value.Number(20), value.Number(30)})
	idx, ok := arr.Index(-1)
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = arr.Index(3)
	assert.False(t, ok)
}
