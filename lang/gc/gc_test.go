package gc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tansy-lang/tansy/lang/gc"
	"github.com/tansy-lang/tansy/lang/value"
)

func TestCollectFreesUnreachable(t *testing.T) {
	h := gc.NewHeap()

	kept := h.NewString("kept")
	_ = h.NewString("garbage")

	before := h.CurrentBytes
	h.Collect(func(h *gc.Heap) {
		h.MarkObject(kept)
	})
	assert.Less(t, h.CurrentBytes, before)
}

func TestInternTableSweptWithUnreachableStrings(t *testing.T) {
	h := gc.NewHeap()
	old := h.NewString("temp")

	h.Collect(func(h *gc.Heap) {})

	// re-interning "temp" must allocate a fresh string, since the old one
	// was swept from the intern table; a second collection with nothing
	// alive should not panic or double free.
	fresh := h.NewString("temp")
	assert.NotSame(t, old, fresh)
	h.Collect(func(h *gc.Heap) {})
}

func TestMarkObjectIsIdempotent(t *testing.T) {
	h := gc.NewHeap()
	s := h.NewString("x")
	h.MarkObject(s)
	h.MarkObject(s) // must not push the same object onto the gray stack twice
	h.Collect(func(h *gc.Heap) {})
}

func TestArrayKeepsElementsAlive(t *testing.T) {
	h := gc.NewHeap()
	s := h.NewString("inside-array")
	arr := h.NewArray([]value.Value{value.FromObj(s)})

	h.Collect(func(h *gc.Heap) {
		h.MarkObject(arr)
	})
	assert.True(t, s.Marked == false) // mark bit cleared after sweep
	// the string survived: it is still the interned string for its bytes
	assert.Same(t, s, h.NewString("inside-array"))
}
