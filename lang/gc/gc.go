// Package gc implements the tracing mark-and-sweep collector described in
// spec.md §4.5: an allocation byte-budget trigger, a root scan supplied by
// the caller (the VM marks its operand stack, globals, frames' closures,
// open upvalues and the interned "init" name), and a two-phase mark/sweep
// over an intrusive list of heap objects, with the weak intern table swept
// first. Design note from spec.md §9: "avoid smart-pointer reference
// counting for heap objects -- use an arena of heap cells plus a mark
// bit", which is exactly what Heap/ObjHeader implement.
package gc

import (
	"os"

	"github.com/tansy-lang/tansy/lang/value"
)

// GrowFactor is the multiplier applied to CurrentBytes after a collection
// to compute the next collection threshold, per spec.md §4.5.
const GrowFactor = 2

const initialNextGC = 1024 * 1024

// Heap owns every object allocated during a run: the intrusive
// all-objects list the sweep phase walks, the allocation byte budget, and
// the string intern table (swept first, since it only holds weak
// references into this same list).
type Heap struct {
	Interner *value.Interner

	objects        value.Obj // head of the intrusive object list
	CurrentBytes   int
	nextGC         int
	gray           []value.Obj
	StressGC       bool // force a collection on every allocation, for tests
	LogGC          bool
	bytesCollected int
}

// NewHeap returns an empty heap ready to track allocations.
func NewHeap() *Heap {
	return &Heap{Interner: value.NewInterner(), nextGC: initialNextGC}
}

// track links obj into the intrusive object list and charges its
// estimated size against the allocation budget, per spec.md §4.5's
// "every allocation updates bytes".
func (h *Heap) track(obj value.Obj, size int) {
	hdr := obj.Header()
	hdr.Next = h.objects
	hdr.Size = size
	h.objects = obj
	h.CurrentBytes += size
}

// NewString allocates and interns s, reusing an existing interned string
// with the same bytes if one exists -- no allocation happens in that case,
// matching spec.md §3.3.
func (h *Heap) NewString(s string) *value.String {
	return h.Interner.Intern(s, func(str *value.String) {
		h.track(str, 32+len(s))
	})
}

func (h *Heap) NewArray(items []value.Value) *value.Array {
	a := value.NewArray(items)
	h.track(a, 32+16*len(items))
	return a
}

func (h *Heap) NewTableObj() *value.TableObj {
	t := value.NewTableObj()
	h.track(t, 48)
	return t
}

func (h *Heap) NewFunctionProto(name *value.String, arity, upvalueCount int) *value.FunctionProto {
	f := &value.FunctionProto{Name: name, Arity: arity, UpvalueCount: upvalueCount, Chunk: &value.Chunk{}}
	h.track(f, 64)
	return f
}

func (h *Heap) NewClosure(proto *value.FunctionProto) *value.Closure {
	c := value.NewClosure(proto)
	h.track(c, 32+8*len(c.Upvalues))
	return c
}

func (h *Heap) NewUpvalue(stack *[]value.Value, index int) *value.Upvalue {
	u := value.NewOpenUpvalue(stack, index)
	h.track(u, 24)
	return u
}

func (h *Heap) NewClass(name *value.String) *value.Class {
	c := value.NewClass(name)
	h.track(c, 48)
	return c
}

func (h *Heap) NewInstance(class *value.Class) *value.Instance {
	i := value.NewInstance(class)
	h.track(i, 48)
	return i
}

func (h *Heap) NewBoundMethod(receiver, method value.Value) *value.BoundMethod {
	b := value.NewBoundMethod(receiver, method)
	h.track(b, 32)
	return b
}

func (h *Heap) NewNative(n *value.Native) *value.Native {
	h.track(n, 32)
	return n
}

// ShouldCollect reports whether the allocation budget has been exceeded
// (or StressGC debug mode is on), per spec.md §4.5.
func (h *Heap) ShouldCollect() bool {
	return h.StressGC || h.CurrentBytes > h.nextGC
}

// Collect runs a full mark-and-sweep pass. markRoots is supplied by the
// caller and must call MarkObject/MarkValue for every root. The VM's
// markRoots covers the operand stack, globals, open upvalues, call
// frames' closures and the interned constructor name; compiler contexts
// are not marked, since Collect is only called from the VM's dispatch
// loop, after compilation has finished.
func (h *Heap) Collect(markRoots func(h *Heap)) {
	before := h.CurrentBytes
	if h.LogGC {
		os.Stderr.WriteString("-- gc begin\n")
	}

	markRoots(h)
	h.traceReferences()
	h.sweep()

	h.nextGC = h.CurrentBytes * GrowFactor
	if h.nextGC < initialNextGC {
		h.nextGC = initialNextGC
	}
	h.bytesCollected += before - h.CurrentBytes

	if h.LogGC {
		os.Stderr.WriteString("-- gc end\n")
	}
}

// MarkValue marks v's underlying object, if it is one.
func (h *Heap) MarkValue(v value.Value) {
	if v.IsObj() {
		h.MarkObject(v.AsObj())
	}
}

// MarkObject greys obj if it was white, per the tri-color scheme: a freshly
// marked object is grey (marked but unscanned) until traceReferences
// blackens it by visiting its own referents.
func (h *Heap) MarkObject(obj value.Obj) {
	if obj == nil {
		return
	}
	hdr := obj.Header()
	if hdr.Marked {
		return
	}
	hdr.Marked = true
	h.gray = append(h.gray, obj)
}

// traceReferences drains the grey worklist, blackening each object by
// marking every value/object it directly references, per spec.md §4.5.
func (h *Heap) traceReferences() {
	for len(h.gray) > 0 {
		obj := h.gray[len(h.gray)-1]
		h.gray = h.gray[:len(h.gray)-1]
		h.blacken(obj)
	}
}

func (h *Heap) blacken(obj value.Obj) {
	switch o := obj.(type) {
	case *value.String:
		// no outgoing references
	case *value.FunctionProto:
		h.MarkObject(o.Name)
		for _, c := range o.Chunk.ConstantsLong {
			h.MarkValue(c)
		}
		for _, c := range o.Chunk.Constants8 {
			h.MarkValue(c)
		}
	case *value.Closure:
		h.MarkObject(o.Proto)
		for _, uv := range o.Upvalues {
			h.MarkObject(uv)
		}
	case *value.Upvalue:
		h.MarkValue(o.Get())
	case *value.Class:
		h.MarkObject(o.Name)
		o.Methods.Each(func(k *value.String, v value.Value) {
			h.MarkObject(k)
			h.MarkValue(v)
		})
	case *value.Instance:
		h.MarkObject(o.Class)
		o.Fields.Each(func(k *value.String, v value.Value) {
			h.MarkObject(k)
			h.MarkValue(v)
		})
	case *value.BoundMethod:
		h.MarkValue(o.Receiver)
		h.MarkValue(o.Method)
	case *value.TableObj:
		o.Entries.Each(func(k *value.String, v value.Value) {
			h.MarkObject(k)
			h.MarkValue(v)
		})
	case *value.Array:
		for _, v := range o.Items {
			h.MarkValue(v)
		}
	case *value.Native:
		// no outgoing references
	}
}

// sweep walks the intern table and the intrusive object list, freeing
// anything still unmarked, and clears survivors' mark bits for the next
// cycle. The intern table is swept first because it dereferences strings
// that the object-list sweep may be about to free, per spec.md §4.5.
func (h *Heap) sweep() {
	h.Interner.Sweep()

	var prev value.Obj
	obj := h.objects
	for obj != nil {
		hdr := obj.Header()
		next := hdr.Next
		if hdr.Marked {
			hdr.Marked = false
			prev = obj
		} else {
			if prev == nil {
				h.objects = next
			} else {
				prev.Header().Next = next
			}
			h.CurrentBytes -= hdr.Size
		}
		obj = next
	}
}
