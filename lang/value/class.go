package value

import "fmt"

// Class is the heap object created by OP_CLASS, per spec.md §3.2. Methods
// maps method name (String) to the Closure implementing it; OP_METHOD
// populates it.
type Class struct {
	ObjHeader
	Name    *String
	Methods *HashMap
}

var _ Obj = (*Class)(nil)

func NewClass(name *String) *Class {
	return &Class{Name: name, Methods: NewHashMap()}
}

func (c *Class) Kind() ObjKind  { return ObjClass }
func (c *Class) String() string { return fmt.Sprintf("<class %s>", c.Name.Chars) }

// Instance is a class instance, created when a Class value is called, per
// spec.md §3.2.
type Instance struct {
	ObjHeader
	Class  *Class
	Fields *HashMap
}

var _ Obj = (*Instance)(nil)

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: NewHashMap()}
}

func (i *Instance) Kind() ObjKind  { return ObjInstance }
func (i *Instance) String() string { return fmt.Sprintf("<%s instance>", i.Class.Name.Chars) }

// BoundMethod pairs a receiver with the method Closure or Native resolved
// for it, created on property access that resolves to a method, per
// spec.md §3.2/§4.4.4. Method holds either a *Closure (user-defined
// methods) or a *Native (the built-in array push/pop methods).
type BoundMethod struct {
	ObjHeader
	Receiver Value
	Method   Value
}

var _ Obj = (*BoundMethod)(nil)

func NewBoundMethod(receiver, method Value) *BoundMethod {
	return &BoundMethod{Receiver: receiver, Method: method}
}

func (b *BoundMethod) Kind() ObjKind { return ObjBoundMethod }

func (b *BoundMethod) String() string {
	switch m := b.Method.AsObj().(type) {
	case *Closure:
		return m.String()
	case *Native:
		return fmt.Sprintf("<native method %s>", m.Name)
	default:
		return "<bound method>"
	}
}
