package vm

import (
	"fmt"

	"github.com/tansy-lang/tansy/lang/value"
)

// arrayMethod resolves the two names Array supports -- "push" and "pop"
// -- to their shared Native singletons, per spec.md §4.4.4 ("for an array
// with key push/pop, return the pre-installed bound method").
func arrayMethod(name string) (value.Value, error) {
	switch name {
	case "push":
		return value.FromObj(value.ArrayPush), nil
	case "pop":
		return value.FromObj(value.ArrayPop), nil
	default:
		return value.Nil, fmt.Errorf("array has no method %q", name)
	}
}

// getProperty implements OP_DOT_GET, per spec.md §4.4.4: fields win over
// methods on an Instance; Array exposes push/pop as bound methods; a
// Table looks up its entries by key.
func (vm *VM) getProperty(receiver value.Value, name *value.String) (value.Value, error) {
	if !receiver.IsObj() {
		return value.Nil, fmt.Errorf("only instances, arrays and tables have properties")
	}
	switch obj := receiver.AsObj().(type) {
	case *value.Instance:
		if field, ok := obj.Fields.Get(name); ok {
			return field, nil
		}
		if method, ok := obj.Class.Methods.Get(name); ok {
			return value.FromObj(vm.heap.NewBoundMethod(receiver, method)), nil
		}
		return value.Nil, fmt.Errorf("undefined property %q", name.Chars)
	case *value.Array:
		method, err := arrayMethod(name.Chars)
		if err != nil {
			return value.Nil, err
		}
		return value.FromObj(vm.heap.NewBoundMethod(receiver, method)), nil
	case *value.TableObj:
		field, ok := obj.Entries.Get(name)
		if !ok {
			return value.Nil, fmt.Errorf("table has no key %q", name.Chars)
		}
		return field, nil
	default:
		return value.Nil, fmt.Errorf("only instances, arrays and tables have properties")
	}
}

// setProperty implements OP_DOT_SET. Only instances and tables accept
// field assignment; spec.md does not define assignable array attributes.
func (vm *VM) setProperty(receiver value.Value, name *value.String, v value.Value) error {
	if !receiver.IsObj() {
		return fmt.Errorf("only instances and tables have settable properties")
	}
	switch obj := receiver.AsObj().(type) {
	case *value.Instance:
		obj.Fields.Set(name, v)
		return nil
	case *value.TableObj:
		obj.Entries.Set(name, v)
		return nil
	default:
		return fmt.Errorf("only instances and tables have settable properties")
	}
}

// deleteProperty implements OP_DEL (`del obj.field;`), per spec.md §6.2.
func (vm *VM) deleteProperty(receiver value.Value, name *value.String) error {
	if !receiver.IsObj() {
		return fmt.Errorf("only instances and tables support 'del'")
	}
	switch obj := receiver.AsObj().(type) {
	case *value.Instance:
		obj.Fields.Delete(name)
		return nil
	case *value.TableObj:
		obj.Entries.Delete(name)
		return nil
	default:
		return fmt.Errorf("only instances and tables support 'del'")
	}
}

// getSubscript implements OP_SQR_BRACKET_GET: numeric (possibly negative)
// indices into an Array, string keys into a Table, per spec.md §4.4.4.
func (vm *VM) getSubscript(receiver, key value.Value) (value.Value, error) {
	if arr, ok := receiver.AsObj().(*value.Array); receiver.IsObj() && ok {
		if !key.IsNumber() {
			return value.Nil, fmt.Errorf("array index must be a number")
		}
		idx, ok := arr.Index(int(key.AsNumber()))
		if !ok {
			return value.Nil, fmt.Errorf("array index out of range")
		}
		return arr.Items[idx], nil
	}
	if tbl, ok := receiver.AsObj().(*value.TableObj); receiver.IsObj() && ok {
		s, ok := key.AsObj().(*value.String)
		if !key.IsObj() || !ok {
			return value.Nil, fmt.Errorf("table key must be a string")
		}
		field, ok := tbl.Entries.Get(s)
		if !ok {
			return value.Nil, fmt.Errorf("table has no key %q", s.Chars)
		}
		return field, nil
	}
	return value.Nil, fmt.Errorf("only arrays and tables support subscripting")
}

// setSubscript implements OP_SQR_BRACKET_SET.
func (vm *VM) setSubscript(receiver, key, v value.Value) error {
	if arr, ok := receiver.AsObj().(*value.Array); receiver.IsObj() && ok {
		if !key.IsNumber() {
			return fmt.Errorf("array index must be a number")
		}
		idx, ok := arr.Index(int(key.AsNumber()))
		if !ok {
			return fmt.Errorf("array index out of range")
		}
		arr.Items[idx] = v
		return nil
	}
	if tbl, ok := receiver.AsObj().(*value.TableObj); receiver.IsObj() && ok {
		s, ok := key.AsObj().(*value.String)
		if !key.IsObj() || !ok {
			return fmt.Errorf("table key must be a string")
		}
		tbl.Entries.Set(s, v)
		return nil
	}
	return fmt.Errorf("only arrays and tables support subscripting")
}

// length implements the `len` intrinsic: strings, arrays and tables.
func length(v value.Value) (int, error) {
	if !v.IsObj() {
		return 0, fmt.Errorf("len: operand must be a string, array or table")
	}
	switch obj := v.AsObj().(type) {
	case *value.String:
		return len(obj.Chars), nil
	case *value.Array:
		return obj.Len(), nil
	case *value.TableObj:
		return obj.Entries.Len(), nil
	default:
		return 0, fmt.Errorf("len: operand must be a string, array or table")
	}
}
