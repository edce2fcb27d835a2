package core

import (
	"errors"
	"fmt"
)

// Value is any runtime value handled by the framework: Go scalars for
// primitive-like types, *Object for instances, *Array for arrays, *Proxy for
// interface stand-ins, and nil for absent.
type Value = any

// Sentinel errors for instance access.
var (
	ErrUnknownField     = errors.New("field not declared on type")
	ErrUnknownOperation = errors.New("operation not declared on type")
	ErrControlRebound   = errors.New("invocation control already bound")
	ErrNilControl       = errors.New("invocation control cannot be nil")
)

// Object is an instance of a defined type: a field map plus the type
// identity it was constructed from. Objects are not safe for concurrent
// mutation; each test unit owns its instances.
type Object struct {
	typ     *Type
	schema  []Field
	fields  map[string]Value
	control *InvocationControl
}

// Type returns the defined type this instance was constructed from.
func (o *Object) Type() *Type {
	return o.typ
}

// TypeName returns the name of the instance's type.
func (o *Object) TypeName() string {
	return o.typ.Name()
}

// FieldNames returns the instance's field names in declaration order, own
// fields before inherited ones.
func (o *Object) FieldNames() []string {
	names := make([]string, len(o.schema))
	for i, f := range o.schema {
		names[i] = f.Name
	}

	return names
}

// Get returns the current value of the named field.
func (o *Object) Get(name string) (Value, error) {
	v, ok := o.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, o.TypeName(), name)
	}

	return v, nil
}

// Set assigns the named field. Assigning a field the type does not declare
// is an error naming the field.
func (o *Object) Set(name string, value Value) error {
	if _, ok := o.fields[name]; !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, o.TypeName(), name)
	}

	o.fields[name] = value

	return nil
}

// Invoke calls the named operation with the given arguments. The operation
// is looked up on the instance's type, then along its supertype chain. An
// operation without a body yields the default value for its declared return
// type.
func (o *Object) Invoke(name string, args ...Value) (Value, error) {
	op, ok := o.typ.findOperation(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownOperation, o.TypeName(), name)
	}

	if op.Body == nil {
		def, _ := DefaultValue(op.Returns)

		return def, nil
	}

	return op.Body(o, args)
}

// BindControl attaches an invocation control record to this instance. An
// instance accepts at most one control for its lifetime; rebinding is an
// error.
func (o *Object) BindControl(control *InvocationControl) error {
	if control == nil {
		return ErrNilControl
	}

	if o.control != nil {
		return fmt.Errorf("%w: instance of %s", ErrControlRebound, o.TypeName())
	}

	o.control = control

	return nil
}

// Control returns the invocation control bound to this instance, or nil when
// none is bound.
func (o *Object) Control() *InvocationControl {
	return o.control
}

// Array is a sequence value with a fixed component type.
type Array struct {
	ComponentType string
	Elems         []Value
}

// NewArray returns an array of the given component type and length, each
// element at the component type's table default or nil.
func NewArray(componentType string, length int) *Array {
	arr := &Array{ComponentType: componentType}
	if length <= 0 {
		return arr
	}

	arr.Elems = make([]Value, length)

	if def, ok := DefaultValue(componentType); ok {
		for i := range arr.Elems {
			arr.Elems[i] = def
		}
	}

	return arr
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return len(a.Elems)
}
