package core

// Kind classifies a type representation.
type Kind int

// Kinds of type representation.
const (
	KindConcrete Kind = iota
	KindAbstract
	KindInterface
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindConcrete:
		return "concrete"
	case KindAbstract:
		return "abstract"
	case KindInterface:
		return "interface"
	default:
		return "unknown"
	}
}

// Body is the executable behavior of an operation. It receives the instance
// the operation was invoked on and the call arguments.
type Body func(self *Object, args []Value) (Value, error)

// Operation describes one named behavior of a type.
//
// Returns is the declared return type name; empty means the operation
// produces no value. Errors lists the declared error type names, kept apart
// from Returns so value and failure channels stay distinguishable in the
// representation. A nil Body marks a representation-only operation, such as
// one parsed from source: invoking it yields the default value for the
// declared return type.
type Operation struct {
	Name     string
	Params   []string
	Returns  string
	Errors   []string
	Abstract bool
	Body     Body
}

// Field describes one named slot of a type. Type is a dotted type name
// (e.g. "shop.Order"), a primitive name (e.g. "int"), or an array spelling
// (e.g. "[]shop.Item").
type Field struct {
	Name string
	Type string
}

// TypeDescriptor is the structural representation of a type: its name, kind,
// supertype, operations, and fields. Descriptors obtained from a Store are
// immutable by convention; use Clone to get a copy safe to rewrite.
type TypeDescriptor struct {
	Name       string
	Kind       Kind
	SuperType  string
	Operations []Operation
	Fields     []Field
}

// Clone returns a deep copy of the descriptor. Operation bodies are shared
// (they are immutable function values); the slices and their elements are
// fresh, so rewriting the clone never touches the original.
func (td *TypeDescriptor) Clone() *TypeDescriptor {
	if td == nil {
		return nil
	}

	clone := &TypeDescriptor{
		Name:      td.Name,
		Kind:      td.Kind,
		SuperType: td.SuperType,
	}

	if td.Operations != nil {
		clone.Operations = make([]Operation, len(td.Operations))
		copy(clone.Operations, td.Operations)

		for i := range clone.Operations {
			params := td.Operations[i].Params
			if params != nil {
				clone.Operations[i].Params = make([]string, len(params))
				copy(clone.Operations[i].Params, params)
			}

			errs := td.Operations[i].Errors
			if errs != nil {
				clone.Operations[i].Errors = make([]string, len(errs))
				copy(clone.Operations[i].Errors, errs)
			}
		}
	}

	if td.Fields != nil {
		clone.Fields = make([]Field, len(td.Fields))
		copy(clone.Fields, td.Fields)
	}

	return clone
}

// operation returns the named operation declared directly on this descriptor.
func (td *TypeDescriptor) operation(name string) (Operation, bool) {
	for _, op := range td.Operations {
		if op.Name == name {
			return op, true
		}
	}

	return Operation{}, false
}
