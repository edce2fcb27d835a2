package core

import (
	"errors"
	"fmt"
)

// Origin records how a defined type came to be.
type Origin int

// Origins of a defined type.
const (
	// OriginDeferred marks a type defined by the host and shared by every
	// loader that defers to it.
	OriginDeferred Origin = iota
	// OriginUnmodified marks a type defined by a loader from the pristine
	// representation: distinct identity, identical behavior.
	OriginUnmodified
	// OriginTransformed marks a type defined by a loader after running the
	// transformation pipeline on a working copy of the representation.
	OriginTransformed
	// OriginSynthesized marks a concrete type derived from an abstract one
	// by the synthesizer.
	OriginSynthesized
)

// String returns the lowercase name of the origin.
func (o Origin) String() string {
	switch o {
	case OriginDeferred:
		return "deferred"
	case OriginUnmodified:
		return "unmodified"
	case OriginTransformed:
		return "transformed"
	case OriginSynthesized:
		return "synthesized"
	default:
		return "unknown"
	}
}

// resolveFunc resolves a type name to a defined type. Instance construction
// and field filling use it to look up supertypes and field types.
type resolveFunc func(name string) (*Type, error)

// Type is a defined type: a descriptor bound to a distinct runtime identity.
// Two definitions of the same name are distinct types even when their
// descriptors are structurally identical.
type Type struct {
	desc    *TypeDescriptor
	origin  Origin
	resolve resolveFunc
}

// Sentinel errors for type definition and instantiation.
var (
	ErrNotInstantiable = errors.New("type is not instantiable")
	ErrUnresolvedType  = errors.New("type name cannot be resolved")
)

func newType(desc *TypeDescriptor, origin Origin, resolve resolveFunc) *Type {
	return &Type{desc: desc, origin: origin, resolve: resolve}
}

// Name returns the defined type's name.
func (t *Type) Name() string {
	return t.desc.Name
}

// Kind returns the defined type's kind.
func (t *Type) Kind() Kind {
	return t.desc.Kind
}

// Origin reports how this type was defined.
func (t *Type) Origin() Origin {
	return t.origin
}

// Descriptor returns the descriptor this type was defined from. Treat it as
// immutable; rewrite a Clone instead.
func (t *Type) Descriptor() *TypeDescriptor {
	return t.desc
}

// New constructs an instance of the type. Only concrete types are
// instantiable.
//
// The instance's field set is the type's own fields plus every field
// declared along its supertype chain, public or not. Fields with an entry in
// the default value table start at that default; all other fields start nil.
func (t *Type) New() (*Object, error) {
	if t.desc.Kind != KindConcrete {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotInstantiable, t.desc.Name, t.desc.Kind)
	}

	schema, err := t.fieldSet()
	if err != nil {
		return nil, err
	}

	fields := make(map[string]Value, len(schema))
	for _, f := range schema {
		def, _ := DefaultValue(f.Type)
		fields[f.Name] = def
	}

	return &Object{typ: t, schema: schema, fields: fields}, nil
}

// fieldSet collects the full field set across the supertype chain, own
// fields first. A subtype declaration shadows a supertype field of the same
// name. A cycle in the supertype chain terminates the walk rather than
// looping.
func (t *Type) fieldSet() ([]Field, error) {
	var schema []Field

	taken := make(map[string]struct{})
	walked := make(map[string]struct{})

	desc := t.desc
	for desc != nil {
		if _, ok := walked[desc.Name]; ok {
			break
		}

		walked[desc.Name] = struct{}{}

		for _, f := range desc.Fields {
			if _, ok := taken[f.Name]; ok {
				continue
			}

			taken[f.Name] = struct{}{}
			schema = append(schema, f)
		}

		if desc.SuperType == "" {
			break
		}

		super, err := t.resolveName(desc.SuperType)
		if err != nil {
			return nil, fmt.Errorf("resolving supertype %s of %s: %w", desc.SuperType, desc.Name, err)
		}

		desc = super.desc
	}

	return schema, nil
}

// findOperation looks up the named operation on this type, walking the
// supertype chain when the type does not declare it itself.
func (t *Type) findOperation(name string) (Operation, bool) {
	walked := make(map[string]struct{})

	desc := t.desc
	for desc != nil {
		if _, ok := walked[desc.Name]; ok {
			break
		}

		walked[desc.Name] = struct{}{}

		if op, ok := desc.operation(name); ok {
			return op, true
		}

		if desc.SuperType == "" {
			break
		}

		super, err := t.resolveName(desc.SuperType)
		if err != nil {
			break
		}

		desc = super.desc
	}

	return Operation{}, false
}

func (t *Type) resolveName(name string) (*Type, error) {
	if t.resolve == nil {
		return nil, fmt.Errorf("%w: %s (no resolver bound)", ErrUnresolvedType, name)
	}

	return t.resolve(name)
}
