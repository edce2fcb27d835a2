package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrNilObject reports a nil fill target.
var ErrNilObject = errors.New("object to fill cannot be nil")

// Filler populates every field of an instance with usable non-nil values:
// table defaults for primitive-like fields, zero-length arrays for array
// fields, forwarding proxies for interface fields, synthesized stub
// instances for abstract fields, and recursively filled instances for
// concrete fields.
//
// Some fields cannot be given a value and stay nil: a field of the enclosing
// instance's own type (assigning one would recurse forever), a field whose
// type is already under construction higher up the same walk, a field whose
// abstract type yields no stub, and a field whose type name the store cannot
// serve.
type Filler struct {
	synth *Synthesizer
	log   *logrus.Logger
}

// NewFiller returns a filler that logs nowhere until SetLogger is called.
func NewFiller() *Filler {
	return &Filler{synth: NewSynthesizer(), log: newDiscardLogger()}
}

// SetLogger installs the logger fill decisions are traced to.
func (f *Filler) SetLogger(logger *logrus.Logger) {
	if logger != nil {
		f.log = logger
		f.synth.SetLogger(logger)
	}
}

// Fill populates the instance's full field set, inherited and non-public
// fields included, and returns the same instance. A nil target is an error
// and mutates nothing. A field write that fails is an internal error naming
// the field.
func (f *Filler) Fill(obj *Object) (*Object, error) {
	if obj == nil {
		return nil, ErrNilObject
	}

	path := map[string]struct{}{obj.TypeName(): {}}

	if err := f.fill(obj, path); err != nil {
		return nil, err
	}

	return obj, nil
}

// Fill populates obj with a fresh default Filler.
func Fill(obj *Object) (*Object, error) {
	return NewFiller().Fill(obj)
}

// fill assigns every field of obj: the table default when the field's type
// has one, nil when the field's type is obj's own type, and an instantiated
// value otherwise. Instances produced along the way are filled before they
// are assigned. path carries the type names already under construction on
// this walk so longer reference cycles terminate with a nil link.
func (f *Filler) fill(obj *Object, path map[string]struct{}) error {
	for _, field := range obj.schema {
		value, inTable := DefaultValue(field.Type)

		if !inTable && field.Type != obj.TypeName() {
			produced, err := f.instantiate(field.Type, obj.typ, path)
			if err != nil {
				return err
			}

			if inner, ok := produced.(*Object); ok {
				branch := extendPath(path, field.Type, inner.TypeName())
				if err := f.fill(inner, branch); err != nil {
					return err
				}
			}

			value = produced
		}

		if err := obj.Set(field.Name, value); err != nil {
			return fmt.Errorf("internal error: failed to set field %s.%s: %w", obj.TypeName(), field.Name, err)
		}
	}

	return nil
}

// instantiate produces a value for a field of the named type, or nil when no
// value is obtainable.
func (f *Filler) instantiate(typeName string, owner *Type, path map[string]struct{}) (Value, error) {
	if component, isArray := strings.CutPrefix(typeName, "[]"); isArray {
		return NewArray(component, 0), nil
	}

	if _, onPath := path[typeName]; onPath {
		f.log.WithField("type", typeName).Debug("reference cycle, leaving nil")

		return nil, nil
	}

	resolved, err := owner.resolveName(typeName)
	if err != nil {
		f.log.WithFields(logrus.Fields{
			"type":  typeName,
			"cause": err.Error(),
		}).Debug("field type unresolvable, leaving nil")

		return nil, nil
	}

	switch resolved.Kind() {
	case KindInterface:
		return NewProxy(resolved.Descriptor(), defaultProxyHandler)
	case KindAbstract:
		stub, err := f.synth.Synthesize(resolved)
		if err != nil {
			return nil, err
		}

		if stub == nil {
			return nil, nil
		}

		return stub.New()
	default:
		target := resolved

		if substitute := substituteKnownProblemTypes(typeName); substitute != typeName {
			if swapped, err := owner.resolveName(substitute); err == nil {
				target = swapped
			}
		}

		return target.New()
	}
}

// substituteKnownProblemTypes swaps concrete type names that are known to
// produce unusable instances for a well-behaved stand-in.
//
// Generic network addresses compare by internal representation that a
// default-constructed instance never populates, so equality on them is
// always false and poisons the equality of anything holding one. The
// IPv4-only counterpart compares properly.
func substituteKnownProblemTypes(typeName string) string {
	if typeName == "net.Address" {
		return "net.IPv4Address"
	}

	return typeName
}

// defaultProxyHandler answers every proxied operation with the table default
// for its declared return type.
func defaultProxyHandler(_ Value, op Operation, _ []Value) (Value, error) {
	def, _ := DefaultValue(op.Returns)

	return def, nil
}

// extendPath returns a copy of path with the given names added. Each branch
// of the walk gets its own copy so sibling fields of the same type fill
// independently.
func extendPath(path map[string]struct{}, names ...string) map[string]struct{} {
	branch := make(map[string]struct{}, len(path)+len(names))

	for name := range path {
		branch[name] = struct{}{}
	}

	for _, name := range names {
		branch[name] = struct{}{}
	}

	return branch
}
