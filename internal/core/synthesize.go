package core

import (
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Sentinel errors for stub synthesis.
var (
	ErrNilType     = errors.New("type cannot be nil")
	ErrNotAbstract = errors.New("type must be abstract")
)

// unexported variables.
//
//nolint:gochecknoglobals // Process-wide counter keeps stub names unique across synthesizers
var stubCounter atomic.Uint64

// Synthesizer derives instantiable concrete types from abstract ones.
type Synthesizer struct {
	log *logrus.Logger
}

// NewSynthesizer returns a synthesizer that logs nowhere until SetLogger is
// called.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{log: newDiscardLogger()}
}

// SetLogger installs the logger synthesis events are traced to.
func (s *Synthesizer) SetLogger(logger *logrus.Logger) {
	if logger != nil {
		s.log = logger
	}
}

// Synthesize derives a concrete subtype of the given abstract type: same
// operation surface, every declared abstract operation given a stub body
// that does nothing for void-like returns and returns the table default
// otherwise. Each call yields a distinct, independently definable type name.
//
// A nil or non-abstract argument is an error. A malformed representation is
// not: it yields (nil, nil), the caller's signal that no instance of the
// abstract type is obtainable.
func (s *Synthesizer) Synthesize(abstract *Type) (*Type, error) {
	if abstract == nil {
		return nil, fmt.Errorf("%w: synthesis target", ErrNilType)
	}

	if abstract.Kind() != KindAbstract {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotAbstract, abstract.Name(), abstract.Kind())
	}

	desc := abstract.Descriptor()
	if !synthesizable(desc) {
		s.log.WithField("abstract", abstract.Name()).Debug("representation malformed, no stub synthesized")

		return nil, nil
	}

	stub := &TypeDescriptor{
		Name:      stubName(desc.Name),
		Kind:      KindConcrete,
		SuperType: desc.Name,
	}

	for _, op := range desc.Operations {
		if !op.Abstract {
			continue
		}

		params := make([]string, len(op.Params))
		copy(params, op.Params)

		errs := make([]string, len(op.Errors))
		copy(errs, op.Errors)

		stub.Operations = append(stub.Operations, Operation{
			Name:    op.Name,
			Params:  params,
			Returns: op.Returns,
			Errors:  errs,
			Body:    stubBody(op.Returns),
		})
	}

	s.log.WithFields(logrus.Fields{
		"abstract": desc.Name,
		"stub":     stub.Name,
	}).Debug("synthesized concrete stub")

	return newType(stub, OriginSynthesized, abstract.resolve), nil
}

// synthesizable reports whether the representation is well-formed enough to
// derive a stub from.
func synthesizable(desc *TypeDescriptor) bool {
	if desc == nil || desc.Name == "" {
		return false
	}

	for _, op := range desc.Operations {
		if op.Abstract && op.Name == "" {
			return false
		}
	}

	return true
}

// stubName returns a fresh name for a stub of the given abstract type. The
// "stub." prefix keeps stub names inside every loader's ignore set.
func stubName(abstractName string) string {
	return "stub." + abstractName + "_" + strconv.FormatUint(stubCounter.Add(1), 10)
}

// stubBody returns the canonical stub behavior for an operation: nothing for
// void-like returns, the table default otherwise.
func stubBody(returns string) Body {
	return func(_ *Object, _ []Value) (Value, error) {
		if returns == "" {
			return nil, nil
		}

		def, _ := DefaultValue(returns)

		return def, nil
	}
}
