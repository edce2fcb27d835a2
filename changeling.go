// Package changeling provides load-time type interception and object
// synthesis for building test doubles: pattern-driven resolution of type
// representations, a rewrite pipeline that reroutes operations through
// per-instance invocation controls, stub synthesis for abstract types, and
// default filling of instance fields.
//
// This is the public API entry point. Implementation lives in internal/core.
package changeling

import (
	"github.com/faekit/changeling/internal/core"
)

// Array is a sequence value with a fixed component type.
type Array = core.Array

// NewArray returns an array of the given component type and length.
func NewArray(componentType string, length int) *Array {
	return core.NewArray(componentType, length)
}

// Body is the executable behavior of an operation.
type Body = core.Body

// Catalog is an in-memory representation store.
type Catalog = core.Catalog

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return core.NewCatalog()
}

// DefaultValue returns the canonical non-null default for a primitive type
// name and whether the name is in the table at all.
func DefaultValue(typeName string) (Value, bool) {
	return core.DefaultValue(typeName)
}

// Field describes one named slot of a type.
type Field = core.Field

// Filler populates every field of an instance with usable non-nil values.
type Filler = core.Filler

// NewFiller returns a filler that logs nowhere until SetLogger is called.
func NewFiller() *Filler {
	return core.NewFiller()
}

// Fill populates obj with a fresh default Filler.
func Fill(obj *Object) (*Object, error) {
	return core.Fill(obj)
}

// Handler receives every operation routed to a mocked instance or a proxied
// interface value.
type Handler = core.Handler

// Host owns the representation store and the defined types every loader
// shares.
type Host = core.Host

// NewHost returns a host serving representations from store.
func NewHost(store Store) (*Host, error) {
	return core.NewHost(store)
}

// InterceptMethods returns the standard pipeline stage that reroutes
// operation calls through the instance's invocation control.
func InterceptMethods() Transformer {
	return core.InterceptMethods()
}

// InvocationControl pairs an invocation handler with the set of operations
// it intercepts on one instance.
type InvocationControl = core.InvocationControl

// NewInvocationControl returns a control routing the given operations to
// handler. With no operations named, all operations are mocked.
func NewInvocationControl(handler Handler, operations ...string) (*InvocationControl, error) {
	return core.NewInvocationControl(handler, operations...)
}

// Kind classifies a type representation.
type Kind = core.Kind

// Kinds of type representation.
const (
	KindConcrete  = core.KindConcrete
	KindAbstract  = core.KindAbstract
	KindInterface = core.KindInterface
)

// Loader resolves type names into defined types, deciding per name whether
// to defer, define unmodified, or transform first.
type Loader = core.Loader

// NewLoader returns a loader over host. Names matching an entry of modify
// resolve through the transformation pipeline; extraDefer extends the
// built-in defer patterns.
func NewLoader(host *Host, modify []string, extraDefer ...string) (*Loader, error) {
	return core.NewLoader(host, modify, extraDefer...)
}

// Object is an instance of a defined type.
type Object = core.Object

// Operation describes one named behavior of a type.
type Operation = core.Operation

// Origin records how a defined type came to be.
type Origin = core.Origin

// Origins of a defined type.
const (
	OriginDeferred    = core.OriginDeferred
	OriginUnmodified  = core.OriginUnmodified
	OriginTransformed = core.OriginTransformed
	OriginSynthesized = core.OriginSynthesized
)

// Proxy is a stand-in for an interface type, forwarding every operation to a
// single handler.
type Proxy = core.Proxy

// NewProxy returns a proxy for the described interface type.
func NewProxy(desc *TypeDescriptor, handler Handler) (*Proxy, error) {
	return core.NewProxy(desc, handler)
}

// Store provides type representations by name.
type Store = core.Store

// Synthesizer derives instantiable concrete types from abstract ones.
type Synthesizer = core.Synthesizer

// NewSynthesizer returns a synthesizer that logs nowhere until SetLogger is
// called.
func NewSynthesizer() *Synthesizer {
	return core.NewSynthesizer()
}

// Transformer rewrites a type representation before it is defined.
type Transformer = core.Transformer

// TransformerFunc adapts a function to the Transformer interface.
type TransformerFunc = core.TransformerFunc

// Type is a defined type: a descriptor bound to a distinct runtime identity.
type Type = core.Type

// TypeDescriptor is the structural representation of a type.
type TypeDescriptor = core.TypeDescriptor

// Value is any runtime value handled by the framework.
type Value = core.Value

// Errors re-exported from internal/core.
var (
	// ErrControlRebound reports a second control bound to one instance.
	ErrControlRebound = core.ErrControlRebound
	// ErrDuplicateType reports a second registration of a name.
	ErrDuplicateType = core.ErrDuplicateType
	// ErrNilControl reports binding a nil invocation control.
	ErrNilControl = core.ErrNilControl
	// ErrNilDescriptor reports a missing type descriptor.
	ErrNilDescriptor = core.ErrNilDescriptor
	// ErrNilHandler reports a nil invocation handler.
	ErrNilHandler = core.ErrNilHandler
	// ErrNilHost reports loader construction without a host.
	ErrNilHost = core.ErrNilHost
	// ErrNilObject reports a nil fill target.
	ErrNilObject = core.ErrNilObject
	// ErrNilStore reports host construction without a representation store.
	ErrNilStore = core.ErrNilStore
	// ErrNilTransformer reports a nil pipeline stage.
	ErrNilTransformer = core.ErrNilTransformer
	// ErrNilType reports a nil synthesis target.
	ErrNilType = core.ErrNilType
	// ErrNotAbstract reports synthesis from a non-abstract type.
	ErrNotAbstract = core.ErrNotAbstract
	// ErrNotFound reports a name the store cannot serve.
	ErrNotFound = core.ErrNotFound
	// ErrNotInstantiable reports instantiation of an abstract or interface
	// type.
	ErrNotInstantiable = core.ErrNotInstantiable
	// ErrPipelineSealed reports a pipeline change after the first
	// resolution.
	ErrPipelineSealed = core.ErrPipelineSealed
	// ErrTransformFailed reports a pipeline stage failure.
	ErrTransformFailed = core.ErrTransformFailed
	// ErrUnknownField reports access to a field the type does not declare.
	ErrUnknownField = core.ErrUnknownField
	// ErrUnknownOperation reports invocation of an operation the type does
	// not declare.
	ErrUnknownOperation = core.ErrUnknownOperation
	// ErrUnnamedType reports registration of a descriptor with no name.
	ErrUnnamedType = core.ErrUnnamedType
	// ErrUnresolvedType reports a type name no resolver can serve.
	ErrUnresolvedType = core.ErrUnresolvedType
)
