package core

import (
	"errors"
	"fmt"
)

// Handler receives every operation routed to a mocked instance or a proxied
// interface value. target is the instance or proxy the operation was invoked
// on.
type Handler func(target Value, op Operation, args []Value) (Value, error)

// Sentinel errors for proxy construction.
var (
	ErrNilHandler    = errors.New("invocation handler cannot be nil")
	ErrNilDescriptor = errors.New("type descriptor cannot be nil")
)

// Proxy is a stand-in for an interface type: a value that forwards every
// operation of the interface to a single handler. Interface types are never
// transformed or instantiated; a proxy is the only runtime value they get.
type Proxy struct {
	desc    *TypeDescriptor
	handler Handler
}

// NewProxy returns a proxy for the described interface type, forwarding all
// operations to handler.
func NewProxy(desc *TypeDescriptor, handler Handler) (*Proxy, error) {
	if desc == nil {
		return nil, ErrNilDescriptor
	}

	if handler == nil {
		return nil, ErrNilHandler
	}

	return &Proxy{desc: desc, handler: handler}, nil
}

// TypeName returns the name of the proxied interface type.
func (p *Proxy) TypeName() string {
	return p.desc.Name
}

// Invoke forwards the named operation to the proxy's handler.
func (p *Proxy) Invoke(name string, args ...Value) (Value, error) {
	op, ok := p.desc.operation(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownOperation, p.desc.Name, name)
	}

	return p.handler(p, op, args)
}
