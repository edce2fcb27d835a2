package core

import "sort"

// InvocationControl pairs an invocation handler with the set of operations
// it intercepts on one instance. An empty set means every operation is
// mocked. Controls are immutable once constructed.
type InvocationControl struct {
	handler Handler
	mocked  map[string]struct{}
}

// NewInvocationControl returns a control routing the given operations to
// handler. With no operations named, all operations are mocked. A nil
// handler is an error.
func NewInvocationControl(handler Handler, operations ...string) (*InvocationControl, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	mocked := make(map[string]struct{}, len(operations))
	for _, op := range operations {
		mocked[op] = struct{}{}
	}

	return &InvocationControl{handler: handler, mocked: mocked}, nil
}

// Handler returns the control's invocation handler.
func (ic *InvocationControl) Handler() Handler {
	return ic.handler
}

// MockedOperations returns a sorted copy of the mocked operation names. An
// empty result means every operation is mocked.
func (ic *InvocationControl) MockedOperations() []string {
	ops := make([]string, 0, len(ic.mocked))
	for op := range ic.mocked {
		ops = append(ops, op)
	}

	sort.Strings(ops)

	return ops
}

// IsMocked reports whether the named operation routes to the handler: true
// when the mocked set is empty or contains the name.
func (ic *InvocationControl) IsMocked(operation string) bool {
	if len(ic.mocked) == 0 {
		return true
	}

	_, ok := ic.mocked[operation]

	return ok
}
