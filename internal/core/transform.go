package core

// Transformer rewrites a type representation before it is defined. A loader
// hands each stage the previous stage's output; a stage returns the rewritten
// descriptor, or an error to abort the whole definition.
//
// Stages never see a store's descriptor directly, only a working copy, so a
// stage may rewrite its input in place or return a fresh clone.
type Transformer interface {
	Transform(desc *TypeDescriptor) (*TypeDescriptor, error)
}

// TransformerFunc adapts a function to the Transformer interface.
type TransformerFunc func(desc *TypeDescriptor) (*TypeDescriptor, error)

// Transform calls f.
func (f TransformerFunc) Transform(desc *TypeDescriptor) (*TypeDescriptor, error) {
	return f(desc)
}

// InterceptMethods returns the standard stage that reroutes operation calls
// through the instance's invocation control. On instances of a type rewritten
// by this stage, an operation the bound control mocks goes to the control's
// handler; everything else runs the original body. Instances with no control
// bound always run the original body.
func InterceptMethods() Transformer {
	return TransformerFunc(func(desc *TypeDescriptor) (*TypeDescriptor, error) {
		out := desc.Clone()

		for i := range out.Operations {
			if out.Operations[i].Abstract {
				continue
			}

			out.Operations[i].Body = interceptedBody(out.Operations[i])
		}

		return out, nil
	})
}

// interceptedBody wraps an operation so each call consults the instance's
// control first. The original body (which may be nil) handles calls the
// control does not claim.
func interceptedBody(op Operation) Body {
	original := op.Body

	return func(self *Object, args []Value) (Value, error) {
		control := self.Control()
		if control != nil && control.IsMocked(op.Name) {
			return control.Handler()(self, op, args)
		}

		if original == nil {
			def, _ := DefaultValue(op.Returns)

			return def, nil
		}

		return original(self, args)
	}
}
