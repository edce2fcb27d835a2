package core_test

import (
	"testing"

	"github.com/faekit/changeling"
)

// Shared descriptor fixtures for the core tests: a tiny shop domain plus the
// platform names the built-in defer set claims.

// orderDescriptor describes a concrete type with primitive fields and one
// operation with a real body.
func orderDescriptor() *changeling.TypeDescriptor {
	return &changeling.TypeDescriptor{
		Name: "shop.Order",
		Kind: changeling.KindConcrete,
		Fields: []changeling.Field{
			{Name: "id", Type: "int"},
			{Name: "note", Type: "string"},
		},
		Operations: []changeling.Operation{
			{
				Name:    "Describe",
				Returns: "string",
				Body: func(self *changeling.Object, _ []changeling.Value) (changeling.Value, error) {
					note, err := self.Get("note")
					if err != nil {
						return nil, err
					}

					return "order: " + note.(string), nil
				},
			},
		},
	}
}

// paymentDescriptor describes an abstract type with one abstract and one
// concrete operation.
func paymentDescriptor() *changeling.TypeDescriptor {
	return &changeling.TypeDescriptor{
		Name: "shop.PaymentMethod",
		Kind: changeling.KindAbstract,
		Fields: []changeling.Field{
			{Name: "currency", Type: "string"},
		},
		Operations: []changeling.Operation{
			{Name: "Charge", Params: []string{"int"}, Returns: "string", Errors: []string{"error"}, Abstract: true},
			{
				Name:    "Currency",
				Returns: "string",
				Body: func(self *changeling.Object, _ []changeling.Value) (changeling.Value, error) {
					return self.Get("currency")
				},
			},
		},
	}
}

// notifierDescriptor describes an interface type.
func notifierDescriptor() *changeling.TypeDescriptor {
	return &changeling.TypeDescriptor{
		Name: "shop.Notifier",
		Kind: changeling.KindInterface,
		Operations: []changeling.Operation{
			{Name: "Notify", Params: []string{"string"}, Returns: "bool", Abstract: true},
		},
	}
}

// clockDescriptor describes a platform type inside the built-in defer set.
func clockDescriptor() *changeling.TypeDescriptor {
	return &changeling.TypeDescriptor{
		Name: "std.Clock",
		Kind: changeling.KindConcrete,
		Operations: []changeling.Operation{
			{Name: "Now", Returns: "int64"},
		},
	}
}

// buildHost returns a host over a fresh catalog holding descs.
func buildHost(t *testing.T, descs ...*changeling.TypeDescriptor) *changeling.Host {
	t.Helper()

	catalog := changeling.NewCatalog()
	for _, desc := range descs {
		if err := catalog.Register(desc); err != nil {
			t.Fatalf("registering %s: %v", desc.Name, err)
		}
	}

	host, err := changeling.NewHost(catalog)
	if err != nil {
		t.Fatalf("creating host: %v", err)
	}

	return host
}

// buildLoader returns a loader over a fresh host holding descs.
func buildLoader(t *testing.T, modify []string, descs ...*changeling.TypeDescriptor) *changeling.Loader {
	t.Helper()

	loader, err := changeling.NewLoader(buildHost(t, descs...), modify)
	if err != nil {
		t.Fatalf("creating loader: %v", err)
	}

	return loader
}

// newInstance resolves name through loader and constructs an instance,
// failing the test on any error.
func newInstance(t *testing.T, loader *changeling.Loader, name string) *changeling.Object {
	t.Helper()

	typ, err := loader.Resolve(name)
	if err != nil {
		t.Fatalf("resolving %s: %v", name, err)
	}

	obj, err := typ.New()
	if err != nil {
		t.Fatalf("instantiating %s: %v", name, err)
	}

	return obj
}
