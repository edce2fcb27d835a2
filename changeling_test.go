package changeling_test

import (
	"bytes"
	"fmt"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"pgregory.net/rapid"

	"github.com/faekit/changeling"
)

// newBankCatalog registers a small banking domain: a concrete account with
// one real operation body, a plain card type, an abstract payment gateway,
// and an auditor interface.
func newBankCatalog(t *testing.T) *changeling.Catalog {
	t.Helper()

	catalog := changeling.NewCatalog()

	descriptors := []*changeling.TypeDescriptor{
		{
			Name: "bank.Account",
			Kind: changeling.KindConcrete,
			Fields: []changeling.Field{
				{Name: "owner", Type: "string"},
				{Name: "balance", Type: "int64"},
				{Name: "card", Type: "bank.Card"},
			},
			Operations: []changeling.Operation{
				{
					Name:    "Owner",
					Returns: "string",
					Body: func(self *changeling.Object, _ []changeling.Value) (changeling.Value, error) {
						return self.Get("owner")
					},
				},
				{Name: "Flagged", Returns: "bool"},
			},
		},
		{
			Name:   "bank.Card",
			Kind:   changeling.KindConcrete,
			Fields: []changeling.Field{{Name: "number", Type: "string"}},
		},
		{
			Name:   "bank.Gateway",
			Kind:   changeling.KindAbstract,
			Fields: []changeling.Field{{Name: "endpoint", Type: "string"}},
			Operations: []changeling.Operation{
				{Name: "Charge", Params: []string{"int64"}, Returns: "string", Abstract: true},
			},
		},
		{
			Name: "bank.Auditor",
			Kind: changeling.KindInterface,
			Operations: []changeling.Operation{
				{Name: "Record", Params: []string{"string"}, Returns: "bool", Abstract: true},
			},
		},
	}

	for _, desc := range descriptors {
		if err := catalog.Register(desc); err != nil {
			t.Fatalf("registering %s: %v", desc.Name, err)
		}
	}

	return catalog
}

// newBankLoader builds a host over the bank catalog and a loader claiming
// the bank package for transformation.
func newBankLoader(t *testing.T) *changeling.Loader {
	t.Helper()

	host, err := changeling.NewHost(newBankCatalog(t))
	if err != nil {
		t.Fatalf("NewHost failed: %v", err)
	}

	loader, err := changeling.NewLoader(host, []string{"bank."})
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	return loader
}

// TestInterceptedInvocation_EndToEnd verifies the whole path a test double
// travels: resolution through the rewrite pipeline, instantiation, control
// binding, and per-operation routing between the handler and the original
// body.
func TestInterceptedInvocation_EndToEnd(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	loader := newBankLoader(t)
	g.Expect(loader.SetPipeline(changeling.InterceptMethods())).To(Succeed())

	typ, err := loader.Resolve("bank.Account")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(typ.Origin()).To(Equal(changeling.OriginTransformed))

	mocked, err := typ.New()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(mocked.Set("owner", "alice")).To(Succeed())

	handler := func(target changeling.Value, op changeling.Operation, _ []changeling.Value) (changeling.Value, error) {
		obj, ok := target.(*changeling.Object)
		g.Expect(ok).To(BeTrue(), "handler should receive the instance")

		owner, err := obj.Get("owner")
		g.Expect(err).NotTo(HaveOccurred())

		return fmt.Sprintf("intercepted %s of %s", op.Name, owner), nil
	}

	control, err := changeling.NewInvocationControl(handler, "Owner")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(mocked.BindControl(control)).To(Succeed())

	// The mocked operation routes to the handler.
	got, err := mocked.Invoke("Owner")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal("intercepted Owner of alice"))

	// An operation outside the mocked set still runs default behavior.
	flagged, err := mocked.Invoke("Flagged")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(flagged).To(Equal(false))

	// A second instance without a control keeps the original body.
	plain, err := typ.New()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(plain.Set("owner", "bob")).To(Succeed())

	original, err := plain.Invoke("Owner")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(original).To(Equal("bob"))
}

// TestSynthesisAndFill_EndToEnd verifies that an abstract type synthesizes
// into an instantiable stub whose instances fill cleanly and answer abstract
// operations with canonical defaults.
func TestSynthesisAndFill_EndToEnd(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	loader := newBankLoader(t)

	abstract, err := loader.Resolve("bank.Gateway")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(abstract.Kind()).To(Equal(changeling.KindAbstract))

	stub, err := changeling.NewSynthesizer().Synthesize(abstract)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(stub.Name()).To(HavePrefix("stub.bank.Gateway_"))
	g.Expect(stub.Kind()).To(Equal(changeling.KindConcrete))
	g.Expect(stub.Origin()).To(Equal(changeling.OriginSynthesized))

	obj, err := stub.New()
	g.Expect(err).NotTo(HaveOccurred())

	_, err = changeling.Fill(obj)
	g.Expect(err).NotTo(HaveOccurred())

	// The stub inherits the abstract type's fields.
	endpoint, err := obj.Get("endpoint")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(endpoint).To(Equal(""))

	// Abstract operations answer with the canonical default.
	charged, err := obj.Invoke("Charge", int64(9))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(charged).To(Equal(""))
}

// TestFill_BuildsUsableObjectGraph verifies that filling wires nested
// objects and proxies in place of nil references.
func TestFill_BuildsUsableObjectGraph(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	loader := newBankLoader(t)

	typ, err := loader.Resolve("bank.Account")
	g.Expect(err).NotTo(HaveOccurred())

	obj, err := typ.New()
	g.Expect(err).NotTo(HaveOccurred())

	_, err = changeling.Fill(obj)
	g.Expect(err).NotTo(HaveOccurred())

	card, err := obj.Get("card")
	g.Expect(err).NotTo(HaveOccurred())

	cardObj, ok := card.(*changeling.Object)
	g.Expect(ok).To(BeTrue(), "card should be materialized as an object")
	g.Expect(cardObj.TypeName()).To(Equal("bank.Card"))

	number, err := cardObj.Get("number")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(number).To(Equal(""), "nested fill should reach the card's fields")
}

// TestDeferredResolution_SharesHostDefinitions verifies that deferred names
// resolve to one shared definition, while loader-defined names stay local to
// each loader.
func TestDeferredResolution_SharesHostDefinitions(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	host, err := changeling.NewHost(newBankCatalog(t))
	g.Expect(err).NotTo(HaveOccurred())

	deferringA, err := changeling.NewLoader(host, nil, "bank.")
	g.Expect(err).NotTo(HaveOccurred())

	deferringB, err := changeling.NewLoader(host, nil, "bank.")
	g.Expect(err).NotTo(HaveOccurred())

	local, err := changeling.NewLoader(host, nil)
	g.Expect(err).NotTo(HaveOccurred())

	cardA, err := deferringA.Resolve("bank.Card")
	g.Expect(err).NotTo(HaveOccurred())

	cardB, err := deferringB.Resolve("bank.Card")
	g.Expect(err).NotTo(HaveOccurred())

	cardLocal, err := local.Resolve("bank.Card")
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(cardA).To(BeIdenticalTo(cardB), "deferring loaders should share the host definition")
	g.Expect(cardLocal).NotTo(BeIdenticalTo(cardA), "a loader-defined type is a distinct identity")
	g.Expect(cardA.Origin()).To(Equal(changeling.OriginDeferred))
	g.Expect(cardLocal.Origin()).To(Equal(changeling.OriginUnmodified))
}

// TestLoaderSessionIDs verifies each loader carries its own non-empty id.
func TestLoaderSessionIDs(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	host, err := changeling.NewHost(newBankCatalog(t))
	g.Expect(err).NotTo(HaveOccurred())

	first, err := changeling.NewLoader(host, nil)
	g.Expect(err).NotTo(HaveOccurred())

	second, err := changeling.NewLoader(host, nil)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(first.ID()).NotTo(BeEmpty())
	g.Expect(second.ID()).NotTo(BeEmpty())
	g.Expect(first.ID()).NotTo(Equal(second.ID()))
}

// TestSetLogger_TracesResolutionDecisions verifies that an installed logger
// receives the per-name resolution trace, tagged with the loader id.
func TestSetLogger_TracesResolutionDecisions(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	loader := newBankLoader(t)

	var buf bytes.Buffer

	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	loader.SetLogger(logger)

	_, err := loader.Resolve("bank.Account")
	g.Expect(err).NotTo(HaveOccurred())

	trace := buf.String()
	g.Expect(trace).To(ContainSubstring("bank.Account"))
	g.Expect(trace).To(ContainSubstring("transform"))
	g.Expect(trace).To(ContainSubstring(loader.ID()))
}

// TestPatternRouting_Rapid property-checks the resolution decision order:
// deferral wins over everything, the ignore set wins over a wildcard modify
// set, and everything else under a wildcard is transformed.
func TestPatternRouting_Rapid(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		pkg := rapid.SampledFrom([]string{"std", "runtime", "bank", "shop", "stub", "changeling"}).Draw(rt, "pkg")
		typeName := rapid.StringMatching(`[A-Z][A-Za-z0-9]{0,8}`).Draw(rt, "typeName")
		qualified := pkg + "." + typeName

		catalog := changeling.NewCatalog()

		err := catalog.Register(&changeling.TypeDescriptor{Name: qualified, Kind: changeling.KindConcrete})
		if err != nil {
			rt.Fatalf("register: %v", err)
		}

		host, err := changeling.NewHost(catalog)
		if err != nil {
			rt.Fatalf("host: %v", err)
		}

		loader, err := changeling.NewLoader(host, []string{"*"})
		if err != nil {
			rt.Fatalf("loader: %v", err)
		}

		typ, err := loader.Resolve(qualified)
		if err != nil {
			rt.Fatalf("resolve %s: %v", qualified, err)
		}

		want := changeling.OriginTransformed

		switch pkg {
		case "std", "runtime":
			want = changeling.OriginDeferred
		case "stub", "changeling":
			want = changeling.OriginUnmodified
		}

		if typ.Origin() != want {
			rt.Fatalf("%s resolved %v, want %v", qualified, typ.Origin(), want)
		}
	})
}

// TestStubNames_Unique_Rapid property-checks that repeated synthesis from
// one abstract type never reuses a stub name, within a burst or across
// bursts.
func TestStubNames_Unique_Rapid(t *testing.T) {
	t.Parallel()

	loader := newBankLoader(t)

	abstract, err := loader.Resolve("bank.Gateway")
	if err != nil {
		t.Fatalf("resolving bank.Gateway: %v", err)
	}

	synthesizer := changeling.NewSynthesizer()
	seen := make(map[string]bool)

	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(2, 25).Draw(rt, "count")

		for range count {
			stub, err := synthesizer.Synthesize(abstract)
			if err != nil {
				rt.Fatalf("synthesize: %v", err)
			}

			if seen[stub.Name()] {
				rt.Fatalf("stub name %s issued twice", stub.Name())
			}

			seen[stub.Name()] = true
		}
	})
}

// TestFill_PrimitiveFieldsNeverNil_Rapid property-checks the core fill
// guarantee: any field whose type has a table default is non-nil after
// filling, whatever the field mix.
func TestFill_PrimitiveFieldsNeverNil_Rapid(t *testing.T) {
	t.Parallel()

	primitives := []string{
		"bool", "string", "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64",
		"byte", "rune", "float32", "float64", "complex64", "complex128",
	}

	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 8).Draw(rt, "count")
		fields := make([]changeling.Field, count)

		for i := range count {
			fields[i] = changeling.Field{
				Name: fmt.Sprintf("field%d", i),
				Type: rapid.SampledFrom(primitives).Draw(rt, fmt.Sprintf("type%d", i)),
			}
		}

		catalog := changeling.NewCatalog()

		err := catalog.Register(&changeling.TypeDescriptor{
			Name:   "gen.Subject",
			Kind:   changeling.KindConcrete,
			Fields: fields,
		})
		if err != nil {
			rt.Fatalf("register: %v", err)
		}

		host, err := changeling.NewHost(catalog)
		if err != nil {
			rt.Fatalf("host: %v", err)
		}

		loader, err := changeling.NewLoader(host, nil)
		if err != nil {
			rt.Fatalf("loader: %v", err)
		}

		typ, err := loader.Resolve("gen.Subject")
		if err != nil {
			rt.Fatalf("resolve: %v", err)
		}

		obj, err := typ.New()
		if err != nil {
			rt.Fatalf("new: %v", err)
		}

		if _, err := changeling.Fill(obj); err != nil {
			rt.Fatalf("fill: %v", err)
		}

		for _, field := range fields {
			value, err := obj.Get(field.Name)
			if err != nil {
				rt.Fatalf("get %s: %v", field.Name, err)
			}

			if value == nil {
				rt.Fatalf("field %s (%s) is nil after fill", field.Name, field.Type)
			}
		}
	})
}
