package core

import (
	"errors"
	"strings"
	"testing"
)

// TestFill_FieldWriteFailure_IsInternalErrorNamingField verifies a failed
// field assignment aborts the fill with an error naming the field. The
// failure is forced by corrupting the instance's field map, which no public
// path can do.
func TestFill_FieldWriteFailure_IsInternalErrorNamingField(t *testing.T) {
	t.Parallel()

	desc := &TypeDescriptor{
		Name: "bill.Line",
		Kind: KindConcrete,
		Fields: []Field{
			{Name: "qty", Type: "int"},
		},
	}

	obj, err := newType(desc, OriginUnmodified, nil).New()
	if err != nil {
		t.Fatalf("instantiating: %v", err)
	}

	delete(obj.fields, "qty")

	_, err = Fill(obj)
	if err == nil {
		t.Fatal("expected the fill to fail")
	}

	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField in chain, got %v", err)
	}

	if !strings.Contains(err.Error(), "bill.Line.qty") {
		t.Errorf("expected error to name the field, got %q", err)
	}

	if !strings.Contains(err.Error(), "internal error") {
		t.Errorf("expected an internal error, got %q", err)
	}
}
