package run

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/faekit/changeling"
)

// codeWriter provides common buffer writing functionality for the generator.
type codeWriter struct {
	buf bytes.Buffer
}

// pf writes a formatted string to the buffer.
func (w *codeWriter) pf(format string, args ...any) {
	fmt.Fprintf(&w.buf, format, args...)
}

// string returns the buffer contents.
func (w *codeWriter) string() string {
	return w.buf.String()
}

// renderDescriptorFile renders a complete Go file whose single function
// registers desc with a catalog. Zero-valued descriptor fields are omitted
// from the literal.
func renderDescriptorFile(desc *changeling.TypeDescriptor, pkgName, funcName string) string {
	writer := &codeWriter{}

	writer.pf("// Code generated by descgen. DO NOT EDIT.\n\n")
	writer.pf("package %s\n\n", pkgName)
	writer.pf("import \"github.com/faekit/changeling\"\n\n")
	writer.pf("// %s registers the %s descriptor with c.\n", funcName, desc.Name)
	writer.pf("func %s(c *changeling.Catalog) error {\n", funcName)
	writer.pf("\treturn c.Register(&changeling.TypeDescriptor{\n")
	writer.pf("\t\tName: %q,\n", desc.Name)
	writer.pf("\t\tKind: %s,\n", kindLiteral(desc.Kind))

	if desc.SuperType != "" {
		writer.pf("\t\tSuperType: %q,\n", desc.SuperType)
	}

	if len(desc.Fields) > 0 {
		writer.pf("\t\tFields: []changeling.Field{\n")

		for _, field := range desc.Fields {
			writer.pf("\t\t\t{Name: %q, Type: %q},\n", field.Name, field.Type)
		}

		writer.pf("\t\t},\n")
	}

	if len(desc.Operations) > 0 {
		writer.pf("\t\tOperations: []changeling.Operation{\n")

		for _, op := range desc.Operations {
			writer.pf("\t\t\t%s,\n", operationLiteral(op))
		}

		writer.pf("\t\t},\n")
	}

	writer.pf("\t})\n")
	writer.pf("}\n")

	return writer.string()
}

// operationLiteral renders one operation literal, omitting zero-valued
// fields. Bodies are not representable in generated code; registered
// operations stay body-less and yield return-type defaults when invoked.
func operationLiteral(op changeling.Operation) string {
	parts := []string{fmt.Sprintf("Name: %q", op.Name)}

	if len(op.Params) > 0 {
		quoted := make([]string, len(op.Params))
		for i, param := range op.Params {
			quoted[i] = fmt.Sprintf("%q", param)
		}

		parts = append(parts, "Params: []string{"+strings.Join(quoted, ", ")+"}")
	}

	if op.Returns != "" {
		parts = append(parts, fmt.Sprintf("Returns: %q", op.Returns))
	}

	if len(op.Errors) > 0 {
		quoted := make([]string, len(op.Errors))
		for i, errType := range op.Errors {
			quoted[i] = fmt.Sprintf("%q", errType)
		}

		parts = append(parts, "Errors: []string{"+strings.Join(quoted, ", ")+"}")
	}

	if op.Abstract {
		parts = append(parts, "Abstract: true")
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// kindLiteral names the Kind constant for generated code.
func kindLiteral(kind changeling.Kind) string {
	switch kind {
	case changeling.KindConcrete:
		return "changeling.KindConcrete"
	case changeling.KindAbstract:
		return "changeling.KindAbstract"
	case changeling.KindInterface:
		return "changeling.KindInterface"
	default:
		return fmt.Sprintf("changeling.Kind(%d)", kind)
	}
}
