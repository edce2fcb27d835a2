package source

import (
	"fmt"
	"strings"

	"github.com/dave/dst"
)

// typeString renders a type expression as Go source text, without any local
// qualification.
//
//nolint:cyclop // Type-switch dispatcher over expression shapes; complexity is inherent
func typeString(expr dst.Expr) string {
	switch typ := expr.(type) {
	case *dst.Ident:
		return typ.Name
	case *dst.BasicLit:
		return typ.Value
	case *dst.SelectorExpr:
		return typeString(typ.X) + "." + typ.Sel.Name
	case *dst.StarExpr:
		return "*" + typeString(typ.X)
	case *dst.ArrayType:
		if typ.Len != nil {
			return "[" + typeString(typ.Len) + "]" + typeString(typ.Elt)
		}

		return "[]" + typeString(typ.Elt)
	case *dst.MapType:
		return "map[" + typeString(typ.Key) + "]" + typeString(typ.Value)
	case *dst.ChanType:
		switch typ.Dir {
		case dst.SEND:
			return "chan<- " + typeString(typ.Value)
		case dst.RECV:
			return "<-chan " + typeString(typ.Value)
		default:
			return "chan " + typeString(typ.Value)
		}
	case *dst.FuncType:
		return funcTypeString(typ)
	case *dst.InterfaceType:
		// Inline interface literals have no resolvable name, so their
		// method sets are irrelevant here.
		return "interface{}"
	case *dst.Ellipsis:
		return "..." + typeString(typ.Elt)
	case *dst.ParenExpr:
		return "(" + typeString(typ.X) + ")"
	case *dst.IndexExpr:
		return typeString(typ.X) + "[" + typeString(typ.Index) + "]"
	case *dst.IndexListExpr:
		indices := make([]string, len(typ.Indices))
		for i, index := range typ.Indices {
			indices[i] = typeString(index)
		}

		return typeString(typ.X) + "[" + strings.Join(indices, ", ") + "]"
	default:
		return fmt.Sprintf("%T", expr)
	}
}

// funcTypeString renders a function type as Go source text.
func funcTypeString(funcType *dst.FuncType) string {
	var buf strings.Builder

	buf.WriteString("func(")

	if funcType.Params != nil {
		buf.WriteString(strings.Join(expandFieldTypes(funcType.Params.List, typeString), ", "))
	}

	buf.WriteString(")")

	if funcType.Results != nil && len(funcType.Results.List) > 0 {
		results := expandFieldTypes(funcType.Results.List, typeString)
		if len(results) > 1 {
			buf.WriteString(" (" + strings.Join(results, ", ") + ")")
		} else {
			buf.WriteString(" " + results[0])
		}
	}

	return buf.String()
}

// expandFieldTypes renders a field list as one type string per declared
// name, or one per field when unnamed, so "a, b int" yields two entries.
func expandFieldTypes(fields []*dst.Field, render func(dst.Expr) string) []string {
	var parts []string

	for _, field := range fields {
		typeStr := render(field.Type)

		count := len(field.Names)
		if count == 0 {
			count = 1
		}

		for range count {
			parts = append(parts, typeStr)
		}
	}

	return parts
}
