package core

// DefaultValue returns the canonical non-null default for a primitive type
// name, which is the Go zero value of that type. The second return reports
// whether the name is in the table at all: object, array, and interface
// type names are absent, and callers decide what absence means for them.
//
// Strings are in the table because Go strings are values and cannot be null.
func DefaultValue(typeName string) (Value, bool) {
	switch typeName {
	case "bool":
		return false, true
	case "string":
		return "", true
	case "int":
		return int(0), true
	case "int8":
		return int8(0), true
	case "int16":
		return int16(0), true
	case "int32":
		return int32(0), true
	case "int64":
		return int64(0), true
	case "uint":
		return uint(0), true
	case "uint8":
		return uint8(0), true
	case "uint16":
		return uint16(0), true
	case "uint32":
		return uint32(0), true
	case "uint64":
		return uint64(0), true
	case "uintptr":
		return uintptr(0), true
	case "byte":
		return byte(0), true
	case "rune":
		return rune(0), true
	case "float32":
		return float32(0), true
	case "float64":
		return float64(0), true
	case "complex64":
		return complex64(0), true
	case "complex128":
		return complex128(0), true
	default:
		return nil, false
	}
}
