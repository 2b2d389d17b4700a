package types

import (
	"fmt"
	"strings"
)

// Label renders a human-readable name for a TypeID, for traces and
// internal-error reports.
func (in *Interner) Label(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindInt:
		if tt.Width == WidthAny {
			return "int"
		}
		return fmt.Sprintf("int%d", tt.Width)
	case KindUint:
		if tt.Width == WidthAny {
			return "uint"
		}
		return fmt.Sprintf("uint%d", tt.Width)
	case KindFloat:
		if tt.Width == WidthAny {
			return "float"
		}
		return fmt.Sprintf("float%d", tt.Width)
	case KindArray:
		if tt.Count == ArrayDynamicLength {
			return "[" + in.Label(tt.Elem) + "]"
		}
		return fmt.Sprintf("[%s; %d]", in.Label(tt.Elem), tt.Count)
	case KindReference:
		if tt.Mutable {
			return "&mut " + in.Label(tt.Elem)
		}
		return "&" + in.Label(tt.Elem)
	case KindTask:
		return "Task<" + in.Label(tt.Elem) + ">"
	case KindTuple:
		elems, _ := in.TupleElems(id)
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = in.Label(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindInfer:
		return fmt.Sprintf("?%d", tt.Payload)
	default:
		return tt.Kind.String()
	}
}
