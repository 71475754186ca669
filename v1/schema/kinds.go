package schema

import "google.golang.org/protobuf/reflect/protoreflect"

// FieldKind is the closed set of field kinds the flattening engine dispatches on.
type FieldKind int

const (
	KindUnsupported FieldKind = iota
	KindDouble
	KindFloat
	KindUint32
	KindUint64
	KindBool
	KindInt32
	KindInt64
	KindEnum
	KindString
	KindBytes
	KindMessage
)

var kindNames = [...]string{
	KindUnsupported: "unsupported",
	KindDouble:      "double",
	KindFloat:       "float",
	KindUint32:      "uint32",
	KindUint64:      "uint64",
	KindBool:        "bool",
	KindInt32:       "int32",
	KindInt64:       "int64",
	KindEnum:        "enum",
	KindString:      "string",
	KindBytes:       "bytes",
	KindMessage:     "message",
}

func (k FieldKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnsupported]
	}
	return kindNames[k]
}

// IsNumeric reports whether values of this kind are widened to float64.
func (k FieldKind) IsNumeric() bool {
	switch k {
	case KindDouble, KindFloat, KindUint32, KindUint64, KindBool, KindInt32, KindInt64:
		return true
	default:
		return false
	}
}

// kindOf folds the wire-level kinds into their value-level equivalent:
// fixed encodings are unsigned, zig-zag and sfixed encodings are signed and
// groups behave like nested messages.
func kindOf(k protoreflect.Kind) FieldKind {
	switch k {
	case protoreflect.DoubleKind:
		return KindDouble
	case protoreflect.FloatKind:
		return KindFloat
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return KindUint32
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return KindUint64
	case protoreflect.BoolKind:
		return KindBool
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return KindInt32
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return KindInt64
	case protoreflect.EnumKind:
		return KindEnum
	case protoreflect.StringKind:
		return KindString
	case protoreflect.BytesKind:
		return KindBytes
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return KindMessage
	default:
		return KindUnsupported
	}
}
