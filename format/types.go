// Package format defines the small shared enums used across the decode
// pipeline: the BLF LogContainer compression method, the BLF inner object
// types, and the signal-store value kind. Keeping these as named uint
// types with a String() method mirrors arloliu-mebo/format, which uses the
// same shape for its own EncodingType/CompressionType.
package format

// CompressionMethod identifies how a BLF LogContainer payload is packed.
type CompressionMethod uint16

const (
	CompressionNone CompressionMethod = 0 // CompressionNone: payload stored as-is.
	CompressionZlib CompressionMethod = 2 // CompressionZlib: payload is zlib/deflate compressed.
)

func (c CompressionMethod) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	default:
		return "unknown"
	}
}

// ObjectType identifies the type of a BLF outer or inner LOBJ record.
type ObjectType uint32

const (
	ObjTypeLogContainer ObjectType = 10 // ObjTypeLogContainer: the only outer object type that carries frames.
	ObjTypeCanMessage   ObjectType = 1  // ObjTypeCanMessage: classic CAN data frame.
	ObjTypeCanErrorExt  ObjectType = 73 // ObjTypeCanErrorExt: extended CAN error frame.
	ObjTypeCanMessage2  ObjectType = 86 // ObjTypeCanMessage2: CAN data frame, extended header variant.
)

func (o ObjectType) String() string {
	switch o {
	case ObjTypeLogContainer:
		return "LogContainer"
	case ObjTypeCanMessage:
		return "CanMessage"
	case ObjTypeCanErrorExt:
		return "CanErrorExt"
	case ObjTypeCanMessage2:
		return "CanMessage2"
	default:
		return "Unknown"
	}
}

// ValueKind tags the four SignalSeries value types (spec §3) and doubles as
// the on-wire type marker in the stream sink framing (spec §6).
type ValueKind uint8

const (
	KindI64    ValueKind = 1
	KindU64    ValueKind = 2
	KindF64    ValueKind = 3
	KindString ValueKind = 4
)

func (k ValueKind) String() string {
	switch k {
	case KindI64:
		return "i64"
	case KindU64:
		return "u64"
	case KindF64:
		return "f64"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}
