package portable

// --------------------------------------------------------------------------
// Header Tags
// --------------------------------------------------------------------------

const (
	HdrNull   byte = 101 // absent value
	HdrHandle byte = 102 // back-reference to an already written record
	HdrFull   byte = 103 // self-describing full record
)

// --------------------------------------------------------------------------
// Full Record Layout
// --------------------------------------------------------------------------

// A full record starts with a fixed 18 byte header:
//
//	[1] tag (HdrFull)
//	[1] user type flag
//	[4] type id
//	[4] hash code
//	[4] total length (patched after the body was written)
//	[4] raw offset   (patched after the body was written)
const (
	offsetUserType  = 1
	offsetTypeID    = 2
	offsetHashCode  = 6
	offsetLength    = 10
	offsetRawOffset = 14

	// HeaderSize is the size of the full record header in bytes
	HeaderSize = 18

	// handleSize is the size of a back-reference (tag + int32 distance)
	handleSize = 5

	// fieldHeaderSize is the size of a named field header (id + length)
	fieldHeaderSize = 8
)

// --------------------------------------------------------------------------
// System Type Codes (fast path encodings)
// --------------------------------------------------------------------------

// TypeCode identifies the compact encoding of a well-known type
type TypeCode byte

const (
	TypeByte      TypeCode = 1
	TypeShort     TypeCode = 2
	TypeInt       TypeCode = 3
	TypeLong      TypeCode = 4
	TypeFloat     TypeCode = 5
	TypeDouble    TypeCode = 6
	TypeBool      TypeCode = 8
	TypeString    TypeCode = 9
	TypeUUID      TypeCode = 10
	TypeDate      TypeCode = 11
	TypeByteArr   TypeCode = 12
	TypeShortArr  TypeCode = 13
	TypeIntArr    TypeCode = 14
	TypeLongArr   TypeCode = 15
	TypeFloatArr  TypeCode = 16
	TypeDoubleArr TypeCode = 17
	TypeBoolArr   TypeCode = 19
	TypeStringArr TypeCode = 20
	TypeUUIDArr   TypeCode = 21
	TypeObjArr    TypeCode = 23
	TypeMap       TypeCode = 25
)

// String returns the string representation of a TypeCode.
func (c TypeCode) String() string {
	switch c {
	case TypeByte:
		return "byte"
	case TypeShort:
		return "short"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeUUID:
		return "uuid"
	case TypeDate:
		return "date"
	case TypeByteArr:
		return "byte[]"
	case TypeShortArr:
		return "short[]"
	case TypeIntArr:
		return "int[]"
	case TypeLongArr:
		return "long[]"
	case TypeFloatArr:
		return "float[]"
	case TypeDoubleArr:
		return "double[]"
	case TypeBoolArr:
		return "bool[]"
	case TypeStringArr:
		return "string[]"
	case TypeUUIDArr:
		return "uuid[]"
	case TypeObjArr:
		return "object[]"
	case TypeMap:
		return "map"
	default:
		return "unknown"
	}
}
