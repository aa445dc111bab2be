package portable

import (
	"github.com/google/uuid"
	"time"
)

// --------------------------------------------------------------------------
// Serializer Callbacks
// --------------------------------------------------------------------------

// IPortableSerializer writes the fields of objects of one registered type
type IPortableSerializer interface {
	// WritePortable writes the fields of obj using the given writer.
	// Nested objects must be written through the writer as well, so that
	// shared instances and cycles are encoded as back-references.
	WritePortable(obj interface{}, w IPortableWriter) error
}

// PortableSerializerFunc adapts a function to the IPortableSerializer interface
type PortableSerializerFunc func(obj interface{}, w IPortableWriter) error

func (f PortableSerializerFunc) WritePortable(obj interface{}, w IPortableWriter) error {
	return f(obj, w)
}

// IPortable can be implemented by types that know how to write themselves.
// Registering such a type does not require an explicit serializer.
type IPortable interface {
	WritePortable(w IPortableWriter) error
}

// IPortableHashCoder can be implemented by types to supply the hash code
// written into the record header. The encoder never computes hashes itself.
type IPortableHashCoder interface {
	PortableHashCode() int32
}

// --------------------------------------------------------------------------
// Id Mapping
// --------------------------------------------------------------------------

// IIdResolver translates type and field names to the numeric ids used on the wire
type IIdResolver interface {
	// TypeID returns the id of the type with the given name
	TypeID(typeName string) int32
	// FieldID returns the id of the field with the given name in the given type
	FieldID(typeID int32, fieldName string) int32
}

// --------------------------------------------------------------------------
// Writer Facade
// --------------------------------------------------------------------------

// IPortableRawWriter writes unnamed values into the raw section of a record.
// The raw section is a trailing region of untyped, positional data.
type IPortableRawWriter interface {
	WriteBool(v bool) error
	WriteByte(v byte) error
	WriteInt16(v int16) error
	WriteInt32(v int32) error
	WriteInt64(v int64) error
	WriteFloat32(v float32) error
	WriteFloat64(v float64) error
	WriteString(v string) error
	WriteUUID(v uuid.UUID) error
	WriteTime(v time.Time) error
	WriteBytes(v []byte) error
	// WriteObject writes any value, including nested records, handles and nil
	WriteObject(v interface{}) error
}

// IPortableWriter is handed to serializer callbacks to write the fields of
// the record that is currently being encoded.
type IPortableWriter interface {
	WriteBool(name string, v bool) error
	WriteByte(name string, v byte) error
	WriteInt16(name string, v int16) error
	WriteInt32(name string, v int32) error
	WriteInt64(name string, v int64) error
	WriteFloat32(name string, v float32) error
	WriteFloat64(name string, v float64) error
	WriteString(name string, v string) error
	WriteUUID(name string, v uuid.UUID) error
	WriteTime(name string, v time.Time) error
	WriteBytes(name string, v []byte) error
	// WriteObject writes any value, including nested records, handles and nil
	WriteObject(name string, v interface{}) error

	// RawWriter switches the current record into raw mode and returns a writer
	// for the raw section. After the switch named fields can no longer be written.
	RawWriter() IPortableRawWriter

	// TypeID returns the type id of the record currently being written
	TypeID() int32
}
