package portable

import (
	"fmt"
	"github.com/google/uuid"
	"reflect"
	"sort"
	"time"
)

// systemWriteFunc writes a well-known value in its compact form.
// pos is the offset at which the encoding starts. System values never take
// part in handle tracking and have no full record header.
type systemWriteFunc func(c *writeContext, pos int, obj interface{}) error

// systemHandlers is the closed table of fast path encoders, keyed by exact Go type.
// Named types (e.g. type Celsius float64) are not matched and need a descriptor.
// Unsigned integers share the code of the signed type of the same width and are
// written as their two's complement bit pattern: uint32 values above MaxInt32 and
// uint64/uint values above MaxInt64 read back negative. int and uint are written as Long.
// The table is filled in init because the collection handlers call back into Write.
var systemHandlers map[reflect.Type]systemWriteFunc

func init() {
	systemHandlers = map[reflect.Type]systemWriteFunc{
		// scalars
		reflect.TypeOf(int8(0)):     scalarHandler(TypeByte, func(s *Stream, v int8) error { return s.WriteByte(byte(v)) }),
		reflect.TypeOf(uint8(0)):    scalarHandler(TypeByte, func(s *Stream, v uint8) error { return s.WriteByte(v) }),
		reflect.TypeOf(int16(0)):    scalarHandler(TypeShort, (*Stream).WriteInt16),
		reflect.TypeOf(uint16(0)):   scalarHandler(TypeShort, func(s *Stream, v uint16) error { return s.WriteInt16(int16(v)) }),
		reflect.TypeOf(int32(0)):    scalarHandler(TypeInt, (*Stream).WriteInt32),
		reflect.TypeOf(uint32(0)):   scalarHandler(TypeInt, func(s *Stream, v uint32) error { return s.WriteInt32(int32(v)) }),
		reflect.TypeOf(int64(0)):    scalarHandler(TypeLong, (*Stream).WriteInt64),
		reflect.TypeOf(uint64(0)):   scalarHandler(TypeLong, func(s *Stream, v uint64) error { return s.WriteInt64(int64(v)) }),
		reflect.TypeOf(int(0)):      scalarHandler(TypeLong, func(s *Stream, v int) error { return s.WriteInt64(int64(v)) }),
		reflect.TypeOf(uint(0)):     scalarHandler(TypeLong, func(s *Stream, v uint) error { return s.WriteInt64(int64(v)) }),
		reflect.TypeOf(float32(0)):  scalarHandler(TypeFloat, (*Stream).WriteFloat32),
		reflect.TypeOf(float64(0)):  scalarHandler(TypeDouble, (*Stream).WriteFloat64),
		reflect.TypeOf(false):       scalarHandler(TypeBool, (*Stream).WriteBool),
		reflect.TypeOf(""):          scalarHandler(TypeString, (*Stream).WriteString),
		reflect.TypeOf(uuid.UUID{}): scalarHandler(TypeUUID, writeUUID),
		reflect.TypeOf(time.Time{}): scalarHandler(TypeDate, writeDate),

		// arrays
		reflect.TypeOf([]byte(nil)):      writeByteArray,
		reflect.TypeOf([]int16(nil)):     arrayHandler(TypeShortArr, (*Stream).WriteInt16),
		reflect.TypeOf([]int32(nil)):     arrayHandler(TypeIntArr, (*Stream).WriteInt32),
		reflect.TypeOf([]int64(nil)):     arrayHandler(TypeLongArr, (*Stream).WriteInt64),
		reflect.TypeOf([]float32(nil)):   arrayHandler(TypeFloatArr, (*Stream).WriteFloat32),
		reflect.TypeOf([]float64(nil)):   arrayHandler(TypeDoubleArr, (*Stream).WriteFloat64),
		reflect.TypeOf([]bool(nil)):      arrayHandler(TypeBoolArr, (*Stream).WriteBool),
		reflect.TypeOf([]string(nil)):    arrayHandler(TypeStringArr, (*Stream).WriteString),
		reflect.TypeOf([]uuid.UUID(nil)): arrayHandler(TypeUUIDArr, writeUUID),

		// collections, elements go through the full dispatch
		reflect.TypeOf([]interface{}(nil)):          writeObjectArray,
		reflect.TypeOf(map[string]interface{}(nil)): writeMap,
	}
}

// systemHandler returns the fast path encoder for typ, if there is one
func systemHandler(typ reflect.Type) (systemWriteFunc, bool) {
	h, ok := systemHandlers[typ]
	return h, ok
}

// IsSystemType reports whether values of the given type use a fast path encoding
func IsSystemType(typ reflect.Type) bool {
	_, ok := systemHandlers[typ]
	return ok
}

// --------------------------------------------------------------------------
// Handler Factories
// --------------------------------------------------------------------------

// scalarHandler creates a handler writing [code][value]
func scalarHandler[T any](code TypeCode, write func(s *Stream, v T) error) systemWriteFunc {
	return func(c *writeContext, _ int, obj interface{}) error {
		if err := c.stream.WriteByte(byte(code)); err != nil {
			return err
		}
		return write(c.stream, obj.(T))
	}
}

// arrayHandler creates a handler writing [code][int32 count][values...]
func arrayHandler[T any](code TypeCode, write func(s *Stream, v T) error) systemWriteFunc {
	return func(c *writeContext, _ int, obj interface{}) error {
		arr := obj.([]T)
		if err := writeArrayHeader(c.stream, code, len(arr)); err != nil {
			return err
		}
		for _, v := range arr {
			if err := write(c.stream, v); err != nil {
				return err
			}
		}
		return nil
	}
}

// --------------------------------------------------------------------------
// Handlers
// --------------------------------------------------------------------------

func writeUUID(s *Stream, v uuid.UUID) error {
	_, err := s.Write(v[:])
	return err
}

// writeDate writes a time as nanoseconds since the unix epoch
func writeDate(s *Stream, v time.Time) error {
	return s.WriteInt64(v.UnixNano())
}

func writeByteArray(c *writeContext, _ int, obj interface{}) error {
	arr := obj.([]byte)
	if err := writeArrayHeader(c.stream, TypeByteArr, len(arr)); err != nil {
		return err
	}
	_, err := c.stream.Write(arr)
	return err
}

func writeObjectArray(c *writeContext, _ int, obj interface{}) error {
	arr := obj.([]interface{})
	leave, err := c.enterCollection(obj)
	if err != nil {
		return err
	}
	defer leave()

	if err := writeArrayHeader(c.stream, TypeObjArr, len(arr)); err != nil {
		return err
	}
	for i, v := range arr {
		if err := c.Write(v); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// writeMap writes [code][int32 count][key value]... with keys in sorted order
func writeMap(c *writeContext, _ int, obj interface{}) error {
	m := obj.(map[string]interface{})
	leave, err := c.enterCollection(obj)
	if err != nil {
		return err
	}
	defer leave()

	if err := writeArrayHeader(c.stream, TypeMap, len(m)); err != nil {
		return err
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := c.Write(k); err != nil {
			return err
		}
		if err := c.Write(m[k]); err != nil {
			return fmt.Errorf("key %s: %w", k, err)
		}
	}
	return nil
}

func writeArrayHeader(s *Stream, code TypeCode, n int) error {
	if err := s.WriteByte(byte(code)); err != nil {
		return err
	}
	return s.WriteInt32(int32(n))
}
