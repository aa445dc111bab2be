package portable

import (
	"encoding/binary"
	"fmt"
	"github.com/google/uuid"
	"math"
	"time"
)

// --------------------------------------------------------------------------
// Record
// --------------------------------------------------------------------------

// Record is the header of a full record found in portable data.
// It gives access to the named fields and the raw section of the record,
// nested values are decoded on demand.
type Record struct {
	data      []byte
	Start     int
	UserType  bool
	TypeID    int32
	HashCode  int32
	Length    int32
	RawOffset int32
}

// ReadRecord reads the record at pos. If pos points to a back-reference,
// the referenced record is returned.
func ReadRecord(data []byte, pos int) (Record, error) {
	if err := need(data, pos, 1); err != nil {
		return Record{}, err
	}
	switch data[pos] {
	case HdrFull:
		return readRecordHeader(data, pos)
	case HdrHandle:
		target, err := ResolveHandle(data, pos)
		if err != nil {
			return Record{}, err
		}
		return readRecordHeader(data, target)
	default:
		return Record{}, malformed(pos, "expected record, found tag %d", data[pos])
	}
}

// ResolveHandle returns the start offset of the record a back-reference at pos points to
func ResolveHandle(data []byte, pos int) (int, error) {
	if err := need(data, pos, handleSize); err != nil {
		return 0, err
	}
	if data[pos] != HdrHandle {
		return 0, malformed(pos, "expected handle, found tag %d", data[pos])
	}
	distance := int(int32(binary.LittleEndian.Uint32(data[pos+1:])))
	target := pos + 1 - distance
	if distance <= 0 || target < 0 {
		return 0, malformed(pos, "handle distance %d out of range", distance)
	}
	if data[target] != HdrFull {
		return 0, malformed(pos, "handle points to tag %d at offset %d", data[target], target)
	}
	return target, nil
}

func readRecordHeader(data []byte, pos int) (Record, error) {
	if err := need(data, pos, HeaderSize); err != nil {
		return Record{}, err
	}
	r := Record{
		data:      data,
		Start:     pos,
		UserType:  data[pos+offsetUserType] != 0,
		TypeID:    readInt32(data, pos+offsetTypeID),
		HashCode:  readInt32(data, pos+offsetHashCode),
		Length:    readInt32(data, pos+offsetLength),
		RawOffset: readInt32(data, pos+offsetRawOffset),
	}
	if r.Length < HeaderSize || pos+int(r.Length) > len(data) {
		return Record{}, malformed(pos, "invalid record length %d", r.Length)
	}
	if r.RawOffset < HeaderSize || r.RawOffset > r.Length {
		return Record{}, malformed(pos, "invalid raw offset %d (length %d)", r.RawOffset, r.Length)
	}
	return r, nil
}

// End returns the offset of the first byte after the record
func (r Record) End() int {
	return r.Start + int(r.Length)
}

// HasRaw reports whether the record contains a raw section
func (r Record) HasRaw() bool {
	return r.RawOffset != r.Length
}

// Raw returns the bytes of the raw section (empty if there is none)
func (r Record) Raw() []byte {
	return r.data[r.Start+int(r.RawOffset) : r.End()]
}

// RawReader returns a reader positioned at the start of the raw section
func (r Record) RawReader() *RawReader {
	return &RawReader{data: r.data, pos: r.Start + int(r.RawOffset), end: r.End()}
}

// Field is a named field inside a record
type Field struct {
	ID  int32
	Pos int // absolute offset of the field value
	Len int
}

// Fields returns the named fields of the record in the order they were written
func (r Record) Fields() ([]Field, error) {
	var fields []Field
	pos := r.Start + HeaderSize
	end := r.Start + int(r.RawOffset)
	for pos < end {
		if err := need(r.data[:end], pos, fieldHeaderSize); err != nil {
			return nil, err
		}
		f := Field{
			ID:  readInt32(r.data, pos),
			Len: int(readInt32(r.data, pos+4)),
			Pos: pos + fieldHeaderSize,
		}
		if f.Len < 0 || f.Pos+f.Len > end {
			return nil, malformed(pos, "invalid field length %d", f.Len)
		}
		fields = append(fields, f)
		pos = f.Pos + f.Len
	}
	return fields, nil
}

// Field returns the first field with the given id
func (r Record) Field(id int32) (Field, bool, error) {
	fields, err := r.Fields()
	if err != nil {
		return Field{}, false, err
	}
	for _, f := range fields {
		if f.ID == id {
			return f, true, nil
		}
	}
	return Field{}, false, nil
}

// Value decodes the value of a field of this record
func (r Record) Value(f Field) (interface{}, error) {
	v, _, err := ReadValue(r.data, f.Pos)
	return v, err
}

// --------------------------------------------------------------------------
// Value Decoding
// --------------------------------------------------------------------------

// ReadValue decodes the value at pos and returns it together with the offset
// of the next value. Full records and back-references are returned as Record,
// all other encodings as their natural Go type:
//
//	byte: uint8, short: int16, int: int32, long: int64, float: float32,
//	double: float64, bool, string, uuid.UUID, date: time.Time,
//	arrays: []T, object[]: []interface{}, map: map[string]interface{}
func ReadValue(data []byte, pos int) (interface{}, int, error) {
	if err := need(data, pos, 1); err != nil {
		return nil, 0, err
	}

	switch data[pos] {
	case HdrNull:
		return nil, pos + 1, nil
	case HdrHandle:
		rec, err := ReadRecord(data, pos)
		return rec, pos + handleSize, err
	case HdrFull:
		rec, err := readRecordHeader(data, pos)
		if err != nil {
			return nil, 0, err
		}
		return rec, rec.End(), nil
	}

	code := TypeCode(data[pos])
	pos++

	switch code {
	case TypeByte:
		return readFixed(data, pos, 1, func(b []byte) interface{} { return b[0] })
	case TypeShort:
		return readFixed(data, pos, 2, func(b []byte) interface{} { return int16(binary.LittleEndian.Uint16(b)) })
	case TypeInt:
		return readFixed(data, pos, 4, func(b []byte) interface{} { return int32(binary.LittleEndian.Uint32(b)) })
	case TypeLong:
		return readFixed(data, pos, 8, func(b []byte) interface{} { return int64(binary.LittleEndian.Uint64(b)) })
	case TypeFloat:
		return readFixed(data, pos, 4, func(b []byte) interface{} { return math.Float32frombits(binary.LittleEndian.Uint32(b)) })
	case TypeDouble:
		return readFixed(data, pos, 8, func(b []byte) interface{} { return math.Float64frombits(binary.LittleEndian.Uint64(b)) })
	case TypeBool:
		return readFixed(data, pos, 1, func(b []byte) interface{} { return b[0] != 0 })
	case TypeUUID:
		return readFixed(data, pos, 16, func(b []byte) interface{} { return uuid.UUID(b) })
	case TypeDate:
		return readFixed(data, pos, 8, func(b []byte) interface{} { return time.Unix(0, int64(binary.LittleEndian.Uint64(b))) })
	case TypeString:
		s, next, err := readString(data, pos)
		return s, next, err
	case TypeByteArr:
		n, pos, err := readCount(data, pos, 1)
		if err != nil {
			return nil, 0, err
		}
		arr := make([]byte, n)
		copy(arr, data[pos:pos+n])
		return arr, pos + n, nil
	case TypeShortArr:
		return readArray(data, pos, 2, func(b []byte) int16 { return int16(binary.LittleEndian.Uint16(b)) })
	case TypeIntArr:
		return readArray(data, pos, 4, func(b []byte) int32 { return int32(binary.LittleEndian.Uint32(b)) })
	case TypeLongArr:
		return readArray(data, pos, 8, func(b []byte) int64 { return int64(binary.LittleEndian.Uint64(b)) })
	case TypeFloatArr:
		return readArray(data, pos, 4, func(b []byte) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b)) })
	case TypeDoubleArr:
		return readArray(data, pos, 8, func(b []byte) float64 { return math.Float64frombits(binary.LittleEndian.Uint64(b)) })
	case TypeBoolArr:
		return readArray(data, pos, 1, func(b []byte) bool { return b[0] != 0 })
	case TypeUUIDArr:
		return readArray(data, pos, 16, func(b []byte) uuid.UUID { return uuid.UUID(b) })
	case TypeStringArr:
		n, pos, err := readCount(data, pos, 4)
		if err != nil {
			return nil, 0, err
		}
		arr := make([]string, n)
		for i := range arr {
			if arr[i], pos, err = readString(data, pos); err != nil {
				return nil, 0, err
			}
		}
		return arr, pos, nil
	case TypeObjArr:
		n, pos, err := readCount(data, pos, 1)
		if err != nil {
			return nil, 0, err
		}
		arr := make([]interface{}, n)
		for i := range arr {
			if arr[i], pos, err = ReadValue(data, pos); err != nil {
				return nil, 0, err
			}
		}
		return arr, pos, nil
	case TypeMap:
		n, pos, err := readCount(data, pos, 2)
		if err != nil {
			return nil, 0, err
		}
		m := make(map[string]interface{}, n)
		for i := 0; i < n; i++ {
			var k, v interface{}
			keyPos := pos
			if k, pos, err = ReadValue(data, pos); err != nil {
				return nil, 0, err
			}
			key, ok := k.(string)
			if !ok {
				return nil, 0, malformed(keyPos, "map key is %T, expected string", k)
			}
			if v, pos, err = ReadValue(data, pos); err != nil {
				return nil, 0, err
			}
			m[key] = v
		}
		return m, pos, nil
	default:
		return nil, 0, malformed(pos-1, "unknown type code %d", code)
	}
}

// --------------------------------------------------------------------------
// Raw Reader
// --------------------------------------------------------------------------

// RawReader reads the untyped values of a raw section in the order they were written
type RawReader struct {
	data []byte
	pos  int
	end  int
}

// Remaining returns the number of unread raw bytes
func (r *RawReader) Remaining() int {
	return r.end - r.pos
}

func (r *RawReader) next(n int) ([]byte, error) {
	if r.pos+n > r.end {
		return nil, malformed(r.pos, "raw section too short for %d bytes", n)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *RawReader) ReadBool() (bool, error) {
	b, err := r.next(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func (r *RawReader) ReadByte() (byte, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *RawReader) ReadInt16() (int16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b)), nil
}

func (r *RawReader) ReadInt32() (int32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (r *RawReader) ReadInt64() (int64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

func (r *RawReader) ReadFloat32() (float32, error) {
	v, err := r.ReadInt32()
	return math.Float32frombits(uint32(v)), err
}

func (r *RawReader) ReadFloat64() (float64, error) {
	v, err := r.ReadInt64()
	return math.Float64frombits(uint64(v)), err
}

func (r *RawReader) ReadString() (string, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", malformed(r.pos-4, "negative string length %d", n)
	}
	b, err := r.next(int(n))
	return string(b), err
}

func (r *RawReader) ReadUUID() (uuid.UUID, error) {
	b, err := r.next(16)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.UUID(b), nil
}

func (r *RawReader) ReadTime() (time.Time, error) {
	v, err := r.ReadInt64()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, v), nil
}

// ReadBytes reads a length prefixed byte slice, length -1 is returned as nil
func (r *RawReader) ReadBytes() ([]byte, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if n == -1 {
		return nil, nil
	}
	if n < 0 {
		return nil, malformed(r.pos-4, "negative byte array length %d", n)
	}
	b, err := r.next(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadObject decodes a self-describing value (see ReadValue)
func (r *RawReader) ReadObject() (interface{}, error) {
	v, next, err := ReadValue(r.data[:r.end], r.pos)
	if err != nil {
		return nil, err
	}
	r.pos = next
	return v, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func need(data []byte, pos, n int) error {
	if pos < 0 || pos+n > len(data) {
		return malformed(pos, "need %d bytes, have %d", n, len(data)-pos)
	}
	return nil
}

func readInt32(data []byte, pos int) int32 {
	return int32(binary.LittleEndian.Uint32(data[pos : pos+4]))
}

func readFixed(data []byte, pos, n int, decode func(b []byte) interface{}) (interface{}, int, error) {
	if err := need(data, pos, n); err != nil {
		return nil, 0, err
	}
	return decode(data[pos : pos+n]), pos + n, nil
}

// readCount reads an int32 element count and checks that at least
// count*minElemSize bytes follow it
func readCount(data []byte, pos, minElemSize int) (int, int, error) {
	if err := need(data, pos, 4); err != nil {
		return 0, 0, err
	}
	n := int(readInt32(data, pos))
	if n < 0 {
		return 0, 0, malformed(pos, "negative element count %d", n)
	}
	pos += 4
	if err := need(data, pos, n*minElemSize); err != nil {
		return 0, 0, err
	}
	return n, pos, nil
}

func readString(data []byte, pos int) (string, int, error) {
	n, pos, err := readCount(data, pos, 1)
	if err != nil {
		return "", 0, err
	}
	return string(data[pos : pos+n]), pos + n, nil
}

func readArray[T any](data []byte, pos, size int, decode func(b []byte) T) (interface{}, int, error) {
	n, pos, err := readCount(data, pos, size)
	if err != nil {
		return nil, 0, err
	}
	arr := make([]T, n)
	for i := range arr {
		arr[i] = decode(data[pos : pos+size])
		pos += size
	}
	return arr, pos, nil
}

// describe returns a short description of a decoded value for error messages
func describe(v interface{}) string {
	if rec, ok := v.(Record); ok {
		return fmt.Sprintf("record(type=%d)", rec.TypeID)
	}
	return fmt.Sprintf("%T", v)
}
