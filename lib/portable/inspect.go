package portable

import (
	"encoding/hex"
	"fmt"
	"github.com/google/uuid"
	"io"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Record Reader
// --------------------------------------------------------------------------

// RecordReader gives typed access to the named fields of a record.
// Field names are translated to ids with the given resolver, which must be
// the resolver the record was written with.
//
// Absent fields and null values yield the zero value of the requested type.
// A present value of another type is an error.
type RecordReader struct {
	rec      Record
	resolver IIdResolver
	fields   map[int32]Field
}

// NewRecordReader indexes the fields of rec
func NewRecordReader(rec Record, resolver IIdResolver) (*RecordReader, error) {
	if resolver == nil {
		resolver = NewDefaultIdResolver()
	}
	fields, err := rec.Fields()
	if err != nil {
		return nil, err
	}
	r := &RecordReader{
		rec:      rec,
		resolver: resolver,
		fields:   make(map[int32]Field, len(fields)),
	}
	for _, f := range fields {
		if _, ok := r.fields[f.ID]; !ok {
			r.fields[f.ID] = f
		}
	}
	return r, nil
}

// Record returns the underlying record
func (r *RecordReader) Record() Record {
	return r.rec
}

// Has reports whether the record contains a field with the given name
func (r *RecordReader) Has(name string) bool {
	_, ok := r.fields[r.resolver.FieldID(r.rec.TypeID, name)]
	return ok
}

// Value decodes the named field (see ReadValue). The second return value is
// false if the field is absent.
func (r *RecordReader) Value(name string) (interface{}, bool, error) {
	f, ok := r.fields[r.resolver.FieldID(r.rec.TypeID, name)]
	if !ok {
		return nil, false, nil
	}
	v, err := r.rec.Value(f)
	if err != nil {
		return nil, true, fmt.Errorf("field %s: %w", name, err)
	}
	return v, true, nil
}

// Raw returns a reader for the raw section of the record
func (r *RecordReader) Raw() *RawReader {
	return r.rec.RawReader()
}

func (r *RecordReader) Bool(name string) (bool, error) {
	return fieldAs[bool](r, name)
}

func (r *RecordReader) Byte(name string) (byte, error) {
	return fieldAs[byte](r, name)
}

func (r *RecordReader) Int16(name string) (int16, error) {
	return fieldAs[int16](r, name)
}

func (r *RecordReader) Int32(name string) (int32, error) {
	return fieldAs[int32](r, name)
}

func (r *RecordReader) Int64(name string) (int64, error) {
	return fieldAs[int64](r, name)
}

func (r *RecordReader) Float32(name string) (float32, error) {
	return fieldAs[float32](r, name)
}

func (r *RecordReader) Float64(name string) (float64, error) {
	return fieldAs[float64](r, name)
}

func (r *RecordReader) String(name string) (string, error) {
	return fieldAs[string](r, name)
}

func (r *RecordReader) UUID(name string) (uuid.UUID, error) {
	return fieldAs[uuid.UUID](r, name)
}

func (r *RecordReader) Time(name string) (time.Time, error) {
	return fieldAs[time.Time](r, name)
}

func (r *RecordReader) Bytes(name string) ([]byte, error) {
	return fieldAs[[]byte](r, name)
}

// Object returns the nested record of the named field, resolving back-references.
// The second return value is false if the field is absent or null.
func (r *RecordReader) Object(name string) (Record, bool, error) {
	v, ok, err := r.Value(name)
	if err != nil || !ok || v == nil {
		return Record{}, false, err
	}
	rec, ok := v.(Record)
	if !ok {
		return Record{}, false, fmt.Errorf("field %s: expected record, found %s", name, describe(v))
	}
	return rec, true, nil
}

func fieldAs[T any](r *RecordReader, name string) (T, error) {
	var zero T
	v, ok, err := r.Value(name)
	if err != nil || !ok || v == nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("field %s: expected %T, found %s", name, zero, describe(v))
	}
	return t, nil
}

// --------------------------------------------------------------------------
// Dump
// --------------------------------------------------------------------------

// Dump writes a human readable tree of all top-level values in data to w.
// Full records are printed with their header, their fields and the size of
// their raw section, back-references with the offset of their target.
func Dump(w io.Writer, data []byte) error {
	d := &dumper{w: w, data: data}
	pos := 0
	for pos < len(data) {
		next, err := d.value(pos, 0, "")
		if err != nil {
			return err
		}
		pos = next
	}
	return d.err
}

type dumper struct {
	w    io.Writer
	data []byte
	err  error
}

func (d *dumper) printf(indent int, format string, args ...interface{}) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("  ", indent), fmt.Sprintf(format, args...))
}

// value prints the value at pos and returns the offset after it
func (d *dumper) value(pos, indent int, label string) (int, error) {
	if err := need(d.data, pos, 1); err != nil {
		return 0, err
	}

	switch d.data[pos] {
	case HdrHandle:
		target, err := ResolveHandle(d.data, pos)
		if err != nil {
			return 0, err
		}
		d.printf(indent, "%s@%d handle -> @%d", label, pos, target)
		return pos + handleSize, nil

	case HdrFull:
		return d.record(pos, indent, label)

	case byte(TypeObjArr):
		n, next, err := readCount(d.data, pos+1, 1)
		if err != nil {
			return 0, err
		}
		d.printf(indent, "%s@%d %s len=%d", label, pos, TypeObjArr, n)
		for i := 0; i < n; i++ {
			if next, err = d.value(next, indent+1, fmt.Sprintf("[%d] ", i)); err != nil {
				return 0, err
			}
		}
		return next, nil

	case byte(TypeMap):
		n, next, err := readCount(d.data, pos+1, 2)
		if err != nil {
			return 0, err
		}
		d.printf(indent, "%s@%d %s len=%d", label, pos, TypeMap, n)
		for i := 0; i < n; i++ {
			key, keyEnd, err := ReadValue(d.data, next)
			if err != nil {
				return 0, err
			}
			if next, err = d.value(keyEnd, indent+1, fmt.Sprintf("%v: ", key)); err != nil {
				return 0, err
			}
		}
		return next, nil
	}

	v, next, err := ReadValue(d.data, pos)
	if err != nil {
		return 0, err
	}
	if v == nil {
		d.printf(indent, "%s@%d null", label, pos)
	} else {
		d.printf(indent, "%s@%d %s %v", label, pos, TypeCode(d.data[pos]), v)
	}
	return next, nil
}

func (d *dumper) record(pos, indent int, label string) (int, error) {
	rec, err := readRecordHeader(d.data, pos)
	if err != nil {
		return 0, err
	}
	d.printf(indent, "%s@%d record type=%d user=%t hash=%d len=%d raw=%d",
		label, pos, rec.TypeID, rec.UserType, rec.HashCode, rec.Length, rec.RawOffset)

	fields, err := rec.Fields()
	if err != nil {
		return 0, err
	}
	for _, f := range fields {
		next, err := d.value(f.Pos, indent+1, fmt.Sprintf("field %d: ", f.ID))
		if err != nil {
			return 0, err
		}
		if next != f.Pos+f.Len {
			return 0, malformed(f.Pos, "field %d declares %d bytes, value has %d", f.ID, f.Len, next-f.Pos)
		}
	}

	if rec.HasRaw() {
		raw := rec.Raw()
		d.printf(indent+1, "raw @%d %d bytes: %s", rec.Start+int(rec.RawOffset), len(raw), hex.EncodeToString(raw))
	}
	return rec.End(), nil
}
