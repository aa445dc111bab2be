package portable

import (
	"fmt"
	"github.com/google/uuid"
	"io"
	"time"
)

// portableWriter is the IPortableWriter handed to serializer callbacks.
// It always writes into the frame that is active on its write context,
// so a single instance serves all nesting levels of one encode operation.
type portableWriter struct {
	ctx *writeContext
	raw rawWriter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see portable.IPortableWriter)
// --------------------------------------------------------------------------

func (w *portableWriter) WriteBool(name string, v bool) error {
	return w.field(name, v)
}

func (w *portableWriter) WriteByte(name string, v byte) error {
	return w.field(name, v)
}

func (w *portableWriter) WriteInt16(name string, v int16) error {
	return w.field(name, v)
}

func (w *portableWriter) WriteInt32(name string, v int32) error {
	return w.field(name, v)
}

func (w *portableWriter) WriteInt64(name string, v int64) error {
	return w.field(name, v)
}

func (w *portableWriter) WriteFloat32(name string, v float32) error {
	return w.field(name, v)
}

func (w *portableWriter) WriteFloat64(name string, v float64) error {
	return w.field(name, v)
}

func (w *portableWriter) WriteString(name string, v string) error {
	return w.field(name, v)
}

func (w *portableWriter) WriteUUID(name string, v uuid.UUID) error {
	return w.field(name, v)
}

func (w *portableWriter) WriteTime(name string, v time.Time) error {
	return w.field(name, v)
}

func (w *portableWriter) WriteBytes(name string, v []byte) error {
	return w.field(name, v)
}

func (w *portableWriter) WriteObject(name string, v interface{}) error {
	return w.field(name, v)
}

func (w *portableWriter) RawWriter() IPortableRawWriter {
	w.ctx.switchToRaw()
	w.raw.s = w.ctx.stream
	w.raw.ctx = w.ctx
	return &w.raw
}

func (w *portableWriter) TypeID() int32 {
	return w.ctx.frame.typeID
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// field writes a named field with the format:
// - 4 bytes: field id (resolved with the mapper of the active frame)
// - 4 bytes: value length (patched after the value was written)
// - N bytes: value, encoded like any other object
func (w *portableWriter) field(name string, v interface{}) (err error) {
	c := w.ctx
	if c.frame.raw {
		return fmt.Errorf("%w [field=%s]", ErrRawModeActive, name)
	}

	// a failed field leaves no trace, the value rolls back its own bytes
	start := c.stream.Position()
	defer func() {
		if err != nil {
			c.stream.Truncate(start)
		}
	}()

	if err := c.stream.WriteInt32(c.frame.mapper.FieldID(c.frame.typeID, name)); err != nil {
		return err
	}

	// skip the length slot
	lenPos := c.stream.Position()
	if _, err := c.stream.Seek(4, io.SeekCurrent); err != nil {
		return err
	}

	if err := c.Write(v); err != nil {
		return fmt.Errorf("field %s: %w", name, err)
	}

	// patch the value length
	end := c.stream.Position()
	if _, err := c.stream.Seek(int64(lenPos), io.SeekStart); err != nil {
		return err
	}
	if err := c.stream.WriteInt32(int32(end - lenPos - 4)); err != nil {
		return err
	}
	_, err = c.stream.Seek(int64(end), io.SeekStart)
	return err
}

// --------------------------------------------------------------------------
// Raw Writer
// --------------------------------------------------------------------------

// rawWriter writes untyped values into the raw section of the active record.
// Only WriteObject produces a self-describing encoding.
type rawWriter struct {
	ctx *writeContext
	s   *Stream
}

func (r *rawWriter) WriteBool(v bool) error {
	return r.s.WriteBool(v)
}

func (r *rawWriter) WriteByte(v byte) error {
	return r.s.WriteByte(v)
}

func (r *rawWriter) WriteInt16(v int16) error {
	return r.s.WriteInt16(v)
}

func (r *rawWriter) WriteInt32(v int32) error {
	return r.s.WriteInt32(v)
}

func (r *rawWriter) WriteInt64(v int64) error {
	return r.s.WriteInt64(v)
}

func (r *rawWriter) WriteFloat32(v float32) error {
	return r.s.WriteFloat32(v)
}

func (r *rawWriter) WriteFloat64(v float64) error {
	return r.s.WriteFloat64(v)
}

func (r *rawWriter) WriteString(v string) error {
	return r.s.WriteString(v)
}

func (r *rawWriter) WriteUUID(v uuid.UUID) error {
	_, err := r.s.Write(v[:])
	return err
}

func (r *rawWriter) WriteTime(v time.Time) error {
	return r.s.WriteInt64(v.UnixNano())
}

// WriteBytes writes an int32 length followed by the bytes, nil is written with length -1
func (r *rawWriter) WriteBytes(v []byte) error {
	if v == nil {
		return r.s.WriteInt32(-1)
	}
	if err := r.s.WriteInt32(int32(len(v))); err != nil {
		return err
	}
	_, err := r.s.Write(v)
	return err
}

func (r *rawWriter) WriteObject(v interface{}) error {
	return r.ctx.Write(v)
}
