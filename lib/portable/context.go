package portable

import (
	"fmt"
	"io"
	"reflect"
)

// writeContext holds the state of exactly one encode operation: the target
// stream, the handle table and the active frame. It must not be shared
// between goroutines or reused for a second top-level encode.
type writeContext struct {
	registry *TypeRegistry
	stream   *Stream
	handles  *handleTable // created lazily on the first non-primitive value
	active   map[objectHandle]struct{} // object arrays and maps currently being written
	frame    frame
	writer   *portableWriter

	// statistics (reported by the marshaller)
	records  int
	backRefs int
	depth    int
	maxDepth int
}

// newWriteContext creates a write context for one encode operation on stream
func newWriteContext(registry *TypeRegistry, stream *Stream) *writeContext {
	c := &writeContext{
		registry: registry,
		stream:   stream,
	}
	c.writer = &portableWriter{ctx: c}
	return c
}

// Write encodes obj at the current stream position and advances the cursor past it.
//
// In order, the first match wins:
//  1. nil is written as HdrNull
//  2. well-known types are written by their system handler
//  3. an instance that was already written becomes a back-reference
//  4. everything else is written as a full record using its type descriptor
//
// On error everything written for obj is discarded, so a caller that handles
// the error can continue writing on a well-formed stream.
func (c *writeContext) Write(obj interface{}) (err error) {
	pos := c.stream.Position()
	records, backRefs := c.records, c.backRefs
	defer func() {
		if err != nil {
			c.rollback(pos, records, backRefs)
		}
	}()

	// 1. Write null
	if isNil(obj) {
		return c.stream.WriteByte(HdrNull)
	}

	// 2. Try writing as well-known type
	typ := reflect.TypeOf(obj)

	if handler, ok := systemHandler(typ); ok {
		return handler(c, pos, obj)
	}

	// 3. Deal with handles
	hnd, hasIdentity := handleOf(obj)
	if hasIdentity {
		if c.handles == nil {
			c.handles = newHandleTable()
		}

		if hndPos, ok := c.handles.lookup(hnd); ok {
			return c.writeHandle(hndPos)
		}

		// register before the fields are written, a cycle back to obj then
		// resolves to this offset instead of recursing forever
		c.handles.register(hnd, obj, pos)
	}

	// 4. Get descriptor
	desc, ok := c.registry.Lookup(typ)
	if !ok {
		return &UnsupportedTypeError{Type: typ}
	}

	return c.writeFull(pos, obj, desc)
}

// writeHandle writes a back-reference to the record starting at hndPos.
// The distance is measured from the position right after the tag byte.
func (c *writeContext) writeHandle(hndPos int) error {
	if err := c.stream.WriteByte(HdrHandle); err != nil {
		return err
	}
	c.backRefs++
	return c.stream.WriteInt32(int32(c.stream.Position() - hndPos))
}

// writeFull writes obj as a full record starting at pos
func (c *writeContext) writeFull(pos int, obj interface{}, desc *TypeDescriptor) error {
	// 5. Write header
	if err := c.writeHeader(obj, desc); err != nil {
		return err
	}

	// 6. Skip length and raw offset as they are not known in the first place
	if _, err := c.stream.Seek(8, io.SeekCurrent); err != nil {
		return err
	}

	// 7. Push new frame, the enclosing frame is restored on every return path
	restore := c.enterFrame(frame{
		typeID: desc.TypeID,
		mapper: desc.IdResolver,
	})
	defer restore()

	// 8. Write object fields
	if err := desc.Serializer.WritePortable(obj, c.writer); err != nil {
		return fmt.Errorf("failed to write %s: %w", desc.TypeName, err)
	}

	// 9. Calculate and write length
	if err := writeLength(c.stream, pos, c.stream.Position(), c.frame.rawPos); err != nil {
		return err
	}

	c.records++
	return nil
}

// writeHeader writes tag, user type flag, type id and hash code of a full record
func (c *writeContext) writeHeader(obj interface{}, desc *TypeDescriptor) error {
	if err := c.stream.WriteByte(HdrFull); err != nil {
		return err
	}
	if err := c.stream.WriteBool(desc.UserType); err != nil {
		return err
	}
	if err := c.stream.WriteInt32(desc.TypeID); err != nil {
		return err
	}
	return c.stream.WriteInt32(desc.hashCode(obj))
}

// rollback discards the bytes and handles written at or after pos and
// resets the statistics to the given values
func (c *writeContext) rollback(pos, records, backRefs int) {
	c.stream.Truncate(pos)
	if c.handles != nil {
		c.handles.rollback(pos)
	}
	c.records, c.backRefs = records, backRefs
}

// enterCollection marks an object array or map as being written. Reaching it
// again before leave is called means the collection contains itself.
func (c *writeContext) enterCollection(obj interface{}) (leave func(), err error) {
	h, ok := handleOf(obj)
	if !ok {
		return func() {}, nil
	}
	if _, ok := c.active[h]; ok {
		return nil, fmt.Errorf("%w [type=%T]", ErrCyclicCollection, obj)
	}
	if c.active == nil {
		c.active = make(map[objectHandle]struct{})
	}
	c.active[h] = struct{}{}
	return func() { delete(c.active, h) }, nil
}

// --------------------------------------------------------------------------
// Length Patching
// --------------------------------------------------------------------------

// writeLength fills the two reserved header slots of the record starting at pos
// and moves the cursor back to retPos (the end of the record body).
//
// The length covers the whole record including its header. The raw offset is
// the distance from the record start to the raw section, or equal to the length
// if the record has no raw section.
func writeLength(s *Stream, pos, retPos, rawPos int) error {
	if _, err := s.Seek(int64(pos+offsetLength), io.SeekStart); err != nil {
		return err
	}

	length := int32(retPos - pos)

	if err := s.WriteInt32(length); err != nil {
		return err
	}

	rawOffset := length
	if rawPos != 0 {
		// when set, it is the difference between record start and raw position
		rawOffset = int32(rawPos - pos)
	}

	if err := s.WriteInt32(rawOffset); err != nil {
		return err
	}

	_, err := s.Seek(int64(retPos), io.SeekStart)
	return err
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// isNil reports whether obj is nil or a typed nil of a nillable kind
func isNil(obj interface{}) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return v.IsNil()
	default:
		return false
	}
}
