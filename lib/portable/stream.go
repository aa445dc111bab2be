package portable

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
)

// Stream is a growable in-memory byte sink with a movable cursor.
// Unlike bytes.Buffer it supports absolute seeks backwards and forwards,
// which is required to patch record lengths after a body was written.
//
// Seeking past the end is allowed, the gap is zero-filled on the next write.
// A Stream is not safe for concurrent use.
type Stream struct {
	buf     []byte
	pos     int
	maxSize int // 0 = unbounded
}

// NewStream creates a new stream with the given initial capacity and size limit
// A maxSize of 0 disables the limit
func NewStream(initialCap, maxSize int) *Stream {
	if initialCap < 0 {
		initialCap = 0
	}
	return &Stream{
		buf:     make([]byte, 0, initialCap),
		maxSize: maxSize,
	}
}

// --------------------------------------------------------------------------
// Cursor
// --------------------------------------------------------------------------

// Position returns the current cursor offset
func (s *Stream) Position() int {
	return s.pos
}

// Len returns the number of bytes written so far
func (s *Stream) Len() int {
	return len(s.buf)
}

// Bytes returns the written bytes. The slice aliases the stream buffer
// and is only valid until the next write or Reset.
func (s *Stream) Bytes() []byte {
	return s.buf
}

// Reset truncates the stream and moves the cursor to the start, keeping the allocated buffer
func (s *Stream) Reset() {
	s.buf = s.buf[:0]
	s.pos = 0
}

// Truncate discards everything at and after offset n and moves the cursor to n.
// An offset past the end only moves the cursor.
func (s *Stream) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(s.buf) {
		s.buf = s.buf[:n]
	}
	s.pos = n
}

// Seek implements io.Seeker
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(s.pos) + offset
	case io.SeekEnd:
		abs = int64(len(s.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("negative position %d", abs)
	}
	if abs > math.MaxInt32 {
		return 0, fmt.Errorf("%w: position %d", ErrCapacityExceeded, abs)
	}
	s.pos = int(abs)
	return abs, nil
}

// --------------------------------------------------------------------------
// Writing
// --------------------------------------------------------------------------

// grow makes room for n bytes at the cursor and returns the slice to write into
func (s *Stream) grow(n int) ([]byte, error) {
	end := s.pos + n
	if s.maxSize > 0 && end > s.maxSize {
		return nil, fmt.Errorf("%w: need %d bytes, limit is %d", ErrCapacityExceeded, end, s.maxSize)
	}
	if end > len(s.buf) {
		if end > cap(s.buf) {
			newCap := 2 * cap(s.buf)
			if newCap < end {
				newCap = end
			}
			if newCap < 64 {
				newCap = 64
			}
			grown := make([]byte, len(s.buf), newCap)
			copy(grown, s.buf)
			s.buf = grown
		}
		// zero the gap left by a forward seek and the new region
		old := len(s.buf)
		s.buf = s.buf[:end]
		clear(s.buf[old:end])
	}
	b := s.buf[s.pos:end]
	s.pos = end
	return b, nil
}

// Write implements io.Writer
func (s *Stream) Write(p []byte) (int, error) {
	b, err := s.grow(len(p))
	if err != nil {
		return 0, err
	}
	return copy(b, p), nil
}

// WriteByte implements io.ByteWriter
func (s *Stream) WriteByte(v byte) error {
	b, err := s.grow(1)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

// WriteBool writes a boolean as a single byte (0 or 1)
func (s *Stream) WriteBool(v bool) error {
	if v {
		return s.WriteByte(1)
	}
	return s.WriteByte(0)
}

// WriteInt16 writes a little endian 16 bit integer
func (s *Stream) WriteInt16(v int16) error {
	b, err := s.grow(2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, uint16(v))
	return nil
}

// WriteInt32 writes a little endian 32 bit integer
func (s *Stream) WriteInt32(v int32) error {
	b, err := s.grow(4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, uint32(v))
	return nil
}

// WriteInt64 writes a little endian 64 bit integer
func (s *Stream) WriteInt64(v int64) error {
	b, err := s.grow(8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, uint64(v))
	return nil
}

// WriteFloat32 writes the IEEE 754 bits of v as a little endian 32 bit integer
func (s *Stream) WriteFloat32(v float32) error {
	return s.WriteInt32(int32(math.Float32bits(v)))
}

// WriteFloat64 writes the IEEE 754 bits of v as a little endian 64 bit integer
func (s *Stream) WriteFloat64(v float64) error {
	return s.WriteInt64(int64(math.Float64bits(v)))
}

// WriteString writes an int32 byte length followed by the UTF-8 bytes of v
func (s *Stream) WriteString(v string) error {
	if err := s.WriteInt32(int32(len(v))); err != nil {
		return err
	}
	b, err := s.grow(len(v))
	if err != nil {
		return err
	}
	copy(b, v)
	return nil
}

// --------------------------------------------------------------------------
// Stream Pool
// --------------------------------------------------------------------------

// streamPool reuses streams between encode operations to reduce GC pressure
type streamPool struct {
	pool        sync.Pool
	initialSize int
	maxSize     int
}

func newStreamPool(initialSize, maxSize int) *streamPool {
	p := &streamPool{initialSize: initialSize, maxSize: maxSize}
	p.pool.New = func() interface{} {
		return NewStream(p.initialSize, p.maxSize)
	}
	return p
}

func (p *streamPool) get() *Stream {
	return p.pool.Get().(*Stream)
}

func (p *streamPool) put(s *Stream) {
	// don't keep oversized buffers around
	if cap(s.buf) > 16*p.initialSize && cap(s.buf) > 1<<20 {
		return
	}
	s.Reset()
	p.pool.Put(s)
}
