package portable

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// TestStreamWriteAndPatch tests skipping a slot and patching it afterwards
func TestStreamWriteAndPatch(t *testing.T) {
	s := NewStream(0, 0)

	if err := s.WriteByte(0xAA); err != nil {
		t.Fatalf("WriteByte failed: %v", err)
	}
	if _, err := s.Seek(4, io.SeekCurrent); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if err := s.WriteByte(0xBB); err != nil {
		t.Fatalf("WriteByte failed: %v", err)
	}

	// Patch the skipped slot
	end := s.Position()
	if _, err := s.Seek(1, io.SeekStart); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if err := s.WriteInt32(0x01020304); err != nil {
		t.Fatalf("WriteInt32 failed: %v", err)
	}
	if _, err := s.Seek(int64(end), io.SeekStart); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}

	expected := []byte{0xAA, 0x04, 0x03, 0x02, 0x01, 0xBB}
	if !bytes.Equal(s.Bytes(), expected) {
		t.Errorf("Expected %v, got %v", expected, s.Bytes())
	}
	if s.Position() != 6 || s.Len() != 6 {
		t.Errorf("Expected position and length 6, got %d and %d", s.Position(), s.Len())
	}
}

// TestStreamSeekPastEnd tests that the gap left by a forward seek is zero-filled
func TestStreamSeekPastEnd(t *testing.T) {
	s := NewStream(0, 0)
	_, _ = s.Write([]byte{1, 2, 3})
	s.Reset()

	if _, err := s.Seek(8, io.SeekStart); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Seek should not change the length, got %d", s.Len())
	}
	if err := s.WriteByte(9); err != nil {
		t.Fatalf("WriteByte failed: %v", err)
	}

	expected := []byte{0, 0, 0, 0, 0, 0, 0, 0, 9}
	if !bytes.Equal(s.Bytes(), expected) {
		t.Errorf("Expected %v, got %v", expected, s.Bytes())
	}
}

// TestStreamEncodings tests the byte layout of the primitive writers
func TestStreamEncodings(t *testing.T) {
	testCases := []struct {
		name     string
		write    func(s *Stream) error
		expected []byte
	}{
		{"Bool", func(s *Stream) error { return s.WriteBool(true) }, []byte{1}},
		{"Int16", func(s *Stream) error { return s.WriteInt16(-2) }, []byte{0xFE, 0xFF}},
		{"Int32", func(s *Stream) error { return s.WriteInt32(258) }, []byte{2, 1, 0, 0}},
		{"Int64", func(s *Stream) error { return s.WriteInt64(1) }, []byte{1, 0, 0, 0, 0, 0, 0, 0}},
		{"Float32", func(s *Stream) error { return s.WriteFloat32(1) }, []byte{0, 0, 0x80, 0x3F}},
		{"Float64", func(s *Stream) error { return s.WriteFloat64(2) }, []byte{0, 0, 0, 0, 0, 0, 0, 0x40}},
		{"String", func(s *Stream) error { return s.WriteString("hi") }, []byte{2, 0, 0, 0, 'h', 'i'}},
		{"EmptyString", func(s *Stream) error { return s.WriteString("") }, []byte{0, 0, 0, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStream(0, 0)
			if err := tc.write(s); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if !bytes.Equal(s.Bytes(), tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, s.Bytes())
			}
		})
	}
}

// TestStreamCapacityExceeded tests the size limit of a stream
func TestStreamCapacityExceeded(t *testing.T) {
	s := NewStream(0, 4)

	if err := s.WriteInt32(1); err != nil {
		t.Fatalf("Write within the limit failed: %v", err)
	}
	if err := s.WriteByte(1); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("Expected ErrCapacityExceeded, got %v", err)
	}

	// Overwriting within the limit is still possible
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if err := s.WriteInt32(2); err != nil {
		t.Errorf("Overwrite within the limit failed: %v", err)
	}
}

// TestStreamInvalidSeek tests that seeking before the start fails
func TestStreamInvalidSeek(t *testing.T) {
	s := NewStream(0, 0)
	if _, err := s.Seek(-1, io.SeekStart); err == nil {
		t.Error("Expected error for negative position")
	}
	if _, err := s.Seek(0, 42); err == nil {
		t.Error("Expected error for invalid whence")
	}
	if s.Position() != 0 {
		t.Errorf("Failed seek should not move the cursor, got %d", s.Position())
	}
}

// TestStreamPool tests that pooled streams are handed out empty
func TestStreamPool(t *testing.T) {
	p := newStreamPool(128, 0)

	s := p.get()
	_ = s.WriteInt64(42)
	p.put(s)

	s = p.get()
	if s.Len() != 0 || s.Position() != 0 {
		t.Errorf("Pooled stream should be empty, got length %d position %d", s.Len(), s.Position())
	}
}

// TestStreamTruncate tests discarding written bytes
func TestStreamTruncate(t *testing.T) {
	s := NewStream(0, 0)
	_, _ = s.Write([]byte{1, 2, 3, 4, 5})

	s.Truncate(2)
	if s.Len() != 2 || s.Position() != 2 {
		t.Errorf("Expected length and position 2, got %d and %d", s.Len(), s.Position())
	}

	// past the end only the cursor moves
	s.Truncate(4)
	if s.Len() != 2 || s.Position() != 4 {
		t.Errorf("Expected length 2 and position 4, got %d and %d", s.Len(), s.Position())
	}

	if err := s.WriteByte(9); err != nil {
		t.Fatalf("WriteByte failed: %v", err)
	}
	expected := []byte{1, 2, 0, 0, 9}
	if !bytes.Equal(s.Bytes(), expected) {
		t.Errorf("Expected %v, got %v", expected, s.Bytes())
	}
}
