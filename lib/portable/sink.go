package portable

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// frameHeaderSize is the size of the length prefix of a frame
const frameHeaderSize = 4

// WriteFrame writes one completed encode operation to w with the format:
// - 4 bytes: data length (uint32, big endian)
// - N bytes: data payload
//
// Portable data can only be produced on a seekable buffer, so this is the
// stage that hands finished messages to forward-only sinks like sockets.
func WriteFrame(w io.Writer, data []byte) (int, error) {
	header := make([]byte, frameHeaderSize)
	binary.BigEndian.PutUint32(header, uint32(len(data)))

	b := net.Buffers{header, data}
	n, err := b.WriteTo(w)
	return int(n), err
}

// ReadFrame reads one frame from r using the provided buffer.
// If the buffer is too small, a new buffer is allocated for the data.
// io.EOF is returned if r is exhausted before the first header byte.
func ReadFrame(r io.Reader, buf []byte) ([]byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: truncated frame header", ErrMalformed)
		}
		return nil, err
	}

	contentLength := int(binary.BigEndian.Uint32(header[:]))

	// Check if buffer is large enough for data
	if cap(buf) < contentLength {
		buf = make([]byte, contentLength)
	}
	buf = buf[:contentLength]

	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: truncated frame of %d bytes: %v", ErrMalformed, contentLength, err)
	}
	return buf, nil
}
