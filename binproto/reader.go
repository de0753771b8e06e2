package binproto

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
)

// ReadResponse reads and parses a single response frame from r.
//
// Exactly 24 header bytes are read, then the extras section
// (discarded: response extras carry nothing the client needs), then
// the remaining body. Every read blocks until the exact byte count is
// obtained; a stream that ends mid-frame yields io.ErrUnexpectedEOF,
// never silently truncated data.
//
// Go errors returned:
//   - io.EOF: stream closed before the header
//   - io.ErrUnexpectedEOF: stream closed mid-frame
//   - *FramingError: wrong magic, unknown opcode, or length fields
//     that contradict each other; the connection must be closed
//   - other I/O errors from r
func ReadResponse(r *bufio.Reader) (*Response, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	if Magic(header[offMagic]) != MagicResponse {
		slog.Error("memcache: response frame has unexpected magic", "magic", header[offMagic])
		return nil, &FramingError{Message: fmt.Sprintf("unexpected magic byte 0x%02x", header[offMagic])}
	}

	opcode := Opcode(header[offOpcode])
	if !opcode.known() {
		slog.Error("memcache: response frame has unknown opcode", "opcode", header[offOpcode])
		return nil, &FramingError{Message: fmt.Sprintf("unknown opcode 0x%02x", header[offOpcode])}
	}

	keyLength := int(binary.BigEndian.Uint16(header[offKeyLength:]))
	extrasLength := int(header[offExtrasLen])
	status := Status(header[offStatus])
	totalBodyLength := int(binary.BigEndian.Uint32(header[offBodyLength:]))

	if extrasLength > totalBodyLength {
		return nil, &FramingError{Message: fmt.Sprintf(
			"extras length %d exceeds total body length %d", extrasLength, totalBodyLength)}
	}
	bodyLength := totalBodyLength - extrasLength

	if keyLength > bodyLength {
		return nil, &FramingError{Message: fmt.Sprintf(
			"key length %d exceeds body length %d", keyLength, bodyLength)}
	}

	if extrasLength > 0 {
		var extras [MaxExtrasLength]byte
		if _, err := io.ReadFull(r, extras[:extrasLength]); err != nil {
			return nil, err
		}
	}

	body := make([]byte, bodyLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}

	return &Response{
		Status:    status,
		Opcode:    opcode,
		KeyLength: keyLength,
		Body:      body,
	}, nil
}
