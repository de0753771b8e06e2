package binproto

import (
	"encoding/binary"
	"fmt"
	"io"
)

// EncodeRequest serializes a request to wire format: the 24-byte
// header followed by extras, key and value, in that order.
//
// Returns *InvalidRequestError if the key or extras exceed what their
// header fields can describe. No other validation is performed; the
// codec trusts its caller.
func EncodeRequest(req *Request) ([]byte, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	buf := make([]byte, HeaderSize+req.totalBodyLength())

	buf[offMagic] = byte(MagicRequest)
	buf[offOpcode] = byte(req.Opcode)
	binary.BigEndian.PutUint16(buf[offKeyLength:], uint16(len(req.Key)))
	buf[offExtrasLen] = byte(len(req.Extras))
	binary.BigEndian.PutUint32(buf[offBodyLength:], uint32(req.totalBodyLength()))
	// data type, vbucket, opaque and CAS stay zero

	n := HeaderSize
	n += copy(buf[n:], req.Extras)
	n += copy(buf[n:], req.Key)
	copy(buf[n:], req.Value)

	return buf, nil
}

// WriteRequest serializes req and writes it to w in a single call.
// Nothing is written when validation fails.
func WriteRequest(w io.Writer, req *Request) error {
	buf, err := EncodeRequest(req)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

func validateRequest(req *Request) error {
	if len(req.Key) > MaxKeyLength {
		return &InvalidRequestError{Message: fmt.Sprintf("key length %d exceeds %d", len(req.Key), MaxKeyLength)}
	}
	if len(req.Extras) > MaxExtrasLength {
		return &InvalidRequestError{Message: fmt.Sprintf("extras length %d exceeds %d", len(req.Extras), MaxExtrasLength)}
	}
	return nil
}

// EncodeResponse serializes a response frame with the given extras
// section. The client only decodes responses; this is for server-side
// tooling and conforming test doubles.
func EncodeResponse(resp *Response, extras []byte) []byte {
	totalBody := len(extras) + len(resp.Body)
	buf := make([]byte, HeaderSize+totalBody)

	buf[offMagic] = byte(MagicResponse)
	buf[offOpcode] = byte(resp.Opcode)
	binary.BigEndian.PutUint16(buf[offKeyLength:], uint16(resp.KeyLength))
	buf[offExtrasLen] = byte(len(extras))
	binary.BigEndian.PutUint16(buf[offVbucket:], uint16(resp.Status))
	binary.BigEndian.PutUint32(buf[offBodyLength:], uint32(totalBody))

	n := HeaderSize
	n += copy(buf[n:], extras)
	copy(buf[n:], resp.Body)

	return buf
}
