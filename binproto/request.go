package binproto

import "encoding/binary"

// Request represents a single binary protocol request frame.
// It is a plain data container; serialization lives in EncodeRequest.
// Reserved header fields (data type, vbucket, opaque, CAS) are always
// zero on the wire and have no counterpart here.
type Request struct {
	Opcode Opcode

	// Key is the cache key (0-65535 bytes).
	Key []byte

	// Value is the payload for set requests, empty otherwise.
	Value []byte

	// Extras is opcode-specific metadata written between the header
	// and the key (0-255 bytes).
	Extras []byte
}

// NewRequest creates a request with the given opcode and key and no
// value or extras.
func NewRequest(op Opcode, key string) *Request {
	return &Request{Opcode: op, Key: []byte(key)}
}

// NewGetRequest creates a get request for key.
func NewGetRequest(key string) *Request {
	return NewRequest(OpGet, key)
}

// NewSetRequest creates a set request storing value under key.
// The extras section carries the fixed flags pattern followed by the
// expiration in seconds (0 = no expiration).
func NewSetRequest(key string, value []byte, expiry uint32) *Request {
	return &Request{
		Opcode: OpSet,
		Key:    []byte(key),
		Value:  value,
		Extras: SetExtras(expiry),
	}
}

// NewDeleteRequest creates a delete request for key.
func NewDeleteRequest(key string) *Request {
	return NewRequest(OpDelete, key)
}

// NewGetKeyQuietRequest creates a quiet get-with-key request for key,
// the building block of a pipelined multi-get burst.
func NewGetKeyQuietRequest(key string) *Request {
	return NewRequest(OpGetKeyQuiet, key)
}

// NewNoOpRequest creates a no-op request, used as the terminator of a
// pipelined burst of quiet requests.
func NewNoOpRequest() *Request {
	return &Request{Opcode: OpNoOp}
}

// SetExtras builds the 8-byte extras section of a set request:
// the fixed flags pattern followed by the big-endian expiration.
func SetExtras(expiry uint32) []byte {
	extras := make([]byte, setExtrasSize)
	binary.BigEndian.PutUint32(extras[0:4], SetFlagsPattern)
	binary.BigEndian.PutUint32(extras[4:8], expiry)
	return extras
}

// totalBodyLength is the value of the header's total body length
// field: extras + key + value.
func (r *Request) totalBodyLength() int {
	return len(r.Extras) + len(r.Key) + len(r.Value)
}
