// Package binproto implements the wire format of the memcached binary
// protocol: fixed 24-byte headers followed by a variable body of
// extras, key and value.
//
// The package is a pure codec. Request and Response are plain data
// containers; EncodeRequest/WriteRequest serialize requests and
// ReadResponse parses responses from a stream. Connection management,
// pipelining and command semantics belong to the caller.
//
// # Frame layout
//
// All multi-byte integers are big-endian.
//
//	offset  field              size
//	0       magic              1
//	1       opcode             1
//	2       key length         2
//	4       extras length      1
//	5       data type (0)      1
//	6       vbucket / status   2
//	8       total body length  4
//	12      opaque (0)         4
//	16      CAS (0)            8
//
// Requests carry magic 0x80, responses 0x81. The vbucket slot of a
// response carries the status code in its low byte. The header is
// followed by extras, then key, then value; total body length is the
// sum of the three.
//
// # Errors
//
// ReadResponse returns *FramingError when the stream does not contain
// a decodable frame (wrong magic, unknown opcode, inconsistent
// lengths). Framing errors leave the stream position undefined, so the
// connection must be closed; use ShouldCloseConnection to classify.
// Request validation failures (*InvalidRequestError) happen before any
// byte is written and leave the connection usable.
package binproto
