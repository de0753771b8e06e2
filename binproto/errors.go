package binproto

import "errors"

// FramingError indicates the response stream does not contain a
// decodable frame: wrong magic byte, an opcode outside the closed set,
// or inconsistent length fields.
//
// After a framing error the stream position is undefined, so the
// connection MUST be closed: subsequent reads would misinterpret
// whatever bytes follow.
type FramingError struct {
	Message string
}

func (e *FramingError) Error() string {
	return "memcache: framing error: " + e.Message
}

// ShouldCloseConnection returns true - the stream position is undefined
func (e *FramingError) ShouldCloseConnection() bool {
	return true
}

// InvalidRequestError is returned when a request violates protocol
// bounds (key or extras too long for their header fields). Validation
// happens before any byte is written, so the connection stays usable.
// This is a programming error on the caller's side, surfaced instead
// of silently truncating the frame.
type InvalidRequestError struct {
	Message string
}

func (e *InvalidRequestError) Error() string {
	return "memcache: invalid request: " + e.Message
}

// ShouldCloseConnection returns false - nothing was written
func (e *InvalidRequestError) ShouldCloseConnection() bool {
	return false
}

// ErrorWithConnectionState is an interface for errors that indicate
// whether the connection should be closed.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection reports whether err requires closing the
// connection. Unknown error types (including raw I/O errors) are
// treated conservatively as fatal to the connection.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	return true
}
