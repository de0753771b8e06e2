package binproto

// Response represents a parsed binary protocol response frame.
// This is a plain data container; parsing lives in ReadResponse.
type Response struct {
	// Status is the server status code. Zero means success.
	Status Status

	// Opcode echoes the opcode of the request this frame answers.
	Opcode Opcode

	// KeyLength is the length of the key prefix of Body, nonzero only
	// for opcodes that echo the key (OpGetKey, OpGetKeyQuiet).
	KeyLength int

	// Body is the frame body with the extras section stripped:
	// key (KeyLength bytes) followed by value.
	Body []byte
}

// IsSuccess reports whether the response carries a success status.
func (r *Response) IsSuccess() bool {
	return r.Status == StatusNoError
}

// KeyValue splits Body into the echoed key and the value.
// ReadResponse guarantees KeyLength <= len(Body).
func (r *Response) KeyValue() (key, value []byte) {
	return r.Body[:r.KeyLength], r.Body[r.KeyLength:]
}
