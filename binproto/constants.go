package binproto

// Magic is the first header byte, identifying the frame direction.
type Magic byte

const (
	// MagicRequest marks a client-to-server frame
	MagicRequest Magic = 0x80

	// MagicResponse marks a server-to-client frame
	MagicResponse Magic = 0x81
)

// Opcode identifies the operation carried by a frame.
type Opcode byte

// Opcodes used by this client. The set is closed: a response carrying
// any other opcode is rejected as a framing error rather than ignored.
const (
	// OpGet retrieves the value for a key.
	// Response body is the value on hit, empty on miss (nonzero status).
	OpGet Opcode = 0x00

	// OpSet stores a value. Request extras carry the client flags
	// pattern and the expiration (see SetExtras).
	OpSet Opcode = 0x01

	// OpDelete removes a key. Nonzero status when the key is missing.
	OpDelete Opcode = 0x04

	// OpGetQuiet is OpGet with the miss response suppressed.
	OpGetQuiet Opcode = 0x09

	// OpNoOp returns a static response. Used to terminate a pipelined
	// burst of quiet requests: the server echoes it after all hits.
	OpNoOp Opcode = 0x0a

	// OpGetKey is OpGet with the key echoed in the response body,
	// before the value.
	OpGetKey Opcode = 0x0c

	// OpGetKeyQuiet combines OpGetKey and OpGetQuiet. The response
	// body is key followed by value; misses produce no response at
	// all, which is what makes pipelined multi-get efficient.
	OpGetKeyQuiet Opcode = 0x0d
)

// known reports whether the opcode belongs to the closed set above.
func (o Opcode) known() bool {
	switch o {
	case OpGet, OpSet, OpDelete, OpGetQuiet, OpNoOp, OpGetKey, OpGetKeyQuiet:
		return true
	}
	return false
}

// Status is the response status code. Zero means success; the client
// does not distinguish among nonzero values (not found, invalid
// arguments, server error) beyond "unsuccessful".
type Status byte

// StatusNoError is the only status treated as success.
const StatusNoError Status = 0x00

// Header layout. All multi-byte fields are big-endian.
const (
	// HeaderSize is the fixed frame header length in bytes.
	HeaderSize = 24

	offMagic      = 0
	offOpcode     = 1
	offKeyLength  = 2 // uint16
	offExtrasLen  = 4
	offDataType   = 5
	offVbucket    = 6 // uint16; low byte carries the status in responses
	offStatus     = 7
	offBodyLength = 8  // uint32, extras + key + value
	offOpaque     = 12 // uint32, always zero: no request correlation
	offCAS        = 16 // uint64, always zero: CAS is not supported
)

// Protocol limits enforced by EncodeRequest.
const (
	// MaxKeyLength is the largest key the 2-byte key length field can
	// describe.
	MaxKeyLength = 65535

	// MaxExtrasLength is the largest extras section the 1-byte extras
	// length field can describe.
	MaxExtrasLength = 255
)

// SetFlagsPattern is the fixed client-flags value stored in the first
// four extras bytes of every set request.
const SetFlagsPattern uint32 = 0xdeadbeef

// setExtrasSize is 4 bytes of flags followed by 4 bytes of expiration.
const setExtrasSize = 8
