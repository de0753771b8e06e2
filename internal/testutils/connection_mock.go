package testutils

import (
	"bytes"
	"net"
	"time"
)

// ConnectionMock is a mock implementation of net.Conn for testing.
// Reads are served from the pre-configured response frames; writes are
// recorded for inspection.
type ConnectionMock struct {
	readBuf  *bytes.Buffer
	writeBuf *bytes.Buffer
	closed   bool
}

// NewConnectionMock creates a new mock connection with pre-configured
// response frames.
func NewConnectionMock(frames ...[]byte) *ConnectionMock {
	return &ConnectionMock{
		readBuf:  bytes.NewBuffer(bytes.Join(frames, nil)),
		writeBuf: &bytes.Buffer{},
	}
}

func (m *ConnectionMock) Read(b []byte) (n int, err error) {
	return m.readBuf.Read(b)
}

func (m *ConnectionMock) Write(b []byte) (n int, err error) {
	return m.writeBuf.Write(b)
}

func (m *ConnectionMock) Close() error {
	m.closed = true
	return nil
}

func (m *ConnectionMock) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0}
}

func (m *ConnectionMock) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 11211}
}

func (m *ConnectionMock) SetDeadline(t time.Time) error      { return nil }
func (m *ConnectionMock) SetReadDeadline(t time.Time) error  { return nil }
func (m *ConnectionMock) SetWriteDeadline(t time.Time) error { return nil }

// WrittenBytes returns the raw request bytes written to the mock
// connection.
func (m *ConnectionMock) WrittenBytes() []byte {
	return m.writeBuf.Bytes()
}

// Closed reports whether Close was called.
func (m *ConnectionMock) Closed() bool {
	return m.closed
}
