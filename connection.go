package memcache

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/bincache/memcache/binproto"
)

var ErrConnectionClosed = errors.New("memcache: connection closed")

// Connection is a single memcache connection speaking the binary
// protocol. A mutex serializes whole exchanges: the protocol carries
// no request correlation (opaque is always zero), so responses match
// requests purely by FIFO order and operations must never interleave.
//
// Any transport or framing error marks the connection closed; there is
// no retry or reconnection here.
type Connection struct {
	addr   string
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	mu     sync.Mutex
	closed bool
}

// NewConnection wraps an established network connection.
func NewConnection(conn net.Conn) *Connection {
	return &Connection{
		addr:   conn.RemoteAddr().String(),
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
	}
}

// Send writes one request, flushes, and reads exactly one response.
func (c *Connection) Send(ctx context.Context, req *binproto.Request) (*binproto.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.prepare(ctx); err != nil {
		return nil, err
	}

	if err := binproto.WriteRequest(c.writer, req); err != nil {
		c.failed(err)
		return nil, err
	}
	if err := c.writer.Flush(); err != nil {
		c.failed(err)
		return nil, err
	}

	resp, err := binproto.ReadResponse(c.reader)
	if err != nil {
		c.failed(err)
		return nil, err
	}
	return resp, nil
}

// Pipeline writes every request followed by a single no-op terminator,
// flushes once, then reads responses until the no-op echo. The
// responses preceding the echo are returned in arrival order; with
// quiet requests there may be anywhere from zero to len(reqs) of them.
//
// The whole burst is encoded before any byte is buffered: an invalid
// request rejects the burst without touching the connection, so no
// stale frame can precede a later exchange.
func (c *Connection) Pipeline(ctx context.Context, reqs []*binproto.Request) ([]*binproto.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.prepare(ctx); err != nil {
		return nil, err
	}

	frames := make([][]byte, len(reqs)+1)
	for i, req := range reqs {
		frame, err := binproto.EncodeRequest(req)
		if err != nil {
			return nil, err
		}
		frames[i] = frame
	}
	terminator, err := binproto.EncodeRequest(binproto.NewNoOpRequest())
	if err != nil {
		return nil, err
	}
	frames[len(reqs)] = terminator

	for _, frame := range frames {
		if _, err := c.writer.Write(frame); err != nil {
			c.failed(err)
			return nil, err
		}
	}
	if err := c.writer.Flush(); err != nil {
		c.failed(err)
		return nil, err
	}

	var resps []*binproto.Response
	for {
		resp, err := binproto.ReadResponse(c.reader)
		if err != nil {
			c.failed(err)
			return nil, err
		}
		if resp.Opcode == binproto.OpNoOp {
			return resps, nil
		}
		resps = append(resps, resp)
	}
}

// prepare checks connection and context state and arms the socket
// deadline from the context. Must be called with the lock held.
func (c *Connection) prepare(ctx context.Context) error {
	if c.closed {
		return ErrConnectionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
	} else {
		c.conn.SetDeadline(time.Time{})
	}
	return nil
}

// failed marks the connection closed and releases the socket unless
// the error is known to leave the stream intact. Must be called with
// the lock held.
func (c *Connection) failed(err error) {
	if binproto.ShouldCloseConnection(err) {
		c.markClosed()
		c.conn.Close()
	}
}

// markClosed marks the connection as closed (must be called with lock held)
func (c *Connection) markClosed() {
	c.closed = true
}

// Addr returns the remote address of the connection.
func (c *Connection) Addr() string {
	return c.addr
}

// IsClosed returns whether the connection is closed.
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close closes the connection.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.markClosed()
	return c.conn.Close()
}
