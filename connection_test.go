package memcache

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bincache/memcache/binproto"
	"github.com/bincache/memcache/internal/testutils"
)

func encodeRequests(t *testing.T, reqs ...*binproto.Request) []byte {
	t.Helper()
	var buf []byte
	for _, req := range reqs {
		b, err := binproto.EncodeRequest(req)
		require.NoError(t, err)
		buf = append(buf, b...)
	}
	return buf
}

func TestConnectionSend(t *testing.T) {
	mock := testutils.NewConnectionMock(
		binproto.EncodeResponse(&binproto.Response{Opcode: binproto.OpGet, Body: []byte("value")}, nil),
	)
	conn := NewConnection(mock)

	resp, err := conn.Send(context.Background(), binproto.NewGetRequest("mykey"))
	require.NoError(t, err)
	assert.Equal(t, binproto.OpGet, resp.Opcode)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, []byte("value"), resp.Body)

	assert.Equal(t, encodeRequests(t, binproto.NewGetRequest("mykey")), mock.WrittenBytes())
	assert.False(t, conn.IsClosed())
}

func TestConnectionSendTransportError(t *testing.T) {
	mock := testutils.NewConnectionMock() // no response bytes at all
	conn := NewConnection(mock)

	_, err := conn.Send(context.Background(), binproto.NewGetRequest("mykey"))
	require.ErrorIs(t, err, io.EOF)
	assert.True(t, conn.IsClosed())

	_, err = conn.Send(context.Background(), binproto.NewGetRequest("mykey"))
	require.ErrorIs(t, err, ErrConnectionClosed)
}

func TestConnectionSendFramingErrorCloses(t *testing.T) {
	mock := testutils.NewConnectionMock(make([]byte, binproto.HeaderSize)) // zero magic
	conn := NewConnection(mock)

	_, err := conn.Send(context.Background(), binproto.NewGetRequest("mykey"))
	var framingErr *binproto.FramingError
	require.ErrorAs(t, err, &framingErr)
	assert.True(t, conn.IsClosed())
}

func TestConnectionSendInvalidRequestKeepsConnection(t *testing.T) {
	mock := testutils.NewConnectionMock(
		binproto.EncodeResponse(&binproto.Response{Opcode: binproto.OpGet, Body: []byte("v")}, nil),
	)
	conn := NewConnection(mock)

	huge := make([]byte, binproto.MaxKeyLength+1)
	_, err := conn.Send(context.Background(), &binproto.Request{Opcode: binproto.OpGet, Key: huge})
	var invalidErr *binproto.InvalidRequestError
	require.ErrorAs(t, err, &invalidErr)
	assert.False(t, conn.IsClosed())
	assert.Empty(t, mock.WrittenBytes())

	// connection is still usable
	_, err = conn.Send(context.Background(), binproto.NewGetRequest("mykey"))
	require.NoError(t, err)
}

func TestConnectionSendContextCancelled(t *testing.T) {
	mock := testutils.NewConnectionMock()
	conn := NewConnection(mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conn.Send(ctx, binproto.NewGetRequest("mykey"))
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, conn.IsClosed())
	assert.Empty(t, mock.WrittenBytes())
}

func TestConnectionPipeline(t *testing.T) {
	// Server answers only "y", then echoes the terminator.
	mock := testutils.NewConnectionMock(
		binproto.EncodeResponse(&binproto.Response{
			Opcode:    binproto.OpGetKeyQuiet,
			KeyLength: 1,
			Body:      []byte("yv"),
		}, nil),
		binproto.EncodeResponse(&binproto.Response{Opcode: binproto.OpNoOp, Body: []byte{}}, nil),
	)
	conn := NewConnection(mock)

	reqs := []*binproto.Request{
		binproto.NewGetKeyQuietRequest("x"),
		binproto.NewGetKeyQuietRequest("y"),
	}
	resps, err := conn.Pipeline(context.Background(), reqs)
	require.NoError(t, err)

	require.Len(t, resps, 1)
	key, value := resps[0].KeyValue()
	assert.Equal(t, []byte("y"), key)
	assert.Equal(t, []byte("v"), value)

	// Both quiet requests and the terminator went out in one burst.
	expected := encodeRequests(t,
		binproto.NewGetKeyQuietRequest("x"),
		binproto.NewGetKeyQuietRequest("y"),
		binproto.NewNoOpRequest(),
	)
	assert.Equal(t, expected, mock.WrittenBytes())
}

func TestConnectionPipelineEmpty(t *testing.T) {
	mock := testutils.NewConnectionMock(
		binproto.EncodeResponse(&binproto.Response{Opcode: binproto.OpNoOp, Body: []byte{}}, nil),
	)
	conn := NewConnection(mock)

	resps, err := conn.Pipeline(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, resps)

	assert.Equal(t, encodeRequests(t, binproto.NewNoOpRequest()), mock.WrittenBytes())
}

func TestConnectionPipelineInvalidRequestKeepsConnection(t *testing.T) {
	mock := testutils.NewConnectionMock(
		binproto.EncodeResponse(&binproto.Response{Opcode: binproto.OpNoOp, Body: []byte{}}, nil),
	)
	conn := NewConnection(mock)

	huge := make([]byte, binproto.MaxKeyLength+1)
	reqs := []*binproto.Request{
		binproto.NewGetKeyQuietRequest("x"),
		{Opcode: binproto.OpGetKeyQuiet, Key: huge},
	}
	_, err := conn.Pipeline(context.Background(), reqs)
	var invalidErr *binproto.InvalidRequestError
	require.ErrorAs(t, err, &invalidErr)
	assert.False(t, conn.IsClosed())
	assert.Empty(t, mock.WrittenBytes())

	// the next exchange writes only its own frames, nothing from the
	// rejected burst
	resps, err := conn.Pipeline(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, resps)
	assert.Equal(t, encodeRequests(t, binproto.NewNoOpRequest()), mock.WrittenBytes())
}

func TestConnectionPipelineMissingTerminator(t *testing.T) {
	// Stream ends before the no-op echo arrives.
	mock := testutils.NewConnectionMock(
		binproto.EncodeResponse(&binproto.Response{
			Opcode:    binproto.OpGetKeyQuiet,
			KeyLength: 1,
			Body:      []byte("xv"),
		}, nil),
	)
	conn := NewConnection(mock)

	_, err := conn.Pipeline(context.Background(), []*binproto.Request{binproto.NewGetKeyQuietRequest("x")})
	require.ErrorIs(t, err, io.EOF)
	assert.True(t, conn.IsClosed())
}

func TestConnectionClose(t *testing.T) {
	mock := testutils.NewConnectionMock()
	conn := NewConnection(mock)

	require.NoError(t, conn.Close())
	assert.True(t, conn.IsClosed())
	assert.True(t, mock.Closed())

	// Close is idempotent.
	require.NoError(t, conn.Close())
}
