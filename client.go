// Package memcache implements a client for the memcached binary
// protocol over a single connection.
//
// Every operation is a blocking request/response exchange. GetMulti
// pipelines a burst of quiet get-with-key requests terminated by a
// no-op marker, so misses cost no response at all. The client owns one
// connection for its lifetime: no pooling, no reconnection, no
// sharding. Callers needing concurrency use one client per worker.
package memcache

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/bincache/memcache/binproto"
)

// NoTTL stores items without an expiration.
const NoTTL = 0

// Item is the result of a get operation.
type Item struct {
	Key   string
	Value []byte
	Found bool // whether the key was found in cache
}

// Querier is the operation surface of the client.
//
// Set and Delete report the protocol outcome as a bool; Get and
// GetMulti report misses through Item.Found. Errors are reserved for
// transport failures (the connection is unusable afterwards). A
// malformed response or a wrong opcode echo collapses into the
// negative outcome rather than an error; see Get.
type Querier interface {
	Get(ctx context.Context, key string) (Item, error)
	GetMulti(ctx context.Context, keys []string) (map[string]Item, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) (bool, error)
}

// Config holds configuration for the client.
type Config struct {
	// Dialer is the net.Dialer used to establish the connection.
	// If nil, the default net.Dialer is used.
	Dialer *net.Dialer

	// NewCircuitBreaker creates a circuit breaker guarding every
	// exchange. Called once with the server address at construction.
	// If nil, no circuit breaker is used.
	NewCircuitBreaker func(addr string) CircuitBreaker
}

// Client is a memcache client over a single binary-protocol
// connection. It implements Querier.
//
// Client is NOT safe for concurrent use beyond the serialization the
// connection itself provides: concurrent calls won't corrupt the
// stream, but they will block each other for whole exchanges.
type Client struct {
	conn    *Connection
	breaker CircuitBreaker // nil if not configured
	stats   *clientStatsCollector
}

var _ Querier = (*Client)(nil)

// New dials addr and returns a client bound to that connection.
func New(addr string, config Config) (*Client, error) {
	dialer := config.Dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	netConn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewClient(NewConnection(netConn), config), nil
}

// NewClient wraps an already-established connection.
func NewClient(conn *Connection, config Config) *Client {
	client := &Client{
		conn:  conn,
		stats: newClientStatsCollector(),
	}
	if config.NewCircuitBreaker != nil {
		client.breaker = config.NewCircuitBreaker(conn.Addr())
	}
	return client
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Get retrieves a single item.
//
// A miss, a malformed response and a response echoing the wrong opcode
// all yield Found == false; the protocol does not let the client tell
// them apart without correlation, and the connection is closed for the
// latter two. Errors are returned for transport failures only.
func (c *Client) Get(ctx context.Context, key string) (Item, error) {
	resp, err := c.exchange(ctx, binproto.NewGetRequest(key))
	if err != nil {
		if isFramingError(err) {
			c.stats.recordGet(false)
			return Item{Key: key}, nil
		}
		c.stats.recordError()
		return Item{}, err
	}

	if !resp.IsSuccess() || resp.Opcode != binproto.OpGet {
		c.stats.recordGet(false)
		return Item{Key: key}, nil
	}

	c.stats.recordGet(true)
	return Item{Key: key, Value: resp.Body, Found: true}, nil
}

// GetMulti retrieves several items in one pipelined burst.
//
// Each key, duplicates included, sends its own quiet get-with-key
// request; the server answers only the hits and echoes the terminating
// no-op. The result maps every distinct input key to an Item, with
// Found == false for keys the server never answered. An empty key list
// sends only the terminator.
func (c *Client) GetMulti(ctx context.Context, keys []string) (map[string]Item, error) {
	items := make(map[string]Item, len(keys))
	for _, key := range keys {
		items[key] = Item{Key: key}
	}

	reqs := make([]*binproto.Request, len(keys))
	for i, key := range keys {
		reqs[i] = binproto.NewGetKeyQuietRequest(key)
	}

	resps, err := c.pipeline(ctx, reqs)
	if err != nil {
		if isFramingError(err) {
			c.stats.recordGetMulti(len(items), 0)
			return items, nil
		}
		c.stats.recordError()
		return nil, err
	}

	hits := 0
	for _, resp := range resps {
		if !resp.IsSuccess() || resp.Opcode != binproto.OpGetKeyQuiet {
			continue
		}
		key, value := resp.KeyValue()
		items[string(key)] = Item{Key: string(key), Value: value, Found: true}
		hits++
	}

	c.stats.recordGetMulti(len(items), hits)
	return items, nil
}

// Set stores value under key. A ttl of NoTTL keeps the item until
// evicted. Returns true iff the server acknowledged the store.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	expiry := uint32(0)
	if ttl > 0 {
		expiry = uint32(ttl / time.Second)
	}

	resp, err := c.exchange(ctx, binproto.NewSetRequest(key, value, expiry))
	if err != nil {
		if isFramingError(err) {
			c.stats.recordSet(false)
			return false, nil
		}
		c.stats.recordError()
		return false, err
	}

	stored := resp.IsSuccess() && resp.Opcode == binproto.OpSet
	c.stats.recordSet(stored)
	return stored, nil
}

// Delete removes key. Returns true iff the server acknowledged the
// deletion; deleting a missing key returns false.
func (c *Client) Delete(ctx context.Context, key string) (bool, error) {
	resp, err := c.exchange(ctx, binproto.NewDeleteRequest(key))
	if err != nil {
		if isFramingError(err) {
			c.stats.recordDelete(false)
			return false, nil
		}
		c.stats.recordError()
		return false, err
	}

	deleted := resp.IsSuccess() && resp.Opcode == binproto.OpDelete
	c.stats.recordDelete(deleted)
	return deleted, nil
}

// Stats returns a snapshot of client statistics.
func (c *Client) Stats() ClientStats {
	return c.stats.snapshot()
}

func (c *Client) exchange(ctx context.Context, req *binproto.Request) (*binproto.Response, error) {
	if c.breaker == nil {
		return c.conn.Send(ctx, req)
	}

	var resp *binproto.Response
	err := c.breaker.Execute(func() error {
		var err error
		resp, err = c.conn.Send(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) pipeline(ctx context.Context, reqs []*binproto.Request) ([]*binproto.Response, error) {
	if c.breaker == nil {
		return c.conn.Pipeline(ctx, reqs)
	}

	var resps []*binproto.Response
	err := c.breaker.Execute(func() error {
		var err error
		resps, err = c.conn.Pipeline(ctx, reqs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resps, nil
}

func isFramingError(err error) bool {
	var framingErr *binproto.FramingError
	return errors.As(err, &framingErr)
}
