package testutils

import (
	"bufio"
	"encoding/binary"
	"io"
	"net"
	"sync"

	"github.com/bincache/memcache/binproto"
)

// Server is an in-memory cache speaking the memcached binary protocol
// on a loopback listener, conforming enough for client tests: it
// honors quiet get semantics (no response on miss) and echoes no-op
// markers.
type Server struct {
	listener net.Listener

	mu   sync.Mutex
	data map[string][]byte
}

// StartServer starts a server on an ephemeral loopback port.
func StartServer() (*Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	s := &Server{
		listener: listener,
		data:     make(map[string][]byte),
	}
	go s.acceptLoop()
	return s, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Close stops the listener. In-flight connections terminate on their
// next read.
func (s *Server) Close() error {
	return s.listener.Close()
}

// SetValue seeds an item directly into the store.
func (s *Server) SetValue(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// HasKey reports whether the store currently holds key.
func (s *Server) HasKey(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	for {
		req, err := readRequest(reader)
		if err != nil {
			return
		}

		if !s.respond(writer, req) {
			return
		}
		// Quiet opcodes arrive in bursts; flushing once per frame is
		// wasteful but keeps the double simple.
		if err := writer.Flush(); err != nil {
			return
		}
	}
}

// respond writes zero or one response frame for req. Returns false on
// a request the double cannot serve.
func (s *Server) respond(w io.Writer, req *request) bool {
	const statusKeyNotFound = 0x01

	switch req.opcode {
	case binproto.OpSet:
		s.mu.Lock()
		s.data[string(req.key)] = req.value
		s.mu.Unlock()
		writeResponse(w, &binproto.Response{Opcode: binproto.OpSet})

	case binproto.OpGet:
		s.mu.Lock()
		value, ok := s.data[string(req.key)]
		s.mu.Unlock()
		if ok {
			writeResponse(w, &binproto.Response{Opcode: binproto.OpGet, Body: value})
		} else {
			writeResponse(w, &binproto.Response{Opcode: binproto.OpGet, Status: statusKeyNotFound})
		}

	case binproto.OpDelete:
		s.mu.Lock()
		_, ok := s.data[string(req.key)]
		delete(s.data, string(req.key))
		s.mu.Unlock()
		if ok {
			writeResponse(w, &binproto.Response{Opcode: binproto.OpDelete})
		} else {
			writeResponse(w, &binproto.Response{Opcode: binproto.OpDelete, Status: statusKeyNotFound})
		}

	case binproto.OpGetKeyQuiet:
		s.mu.Lock()
		value, ok := s.data[string(req.key)]
		s.mu.Unlock()
		if ok {
			body := append(append([]byte{}, req.key...), value...)
			writeResponse(w, &binproto.Response{
				Opcode:    binproto.OpGetKeyQuiet,
				KeyLength: len(req.key),
				Body:      body,
			})
		}
		// miss: quiet, no response

	case binproto.OpNoOp:
		writeResponse(w, &binproto.Response{Opcode: binproto.OpNoOp})

	default:
		return false
	}
	return true
}

func writeResponse(w io.Writer, resp *binproto.Response) {
	w.Write(binproto.EncodeResponse(resp, nil))
}

type request struct {
	opcode binproto.Opcode
	key    []byte
	value  []byte
}

// readRequest parses one request frame. The double only needs opcode,
// key and value; extras are consumed and dropped.
func readRequest(r *bufio.Reader) (*request, error) {
	var header [binproto.HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	if binproto.Magic(header[0]) != binproto.MagicRequest {
		return nil, io.ErrUnexpectedEOF
	}

	keyLength := int(binary.BigEndian.Uint16(header[2:4]))
	extrasLength := int(header[4])
	totalBodyLength := int(binary.BigEndian.Uint32(header[8:12]))

	body := make([]byte, totalBodyLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}

	return &request{
		opcode: binproto.Opcode(header[1]),
		key:    body[extrasLength : extrasLength+keyLength],
		value:  body[extrasLength+keyLength:],
	}, nil
}
