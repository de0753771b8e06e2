package binproto

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeGetRequest(t *testing.T) {
	tests := []struct {
		name     string
		req      *Request
		expected []byte
	}{
		{
			name: "basic get",
			req:  NewGetRequest("a"),
			expected: []byte{
				0x80, 0x00, 0x00, 0x01, // magic, opcode, key length
				0x00, 0x00, 0x00, 0x00, // extras length, data type, vbucket
				0x00, 0x00, 0x00, 0x01, // total body length
				0x00, 0x00, 0x00, 0x00, // opaque
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // CAS
				'a',
			},
		},
		{
			name: "get key quiet",
			req:  NewGetKeyQuietRequest("xy"),
			expected: []byte{
				0x80, 0x0d, 0x00, 0x02,
				0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x02,
				0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				'x', 'y',
			},
		},
		{
			name: "noop has empty body",
			req:  NewNoOpRequest(),
			expected: []byte{
				0x80, 0x0a, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			},
		},
		{
			name: "delete",
			req:  NewDeleteRequest("k"),
			expected: []byte{
				0x80, 0x04, 0x00, 0x01,
				0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x01,
				0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				'k',
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeRequest(tt.req)
			if err != nil {
				t.Fatalf("EncodeRequest failed: %v", err)
			}
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("EncodeRequest() = % x, want % x", got, tt.expected)
			}
		})
	}
}

func TestEncodeSetRequest(t *testing.T) {
	got, err := EncodeRequest(NewSetRequest("a", []byte("1"), 0))
	if err != nil {
		t.Fatalf("EncodeRequest failed: %v", err)
	}

	expected := []byte{
		0x80, 0x01, 0x00, 0x01, // magic, opcode=set, key length=1
		0x08, 0x00, 0x00, 0x00, // extras length=8, data type, vbucket
		0x00, 0x00, 0x00, 0x0a, // total body length = 8+1+1
		0x00, 0x00, 0x00, 0x00, // opaque
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // CAS
		0xde, 0xad, 0xbe, 0xef, // flags pattern
		0x00, 0x00, 0x00, 0x00, // expiration
		'a', '1',
	}
	if !bytes.Equal(got, expected) {
		t.Errorf("EncodeRequest() = % x, want % x", got, expected)
	}
}

func TestEncodeSetRequestExpiry(t *testing.T) {
	got, err := EncodeRequest(NewSetRequest("k", []byte("v"), 300))
	if err != nil {
		t.Fatalf("EncodeRequest failed: %v", err)
	}

	extras := got[HeaderSize : HeaderSize+setExtrasSize]
	expected := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x00, 0x01, 0x2c}
	if !bytes.Equal(extras, expected) {
		t.Errorf("set extras = % x, want % x", extras, expected)
	}
}

func TestEncodeRequestValidation(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
	}{
		{
			name: "key too long",
			req:  &Request{Opcode: OpGet, Key: make([]byte, MaxKeyLength+1)},
		},
		{
			name: "extras too long",
			req:  &Request{Opcode: OpSet, Key: []byte("k"), Extras: make([]byte, MaxExtrasLength+1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeRequest(tt.req)
			var invalidErr *InvalidRequestError
			if !errors.As(err, &invalidErr) {
				t.Fatalf("EncodeRequest() error = %v, want *InvalidRequestError", err)
			}
		})
	}
}

func TestWriteRequest(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRequest(&buf, NewGetRequest("mykey")); err != nil {
		t.Fatalf("WriteRequest failed: %v", err)
	}

	expected, err := EncodeRequest(NewGetRequest("mykey"))
	if err != nil {
		t.Fatalf("EncodeRequest failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("WriteRequest wrote % x, want % x", buf.Bytes(), expected)
	}
}

func TestWriteRequestValidationWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRequest(&buf, &Request{Opcode: OpGet, Key: make([]byte, MaxKeyLength+1)})
	if err == nil {
		t.Fatal("WriteRequest should reject oversized key")
	}
	if buf.Len() != 0 {
		t.Errorf("WriteRequest wrote %d bytes after validation failure", buf.Len())
	}
}
