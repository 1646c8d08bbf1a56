package base

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		[]byte("x"),
		bytes.Repeat([]byte{0xAB}, 4096),
	}

	for _, payload := range payloads {
		var buf bytes.Buffer
		if err := writeFrame(&buf, 7, 42, payload); err != nil {
			t.Fatalf("writeFrame failed: %v", err)
		}
		if buf.Len() != headerSize+len(payload) {
			t.Errorf("Expected %d bytes on the wire, got %d", headerSize+len(payload), buf.Len())
		}

		h, data, err := readFrame(&buf, nil)
		if err != nil {
			t.Fatalf("readFrame failed: %v", err)
		}
		if h.shardID != 7 || h.requestID != 42 || int(h.length) != len(payload) {
			t.Errorf("Unexpected header %+v", h)
		}
		if data == nil || !bytes.Equal(data, payload) {
			t.Errorf("Payload mismatch: expected %d bytes, got %d", len(payload), len(data))
		}
	}
}

func TestReadFrameUsesBuffer(t *testing.T) {
	var wire bytes.Buffer
	_ = writeFrame(&wire, 1, 1, []byte("small"))
	_ = writeFrame(&wire, 1, 2, bytes.Repeat([]byte("large"), 100))

	buf := make([]byte, 64)

	_, data, err := readFrame(&wire, buf)
	if err != nil {
		t.Fatalf("readFrame failed: %v", err)
	}
	if &data[0] != &buf[0] {
		t.Errorf("Expected the payload to be read into the given buffer")
	}

	_, data, err = readFrame(&wire, buf)
	if err != nil {
		t.Fatalf("readFrame failed: %v", err)
	}
	if len(data) != 500 {
		t.Errorf("Expected 500 bytes, got %d", len(data))
	}
}

func TestReadFrameErrors(t *testing.T) {
	// clean end of stream
	if _, _, err := readFrame(bytes.NewReader(nil), nil); err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}

	// truncated header
	if _, _, err := readFrame(bytes.NewReader(make([]byte, 10)), nil); err != io.ErrUnexpectedEOF {
		t.Errorf("Expected io.ErrUnexpectedEOF, got %v", err)
	}

	// truncated payload
	var wire bytes.Buffer
	_ = writeFrame(&wire, 1, 1, []byte("payload"))
	truncated := wire.Bytes()[:wire.Len()-2]
	if _, _, err := readFrame(bytes.NewReader(truncated), nil); err != io.ErrUnexpectedEOF {
		t.Errorf("Expected io.ErrUnexpectedEOF, got %v", err)
	}

	// oversized payload
	header := make([]byte, headerSize)
	binary.BigEndian.PutUint32(header[16:], MaxFrameSize+1)
	if _, _, err := readFrame(bytes.NewReader(header), nil); err == nil {
		t.Errorf("Expected an error for an oversized frame")
	}
}
