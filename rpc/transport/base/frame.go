package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

const (
	// headerSize is the size of the frame header:
	// shardID (uint64) | requestID (uint64) | payload length (uint32), big endian
	headerSize = 20

	// MaxFrameSize is the largest payload a single frame may carry
	MaxFrameSize = 64 << 20
)

// frameHeader precedes every payload on a stream connection
type frameHeader struct {
	shardID   uint64
	requestID uint64
	length    uint32
}

func (h frameHeader) encode(b []byte) {
	binary.BigEndian.PutUint64(b[0:8], h.shardID)
	binary.BigEndian.PutUint64(b[8:16], h.requestID)
	binary.BigEndian.PutUint32(b[16:20], h.length)
}

func decodeHeader(b []byte) frameHeader {
	return frameHeader{
		shardID:   binary.BigEndian.Uint64(b[0:8]),
		requestID: binary.BigEndian.Uint64(b[8:16]),
		length:    binary.BigEndian.Uint32(b[16:20]),
	}
}

// writeFrame writes header and payload with a single vectored write
func writeFrame(w io.Writer, shardID, requestID uint64, data []byte) error {
	if len(data) > MaxFrameSize {
		return fmt.Errorf("frame payload of %d bytes exceeds the limit of %d bytes", len(data), MaxFrameSize)
	}

	var header [headerSize]byte
	frameHeader{shardID: shardID, requestID: requestID, length: uint32(len(data))}.encode(header[:])

	bufs := net.Buffers{header[:], data}
	_, err := bufs.WriteTo(w)
	return err
}

// readFrame reads one frame. The payload is read into buf when it fits,
// otherwise into a new slice. A frame without payload yields an empty slice.
func readFrame(r io.Reader, buf []byte) (frameHeader, []byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return frameHeader{}, nil, err
	}

	h := decodeHeader(header[:])
	if h.length > MaxFrameSize {
		return h, nil, fmt.Errorf("frame payload of %d bytes exceeds the limit of %d bytes", h.length, MaxFrameSize)
	}

	n := int(h.length)
	if buf == nil || cap(buf) < n {
		buf = make([]byte, n)
	}
	buf = buf[:n]

	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return h, nil, err
	}
	return h, buf, nil
}
