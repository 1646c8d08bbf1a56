package util

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ValentinKolb/dArr/lib/value"
)

// --------------------------------------------------------------------------
// Snapshot Format
// --------------------------------------------------------------------------
//
// Engines persist their content in a shared layout, little endian:
//   magic (8 bytes) | version (uint8) | length (uint32) | count (uint64)
//   count x ( index (uint32) | value size (uint32) | encoded value )
//
// The magic number identifies the engine that wrote the snapshot.

// Snapshot describes the header of a snapshot
type Snapshot struct {
	Magic   string // 8 bytes
	Version uint8
}

// Write persists length and the values at indices to w. get must return the
// value stored at each index. Object values yield value.ErrNotSerializable.
func (s Snapshot) Write(w io.Writer, length uint32, indices []uint32, get func(index uint32) value.Value) error {
	bw := bufio.NewWriterSize(w, 1024*1024) // 1 MB buffer

	if _, err := bw.WriteString(s.Magic); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, s.Version); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, length); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(indices))); err != nil {
		return err
	}

	var buf []byte
	for _, index := range indices {
		var err error
		if buf, err = value.AppendBinary(buf[:0], get(index)); err != nil {
			return fmt.Errorf("index %d: %w", index, err)
		}
		if err := binary.Write(bw, binary.LittleEndian, index); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(buf))); err != nil {
			return err
		}
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Read parses a snapshot from r and calls put for every stored value.
// Returns the array length recorded in the snapshot.
func (s Snapshot) Read(r io.Reader, put func(index uint32, v value.Value)) (uint32, error) {
	br := bufio.NewReaderSize(r, 1024*1024) // 1 MB buffer

	magicBytes := make([]byte, len(s.Magic))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return 0, err
	}
	if string(magicBytes) != s.Magic {
		return 0, fmt.Errorf("invalid file format: magic number mismatch")
	}

	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return 0, err
	}
	if version != s.Version {
		return 0, fmt.Errorf("unsupported version: %d (expected %d)", version, s.Version)
	}

	var length uint32
	if err := binary.Read(br, binary.LittleEndian, &length); err != nil {
		return 0, err
	}
	var count uint64
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return 0, err
	}

	for i := uint64(0); i < count; i++ {
		var index, size uint32
		if err := binary.Read(br, binary.LittleEndian, &index); err != nil {
			return 0, err
		}
		if index >= length {
			return 0, fmt.Errorf("corrupt snapshot: index %d beyond length %d", index, length)
		}
		if err := binary.Read(br, binary.LittleEndian, &size); err != nil {
			return 0, err
		}
		buf, err := ReadBlock(br, uint64(size))
		if err != nil {
			return 0, err
		}
		v, err := value.UnmarshalBinary(buf)
		if err != nil {
			return 0, fmt.Errorf("index %d: %w", index, err)
		}
		put(index, v)
	}

	return length, nil
}

// readBlockChunk caps the up front allocation of ReadBlock
const readBlockChunk = 64 * 1024

// ReadBlock reads exactly size bytes from r. The buffer grows with the data
// actually read, so a corrupt size fails with io.ErrUnexpectedEOF instead of
// allocating it in advance.
func ReadBlock(r io.Reader, size uint64) ([]byte, error) {
	if size > math.MaxInt64 {
		return nil, fmt.Errorf("corrupt snapshot: block size %d", size)
	}
	var buf bytes.Buffer
	buf.Grow(int(min(size, readBlockChunk)))
	if _, err := io.CopyN(&buf, r, int64(size)); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf.Bytes(), nil
}
