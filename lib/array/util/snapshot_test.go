package util

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ValentinKolb/dArr/lib/value"
)

var testSnapshot = Snapshot{Magic: "DARRTST\x00", Version: 3}

func TestSnapshotRoundTrip(t *testing.T) {
	stored := map[uint32]value.Value{
		0:     value.String("a"),
		7:     value.Undefined,
		90000: value.Number(-1.5),
	}

	var buf bytes.Buffer
	err := testSnapshot.Write(&buf, 100000, []uint32{0, 7, 90000}, func(i uint32) value.Value { return stored[i] })
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	loaded := make(map[uint32]value.Value)
	length, err := testSnapshot.Read(&buf, func(i uint32, v value.Value) { loaded[i] = v })
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if length != 100000 {
		t.Errorf("Expected length 100000, got %d", length)
	}
	if len(loaded) != len(stored) {
		t.Fatalf("Expected %d values, got %d", len(stored), len(loaded))
	}
	for i, v := range stored {
		if !value.Same(v, loaded[i]) {
			t.Errorf("Index %d: expected %v, got %v", i, v, loaded[i])
		}
	}
}

func TestSnapshotRejectsForeignData(t *testing.T) {
	var buf bytes.Buffer
	if err := testSnapshot.Write(&buf, 1, []uint32{0}, func(uint32) value.Value { return value.True }); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data := buf.Bytes()

	other := Snapshot{Magic: "DARROTH\x00", Version: 3}
	if _, err := other.Read(bytes.NewReader(data), func(uint32, value.Value) {}); err == nil {
		t.Error("Expected magic number mismatch")
	}

	newer := Snapshot{Magic: testSnapshot.Magic, Version: 4}
	if _, err := newer.Read(bytes.NewReader(data), func(uint32, value.Value) {}); err == nil {
		t.Error("Expected version mismatch")
	}

	if _, err := testSnapshot.Read(bytes.NewReader(data[:len(data)-1]), func(uint32, value.Value) {}); err == nil {
		t.Error("Expected error for truncated snapshot")
	}
}

func TestSnapshotIndexBeyondLength(t *testing.T) {
	var buf bytes.Buffer
	if err := testSnapshot.Write(&buf, 5, []uint32{5}, func(uint32) value.Value { return value.Null }); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := testSnapshot.Read(&buf, func(uint32, value.Value) {}); err == nil {
		t.Error("Expected error for index beyond length")
	}
}

func TestSnapshotObjectNotSerializable(t *testing.T) {
	obj := value.FromObject(value.NewHeap().NewObject("Object"))
	var buf bytes.Buffer
	if err := testSnapshot.Write(&buf, 1, []uint32{0}, func(uint32) value.Value { return obj }); err == nil {
		t.Error("Expected error for object value")
	}
}

func TestSnapshotCorruptValueSize(t *testing.T) {
	var buf bytes.Buffer
	if err := testSnapshot.Write(&buf, 1, []uint32{0}, func(uint32) value.Value { return value.String("x") }); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data := buf.Bytes()

	// the value size follows magic, version, length, count and index
	sizeAt := len(testSnapshot.Magic) + 1 + 4 + 8 + 4
	binary.LittleEndian.PutUint32(data[sizeAt:], math.MaxUint32)

	if _, err := testSnapshot.Read(bytes.NewReader(data), func(uint32, value.Value) {}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestReadBlock(t *testing.T) {
	data, err := ReadBlock(bytes.NewReader([]byte("abcdef")), 4)
	if err != nil {
		t.Fatalf("ReadBlock failed: %v", err)
	}
	if string(data) != "abcd" {
		t.Errorf("Expected abcd, got %q", data)
	}

	if _, err := ReadBlock(bytes.NewReader([]byte("ab")), math.MaxInt64); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Expected io.ErrUnexpectedEOF, got %v", err)
	}
	if _, err := ReadBlock(bytes.NewReader(nil), math.MaxUint64); err == nil {
		t.Error("Expected error for size beyond int64")
	}
	if data, err := ReadBlock(bytes.NewReader(nil), 0); err != nil || len(data) != 0 {
		t.Errorf("Expected empty block, got %q, %v", data, err)
	}
}
