package internal

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/value"
)

func mustMarshal(t *testing.T, v value.Value) []byte {
	t.Helper()
	data, err := value.MarshalBinary(v)
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}
	return data
}

func TestSizeBytes(t *testing.T) {
	cmd := Command{Type: CommandTPut, Name: "scores", Index: 7, Value: []byte{1, 2, 3}}
	if got, want := cmd.SizeBytes(), 1+4+8+1+4+6+3; got != want {
		t.Errorf("SizeBytes() = %v, want %v", got, want)
	}

	cmd = Command{Type: CommandTDrop}
	if got, want := cmd.SizeBytes(), headerSize; got != want {
		t.Errorf("SizeBytes() = %v, want %v", got, want)
	}
}

func TestSerializeDeserialize(t *testing.T) {
	tests := []struct {
		name    string
		command Command
	}{
		{
			name: "Put with string value",
			command: Command{
				Type:  CommandTPut,
				Name:  "scores",
				Index: 12,
				Value: mustMarshal(t, value.String("twelve")),
			},
		},
		{
			name: "Put at the highest index",
			command: Command{
				Type:  CommandTPut,
				Name:  "edge",
				Index: array.MaxArrayIndex,
				Value: mustMarshal(t, value.Undefined),
			},
		},
		{
			name: "Delete without value",
			command: Command{
				Type:  CommandTDelete,
				Name:  "scores",
				Index: 3,
			},
		},
		{
			name: "SetLength with fractional length",
			command: Command{
				Type:   CommandTSetLength,
				Name:   "scores",
				Length: 1.5,
			},
		},
		{
			name: "SetLength with negative zero",
			command: Command{
				Type:   CommandTSetLength,
				Name:   "scores",
				Length: math.Copysign(0, -1),
			},
		},
		{
			name: "Sort numeric descending",
			command: Command{
				Type:  CommandTSort,
				Name:  "scores",
				Order: array.SortNumericDesc,
			},
		},
		{
			name: "Drop with empty name",
			command: Command{
				Type: CommandTDrop,
			},
		},
		{
			name: "Unicode name",
			command: Command{
				Type:  CommandTPut,
				Name:  "你好世界",
				Value: mustMarshal(t, value.Number(-2)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.command.Serialize()

			var got Command
			if err := got.Deserialize(data); err != nil {
				t.Fatalf("Deserialize() error = %v", err)
			}

			if got.Type != tt.command.Type {
				t.Errorf("Type mismatch: got %v, want %v", got.Type, tt.command.Type)
			}
			if got.Name != tt.command.Name {
				t.Errorf("Name mismatch: got %q, want %q", got.Name, tt.command.Name)
			}
			if got.Index != tt.command.Index {
				t.Errorf("Index mismatch: got %v, want %v", got.Index, tt.command.Index)
			}
			if math.Float64bits(got.Length) != math.Float64bits(tt.command.Length) {
				t.Errorf("Length mismatch: got %v, want %v", got.Length, tt.command.Length)
			}
			if got.Order != tt.command.Order {
				t.Errorf("Order mismatch: got %v, want %v", got.Order, tt.command.Order)
			}
			if len(tt.command.Value) == 0 {
				if len(got.Value) != 0 {
					t.Errorf("Value should be empty, got %v", got.Value)
				}
			} else if !bytes.Equal(got.Value, tt.command.Value) {
				t.Errorf("Value mismatch: got %v, want %v", got.Value, tt.command.Value)
			}

			if tt.command.SizeBytes() != len(data) {
				t.Errorf("SizeBytes() = %d, but serialized data length = %d", tt.command.SizeBytes(), len(data))
			}
		})
	}
}

func TestDeserializeErrors(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		expectedErr string
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectedErr: "data too short for command",
		},
		{
			name:        "Data too short (less than header)",
			data:        []byte{1, 2, 3, 4, 5},
			expectedErr: "data too short for command",
		},
		{
			name: "Invalid name length",
			data: func() []byte {
				data := make([]byte, headerSize)
				data[0] = byte(CommandTPut)
				binary.BigEndian.PutUint32(data[14:18], 1000)
				return data
			}(),
			expectedErr: "data too short for name of length 1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cmd Command
			err := cmd.Deserialize(tt.data)
			if err == nil {
				t.Fatalf("Expected error but got nil")
			}
			if err.Error() != tt.expectedErr {
				t.Errorf("Expected error %q, got %q", tt.expectedErr, err.Error())
			}
		})
	}
}

func TestBinaryFormat(t *testing.T) {
	cmd := Command{
		Type:   CommandTSetLength,
		Name:   "arr",
		Index:  0x01020304,
		Length: 2,
		Order:  array.SortNumeric,
		Value:  []byte{9},
	}

	expected := make([]byte, cmd.SizeBytes())
	expected[0] = byte(CommandTSetLength)
	binary.BigEndian.PutUint32(expected[1:5], 0x01020304)
	binary.BigEndian.PutUint64(expected[5:13], math.Float64bits(2))
	expected[13] = byte(array.SortNumeric)
	binary.BigEndian.PutUint32(expected[14:18], 3)
	copy(expected[18:21], "arr")
	expected[21] = 9

	if serialized := cmd.Serialize(); !bytes.Equal(serialized, expected) {
		t.Errorf("Binary format does not match:\nGot:      %v\nExpected: %v", serialized, expected)
	}
}

func TestValueFillsRemainder(t *testing.T) {
	data := make([]byte, headerSize, headerSize+2+3)
	data[0] = byte(CommandTPut)
	binary.BigEndian.PutUint32(data[14:18], 2)
	data = append(data, "ab"...)
	data = append(data, 7, 8, 9)

	var cmd Command
	if err := cmd.Deserialize(data); err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if cmd.Name != "ab" {
		t.Errorf("Name = %q, want %q", cmd.Name, "ab")
	}
	if !bytes.Equal(cmd.Value, []byte{7, 8, 9}) {
		t.Errorf("Value = %v, want the trailing bytes", cmd.Value)
	}
	if len(data) != cmd.SizeBytes() {
		t.Errorf("SizeBytes() = %d, want %d", cmd.SizeBytes(), len(data))
	}

	// without trailing bytes there is no value
	if err := cmd.Deserialize(data[:headerSize+2]); err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if cmd.Value != nil {
		t.Errorf("Value = %v, want nil", cmd.Value)
	}
}

func TestBufferReuse(t *testing.T) {
	cmd := Command{Type: CommandTPut, Name: "a", Value: []byte("original value")}
	originalCap := cap(cmd.Value)

	next := Command{Type: CommandTPut, Name: "a", Value: []byte("changed")}
	if err := cmd.Deserialize(next.Serialize()); err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if cap(cmd.Value) != originalCap {
		t.Errorf("Buffer was not reused: capacity %d, want %d", cap(cmd.Value), originalCap)
	}
	if !bytes.Equal(cmd.Value, []byte("changed")) {
		t.Errorf("Value not correctly deserialized: got %q", cmd.Value)
	}
}

func TestToFeature(t *testing.T) {
	if f, err := CommandTSort.ToFeature(array.SortString); err != nil || f != array.FeatureSort {
		t.Errorf("ToFeature(SortString) = %v, %v", f, err)
	}
	if f, err := CommandTSort.ToFeature(array.SortNumeric); err != nil || f != array.FeatureSortFunc {
		t.Errorf("ToFeature(SortNumeric) = %v, %v", f, err)
	}
	if f, err := CommandTPut.ToFeature(array.SortString); err != nil || f != 0 {
		t.Errorf("ToFeature(Put) = %v, %v", f, err)
	}
	if _, err := CommandType(99).ToFeature(array.SortString); err == nil {
		t.Error("Expected error for unknown command type")
	}
}
