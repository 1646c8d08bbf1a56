package internal

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ValentinKolb/dArr/lib/array"
)

// CommandType defines the possible operations for the state machine.
type CommandType uint8

const (
	CommandTPut       CommandType = iota // Store a value at an index.
	CommandTDelete                       // Delete the value at an index.
	CommandTSetLength                    // Assign the length of an array.
	CommandTSort                         // Sort an array.
	CommandTDrop                         // Remove an array.
)

func (ct CommandType) String() string {
	switch ct {
	case CommandTPut:
		return "Put"
	case CommandTDelete:
		return "Delete"
	case CommandTSetLength:
		return "SetLength"
	case CommandTSort:
		return "Sort"
	case CommandTDrop:
		return "Drop"
	default:
		return fmt.Sprintf("Unknown(%d)", ct)
	}
}

// ToFeature converts a CommandType to the array.Feature the engine must support
// to apply it. Commands every engine supports return 0.
func (ct CommandType) ToFeature(order array.SortOrder) (array.Feature, error) {
	switch ct {
	case CommandTPut, CommandTDelete, CommandTSetLength, CommandTDrop:
		return 0, nil
	case CommandTSort:
		if order.Comparator() != nil {
			return array.FeatureSortFunc, nil
		}
		return array.FeatureSort, nil
	default:
		return 0, fmt.Errorf("unknown command type %d", ct)
	}
}

const headerSize = 1 + 4 + 8 + 1 + 4 // Type + Index + Length + Order + NameLen

// Command represents a command to be executed by the state machine (a single entry in the raft log)
type Command struct {
	Type   CommandType
	Name   string
	Index  uint32
	Length float64
	Order  array.SortOrder
	Value  []byte // value.MarshalBinary encoding, Put only
}

// SizeBytes returns the exact number of bytes needed to serialize this command
func (command *Command) SizeBytes() int {
	return headerSize + len(command.Name) + len(command.Value)
}

// Serialize serializes a command into a byte array with the format:
// 1 byte for operation type,
// 4 bytes for the index,
// 8 bytes for the length (float64 bits),
// 1 byte for the sort order,
// 4 bytes for name length,
// N bytes for name data,
// the remaining bytes for the value data (optional, no length prefix)
//
// All numbers are big endian.
func (command *Command) Serialize() []byte {
	result := make([]byte, command.SizeBytes())

	result[0] = byte(command.Type)
	binary.BigEndian.PutUint32(result[1:5], command.Index)
	binary.BigEndian.PutUint64(result[5:13], math.Float64bits(command.Length))
	result[13] = byte(command.Order)
	binary.BigEndian.PutUint32(result[14:18], uint32(len(command.Name)))

	n := copy(result[headerSize:], command.Name)
	copy(result[headerSize+n:], command.Value)

	return result
}

// Deserialize extracts all Command fields from a byte array.
func (command *Command) Deserialize(data []byte) error {
	if len(data) < headerSize {
		return fmt.Errorf("data too short for command")
	}

	command.Type = CommandType(data[0])
	command.Index = binary.BigEndian.Uint32(data[1:5])
	command.Length = math.Float64frombits(binary.BigEndian.Uint64(data[5:13]))
	command.Order = array.SortOrder(data[13])
	nameLen := binary.BigEndian.Uint32(data[14:18])

	if uint64(len(data)) < uint64(headerSize)+uint64(nameLen) {
		return fmt.Errorf("data too short for name of length %d", nameLen)
	}
	end := headerSize + int(nameLen)
	command.Name = string(data[headerSize:end])

	if len(data) > end {
		valueLen := len(data) - end
		// Reuse existing buffer if possible to reduce allocations
		if command.Value == nil || cap(command.Value) < valueLen {
			command.Value = make([]byte, valueLen)
		} else {
			command.Value = command.Value[:valueLen]
		}
		copy(command.Value, data[end:])
	} else {
		command.Value = nil
	}

	return nil
}
