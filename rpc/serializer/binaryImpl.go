package serializer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ValentinKolb/dArr/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format.
//
// Layout: MsgType (1 byte) | flags (1 byte) | present fields in flag order.
// Strings and byte slices are prefixed with a uint32 length, Indices with a
// uint32 count. Ok has no payload, the flag is the value. An error is written
// as its code (uint64) followed by the message. All numbers are big endian.
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasKey     byte = 1 << 0
	hasIndex   byte = 1 << 1
	hasLength  byte = 1 << 2
	hasValue   byte = 1 << 3
	hasIndices byte = 1 << 4
	hasOk      byte = 1 << 5
	hasErr     byte = 1 << 6
	hasMeta    byte = 1 << 7
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	result := make([]byte, 2, b.sizeBytes(msg))
	result[0] = byte(msg.MsgType)

	var flags byte
	if msg.Key != "" {
		flags |= hasKey
		result = appendBytes(result, []byte(msg.Key))
	}
	if msg.Index != 0 {
		flags |= hasIndex
		result = binary.BigEndian.AppendUint32(result, msg.Index)
	}
	if bits := math.Float64bits(float64(msg.Length)); bits != 0 {
		flags |= hasLength
		result = binary.BigEndian.AppendUint64(result, bits)
	}
	if msg.Value != nil {
		flags |= hasValue
		result = appendBytes(result, msg.Value)
	}
	if msg.Indices != nil {
		flags |= hasIndices
		result = binary.BigEndian.AppendUint32(result, uint32(len(msg.Indices)))
		for _, index := range msg.Indices {
			result = binary.BigEndian.AppendUint32(result, index)
		}
	}
	if msg.Ok {
		flags |= hasOk
	}
	if msg.Err != "" {
		flags |= hasErr
		result = binary.BigEndian.AppendUint64(result, msg.Code)
		result = appendBytes(result, []byte(msg.Err))
	}
	if msg.Meta != nil {
		flags |= hasMeta
		result = appendBytes(result, msg.Meta)
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags
	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	*msg = common.Message{MsgType: common.MessageType(data[0])}
	flags := data[1]
	r := reader{data: data, pos: 2}

	if flags&hasKey != 0 {
		msg.Key = string(r.bytes("key"))
	}
	if flags&hasIndex != 0 {
		msg.Index = r.uint32("index")
	}
	if flags&hasLength != 0 {
		msg.Length = common.Number(math.Float64frombits(r.uint64("length")))
	}
	if flags&hasValue != 0 {
		msg.Value = r.bytes("value")
	}
	if flags&hasIndices != 0 {
		count := r.uint32("indices count")
		if r.err == nil && uint64(count)*4 > uint64(len(data)-r.pos) {
			r.err = fmt.Errorf("data too short for %d indices", count)
		}
		if r.err == nil {
			msg.Indices = make([]uint32, count)
			for i := range msg.Indices {
				msg.Indices[i] = r.uint32("index")
			}
		}
	}
	msg.Ok = flags&hasOk != 0
	if flags&hasErr != 0 {
		msg.Code = r.uint64("error code")
		msg.Err = string(r.bytes("error"))
	}
	if flags&hasMeta != 0 {
		msg.Meta = r.bytes("meta")
	}

	return r.err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2
	if msg.Key != "" {
		size += 4 + len(msg.Key)
	}
	if msg.Index != 0 {
		size += 4
	}
	if math.Float64bits(float64(msg.Length)) != 0 {
		size += 8
	}
	if msg.Value != nil {
		size += 4 + len(msg.Value)
	}
	if msg.Indices != nil {
		size += 4 + 4*len(msg.Indices)
	}
	if msg.Err != "" {
		size += 8 + 4 + len(msg.Err)
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta)
	}
	return size
}

// appendBytes appends p prefixed with its uint32 length
func appendBytes(dst, p []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(p)))
	return append(dst, p...)
}

// reader decodes fields sequentially. The first failure is kept in err and
// turns all further reads into no-ops.
type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) need(n int, field string) bool {
	if r.err != nil {
		return false
	}
	if n > len(r.data)-r.pos {
		r.err = fmt.Errorf("data too short for %s", field)
		return false
	}
	return true
}

func (r *reader) uint32(field string) uint32 {
	if !r.need(4, field) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) uint64(field string) uint64 {
	if !r.need(8, field) {
		return 0
	}
	v := binary.BigEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v
}

// bytes reads a length prefixed byte slice. The result is a copy and never
// nil, an empty slice stays distinguishable from an absent one.
func (r *reader) bytes(field string) []byte {
	n := r.uint32(field + " length")
	if !r.need(int(n), field+" data") {
		return nil
	}
	p := make([]byte, n)
	copy(p, r.data[r.pos:])
	r.pos += int(n)
	return p
}
