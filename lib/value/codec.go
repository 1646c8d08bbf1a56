package value

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// --------------------------------------------------------------------------
// Binary Codec
// --------------------------------------------------------------------------
//
// Layout: kind (1 byte) followed by the payload of the kind
//   - bool:   1 byte
//   - number: 8 bytes, IEEE 754 bits, big endian
//   - string: 4 bytes length, big endian, followed by the raw bytes
//   - all other kinds carry no payload

// AppendBinary appends the encoding of v to dst
func AppendBinary(dst []byte, v Value) ([]byte, error) {
	dst = append(dst, byte(v.kind))
	switch v.kind {
	case KindEmpty, KindUndefined, KindNull:
	case KindBool:
		dst = append(dst, byte(v.num))
	case KindNumber:
		dst = binary.BigEndian.AppendUint64(dst, math.Float64bits(v.num))
	case KindString:
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(v.str)))
		dst = append(dst, v.str...)
	case KindObject:
		return dst[:len(dst)-1], ErrNotSerializable
	default:
		return dst[:len(dst)-1], ErrInvalidEncoding
	}
	return dst, nil
}

// MarshalBinary returns the encoding of v
func MarshalBinary(v Value) ([]byte, error) {
	return AppendBinary(nil, v)
}

// DecodeBinary decodes one value from the front of data and returns the
// number of bytes consumed
func DecodeBinary(data []byte) (Value, int, error) {
	if len(data) < 1 {
		return Empty, 0, ErrInvalidEncoding
	}
	kind := Kind(data[0])
	switch kind {
	case KindEmpty, KindUndefined, KindNull:
		return Value{kind: kind}, 1, nil
	case KindBool:
		if len(data) < 2 {
			return Empty, 0, ErrInvalidEncoding
		}
		return Bool(data[1] != 0), 2, nil
	case KindNumber:
		if len(data) < 9 {
			return Empty, 0, ErrInvalidEncoding
		}
		return Number(math.Float64frombits(binary.BigEndian.Uint64(data[1:9]))), 9, nil
	case KindString:
		if len(data) < 5 {
			return Empty, 0, ErrInvalidEncoding
		}
		n := int(binary.BigEndian.Uint32(data[1:5]))
		if len(data) < 5+n {
			return Empty, 0, ErrInvalidEncoding
		}
		return String(string(data[5 : 5+n])), 5 + n, nil
	default:
		return Empty, 0, fmt.Errorf("%w: unknown kind %d", ErrInvalidEncoding, kind)
	}
}

// UnmarshalBinary decodes data that must hold exactly one value
func UnmarshalBinary(data []byte) (Value, error) {
	v, n, err := DecodeBinary(data)
	if err != nil {
		return Empty, err
	}
	if n != len(data) {
		return Empty, fmt.Errorf("%w: %d trailing bytes", ErrInvalidEncoding, len(data)-n)
	}
	return v, nil
}

// --------------------------------------------------------------------------
// JSON Input
// --------------------------------------------------------------------------

// ParseJSON parses a primitive JSON literal. The bare word "undefined" is
// accepted as well, since JSON cannot express it.
func ParseJSON(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "undefined" {
		return Undefined, nil
	}
	var raw interface{}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return Empty, fmt.Errorf("invalid value %q: %w", s, err)
	}
	switch x := raw.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(x), nil
	case float64:
		return Number(x), nil
	case string:
		return String(x), nil
	default:
		return Empty, fmt.Errorf("invalid value %q: only primitive values can be stored", s)
	}
}
