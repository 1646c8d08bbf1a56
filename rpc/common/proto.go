package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/store"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type" cbor:"1,keyasint"`

	// General fields
	Key     string   `json:"key,omitempty" cbor:"2,keyasint,omitempty"`     // Array name, used by all array operations
	Index   uint32   `json:"index,omitempty" cbor:"3,keyasint,omitempty"`   // Used for: Put, Get, Delete requests
	Length  Number   `json:"length,omitempty" cbor:"4,keyasint,omitempty"`  // Used for: SetLength (request), Length (response)
	Value   []byte   `json:"value,omitempty" cbor:"5,keyasint,omitempty"`   // value.MarshalBinary encoding, Put (request), Get (response)
	Indices []uint32 `json:"indices,omitempty" cbor:"6,keyasint,omitempty"` // Used for: Indices responses

	// Response only fields
	Ok   bool   `json:"ok,omitempty" cbor:"7,keyasint,omitempty"`   // Used for: Delete, Drop responses
	Err  string `json:"err,omitempty" cbor:"8,keyasint,omitempty"`  // Empty if no error, otherwise contains the error message
	Code uint64 `json:"code,omitempty" cbor:"9,keyasint,omitempty"` // store.RetCode of the error

	// Meta information
	Meta []byte `json:"meta,omitempty" cbor:"10,keyasint,omitempty"` // Sort order (request) or JSON encoded array.ArrayInfo (response)
}

// Number is a float64 that survives JSON encoding for NaN and the infinities,
// which are written as strings.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Infinity"`), nil
	}
	return json.Marshal(f)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "NaN":
			*n = Number(math.NaN())
		case "Infinity":
			*n = Number(math.Inf(1))
		case "-Infinity":
			*n = Number(math.Inf(-1))
		default:
			return fmt.Errorf("invalid number: %q", s)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// setErr stores err in the message, keeping the return code of store errors
func (m *Message) setErr(err error) *Message {
	if err == nil {
		return m
	}
	m.Err = err.Error()
	m.Code = uint64(store.RetCInternalError)
	var se *store.Error
	if errors.As(err, &se) {
		m.Err = se.Msg
		m.Code = uint64(se.Code)
	}
	return m
}

// RemoteError rebuilds the *store.Error carried by a response, nil if there is none
func (m *Message) RemoteError() error {
	if m.Err == "" && m.MsgType != MsgTError {
		return nil
	}
	code := store.RetCode(m.Code)
	if code == store.RetCSuccess {
		code = store.RetCInternalError
	}
	return store.NewError(code, m.Err)
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewPutRequest creates a new Put request, value is the encoded value
func NewPutRequest(name string, index uint32, value []byte) *Message {
	return &Message{
		MsgType: MsgTArrPut,
		Key:     name,
		Index:   index,
		Value:   value,
	}
}

// NewPutResponse creates a new Put response
func NewPutResponse(err error) *Message {
	return (&Message{MsgType: MsgTArrPut}).setErr(err)
}

// NewGetRequest creates a new Get request
func NewGetRequest(name string, index uint32) *Message {
	return &Message{
		MsgType: MsgTArrGet,
		Key:     name,
		Index:   index,
	}
}

// NewGetResponse creates a new Get response, value is the encoded value
func NewGetResponse(value []byte, err error) *Message {
	return (&Message{MsgType: MsgTArrGet, Value: value}).setErr(err)
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(name string, index uint32) *Message {
	return &Message{
		MsgType: MsgTArrDelete,
		Key:     name,
		Index:   index,
	}
}

// NewDeleteResponse creates a new Delete response
func NewDeleteResponse(deleted bool, err error) *Message {
	return (&Message{MsgType: MsgTArrDelete, Ok: deleted}).setErr(err)
}

// NewLengthRequest creates a new Length request
func NewLengthRequest(name string) *Message {
	return &Message{
		MsgType: MsgTArrLength,
		Key:     name,
	}
}

// NewLengthResponse creates a new Length response
func NewLengthResponse(length uint32, err error) *Message {
	return (&Message{MsgType: MsgTArrLength, Length: Number(length)}).setErr(err)
}

// NewSetLengthRequest creates a new SetLength request
func NewSetLengthRequest(name string, length float64) *Message {
	return &Message{
		MsgType: MsgTArrSetLength,
		Key:     name,
		Length:  Number(length),
	}
}

// NewSetLengthResponse creates a new SetLength response
func NewSetLengthResponse(err error) *Message {
	return (&Message{MsgType: MsgTArrSetLength}).setErr(err)
}

// NewSortRequest creates a new Sort request, the order travels in Meta
func NewSortRequest(name string, order array.SortOrder) *Message {
	return &Message{
		MsgType: MsgTArrSort,
		Key:     name,
		Meta:    []byte(order.String()),
	}
}

// NewSortResponse creates a new Sort response
func NewSortResponse(err error) *Message {
	return (&Message{MsgType: MsgTArrSort}).setErr(err)
}

// NewIndicesRequest creates a new Indices request
func NewIndicesRequest(name string) *Message {
	return &Message{
		MsgType: MsgTArrIndices,
		Key:     name,
	}
}

// NewIndicesResponse creates a new Indices response
func NewIndicesResponse(indices []uint32, err error) *Message {
	return (&Message{MsgType: MsgTArrIndices, Indices: indices}).setErr(err)
}

// NewDropRequest creates a new Drop request
func NewDropRequest(name string) *Message {
	return &Message{
		MsgType: MsgTArrDrop,
		Key:     name,
	}
}

// NewDropResponse creates a new Drop response
func NewDropResponse(dropped bool, err error) *Message {
	return (&Message{MsgType: MsgTArrDrop, Ok: dropped}).setErr(err)
}

// NewInfoRequest creates a new Info request
func NewInfoRequest(name string) *Message {
	return &Message{
		MsgType: MsgTArrInfo,
		Key:     name,
	}
}

// NewInfoResponse creates a new Info response, meta is the JSON encoded array.ArrayInfo
func NewInfoResponse(meta []byte, err error) *Message {
	return (&Message{MsgType: MsgTArrInfo, Meta: meta}).setErr(err)
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
		Code:    uint64(store.RetCInvalidOperation),
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

var messageTypeNames = map[MessageType]string{
	MsgTSuccess:      "success",
	MsgTError:        "error",
	MsgTArrPut:       "put",
	MsgTArrGet:       "get",
	MsgTArrDelete:    "delete",
	MsgTArrLength:    "length",
	MsgTArrSetLength: "setLength",
	MsgTArrSort:      "sort",
	MsgTArrIndices:   "indices",
	MsgTArrDrop:      "drop",
	MsgTArrInfo:      "info",
}

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for mt, name := range messageTypeNames {
		if name == s {
			*t = mt
			return nil
		}
	}
	return fmt.Errorf("unknown message type: %s", s)
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// IStore operations

	MsgTArrPut       // Store a value at an index
	MsgTArrGet       // Read the value at an index
	MsgTArrDelete    // Delete the value at an index
	MsgTArrLength    // Read the array length
	MsgTArrSetLength // Assign the array length
	MsgTArrSort      // Sort an array
	MsgTArrIndices   // List the stored indices
	MsgTArrDrop      // Remove an array
	MsgTArrInfo      // Read engine metadata
)
