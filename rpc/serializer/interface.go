package serializer

import "github.com/ValentinKolb/dArr/rpc/common"

// IRPCSerializer converts messages to and from their wire form. Client and
// server of one deployment must use the same implementation.
type IRPCSerializer interface {
	// Serialize encodes msg. The returned slice is owned by the caller.
	Serialize(msg common.Message) ([]byte, error)
	// Deserialize decodes b into msg, overwriting every field of msg
	Deserialize(b []byte, msg *common.Message) error
}
