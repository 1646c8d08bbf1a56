package serializer

import (
	"encoding/json"

	"github.com/ValentinKolb/dArr/rpc/common"
)

// NewJSONSerializer creates a serializer writing messages as JSON objects.
// Non finite lengths are written as strings, see common.Number.
func NewJSONSerializer() IRPCSerializer {
	return jsonSerializerImpl{}
}

type jsonSerializerImpl struct{}

func (jsonSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	// fields absent from b must not survive from an earlier message
	*msg = common.Message{}
	return json.Unmarshal(b, msg)
}
