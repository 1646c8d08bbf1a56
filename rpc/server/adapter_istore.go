package server

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/store"
	"github.com/ValentinKolb/dArr/lib/value"
	"github.com/ValentinKolb/dArr/rpc/common"
)

func NewIStoreServerAdapter() IRPCServerAdapter {
	return &iStoreServerAdapterImpl{}
}

type iStoreServerAdapterImpl struct{}

func (adapter *iStoreServerAdapterImpl) Handle(req *common.Message, s store.IStore) *common.Message {
	// Check for nil store
	if s == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	switch req.MsgType {
	case common.MsgTArrPut:
		v, err := value.UnmarshalBinary(req.Value)
		if err != nil {
			return common.NewPutResponse(store.WrapError(err))
		}
		return common.NewPutResponse(s.Put(req.Key, req.Index, v))

	case common.MsgTArrGet:
		v, err := s.Get(req.Key, req.Index)
		if err != nil {
			return common.NewGetResponse(nil, err)
		}
		data, err := value.MarshalBinary(v)
		return common.NewGetResponse(data, store.WrapError(err))

	case common.MsgTArrDelete:
		deleted, err := s.Delete(req.Key, req.Index)
		return common.NewDeleteResponse(deleted, err)

	case common.MsgTArrLength:
		length, err := s.Length(req.Key)
		return common.NewLengthResponse(length, err)

	case common.MsgTArrSetLength:
		return common.NewSetLengthResponse(s.SetLength(req.Key, float64(req.Length)))

	case common.MsgTArrSort:
		order, err := array.ParseSortOrder(string(req.Meta))
		if err != nil {
			return common.NewSortResponse(store.NewError(store.RetCInvalidOperation, err.Error()))
		}
		return common.NewSortResponse(s.Sort(req.Key, order))

	case common.MsgTArrIndices:
		indices, err := s.Indices(req.Key)
		return common.NewIndicesResponse(indices, err)

	case common.MsgTArrDrop:
		dropped, err := s.Drop(req.Key)
		return common.NewDropResponse(dropped, err)

	case common.MsgTArrInfo:
		info, err := s.Info(req.Key)
		if err != nil {
			return common.NewInfoResponse(nil, err)
		}
		meta, err := json.Marshal(info)
		return common.NewInfoResponse(meta, store.WrapError(err))

	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC IStoreAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}
