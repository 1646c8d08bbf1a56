package client

import (
	"encoding/json"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/store"
	"github.com/ValentinKolb/dArr/lib/value"
	"github.com/ValentinKolb/dArr/rpc/common"
	"github.com/ValentinKolb/dArr/rpc/serializer"
	"github.com/ValentinKolb/dArr/rpc/transport"
	"github.com/google/uuid"
)

// NewRPCStore connects transport and returns a store.IStore that forwards
// every operation to the given shard of the server
func NewRPCStore(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.IStore, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	s := &rpcStore{
		rpcClientAdapter{
			id:         uuid.New(),
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}
	Logger.Debugf("client %s: connected to shard %d", s.id, shardId)
	return s, nil
}

type rpcStore struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (s *rpcStore) Put(name string, index uint32, v value.Value) error {
	if index > array.MaxArrayIndex {
		return store.NewError(store.RetCInvalidOperation, "index 4294967295 is not an array index")
	}
	data, err := value.MarshalBinary(v)
	if err != nil {
		return store.WrapError(err)
	}
	_, err = s.invoke(common.NewPutRequest(name, index, data))
	return err
}

func (s *rpcStore) Get(name string, index uint32) (value.Value, error) {
	resp, err := s.invoke(common.NewGetRequest(name, index))
	if err != nil {
		return value.Undefined, err
	}
	v, err := value.UnmarshalBinary(resp.Value)
	if err != nil {
		return value.Undefined, store.WrapError(err)
	}
	return v, nil
}

func (s *rpcStore) Delete(name string, index uint32) (bool, error) {
	resp, err := s.invoke(common.NewDeleteRequest(name, index))
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (s *rpcStore) Length(name string) (uint32, error) {
	resp, err := s.invoke(common.NewLengthRequest(name))
	if err != nil {
		return 0, err
	}
	return uint32(resp.Length), nil
}

func (s *rpcStore) SetLength(name string, length float64) error {
	_, err := s.invoke(common.NewSetLengthRequest(name, length))
	return err
}

func (s *rpcStore) Sort(name string, order array.SortOrder) error {
	_, err := s.invoke(common.NewSortRequest(name, order))
	return err
}

func (s *rpcStore) Indices(name string) ([]uint32, error) {
	resp, err := s.invoke(common.NewIndicesRequest(name))
	if err != nil {
		return nil, err
	}
	return resp.Indices, nil
}

func (s *rpcStore) Drop(name string) (bool, error) {
	resp, err := s.invoke(common.NewDropRequest(name))
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

// Info returns the info reported by the server. Metadata arrives as decoded
// JSON (maps, slices and float64 values).
func (s *rpcStore) Info(name string) (array.ArrayInfo, error) {
	resp, err := s.invoke(common.NewInfoRequest(name))
	if err != nil {
		return array.ArrayInfo{}, err
	}
	var info array.ArrayInfo
	if err := json.Unmarshal(resp.Meta, &info); err != nil {
		return array.ArrayInfo{}, store.NewError(store.RetCInternalError, "invalid info response: "+err.Error())
	}
	return info, nil
}
