package server

import (
	"encoding/json"
	"testing"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/store"
	"github.com/ValentinKolb/dArr/lib/store/lstore"
	"github.com/ValentinKolb/dArr/lib/value"
	"github.com/ValentinKolb/dArr/rpc/common"
	"github.com/ValentinKolb/dArr/rpc/serializer"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, v value.Value) []byte {
	data, err := value.MarshalBinary(v)
	require.NoError(t, err)
	return data
}

func decode(t *testing.T, data []byte) value.Value {
	v, err := value.UnmarshalBinary(data)
	require.NoError(t, err)
	return v
}

func TestEngineFactory(t *testing.T) {
	for name, expected := range map[string]array.Implementation{
		"":        array.ImplHybrid,
		"hybrid":  array.ImplHybrid,
		" Mapped": array.ImplMapped,
	} {
		factory, err := EngineFactory(name)
		require.NoError(t, err)
		assert.Equal(t, expected, factory().GetInfo().EngineType, "engine %q", name)
	}

	_, err := EngineFactory("btree")
	assert.Error(t, err)
}

func TestIStoreAdapter(t *testing.T) {
	factory, _ := EngineFactory("hybrid")
	s := lstore.NewLocalStore(factory)
	adapter := NewIStoreServerAdapter()

	// put and get
	resp := adapter.Handle(common.NewPutRequest("a", 3, encode(t, value.String("x"))), s)
	require.Empty(t, resp.Err)
	assert.Equal(t, common.MsgTArrPut, resp.MsgType)

	resp = adapter.Handle(common.NewGetRequest("a", 3), s)
	require.Empty(t, resp.Err)
	assert.True(t, value.Same(value.String("x"), decode(t, resp.Value)))

	resp = adapter.Handle(common.NewGetRequest("a", 0), s)
	assert.True(t, decode(t, resp.Value).IsUndefined())

	// length
	resp = adapter.Handle(common.NewLengthRequest("a"), s)
	assert.Equal(t, common.Number(4), resp.Length)

	// invalid value encoding
	resp = adapter.Handle(common.NewPutRequest("a", 1, []byte{0xFF}), s)
	assert.Equal(t, uint64(store.RetCInvalidOperation), resp.Code)
	assert.NotEmpty(t, resp.Err)

	// set length with a range error keeps the code
	resp = adapter.Handle(common.NewSetLengthRequest("a", 1.5), s)
	assert.Equal(t, uint64(store.RetCRangeError), resp.Code)
	assert.True(t, store.IsCode(resp.RemoteError(), store.RetCRangeError))

	resp = adapter.Handle(common.NewSetLengthRequest("a", 10), s)
	require.Empty(t, resp.Err)

	// sort
	adapter.Handle(common.NewPutRequest("a", 0, encode(t, value.String("b"))), s)
	resp = adapter.Handle(common.NewSortRequest("a", array.SortStringDesc), s)
	require.Empty(t, resp.Err)
	resp = adapter.Handle(common.NewGetRequest("a", 0), s)
	assert.True(t, value.Same(value.String("x"), decode(t, resp.Value)))

	resp = adapter.Handle(&common.Message{MsgType: common.MsgTArrSort, Key: "a", Meta: []byte("random")}, s)
	assert.Equal(t, uint64(store.RetCInvalidOperation), resp.Code)

	// indices
	resp = adapter.Handle(common.NewIndicesRequest("a"), s)
	assert.Equal(t, []uint32{0, 1}, resp.Indices)

	// delete
	resp = adapter.Handle(common.NewDeleteRequest("a", 1), s)
	assert.True(t, resp.Ok)
	resp = adapter.Handle(common.NewDeleteRequest("a", 1), s)
	assert.False(t, resp.Ok)

	// info
	resp = adapter.Handle(common.NewInfoRequest("a"), s)
	require.Empty(t, resp.Err)
	var info map[string]any
	require.NoError(t, json.Unmarshal(resp.Meta, &info))
	assert.Equal(t, "hybrid", info["engine_type"])
	assert.Equal(t, float64(10), info["length"])

	// drop
	resp = adapter.Handle(common.NewDropRequest("a"), s)
	assert.True(t, resp.Ok)
	resp = adapter.Handle(common.NewDropRequest("a"), s)
	assert.False(t, resp.Ok)

	// unsupported types and missing store
	resp = adapter.Handle(&common.Message{MsgType: common.MsgTSuccess}, s)
	assert.Equal(t, common.MsgTError, resp.MsgType)
	resp = adapter.Handle(common.NewLengthRequest("a"), nil)
	assert.Equal(t, common.MsgTError, resp.MsgType)
}

func TestServerHandle(t *testing.T) {
	factory, _ := EngineFactory("mapped")
	srv := &Server{
		serializer: serializer.NewBinarySerializer(),
		shards:     xsync.NewMapOf[uint64, serverShard](),
	}
	srv.shards.Store(1, serverShard{Store: lstore.NewLocalStore(factory), Adapter: NewIStoreServerAdapter()})

	roundTrip := func(shardId uint64, req []byte) common.Message {
		var resp common.Message
		require.NoError(t, srv.serializer.Deserialize(srv.handle(shardId, req), &resp))
		return resp
	}

	req, err := srv.serializer.Serialize(*common.NewPutRequest("arr", 5, encode(t, value.Int(1))))
	require.NoError(t, err)
	resp := roundTrip(1, req)
	assert.Equal(t, common.MsgTArrPut, resp.MsgType)
	assert.NoError(t, resp.RemoteError())

	// unknown shard
	resp = roundTrip(2, req)
	assert.Equal(t, common.MsgTError, resp.MsgType)
	assert.Error(t, resp.RemoteError())

	// undecodable request
	resp = roundTrip(1, []byte{1})
	assert.Equal(t, common.MsgTError, resp.MsgType)
	assert.Contains(t, resp.Err, "deserialize")
}
