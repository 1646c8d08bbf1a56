package dstore

import (
	"bytes"
	"testing"

	sm "github.com/lni/dragonboat/v4/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/array/engines/hybrid"
	"github.com/ValentinKolb/dArr/lib/store"
	"github.com/ValentinKolb/dArr/lib/store/dstore/internal"
	"github.com/ValentinKolb/dArr/lib/value"
)

func newTestStateMachine(t *testing.T) sm.IConcurrentStateMachine {
	factory := CreateStateMachineFactory(func() array.IndexedArray { return hybrid.NewHybridArray(nil) })
	fsm := factory(1, 1)
	t.Cleanup(func() { _ = fsm.Close() })
	return fsm
}

func putCmd(t *testing.T, name string, index uint32, v value.Value) []byte {
	data, err := value.MarshalBinary(v)
	require.NoError(t, err)
	cmd := internal.Command{Type: internal.CommandTPut, Name: name, Index: index, Value: data}
	return cmd.Serialize()
}

func apply(t *testing.T, fsm sm.IConcurrentStateMachine, cmds ...[]byte) []sm.Entry {
	entries := make([]sm.Entry, len(cmds))
	for i, c := range cmds {
		entries[i] = sm.Entry{Index: uint64(i + 1), Cmd: c}
	}
	out, err := fsm.Update(entries)
	require.NoError(t, err)
	return out
}

func TestStateMachineUpdateAndLookup(t *testing.T) {
	fsm := newTestStateMachine(t)

	del := internal.Command{Type: internal.CommandTDelete, Name: "a", Index: 1}
	sort := internal.Command{Type: internal.CommandTSort, Name: "a", Order: array.SortNumericDesc}
	out := apply(t, fsm,
		putCmd(t, "a", 0, value.Int(1)),
		putCmd(t, "a", 1, value.Int(2)),
		putCmd(t, "a", 2, value.Int(3)),
		del.Serialize(),
		sort.Serialize(),
	)
	for i, e := range out {
		assert.Equal(t, uint64(store.RetCSuccess), e.Result.Value, "entry %d: %s", i, e.Result.Data)
	}
	assert.Equal(t, []byte{1}, out[3].Result.Data, "delete reports the removed value")

	v, err := fsm.Lookup(internal.Query{Type: internal.QueryTGet, Name: "a", Index: 0})
	require.NoError(t, err)
	assert.True(t, value.Same(value.Int(3), v.(value.Value)))

	length, err := fsm.Lookup(internal.Query{Type: internal.QueryTLength, Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), length)

	indices, err := fsm.Lookup(internal.Query{Type: internal.QueryTIndices, Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1}, indices)

	info, err := fsm.Lookup(internal.Query{Type: internal.QueryTInfo, Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, array.ImplHybrid, info.(array.ArrayInfo).EngineType)

	_, err = fsm.Lookup("not a query")
	assert.Error(t, err)
}

func TestStateMachineErrors(t *testing.T) {
	fsm := newTestStateMachine(t)

	setLength := internal.Command{Type: internal.CommandTSetLength, Name: "a", Length: -1}
	drop := internal.Command{Type: internal.CommandTDrop, Name: "missing"}
	out := apply(t, fsm,
		setLength.Serialize(),
		putCmd(t, "a", 0xFFFFFFFF, value.True),
		[]byte{},
		[]byte{1, 2},
		(&internal.Command{Type: internal.CommandType(42)}).Serialize(),
		drop.Serialize(),
	)

	assert.Equal(t, uint64(store.RetCRangeError), out[0].Result.Value)
	assert.Equal(t, uint64(store.RetCInvalidOperation), out[1].Result.Value)
	assert.Equal(t, uint64(store.RetCInvalidOperation), out[2].Result.Value)
	assert.Equal(t, uint64(store.RetCInternalError), out[3].Result.Value)
	assert.Equal(t, uint64(store.RetCInvalidOperation), out[4].Result.Value)
	assert.Equal(t, uint64(store.RetCSuccess), out[5].Result.Value)
	assert.Equal(t, []byte{0}, out[5].Result.Data)
}

func TestStateMachineSnapshot(t *testing.T) {
	fsm := newTestStateMachine(t)
	apply(t, fsm,
		putCmd(t, "a", 3, value.String("x")),
		putCmd(t, "b", 90000, value.False),
	)

	ctx, err := fsm.PrepareSnapshot()
	require.NoError(t, err)

	// updates after the prepare step are not part of the snapshot
	apply(t, fsm, putCmd(t, "c", 0, value.True))

	var buf bytes.Buffer
	require.NoError(t, fsm.SaveSnapshot(ctx, &buf, nil, nil))

	restored := newTestStateMachine(t)
	require.NoError(t, restored.RecoverFromSnapshot(&buf, nil, nil))

	v, err := restored.Lookup(internal.Query{Type: internal.QueryTGet, Name: "a", Index: 3})
	require.NoError(t, err)
	assert.True(t, value.Same(value.String("x"), v.(value.Value)))

	length, err := restored.Lookup(internal.Query{Type: internal.QueryTLength, Name: "b"})
	require.NoError(t, err)
	assert.Equal(t, uint32(90001), length)

	length, err = restored.Lookup(internal.Query{Type: internal.QueryTLength, Name: "c"})
	require.NoError(t, err)
	assert.Equal(t, uint32(0), length)
}
