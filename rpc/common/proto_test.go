package common

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ValentinKolb/dArr/lib/store"
)

func TestNumberJSON(t *testing.T) {
	for _, f := range []float64{0, -1.5, 4294967295, math.Inf(1), math.Inf(-1), math.NaN()} {
		data, err := json.Marshal(Number(f))
		require.NoError(t, err, "marshal %v", f)

		var n Number
		require.NoError(t, json.Unmarshal(data, &n), "unmarshal %s", data)
		if math.IsNaN(f) {
			assert.True(t, math.IsNaN(float64(n)))
		} else {
			assert.Equal(t, f, float64(n))
		}
	}

	var n Number
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &n))
}

func TestMessageTypeJSON(t *testing.T) {
	for mt := range messageTypeNames {
		data, err := json.Marshal(mt)
		require.NoError(t, err)

		var got MessageType
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, mt, got)
	}

	var got MessageType
	assert.Error(t, json.Unmarshal([]byte(`"bogus"`), &got))
}

func TestRemoteError(t *testing.T) {
	assert.NoError(t, NewPutResponse(nil).RemoteError())

	resp := NewSetLengthResponse(store.NewError(store.RetCRangeError, "Invalid array length"))
	err := resp.RemoteError()
	assert.True(t, store.IsCode(err, store.RetCRangeError))
	assert.Contains(t, err.Error(), "Invalid array length")

	resp = NewSortResponse(errors.New("boom"))
	assert.True(t, store.IsCode(resp.RemoteError(), store.RetCInternalError))

	assert.True(t, store.IsCode(NewErrorResponse("unsupported").RemoteError(), store.RetCInvalidOperation))
}

func TestParseLogLevelAllNames(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "warning", "error", "critical"} {
		_, err := ParseLogLevel(level)
		assert.NoError(t, err, level)
	}
	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
}

func TestParseShardTypeAliases(t *testing.T) {
	st, err := ParseShardType("Raft")
	require.NoError(t, err)
	assert.Equal(t, ShardTypeRemoteIStore, st)

	_, err = ParseShardType("lock")
	assert.Error(t, err)
}
