package lstore

import (
	"bytes"
	"strings"
	"testing"

	"github.com/VictoriaMetrics/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/array/engines/mapped"
	"github.com/ValentinKolb/dArr/lib/store"
	"github.com/ValentinKolb/dArr/lib/value"
)

func TestLocalStore(t *testing.T) {
	s := NewLocalStore(mapped.NewMappedArray)

	require.NoError(t, s.Put("a", 1, value.String("b")))
	require.NoError(t, s.Put("a", 0, value.String("c")))
	require.NoError(t, s.Sort("a", array.SortStringDesc))

	v, err := s.Get("a", 0)
	require.NoError(t, err)
	assert.True(t, value.Same(value.String("c"), v))

	err = s.SetLength("a", 0.5)
	assert.True(t, store.IsCode(err, store.RetCRangeError))

	info, err := s.Info("a")
	require.NoError(t, err)
	assert.Equal(t, array.ImplMapped, info.EngineType)
	assert.Equal(t, 2, info.StoredValues)
}

func TestLocalStoreMetrics(t *testing.T) {
	s := NewLocalStore(mapped.NewMappedArray)
	_ = s.Put("m", 0, value.True)
	_ = s.Put("m", 0xFFFFFFFF, value.True)
	_ = s.Sort("m", array.SortString)

	var buf bytes.Buffer
	metrics.WritePrometheus(&buf, false)
	out := buf.String()

	for _, name := range []string{
		`darr_store_ops_total{op="put"}`,
		`darr_store_errors_total{op="put"}`,
		`darr_store_ops_total{op="sort"}`,
		`darr_sort_duration_seconds`,
	} {
		assert.True(t, strings.Contains(out, name), "missing metric %s", name)
	}
}
