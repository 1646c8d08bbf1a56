package array_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/array/engines/mapped"
	"github.com/ValentinKolb/dArr/lib/value"
)

func TestComparators(t *testing.T) {
	c, err := array.StringComparator(value.Int(10), value.Int(9))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, _ = array.NumericComparator(value.Int(10), value.Int(9))
	assert.Equal(t, 1, c)
	c, _ = array.NumericComparator(value.Number(math.NaN()), value.Int(9))
	assert.Equal(t, 0, c)

	c, _ = array.Reverse(array.NumericComparator)(value.Int(10), value.Int(9))
	assert.Equal(t, -1, c)

	failing := errors.New("toString failed")
	obj := value.NewHeap().NewObject("Thrower")
	obj.ToStringFunc = func() (string, error) { return "", failing }
	_, err = array.StringComparator(value.FromObject(obj), value.Int(1))
	assert.ErrorIs(t, err, failing)
}

func TestParseSortOrder(t *testing.T) {
	for _, o := range []array.SortOrder{array.SortString, array.SortStringDesc, array.SortNumeric, array.SortNumericDesc} {
		parsed, err := array.ParseSortOrder(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, parsed)
	}
	parsed, err := array.ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, array.SortString, parsed)

	_, err = array.ParseSortOrder("random")
	assert.Error(t, err)
	assert.Nil(t, array.SortString.Comparator())
}

func TestSortBy(t *testing.T) {
	input := []int{3, 20, 100, 1}
	want := map[array.SortOrder][]int{
		array.SortString:      {1, 100, 20, 3},
		array.SortStringDesc:  {3, 20, 100, 1},
		array.SortNumeric:     {1, 3, 20, 100},
		array.SortNumericDesc: {100, 20, 3, 1},
	}
	for order, expected := range want {
		arr := mapped.NewMappedArray()
		for i, n := range input {
			arr.Put(uint32(i), value.Int(n))
		}
		require.NoError(t, array.SortBy(arr, order))
		for i, n := range expected {
			v, _ := arr.Get(uint32(i))
			assert.True(t, value.Same(value.Int(n), v), "%s: index %d is %v", order, i, v)
		}
	}
}
