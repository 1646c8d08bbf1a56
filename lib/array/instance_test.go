package array_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/array/engines/hybrid"
	"github.com/ValentinKolb/dArr/lib/array/engines/mapped"
	"github.com/ValentinKolb/dArr/lib/value"
)

var engines = map[string]array.Factory{
	"hybrid": func() array.IndexedArray { return hybrid.NewHybridArray(nil) },
	"mapped": mapped.NewMappedArray,
}

func TestInstanceLengthAssignment(t *testing.T) {
	for name, factory := range engines {
		t.Run(name, func(t *testing.T) {
			a := array.NewInstance(factory())
			for i := 0; i < 5; i++ {
				a.PutIndex(uint32(i), value.Int(i))
			}

			invalid := []value.Value{
				value.Int(-1),
				value.Number(1.5),
				value.Number(math.NaN()),
				value.Number(4294967296),
				value.Number(math.Inf(1)),
				value.String("abc"),
			}
			for _, v := range invalid {
				err := a.Put(array.LengthProperty, v)
				require.Error(t, err, "length = %v", v)

				var rangeErr *array.RangeError
				assert.True(t, errors.As(err, &rangeErr))
				assert.ErrorIs(t, err, array.ErrInvalidArrayLength)
				assert.Equal(t, uint32(5), a.Length(), "failed assignment of %v mutated the array", v)
			}

			require.NoError(t, a.Put(array.LengthProperty, value.String("3")))
			assert.Equal(t, uint32(3), a.Length())
			assert.False(t, a.HasOwnProperty("3"))
			assert.True(t, a.HasOwnProperty("2"))

			require.NoError(t, a.SetLength(value.Number(4294967295)))
			assert.Equal(t, uint32(4294967295), a.Length())
			assert.True(t, value.Same(value.Number(4294967295), a.Get(array.LengthProperty)))

			require.NoError(t, a.SetLength(value.Null))
			assert.Equal(t, uint32(0), a.Length())
		})
	}
}

func TestInstanceNamedAccess(t *testing.T) {
	for name, factory := range engines {
		t.Run(name, func(t *testing.T) {
			a := array.NewInstance(factory())

			require.NoError(t, a.Put("7", value.String("index")))
			require.NoError(t, a.Put("07", value.String("name")))
			require.NoError(t, a.Put("foo", value.True))

			assert.Equal(t, uint32(8), a.Length())
			assert.True(t, value.Same(value.String("index"), a.GetIndex(7)))
			assert.True(t, value.Same(value.String("name"), a.Get("07")))
			assert.True(t, a.Get("bar").IsUndefined())
			assert.True(t, a.HasOwnProperty(array.LengthProperty))

			assert.False(t, a.Delete(array.LengthProperty))
			assert.True(t, a.Delete("foo"))
			assert.False(t, a.Delete("foo"))
			assert.False(t, a.HasOwnProperty("foo"))
			assert.True(t, a.Delete("7"))
			assert.Equal(t, uint32(8), a.Length())
		})
	}
}

func TestInstanceMaxIndexRedirect(t *testing.T) {
	for name, factory := range engines {
		t.Run(name, func(t *testing.T) {
			a := array.NewInstance(factory())

			a.PutIndex(0xFFFFFFFF, value.String("named"))
			assert.Equal(t, uint32(0), a.Length())
			assert.True(t, value.Same(value.String("named"), a.GetIndex(0xFFFFFFFF)))
			assert.True(t, value.Same(value.String("named"), a.Get("4294967295")))
			assert.Equal(t, []string{"4294967295"}, a.OwnPropertyNames())

			a.PutIndex(array.MaxArrayIndex, value.True)
			assert.Equal(t, uint32(0xFFFFFFFF), a.Length())

			assert.True(t, a.DeleteIndex(0xFFFFFFFF))
			assert.False(t, a.DeleteIndex(0xFFFFFFFF))
			assert.True(t, a.GetIndex(0xFFFFFFFF).IsUndefined())
		})
	}
}

func TestInstanceOwnPropertyNames(t *testing.T) {
	a := array.NewInstance(hybrid.NewHybridArray(nil))
	require.NoError(t, a.Put("b", value.Null))
	a.PutIndex(2, value.Int(2))
	require.NoError(t, a.Put("a", value.Null))
	a.PutIndex(70000, value.Int(3))
	a.PutIndex(0, value.Int(0))
	a.PutIndex(50000, value.Int(1))

	assert.Equal(t, []string{"0", "2", "50000", "70000", "b", "a"}, a.OwnPropertyNames())
}

func TestInstanceSortAndMark(t *testing.T) {
	a := array.NewInstance(mapped.NewMappedArray())
	for i, n := range []int{10, 9, 1} {
		a.PutIndex(uint32(i), value.Int(n))
	}
	require.NoError(t, a.Put("label", value.String("x")))

	require.NoError(t, a.Sort())
	assert.True(t, value.Same(value.Int(1), a.GetIndex(0)))
	assert.True(t, value.Same(value.Int(10), a.GetIndex(1)))
	assert.True(t, value.Same(value.Int(9), a.GetIndex(2)))

	require.NoError(t, a.SortFunc(array.NumericComparator))
	assert.True(t, value.Same(value.Int(9), a.GetIndex(1)))

	var visited int
	a.Mark(func(value.Value) { visited++ })
	assert.Equal(t, 4, visited)
}
