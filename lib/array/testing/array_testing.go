package testing

import (
	"bytes"
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/value"
)

// RunArrayTests runs the conformance test suite for an IndexedArray implementation.
func RunArrayTests(t *testing.T, name string, factory array.Factory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, factory())
		})

		t.Run("Holes", func(t *testing.T) {
			testHoles(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("SetLength", func(t *testing.T) {
			testSetLength(t, factory())
		})

		t.Run("MaxArrayIndex", func(t *testing.T) {
			testMaxArrayIndex(t, factory())
		})

		t.Run("EnumerateIndices", func(t *testing.T) {
			testEnumerateIndices(t, factory())
		})

		t.Run("StringSort", func(t *testing.T) {
			testStringSort(t, factory())
		})

		t.Run("SortUndefinedPlacement", func(t *testing.T) {
			testSortUndefinedPlacement(t, factory())
		})

		t.Run("ComparatorSort", func(t *testing.T) {
			testComparatorSort(t, factory())
		})

		t.Run("SortAbsorbsSparse", func(t *testing.T) {
			testSortAbsorbsSparse(t, factory())
		})

		t.Run("SortError", func(t *testing.T) {
			testSortError(t, factory())
		})

		t.Run("SortConvertsPerComparison", func(t *testing.T) {
			testSortConvertsPerComparison(t, factory())
		})

		t.Run("CompactForSorting", func(t *testing.T) {
			testCompactForSorting(t, factory())
		})

		t.Run("Mark", func(t *testing.T) {
			testMark(t, factory())
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory)
		})

		t.Run("RandomizedModel", func(t *testing.T) {
			testRandomizedModel(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the engine supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, arr array.IndexedArray, feature array.Feature) {
	if !arr.SupportsFeature(feature) {
		t.Skip()
	}
}

// expectValue fails the test if the value at index is not the same as want
func expectValue(t testing.TB, arr array.IndexedArray, index uint32, want value.Value) {
	t.Helper()
	got, ok := arr.Get(index)
	if !ok {
		t.Errorf("Expected index %d to be handled as an array index", index)
		return
	}
	if !value.Same(got, want) {
		t.Errorf("Expected %s at index %d, got %s", want, index, got)
	}
}

// expectValues checks the values at indices 0..len(want)-1
func expectValues(t testing.TB, arr array.IndexedArray, want ...value.Value) {
	t.Helper()
	for i, v := range want {
		expectValue(t, arr, uint32(i), v)
	}
}

func expectLength(t testing.TB, arr array.IndexedArray, want uint32) {
	t.Helper()
	if got := arr.Length(); got != want {
		t.Errorf("Expected length %d, got %d", want, got)
	}
}

func stringValues(values ...string) []value.Value {
	out := make([]value.Value, len(values))
	for i, s := range values {
		out[i] = value.String(s)
	}
	return out
}

func fill(arr array.IndexedArray, values ...value.Value) {
	for i, v := range values {
		arr.Put(uint32(i), v)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testPutGet(t *testing.T, arr array.IndexedArray) {
	indices := []uint32{0, 1, 7, 9999, 10000, 10001, 65536, 1 << 20, 1<<31 + 5}
	for _, index := range indices {
		if !arr.Put(index, value.Int(int(index))) {
			t.Fatalf("Put(%d) was not handled as an array index", index)
		}
	}
	for _, index := range indices {
		expectValue(t, arr, index, value.Int(int(index)))
		if !arr.Has(index) {
			t.Errorf("Expected Has(%d) to be true", index)
		}
	}
	expectLength(t, arr, 1<<31+6)

	// overwrite keeps the length
	arr.Put(10000, value.String("overwritten"))
	expectValue(t, arr, 10000, value.String("overwritten"))
	expectLength(t, arr, 1<<31+6)

	// explicit undefined is stored
	arr.Put(3, value.Undefined)
	if !arr.Has(3) {
		t.Errorf("Expected explicit undefined at index 3 to be stored")
	}
}

func testHoles(t *testing.T, arr array.IndexedArray) {
	arr.Put(10, value.True)

	for _, index := range []uint32{0, 5, 9, 11, 20000} {
		expectValue(t, arr, index, value.Undefined)
		if arr.Has(index) {
			t.Errorf("Expected Has(%d) to be false for a hole", index)
		}
	}
	expectLength(t, arr, 11)

	// storing the empty value deletes
	arr.Put(10, value.Empty)
	if arr.Has(10) {
		t.Errorf("Expected Put of the empty value to delete index 10")
	}
}

func testDelete(t *testing.T, arr array.IndexedArray) {
	v, v2 := value.String("v"), value.String("v2")

	arr.Put(5, v)
	arr.Put(0, v2)

	if !arr.Delete(0) {
		t.Errorf("Expected Delete(0) to report an existing value")
	}
	expectValue(t, arr, 0, value.Undefined)
	expectValue(t, arr, 5, v)
	expectLength(t, arr, 6)

	if arr.Delete(0) {
		t.Errorf("Expected second Delete(0) to report no value")
	}
	if arr.Delete(3) {
		t.Errorf("Expected Delete of a hole to report no value")
	}

	// sparse entries
	arr.Put(500000, v)
	if !arr.Delete(500000) {
		t.Errorf("Expected Delete(500000) to report an existing value")
	}
	expectValue(t, arr, 500000, value.Undefined)
	expectLength(t, arr, 500001)
}

func testSetLength(t *testing.T, arr array.IndexedArray) {
	v := value.String("v")

	arr.Put(3, value.Int(3))
	arr.Put(100, v)
	arr.Put(50000, v)
	expectLength(t, arr, 50001)

	arr.SetLength(5)
	expectLength(t, arr, 5)
	expectValue(t, arr, 50, value.Undefined)
	expectValue(t, arr, 100, value.Undefined)
	expectValue(t, arr, 50000, value.Undefined)
	expectValue(t, arr, 3, value.Int(3))
	if got := arr.EnumerateIndices(); len(got) != 1 || got[0] != 3 {
		t.Errorf("Expected only index 3 after truncation, got %v", got)
	}

	// growing only raises the ceiling
	arr.SetLength(1000)
	expectLength(t, arr, 1000)
	expectValue(t, arr, 100, value.Undefined)
	expectValue(t, arr, 3, value.Int(3))

	// putting below the length keeps it
	arr.Put(10, v)
	expectLength(t, arr, 1000)

	arr.SetLength(0)
	expectLength(t, arr, 0)
	if got := arr.EnumerateIndices(); len(got) != 0 {
		t.Errorf("Expected no indices after SetLength(0), got %v", got)
	}
}

func testMaxArrayIndex(t *testing.T, arr array.IndexedArray) {
	v := value.String("last")

	if !arr.Put(array.MaxArrayIndex, v) {
		t.Fatalf("Expected Put(MaxArrayIndex) to be handled")
	}
	expectValue(t, arr, array.MaxArrayIndex, v)
	expectLength(t, arr, 0xFFFFFFFF)

	if arr.Put(0xFFFFFFFF, v) {
		t.Errorf("Expected Put(0xFFFFFFFF) to be rejected")
	}
	if _, ok := arr.Get(0xFFFFFFFF); ok {
		t.Errorf("Expected Get(0xFFFFFFFF) to be rejected")
	}
	if arr.Has(0xFFFFFFFF) {
		t.Errorf("Expected Has(0xFFFFFFFF) to be false")
	}
	if arr.Delete(0xFFFFFFFF) {
		t.Errorf("Expected Delete(0xFFFFFFFF) to report no value")
	}
	expectLength(t, arr, 0xFFFFFFFF)
	if got := arr.EnumerateIndices(); len(got) != 1 || got[0] != array.MaxArrayIndex {
		t.Errorf("Expected only MaxArrayIndex to be stored, got %v", got)
	}
}

func testEnumerateIndices(t *testing.T, arr array.IndexedArray) {
	want := []uint32{0, 2, 4, 9999, 10000, 123456, 7000000}
	for i := len(want) - 1; i >= 0; i-- {
		arr.Put(want[i], value.Int(i))
	}

	got := arr.EnumerateIndices()
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	if len(got) != len(want) {
		t.Fatalf("Expected %d indices, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected index %d at position %d, got %d", want[i], i, got[i])
		}
	}
}

func testStringSort(t *testing.T, arr array.IndexedArray) {
	requireFeature(t, arr, array.FeatureSort)

	fill(arr, value.Int(10), value.Int(2), value.Int(1))
	if err := arr.Sort(); err != nil {
		t.Fatalf("Sort returned error: %v", err)
	}
	expectValues(t, arr, value.Int(1), value.Int(10), value.Int(2))
	expectLength(t, arr, 3)
}

func testSortUndefinedPlacement(t *testing.T, arr array.IndexedArray) {
	requireFeature(t, arr, array.FeatureSort)

	arr.Put(0, value.String("b"))
	arr.Put(2, value.String("a"))
	arr.SetLength(5)

	if err := arr.Sort(); err != nil {
		t.Fatalf("Sort returned error: %v", err)
	}
	expectValues(t, arr, value.String("a"), value.String("b"), value.Undefined, value.Undefined, value.Undefined)
	expectLength(t, arr, 5)

	// explicit undefined values move behind the defined ones, holes behind those
	arr.SetLength(0)
	arr.Put(0, value.Undefined)
	arr.Put(1, value.String("z"))
	arr.Put(3, value.Null)
	arr.SetLength(6)
	if err := arr.Sort(); err != nil {
		t.Fatalf("Sort returned error: %v", err)
	}
	expectValues(t, arr, value.Null, value.String("z"), value.Undefined)
	if !arr.Has(2) {
		t.Errorf("Expected explicit undefined to be stored at index 2")
	}
	if arr.Has(3) || arr.Has(4) || arr.Has(5) {
		t.Errorf("Expected holes after the undefined run, got %v", arr.EnumerateIndices())
	}
}

func testComparatorSort(t *testing.T, arr array.IndexedArray) {
	requireFeature(t, arr, array.FeatureSortFunc)

	fill(arr, value.Int(3), value.Int(1), value.Int(2))
	err := arr.SortFunc(func(a, b value.Value) (int, error) {
		return int(value.ToNumber(b) - value.ToNumber(a)), nil
	})
	if err != nil {
		t.Fatalf("SortFunc returned error: %v", err)
	}
	expectValues(t, arr, value.Int(3), value.Int(2), value.Int(1))

	if err := array.SortBy(arr, array.SortNumeric); err != nil {
		t.Fatalf("SortBy returned error: %v", err)
	}
	expectValues(t, arr, value.Int(1), value.Int(2), value.Int(3))
}

func testSortAbsorbsSparse(t *testing.T, arr array.IndexedArray) {
	requireFeature(t, arr, array.FeatureSort)

	arr.Put(0, value.String("c"))
	arr.Put(50000, value.String("a"))
	arr.Put(100000, value.Undefined)
	arr.Put(3000000, value.String("b"))

	if err := arr.Sort(); err != nil {
		t.Fatalf("Sort returned error: %v", err)
	}
	expectValues(t, arr, value.String("a"), value.String("b"), value.String("c"), value.Undefined)
	expectLength(t, arr, 3000001)

	got := arr.EnumerateIndices()
	if len(got) != 4 {
		t.Errorf("Expected indices 0..3 after sort, got %v", got)
	}
	for _, index := range []uint32{50000, 100000, 3000000} {
		if arr.Has(index) {
			t.Errorf("Expected index %d to be empty after sort", index)
		}
	}
}

func testSortError(t *testing.T, arr array.IndexedArray) {
	requireFeature(t, arr, array.FeatureSortFunc)

	values := stringValues("d", "b", "a", "c")
	fill(arr, values...)
	arr.Put(20000, value.String("sparse"))

	boom := errors.New("comparator failed")
	calls := 0
	err := arr.SortFunc(func(a, b value.Value) (int, error) {
		calls++
		if calls == 3 {
			return 0, boom
		}
		return array.StringComparator(a, b)
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected comparator error, got %v", err)
	}

	// the array is unchanged
	expectValues(t, arr, values...)
	expectValue(t, arr, 20000, value.String("sparse"))
	expectLength(t, arr, 20001)

	// a failing string conversion aborts the default sort too
	h := value.NewHeap()
	obj := h.NewObject("Object")
	obj.ToStringFunc = func() (string, error) { return "", boom }
	arr.Put(1, value.FromObject(obj))
	if err := arr.Sort(); !errors.Is(err, boom) {
		t.Errorf("Expected conversion error from Sort, got %v", err)
	}
	expectValue(t, arr, 0, value.String("d"))
}

func testSortConvertsPerComparison(t *testing.T, arr array.IndexedArray) {
	requireFeature(t, arr, array.FeatureSort)

	h := value.NewHeap()
	conversions := 0
	object := func(s string) value.Value {
		obj := h.NewObject("Object")
		obj.ToStringFunc = func() (string, error) {
			conversions++
			return s, nil
		}
		return value.FromObject(obj)
	}

	e, d, c, b, a := object("e"), object("d"), object("c"), object("b"), object("a")
	fill(arr, e, d, c, b, a)
	if err := arr.Sort(); err != nil {
		t.Fatalf("Sort returned error: %v", err)
	}
	expectValues(t, arr, a, b, c, d, e)

	// both operands are converted again for every comparison, sorting five
	// values takes at least four
	if conversions < 2*4 {
		t.Errorf("Expected at least 8 string conversions, got %d", conversions)
	}
	if conversions%2 != 0 {
		t.Errorf("Expected two conversions per comparison, got %d in total", conversions)
	}
}

func testCompactForSorting(t *testing.T, arr array.IndexedArray) {
	requireFeature(t, arr, array.FeatureCompaction)

	arr.Put(1, value.String("x"))
	arr.Put(3, value.Undefined)
	arr.Put(4, value.String("y"))
	arr.Put(40000, value.String("z"))

	if k := arr.CompactForSorting(); k != 3 {
		t.Errorf("Expected 3 defined values, got %d", k)
	}
	expectValues(t, arr, value.String("x"), value.String("y"), value.String("z"), value.Undefined)
	if arr.Has(4) || arr.Has(40000) {
		t.Errorf("Expected nothing stored beyond index 3, got %v", arr.EnumerateIndices())
	}
	expectLength(t, arr, 40001)
}

func testMark(t *testing.T, arr array.IndexedArray) {
	requireFeature(t, arr, array.FeatureMark)

	h := value.NewHeap()
	objects := make([]*value.Object, 4)
	for i := range objects {
		objects[i] = h.NewObject("Object")
	}
	arr.Put(0, value.FromObject(objects[0]))
	arr.Put(2, value.FromObject(objects[1]))
	arr.Put(70000, value.FromObject(objects[2]))
	arr.Put(8, value.String("primitive"))
	arr.Put(9, value.FromObject(objects[3]))
	arr.Delete(9)

	pass := func() map[*value.Object]int {
		visited := make(map[*value.Object]int)
		arr.Mark(func(v value.Value) {
			if o := v.Object(); o != nil {
				visited[o]++
			}
		})
		return visited
	}

	first, second := pass(), pass()
	if len(first) != 3 {
		t.Errorf("Expected 3 visited objects, got %d", len(first))
	}
	for o, n := range first {
		if n != 1 {
			t.Errorf("Expected every object to be visited once, got %d visits", n)
		}
		if second[o] != n {
			t.Errorf("Expected both mark passes to visit the same objects")
		}
	}
	if len(second) != len(first) {
		t.Errorf("Expected both mark passes to visit the same objects")
	}

	// collection frees exactly the deleted object
	if freed := h.Collect(arr); freed != 1 {
		t.Errorf("Expected 1 freed object, got %d", freed)
	}
	if objects[3].Marked() {
		t.Errorf("Expected deleted object to stay unmarked")
	}

	// truncated values are no longer reachable
	arr.SetLength(1)
	if freed := h.Collect(arr); freed != 2 {
		t.Errorf("Expected 2 freed objects after truncation, got %d", freed)
	}
}

func testSaveLoad(t *testing.T, factory array.Factory) {
	arr := factory()
	requireFeature(t, arr, array.FeaturePersistence)

	arr.Put(0, value.String("a"))
	arr.Put(1, value.Int(42))
	arr.Put(2, value.Undefined)
	arr.Put(4, value.Null)
	arr.Put(30000, value.True)
	arr.SetLength(40000)

	var buf bytes.Buffer
	if err := arr.Save(&buf); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded := factory()
	loaded.Put(7, value.String("stale"))
	if err := loaded.Load(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	expectLength(t, loaded, 40000)
	expectValues(t, loaded, value.String("a"), value.Int(42), value.Undefined, value.Undefined, value.Null)
	expectValue(t, loaded, 30000, value.True)
	if !loaded.Has(2) || loaded.Has(3) || loaded.Has(7) {
		t.Errorf("Expected stored indices to survive unchanged, got %v", loaded.EnumerateIndices())
	}

	// corrupt input leaves the array untouched
	if err := loaded.Load(bytes.NewReader([]byte("garbage!"))); err == nil {
		t.Errorf("Expected Load of garbage to fail")
	}
	expectLength(t, loaded, 40000)

	// objects can not be persisted
	h := value.NewHeap()
	arr.Put(5, value.FromObject(h.NewObject("Object")))
	if err := arr.Save(&bytes.Buffer{}); !errors.Is(err, value.ErrNotSerializable) {
		t.Errorf("Expected ErrNotSerializable, got %v", err)
	}
}

// testRandomizedModel compares the engine with a plain map under random operations
func testRandomizedModel(t *testing.T, arr array.IndexedArray) {
	rng := rand.New(rand.NewSource(42))
	model := make(map[uint32]value.Value)
	var length uint32

	randomIndex := func() uint32 {
		switch rng.Intn(4) {
		case 0:
			return uint32(rng.Intn(100))
		case 1:
			return uint32(9990 + rng.Intn(40))
		case 2:
			return uint32(10000 + rng.Intn(3000))
		default:
			return uint32(rng.Intn(1 << 24))
		}
	}

	for step := 0; step < 20000; step++ {
		switch op := rng.Intn(20); {
		case op < 14:
			index, v := randomIndex(), value.Int(step)
			arr.Put(index, v)
			model[index] = v
			if index >= length {
				length = index + 1
			}
		case op < 18:
			index := randomIndex()
			_, existed := model[index]
			if got := arr.Delete(index); got != existed {
				t.Fatalf("step %d: Delete(%d) = %v, model says %v", step, index, got, existed)
			}
			delete(model, index)
		default:
			newLength := uint32(rng.Intn(int(length) + 1))
			arr.SetLength(newLength)
			for k := range model {
				if k >= newLength {
					delete(model, k)
				}
			}
			length = newLength
		}

		if arr.Length() != length {
			t.Fatalf("step %d: length %d, model says %d", step, arr.Length(), length)
		}
	}

	for index, want := range model {
		expectValue(t, arr, index, want)
	}
	if got := arr.EnumerateIndices(); len(got) != len(model) {
		t.Errorf("Expected %d stored indices, got %d", len(model), len(got))
	}
}
