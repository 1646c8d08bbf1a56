package testing

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/value"
)

// RunArrayBenchmarks runs all benchmarks for an IndexedArray implementation
func RunArrayBenchmarks(b *testing.B, name string, factory array.Factory) {
	b.Run(name, func(b *testing.B) {
		b.Run("PutAppend", func(b *testing.B) {
			benchmarkPutAppend(b, factory())
		})

		b.Run("PutSparse", func(b *testing.B) {
			benchmarkPutSparse(b, factory())
		})

		b.Run("PutFillFromCutoff", func(b *testing.B) {
			benchmarkPutFillFromCutoff(b, factory)
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory())
		})

		b.Run("Sort", func(b *testing.B) {
			benchmarkSort(b, factory)
		})

		b.Run("SortFunc", func(b *testing.B) {
			benchmarkSortFunc(b, factory)
		})

		b.Run("SaveLoad", func(b *testing.B) {
			benchmarkSaveLoad(b, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for appending at the end of the array
func benchmarkPutAppend(b *testing.B, arr array.IndexedArray) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		arr.Put(arr.Length(), value.Int(i))
	}
}

// Benchmark for writes at random high indices
func benchmarkPutSparse(b *testing.B, arr array.IndexedArray) {
	rng := rand.New(rand.NewSource(1))
	indices := make([]uint32, 4096)
	for i := range indices {
		indices[i] = uint32(rng.Int63n(int64(array.MaxArrayIndex)))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		arr.Put(indices[i%len(indices)], value.Int(i))
	}
}

// Benchmark for filling a fresh array upwards from the sparse cutoff, which
// exercises the promotion from sparse map to vector
func benchmarkPutFillFromCutoff(b *testing.B, factory array.Factory) {
	const count = 20000

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		arr := factory()
		for j := uint32(0); j < count; j++ {
			arr.Put(array.SparseArrayCutoff+j, value.Int(int(j)))
		}
	}
}

// Benchmark for reads of dense and sparse entries
func benchmarkGet(b *testing.B, arr array.IndexedArray) {
	for i := 0; i < 1000; i++ {
		arr.Put(uint32(i), value.Int(i))
		arr.Put(uint32(i)*100003+20000, value.Int(i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if i%2 == 0 {
			arr.Get(uint32(i % 1000))
		} else {
			arr.Get(uint32(i%1000)*100003 + 20000)
		}
	}
}

func randomArray(factory array.Factory, n int) array.IndexedArray {
	rng := rand.New(rand.NewSource(2))
	arr := factory()
	for i := 0; i < n; i++ {
		arr.Put(uint32(i), value.Int(rng.Intn(n)))
	}
	return arr
}

// Benchmark for the default string order sort
func benchmarkSort(b *testing.B, factory array.Factory) {
	requireFeature(b, factory(), array.FeatureSort)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		arr := randomArray(factory, 5000)
		b.StartTimer()
		if err := arr.Sort(); err != nil {
			b.Fatalf("Sort returned error: %v", err)
		}
	}
}

// Benchmark for a numeric comparator sort above the merge sort cutoff
func benchmarkSortFunc(b *testing.B, factory array.Factory) {
	requireFeature(b, factory(), array.FeatureSortFunc)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		arr := randomArray(factory, 20000)
		b.StartTimer()
		if err := arr.SortFunc(array.NumericComparator); err != nil {
			b.Fatalf("SortFunc returned error: %v", err)
		}
	}
}

// Benchmark for a save followed by a load of a mixed dense and sparse array
func benchmarkSaveLoad(b *testing.B, factory array.Factory) {
	requireFeature(b, factory(), array.FeaturePersistence)

	arr := randomArray(factory, 10000)
	for i := 0; i < 1000; i++ {
		arr.Put(uint32(i)*7919+50000, value.String("sparse"))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		if err := arr.Save(&buf); err != nil {
			b.Fatalf("Save returned error: %v", err)
		}
		if err := factory().Load(&buf); err != nil {
			b.Fatalf("Load returned error: %v", err)
		}
	}
}
