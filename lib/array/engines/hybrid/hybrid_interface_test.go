package hybrid

import (
	"testing"

	"github.com/ValentinKolb/dArr/lib/array"
	arraytesting "github.com/ValentinKolb/dArr/lib/array/testing"
)

func Test(t *testing.T) {
	arraytesting.RunArrayTests(t, "HybridArray", func() array.IndexedArray {
		return NewHybridArray(nil)
	})
}

func Benchmark(b *testing.B) {
	arraytesting.RunArrayBenchmarks(b, "HybridArray", func() array.IndexedArray {
		return NewHybridArray(nil)
	})
}
