package mapped

import (
	"testing"

	"github.com/ValentinKolb/dArr/lib/array"
	arraytesting "github.com/ValentinKolb/dArr/lib/array/testing"
)

func Test(t *testing.T) {
	arraytesting.RunArrayTests(t, "MappedArray", NewMappedArray)
}

func Benchmark(b *testing.B) {
	arraytesting.RunArrayBenchmarks(b, "MappedArray", func() array.IndexedArray {
		return NewMappedArray()
	})
}
