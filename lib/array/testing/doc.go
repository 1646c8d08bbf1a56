// Package testing provides standardised tests and benchmarks for engines
// that satisfy the array.IndexedArray interface.
//
// The package contains:
//   - testing: A conformance suite covering index access, holes, deletion,
//     truncation, the MaxArrayIndex boundary, both sort entry points and their
//     undefined placement, GC marking, persistence and a randomized comparison
//     against a plain map
//   - benchmark: Performance tests for appends, sparse writes, promotion from
//     the sparse map, reads, sorting and persistence
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func() array.IndexedArray {
//		return NewMyArray()
//	}
//
//	// Running the standard test suite
//	arraytesting.RunArrayTests(t, "MyArray", factory)
//
//	// Running performance benchmarks
//	arraytesting.RunArrayBenchmarks(b, "MyArray", factory)
package testing
