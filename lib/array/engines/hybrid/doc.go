// Package hybrid implements array.IndexedArray with a dense vector for low
// and densely used indices and a sparse map for everything else.
//
// Key Components:
//
//   - hybridImpl: The engine. It keeps the logical length, the vector (holes
//     are empty values), the optional sparse map and the number of occupied
//     vector slots. An index lives in exactly one of the two regions.
//
//   - Growth Policy: Indices below array.SparseArrayCutoff are always stored in
//     the vector, which grows to array.IncreasedVectorLength(index+1). Higher
//     indices go to the sparse map unless at least 1/8 of the resulting vector
//     would be occupied. When the vector grows while the map holds entries, the
//     engine simulates how many entries the larger vector would absorb and keeps
//     extending it as long as the density stays above the threshold. Absorbed
//     entries are moved out of the map.
//
//   - Sorting: Both sort entry points copy the defined values into a snapshot,
//     sort it with util.SortFunc (merge sort up to util.MergeSortCutoff values,
//     quicksort above) and only then rewrite the storage: defined values first,
//     explicit undefined values next, the sparse map destroyed. A failing
//     comparator leaves the array untouched.
//
//   - Persistence: Save and Load use a binary snapshot with magic number and
//     version header. Loading replays the values through Put.
//
//   - Diagnostics: Inspect and the metadata of GetInfo expose the vector length,
//     the number of values in the vector and the sparse map size.
//
// Thread-safety: The engine is single threaded. Concurrent access must be
// serialized by the caller, e.g. by the store registry.
package hybrid
