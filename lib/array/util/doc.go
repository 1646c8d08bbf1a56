// Package util provides helpers shared by the engines implementing
// array.IndexedArray.
//
// The package contains:
//   - sort: merge sort and quicksort for comparators that may fail or may not
//     describe a total order, selected by input size through SortFunc
//   - statistics: Stats and DistributionStats plus an IndexHistogram that
//     buckets stored indices on a logarithmic scale for GetInfo reports
//   - snapshot: the length prefixed (index, value) stream engines use for
//     Save and Load
package util
