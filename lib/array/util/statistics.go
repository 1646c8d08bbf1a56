package util

import (
	"math"
	"math/bits"
)

// ----------------------------------------------------------------------------
// Helper functions
// ----------------------------------------------------------------------------

type Stats struct {
	StdDeviation float64 `json:"std_deviation"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	MinMaxRatio  float64 `json:"min_max_ratio"`
}

// NewStats computes mean, standard deviation, minimum and maximum of values
func NewStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	lo, hi := values[0], values[0]
	var sum float64
	for _, v := range values {
		sum += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	mean := sum / float64(len(values))

	var squared float64
	for _, v := range values {
		squared += (v - mean) * (v - mean)
	}

	ratio := 1.0
	if hi > 0 {
		ratio = lo / hi
	}

	return Stats{
		StdDeviation: math.Sqrt(squared / float64(len(values))), // population formula
		Min:          lo,
		Max:          hi,
		Mean:         mean,
		MinMaxRatio:  ratio,
	}
}

type DistributionStats struct {
	Stats
	DistributionQuality float64 `json:"distribution_quality"`
}

// NewDistributionStats rates how evenly values are spread over buckets.
// Quality is 1 for a perfectly even spread and approaches 0 for a skewed one.
func NewDistributionStats(bucketSizes []float64) DistributionStats {
	stats := NewStats(bucketSizes)

	var cv float64 // coefficient of variation
	if stats.Mean > 0 {
		cv = stats.StdDeviation / stats.Mean
	}

	return DistributionStats{
		Stats:               stats,
		DistributionQuality: (1.0-math.Min(1.0, cv))*0.5 + stats.MinMaxRatio*0.5,
	}
}

// ----------------------------------------------------------------------------
// IndexHistogram
// ----------------------------------------------------------------------------

// IndexHistogramBuckets is the number of buckets of an IndexHistogram
const IndexHistogramBuckets = 16

// IndexHistogram counts array indices in exponentially growing ranges.
// Bucket 0 holds [0, 4) and bucket i > 0 holds [4^i, 4^(i+1)), so the last
// bucket covers everything from 4^15 on.
//
// Thread-safety: IndexHistogram is not safe for concurrent use
type IndexHistogram struct {
	buckets [IndexHistogramBuckets]int64
	count   int64
	max     uint32
}

// bucketOf returns the bucket of index: floor(log4(index)), capped
func bucketOf(index uint32) int {
	if index == 0 {
		return 0
	}
	b := (bits.Len32(index) - 1) / 2
	if b >= IndexHistogramBuckets {
		return IndexHistogramBuckets - 1
	}
	return b
}

// Add counts one stored index
func (h *IndexHistogram) Add(index uint32) {
	h.buckets[bucketOf(index)]++
	h.count++
	if index > h.max {
		h.max = index
	}
}

// Count returns the number of indices added
func (h *IndexHistogram) Count() int64 {
	return h.count
}

// Max returns the highest index added
func (h *IndexHistogram) Max() uint32 {
	return h.max
}

// Buckets returns the lower bound of every bucket together with the share of
// indices in percent that fell into it
func (h *IndexHistogram) Buckets() ([]uint64, []float64) {
	bounds := make([]uint64, IndexHistogramBuckets)
	shares := make([]float64, IndexHistogramBuckets)
	for i := range bounds {
		if i > 0 {
			bounds[i] = 1 << (2 * i)
		}
		if h.count > 0 {
			shares[i] = float64(h.buckets[i]) * 100.0 / float64(h.count)
		}
	}
	return bounds, shares
}

// Distribution rates how evenly the occupied buckets are filled
func (h *IndexHistogram) Distribution() DistributionStats {
	var sizes []float64
	for _, c := range h.buckets {
		if c > 0 {
			sizes = append(sizes, float64(c))
		}
	}
	return NewDistributionStats(sizes)
}
