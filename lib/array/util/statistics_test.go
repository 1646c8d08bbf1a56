package util

import (
	"math"
	"testing"
)

func TestNewStats(t *testing.T) {
	stats := NewStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	if stats.Mean != 5 {
		t.Errorf("Expected mean 5, got %f", stats.Mean)
	}
	if stats.StdDeviation != 2 {
		t.Errorf("Expected standard deviation 2, got %f", stats.StdDeviation)
	}
	if stats.Min != 2 || stats.Max != 9 {
		t.Errorf("Expected min/max 2/9, got %f/%f", stats.Min, stats.Max)
	}

	if empty := NewStats(nil); empty != (Stats{}) {
		t.Errorf("Expected zero stats for empty input, got %+v", empty)
	}
}

func TestIndexHistogram(t *testing.T) {
	var h IndexHistogram
	for _, index := range []uint32{0, 3, 4, 15, 16, 10000, 0xFFFFFFFE} {
		h.Add(index)
	}

	if h.Count() != 7 {
		t.Errorf("Expected 7 samples, got %d", h.Count())
	}
	if h.Max() != 0xFFFFFFFE {
		t.Errorf("Expected max 0xFFFFFFFE, got %d", h.Max())
	}

	bounds, shares := h.Buckets()
	if len(bounds) != IndexHistogramBuckets || len(shares) != IndexHistogramBuckets {
		t.Fatalf("Expected %d buckets", IndexHistogramBuckets)
	}
	if bounds[1] != 4 || bounds[2] != 16 {
		t.Errorf("Unexpected bucket bounds %v", bounds[:3])
	}

	// 0 and 3 in bucket 0, 4 and 15 in bucket 1, 16 in bucket 2,
	// 10000 in bucket 6, 0xFFFFFFFE in the last bucket
	want := map[int]float64{0: 2, 1: 2, 2: 1, 6: 1, IndexHistogramBuckets - 1: 1}
	for i, share := range shares {
		expected := want[i] * 100 / 7
		if math.Abs(share-expected) > 1e-9 {
			t.Errorf("Bucket %d: expected %.2f%%, got %.2f%%", i, expected, share)
		}
	}

	if q := h.Distribution().DistributionQuality; q <= 0 || q > 1 {
		t.Errorf("Distribution quality out of range: %f", q)
	}
}
