package hybrid

import (
	"unsafe"

	"github.com/RoaringBitmap/roaring"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/array/util"
	"github.com/ValentinKolb/dArr/lib/value"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	magicNum      = "DARRHYB\x00" // File format identifier
	hybridVersion = 1             // Snapshot version

	slotSize = int(unsafe.Sizeof(value.Value{})) // Bytes per vector slot
)

// --------------------------------------------------------------------------
// Core Hybrid array structure
// --------------------------------------------------------------------------

// hybridImpl stores low and densely used indices in a vector and the rest in
// a sparse map. An index is never stored in both.
type hybridImpl struct {
	length         uint32                 // Logical array length
	vector         []value.Value          // Dense slots, value.Empty marks a hole
	sparse         map[uint32]value.Value // Sparse entries, nil until first needed
	sparseKeys     *roaring.Bitmap        // Keys of sparse, ordered, nil with sparse
	valuesInVector uint32                 // Number of occupied vector slots

	reportCost func(bytes int)
}

// Options configures the hybrid engine during initialization
type Options struct {
	// ReportExtraMemoryCost receives the vector size in bytes at construction
	// and the number of added bytes on every growth (nil = not reported)
	ReportExtraMemoryCost func(bytes int)
}

// DefaultOptions returns the default hybrid options
func DefaultOptions() *Options {
	return &Options{}
}

// Diagnostics exposes the storage layout of a hybrid array. GetInfo embeds
// it in the metadata of the returned array.ArrayInfo.
type Diagnostics struct {
	Length         uint32  `json:"length"`
	VectorLength   uint32  `json:"vector_length"`
	ValuesInVector uint32  `json:"values_in_vector"`
	HasSparseMap   bool    `json:"has_sparse_map"`
	SparseSize     int     `json:"sparse_size"`
	VectorDensity  float64 `json:"vector_density"`
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewHybridArray creates an empty array with the specified options (optional)
func NewHybridArray(opts *Options) array.IndexedArray {
	return newHybrid(opts)
}

// NewHybridArrayFromValues creates an array holding values at the indices
// 0..len(values)-1. The vector is sized to the list exactly and no sparse map
// is allocated. Empty values become holes.
func NewHybridArrayFromValues(values []value.Value, opts *Options) array.IndexedArray {
	if uint64(len(values)) > uint64(array.MaxArrayIndex)+1 {
		panic("hybrid: initial list exceeds the maximum array length")
	}
	h := newHybrid(opts)
	h.vector = make([]value.Value, len(values))
	copy(h.vector, values)
	h.length = uint32(len(values))
	for _, v := range values {
		if !v.IsEmpty() {
			h.valuesInVector++
		}
	}
	h.report(len(values) * slotSize)
	return h
}

func newHybrid(opts *Options) *hybridImpl {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &hybridImpl{reportCost: opts.ReportExtraMemoryCost}
}

// Inspect returns the storage layout of arr if it is a hybrid array
func Inspect(arr array.IndexedArray) (Diagnostics, bool) {
	h, ok := arr.(*hybridImpl)
	if !ok {
		return Diagnostics{}, false
	}
	return h.diagnostics(), true
}

func (h *hybridImpl) report(bytes int) {
	if h.reportCost != nil && bytes > 0 {
		h.reportCost(bytes)
	}
}

// --------------------------------------------------------------------------
// IndexedArray Interface Implementation - Index Operations
// --------------------------------------------------------------------------

// Get returns the value at index, value.Undefined for holes
func (h *hybridImpl) Get(index uint32) (value.Value, bool) {
	if index > array.MaxArrayIndex {
		return value.Undefined, false
	}
	if index < uint32(len(h.vector)) {
		if v := h.vector[index]; !v.IsEmpty() {
			return v, true
		}
		return value.Undefined, true
	}
	if v, ok := h.sparse[index]; ok {
		return v, true
	}
	return value.Undefined, true
}

// Has reports whether a value is stored at index
func (h *hybridImpl) Has(index uint32) bool {
	if index > array.MaxArrayIndex {
		return false
	}
	if index < uint32(len(h.vector)) {
		return !h.vector[index].IsEmpty()
	}
	_, ok := h.sparse[index]
	return ok
}

// Put stores v at index, deciding between vector and sparse map
func (h *hybridImpl) Put(index uint32, v value.Value) bool {
	if index > array.MaxArrayIndex {
		return false
	}
	if index >= h.length {
		h.length = index + 1
	}
	if v.IsEmpty() {
		h.Delete(index)
		return true
	}

	// fast path, slot already allocated
	if index < uint32(len(h.vector)) {
		if h.vector[index].IsEmpty() {
			h.valuesInVector++
		}
		h.vector[index] = v
		return true
	}

	// high indices go to the sparse map unless the array is dense enough to
	// make a vector up to index worthwhile. Counting all sparse entries
	// overestimates, putPromoting checks the exact number.
	if index >= array.SparseArrayCutoff {
		stored := uint64(h.valuesInVector) + uint64(len(h.sparse)) + 1
		if !array.IsDenseEnoughForVector(uint64(index)+1, stored) {
			h.putSparse(index, v)
			return true
		}
	}

	// without sparse entries the vector can simply grow
	if len(h.sparse) == 0 {
		h.growVector(array.IncreasedVectorLength(uint64(index) + 1))
		h.vector[index] = v
		h.valuesInVector++
		return true
	}

	h.putPromoting(index, v)
	return true
}

// putSparse stores v in the sparse map, creating it on first use
func (h *hybridImpl) putSparse(index uint32, v value.Value) {
	if h.sparse == nil {
		h.sparse = make(map[uint32]value.Value)
		h.sparseKeys = roaring.New()
		// the vector must never be empty while a sparse map exists
		if len(h.vector) == 0 {
			h.growVector(1)
		}
	}
	h.sparse[index] = v
	h.sparseKeys.Add(index)
}

// dropSparse releases the sparse map and its key index
func (h *hybridImpl) dropSparse() {
	h.sparse = nil
	h.sparseKeys = nil
}

// putPromoting grows the vector past index and moves the sparse entries the
// new vector covers out of the map. The vector is extended further as long
// as the absorbed entries keep it dense enough. For an index at or above
// the cutoff the value goes to the sparse map instead if even the first
// candidate length would be too sparse.
func (h *hybridImpl) putPromoting(index uint32, v value.Value) {
	oldLength := uint64(len(h.vector))
	i := uint64(index)

	newLength := array.IncreasedVectorLength(i + 1)
	newValues := uint64(h.valuesInVector) + 1 + h.countSparse(absorbStart(oldLength), newLength)
	if _, ok := h.sparse[index]; ok {
		newValues-- // replaced, not absorbed
	}

	if !array.IsDenseEnoughForVector(newLength, newValues) {
		if index >= array.SparseArrayCutoff {
			h.putSparse(index, v)
			return
		}
	} else {
		for newLength < uint64(array.MaxArrayIndex)+1 {
			proposedLength := array.IncreasedVectorLength(newLength + 1)
			if proposedLength <= newLength {
				break
			}
			proposedValues := newValues + h.countSparse(absorbStart(newLength), proposedLength)
			if !array.IsDenseEnoughForVector(proposedLength, proposedValues) {
				break
			}
			newLength, newValues = proposedLength, proposedValues
		}
	}

	h.growVector(newLength)
	h.absorbSparse(absorbStart(oldLength), newLength)
	h.vector[index] = v
	h.valuesInVector = uint32(newValues)
}

// absorbStart is the first index a vector growing from length may take over
// from the sparse map. The map never holds indices below the cutoff.
func absorbStart(length uint64) uint64 {
	return max(length, uint64(array.SparseArrayCutoff))
}

// countSparse counts sparse entries with an index in [lo, hi)
func (h *hybridImpl) countSparse(lo, hi uint64) uint64 {
	if lo >= hi || h.sparseKeys == nil {
		return 0
	}
	return h.sparseBelow(hi) - h.sparseBelow(lo)
}

// sparseBelow counts sparse entries with an index below bound
func (h *hybridImpl) sparseBelow(bound uint64) uint64 {
	switch {
	case bound == 0:
		return 0
	case bound > uint64(array.MaxArrayIndex):
		return h.sparseKeys.GetCardinality()
	default:
		return h.sparseKeys.Rank(uint32(bound - 1))
	}
}

// absorbSparse moves sparse entries with an index in [lo, hi) into the vector
func (h *hybridImpl) absorbSparse(lo, hi uint64) {
	if lo >= hi || h.sparseKeys == nil || lo > uint64(array.MaxArrayIndex) {
		return
	}
	it := h.sparseKeys.Iterator()
	it.AdvanceIfNeeded(uint32(lo))
	for it.HasNext() {
		k := it.PeekNext()
		if uint64(k) >= hi {
			break
		}
		it.Next()
		h.vector[k] = h.sparse[k]
		delete(h.sparse, k)
	}
	h.sparseKeys.RemoveRange(lo, hi)
}

// growVector reallocates the vector to length slots, new slots are empty
func (h *hybridImpl) growVector(length uint64) {
	old := len(h.vector)
	if length <= uint64(old) {
		return
	}
	grown := make([]value.Value, length)
	copy(grown, h.vector)
	h.vector = grown
	h.report((int(length) - old) * slotSize)
}

// Delete removes the value at index, Length stays unchanged
func (h *hybridImpl) Delete(index uint32) bool {
	if index > array.MaxArrayIndex {
		return false
	}
	if index < uint32(len(h.vector)) {
		if h.vector[index].IsEmpty() {
			return false
		}
		h.vector[index] = value.Empty
		h.valuesInVector--
		return true
	}
	if _, ok := h.sparse[index]; ok {
		delete(h.sparse, index)
		h.sparseKeys.Remove(index)
		return true
	}
	return false
}

// --------------------------------------------------------------------------
// IndexedArray Interface Implementation - Length Operations
// --------------------------------------------------------------------------

func (h *hybridImpl) Length() uint32 {
	return h.length
}

// SetLength truncates both regions when shrinking. An emptied sparse map is dropped.
func (h *hybridImpl) SetLength(length uint32) {
	if length < h.length {
		used := h.usedVectorLength()
		for i := length; i < used; i++ {
			if !h.vector[i].IsEmpty() {
				h.vector[i] = value.Empty
				h.valuesInVector--
			}
		}
		if h.sparse != nil {
			for _, k := range h.sparseIndicesFrom(length) {
				delete(h.sparse, k)
			}
			h.sparseKeys.RemoveRange(uint64(length), uint64(array.MaxArrayIndex)+1)
			if len(h.sparse) == 0 {
				h.dropSparse()
			}
		}
	}
	h.length = length
}

// usedVectorLength bounds every scan of the vector: min(length, vectorLength)
func (h *hybridImpl) usedVectorLength() uint32 {
	if uint64(h.length) < uint64(len(h.vector)) {
		return h.length
	}
	return uint32(len(h.vector))
}

// --------------------------------------------------------------------------
// IndexedArray Interface Implementation - Enumeration & GC
// --------------------------------------------------------------------------

// EnumerateIndices lists the occupied vector slots in order followed by the
// sparse indices in ascending order
func (h *hybridImpl) EnumerateIndices() []uint32 {
	indices := make([]uint32, 0, int(h.valuesInVector)+len(h.sparse))
	used := h.usedVectorLength()
	for i := uint32(0); i < used; i++ {
		if !h.vector[i].IsEmpty() {
			indices = append(indices, i)
		}
	}
	return append(indices, h.sparseIndices()...)
}

// sparseIndices returns the keys of the sparse map in ascending order
func (h *hybridImpl) sparseIndices() []uint32 {
	if len(h.sparse) == 0 {
		return nil
	}
	return h.sparseKeys.ToArray()
}

// sparseIndicesFrom returns the sparse keys at or above lo in ascending order
func (h *hybridImpl) sparseIndicesFrom(lo uint32) []uint32 {
	var keys []uint32
	it := h.sparseKeys.Iterator()
	it.AdvanceIfNeeded(lo)
	for it.HasNext() {
		keys = append(keys, it.Next())
	}
	return keys
}

// Mark reports every stored value exactly once. Vector slots at or beyond
// Length are not visited.
func (h *hybridImpl) Mark(visit value.Visitor) {
	used := h.usedVectorLength()
	for i := uint32(0); i < used; i++ {
		if v := h.vector[i]; !v.IsEmpty() {
			visit(v)
		}
	}
	for _, v := range h.sparse {
		visit(v)
	}
}

// --------------------------------------------------------------------------
// IndexedArray Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

func (h *hybridImpl) diagnostics() Diagnostics {
	density := 0.0
	if len(h.vector) > 0 {
		density = float64(h.valuesInVector) / float64(len(h.vector))
	}
	return Diagnostics{
		Length:         h.length,
		VectorLength:   uint32(len(h.vector)),
		ValuesInVector: h.valuesInVector,
		HasSparseMap:   h.sparse != nil,
		SparseSize:     len(h.sparse),
		VectorDensity:  density,
	}
}

// GetInfo reports the storage layout. SizeBytes counts vector slots plus an
// estimate for each sparse map entry and string payload.
func (h *hybridImpl) GetInfo() array.ArrayInfo {
	const sparseEntryOverhead = 16 // key, hash bucket share

	size := len(h.vector)*slotSize + len(h.sparse)*(slotSize+sparseEntryOverhead)
	h.Mark(func(v value.Value) {
		if v.Kind() == value.KindString {
			s, _ := value.ToString(v)
			size += len(s)
		}
	})

	var supported []array.Feature
	for _, f := range array.AllFeatures {
		if h.SupportsFeature(f) {
			supported = append(supported, f)
		}
	}

	var sparseIndices util.IndexHistogram
	for k := range h.sparse {
		sparseIndices.Add(k)
	}
	_, shares := sparseIndices.Buckets()

	meta := &struct {
		Diagnostics
		SparseIndexShares  []float64              `json:"sparse_index_shares"`
		SparseDistribution util.DistributionStats `json:"sparse_distribution"`
	}{
		Diagnostics:        h.diagnostics(),
		SparseIndexShares:  shares,
		SparseDistribution: sparseIndices.Distribution(),
	}

	return array.ArrayInfo{
		SizeBytes:         size,
		EngineType:        array.ImplHybrid,
		Length:            h.length,
		StoredValues:      int(h.valuesInVector) + len(h.sparse),
		SupportedFeatures: supported,
		Metadata:          meta,
	}
}

// SupportsFeature checks if this implementation supports a specific feature
func (h *hybridImpl) SupportsFeature(feature array.Feature) bool {
	supportedFeatures := array.FeatureSort |
		array.FeatureSortFunc |
		array.FeatureCompaction |
		array.FeatureMark |
		array.FeaturePersistence
	return supportedFeatures&feature == feature
}
