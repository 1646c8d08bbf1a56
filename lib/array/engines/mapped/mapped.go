// Package mapped implements array.IndexedArray on a single map from index to
// value. It has no growth policy at all and serves as the reference the
// hybrid engine is checked against, and as a compact engine for arrays that
// are expected to stay very sparse.
package mapped

import (
	"io"
	"sort"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/array/util"
	"github.com/ValentinKolb/dArr/lib/value"
)

const (
	magicNum      = "DARRMAP\x00" // File format identifier
	mappedVersion = 1             // Snapshot version
)

var snapshotFormat = util.Snapshot{Magic: magicNum, Version: mappedVersion}

type mappedImpl struct {
	length uint32
	values map[uint32]value.Value
}

// NewMappedArray creates an empty map backed array
func NewMappedArray() array.IndexedArray {
	return &mappedImpl{values: make(map[uint32]value.Value)}
}

// --------------------------------------------------------------------------
// Index Operations
// --------------------------------------------------------------------------

func (m *mappedImpl) Get(index uint32) (value.Value, bool) {
	if index > array.MaxArrayIndex {
		return value.Undefined, false
	}
	if v, ok := m.values[index]; ok {
		return v, true
	}
	return value.Undefined, true
}

func (m *mappedImpl) Has(index uint32) bool {
	_, ok := m.values[index]
	return ok
}

func (m *mappedImpl) Put(index uint32, v value.Value) bool {
	if index > array.MaxArrayIndex {
		return false
	}
	if index >= m.length {
		m.length = index + 1
	}
	if v.IsEmpty() {
		delete(m.values, index)
	} else {
		m.values[index] = v
	}
	return true
}

func (m *mappedImpl) Delete(index uint32) bool {
	if _, ok := m.values[index]; !ok {
		return false
	}
	delete(m.values, index)
	return true
}

// --------------------------------------------------------------------------
// Length Operations
// --------------------------------------------------------------------------

func (m *mappedImpl) Length() uint32 {
	return m.length
}

func (m *mappedImpl) SetLength(length uint32) {
	if length < m.length {
		for k := range m.values {
			if k >= length {
				delete(m.values, k)
			}
		}
	}
	m.length = length
}

// --------------------------------------------------------------------------
// Enumeration & Sorting
// --------------------------------------------------------------------------

// EnumerateIndices returns all stored indices in ascending order
func (m *mappedImpl) EnumerateIndices() []uint32 {
	keys := make([]uint32, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (m *mappedImpl) CompactForSorting() uint32 {
	defined, numUndefined := m.collect()
	m.layout(defined, numUndefined)
	return uint32(len(defined))
}

func (m *mappedImpl) Sort() error {
	return m.SortFunc(array.StringComparator)
}

func (m *mappedImpl) SortFunc(cmp array.Comparator) error {
	if cmp == nil {
		cmp = array.StringComparator
	}
	defined, numUndefined := m.collect()
	if err := util.SortFunc(defined, util.CompareFunc[value.Value](cmp)); err != nil {
		return err
	}
	m.layout(defined, numUndefined)
	return nil
}

func (m *mappedImpl) collect() ([]value.Value, int) {
	defined := make([]value.Value, 0, len(m.values))
	numUndefined := 0
	for _, k := range m.EnumerateIndices() {
		if v := m.values[k]; v.IsUndefined() {
			numUndefined++
		} else {
			defined = append(defined, v)
		}
	}
	return defined, numUndefined
}

func (m *mappedImpl) layout(defined []value.Value, numUndefined int) {
	values := make(map[uint32]value.Value, len(defined)+numUndefined)
	for i, v := range defined {
		values[uint32(i)] = v
	}
	for i := 0; i < numUndefined; i++ {
		values[uint32(len(defined)+i)] = value.Undefined
	}
	m.values = values
	if total := uint32(len(values)); total > m.length {
		m.length = total
	}
}

// --------------------------------------------------------------------------
// GC, Persistence & Features
// --------------------------------------------------------------------------

func (m *mappedImpl) Mark(visit value.Visitor) {
	for _, v := range m.values {
		visit(v)
	}
}

func (m *mappedImpl) Save(w io.Writer) error {
	return snapshotFormat.Write(w, m.length, m.EnumerateIndices(), func(index uint32) value.Value {
		return m.values[index]
	})
}

func (m *mappedImpl) Load(r io.Reader) error {
	values := make(map[uint32]value.Value)
	length, err := snapshotFormat.Read(r, func(index uint32, v value.Value) {
		values[index] = v
	})
	if err != nil {
		return err
	}
	m.values, m.length = values, length
	return nil
}

func (m *mappedImpl) SupportsFeature(feature array.Feature) bool {
	supportedFeatures := array.FeatureSort |
		array.FeatureSortFunc |
		array.FeatureCompaction |
		array.FeatureMark |
		array.FeaturePersistence
	return supportedFeatures&feature == feature
}

func (m *mappedImpl) GetInfo() array.ArrayInfo {
	const entrySize = 64 // key, value struct, bucket share

	var h util.IndexHistogram
	for k := range m.values {
		h.Add(k)
	}
	bounds, shares := h.Buckets()

	return array.ArrayInfo{
		SizeBytes:         len(m.values) * entrySize,
		EngineType:        array.ImplMapped,
		Length:            m.length,
		StoredValues:      len(m.values),
		SupportedFeatures: array.AllFeatures,
		Metadata: &struct {
			IndexBuckets      []uint64               `json:"index_buckets"`
			IndexShares       []float64              `json:"index_shares"`
			IndexDistribution util.DistributionStats `json:"index_distribution"`
		}{
			IndexBuckets:      bounds,
			IndexShares:       shares,
			IndexDistribution: h.Distribution(),
		},
	}
}
