package array

import (
	"io"

	"github.com/ValentinKolb/dArr/lib/value"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// MaxArrayIndex is the largest legal array index. 0xFFFFFFFF is never an index.
	MaxArrayIndex uint32 = 0xFFFFFFFE

	// SparseArrayCutoff is the index below which values are always stored densely
	SparseArrayCutoff uint32 = 10000

	// MinDensityMultiplier bounds the share of empty slots a vector may carry:
	// a range is dense enough when at least 1/MinDensityMultiplier of it is occupied
	MinDensityMultiplier uint32 = 8

	// maxVectorLength caps vector growth at one slot per legal index
	maxVectorLength uint64 = uint64(MaxArrayIndex) + 1
)

// IncreasedVectorLength returns the capacity a vector grows to when it has to
// hold at least n slots. The result is capped at MaxArrayIndex+1.
func IncreasedVectorLength(n uint64) uint64 {
	grown := (n*3 + 1) / 2
	if grown > maxVectorLength {
		return maxVectorLength
	}
	return grown
}

// IsDenseEnoughForVector reports whether numValues occupied slots justify a
// vector of the given length
func IsDenseEnoughForVector(length, numValues uint64) bool {
	return length/uint64(MinDensityMultiplier) <= numValues
}

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplHybrid Implementation = "hybrid"
	ImplMapped Implementation = "mapped"
)

// Feature represents engine features as bit flags
type Feature uint64

const (
	FeatureSort        Feature = 1 << iota // Support for string order Sort
	FeatureSortFunc                        // Support for comparator driven SortFunc
	FeatureCompaction                      // Support for CompactForSorting
	FeatureMark                            // Support for Mark traversal
	FeaturePersistence                     // Support for Save and Load
)

func (f Feature) String() string {
	switch f {
	case FeatureSort:
		return "Sort"
	case FeatureSortFunc:
		return "SortFunc"
	case FeatureCompaction:
		return "Compaction"
	case FeatureMark:
		return "Mark"
	case FeaturePersistence:
		return "Persistence"
	default:
		return "Unknown"
	}
}

// AllFeatures lists every known feature in declaration order
var AllFeatures = []Feature{FeatureSort, FeatureSortFunc, FeatureCompaction, FeatureMark, FeaturePersistence}

type ArrayInfo struct {
	SizeBytes         int            `json:"size_bytes"`
	EngineType        Implementation `json:"engine_type"`
	Length            uint32         `json:"length"`
	StoredValues      int            `json:"stored_values"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// Factory creates a new, empty engine
type Factory func() IndexedArray

// Comparator orders two defined values: negative if a sorts before b, zero if
// they are equal, positive if a sorts after b. A returned error aborts the sort.
type Comparator func(a, b value.Value) (int, error)

// --------------------------------------------------------------------------
// Engine Interface
// --------------------------------------------------------------------------

// IndexedArray is the backing store of a script array. Indices are unsigned
// 32 bit integers in [0, MaxArrayIndex]; 0xFFFFFFFF is not an index and is
// reported back to the caller so it can fall back to named property handling.
//
// Thread-safety: implementations are not safe for concurrent use. Callers
// sharing an engine must serialize access.
type IndexedArray interface {

	// --------------------------------------------------------------------------
	// Index Operations
	// --------------------------------------------------------------------------

	// Get returns the value stored at index, or value.Undefined if nothing is stored.
	// ok is false only if index is not an array index.
	Get(index uint32) (v value.Value, ok bool)

	// Has reports whether a value is stored at index. Holes and non-indices report false.
	Has(index uint32) bool

	// Put stores v at index and extends Length if needed.
	// ok is false only if index is not an array index, nothing is stored then.
	// Storing value.Empty is equivalent to Delete.
	Put(index uint32, v value.Value) (ok bool)

	// Delete removes the value at index and reports whether one existed.
	// Length is never changed by Delete.
	Delete(index uint32) (existed bool)

	// --------------------------------------------------------------------------
	// Length Operations
	// --------------------------------------------------------------------------

	// Length returns the logical length of the array
	Length() uint32

	// SetLength sets the logical length. Shrinking removes every value at an
	// index >= length.
	SetLength(length uint32)

	// --------------------------------------------------------------------------
	// Enumeration & Sorting
	// --------------------------------------------------------------------------

	// EnumerateIndices returns the indices of all stored values
	EnumerateIndices() []uint32

	// CompactForSorting moves all defined values to the front followed by
	// explicit undefined values and returns the number of defined values
	CompactForSorting() uint32

	// Sort orders the defined values by their string conversion. Undefined
	// values and holes end up behind them. Conversion errors abort the sort
	// and leave the array unchanged.
	Sort() error

	// SortFunc is Sort with a caller supplied ordering
	SortFunc(cmp Comparator) error

	// --------------------------------------------------------------------------
	// GC Support
	// --------------------------------------------------------------------------

	// Mark reports every stored value below Length to visit exactly once
	Mark(visit value.Visitor)

	// --------------------------------------------------------------------------
	// Persistence Operations
	// --------------------------------------------------------------------------

	// Save persists the current state of the array to the provided io.Writer.
	Save(w io.Writer) (err error)

	// Load replaces the array state with data provided by an io.Reader.
	Load(r io.Reader) (err error)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the engine supports the specified feature.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the array and its storage layout
	GetInfo() (info ArrayInfo)
}
