package hybrid

import (
	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/array/util"
	"github.com/ValentinKolb/dArr/lib/value"
)

// --------------------------------------------------------------------------
// IndexedArray Interface Implementation - Sorting
// --------------------------------------------------------------------------
//
// Sorting works on a detached snapshot of the stored values. The comparator
// may run arbitrary host code, including a collection that marks this array
// or writes to it. The live storage is only rewritten once the snapshot is
// sorted, so a failing comparator leaves the array as it was.

// CompactForSorting lays out all defined values at the front of the vector,
// followed by the explicit undefined values, and drops the sparse map.
// Returns the number of defined values.
func (h *hybridImpl) CompactForSorting() uint32 {
	defined, numUndefined := h.collectForSorting()
	h.layoutSorted(defined, numUndefined)
	return uint32(len(defined))
}

// Sort orders the defined values by their string conversion
func (h *hybridImpl) Sort() error {
	return h.SortFunc(array.StringComparator)
}

// SortFunc orders the defined values with cmp, nil means string order
func (h *hybridImpl) SortFunc(cmp array.Comparator) error {
	if cmp == nil {
		cmp = array.StringComparator
	}
	defined, numUndefined := h.collectForSorting()
	if err := util.SortFunc(defined, util.CompareFunc[value.Value](cmp)); err != nil {
		return err
	}
	h.layoutSorted(defined, numUndefined)
	return nil
}

// collectForSorting copies the defined values in index order (vector first,
// then sparse entries) and counts explicit undefined values. Holes are skipped.
func (h *hybridImpl) collectForSorting() ([]value.Value, uint64) {
	defined := make([]value.Value, 0, int(h.valuesInVector)+len(h.sparse))
	var numUndefined uint64

	used := h.usedVectorLength()
	for i := uint32(0); i < used; i++ {
		switch v := h.vector[i]; {
		case v.IsEmpty():
		case v.IsUndefined():
			numUndefined++
		default:
			defined = append(defined, v)
		}
	}
	for _, k := range h.sparseIndices() {
		if v := h.sparse[k]; v.IsUndefined() {
			numUndefined++
		} else {
			defined = append(defined, v)
		}
	}
	return defined, numUndefined
}

// layoutSorted writes defined followed by numUndefined explicit undefined
// values to the front of the vector, clears the rest of the used range and
// destroys the sparse map. The vector grows by plain reallocation if needed.
func (h *hybridImpl) layoutSorted(defined []value.Value, numUndefined uint64) {
	used := uint64(h.usedVectorLength())
	total := uint64(len(defined)) + numUndefined

	h.growVector(total)
	copy(h.vector, defined)
	for i := uint64(len(defined)); i < total; i++ {
		h.vector[i] = value.Undefined
	}
	for i := total; i < used; i++ {
		h.vector[i] = value.Empty
	}

	h.dropSparse()
	h.valuesInVector = uint32(total)

	// a comparator may have shrunk the array while the snapshot was sorted
	if total > uint64(h.length) {
		h.length = uint32(total)
	}
}
