package hybrid

import (
	"io"

	"github.com/ValentinKolb/dArr/lib/array/util"
	"github.com/ValentinKolb/dArr/lib/value"
)

// --------------------------------------------------------------------------
// IndexedArray Interface Implementation - Persistence
// --------------------------------------------------------------------------

var snapshotFormat = util.Snapshot{Magic: magicNum, Version: hybridVersion}

// Save writes all stored values together with the array length to w.
// Object values can not be saved and yield value.ErrNotSerializable.
//
// Thread-safety: This function is not thread-safe
func (h *hybridImpl) Save(w io.Writer) error {
	return snapshotFormat.Write(w, h.length, h.EnumerateIndices(), func(index uint32) value.Value {
		v, _ := h.Get(index)
		return v
	})
}

// Load replaces the array with the state read from r. Values are replayed
// through Put, so the storage layout follows the regular growth policy.
// On error the array is left unchanged.
//
// Thread-safety: This function is not thread-safe
func (h *hybridImpl) Load(r io.Reader) error {
	loaded := newHybrid(&Options{ReportExtraMemoryCost: h.reportCost})
	length, err := snapshotFormat.Read(r, func(index uint32, v value.Value) {
		loaded.Put(index, v)
	})
	if err != nil {
		return err
	}
	loaded.length = length

	*h = *loaded
	return nil
}
