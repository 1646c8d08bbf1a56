package array

import (
	"github.com/ValentinKolb/dArr/lib/value"
)

// Instance is a script array: an IndexedArray engine for index properties,
// plus a table for every other property name.
//
// Thread-safety: Instance is not safe for concurrent use
type Instance struct {
	storage IndexedArray
	props   map[string]value.Value
	order   []string // insertion order of props
}

// NewInstance wraps storage into an array instance
func NewInstance(storage IndexedArray) *Instance {
	return &Instance{storage: storage}
}

// Storage returns the engine backing the index properties
func (a *Instance) Storage() IndexedArray {
	return a.storage
}

func (a *Instance) Length() uint32 {
	return a.storage.Length()
}

// --------------------------------------------------------------------------
// Name Based Access
// --------------------------------------------------------------------------

// Get returns the value of the named property, value.Undefined if it is absent
func (a *Instance) Get(name string) value.Value {
	if name == LengthProperty {
		return value.Number(float64(a.storage.Length()))
	}
	if index, ok := ParseIndex(name); ok {
		v, _ := a.storage.Get(index)
		return v
	}
	return a.getNamed(name)
}

// Put assigns the named property. Assigning "length" a value that does not
// convert to an exact unsigned 32 bit integer returns ErrInvalidArrayLength
// and leaves the array untouched.
func (a *Instance) Put(name string, v value.Value) error {
	if name == LengthProperty {
		return a.SetLength(v)
	}
	if index, ok := ParseIndex(name); ok {
		a.storage.Put(index, v)
		return nil
	}
	a.putNamed(name, v)
	return nil
}

// Delete removes the named property and reports whether it existed.
// "length" can not be deleted.
func (a *Instance) Delete(name string) bool {
	if name == LengthProperty {
		return false
	}
	if index, ok := ParseIndex(name); ok {
		return a.storage.Delete(index)
	}
	return a.deleteNamed(name)
}

// HasOwnProperty reports whether the named property exists on the array
func (a *Instance) HasOwnProperty(name string) bool {
	if name == LengthProperty {
		return true
	}
	if index, ok := ParseIndex(name); ok {
		return a.storage.Has(index)
	}
	_, ok := a.props[name]
	return ok
}

// SetLength applies the checked length conversion and truncates or extends the array
func (a *Instance) SetLength(v value.Value) error {
	length, err := ToLength(v)
	if err != nil {
		return err
	}
	a.storage.SetLength(length)
	return nil
}

// ToLength converts v to an array length. The conversion must be exact:
// ErrInvalidArrayLength is returned for negative, fractional, NaN and too
// large numbers.
func ToLength(v value.Value) (uint32, error) {
	n := value.ToNumber(v)
	length := value.NumberToUint32(n)
	if float64(length) != n {
		return 0, ErrInvalidArrayLength
	}
	return length, nil
}

// OwnPropertyNames lists the enumerable own property names: the stored
// indices as reported by the engine followed by named properties in
// insertion order. "length" is not enumerable.
func (a *Instance) OwnPropertyNames() []string {
	indices := a.storage.EnumerateIndices()
	names := make([]string, 0, len(indices)+len(a.order))
	for _, index := range indices {
		names = append(names, IndexName(index))
	}
	return append(names, a.order...)
}

// --------------------------------------------------------------------------
// Index Based Access
// --------------------------------------------------------------------------

// GetIndex reads an index property. 0xFFFFFFFF is read from the property table.
func (a *Instance) GetIndex(index uint32) value.Value {
	if v, ok := a.storage.Get(index); ok {
		return v
	}
	return a.getNamed(IndexName(index))
}

// PutIndex writes an index property. 0xFFFFFFFF is written to the property table.
func (a *Instance) PutIndex(index uint32, v value.Value) {
	if a.storage.Put(index, v) {
		return
	}
	a.putNamed(IndexName(index), v)
}

// DeleteIndex removes an index property and reports whether it existed
func (a *Instance) DeleteIndex(index uint32) bool {
	if !IsArrayIndex(uint64(index)) {
		return a.deleteNamed(IndexName(index))
	}
	return a.storage.Delete(index)
}

// --------------------------------------------------------------------------
// Sorting & GC
// --------------------------------------------------------------------------

func (a *Instance) Sort() error {
	return a.storage.Sort()
}

func (a *Instance) SortFunc(cmp Comparator) error {
	return a.storage.SortFunc(cmp)
}

// Mark reports the values of index properties and named properties
func (a *Instance) Mark(visit value.Visitor) {
	a.storage.Mark(visit)
	for _, name := range a.order {
		visit(a.props[name])
	}
}

// --------------------------------------------------------------------------
// Property Table
// --------------------------------------------------------------------------

func (a *Instance) getNamed(name string) value.Value {
	if v, ok := a.props[name]; ok {
		return v
	}
	return value.Undefined
}

func (a *Instance) putNamed(name string, v value.Value) {
	if a.props == nil {
		a.props = make(map[string]value.Value)
	}
	if _, ok := a.props[name]; !ok {
		a.order = append(a.order, name)
	}
	a.props[name] = v
}

func (a *Instance) deleteNamed(name string) bool {
	if _, ok := a.props[name]; !ok {
		return false
	}
	delete(a.props, name)
	for i, n := range a.order {
		if n == name {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return true
}
