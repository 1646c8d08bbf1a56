package registry

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/array/util"
	"github.com/ValentinKolb/dArr/lib/store"
	"github.com/ValentinKolb/dArr/lib/value"
	"github.com/puzpuzpuz/xsync/v3"
	gometrics "github.com/rcrowley/go-metrics"
)

const (
	magicNum        = "DARRREG\x00" // File format identifier
	registryVersion = 1             // Snapshot version
)

// entry is a single named array. The mutex serialises every access to the
// instance, the engines are not safe for concurrent use.
type entry struct {
	mu      sync.Mutex
	inst    *array.Instance
	dropped bool // set under mu once the entry left the map
}

// Registry holds named arrays. Operations on the same array are serialised,
// operations on different arrays run concurrently.
type Registry struct {
	factory array.Factory
	arrays  *xsync.MapOf[string, *entry]
	puts    gometrics.Meter
}

// StoreMetadata is the metadata reported by Info. It wraps the engine
// metadata and adds registry wide numbers.
type StoreMetadata struct {
	Engine     interface{} `json:"engine"`
	Arrays     int         `json:"arrays"`
	Puts       int64       `json:"puts"`
	PutRate1m  float64     `json:"put_rate_1m"`
	PutRateAvg float64     `json:"put_rate_mean"`
}

// New creates an empty registry creating arrays with factory
func New(factory array.Factory) *Registry {
	return &Registry{
		factory: factory,
		arrays:  xsync.NewMapOf[string, *entry](),
		puts:    gometrics.NewMeter(),
	}
}

// Close stops the background ticker of the put meter
func (r *Registry) Close() {
	r.puts.Stop()
}

// --------------------------------------------------------------------------
// Entry Access
// --------------------------------------------------------------------------

// withArray runs fn on the named array while holding its lock. Missing
// arrays are created when create is set, otherwise fn receives nil.
func (r *Registry) withArray(name string, create bool, fn func(inst *array.Instance) error) error {
	for {
		var e *entry
		if create {
			e, _ = r.arrays.LoadOrCompute(name, func() *entry {
				return &entry{inst: array.NewInstance(r.factory())}
			})
		} else {
			var ok bool
			if e, ok = r.arrays.Load(name); !ok {
				return fn(nil)
			}
		}

		e.mu.Lock()
		if e.dropped {
			// lost a race with Drop, the name may already be bound to a new entry
			e.mu.Unlock()
			continue
		}
		err := fn(e.inst)
		e.mu.Unlock()
		return err
	}
}

// --------------------------------------------------------------------------
// Array Operations
// --------------------------------------------------------------------------

func (r *Registry) Put(name string, index uint32, v value.Value) error {
	if !array.IsArrayIndex(uint64(index)) {
		return store.NewError(store.RetCInvalidOperation, fmt.Sprintf("%d is not an array index", index))
	}
	if v.Kind() == value.KindObject {
		return store.NewError(store.RetCInvalidOperation, "object values can not be stored")
	}
	r.puts.Mark(1)
	return r.withArray(name, true, func(inst *array.Instance) error {
		inst.PutIndex(index, v)
		return nil
	})
}

func (r *Registry) Get(name string, index uint32) (value.Value, error) {
	if !array.IsArrayIndex(uint64(index)) {
		return value.Undefined, store.NewError(store.RetCInvalidOperation, fmt.Sprintf("%d is not an array index", index))
	}
	v := value.Undefined
	err := r.withArray(name, false, func(inst *array.Instance) error {
		if inst != nil {
			v = inst.GetIndex(index)
		}
		return nil
	})
	return v, err
}

func (r *Registry) Delete(name string, index uint32) (bool, error) {
	if !array.IsArrayIndex(uint64(index)) {
		return false, store.NewError(store.RetCInvalidOperation, fmt.Sprintf("%d is not an array index", index))
	}
	var deleted bool
	err := r.withArray(name, false, func(inst *array.Instance) error {
		if inst != nil {
			deleted = inst.DeleteIndex(index)
		}
		return nil
	})
	return deleted, err
}

func (r *Registry) Length(name string) (uint32, error) {
	var length uint32
	err := r.withArray(name, false, func(inst *array.Instance) error {
		if inst != nil {
			length = inst.Length()
		}
		return nil
	})
	return length, err
}

// SetLength assigns the length property. A valid length on a missing array
// creates it.
func (r *Registry) SetLength(name string, length float64) error {
	// checked up front so that an invalid length does not create the array
	if _, err := array.ToLength(value.Number(length)); err != nil {
		return store.WrapError(err)
	}
	return r.withArray(name, true, func(inst *array.Instance) error {
		return store.WrapError(inst.Put(array.LengthProperty, value.Number(length)))
	})
}

func (r *Registry) Sort(name string, order array.SortOrder) error {
	return r.withArray(name, false, func(inst *array.Instance) error {
		if inst == nil {
			return nil
		}
		feature := array.FeatureSort
		if order.Comparator() != nil {
			feature = array.FeatureSortFunc
		}
		if !inst.Storage().SupportsFeature(feature) {
			return store.NewError(store.RetCUnsupportedOperation, fmt.Sprintf("%s sort is not supported", order))
		}
		return store.WrapError(array.SortBy(inst.Storage(), order))
	})
}

func (r *Registry) Indices(name string) ([]uint32, error) {
	var indices []uint32
	err := r.withArray(name, false, func(inst *array.Instance) error {
		if inst != nil {
			indices = inst.Storage().EnumerateIndices()
		}
		return nil
	})
	return indices, err
}

func (r *Registry) Drop(name string) (bool, error) {
	e, ok := r.arrays.LoadAndDelete(name)
	if !ok {
		return false, nil
	}
	e.mu.Lock()
	e.dropped = true
	e.mu.Unlock()
	return true, nil
}

// Info reports the engine info of the named array. Missing arrays report a
// fresh engine.
func (r *Registry) Info(name string) (array.ArrayInfo, error) {
	var info array.ArrayInfo
	err := r.withArray(name, false, func(inst *array.Instance) error {
		if inst == nil {
			info = r.factory().GetInfo()
		} else {
			info = inst.Storage().GetInfo()
		}
		return nil
	})
	if err != nil {
		return info, err
	}
	info.Metadata = &StoreMetadata{
		Engine:     info.Metadata,
		Arrays:     r.arrays.Size(),
		Puts:       r.puts.Count(),
		PutRate1m:  r.puts.Rate1(),
		PutRateAvg: r.puts.RateMean(),
	}
	return info, nil
}

// Names returns the names of all arrays in no particular order
func (r *Registry) Names() []string {
	names := make([]string, 0, r.arrays.Size())
	r.arrays.Range(func(name string, _ *entry) bool {
		names = append(names, name)
		return true
	})
	return names
}

// --------------------------------------------------------------------------
// Persistence
// --------------------------------------------------------------------------
//
// Layout, big endian:
//   magic (8 bytes) | version (uint8) | count (uint64)
//   count x ( name length (uint32) | name | image length (uint64) | engine image )

// Save writes every array to w. Each array is locked while its image is written,
// arrays modified concurrently may or may not be part of the snapshot.
func (r *Registry) Save(w io.Writer) error {
	type image struct {
		name string
		data []byte
	}
	var images []image
	var saveErr error

	r.arrays.Range(func(name string, e *entry) bool {
		var buf bytes.Buffer
		e.mu.Lock()
		if !e.dropped {
			if !e.inst.Storage().SupportsFeature(array.FeaturePersistence) {
				saveErr = fmt.Errorf("array %q: engine does not support persistence", name)
			} else if err := e.inst.Storage().Save(&buf); err != nil {
				saveErr = fmt.Errorf("array %q: %w", name, err)
			}
		}
		dropped := e.dropped
		e.mu.Unlock()

		if saveErr != nil {
			return false
		}
		if !dropped {
			images = append(images, image{name: name, data: buf.Bytes()})
		}
		return true
	})
	if saveErr != nil {
		return saveErr
	}
	sort.Slice(images, func(i, j int) bool { return images[i].name < images[j].name })

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}
	if err := bw.WriteByte(registryVersion); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.BigEndian, uint64(len(images))); err != nil {
		return err
	}
	for _, img := range images {
		if err := binary.Write(bw, binary.BigEndian, uint32(len(img.name))); err != nil {
			return err
		}
		if _, err := bw.WriteString(img.name); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.BigEndian, uint64(len(img.data))); err != nil {
			return err
		}
		if _, err := bw.Write(img.data); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load replaces the content of the registry with the snapshot read from r.
// On error the registry is left unchanged.
func (r *Registry) Load(rd io.Reader) error {
	br := bufio.NewReader(rd)

	magic := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magic); err != nil {
		return err
	}
	if string(magic) != magicNum {
		return fmt.Errorf("invalid file format: magic number mismatch")
	}
	version, err := br.ReadByte()
	if err != nil {
		return err
	}
	if version != registryVersion {
		return fmt.Errorf("unsupported version: %d (expected %d)", version, registryVersion)
	}

	var count uint64
	if err := binary.Read(br, binary.BigEndian, &count); err != nil {
		return err
	}

	loaded := make(map[string]*array.Instance)
	for i := uint64(0); i < count; i++ {
		var nameLen uint32
		if err := binary.Read(br, binary.BigEndian, &nameLen); err != nil {
			return err
		}
		name, err := util.ReadBlock(br, uint64(nameLen))
		if err != nil {
			return err
		}
		var size uint64
		if err := binary.Read(br, binary.BigEndian, &size); err != nil {
			return err
		}

		data, err := util.ReadBlock(br, size)
		if err != nil {
			return err
		}

		arr := r.factory()
		if !arr.SupportsFeature(array.FeaturePersistence) {
			return fmt.Errorf("array %q: engine does not support persistence", name)
		}
		if err := arr.Load(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("array %q: %w", name, err)
		}
		loaded[string(name)] = array.NewInstance(arr)
	}

	r.arrays.Range(func(name string, _ *entry) bool {
		if e, ok := r.arrays.LoadAndDelete(name); ok {
			e.mu.Lock()
			e.dropped = true
			e.mu.Unlock()
		}
		return true
	})
	for name, inst := range loaded {
		r.arrays.Store(name, &entry{inst: inst})
	}
	return nil
}
