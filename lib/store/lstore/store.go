package lstore

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/store"
	"github.com/ValentinKolb/dArr/lib/store/registry"
	"github.com/ValentinKolb/dArr/lib/value"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	log = logger.GetLogger("lstore")

	sortDuration = metrics.NewHistogram("darr_sort_duration_seconds")
)

type storeImpl struct {
	reg *registry.Registry
}

// NewLocalStore creates a new local store instance.
// This store implementation is not distributed and only works on a single node.
// Arrays are created with factory.
func NewLocalStore(factory array.Factory) store.IStore {
	return &storeImpl{
		reg: registry.New(factory),
	}
}

// observe counts an operation and its failure in the metrics set exposed by
// the http transport
func observe(op string, err error) error {
	metrics.GetOrCreateCounter(fmt.Sprintf(`darr_store_ops_total{op=%q}`, op)).Inc()
	if err != nil {
		metrics.GetOrCreateCounter(fmt.Sprintf(`darr_store_errors_total{op=%q}`, op)).Inc()
		log.Debugf("%s failed: %v", op, err)
	}
	return err
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Put(name string, index uint32, v value.Value) error {
	return observe("put", s.reg.Put(name, index, v))
}

func (s *storeImpl) Get(name string, index uint32) (value.Value, error) {
	v, err := s.reg.Get(name, index)
	return v, observe("get", err)
}

func (s *storeImpl) Delete(name string, index uint32) (bool, error) {
	deleted, err := s.reg.Delete(name, index)
	return deleted, observe("delete", err)
}

func (s *storeImpl) Length(name string) (uint32, error) {
	length, err := s.reg.Length(name)
	return length, observe("length", err)
}

func (s *storeImpl) SetLength(name string, length float64) error {
	return observe("setlength", s.reg.SetLength(name, length))
}

func (s *storeImpl) Sort(name string, order array.SortOrder) error {
	start := time.Now()
	err := s.reg.Sort(name, order)
	sortDuration.UpdateDuration(start)
	if elapsed := time.Since(start); elapsed > time.Second {
		log.Infof("Sorting %q (%s) took %.2fs", name, order, elapsed.Seconds())
	}
	return observe("sort", err)
}

func (s *storeImpl) Indices(name string) ([]uint32, error) {
	indices, err := s.reg.Indices(name)
	return indices, observe("indices", err)
}

func (s *storeImpl) Drop(name string) (bool, error) {
	dropped, err := s.reg.Drop(name)
	return dropped, observe("drop", err)
}

func (s *storeImpl) Info(name string) (array.ArrayInfo, error) {
	info, err := s.reg.Info(name)
	return info, observe("info", err)
}
