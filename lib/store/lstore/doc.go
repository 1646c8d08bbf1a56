// Package lstore implements a local, in-memory, single-node array store based on the
// store.IStore interface. It is a thin wrapper around a registry.Registry whose
// arrays are created by an array.Factory. Data is stored entirely in memory and is
// not persisted between process restarts.
//
// Key Features:
//   - Pure in-memory storage without persistence
//   - Any array.IndexedArray engine through the factory
//   - Per-array locking, different arrays are served concurrently
//   - Operation and error counters plus a sort latency histogram
//     (VictoriaMetrics), exposed by the http transport on /metrics
//
// Usage Example:
//
//	factory := func() array.IndexedArray { return hybrid.NewHybridArray(nil) }
//	s := lstore.NewLocalStore(factory)
//
//	err := s.Put("scores", 4, value.Int(12))
//	v, err := s.Get("scores", 4)
//	err = s.Sort("scores", array.SortNumeric)
//
// For distributed scenarios requiring consensus across multiple nodes, consider
// using the dstore package instead, which provides a RAFT-based implementation
// of the same interface with strong consistency guarantees.
package lstore
