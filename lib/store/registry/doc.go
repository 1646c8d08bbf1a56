// Package registry holds the named arrays behind the store implementations.
//
// A Registry maps array names to array.Instance values backed by the engine
// of the configured array.Factory. Each array carries its own mutex, so the
// single threaded engines are never entered concurrently while different
// arrays are still served in parallel. The map itself is an xsync.MapOf.
//
// Both store implementations build on it: lstore calls it directly and the
// dstore state machine applies replicated commands to it. Save and Load write
// and read the whole namespace as one snapshot, used by dragonboat when a
// replica snapshots or recovers.
//
// Example usage:
//
//	reg := registry.New(func() array.IndexedArray { return hybrid.NewHybridArray(nil) })
//	defer reg.Close()
//
//	_ = reg.Put("scores", 0, value.Int(7))
//	length, _ := reg.Length("scores") // 1
package registry
