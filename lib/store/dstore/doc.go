// Package dstore implements a distributed, fault-tolerant array store using
// the Dragonboat RAFT consensus library. It provides a strongly consistent implementation
// of the store.IStore interface that can operate across multiple nodes.
//
// Architecture:
//
//   - Store Client: Implements the store.IStore interface. It serializes writes into
//     commands, proposes them to the consensus layer and translates the results.
//
//   - State Machine: A Dragonboat IConcurrentStateMachine. Each replica holds a
//     registry.Registry and applies the committed commands to it in log order.
//
//   - Communication Protocol: Defined in the internal package, Command and Query
//     structures with the binary command encoding.
//
// Write Operations:
//
//	Put, Delete, SetLength, Sort and Drop follow this flow:
//
//	1. The operation is serialized into a Command (values with value.MarshalBinary)
//	2. The Command is proposed to the RAFT cluster via SyncPropose
//	3. Once committed, the command is executed on the state machine on each node
//	4. The result code (and the boolean outcome of Delete and Drop) is returned
//
//	Validation that depends on the array (range errors for lengths, unsupported
//	sort features) happens on the state machine, so every replica reaches the same
//	decision. Sorting only uses the built-in comparators, which are deterministic.
//
// Read Operations:
//
//	Get, Length and Indices use SyncRead by default, which guarantees the read sees
//	every committed write. When the store is created with staleReads set they use
//	StaleRead instead. Info always uses StaleRead.
//
// Error Handling and Retries:
//
//   - System Busy: When Dragonboat returns ErrSystemBusy, the operation is retried
//     after a short delay, up to 5 attempts.
//
//   - Timeouts: All operations use the configured timeout.
//
// Snapshotting and Recovery:
//
//	PrepareSnapshot runs while updates are paused and captures the registry image.
//	SaveSnapshot writes that image out while new updates are applied. On recovery the
//	registry is replaced with the snapshot content, the log entries committed after it
//	are replayed by Dragonboat.
//
// Example:
//
//	nh, err := dragonboat.NewNodeHost(nodeHostConfig)
//	if err != nil { ... }
//
//	factory := func() array.IndexedArray { return hybrid.NewHybridArray(nil) }
//	err = nh.StartConcurrentReplica(
//	    clusterMembers,
//	    false,
//	    dstore.CreateStateMachineFactory(factory),
//	    shardConfig)
//	if err != nil { ... }
//
//	s := dstore.NewDistributedStore(nh, shardID, 5*time.Second, false)
//
// For scenarios where distributed consensus is not required, consider using the simpler
// and faster lstore package.
package dstore
