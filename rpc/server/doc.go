// Package server implements the RPC server of the array store. A server hosts
// any number of shards, each an independent namespace of named arrays, and
// serves them over one transport with one serializer.
//
// Key Components:
//
//   - Server: created by NewRPCServer. Serve builds the shards from the
//     configuration and blocks in the transport, Close stops it.
//
//   - IRPCServerAdapter: translates a decoded request into a store.IStore call.
//     NewIStoreServerAdapter decodes values with value.UnmarshalBinary, takes
//     the sort order from Meta and returns array info as JSON in Meta. Store
//     errors travel with their return code.
//
//   - EngineFactory: selects the array engine (hybrid, mapped) all shards of
//     the server use.
//
// Shard types:
//
//   - ShardTypeLocalIStore ("local"): an lstore.LocalStore in process memory.
//
//   - ShardTypeRemoteIStore ("raft"): a dstore replicated with Dragonboat. The
//     RAFT settings of the configuration (RTTMillisecond, SnapshotEntries,
//     CompactionOverhead, DataDir, ReplicaID, ClusterMembers) must be set.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Shards: []common.ServerShard{
//	    {ShardID: 100, Type: common.ShardTypeLocalIStore},
//	  },
//	  Engine:        "hybrid",
//	  TimeoutSecond: 5,
//	  LogLevel:      "info",
//	  Transport:     common.ServerTransportConfig{Endpoint: "0.0.0.0:8080"},
//	}
//
//	s := server.NewRPCServer(config, tcp.NewTCPServerTransport(), serializer.NewBinarySerializer())
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Requests for a shard the server does not host, and requests that cannot be
// decoded, are answered with a MsgTError response.
package server
