// Package client implements the RPC client of the array store. NewRPCStore
// returns a store.IStore whose operations are executed by a shard of a remote
// server, so code written against store.IStore runs unchanged against a local
// store, a raft replicated store or a server over the network.
//
// Values travel in the value.MarshalBinary encoding, array info as JSON.
// Errors reported by the server are rebuilt as *store.Error with their
// original return code, so store.IsCode works on both sides of the wire.
// Transport failures are returned as they are.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  TimeoutSecond: 5,
//	  Transport: common.ClientTransportConfig{
//	    Endpoints:              []string{"localhost:8080"},
//	    RetryCount:             3,
//	    ConnectionsPerEndpoint: 1,
//	  },
//	}
//
//	s, err := client.NewRPCStore(100, config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//	if err != nil { ... }
//
//	_ = s.Put("scores", 0, value.Int(42))
//	v, _ := s.Get("scores", 0)
//
// Both ends must use the same serializer. The binary serializer gives the
// smallest payloads, JSON is convenient for debugging.
//
// Thread Safety:
//
//	Clients are safe for concurrent use by multiple goroutines.
package client
