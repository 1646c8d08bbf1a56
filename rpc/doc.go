// Package rpc exposes the array store over the network. A server hosts shards
// of named arrays, a client implements store.IStore on top of a shard.
//
// The package is organized into several subpackages:
//
//   - common: the Message protocol, server and client configuration, and the
//     logger setup shared by all components.
//
//   - transport: moving encoded messages (HTTP, TCP, Unix sockets).
//
//   - serializer: encoding messages (Binary, CBOR, JSON, GOB).
//
//   - client: the store.IStore implementation that forwards to a server.
//
//   - server: hosts the shards and answers requests with the store.IStore
//     adapter.
package rpc
