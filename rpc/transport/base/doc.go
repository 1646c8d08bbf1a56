// Package base implements the stream transport shared by the tcp and unix
// transports. The network specific parts (listening, dialing, socket options)
// are injected through IServerConnector and IClientConnector.
//
// Wire format:
//
//	Every message travels in a frame: shardID (uint64) | requestID (uint64) |
//	payload length (uint32) | payload. All integers are big endian and a
//	payload is at most MaxFrameSize bytes. A response carries the shard and
//	request id of its request.
//
// Client:
//
//   - Opens ConnectionsPerEndpoint connections to every endpoint and picks
//     one round robin per request.
//
//   - Requests are multiplexed, many can be in flight on one connection. A
//     reader goroutine per connection hands each response to its request.
//
//   - A failed request is retried RetryCount times with exponential backoff.
//     When a connection breaks its pending requests fail and it is dialed
//     again once.
//
// Server:
//
//   - Every connection gets a reader goroutine. Requests are processed by at
//     most WorkersPerConn workers per connection, responses are written as
//     they complete.
//
//   - Read buffers come from a sync.Pool, frames larger than the buffer get
//     their own allocation.
//
//   - Close stops the listener, closes the open connections and lets Listen
//     return once all workers are done.
//
// Thread Safety:
//
//	All exported methods are safe for concurrent use, except that
//	RegisterHandler must be called before Listen.
package base
