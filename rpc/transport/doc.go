// Package transport defines the interfaces for moving encoded RPC messages
// between clients and servers of the array store. Implementations live in the
// sub packages:
//
//   - http: one POST request per message, the shard is part of the path.
//     The server also exposes the process metrics on GET /metrics.
//
//   - tcp, unix: stream transports built on the base package. Requests are
//     framed, multiplexed over pooled connections and matched to responses by
//     request id.
//
// A server transport hands every request to a ServerHandleFunc together with
// the shard id the client addressed. The handler returns the encoded response,
// so transports never look into the payload.
//
// All transports record request counts, failures and latencies with
// VictoriaMetrics/metrics under darr_rpc_*.
package transport
