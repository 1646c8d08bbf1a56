// Package store provides a high-level interface for named array storage with
// unified error handling. It is the abstraction layer between the array engines
// of lib/array and the outer surfaces (RPC server, CLI).
//
// Key Components:
//
//   - IStore Interface: The core abstraction defining operations on a namespace of
//     named arrays. All implementations share this common interface, allowing
//     applications to switch between local and replicated storage without code changes.
//     Arrays are addressed by name and created on first write, missing arrays read
//     as empty.
//
//   - Error System: A structured error reporting mechanism using typed return codes
//     (RetCode) and descriptive messages. WrapError maps errors of the lower layers,
//     e.g. an array.RangeError for an invalid length becomes RetCRangeError.
//
// Implementations:
//
//	- Local Store (lstore): a single node store on top of a registry.Registry.
//	  Available in the "github.com/ValentinKolb/dArr/lib/store/lstore" package.
//
//	- Distributed Store (dstore): an implementation built on the Dragonboat
//	  RAFT consensus library. Every write is replicated as a command and applied
//	  to a registry.Registry on each node.
//	  Available in the "github.com/ValentinKolb/dArr/lib/store/dstore" package.
//
//	- Remote Store (rpc/client): forwards every call to a dArr server.
package store
