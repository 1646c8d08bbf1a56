// Package internal provides the communication protocol structures and serialization
// logic for the dstore package. It defines the wire format used to transmit operations
// between the store client and the distributed state machine.
//
// This package is intended for internal use by the dstore implementation and should
// not be imported directly by external code.
//
// The package consists of two main components:
//
//   - Command System: Defines write operations (Put, Delete, SetLength, Sort, Drop)
//     that modify the arrays. Commands are serialized and proposed to the RAFT cluster,
//     executed on the state machine, and produce results that are returned to the client.
//
//   - Query System: Defines read operations (Get, Length, Indices, Info). Queries are
//     executed locally on the state machine and therefore do not require serialization.
//
// Command Format:
//
//	Commands are serialized into a binary format with the following structure,
//	all numbers big endian:
//
//	- 1 byte: Command type
//	- 4 bytes: Index (uint32)
//	- 8 bytes: Length (float64 bits, SetLength only)
//	- 1 byte: Sort order (Sort only)
//	- 4 bytes: Name length (uint32)
//	- N bytes: Name data
//	- M bytes: Value (value.MarshalBinary encoding, Put only)
//
//	The length travels as the raw number so that the range check happens on the
//	state machine, identically on every replica.
package internal
