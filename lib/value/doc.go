// Package value provides the script value model that indexed arrays store.
//
// A Value is a small tagged struct. Its zero value is the empty slot (a hole),
// which is distinct from an explicitly stored Undefined. The package also holds
// the collaborators an array needs from a host interpreter:
//
//   - Conversions: ToString, ToNumber and ToUint32 follow the script language
//     rules the array built-ins depend on (string sort order, length checks).
//
//   - Heap: a minimal mark-and-sweep collector. Arrays take part in collection
//     by implementing Marker and reporting every stored value to the Visitor
//     handed in during a pass.
//
//   - Codec: a compact binary encoding used for snapshots, Raft commands and the
//     RPC layer, plus JSON helpers for command line input.
//
// Objects carry identity and cannot be serialized; every other kind round trips
// through the codec.
package value
