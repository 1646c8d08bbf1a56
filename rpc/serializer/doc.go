// Package serializer turns common.Message values into bytes for the
// transports and back. Four encodings implement IRPCSerializer:
//
//   - Binary (NewBinarySerializer): a hand written format with a flag byte
//     announcing the present fields. Smallest and fastest, and the only one
//     that keeps an empty slice apart from an absent one. The default for
//     production.
//
//   - CBOR (NewCBORSerializer): RFC 8949 with integer map keys and the core
//     deterministic encoding. Nearly as compact as Binary and readable by
//     clients written in other languages.
//
//   - JSON (NewJSONSerializer): readable on the wire, handy with the http
//     transport and curl. Lengths that are NaN or infinite travel as strings.
//
//   - GOB (NewGOBSerializer): Go's gob. Each message carries its type
//     description, which makes it the largest and slowest format. Kept for
//     comparison in the benchmarks.
//
// Serialize never retains msg and Deserialize resets the target message, so a
// single serializer can be shared by all goroutines of a client or server:
//
//	s := serializer.NewBinarySerializer()
//	data, err := s.Serialize(*common.NewGetRequest("scores", 7))
//	...
//	var resp common.Message
//	err = s.Deserialize(respData, &resp)
package serializer
