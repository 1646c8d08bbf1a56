package serializer

import (
	"testing"

	"github.com/ValentinKolb/dArr/rpc/common"
)

// benchmarkMessages returns a set of messages for targeted benchmarking
func benchmarkMessages() map[string]common.Message {
	indices := make([]uint32, 1024)
	for i := range indices {
		indices[i] = uint32(i * 3)
	}

	return map[string]common.Message{
		"PutResponse": {
			MsgType: common.MsgTArrPut,
		},
		"LengthRequest": {
			MsgType: common.MsgTArrLength,
			Key:     "scores",
		},
		"GetRequest": {
			MsgType: common.MsgTArrGet,
			Key:     "array",
			Index:   10042,
		},
		"SmallValue": {
			MsgType: common.MsgTArrPut,
			Key:     "array",
			Index:   1,
			Value:   []byte{0x04, 'v'},
		},
		"LargeValue": {
			MsgType: common.MsgTArrPut,
			Key:     "array",
			Index:   2,
			Value:   make([]byte, 1024), // 1KB of data
		},
		"VeryLargeValue": {
			MsgType: common.MsgTArrPut,
			Key:     "array",
			Index:   3,
			Value:   make([]byte, 1024*16), // 16KB of data
		},
		"ManyIndices": {
			MsgType: common.MsgTArrIndices,
			Indices: indices,
		},
		"CompleteMessage": {
			MsgType: common.MsgTArrSetLength,
			Key:     "complete-test-key",
			Index:   10000,
			Length:  4294967295,
			Value:   []byte("test-value-data"),
			Indices: []uint32{1, 2, 3},
			Ok:      true,
			Err:     "This is a test error message",
			Code:    4,
			Meta:    []byte("test-meta-data-for-benchmarking"),
		},
		"ErrorMessage": {
			MsgType: common.MsgTError,
			Err:     "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.",
		},
	}
}

// BenchmarkSerializers measures encoding and decoding of every benchmark
// message and reports the encoded size
func BenchmarkSerializers(b *testing.B) {
	for name, factory := range testSerializers {
		s := factory()
		for msgName, msg := range benchmarkMessages() {
			data, err := s.Serialize(msg)
			if err != nil {
				b.Fatalf("%s: failed to serialize %s: %v", name, msgName, err)
			}

			b.Run(name+"/"+msgName+"/encode", func(b *testing.B) {
				b.ReportAllocs()
				b.ReportMetric(float64(len(data)), "bytes")
				for i := 0; i < b.N; i++ {
					if _, err := s.Serialize(msg); err != nil {
						b.Fatal(err)
					}
				}
			})

			b.Run(name+"/"+msgName+"/decode", func(b *testing.B) {
				b.ReportAllocs()
				var out common.Message
				for i := 0; i < b.N; i++ {
					if err := s.Deserialize(data, &out); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
