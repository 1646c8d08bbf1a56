package internal

// QueryType defines the possible queries for the state machine.
type QueryType uint8

const (
	QueryTGet     QueryType = iota // Retrieve the value at an index.
	QueryTLength                   // Retrieve the length of an array.
	QueryTIndices                  // List the stored indices of an array.
	QueryTInfo                     // Retrieve metadata about the engine holding an array.
)

func (q QueryType) String() string {
	switch q {
	case QueryTGet:
		return "Get"
	case QueryTLength:
		return "Length"
	case QueryTIndices:
		return "Indices"
	case QueryTInfo:
		return "Info"
	default:
		return "Unknown"
	}
}

// Query defines the structure for lookup requests (read-only) sent via SyncRead or StaleRead
type Query struct {
	Type  QueryType // The type of Query to perform.
	Name  string    // The array to query.
	Index uint32    // The index for QueryTGet.
}
