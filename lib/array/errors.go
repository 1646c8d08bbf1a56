package array

// RangeError is a script visible range error, e.g. an invalid array length
type RangeError struct {
	Msg string
}

func (e *RangeError) Error() string {
	return "RangeError: " + e.Msg
}

// ErrInvalidArrayLength is returned when "length" is assigned a value that is
// not an exact unsigned 32 bit integer
var ErrInvalidArrayLength = &RangeError{Msg: "Invalid array length"}
