package array

import "strconv"

// LengthProperty is the reserved property name of the array length
const LengthProperty = "length"

// IsArrayIndex reports whether n is a legal array index
func IsArrayIndex(n uint64) bool {
	return n <= uint64(MaxArrayIndex)
}

// ParseIndex converts a property name into an array index. Only canonical
// decimal forms qualify: no sign, no leading zeros, no whitespace, at most
// MaxArrayIndex. "01" and "4294967295" are plain property names.
func ParseIndex(name string) (uint32, bool) {
	if len(name) == 0 || len(name) > 10 {
		return 0, false
	}
	if name[0] == '0' && len(name) > 1 {
		return 0, false
	}
	var n uint64
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
	}
	if !IsArrayIndex(n) {
		return 0, false
	}
	return uint32(n), true
}

// IndexName returns the property name of an index
func IndexName(index uint32) string {
	return strconv.FormatUint(uint64(index), 10)
}
