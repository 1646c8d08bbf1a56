package array

import (
	"fmt"
	"math"
	"strings"

	"github.com/ValentinKolb/dArr/lib/value"
)

// StringComparator orders values by their string conversion. Both operands
// are converted on every call since conversions may run host code.
func StringComparator(a, b value.Value) (int, error) {
	sa, err := value.ToString(a)
	if err != nil {
		return 0, err
	}
	sb, err := value.ToString(b)
	if err != nil {
		return 0, err
	}
	return strings.Compare(sa, sb), nil
}

// NumericComparator orders values by their numeric conversion. NaN compares
// equal to everything.
func NumericComparator(a, b value.Value) (int, error) {
	na, nb := value.ToNumber(a), value.ToNumber(b)
	switch {
	case math.IsNaN(na) || math.IsNaN(nb):
		return 0, nil
	case na < nb:
		return -1, nil
	case na > nb:
		return 1, nil
	default:
		return 0, nil
	}
}

// Reverse inverts the order of cmp
func Reverse(cmp Comparator) Comparator {
	return func(a, b value.Value) (int, error) {
		c, err := cmp(a, b)
		return -c, err
	}
}

// --------------------------------------------------------------------------
// Sort Orders
// --------------------------------------------------------------------------

// SortOrder names the orderings a store can apply remotely
type SortOrder uint8

const (
	SortString SortOrder = iota
	SortStringDesc
	SortNumeric
	SortNumericDesc
)

func (o SortOrder) String() string {
	switch o {
	case SortString:
		return "string"
	case SortStringDesc:
		return "string-desc"
	case SortNumeric:
		return "numeric"
	case SortNumericDesc:
		return "numeric-desc"
	default:
		return "unknown"
	}
}

// ParseSortOrder parses the String form of a SortOrder. The empty string is SortString.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string":
		return SortString, nil
	case "string-desc":
		return SortStringDesc, nil
	case "numeric":
		return SortNumeric, nil
	case "numeric-desc":
		return SortNumericDesc, nil
	default:
		return SortString, fmt.Errorf("unknown sort order %q", s)
	}
}

// Comparator returns the comparator of o, nil for the default string order
// so that engines can use their Sort fast path
func (o SortOrder) Comparator() Comparator {
	switch o {
	case SortStringDesc:
		return Reverse(StringComparator)
	case SortNumeric:
		return NumericComparator
	case SortNumericDesc:
		return Reverse(NumericComparator)
	default:
		return nil
	}
}

// SortBy applies o to arr
func SortBy(arr IndexedArray, o SortOrder) error {
	if cmp := o.Comparator(); cmp != nil {
		return arr.SortFunc(cmp)
	}
	return arr.Sort()
}
