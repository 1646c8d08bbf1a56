package util

// --------------------------------------------------------------------------
// Fallible Sorting
// --------------------------------------------------------------------------
//
// The sort routines below accept comparators that may fail or that do not
// describe a total order. A failing comparator aborts the sort and the error
// is returned unchanged; the slice then holds a permutation of its input.
// An inconsistent comparator yields an unspecified permutation, never an out
// of range access.

// MergeSortCutoff is the largest input SortFunc sorts with merge sort.
// Larger inputs use quicksort, which needs no scratch buffer.
const MergeSortCutoff = 10000

// insertionCutoff is the partition size below which both algorithms switch
// to insertion sort
const insertionCutoff = 12

// CompareFunc orders a before b if it returns a negative number
type CompareFunc[T any] func(a, b T) (int, error)

// SortFunc sorts items in place, stable for inputs up to MergeSortCutoff
func SortFunc[T any](items []T, cmp CompareFunc[T]) error {
	if len(items) <= MergeSortCutoff {
		return MergeSort(items, cmp)
	}
	return QuickSort(items, cmp)
}

// MergeSort is a stable top down merge sort using one scratch buffer of len(items)
func MergeSort[T any](items []T, cmp CompareFunc[T]) error {
	if len(items) < 2 {
		return nil
	}
	scratch := make([]T, len(items))
	return mergeSort(items, scratch, cmp)
}

func mergeSort[T any](items, scratch []T, cmp CompareFunc[T]) error {
	n := len(items)
	if n <= insertionCutoff {
		return insertionSort(items, cmp)
	}

	mid := n / 2
	if err := mergeSort(items[:mid], scratch[:mid], cmp); err != nil {
		return err
	}
	if err := mergeSort(items[mid:], scratch[mid:], cmp); err != nil {
		return err
	}

	// halves already in order
	c, err := cmp(items[mid-1], items[mid])
	if err != nil {
		return err
	}
	if c <= 0 {
		return nil
	}

	copy(scratch, items)
	i, j, k := 0, mid, 0
	for i < mid && j < n {
		c, err := cmp(scratch[j], scratch[i])
		if err != nil {
			copy(items, scratch) // restore the pre merge permutation
			return err
		}
		if c < 0 {
			items[k] = scratch[j]
			j++
		} else {
			items[k] = scratch[i]
			i++
		}
		k++
	}
	k += copy(items[k:], scratch[i:mid])
	copy(items[k:], scratch[j:n])
	return nil
}

// QuickSort is an unstable three way quicksort with a median of three pivot
func QuickSort[T any](items []T, cmp CompareFunc[T]) error {
	for len(items) > insertionCutoff {
		lo, hi, err := partition(items, cmp)
		if err != nil {
			return err
		}
		// recurse into the smaller side, loop on the larger one
		if lo < len(items)-hi {
			if err := QuickSort(items[:lo], cmp); err != nil {
				return err
			}
			items = items[hi:]
		} else {
			if err := QuickSort(items[hi:], cmp); err != nil {
				return err
			}
			items = items[:lo]
		}
	}
	return insertionSort(items, cmp)
}

// partition splits items into [0,lo) before the pivot, [lo,hi) equal to it
// and [hi,n) after it. Both outer ranges are strictly shorter than items, so
// progress is made even for an inconsistent comparator.
func partition[T any](items []T, cmp CompareFunc[T]) (lo, hi int, err error) {
	n := len(items)
	p, err := medianOfThree(items, 0, n/2, n-1, cmp)
	if err != nil {
		return 0, 0, err
	}
	items[0], items[p] = items[p], items[0]
	pivot := items[0]

	lt, i, gt := 1, 1, n-1
	for i <= gt {
		c, err := cmp(items[i], pivot)
		if err != nil {
			return 0, 0, err
		}
		switch {
		case c < 0:
			items[lt], items[i] = items[i], items[lt]
			lt++
			i++
		case c > 0:
			items[i], items[gt] = items[gt], items[i]
			gt--
		default:
			i++
		}
	}
	lt--
	items[0], items[lt] = items[lt], items[0]
	return lt, gt + 1, nil
}

func medianOfThree[T any](items []T, a, b, c int, cmp CompareFunc[T]) (int, error) {
	ab, err := cmp(items[a], items[b])
	if err != nil {
		return 0, err
	}
	bc, err := cmp(items[b], items[c])
	if err != nil {
		return 0, err
	}
	if (ab <= 0) == (bc <= 0) {
		return b, nil
	}
	ac, err := cmp(items[a], items[c])
	if err != nil {
		return 0, err
	}
	if (ab <= 0) == (ac <= 0) {
		return c, nil
	}
	return a, nil
}

func insertionSort[T any](items []T, cmp CompareFunc[T]) error {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0; j-- {
			c, err := cmp(items[j-1], items[j])
			if err != nil {
				return err
			}
			if c <= 0 {
				break
			}
			items[j-1], items[j] = items[j], items[j-1]
		}
	}
	return nil
}
