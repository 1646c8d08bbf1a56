package util

import (
	"errors"
	"math/rand"
	"sort"
	"testing"
)

func intCompare(a, b int) (int, error) {
	return a - b, nil
}

type pair struct {
	key, seq int
}

func sortAlgorithms() map[string]func([]int, CompareFunc[int]) error {
	return map[string]func([]int, CompareFunc[int]) error{
		"MergeSort": MergeSort[int],
		"QuickSort": QuickSort[int],
		"SortFunc":  SortFunc[int],
	}
}

// TestSortOrders checks that every algorithm sorts inputs of various shapes
func TestSortOrders(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	inputs := map[string][]int{
		"empty":    {},
		"single":   {1},
		"sorted":   {1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
		"reversed": {15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
		"equal":    make([]int, 100),
	}
	random := make([]int, 5000)
	for i := range random {
		random[i] = rng.Intn(500)
	}
	inputs["random"] = random

	for algoName, algo := range sortAlgorithms() {
		for inputName, input := range inputs {
			items := append([]int(nil), input...)
			if err := algo(items, intCompare); err != nil {
				t.Fatalf("%s(%s) returned error: %v", algoName, inputName, err)
			}
			if !sort.IntsAreSorted(items) {
				t.Errorf("%s(%s) did not sort the input", algoName, inputName)
			}
		}
	}
}

// TestSortFuncLargeInput exercises the quicksort path of SortFunc
func TestSortFuncLargeInput(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	items := make([]int, MergeSortCutoff+500)
	for i := range items {
		items[i] = rng.Int()
	}
	if err := SortFunc(items, func(a, b int) (int, error) {
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		}
		return 0, nil
	}); err != nil {
		t.Fatalf("SortFunc returned error: %v", err)
	}
	if !sort.IntsAreSorted(items) {
		t.Error("SortFunc did not sort the input")
	}
}

// TestMergeSortStable verifies that equal keys keep their input order
func TestMergeSortStable(t *testing.T) {
	items := make([]pair, 1000)
	for i := range items {
		items[i] = pair{key: (i * 7) % 10, seq: i}
	}
	err := MergeSort(items, func(a, b pair) (int, error) { return a.key - b.key, nil })
	if err != nil {
		t.Fatalf("MergeSort returned error: %v", err)
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].key == items[i].key && items[i-1].seq > items[i].seq {
			t.Fatalf("MergeSort is not stable at %d: %v before %v", i, items[i-1], items[i])
		}
	}
}

// TestSortErrorPropagation checks that a failing comparator aborts the sort
// and that the slice still holds a permutation of its input
func TestSortErrorPropagation(t *testing.T) {
	boom := errors.New("boom")
	for algoName, algo := range sortAlgorithms() {
		items := make([]int, 200)
		for i := range items {
			items[i] = len(items) - i
		}
		calls := 0
		err := algo(items, func(a, b int) (int, error) {
			calls++
			if calls == 150 {
				return 0, boom
			}
			return a - b, nil
		})
		if !errors.Is(err, boom) {
			t.Errorf("%s: expected comparator error, got %v", algoName, err)
		}

		seen := make(map[int]bool, len(items))
		for _, v := range items {
			seen[v] = true
		}
		if len(seen) != len(items) {
			t.Errorf("%s: slice is no longer a permutation of its input after an aborted sort", algoName)
		}
	}
}

// TestSortInconsistentComparator makes sure random answers never break the sort
func TestSortInconsistentComparator(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for algoName, algo := range sortAlgorithms() {
		items := make([]int, 3000)
		for i := range items {
			items[i] = i
		}
		err := algo(items, func(a, b int) (int, error) { return rng.Intn(3) - 1, nil })
		if err != nil {
			t.Fatalf("%s returned error: %v", algoName, err)
		}
		sorted := append([]int(nil), items...)
		sort.Ints(sorted)
		for i, v := range sorted {
			if v != i {
				t.Fatalf("%s lost or duplicated elements", algoName)
			}
		}
	}
}
