package arr

import (
	"fmt"

	"github.com/ValentinKolb/dArr/lib/store"
	"github.com/pmezard/go-difflib/difflib"
)

// dumpArray renders the stored values of an array, one "index: value" line each
func dumpArray(s store.IStore, name string) ([]string, error) {
	indices, err := s.Indices(name)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(indices))
	for _, index := range indices {
		v, err := s.Get(name, index)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf("%d: %s\n", index, v))
	}
	return lines, nil
}

// diffArrays returns a unified diff of two arrays, empty if they hold the same values
func diffArrays(s store.IStore, a, b string, context int) (string, error) {
	linesA, err := dumpArray(s, a)
	if err != nil {
		return "", err
	}
	linesB, err := dumpArray(s, b)
	if err != nil {
		return "", err
	}
	if context < 0 {
		context = 0
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        linesA,
		B:        linesB,
		FromFile: a,
		ToFile:   b,
		Context:  context,
	})
}
