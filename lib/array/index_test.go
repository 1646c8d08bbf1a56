package array_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ValentinKolb/dArr/lib/array"
)

func TestParseIndex(t *testing.T) {
	tests := []struct {
		name  string
		index uint32
		ok    bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{"4294967294", 4294967294, true},
		{"4294967295", 0, false},
		{"10000000000", 0, false},
		{"01", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{" 1", 0, false},
		{"1.0", 0, false},
		{"", 0, false},
		{"length", 0, false},
	}
	for _, tt := range tests {
		index, ok := array.ParseIndex(tt.name)
		assert.Equal(t, tt.ok, ok, "ParseIndex(%q)", tt.name)
		assert.Equal(t, tt.index, index, "ParseIndex(%q)", tt.name)
	}
}

func TestIndexName(t *testing.T) {
	assert.Equal(t, "0", array.IndexName(0))
	assert.Equal(t, "4294967295", array.IndexName(0xFFFFFFFF))
	assert.True(t, array.IsArrayIndex(uint64(array.MaxArrayIndex)))
	assert.False(t, array.IsArrayIndex(uint64(array.MaxArrayIndex)+1))
}

func TestDensityHeuristic(t *testing.T) {
	assert.True(t, array.IsDenseEnoughForVector(80, 10))
	assert.True(t, array.IsDenseEnoughForVector(87, 10))
	assert.False(t, array.IsDenseEnoughForVector(88, 10))
	assert.True(t, array.IsDenseEnoughForVector(7, 0))
}
