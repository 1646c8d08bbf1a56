package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// sliceRoot roots a fixed list of values
type sliceRoot []Value

func (r sliceRoot) Mark(visit Visitor) {
	for _, v := range r {
		visit(v)
	}
}

func TestHeapCollect(t *testing.T) {
	h := NewHeap()
	kept := h.NewObject("Object")
	dropped := h.NewObject("Object")
	nested := h.NewObject("Object")
	kept.Inner = sliceRoot{FromObject(nested), String("x")}

	freed := h.Collect(sliceRoot{FromObject(kept), Int(1)})

	assert.Equal(t, 1, freed)
	assert.Equal(t, 2, h.Live())
	assert.True(t, kept.Marked())
	assert.True(t, nested.Marked())
	assert.False(t, dropped.Marked())

	// second pass without roots frees everything
	assert.Equal(t, 2, h.Collect())
	assert.Equal(t, 0, h.Live())
	assert.Equal(t, 3, h.Collected())
}

func TestHeapVisitHandlesCycles(t *testing.T) {
	h := NewHeap()
	a := h.NewObject("Object")
	b := h.NewObject("Object")
	a.Inner = sliceRoot{FromObject(b)}
	b.Inner = sliceRoot{FromObject(a)}

	assert.Equal(t, 0, h.Collect(sliceRoot{FromObject(a)}))
	assert.True(t, b.Marked())
}

func TestHeapExtraMemoryCost(t *testing.T) {
	h := NewHeap()
	h.ReportExtraMemoryCost(128)
	h.ReportExtraMemoryCost(64)
	assert.Equal(t, 192, h.ExtraMemoryCost())
	h.Collect()
	assert.Equal(t, 0, h.ExtraMemoryCost())
}
