package value

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToString(t *testing.T) {
	cases := []struct {
		in   Value
		want string
	}{
		{Undefined, "undefined"},
		{Empty, "undefined"},
		{Null, "null"},
		{True, "true"},
		{False, "false"},
		{Int(10), "10"},
		{Number(-0.0), "0"},
		{Number(math.Copysign(0, -1)), "0"},
		{Number(1.5), "1.5"},
		{Number(0.000001), "0.000001"},
		{Number(1e-7), "1e-7"},
		{Number(1e20), "100000000000000000000"},
		{Number(1e21), "1e+21"},
		{Number(-2.5e25), "-2.5e+25"},
		{Number(math.NaN()), "NaN"},
		{Number(math.Inf(1)), "Infinity"},
		{Number(math.Inf(-1)), "-Infinity"},
		{String("abc"), "abc"},
	}
	for _, c := range cases {
		got, err := ToString(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "ToString(%s)", c.in)
	}
}

func TestToStringObjectHook(t *testing.T) {
	h := NewHeap()

	plain := h.NewObject("Date")
	s, err := ToString(FromObject(plain))
	require.NoError(t, err)
	assert.Equal(t, "[object Date]", s)

	boom := errors.New("boom")
	failing := h.NewObject("Object")
	failing.ToStringFunc = func() (string, error) { return "", boom }
	_, err = ToString(FromObject(failing))
	assert.ErrorIs(t, err, boom)
}

func TestToUint32(t *testing.T) {
	cases := []struct {
		in   Value
		want uint32
	}{
		{Int(5), 5},
		{Number(-1), 4294967295},
		{Number(4294967296), 0},
		{Number(4294967297), 1},
		{Number(3.9), 3},
		{Number(-3.9), 4294967293},
		{Number(math.NaN()), 0},
		{Number(math.Inf(1)), 0},
		{String("42"), 42},
		{String(" 7 "), 7},
		{String("0x10"), 16},
		{String("abc"), 0},
		{Null, 0},
		{True, 1},
		{Undefined, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ToUint32(c.in), "ToUint32(%s)", c.in)
	}
}

func TestToNumberRejectsNonScriptForms(t *testing.T) {
	for _, s := range []string{"inf", "1_000", "0x1p3", "1e", "abc"} {
		assert.True(t, math.IsNaN(ToNumber(String(s))), "ToNumber(%q)", s)
	}
	assert.Equal(t, 0.0, ToNumber(String("")))
}

func TestSame(t *testing.T) {
	h := NewHeap()
	a, b := h.NewObject("Object"), h.NewObject("Object")

	assert.True(t, Same(FromObject(a), FromObject(a)))
	assert.False(t, Same(FromObject(a), FromObject(b)))
	assert.True(t, Same(Number(math.NaN()), Number(math.NaN())))
	assert.False(t, Same(Int(1), String("1")))
	assert.False(t, Same(Undefined, Empty))
	assert.True(t, Same(Null, FromObject(nil)))
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, Empty.IsEmpty())
	assert.False(t, Empty.IsDefined())
	assert.True(t, Undefined.IsUndefined())
	assert.False(t, Undefined.IsDefined())
	assert.True(t, Null.IsDefined())
	assert.True(t, String("").IsDefined())
}
