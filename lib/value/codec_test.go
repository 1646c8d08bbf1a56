package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryRoundTrip(t *testing.T) {
	values := []Value{
		Empty, Undefined, Null, True, False,
		Int(0), Number(-12.75), Number(math.Inf(-1)), Number(math.NaN()),
		String(""), String("hello, wörld"),
	}

	var buf []byte
	var err error
	for _, v := range values {
		buf, err = AppendBinary(buf, v)
		require.NoError(t, err)
	}

	rest := buf
	for _, want := range values {
		got, n, err := DecodeBinary(rest)
		require.NoError(t, err)
		assert.True(t, Same(want, got), "want %s, got %s", want, got)
		rest = rest[n:]
	}
	assert.Empty(t, rest)
}

func TestBinaryRejectsObjects(t *testing.T) {
	h := NewHeap()
	buf, err := AppendBinary([]byte{0xAA}, FromObject(h.NewObject("Object")))
	assert.ErrorIs(t, err, ErrNotSerializable)
	assert.Equal(t, []byte{0xAA}, buf)
}

func TestBinaryInvalidData(t *testing.T) {
	cases := map[string][]byte{
		"empty":          {},
		"truncated bool": {byte(KindBool)},
		"short number":   {byte(KindNumber), 1, 2, 3},
		"short string":   {byte(KindString), 0, 0, 0, 5, 'a'},
		"unknown kind":   {0xFF},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeBinary(data)
			assert.ErrorIs(t, err, ErrInvalidEncoding)
		})
	}

	_, err := UnmarshalBinary([]byte{byte(KindNull), 0})
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestParseJSON(t *testing.T) {
	cases := map[string]Value{
		`undefined`: Undefined,
		`null`:      Null,
		`true`:      True,
		` 12.5 `:    Number(12.5),
		`"x"`:       String("x"),
	}
	for in, want := range cases {
		got, err := ParseJSON(in)
		require.NoError(t, err, in)
		assert.True(t, Same(want, got), "ParseJSON(%q) = %s", in, got)
	}

	for _, in := range []string{`[1]`, `{"a":1}`, `abc`, ``} {
		_, err := ParseJSON(in)
		assert.Error(t, err, in)
	}
}
