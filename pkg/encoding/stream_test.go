package encoding

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamFields(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Uint32(0xA701)
	w.Int32(-7)
	w.Float64(0.25)
	w.Bool(true)
	w.String("cube")
	w.Floats([]float32{1, 2.5, -3})
	w.Uint32s(nil)
	w.Ints([]int{4, -1})
	require.NoError(t, w.Err())
	assert.Equal(t, int64(buf.Len()), w.Len())

	r := NewReader(&buf)
	assert.Equal(t, uint32(0xA701), r.Uint32())
	assert.Equal(t, int32(-7), r.Int32())
	assert.Equal(t, 0.25, r.Float64())
	assert.True(t, r.Bool())
	assert.Equal(t, "cube", r.String())
	assert.Equal(t, []float32{1, 2.5, -3}, r.Floats())
	assert.Nil(t, r.Uint32s())
	assert.Equal(t, []int{4, -1}, r.Ints())
	require.NoError(t, r.Err())
}

func TestStringIsNFC(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	// "e" followed by a combining acute accent.
	w.String("cafe\u0301")
	require.NoError(t, w.Err())

	r := NewReader(&buf)
	assert.Equal(t, "caf\u00e9", r.String())
}

func TestReaderTruncated(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Floats([]float32{1, 2, 3})
	data := buf.Bytes()[:buf.Len()-2]

	r := NewReader(bytes.NewReader(data))
	assert.Nil(t, r.Floats())
	assert.ErrorIs(t, r.Err(), ErrTruncated)

	// Sticky: later reads keep the first error.
	assert.Equal(t, uint32(0), r.Uint32())
	assert.ErrorIs(t, r.Err(), ErrTruncated)
}

func TestReaderLengthLimit(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Uint32(MaxElements + 1)

	r := NewReader(&buf)
	assert.Nil(t, r.Uint32s())
	assert.ErrorIs(t, r.Err(), ErrLengthLimit)
}
