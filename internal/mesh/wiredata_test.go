package mesh

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-mesh/internal/gpu"
	"github.com/Faultbox/midgard-mesh/pkg/encoding"
	"github.com/Faultbox/midgard-mesh/pkg/math"
)

func TestWireVertexGroups(t *testing.T) {
	w := NewWireData()
	a := w.AddVertexGroup([]float32{0, 0, 0, 1, 0, 0})
	b := w.AddVertexGroup([]float32{0, 1, 0, 0, 2, 0, 0, 3, 0})
	assert.Equal(t, uint32(1), a)
	assert.Equal(t, uint32(2), b)
	assert.Equal(t, []VertexGroup{{ID: 1, Offset: 0, Count: 2}, {ID: 2, Offset: 2, Count: 3}}, w.Groups())
	assert.Equal(t, []float32{0, 1, 0, 0, 2, 0, 0, 3, 0}, w.Points(w.Groups()[1]))

	other := NewWireData()
	other.AddVertexGroups(w, math.Translate(0, 0, 10))
	require.Equal(t, 2, other.VertexGroupCount())
	assert.Equal(t, []float32{0, 0, 10, 1, 0, 10}, other.Points(other.Groups()[0]))
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0}, w.Points(w.Groups()[0]), "source untouched")

	box := other.BoundingBox()
	assert.Equal(t, math.Vec3{X: 0, Y: 0, Z: 10}, box.Min)
	assert.Equal(t, math.Vec3{X: 1, Y: 3, Z: 10}, box.Max)
}

func TestWireEncodeDecode(t *testing.T) {
	w := NewWireData()
	w.AddVertexGroup([]float32{0, 0, 0, 1, 1, 1})
	w.AddVertexGroup([]float32{2, 2, 2, 3, 3, 3})

	var buf bytes.Buffer
	e := encoding.NewWriter(&buf)
	w.Encode(e)
	require.NoError(t, e.Err())

	got := NewWireData()
	require.NoError(t, got.Decode(encoding.NewReader(&buf)))
	assert.Equal(t, w.Groups(), got.Groups())
	assert.Equal(t, w.Positions(), got.Positions())
	assert.Equal(t, uint32(3), got.AddVertexGroup([]float32{4, 4, 4}), "ids continue after load")
}

func TestWireDecodeRejectsBadGroup(t *testing.T) {
	var buf bytes.Buffer
	e := encoding.NewWriter(&buf)
	e.Uint32(2)
	e.Floats([]float32{0, 0, 0})
	e.Uint32(1)
	e.Uint32(1)
	e.Int32(0)
	e.Int32(4)
	require.NoError(t, e.Err())

	assert.ErrorIs(t, NewWireData().Decode(encoding.NewReader(&buf)), ErrCorrupt)
}

func TestWireDrawPaths(t *testing.T) {
	for _, vbo := range []bool{false, true} {
		w := NewWireData()
		w.AddVertexGroup([]float32{0, 0, 0, 1, 0, 0, 1, 1, 0})
		w.AddVertexGroup([]float32{5, 5, 5, 6, 6, 6})
		rec := gpu.NewRecorder(vbo)

		w.Draw(rec)
		require.Empty(t, rec.Errors)
		require.Len(t, rec.Draws, 2)
		assert.Equal(t, gpu.LineStrip, rec.Draws[0].Primitive)
		assert.Equal(t, []uint32{0, 1, 2}, rec.Draws[0].Indices)
		assert.Equal(t, []uint32{3, 4}, rec.Draws[1].Indices)
		assert.Equal(t, w.Positions(), rec.Draws[1].Positions)

		w.Clear()
		w.Release(rec)
		assert.Equal(t, 0, rec.LiveBuffers(), "vbo %v", vbo)
	}
}
