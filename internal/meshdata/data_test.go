package meshdata

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-mesh/internal/gpu"
	"github.com/Faultbox/midgard-mesh/pkg/encoding"
	"github.com/Faultbox/midgard-mesh/pkg/math"
)

func quad() *Data {
	d := New()
	d.AddPositions([]float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0})
	d.AddNormals([]float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1})
	d.EnsureLod(0, 0)
	d.AppendIndices(0, []uint32{0, 1, 2, 2, 3, 0})
	d.TrianglesAdded(0, 2)
	return d
}

func TestAddReturnsFirstVertex(t *testing.T) {
	d := New()
	assert.Equal(t, 0, d.AddPositions([]float32{0, 0, 0, 1, 1, 1}))
	assert.Equal(t, 2, d.AddPositions([]float32{2, 2, 2}))
	assert.Equal(t, 0, d.AddTexels([]float32{0, 0, 1, 1}))
	assert.Equal(t, 2, d.AddTexels([]float32{0.5, 0.5}))
	assert.Equal(t, 0, d.AddColors([]float32{1, 0, 0, 1}))
	assert.Equal(t, 3, d.VertexCount())
}

func TestEnsureLod(t *testing.T) {
	d := New()
	d.EnsureLod(2, 0.5)
	d.EnsureLod(0, 0.1)
	d.EnsureLod(2, 0.9)

	assert.Equal(t, 3, d.LodCount())
	assert.Equal(t, 0.0, d.Accuracy(0), "existing LOD keeps its accuracy")
	assert.Equal(t, 0.0, d.Accuracy(1))
	assert.Equal(t, 0.5, d.Accuracy(2))

	_, err := d.Lod(3)
	assert.ErrorIs(t, err, ErrNoLod)
}

func TestAppendIndicesOffsets(t *testing.T) {
	d := New()
	d.EnsureLod(0, 0)
	assert.Equal(t, 0, d.AppendIndices(0, []uint32{0, 1, 2}))
	assert.Equal(t, 3, d.AppendIndices(0, []uint32{3, 4, 5, 6}))
	assert.Equal(t, 7, d.IndexSize(0))

	d.ResetIndices()
	assert.Equal(t, 0, d.IndexSize(0))
}

func TestTransformVertices(t *testing.T) {
	d := quad()
	d.TransformVertices(math.Translate(1, 2, 3).Mul(math.Scale(2, 2, 2)))

	assert.Equal(t, math.Vec3{X: 3, Y: 2, Z: 3}, d.Position(1))
	n := d.Normal(0)
	assert.InDelta(t, 1, n.Z, 1e-6, "normals keep unit length under scale")
	assert.InDelta(t, 0, n.X, 1e-6)

	d.ReverseNormals()
	assert.InDelta(t, -1, d.Normal(0).Z, 1e-6)
}

func TestBounds(t *testing.T) {
	d := quad()
	box := d.BoundingBox()
	require.False(t, box.IsEmpty())
	assert.Equal(t, math.Vec3{}, box.Min)
	assert.Equal(t, math.Vec3{X: 1, Y: 1}, box.Max)

	assert.True(t, New().BoundingBox().IsEmpty())
}

func TestUploadIsLazy(t *testing.T) {
	d := quad()
	rec := gpu.NewRecorder(true)

	d.Upload(rec)
	assert.True(t, d.Uploaded())
	assert.Equal(t, 3, rec.Created, "positions, normals and one LOD")
	fills := rec.Fills

	d.Upload(rec)
	assert.Equal(t, fills, rec.Fills, "current copy is not refilled")

	d.Invalidate()
	d.Upload(rec)
	assert.Equal(t, 3, rec.Created, "buffers are reused")
	assert.Equal(t, 2*fills, rec.Fills)

	d.Release(rec)
	assert.Equal(t, 0, rec.LiveBuffers())
	assert.False(t, d.Uploaded())
	assert.Empty(t, rec.Errors)
}

func TestBindPaths(t *testing.T) {
	for _, vbo := range []bool{false, true} {
		d := quad()
		rec := gpu.NewRecorder(vbo)
		d.Upload(rec)
		d.Bind(rec, 0, false)
		rec.DrawElements(gpu.Triangles, 3, d.Offset(rec, 0, 3))
		d.Unbind(rec)

		require.Empty(t, rec.Errors)
		require.Len(t, rec.Draws, 1)
		assert.Equal(t, []uint32{2, 3, 0}, rec.Draws[0].Indices)
		assert.Equal(t, vbo, rec.Draws[0].Buffered)
	}
}

func TestEncodeDecode(t *testing.T) {
	d := quad()
	d.AddTexels([]float32{0, 0, 1, 0, 1, 1, 0, 1})
	d.EnsureLod(1, 0.25)
	d.AppendIndices(1, []uint32{0, 1, 2})

	var buf bytes.Buffer
	require.NoError(t, d.Encode(encoding.NewWriter(&buf)))

	got := New()
	require.NoError(t, got.Decode(encoding.NewReader(&buf)))
	assert.Equal(t, d.Positions(), got.Positions())
	assert.Equal(t, d.Normals(), got.Normals())
	assert.Equal(t, d.Texels(), got.Texels())
	assert.Equal(t, 2, got.LodCount())
	assert.Equal(t, 0.25, got.Accuracy(1))
	assert.Equal(t, 2, got.TrianglesCount(0))
	assert.Equal(t, d.Indices(0), got.Indices(0))
}

func TestDecodeRejectsOutOfRangeIndex(t *testing.T) {
	d := quad()
	d.AppendIndices(0, []uint32{9})
	var buf bytes.Buffer
	require.NoError(t, d.Encode(encoding.NewWriter(&buf)))
	assert.ErrorIs(t, New().Decode(encoding.NewReader(&buf)), ErrIndexRange)
}

func TestCheckIndices(t *testing.T) {
	d := quad()
	require.NoError(t, d.CheckIndices(0))
	require.NoError(t, d.CheckIndices(3), "missing lod has no indices")

	d.AppendIndices(0, []uint32{4})
	assert.ErrorIs(t, d.CheckIndices(0), ErrIndexRange)

	d.AddPositions([]float32{2, 2, 2})
	assert.NoError(t, d.CheckIndices(0), "vertex added later makes the index valid")
}

func TestClone(t *testing.T) {
	d := quad()
	c := d.Clone()
	c.TransformVertices(math.Translate(5, 0, 0))
	assert.Equal(t, float32(0), d.Positions()[0])
	assert.Equal(t, d.Indices(0), c.Indices(0))
}

func TestClearKeepsBuffersUntilRelease(t *testing.T) {
	d := quad()
	rec := gpu.NewRecorder(true)
	d.Upload(rec)
	require.Equal(t, 3, rec.LiveBuffers())

	d.Clear()
	assert.True(t, d.IsEmpty())
	assert.True(t, d.VBOUsed())
	assert.Equal(t, 3, rec.LiveBuffers(), "nothing is deleted without a backend")

	d.Release(rec)
	assert.Equal(t, 0, rec.LiveBuffers())
	assert.Empty(t, rec.Errors)
}
