package meshgen

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-mesh/internal/material"
	"github.com/Faultbox/midgard-mesh/pkg/math"
)

func TestSphere(t *testing.T) {
	north := material.New("north", [4]float32{1, 0, 0, 1})
	south := material.New("south", [4]float32{0, 0, 1, 1})
	m, err := Sphere("sphere", 2, 32, 64, 3, north, south)
	require.NoError(t, err)

	require.Equal(t, 3, m.LodCount())
	assert.True(t, m.IsFinished())
	for lod, res := range [][2]int{{32, 64}, {16, 32}, {8, 16}} {
		assert.Equal(t, 2*res[1]*(res[0]-1), m.FaceCount(lod), "lod %d", lod)
		assert.ElementsMatch(t, []uint32{north.ID(), south.ID()}, m.MaterialIDsOfLod(lod))
	}
	assert.InDelta(t, 0, m.Accuracy(0), 1e-9)
	assert.InDelta(t, 2.0/3, m.Accuracy(2), 1e-9)

	assert.Equal(t, 30, m.NumberOfStrips(0, north.ID())+m.NumberOfStrips(0, south.ID()), "one strip per inner row")
	assert.Equal(t, 1, m.NumberOfFans(0, north.ID()))
	assert.Equal(t, 1, m.NumberOfFans(0, south.ID()))
	assert.Zero(t, m.NumberOfStrips(1, north.ID()))

	want := 4.0 / 3 * stdmath.Pi * 8
	assert.InEpsilon(t, want, volumeOf(t, m), 0.02, "outward winding gives a positive volume")

	box := m.BoundingBox()
	assert.InDelta(t, 4, box.Size().X, 1e-3)
}

func TestSphereTooCoarse(t *testing.T) {
	mat := material.New("m", [4]float32{1, 1, 1, 1})
	_, err := Sphere("s", 1, 4, 8, 3, mat, mat)
	assert.ErrorIs(t, err, ErrResolution)
}

func TestBox(t *testing.T) {
	mat := material.New("m", [4]float32{1, 1, 1, 1})
	m, err := Box("box", math.Vec3{X: -1}, math.Vec3{X: 1, Y: 2, Z: 3}, mat)
	require.NoError(t, err)
	assert.Equal(t, 12, m.FaceCount(0))
	assert.Equal(t, 24, m.VertexCount())
	assert.InDelta(t, 12, volumeOf(t, m), 1e-4)
}

func volumeOf(t *testing.T, m interface{ Volume() (float64, error) }) float64 {
	t.Helper()
	v, err := m.Volume()
	require.NoError(t, err)
	return v
}
