package csg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-mesh/pkg/math"
)

// box returns an axis aligned box with outward faces tagged with mat.
func box(min, max math.Vec3, mat uint32) Model {
	c := func(x, y, z int) math.Vec3 {
		pick := func(i int, lo, hi float32) float32 {
			if i == 0 {
				return lo
			}
			return hi
		}
		return math.Vec3{X: pick(x, min.X, max.X), Y: pick(y, min.Y, max.Y), Z: pick(z, min.Z, max.Z)}
	}
	quads := []struct {
		n       math.Vec3
		corners [4]math.Vec3
	}{
		{math.Vec3{X: -1}, [4]math.Vec3{c(0, 0, 0), c(0, 0, 1), c(0, 1, 1), c(0, 1, 0)}},
		{math.Vec3{X: 1}, [4]math.Vec3{c(1, 0, 0), c(1, 1, 0), c(1, 1, 1), c(1, 0, 1)}},
		{math.Vec3{Y: -1}, [4]math.Vec3{c(0, 0, 0), c(1, 0, 0), c(1, 0, 1), c(0, 0, 1)}},
		{math.Vec3{Y: 1}, [4]math.Vec3{c(0, 1, 0), c(0, 1, 1), c(1, 1, 1), c(1, 1, 0)}},
		{math.Vec3{Z: -1}, [4]math.Vec3{c(0, 0, 0), c(0, 1, 0), c(1, 1, 0), c(1, 0, 0)}},
		{math.Vec3{Z: 1}, [4]math.Vec3{c(0, 0, 1), c(1, 0, 1), c(1, 1, 1), c(0, 1, 1)}},
	}
	var m Model
	for _, q := range quads {
		base := len(m.Vertices)
		for _, p := range q.corners {
			m.Vertices = append(m.Vertices, Vertex{Pos: p, Normal: q.n, MaterialID: mat})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

func volume(m Model) float32 {
	var v float32
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a := m.Vertices[m.Indices[i]].Pos
		b := m.Vertices[m.Indices[i+1]].Pos
		c := m.Vertices[m.Indices[i+2]].Pos
		v += a.Dot(b.Cross(c))
	}
	return v / 6
}

func materials(m Model) map[uint32]int {
	out := make(map[uint32]int)
	for _, v := range m.Vertices {
		out[v.MaterialID]++
	}
	return out
}

func unitBoxes() (Model, Model) {
	a := box(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1}, 1)
	b := box(math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, math.Vec3{X: 1.5, Y: 1.5, Z: 1.5}, 2)
	return a, b
}

func TestBoxVolume(t *testing.T) {
	a, _ := unitBoxes()
	assert.InDelta(t, 1, volume(a), 1e-5)
	assert.Equal(t, 12, a.TriangleCount())
}

func TestBooleanVolumes(t *testing.T) {
	tests := []struct {
		name string
		op   func(a, b Model) Model
		want float32
		mats []uint32
	}{
		{"intersection", Intersection, 0.125, []uint32{1, 2}},
		{"union", Union, 1.875, []uint32{1, 2}},
		{"difference", Difference, 0.875, []uint32{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := unitBoxes()
			out := tt.op(a, b)
			require.False(t, out.IsEmpty())
			assert.InDelta(t, tt.want, volume(out), 1e-4)
			got := materials(out)
			for _, id := range tt.mats {
				assert.Positive(t, got[id], "material %d", id)
			}
			assert.Len(t, got, len(tt.mats))
		})
	}
}

func TestDisjointBoxes(t *testing.T) {
	a := box(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1}, 1)
	b := box(math.Vec3{X: 5, Y: 5, Z: 5}, math.Vec3{X: 6, Y: 6, Z: 6}, 2)

	assert.True(t, Intersection(a, b).IsEmpty())
	assert.InDelta(t, 2, volume(Union(a, b)), 1e-5)
	diff := Difference(a, b)
	assert.InDelta(t, 1, volume(diff), 1e-5)
	assert.Equal(t, map[uint32]int{1: 36}, materials(diff))
}

func TestDifferenceNormalsFaceOutward(t *testing.T) {
	a, b := unitBoxes()
	out := Difference(a, b)
	for i := 0; i+2 < len(out.Indices); i += 3 {
		p0 := out.Vertices[out.Indices[i]]
		p1 := out.Vertices[out.Indices[i+1]]
		p2 := out.Vertices[out.Indices[i+2]]
		face := p1.Pos.Sub(p0.Pos).Cross(p2.Pos.Sub(p0.Pos))
		assert.Positive(t, face.Dot(p0.Normal), "winding and normal of triangle %d disagree", i/3)
	}
}

func TestDegenerateTrianglesAreDropped(t *testing.T) {
	m := Model{
		Vertices: []Vertex{{Pos: math.Vec3{}}, {Pos: math.Vec3{X: 1}}, {Pos: math.Vec3{X: 2}}},
		Indices:  []int{0, 1, 2, 0, 1, 7},
	}
	assert.Empty(t, polygonsOf(m))
}

func TestInterpolateKeepsMaterial(t *testing.T) {
	a := Vertex{Pos: math.Vec3{}, UV: [2]float32{0, 0}, MaterialID: 9}
	b := Vertex{Pos: math.Vec3{X: 2}, UV: [2]float32{1, 0.5}, MaterialID: 3}
	v := a.interpolate(b, 0.5)
	assert.Equal(t, math.Vec3{X: 1}, v.Pos)
	assert.Equal(t, [2]float32{0.5, 0.25}, v.UV)
	assert.Equal(t, uint32(9), v.MaterialID)
}
