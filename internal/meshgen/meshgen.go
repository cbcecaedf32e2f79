// Package meshgen builds finished sample meshes.
package meshgen

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/Faultbox/midgard-mesh/internal/material"
	"github.com/Faultbox/midgard-mesh/internal/mesh"
	"github.com/Faultbox/midgard-mesh/pkg/math"
)

// ErrResolution reports a sphere too coarse to close.
var ErrResolution = errors.New("sphere resolution too low")

// Sphere builds a UV sphere centered on the origin. Each LOD halves the
// rings and segments of the previous one. LOD 0 rows are triangle strips,
// coarser rows plain triangles, and both caps triangle fans. Rings in the
// upper half use north, the others south.
func Sphere(name string, radius float32, rings, segments, lods int, north, south *material.Material) (*mesh.Mesh, error) {
	if lods < 1 || rings>>(lods-1) < 2 || segments>>(lods-1) < 3 {
		return nil, errors.Wrapf(ErrResolution, "%d rings, %d segments over %d lods", rings, segments, lods)
	}
	m := mesh.New(name)
	for lod := range lods {
		rr, ss := rings>>lod, segments>>lod
		base := uint32(m.VertexCount())
		positions := make([]float32, 0, (rr+1)*(ss+1)*3)
		normals := make([]float32, 0, (rr+1)*(ss+1)*3)
		for i := 0; i <= rr; i++ {
			phi := math32.Pi * float32(i) / float32(rr)
			for j := 0; j <= ss; j++ {
				theta := 2 * math32.Pi * float32(j) / float32(ss)
				n := [3]float32{math32.Sin(phi) * math32.Cos(theta), math32.Cos(phi), math32.Sin(phi) * math32.Sin(theta)}
				positions = append(positions, n[0]*radius, n[1]*radius, n[2]*radius)
				normals = append(normals, n[:]...)
			}
		}
		m.AddVertices(positions)
		m.AddNormals(normals)

		v := func(i, j int) uint32 { return base + uint32(i*(ss+1)+j) }
		accuracy := float64(lod) / float64(lods)
		matOf := func(ring int) *material.Material {
			if ring < rr/2 {
				return north
			}
			return south
		}

		top := []uint32{v(0, 0)}
		for j := ss; j >= 0; j-- {
			top = append(top, v(1, j))
		}
		if _, err := m.AddTrianglesFan(north, top, lod, accuracy); err != nil {
			return nil, err
		}

		var tris []uint32
		for i := 1; i < rr-1; i++ {
			if lod == 0 {
				strip := make([]uint32, 0, 2*(ss+1))
				for j := 0; j <= ss; j++ {
					strip = append(strip, v(i+1, j), v(i, j))
				}
				if _, err := m.AddTrianglesStrip(matOf(i), strip, lod, accuracy); err != nil {
					return nil, err
				}
				continue
			}
			tris = tris[:0]
			for j := 0; j < ss; j++ {
				a0, a1, b0, b1 := v(i, j), v(i, j+1), v(i+1, j), v(i+1, j+1)
				tris = append(tris, b0, a0, b1, a1, b1, a0)
			}
			if _, err := m.AddTriangles(matOf(i), tris, lod, accuracy); err != nil {
				return nil, err
			}
		}

		bottom := []uint32{v(rr, 0)}
		for j := 0; j <= ss; j++ {
			bottom = append(bottom, v(rr-1, j))
		}
		if _, err := m.AddTrianglesFan(south, bottom, lod, accuracy); err != nil {
			return nil, err
		}
	}
	m.Finish()
	return m, nil
}

// Box builds an axis aligned box with four vertices per face, so normals
// stay flat.
func Box(name string, lo, hi math.Vec3, mat *material.Material) (*mesh.Mesh, error) {
	c := func(x, y, z int) [3]float32 {
		pick := func(i int, a, b float32) float32 {
			if i == 0 {
				return a
			}
			return b
		}
		return [3]float32{pick(x, lo.X, hi.X), pick(y, lo.Y, hi.Y), pick(z, lo.Z, hi.Z)}
	}
	faces := []struct {
		n       [3]float32
		corners [4][3]float32
	}{
		{[3]float32{-1, 0, 0}, [4][3]float32{c(0, 0, 0), c(0, 0, 1), c(0, 1, 1), c(0, 1, 0)}},
		{[3]float32{1, 0, 0}, [4][3]float32{c(1, 0, 0), c(1, 1, 0), c(1, 1, 1), c(1, 0, 1)}},
		{[3]float32{0, -1, 0}, [4][3]float32{c(0, 0, 0), c(1, 0, 0), c(1, 0, 1), c(0, 0, 1)}},
		{[3]float32{0, 1, 0}, [4][3]float32{c(0, 1, 0), c(0, 1, 1), c(1, 1, 1), c(1, 1, 0)}},
		{[3]float32{0, 0, -1}, [4][3]float32{c(0, 0, 0), c(0, 1, 0), c(1, 1, 0), c(1, 0, 0)}},
		{[3]float32{0, 0, 1}, [4][3]float32{c(0, 0, 1), c(1, 0, 1), c(1, 1, 1), c(0, 1, 1)}},
	}
	var positions, normals, texels []float32
	var idx []uint32
	for _, f := range faces {
		b := uint32(len(positions) / 3)
		for _, p := range f.corners {
			positions = append(positions, p[:]...)
			normals = append(normals, f.n[:]...)
		}
		texels = append(texels, 0, 0, 1, 0, 1, 1, 0, 1)
		idx = append(idx, b, b+1, b+2, b, b+2, b+3)
	}
	m := mesh.New(name)
	m.AddVertices(positions)
	m.AddNormals(normals)
	m.AddTexels(texels)
	if _, err := m.AddTriangles(mat, idx, 0, 0); err != nil {
		return nil, err
	}
	m.Finish()
	return m, nil
}
