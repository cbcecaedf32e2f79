package mesh

import (
	"github.com/pkg/errors"

	"github.com/Faultbox/midgard-mesh/pkg/math"
)

// TransformVertices moves positions and wire data by mat and rotates normals
// by its rotation part. The identity leaves the mesh untouched.
func (m *Mesh) TransformVertices(mat math.Mat4) {
	if mat.IsIdentity() {
		return
	}
	m.data.TransformVertices(mat)
	m.wire.TransformVertices(mat)
	m.bbox = nil
}

// ReverseNormals negates every normal.
func (m *Mesh) ReverseNormals() {
	m.data.ReverseNormals()
}

// checkIndices returns ErrCorrupt when a packed index of lod addresses no
// vertex.
func (m *Mesh) checkIndices(lod int) error {
	if err := m.data.CheckIndices(lod); err != nil {
		return errors.Wrapf(ErrCorrupt, "mesh %q: %v", m.name, err)
	}
	return nil
}

// Volume returns the signed volume enclosed by the LOD 0 triangles.
func (m *Mesh) Volume() (float64, error) {
	tris, err := m.triangles()
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, t := range tris {
		v1, v2, v3 := t[0], t[1], t[2]
		sum += (float64(v2.Y-v1.Y)*float64(v3.Z-v1.Z) - float64(v2.Z-v1.Z)*float64(v3.Y-v1.Y)) *
			float64(v1.X+v2.X+v3.X)
	}
	return sum / 6, nil
}

// triangles returns the LOD 0 triangles of every material in material order.
func (m *Mesh) triangles() ([][3]math.Vec3, error) {
	if err := m.checkIndices(0); err != nil {
		return nil, err
	}
	var out [][3]math.Vec3
	for _, g := range m.groupsOf(0) {
		idx, err := m.EquivalentTrianglesIndex(0, g.MaterialID())
		if err != nil {
			continue
		}
		for i := 0; i+2 < len(idx); i += 3 {
			out = append(out, [3]math.Vec3{
				m.data.Position(idx[i]),
				m.data.Position(idx[i+1]),
				m.data.Position(idx[i+2]),
			})
		}
	}
	return out, nil
}
