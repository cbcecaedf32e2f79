package mesh

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-mesh/internal/logger"
	"github.com/Faultbox/midgard-mesh/internal/primitive"
)

// indexMap renumbers source vertex indices densely in order of first use.
type indexMap struct {
	target map[uint32]uint32
	source []uint32
}

func newIndexMap() *indexMap {
	return &indexMap{target: make(map[uint32]uint32)}
}

func (r *indexMap) apply(idx []uint32) []uint32 {
	out := make([]uint32, len(idx))
	for i, s := range idx {
		t, ok := r.target[s]
		if !ok {
			t = uint32(len(r.source))
			r.target[s] = t
			r.source = append(r.source, s)
		}
		out[i] = t
	}
	return out
}

// MeshOfLod returns a new mesh holding only the geometry of lod, as LOD 0,
// with vertices renumbered from 0 in order of first reference.
func (m *Mesh) MeshOfLod(lod int) (*Mesh, error) {
	if _, ok := m.groups[lod]; !ok {
		return nil, errors.Wrapf(ErrInvalidLod, "mesh %q has no lod %d", m.name, lod)
	}
	if err := m.checkIndices(lod); err != nil {
		return nil, err
	}
	out := New(fmt.Sprintf("%s-LOD-%d", m.name, lod))
	out.SetVBOUsage(m.data.VBOUsed())
	remap := newIndexMap()
	if err := m.copyIndex(lod, out, 0, remap); err != nil {
		return nil, err
	}
	m.copyBulkData(out, remap)
	out.Finish()

	logger.Debug("mesh lod extracted",
		zap.String("mesh", m.name), zap.Int("lod", lod), zap.Int("vertices", out.VertexCount()))
	return out, nil
}

// MeshFromLod returns a new mesh whose LOD 0 is lod and whose coarser LODs
// follow as 1, 2, and so on.
func (m *Mesh) MeshFromLod(lod int) (*Mesh, error) {
	if _, ok := m.groups[lod]; !ok {
		return nil, errors.Wrapf(ErrInvalidLod, "mesh %q has no lod %d", m.name, lod)
	}
	for _, src := range m.lods() {
		if src < lod {
			continue
		}
		if err := m.checkIndices(src); err != nil {
			return nil, err
		}
	}
	out := New(fmt.Sprintf("%s-LOD-%d", m.name, lod))
	out.SetVBOUsage(m.data.VBOUsed())
	remap := newIndexMap()
	target := 1
	for _, src := range m.lods() {
		if src <= lod {
			continue
		}
		if err := m.copyIndex(src, out, target, remap); err != nil {
			return nil, err
		}
		target++
	}
	if err := m.copyIndex(lod, out, 0, remap); err != nil {
		return nil, err
	}
	m.copyBulkData(out, remap)
	out.Finish()

	logger.Debug("mesh built from lod",
		zap.String("mesh", m.name), zap.Int("lod", lod), zap.Int("lods", out.LodCount()))
	return out, nil
}

// copyIndex re-adds every batch of lod to out at targetLod with remapped
// indices, keeping the accuracy of lod. Triangles of a material go in as one
// batch; strips and fans one batch each.
func (m *Mesh) copyIndex(lod int, out *Mesh, targetLod int, remap *indexMap) error {
	accuracy := m.data.Accuracy(lod)
	for _, g := range m.groupsOf(lod) {
		mat := m.materials[g.MaterialID()]
		if g.ContainsTriangles() {
			idx, err := m.TrianglesIndex(lod, g.MaterialID())
			if err != nil {
				return err
			}
			if _, err := out.AddTriangles(mat, remap.apply(idx), targetLod, accuracy); err != nil {
				return err
			}
		}
		for _, strip := range m.runs(g, lod, primitive.Strip) {
			if _, err := out.AddTrianglesStrip(mat, remap.apply(strip), targetLod, accuracy); err != nil {
				return err
			}
		}
		for _, fan := range m.runs(g, lod, primitive.Fan) {
			if _, err := out.AddTrianglesFan(mat, remap.apply(fan), targetLod, accuracy); err != nil {
				return err
			}
		}
	}
	return nil
}

// copyBulkData copies the vertex attributes of the referenced source
// vertices into out in target index order. An attribute the source sets for
// some vertices only is zero for the others, so every attribute stays
// aligned with the positions.
func (m *Mesh) copyBulkData(out *Mesh, remap *indexMap) {
	positions := m.data.Positions()
	normals := m.data.Normals()
	texels := m.data.Texels()
	colors := m.data.Colors()

	n := len(remap.source)
	pos := make([]float32, 0, n*3)
	var nor, tex, col []float32
	for _, s := range remap.source {
		pos = append(pos, positions[s*3:s*3+3]...)
		if len(normals) > 0 {
			nor = appendAttribute(nor, normals, s, 3)
		}
		if len(texels) > 0 {
			tex = appendAttribute(tex, texels, s, 2)
		}
		if len(colors) > 0 {
			col = appendAttribute(col, colors, s, 4)
		}
	}
	out.AddVertices(pos)
	if len(nor) > 0 {
		out.AddNormals(nor)
	}
	if len(tex) > 0 {
		out.AddTexels(tex)
	}
	if len(col) > 0 {
		out.AddColors(col)
		out.colorPerVertex = m.colorPerVertex
	}
}

// appendAttribute appends the size components of vertex s, or zeros when
// src stops before it.
func appendAttribute(dst, src []float32, s uint32, size int) []float32 {
	at := int(s) * size
	if at+size <= len(src) {
		return append(dst, src[at:at+size]...)
	}
	return append(dst, make([]float32, size)...)
}
