package mesh

import (
	"maps"
	"slices"

	"github.com/pkg/errors"

	"github.com/Faultbox/midgard-mesh/internal/primitive"
	"github.com/Faultbox/midgard-mesh/pkg/math"
)

// LodCount returns the number of LODs.
func (m *Mesh) LodCount() int { return m.data.LodCount() }

// FaceCount returns the number of triangles added at lod, strips and fans
// counted as the triangles they expand to.
func (m *Mesh) FaceCount(lod int) int { return m.data.TrianglesCount(lod) }

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int { return m.data.VertexCount() }

// NormalCount returns the number of normals.
func (m *Mesh) NormalCount() int { return m.data.NormalCount() }

// PrimitiveCount returns the number of primitives of LOD 0.
func (m *Mesh) PrimitiveCount() int {
	n := 0
	for _, g := range m.groups[0] {
		for _, k := range primitive.Kinds {
			n += len(g.IDs(k))
		}
	}
	return n
}

// Accuracy returns the accuracy lod was created with.
func (m *Mesh) Accuracy(lod int) float64 { return m.data.Accuracy(lod) }

// ContainsMaterial reports whether lod holds a group of material matID.
func (m *Mesh) ContainsMaterial(lod int, matID uint32) bool {
	_, ok := m.groups[lod][matID]
	return ok
}

// MaterialIDsOfLod returns the material ids with a group at lod, ascending.
func (m *Mesh) MaterialIDsOfLod(lod int) []uint32 {
	return slices.Sorted(maps.Keys(m.groups[lod]))
}

func (m *Mesh) ContainsTriangles(lod int, matID uint32) bool {
	return m.contains(lod, matID, primitive.Triangles)
}

func (m *Mesh) ContainsStrips(lod int, matID uint32) bool {
	return m.contains(lod, matID, primitive.Strip)
}

func (m *Mesh) ContainsFans(lod int, matID uint32) bool {
	return m.contains(lod, matID, primitive.Fan)
}

func (m *Mesh) contains(lod int, matID uint32, k primitive.Kind) bool {
	g, ok := m.groups[lod][matID]
	return ok && g.Contains(k)
}

func (m *Mesh) group(lod int, matID uint32) (*primitive.Group, error) {
	g, ok := m.groups[lod][matID]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "lod %d material %d", lod, matID)
	}
	return g, nil
}

// runs returns one index slice per batch of kind k. Slices alias the LOD
// array or the pending list and must not be modified.
func (m *Mesh) runs(g *primitive.Group, lod int, k primitive.Kind) [][]uint32 {
	sizes := g.Sizes(k)
	out := make([][]uint32, 0, len(sizes))
	if g.IsFinished() {
		packed := m.data.Indices(lod)
		for i, off := range g.Offsets(k) {
			out = append(out, packed[off:off+sizes[i]])
		}
		return out
	}
	pending := g.Pending(k)
	at := 0
	for _, s := range sizes {
		out = append(out, pending[at:at+s])
		at += s
	}
	return out
}

func (m *Mesh) index(lod int, matID uint32, k primitive.Kind) ([]uint32, error) {
	g, err := m.group(lod, matID)
	if err != nil {
		return nil, err
	}
	if !g.Contains(k) {
		return nil, errors.Wrapf(ErrNotFound, "lod %d material %d has no %s", lod, matID, k)
	}
	return slices.Concat(m.runs(g, lod, k)...), nil
}

// TrianglesIndex returns the triangle indices of material matID at lod.
func (m *Mesh) TrianglesIndex(lod int, matID uint32) ([]uint32, error) {
	return m.index(lod, matID, primitive.Triangles)
}

// StripsIndex returns the indices of every strip of material matID at lod,
// concatenated. StripSizes splits them.
func (m *Mesh) StripsIndex(lod int, matID uint32) ([]uint32, error) {
	return m.index(lod, matID, primitive.Strip)
}

// FansIndex returns the indices of every fan of material matID at lod,
// concatenated.
func (m *Mesh) FansIndex(lod int, matID uint32) ([]uint32, error) {
	return m.index(lod, matID, primitive.Fan)
}

// StripSizes returns the index count of each strip of material matID at lod.
func (m *Mesh) StripSizes(lod int, matID uint32) []int {
	if g, ok := m.groups[lod][matID]; ok {
		return g.StripSizes()
	}
	return nil
}

// FanSizes returns the index count of each fan of material matID at lod.
func (m *Mesh) FanSizes(lod int, matID uint32) []int {
	if g, ok := m.groups[lod][matID]; ok {
		return g.FanSizes()
	}
	return nil
}

func (m *Mesh) NumberOfTriangles(lod int, matID uint32) int {
	if g, ok := m.groups[lod][matID]; ok {
		return g.TrianglesSize() / 3
	}
	return 0
}

func (m *Mesh) NumberOfStrips(lod int, matID uint32) int { return len(m.StripSizes(lod, matID)) }
func (m *Mesh) NumberOfFans(lod int, matID uint32) int   { return len(m.FanSizes(lod, matID)) }

// EquivalentTrianglesIndex returns the triangles, strips and fans of material
// matID at lod as a plain triangle list.
func (m *Mesh) EquivalentTrianglesIndex(lod int, matID uint32) ([]uint32, error) {
	g, err := m.group(lod, matID)
	if err != nil {
		return nil, err
	}
	out := slices.Concat(m.runs(g, lod, primitive.Triangles)...)
	for _, strip := range m.runs(g, lod, primitive.Strip) {
		out = appendStrip(out, strip)
	}
	for _, fan := range m.runs(g, lod, primitive.Fan) {
		out = appendFan(out, fan)
	}
	return out, nil
}

// appendStrip expands a strip: the first three indices, then for each
// further index j, (j, j-1, j-2) when j is odd and (j, j-2, j-1) when even.
func appendStrip(out, strip []uint32) []uint32 {
	if len(strip) < 3 {
		return out
	}
	out = append(out, strip[0], strip[1], strip[2])
	for j := 3; j < len(strip); j++ {
		if j%2 != 0 {
			out = append(out, strip[j], strip[j-1], strip[j-2])
		} else {
			out = append(out, strip[j], strip[j-2], strip[j-1])
		}
	}
	return out
}

func appendFan(out, fan []uint32) []uint32 {
	for j := 1; j+1 < len(fan); j++ {
		out = append(out, fan[0], fan[j], fan[j+1])
	}
	return out
}

// MaterialOfPrimitiveID returns the material of the primitive id at lod.
// Only LOD 0 primitives carry ids.
func (m *Mesh) MaterialOfPrimitiveID(id uint32, lod int) (uint32, error) {
	if id != 0 {
		for _, g := range m.groupsOf(lod) {
			if g.ContainsID(id) {
				return g.MaterialID(), nil
			}
		}
	}
	return 0, errors.Wrapf(ErrNotFound, "primitive %d at lod %d", id, lod)
}

// PrimitiveIDs returns the primitive ids of LOD 0 in ascending order.
func (m *Mesh) PrimitiveIDs() []uint32 {
	var out []uint32
	for _, g := range m.groups[0] {
		for _, k := range primitive.Kinds {
			out = append(out, g.IDs(k)...)
		}
	}
	slices.Sort(out)
	return out
}

// CurrentLod returns the LOD drawn by Draw.
func (m *Mesh) CurrentLod() int { return m.currentLod }

// SetCurrentLod selects the drawn LOD as a percentage of the LOD count:
// 0 is the finest LOD and 100 the coarsest.
func (m *Mesh) SetCurrentLod(percent int) {
	n := m.data.LodCount()
	if percent <= 0 || n == 0 {
		m.currentLod = 0
		return
	}
	lod := int(float64(percent) / 100 * float64(n))
	m.currentLod = min(lod, n-1)
}

// BoundingBox returns the box of the positions and the wire data.
func (m *Mesh) BoundingBox() math.Box {
	if m.bbox == nil {
		b := m.data.BoundingBox().CombineBox(m.wire.BoundingBox())
		m.bbox = &b
	}
	return *m.bbox
}
