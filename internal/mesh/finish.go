package mesh

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-mesh/internal/logger"
	"github.com/Faultbox/midgard-mesh/internal/primitive"
)

// Finish packs the groups of every LOD into the LOD index arrays. Groups are
// packed in material id order: triangles, then strips, then fans. A mesh
// with no LOD is cleared and counts as finished. Calling Finish again
// without new batches does nothing.
func (m *Mesh) Finish() {
	if m.finished {
		return
	}
	if m.data.LodCount() == 0 {
		m.Clear()
		m.finished = true
		return
	}
	m.data.ResetIndices()
	for _, lod := range m.lods() {
		for _, g := range m.groupsOf(lod) {
			g.SetTrianglesOffset(m.data.AppendIndices(lod, g.Pending(primitive.Triangles)))
			g.SetStripsBaseOffset(m.data.AppendIndices(lod, g.Pending(primitive.Strip)))
			g.SetFansBaseOffset(m.data.AppendIndices(lod, g.Pending(primitive.Fan)))
			g.Finish()
		}
	}
	m.finished = true
	m.bbox = nil
	m.BoundingBox()

	logger.Debug("mesh finished",
		zap.String("mesh", m.name),
		zap.Int("lods", m.data.LodCount()),
		zap.Int("vertices", m.data.VertexCount()),
		zap.Int("faces", m.data.TrianglesCount(0)))
}
