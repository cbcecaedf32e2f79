// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/Faultbox/midgard-mesh/internal/gpu"
	"github.com/Faultbox/midgard-mesh/pkg/math"
)

// BoxVertexCount is the number of vertices for a box wireframe (12 edges × 2).
const BoxVertexCount = 24

// DefaultBoxPadding is the default padding for selection boxes.
const DefaultBoxPadding = 0.02

// BoxLines creates line vertices for the wireframe of b grown by padding on
// all sides. Returns nil for an empty box, otherwise BoxVertexCount
// vertices, format: [x, y, z] per vertex.
func BoxLines(b math.Box, padding float32) []float32 {
	if b.IsEmpty() {
		return nil
	}
	minX, minY, minZ := b.Min.X-padding, b.Min.Y-padding, b.Min.Z-padding
	maxX, maxY, maxZ := b.Max.X+padding, b.Max.Y+padding, b.Max.Z+padding
	return []float32{
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}

// DrawBox draws the wireframe of b unlit in a flat color. Buffer bindings
// are left as they were.
func DrawBox(backend gpu.Backend, b math.Box, padding float32, rgba [4]float32) {
	lines := BoxLines(b, padding)
	if lines == nil {
		return
	}
	backend.SetLighting(false)
	backend.SetTexturing(false)
	backend.SetColor(rgba)
	backend.SetAttribute(gpu.Position, gpu.Position.Components(), lines)
	backend.DrawArrays(gpu.Lines, 0, BoxVertexCount)
	backend.DisableAttributes()
	backend.SetLighting(true)
}
