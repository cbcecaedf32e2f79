package mesh

import (
	"github.com/pkg/errors"

	"github.com/Faultbox/midgard-mesh/internal/gpu"
	"github.com/Faultbox/midgard-mesh/pkg/encoding"
	"github.com/Faultbox/midgard-mesh/pkg/math"
)

// VertexGroup is one line strip of wire data.
type VertexGroup struct {
	ID     uint32
	Offset int // first vertex
	Count  int
}

// WireData holds line strips drawn over a mesh: sharp edges and the
// provenance outlines CSG results carry.
type WireData struct {
	positions []float32
	groups    []VertexGroup
	nextID    uint32

	buffer   gpu.Buffer
	orphans  []gpu.Buffer
	uploaded bool
}

// NewWireData returns empty wire data.
func NewWireData() *WireData {
	return &WireData{nextID: 1}
}

// AddVertexGroup appends a line strip of xyz points and returns its id.
func (w *WireData) AddVertexGroup(points []float32) uint32 {
	id := w.nextID
	w.nextID++
	w.groups = append(w.groups, VertexGroup{
		ID:     id,
		Offset: len(w.positions) / 3,
		Count:  len(points) / 3,
	})
	w.positions = append(w.positions, points[:len(points)/3*3]...)
	w.uploaded = false
	return id
}

// AddVertexGroups appends every group of other with its points moved by m.
func (w *WireData) AddVertexGroups(other *WireData, m math.Mat4) {
	identity := m.IsIdentity()
	for _, g := range other.groups {
		points := append([]float32(nil), other.positions[g.Offset*3:(g.Offset+g.Count)*3]...)
		if !identity {
			transformPoints(points, m)
		}
		w.AddVertexGroup(points)
	}
}

func transformPoints(points []float32, m math.Mat4) {
	for i := 0; i+2 < len(points); i += 3 {
		p := m.TransformPoint([3]float32{points[i], points[i+1], points[i+2]})
		copy(points[i:i+3], p[:])
	}
}

// Groups returns the line strips in insertion order.
func (w *WireData) Groups() []VertexGroup { return w.groups }

// Positions returns the packed points of every strip.
func (w *WireData) Positions() []float32 { return w.positions }

// Points returns the points of group g.
func (w *WireData) Points(g VertexGroup) []float32 {
	return w.positions[g.Offset*3 : (g.Offset+g.Count)*3]
}

// VertexGroupCount returns the number of strips.
func (w *WireData) VertexGroupCount() int { return len(w.groups) }

// IsEmpty reports whether there is nothing to draw.
func (w *WireData) IsEmpty() bool { return len(w.groups) == 0 }

// TransformVertices moves every point by m.
func (w *WireData) TransformVertices(m math.Mat4) {
	transformPoints(w.positions, m)
	w.uploaded = false
}

// BoundingBox returns the box of every point.
func (w *WireData) BoundingBox() math.Box {
	return math.Box{}.CombinePoints(w.positions)
}

// Clear drops every strip. A GPU buffer is deleted on the next Draw or Release.
func (w *WireData) Clear() {
	if w.buffer != 0 {
		w.orphans = append(w.orphans, w.buffer)
		w.buffer = 0
	}
	w.positions = nil
	w.groups = nil
	w.nextID = 1
	w.uploaded = false
}

// Clone returns a deep copy without GPU state.
func (w *WireData) Clone() *WireData {
	return &WireData{
		positions: append([]float32(nil), w.positions...),
		groups:    append([]VertexGroup(nil), w.groups...),
		nextID:    w.nextID,
	}
}

// Draw issues one line strip per group.
func (w *WireData) Draw(b gpu.Backend) {
	w.deleteOrphans(b)
	if w.IsEmpty() {
		return
	}
	if b.VBOSupported() {
		if w.buffer == 0 {
			w.buffer = b.CreateBuffer()
			w.uploaded = false
		}
		b.BindBuffer(gpu.ArrayBuffer, w.buffer)
		if !w.uploaded {
			b.FillFloats(gpu.ArrayBuffer, w.positions)
			w.uploaded = true
		}
		b.SetAttribute(gpu.Position, 3, nil)
	} else {
		b.SetAttribute(gpu.Position, 3, w.positions)
	}
	for _, g := range w.groups {
		b.DrawArrays(gpu.LineStrip, g.Offset, g.Count)
	}
	b.DisableAttributes()
	if b.VBOSupported() {
		b.ReleaseBuffer(gpu.ArrayBuffer)
	}
}

func (w *WireData) deleteOrphans(b gpu.Backend) {
	for _, buf := range w.orphans {
		b.DeleteBuffer(buf)
	}
	w.orphans = nil
}

// Release deletes the GPU buffer.
func (w *WireData) Release(b gpu.Backend) {
	w.deleteOrphans(b)
	if w.buffer != 0 {
		b.DeleteBuffer(w.buffer)
		w.buffer = 0
	}
	w.uploaded = false
}

// Encode writes the points and strips.
func (w *WireData) Encode(e *encoding.Writer) {
	e.Uint32(w.nextID)
	e.Floats(w.positions)
	e.Uint32(uint32(len(w.groups)))
	for _, g := range w.groups {
		e.Uint32(g.ID)
		e.Int32(int32(g.Offset))
		e.Int32(int32(g.Count))
	}
}

// Decode replaces the content with data written by Encode.
func (w *WireData) Decode(d *encoding.Reader) error {
	next := d.Uint32()
	positions := d.Floats()
	n := d.Len()
	groups := make([]VertexGroup, 0, n)
	for i := 0; i < n && d.Err() == nil; i++ {
		groups = append(groups, VertexGroup{ID: d.Uint32(), Offset: int(d.Int32()), Count: int(d.Int32())})
	}
	if err := d.Err(); err != nil {
		return err
	}
	for _, g := range groups {
		if g.Offset < 0 || g.Count < 0 || (g.Offset+g.Count)*3 > len(positions) {
			return errors.Wrapf(ErrCorrupt, "wire group %d out of %d points", g.ID, len(positions)/3)
		}
	}
	w.Clear()
	w.positions, w.groups, w.nextID = positions, groups, next
	return nil
}
