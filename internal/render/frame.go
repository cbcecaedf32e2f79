package render

import (
	"sync/atomic"

	"github.com/Faultbox/midgard-mesh/internal/gpu"
)

// DefaultSelectionColor is the color selected geometry is drawn with.
var DefaultSelectionColor = [4]float32{0.95, 0.55, 0.1, 1}

// Frame is the state shared by every draw of one rendered frame.
type Frame struct {
	Backend        gpu.Backend
	SelectionMode  bool
	SelectionColor [4]float32
	Stats          *Stats

	silhouette uint32
}

// NewFrame returns a frame drawing to b.
func NewFrame(b gpu.Backend) *Frame {
	return &Frame{
		Backend:        b,
		SelectionColor: DefaultSelectionColor,
		Stats:          &Stats{},
	}
}

// NextSilhouetteID returns the next outline id of the frame, tagged with the
// selection bit when selected is set.
func (f *Frame) NextSilhouetteID(selected bool) uint32 {
	id := f.silhouette & 0x7FFFFF
	f.silhouette++
	if selected {
		id |= 0x800000
	}
	return id
}

// Begin resets per-frame counters.
func (f *Frame) Begin() {
	f.silhouette = 0
	if f.Stats != nil {
		f.Stats.Reset()
	}
}

// EncodeRGBID packs the low 24 bits of id into an RGBA color with zero alpha.
func EncodeRGBID(id uint32) [4]uint8 {
	return [4]uint8{uint8(id >> 16), uint8(id >> 8), uint8(id), 0}
}

// DecodeRGBID is the inverse of EncodeRGBID.
func DecodeRGBID(c [4]uint8) uint32 {
	return uint32(c[0])<<16 | uint32(c[1])<<8 | uint32(c[2])
}

// IDColor returns EncodeRGBID(id) as normalized floats.
func IDColor(id uint32) [4]float32 {
	c := EncodeRGBID(id)
	return [4]float32{float32(c[0]) / 255, float32(c[1]) / 255, float32(c[2]) / 255, 0}
}

// Stats counts what a frame rendered.
type Stats struct {
	bodies    atomic.Int64
	triangles atomic.Int64
}

func (s *Stats) AddBodies(n int)    { s.bodies.Add(int64(n)) }
func (s *Stats) AddTriangles(n int) { s.triangles.Add(int64(n)) }
func (s *Stats) Bodies() int        { return int(s.bodies.Load()) }
func (s *Stats) Triangles() int     { return int(s.triangles.Load()) }

// Reset zeroes the counters.
func (s *Stats) Reset() {
	s.bodies.Store(0)
	s.triangles.Store(0)
}
