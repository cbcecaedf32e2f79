// Package gpu abstracts the buffer and draw calls issued by mesh rendering.
//
// Two draw paths exist. With buffer objects the index data lives in a bound
// element buffer and draws address it by byte offset. Without them draws pass
// the LOD index array directly and address it by element offset. Offset
// carries both so a Backend can resolve either.
package gpu

import "fmt"

// Target is a buffer binding point.
type Target int

const (
	ArrayBuffer Target = iota
	ElementArrayBuffer
)

// Attribute is a vertex attribute slot.
type Attribute int

const (
	Position Attribute = iota
	Normal
	Texel
	Color
)

// Components returns the number of floats per vertex for the attribute.
func (a Attribute) Components() int {
	switch a {
	case Texel:
		return 2
	case Color:
		return 4
	default:
		return 3
	}
}

func (a Attribute) String() string {
	switch a {
	case Position:
		return "position"
	case Normal:
		return "normal"
	case Texel:
		return "texel"
	case Color:
		return "color"
	default:
		return fmt.Sprintf("Attribute(%d)", int(a))
	}
}

// Primitive is a draw topology.
type Primitive int

const (
	Triangles Primitive = iota
	TriangleStrip
	TriangleFan
	LineStrip
	Lines
)

func (p Primitive) String() string {
	switch p {
	case Triangles:
		return "triangles"
	case TriangleStrip:
		return "triangle-strip"
	case TriangleFan:
		return "triangle-fan"
	case LineStrip:
		return "line-strip"
	case Lines:
		return "lines"
	default:
		return fmt.Sprintf("Primitive(%d)", int(p))
	}
}

// Buffer is a backend buffer name. Zero is never a valid buffer.
type Buffer uint32

// Offset locates a run of indices for DrawElements.
type Offset struct {
	// Elements is the start of the run in Client.
	Elements int
	// Bytes is the start of the run in the bound element buffer.
	Bytes uintptr
	// Client is the LOD index array when no element buffer is bound.
	Client []uint32
}

// Binder applies per-draw render state. Materials execute against it.
type Binder interface {
	SetColor(rgba [4]float32)
	SetLighting(on bool)
	SetTexturing(on bool)
	FrontFace(ccw bool)
	CullFace(on bool)
}

// Backend is the buffer and draw surface used by meshes.
type Backend interface {
	Binder

	// VBOSupported reports whether buffer objects may be used.
	VBOSupported() bool

	CreateBuffer() Buffer
	DeleteBuffer(b Buffer)
	BindBuffer(t Target, b Buffer)
	ReleaseBuffer(t Target)

	// FillFloats and FillIndices replace the contents of the buffer bound to t.
	FillFloats(t Target, data []float32)
	FillIndices(t Target, data []uint32)

	// SetAttribute enables an attribute. A nil client slice sources it from
	// the buffer bound to ArrayBuffer.
	SetAttribute(a Attribute, size int, client []float32)
	DisableAttributes()

	DrawElements(p Primitive, count int, off Offset)
	DrawArrays(p Primitive, first, count int)
}
