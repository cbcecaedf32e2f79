// Package csg computes boolean operations between closed triangle soups with
// a BSP tree. Vertices carry a material tag that survives every split so the
// result can be partitioned back per material.
package csg

import "github.com/Faultbox/midgard-mesh/pkg/math"

// Epsilon is the plane thickness used to classify points.
const Epsilon = 1e-5

// Vertex is one corner of a triangle.
type Vertex struct {
	Pos        math.Vec3
	Normal     math.Vec3
	UV         [2]float32
	MaterialID uint32
}

func (v Vertex) interpolate(o Vertex, t float32) Vertex {
	return Vertex{
		Pos:    v.Pos.Lerp(o.Pos, t),
		Normal: v.Normal.Lerp(o.Normal, t),
		UV: [2]float32{
			v.UV[0] + (o.UV[0]-v.UV[0])*t,
			v.UV[1] + (o.UV[1]-v.UV[1])*t,
		},
		MaterialID: v.MaterialID,
	}
}

func (v Vertex) flip() Vertex {
	v.Normal = v.Normal.Negate()
	return v
}

// Model is an indexed triangle list. Every three indices form one triangle.
type Model struct {
	Vertices []Vertex
	Indices  []int
}

// TriangleCount returns the number of complete triangles.
func (m Model) TriangleCount() int { return len(m.Indices) / 3 }

// IsEmpty reports whether m has no triangle.
func (m Model) IsEmpty() bool { return m.TriangleCount() == 0 }

// Intersection returns the volume inside both a and b.
func Intersection(a, b Model) Model {
	na, nb := newNode(polygonsOf(a)), newNode(polygonsOf(b))
	na.invert()
	nb.clipTo(na)
	nb.invert()
	na.clipTo(nb)
	nb.clipTo(na)
	na.build(nb.allPolygons())
	na.invert()
	return modelOf(na.allPolygons())
}

// Union returns the volume inside a or b.
func Union(a, b Model) Model {
	na, nb := newNode(polygonsOf(a)), newNode(polygonsOf(b))
	na.clipTo(nb)
	nb.clipTo(na)
	nb.invert()
	nb.clipTo(na)
	nb.invert()
	na.build(nb.allPolygons())
	return modelOf(na.allPolygons())
}

// Difference returns the volume inside a and outside b.
func Difference(a, b Model) Model {
	na, nb := newNode(polygonsOf(a)), newNode(polygonsOf(b))
	na.invert()
	na.clipTo(nb)
	nb.clipTo(na)
	nb.invert()
	nb.clipTo(na)
	nb.invert()
	na.build(nb.allPolygons())
	na.invert()
	return modelOf(na.allPolygons())
}

// polygonsOf drops out of range and degenerate triangles.
func polygonsOf(m Model) []*polygon {
	out := make([]*polygon, 0, m.TriangleCount())
	n := len(m.Vertices)
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if a < 0 || b < 0 || c < 0 || a >= n || b >= n || c >= n {
			continue
		}
		if p, ok := newPolygon([]Vertex{m.Vertices[a], m.Vertices[b], m.Vertices[c]}); ok {
			out = append(out, p)
		}
	}
	return out
}

// modelOf fans every convex polygon into triangles with unshared vertices.
func modelOf(polys []*polygon) Model {
	var m Model
	for _, p := range polys {
		for j := 2; j < len(p.vertices); j++ {
			base := len(m.Vertices)
			m.Vertices = append(m.Vertices, p.vertices[0], p.vertices[j-1], p.vertices[j])
			m.Indices = append(m.Indices, base, base+1, base+2)
		}
	}
	return m
}
