package csg

import "github.com/Faultbox/midgard-mesh/pkg/math"

type plane struct {
	normal math.Vec3
	w      float32
}

func (p *plane) flip() {
	p.normal = p.normal.Negate()
	p.w = -p.w
}

// Point classes; a spanning polygon has both front and back points.
const (
	coplanar = 0
	front    = 1
	back     = 2
	spanning = front | back
)

func (p plane) classify(v math.Vec3) int {
	t := p.normal.Dot(v) - p.w
	switch {
	case t < -Epsilon:
		return back
	case t > Epsilon:
		return front
	}
	return coplanar
}

// split sorts poly into one of the four lists, cutting it in two when it
// spans the plane.
func (p plane) split(poly *polygon, coFront, coBack, fr, bk *[]*polygon) {
	types := make([]int, len(poly.vertices))
	kind := coplanar
	for i, v := range poly.vertices {
		types[i] = p.classify(v.Pos)
		kind |= types[i]
	}
	switch kind {
	case coplanar:
		if p.normal.Dot(poly.plane.normal) > 0 {
			*coFront = append(*coFront, poly)
		} else {
			*coBack = append(*coBack, poly)
		}
	case front:
		*fr = append(*fr, poly)
	case back:
		*bk = append(*bk, poly)
	default:
		var f, b []Vertex
		n := len(poly.vertices)
		for i := range n {
			j := (i + 1) % n
			ti, tj := types[i], types[j]
			vi, vj := poly.vertices[i], poly.vertices[j]
			if ti != back {
				f = append(f, vi)
			}
			if ti != front {
				b = append(b, vi)
			}
			if ti|tj == spanning {
				t := (p.w - p.normal.Dot(vi.Pos)) / p.normal.Dot(vj.Pos.Sub(vi.Pos))
				v := vi.interpolate(vj, t)
				f = append(f, v)
				b = append(b, v)
			}
		}
		if len(f) >= 3 {
			*fr = append(*fr, &polygon{vertices: f, plane: poly.plane})
		}
		if len(b) >= 3 {
			*bk = append(*bk, &polygon{vertices: b, plane: poly.plane})
		}
	}
}

type polygon struct {
	vertices []Vertex
	plane    plane
}

// newPolygon fails on polygons with no area.
func newPolygon(vs []Vertex) (*polygon, bool) {
	n := vs[1].Pos.Sub(vs[0].Pos).Cross(vs[2].Pos.Sub(vs[0].Pos))
	if n.Length() == 0 {
		return nil, false
	}
	n = n.Normalize()
	return &polygon{vertices: vs, plane: plane{normal: n, w: n.Dot(vs[0].Pos)}}, true
}

func (p *polygon) flip() {
	n := len(p.vertices)
	flipped := make([]Vertex, n)
	for i, v := range p.vertices {
		flipped[n-1-i] = v.flip()
	}
	p.vertices = flipped
	p.plane.flip()
}

// node is a BSP tree node. A nil plane marks an empty tree.
type node struct {
	plane       *plane
	front, back *node
	polygons    []*polygon
}

func newNode(polys []*polygon) *node {
	n := &node{}
	n.build(polys)
	return n
}

// invert turns solid space into empty space and back.
func (n *node) invert() {
	for _, p := range n.polygons {
		p.flip()
	}
	if n.plane != nil {
		n.plane.flip()
	}
	if n.front != nil {
		n.front.invert()
	}
	if n.back != nil {
		n.back.invert()
	}
	n.front, n.back = n.back, n.front
}

// clipPolygons removes the parts of polys inside this tree.
func (n *node) clipPolygons(polys []*polygon) []*polygon {
	if n.plane == nil {
		return append([]*polygon(nil), polys...)
	}
	var fr, bk []*polygon
	for _, p := range polys {
		n.plane.split(p, &fr, &bk, &fr, &bk)
	}
	if n.front != nil {
		fr = n.front.clipPolygons(fr)
	}
	if n.back != nil {
		bk = n.back.clipPolygons(bk)
	} else {
		bk = nil
	}
	return append(fr, bk...)
}

// clipTo removes the parts of this tree's polygons inside other.
func (n *node) clipTo(other *node) {
	n.polygons = other.clipPolygons(n.polygons)
	if n.front != nil {
		n.front.clipTo(other)
	}
	if n.back != nil {
		n.back.clipTo(other)
	}
}

func (n *node) allPolygons() []*polygon {
	out := append([]*polygon(nil), n.polygons...)
	if n.front != nil {
		out = append(out, n.front.allPolygons()...)
	}
	if n.back != nil {
		out = append(out, n.back.allPolygons()...)
	}
	return out
}

func (n *node) build(polys []*polygon) {
	if len(polys) == 0 {
		return
	}
	if n.plane == nil {
		pl := polys[0].plane
		n.plane = &pl
	}
	var fr, bk []*polygon
	for _, p := range polys {
		n.plane.split(p, &n.polygons, &n.polygons, &fr, &bk)
	}
	if len(fr) > 0 {
		if n.front == nil {
			n.front = &node{}
		}
		n.front.build(fr)
	}
	if len(bk) > 0 {
		if n.back == nil {
			n.back = &node{}
		}
		n.back.build(bk)
	}
}
