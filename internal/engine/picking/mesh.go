package picking

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-mesh/internal/gpu"
	"github.com/Faultbox/midgard-mesh/internal/mesh"
	"github.com/Faultbox/midgard-mesh/internal/render"
)

// Hit is the primitive nearest along a ray.
type Hit struct {
	PrimitiveID uint32
	Distance    float32
	Point       mgl32.Vec3
}

// PickPrimitive casts ray, given in mesh space, against the LOD 0
// primitives of m. It runs the primitive selection loop against a
// recording backend and decodes the ids from the draw colors, so it
// answers what reading back a rendered pick would.
func PickPrimitive(m *mesh.Mesh, ray Ray) (Hit, bool, error) {
	if _, ok := ray.IntersectBox(m.BoundingBox()); !ok {
		return Hit{}, false, nil
	}

	rec := gpu.NewRecorder(false)
	frame := render.NewFrame(rec)
	frame.SelectionMode = true
	props := render.NewProperties()
	defer props.Release()
	props.SetMode(render.PrimitiveSelection)
	if err := m.Draw(frame, props); err != nil {
		return Hit{}, false, err
	}

	var best Hit
	found := false
	for _, d := range rec.Draws {
		id := render.DecodeRGBID(colorBytes(d.Color))
		for _, tri := range gpu.ExpandTriangles(d.Primitive, d.Indices) {
			a, okA := vertex(d.Positions, tri[0])
			b, okB := vertex(d.Positions, tri[1])
			c, okC := vertex(d.Positions, tri[2])
			if !okA || !okB || !okC {
				continue
			}
			t, hit := ray.IntersectTriangle(a, b, c)
			if hit && (!found || t < best.Distance) {
				best = Hit{PrimitiveID: id, Distance: t, Point: ray.At(t)}
				found = true
			}
		}
	}
	return best, found, nil
}

func colorBytes(c [4]float32) [4]uint8 {
	var out [4]uint8
	for i, v := range c {
		out[i] = uint8(math32.Round(mgl32.Clamp(v, 0, 1) * 255))
	}
	return out
}

func vertex(pos []float32, i uint32) (mgl32.Vec3, bool) {
	k := int(i) * 3
	if k+2 >= len(pos) {
		return mgl32.Vec3{}, false
	}
	return mgl32.Vec3{pos[k], pos[k+1], pos[k+2]}, true
}
