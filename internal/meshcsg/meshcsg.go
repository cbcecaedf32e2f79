// Package meshcsg runs boolean operations between meshes placed in world
// space and rebuilds a mesh from the result, one triangle batch per material.
package meshcsg

import (
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-mesh/internal/csg"
	"github.com/Faultbox/midgard-mesh/internal/logger"
	"github.com/Faultbox/midgard-mesh/internal/material"
	"github.com/Faultbox/midgard-mesh/internal/mesh"
	"github.com/Faultbox/midgard-mesh/pkg/math"
)

// ErrUnattributedTriangles reports result triangles whose material belongs
// to neither input mesh.
var ErrUnattributedTriangles = errors.New("csg result holds triangles of unknown material")

// Op is a boolean operation on two models.
type Op func(a, b csg.Model) csg.Model

// Intersection returns the volume common to a and b.
func Intersection(a *mesh.Mesh, ma math.Mat4, b *mesh.Mesh, mb math.Mat4) (*mesh.Mesh, error) {
	return run("intersection", csg.Intersection, a, ma, b, mb)
}

// Add returns the union of a and b.
func Add(a *mesh.Mesh, ma math.Mat4, b *mesh.Mesh, mb math.Mat4) (*mesh.Mesh, error) {
	return run("add", csg.Union, a, ma, b, mb)
}

// Subtract returns a with the volume of b removed.
func Subtract(a *mesh.Mesh, ma math.Mat4, b *mesh.Mesh, mb math.Mat4) (*mesh.Mesh, error) {
	return run("subtract", csg.Difference, a, ma, b, mb)
}

// IntersectionInto is Intersection writing into result, whose previous
// content is cleared.
func IntersectionInto(result, a *mesh.Mesh, ma math.Mat4, b *mesh.Mesh, mb math.Mat4) error {
	return runInto(result, "intersection", csg.Intersection, a, ma, b, mb)
}

// AddInto is Add writing into result.
func AddInto(result, a *mesh.Mesh, ma math.Mat4, b *mesh.Mesh, mb math.Mat4) error {
	return runInto(result, "add", csg.Union, a, ma, b, mb)
}

// SubtractInto is Subtract writing into result.
func SubtractInto(result, a *mesh.Mesh, ma math.Mat4, b *mesh.Mesh, mb math.Mat4) error {
	return runInto(result, "subtract", csg.Difference, a, ma, b, mb)
}

// ByName returns the operation called name: intersection, add or subtract.
func ByName(name string) (func(result, a *mesh.Mesh, ma math.Mat4, b *mesh.Mesh, mb math.Mat4) error, bool) {
	switch name {
	case "intersection", "intersect":
		return IntersectionInto, true
	case "add", "union":
		return AddInto, true
	case "subtract", "difference":
		return SubtractInto, true
	}
	return nil, false
}

func run(name string, op Op, a *mesh.Mesh, ma math.Mat4, b *mesh.Mesh, mb math.Mat4) (*mesh.Mesh, error) {
	result := mesh.New(a.Name() + "-" + name + "-" + b.Name())
	if err := runInto(result, name, op, a, ma, b, mb); err != nil {
		return nil, err
	}
	return result, nil
}

func runInto(result *mesh.Mesh, name string, op Op, a *mesh.Mesh, ma math.Mat4, b *mesh.Mesh, mb math.Mat4) error {
	out := op(ModelFromMesh(a, ma), ModelFromMesh(b, mb))
	wa, wb := a.Wire().Clone(), b.Wire().Clone()
	if err := MeshFromModel(out, Materials(a, b), result); err != nil {
		return errors.Wrapf(err, "%s of %q and %q", name, a.Name(), b.Name())
	}
	result.Wire().AddVertexGroups(wa, ma)
	result.Wire().AddVertexGroups(wb, mb)
	logger.Debug("mesh csg",
		zap.String("op", name),
		zap.String("a", a.Name()),
		zap.String("b", b.Name()),
		zap.Int("triangles", out.TriangleCount()))
	return nil
}

// ModelFromMesh flattens the LOD 0 triangles of m into a triangle soup in
// the space of matrix. Every vertex is tagged with its group's material id.
func ModelFromMesh(m *mesh.Mesh, matrix math.Mat4) csg.Model {
	var model csg.Model
	data := m.Data()
	positions, normals, texels := data.Positions(), data.Normals(), data.Texels()
	identity := matrix.IsIdentity()
	for _, matID := range m.MaterialIDsOfLod(0) {
		idx, err := m.EquivalentTrianglesIndex(0, matID)
		if err != nil {
			continue
		}
		for _, i := range idx {
			v := csg.Vertex{MaterialID: matID}
			if int(i)*3+2 < len(positions) {
				v.Pos = math.V3([3]float32(positions[i*3 : i*3+3]))
			}
			if int(i)*3+2 < len(normals) {
				v.Normal = math.V3([3]float32(normals[i*3 : i*3+3]))
			}
			if int(i)*2+1 < len(texels) {
				v.UV = [2]float32(texels[i*2 : i*2+2])
			}
			if !identity {
				v.Pos = matrix.TransformVec3(v.Pos)
				v.Normal = math.V3(matrix.TransformNormal(v.Normal.Array()))
			}
			model.Indices = append(model.Indices, len(model.Vertices))
			model.Vertices = append(model.Vertices, v)
		}
	}
	return model
}

// Materials returns the materials of a and b keyed by id.
func Materials(a, b *mesh.Mesh) map[uint32]*material.Material {
	out := make(map[uint32]*material.Material)
	for _, m := range []*mesh.Mesh{b, a} {
		for _, id := range m.MaterialIDs() {
			if _, ok := out[id]; ok {
				continue
			}
			if mat, ok := m.Material(id); ok {
				out[id] = mat
			}
		}
	}
	return out
}

// MeshFromModel replaces the content of into with model. Triangles are
// grouped by the material their first vertex is tagged with; a triangle
// tagged with a material missing from materials fails with
// ErrUnattributedTriangles and leaves into untouched. into is finished on
// success.
func MeshFromModel(model csg.Model, materials map[uint32]*material.Material, into *mesh.Mesh) error {
	remaining := append([]int(nil), model.Indices[:model.TriangleCount()*3]...)
	for _, i := range remaining {
		if i < 0 || i >= len(model.Vertices) {
			return errors.Wrapf(ErrUnattributedTriangles, "index %d out of %d vertices", i, len(model.Vertices))
		}
	}

	batches := make(map[uint32][]uint32)
	for _, id := range slices.Sorted(maps.Keys(materials)) {
		kept := remaining[:0]
		for t := 0; t < len(remaining); t += 3 {
			tri := remaining[t : t+3]
			if model.Vertices[tri[0]].MaterialID == id {
				batches[id] = append(batches[id], uint32(tri[0]), uint32(tri[1]), uint32(tri[2]))
				continue
			}
			kept = append(kept, tri...)
		}
		remaining = kept
	}
	if len(remaining) > 0 {
		return errors.Wrapf(ErrUnattributedTriangles, "%d triangles left", len(remaining)/3)
	}

	// into may be one of the inputs: hold the materials while it is cleared.
	hold := uuid.New()
	for _, mat := range materials {
		mat.AddUsage(hold)
	}
	defer func() {
		for _, mat := range materials {
			mat.DelUsage(hold)
		}
	}()

	into.Clear()
	n := len(model.Vertices)
	positions := make([]float32, 0, n*3)
	normals := make([]float32, 0, n*3)
	texels := make([]float32, 0, n*2)
	for _, v := range model.Vertices {
		positions = append(positions, v.Pos.X, v.Pos.Y, v.Pos.Z)
		normals = append(normals, v.Normal.X, v.Normal.Y, v.Normal.Z)
		texels = append(texels, v.UV[0], v.UV[1])
	}
	into.AddVertices(positions)
	into.AddNormals(normals)
	into.AddTexels(texels)
	for _, id := range slices.Sorted(maps.Keys(batches)) {
		if _, err := into.AddTriangles(materials[id], batches[id], 0, 0); err != nil {
			return err
		}
	}
	into.Finish()
	return nil
}
